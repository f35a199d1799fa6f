package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/git-pkgs/libyear"
	_ "github.com/git-pkgs/libyear/all"
	"github.com/git-pkgs/libyear/internal/core"
	"github.com/git-pkgs/libyear/internal/output"
)

func newPURLCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "purl <purl>...",
		Short: "Check single packages given as package URLs",
		Long: `Resolves each package URL, for example pkg:nuget/Serilog@2.12.0, and
reports how far its version is behind the latest release. A repository_url
qualifier points the lookup at a private feed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPURL(cmd, f, args)
		},
	}
}

func runPURL(cmd *cobra.Command, f *rootFlags, args []string) error {
	cfg, err := f.settings(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), f.verbose)

	for _, arg := range args {
		if _, err := libyear.ParsePURL(arg); err != nil {
			return &ExitError{Code: exitFailure, Err: fmt.Errorf("invalid package URL %q: %w", arg, err)}
		}
	}

	c := newClient(cfg, logger)
	var solution libyear.SolutionResult
	for _, arg := range args {
		res, err := libyear.ResolvePURL(cmd.Context(), arg, c,
			core.WithFetchTimeout(cfg.Registry.Timeout.Duration),
			core.WithLogger(logger),
		)
		project := libyear.ProjectResult{Source: arg, Dialect: "purl", Results: []libyear.Result{res}}

		var resolveErr *libyear.ResolveError
		switch {
		case errors.As(err, &resolveErr):
			resolveErr.Project = arg
			project.Failures = append(project.Failures, resolveErr)
		case err != nil:
			return &ExitError{Code: exitFailure, Err: err}
		}
		solution.Projects = append(solution.Projects, project)
	}

	outcome := &libyear.Outcome{
		Solution:   solution,
		Violations: limits(cfg).Evaluate(solution),
	}
	r := output.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Quiet)
	return report(r, cfg.Output, outcome, nil)
}
