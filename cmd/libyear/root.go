package main

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/git-pkgs/libyear"
	"github.com/git-pkgs/libyear/client"
	"github.com/git-pkgs/libyear/internal/config"
	"github.com/git-pkgs/libyear/internal/output"
)

type rootFlags struct {
	configPath  string
	registryURL string
	output      string
	quiet       bool
	verbose     int

	limitTotal   float64
	limitProject float64
	limitAny     float64

	update    bool
	dryRun    bool
	recursive bool
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "libyear [target...]",
		Short: "Measure how far NuGet dependencies lag behind their latest releases",
		Long: `Reads .NET project files, Directory.Build.props, Directory.Packages.props
and packages.config, looks up every referenced package on NuGet and reports
how many years each installed version is behind the latest release.

Targets are project files or directories and default to the current directory.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, f, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default: .libyear.toml or .libyear.yaml in the working directory)")
	pf.StringVar(&f.registryURL, "registry", "", "NuGet v3 feed URL")
	pf.StringVarP(&f.output, "output", "o", config.OutputText, "output format (text or json)")
	pf.BoolVarP(&f.quiet, "quiet", "q", false, "only output outdated packages")
	pf.CountVarP(&f.verbose, "verbose", "v", "log progress to stderr (repeat for more detail)")
	pf.Float64VarP(&f.limitTotal, "limit", "l", 0, "fail if total libyears behind is greater than this value")
	pf.Float64VarP(&f.limitProject, "limit-project", "p", 0, "fail if any project's total libyears behind is greater than this value")
	pf.Float64VarP(&f.limitAny, "limit-any", "a", 0, "fail if any dependency is more libyears behind than this value")

	cmd.Flags().BoolVarP(&f.update, "update", "u", false, "update any outdated packages")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "with --update, print the changes instead of writing them")
	cmd.Flags().BoolVarP(&f.recursive, "recursive", "r", false, "search recursively for all compatible files, even if one is found in a directory passed as an argument")

	cmd.AddCommand(newPURLCmd(f))
	return cmd
}

// settings loads the config file and lays the flags that were set on top of it.
func (f *rootFlags) settings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, &ExitError{Code: exitFailure, Err: err}
	}

	changed := cmd.Flags().Changed
	if changed("registry") {
		cfg.Registry.URL = f.registryURL
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("quiet") {
		cfg.Quiet = f.quiet
	}
	if changed("recursive") {
		cfg.Recursive = f.recursive
	}
	if changed("limit") {
		cfg.Limits.Total = &f.limitTotal
	}
	if changed("limit-project") {
		cfg.Limits.Project = &f.limitProject
	}
	if changed("limit-any") {
		cfg.Limits.Any = &f.limitAny
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ExitError{Code: exitFailure, Err: err}
	}
	return cfg, nil
}

// newLogger writes to stderr from -v up. One -v shows run milestones, each
// further -v one more level of detail.
func newLogger(w io.Writer, verbose int) logr.Logger {
	if verbose == 0 {
		return logr.Discard()
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		_, _ = fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbose - 1})
}

func newClient(cfg *config.Config, logger logr.Logger) *libyear.Client {
	return client.NewClient(
		client.WithTimeout(cfg.Registry.Timeout.Duration),
		client.WithMaxRetries(cfg.Registry.MaxRetries),
		client.WithLogger(logger),
	).WithUserAgent(cfg.Registry.UserAgent)
}

func limits(cfg *config.Config) libyear.Limits {
	return libyear.Limits{
		Total:   cfg.Limits.Total,
		Project: cfg.Limits.Project,
		Any:     cfg.Limits.Any,
	}
}

func runAnalyze(cmd *cobra.Command, f *rootFlags, args []string) error {
	cfg, err := f.settings(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), f.verbose)
	if cfg.Source != "" {
		logger.Info("loaded config", "path", cfg.Source)
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	analyzer := libyear.NewAnalyzer(
		libyear.WithClient(newClient(cfg, logger)),
		libyear.WithRegistryURL(cfg.Registry.URL),
		libyear.WithFetchTimeout(cfg.Registry.Timeout.Duration),
		libyear.WithConcurrency(cfg.Concurrency),
		libyear.WithLogger(logger),
	)

	outcome, runErr := analyzer.Run(cmd.Context(), libyear.Options{
		Paths:     paths,
		Recursive: cfg.Recursive,
		Update:    f.update,
		DryRun:    f.dryRun,
		Limits:    limits(cfg),
	})
	if outcome == nil {
		return &ExitError{Code: exitFailure, Err: runErr}
	}

	r := output.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Quiet)
	r.URLs = analyzer.Resolver().Registry().URLs()
	return report(r, cfg.Output, outcome, runErr)
}

func report(r *output.Renderer, format string, outcome *libyear.Outcome, runErr error) error {
	if err := r.Render(format, outcome.Solution); err != nil {
		return &ExitError{Code: exitFailure, Err: err}
	}
	for _, d := range outcome.Diffs {
		r.Diff(d.Diff)
	}
	if len(outcome.Diffs) == 0 {
		r.Updated(outcome.Updated)
	}
	r.Failures(outcome.Failures())

	if runErr != nil {
		return &ExitError{Code: exitFailure, Err: runErr}
	}
	if len(outcome.Violations) > 0 {
		r.Violations(outcome.Violations)
		return &ExitError{Code: exitLimit, Err: fmt.Errorf("%d libyear limit(s) exceeded", len(outcome.Violations))}
	}
	return nil
}
