// Command libyear reports how many years the NuGet dependencies of .NET
// projects are behind their latest releases.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
)

// Version is overridden at build time.
var Version = "dev"

// Exit codes.
const (
	exitOK      = 0
	exitLimit   = 1
	exitFailure = 2
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runMain(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Exit)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

// runMain executes the CLI and exits with the code carried by an ExitError.
// Any other error is a runtime failure.
func runMain(ctx context.Context, args []string, stdout, stderr io.Writer, exit func(int)) {
	err := execute(ctx, args, stdout, stderr)
	if err == nil {
		return
	}

	code := exitFailure
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
	}
	_, _ = fmt.Fprintln(stderr, "Error:", err)
	exit(code)
}
