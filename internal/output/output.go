// Package output renders libyear results as a table or as JSON.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/git-pkgs/libyear/internal/core"
)

// Formats understood by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// isTerminal is a seam for tests.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Renderer writes results to Out and diagnostics to Err.
type Renderer struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool
	Color bool

	// URLs, when set, adds registry links and package URLs to JSON output.
	URLs core.URLBuilder
}

// New returns a Renderer that colours its output when out is a terminal.
func New(out, errw io.Writer, quiet bool) *Renderer {
	return &Renderer{
		Out:   out,
		Err:   errw,
		Quiet: quiet,
		Color: isTerminal(out) && !color.NoColor,
	}
}

// Render writes the solution in the given format.
func (r *Renderer) Render(format string, s core.SolutionResult) error {
	switch format {
	case "", FormatText:
		return r.Text(s)
	case FormatJSON:
		return r.JSON(s)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Violations reports breached limits on Err.
func (r *Renderer) Violations(vs []core.Violation) {
	c := r.paint(color.FgRed)
	for _, v := range vs {
		_, _ = c.Fprintln(r.Err, v.String())
	}
}

// Failures reports packages that could not be resolved on Err.
func (r *Renderer) Failures(fs []*core.ResolveError) {
	c := r.paint(color.FgYellow)
	for _, f := range fs {
		_, _ = c.Fprintf(r.Err, "warning: %v\n", f)
	}
}

// Updated lists the files an update rewrote.
func (r *Renderer) Updated(paths []string) {
	if len(paths) == 0 {
		return
	}
	_, _ = fmt.Fprintln(r.Out, "Updated:")
	for _, p := range paths {
		_, _ = fmt.Fprintf(r.Out, "  %s\n", p)
	}
}

// Diff writes an update preview, colouring added and removed lines.
func (r *Renderer) Diff(diff string) {
	add, del := r.paint(color.FgGreen), r.paint(color.FgRed)
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			_, _ = add.Fprint(r.Out, line)
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			_, _ = del.Fprint(r.Out, line)
		default:
			_, _ = fmt.Fprint(r.Out, line)
		}
	}
}

func (r *Renderer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
