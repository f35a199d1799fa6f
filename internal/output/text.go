package output

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/git-pkgs/libyear/internal/core"
)

const dateLayout = "2006-01-02"

var header = []string{"Package", "Installed", "Released", "Latest", "Released", "Age (y)"}

// Text writes one table per project followed by the project's total, and a
// grand total when more than one project was analyzed. Projects without
// packages are skipped. In quiet mode up-to-date packages are left out and a
// project with nothing outdated is reduced to its total.
func (r *Renderer) Text(s core.SolutionResult) error {
	bold := r.paint(color.Bold)

	shown := 0
	for _, p := range s.Projects {
		if len(p.Results) == 0 {
			continue
		}
		if shown > 0 {
			if _, err := fmt.Fprintln(r.Out); err != nil {
				return err
			}
		}
		shown++

		if _, err := bold.Fprintln(r.Out, p.Source); err != nil {
			return err
		}

		var rows []tableRow
		for _, res := range p.Results {
			if r.Quiet && !res.IsOutdated() {
				continue
			}
			rows = append(rows, newRow(res))
		}
		if len(rows) > 0 {
			if err := r.table(rows); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(r.Out, "  Project is %s libyears behind\n", r.age(p.Libyears())); err != nil {
			return err
		}
	}

	if shown > 1 {
		if _, err := fmt.Fprintf(r.Out, "\nTotal is %s libyears behind\n", r.age(s.Libyears())); err != nil {
			return err
		}
	}
	return nil
}

type tableRow struct {
	cells []string
	years float64
}

func newRow(res core.Result) tableRow {
	installed := ""
	switch {
	case res.Installed != nil:
		installed = res.Installed.String()
	case res.Current != nil:
		installed = res.Current.Version.String()
	}
	years := res.Libyears()
	return tableRow{
		cells: []string{
			res.Name,
			installed,
			published(res.Current),
			releaseVersion(res.Latest),
			published(res.Latest),
			fmt.Sprintf("%.1f", years),
		},
		years: years,
	}
}

func releaseVersion(r *core.Release) string {
	if r == nil {
		return ""
	}
	return r.Version.String()
}

func published(r *core.Release) string {
	if !r.HasPublishDate() {
		return ""
	}
	return r.Published.Format(dateLayout)
}

func (r *Renderer) table(rows []tableRow) error {
	widths := make([]int, len(header))
	for i, cell := range header {
		widths[i] = utf8.RuneCountInString(cell)
	}
	for _, row := range rows {
		for i, cell := range row.cells {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	head := r.paint(color.Bold)
	if _, err := fmt.Fprintln(r.Out, "  "+head.Sprint(pad(header, widths))); err != nil {
		return err
	}

	last := len(header) - 1
	for _, row := range rows {
		line := pad(row.cells[:last], widths)
		age := r.ageColor(row.years).Sprint(row.cells[last])
		if _, err := fmt.Fprintf(r.Out, "  %s  %s\n", line, age); err != nil {
			return err
		}
	}
	return nil
}

// pad left-aligns cells to their column widths. The final column is not padded.
func pad(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(cell)
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
		}
	}
	return b.String()
}

func (r *Renderer) age(years float64) string {
	return r.ageColor(years).Sprintf("%.1f", years)
}

// ageColor is green when up to date, yellow under a year behind and red beyond.
func (r *Renderer) ageColor(years float64) *color.Color {
	switch {
	case years == 0:
		return r.paint(color.FgGreen)
	case years < 1:
		return r.paint(color.FgYellow)
	default:
		return r.paint(color.FgRed)
	}
}
