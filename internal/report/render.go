package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/dgallion1/docaudit/internal/validate"
)

// WriteJSON encodes the report as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText prints a human-readable report. Clean documents are listed
// only when verbose is set.
func WriteText(w io.Writer, r Report, useColor, verbose bool) error {
	paint := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	bold := paint(color.Bold)
	okColor := paint(color.FgGreen)
	dim := paint(color.Faint)
	severity := map[validate.Severity]*color.Color{
		validate.SeverityError:   paint(color.FgRed, color.Bold),
		validate.SeverityWarning: paint(color.FgYellow),
		validate.SeverityInfo:    paint(color.FgCyan),
	}

	for _, d := range r.Documents {
		if len(d.Findings) == 0 {
			if verbose {
				if _, err := fmt.Fprintf(w, "%s %s\n", bold.Sprint(d.Path), okColor.Sprint("ok")); err != nil {
					return err
				}
			}
			continue
		}
		if _, err := fmt.Fprintln(w, bold.Sprint(d.Path)); err != nil {
			return err
		}
		for _, f := range d.Findings {
			loc := "-"
			if f.Line > 0 {
				loc = fmt.Sprintf("%d", f.Line)
			}
			sev := string(f.Severity)
			if c, ok := severity[f.Severity]; ok {
				sev = c.Sprint(sev)
			}
			if _, err := fmt.Fprintf(w, "  %5s  %s  %s %s\n", loc, sev, f.Message, dim.Sprintf("[%s]", f.Rule)); err != nil {
				return err
			}
		}
	}

	status := okColor.Sprint("PASS")
	if !r.Pass {
		status = severity[validate.SeverityError].Sprint("FAIL")
	}
	s := r.Summary
	_, err := fmt.Fprintf(w, "\n%s: %d documents, %d failed, %s, %s, %s\n",
		status, s.Documents, s.Failed,
		plural(s.Errors, "error"), plural(s.Warnings, "warning"), plural(s.Infos, "info"))
	return err
}

func plural(n int, word string) string {
	if n == 1 || word == "info" {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
