// Package output renders reports in human and machine-readable formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"synergism-calc/core/report"
	"synergism-calc/core/ui"
	"synergism-calc/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is human-readable terminal text
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes the report
	Render(w io.Writer, r *report.Report) error
}

// Options tune formatter output
type Options struct {
	NoColor bool
}

// New returns the formatter for a format name.
func New(format string, opts Options) (Formatter, error) {
	switch Format(strings.ToLower(format)) {
	case FormatCLI, "":
		return &CLIFormatter{NoColor: opts.NoColor}, nil
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}, nil
	default:
		return nil, errors.Newf(errors.TypeInput, "unknown output format %q", format).
			WithContext("supported", Supported())
	}
}

// Supported lists the format names New accepts.
func Supported() []string {
	names := []string{string(FormatCLI), string(FormatJSON)}
	sort.Strings(names)
	return names
}

// JSONFormatter writes the report as JSON
type JSONFormatter struct {
	Indent string
}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render writes the report
func (f *JSONFormatter) Render(w io.Writer, r *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", f.Indent)
	if err := enc.Encode(r); err != nil {
		return errors.Internal("cannot encode report", err)
	}
	return nil
}

// CLIFormatter writes the report as terminal text
type CLIFormatter struct {
	NoColor bool
}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Render writes the report
func (f *CLIFormatter) Render(w io.Writer, r *report.Report) error {
	uw := ui.NewWriter(w, f.NoColor)

	uw.Info("save from %s, stage %s", r.SavedAt.Format("2006-01-02 15:04:05 MST"), r.Stage)
	if r.PriceTableHash != "" {
		uw.Info("price tables %s", r.PriceTableHash)
	}

	for _, s := range r.Sections {
		if len(s.Metrics) == 0 && s.Table == nil {
			continue
		}
		uw.Header(s.Title)

		width := 0
		for _, m := range s.Metrics {
			if n := len([]rune(m.Label)); n > width {
				width = n
			}
		}
		for _, m := range s.Metrics {
			uw.KeyValue(m.Label, width, m.Text)
		}

		if s.Table != nil {
			t := uw.NewTable(s.Table.Columns...)
			for _, row := range s.Table.Rows {
				t.AddRow(row...)
			}
			t.Render()
		}
	}

	if len(r.Warnings) > 0 {
		uw.Header("Warnings")
		for _, warn := range r.Warnings {
			uw.Warning("%s", warn.Message)
		}
	}

	return uw.Err()
}

// Render is a convenience for New followed by Formatter.Render.
func Render(w io.Writer, format string, opts Options, r *report.Report) error {
	f, err := New(format, opts)
	if err != nil {
		return err
	}
	if err := f.Render(w, r); err != nil {
		return fmt.Errorf("render %s: %w", f.Format(), err)
	}
	return nil
}
