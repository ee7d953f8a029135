// Package report turns a snapshot into a sectioned, renderable summary.
package report

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"synergism-calc/core/engine"
	"synergism-calc/internal/errors"
)

// Kind controls how a metric value is formatted.
type Kind string

const (
	KindScientific Kind = "scientific"
	KindPercent    Kind = "percent"
	KindDecimal    Kind = "decimal"
	KindInteger    Kind = "integer"
	KindBool       Kind = "bool"
)

// Metric is one named value of a report.
type Metric struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`

	// Value is omitted when the computed value is not finite
	Value *float64 `json:"value,omitempty"`

	// Text is the formatted value
	Text string `json:"text"`
}

// Table is a grid attached to a section.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Section groups related metrics.
type Section struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Metrics []Metric `json:"metrics,omitempty"`
	Table   *Table   `json:"table,omitempty"`
}

// Warning records a value that could not be reported.
type Warning struct {
	Accessor string      `json:"accessor,omitempty"`
	Type     errors.Type `json:"type,omitempty"`
	Message  string      `json:"message"`
}

// Report is the full analysis of one save.
type Report struct {
	ID          uuid.UUID    `json:"id"`
	GeneratedAt time.Time    `json:"generated_at"`
	SavedAt     time.Time    `json:"saved_at"`
	Stage       engine.Stage `json:"stage"`

	// PriceTableHash identifies the price tables used, when any
	PriceTableHash string `json:"price_table_hash,omitempty"`

	Sections []Section `json:"sections"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Section returns the section with the given name, or nil.
func (r *Report) Section(name string) *Section {
	for i := range r.Sections {
		if r.Sections[i].Name == name {
			return &r.Sections[i]
		}
	}
	return nil
}

// Metric returns the metric with the given key, or nil.
func (s *Section) Metric(key string) *Metric {
	if s == nil {
		return nil
	}
	for i := range s.Metrics {
		if s.Metrics[i].Key == key {
			return &s.Metrics[i]
		}
	}
	return nil
}

// Warn appends a warning. Typed errors keep their type and accessor.
func (r *Report) Warn(err error) {
	w := Warning{Message: err.Error()}
	if e, ok := err.(*errors.Error); ok {
		w.Type = e.Type
		w.Message = e.Message
		if a, ok := e.Context["accessor"].(string); ok {
			w.Accessor = a
		}
	}
	r.Warnings = append(r.Warnings, w)
}

// NewMetric formats v according to kind.
func NewMetric(key, label string, kind Kind, v float64) Metric {
	m := Metric{Key: key, Label: label, Kind: kind}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		m.Text = strconv.FormatFloat(v, 'g', -1, 64)
		return m
	}
	m.Value = &v
	m.Text = Format(kind, v)
	return m
}

// BoolMetric is a yes/no metric.
func BoolMetric(key, label string, v bool) Metric {
	f := 0.0
	if v {
		f = 1
	}
	return NewMetric(key, label, KindBool, f)
}

// Format renders a finite value.
func Format(kind Kind, v float64) string {
	switch kind {
	case KindScientific:
		return strconv.FormatFloat(v, 'e', 2, 64)
	case KindPercent:
		return decimal.NewFromFloat(v).StringFixed(2) + "%"
	case KindInteger:
		return decimal.NewFromFloat(v).Floor().String()
	case KindBool:
		if v != 0 {
			return "yes"
		}
		return "no"
	default:
		return decimal.NewFromFloat(v).StringFixed(3)
	}
}
