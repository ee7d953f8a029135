package report

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Change is a metric whose value differs between two reports.
type Change struct {
	Section string  `json:"section"`
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Kind    Kind    `json:"kind"`
	Old     float64 `json:"old"`
	New     float64 `json:"new"`
	Delta   float64 `json:"delta"`

	// DeltaPercent is omitted when the old value is zero
	DeltaPercent *float64 `json:"delta_percent,omitempty"`
}

// Comparison is the progress between two reports of the same player.
type Comparison struct {
	OldID        uuid.UUID `json:"old_id"`
	NewID        uuid.UUID `json:"new_id"`
	OldSavedAt   time.Time `json:"old_saved_at"`
	NewSavedAt   time.Time `json:"new_saved_at"`
	ElapsedHours float64   `json:"elapsed_hours"`
	Changes      []Change  `json:"changes"`

	// Added names metrics ("section.key") only the newer report has a value for
	Added []string `json:"added,omitempty"`
}

// Compare lists the numeric metrics that changed from older to newer,
// in the newer report's order.
func Compare(older, newer *Report) *Comparison {
	c := &Comparison{
		OldID:        older.ID,
		NewID:        newer.ID,
		OldSavedAt:   older.SavedAt,
		NewSavedAt:   newer.SavedAt,
		ElapsedHours: newer.SavedAt.Sub(older.SavedAt).Hours(),
		Changes:      []Change{},
	}

	for _, s := range newer.Sections {
		prev := older.Section(s.Name)
		for _, m := range s.Metrics {
			if m.Value == nil {
				continue
			}
			was := prev.Metric(m.Key)
			if was == nil || was.Value == nil {
				c.Added = append(c.Added, s.Name+"."+m.Key)
				continue
			}
			if *was.Value == *m.Value {
				continue
			}

			ch := Change{
				Section: s.Name,
				Key:     m.Key,
				Label:   m.Label,
				Kind:    m.Kind,
				Old:     *was.Value,
				New:     *m.Value,
				Delta:   *m.Value - *was.Value,
			}
			if *was.Value != 0 {
				pct := ch.Delta / math.Abs(*was.Value) * 100
				ch.DeltaPercent = &pct
			}
			c.Changes = append(c.Changes, ch)
		}
	}
	return c
}
