// Package pricing finds the shop tiers a quark budget can afford.
// A price table is a point-in-time capture of shop prices; lookups against it
// are deterministic for a fixed table and budget.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"synergism-calc/internal/errors"
)

// Row is one purchasable tier of a price table
type Row struct {
	// Tier is the 1-based position of the row in its table
	Tier int `json:"tier"`

	// Levels are the upgrade levels bought at this tier, one per level column
	Levels []int64 `json:"levels"`

	// Cost is the total quark price of the tier
	Cost decimal.Decimal `json:"cost"`
}

// Level returns the i-th level column, 0 when the row has fewer columns.
func (r Row) Level(i int) int64 {
	if i < 0 || i >= len(r.Levels) {
		return 0
	}
	return r.Levels[i]
}

// Table is an ordered price table for one upgrade category.
// Rows are expected in ascending cost order.
type Table struct {
	// Category names the upgrade group, e.g. "Acceleration"
	Category string `json:"category"`

	// Columns names the level columns of each row
	Columns []string `json:"columns"`

	Rows []Row `json:"rows"`
}

// NewTable creates a table and numbers its rows.
func NewTable(category string, columns []string, rows []Row) *Table {
	numbered := make([]Row, len(rows))
	for i, r := range rows {
		r.Tier = i + 1
		numbered[i] = r
	}
	return &Table{
		Category: category,
		Columns:  append([]string(nil), columns...),
		Rows:     numbered,
	}
}

// Lookup returns the row with the greatest cost not exceeding budget.
// Equal costs resolve to the later row.
func (t *Table) Lookup(budget decimal.Decimal) (Row, error) {
	best := -1
	for i, r := range t.Rows {
		if r.Cost.GreaterThan(budget) {
			continue
		}
		if best < 0 || r.Cost.GreaterThanOrEqual(t.Rows[best].Cost) {
			best = i
		}
	}
	if best < 0 {
		return Row{}, errors.NoAffordableTier(t.Category, budget.String())
	}
	return t.Rows[best], nil
}

// Validate checks that every row carries one level per column.
func (t *Table) Validate() error {
	if t.Category == "" {
		return errors.Input("price table has no category")
	}
	for _, r := range t.Rows {
		if len(r.Levels) != len(t.Columns) {
			return errors.Input(fmt.Sprintf("%s tier %d has %d levels, expected %d",
				t.Category, r.Tier, len(r.Levels), len(t.Columns)))
		}
		if r.Cost.IsNegative() {
			return errors.Input(fmt.Sprintf("%s tier %d has a negative cost", t.Category, r.Tier))
		}
	}
	return nil
}
