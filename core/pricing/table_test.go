package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"synergism-calc/internal/errors"
)

func row(cost int64, levels ...int64) Row {
	return Row{Levels: levels, Cost: decimal.NewFromInt(cost)}
}

func TestLookupPicksMostExpensiveAffordableTier(t *testing.T) {
	table := NewTable("Acceleration", []string{"accel1"}, []Row{row(100, 1), row(500, 2), row(1000, 3)})

	tests := []struct {
		name   string
		budget int64
		tier   int
	}{
		{"between tiers", 600, 2},
		{"exactly on a tier", 500, 2},
		{"above every tier", 5000, 3},
		{"exactly the cheapest", 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Lookup(decimal.NewFromInt(tt.budget))
			require.NoError(t, err)
			assert.Equal(t, tt.tier, got.Tier)
		})
	}
}

func TestLookupBelowEveryTier(t *testing.T) {
	table := NewTable("Acceleration", []string{"accel1"}, []Row{row(100, 1), row(500, 2), row(1000, 3)})

	_, err := table.Lookup(decimal.NewFromInt(50))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNoAffordableTier))
}

func TestLookupTiesResolveToLaterRow(t *testing.T) {
	table := NewTable("WoW Passes", []string{"wow3", "wowY"}, []Row{row(0, 0, 0), row(300, 1, 0), row(300, 0, 2)})

	got, err := table.Lookup(decimal.NewFromInt(400))
	require.NoError(t, err)
	assert.Equal(t, 3, got.Tier)
	assert.Equal(t, int64(2), got.Level(1))
	assert.Equal(t, int64(0), got.Level(5))
}

func TestLookupNeverExceedsBudget(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		costs := rapid.SliceOfN(rapid.Int64Range(0, 1_000_000), 1, 20).Draw(t, "costs")
		rows := make([]Row, len(costs))
		for i, c := range costs {
			rows[i] = row(c, int64(i))
		}
		table := NewTable("Acceleration", []string{"accel1"}, rows)
		budget := decimal.NewFromInt(rapid.Int64Range(0, 1_000_000).Draw(t, "budget"))

		got, err := table.Lookup(budget)
		if err != nil {
			for _, r := range table.Rows {
				if r.Cost.LessThanOrEqual(budget) {
					t.Fatalf("tier %d costs %s within budget %s but lookup failed", r.Tier, r.Cost, budget)
				}
			}
			return
		}
		if got.Cost.GreaterThan(budget) {
			t.Fatalf("picked tier %d costing %s over budget %s", got.Tier, got.Cost, budget)
		}
		for _, r := range table.Rows {
			if r.Cost.LessThanOrEqual(budget) && r.Cost.GreaterThan(got.Cost) {
				t.Fatalf("tier %d costs %s, more than picked %s yet affordable", r.Tier, r.Cost, got.Cost)
			}
		}
	})
}

func TestValidate(t *testing.T) {
	ok := NewTable("Acceleration", []string{"accel1", "accel2"}, []Row{row(10, 1, 0)})
	assert.NoError(t, ok.Validate())

	short := NewTable("Acceleration", []string{"accel1", "accel2"}, []Row{row(10, 1)})
	assert.True(t, errors.IsType(short.Validate(), errors.TypeInput))

	negative := NewTable("Acceleration", []string{"accel1"}, []Row{row(-1, 1)})
	assert.Error(t, negative.Validate())

	unnamed := NewTable("", nil, nil)
	assert.Error(t, unnamed.Validate())
}
