package report

import (
	"encoding/json"
	"math"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synergism-calc/core/engine"
	"synergism-calc/core/pricing"
	"synergism-calc/core/save"
	"synergism-calc/core/settings"
	"synergism-calc/internal/clock"
	"synergism-calc/internal/errors"
)

var now = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

func fixtureGame(t *testing.T) *engine.Game {
	t.Helper()
	raw, err := os.ReadFile("../save/testdata/save.json")
	require.NoError(t, err)
	d, err := save.Decode(raw)
	require.NoError(t, err)
	return engine.NewGame(engine.New(d, engine.WithClock(clock.Fixed{At: now})))
}

func catalog() pricing.Catalog {
	row := func(cost int64, a, b int64) pricing.Row {
		return pricing.Row{Levels: []int64{a, b}, Cost: decimal.NewFromInt(cost)}
	}
	return pricing.NewCatalog(
		pricing.NewTable(pricing.CategoryWowPasses, []string{"wow3", "wowY"}, []pricing.Row{row(0, 0, 0), row(9000, 5, 5)}),
		pricing.NewTable(pricing.CategoryAcceleration, []string{"accel1", "accel2"}, []pricing.Row{row(0, 0, 0), row(3000, 4, 2)}),
	)
}

func TestBuildRawStageWarnsForLaterStages(t *testing.T) {
	r := Build(fixtureGame(t), now)

	assert.Equal(t, engine.StageRaw, r.Stage)
	assert.Equal(t, now, r.GeneratedAt)
	assert.Equal(t, time.UnixMilli(1735689600000).UTC(), r.SavedAt)
	assert.NotEmpty(t, r.ID.String())

	assert.NotNil(t, r.Section(SectionRates).Metric("chronos_percent"))
	assert.Empty(t, r.Section(SectionEconomy).Metrics)
	assert.Empty(t, r.Section(SectionShop).Metrics)
	assert.Nil(t, r.Section(SectionPowder).Metric("powder_goal"))
	assert.NotNil(t, r.Section(SectionPowder).Metric("powder_tomorrow"))

	accessors := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		assert.Equal(t, errors.TypeConfigurationMissing, w.Type)
		accessors = append(accessors, w.Accessor)
	}
	assert.Equal(t, []string{
		"total_quarks", "meets_target_gain", "purchase",
		"hept_per_day", "powder_goal", "orbs_to_powder_goal",
	}, accessors)
}

func TestBuildConfiguredStageWarnsForPricing(t *testing.T) {
	g := fixtureGame(t)
	require.NoError(t, g.Configure(&settings.Settings{TargetGainPercent: 1}))

	r := Build(g, now)
	assert.Equal(t, engine.StageConfigured, r.Stage)
	assert.NotNil(t, r.Section(SectionEconomy).Metric("total_quarks"))
	require.Len(t, r.Warnings, 4)
	for _, w := range r.Warnings {
		assert.Equal(t, errors.TypePricingMissing, w.Type)
	}
}

func TestBuildPricedStage(t *testing.T) {
	g := fixtureGame(t)
	require.NoError(t, g.Configure(&settings.Settings{TargetGainPercent: 1, GenerationRate: 3}))
	require.NoError(t, g.PriceFrom(catalog()))

	r := Build(g, now)
	assert.Equal(t, engine.StagePriced, r.Stage)
	assert.Empty(t, r.Warnings)

	total := r.Section(SectionEconomy).Metric("total_quarks")
	require.NotNil(t, total)
	assert.Equal(t, KindInteger, total.Kind)

	shop := r.Section(SectionShop)
	assert.Equal(t, "5", shop.Metric("wow3").Text)
	assert.Equal(t, "2", shop.Metric("accel2").Text)
	assert.Equal(t, "1.050", shop.Metric("shop_benefit_accel").Text)
	assert.Equal(t, "1.076", shop.Metric("shop_benefit_hept").Text)

	crafts := r.Section(SectionHepteracts).Table
	require.NotNil(t, crafts)
	assert.Len(t, crafts.Rows, 8)
	assert.Equal(t, []string{"chronos", "6.40e+04", "1.31e+08", "18", "786048000"}, crafts.Rows[0])
}

func TestNewMetricOmitsNonFiniteValues(t *testing.T) {
	inf := NewMetric("orb_to_powder", "Orbs per powder", KindDecimal, math.Inf(-1))
	assert.Nil(t, inf.Value)
	assert.Equal(t, "-Inf", inf.Text)

	nan := NewMetric("x", "x", KindPercent, math.NaN())
	assert.Nil(t, nan.Value)

	data, err := json.Marshal(inf)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"value"`)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		kind Kind
		v    float64
		want string
	}{
		{KindScientific, 15320.7, "1.53e+04"},
		{KindScientific, 3e18, "3.00e+18"},
		{KindPercent, 120, "120.00%"},
		{KindPercent, 14.18567, "14.19%"},
		{KindInteger, 2.9, "2"},
		{KindInteger, -15, "-15"},
		{KindDecimal, 1.0816, "1.082"},
		{KindBool, 1, "yes"},
		{KindBool, 0, "no"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.kind, tt.v))
		})
	}
}

func TestWarnKeepsPlainErrors(t *testing.T) {
	r := &Report{}
	r.Warn(assert.AnError)
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, assert.AnError.Error(), r.Warnings[0].Message)
	assert.Empty(t, r.Warnings[0].Type)
}
