package engine

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"synergism-calc/core/hepteract"
	"synergism-calc/core/pricing"
	"synergism-calc/core/quark"
	"synergism-calc/core/save"
	"synergism-calc/core/settings"
	"synergism-calc/internal/clock"
	"synergism-calc/internal/errors"
)

var saveTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func testSave(mutate ...func(d *save.Data)) *save.Data {
	var crafts hepteract.Crafts
	for _, name := range hepteract.Names() {
		crafts.Set(name, hepteract.Unit{Balance: 0, Cap: 1000, BaseCap: 1000, Conversion: 6})
	}
	d := &save.Data{
		Challenge15Exponent: 1e18,
		QuarksLeft:          1000.9,
		OverfluxPowder:      25000,
		OverfluxOrbs:        1200,
		Shop:                quark.NewLevels(nil),
		Hepteracts:          crafts,
		PlatonicUpgrades:    make([]float64, 21),
		UsedCorruptions:     make([]float64, 12),
		Achievements:        make([]float64, 300),
		AscensionCount:      9999,
		AscensionCounter:    120.5,
		SaveTime:            saveTime.UnixMilli(),
	}
	for _, m := range mutate {
		m(d)
	}
	return d
}

func withShop(levels map[quark.Upgrade]int) func(d *save.Data) {
	return func(d *save.Data) { d.Shop = quark.NewLevels(levels) }
}

func withChronos(u hepteract.Unit) func(d *save.Data) {
	return func(d *save.Data) { d.Hepteracts.Chronos = u }
}

func testSettings() *settings.Settings {
	return &settings.Settings{
		TargetGainPercent: 5,
		AddUsesPerDay:     10,
		GenerationRate:    2,
		ShopQuarkCost: map[string]quark.CostTable{
			"seasonPass":   {Base: 500, Inc: 250},
			"offeringAuto": {Base: 150, Inc: 25},
		},
	}
}

func testCatalog() pricing.Catalog {
	row := func(cost int64, a, b int64) pricing.Row {
		return pricing.Row{Levels: []int64{a, b}, Cost: decimal.NewFromInt(cost)}
	}
	return pricing.NewCatalog(
		pricing.NewTable(pricing.CategoryWowPasses, []string{"wow3", "wowY"}, []pricing.Row{
			row(0, 0, 0), row(4000, 10, 10),
		}),
		pricing.NewTable(pricing.CategoryAcceleration, []string{"accel1", "accel2"}, []pricing.Row{
			row(0, 0, 0), row(1500, 10, 0),
		}),
	)
}

func TestMultiplierWithEveryBoostInactive(t *testing.T) {
	levels := map[quark.Upgrade]int{quark.Chronometer: 10, quark.Chronometer2: 20, quark.Chronometer3: 2}
	s := New(testSave(withShop(levels)))

	ch, ch2, ch3 := float64(levels[quark.Chronometer]), float64(levels[quark.Chronometer2]), float64(levels[quark.Chronometer3])
	shopTerm := (1 + ch/100) * (1 + 0.5*ch2/100) * (1 + 1.5*ch3/100)

	assert.Equal(t, 1.0*shopTerm*1.0*1.0*1.0, s.Multiplier())
}

func TestMultiplierWithEveryBoostActive(t *testing.T) {
	s := New(testSave(
		withShop(map[quark.Upgrade]int{quark.Chronometer: 100, quark.Chronometer2: 50, quark.Chronometer3: 10}),
		withChronos(hepteract.Unit{Balance: 64000, Cap: 131072000, BaseCap: 1000, Conversion: 6}),
		func(d *save.Data) {
			d.Challenge15Exponent = 1.5e18 * 1024
			for i := 2; i < len(d.UsedCorruptions); i++ {
				d.UsedCorruptions[i] = 14
			}
			d.PlatonicUpgrades[15] = 2
			d.Achievements[262] = 1
			d.Achievements[263] = 1
		},
	))

	c15 := 1.25
	shop := 2.0 * 1.25 * 1.15
	omega := 1 + 0.002*140*2
	chronos := 1 + 0.6/1000*2000
	achievements := 1.04 * 1.04

	assert.InDelta(t, c15*shop*omega*chronos*achievements, s.Multiplier(), 1e-9)
}

func TestChronosPercents(t *testing.T) {
	s := New(testSave(withChronos(hepteract.Unit{Balance: 64000, Cap: 128000, BaseCap: 1000, Conversion: 6})))

	current := 1000 * math.Pow(64, 1.0/6) * 0.06
	next := 1000 * math.Pow(256, 1.0/6) * 0.06

	assert.InDelta(t, 120.0, s.ChronosPercent(), 1e-9)
	assert.InDelta(t, current, s.ChronosPercent(), 1e-9)
	assert.InDelta(t, next, s.ChronosPercentNext(), 1e-9)
	assert.InDelta(t, ((next+100)/(current+100)-1)*100, s.ChronosIncrease(), 1e-9)
}

func TestChronosPercentsUseU44(t *testing.T) {
	s := New(testSave(
		withChronos(hepteract.Unit{Balance: 8000, Cap: 8000, BaseCap: 1000, Conversion: 6}),
		func(d *save.Data) { d.PlatonicUpgrades[19] = 15 },
	))

	exponent := 1.0/6 + 15.0/750
	assert.Equal(t, 15.0, s.U44())
	assert.InDelta(t, 1000*math.Pow(8, exponent)*0.06, s.ChronosPercent(), 1e-9)
	assert.InDelta(t, 1000*math.Pow(16, exponent)*0.06, s.ChronosPercentNext(), 1e-9)
}

func TestCurrentAscensionTimerUsesInjectedClock(t *testing.T) {
	s := New(testSave(withShop(map[quark.Upgrade]int{quark.Chronometer: 100})),
		WithClock(clock.Fixed{At: saveTime.Add(100 * time.Second)}))

	assert.Equal(t, 2.0, s.Multiplier())
	assert.InDelta(t, 100*2.0+120.5, s.CurrentAscensionTimer(), 1e-9)
}

func TestOrbToPowder(t *testing.T) {
	s := New(testSave(
		withShop(map[quark.Upgrade]int{quark.PowderEX: 25}),
		func(d *save.Data) {
			d.Challenge15Exponent = c15PowderBase * math.Pow(2, 50)
			d.Achievements[256] = 1
			d.PlatonicUpgrades[16] = 10
		},
	))

	denominator := 0.01 * 2 * 1.5 * 1.05 * 1 * 1.1
	assert.InDelta(t, 1/denominator, s.OrbToPowder(), 1e-9)
	assert.InDelta(t, 25000+1200*denominator, s.PowderTomorrow(), 1e-6)
}

func TestCubeFromPowderRegimes(t *testing.T) {
	tests := []struct {
		name   string
		powder float64
		want   float64
	}{
		{"linear below the switch", 5000, 0.5},
		{"linear at the switch", 10000, 1},
		{"log squared above", 1e6, 36.0 / 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(testSave(func(d *save.Data) {
				d.OverfluxPowder = tt.powder
				d.OverfluxOrbs = 0
			}))
			assert.InDelta(t, tt.want, s.CubeFromPowder(), 1e-9)
		})
	}
}

func TestBuyableHepteracts(t *testing.T) {
	s := New(testSave(func(d *save.Data) { d.WowAbyssals = 1234.9 }))
	assert.Equal(t, 1234.0, s.BuyableHepteracts())
}

func TestTotalQuarks(t *testing.T) {
	s := New(testSave(withShop(map[quark.Upgrade]int{"seasonPass": 3, "offeringAuto": 1})))
	c, err := s.Configure(testSettings())
	require.NoError(t, err)

	assert.Equal(t, int64(1000+1875+0-15), c.TotalQuarks())
	assert.Len(t, c.Bindings(), 2)
}

func TestTotalQuarksWithFreeTables(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		quarksLeft := rapid.Float64Range(0, 1e12).Draw(t, "quarksLeft")
		names := rapid.SliceOfDistinct(rapid.SampledFrom([]string{
			"seasonPass", "seasonPass2", "chronometer", "offeringAuto", "obtainiumAuto", "cashGrab",
		}), rapid.ID[string]).Draw(t, "upgrades")

		levels := make(map[quark.Upgrade]int)
		tables := make(map[string]quark.CostTable)
		for _, n := range names {
			levels[quark.Upgrade(n)] = rapid.IntRange(0, 100).Draw(t, n)
			tables[n] = quark.CostTable{}
		}

		s := New(testSave(withShop(levels), func(d *save.Data) { d.QuarksLeft = quarksLeft }))
		c, err := s.Configure(&settings.Settings{ShopQuarkCost: tables})
		if err != nil {
			t.Fatalf("configure: %v", err)
		}
		if got, want := c.TotalQuarks(), int64(math.Floor(quarksLeft))-15; got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	})
}

func TestFloorInt64Saturates(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{15320.7, 15320},
		{-0.5, -1},
		{1e19, math.MaxInt64},
		{-1e19, math.MinInt64},
		{math.Inf(1), math.MaxInt64},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, floorInt64(tt.in), "floor of %v", tt.in)
	}
}

func TestShopBenefitThresholds(t *testing.T) {
	tests := []struct {
		name       string
		quarksLeft float64
		accel      float64
		hept       float64
	}{
		{"below both", 1500, 0, 0},
		{"acceleration only", 3000, 1.1, 0},
		{"both", 6000, 1.1, 1.155},
	}

	purchase := pricing.Purchase{Wow3: 10, WowY: 10, Accel1: 10}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(testSave(func(d *save.Data) { d.QuarksLeft = tt.quarksLeft }))
			c, err := s.Configure(&settings.Settings{})
			require.NoError(t, err)
			p, err := c.Price(purchase)
			require.NoError(t, err)

			assert.Equal(t, tt.accel, p.ShopBenefitAccel())
			assert.Equal(t, tt.hept, p.ShopBenefitHept())
			assert.Equal(t, purchase, p.Purchase())
		})
	}
}

func TestHeptPerDay(t *testing.T) {
	s := New(testSave(
		withShop(map[quark.Upgrade]int{quark.Calculator3: 5, quark.Chronometer: 100}),
		func(d *save.Data) { d.QuarksLeft = 1e6 },
	))
	c, err := s.Configure(testSettings())
	require.NoError(t, err)
	p, err := c.Price(pricing.Purchase{Wow3: 10, WowY: 10})
	require.NoError(t, err)

	assert.InDelta(t, 1.155*2*2.0*(86400+10*60*5), p.HeptPerDay(), 1e-6)
}

func TestPowderGoal(t *testing.T) {
	priced := func(t *testing.T, mutate ...func(d *save.Data)) *Priced {
		t.Helper()
		s := New(testSave(mutate...))
		c, err := s.Configure(&settings.Settings{GenerationRate: 1e6})
		require.NoError(t, err)
		p, err := c.Price(pricing.Purchase{Wow3: 10, WowY: 10})
		require.NoError(t, err)
		return p
	}

	t.Run("nested inverse far from the goal", func(t *testing.T) {
		p := priced(t,
			withChronos(hepteract.Unit{Balance: 64000, Cap: 1000 * math.Pow(2, 30), BaseCap: 1000, Conversion: 6}),
			withShop(map[quark.Upgrade]int{quark.PowderEX: 25}),
			func(d *save.Data) { d.Challenge15Exponent = c15PowderBase * math.Pow(2, 50) },
		)

		f5 := p.HeptsSmallIncrement()
		e5 := p.PowderDecay()
		g7 := 25000.0
		first := f5 / (math.Pow(g7, e5-1) - 1)
		require.GreaterOrEqual(t, first, 10000.0)

		nested := f5 / (math.Pow(f5/(math.Pow(f5/(math.Pow(f5/(math.Pow(g7, e5-1)-1), e5-1)-1), e5-1)-1), e5-1) - 1)
		cube := p.CubeFromPowder()
		want := nested / (cube + 1) * cube

		assert.InDelta(t, want, p.PowderGoal(), math.Abs(want)*1e-12)
		assert.InDelta(t, (want-25000)*p.OrbToPowder()-1200, p.OrbsToPowderGoal(), math.Abs(want)*1e-9)
	})

	t.Run("close to the goal falls back to the regime switch", func(t *testing.T) {
		p := priced(t,
			withChronos(hepteract.Unit{Balance: 999.9, Cap: 1000, BaseCap: 1000, Conversion: 6}),
			func(d *save.Data) { d.Challenge15Exponent = c15PowderBase * math.Pow(2, 50) },
		)

		assert.Equal(t, int64(1), p.Save().Hepteracts.Chronos.ToLevel())
		assert.Equal(t, 10000.0, p.PowderGoal())
	})

	t.Run("guard passes with a negative conversion rate", func(t *testing.T) {
		p := priced(t, func(d *save.Data) {
			d.QuarksLeft = 1e6
			d.Challenge15Exponent = c15PowderBase * math.Pow(2, -100)
		})

		require.Less(t, p.OrbToPowder(), 0.0)
		assert.InDelta(t, 1.155*1e6*86400, p.HeptPerDay(), 1e-3)
		want := 25000 + math.Floor(p.HeptPerDay()/24/250000)/p.OrbToPowder()
		assert.InDelta(t, want, p.PowderGoal(), 1e-9)
	})
}

func TestLifecycle(t *testing.T) {
	s := New(testSave(
		withShop(map[quark.Upgrade]int{"offeringAuto": 1}),
		func(d *save.Data) { d.QuarksLeft = 1e6 },
	))
	g := NewGame(s)
	assert.Equal(t, StageRaw, g.Stage())

	_, err := g.TotalQuarks()
	assert.True(t, errors.IsType(err, errors.TypeConfigurationMissing))
	_, err = g.MeetsTargetGain()
	assert.True(t, errors.IsType(err, errors.TypeConfigurationMissing))
	_, err = g.PowderGoal()
	assert.True(t, errors.IsType(err, errors.TypeConfigurationMissing))
	assert.True(t, errors.IsType(g.Price(pricing.Purchase{}), errors.TypeConfigurationMissing))

	require.NoError(t, g.Configure(testSettings()))
	assert.Equal(t, StageConfigured, g.Stage())
	assert.True(t, errors.IsType(g.Configure(testSettings()), errors.TypeLifecycle))

	quarks, err := g.TotalQuarks()
	require.NoError(t, err)
	assert.Equal(t, int64(1e6-15), quarks)

	for name, read := range map[string]func() (float64, error){
		"shop_benefit_hept":   g.ShopBenefitHept,
		"shop_benefit_accel":  g.ShopBenefitAccel,
		"hept_per_day":        g.HeptPerDay,
		"powder_goal":         g.PowderGoal,
		"orbs_to_powder_goal": g.OrbsToPowderGoal,
	} {
		_, err := read()
		assert.True(t, errors.IsType(err, errors.TypePricingMissing), name)
	}
	_, err = g.Purchase()
	assert.True(t, errors.IsType(err, errors.TypePricingMissing))

	require.NoError(t, g.PriceFrom(testCatalog()))
	assert.Equal(t, StagePriced, g.Stage())
	assert.True(t, errors.IsType(g.Price(pricing.Purchase{}), errors.TypeLifecycle))

	for name, read := range map[string]func() (float64, error){
		"shop_benefit_hept":   g.ShopBenefitHept,
		"shop_benefit_accel":  g.ShopBenefitAccel,
		"hept_per_day":        g.HeptPerDay,
		"powder_goal":         g.PowderGoal,
		"orbs_to_powder_goal": g.OrbsToPowderGoal,
	} {
		_, err := read()
		assert.NoError(t, err, name)
	}

	purchase, err := g.Purchase()
	require.NoError(t, err)
	assert.Equal(t, int64(10), purchase.Wow3)
	assert.Equal(t, int64(10), purchase.Accel1)
	assert.Equal(t, 1.155, mustFloat(t, g.ShopBenefitHept))
}

func TestConfigureRejectsUnknownUpgrade(t *testing.T) {
	s := New(testSave())
	_, err := s.Configure(&settings.Settings{ShopQuarkCost: map[string]quark.CostTable{"warpDrive": {}}})
	assert.True(t, errors.IsType(err, errors.TypeInput))

	_, err = s.Configured()
	assert.True(t, errors.IsType(err, errors.TypeConfigurationMissing))
}

func TestPriceFromWithoutAffordableTier(t *testing.T) {
	s := New(testSave(func(d *save.Data) { d.QuarksLeft = 0 }))
	c, err := s.Configure(&settings.Settings{})
	require.NoError(t, err)

	_, err = c.PriceFrom(testCatalog())
	assert.True(t, errors.IsType(err, errors.TypeNoAffordableTier))
	assert.Equal(t, StageConfigured, s.Stage())
}

func TestSnapshotCopiesSave(t *testing.T) {
	d := testSave()
	s := New(d)
	d.Achievements[262] = 1
	d.Challenge15Exponent = 1e30

	assert.Equal(t, 0.0, s.Save().Achievement(262))
	assert.Equal(t, 1e18, s.Save().Challenge15Exponent)
}

func TestConcurrentReadsAgree(t *testing.T) {
	s := New(testSave(withChronos(hepteract.Unit{Balance: 64000, Cap: 131072000, BaseCap: 1000, Conversion: 6})))
	c, err := s.Configure(testSettings())
	require.NoError(t, err)
	p, err := c.Price(pricing.Purchase{Wow3: 1, WowY: 1})
	require.NoError(t, err)

	const readers = 16
	results := make([]float64, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Multiplier() + p.ChronosIncrease() + p.PowderGoal() + float64(p.TotalQuarks())
		}(i)
	}
	wg.Wait()

	for _, r := range results[1:] {
		assert.Equal(t, results[0], r)
	}
}

func TestMeetsTargetGain(t *testing.T) {
	s := New(testSave(withChronos(hepteract.Unit{Balance: 64000, Cap: 128000, BaseCap: 1000, Conversion: 6})))
	cfg := testSettings()
	cfg.TargetGainPercent = 14
	c, err := s.Configure(cfg)
	require.NoError(t, err)
	assert.True(t, c.MeetsTargetGain())

	s2 := New(testSave(withChronos(hepteract.Unit{Balance: 64000, Cap: 128000, BaseCap: 1000, Conversion: 6})))
	cfg.TargetGainPercent = 15
	c2, err := s2.Configure(cfg)
	require.NoError(t, err)
	assert.False(t, c2.MeetsTargetGain())
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "raw", StageRaw.String())
	assert.Equal(t, "configured", StageConfigured.String())
	assert.Equal(t, "priced", StagePriced.String())
	assert.Equal(t, "unknown", Stage(9).String())
}

func TestStageTextRoundTrip(t *testing.T) {
	for _, stage := range []Stage{StageRaw, StageConfigured, StagePriced} {
		text, err := stage.MarshalText()
		require.NoError(t, err)

		var parsed Stage
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, stage, parsed)
	}

	var parsed Stage
	assert.True(t, errors.IsType(parsed.UnmarshalText([]byte("sealed")), errors.TypeParsing))
}

func mustFloat(t *testing.T, read func() (float64, error)) float64 {
	t.Helper()
	v, err := read()
	require.NoError(t, err)
	return v
}
