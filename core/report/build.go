package report

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"synergism-calc/core/engine"
	"synergism-calc/core/hepteract"
)

// Section names.
const (
	SectionStats      = "stats"
	SectionHepteracts = "hepteracts"
	SectionRates      = "rates"
	SectionEconomy    = "economy"
	SectionShop       = "shop"
	SectionPowder     = "powder"
)

// Build reads every value the game can provide at its current stage.
// Values of a stage not reached are skipped with a warning.
func Build(g *engine.Game, now time.Time) *Report {
	s := g.Snapshot()
	d := s.Save()

	r := &Report{
		ID:          uuid.New(),
		GeneratedAt: now.UTC(),
		SavedAt:     time.UnixMilli(d.SaveTime).UTC(),
		Stage:       g.Stage(),
	}

	r.Sections = append(r.Sections, Section{
		Name:  SectionStats,
		Title: "Stats",
		Metrics: []Metric{
			NewMetric("wow_cubes", "WoW cubes", KindScientific, d.WowCubes),
			NewMetric("wow_tesseracts", "WoW tesseracts", KindScientific, d.WowTesseracts),
			NewMetric("wow_hypercubes", "WoW hypercubes", KindScientific, d.WowHypercubes),
			NewMetric("wow_platonic_cubes", "WoW platonic cubes", KindScientific, d.WowPlatonicCubes),
			NewMetric("wow_abyssals", "WoW abyssals", KindScientific, d.WowAbyssals),
			NewMetric("buyable_hepteracts", "Buyable hepteracts", KindInteger, s.BuyableHepteracts()),
			NewMetric("singularity_count", "Singularities", KindInteger, d.SingularityCount),
			NewMetric("c15_exponent", "Challenge 15 exponent", KindScientific, d.Challenge15Exponent),
		},
	})

	crafts := &Table{Columns: []string{"craft", "balance", "cap", "tier", "to level"}}
	for _, name := range hepteract.Names() {
		u, _ := d.Hepteracts.ByName(name)
		crafts.Rows = append(crafts.Rows, []string{
			name,
			Format(KindScientific, u.Balance),
			Format(KindScientific, u.Cap),
			strconv.Itoa(u.Tier()),
			strconv.FormatInt(u.ToLevel(), 10),
		})
	}
	r.Sections = append(r.Sections, Section{Name: SectionHepteracts, Title: "Hepteracts", Table: crafts})

	r.Sections = append(r.Sections, Section{
		Name:  SectionRates,
		Title: "Rates",
		Metrics: []Metric{
			NewMetric("chronos_percent", "Chronos", KindPercent, s.ChronosPercent()),
			NewMetric("chronos_percent_next", "Chronos next tier", KindPercent, s.ChronosPercentNext()),
			NewMetric("chronos_increase", "Chronos tier gain", KindPercent, s.ChronosIncrease()),
			NewMetric("multiplier", "Ascension speed", KindDecimal, s.Multiplier()),
			NewMetric("current_ascension_timer", "Ascension timer", KindScientific, s.CurrentAscensionTimer()),
			NewMetric("orb_to_powder", "Orbs per powder", KindDecimal, s.OrbToPowder()),
		},
	})

	economy := Section{Name: SectionEconomy, Title: "Economy"}
	if v, err := g.TotalQuarks(); err != nil {
		r.Warn(err)
	} else {
		economy.Metrics = append(economy.Metrics, NewMetric("total_quarks", "Total quarks", KindInteger, float64(v)))
	}
	if v, err := g.MeetsTargetGain(); err != nil {
		r.Warn(err)
	} else {
		economy.Metrics = append(economy.Metrics, BoolMetric("meets_target_gain", "Chronos tier meets target gain", v))
	}
	r.Sections = append(r.Sections, economy)

	shop := Section{Name: SectionShop, Title: "Shop"}
	if p, err := g.Purchase(); err != nil {
		r.Warn(err)
	} else {
		shop.Metrics = append(shop.Metrics,
			NewMetric("wow3", "WoW pass 3", KindInteger, float64(p.Wow3)),
			NewMetric("wowY", "WoW pass Y", KindInteger, float64(p.WowY)),
			NewMetric("accel1", "Acceleration 1", KindInteger, float64(p.Accel1)),
			NewMetric("accel2", "Acceleration 2", KindInteger, float64(p.Accel2)),
		)
		shop.Metrics = appendPriced(r, shop.Metrics, "shop_benefit_hept", "Hepteract benefit", KindDecimal, g.ShopBenefitHept)
		shop.Metrics = appendPriced(r, shop.Metrics, "shop_benefit_accel", "Acceleration benefit", KindDecimal, g.ShopBenefitAccel)
	}
	r.Sections = append(r.Sections, shop)

	powder := Section{
		Name:  SectionPowder,
		Title: "Powder",
		Metrics: []Metric{
			NewMetric("powder_tomorrow", "Powder tomorrow", KindScientific, s.PowderTomorrow()),
			NewMetric("cube_from_powder", "Cube gain from powder", KindDecimal, s.CubeFromPowder()),
		},
	}
	powder.Metrics = appendPriced(r, powder.Metrics, "hept_per_day", "Hepteracts per day", KindScientific, g.HeptPerDay)
	powder.Metrics = appendPriced(r, powder.Metrics, "powder_goal", "Powder goal", KindScientific, g.PowderGoal)
	powder.Metrics = appendPriced(r, powder.Metrics, "orbs_to_powder_goal", "Orbs to powder goal", KindScientific, g.OrbsToPowderGoal)
	r.Sections = append(r.Sections, powder)

	return r
}

func appendPriced(r *Report, metrics []Metric, key, label string, kind Kind, read func() (float64, error)) []Metric {
	v, err := read()
	if err != nil {
		r.Warn(err)
		return metrics
	}
	return append(metrics, NewMetric(key, label, kind, v))
}
