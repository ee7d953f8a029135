package save

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/multierr"

	"synergism-calc/core/hepteract"
	"synergism-calc/core/quark"
	"synergism-calc/internal/errors"
)

type wireHepteract struct {
	Balance    *float64 `json:"BAL"`
	Cap        *float64 `json:"CAP"`
	BaseCap    *float64 `json:"BASE_CAP"`
	Conversion *float64 `json:"HEPTERACT_CONVERSION"`
}

type wireSave struct {
	WowCubes            *float64                  `json:"wowCubes"`
	WowTesseracts       *float64                  `json:"wowTesseracts"`
	WowHypercubes       *float64                  `json:"wowHypercubes"`
	WowPlatonicCubes    *float64                  `json:"wowPlatonicCubes"`
	WowAbyssals         *float64                  `json:"wowAbyssals"`
	SingularityCount    *float64                  `json:"singularityCount"`
	Challenge15Exponent *float64                  `json:"challenge15Exponent"`
	Worlds              *float64                  `json:"worlds"`
	OverfluxPowder      *float64                  `json:"overfluxPowder"`
	OverfluxOrbs        *float64                  `json:"overfluxOrbs"`
	ShopUpgrades        map[string]float64        `json:"shopUpgrades"`
	HepteractCrafts     map[string]*wireHepteract `json:"hepteractCrafts"`
	PlatonicUpgrades    []float64                 `json:"platonicUpgrades"`
	UsedCorruptions     []float64                 `json:"usedCorruptions"`
	Achievements        []float64                 `json:"achievements"`
	AscensionCount      *float64                  `json:"ascensionCount"`
	AscensionCounter    *float64                  `json:"ascensionCounter"`
	OfflineTick         *float64                  `json:"offlinetick"`
}

// Decode parses the save JSON. Every missing required field is reported in one error.
// Unknown fields are ignored; a save carries far more than the calculator reads.
func Decode(data []byte) (*Data, error) {
	var w wireSave
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&w); err != nil {
		return nil, errors.Parsing("save is not valid JSON", err)
	}

	r := &reader{}
	d := &Data{
		WowCubes:            r.number("wowCubes", w.WowCubes),
		WowTesseracts:       r.number("wowTesseracts", w.WowTesseracts),
		WowHypercubes:       r.number("wowHypercubes", w.WowHypercubes),
		WowPlatonicCubes:    r.number("wowPlatonicCubes", w.WowPlatonicCubes),
		WowAbyssals:         r.number("wowAbyssals", w.WowAbyssals),
		SingularityCount:    r.number("singularityCount", w.SingularityCount),
		Challenge15Exponent: r.number("challenge15Exponent", w.Challenge15Exponent),
		QuarksLeft:          r.quarks("worlds", w.Worlds),
		OverfluxPowder:      r.number("overfluxPowder", w.OverfluxPowder),
		OverfluxOrbs:        r.number("overfluxOrbs", w.OverfluxOrbs),
		PlatonicUpgrades:    r.list("platonicUpgrades", w.PlatonicUpgrades),
		UsedCorruptions:     r.list("usedCorruptions", w.UsedCorruptions),
		Achievements:        r.list("achievements", w.Achievements),
		AscensionCount:      r.number("ascensionCount", w.AscensionCount),
		AscensionCounter:    r.number("ascensionCounter", w.AscensionCounter),
		SaveTime:            int64(r.number("offlinetick", w.OfflineTick)),
	}
	d.Shop = r.shop(w.ShopUpgrades)
	d.Hepteracts = r.crafts(w.HepteractCrafts)

	if r.err != nil {
		return nil, errors.Parsing("save has missing or invalid fields", r.err).
			WithContext("fields", len(multierr.Errors(r.err)))
	}
	return d, nil
}

// reader accumulates missing-field errors while the save is read.
type reader struct {
	err error
}

func (r *reader) missing(field string) {
	r.err = multierr.Append(r.err, fmt.Errorf("missing field %s", field))
}

func (r *reader) number(field string, v *float64) float64 {
	if v == nil {
		r.missing(field)
		return 0
	}
	return *v
}

func (r *reader) invalid(field, reason string) {
	r.err = multierr.Append(r.err, fmt.Errorf("invalid field %s: %s", field, reason))
}

// positive reads a capacity; tiers are derived from its logarithm.
func (r *reader) positive(field string, v *float64) float64 {
	n := r.number(field, v)
	if v != nil && n <= 0 {
		r.invalid(field, "must be positive")
	}
	return n
}

// quarks reads a balance that is later floored into an int64.
func (r *reader) quarks(field string, v *float64) float64 {
	n := r.number(field, v)
	if math.Abs(n) >= math.MaxInt64 {
		r.invalid(field, "out of range")
	}
	return n
}

func (r *reader) list(field string, v []float64) []float64 {
	if v == nil {
		r.missing(field)
	}
	return v
}

func (r *reader) shop(raw map[string]float64) quark.Levels {
	if raw == nil {
		r.missing("shopUpgrades")
		return quark.NewLevels(nil)
	}
	levels := make(map[quark.Upgrade]int, len(raw))
	for name, v := range raw {
		levels[quark.Upgrade(name)] = int(math.Floor(v))
	}
	for _, u := range quark.Required() {
		if _, ok := raw[string(u)]; !ok {
			r.missing("shopUpgrades." + string(u))
		}
	}
	return quark.NewLevels(levels)
}

func (r *reader) crafts(raw map[string]*wireHepteract) hepteract.Crafts {
	var crafts hepteract.Crafts
	if raw == nil {
		r.missing("hepteractCrafts")
		return crafts
	}
	for _, name := range hepteract.Names() {
		w := raw[name]
		if w == nil {
			r.missing("hepteractCrafts." + name)
			continue
		}
		prefix := "hepteractCrafts." + name + "."
		crafts.Set(name, hepteract.Unit{
			Balance:    r.number(prefix+"BAL", w.Balance),
			Cap:        r.positive(prefix+"CAP", w.Cap),
			BaseCap:    r.positive(prefix+"BASE_CAP", w.BaseCap),
			Conversion: int64(r.number(prefix+"HEPTERACT_CONVERSION", w.Conversion)),
		})
	}
	return crafts
}
