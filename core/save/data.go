// Package save holds the raw fields of a game save that the calculator reads.
package save

import (
	"synergism-calc/core/hepteract"
	"synergism-calc/core/quark"
)

// Data is the raw save. Numbers are float64 even where the game stores
// integers, since large values arrive in scientific notation.
type Data struct {
	WowCubes         float64
	WowTesseracts    float64
	WowHypercubes    float64
	WowPlatonicCubes float64
	WowAbyssals      float64

	SingularityCount    float64
	Challenge15Exponent float64

	// QuarksLeft is the unspent quark balance, stored as "worlds"
	QuarksLeft float64

	OverfluxPowder float64
	OverfluxOrbs   float64

	Shop       quark.Levels
	Hepteracts hepteract.Crafts

	PlatonicUpgrades []float64
	UsedCorruptions  []float64
	Achievements     []float64

	AscensionCount   float64
	AscensionCounter float64

	// SaveTime is the Unix millisecond timestamp of the save, stored as "offlinetick"
	SaveTime int64
}

// Clone returns a copy that shares no slices with d.
func (d *Data) Clone() *Data {
	c := *d
	c.PlatonicUpgrades = append([]float64(nil), d.PlatonicUpgrades...)
	c.UsedCorruptions = append([]float64(nil), d.UsedCorruptions...)
	c.Achievements = append([]float64(nil), d.Achievements...)
	return &c
}

// PlatonicUpgrade reads the upgrade at (row, column) of the 5-wide platonic grid.
// Positions outside the recorded grid read as 0.
func (d *Data) PlatonicUpgrade(row, column int) float64 {
	return at(d.PlatonicUpgrades, (row-1)*5+column)
}

// Achievement reads an achievement flag, 0 when the id is not recorded.
func (d *Data) Achievement(id int) float64 {
	return at(d.Achievements, id)
}

// CorruptionTotal sums the levels of every used corruption.
func (d *Data) CorruptionTotal() float64 {
	var sum float64
	for _, c := range d.UsedCorruptions {
		sum += c
	}
	return sum
}

func at(values []float64, i int) float64 {
	if i < 0 || i >= len(values) {
		return 0
	}
	return values[i]
}
