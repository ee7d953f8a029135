package quark

import (
	"sort"
	"strings"
)

// Upgrade names a quark shop upgrade as it appears in a save's shopUpgrades object.
type Upgrade string

// Upgrades the calculator reads directly.
const (
	Chronometer  Upgrade = "chronometer"
	Chronometer2 Upgrade = "chronometer2"
	Chronometer3 Upgrade = "chronometer3"
	Calculator3  Upgrade = "calculator3"
	PowderEX     Upgrade = "powderEX"
)

// catalog is every upgrade of the quark shop.
var catalog = map[Upgrade]bool{
	"offeringPotion": true, "obtainiumPotion": true, "offeringEX": true, "offeringAuto": true,
	"obtainiumEX": true, "obtainiumAuto": true, "instantChallenge": true, "antSpeed": true,
	"cashGrab": true, "shopTalisman": true, "seasonPass": true, "challengeExtension": true,
	"challengeTome": true, "cubeToQuark": true, "tesseractToQuark": true, "hypercubeToQuark": true,
	"seasonPass2": true, "seasonPass3": true, "chronometer": true, "infiniteAscent": true,
	"calculator": true, "calculator2": true, "calculator3": true, "calculator4": true,
	"calculator5": true, "calculator6": true, "constantEX": true, "powderEX": true,
	"chronometer2": true, "chronometer3": true, "seasonPassY": true, "seasonPassZ": true,
	"challengeTome2": true, "instantChallenge2": true, "cashGrab2": true, "chronometerZ": true,
	"cubeToQuarkAll": true, "offeringEX2": true, "obtainiumEX2": true, "seasonPassLost": true,
	"powderAuto": true, "challenge15Auto": true, "extraWarp": true, "autoWarp": true,
	"improveQuarkHept": true, "improveQuarkHept2": true, "improveQuarkHept3": true, "improveQuarkHept4": true,
	"shopImprovedDaily": true, "shopImprovedDaily2": true, "shopImprovedDaily3": true, "shopImprovedDaily4": true,
	"offeringEX3": true, "obtainiumEX3": true, "improveQuarkHept5": true, "seasonPassInfinity": true,
	"chronometerInfinity": true, "shopSingularityPenaltyDebuff": true,
	"shopAmbrosiaGeneration1": true, "shopAmbrosiaGeneration2": true, "shopAmbrosiaGeneration3": true, "shopAmbrosiaGeneration4": true,
	"shopAmbrosiaLuck1": true, "shopAmbrosiaLuck2": true, "shopAmbrosiaLuck3": true, "shopAmbrosiaLuck4": true,
}

// Required lists the upgrades a save must carry for the calculator to run.
func Required() []Upgrade {
	return []Upgrade{Chronometer, Chronometer2, Chronometer3, Calculator3, PowderEX}
}

// Known reports whether name is a quark shop upgrade.
func Known(name Upgrade) bool {
	return catalog[name]
}

// IsAutomatic reports whether the upgrade is an automation toggle.
// Automatic upgrades sit one level above the tier they were priced at.
func (u Upgrade) IsAutomatic() bool {
	return strings.HasSuffix(string(u), "Auto")
}

// Levels holds the purchased level of each shop upgrade.
type Levels struct {
	levels map[Upgrade]int
}

// NewLevels copies levels into an immutable set.
func NewLevels(levels map[Upgrade]int) Levels {
	copied := make(map[Upgrade]int, len(levels))
	for k, v := range levels {
		copied[k] = v
	}
	return Levels{levels: copied}
}

// Level returns the purchased level, 0 when the save does not record the upgrade.
func (l Levels) Level(u Upgrade) int {
	return l.levels[u]
}

// Has reports whether the save records the upgrade.
func (l Levels) Has(u Upgrade) bool {
	_, ok := l.levels[u]
	return ok
}

// Upgrades lists the recorded upgrades in name order.
func (l Levels) Upgrades() []Upgrade {
	names := make([]Upgrade, 0, len(l.levels))
	for k := range l.levels {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
