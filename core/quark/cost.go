// Package quark prices quark shop upgrades.
package quark

// CostTable prices the levels of one shop upgrade: level n costs base + inc*n,
// so buying levels 1..n costs floor((base + inc*n) * n / 2).
type CostTable struct {
	Base int64 `json:"base" yaml:"base"`
	Inc  int64 `json:"inc" yaml:"inc"`
}

// Cost returns the quarks spent to reach level.
// Negative levels occur for automatic upgrades at level 0 and floor toward -inf.
func (c CostTable) Cost(level int) int64 {
	n := int64(level)
	return floorDiv((c.Base+c.Inc*n)*n, 2)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
