package pricing

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"synergism-calc/internal/errors"
)

// Price table categories the calculator buys from.
const (
	CategoryWowPasses    = "WoW Passes"
	CategoryAcceleration = "Acceleration"
)

// Catalog holds the price tables of a shop by category.
type Catalog map[string]*Table

// NewCatalog indexes tables by category.
func NewCatalog(tables ...*Table) Catalog {
	c := make(Catalog, len(tables))
	for _, t := range tables {
		c[t.Category] = t
	}
	return c
}

// Categories lists the catalog's categories in name order.
func (c Catalog) Categories() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Purchase is the pair of shop tiers bought with a budget.
type Purchase struct {
	Wow3      int64           `json:"wow3"`
	WowY      int64           `json:"wowY"`
	WowCost   decimal.Decimal `json:"wowCost"`
	Accel1    int64           `json:"accel1"`
	Accel2    int64           `json:"accel2"`
	AccelCost decimal.Decimal `json:"accelCost"`
}

// Purchase looks up the most expensive affordable WoW pass and acceleration tiers.
func (c Catalog) Purchase(budget decimal.Decimal) (Purchase, error) {
	wow, err := c.lookup(CategoryWowPasses, budget)
	if err != nil {
		return Purchase{}, err
	}
	accel, err := c.lookup(CategoryAcceleration, budget)
	if err != nil {
		return Purchase{}, err
	}
	return Purchase{
		Wow3:      wow.Level(0),
		WowY:      wow.Level(1),
		WowCost:   wow.Cost,
		Accel1:    accel.Level(0),
		Accel2:    accel.Level(1),
		AccelCost: accel.Cost,
	}, nil
}

func (c Catalog) lookup(category string, budget decimal.Decimal) (Row, error) {
	t, ok := c[category]
	if !ok {
		return Row{}, errors.Newf(errors.TypeInput, "price table has no %q category", category).
			WithContext("category", category)
	}
	return t.Lookup(budget)
}

// Benefit is the multiplier granted by owning tiers a and b of a shop pair:
// 1 + 0.01a + 0.005b + 0.00005ab, rounded to 3 decimals. The sum is taken in
// float64 and rounded on its exact binary value; exact ties go half-to-even.
func Benefit(a, b int64) float64 {
	fa, fb := float64(a), float64(b)
	v := 1 + 0.01*fa + fb*0.005 + 0.01*fa*fb*0.005
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 3, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// HepteractBenefit is the WoW pass benefit of the purchase.
func (p Purchase) HepteractBenefit() float64 {
	return Benefit(p.Wow3, p.WowY)
}

// AcceleratorBenefit is the acceleration benefit of the purchase.
func (p Purchase) AcceleratorBenefit() float64 {
	return Benefit(p.Accel1, p.Accel2)
}
