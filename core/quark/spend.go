package quark

import (
	"fmt"
	"sort"
)

// Binding pairs an upgrade's priced level with its cost table.
type Binding struct {
	Upgrade Upgrade
	Level   int
	Table   CostTable
}

// Spent is the quarks this binding accounts for.
func (b Binding) Spent() int64 {
	return b.Table.Cost(b.Level)
}

// Bind resolves every priced upgrade against the purchased levels once.
// Automatic upgrades are priced one level below their recorded level.
func Bind(levels Levels, tables map[string]CostTable) ([]Binding, error) {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	bindings := make([]Binding, 0, len(names))
	for _, name := range names {
		u := Upgrade(name)
		if !Known(u) {
			return nil, fmt.Errorf("unknown shop upgrade %q", name)
		}
		level := levels.Level(u)
		if u.IsAutomatic() {
			level--
		}
		bindings = append(bindings, Binding{Upgrade: u, Level: level, Table: tables[name]})
	}
	return bindings, nil
}

// TotalSpent sums the quarks spent across bindings.
func TotalSpent(bindings []Binding) int64 {
	var total int64
	for _, b := range bindings {
		total += b.Spent()
	}
	return total
}
