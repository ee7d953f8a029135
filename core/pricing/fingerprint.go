package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ContentHash identifies the prices a catalog holds. Two catalogs with the
// same categories, columns and row costs hash the same regardless of how
// they were loaded.
type ContentHash string

// Short returns the first 12 hex characters.
func (h ContentHash) Short() string {
	if len(h) < 12 {
		return string(h)
	}
	return string(h[:12])
}

type hashedRow struct {
	Levels []int64 `json:"l"`
	Cost   string  `json:"c"`
}

type hashedTable struct {
	Category string      `json:"k"`
	Columns  []string    `json:"n"`
	Rows     []hashedRow `json:"r"`
}

// Hash returns the catalog's content hash, computed over categories in name order.
func (c Catalog) Hash() ContentHash {
	tables := make([]hashedTable, 0, len(c))
	for _, name := range c.Categories() {
		t := c[name]
		ht := hashedTable{Category: t.Category, Columns: t.Columns, Rows: make([]hashedRow, len(t.Rows))}
		for i, r := range t.Rows {
			ht.Rows[i] = hashedRow{Levels: r.Levels, Cost: r.Cost.String()}
		}
		tables = append(tables, ht)
	}

	data, _ := json.Marshal(tables)
	sum := sha256.Sum256(data)
	return ContentHash(hex.EncodeToString(sum[:]))
}

// Validate checks every table in the catalog.
func (c Catalog) Validate() error {
	for _, name := range c.Categories() {
		if err := c[name].Validate(); err != nil {
			return err
		}
	}
	return nil
}
