// Package pricefile loads shop price tables.
//
// The CSV form is a spreadsheet export with a two-row header: the first row
// names the category of each column (blank cells repeat the category to
// their left), the second names the column. Each category has one "cost"
// column; its other columns are upgrade levels. Rows may leave a category
// blank when it has fewer tiers than the others.
//
//	WoW Passes,,,Acceleration,,
//	wow3,wowY,cost,accel1,accel2,cost
//	0,0,0,0,0,0
//	10,10,4000,10,0,1500
//
// The YAML form lists tables explicitly:
//
//	- category: Acceleration
//	  columns: [accel1, accel2]
//	  rows:
//	    - {levels: [0, 0], cost: 0}
//	    - {levels: [10, 0], cost: 1500}
package pricefile

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"synergism-calc/core/pricing"
	"synergism-calc/internal/errors"
	"synergism-calc/internal/logging"
)

const costColumn = "cost"

// Load reads the price tables at path, choosing CSV or YAML by extension.
func Load(path string) (pricing.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "cannot read price tables %s", path)
	}

	var catalog pricing.Catalog
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		catalog, err = ParseCSV(bytes.NewReader(data))
	case ".yaml", ".yml":
		catalog, err = ParseYAML(data)
	default:
		return nil, errors.Newf(errors.TypeInput, "cannot tell the price table format of %s", path).
			WithContext("path", path)
	}
	if err != nil {
		return nil, err
	}

	logging.Debug("price tables loaded",
		zap.String("path", path),
		zap.Strings("categories", catalog.Categories()),
		zap.String("hash", catalog.Hash().Short()))
	return catalog, nil
}

type csvCategory struct {
	name    string
	columns []string
	levels  []int
	cost    int
	rows    []pricing.Row
}

// ParseCSV reads price tables from a two-row-header CSV.
func ParseCSV(r io.Reader) (pricing.Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	categoryRow, err := cr.Read()
	if err != nil {
		return nil, errors.Parsing("price table has no category row", err)
	}
	columnRow, err := cr.Read()
	if err != nil {
		return nil, errors.Parsing("price table has no column row", err)
	}

	categories, err := csvCategories(categoryRow, columnRow)
	if err != nil {
		return nil, err
	}

	for line := 3; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Parsing("invalid price table row", err).WithContext("line", line)
		}
		for _, c := range categories {
			row, ok, err := c.parse(record)
			if err != nil {
				return nil, err.WithContext("line", line)
			}
			if ok {
				c.rows = append(c.rows, row)
			}
		}
	}

	tables := make([]*pricing.Table, 0, len(categories))
	for _, c := range categories {
		tables = append(tables, pricing.NewTable(c.name, c.columns, c.rows))
	}
	catalog := pricing.NewCatalog(tables...)
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

func csvCategories(categoryRow, columnRow []string) ([]*csvCategory, error) {
	var (
		out     []*csvCategory
		current *csvCategory
	)
	for i, column := range columnRow {
		name := ""
		if i < len(categoryRow) {
			name = strings.TrimSpace(categoryRow[i])
		}
		column = strings.TrimSpace(column)

		if name != "" {
			current = &csvCategory{name: name, cost: -1}
			out = append(out, current)
		}
		if current == nil {
			if column == "" {
				continue
			}
			return nil, errors.Newf(errors.TypeParsing, "price table column %q has no category", column)
		}
		if column == "" {
			continue
		}

		if strings.EqualFold(column, costColumn) {
			current.cost = i
			continue
		}
		current.columns = append(current.columns, column)
		current.levels = append(current.levels, i)
	}

	for _, c := range out {
		if c.cost < 0 {
			return nil, errors.Newf(errors.TypeParsing, "price table category %q has no cost column", c.name)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.TypeParsing, "price table has no categories")
	}
	return out, nil
}

func (c *csvCategory) parse(record []string) (pricing.Row, bool, *errors.Error) {
	cell := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	raw := cell(c.cost)
	blank := raw == ""
	for _, i := range c.levels {
		blank = blank && cell(i) == ""
	}
	if blank {
		return pricing.Row{}, false, nil
	}

	cost, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return pricing.Row{}, false, errors.Parsing("invalid "+c.name+" cost "+strconv.Quote(raw), err)
	}

	levels := make([]int64, len(c.levels))
	for j, i := range c.levels {
		v := cell(i)
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return pricing.Row{}, false, errors.Parsing("invalid "+c.name+" "+c.columns[j]+" level "+strconv.Quote(v), err)
		}
		levels[j] = n
	}
	return pricing.Row{Levels: levels, Cost: cost}, true, nil
}

type yamlRow struct {
	Levels []int64          `yaml:"levels"`
	Cost   *decimal.Decimal `yaml:"cost"`
}

type yamlTable struct {
	Category string    `yaml:"category"`
	Columns  []string  `yaml:"columns"`
	Rows     []yamlRow `yaml:"rows"`
}

// ParseYAML reads price tables from a YAML list.
func ParseYAML(data []byte) (pricing.Catalog, error) {
	var doc []yamlTable
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Parsing("invalid YAML price tables", err)
	}

	tables := make([]*pricing.Table, 0, len(doc))
	seen := make(map[string]bool, len(doc))
	for _, t := range doc {
		if seen[t.Category] {
			return nil, errors.Newf(errors.TypeParsing, "duplicate price table category %q", t.Category)
		}
		seen[t.Category] = true

		rows := make([]pricing.Row, len(t.Rows))
		for i, r := range t.Rows {
			if r.Cost == nil {
				return nil, errors.Newf(errors.TypeParsing, "%s tier %d has no cost", t.Category, i+1)
			}
			rows[i] = pricing.Row{Levels: r.Levels, Cost: *r.Cost}
		}
		tables = append(tables, pricing.NewTable(t.Category, t.Columns, rows))
	}

	catalog := pricing.NewCatalog(tables...)
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}
