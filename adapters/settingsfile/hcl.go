package settingsfile

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"synergism-calc/core/quark"
	"synergism-calc/core/settings"
	"synergism-calc/internal/errors"
)

// HCL settings use snake_case attributes and one labelled block per cost table:
//
//	target_gain_percent = 5
//	add_uses_per_day    = 10
//	hps                 = 2.5
//
//	shop_quark_cost "seasonPass" {
//	  base = 500
//	  inc  = 250
//	}
var rootSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "target_gain_percent"},
		{Name: "add_uses_per_day"},
		{Name: "hps"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "shop_quark_cost", LabelNames: []string{"upgrade"}},
	},
}

var costSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "base", Required: true},
		{Name: "inc", Required: true},
	},
}

func parseHCL(data []byte, filename string) (*settings.Settings, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Parsing("invalid HCL settings", diags)
	}

	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, errors.Parsing("invalid HCL settings", diags)
	}

	s := &settings.Settings{ShopQuarkCost: make(map[string]quark.CostTable)}
	attrs := []struct {
		name   string
		target interface{}
	}{
		{"target_gain_percent", &s.TargetGainPercent},
		{"add_uses_per_day", &s.AddUsesPerDay},
		{"hps", &s.GenerationRate},
	}
	for _, a := range attrs {
		attr, ok := content.Attributes[a.name]
		if !ok {
			continue
		}
		if err := decodeAttr(attr, a.target); err != nil {
			return nil, err
		}
	}

	for _, block := range content.Blocks {
		name := block.Labels[0]
		if _, dup := s.ShopQuarkCost[name]; dup {
			return nil, errors.Newf(errors.TypeParsing, "%s: duplicate shop_quark_cost %q", block.DefRange, name)
		}

		body, diags := block.Body.Content(costSchema)
		if diags.HasErrors() {
			return nil, errors.Parsing("invalid shop_quark_cost "+name, diags)
		}
		var table quark.CostTable
		if err := decodeAttr(body.Attributes["base"], &table.Base); err != nil {
			return nil, err
		}
		if err := decodeAttr(body.Attributes["inc"], &table.Inc); err != nil {
			return nil, err
		}
		s.ShopQuarkCost[name] = table
	}

	return s, nil
}

// decodeAttr evaluates a constant attribute into target. Unknown and null
// values are rejected; integers must be whole numbers.
func decodeAttr(attr *hcl.Attribute, target interface{}) error {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return errors.Parsing("cannot evaluate "+attr.Name, diags)
	}
	if !val.IsKnown() || val.IsNull() {
		return errors.Newf(errors.TypeParsing, "%s: %s must be a known value", attr.Range, attr.Name)
	}
	if val.Type() != cty.Number {
		return errors.Newf(errors.TypeParsing, "%s: %s must be a number, not %s",
			attr.Range, attr.Name, val.Type().FriendlyName())
	}
	if err := gocty.FromCtyValue(val, target); err != nil {
		return errors.Wrapf(errors.TypeParsing, err, "%s: %s", attr.Range, attr.Name)
	}
	return nil
}
