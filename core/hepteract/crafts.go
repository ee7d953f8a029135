package hepteract

// Craft names as they appear in a save's hepteractCrafts object.
const (
	Chronos          = "chronos"
	Hyperrealism     = "hyperrealism"
	Quark            = "quark"
	Challenge        = "challenge"
	Abyss            = "abyss"
	Accelerator      = "accelerator"
	AcceleratorBoost = "acceleratorBoost"
	Multiplier       = "multiplier"
)

// Names lists every craft in save order.
func Names() []string {
	return []string{
		Chronos,
		Hyperrealism,
		Quark,
		Challenge,
		Abyss,
		Accelerator,
		AcceleratorBoost,
		Multiplier,
	}
}

// Crafts is the fixed set of eight hepteract crafts.
type Crafts struct {
	Chronos          Unit `json:"chronos"`
	Hyperrealism     Unit `json:"hyperrealism"`
	Quark            Unit `json:"quark"`
	Challenge        Unit `json:"challenge"`
	Abyss            Unit `json:"abyss"`
	Accelerator      Unit `json:"accelerator"`
	AcceleratorBoost Unit `json:"acceleratorBoost"`
	Multiplier       Unit `json:"multiplier"`
}

// ByName looks up a craft by its save name.
func (c *Crafts) ByName(name string) (Unit, bool) {
	if p := c.slot(name); p != nil {
		return *p, true
	}
	return Unit{}, false
}

// Set replaces a craft by its save name. It reports false for unknown names.
// Only decoders call this; a snapshot never changes its crafts.
func (c *Crafts) Set(name string, u Unit) bool {
	p := c.slot(name)
	if p == nil {
		return false
	}
	*p = u
	return true
}

func (c *Crafts) slot(name string) *Unit {
	switch name {
	case Chronos:
		return &c.Chronos
	case Hyperrealism:
		return &c.Hyperrealism
	case Quark:
		return &c.Quark
	case Challenge:
		return &c.Challenge
	case Abyss:
		return &c.Abyss
	case Accelerator:
		return &c.Accelerator
	case AcceleratorBoost:
		return &c.AcceleratorBoost
	case Multiplier:
		return &c.Multiplier
	default:
		return nil
	}
}
