package engine

import "synergism-calc/internal/errors"

// Stage is how far a snapshot has been initialized.
type Stage int

const (
	// StageRaw snapshots expose only save-derived values
	StageRaw Stage = iota

	// StageConfigured snapshots have settings attached
	StageConfigured

	// StagePriced snapshots have shop purchases attached
	StagePriced
)

// String returns the stage name
func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageConfigured:
		return "configured"
	case StagePriced:
		return "priced"
	default:
		return "unknown"
	}
}

// MarshalText renders the stage name in reports.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a stage name written by MarshalText.
func (s *Stage) UnmarshalText(text []byte) error {
	switch string(text) {
	case "raw":
		*s = StageRaw
	case "configured":
		*s = StageConfigured
	case "priced":
		*s = StagePriced
	default:
		return errors.Newf(errors.TypeParsing, "unknown stage %q", text)
	}
	return nil
}
