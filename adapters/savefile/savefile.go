// Package savefile reads exported game saves.
// An export is a base64 wrapped JSON document; plain JSON is accepted as well.
package savefile

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"unicode"

	"go.uber.org/zap"

	"synergism-calc/core/save"
	"synergism-calc/internal/errors"
	"synergism-calc/internal/logging"
)

// ExportChunkSize is the largest piece of an export the game's import box accepts.
const ExportChunkSize = 49000

// Decode unwraps an export into its JSON document.
func Decode(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.Input("save export is empty")
	}
	if trimmed[0] == '{' {
		return trimmed, nil
	}

	compact := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, trimmed)

	enc := base64.StdEncoding
	if len(compact)%4 != 0 {
		enc = base64.RawStdEncoding
	}
	out := make([]byte, enc.DecodedLen(len(compact)))
	n, err := enc.Decode(out, compact)
	if err != nil {
		return nil, errors.Parsing("save export is not valid base64", err)
	}
	out = out[:n]

	if !json.Valid(out) {
		return nil, errors.New(errors.TypeParsing, "decoded save export is not JSON")
	}
	return out, nil
}

// Parse decodes an export and reads the save fields.
func Parse(raw []byte) (*save.Data, error) {
	doc, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return save.Decode(doc)
}

// Load reads and parses the export at path.
func Load(path string) (*save.Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "cannot read save %s", path)
	}
	d, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	logging.Debug("save loaded", zap.String("path", path), zap.Int("bytes", len(raw)))
	return d, nil
}

// Pretty re-indents a decoded JSON document.
func Pretty(doc []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "    "); err != nil {
		return nil, errors.Parsing("cannot indent save", err)
	}
	return buf.Bytes(), nil
}

// Chunks splits s into pieces of at most size runes.
func Chunks(s string, size int) []string {
	if size <= 0 {
		return []string{s}
	}
	runes := []rune(s)
	var out []string
	for len(runes) > size {
		out = append(out, string(runes[:size]))
		runes = runes[size:]
	}
	return append(out, string(runes))
}
