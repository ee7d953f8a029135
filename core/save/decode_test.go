package save

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"synergism-calc/core/quark"
	"synergism-calc/internal/errors"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/save.json")
	require.NoError(t, err)
	return data
}

func TestDecodeFixture(t *testing.T) {
	d, err := Decode(loadFixture(t))
	require.NoError(t, err)

	assert.Equal(t, 1.5e12, d.WowCubes)
	assert.Equal(t, 3e18, d.Challenge15Exponent)
	assert.Equal(t, 15320.7, d.QuarksLeft)
	assert.Equal(t, int64(1735689600000), d.SaveTime)
	assert.Equal(t, 100, d.Shop.Level(quark.Chronometer))
	assert.Equal(t, 1, d.Shop.Level("offeringAuto"))
	assert.Equal(t, 64000.0, d.Hepteracts.Chronos.Balance)
	assert.Equal(t, int64(6), d.Hepteracts.Chronos.Conversion)
	assert.Equal(t, 18, d.Hepteracts.Chronos.Tier())
	assert.Equal(t, int64(100000000), d.Hepteracts.Abyss.Conversion)
	assert.Equal(t, 140.0, d.CorruptionTotal())
}

func TestDecodeReportsEveryMissingField(t *testing.T) {
	_, err := Decode([]byte(`{
		"wowCubes": 1,
		"shopUpgrades": {"chronometer": 1},
		"hepteractCrafts": {"chronos": {"BAL": 1, "CAP": 1, "BASE_CAP": 1}}
	}`))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeParsing))

	msg := err.Error()
	for _, field := range []string{
		"worlds",
		"offlinetick",
		"achievements",
		"shopUpgrades.powderEX",
		"hepteractCrafts.chronos.HEPTERACT_CONVERSION",
		"hepteractCrafts.multiplier",
	} {
		assert.Contains(t, msg, field)
	}

	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Greater(t, len(multierr.Errors(domainErr.Cause)), 10)
}

func TestDecodeRejectsUnusableValues(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal(loadFixture(t), &raw))
	raw["worlds"] = 1e19
	crafts := raw["hepteractCrafts"].(map[string]any)
	crafts["quark"].(map[string]any)["BASE_CAP"] = 0
	crafts["abyss"].(map[string]any)["CAP"] = -1
	data, err := json.Marshal(raw)
	require.NoError(t, err)

	_, err = Decode(data)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeParsing))
	assert.Contains(t, err.Error(), "invalid field worlds: out of range")
	assert.Contains(t, err.Error(), "invalid field hepteractCrafts.quark.BASE_CAP: must be positive")
	assert.Contains(t, err.Error(), "invalid field hepteractCrafts.abyss.CAP: must be positive")

	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Len(t, multierr.Errors(domainErr.Cause), 3)
}

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`{"wowCubes":`))
	assert.True(t, errors.IsType(err, errors.TypeParsing))
}

func TestIndexedFieldsDegradeToZero(t *testing.T) {
	d, err := Decode(loadFixture(t))
	require.NoError(t, err)

	assert.Equal(t, 2.0, d.PlatonicUpgrade(4, 0))
	assert.Equal(t, 5.0, d.PlatonicUpgrade(4, 4))
	assert.Equal(t, 0.0, d.PlatonicUpgrade(9, 4))
	assert.Equal(t, 1.0, d.Achievement(2))
	assert.Equal(t, 0.0, d.Achievement(262))
	assert.Equal(t, 0.0, d.Achievement(-1))
}

func TestCloneSharesNothing(t *testing.T) {
	d, err := Decode(loadFixture(t))
	require.NoError(t, err)

	c := d.Clone()
	c.Achievements[1] = 0
	assert.Equal(t, 1.0, d.Achievement(1))
}
