package params

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCfg() SimConfig {
	cfg := Default()
	cfg.N = 10
	cfg.Z0 = 20
	cfg.Z1 = 30
	cfg.Ttx = 5
	cfg.I = 10
	cfg.MaxTime = 1000
	return cfg
}

func TestDefaultConfigPassesValidationOnceRequiredFieldsAreSet(t *testing.T) {
	assert.NoError(t, validCfg().Validate())
}

func TestValidateRejectsNonPositiveN(t *testing.T) {
	cfg := validCfg()
	cfg.N = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangePercentages(t *testing.T) {
	cfg := validCfg()
	cfg.Z0 = 101
	assert.Error(t, cfg.Validate())

	cfg = validCfg()
	cfg.Z1 = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMaxDegreeNotBelowN(t *testing.T) {
	cfg := validCfg()
	cfg.N = 5
	cfg.MaxDegree = 5
	assert.Error(t, cfg.Validate())
}

func TestDecodeTOMLOverlaysOnlyGivenFields(t *testing.T) {
	r := strings.NewReader(`
n = 50
z0 = 10
z1 = 10
ttx = 3
i = 8
max_time = 500
`)
	cfg, err := decodeTOML(r)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.N)
	assert.Equal(t, int64(50), cfg.BlockReward, "fields absent from the TOML keep their Default()")
	assert.Equal(t, 8192, cfg.BitsPerKB)
}

func TestDecodeTOMLRejectsMalformedInput(t *testing.T) {
	_, err := decodeTOML(strings.NewReader("n = ["))
	assert.Error(t, err)
}
