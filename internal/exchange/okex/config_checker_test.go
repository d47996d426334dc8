package okex

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigCheckerDefaults(t *testing.T) {
	cfg := NewConfigChecker("okex").Defaults()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "okex", cfg.Type)
	assert.Equal(t, "OKEx", cfg.Name)
	assert.False(t, cfg.RequirePair)
	assert.False(t, cfg.Verbose)
	assert.True(t, cfg.FeesPercent.Equal(decimal.RequireFromString("0.2")), "feesPercent = %s", cfg.FeesPercent)
	assert.Equal(t, 3, cfg.Throttle.Global.MaxRequestsPerSecond)
}

func TestDefaultCredentialsEmpty(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, cfg.Key)
	assert.Empty(t, cfg.Secret)
	assert.False(t, cfg.HasCredentials())
}

func TestDefaultEmulatedFeatures(t *testing.T) {
	cfg := Defaults()
	for name, f := range cfg.Features() {
		assert.True(t, f.Enabled, name)
		assert.Equal(t, 30, f.Period, name)
	}
	assert.Len(t, cfg.Features(), 3)
}

func TestExchangeIDForwarded(t *testing.T) {
	for _, id := range []string{"okex", "okex-sub", "OKEX Main", ""} {
		assert.Equal(t, id, NewConfigChecker(id).ExchangeID())
	}
}

func TestDefaultsPassCheck(t *testing.T) {
	cfg, err := NewConfigChecker("okex").Check(nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults().Name, cfg.Name)
	assert.Equal(t, GlobalAPIMaxRequestsPerSecond, cfg.Throttle.NewLimiter().Burst())
}
