// api/config/config_test.go
package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-id/authz/api/config"
)

func setCacheDefaults() {
	viper.Set("cache.roleTTLSecs", 300)
	viper.Set("cache.policyTTLSecs", 300)
	viper.Set("cache.l1TTLSecs", 60)
	viper.Set("cache.jitterRangeSecs", 30)
	viper.Set("cache.l1MaxCapacity", 10000)
	viper.Set("cache.bloomFalsePositiveRate", 0.01)
}

func TestInitConfig_PopulatesConfiguration(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, config.InitConfig())

	cfg := config.GetConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Second, cfg.Redis.DialTimeout)

	assert.Equal(t, 10000, cfg.Cache.L1MaxCapacity)
	assert.Equal(t, 60, cfg.Cache.L1TTLSecs)
	assert.Equal(t, 30, cfg.Cache.JitterRangeSecs)
	assert.Equal(t, 300, cfg.Cache.RoleTTLSecs)
	assert.Equal(t, 300, cfg.Cache.PolicyTTLSecs)
	assert.Equal(t, 3*time.Second, cfg.Cache.LoadTimeout)
	assert.Equal(t, uint(100000), cfg.Cache.BloomExpectedElements)
	assert.InDelta(t, 0.01, cfg.Cache.BloomFalsePositiveRate, 1e-9)
	assert.True(t, cfg.Cache.L2FallbackEnabled)
	assert.True(t, cfg.Cache.BloomFilterEnabled)
	assert.True(t, cfg.Cache.WarmingEnabled)
	assert.Empty(t, cfg.Cache.WarmTenants)
}

func TestValidate(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Run("DefaultsAreValid", func(t *testing.T) {
		setCacheDefaults()
		require.NoError(t, config.Validate())
	})

	t.Run("NonPositiveTTL_Rejected", func(t *testing.T) {
		setCacheDefaults()
		viper.Set("cache.roleTTLSecs", 0)
		assert.Error(t, config.Validate())
	})

	t.Run("NegativeJitter_Rejected", func(t *testing.T) {
		setCacheDefaults()
		viper.Set("cache.jitterRangeSecs", -1)
		assert.Error(t, config.Validate())
	})

	t.Run("JitterLargerThanTTL_Rejected", func(t *testing.T) {
		setCacheDefaults()
		viper.Set("cache.roleTTLSecs", 10)
		viper.Set("cache.jitterRangeSecs", 30)
		assert.Error(t, config.Validate())
	})

	t.Run("ZeroL1Capacity_Rejected", func(t *testing.T) {
		setCacheDefaults()
		viper.Set("cache.l1MaxCapacity", 0)
		assert.Error(t, config.Validate())
	})

	t.Run("FalsePositiveRateOutOfRange_Rejected", func(t *testing.T) {
		setCacheDefaults()
		viper.Set("cache.bloomFalsePositiveRate", 1.5)
		assert.Error(t, config.Validate())
	})
}
