package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicyDefaults(t *testing.T) {
	cfg := Load()
	require.NotNil(t, cfg)

	// Every policy knob carries a usable default so a bare environment still
	// produces the documented behavior.
	assert.InDelta(t, 1.5, cfg.Policy.SafetyStockFactor, 1e-9)
	assert.InDelta(t, 12, cfg.Policy.TurnoverFastRate, 1e-9)
	assert.InDelta(t, 6, cfg.Policy.TurnoverMediumRate, 1e-9)
	assert.InDelta(t, 1, cfg.Policy.TurnoverSlowRate, 1e-9)

	healthSum := cfg.Policy.HealthServiceWeight + cfg.Policy.HealthStockoutWeight +
		cfg.Policy.HealthOverstockWeight
	assert.InDelta(t, 1.0, healthSum, 1e-9)

	assert.InDelta(t, 7, cfg.Policy.TransferCriticalDays, 1e-9)
	assert.InDelta(t, 10, cfg.Policy.TransferHighDays, 1e-9)
	assert.InDelta(t, 20, cfg.Policy.TransferHotBonus, 1e-9)

	blendSum := cfg.Policy.ForecastWeightedAvg + cfg.Policy.ForecastTrendAvg +
		cfg.Policy.ForecastMovingAvg7 + cfg.Policy.ForecastSimpleAvg
	assert.InDelta(t, 1.0, blendSum, 1e-9)

	listingSum := cfg.Policy.ListingImageWeight + cfg.Policy.ListingStockWeight +
		cfg.Policy.ListingTurnoverWeight + cfg.Policy.ListingMarginWeight +
		cfg.Policy.ListingRevenueWeight + cfg.Policy.ListingTrendWeight
	assert.InDelta(t, 1.0, listingSum, 1e-9)
}
