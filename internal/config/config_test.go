package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultWeightsSumToOne(t *testing.T) {
	cfg := Default()

	assert.InDelta(t, 1.0, cfg.Bias.PrimaryWeight+cfg.Bias.SecondaryWeight+cfg.Bias.ProxyWeight, 1e-9)
	assert.InDelta(t, 1.0, cfg.Drift.AccuracyWeight+cfg.Drift.PredictionWeight+cfg.Drift.FeatureWeight, 1e-9)
	assert.InDelta(t, 1.0, cfg.Explain.ImportanceWeight+cfg.Explain.ClarityWeight+cfg.Explain.TrailWeight, 1e-9)
	assert.InDelta(t, 1.0, cfg.Risk.BiasWeight+cfg.Risk.DriftWeight+cfg.Risk.ExplainabilityWeight, 1e-9)
}

func TestDefaultThresholds(t *testing.T) {
	cfg := Default()

	// The four-fifths rule is a regulatory constant.
	assert.InDelta(t, 0.80, cfg.Bias.DIThreshold, 1e-9)
	assert.InDelta(t, 40.0, cfg.Risk.PassBelow, 1e-9)
	assert.InDelta(t, 70.0, cfg.Risk.WarnBelow, 1e-9)
	assert.Less(t, cfg.Risk.PassBelow, cfg.Risk.WarnBelow)

	assert.InDelta(t, 4.0, cfg.Drift.AccuracySeverityScale, 1e-9)
	assert.InDelta(t, 2.0, cfg.Drift.PredictionSeverityScale, 1e-9)
	assert.InDelta(t, 40.0, cfg.Explain.MissingImportanceScore, 1e-9)
	assert.InDelta(t, 60.0, cfg.Explain.MissingTrailScore, 1e-9)
	assert.InDelta(t, 0.40, cfg.Explain.BoundaryLow, 1e-9)
	assert.InDelta(t, 0.60, cfg.Explain.BoundaryHigh, 1e-9)
	assert.Less(t, cfg.Explain.BoundaryLow, cfg.Explain.BoundaryHigh)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATASET_SIZE", "250")
	t.Setenv("BIAS_DI_THRESHOLD", "0.75")
	t.Setenv("RISK_WARN_BELOW", "65")

	cfg := FromEnv()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 250, cfg.Server.DatasetSize)
	assert.InDelta(t, 0.75, cfg.Bias.DIThreshold, 1e-9)
	assert.InDelta(t, 65.0, cfg.Risk.WarnBelow, 1e-9)
}

func TestFromEnvMalformedValuesKeepDefaults(t *testing.T) {
	t.Setenv("DATASET_SIZE", "lots")
	t.Setenv("BIAS_DI_THRESHOLD", "four-fifths")

	cfg := FromEnv()
	defaults := Default()

	assert.Equal(t, defaults.Server.DatasetSize, cfg.Server.DatasetSize)
	assert.InDelta(t, defaults.Bias.DIThreshold, cfg.Bias.DIThreshold, 1e-9)
}
