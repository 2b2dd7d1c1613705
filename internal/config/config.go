package config

import (
	"os"

	"github.com/spf13/cast"
)

// BiasConfig holds the thresholds and weights of the bias engine.
type BiasConfig struct {
	DIThreshold      float64 // the 80% rule; regulatory constant
	CriticalRatio    float64 // below this the violation tier is Critical
	ProxySensitivity float64 // relative income gap that flags a proxy
	ProxyPenalty     float64 // fixed severity term when a proxy is detected
	PrimaryWeight    float64
	SecondaryWeight  float64
	ProxyWeight      float64
}

// DriftConfig holds the thresholds and weights of the drift engine.
type DriftConfig struct {
	AccuracyDropThreshold   float64 // percent drop considered significant
	PredictionRateThreshold float64 // percent rate change considered significant
	KSCriticalValue         float64
	PValueCutoff            float64
	AccuracyWeight          float64
	PredictionWeight        float64
	FeatureWeight           float64
	AccuracySeverityScale   float64 // maps accuracy drop percent onto 0-100
	PredictionSeverityScale float64 // maps rate change percent onto 0-100
}

// ExplainConfig holds the weights of the explainability engine.
type ExplainConfig struct {
	ImportanceWeight       float64
	ClarityWeight          float64
	TrailWeight            float64
	ClarityGapCutoff       float64 // below this clarity, boundary gap is reported
	MissingImportanceScore float64 // importance term when no documentation exists
	MissingTrailScore      float64 // trail term when thresholds are undocumented
	BoundaryLow            float64 // ambiguous probability band, lower edge
	BoundaryHigh           float64 // ambiguous probability band, upper edge
}

// RiskConfig holds the composite-score weights and status bands.
type RiskConfig struct {
	BiasWeight           float64
	DriftWeight          float64
	ExplainabilityWeight float64
	PassBelow            float64 // score < PassBelow   => PASS
	WarnBelow            float64 // score < WarnBelow   => WARNING, else FAIL
}

// RecommendConfig holds recommendation-engine policy knobs.
type RecommendConfig struct {
	LowTransparencyThreshold float64 // explainability score below which gaps escalate to High
	TopN                     int     // items surfaced to external consumers
}

// ServerConfig holds transport-level settings.
type ServerConfig struct {
	Port            string
	DataDir         string
	DatasetSize     int
	RateLimitPerMin int
}

// Config is the full service configuration. Every audit weight and
// threshold is a named field so audits are reproducible from recorded
// configuration rather than buried literals.
type Config struct {
	Bias      BiasConfig
	Drift     DriftConfig
	Explain   ExplainConfig
	Risk      RiskConfig
	Recommend RecommendConfig
	Server    ServerConfig
}

// Default returns the calibrated default configuration.
func Default() Config {
	return Config{
		Bias: BiasConfig{
			DIThreshold:      0.80,
			CriticalRatio:    0.60,
			ProxySensitivity: 0.15,
			ProxyPenalty:     20,
			PrimaryWeight:    0.60,
			SecondaryWeight:  0.25,
			ProxyWeight:      0.15,
		},
		Drift: DriftConfig{
			AccuracyDropThreshold:   10,
			PredictionRateThreshold: 15,
			KSCriticalValue:         0.10,
			PValueCutoff:            0.05,
			AccuracyWeight:          0.40,
			PredictionWeight:        0.30,
			FeatureWeight:           0.30,
			AccuracySeverityScale:   4,
			PredictionSeverityScale: 2,
		},
		Explain: ExplainConfig{
			ImportanceWeight:       0.40,
			ClarityWeight:          0.35,
			TrailWeight:            0.25,
			ClarityGapCutoff:       60,
			MissingImportanceScore: 40,
			MissingTrailScore:      60,
			BoundaryLow:            0.40,
			BoundaryHigh:           0.60,
		},
		Risk: RiskConfig{
			BiasWeight:           0.40,
			DriftWeight:          0.35,
			ExplainabilityWeight: 0.25,
			PassBelow:            40,
			WarnBelow:            70,
		},
		Recommend: RecommendConfig{
			LowTransparencyThreshold: 40,
			TopN:                     5,
		},
		Server: ServerConfig{
			Port:            "8080",
			DataDir:         "./data",
			DatasetSize:     1000,
			RateLimitPerMin: 60,
		},
	}
}

// FromEnv returns the default configuration with environment overrides
// applied. Unset or malformed values keep their defaults.
func FromEnv() Config {
	cfg := Default()

	cfg.Server.Port = envOrDefault("PORT", cfg.Server.Port)
	cfg.Server.DataDir = envOrDefault("DATA_DIR", cfg.Server.DataDir)
	cfg.Server.DatasetSize = envInt("DATASET_SIZE", cfg.Server.DatasetSize)
	cfg.Server.RateLimitPerMin = envInt("RATE_LIMIT_PER_MIN", cfg.Server.RateLimitPerMin)

	cfg.Bias.DIThreshold = envFloat("BIAS_DI_THRESHOLD", cfg.Bias.DIThreshold)
	cfg.Bias.ProxySensitivity = envFloat("BIAS_PROXY_SENSITIVITY", cfg.Bias.ProxySensitivity)
	cfg.Drift.AccuracyDropThreshold = envFloat("DRIFT_ACCURACY_DROP_THRESHOLD", cfg.Drift.AccuracyDropThreshold)
	cfg.Drift.PredictionRateThreshold = envFloat("DRIFT_PREDICTION_RATE_THRESHOLD", cfg.Drift.PredictionRateThreshold)
	cfg.Drift.KSCriticalValue = envFloat("DRIFT_KS_CRITICAL_VALUE", cfg.Drift.KSCriticalValue)
	cfg.Risk.PassBelow = envFloat("RISK_PASS_BELOW", cfg.Risk.PassBelow)
	cfg.Risk.WarnBelow = envFloat("RISK_WARN_BELOW", cfg.Risk.WarnBelow)

	return cfg
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := cast.ToFloat64E(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := cast.ToIntE(value)
	if err != nil {
		return fallback
	}
	return parsed
}
