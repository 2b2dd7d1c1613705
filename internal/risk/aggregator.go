package risk

import (
	"github.com/sentinelhq/sentinel/internal/audit"
	"github.com/sentinelhq/sentinel/internal/config"
)

// Aggregator fuses the three engine scores into the composite AI Risk
// Score and its status band.
type Aggregator struct {
	cfg config.RiskConfig
}

// New creates an aggregator with the given weights and status bands.
func New(cfg config.RiskConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate computes the weighted composite from the bias score, the
// drift score and the explainability score. Explainability enters
// inverted: a highly interpretable model contributes little risk.
func (a *Aggregator) Aggregate(biasScore, driftScore, explainScore float64) (audit.RiskComponents, float64, audit.Status) {
	components := audit.RiskComponents{
		BiasContribution:           a.cfg.BiasWeight * clamp(biasScore),
		DriftContribution:          a.cfg.DriftWeight * clamp(driftScore),
		ExplainabilityContribution: a.cfg.ExplainabilityWeight * (100 - clamp(explainScore)),
	}

	score := clamp(components.BiasContribution +
		components.DriftContribution +
		components.ExplainabilityContribution)

	return components, score, a.StatusFor(score)
}

// StatusFor maps a composite score onto its status band. Band edges
// belong to the higher-risk side.
func (a *Aggregator) StatusFor(score float64) audit.Status {
	switch {
	case score < a.cfg.PassBelow:
		return audit.StatusPass
	case score < a.cfg.WarnBelow:
		return audit.StatusWarning
	default:
		return audit.StatusFail
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
