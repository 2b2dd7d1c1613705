package explain

import (
	"github.com/sentinelhq/sentinel/internal/audit"
	"github.com/sentinelhq/sentinel/internal/config"
)

// Engine scores how interpretable the audited model is. Higher is
// better; the risk aggregator inverts the score into a risk term.
type Engine struct {
	cfg config.ExplainConfig
}

// New creates an explainability engine with the given weights.
func New(cfg config.ExplainConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Analyze scores the interpretability signals of the model behind the
// current snapshot.
func (e *Engine) Analyze(snap audit.Snapshot, meta audit.ModelMetadata) audit.ExplainabilityReport {
	importance := e.cfg.MissingImportanceScore
	if meta.FeatureImportanceAvailable {
		importance = 100
	}

	clarity := (1 - e.boundaryFraction(snap)) * 100

	trail := e.cfg.MissingTrailScore
	if meta.ThresholdsDocumented {
		trail = 100
	}

	score := clamp(e.cfg.ImportanceWeight*importance +
		e.cfg.ClarityWeight*clarity +
		e.cfg.TrailWeight*trail)

	var gaps []string
	if !meta.FeatureImportanceAvailable {
		gaps = append(gaps, "Feature importance documentation is incomplete")
	}
	if clarity < e.cfg.ClarityGapCutoff {
		gaps = append(gaps, "Decision boundaries are unclear for a large share of predictions")
	}
	if !meta.ThresholdsDocumented {
		gaps = append(gaps, "Decision thresholds are undocumented")
	}

	return audit.ExplainabilityReport{
		Score:       score,
		Gaps:        gaps,
		Explanation: explanation(score),
	}
}

// boundaryFraction is the share of predictions whose probability falls in
// the ambiguous band around the decision threshold. A model that parks
// many subjects near the boundary is hard to explain case by case.
func (e *Engine) boundaryFraction(snap audit.Snapshot) float64 {
	if snap.Len() == 0 {
		return 0
	}
	near := 0
	for _, r := range snap.Records {
		if r.Probability > e.cfg.BoundaryLow && r.Probability < e.cfg.BoundaryHigh {
			near++
		}
	}
	return float64(near) / float64(snap.Len())
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

func explanation(score float64) string {
	switch {
	case score > 80:
		return "Model decisions are highly interpretable with well-documented reasoning."
	case score > 60:
		return "Model interpretability is good but has documentation gaps."
	case score > 40:
		return "Model interpretability is moderate. Several explainability gaps need attention."
	default:
		return "Model is largely opaque. Decisions cannot be adequately explained to affected subjects."
	}
}
