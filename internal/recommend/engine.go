package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sentinelhq/sentinel/internal/audit"
	"github.com/sentinelhq/sentinel/internal/config"
)

// Engine converts engine findings into severity-ranked remediation items.
type Engine struct {
	cfg config.RecommendConfig
}

// New creates a recommendation engine with the given policy knobs.
func New(cfg config.RecommendConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Generate converts every detected finding into a recommendation and
// sorts the list by severity. The sort is stable, so items of equal
// severity keep their detection order and the output is deterministic
// for identical inputs.
func (e *Engine) Generate(bias audit.BiasReport, drift audit.DriftReport, explain audit.ExplainabilityReport) []audit.Recommendation {
	items := make([]audit.Recommendation, 0)
	items = append(items, e.fromBias(bias)...)
	items = append(items, e.fromDrift(drift)...)
	items = append(items, e.fromExplainability(explain)...)

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Severity.Rank() < items[j].Severity.Rank()
	})

	for i := range items {
		items[i].ID = fmt.Sprintf("REC-%03d", i+1)
	}
	return items
}

// Top returns the first n recommendations of the already-sorted list,
// the slice surfaced to external consumers.
func (e *Engine) Top(items []audit.Recommendation) []audit.Recommendation {
	if len(items) <= e.cfg.TopN {
		return items
	}
	return items[:e.cfg.TopN]
}

// fromBias emits one recommendation per detected violation, severity
// inherited unchanged.
func (e *Engine) fromBias(report audit.BiasReport) []audit.Recommendation {
	items := make([]audit.Recommendation, 0, len(report.Violations))
	for _, v := range report.Violations {
		item := audit.Recommendation{
			Severity:    v.Severity,
			Category:    audit.CategoryFairness,
			Description: v.Description,
			Impact:      "High",
			Effort:      "Medium",
		}

		switch {
		case strings.Contains(v.Type, "Gender"):
			item.Title = "Remediate gender disparate impact"
			item.Action = "Rebalance training data and re-evaluate the decision threshold per group."
		case strings.Contains(v.Type, "Age"):
			item.Title = "Remediate age group disparate impact"
			item.Action = "Audit feature interactions with age and apply fairness constraints during training."
		default:
			item.Title = "Investigate proxy variable bias"
			item.Action = "Test income and correlated features for proxy effects on protected attributes."
			item.Impact = "Medium"
		}

		items = append(items, item)
	}
	return items
}

// fromDrift emits items for the significant accuracy and prediction-rate
// shifts plus one per drifted feature, all graded by the report's
// overall severity band.
func (e *Engine) fromDrift(report audit.DriftReport) []audit.Recommendation {
	severity := driftSeverity(report.Severity)
	items := make([]audit.Recommendation, 0)

	if report.AccuracyDrift.SignificantDrop {
		items = append(items, audit.Recommendation{
			Severity: severity,
			Category: audit.CategoryStability,
			Title:    "Retrain model to recover accuracy",
			Description: fmt.Sprintf(
				"Model accuracy dropped %.1f%% from its baseline of %.1f%%.",
				report.AccuracyDrift.AccuracyDropPercent,
				report.AccuracyDrift.BaselineAccuracy*100),
			Action: "Schedule retraining on recent data and validate against the held-out baseline.",
			Impact: "High",
			Effort: "High",
		})
	}

	if report.PredictionDrift.SignificantChange {
		items = append(items, audit.Recommendation{
			Severity: severity,
			Category: audit.CategoryStability,
			Title:    "Investigate prediction rate shift",
			Description: fmt.Sprintf(
				"Favorable prediction rate moved %.1f%% relative to baseline.",
				report.PredictionDrift.RateChangePercent),
			Action: "Compare incoming population mix against the training distribution.",
			Impact: "Medium",
			Effort: "Medium",
		})
	}

	for _, f := range report.DriftedFeatures {
		items = append(items, audit.Recommendation{
			Severity: severity,
			Category: audit.CategoryStability,
			Title:    fmt.Sprintf("Review distribution shift in %s", f.Feature),
			Description: fmt.Sprintf(
				"Feature %q shifted %.1f%% in mean (KS statistic %.3f).",
				f.Feature, f.MeanShiftPercent, f.KSStatistic),
			Action: "Verify upstream data pipelines and refresh feature statistics.",
			Impact: "Medium",
			Effort: "Medium",
		})
	}

	return items
}

// fromExplainability emits one item per gap. Gaps escalate to High when
// the overall transparency score is low.
func (e *Engine) fromExplainability(report audit.ExplainabilityReport) []audit.Recommendation {
	severity := audit.SeverityModerate
	if report.Score < e.cfg.LowTransparencyThreshold {
		severity = audit.SeverityHigh
	}

	items := make([]audit.Recommendation, 0, len(report.Gaps))
	for _, gap := range report.Gaps {
		items = append(items, audit.Recommendation{
			Severity:    severity,
			Category:    audit.CategoryTransparency,
			Title:       "Close explainability gap",
			Description: gap,
			Action:      "Document model reasoning and publish feature importance for reviewers.",
			Impact:      "Medium",
			Effort:      "Low",
		})
	}
	return items
}

func driftSeverity(s audit.DriftSeverity) audit.Severity {
	switch s {
	case audit.DriftSevere:
		return audit.SeverityCritical
	case audit.DriftModerate:
		return audit.SeverityHigh
	case audit.DriftMinor:
		return audit.SeverityModerate
	default:
		return audit.SeverityLow
	}
}
