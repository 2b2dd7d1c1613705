package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelhq/sentinel/internal/audit"
)

func sampleResult() *audit.Result {
	return &audit.Result{
		AuditID:     "AUDIT-20260314-AB12CD",
		Timestamp:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		DatasetMode: audit.ModeBiased,

		AIRiskScore: 47.3,
		RiskStatus:  audit.StatusWarning,
		RiskComponents: audit.RiskComponents{
			BiasContribution:           21.5,
			DriftContribution:          16.1,
			ExplainabilityContribution: 9.7,
		},

		BiasRiskScore:       53.7,
		DriftRiskScore:      46.0,
		ExplainabilityScore: 61.2,

		BiasDetails: audit.BiasReport{
			Explanation: "Severe bias detected.",
			Violations: []audit.BiasViolation{
				{
					Type:        "Gender Disparate Impact",
					Severity:    audit.SeverityHigh,
					Value:       0.571,
					Description: "Female approval rate is significantly lower than Male rate",
				},
			},
		},
		DriftDetails: audit.DriftReport{
			Explanation: "Minor drift indicators present.",
			Features: []audit.FeatureDrift{
				{Feature: "income", KSStatistic: 0.21, PValue: 0.0004, MeanShiftPercent: -14.2, Drifted: true},
				{Feature: "age", KSStatistic: 0.02, PValue: 0.91},
			},
			AccuracyDrift:   audit.AccuracyDrift{BaselineAccuracy: 0.87, CurrentAccuracy: 0.85},
			PredictionDrift: audit.PredictionDrift{BaselineApprovalRate: 0.78, CurrentApprovalRate: 0.49},
		},
		ExplainabilityDetails: audit.ExplainabilityReport{
			Explanation: "Model interpretability is good but has documentation gaps.",
			Gaps:        []string{"Decision thresholds are undocumented"},
		},

		Recommendations: []audit.Recommendation{
			{
				ID:       "REC-001",
				Severity: audit.SeverityHigh,
				Category: audit.CategoryFairness,
				Title:    "Remediate gender disparate impact",
				Action:   "Rebalance training data and re-evaluate the decision threshold per group.",
			},
		},
		ExecutiveSummary: "Model shows elevated risk with an AI Risk Score of 47.3.",
		DatasetStats:     audit.DatasetStats{TotalRecords: 1000, ApprovalRate: 0.49, Accuracy: 0.85},
	}
}

func TestRenderIncludesCoreFields(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	html, err := renderer.Render(sampleResult())
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "AUDIT-20260314-AB12CD")
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "47.3")
	assert.Contains(t, out, "Gender Disparate Impact")
	assert.Contains(t, out, "Remediate gender disparate impact")
	assert.Contains(t, out, "Decision thresholds are undocumented")
	assert.Contains(t, out, "dataset mode: biased")
}

func TestRenderUsesSeverityColors(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	html, err := renderer.Render(sampleResult())
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, audit.SeverityHigh.Color())
	assert.Contains(t, out, StatusColor(audit.StatusWarning))
}

func TestRenderEmptyFindings(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	result := sampleResult()
	result.BiasDetails.Violations = nil
	result.Recommendations = nil
	result.ExplainabilityDetails.Gaps = nil

	html, err := renderer.Render(result)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "No violations detected.")
	assert.Contains(t, out, "No recommendations.")
	assert.Contains(t, out, "No explainability gaps identified.")
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, "#16a34a", StatusColor(audit.StatusPass))
	assert.Equal(t, "#d97706", StatusColor(audit.StatusWarning))
	assert.Equal(t, "#dc2626", StatusColor(audit.StatusFail))
	assert.Equal(t, "#6b7280", StatusColor(audit.Status("bogus")))
}
