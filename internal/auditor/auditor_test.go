package auditor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelhq/sentinel/internal/audit"
	"github.com/sentinelhq/sentinel/internal/config"
	"github.com/sentinelhq/sentinel/internal/dataset"
	"github.com/sentinelhq/sentinel/internal/errors"
)

func newTestAuditor(t *testing.T) *Auditor {
	t.Helper()
	return New(dataset.NewProvider(500), config.Default(), nil)
}

func TestRunCleanMode(t *testing.T) {
	a := newTestAuditor(t)

	result, err := a.Run(context.Background(), audit.ModeClean)
	require.NoError(t, err)

	assert.True(t, audit.ValidID(result.AuditID))
	assert.Equal(t, audit.ModeClean, result.DatasetMode)
	assert.Equal(t, time.UTC, result.Timestamp.Location())

	// Clean data against an identical baseline: no drift, fair rates.
	assert.Equal(t, audit.StatusPass, result.RiskStatus)
	assert.InDelta(t, 0.0, result.DriftRiskScore, 1e-9)
	assert.NotEmpty(t, result.ExecutiveSummary)
	assert.Equal(t, 500, result.DatasetStats.TotalRecords)
}

func TestRunBiasedMode(t *testing.T) {
	a := newTestAuditor(t)

	result, err := a.Run(context.Background(), audit.ModeBiased)
	require.NoError(t, err)

	assert.True(t, result.BiasDetails.GenderDI.Violation)
	assert.Less(t, result.BiasDetails.GenderDI.Ratio, 0.8)

	// Bias dominates the composite for this scenario.
	assert.Greater(t, result.RiskComponents.BiasContribution, result.RiskComponents.DriftContribution)

	found := false
	for _, rec := range result.Recommendations {
		if rec.Category == audit.CategoryFairness {
			found = true
		}
	}
	assert.True(t, found, "biased mode should produce a fairness recommendation")
}

func TestRunKeepsAllRecommendations(t *testing.T) {
	// The persisted result is the complete audit trail: the display
	// limit must not cut the recommendation list the auditor produces.
	cfg := config.Default()
	cfg.Recommend.TopN = 1
	a := New(dataset.NewProvider(500), cfg, nil)

	result, err := a.Run(context.Background(), audit.ModeBiased)
	require.NoError(t, err)

	assert.Greater(t, len(result.Recommendations), 1)
}

func TestRunDriftedMode(t *testing.T) {
	a := newTestAuditor(t)

	result, err := a.Run(context.Background(), audit.ModeDrifted)
	require.NoError(t, err)

	assert.True(t, result.DriftDetails.AccuracyDrift.SignificantDrop)
	assert.NotEmpty(t, result.DriftDetails.DriftedFeatures)
	assert.Greater(t, result.RiskComponents.DriftContribution, result.RiskComponents.BiasContribution)
}

func TestRunInvalidMode(t *testing.T) {
	a := newTestAuditor(t)

	_, err := a.Run(context.Background(), audit.Mode("adversarial"))
	require.Error(t, err)

	appErr := errors.ToAppError(err)
	assert.Equal(t, errors.CategoryValidation, appErr.Category)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

type emptyProvider struct{}

func (emptyProvider) Baseline() audit.Snapshot { return audit.Snapshot{Kind: audit.KindBaseline} }
func (emptyProvider) Current(audit.Mode) (audit.Snapshot, audit.ModelMetadata, error) {
	return audit.Snapshot{Kind: audit.KindCurrent}, audit.ModelMetadata{}, nil
}

func TestRunEmptyDataset(t *testing.T) {
	a := New(emptyProvider{}, config.Default(), nil)

	_, err := a.Run(context.Background(), audit.ModeClean)
	require.Error(t, err)

	appErr := errors.ToAppError(err)
	assert.Equal(t, errors.CategoryDataset, appErr.Category)
	assert.Equal(t, 422, appErr.HTTPStatus)
}

func TestRunIsDeterministicUpToIdentity(t *testing.T) {
	a := newTestAuditor(t)

	first, err := a.Run(context.Background(), audit.ModeBiased)
	require.NoError(t, err)
	second, err := a.Run(context.Background(), audit.ModeBiased)
	require.NoError(t, err)

	// Identity fields differ per run; everything derived from the data
	// must be identical.
	assert.NotEqual(t, first.AuditID, second.AuditID)

	assert.Equal(t, first.AIRiskScore, second.AIRiskScore)
	assert.Equal(t, first.RiskStatus, second.RiskStatus)
	assert.Equal(t, first.RiskComponents, second.RiskComponents)
	assert.Equal(t, first.BiasDetails, second.BiasDetails)
	assert.Equal(t, first.DriftDetails, second.DriftDetails)
	assert.Equal(t, first.ExplainabilityDetails, second.ExplainabilityDetails)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.Equal(t, first.DatasetStats, second.DatasetStats)
}

func TestRunScoresWithinRange(t *testing.T) {
	a := newTestAuditor(t)

	for _, mode := range audit.KnownModes {
		result, err := a.Run(context.Background(), mode)
		require.NoError(t, err)

		for name, score := range map[string]float64{
			"composite":      result.AIRiskScore,
			"bias":           result.BiasRiskScore,
			"drift":          result.DriftRiskScore,
			"explainability": result.ExplainabilityScore,
		} {
			assert.GreaterOrEqual(t, score, 0.0, "%s score for mode %s", name, mode)
			assert.LessOrEqual(t, score, 100.0, "%s score for mode %s", name, mode)
		}

		sum := result.RiskComponents.BiasContribution +
			result.RiskComponents.DriftContribution +
			result.RiskComponents.ExplainabilityContribution
		assert.InDelta(t, result.AIRiskScore, sum, 1e-9)
	}
}

func TestRunCanceledContext(t *testing.T) {
	a := newTestAuditor(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Run(ctx, audit.ModeClean)
	assert.Error(t, err)
}
