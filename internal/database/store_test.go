package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelhq/sentinel/internal/audit"
	"github.com/sentinelhq/sentinel/internal/errors"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()

	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStore(db)
}

func sampleResult(id string, score float64, status audit.Status) *audit.Result {
	return &audit.Result{
		AuditID:     id,
		Timestamp:   time.Now().UTC(),
		DatasetMode: audit.ModeBiased,

		AIRiskScore: score,
		RiskStatus:  status,
		RiskComponents: audit.RiskComponents{
			BiasContribution:           20,
			DriftContribution:          15,
			ExplainabilityContribution: 10,
		},

		BiasRiskScore:       50,
		DriftRiskScore:      42.8,
		ExplainabilityScore: 60,

		BiasDetails: audit.BiasReport{
			Score: 50,
			GenderDI: audit.GroupDisparity{
				Ratio:             0.57,
				Violation:         true,
				PrivilegedGroup:   "Male",
				UnprivilegedGroup: "Female",
				Threshold:         0.8,
			},
			Violations: []audit.BiasViolation{
				{Type: "Gender Disparate Impact", Severity: audit.SeverityHigh, Value: 0.57, Threshold: 0.8},
			},
			Explanation: "Severe bias detected.",
		},
		DriftDetails: audit.DriftReport{
			Score:    42.8,
			Severity: audit.DriftModerate,
			Features: []audit.FeatureDrift{
				{Feature: "income", KSStatistic: 0.21, PValue: 0.001, Drifted: true},
			},
			DriftedFeatures: []audit.FeatureDrift{
				{Feature: "income", KSStatistic: 0.21, PValue: 0.001, Drifted: true},
			},
		},
		ExplainabilityDetails: audit.ExplainabilityReport{
			Score: 60,
			Gaps:  []string{"Decision thresholds are undocumented"},
		},

		Recommendations: []audit.Recommendation{
			{ID: "REC-001", Severity: audit.SeverityHigh, Category: audit.CategoryFairness, Title: "Remediate gender disparate impact"},
		},
		ExecutiveSummary: "Model shows elevated risk.",
		DatasetStats:     audit.DatasetStats{TotalRecords: 1000, ApprovalRate: 0.49, Accuracy: 0.85},
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	original := sampleResult("AUDIT-20260301-ABC123", 45, audit.StatusWarning)
	require.NoError(t, store.Create(ctx, original))

	got, err := store.GetByID(ctx, original.AuditID)
	require.NoError(t, err)

	// Timestamps survive the JSON round trip as the same instant.
	assert.True(t, got.Timestamp.Equal(original.Timestamp))
	got.Timestamp = original.Timestamp
	assert.Equal(t, original, got)
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result := sampleResult("AUDIT-20260301-DUP001", 45, audit.StatusWarning)
	require.NoError(t, store.Create(ctx, result))

	err := store.Create(ctx, result)
	require.Error(t, err)

	appErr := errors.ToAppError(err)
	assert.Equal(t, errors.CategoryPersistence, appErr.Category)

	// The stored record is untouched.
	got, err := store.GetByID(ctx, result.AuditID)
	require.NoError(t, err)
	assert.Equal(t, result.AIRiskScore, got.AIRiskScore)
}

func TestGetByIDNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetByID(context.Background(), "AUDIT-20260301-NOPE00")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestListRecentNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ids := []string{"AUDIT-20260301-AAA001", "AUDIT-20260301-BBB002", "AUDIT-20260301-CCC003"}
	for i, id := range ids {
		result := sampleResult(id, float64(30+i*10), audit.StatusWarning)
		result.Timestamp = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Create(ctx, result))
	}

	summaries, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, "AUDIT-20260301-CCC003", summaries[0].AuditID)
	assert.Equal(t, "AUDIT-20260301-BBB002", summaries[1].AuditID)
	assert.Equal(t, "AUDIT-20260301-AAA001", summaries[2].AuditID)

	assert.Equal(t, audit.ModeBiased, summaries[0].DatasetMode)
	assert.Equal(t, audit.StatusWarning, summaries[0].RiskStatus)
	assert.InDelta(t, 50.0, summaries[0].AIRiskScore, 1e-9)
}

func TestListRecentHonorsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	ids := []string{"AUDIT-20260302-AAA001", "AUDIT-20260302-BBB002", "AUDIT-20260302-CCC003"}
	for i, id := range ids {
		result := sampleResult(id, 30, audit.StatusPass)
		result.Timestamp = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Create(ctx, result))
	}

	summaries, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}

func TestCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, store.Create(ctx, sampleResult("AUDIT-20260303-AAA001", 20, audit.StatusPass)))
	require.NoError(t, store.Create(ctx, sampleResult("AUDIT-20260303-BBB002", 80, audit.StatusFail)))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
