package bias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelhq/sentinel/internal/audit"
	"github.com/sentinelhq/sentinel/internal/config"
)

// makeSnapshot builds a snapshot with the given number of approvals per
// gender out of total applicants per gender.
func makeSnapshot(maleApproved, maleTotal, femaleApproved, femaleTotal int) audit.Snapshot {
	records := make([]audit.Record, 0, maleTotal+femaleTotal)
	for i := 0; i < maleTotal; i++ {
		r := audit.Record{Gender: "Male", Age: 35, Income: 60000}
		if i < maleApproved {
			r.Prediction = 1
		}
		records = append(records, r)
	}
	for i := 0; i < femaleTotal; i++ {
		r := audit.Record{Gender: "Female", Age: 35, Income: 60000}
		if i < femaleApproved {
			r.Prediction = 1
		}
		records = append(records, r)
	}
	return audit.Snapshot{Kind: audit.KindCurrent, Records: records}
}

func TestDisparateImpactKnownScenario(t *testing.T) {
	// Approval rates 0.70 vs 0.40 give the classic four-fifths violation.
	engine := New(config.Default().Bias)

	report := engine.Analyze(makeSnapshot(70, 100, 40, 100))

	di := report.GenderDI
	assert.InDelta(t, 0.5714, di.Ratio, 0.001)
	assert.True(t, di.Violation)
	assert.Equal(t, "Male", di.PrivilegedGroup)
	assert.Equal(t, "Female", di.UnprivilegedGroup)
	assert.InDelta(t, 0.70, di.PrivilegedRate, 1e-9)
	assert.InDelta(t, 0.40, di.UnprivilegedRate, 1e-9)

	require.NotEmpty(t, report.Violations)
	assert.Equal(t, "Gender Disparate Impact", report.Violations[0].Type)
	// Ratio 0.5714 is below the 0.60 cutoff, so the tier is Critical.
	assert.Equal(t, audit.SeverityCritical, report.Violations[0].Severity)
}

func TestDisparateImpactHighTier(t *testing.T) {
	// Ratio 0.70 violates the four-fifths rule but stays at or above the
	// 0.60 cutoff, so the tier is High rather than Critical.
	engine := New(config.Default().Bias)

	report := engine.Analyze(makeSnapshot(70, 100, 49, 100))

	di := report.GenderDI
	assert.InDelta(t, 0.70, di.Ratio, 1e-9)
	assert.True(t, di.Violation)

	require.NotEmpty(t, report.Violations)
	assert.Equal(t, "Gender Disparate Impact", report.Violations[0].Type)
	assert.Equal(t, audit.SeverityHigh, report.Violations[0].Severity)
}

func TestDisparateImpactSymmetry(t *testing.T) {
	// The privileged group is computed from the data; relabeling the
	// groups must produce the same ratio with roles swapped.
	engine := New(config.Default().Bias)

	report := engine.Analyze(makeSnapshot(40, 100, 70, 100))

	di := report.GenderDI
	assert.InDelta(t, 0.5714, di.Ratio, 0.001)
	assert.Equal(t, "Female", di.PrivilegedGroup)
	assert.Equal(t, "Male", di.UnprivilegedGroup)
	assert.True(t, di.Violation)
}

func TestDisparateImpactCriticalTier(t *testing.T) {
	engine := New(config.Default().Bias)

	report := engine.Analyze(makeSnapshot(80, 100, 20, 100))

	require.NotEmpty(t, report.Violations)
	assert.InDelta(t, 0.25, report.GenderDI.Ratio, 1e-9)
	assert.Equal(t, audit.SeverityCritical, report.Violations[0].Severity)
}

func TestDisparateImpactDegenerateCases(t *testing.T) {
	engine := New(config.Default().Bias)

	t.Run("zero privileged rate", func(t *testing.T) {
		report := engine.Analyze(makeSnapshot(0, 100, 0, 100))

		assert.InDelta(t, 1.0, report.GenderDI.Ratio, 1e-9)
		assert.False(t, report.GenderDI.Violation)
	})

	t.Run("single group", func(t *testing.T) {
		report := engine.Analyze(makeSnapshot(50, 100, 0, 0))

		assert.InDelta(t, 1.0, report.GenderDI.Ratio, 1e-9)
		assert.False(t, report.GenderDI.Violation)
	})
}

func TestAgeBracketBias(t *testing.T) {
	engine := New(config.Default().Bias)

	records := make([]audit.Record, 0)
	// Young applicants approved at 0.9, older at 0.3.
	for i := 0; i < 100; i++ {
		r := audit.Record{Gender: "Male", Age: 25}
		if i < 90 {
			r.Prediction = 1
		}
		records = append(records, r)
	}
	for i := 0; i < 100; i++ {
		r := audit.Record{Gender: "Female", Age: 65}
		if i < 30 {
			r.Prediction = 1
		}
		records = append(records, r)
	}

	report := engine.Analyze(audit.Snapshot{Records: records})

	assert.Equal(t, "18-30", report.AgeBias.HighestBracket)
	assert.Equal(t, "60+", report.AgeBias.LowestBracket)
	assert.InDelta(t, 30.0/90.0, report.AgeBias.Ratio, 1e-9)
	assert.True(t, report.AgeBias.Violation)
}

func TestIncomeProxyDetection(t *testing.T) {
	engine := New(config.Default().Bias)

	records := make([]audit.Record, 0)
	// Approved males earn far more than approved females; the gap
	// exceeds the 15% sensitivity.
	for i := 0; i < 50; i++ {
		records = append(records, audit.Record{Gender: "Male", Age: 35, Income: 90000, Prediction: 1})
		records = append(records, audit.Record{Gender: "Male", Age: 35, Income: 50000})
		records = append(records, audit.Record{Gender: "Female", Age: 35, Income: 55000, Prediction: 1})
		records = append(records, audit.Record{Gender: "Female", Age: 35, Income: 40000})
		records = append(records, audit.Record{Gender: "Female", Age: 35, Income: 40000})
	}

	report := engine.Analyze(audit.Snapshot{Records: records})

	assert.True(t, report.IncomeProxy.Detected)
	assert.Greater(t, report.IncomeProxy.GapPercent, 15.0)

	found := false
	for _, v := range report.Violations {
		if v.Type == "Income Proxy Bias" {
			found = true
			assert.Equal(t, audit.SeverityModerate, v.Severity)
		}
	}
	assert.True(t, found, "expected an income proxy violation")
}

func TestScoreMonotonicity(t *testing.T) {
	// Widening the approval gap must never decrease the bias score.
	engine := New(config.Default().Bias)

	previous := -1.0
	for approved := 70; approved >= 10; approved -= 10 {
		report := engine.Analyze(makeSnapshot(70, 100, approved, 100))
		assert.GreaterOrEqual(t, report.Score, previous,
			"score decreased when female approvals dropped to %d", approved)
		previous = report.Score
	}
}

func TestScoreRange(t *testing.T) {
	engine := New(config.Default().Bias)

	scenarios := []audit.Snapshot{
		makeSnapshot(100, 100, 0, 100),
		makeSnapshot(0, 100, 0, 100),
		makeSnapshot(50, 100, 50, 100),
		{Records: []audit.Record{{Gender: "Male", Prediction: 1}}},
	}

	for _, snap := range scenarios {
		report := engine.Analyze(snap)
		assert.GreaterOrEqual(t, report.Score, 0.0)
		assert.LessOrEqual(t, report.Score, 100.0)
	}
}
