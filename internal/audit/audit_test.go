package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeValid(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		valid bool
	}{
		{"clean", ModeClean, true},
		{"biased", ModeBiased, true},
		{"drifted", ModeDrifted, true},
		{"unknown", Mode("adversarial"), false},
		{"empty", Mode(""), false},
		{"case sensitive", Mode("Clean"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.mode.Valid())
		})
	}
}

func TestSeverityRankOrdering(t *testing.T) {
	assert.Less(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityModerate.Rank())
	assert.Less(t, SeverityModerate.Rank(), SeverityLow.Rank())

	// Unknown severities sort after every known one.
	assert.Greater(t, Severity("Unknown").Rank(), SeverityLow.Rank())
}

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		severity Severity
		color    string
	}{
		{SeverityCritical, "#dc2626"},
		{SeverityHigh, "#ea580c"},
		{SeverityModerate, "#d97706"},
		{SeverityLow, "#16a34a"},
		{Severity("bogus"), "#6b7280"},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			assert.Equal(t, tt.color, tt.severity.Color())
		})
	}
}

func TestNewID(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	id := NewID(now)
	require.True(t, ValidID(id), "generated id %q should match the audit id format", id)
	assert.Contains(t, id, "AUDIT-20260314-")

	// The random suffix makes same-instant ids distinct.
	assert.NotEqual(t, id, NewID(now))
}

func TestNewIDUsesUTCDate(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 3, 14, 23, 30, 0, 0, loc)

	id := NewID(now)
	assert.Contains(t, id, "AUDIT-20260315-")
}

func TestValidID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"well formed", "AUDIT-20260314-A1B2C3", true},
		{"lowercase suffix", "AUDIT-20260314-a1b2c3", false},
		{"short suffix", "AUDIT-20260314-A1B2C", false},
		{"missing prefix", "20260314-A1B2C3", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidID(tt.id))
		})
	}
}

func TestSnapshotRates(t *testing.T) {
	snap := Snapshot{
		Kind: KindCurrent,
		Records: []Record{
			{Prediction: 1, ActualOutcome: 1},
			{Prediction: 1, ActualOutcome: 0},
			{Prediction: 0, ActualOutcome: 0},
			{Prediction: 0, ActualOutcome: 1},
		},
	}

	assert.Equal(t, 4, snap.Len())
	assert.InDelta(t, 0.5, snap.ApprovalRate(), 1e-9)
	assert.InDelta(t, 0.5, snap.Accuracy(), 1e-9)
}

func TestSnapshotRatesEmpty(t *testing.T) {
	var snap Snapshot

	assert.Zero(t, snap.ApprovalRate())
	assert.Zero(t, snap.Accuracy())
}
