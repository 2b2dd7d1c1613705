package auditor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sentinelhq/sentinel/internal/audit"
	"github.com/sentinelhq/sentinel/internal/bias"
	"github.com/sentinelhq/sentinel/internal/config"
	"github.com/sentinelhq/sentinel/internal/drift"
	apperrors "github.com/sentinelhq/sentinel/internal/errors"
	"github.com/sentinelhq/sentinel/internal/explain"
	"github.com/sentinelhq/sentinel/internal/recommend"
	"github.com/sentinelhq/sentinel/internal/risk"
)

// SnapshotProvider supplies the snapshots and model metadata an audit
// runs against.
type SnapshotProvider interface {
	Baseline() audit.Snapshot
	Current(mode audit.Mode) (audit.Snapshot, audit.ModelMetadata, error)
}

// Audit lifecycle states, used for log correlation only. An audit is
// computing until assembly finishes; it ends complete or failed and
// never moves again.
const (
	stateComputing = "computing"
	stateComplete  = "complete"
	stateFailed    = "failed"
)

// Auditor assembles a full audit: it validates the request, fans the
// snapshot out to the bias, drift and explainability engines, fuses the
// scores and derives recommendations.
type Auditor struct {
	provider  SnapshotProvider
	bias      *bias.Engine
	drift     *drift.Engine
	explain   *explain.Engine
	risk      *risk.Aggregator
	recommend *recommend.Engine
	logger    *slog.Logger
}

// New creates an auditor wired to the given snapshot provider and
// configuration.
func New(provider SnapshotProvider, cfg config.Config, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		provider:  provider,
		bias:      bias.New(cfg.Bias),
		drift:     drift.New(cfg.Drift),
		explain:   explain.New(cfg.Explain),
		risk:      risk.New(cfg.Risk),
		recommend: recommend.New(cfg.Recommend),
		logger:    logger,
	}
}

// Run executes one complete audit for the given dataset mode. The three
// engines run concurrently over the same immutable snapshots; the result
// is assembled once and never mutated afterwards.
func (a *Auditor) Run(ctx context.Context, mode audit.Mode) (*audit.Result, error) {
	started := time.Now()
	auditID := audit.NewID(started)

	log := a.logger.With("audit_id", auditID, "dataset_mode", string(mode))
	log.Info("audit started", "state", stateComputing)

	if !mode.Valid() {
		log.Warn("audit rejected", "state", stateFailed, "reason", "invalid dataset mode")
		return nil, apperrors.NewInvalidDatasetMode(string(mode))
	}

	baseline := a.provider.Baseline()
	current, meta, err := a.provider.Current(mode)
	if err != nil {
		log.Error("audit failed", "state", stateFailed, "error", err)
		return nil, apperrors.NewInternalError("snapshot generation failed", err)
	}

	if baseline.Len() == 0 {
		log.Warn("audit rejected", "state", stateFailed, "reason", "empty baseline")
		return nil, apperrors.NewEmptyDataset(string(audit.KindBaseline))
	}
	if current.Len() == 0 {
		log.Warn("audit rejected", "state", stateFailed, "reason", "empty current snapshot")
		return nil, apperrors.NewEmptyDataset(string(audit.KindCurrent))
	}

	var (
		biasReport    audit.BiasReport
		driftReport   audit.DriftReport
		explainReport audit.ExplainabilityReport
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		biasReport = a.bias.Analyze(current)
		return nil
	})
	g.Go(func() error {
		driftReport = a.drift.Analyze(baseline, current)
		return nil
	})
	g.Go(func() error {
		explainReport = a.explain.Analyze(current, meta)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("audit failed", "state", stateFailed, "error", err)
		return nil, apperrors.NewInternalError("risk analysis failed", err)
	}
	if err := ctx.Err(); err != nil {
		log.Warn("audit canceled", "state", stateFailed)
		return nil, err
	}

	components, score, status := a.risk.Aggregate(
		biasReport.Score, driftReport.Score, explainReport.Score)

	// The result keeps every recommendation, sorted by priority. Trimming
	// for display is a rendering concern; the persisted record is the
	// complete audit trail.
	recommendations := a.recommend.Generate(biasReport, driftReport, explainReport)

	result := &audit.Result{
		AuditID:     auditID,
		Timestamp:   started.UTC(),
		DatasetMode: mode,

		AIRiskScore:    score,
		RiskStatus:     status,
		RiskComponents: components,

		BiasRiskScore:       biasReport.Score,
		DriftRiskScore:      driftReport.Score,
		ExplainabilityScore: explainReport.Score,

		BiasDetails:           biasReport,
		DriftDetails:          driftReport,
		ExplainabilityDetails: explainReport,

		Recommendations:  recommendations,
		ExecutiveSummary: executiveSummary(score, status, recommendations),
		DatasetStats: audit.DatasetStats{
			TotalRecords: current.Len(),
			ApprovalRate: current.ApprovalRate(),
			Accuracy:     current.Accuracy(),
		},
	}

	log.Info("audit completed",
		"state", stateComplete,
		"ai_risk_score", result.AIRiskScore,
		"risk_status", string(result.RiskStatus),
		"recommendations", len(result.Recommendations),
		"duration", time.Since(started),
	)
	return result, nil
}

// executiveSummary is a one-paragraph verdict synthesized from the
// composite score, the status and the top remediation item.
func executiveSummary(score float64, status audit.Status, recommendations []audit.Recommendation) string {
	var verdict string
	switch status {
	case audit.StatusPass:
		verdict = fmt.Sprintf(
			"Model is operating within acceptable risk bounds with an AI Risk Score of %.1f. No critical issues require immediate action.", score)
	case audit.StatusWarning:
		verdict = fmt.Sprintf(
			"Model shows elevated risk with an AI Risk Score of %.1f. Remediation is recommended before the next review cycle.", score)
	default:
		verdict = fmt.Sprintf(
			"Model presents critical risk with an AI Risk Score of %.1f. Deployment should be paused pending remediation.", score)
	}

	if len(recommendations) > 0 {
		verdict += fmt.Sprintf(" Top recommendation: %s.", recommendations[0].Title)
	}
	return verdict
}
