package drift

import (
	"fmt"
	"math"
	"strings"

	"github.com/sentinelhq/sentinel/internal/audit"
	"github.com/sentinelhq/sentinel/internal/config"
)

// trackedFeatures enumerates the numeric features compared between
// snapshots, in reporting order.
var trackedFeatures = []struct {
	name  string
	value func(audit.Record) float64
}{
	{"age", func(r audit.Record) float64 { return float64(r.Age) }},
	{"income", func(r audit.Record) float64 { return r.Income }},
	{"credit_score", func(r audit.Record) float64 { return float64(r.CreditScore) }},
	{"debt_ratio", func(r audit.Record) float64 { return r.DebtRatio }},
}

// Engine detects model and data drift between the baseline and current
// snapshots. Safe for concurrent use.
type Engine struct {
	cfg config.DriftConfig
}

// New creates a drift engine with the given thresholds and weights.
func New(cfg config.DriftConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Analyze compares the current snapshot against the baseline across
// accuracy, prediction rates and per-feature distributions.
func (e *Engine) Analyze(baseline, current audit.Snapshot) audit.DriftReport {
	acc := e.accuracyDrift(baseline, current)
	pred := e.predictionDrift(baseline, current)
	features := e.featureDrift(baseline, current)

	drifted := make([]audit.FeatureDrift, 0)
	for _, f := range features {
		if f.Drifted {
			drifted = append(drifted, f)
		}
	}

	score := e.score(acc, pred, len(drifted), len(features))
	severity := e.severity(score)

	return audit.DriftReport{
		Score:           score,
		Severity:        severity,
		AccuracyDrift:   acc,
		PredictionDrift: pred,
		Features:        features,
		DriftedFeatures: drifted,
		Explanation:     e.explanation(severity, acc, drifted),
	}
}

// accuracyDrift measures the relative accuracy drop from baseline to
// current. Improvements are reported but never count as drift. A zero
// baseline accuracy yields a zero drop rather than a division blowup.
func (e *Engine) accuracyDrift(baseline, current audit.Snapshot) audit.AccuracyDrift {
	base := baseline.Accuracy()
	curr := current.Accuracy()
	drop := base - curr

	dropPercent := 0.0
	if base > 0 {
		dropPercent = drop / base * 100
	}

	return audit.AccuracyDrift{
		BaselineAccuracy:    base,
		CurrentAccuracy:     curr,
		AccuracyDrop:        drop,
		AccuracyDropPercent: dropPercent,
		SignificantDrop:     dropPercent > e.cfg.AccuracyDropThreshold,
	}
}

// predictionDrift measures the relative change in favorable-prediction
// rate between snapshots. Change is significant in either direction.
func (e *Engine) predictionDrift(baseline, current audit.Snapshot) audit.PredictionDrift {
	base := baseline.ApprovalRate()
	curr := current.ApprovalRate()
	change := curr - base

	changePercent := 0.0
	if base > 0 {
		changePercent = change / base * 100
	}

	return audit.PredictionDrift{
		BaselineApprovalRate: base,
		CurrentApprovalRate:  curr,
		RateChange:           change,
		RateChangePercent:    changePercent,
		SignificantChange:    math.Abs(changePercent) > e.cfg.PredictionRateThreshold,
	}
}

// featureDrift runs a two-sample KS test per tracked feature. A feature
// is flagged as drifted when the statistic exceeds the critical value or
// the p-value falls below the significance cutoff.
func (e *Engine) featureDrift(baseline, current audit.Snapshot) []audit.FeatureDrift {
	results := make([]audit.FeatureDrift, 0, len(trackedFeatures))
	for _, feature := range trackedFeatures {
		baseValues := extract(baseline.Records, feature.value)
		currValues := extract(current.Records, feature.value)

		statistic, pValue := ksTest(baseValues, currValues)
		baseMean := mean(baseValues)
		currMean := mean(currValues)

		shiftPercent := 0.0
		if baseMean != 0 {
			shiftPercent = (currMean - baseMean) / baseMean * 100
		}

		results = append(results, audit.FeatureDrift{
			Feature:          feature.name,
			KSStatistic:      statistic,
			PValue:           pValue,
			BaselineMean:     baseMean,
			CurrentMean:      currMean,
			MeanShiftPercent: shiftPercent,
			Drifted:          statistic > e.cfg.KSCriticalValue || pValue < e.cfg.PValueCutoff,
		})
	}
	return results
}

func extract(records []audit.Record, value func(audit.Record) float64) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = value(r)
	}
	return out
}

func (e *Engine) score(acc audit.AccuracyDrift, pred audit.PredictionDrift, drifted, tracked int) float64 {
	accSeverity := clamp(acc.AccuracyDropPercent * e.cfg.AccuracySeverityScale)
	predSeverity := clamp(math.Abs(pred.RateChangePercent) * e.cfg.PredictionSeverityScale)

	featureSeverity := 0.0
	if tracked > 0 {
		featureSeverity = float64(drifted) / float64(tracked) * 100
	}

	return clamp(e.cfg.AccuracyWeight*accSeverity +
		e.cfg.PredictionWeight*predSeverity +
		e.cfg.FeatureWeight*featureSeverity)
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

func (e *Engine) severity(score float64) audit.DriftSeverity {
	switch {
	case score < 20:
		return audit.DriftNone
	case score < 40:
		return audit.DriftMinor
	case score < 70:
		return audit.DriftModerate
	default:
		return audit.DriftSevere
	}
}

func (e *Engine) explanation(severity audit.DriftSeverity, acc audit.AccuracyDrift, drifted []audit.FeatureDrift) string {
	switch severity {
	case audit.DriftNone:
		return "Model performance is stable. No significant drift detected."
	case audit.DriftMinor:
		return "Minor drift indicators present. Continue monitoring model inputs."
	default:
		names := make([]string, len(drifted))
		for i, f := range drifted {
			names[i] = f.Feature
		}
		detail := "no individual feature crossed the detection threshold"
		if len(names) > 0 {
			detail = fmt.Sprintf("drifted features: %s", strings.Join(names, ", "))
		}
		return fmt.Sprintf(
			"Significant drift detected. Accuracy dropped %.1f%%; %s.",
			acc.AccuracyDropPercent, detail)
	}
}
