package audit

import "time"

// Mode selects which dataset snapshot an audit runs against.
type Mode string

const (
	ModeClean   Mode = "clean"
	ModeBiased  Mode = "biased"
	ModeDrifted Mode = "drifted"
)

// KnownModes lists every mode the assembler accepts.
var KnownModes = []Mode{ModeClean, ModeBiased, ModeDrifted}

// Valid reports whether m is one of the known dataset modes.
func (m Mode) Valid() bool {
	for _, known := range KnownModes {
		if m == known {
			return true
		}
	}
	return false
}

// Status is the pass/warning/fail verdict derived from the composite score.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusWarning Status = "WARNING"
	StatusFail    Status = "FAIL"
)

// SnapshotKind tags a snapshot as the comparison baseline or the live window.
type SnapshotKind string

const (
	KindBaseline SnapshotKind = "baseline"
	KindCurrent  SnapshotKind = "current"
)

// Record is a single scored subject. Immutable once generated.
type Record struct {
	ID             string  `json:"id"`
	Age            int     `json:"age"`
	Gender         string  `json:"gender"`
	Income         float64 `json:"income"`
	CreditScore    int     `json:"credit_score"`
	EmploymentType string  `json:"employment_type"`
	DebtRatio      float64 `json:"debt_ratio"`
	Prediction     int     `json:"prediction"`
	Probability    float64 `json:"probability"`
	ActualOutcome  int     `json:"actual_outcome"`
}

// Snapshot is an ordered collection of records plus its kind tag.
type Snapshot struct {
	Kind    SnapshotKind `json:"kind"`
	Records []Record     `json:"records"`
}

// Len returns the number of records in the snapshot.
func (s Snapshot) Len() int { return len(s.Records) }

// ApprovalRate is the fraction of favorable predictions in the snapshot.
func (s Snapshot) ApprovalRate() float64 {
	if len(s.Records) == 0 {
		return 0
	}
	approved := 0
	for _, r := range s.Records {
		if r.Prediction == 1 {
			approved++
		}
	}
	return float64(approved) / float64(len(s.Records))
}

// Accuracy is the fraction of predictions matching the ground-truth label.
func (s Snapshot) Accuracy() float64 {
	if len(s.Records) == 0 {
		return 0
	}
	correct := 0
	for _, r := range s.Records {
		if r.Prediction == r.ActualOutcome {
			correct++
		}
	}
	return float64(correct) / float64(len(s.Records))
}

// ModelMetadata describes interpretability signals available for the
// deployed model, supplied alongside the snapshot by the dataset provider.
type ModelMetadata struct {
	FeatureImportanceAvailable bool `json:"feature_importance_available"`
	ThresholdsDocumented       bool `json:"thresholds_documented"`
}

// GroupDisparity holds a disparate-impact comparison between the computed
// privileged and unprivileged partitions of a protected attribute.
type GroupDisparity struct {
	Ratio             float64 `json:"di_ratio"`
	Violation         bool    `json:"violation"`
	PrivilegedGroup   string  `json:"privileged_group"`
	PrivilegedRate    float64 `json:"privileged_rate"`
	UnprivilegedGroup string  `json:"unprivileged_group"`
	UnprivilegedRate  float64 `json:"unprivileged_rate"`
	Threshold         float64 `json:"threshold"`
}

// BracketDisparity compares favorable-outcome rates across the brackets of a
// secondary protected attribute such as age.
type BracketDisparity struct {
	Ratio          float64            `json:"di_ratio"`
	Violation      bool               `json:"violation"`
	ApprovalRates  map[string]float64 `json:"approval_rates"`
	HighestBracket string             `json:"highest_bracket"`
	LowestBracket  string             `json:"lowest_bracket"`
}

// ProxyFinding flags a numeric attribute acting as a stand-in for a
// protected attribute.
type ProxyFinding struct {
	Detected                 bool    `json:"proxy_detected"`
	GapPercent               float64 `json:"gap_percent"`
	PrivilegedApprovedMean   float64 `json:"privileged_approved_mean"`
	UnprivilegedApprovedMean float64 `json:"unprivileged_approved_mean"`
	Explanation              string  `json:"explanation"`
}

// BiasViolation is one detected fairness violation with its severity tier.
type BiasViolation struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Value       float64  `json:"value"`
	Threshold   float64  `json:"threshold"`
	Description string   `json:"description"`
}

// BiasReport is the bias engine output.
type BiasReport struct {
	Score       float64          `json:"score"`
	GenderDI    GroupDisparity   `json:"gender_di"`
	AgeBias     BracketDisparity `json:"age_bias"`
	IncomeProxy ProxyFinding     `json:"income_proxy"`
	Violations  []BiasViolation  `json:"violations"`
	Explanation string           `json:"explanation"`
}

// AccuracyDrift compares classification accuracy between snapshots.
type AccuracyDrift struct {
	BaselineAccuracy    float64 `json:"baseline_accuracy"`
	CurrentAccuracy     float64 `json:"current_accuracy"`
	AccuracyDrop        float64 `json:"accuracy_drop"`
	AccuracyDropPercent float64 `json:"accuracy_drop_percent"`
	SignificantDrop     bool    `json:"significant_drop"`
}

// PredictionDrift compares favorable-prediction rates between snapshots.
type PredictionDrift struct {
	BaselineApprovalRate float64 `json:"baseline_approval_rate"`
	CurrentApprovalRate  float64 `json:"current_approval_rate"`
	RateChange           float64 `json:"rate_change"`
	RateChangePercent    float64 `json:"rate_change_percent"`
	SignificantChange    bool    `json:"significant_change"`
}

// FeatureDrift is the per-feature two-sample comparison.
type FeatureDrift struct {
	Feature          string  `json:"feature"`
	KSStatistic      float64 `json:"ks_statistic"`
	PValue           float64 `json:"p_value"`
	BaselineMean     float64 `json:"baseline_mean"`
	CurrentMean      float64 `json:"current_mean"`
	MeanShiftPercent float64 `json:"mean_shift_percent"`
	Drifted          bool    `json:"drifted"`
}

// DriftSeverity labels the drift score band.
type DriftSeverity string

const (
	DriftNone     DriftSeverity = "none"
	DriftMinor    DriftSeverity = "minor"
	DriftModerate DriftSeverity = "moderate"
	DriftSevere   DriftSeverity = "severe"
)

// DriftReport is the drift engine output. Features holds every tracked
// feature; a feature appears in DriftedFeatures iff its statistic crossed
// the detection threshold.
type DriftReport struct {
	Score           float64         `json:"score"`
	Severity        DriftSeverity   `json:"severity"`
	AccuracyDrift   AccuracyDrift   `json:"accuracy_drift"`
	PredictionDrift PredictionDrift `json:"prediction_drift"`
	Features        []FeatureDrift  `json:"features"`
	DriftedFeatures []FeatureDrift  `json:"drifted_features"`
	Explanation     string          `json:"explanation"`
}

// ExplainabilityReport is the explainability engine output. Higher score
// means better interpretability.
type ExplainabilityReport struct {
	Score       float64  `json:"score"`
	Gaps        []string `json:"gaps"`
	Explanation string   `json:"explanation"`
}

// RiskComponents are the weighted contributions summing to the composite.
type RiskComponents struct {
	BiasContribution           float64 `json:"bias_contribution"`
	DriftContribution          float64 `json:"drift_contribution"`
	ExplainabilityContribution float64 `json:"explainability_contribution"`
}

// Recommendation is one remediation item derived from a detected finding.
type Recommendation struct {
	ID          string   `json:"id"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Action      string   `json:"action"`
	Impact      string   `json:"impact"`
	Effort      string   `json:"effort"`
}

// Recommendation categories.
const (
	CategoryFairness     = "Fairness"
	CategoryStability    = "Stability"
	CategoryTransparency = "Transparency"
)

// DatasetStats summarizes the audited snapshot.
type DatasetStats struct {
	TotalRecords int     `json:"total_records"`
	ApprovalRate float64 `json:"approval_rate"`
	Accuracy     float64 `json:"accuracy"`
}

// Result is one complete, immutable audit. It is assembled once and never
// mutated; the JSON shape is the contract consumed by the dashboard, the
// store and the report renderer.
type Result struct {
	AuditID     string    `json:"audit_id"`
	Timestamp   time.Time `json:"timestamp"`
	DatasetMode Mode      `json:"dataset_mode"`

	AIRiskScore    float64        `json:"ai_risk_score"`
	RiskStatus     Status         `json:"risk_status"`
	RiskComponents RiskComponents `json:"risk_components"`

	BiasRiskScore       float64 `json:"bias_risk_score"`
	DriftRiskScore      float64 `json:"drift_risk_score"`
	ExplainabilityScore float64 `json:"explainability_score"`

	BiasDetails           BiasReport           `json:"bias_details"`
	DriftDetails          DriftReport          `json:"drift_details"`
	ExplainabilityDetails ExplainabilityReport `json:"explainability_details"`

	Recommendations  []Recommendation `json:"recommendations"`
	ExecutiveSummary string           `json:"executive_summary"`
	DatasetStats     DatasetStats     `json:"dataset_stats"`
}
