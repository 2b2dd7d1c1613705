package bias

import (
	"fmt"
	"sort"

	"github.com/sentinelhq/sentinel/internal/audit"
	"github.com/sentinelhq/sentinel/internal/config"
)

// Engine computes disparate-impact ratios and proxy-variable signals for
// the current snapshot. It is a pure function of its inputs and safe for
// concurrent use.
type Engine struct {
	cfg config.BiasConfig
}

// New creates a bias engine with the given thresholds and weights.
func New(cfg config.BiasConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Analyze runs the full bias analysis over the current snapshot.
func (e *Engine) Analyze(snap audit.Snapshot) audit.BiasReport {
	genderDI := e.disparateImpact(approvalRatesBy(snap.Records, func(r audit.Record) string {
		return r.Gender
	}))
	ageBias := e.ageBracketBias(snap.Records)
	proxy := e.incomeProxy(snap.Records, genderDI)

	score := e.score(genderDI, ageBias, proxy)
	violations := e.violations(genderDI, ageBias, proxy)

	return audit.BiasReport{
		Score:       score,
		GenderDI:    genderDI,
		AgeBias:     ageBias,
		IncomeProxy: proxy,
		Violations:  violations,
		Explanation: e.explanation(score, genderDI),
	}
}

// approvalRatesBy partitions records by key and returns the favorable
// prediction rate per group.
func approvalRatesBy(records []audit.Record, key func(audit.Record) string) map[string]float64 {
	counts := make(map[string]int)
	approved := make(map[string]int)
	for _, r := range records {
		k := key(r)
		counts[k]++
		if r.Prediction == 1 {
			approved[k]++
		}
	}

	rates := make(map[string]float64, len(counts))
	for k, n := range counts {
		rates[k] = float64(approved[k]) / float64(n)
	}
	return rates
}

// disparateImpact derives the privileged and unprivileged groups from the
// observed rates. The assignment is computed from the data, never assumed,
// so the analysis is symmetric under group relabeling. A partition with a
// single group, or a privileged rate of zero, reports a ratio of 1.0
// rather than failing.
func (e *Engine) disparateImpact(rates map[string]float64) audit.GroupDisparity {
	if len(rates) < 2 {
		return audit.GroupDisparity{Ratio: 1.0, Threshold: e.cfg.DIThreshold}
	}

	// Sorted iteration keeps privileged/unprivileged assignment
	// deterministic when two groups share the same rate.
	groups := make([]string, 0, len(rates))
	for g := range rates {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	privileged, unprivileged := groups[0], groups[0]
	for _, g := range groups {
		if rates[g] > rates[privileged] {
			privileged = g
		}
		if rates[g] < rates[unprivileged] {
			unprivileged = g
		}
	}

	ratio := 1.0
	if rates[privileged] > 0 {
		ratio = rates[unprivileged] / rates[privileged]
	}

	return audit.GroupDisparity{
		Ratio:             ratio,
		Violation:         ratio < e.cfg.DIThreshold,
		PrivilegedGroup:   privileged,
		PrivilegedRate:    rates[privileged],
		UnprivilegedGroup: unprivileged,
		UnprivilegedRate:  rates[unprivileged],
		Threshold:         e.cfg.DIThreshold,
	}
}

// ageBrackets orders the brackets for deterministic reporting.
var ageBrackets = []string{"18-30", "31-45", "46-60", "60+"}

func ageBracket(age int) string {
	switch {
	case age <= 30:
		return "18-30"
	case age <= 45:
		return "31-45"
	case age <= 60:
		return "46-60"
	default:
		return "60+"
	}
}

// ageBracketBias repeats the disparate-impact computation across age
// brackets, comparing the highest- and lowest-rate brackets.
func (e *Engine) ageBracketBias(records []audit.Record) audit.BracketDisparity {
	rates := approvalRatesBy(records, func(r audit.Record) string {
		return ageBracket(r.Age)
	})

	highest, lowest := "", ""
	for _, bracket := range ageBrackets {
		rate, ok := rates[bracket]
		if !ok {
			continue
		}
		if highest == "" || rate > rates[highest] {
			highest = bracket
		}
		if lowest == "" || rate < rates[lowest] {
			lowest = bracket
		}
	}

	ratio := 1.0
	if highest != "" && rates[highest] > 0 {
		ratio = rates[lowest] / rates[highest]
	}

	return audit.BracketDisparity{
		Ratio:          ratio,
		Violation:      ratio < e.cfg.DIThreshold,
		ApprovalRates:  rates,
		HighestBracket: highest,
		LowestBracket:  lowest,
	}
}

// incomeProxy compares the mean income of approved members between the
// privileged and unprivileged groups. A large relative gap indicates the
// income feature may be standing in for the protected attribute.
func (e *Engine) incomeProxy(records []audit.Record, di audit.GroupDisparity) audit.ProxyFinding {
	privMean := meanIncomeApproved(records, di.PrivilegedGroup)
	unprivMean := meanIncomeApproved(records, di.UnprivilegedGroup)

	finding := audit.ProxyFinding{
		PrivilegedApprovedMean:   privMean,
		UnprivilegedApprovedMean: unprivMean,
		Explanation:              "No significant income proxy bias detected.",
	}

	// No approved members in one group means the gap is undefined; that
	// is a degenerate partition, not a proxy signal.
	if privMean == 0 || unprivMean == 0 || di.PrivilegedGroup == di.UnprivilegedGroup {
		return finding
	}

	max := privMean
	if unprivMean > max {
		max = unprivMean
	}
	gap := (privMean - unprivMean) / max
	if gap < 0 {
		gap = -gap
	}

	finding.GapPercent = gap * 100
	if gap > e.cfg.ProxySensitivity {
		finding.Detected = true
		finding.Explanation = fmt.Sprintf(
			"Income may be used as a proxy that disadvantages %s applicants.",
			di.UnprivilegedGroup)
	}
	return finding
}

func meanIncomeApproved(records []audit.Record, group string) float64 {
	sum, n := 0.0, 0
	for _, r := range records {
		if r.Gender == group && r.Prediction == 1 {
			sum += r.Income
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// severityTerm maps a disparate-impact ratio onto a 0-100 severity scale.
func severityTerm(ratio float64) float64 {
	term := (1 - ratio) * 100
	if term < 0 {
		return 0
	}
	return term
}

func (e *Engine) score(gender audit.GroupDisparity, age audit.BracketDisparity, proxy audit.ProxyFinding) float64 {
	proxyTerm := 0.0
	if proxy.Detected {
		proxyTerm = e.cfg.ProxyPenalty
	}

	score := e.cfg.PrimaryWeight*severityTerm(gender.Ratio) +
		e.cfg.SecondaryWeight*severityTerm(age.Ratio) +
		e.cfg.ProxyWeight*proxyTerm

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ratioSeverity assigns the violation tier for a disparate-impact ratio.
func (e *Engine) ratioSeverity(ratio float64) audit.Severity {
	if ratio < e.cfg.CriticalRatio {
		return audit.SeverityCritical
	}
	return audit.SeverityHigh
}

func (e *Engine) violations(gender audit.GroupDisparity, age audit.BracketDisparity, proxy audit.ProxyFinding) []audit.BiasViolation {
	var violations []audit.BiasViolation

	if gender.Violation {
		violations = append(violations, audit.BiasViolation{
			Type:      "Gender Disparate Impact",
			Severity:  e.ratioSeverity(gender.Ratio),
			Value:     gender.Ratio,
			Threshold: e.cfg.DIThreshold,
			Description: fmt.Sprintf(
				"%s approval rate (%.1f%%) is significantly lower than %s rate (%.1f%%)",
				gender.UnprivilegedGroup, gender.UnprivilegedRate*100,
				gender.PrivilegedGroup, gender.PrivilegedRate*100),
		})
	}

	if age.Violation {
		violations = append(violations, audit.BiasViolation{
			Type:      "Age Group Disparate Impact",
			Severity:  e.ratioSeverity(age.Ratio),
			Value:     age.Ratio,
			Threshold: e.cfg.DIThreshold,
			Description: fmt.Sprintf(
				"Age group %q has a significantly lower approval rate than group %q",
				age.LowestBracket, age.HighestBracket),
		})
	}

	if proxy.Detected {
		violations = append(violations, audit.BiasViolation{
			Type:        "Income Proxy Bias",
			Severity:    audit.SeverityModerate,
			Value:       proxy.GapPercent,
			Threshold:   e.cfg.ProxySensitivity * 100,
			Description: proxy.Explanation,
		})
	}

	return violations
}

func (e *Engine) explanation(score float64, gender audit.GroupDisparity) string {
	switch {
	case score < 20:
		return "No significant bias detected. Model shows fair treatment across demographic groups."
	case score < 50:
		return "Minor bias indicators present. Monitor approval rates across demographics."
	default:
		return fmt.Sprintf(
			"Severe bias detected. Disparate Impact ratio of %.2f violates the 80%% rule.",
			gender.Ratio)
	}
}
