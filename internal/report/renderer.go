package report

import (
	"bytes"
	"html/template"

	"github.com/sentinelhq/sentinel/internal/audit"
	apperrors "github.com/sentinelhq/sentinel/internal/errors"
)

// Renderer turns a completed audit into a standalone HTML document
// suitable for download and offline review.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the report template once at startup.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"pct":         func(v float64) float64 { return v * 100 },
		"statusColor": StatusColor,
	}).Parse(reportTemplate)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to parse report template", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render produces the HTML report for one audit. Rendering failure
// leaves the stored audit untouched and retrievable.
func (r *Renderer) Render(result *audit.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, result); err != nil {
		return nil, apperrors.NewReportError(result.AuditID, err)
	}
	return buf.Bytes(), nil
}

// statusColors mirrors the severity palette for the composite verdict.
var statusColors = map[audit.Status]string{
	audit.StatusPass:    "#16a34a",
	audit.StatusWarning: "#d97706",
	audit.StatusFail:    "#dc2626",
}

// StatusColor returns the display color for a risk status.
func StatusColor(s audit.Status) string {
	if color, ok := statusColors[s]; ok {
		return color
	}
	return "#6b7280"
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>AI Risk Audit {{.AuditID}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem auto; max-width: 960px; color: #111827; }
  h1, h2 { border-bottom: 1px solid #e5e7eb; padding-bottom: 0.3rem; }
  table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
  th, td { border: 1px solid #e5e7eb; padding: 0.5rem 0.75rem; text-align: left; }
  th { background: #f9fafb; }
  .badge { display: inline-block; padding: 0.2rem 0.6rem; border-radius: 0.25rem; color: #fff; font-weight: 600; }
  .muted { color: #6b7280; font-size: 0.9rem; }
</style>
</head>
<body>
<h1>AI Risk Audit Report</h1>
<p class="muted">{{.AuditID}} &middot; {{.Timestamp.Format "2006-01-02 15:04:05 UTC"}} &middot; dataset mode: {{.DatasetMode}}</p>

<h2>Verdict</h2>
<p>
  AI Risk Score: <strong>{{printf "%.1f" .AIRiskScore}}</strong>
  <span class="badge" style="background: {{statusColor .RiskStatus}}">{{.RiskStatus}}</span>
</p>
<p>{{.ExecutiveSummary}}</p>

<h2>Score Breakdown</h2>
<table>
  <tr><th>Component</th><th>Score</th><th>Contribution</th></tr>
  <tr><td>Bias</td><td>{{printf "%.1f" .BiasRiskScore}}</td><td>{{printf "%.1f" .RiskComponents.BiasContribution}}</td></tr>
  <tr><td>Drift</td><td>{{printf "%.1f" .DriftRiskScore}}</td><td>{{printf "%.1f" .RiskComponents.DriftContribution}}</td></tr>
  <tr><td>Explainability</td><td>{{printf "%.1f" .ExplainabilityScore}}</td><td>{{printf "%.1f" .RiskComponents.ExplainabilityContribution}}</td></tr>
</table>

<h2>Bias Findings</h2>
<p>{{.BiasDetails.Explanation}}</p>
<table>
  <tr><th>Violation</th><th>Severity</th><th>Value</th><th>Description</th></tr>
  {{range .BiasDetails.Violations}}
  <tr>
    <td>{{.Type}}</td>
    <td><span class="badge" style="background: {{.Severity.Color}}">{{.Severity}}</span></td>
    <td>{{printf "%.3f" .Value}}</td>
    <td>{{.Description}}</td>
  </tr>
  {{else}}
  <tr><td colspan="4">No violations detected.</td></tr>
  {{end}}
</table>

<h2>Drift Findings</h2>
<p>{{.DriftDetails.Explanation}}</p>
<table>
  <tr><th>Feature</th><th>KS Statistic</th><th>p-value</th><th>Mean Shift</th><th>Drifted</th></tr>
  {{range .DriftDetails.Features}}
  <tr>
    <td>{{.Feature}}</td>
    <td>{{printf "%.3f" .KSStatistic}}</td>
    <td>{{printf "%.4f" .PValue}}</td>
    <td>{{printf "%.1f" .MeanShiftPercent}}%</td>
    <td>{{if .Drifted}}yes{{else}}no{{end}}</td>
  </tr>
  {{end}}
</table>
<p class="muted">
  Accuracy: {{printf "%.1f" (pct .DriftDetails.AccuracyDrift.BaselineAccuracy)}}% &rarr;
  {{printf "%.1f" (pct .DriftDetails.AccuracyDrift.CurrentAccuracy)}}%.
  Approval rate: {{printf "%.1f" (pct .DriftDetails.PredictionDrift.BaselineApprovalRate)}}% &rarr;
  {{printf "%.1f" (pct .DriftDetails.PredictionDrift.CurrentApprovalRate)}}%.
</p>

<h2>Explainability</h2>
<p>{{.ExplainabilityDetails.Explanation}}</p>
<ul>
  {{range .ExplainabilityDetails.Gaps}}<li>{{.}}</li>{{else}}<li>No explainability gaps identified.</li>{{end}}
</ul>

<h2>Recommendations</h2>
<table>
  <tr><th>ID</th><th>Severity</th><th>Category</th><th>Title</th><th>Action</th></tr>
  {{range .Recommendations}}
  <tr>
    <td>{{.ID}}</td>
    <td><span class="badge" style="background: {{.Severity.Color}}">{{.Severity}}</span></td>
    <td>{{.Category}}</td>
    <td>{{.Title}}</td>
    <td>{{.Action}}</td>
  </tr>
  {{else}}
  <tr><td colspan="5">No recommendations.</td></tr>
  {{end}}
</table>

<h2>Dataset</h2>
<p class="muted">
  {{.DatasetStats.TotalRecords}} records &middot;
  approval rate {{printf "%.1f" (pct .DatasetStats.ApprovalRate)}}% &middot;
  accuracy {{printf "%.1f" (pct .DatasetStats.Accuracy)}}%
</p>
</body>
</html>`
