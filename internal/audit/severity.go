package audit

// Severity grades a finding or recommendation.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityModerate Severity = "Moderate"
	SeverityLow      Severity = "Low"
)

// severityTable is the single exhaustive mapping for severity presentation.
// Consumers (dashboard, report renderer) read from here instead of
// redefining colors or ordering.
var severityTable = map[Severity]struct {
	rank  int
	color string
}{
	SeverityCritical: {rank: 0, color: "#dc2626"},
	SeverityHigh:     {rank: 1, color: "#ea580c"},
	SeverityModerate: {rank: 2, color: "#d97706"},
	SeverityLow:      {rank: 3, color: "#16a34a"},
}

// Rank returns the sort rank of the severity; lower ranks sort first.
// Unknown severities rank last.
func (s Severity) Rank() int {
	if entry, ok := severityTable[s]; ok {
		return entry.rank
	}
	return len(severityTable)
}

// Color returns the display color associated with the severity.
func (s Severity) Color() string {
	if entry, ok := severityTable[s]; ok {
		return entry.color
	}
	return "#6b7280"
}
