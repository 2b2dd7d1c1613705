package audit

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var idPattern = regexp.MustCompile(`^AUDIT-\d{8}-[0-9A-Z]{6}$`)

// NewID generates an audit identifier of the form AUDIT-YYYYMMDD-XXXXXX.
// The suffix comes from a fresh UUID so identifiers are unique across
// concurrent audits on the same day.
func NewID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("AUDIT-%s-%s", now.UTC().Format("20060102"), suffix)
}

// ValidID reports whether id matches the audit identifier format.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}
