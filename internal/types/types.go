package types

import "time"

// AuditRequest is the request body for starting an audit.
type AuditRequest struct {
	DatasetMode string `json:"dataset_mode" binding:"required"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status       string         `json:"status"`
	Service      string         `json:"service"`
	Version      string         `json:"version"`
	Timestamp    time.Time      `json:"timestamp"`
	StoredAudits int            `json:"stored_audits"`
	Database     map[string]any `json:"database"`
	RateLimiter  map[string]any `json:"rate_limiter"`
}
