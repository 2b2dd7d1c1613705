package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/sentinelhq/sentinel/internal/audit"
	apperrors "github.com/sentinelhq/sentinel/internal/errors"
)

// Store is the persistence contract for completed audits. Audits are
// write-once: Create never overwrites an existing record.
type Store interface {
	Create(ctx context.Context, result *audit.Result) error
	GetByID(ctx context.Context, id string) (*audit.Result, error)
	ListRecent(ctx context.Context, limit int) ([]AuditSummary, error)
	Count(ctx context.Context) (int, error)
}

// AuditSummary is the compact history row, read from the denormalized
// columns without touching the payload.
type AuditSummary struct {
	AuditID     string       `json:"audit_id"`
	Timestamp   time.Time    `json:"timestamp"`
	DatasetMode audit.Mode   `json:"dataset_mode"`
	AIRiskScore float64      `json:"ai_risk_score"`
	RiskStatus  audit.Status `json:"risk_status"`
}

// SQLStore implements Store on the sqlite database.
type SQLStore struct {
	db *DB
}

// NewStore creates a SQLStore over the given database.
func NewStore(db *DB) *SQLStore {
	return &SQLStore{db: db}
}

// Create persists a completed audit. Writing an id that already exists
// fails; stored audits are immutable.
func (s *SQLStore) Create(ctx context.Context, result *audit.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return apperrors.NewInternalError("failed to encode audit result", err)
	}

	stmt, err := s.db.GetPreparedStatement("insert_audit")
	if err != nil {
		return apperrors.NewPersistenceError("audit store unavailable", err)
	}

	_, err = stmt.ExecContext(ctx,
		result.AuditID,
		result.Timestamp,
		string(result.DatasetMode),
		result.AIRiskScore,
		string(result.RiskStatus),
		result.BiasRiskScore,
		result.DriftRiskScore,
		result.ExplainabilityScore,
		string(payload),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return apperrors.NewPersistenceError(
				fmt.Sprintf("audit %s already exists", result.AuditID), err)
		}
		return apperrors.NewPersistenceError("failed to persist audit result", err)
	}

	return nil
}

// GetByID retrieves one audit by its identifier.
func (s *SQLStore) GetByID(ctx context.Context, id string) (*audit.Result, error) {
	stmt, err := s.db.GetPreparedStatement("get_audit")
	if err != nil {
		return nil, apperrors.NewPersistenceError("audit store unavailable", err)
	}

	var payload string
	err = stmt.QueryRowContext(ctx, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewAuditNotFound(id)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to read audit result", err)
	}

	var result audit.Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, apperrors.NewInternalError("failed to decode stored audit result", err)
	}
	return &result, nil
}

// ListRecent returns up to limit audit summaries, newest first.
func (s *SQLStore) ListRecent(ctx context.Context, limit int) ([]AuditSummary, error) {
	stmt, err := s.db.GetPreparedStatement("list_audits")
	if err != nil {
		return nil, apperrors.NewPersistenceError("audit store unavailable", err)
	}

	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list audit results", err)
	}
	defer rows.Close()

	summaries := make([]AuditSummary, 0, limit)
	for rows.Next() {
		var summary AuditSummary
		var mode, status string
		if err := rows.Scan(&summary.AuditID, &summary.Timestamp, &mode,
			&summary.AIRiskScore, &status); err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan audit summary", err)
		}
		summary.DatasetMode = audit.Mode(mode)
		summary.RiskStatus = audit.Status(status)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("failed to iterate audit summaries", err)
	}

	return summaries, nil
}

// Count returns the total number of stored audits.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	stmt, err := s.db.GetPreparedStatement("count_audits")
	if err != nil {
		return 0, apperrors.NewPersistenceError("audit store unavailable", err)
	}

	var count int
	if err := stmt.QueryRowContext(ctx).Scan(&count); err != nil {
		return 0, apperrors.NewPersistenceError("failed to count audit results", err)
	}
	return count, nil
}
