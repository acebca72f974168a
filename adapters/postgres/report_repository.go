package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"speclens/domain/audit"
	"speclens/domain/core"
	"speclens/ports"
)

// ReportRepositoryImpl implements ReportRepository for PostgreSQL. The full
// report is stored as a JSONB payload next to the columns list endpoints
// filter and sort on.
type ReportRepositoryImpl struct {
	db *sqlx.DB
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &ReportRepositoryImpl{db: db}
}

// Save upserts a finished report
func (r *ReportRepositoryImpl) Save(ctx context.Context, report *audit.Report) error {
	payloadJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_reports (
			id, created_at, domain, document_sha256, clarity_score,
			risk_level, contextual_status, finding_count,
			checklist_version, engine_version, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			clarity_score = EXCLUDED.clarity_score,
			risk_level = EXCLUDED.risk_level,
			contextual_status = EXCLUDED.contextual_status,
			finding_count = EXCLUDED.finding_count,
			payload = EXCLUDED.payload`,
		report.ID.String(), report.CreatedAt.Time(), report.Domain, report.DocumentSHA256,
		report.ClarityScore, string(report.RiskLevel), string(report.ContextualStatus),
		len(report.Findings), report.ChecklistVersion, report.EngineVersion, payloadJSON)

	return err
}

// GetByID loads one report from its JSONB payload
func (r *ReportRepositoryImpl) GetByID(ctx context.Context, id core.AuditID) (*audit.Report, error) {
	var payloadJSON []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT payload FROM audit_reports WHERE id = $1
	`, id.String()).Scan(&payloadJSON)
	if err == sql.ErrNoRows {
		return nil, core.NewReportNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	var report audit.Report
	if err := json.Unmarshal(payloadJSON, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report payload: %w", err)
	}
	return &report, nil
}

// ListRecent returns newest-first summaries without touching payloads
func (r *ReportRepositoryImpl) ListRecent(ctx context.Context, limit, offset int) ([]audit.ReportSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, domain, clarity_score, risk_level, contextual_status, finding_count
		FROM audit_reports
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	summaries := make([]audit.ReportSummary, 0, limit)
	for rows.Next() {
		var (
			s         audit.ReportSummary
			id        string
			createdAt sql.NullTime
			risk      string
			status    string
		)
		if err := rows.Scan(&id, &createdAt, &s.Domain, &s.ClarityScore, &risk, &status, &s.FindingCount); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		s.ID = core.AuditID(id)
		if createdAt.Valid {
			s.CreatedAt = core.NewTimestamp(createdAt.Time)
		}
		s.RiskLevel = audit.RiskLevel(risk)
		s.ContextualStatus = audit.ContextualStatus(status)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Count returns the number of stored reports
func (r *ReportRepositoryImpl) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_reports`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}
