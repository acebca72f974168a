package migration

import (
	"context"

	"speclens/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createAuditReportsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create audit_reports table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createAuditReportsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_reports (
			id UUID PRIMARY KEY,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			domain VARCHAR(100) NOT NULL,
			document_sha256 CHAR(64) NOT NULL,
			clarity_score INTEGER NOT NULL,
			risk_level VARCHAR(20) NOT NULL,
			contextual_status VARCHAR(20) NOT NULL,
			finding_count INTEGER NOT NULL,
			checklist_version VARCHAR(50) NOT NULL,
			engine_version VARCHAR(50) NOT NULL,
			payload JSONB NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_audit_reports_created_at ON audit_reports(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_audit_reports_document ON audit_reports(document_sha256)",
		"CREATE INDEX IF NOT EXISTS idx_audit_reports_risk ON audit_reports(risk_level)",
	}

	for _, indexSQL := range indexes {
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}
