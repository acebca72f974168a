package ports

import (
	"context"

	"speclens/domain/audit"
	"speclens/domain/core"
)

// ReportRepository defines the interface for audit report storage
type ReportRepository interface {
	Save(ctx context.Context, report *audit.Report) error
	GetByID(ctx context.Context, id core.AuditID) (*audit.Report, error)
	ListRecent(ctx context.Context, limit, offset int) ([]audit.ReportSummary, error)
	Count(ctx context.Context) (int, error)
}
