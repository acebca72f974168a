package memory

import (
	"context"
	"sync"

	"speclens/domain/audit"
	"speclens/domain/core"
	"speclens/ports"
)

// ReportRepositoryImpl keeps reports in process memory. It is the default
// store when no DATABASE_URL is configured and the fixture for service
// tests. Reads return copies of nothing mutable: reports are never touched
// after assembly, so sharing pointers is safe.
type ReportRepositoryImpl struct {
	mu      sync.RWMutex
	reports map[core.AuditID]*audit.Report
	order   []core.AuditID
}

// NewReportRepository creates an empty in-memory repository
func NewReportRepository() ports.ReportRepository {
	return &ReportRepositoryImpl{
		reports: make(map[core.AuditID]*audit.Report),
	}
}

// Save stores a report, replacing any previous version in place
func (r *ReportRepositoryImpl) Save(ctx context.Context, report *audit.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reports[report.ID]; !exists {
		r.order = append(r.order, report.ID)
	}
	r.reports[report.ID] = report
	return nil
}

// GetByID returns a stored report or a not-found error
func (r *ReportRepositoryImpl) GetByID(ctx context.Context, id core.AuditID) (*audit.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, core.NewReportNotFoundError(id)
	}
	return report, nil
}

// ListRecent returns newest-first summaries by insertion order
func (r *ReportRepositoryImpl) ListRecent(ctx context.Context, limit, offset int) ([]audit.ReportSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]audit.ReportSummary, 0, limit)
	for i := len(r.order) - 1 - offset; i >= 0 && len(summaries) < limit; i-- {
		if report, ok := r.reports[r.order[i]]; ok {
			summaries = append(summaries, report.Summary())
		}
	}
	return summaries, nil
}

// Count returns the number of stored reports
func (r *ReportRepositoryImpl) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reports), nil
}
