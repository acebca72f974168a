package app

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"speclens/domain/audit"
	"speclens/domain/checklist"
	"speclens/domain/core"
	"speclens/domain/document"
	"speclens/internal/errors"
	"speclens/internal/profile"
	"speclens/ports"
)

// AuditService orchestrates one audit run: deterministic evaluation against
// the checklist, contextual evaluation through the configured auditor, score
// blending, and persistence.
type AuditService struct {
	library *checklist.Library
	auditor ports.ContextualAuditor
	repo    ports.ReportRepository
	opts    AuditServiceOptions
	sem     *semaphore.Weighted
}

// AuditServiceOptions carries the runtime limits the container reads from
// configuration.
type AuditServiceOptions struct {
	// StrictContextual makes contextual unavailability fail the audit
	// instead of degrading it. Requests can override per run.
	StrictContextual bool
	// TruncateChars caps the text sent to the contextual provider, in
	// runes. Zero disables truncation.
	TruncateChars int
	// MaxDocumentBytes rejects documents above this size outright. Zero
	// disables the cap.
	MaxDocumentBytes int
	// MaxConcurrent bounds simultaneous audit runs. Zero or negative
	// means unbounded.
	MaxConcurrent int
}

// AuditRequest defines inputs for one audit run
type AuditRequest struct {
	Text   string
	Domain string
	// Strict overrides the configured strict-contextual default when set
	Strict *bool
}

// NewAuditService creates an audit service
func NewAuditService(library *checklist.Library, auditor ports.ContextualAuditor, repo ports.ReportRepository, opts AuditServiceOptions) *AuditService {
	var sem *semaphore.Weighted
	if opts.MaxConcurrent > 0 {
		sem = semaphore.NewWeighted(int64(opts.MaxConcurrent))
	}
	return &AuditService{
		library: library,
		auditor: auditor,
		repo:    repo,
		opts:    opts,
		sem:     sem,
	}
}

// RunAudit executes a full audit and persists the resulting report.
//
// Both evaluators run concurrently: the contextual call goes out first, the
// deterministic pass runs while it is in flight. In strict mode a contextual
// transport failure aborts the run with CONTEXTUAL_UNAVAILABLE; a malformed
// payload never does, it degrades the contextual side instead.
func (s *AuditService) RunAudit(ctx context.Context, req AuditRequest) (*audit.Report, error) {
	startTime := time.Now()

	if s.opts.MaxDocumentBytes > 0 && len(req.Text) > s.opts.MaxDocumentBytes {
		return nil, errors.InputTooLarge("document exceeds the maximum audit size")
	}

	doc, err := document.New(req.Text, req.Domain)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, errors.Wrap(err, "audit run cancelled while queued")
		}
		defer s.sem.Release(1)
	}

	auditID := core.NewAuditID()
	log.Printf("[AuditService] Audit %s started - domain=%s, chars=%d", auditID, doc.Domain, doc.Chars())

	contextualText, truncated := doc.ContextualText(s.opts.TruncateChars)
	outcomeChan := make(chan audit.ContextualOutcome, 1)
	go func() {
		outcomeChan <- s.auditor.Evaluate(ctx, ports.ContextualRequest{
			Text:      contextualText,
			Domain:    doc.Domain,
			Truncated: truncated,
		})
	}()

	detScores := s.library.Evaluate(profile.Build(doc))
	outcome := <-outcomeChan

	strict := s.opts.StrictContextual
	if req.Strict != nil {
		strict = *req.Strict
	}
	if strict && outcome.Failed() {
		log.Printf("[AuditService] Audit %s aborted - contextual unavailable in strict mode: %s", auditID, outcome.Reason)
		return nil, errors.ContextualUnavailable("contextual evaluation unavailable in strict mode", outcome.Err)
	}

	truncatedTo := 0
	if truncated {
		truncatedTo = s.opts.TruncateChars
	}

	report := audit.Assemble(audit.AssembleInput{
		AuditID:          auditID,
		Doc:              doc,
		Deterministic:    detScores,
		Contextual:       outcome,
		TruncatedTo:      truncatedTo,
		ChecklistVersion: s.library.Version(),
		StartedAt:        startTime,
	})

	// A computed report outlives a storage hiccup: log and keep going.
	if err := s.repo.Save(ctx, report); err != nil {
		log.Printf("[AuditService] Failed to persist report %s: %v", report.ID, err)
	}

	log.Printf("[AuditService] Audit %s completed - score=%d, risk=%s, contextual=%s, findings=%d in %dms",
		report.ID, report.ClarityScore, report.RiskLevel, report.ContextualStatus, len(report.Findings), report.RuntimeMs)
	return report, nil
}

// GetReport loads a stored report by id
func (s *AuditService) GetReport(ctx context.Context, id core.AuditID) (*audit.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if core.IsNotFoundError(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to load report")
	}
	return report, nil
}

// ListReports returns recent report summaries, newest first
func (s *AuditService) ListReports(ctx context.Context, limit, offset int) ([]audit.ReportSummary, error) {
	summaries, err := s.repo.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reports")
	}
	return summaries, nil
}

// Checklist exposes the active checklist descriptor for API consumers
func (s *AuditService) Checklist() checklist.Descriptor {
	return s.library.Describe()
}
