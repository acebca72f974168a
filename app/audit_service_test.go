package app

import (
	"context"
	stderrors "errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speclens/adapters/memory"
	"speclens/domain/audit"
	"speclens/domain/checklist"
	"speclens/domain/core"
	"speclens/domain/document"
	"speclens/internal/errors"
	"speclens/ports"
)

// stubAuditor returns a canned outcome and records the request it saw.
type stubAuditor struct {
	outcome  audit.ContextualOutcome
	lastReq  ports.ContextualRequest
	reqCount int
}

func (s *stubAuditor) Evaluate(ctx context.Context, req ports.ContextualRequest) audit.ContextualOutcome {
	s.lastReq = req
	s.reqCount++
	return s.outcome
}

type failingRepo struct {
	ports.ReportRepository
}

func (f *failingRepo) Save(ctx context.Context, report *audit.Report) error {
	return errors.DatabaseError("connection reset")
}

const vagueDoc = "The service exposes an API. The API should be fast."

func newService(t *testing.T, auditor ports.ContextualAuditor, opts AuditServiceOptions) (*AuditService, ports.ReportRepository) {
	t.Helper()
	repo := memory.NewReportRepository()
	return NewAuditService(checklist.MustDefault(), auditor, repo, opts), repo
}

func boolPtr(b bool) *bool { return &b }

func TestRunAuditHappyPath(t *testing.T) {
	ctxScores := map[audit.Category]audit.SubScore{
		audit.ContractCompleteness: {
			Category: audit.ContractCompleteness,
			Value:    15,
			Findings: []audit.Finding{{
				Category: audit.ContractCompleteness,
				Severity: audit.SeverityCritical,
				Source:   audit.SourceContextual,
				Message:  "No success response contract is defined",
			}},
		},
	}
	auditor := &stubAuditor{outcome: audit.OutcomeOK(ctxScores, "Mostly clear.", []audit.AcceptanceCriterion{
		{Given: "a running service", When: "the API is called", Then: "a response is returned"},
	})}
	svc, repo := newService(t, auditor, AuditServiceOptions{})

	report, err := svc.RunAudit(context.Background(), AuditRequest{Text: vagueDoc, Domain: document.DomainAPIBackend})
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, audit.ContextualOK, report.ContextualStatus)
	assert.Equal(t, "Mostly clear.", report.ExecutiveSummary)
	assert.Len(t, report.AcceptanceCriteria, 1)
	assert.Equal(t, "v1", report.ChecklistVersion)
	assert.Equal(t, audit.EngineVersion, report.EngineVersion)
	assert.Equal(t, core.ComputeDocumentHash(vagueDoc).String(), report.DocumentSHA256)

	// Deterministic side of the vague doc scores {0,0,0,11,0,0}. The
	// contextual side scores contract at 15 and leaves the rest at full
	// marks, so the rows blend to 6+8+8+13+4+2.
	assert.Equal(t, 41, report.ClarityScore)
	assert.Equal(t, audit.RiskHigh, report.RiskLevel)

	stored, err := repo.GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ClarityScore, stored.ClarityScore)

	assert.Equal(t, 1, auditor.reqCount)
	assert.False(t, auditor.lastReq.Truncated)
	assert.Equal(t, vagueDoc, auditor.lastReq.Text)
}

func TestRunAuditWellSpecifiedLowRisk(t *testing.T) {
	raw, err := os.ReadFile("../testdata/sample_requirement.md")
	require.NoError(t, err)

	auditor := &stubAuditor{outcome: audit.OutcomeOK(nil, "Contract, limits and failure paths are specified.", []audit.AcceptanceCriterion{
		{Given: "a valid request with an unused Idempotency-Key", When: "POST /v1/customers is called", Then: "the service responds 201 with the created customer"},
		{Given: "a request missing the name field", When: "POST /v1/customers is called", Then: "the service responds 400 with a field-level error"},
		{Given: "a key that already sent 60 requests this minute", When: "the next request arrives", Then: "the service responds 429"},
	})}
	svc, _ := newService(t, auditor, AuditServiceOptions{})

	report, err := svc.RunAudit(context.Background(), AuditRequest{Text: string(raw), Domain: document.DomainAPIBackend})
	require.NoError(t, err)

	// Deterministic rows score 30/20/16/15/10/2 on this document; the
	// confirming contextual side leaves every row at category max, so the
	// blend rounds to 30+20+18+15+10+3.
	assert.Equal(t, 96, report.ClarityScore)
	assert.Equal(t, audit.RiskLow, report.RiskLevel)
	assert.Equal(t, audit.ContextualOK, report.ContextualStatus)
	assert.Len(t, report.AcceptanceCriteria, 3)
}

func TestRunAuditStrictModeRefusesUnavailable(t *testing.T) {
	auditor := &stubAuditor{outcome: audit.OutcomeUnavailable(stderrors.New("dial tcp: connection refused"))}
	svc, repo := newService(t, auditor, AuditServiceOptions{StrictContextual: true})

	report, err := svc.RunAudit(context.Background(), AuditRequest{Text: vagueDoc, Domain: document.DomainAPIBackend})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, errors.CodeContextualUnavailable, errors.GetCode(err))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count, "refused audits must not persist reports")
}

func TestRunAuditUnavailableDegradesWhenNotStrict(t *testing.T) {
	auditor := &stubAuditor{outcome: audit.OutcomeUnavailable(stderrors.New("request timed out"))}
	svc, _ := newService(t, auditor, AuditServiceOptions{})

	report, err := svc.RunAudit(context.Background(), AuditRequest{Text: vagueDoc, Domain: document.DomainAPIBackend})
	require.NoError(t, err)

	assert.Equal(t, audit.ContextualUnavailableStatus, report.ContextualStatus)
	assert.Equal(t, "request timed out", report.ContextualReason)

	// No contextual penalty: contract row blends round(0.6*0+0.4*30)=12.
	assert.Equal(t, 47, report.ClarityScore)

	var caveat *audit.Finding
	for i, f := range report.Findings {
		if f.Category == audit.RiskAwareness && f.Severity == audit.SeverityInfo && strings.Contains(f.Message, "unavailable") {
			caveat = &report.Findings[i]
		}
	}
	require.NotNil(t, caveat, "expected an unavailability caveat finding")
}

func TestRunAuditStrictModeKeepsDegradedOutcomes(t *testing.T) {
	auditor := &stubAuditor{outcome: audit.OutcomeDegraded("payload failed validation after 3 attempts")}
	svc, _ := newService(t, auditor, AuditServiceOptions{StrictContextual: true})

	report, err := svc.RunAudit(context.Background(), AuditRequest{Text: vagueDoc, Domain: document.DomainAPIBackend})
	require.NoError(t, err, "strict mode only refuses unavailability, not malformed payloads")
	assert.Equal(t, audit.ContextualDegraded, report.ContextualStatus)
}

func TestRunAuditRequestOverridesStrictDefault(t *testing.T) {
	auditor := &stubAuditor{outcome: audit.OutcomeUnavailable(stderrors.New("no route to host"))}
	svc, _ := newService(t, auditor, AuditServiceOptions{StrictContextual: true})

	report, err := svc.RunAudit(context.Background(), AuditRequest{
		Text:   vagueDoc,
		Domain: document.DomainAPIBackend,
		Strict: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, audit.ContextualUnavailableStatus, report.ContextualStatus)

	svcLoose, _ := newService(t, auditor, AuditServiceOptions{})
	report, err = svcLoose.RunAudit(context.Background(), AuditRequest{
		Text:   vagueDoc,
		Domain: document.DomainAPIBackend,
		Strict: boolPtr(true),
	})
	require.Error(t, err)
	assert.Nil(t, report)
}

func TestRunAuditTruncatesContextualText(t *testing.T) {
	auditor := &stubAuditor{outcome: audit.OutcomeOK(map[audit.Category]audit.SubScore{}, "", nil)}
	svc, _ := newService(t, auditor, AuditServiceOptions{TruncateChars: 50})

	long := strings.Repeat("The rate limit is 60 requests per minute. ", 20)
	report, err := svc.RunAudit(context.Background(), AuditRequest{Text: long, Domain: document.DomainAPIBackend})
	require.NoError(t, err)

	assert.True(t, auditor.lastReq.Truncated)
	assert.Equal(t, 50, len([]rune(auditor.lastReq.Text)))
	assert.Equal(t, 50, report.TruncatedChars)

	found := false
	for _, f := range report.Findings {
		if f.Severity == audit.SeverityInfo && strings.Contains(f.Message, "truncated") {
			found = true
		}
	}
	assert.True(t, found, "expected a truncation notice finding")
}

func TestRunAuditRejectsEmptyDocument(t *testing.T) {
	auditor := &stubAuditor{outcome: audit.OutcomeDisabled()}
	svc, _ := newService(t, auditor, AuditServiceOptions{})

	_, err := svc.RunAudit(context.Background(), AuditRequest{Text: "   \n\t  ", Domain: document.DomainAPIBackend})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrEmptyDocument))
	assert.Equal(t, 0, auditor.reqCount, "rejected documents must not reach the provider")
}

func TestRunAuditRejectsOversizedDocument(t *testing.T) {
	auditor := &stubAuditor{outcome: audit.OutcomeDisabled()}
	svc, _ := newService(t, auditor, AuditServiceOptions{MaxDocumentBytes: 100})

	_, err := svc.RunAudit(context.Background(), AuditRequest{
		Text:   strings.Repeat("x", 101),
		Domain: document.DomainAPIBackend,
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInputTooLarge, errors.GetCode(err))
	assert.Equal(t, 0, auditor.reqCount)
}

func TestRunAuditSurvivesSaveFailure(t *testing.T) {
	auditor := &stubAuditor{outcome: audit.OutcomeOK(map[audit.Category]audit.SubScore{}, "", nil)}
	svc := NewAuditService(checklist.MustDefault(), auditor, &failingRepo{}, AuditServiceOptions{})

	report, err := svc.RunAudit(context.Background(), AuditRequest{Text: vagueDoc, Domain: document.DomainAPIBackend})
	require.NoError(t, err, "a storage failure must not lose the computed report")
	require.NotNil(t, report)
	assert.Equal(t, 47, report.ClarityScore)
}

func TestRunAuditDisabledContextual(t *testing.T) {
	auditor := &stubAuditor{outcome: audit.OutcomeDisabled()}
	svc, _ := newService(t, auditor, AuditServiceOptions{})

	report, err := svc.RunAudit(context.Background(), AuditRequest{Text: vagueDoc, Domain: document.DomainAPIBackend})
	require.NoError(t, err)
	assert.Equal(t, audit.ContextualDisabled, report.ContextualStatus)
	assert.Empty(t, report.AcceptanceCriteria)
}

func TestGetReportNotFound(t *testing.T) {
	auditor := &stubAuditor{outcome: audit.OutcomeDisabled()}
	svc, _ := newService(t, auditor, AuditServiceOptions{})

	_, err := svc.GetReport(context.Background(), core.NewAuditID())
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
}

func TestListReportsNewestFirst(t *testing.T) {
	auditor := &stubAuditor{outcome: audit.OutcomeDisabled()}
	svc, _ := newService(t, auditor, AuditServiceOptions{})

	first, err := svc.RunAudit(context.Background(), AuditRequest{Text: vagueDoc, Domain: document.DomainAPIBackend})
	require.NoError(t, err)
	second, err := svc.RunAudit(context.Background(), AuditRequest{Text: vagueDoc + " Latency p95 is 250 ms.", Domain: document.DomainAPIBackend})
	require.NoError(t, err)

	summaries, err := svc.ListReports(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, second.ID, summaries[0].ID)
	assert.Equal(t, first.ID, summaries[1].ID)
}

func TestChecklistDescriptor(t *testing.T) {
	auditor := &stubAuditor{outcome: audit.OutcomeDisabled()}
	svc, _ := newService(t, auditor, AuditServiceOptions{})

	desc := svc.Checklist()
	assert.Equal(t, "v1", desc.Version)
	assert.Len(t, desc.Categories, 6)
}
