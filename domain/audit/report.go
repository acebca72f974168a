package audit

import (
	"speclens/domain/core"
)

// EngineVersion stamps every report with the scoring-engine revision that
// produced it. Bump when blending or deduction math changes.
const EngineVersion = "0.6.2"

// Report is the terminal audit entity: created once per run, never mutated
// after assembly. Field names and category ordering are stable so exports
// are reproducible.
type Report struct {
	ID             core.AuditID   `json:"id"`
	CreatedAt      core.Timestamp `json:"created_at"`
	Domain         string         `json:"domain"`
	DocumentSHA256 string         `json:"document_sha256"`
	DocumentChars  int            `json:"document_chars"`
	TruncatedChars int            `json:"truncated_chars,omitempty"`

	ClarityScore   int             `json:"clarity_score"`
	RiskLevel      RiskLevel       `json:"risk_level"`
	CategoryScores []CategoryScore `json:"category_scores"`

	Findings           []Finding             `json:"findings"`
	AcceptanceCriteria []AcceptanceCriterion `json:"acceptance_criteria"`
	ExecutiveSummary   string                `json:"executive_summary,omitempty"`

	ContextualStatus   ContextualStatus `json:"contextual_status"`
	ContextualReason   string           `json:"contextual_reason,omitempty"`
	ContextualModel    string           `json:"contextual_model,omitempty"`
	ContextualAttempts int              `json:"contextual_attempts,omitempty"`

	ChecklistVersion string `json:"checklist_version"`
	EngineVersion    string `json:"engine_version"`
	RuntimeMs        int64  `json:"runtime_ms"`
}

// ReportSummary is the list-view projection of a report.
type ReportSummary struct {
	ID               core.AuditID     `json:"id"`
	CreatedAt        core.Timestamp   `json:"created_at"`
	Domain           string           `json:"domain"`
	ClarityScore     int              `json:"clarity_score"`
	RiskLevel        RiskLevel        `json:"risk_level"`
	ContextualStatus ContextualStatus `json:"contextual_status"`
	FindingCount     int              `json:"finding_count"`
}

// Summary projects the report for list endpoints.
func (r *Report) Summary() ReportSummary {
	return ReportSummary{
		ID:               r.ID,
		CreatedAt:        r.CreatedAt,
		Domain:           r.Domain,
		ClarityScore:     r.ClarityScore,
		RiskLevel:        r.RiskLevel,
		ContextualStatus: r.ContextualStatus,
		FindingCount:     len(r.Findings),
	}
}

// FindingsFor returns the report's findings for one category, in report
// order.
func (r *Report) FindingsFor(c Category) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Category == c {
			out = append(out, f)
		}
	}
	return out
}

// CountBySeverity tallies findings per severity.
func (r *Report) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int, 3)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}
