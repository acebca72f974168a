package audit

import (
	"fmt"
	"sort"
	"time"

	"speclens/domain/core"
	"speclens/domain/document"
)

// AssembleInput carries everything the assembler needs to build the final
// report. Sub-score maps and the outcome are read, never modified.
type AssembleInput struct {
	AuditID          core.AuditID
	Doc              document.Document
	Deterministic    map[Category]SubScore
	Contextual       ContextualOutcome
	TruncatedTo      int // runes sent to the provider when truncated, 0 otherwise
	ChecklistVersion string
	StartedAt        time.Time
}

// Assemble blends both sub-score maps, merges and orders findings, and
// emits the canonical Report. It never fails: degraded or unavailable
// contextual outcomes become info-severity caveat findings, not errors.
// Strict-mode refusal is the caller's decision, made before assembly.
func Assemble(in AssembleInput) *Report {
	ctxScores := in.Contextual.Scores
	if !in.Contextual.Usable() {
		ctxScores = nil
	}
	score, risk, table := BlendScores(in.Deterministic, ctxScores)

	merged := mergeFindings(in)

	report := &Report{
		ID:                 in.AuditID,
		CreatedAt:          core.Now(),
		Domain:             in.Doc.Domain,
		DocumentSHA256:     in.Doc.Hash().String(),
		DocumentChars:      in.Doc.Chars(),
		TruncatedChars:     in.TruncatedTo,
		ClarityScore:       score,
		RiskLevel:          risk,
		CategoryScores:     table,
		Findings:           merged,
		AcceptanceCriteria: append([]AcceptanceCriterion(nil), in.Contextual.Criteria...),
		ContextualStatus:   in.Contextual.Status,
		ContextualModel:    in.Contextual.Model,
		ContextualAttempts: in.Contextual.Attempts,
		ChecklistVersion:   in.ChecklistVersion,
		EngineVersion:      EngineVersion,
	}
	if report.AcceptanceCriteria == nil {
		report.AcceptanceCriteria = []AcceptanceCriterion{}
	}
	if in.Contextual.Usable() {
		report.ExecutiveSummary = in.Contextual.Summary
	} else {
		report.ContextualReason = in.Contextual.Reason
	}
	if !in.StartedAt.IsZero() {
		report.RuntimeMs = time.Since(in.StartedAt).Milliseconds()
	}

	return report
}

// mergeFindings collects deterministic findings, contextual findings, and
// caveat notices in insertion order, deduplicates on (category, normalized
// message) keeping the higher-severity instance, and orders the result by
// category weight order, then severity, then insertion order.
func mergeFindings(in AssembleInput) []Finding {
	var raw []Finding
	for _, c := range Categories() {
		if s, ok := in.Deterministic[c]; ok {
			raw = append(raw, s.Findings...)
		}
	}
	if in.Contextual.Usable() {
		for _, c := range Categories() {
			if s, ok := in.Contextual.Scores[c]; ok {
				raw = append(raw, s.Findings...)
			}
		}
	}
	raw = append(raw, caveatFindings(in)...)

	return dedupeAndOrder(raw)
}

// caveatFindings turns truncation and contextual failure into low-severity
// findings so the report records why its coverage is reduced.
func caveatFindings(in AssembleInput) []Finding {
	var out []Finding

	if in.TruncatedTo > 0 {
		out = append(out, Finding{
			Category: RiskAwareness,
			Severity: SeverityInfo,
			Source:   SourceDeterministic,
			Message: fmt.Sprintf("Document truncated for contextual evaluation: %d of %d characters sent",
				in.TruncatedTo, in.Doc.Chars()),
		})
	}

	switch in.Contextual.Status {
	case ContextualUnavailableStatus:
		out = append(out, Finding{
			Category: RiskAwareness,
			Severity: SeverityInfo,
			Source:   SourceContextual,
			Message:  "Contextual analysis unavailable; score reflects the deterministic checklist only",
		})
	case ContextualDegraded:
		out = append(out, Finding{
			Category: RiskAwareness,
			Severity: SeverityInfo,
			Source:   SourceContextual,
			Message:  "Contextual response could not be validated; contextual findings contributed no penalty",
		})
	case ContextualDisabled:
		out = append(out, Finding{
			Category: RiskAwareness,
			Severity: SeverityInfo,
			Source:   SourceContextual,
			Message:  "Contextual evaluation disabled; score reflects the deterministic checklist only",
		})
	}

	return out
}

func dedupeAndOrder(raw []Finding) []Finding {
	out := make([]Finding, 0, len(raw))
	seen := make(map[string]int, len(raw))

	for _, f := range raw {
		key := string(f.Category) + "\x00" + NormalizeMessage(f.Message)
		idx, dup := seen[key]
		if !dup {
			seen[key] = len(out)
			out = append(out, f)
			continue
		}

		kept := out[idx]
		crossSource := kept.Source != f.Source
		if f.Severity.Rank() > kept.Severity.Rank() {
			// Higher severity wins; it keeps the first occurrence's slot so
			// ordering stays stable.
			kept = f
		}
		if crossSource {
			kept.Source = SourceBoth
		}
		out[idx] = kept
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category.Order() < out[j].Category.Order()
		}
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})

	return out
}
