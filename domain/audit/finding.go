package audit

import (
	"strings"
	"unicode"
)

// Severity grades a finding. Critical findings signal blockers, warnings
// signal gaps, info findings are caveats and notices.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for sorting and duplicate resolution: higher is
// more severe. Unknown severities rank below info.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s == SeverityInfo || s == SeverityWarning || s == SeverityCritical
}

// Source tags where a finding came from. The assembler stamps SourceBoth
// when both evaluators reported the same issue.
type Source string

const (
	SourceDeterministic Source = "deterministic"
	SourceContextual    Source = "contextual"
	SourceBoth          Source = "both"
)

// TextSpan references the text a finding points at: byte offsets into the
// original document plus a short excerpt.
type TextSpan struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Snippet string `json:"snippet"`
}

// Finding is a single flagged issue. Findings are immutable once created;
// the assembler builds new lists instead of editing them.
type Finding struct {
	Category         Category  `json:"category"`
	Severity         Severity  `json:"severity"`
	Source           Source    `json:"source"`
	RuleID           string    `json:"rule_id,omitempty"`
	Message          string    `json:"message"`
	Span             *TextSpan `json:"span,omitempty"`
	SuggestedRewrite string    `json:"suggested_rewrite,omitempty"`
}

// NormalizeMessage canonicalizes a finding message for duplicate detection:
// lowercase, whitespace collapsed, surrounding punctuation stripped. Two
// findings with the same category and the same normalized message describe
// the same issue.
func NormalizeMessage(msg string) string {
	lower := strings.ToLower(msg)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	joined := strings.Join(fields, " ")
	return strings.Trim(joined, " .,:;!?\"'`")
}
