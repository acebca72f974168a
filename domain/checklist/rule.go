package checklist

import (
	"speclens/domain/audit"
	"speclens/domain/document"
)

// predicateFunc runs one rule against a document view and returns the
// findings that make it fail. An empty result means the rule passed.
type predicateFunc func(v document.View) []audit.Finding

// Rule is one checklist entry: a binary check bound to exactly one category
// with a declared point weight. A failing rule deducts its weight once from
// the category, however many findings it attaches. Rules are immutable
// after the library is built.
type Rule struct {
	ID       string         `yaml:"id" json:"id"`
	Category audit.Category `yaml:"category" json:"category"`
	Weight   int            `yaml:"weight" json:"weight"`
	Check    string         `yaml:"check" json:"check"`
	Severity audit.Severity `yaml:"severity,omitempty" json:"severity"`
	Terms    []string       `yaml:"terms,omitempty" json:"-"`
	Pattern  string         `yaml:"pattern,omitempty" json:"-"`
	Window   int            `yaml:"window,omitempty" json:"-"`
	Message  string         `yaml:"message" json:"message"`
	Rewrite  string         `yaml:"rewrite,omitempty" json:"rewrite,omitempty"`

	predicate predicateFunc
}

// severityOrDefault falls back to warning when the YAML omits severity.
func (r Rule) severityOrDefault() audit.Severity {
	if r.Severity.Valid() {
		return r.Severity
	}
	return audit.SeverityWarning
}

// finding stamps a deterministic finding for this rule.
func (r Rule) finding(message, rewrite string, span *audit.TextSpan) audit.Finding {
	return audit.Finding{
		Category:         r.Category,
		Severity:         r.severityOrDefault(),
		Source:           audit.SourceDeterministic,
		RuleID:           r.ID,
		Message:          message,
		Span:             span,
		SuggestedRewrite: rewrite,
	}
}
