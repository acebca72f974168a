package document

import (
	"strings"

	"speclens/domain/core"
)

// Domain tags accepted on input. api_backend is the only domain with
// checklist coverage today; anything else falls back to it.
const (
	DomainAPIBackend = "api_backend"
)

// RecommendedMaxChars is the advisory input size. Documents beyond it are
// still audited in full deterministically, but the contextual request is
// truncated to this many runes and the report carries a truncation notice.
const RecommendedMaxChars = 20000

// Document is the immutable audit input: raw requirement text plus an
// optional declared domain. It has no identity of its own; identity belongs
// to the audit run.
type Document struct {
	Text   string
	Domain string
}

// New validates and builds a Document. Whitespace-only text is rejected;
// an unset domain defaults to api_backend.
func New(text, domain string) (Document, error) {
	if strings.TrimSpace(text) == "" {
		return Document{}, core.ErrEmptyDocument
	}
	if strings.TrimSpace(domain) == "" {
		domain = DomainAPIBackend
	}
	return Document{Text: text, Domain: domain}, nil
}

// Hash fingerprints the raw text.
func (d Document) Hash() core.DocumentHash {
	return core.ComputeDocumentHash(d.Text)
}

// Chars returns the document length in runes.
func (d Document) Chars() int {
	return len([]rune(d.Text))
}

// ContextualText returns the text to send to the contextual provider,
// truncated to limit runes when the document is longer. The boolean reports
// whether truncation happened. A non-positive limit disables truncation.
func (d Document) ContextualText(limit int) (string, bool) {
	if limit <= 0 {
		return d.Text, false
	}
	runes := []rune(d.Text)
	if len(runes) <= limit {
		return d.Text, false
	}
	return string(runes[:limit]), true
}
