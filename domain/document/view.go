package document

// Span marks a half-open byte range [Start, End) in the raw text, with the
// covered excerpt. Spans always refer to the original document, never to a
// truncated copy.
type Span struct {
	Start int
	End   int
	Text  string
}

// View is the evaluator's read-only take on one document: the raw text plus
// the structural signals extracted up front so every checklist predicate
// works from the same parse. Built once per audit, never mutated.
type View struct {
	Doc   Document
	Lower string

	// Sentence segmentation over the full raw text. WordCounts is aligned
	// index-for-index with Sentences.
	Sentences  []Span
	WordCounts []int

	// Markdown structure. Headings are lowercased heading titles in
	// document order; ListItems and CodeBlocks are spans of their content.
	Headings   []string
	ListItems  []Span
	CodeBlocks []Span

	// Sentences whose word count is a statistical outlier for this
	// document (long enough to likely pack several requirements).
	LongSentences []Span
}

// InCodeBlock reports whether the byte offset falls inside a fenced or
// indented code block.
func (v View) InCodeBlock(offset int) bool {
	for _, cb := range v.CodeBlocks {
		if offset >= cb.Start && offset < cb.End {
			return true
		}
	}
	return false
}
