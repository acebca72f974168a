// Package profile turns a raw requirement document into the structural view
// the checklist evaluator consumes: markdown structure, sentence
// segmentation, and lexical outlier detection. Building a view is pure and
// deterministic; the same text always yields the same view.
package profile

import (
	"strings"

	"speclens/domain/document"
)

// Build constructs the evaluator's view of a document.
func Build(doc document.Document) document.View {
	v := document.View{
		Doc:   doc,
		Lower: strings.ToLower(doc.Text),
	}

	v.Headings, v.ListItems, v.CodeBlocks = parseStructure(doc.Text)

	v.Sentences, v.WordCounts = splitSentences(doc.Text)
	v.LongSentences = outlierSentences(v.Sentences, v.WordCounts)

	return v
}
