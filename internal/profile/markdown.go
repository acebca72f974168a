package profile

import (
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"

	"speclens/domain/document"
)

// parseStructure extracts headings, list items, and code blocks from the
// document's markdown. Plain-prose documents simply come back with empty
// structure; nothing here fails.
func parseStructure(raw string) (headings []string, listItems, codeBlocks []document.Span) {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	root := p.Parse([]byte(raw))

	loc := &locator{raw: raw}

	ast.WalkFunc(root, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Heading:
			text := strings.TrimSpace(childText(n))
			if text != "" {
				headings = append(headings, strings.ToLower(text))
			}
		case *ast.ListItem:
			text := strings.TrimSpace(childText(n))
			if text == "" {
				return ast.GoToNext
			}
			if span, ok := loc.find(text); ok {
				listItems = append(listItems, span)
			} else {
				// Inline markup split the literal; keep the text, drop the
				// offsets.
				listItems = append(listItems, document.Span{Start: -1, End: -1, Text: text})
			}
			return ast.SkipChildren
		case *ast.CodeBlock:
			literal := string(n.Literal)
			if strings.TrimSpace(literal) == "" {
				return ast.GoToNext
			}
			if span, ok := loc.find(literal); ok {
				codeBlocks = append(codeBlocks, span)
			}
		}
		return ast.GoToNext
	})

	return headings, listItems, codeBlocks
}

// childText concatenates the text leaves under a node.
func childText(node ast.Node) string {
	var sb strings.Builder
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Literal)
		case *ast.Code:
			sb.Write(t.Literal)
		}
		return ast.GoToNext
	})
	return sb.String()
}

// locator maps extracted literals back to byte offsets in the raw text. The
// cursor keeps repeated literals attached to successive occurrences so the
// result is deterministic.
type locator struct {
	raw    string
	cursor int
}

func (l *locator) find(s string) (document.Span, bool) {
	if s == "" {
		return document.Span{}, false
	}
	if idx := strings.Index(l.raw[l.cursor:], s); idx >= 0 {
		start := l.cursor + idx
		l.cursor = start + len(s)
		return document.Span{Start: start, End: start + len(s), Text: s}, true
	}
	// Literal occurs before the cursor (markdown reordered nothing, but a
	// nested walk may revisit content); fall back to a full scan without
	// advancing.
	if idx := strings.Index(l.raw, s); idx >= 0 {
		return document.Span{Start: idx, End: idx + len(s), Text: s}, true
	}
	return document.Span{}, false
}
