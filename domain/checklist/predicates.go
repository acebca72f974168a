package checklist

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"speclens/domain/audit"
	"speclens/domain/document"
)

const (
	defaultNumericWindow = 80
	maxSnippetRunes      = 100
)

// buildPredicate binds a rule definition to its check implementation. An
// unknown check name or unusable parameters is a startup configuration
// defect, never a runtime condition.
func buildPredicate(r Rule) (predicateFunc, error) {
	switch r.Check {
	case "require_any_term":
		return buildRequireAnyTerm(r)
	case "require_pattern":
		return buildRequirePattern(r)
	case "require_numeric_near":
		return buildRequireNumericNear(r)
	case "require_list_numeric":
		return buildRequireListNumeric(r)
	case "forbid_pattern":
		return buildForbidPattern(r)
	case "vague_no_metric":
		return buildVagueNoMetric(r)
	case "long_sentences":
		return buildLongSentences(r)
	default:
		return nil, fmt.Errorf("rule %s: unknown check %q", r.ID, r.Check)
	}
}

// require_any_term passes when any term occurs as a substring of the
// lowercased text. Terms are deliberately stems ("auth", "idempoten") so
// inflections match.
func buildRequireAnyTerm(r Rule) (predicateFunc, error) {
	terms, err := lowerTerms(r)
	if err != nil {
		return nil, err
	}
	return func(v document.View) []audit.Finding {
		for _, term := range terms {
			if strings.Contains(v.Lower, term) {
				return nil
			}
		}
		return []audit.Finding{r.finding(r.Message, r.Rewrite, nil)}
	}, nil
}

// require_pattern passes when the compiled expression matches anywhere.
func buildRequirePattern(r Rule) (predicateFunc, error) {
	re, err := compilePattern(r)
	if err != nil {
		return nil, err
	}
	return func(v document.View) []audit.Finding {
		if re.MatchString(v.Doc.Text) {
			return nil
		}
		return []audit.Finding{r.finding(r.Message, r.Rewrite, nil)}
	}, nil
}

// require_numeric_near passes when at least one term occurrence has a digit
// within the window around it. It fails both when the topic is never
// mentioned and when it is mentioned without a number.
func buildRequireNumericNear(r Rule) (predicateFunc, error) {
	terms, err := lowerTerms(r)
	if err != nil {
		return nil, err
	}
	window := r.Window
	if window <= 0 {
		window = defaultNumericWindow
	}
	return func(v document.View) []audit.Finding {
		for _, term := range terms {
			for _, start := range termOccurrences(v.Lower, term) {
				if hasDigitNear(v.Doc.Text, start, start+len(term), window) {
					return nil
				}
			}
		}
		return []audit.Finding{r.finding(r.Message, r.Rewrite, nil)}
	}, nil
}

// require_list_numeric passes when any markdown list item carries a digit -
// an enumerated outcome with a concrete value.
func buildRequireListNumeric(r Rule) (predicateFunc, error) {
	return func(v document.View) []audit.Finding {
		for _, item := range v.ListItems {
			if strings.ContainsFunc(item.Text, unicode.IsDigit) {
				return nil
			}
		}
		return []audit.Finding{r.finding(r.Message, r.Rewrite, nil)}
	}, nil
}

// forbid_pattern fails once per match outside code blocks, attaching a span
// per occurrence. {TERM} in the message and rewrite templates is replaced
// with the matched text.
func buildForbidPattern(r Rule) (predicateFunc, error) {
	re, err := compilePattern(r)
	if err != nil {
		return nil, err
	}
	return func(v document.View) []audit.Finding {
		var out []audit.Finding
		for _, loc := range re.FindAllStringIndex(v.Doc.Text, -1) {
			if v.InCodeBlock(loc[0]) {
				continue
			}
			match := v.Doc.Text[loc[0]:loc[1]]
			term := strings.ToLower(strings.TrimSpace(match))
			out = append(out, r.finding(
				renderTemplate(r.Message, term, 0),
				renderTemplate(r.Rewrite, term, 0),
				spanFor(v.Doc.Text, loc[0], loc[1]),
			))
		}
		return out
	}, nil
}

// vague_no_metric flags each whole-word occurrence of a vague qualifier
// that has no digit within the window around it. Occurrences inside code
// blocks are ignored. One finding per unmeasured occurrence; the rule still
// deducts its weight only once.
func buildVagueNoMetric(r Rule) (predicateFunc, error) {
	terms, err := lowerTerms(r)
	if err != nil {
		return nil, err
	}
	window := r.Window
	if window <= 0 {
		window = defaultNumericWindow
	}
	return func(v document.View) []audit.Finding {
		var out []audit.Finding
		for _, term := range terms {
			for _, start := range boundedOccurrences(v.Lower, term) {
				end := start + len(term)
				if v.InCodeBlock(start) {
					continue
				}
				if hasDigitNear(v.Doc.Text, start, end, window) {
					continue
				}
				out = append(out, r.finding(
					renderTemplate(r.Message, term, 0),
					renderTemplate(r.Rewrite, term, 0),
					spanFor(v.Doc.Text, start, end),
				))
			}
		}
		return out
	}, nil
}

// long_sentences flags every statistical-outlier sentence the profile
// marked. {N} in templates is replaced with the sentence's word count.
func buildLongSentences(r Rule) (predicateFunc, error) {
	return func(v document.View) []audit.Finding {
		var out []audit.Finding
		for _, s := range v.LongSentences {
			words := len(strings.Fields(s.Text))
			out = append(out, r.finding(
				renderTemplate(r.Message, "", words),
				renderTemplate(r.Rewrite, "", words),
				spanFor(v.Doc.Text, s.Start, s.End),
			))
		}
		return out
	}, nil
}

func lowerTerms(r Rule) ([]string, error) {
	if len(r.Terms) == 0 {
		return nil, fmt.Errorf("rule %s: check %s needs at least one term", r.ID, r.Check)
	}
	terms := make([]string, len(r.Terms))
	for i, t := range r.Terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			return nil, fmt.Errorf("rule %s: empty term at position %d", r.ID, i)
		}
		terms[i] = t
	}
	return terms, nil
}

func compilePattern(r Rule) (*regexp.Regexp, error) {
	if strings.TrimSpace(r.Pattern) == "" {
		return nil, fmt.Errorf("rule %s: check %s needs a pattern", r.ID, r.Check)
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return nil, fmt.Errorf("rule %s: invalid pattern: %w", r.ID, err)
	}
	return re, nil
}

// renderTemplate fills the {TERM} and {N} placeholders.
func renderTemplate(tmpl, term string, n int) string {
	if tmpl == "" {
		return ""
	}
	out := strings.ReplaceAll(tmpl, "{TERM}", term)
	if strings.Contains(out, "{N}") {
		out = strings.ReplaceAll(out, "{N}", fmt.Sprintf("%d", n))
	}
	return out
}

// termOccurrences returns every substring occurrence of term, in scan order.
func termOccurrences(lower, term string) []int {
	var out []int
	from := 0
	for {
		idx := strings.Index(lower[from:], term)
		if idx < 0 {
			return out
		}
		out = append(out, from+idx)
		from += idx + len(term)
	}
}

// boundedOccurrences returns whole-word occurrences: the characters around
// the match must not be letters or digits, so "fast" never matches inside
// "breakfast".
func boundedOccurrences(lower, term string) []int {
	var out []int
	for _, start := range termOccurrences(lower, term) {
		end := start + len(term)
		if start > 0 {
			r, _ := utf8.DecodeLastRuneInString(lower[:start])
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				continue
			}
		}
		if end < len(lower) {
			r, _ := utf8.DecodeRuneInString(lower[end:])
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				continue
			}
		}
		out = append(out, start)
	}
	return out
}

// hasDigitNear reports whether any digit appears within window bytes around
// [start, end).
func hasDigitNear(raw string, start, end, window int) bool {
	lo := start - window
	if lo < 0 {
		lo = 0
	}
	hi := end + window
	if hi > len(raw) {
		hi = len(raw)
	}
	return strings.ContainsFunc(raw[lo:hi], unicode.IsDigit)
}

// spanFor builds a finding span with a capped snippet.
func spanFor(raw string, start, end int) *audit.TextSpan {
	text := raw[start:end]
	runes := []rune(text)
	if len(runes) > maxSnippetRunes {
		text = string(runes[:maxSnippetRunes]) + "..."
	}
	return &audit.TextSpan{Start: start, End: end, Snippet: text}
}
