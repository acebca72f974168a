package profile

import (
	"strings"
	"unicode/utf8"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"speclens/domain/document"
)

const (
	// minSentencesForOutliers is the smallest sample worth running outlier
	// detection on.
	minSentencesForOutliers = 8
	// longSentenceFloor is the absolute word count below which a sentence
	// is never flagged, whatever the distribution says.
	longSentenceFloor = 35
)

// splitSentences segments the raw text into sentences with byte spans and
// word counts. Lines are hard boundaries; within a line, sentence-ending
// punctuation followed by whitespace splits again. Headings and bullets
// therefore count as their own short "sentences", which is what the outlier
// math wants.
func splitSentences(raw string) ([]document.Span, []int) {
	var spans []document.Span
	var counts []int

	offset := 0
	for _, line := range strings.Split(raw, "\n") {
		lineStart := offset
		offset += len(line) + 1

		segStart := 0
		for i := 0; i < len(line); {
			r, size := utf8.DecodeRuneInString(line[i:])
			if r == '.' || r == '!' || r == '?' {
				next := i + size
				if next >= len(line) || line[next] == ' ' || line[next] == '\t' {
					emitSentence(raw, lineStart+segStart, lineStart+next, &spans, &counts)
					segStart = next
				}
			}
			i += size
		}
		emitSentence(raw, lineStart+segStart, lineStart+len(line), &spans, &counts)
	}

	return spans, counts
}

// emitSentence trims the segment and records it when non-empty.
func emitSentence(raw string, start, end int, spans *[]document.Span, counts *[]int) {
	seg := raw[start:end]
	trimmed := strings.TrimSpace(seg)
	if trimmed == "" {
		return
	}
	lead := strings.Index(seg, trimmed)
	s := start + lead
	e := s + len(trimmed)

	*spans = append(*spans, document.Span{Start: s, End: e, Text: trimmed})
	*counts = append(*counts, len(strings.Fields(trimmed)))
}

// outlierSentences flags sentences whose word count sits beyond both the
// absolute floor and the document's own distribution (mean + 2 sigma, or
// the 90th percentile, whichever is higher). Documents with too few
// sentences carry no outliers.
func outlierSentences(spans []document.Span, counts []int) []document.Span {
	if len(counts) < minSentencesForOutliers {
		return nil
	}

	data := make([]float64, len(counts))
	for i, c := range counts {
		data[i] = float64(c)
	}

	mean := stat.Mean(data, nil)
	sd := stat.StdDev(data, nil)
	threshold := mean + 2*sd

	if p90, err := stats.Percentile(stats.Float64Data(data), 90); err == nil && p90 > threshold {
		threshold = p90
	}

	var out []document.Span
	for i, span := range spans {
		wc := counts[i]
		if wc >= longSentenceFloor && float64(wc) > threshold {
			out = append(out, span)
		}
	}
	return out
}
