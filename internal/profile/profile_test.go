package profile

import (
	"reflect"
	"strings"
	"testing"

	"speclens/domain/document"
)

func buildText(t *testing.T, text string) document.View {
	t.Helper()
	doc, err := document.New(text, document.DomainAPIBackend)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	return Build(doc)
}

func TestBuildMarkdownStructure(t *testing.T) {
	text := "# Create Customer API\n\n## Errors\n\n- 400 invalid fields\n- 409 duplicate id\n\n```\ncurl -X POST /v1/customers\n```\n\nPlain closing line.\n"
	v := buildText(t, text)

	wantHeadings := []string{"create customer api", "errors"}
	if !reflect.DeepEqual(v.Headings, wantHeadings) {
		t.Errorf("headings = %v, want %v", v.Headings, wantHeadings)
	}

	if len(v.ListItems) != 2 {
		t.Fatalf("got %d list items, want 2", len(v.ListItems))
	}
	if v.ListItems[0].Text != "400 invalid fields" {
		t.Errorf("first list item = %q", v.ListItems[0].Text)
	}
	for i, item := range v.ListItems {
		if item.Start < 0 {
			continue
		}
		if got := text[item.Start:item.End]; got != item.Text {
			t.Errorf("list item %d span mismatch: %q != %q", i, got, item.Text)
		}
	}

	if len(v.CodeBlocks) != 1 {
		t.Fatalf("got %d code blocks, want 1", len(v.CodeBlocks))
	}
	curl := strings.Index(text, "curl")
	if !v.InCodeBlock(curl) {
		t.Error("offset inside the fence not reported as code")
	}
	if v.InCodeBlock(0) {
		t.Error("document start reported as code")
	}
	if v.InCodeBlock(strings.Index(text, "Plain closing")) {
		t.Error("prose after the fence reported as code")
	}
}

func TestBuildRepeatedListItemsKeepDistinctSpans(t *testing.T) {
	text := "Steps:\n\n- retry later\n- retry later\n"
	v := buildText(t, text)

	if len(v.ListItems) != 2 {
		t.Fatalf("got %d list items, want 2", len(v.ListItems))
	}
	a, b := v.ListItems[0], v.ListItems[1]
	if a.Start < 0 || b.Start < 0 {
		t.Fatalf("spans not located: %+v %+v", a, b)
	}
	if b.Start <= a.Start {
		t.Errorf("identical items mapped to the same occurrence: %d and %d", a.Start, b.Start)
	}
}

func TestBuildSentences(t *testing.T) {
	text := "First sentence here. Second one follows.\nThird on its own line\n\np95 is 99.9 percent stable."
	v := buildText(t, text)

	wantTexts := []string{
		"First sentence here.",
		"Second one follows.",
		"Third on its own line",
		"p95 is 99.9 percent stable.",
	}
	if len(v.Sentences) != len(wantTexts) {
		t.Fatalf("got %d sentences, want %d: %+v", len(v.Sentences), len(wantTexts), v.Sentences)
	}
	for i, want := range wantTexts {
		s := v.Sentences[i]
		if s.Text != want {
			t.Errorf("sentence %d = %q, want %q", i, s.Text, want)
		}
		if got := text[s.Start:s.End]; got != s.Text {
			t.Errorf("sentence %d span mismatch: %q != %q", i, got, s.Text)
		}
	}

	wantCounts := []int{3, 3, 5, 5}
	if !reflect.DeepEqual(v.WordCounts, wantCounts) {
		t.Errorf("word counts = %v, want %v", v.WordCounts, wantCounts)
	}
}

func TestBuildDecimalDoesNotSplitSentence(t *testing.T) {
	v := buildText(t, "Availability is 99.9 percent monthly.")
	if len(v.Sentences) != 1 {
		t.Fatalf("decimal point split the sentence: %+v", v.Sentences)
	}
}

func TestBuildOutliersNeedEnoughSentences(t *testing.T) {
	v := buildText(t, "One short. Two short. Three short.")
	if len(v.LongSentences) != 0 {
		t.Errorf("outliers flagged in a tiny document: %+v", v.LongSentences)
	}
}

func TestBuildOutliersFlagOverlongSentence(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 45)) + "."
	lines := make([]string, 0, 11)
	for i := 0; i < 10; i++ {
		lines = append(lines, "Short sentence here okay fine.")
	}
	lines = append(lines, long)
	v := buildText(t, strings.Join(lines, "\n"))

	if len(v.LongSentences) != 1 {
		t.Fatalf("got %d outliers, want 1", len(v.LongSentences))
	}
	if v.LongSentences[0].Text != long {
		t.Errorf("flagged the wrong sentence: %q", v.LongSentences[0].Text)
	}
}

func TestBuildOutliersIgnoreUniformDocuments(t *testing.T) {
	line := "Every line in this document carries exactly ten simple words."
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = line
	}
	v := buildText(t, strings.Join(lines, "\n"))

	if len(v.LongSentences) != 0 {
		t.Errorf("uniform document produced outliers: %+v", v.LongSentences)
	}
}

func TestBuildDeterministic(t *testing.T) {
	text := "# Title\n\nThe POST /v1/things call must respond in 250 ms. Retries use backoff.\n\n- 200 on success\n- 409 on duplicates\n"
	doc, err := document.New(text, document.DomainAPIBackend)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}

	first := Build(doc)
	second := Build(doc)
	if !reflect.DeepEqual(first, second) {
		t.Error("building the same document twice produced different views")
	}
}
