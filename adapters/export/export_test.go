package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"speclens/domain/audit"
	"speclens/domain/core"
)

func exportableReport() *audit.Report {
	created := core.NewTimestamp(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
	return &audit.Report{
		ID:             core.AuditID("0195a2c4-7d1e-7f00-8000-000000000001"),
		CreatedAt:      created,
		Domain:         "api_backend",
		DocumentSHA256: "ab12cd34",
		DocumentChars:  24500,
		TruncatedChars: 20000,
		ClarityScore:   74,
		RiskLevel:      audit.RiskMedium,
		CategoryScores: []audit.CategoryScore{
			{Category: audit.ContractCompleteness, Title: "Contract Completeness", MaxPoints: 30, Deterministic: 25, Contextual: 20, Blended: 23},
			{Category: audit.Measurability, Title: "Measurability", MaxPoints: 20, Deterministic: 14, Contextual: 20, Blended: 16},
		},
		Findings: []audit.Finding{
			{
				Category: audit.ContractCompleteness,
				Severity: audit.SeverityCritical,
				Source:   audit.SourceBoth,
				RuleID:   "contract-auth",
				Message:  "No authentication requirements stated",
			},
			{
				Category: audit.Measurability,
				Severity: audit.SeverityWarning,
				Source:   audit.SourceDeterministic,
				RuleID:   "meas-vague-qualifiers",
				Message:  `Vague qualifier "fast" with no nearby metric`,
				Span:     &audit.TextSpan{Start: 102, End: 106, Snippet: "fast"},
			},
		},
		AcceptanceCriteria: []audit.AcceptanceCriterion{
			{Given: "a valid customer payload", When: "POST /v1/customers is called", Then: "the API responds 201 with the customer id"},
		},
		ExecutiveSummary: "Solid contract coverage; latency targets need tightening.",
		ContextualStatus: audit.ContextualOK,
		ContextualModel:  "gpt-4o-mini",
		ChecklistVersion: "v1",
		EngineVersion:    audit.EngineVersion,
		RuntimeMs:        412,
	}
}

func TestJSONExportRoundTrip(t *testing.T) {
	exporter := NewJSONExporter()
	report := exportableReport()

	data, err := exporter.Export(report)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var decoded audit.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("exported JSON does not decode: %v", err)
	}
	if decoded.ID != report.ID {
		t.Errorf("expected id %s, got %s", report.ID, decoded.ID)
	}
	if decoded.ClarityScore != 74 || decoded.RiskLevel != audit.RiskMedium {
		t.Errorf("unexpected score/risk: %d/%s", decoded.ClarityScore, decoded.RiskLevel)
	}
	if len(decoded.Findings) != 2 || decoded.Findings[1].Span == nil {
		t.Fatalf("findings did not survive the round trip: %+v", decoded.Findings)
	}
	if decoded.Findings[1].Span.Snippet != "fast" {
		t.Errorf("expected span snippet %q, got %q", "fast", decoded.Findings[1].Span.Snippet)
	}
	if len(decoded.AcceptanceCriteria) != 1 || decoded.AcceptanceCriteria[0].Then == "" {
		t.Errorf("acceptance criteria did not survive: %+v", decoded.AcceptanceCriteria)
	}

	if !strings.HasPrefix(string(data), "{\n  ") {
		t.Error("expected indented JSON output")
	}
}

func TestJSONExportMetadata(t *testing.T) {
	exporter := NewJSONExporter()
	if exporter.Format() != "json" {
		t.Errorf("unexpected format %q", exporter.Format())
	}
	if exporter.ContentType() != "application/json" {
		t.Errorf("unexpected content type %q", exporter.ContentType())
	}
	if exporter.FileExtension() != ".json" {
		t.Errorf("unexpected extension %q", exporter.FileExtension())
	}
}

func TestXLSXExportWorkbook(t *testing.T) {
	exporter := NewXLSXExporter()
	report := exportableReport()

	data, err := exporter.Export(report)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported bytes are not a valid workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Summary", "Category Scores", "Findings", "Acceptance Criteria"}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i, name := range want {
		if sheets[i] != name {
			t.Errorf("sheet %d: expected %q, got %q", i, name, sheets[i])
		}
	}

	cell := func(sheet, ref string) string {
		v, err := f.GetCellValue(sheet, ref)
		if err != nil {
			t.Fatalf("GetCellValue(%s!%s) failed: %v", sheet, ref, err)
		}
		return v
	}

	if got := cell("Summary", "B1"); got != report.ID.String() {
		t.Errorf("Summary!B1: expected audit id, got %q", got)
	}
	if got := cell("Summary", "A6"); got != "Truncated To" {
		t.Errorf("Summary!A6: expected truncation row, got %q", got)
	}
	if got := cell("Summary", "B7"); got != "74" {
		t.Errorf("Summary!B7: expected clarity score 74, got %q", got)
	}
	if got := cell("Summary", "B8"); got != "medium" {
		t.Errorf("Summary!B8: expected risk level, got %q", got)
	}

	if got := cell("Category Scores", "A1"); got != "Category" {
		t.Errorf("scores header: got %q", got)
	}
	if got := cell("Category Scores", "F2"); got != "23" {
		t.Errorf("blended contract score: got %q", got)
	}
	if got := cell("Category Scores", "C4"); got != "100" {
		t.Errorf("total max points row: got %q", got)
	}

	if got := cell("Findings", "B2"); got != "critical" {
		t.Errorf("first finding severity: got %q", got)
	}
	if got := cell("Findings", "F3"); got != "fast" {
		t.Errorf("second finding snippet: got %q", got)
	}

	if got := cell("Acceptance Criteria", "B2"); got != "a valid customer payload" {
		t.Errorf("criterion given: got %q", got)
	}
}

func TestXLSXExportEmptySections(t *testing.T) {
	exporter := NewXLSXExporter()
	report := exportableReport()
	report.Findings = nil
	report.AcceptanceCriteria = nil
	report.TruncatedChars = 0

	data, err := exporter.Export(report)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported bytes are not a valid workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Findings")
	if err != nil {
		t.Fatalf("GetRows(Findings) failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected header-only findings sheet, got %d rows", len(rows))
	}

	v, err := f.GetCellValue("Summary", "A6")
	if err != nil {
		t.Fatalf("GetCellValue failed: %v", err)
	}
	if v != "Clarity Score" {
		t.Errorf("expected truncation row skipped, A6 = %q", v)
	}
}

func TestXLSXExportMetadata(t *testing.T) {
	exporter := NewXLSXExporter()
	if exporter.Format() != "xlsx" {
		t.Errorf("unexpected format %q", exporter.Format())
	}
	if exporter.ContentType() != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type %q", exporter.ContentType())
	}
	if exporter.FileExtension() != ".xlsx" {
		t.Errorf("unexpected extension %q", exporter.FileExtension())
	}
}
