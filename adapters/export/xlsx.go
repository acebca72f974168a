package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"speclens/domain/audit"
	"speclens/ports"
)

// Sheet names in workbook order.
const (
	sheetSummary  = "Summary"
	sheetScores   = "Category Scores"
	sheetFindings = "Findings"
	sheetCriteria = "Acceptance Criteria"
)

// XLSXExporter renders a report as an Excel workbook with one sheet per
// report section.
type XLSXExporter struct{}

// NewXLSXExporter creates an Excel report exporter
func NewXLSXExporter() ports.ReportExporter {
	return &XLSXExporter{}
}

func (e *XLSXExporter) Format() string { return "xlsx" }

func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *XLSXExporter) FileExtension() string { return ".xlsx" }

// Export builds the workbook and returns its bytes
func (e *XLSXExporter) Export(report *audit.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes Summary; the rest are appended.
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	for _, sheet := range []string{sheetScores, sheetFindings, sheetCriteria} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	if err := e.writeSummary(f, report); err != nil {
		return nil, err
	}
	if err := e.writeScores(f, report); err != nil {
		return nil, err
	}
	if err := e.writeFindings(f, report); err != nil {
		return nil, err
	}
	if err := e.writeCriteria(f, report); err != nil {
		return nil, err
	}

	idx, err := f.GetSheetIndex(sheetSummary)
	if err == nil && idx != -1 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *XLSXExporter) writeSummary(f *excelize.File, report *audit.Report) error {
	rows := [][]interface{}{
		{"Audit ID", report.ID.String()},
		{"Created At", report.CreatedAt.Time().Format(time.RFC3339)},
		{"Domain", report.Domain},
		{"Document SHA-256", report.DocumentSHA256},
		{"Document Characters", report.DocumentChars},
	}
	if report.TruncatedChars > 0 {
		rows = append(rows, []interface{}{"Truncated To", report.TruncatedChars})
	}
	rows = append(rows,
		[]interface{}{"Clarity Score", report.ClarityScore},
		[]interface{}{"Risk Level", string(report.RiskLevel)},
		[]interface{}{"Contextual Status", string(report.ContextualStatus)},
	)
	if report.ContextualModel != "" {
		rows = append(rows, []interface{}{"Contextual Model", report.ContextualModel})
	}
	if report.ContextualReason != "" {
		rows = append(rows, []interface{}{"Contextual Reason", report.ContextualReason})
	}
	rows = append(rows,
		[]interface{}{"Checklist Version", report.ChecklistVersion},
		[]interface{}{"Engine Version", report.EngineVersion},
		[]interface{}{"Runtime (ms)", report.RuntimeMs},
	)
	if report.ExecutiveSummary != "" {
		rows = append(rows, []interface{}{"Executive Summary", report.ExecutiveSummary})
	}
	return writeRows(f, sheetSummary, rows, 1)
}

func (e *XLSXExporter) writeScores(f *excelize.File, report *audit.Report) error {
	rows := [][]interface{}{
		{"Category", "Title", "Max Points", "Deterministic", "Contextual", "Blended"},
	}
	for _, cs := range report.CategoryScores {
		rows = append(rows, []interface{}{
			string(cs.Category), cs.Title, cs.MaxPoints, cs.Deterministic, cs.Contextual, cs.Blended,
		})
	}
	rows = append(rows, []interface{}{"", "Total", audit.TotalMaxPoints(), "", "", report.ClarityScore})
	return writeRows(f, sheetScores, rows, 1)
}

func (e *XLSXExporter) writeFindings(f *excelize.File, report *audit.Report) error {
	rows := [][]interface{}{
		{"Category", "Severity", "Source", "Rule", "Message", "Snippet", "Suggested Rewrite"},
	}
	for _, finding := range report.Findings {
		snippet := ""
		if finding.Span != nil {
			snippet = finding.Span.Snippet
		}
		rows = append(rows, []interface{}{
			string(finding.Category), string(finding.Severity), string(finding.Source),
			finding.RuleID, finding.Message, snippet, finding.SuggestedRewrite,
		})
	}
	return writeRows(f, sheetFindings, rows, 1)
}

func (e *XLSXExporter) writeCriteria(f *excelize.File, report *audit.Report) error {
	rows := [][]interface{}{
		{"#", "Given", "When", "Then"},
	}
	for i, c := range report.AcceptanceCriteria {
		rows = append(rows, []interface{}{i + 1, c.Given, c.When, c.Then})
	}
	return writeRows(f, sheetCriteria, rows, 1)
}

// writeRows fills a sheet starting at the given row, one cell at a time
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, startRow int) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, startRow+r)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write cell %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
