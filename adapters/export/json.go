package export

import (
	"encoding/json"

	"speclens/domain/audit"
	"speclens/ports"
)

// JSONExporter renders a report as indented JSON, field-for-field identical
// to the API representation.
type JSONExporter struct{}

// NewJSONExporter creates a JSON report exporter
func NewJSONExporter() ports.ReportExporter {
	return &JSONExporter{}
}

func (e *JSONExporter) Format() string { return "json" }

func (e *JSONExporter) ContentType() string { return "application/json" }

func (e *JSONExporter) FileExtension() string { return ".json" }

// Export serializes the report with two-space indentation
func (e *JSONExporter) Export(report *audit.Report) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
