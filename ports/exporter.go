package ports

import "speclens/domain/audit"

// ReportExporter renders a finished report into a downloadable format
type ReportExporter interface {
	Format() string
	ContentType() string
	FileExtension() string
	Export(report *audit.Report) ([]byte, error)
}
