package models

import "time"

// ReportFormat selects the rendered document type.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Valid returns true for supported formats.
func (f ReportFormat) Valid() bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// ReportMeta carries the header fields of an exported document. Only fields
// actually set by the active filter are rendered.
type ReportMeta struct {
	CourseName string `json:"course_name,omitempty"`
	Date       string `json:"date,omitempty"`
	FromDate   string `json:"from_date,omitempty"`
	ToDate     string `json:"to_date,omitempty"`
	Department string `json:"department,omitempty"`
	Batch      string `json:"batch,omitempty"`
	Semester   string `json:"semester,omitempty"`
}

// ReportJobStatus tracks an asynchronous export job.
type ReportJobStatus string

const (
	ReportJobPending   ReportJobStatus = "pending"
	ReportJobCompleted ReportJobStatus = "completed"
	ReportJobFailed    ReportJobStatus = "failed"
)

// ReportJob describes a queued or finished export.
type ReportJob struct {
	ID        string          `json:"id"`
	Mode      FilterMode      `json:"mode"`
	Format    ReportFormat    `json:"format"`
	Status    ReportJobStatus `json:"status"`
	Token     string          `json:"token,omitempty"`
	URL       string          `json:"url,omitempty"`
	Error     string          `json:"error,omitempty"`
	ExpiresAt time.Time       `json:"expires_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
