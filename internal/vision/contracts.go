package vision

import "context"

// ImageRequest is one screenshot handed to the extraction service, with
// provenance so diagnostics can point back at the source document.
type ImageRequest struct {
	Data           []byte
	MediaType      string
	SourceDocument string
	ImageIndex     int
}

// RawRecord is the normalized shape we want from the model for one
// timesheet row. Dates arrive as MM/DD/YYYY or YYYY-MM-DD strings and are
// parsed downstream by the record validator.
type RawRecord struct {
	EmployeeName     string  `json:"employee_name"`
	Date             string  `json:"date"`
	Hours            float64 `json:"hours"`
	SubmissionStatus string  `json:"submission_status"`
	Week             string  `json:"week,omitempty"`
	TotalHours       float64 `json:"total_hours,omitempty"`
	Confidence       float32 `json:"confidence,omitempty"`
}

// RawExtraction is everything the model read off a single screenshot. A
// timesheet screenshot carries one table row per calendar day, so one image
// usually yields several records.
type RawExtraction struct {
	Records []RawRecord
}

// Extractor is the interface the orchestrator depends on. Implementations
// make at most one service call per invocation; every failure carries a
// *Error so the kind survives into job diagnostics.
type Extractor interface {
	Analyze(ctx context.Context, req ImageRequest) (RawExtraction, []byte /*rawJSON*/, error)
}
