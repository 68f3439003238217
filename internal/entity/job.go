package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/preevind/timeverify/constants"
)

// DocumentRef is one uploaded document inside a batch: an identifier
// (the upload filename) plus the raw archive bytes.
type DocumentRef struct {
	Name    string
	Content []byte
}

// TimesheetEntry is one validated attendance record extracted from a single
// screenshot. Immutable once appended to a job.
type TimesheetEntry struct {
	EmployeeName     string                     `json:"employee_name"`
	Date             time.Time                  `json:"date"`
	Hours            float64                    `json:"hours"`
	SubmissionStatus constants.SubmissionStatus `json:"submission_status"`
	Week             string                     `json:"week,omitempty"`
	WeekTotalHours   float64                    `json:"week_total_hours,omitempty"`
	SourceDocument   string                     `json:"source_document"`
	SourceImageIndex int                        `json:"source_image_index"`
	Confidence       float32                    `json:"confidence,omitempty"`
}

// Job tracks progress and results for one submitted batch.
//
// Processed only increases and reaches Total exactly once; a document
// contributes either entries or a FileErrors record, never both.
type Job struct {
	ID          uuid.UUID           `json:"id"`
	Label       string              `json:"label,omitempty"`
	Status      constants.JobStatus `json:"status"`
	Total       int                 `json:"total"`
	Processed   int                 `json:"processed"`
	Entries     []TimesheetEntry    `json:"entries"`
	FileErrors  map[string]string   `json:"file_errors"`
	ImageCount  int                 `json:"image_count"`
	CreatedAt   time.Time           `json:"created_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// Clone returns a deep copy so callers can iterate results without holding
// the store's lock and without observing concurrent appends.
func (j *Job) Clone() Job {
	out := *j
	out.Entries = make([]TimesheetEntry, len(j.Entries))
	copy(out.Entries, j.Entries)
	out.FileErrors = make(map[string]string, len(j.FileErrors))
	for k, v := range j.FileErrors {
		out.FileErrors[k] = v
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// TotalHours sums the extracted hours across all entries.
func (j *Job) TotalHours() float64 {
	var sum float64
	for _, e := range j.Entries {
		sum += e.Hours
	}
	return sum
}
