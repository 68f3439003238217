package constants

import "strings"

// JobStatus is the canonical lifecycle status for a processing job.
type JobStatus string

// Stable values (these exact strings are returned to polling clients).
const (
	JobStatusQueued     JobStatus = "queued"     // accepted, not yet dispatched
	JobStatusProcessing JobStatus = "processing" // tasks in flight
	JobStatusCompleted  JobStatus = "completed"  // terminal, no document failures
	JobStatusFailed     JobStatus = "failed"     // terminal with partial results
)

// Terminal reports whether a job in this status will never change again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// SubmissionStatus is the four-way classification of a timesheet's
// submission state as read off the screenshot's status panel.
type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionMissing   SubmissionStatus = "missing"
	SubmissionUnknown   SubmissionStatus = "unknown"
)

// MapSubmissionStatus maps the raw status signal returned by the vision
// model onto the enum. The mapping is total: anything unrecognized is
// SubmissionUnknown, never an error.
func MapSubmissionStatus(raw string) SubmissionStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "closed", "submitted", "approved":
		return SubmissionSubmitted
	case "open", "pending", "draft":
		return SubmissionPending
	case "missing", "not submitted", "none":
		return SubmissionMissing
	default:
		return SubmissionUnknown
	}
}
