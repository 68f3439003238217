package vision

import "fmt"

// Kind classifies extraction failures. The orchestrator treats every kind
// identically for control flow; the string is preserved for diagnostics.
type Kind string

const (
	KindTimeout      Kind = "timeout"
	KindServiceError Kind = "service_error"
	KindUnparsable   Kind = "unparsable_response"
)

// Error is a typed extraction failure.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vision %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("vision %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
