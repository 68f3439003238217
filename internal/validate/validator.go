// Package validate normalizes raw extraction records into timesheet
// entries, rejecting anything that would corrupt aggregate metrics.
package validate

import (
	"strings"
	"time"

	"github.com/preevind/timeverify/constants"
	"github.com/preevind/timeverify/internal/common"
	"github.com/preevind/timeverify/internal/entity"
	"github.com/preevind/timeverify/internal/vision"
)

// MaxDailyHours bounds a single entry. Values outside [0, MaxDailyHours]
// are rejected rather than clamped; a silently clamped value would still
// poison the extracted-hours totals.
const MaxDailyHours = 24

var dateLayouts = []string{"01/02/2006", "2006-01-02"}

// Record validates one raw record and produces the immutable entry that
// gets attached to the job. sourceDocument and imageIndex are provenance
// back-references only.
func Record(raw vision.RawRecord, sourceDocument string, imageIndex int) (entity.TimesheetEntry, error) {
	name := strings.TrimSpace(raw.EmployeeName)
	if name == "" {
		return entity.TimesheetEntry{}, common.NewAppError("INVALID_RECORD", "missing employee name", common.ErrInvalidRecord)
	}

	date, err := parseDate(raw.Date)
	if err != nil {
		return entity.TimesheetEntry{}, common.NewAppError("INVALID_RECORD", "unparsable date "+raw.Date, common.ErrInvalidRecord)
	}

	if raw.Hours < 0 || raw.Hours > MaxDailyHours {
		return entity.TimesheetEntry{}, common.NewAppError("INVALID_RECORD", "hours out of range", common.ErrInvalidRecord)
	}

	confidence := raw.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return entity.TimesheetEntry{
		EmployeeName:     name,
		Date:             date,
		Hours:            raw.Hours,
		SubmissionStatus: constants.MapSubmissionStatus(raw.SubmissionStatus),
		Week:             strings.TrimSpace(raw.Week),
		WeekTotalHours:   raw.TotalHours,
		SourceDocument:   sourceDocument,
		SourceImageIndex: imageIndex,
		Confidence:       confidence,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
