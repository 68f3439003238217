package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preevind/timeverify/constants"
	"github.com/preevind/timeverify/internal/common"
	"github.com/preevind/timeverify/internal/vision"
)

func TestRecord_Valid(t *testing.T) {
	raw := vision.RawRecord{
		EmployeeName:     "Aravind G",
		Date:             "06/09/2025",
		Hours:            8,
		SubmissionStatus: "Closed",
		Week:             "Week 23",
		TotalHours:       40,
		Confidence:       0.92,
	}

	entry, err := Record(raw, "week23.docx", 1)
	require.NoError(t, err)

	assert.Equal(t, "Aravind G", entry.EmployeeName)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), entry.Date)
	assert.Equal(t, 8.0, entry.Hours)
	assert.Equal(t, constants.SubmissionSubmitted, entry.SubmissionStatus)
	assert.Equal(t, "week23.docx", entry.SourceDocument)
	assert.Equal(t, 1, entry.SourceImageIndex)
	assert.InDelta(t, 0.92, float64(entry.Confidence), 0.001)
}

func TestRecord_ISODate(t *testing.T) {
	entry, err := Record(vision.RawRecord{
		EmployeeName: "Aravind G",
		Date:         "2025-06-09",
		Hours:        7.5,
	}, "a.docx", 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), entry.Date)
}

func TestRecord_HoursBounds(t *testing.T) {
	base := vision.RawRecord{EmployeeName: "A", Date: "06/09/2025"}

	base.Hours = 8
	_, err := Record(base, "a.docx", 0)
	assert.NoError(t, err)

	base.Hours = 24
	_, err = Record(base, "a.docx", 0)
	assert.NoError(t, err)

	base.Hours = 30
	_, err = Record(base, "a.docx", 0)
	assert.ErrorIs(t, err, common.ErrInvalidRecord)

	base.Hours = -1
	_, err = Record(base, "a.docx", 0)
	assert.ErrorIs(t, err, common.ErrInvalidRecord)
}

func TestRecord_MissingRequiredFields(t *testing.T) {
	_, err := Record(vision.RawRecord{Date: "06/09/2025", Hours: 8}, "a.docx", 0)
	assert.ErrorIs(t, err, common.ErrInvalidRecord)

	_, err = Record(vision.RawRecord{EmployeeName: "  ", Date: "06/09/2025", Hours: 8}, "a.docx", 0)
	assert.ErrorIs(t, err, common.ErrInvalidRecord)

	_, err = Record(vision.RawRecord{EmployeeName: "A", Date: "June 9th", Hours: 8}, "a.docx", 0)
	assert.ErrorIs(t, err, common.ErrInvalidRecord)
}

func TestRecord_UnrecognizedStatusMapsToUnknown(t *testing.T) {
	entry, err := Record(vision.RawRecord{
		EmployeeName:     "A",
		Date:             "06/09/2025",
		Hours:            8,
		SubmissionStatus: "Frobnicated",
	}, "a.docx", 0)
	require.NoError(t, err)
	assert.Equal(t, constants.SubmissionUnknown, entry.SubmissionStatus)
}

func TestMapSubmissionStatus(t *testing.T) {
	cases := map[string]constants.SubmissionStatus{
		"Closed":        constants.SubmissionSubmitted,
		"SUBMITTED":     constants.SubmissionSubmitted,
		"approved":      constants.SubmissionSubmitted,
		"Open":          constants.SubmissionPending,
		"pending":       constants.SubmissionPending,
		"Missing":       constants.SubmissionMissing,
		"not submitted": constants.SubmissionMissing,
		"":              constants.SubmissionUnknown,
		"whatever":      constants.SubmissionUnknown,
	}
	for raw, want := range cases {
		assert.Equal(t, want, constants.MapSubmissionStatus(raw), "raw=%q", raw)
	}
}

func TestRecord_ConfidenceClamped(t *testing.T) {
	entry, err := Record(vision.RawRecord{
		EmployeeName: "A", Date: "06/09/2025", Hours: 8, Confidence: 1.7,
	}, "a.docx", 0)
	require.NoError(t, err)
	assert.Equal(t, float32(1), entry.Confidence)
}
