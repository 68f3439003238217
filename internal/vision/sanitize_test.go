package vision

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecords(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestNormalize_BareObjectWrapped(t *testing.T) {
	cleaned, adjusted, err := NormalizeExtractionJSON([]byte(
		`{"employee_name":"A","date":"06/09/2025","hours":8}`,
	))
	require.NoError(t, err)
	assert.Empty(t, adjusted)

	records := decodeRecords(t, cleaned)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0]["employee_name"])
}

func TestNormalize_SynonymKeysRenamed(t *testing.T) {
	cleaned, adjusted, err := NormalizeExtractionJSON([]byte(
		`[{"name":"A","date":"06/09/2025","hours":8,"status":"Closed","weekly_total":40}]`,
	))
	require.NoError(t, err)

	records := decodeRecords(t, cleaned)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0]["employee_name"])
	assert.Equal(t, "Closed", records[0]["submission_status"])
	assert.Equal(t, 40.0, records[0]["total_hours"])
	assert.NotContains(t, records[0], "name")
	assert.NotContains(t, records[0], "status")
	assert.Contains(t, adjusted, "[0].name->employee_name")
}

func TestNormalize_RenameNeverClobbersCanonicalKey(t *testing.T) {
	cleaned, _, err := NormalizeExtractionJSON([]byte(
		`[{"employee_name":"Canonical","name":"Synonym","date":"06/09/2025","hours":8}]`,
	))
	require.NoError(t, err)

	records := decodeRecords(t, cleaned)
	assert.Equal(t, "Canonical", records[0]["employee_name"])
}

func TestNormalize_StringNumericsCoerced(t *testing.T) {
	cleaned, adjusted, err := NormalizeExtractionJSON([]byte(
		`[{"employee_name":"A","date":"06/09/2025","hours":"7.5","confidence":" 0.9 "}]`,
	))
	require.NoError(t, err)

	records := decodeRecords(t, cleaned)
	assert.Equal(t, 7.5, records[0]["hours"])
	assert.Equal(t, 0.9, records[0]["confidence"])
	assert.Contains(t, adjusted, "[0].hours(coerced)")
}

func TestNormalize_UnparsableNumericDropped(t *testing.T) {
	cleaned, adjusted, err := NormalizeExtractionJSON([]byte(
		`[{"employee_name":"A","date":"06/09/2025","hours":8,"total_hours":"n/a"}]`,
	))
	require.NoError(t, err)

	records := decodeRecords(t, cleaned)
	assert.NotContains(t, records[0], "total_hours")
	assert.Contains(t, adjusted, "[0].total_hours(unparsable)")
}

func TestNormalize_NullAndEmptyOptionalsDropped(t *testing.T) {
	cleaned, _, err := NormalizeExtractionJSON([]byte(
		`[{"employee_name":"A","date":"06/09/2025","hours":8,"confidence":null,"week":"  ","submission_status":""}]`,
	))
	require.NoError(t, err)

	records := decodeRecords(t, cleaned)
	assert.NotContains(t, records[0], "confidence")
	assert.NotContains(t, records[0], "week")
	assert.NotContains(t, records[0], "submission_status")
}

func TestNormalize_UnknownKeysStripped(t *testing.T) {
	cleaned, adjusted, err := NormalizeExtractionJSON([]byte(
		`[{"employee_name":"A","date":"06/09/2025","hours":8,"notes":"looks fine","row_color":"yellow"}]`,
	))
	require.NoError(t, err)

	records := decodeRecords(t, cleaned)
	assert.NotContains(t, records[0], "notes")
	assert.NotContains(t, records[0], "row_color")
	assert.Contains(t, adjusted, "[0].notes(unknown)")
}

func TestNormalize_StringFieldsTrimmed(t *testing.T) {
	cleaned, _, err := NormalizeExtractionJSON([]byte(
		`[{"employee_name":"  Aravind G ","date":" 06/09/2025","hours":8}]`,
	))
	require.NoError(t, err)

	records := decodeRecords(t, cleaned)
	assert.Equal(t, "Aravind G", records[0]["employee_name"])
	assert.Equal(t, "06/09/2025", records[0]["date"])
}

func TestNormalize_NonJSONFails(t *testing.T) {
	_, _, err := NormalizeExtractionJSON([]byte("I could not find a timesheet in this image."))
	assert.Error(t, err)
}

func TestSchema_AcceptsNormalizedOutput(t *testing.T) {
	cleaned, _, err := NormalizeExtractionJSON([]byte(
		`[{"name":"A","date":"2025-06-09","hours":"8","status":"Open","extra":true}]`,
	))
	require.NoError(t, err)

	assert.NoError(t, ValidateJSONAgainstSchema(BuildTimesheetJSONSchema(), cleaned))
}

func TestSchema_RejectsMissingRequiredFields(t *testing.T) {
	schema := BuildTimesheetJSONSchema()

	err := ValidateJSONAgainstSchema(schema, []byte(`[{"date":"06/09/2025","hours":8}]`))
	assert.Error(t, err, "employee_name is required")

	err = ValidateJSONAgainstSchema(schema, []byte(`[{"employee_name":"A","date":"06/09/2025"}]`))
	assert.Error(t, err, "hours is required")
}

func TestSchema_RejectsBadDateFormat(t *testing.T) {
	err := ValidateJSONAgainstSchema(BuildTimesheetJSONSchema(), []byte(
		`[{"employee_name":"A","date":"June 9th 2025","hours":8}]`,
	))
	assert.Error(t, err)
}

func TestSchema_RejectsUnknownKeys(t *testing.T) {
	err := ValidateJSONAgainstSchema(BuildTimesheetJSONSchema(), []byte(
		`[{"employee_name":"A","date":"06/09/2025","hours":8,"surprise":1}]`,
	))
	assert.Error(t, err)
}
