package vision

// BuildTimesheetJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. The model is instructed to match it, and we validate the
// response against it locally before trusting a single field.
func BuildTimesheetJSONSchema() map[string]any {
	record := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"employee_name":     map[string]any{"type": "string", "minLength": 1},
			"date":              map[string]any{"type": "string", "pattern": `^(\d{2}/\d{2}/\d{4}|\d{4}-\d{2}-\d{2})$`},
			"hours":             map[string]any{"type": "number", "minimum": 0.0},
			"submission_status": map[string]any{"type": "string"},
			"week":              map[string]any{"type": "string"},
			"total_hours":       map[string]any{"type": "number", "minimum": 0.0},
			"confidence":        map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		},
		"required": []string{"employee_name", "date", "hours"},
	}
	return map[string]any{
		"type":  "array",
		"items": record,
	}
}
