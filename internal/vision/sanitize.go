package vision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NormalizeExtractionJSON makes a model response schema-friendly before
// strict validation:
//   - a bare object is wrapped into a one-element array
//   - known synonym keys are renamed (name -> employee_name, status ->
//     submission_status, weekly_total -> total_hours)
//   - numeric fields that arrive as strings are coerced
//   - null / empty optionals are dropped
//   - unknown keys are removed (additionalProperties = false friendliness)
//
// Returns the cleaned JSON plus the list of adjustments for logging.
func NormalizeExtractionJSON(raw []byte) ([]byte, []string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		trimmed = "[" + trimmed + "]"
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var adjusted []string
	for i, m := range records {
		note := func(what string) {
			adjusted = append(adjusted, fmt.Sprintf("[%d].%s", i, what))
		}

		rename := func(from, to string) {
			if v, ok := m[from]; ok {
				if _, exists := m[to]; !exists {
					m[to] = v
				}
				delete(m, from)
				note(from + "->" + to)
			}
		}
		rename("name", "employee_name")
		rename("employee", "employee_name")
		rename("status", "submission_status")
		rename("submission", "submission_status")
		rename("weekly_total", "total_hours")
		rename("week_total", "total_hours")

		for _, k := range []string{"hours", "total_hours", "confidence"} {
			switch t := m[k].(type) {
			case string:
				s := strings.TrimSpace(t)
				if f, err := strconv.ParseFloat(s, 64); err == nil {
					m[k] = f
					note(k + "(coerced)")
				} else {
					delete(m, k)
					note(k + "(unparsable)")
				}
			case nil:
				if _, ok := m[k]; ok {
					delete(m, k)
					note(k + "(null)")
				}
			}
		}

		for _, k := range []string{"employee_name", "date", "submission_status", "week"} {
			if v, ok := m[k]; ok {
				s, isStr := v.(string)
				if !isStr || strings.TrimSpace(s) == "" {
					if k != "employee_name" && k != "date" {
						delete(m, k)
						note(k + "(empty)")
					}
					continue
				}
				m[k] = strings.TrimSpace(s)
			}
		}

		for k := range m {
			if _, ok := allowedKeys[k]; !ok {
				delete(m, k)
				note(k + "(unknown)")
			}
		}
	}

	b, err := json.Marshal(records)
	if err != nil {
		return nil, nil, err
	}
	return b, adjusted, nil
}

var allowedKeys = map[string]struct{}{
	"employee_name": {}, "date": {}, "hours": {}, "submission_status": {},
	"week": {}, "total_hours": {}, "confidence": {},
}
