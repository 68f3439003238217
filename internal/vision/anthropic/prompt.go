package anthropic

import (
	"fmt"
	"strings"
)

// buildPrompt asks for every row of the main timesheet table plus the
// submission state from the right panel, as a bare JSON array. The status
// panel highlight is the model's signal; the core only maps the returned
// string onto the submission enum.
func buildPrompt(sourceDocument string, imageIndex int) string {
	parts := []string{
		fmt.Sprintf("File: %s (image %d)", sourceDocument, imageIndex+1),
		"",
		"Analyze this timesheet screenshot and extract ALL entries. Look carefully at BOTH the main timesheet table AND the right panel.",
		"",
		"IMPORTANT: The submission status is shown in the right panel and may be highlighted in YELLOW. Look for:",
		"- \"State\" section in right panel",
		"- Status like \"Closed\", \"Open\", \"Submitted\", \"Pending\", \"Approved\"",
		"- Yellow highlighting indicates the current status",
		"",
		"From the main table, extract:",
		"- Employee name (from a title like \"Aravind G / 2025-06-07 / Week 23\")",
		"- Each date row with its hours",
		"",
		"From the right panel, extract:",
		"- Current submission status (prefer the yellow highlighted value)",
		"- Week information",
		"- Total hours for the week",
		"",
		"Return ONLY a JSON array, no prose:",
		`[{"employee_name": "Aravind G", "date": "06/09/2025", "hours": 8.0, "submission_status": "Closed", "week": "Week 23", "total_hours": 40.0}]`,
		"",
		"RULES:",
		"- Extract ALL individual date rows from the table",
		"- Use the status from the right panel for every row",
		"- Dates as MM/DD/YYYY",
		"- Hours as numbers, never strings",
		"- Never output null; omit a field you cannot read",
	}
	return strings.Join(parts, "\n")
}
