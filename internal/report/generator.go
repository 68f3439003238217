// Package report renders a terminal job snapshot as an XLSX workbook.
// Generation is a pure function of the snapshot: same snapshot, same bytes.
package report

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/preevind/timeverify/constants"
	"github.com/preevind/timeverify/internal/common"
	"github.com/preevind/timeverify/internal/entity"
)

const (
	dataSheet   = "Timesheet Data"
	errorsSheet = "Failed Documents"
)

// statusFills is the fixed visual encoding: one fill per submission status.
var statusFills = map[constants.SubmissionStatus]string{
	constants.SubmissionSubmitted: "C6EFCE", // green
	constants.SubmissionPending:   "FFFF00", // yellow
	constants.SubmissionMissing:   "FFC7CE", // red
	constants.SubmissionUnknown:   "D9D9D9", // gray
}

// Generator produces XLSX bytes for completed jobs.
type Generator struct {
	logger *slog.Logger
}

func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// Generate renders the snapshot. Only terminal jobs have reports; a job
// still processing yields common.ErrPending. Row order is entry completion
// order; no re-sorting.
func (g *Generator) Generate(job entity.Job) ([]byte, error) {
	if !job.Status.Terminal() {
		return nil, common.ErrPending
	}
	start := time.Now()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"CC0000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Border: thinBorder()})
	if err != nil {
		return nil, fmt.Errorf("cell style: %w", err)
	}

	statusStyles := make(map[constants.SubmissionStatus]int, len(statusFills))
	for _, status := range []constants.SubmissionStatus{
		constants.SubmissionSubmitted,
		constants.SubmissionPending,
		constants.SubmissionMissing,
		constants.SubmissionUnknown,
	} {
		id, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{statusFills[status]}, Pattern: 1},
			Border: thinBorder(),
		})
		if err != nil {
			return nil, fmt.Errorf("status style: %w", err)
		}
		statusStyles[status] = id
	}

	headers := []string{
		"Employee Name", "Date", "Hours", "Submission Status",
		"Week", "Week Total", "Source Document", "Confidence",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(dataSheet, cell, h)
		_ = f.SetCellStyle(dataSheet, cell, cell, headerStyle)
	}

	for idx, e := range job.Entries {
		row := idx + 2
		write := func(col int, v any) string {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(dataSheet, cell, v)
			_ = f.SetCellStyle(dataSheet, cell, cell, cellStyle)
			return cell
		}
		write(1, e.EmployeeName)
		write(2, e.Date.Format("01/02/2006"))
		write(3, e.Hours)
		statusCell := write(4, string(e.SubmissionStatus))
		write(5, e.Week)
		write(6, e.WeekTotalHours)
		write(7, e.SourceDocument)
		write(8, e.Confidence)

		_ = f.SetCellStyle(dataSheet, statusCell, statusCell, statusStyles[e.SubmissionStatus])
	}

	_ = f.SetColWidth(dataSheet, "A", "A", 24)
	_ = f.SetColWidth(dataSheet, "B", "B", 12)
	_ = f.SetColWidth(dataSheet, "C", "C", 8)
	_ = f.SetColWidth(dataSheet, "D", "D", 18)
	_ = f.SetColWidth(dataSheet, "E", "F", 12)
	_ = f.SetColWidth(dataSheet, "G", "G", 36)
	_ = f.SetColWidth(dataSheet, "H", "H", 11)

	if err := g.writeErrorsSheet(f, job, headerStyle, cellStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	g.logger.Info("report.xlsx.ok",
		"job_id", job.ID.String(),
		"rows", len(job.Entries),
		"failed_documents", len(job.FileErrors),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// writeErrorsSheet enumerates failed documents for operator follow-up.
// Rows are sorted by document name: FileErrors is a map and the workbook
// must come out byte-identical on every run.
func (g *Generator) writeErrorsSheet(f *excelize.File, job entity.Job, headerStyle, cellStyle int) error {
	if _, err := f.NewSheet(errorsSheet); err != nil {
		return fmt.Errorf("errors sheet: %w", err)
	}

	for i, h := range []string{"Document", "Error"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(errorsSheet, cell, h)
		_ = f.SetCellStyle(errorsSheet, cell, cell, headerStyle)
	}

	names := make([]string, 0, len(job.FileErrors))
	for name := range job.FileErrors {
		names = append(names, name)
	}
	sort.Strings(names)

	for idx, name := range names {
		row := idx + 2
		for col, v := range []string{name, job.FileErrors[name]} {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(errorsSheet, cell, v)
			_ = f.SetCellStyle(errorsSheet, cell, cell, cellStyle)
		}
	}

	_ = f.SetColWidth(errorsSheet, "A", "A", 36)
	_ = f.SetColWidth(errorsSheet, "B", "B", 72)
	return nil
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}
