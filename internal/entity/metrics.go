package entity

// DashboardMetrics is the read-side projection across all known jobs.
// It has no independent lifecycle; it is recomputed on every request.
type DashboardMetrics struct {
	DocumentsProcessed int     `json:"documents_processed"`
	HoursExtracted     float64 `json:"hours_extracted"`
	TotalEntries       int     `json:"total_entries"`
	ImagesProcessed    int     `json:"images_processed"`
	AccuracyRate       int     `json:"accuracy_rate"`
	TimeSavingsMinutes int     `json:"time_savings"`
	Discrepancies      int     `json:"discrepancies"`
}
