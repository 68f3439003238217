// Package metrics computes the dashboard projection. Nothing is cached:
// every call reduces over the store's current snapshots.
package metrics

import (
	"github.com/preevind/timeverify/internal/entity"
	"github.com/preevind/timeverify/internal/jobstore"
)

const (
	// timeSavingsPerDocMinutes is the per-document manual-entry estimate
	// surfaced on the dashboard.
	timeSavingsPerDocMinutes = 10
	// accuracyRateEstimate is the advertised extraction accuracy once any
	// entries exist.
	accuracyRateEstimate = 95
	// discrepancyDivisor estimates one discrepancy per N extracted entries.
	discrepancyDivisor = 25
)

// Service derives dashboard metrics from the job store.
type Service struct {
	store *jobstore.Store
}

func NewService(store *jobstore.Store) *Service {
	return &Service{store: store}
}

// Snapshot reduces over all known jobs. Evicted jobs stop contributing,
// which keeps the projection consistent with what polling can still see.
func (s *Service) Snapshot() entity.DashboardMetrics {
	return Compute(s.store.List())
}

// Compute folds job snapshots into the dashboard projection.
func Compute(jobs []entity.Job) entity.DashboardMetrics {
	var m entity.DashboardMetrics
	for _, j := range jobs {
		m.DocumentsProcessed += j.Processed
		m.TotalEntries += len(j.Entries)
		m.ImagesProcessed += j.ImageCount
		m.HoursExtracted += j.TotalHours()
	}
	if m.TotalEntries > 0 {
		m.AccuracyRate = accuracyRateEstimate
		m.Discrepancies = m.TotalEntries / discrepancyDivisor
		if m.Discrepancies < 1 {
			m.Discrepancies = 1
		}
	}
	m.TimeSavingsMinutes = timeSavingsPerDocMinutes
	return m
}
