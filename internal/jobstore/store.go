// Package jobstore is the process-local registry of job state. It is the
// only mutable shared state in the system; all mutation goes through the
// per-job exclusive lock and all reads return deep-copied snapshots.
package jobstore

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/preevind/timeverify/constants"
	"github.com/preevind/timeverify/internal/common"
	"github.com/preevind/timeverify/internal/entity"
)

type record struct {
	mu  sync.Mutex
	job entity.Job
}

// Store holds jobs for the lifetime of the process. Terminal jobs age out
// after the retention window; nothing survives a restart.
type Store struct {
	logger    *slog.Logger
	retention time.Duration
	interval  time.Duration

	mu   sync.RWMutex
	jobs map[uuid.UUID]*record

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type Option func(*Store)

// WithRetention sets how long terminal jobs remain readable. Zero disables
// eviction entirely.
func WithRetention(d time.Duration) Option {
	return func(s *Store) { s.retention = d }
}

// WithJanitorInterval sets how often the eviction sweep runs.
func WithJanitorInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

func New(logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		logger:   logger,
		interval: time.Minute,
		jobs:     make(map[uuid.UUID]*record),
		stop:     make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.retention > 0 {
		s.wg.Add(1)
		go s.janitor()
	}
	return s
}

// Create allocates a queued job for a batch of total documents and returns
// its id.
func (s *Store) Create(total int, label string) uuid.UUID {
	job := entity.Job{
		ID:         uuid.New(),
		Label:      label,
		Status:     constants.JobStatusQueued,
		Total:      total,
		Entries:    []entity.TimesheetEntry{},
		FileErrors: make(map[string]string),
		CreatedAt:  time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = &record{job: job}
	s.mu.Unlock()

	s.logger.Info("jobstore.created", "job_id", job.ID, "total", total, "label", label)
	return job.ID
}

// Mutate applies fn under the job's exclusive lock. Mutations to different
// jobs never block each other.
func (s *Store) Mutate(id uuid.UUID, fn func(*entity.Job)) error {
	s.mu.RLock()
	rec, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return common.ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	fn(&rec.job)
	return nil
}

// Get returns a value snapshot of the job. Callers may iterate the snapshot
// freely; concurrent appends never show through.
func (s *Store) Get(id uuid.UUID) (entity.Job, error) {
	s.mu.RLock()
	rec, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return entity.Job{}, common.ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.job.Clone(), nil
}

// List snapshots every known job, in no particular order.
func (s *Store) List() []entity.Job {
	s.mu.RLock()
	recs := make([]*record, 0, len(s.jobs))
	for _, rec := range s.jobs {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	out := make([]entity.Job, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		out = append(out, rec.job.Clone())
		rec.mu.Unlock()
	}
	return out
}

// Stop halts the janitor. Stored jobs remain readable until process exit.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *Store) janitor() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictExpired(time.Now().UTC())
		}
	}
}

// evictExpired removes terminal jobs whose completion is older than the
// retention window. Polling an evicted id reads as not found.
func (s *Store) evictExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.jobs {
		rec.mu.Lock()
		expired := rec.job.Status.Terminal() &&
			rec.job.CompletedAt != nil &&
			now.Sub(*rec.job.CompletedAt) > s.retention
		rec.mu.Unlock()
		if expired {
			delete(s.jobs, id)
			s.logger.Info("jobstore.evicted", "job_id", id)
		}
	}
}
