// Package orchestrator owns the job lifecycle: batch submission, dispatch
// across a bounded worker pool, per-document failure containment, and
// exactly-once finalization.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/preevind/timeverify/constants"
	"github.com/preevind/timeverify/internal/common"
	"github.com/preevind/timeverify/internal/docx"
	"github.com/preevind/timeverify/internal/entity"
	"github.com/preevind/timeverify/internal/jobstore"
	"github.com/preevind/timeverify/internal/validate"
	"github.com/preevind/timeverify/internal/vision"
)

// ImageExtractor returns the ordered raster images embedded in one
// document archive.
type ImageExtractor func(data []byte) ([]docx.Image, error)

type task struct {
	jobID uuid.UUID
	doc   entity.DocumentRef
}

// Orchestrator dispatches one task per document onto a fixed pool of
// workers sharing a FIFO queue. The pool size bounds concurrent outbound
// vision calls and the number of simultaneously held images.
type Orchestrator struct {
	store       *jobstore.Store
	extractor   vision.Extractor
	images      ImageExtractor
	logger      *slog.Logger
	workers     int
	taskTimeout time.Duration

	ch   chan task
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	closed  bool
	submits sync.WaitGroup // in-flight Submit calls; Shutdown waits before closing ch
}

type Option func(*Orchestrator)

func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.ch = make(chan task, n)
		}
	}
}

// WithTaskTimeout bounds one document's processing, vision round trips
// included. A timed-out document fails alone; siblings keep running.
func WithTaskTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.taskTimeout = d
		}
	}
}

// WithImageExtractor overrides the DOCX extractor (tests).
func WithImageExtractor(fn ImageExtractor) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.images = fn
		}
	}
}

func New(store *jobstore.Store, extractor vision.Extractor, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		store:       store,
		extractor:   extractor,
		images:      docx.ExtractImages,
		logger:      logger,
		workers:     4,
		taskTimeout: 3 * time.Minute,
		ch:          make(chan task, 256),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.start()
	return o
}

func (o *Orchestrator) start() {
	o.once.Do(func() {
		for i := 0; i < o.workers; i++ {
			o.wg.Add(1)
			go func(workerID int) {
				defer o.wg.Done()
				o.logger.Info("orchestrator.worker.started", "worker_id", workerID)
				for t := range o.ch {
					o.process(workerID, t)
				}
				o.logger.Info("orchestrator.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Submit creates a job for the batch and enqueues one task per document.
// It returns as soon as the tasks are queued; extraction progress is
// observed through Status. A batch with zero documents is a structural
// error and rejects the whole call.
func (o *Orchestrator) Submit(ctx context.Context, docs []entity.DocumentRef, label string) (uuid.UUID, error) {
	if len(docs) == 0 {
		return uuid.Nil, common.NewAppError("EMPTY_BATCH", "no documents in batch", common.ErrInvalidInput)
	}

	// The lock guards only the closed check; enqueueing happens outside it
	// so a submitter blocked on a saturated queue never stalls other
	// submitters or shutdown. The submits group keeps the channel open
	// until every admitted sender is done.
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return uuid.Nil, common.NewAppError("SHUTTING_DOWN", "orchestrator is shutting down", common.ErrInternal)
	}
	o.submits.Add(1)
	o.mu.Unlock()
	defer o.submits.Done()

	jobID := o.store.Create(len(docs), label)
	if err := o.store.Mutate(jobID, func(j *entity.Job) {
		j.Status = constants.JobStatusProcessing
	}); err != nil {
		return uuid.Nil, err
	}

	o.logger.Info("orchestrator.submitted",
		"job_id", jobID, "documents", len(docs), "label", label)

	for _, doc := range docs {
		select {
		case o.ch <- task{jobID: jobID, doc: doc}:
		default:
			o.logger.Warn("orchestrator.queue.full", "job_id", jobID, "document", doc.Name)
			o.ch <- task{jobID: jobID, doc: doc}
		}
	}
	return jobID, nil
}

// Status returns a point-in-time snapshot of the job.
func (o *Orchestrator) Status(id uuid.UUID) (entity.Job, error) {
	return o.store.Get(id)
}

// Result returns the job snapshot once it is terminal, common.ErrPending
// while tasks are still in flight.
func (o *Orchestrator) Result(id uuid.UUID) (entity.Job, error) {
	job, err := o.store.Get(id)
	if err != nil {
		return entity.Job{}, err
	}
	if !job.Status.Terminal() {
		return entity.Job{}, common.ErrPending
	}
	return job, nil
}

// process runs one document to completion and records the outcome in a
// single store mutation: either all validated entries are appended or the
// document's failure is filed, never both. The mutation that brings
// Processed up to Total finalizes the job; the store's per-job lock makes
// that decision race-free.
func (o *Orchestrator) process(workerID int, t task) {
	ctx, cancel := context.WithTimeout(context.Background(), o.taskTimeout)
	defer cancel()
	ctx = common.WithJobID(ctx, t.jobID.String())

	start := time.Now()
	entries, imageCount, procErr := o.processDocument(ctx, t.doc)

	if procErr != nil {
		o.logger.Error("orchestrator.task.failed",
			"worker_id", workerID, "job_id", t.jobID, "document", t.doc.Name,
			"error", procErr, "elapsed_ms", time.Since(start).Milliseconds())
	} else {
		o.logger.Info("orchestrator.task.ok",
			"worker_id", workerID, "job_id", t.jobID, "document", t.doc.Name,
			"entries", len(entries), "images", imageCount,
			"elapsed_ms", time.Since(start).Milliseconds())
	}

	var finalized bool
	var finalStatus constants.JobStatus
	err := o.store.Mutate(t.jobID, func(j *entity.Job) {
		if procErr != nil {
			j.FileErrors[t.doc.Name] = procErr.Error()
		} else {
			j.Entries = append(j.Entries, entries...)
			j.ImageCount += imageCount
		}
		j.Processed++
		if j.Processed == j.Total {
			now := time.Now().UTC()
			j.CompletedAt = &now
			if len(j.FileErrors) == 0 {
				j.Status = constants.JobStatusCompleted
			} else {
				j.Status = constants.JobStatusFailed
			}
			finalized = true
			finalStatus = j.Status
		}
	})
	if err != nil {
		// Job evicted mid-flight; the work is simply dropped.
		o.logger.Warn("orchestrator.task.orphaned", "job_id", t.jobID, "document", t.doc.Name)
		return
	}
	if finalized {
		o.logger.Info("orchestrator.job.finalized", "job_id", t.jobID, "status", string(finalStatus))
	}
}

// processDocument extracts images and runs the vision/validate pipeline for
// each. Zero images is a success contributing zero entries. Any failure
// (corrupt archive, vision call, invalid record) fails the whole document
// so it ends up either fully represented or fully reported.
func (o *Orchestrator) processDocument(ctx context.Context, doc entity.DocumentRef) ([]entity.TimesheetEntry, int, error) {
	images, err := o.images(doc.Content)
	if err != nil {
		return nil, 0, err
	}

	var entries []entity.TimesheetEntry
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, 0, fmt.Errorf("image %d: %w", i, err)
		}
		raw, _, err := o.extractor.Analyze(ctx, vision.ImageRequest{
			Data:           img.Data,
			MediaType:      img.MediaType,
			SourceDocument: doc.Name,
			ImageIndex:     i,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("image %d: %w", i, err)
		}
		for _, rec := range raw.Records {
			entry, err := validate.Record(rec, doc.Name, i)
			if err != nil {
				return nil, 0, fmt.Errorf("image %d: %w", i, err)
			}
			entries = append(entries, entry)
		}
	}
	return entries, len(images), nil
}

// Shutdown stops accepting submissions, drains queued tasks, and waits for
// workers, bounded by ctx.
func (o *Orchestrator) Shutdown(ctx context.Context) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()

	// Admitted submitters may still be sending; workers keep draining until
	// the last one finishes, so this wait cannot deadlock.
	o.submits.Wait()
	close(o.ch)

	done := make(chan struct{})
	go func() { defer close(done); o.wg.Wait() }()

	select {
	case <-ctx.Done():
		o.logger.Warn("orchestrator.shutdown.interrupted")
	case <-done:
		o.logger.Info("orchestrator.shutdown.complete")
	}
}
