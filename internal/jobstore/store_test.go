package jobstore

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preevind/timeverify/constants"
	"github.com/preevind/timeverify/internal/common"
	"github.com/preevind/timeverify/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_CreateAndGet(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	id := s.Create(3, "batch-1")

	job, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, "batch-1", job.Label)
	assert.Equal(t, constants.JobStatusQueued, job.Status)
	assert.Equal(t, 3, job.Total)
	assert.Zero(t, job.Processed)
	assert.Empty(t, job.Entries)
	assert.Empty(t, job.FileErrors)
	assert.Nil(t, job.CompletedAt)
}

func TestStore_GetUnknown(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	_, err := s.Get(uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = s.Mutate(uuid.New(), func(j *entity.Job) {})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	id := s.Create(1, "")
	snap, err := s.Get(id)
	require.NoError(t, err)

	require.NoError(t, s.Mutate(id, func(j *entity.Job) {
		j.Entries = append(j.Entries, entity.TimesheetEntry{EmployeeName: "A"})
		j.FileErrors["x.docx"] = "boom"
	}))

	// The earlier snapshot must not see the mutation.
	assert.Empty(t, snap.Entries)
	assert.Empty(t, snap.FileErrors)

	// Nor may mutating a snapshot leak back into the store.
	snap2, err := s.Get(id)
	require.NoError(t, err)
	snap2.Entries[0].EmployeeName = "tampered"
	snap2.FileErrors["x.docx"] = "tampered"

	fresh, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "A", fresh.Entries[0].EmployeeName)
	assert.Equal(t, "boom", fresh.FileErrors["x.docx"])
}

func TestStore_ConcurrentMutations(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	const goroutines = 16
	const perGoroutine = 200

	id := s.Create(goroutines*perGoroutine, "")

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				_ = s.Mutate(id, func(j *entity.Job) {
					j.Processed++
				})
			}
		}()
	}

	// Concurrent readers must always observe a consistent snapshot.
	stopReads := make(chan struct{})
	var readWG sync.WaitGroup
	readWG.Add(1)
	go func() {
		defer readWG.Done()
		for {
			select {
			case <-stopReads:
				return
			default:
				job, err := s.Get(id)
				if err == nil {
					assert.LessOrEqual(t, job.Processed, job.Total)
				}
			}
		}
	}()

	wg.Wait()
	close(stopReads)
	readWG.Wait()

	job, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, goroutines*perGoroutine, job.Processed)
}

func TestStore_List(t *testing.T) {
	s := New(testLogger())
	defer s.Stop()

	a := s.Create(1, "a")
	b := s.Create(2, "b")

	jobs := s.List()
	require.Len(t, jobs, 2)
	ids := map[uuid.UUID]bool{jobs[0].ID: true, jobs[1].ID: true}
	assert.True(t, ids[a])
	assert.True(t, ids[b])
}

func TestStore_EvictsTerminalJobsAfterRetention(t *testing.T) {
	s := New(testLogger(),
		WithRetention(20*time.Millisecond),
		WithJanitorInterval(10*time.Millisecond),
	)
	defer s.Stop()

	terminal := s.Create(1, "")
	running := s.Create(1, "")

	require.NoError(t, s.Mutate(terminal, func(j *entity.Job) {
		done := time.Now().UTC().Add(-time.Minute)
		j.Status = constants.JobStatusCompleted
		j.Processed = 1
		j.CompletedAt = &done
	}))
	require.NoError(t, s.Mutate(running, func(j *entity.Job) {
		j.Status = constants.JobStatusProcessing
	}))

	require.Eventually(t, func() bool {
		_, err := s.Get(terminal)
		return err != nil
	}, time.Second, 5*time.Millisecond, "terminal job should be evicted")

	// In-flight jobs are never evicted.
	_, err := s.Get(running)
	assert.NoError(t, err)
}
