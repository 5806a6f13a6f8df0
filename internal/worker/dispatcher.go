package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/timmy/docmill/internal/domain"
	"github.com/timmy/docmill/internal/logger"
)

// JobKind identifies which pipeline a dispatched job runs.
type JobKind string

const (
	JobIngest     JobKind = "ingest"
	JobRemote     JobKind = "remote"
	JobSync       JobKind = "sync"
	JobAttachment JobKind = "attachment"
)

// JobStatus is the lifecycle state of a dispatched job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobState is the observable state of a dispatched job. Progress is
// best-effort and lost if the process dies; it is never persisted.
type JobState struct {
	ID         string      `json:"id"`
	Kind       JobKind     `json:"kind"`
	Status     JobStatus   `json:"status"`
	Progress   int         `json:"progress"`
	Result     interface{} `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	StartedAt  *time.Time  `json:"started_at,omitempty"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// Dispatcher runs jobs on a bounded goroutine pool and tracks their state in
// memory. Each job gets its own working directory, so no cross-job locking is
// needed beyond the state map.
type Dispatcher struct {
	pool   *ants.Pool
	worker *Worker
	log    *logger.Logger

	mu   sync.RWMutex
	jobs map[string]*JobState
}

// NewDispatcher creates a Dispatcher with a pool of size workers.
func NewDispatcher(w *Worker, size int, log *logger.Logger) (*Dispatcher, error) {
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = logger.GetDefault()
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		pool:   pool,
		worker: w,
		log:    log,
		jobs:   make(map[string]*JobState),
	}, nil
}

// Close releases the pool. Running jobs finish; pending ones are dropped.
func (d *Dispatcher) Close() {
	d.pool.Release()
}

// SubmitIngest queues a local upload ingestion job.
func (d *Dispatcher) SubmitIngest(p IngestParams) (string, error) {
	return d.submit(JobIngest, func(ctx context.Context, progress Progress) (interface{}, error) {
		return d.worker.Ingest(ctx, p, progress)
	})
}

// SubmitRemote queues a remote ingestion job.
func (d *Dispatcher) SubmitRemote(p RemoteParams) (string, error) {
	return d.submit(JobRemote, func(ctx context.Context, progress Progress) (interface{}, error) {
		return d.worker.RemoteIngest(ctx, p, progress)
	})
}

// SubmitSync queues a sync batch for one frequency.
func (d *Dispatcher) SubmitSync(frequency, directory string) (string, error) {
	return d.submit(JobSync, func(ctx context.Context, progress Progress) (interface{}, error) {
		return d.worker.Sync(ctx, frequency, directory)
	})
}

// SubmitAttachment queues an attachment job. The job's structured error
// result is surfaced through the job state, never as a failure.
func (d *Dispatcher) SubmitAttachment(p AttachmentParams) (string, error) {
	return d.submit(JobAttachment, func(ctx context.Context, progress Progress) (interface{}, error) {
		result := d.worker.Attachment(ctx, p, progress)
		return result, nil
	})
}

func (d *Dispatcher) submit(kind JobKind, run func(ctx context.Context, progress Progress) (interface{}, error)) (string, error) {
	id := uuid.New().String()
	state := &JobState{
		ID:        id,
		Kind:      kind,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
	}

	d.mu.Lock()
	d.jobs[id] = state
	d.mu.Unlock()

	err := d.pool.Submit(func() {
		now := time.Now()
		d.update(id, func(s *JobState) {
			s.Status = JobStatusRunning
			s.StartedAt = &now
		})

		progress := Progress(func(percent int) {
			d.update(id, func(s *JobState) {
				if percent > s.Progress {
					s.Progress = percent
				}
			})
		})

		result, runErr := run(context.Background(), progress)

		finished := time.Now()
		d.update(id, func(s *JobState) {
			s.FinishedAt = &finished
			s.Result = result
			if runErr != nil {
				s.Status = JobStatusFailed
				s.Error = runErr.Error()
				return
			}
			s.Status = JobStatusCompleted
		})
	})
	if err != nil {
		d.mu.Lock()
		delete(d.jobs, id)
		d.mu.Unlock()
		return "", err
	}

	return id, nil
}

func (d *Dispatcher) update(id string, fn func(*JobState)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if state, ok := d.jobs[id]; ok {
		fn(state)
	}
}

// Job returns a copy of a job's state.
func (d *Dispatcher) Job(id string) (JobState, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	state, ok := d.jobs[id]
	if !ok {
		return JobState{}, false
	}
	return *state, true
}

// Jobs returns copies of all tracked job states.
func (d *Dispatcher) Jobs() []JobState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]JobState, 0, len(d.jobs))
	for _, state := range d.jobs {
		out = append(out, *state)
	}
	return out
}

// SyncStatsOf extracts sync stats from a finished sync job, if present.
func SyncStatsOf(state JobState) (domain.SyncStats, bool) {
	stats, ok := state.Result.(domain.SyncStats)
	return stats, ok
}
