// Package jobs is the authoritative in-memory table of simulated
// long-running operations. A job completes exactly ProcessingWindow after
// creation; status is computed from elapsed time on demand, not by a
// background ticker, so tests can drive the lifecycle with a fake clock.
package jobs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zhilg/Dvizhenie/models"
)

// ProcessingWindow is how long every job reports processing before it
// completes. The advisory estimated_time_min values returned at submission
// are independent of this constant.
const ProcessingWindow = 3 * time.Second

var (
	// ErrNotFound is returned for job ids absent from the store.
	ErrNotFound = errors.New("job not found")
	// ErrNotReady is returned when a result is fetched before the
	// processing window has elapsed.
	ErrNotReady = errors.New("result not ready")
)

// Clock supplies the current time. Production uses time.Now.
type Clock func() time.Time

// Store holds all jobs for the lifetime of the process. Safe for
// concurrent use.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
	now  Clock
}

// NewStore creates an empty store. A nil clock means time.Now.
func NewStore(now Clock) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		jobs: make(map[string]*models.Job),
		now:  now,
	}
}

// Create inserts a new processing job with its result fixed up front and
// returns the generated id.
func (s *Store) Create(jobType models.JobType, params models.JobParams, result any) string {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id] = &models.Job{
		ID:        id,
		Type:      jobType,
		Status:    models.StatusProcessing,
		CreatedAt: s.now(),
		Params:    params,
		Result:    result,
	}
	return id
}

// Exists reports whether a job id is present, regardless of status.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.jobs[id]
	return ok
}

// Len returns the number of stored jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Status applies the lifecycle rule and returns the polling body: a
// progress snapshot while the window is open, a completion marker with the
// result locator afterwards. The completed state is cached on first
// observation; the flip is idempotent and never reverses.
func (s *Store) Status(id string) (*models.JobStatusResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}

	if job.Status != models.StatusCompleted {
		elapsed := s.now().Sub(job.CreatedAt)
		if elapsed < ProcessingWindow {
			progress := progressAt(elapsed)
			return &models.JobStatusResponse{
				Status:   models.StatusProcessing,
				Progress: &progress,
				Details: &models.ProgressDetails{
					BytesProcessed: progress * 1_000_000,
					FilesProcessed: progress * 50,
				},
			}, nil
		}
		job.Status = models.StatusCompleted
	}

	return &models.JobStatusResponse{
		Status:    models.StatusCompleted,
		ResultURL: "/api/jobs/" + id + "/result",
	}, nil
}

// Result returns the stored result once the job has completed. Readiness
// is computed from elapsed time, so fetching a result without ever polling
// the status endpoint behaves the same as fetching after a poll.
func (s *Store) Result(id string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if job.Status != models.StatusCompleted {
		if s.now().Sub(job.CreatedAt) < ProcessingWindow {
			return nil, ErrNotReady
		}
		job.Status = models.StatusCompleted
	}
	return job.Result, nil
}

// Snapshot returns a copy of the job with its status refreshed against the
// clock. Mutating the copy does not affect the store.
func (s *Store) Snapshot(id string) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	s.refreshLocked(job)
	return *job, nil
}

// History returns copies of all completed jobs of the given type, status
// refreshed against the clock.
func (s *Store) History(jobType models.JobType) []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Job
	for _, job := range s.jobs {
		if job.Type != jobType {
			continue
		}
		s.refreshLocked(job)
		if job.Status == models.StatusCompleted {
			out = append(out, *job)
		}
	}
	return out
}

// refreshLocked flips a job to completed once its window has elapsed.
// Callers must hold the write lock.
func (s *Store) refreshLocked(job *models.Job) {
	if job.Status != models.StatusCompleted && s.now().Sub(job.CreatedAt) >= ProcessingWindow {
		job.Status = models.StatusCompleted
	}
}

// progressAt maps elapsed time inside the window to a 0..100 percentage.
func progressAt(elapsed time.Duration) int {
	if elapsed < 0 {
		return 0
	}
	progress := int(elapsed * 100 / ProcessingWindow)
	if progress > 100 {
		progress = 100
	}
	return progress
}
