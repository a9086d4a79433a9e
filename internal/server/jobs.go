package server

import (
	"context"
	"sync"
	"time"

	"github.com/Uddhav-Saikia/ElasticRev/internal/elasticity"
	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Job statuses.
const (
	JobPending = "pending"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// Finished jobs are kept for polling this long, then dropped.
const defaultJobTTL = time.Hour

// Job tracks one asynchronous elasticity calculation. Model fitting can take
// seconds, so requests only start a job and poll it; the request goroutine is
// never blocked on a fit.
type Job struct {
	ID         string                   `json:"id"`
	ProductID  uint                     `json:"product_id"`
	Status     string                   `json:"status"`
	Result     *models.ElasticityResult `json:"result,omitempty"`
	ErrorKind  string                   `json:"error_kind,omitempty"`
	Error      string                   `json:"error,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
	FinishedAt *time.Time               `json:"finished_at,omitempty"`
}

// JobManager runs calculations in background goroutines and keeps their
// state in memory for polling. Stored jobs are only ever touched under the
// manager's lock; Submit and Get hand out snapshot copies, so callers can
// encode them while the background run keeps updating the live state.
type JobManager struct {
	logger *zap.Logger
	ttl    time.Duration

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobManager creates a job manager.
func NewJobManager(logger *zap.Logger) *JobManager {
	return &JobManager{
		logger: logger,
		ttl:    defaultJobTTL,
		jobs:   make(map[string]*Job),
	}
}

// Submit starts run in a background goroutine and returns a snapshot of the
// tracking job, taken before the run starts.
func (m *JobManager) Submit(productID uint, run func(ctx context.Context) (*models.ElasticityResult, error)) *Job {
	job := &Job{
		ID:        uuid.NewString(),
		ProductID: productID,
		Status:    JobPending,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.evictExpiredLocked()
	m.jobs[job.ID] = job
	snapshot := *job
	m.mu.Unlock()

	go func() {
		m.setStatus(job.ID, JobRunning)

		result, err := run(context.Background())

		m.mu.Lock()
		defer m.mu.Unlock()
		now := time.Now().UTC()
		job.FinishedAt = &now
		if err != nil {
			job.Status = JobFailed
			job.ErrorKind = elasticity.KindOf(err)
			job.Error = err.Error()
			m.logger.Warn("Calculation job failed",
				zap.String("job_id", job.ID),
				zap.Uint("product_id", job.ProductID),
				zap.String("kind", job.ErrorKind))
			return
		}
		job.Status = JobDone
		job.Result = result
	}()

	return &snapshot
}

// Get returns a snapshot of a job by ID.
func (m *JobManager) Get(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

func (m *JobManager) setStatus(id, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		job.Status = status
	}
}

// evictExpiredLocked drops finished jobs past their retention window so the
// map does not grow without bound in a long-lived process.
func (m *JobManager) evictExpiredLocked() {
	now := time.Now().UTC()
	for id, job := range m.jobs {
		if job.FinishedAt != nil && now.Sub(*job.FinishedAt) > m.ttl {
			delete(m.jobs, id)
		}
	}
}
