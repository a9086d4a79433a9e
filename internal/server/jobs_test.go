package server

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/Uddhav-Saikia/ElasticRev/internal/elasticity"
	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestJobManager_SuccessfulRun(t *testing.T) {
	manager := NewJobManager(zap.NewNop())

	job := manager.Submit(1, func(ctx context.Context) (*models.ElasticityResult, error) {
		return &models.ElasticityResult{ProductID: 1, Coefficient: -1.5}, nil
	})

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, uint(1), job.ProductID)

	assert.Eventually(t, func() bool {
		got, ok := manager.Get(job.ID)
		return ok && got.Status == JobDone
	}, time.Second, 10*time.Millisecond)

	got, ok := manager.Get(job.ID)
	assert.True(t, ok)
	assert.NotNil(t, got.Result)
	assert.InDelta(t, -1.5, got.Result.Coefficient, 1e-9)
	assert.NotNil(t, got.FinishedAt)
	assert.Empty(t, got.Error)
}

func TestJobManager_FailedRun(t *testing.T) {
	manager := NewJobManager(zap.NewNop())

	job := manager.Submit(2, func(ctx context.Context) (*models.ElasticityResult, error) {
		return nil, fmt.Errorf("%w: 3 records, need at least 10", elasticity.ErrInsufficientData)
	})

	assert.Eventually(t, func() bool {
		got, ok := manager.Get(job.ID)
		return ok && got.Status == JobFailed
	}, time.Second, 10*time.Millisecond)

	got, _ := manager.Get(job.ID)
	assert.Equal(t, elasticity.KindInsufficientData, got.ErrorKind)
	assert.Contains(t, got.Error, "need at least 10")
	assert.Nil(t, got.Result)
}

func TestJobManager_UnknownJob(t *testing.T) {
	manager := NewJobManager(zap.NewNop())

	_, ok := manager.Get("no-such-id")

	assert.False(t, ok)
}

func TestJobManager_HandsOutSnapshots(t *testing.T) {
	manager := NewJobManager(zap.NewNop())

	// A run that completes immediately, so the background update races any
	// unsynchronized reader of the returned job.
	job := manager.Submit(1, func(ctx context.Context) (*models.ElasticityResult, error) {
		return &models.ElasticityResult{ProductID: 1, Coefficient: -1.5}, nil
	})

	// Encoding the returned value must be safe while the run finishes; the
	// race detector flags this if Submit ever returns the live job again.
	for i := 0; i < 200; i++ {
		_, err := json.Marshal(job)
		assert.NoError(t, err)
	}

	// The snapshot keeps the state it was taken in.
	assert.Equal(t, JobPending, job.Status)
	assert.Nil(t, job.Result)

	assert.Eventually(t, func() bool {
		got, ok := manager.Get(job.ID)
		return ok && got.Status == JobDone
	}, time.Second, 10*time.Millisecond)

	// Get copies too: two reads never alias the same struct.
	a, _ := manager.Get(job.ID)
	b, _ := manager.Get(job.ID)
	assert.NotSame(t, a, b)
}

func TestJobManager_EvictsExpiredJobs(t *testing.T) {
	manager := NewJobManager(zap.NewNop())
	manager.ttl = time.Millisecond

	old := manager.Submit(1, func(ctx context.Context) (*models.ElasticityResult, error) {
		return &models.ElasticityResult{ProductID: 1}, nil
	})
	assert.Eventually(t, func() bool {
		got, ok := manager.Get(old.ID)
		return ok && got.Status == JobDone
	}, time.Second, 10*time.Millisecond)

	time.Sleep(5 * time.Millisecond)

	// The next submission sweeps out the expired job.
	manager.Submit(2, func(ctx context.Context) (*models.ElasticityResult, error) {
		return &models.ElasticityResult{ProductID: 2}, nil
	})

	_, ok := manager.Get(old.ID)
	assert.False(t, ok)
}
