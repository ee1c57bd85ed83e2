package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"podbrief/internal/app/model"
	apptest "podbrief/internal/app/testutil"
)

func TestSweep_RecoversStaleProcessingJob(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "10")
	job := h.seedMP3Job(t, user.ID, 30)

	// A worker claimed the job and died.
	claimed, err := h.store.ClaimAudioFile(context.Background(), job.ID, h.store.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.True(t, claimed)

	sweeper := NewSweeper(h.processor, 10, zap.NewNop())

	n, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n, "a fresh claim is not stuck")

	later := time.Now().Add(10 * time.Minute)
	h.store.SetClock(func() time.Time { return later })

	n, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	h.dispatcher.Wait()

	stored := h.job(t, job.ID)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	assert.Equal(t, 2, stored.Attempts)
	assert.Equal(t, 1, h.transcriber.CallCount())
	assert.Equal(t, "9.50", apptest.Balance(t, h.store, user.ID))

	n, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n, "completed jobs are never swept")
}

func TestSweep_PicksUpPendingAndRespectsBatch(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "100")
	for i := 0; i < 3; i++ {
		h.seedMP3Job(t, user.ID, 5)
	}

	sweeper := NewSweeper(h.processor, 2, zap.NewNop())
	n, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	h.dispatcher.Wait()

	n, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	h.dispatcher.Wait()
	assert.Equal(t, 3, h.transcriber.CallCount())
}

func TestSweep_DispatcherClosed(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "10")
	h.seedMP3Job(t, user.ID, 5)
	require.NoError(t, h.dispatcher.Shutdown(context.Background()))

	n, err := NewSweeper(h.processor, 10, zap.NewNop()).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSweep_SkipsJobsWaitingForAWorker(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "100")
	gate := make(chan struct{})
	h.transcriber.WithGate(gate)
	for i := 0; i < 6; i++ {
		h.seedMP3Job(t, user.ID, 5)
	}

	sweeper := NewSweeper(h.processor, 10, zap.NewNop())
	n, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	// Four run and two wait on the worker pool; none is submitted again.
	n, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	close(gate)
	h.dispatcher.Wait()
	assert.Equal(t, 6, h.transcriber.CallCount())
}
