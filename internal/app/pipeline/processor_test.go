package pipeline

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"podbrief/internal/app/api/provider"
	"podbrief/internal/app/ledger"
	"podbrief/internal/app/metrics"
	"podbrief/internal/app/model"
	"podbrief/internal/app/repository"
	"podbrief/internal/app/summary"
	apptest "podbrief/internal/app/testutil"
)

type harness struct {
	store       *repository.Store
	blobs       *apptest.MemoryBlobStore
	transcriber *apptest.MockTranscriber
	summarizer  *apptest.MockSummarizer
	notifier    *apptest.RecordingNotifier
	dispatcher  *Dispatcher
	metrics     *metrics.Metrics
	processor   *Processor
	logs        *observer.ObservedLogs
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	h := &harness{
		store:       apptest.SetupTestStore(t),
		blobs:       apptest.NewMemoryBlobStore(),
		transcriber: apptest.NewMockTranscriber(),
		summarizer:  apptest.NewMockSummarizer(),
		notifier:    &apptest.RecordingNotifier{},
		dispatcher:  NewDispatcher(4, logger),
		metrics:     metrics.New(),
		logs:        logs,
	}
	t.Cleanup(func() { _ = h.dispatcher.Shutdown(context.Background()) })

	h.processor = NewProcessor(
		h.store,
		ledger.New(h.store, logger),
		h.blobs,
		h.transcriber,
		ledger.NewPricing(decimal.NewFromInt(1)),
		summary.NewGenerator(h.store, h.summarizer, 10000, logger),
		h.notifier,
		nil,
		h.dispatcher,
		h.metrics,
		Options{StallThreshold: 5 * time.Minute, LowBalanceThreshold: decimal.NewFromInt(10), TempDir: t.TempDir()},
		logger,
	)
	return h
}

// seedMP3Job stores an MP3 of roughly seconds length and a pending job for it.
func (h *harness) seedMP3Job(t *testing.T, ownerID string, seconds float64) *model.AudioFile {
	t.Helper()
	frames := int(seconds/apptest.MP3FrameSeconds) + 1
	data := apptest.MP3Frames(frames)
	ref := h.blobs.PutBytes("audio/"+ownerID+"/"+uuid.NewString()+".mp3", data)
	return apptest.SeedAudioFile(t, h.store, ownerID, apptest.WithLocation(ref), apptest.WithSize(int64(len(data))))
}

func (h *harness) job(t *testing.T, id string) *model.AudioFile {
	t.Helper()
	job, err := h.store.GetAudioFile(context.Background(), id)
	require.NoError(t, err)
	return job
}

func TestProcess_CompletesAndCharges(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "50.00")
	job := h.seedMP3Job(t, user.ID, 60)

	result, err := h.processor.Process(context.Background(), job.ID)
	require.NoError(t, err)
	h.dispatcher.Wait()

	assert.True(t, result.Claimed)
	assert.Equal(t, model.StatusCompleted, result.Status)
	assert.Equal(t, "1.00", result.Cost.StringFixed(2))
	assert.Equal(t, "49.00", apptest.Balance(t, h.store, user.ID))

	stored := h.job(t, job.ID)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	require.True(t, stored.DurationSeconds.Valid)
	assert.InDelta(t, 60, stored.DurationSeconds.Float64, 0.1)

	status, err := h.processor.GetJobStatus(context.Background(), user.ID, job.ID)
	require.NoError(t, err)
	require.NotNil(t, status.Transcription)
	assert.Equal(t, apptest.SampleTranscript, status.Transcription.Text)
	assert.Equal(t, int64(100), status.Transcription.CostCents)
	require.NotNil(t, status.Summary, "summary is generated after settlement")
	assert.Equal(t, model.SentimentPositive, status.Summary.Sentiment)

	assert.Empty(t, h.notifier.Calls(), "balance stays above the threshold")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Jobs.WithLabelValues("completed", "")))
}

func TestProcess_ZeroBalanceFailsWithoutTranscribing(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "0")
	job := h.seedMP3Job(t, user.ID, 30)

	result, err := h.processor.Process(context.Background(), job.ID)
	require.NoError(t, err)

	assert.Equal(t, ReasonInsufficientCredits, result.Reason)
	assert.Equal(t, 0, h.transcriber.CallCount())
	stored := h.job(t, job.ID)
	assert.Equal(t, model.StatusError, stored.Status)
	assert.Equal(t, "insufficient_credits", stored.ErrorReason.String)
}

func TestProcess_InsufficientAtSettlementChargesNothing(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "0.50")
	job := h.seedMP3Job(t, user.ID, 60)

	result, err := h.processor.Process(context.Background(), job.ID)
	require.NoError(t, err)

	assert.Equal(t, ReasonInsufficientCredits, result.Reason)
	assert.Equal(t, "0.50", apptest.Balance(t, h.store, user.ID))
	_, err = h.store.GetTranscriptionByAudioFile(context.Background(), job.ID)
	assert.Error(t, err, "no transcription is stored when the debit fails")
}

func TestProcess_MissingBlob(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "10")
	job := apptest.SeedAudioFile(t, h.store, user.ID, apptest.WithLocation("mem://audio/gone.mp3"))

	result, err := h.processor.Process(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonSourceNotFound, result.Reason)
	assert.Equal(t, "10.00", apptest.Balance(t, h.store, user.ID))
}

func TestProcess_QuotaExceededNeedsOperator(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "10")
	job := h.seedMP3Job(t, user.ID, 10)
	h.transcriber.WithError(&provider.EngineError{Code: provider.CodeQuotaExceeded, Provider: "mock", Message: "quota"})

	result, err := h.processor.Process(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonQuotaExceeded, result.Reason)

	entries := h.logs.FilterMessage("job failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, true, entries[0].ContextMap()["operator_action"])
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.OperatorAlerts.WithLabelValues("quota_exceeded")))
	assert.Equal(t, "10.00", apptest.Balance(t, h.store, user.ID))
}

func TestProcess_RateLimitedLogsWarn(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "10")
	job := h.seedMP3Job(t, user.ID, 10)
	h.transcriber.WithError(&provider.EngineError{Code: provider.CodeRateLimited, Provider: "mock", Message: "slow down"})

	result, err := h.processor.Process(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonRateLimited, result.Reason)

	entries := h.logs.FilterMessage("job failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestProcess_ConcurrentCallsTranscribeOnce(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "10")
	job := h.seedMP3Job(t, user.ID, 30)

	gate := make(chan struct{})
	h.transcriber.WithGate(gate)

	var wg sync.WaitGroup
	results := make([]Result, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := h.processor.Process(context.Background(), job.ID)
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}

	require.Eventually(t, func() bool { return h.transcriber.CallCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	close(gate)
	wg.Wait()

	claimed := 0
	for _, r := range results {
		if r.Claimed {
			claimed++
		}
	}
	assert.Equal(t, 1, claimed)
	assert.Equal(t, 1, h.transcriber.CallCount())
	assert.Equal(t, "9.50", apptest.Balance(t, h.store, user.ID))
}

func TestProcess_EngineDurationFallback(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "10")
	ref := h.blobs.PutBytes("audio/"+user.ID+"/talk.wav", []byte("not a real wav container"))
	job := apptest.SeedAudioFile(t, h.store, user.ID,
		apptest.WithLocation(ref), apptest.WithFilename("talk.wav", "audio/wav"), apptest.WithSize(24))
	h.transcriber.WithEngineDuration(125)

	result, err := h.processor.Process(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "2.08", result.Cost.StringFixed(2))
}

func TestProcess_ExistingTranscriptionIsNotChargedTwice(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "10")
	job := h.seedMP3Job(t, user.ID, 60)

	existing := &model.Transcription{
		ID:          uuid.NewString(),
		OwnerID:     user.ID,
		AudioFileID: sql.NullString{String: job.ID, Valid: true},
		Text:        "earlier attempt",
		CostCents:   100,
	}
	require.NoError(t, h.store.CreateTranscription(context.Background(), existing))

	result, err := h.processor.Process(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, result.Status)
	assert.Equal(t, existing.ID, result.TranscriptionID)
	assert.Equal(t, "10.00", apptest.Balance(t, h.store, user.ID))
}

func TestProcess_LowBalanceNotification(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "10.50")
	job := h.seedMP3Job(t, user.ID, 60)

	_, err := h.processor.Process(context.Background(), job.ID)
	require.NoError(t, err)
	h.dispatcher.Wait()

	calls := h.notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, user.ID, calls[0].UserID)
	assert.Equal(t, "9.50", calls[0].Balance.StringFixed(2))
}

func TestProcess_SettlementScenarios(t *testing.T) {
	tests := []struct {
		name        string
		balance     string
		seconds     float64
		wantStatus  model.JobStatus
		wantCost    string
		wantBalance string
		wantNotice  bool
	}{
		{"four and a half minutes from five credits", "5.00", 270, model.StatusCompleted, "4.50", "0.50", true},
		{"one minute from twenty cents", "0.20", 60, model.StatusError, "", "0.20", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			user := apptest.SeedUser(t, h.store, tt.balance)
			job := h.seedMP3Job(t, user.ID, tt.seconds)

			result, err := h.processor.Process(context.Background(), job.ID)
			require.NoError(t, err)
			h.dispatcher.Wait()

			stored := h.job(t, job.ID)
			assert.Equal(t, tt.wantStatus, stored.Status)
			assert.Equal(t, tt.wantBalance, apptest.Balance(t, h.store, user.ID))

			tr, terr := h.store.GetTranscriptionByAudioFile(context.Background(), job.ID)
			if tt.wantStatus == model.StatusCompleted {
				require.NoError(t, terr)
				assert.Equal(t, tt.wantCost, tr.Cost().StringFixed(2))
				assert.Equal(t, tt.wantCost, result.Cost.StringFixed(2))
			} else {
				assert.Error(t, terr)
				assert.Equal(t, ReasonInsufficientCredits, result.Reason)
				assert.Equal(t, "insufficient_credits", stored.ErrorReason.String)
			}

			calls := h.notifier.Calls()
			if tt.wantNotice {
				require.Len(t, calls, 1)
				assert.Equal(t, tt.wantBalance, calls[0].Balance.StringFixed(2))
			} else {
				assert.Empty(t, calls)
			}
		})
	}
}

func TestRetryJob(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "10")
	job := h.seedMP3Job(t, user.ID, 30)
	h.transcriber.WithError(&provider.EngineError{Code: provider.CodeRateLimited, Provider: "mock"})

	_, err := h.processor.Process(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusError, h.job(t, job.ID).Status)

	h.transcriber.WithError(nil)
	require.NoError(t, h.processor.RetryJob(context.Background(), user.ID, job.ID))
	h.dispatcher.Wait()

	stored := h.job(t, job.ID)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	assert.Equal(t, 2, stored.Attempts)

	err = h.processor.RetryJob(context.Background(), user.ID, job.ID)
	assert.ErrorIs(t, err, ErrJobCompleted)
}

func TestRetryJob_OtherOwner(t *testing.T) {
	h := newHarness(t)
	owner := apptest.SeedUser(t, h.store, "10")
	other := apptest.SeedUser(t, h.store, "10")
	job := h.seedMP3Job(t, owner.ID, 30)

	err := h.processor.RetryJob(context.Background(), other.ID, job.ID)
	assert.Error(t, err)
}

func TestRetryJob_ActiveClaimRejected(t *testing.T) {
	h := newHarness(t)
	user := apptest.SeedUser(t, h.store, "10")
	job := h.seedMP3Job(t, user.ID, 30)

	claimed, err := h.store.ClaimAudioFile(context.Background(), job.ID, h.store.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.True(t, claimed)

	err = h.processor.RetryJob(context.Background(), user.ID, job.ID)
	assert.ErrorIs(t, err, ErrJobInProgress)
}
