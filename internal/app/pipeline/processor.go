package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"podbrief/internal/app/api/provider"
	"podbrief/internal/app/audio"
	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/events"
	"podbrief/internal/app/ledger"
	"podbrief/internal/app/logging"
	"podbrief/internal/app/metrics"
	"podbrief/internal/app/model"
	"podbrief/internal/app/notify"
	"podbrief/internal/app/storage/blob"
)

// Store is the job persistence the pipeline needs.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Now() time.Time

	ClaimAudioFile(ctx context.Context, id string, stallCutoff time.Time) (bool, error)
	GetAudioFile(ctx context.Context, id string) (*model.AudioFile, error)
	GetAudioFileForOwner(ctx context.Context, ownerID, id string) (*model.AudioFile, error)
	CompleteAudioFile(ctx context.Context, id string, durationSeconds float64) error
	FailAudioFile(ctx context.Context, id string, reason string) error
	ResetAudioFile(ctx context.Context, ownerID, id string, stallCutoff time.Time) (bool, error)
	ListStuckAudioFiles(ctx context.Context, stallCutoff time.Time, limit uint64) ([]string, error)

	CreateTranscription(ctx context.Context, t *model.Transcription) error
	GetTranscriptionByAudioFile(ctx context.Context, audioFileID string) (*model.Transcription, error)
	GetSummaryByTranscription(ctx context.Context, transcriptionID string) (*model.Summary, error)
}

// Ledger is the balance API used during settlement.
type Ledger interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	Debit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)
}

// SummaryGenerator enriches a settled transcription.
type SummaryGenerator interface {
	Generate(ctx context.Context, transcriptionID string)
}

// Publisher receives job status transitions.
type Publisher interface {
	Publish(ownerID string, event events.JobEvent)
}

// Options tunes the processor.
type Options struct {
	StallThreshold      time.Duration
	LowBalanceThreshold decimal.Decimal
	TempDir             string
}

// Processor drives one job through claim, transcription and settlement.
type Processor struct {
	store       Store
	ledger      Ledger
	blobs       blob.Store
	transcriber provider.Transcriber
	pricing     ledger.Pricing
	summaries   SummaryGenerator
	notifier    notify.Notifier
	publisher   Publisher
	dispatcher  *Dispatcher
	metrics     *metrics.Metrics
	opts        Options
	logger      *zap.Logger
}

// NewProcessor wires a processor. summaries and publisher may be nil.
func NewProcessor(
	store Store,
	credits Ledger,
	blobs blob.Store,
	transcriber provider.Transcriber,
	pricing ledger.Pricing,
	summaries SummaryGenerator,
	notifier notify.Notifier,
	publisher Publisher,
	dispatcher *Dispatcher,
	m *metrics.Metrics,
	opts Options,
	logger *zap.Logger,
) *Processor {
	if opts.StallThreshold <= 0 {
		opts.StallThreshold = 5 * time.Minute
	}
	return &Processor{
		store:       store,
		ledger:      credits,
		blobs:       blobs,
		transcriber: transcriber,
		pricing:     pricing,
		summaries:   summaries,
		notifier:    notifier,
		publisher:   publisher,
		dispatcher:  dispatcher,
		metrics:     m,
		opts:        opts,
		logger:      logger.Named("pipeline"),
	}
}

// Result describes what one Process call did.
type Result struct {
	Claimed         bool
	Status          model.JobStatus
	Reason          FailureReason
	TranscriptionID string
	Cost            decimal.Decimal
	Balance         decimal.Decimal
}

func (p *Processor) stallCutoff() time.Time {
	return p.store.Now().Add(-p.opts.StallThreshold)
}

// Dispatch schedules Process on the dispatcher. A job already queued or
// running in this process is not queued again and ErrAlreadyQueued is returned.
func (p *Processor) Dispatch(ctx context.Context, audioFileID string) error {
	return p.dispatcher.SubmitUnique(ctx, audioFileID, "process:"+audioFileID, func(ctx context.Context) {
		if _, err := p.Process(ctx, audioFileID); err != nil {
			p.logger.Error("process job", zap.String("audio_file_id", audioFileID), zap.Error(err))
		}
	})
}

// Process claims and runs one job. Losing the claim is not an error. Job
// failures are recorded on the row and reported in Result; the returned error
// is reserved for infrastructure problems that left the job untouched.
func (p *Processor) Process(ctx context.Context, audioFileID string) (Result, error) {
	claimed, err := p.store.ClaimAudioFile(ctx, audioFileID, p.stallCutoff())
	if err != nil {
		return Result{}, fmt.Errorf("claim audio file %s: %w", audioFileID, err)
	}
	if !claimed {
		p.logger.Debug("job not claimable", zap.String("audio_file_id", audioFileID))
		return Result{}, nil
	}

	started := time.Now()
	job, err := p.store.GetAudioFile(ctx, audioFileID)
	if err != nil {
		return Result{Claimed: true}, fmt.Errorf("load claimed audio file %s: %w", audioFileID, err)
	}
	p.publish(job.OwnerID, events.JobEvent{AudioFileID: job.ID, Status: string(model.StatusProcessing)})

	result, err := p.run(ctx, job)
	if err != nil {
		if ctx.Err() != nil {
			// Leave the claim in place; the sweep reclaims it once stale.
			p.logger.Warn("job interrupted", zap.String("audio_file_id", job.ID), zap.Error(err))
			return Result{Claimed: true, Status: model.StatusProcessing}, nil
		}
		return p.recordFailure(ctx, job, err)
	}

	if p.metrics != nil {
		p.metrics.Jobs.WithLabelValues(string(model.StatusCompleted), "").Inc()
		p.metrics.JobDuration.Observe(time.Since(started).Seconds())
		p.metrics.CreditsDebited.Add(result.Cost.InexactFloat64())
	}
	p.publish(job.OwnerID, events.JobEvent{
		AudioFileID:     job.ID,
		Status:          string(model.StatusCompleted),
		TranscriptionID: result.TranscriptionID,
	})
	p.afterSettlement(ctx, job.OwnerID, result)
	return result, nil
}

func (p *Processor) run(ctx context.Context, job *model.AudioFile) (Result, error) {
	balance, err := p.ledger.Balance(ctx, job.OwnerID)
	if err != nil {
		return Result{}, fmt.Errorf("read balance: %w", err)
	}
	if !balance.IsPositive() {
		return Result{}, fail(ReasonInsufficientCredits, nil)
	}

	path, err := p.fetch(ctx, job)
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(path)

	transcript, err := p.transcriber.Transcribe(ctx, &provider.TranscribeRequest{
		InputFilePath: path,
		Filename:      job.OriginalFilename,
		ContentType:   job.ContentType,
	})
	if err != nil {
		return Result{}, err
	}

	duration, source := audio.Measure(ctx, path, job.ContentType, transcript.DurationSeconds, ledger.EstimateSeconds(job.SizeBytes))
	cost := p.pricing.CostForDuration(duration)
	p.logger.Debug("measured duration",
		zap.String("audio_file_id", job.ID),
		zap.Float64("seconds", duration),
		zap.String("source", source),
		zap.String("cost", cost.StringFixed(2)),
	)

	return p.settle(ctx, job, transcript, duration, cost)
}

// fetch copies the durable blob into a temp file that keeps the original
// extension, which engines use to detect the container.
func (p *Processor) fetch(ctx context.Context, job *model.AudioFile) (string, error) {
	rc, err := p.blobs.Get(ctx, job.LocationRef)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fail(ReasonSourceNotFound, err)
		}
		return "", fmt.Errorf("open blob: %w", err)
	}
	defer rc.Close()

	ext := strings.ToLower(filepath.Ext(job.OriginalFilename))
	tmp, err := os.CreateTemp(p.opts.TempDir, "podbrief-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("copy blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmp.Name(), nil
}

// settle debits, stores the transcription and completes the job in one
// transaction.
func (p *Processor) settle(ctx context.Context, job *model.AudioFile, transcript *provider.TranscribeResult, duration float64, cost decimal.Decimal) (Result, error) {
	t := &model.Transcription{
		ID:          uuid.NewString(),
		OwnerID:     job.OwnerID,
		AudioFileID: sql.NullString{String: job.ID, Valid: true},
		Text:        transcript.Text,
		Language:    sql.NullString{String: transcript.Language, Valid: transcript.Language != ""},
		CostCents:   model.CentsFromDecimal(cost),
	}

	var balance decimal.Decimal
	err := p.store.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		balance, err = p.ledger.Debit(ctx, job.OwnerID, cost)
		if err != nil {
			return err
		}
		if err := p.store.CreateTranscription(ctx, t); err != nil {
			return err
		}
		return p.store.CompleteAudioFile(ctx, job.ID, duration)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientCredits) {
			return Result{}, fail(ReasonInsufficientCredits, err)
		}
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return p.adoptExisting(ctx, job, duration)
		}
		return Result{}, fmt.Errorf("settle: %w", err)
	}

	return Result{
		Claimed:         true,
		Status:          model.StatusCompleted,
		TranscriptionID: t.ID,
		Cost:            cost,
		Balance:         balance,
	}, nil
}

// adoptExisting completes a job whose transcription was already stored by an
// earlier attempt. Nothing is charged twice.
func (p *Processor) adoptExisting(ctx context.Context, job *model.AudioFile, duration float64) (Result, error) {
	existing, err := p.store.GetTranscriptionByAudioFile(ctx, job.ID)
	if err != nil {
		return Result{}, fmt.Errorf("load existing transcription: %w", err)
	}
	if err := p.store.CompleteAudioFile(ctx, job.ID, duration); err != nil {
		return Result{}, fmt.Errorf("complete audio file: %w", err)
	}
	p.logger.Warn("transcription already settled, completing without charge",
		zap.String("audio_file_id", job.ID),
		zap.String("transcription_id", existing.ID),
	)
	balance, err := p.ledger.Balance(ctx, job.OwnerID)
	if err != nil {
		return Result{}, fmt.Errorf("read balance: %w", err)
	}
	return Result{
		Claimed:         true,
		Status:          model.StatusCompleted,
		TranscriptionID: existing.ID,
		Cost:            decimal.Zero,
		Balance:         balance,
	}, nil
}

func (p *Processor) recordFailure(ctx context.Context, job *model.AudioFile, cause error) (Result, error) {
	reason := reasonOf(cause)
	fields := []zap.Field{
		zap.String("audio_file_id", job.ID),
		zap.String("owner_id", job.OwnerID),
		zap.String("reason", string(reason)),
		zap.Int("attempt", job.Attempts),
		zap.Error(cause),
	}
	if reason.NeedsOperator() {
		p.logger.Error("job failed", append(fields, logging.OperatorAction())...)
		if p.metrics != nil {
			p.metrics.OperatorAlerts.WithLabelValues(string(reason)).Inc()
		}
	} else {
		p.logger.Warn("job failed", fields...)
	}

	if err := p.store.FailAudioFile(ctx, job.ID, string(reason)); err != nil {
		return Result{Claimed: true}, fmt.Errorf("record failure of %s: %w", job.ID, err)
	}
	if p.metrics != nil {
		p.metrics.Jobs.WithLabelValues(string(model.StatusError), string(reason)).Inc()
	}
	p.publish(job.OwnerID, events.JobEvent{
		AudioFileID: job.ID,
		Status:      string(model.StatusError),
		ErrorReason: string(reason),
	})
	return Result{Claimed: true, Status: model.StatusError, Reason: reason}, nil
}

func (p *Processor) afterSettlement(ctx context.Context, ownerID string, result Result) {
	if p.summaries != nil {
		transcriptionID := result.TranscriptionID
		if err := p.dispatcher.Submit(ctx, "summary:"+transcriptionID, func(ctx context.Context) {
			p.summaries.Generate(ctx, transcriptionID)
		}); err != nil {
			p.logger.Warn("summary not scheduled", zap.String("transcription_id", transcriptionID), zap.Error(err))
		}
	}

	if p.notifier != nil && result.Balance.LessThan(p.opts.LowBalanceThreshold) {
		balance := result.Balance
		if err := p.dispatcher.Submit(ctx, "notify:"+ownerID, func(ctx context.Context) {
			if err := p.notifier.LowBalance(ctx, ownerID, balance); err != nil {
				p.logger.Warn("low balance notification failed", zap.String("user_id", ownerID), zap.Error(err))
			}
		}); err != nil {
			p.logger.Warn("notification not scheduled", zap.String("user_id", ownerID), zap.Error(err))
		}
	}
}

func (p *Processor) publish(ownerID string, event events.JobEvent) {
	if p.publisher != nil {
		p.publisher.Publish(ownerID, event)
	}
}
