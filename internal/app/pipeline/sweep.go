package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Sweeper resubmits jobs that no worker finished: pending jobs whose dispatch
// was lost and processing jobs whose worker died.
type Sweeper struct {
	processor *Processor
	batchSize uint64
	logger    *zap.Logger
}

func NewSweeper(processor *Processor, batchSize int, logger *zap.Logger) *Sweeper {
	if batchSize < 1 {
		batchSize = 10
	}
	return &Sweeper{processor: processor, batchSize: uint64(batchSize), logger: logger.Named("sweep")}
}

// Sweep submits up to one batch of stuck jobs, oldest first, and returns how
// many were submitted. Jobs already queued in this process are skipped; a
// failed submission is logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	ids, err := s.processor.store.ListStuckAudioFiles(ctx, s.processor.stallCutoff(), s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list stuck jobs: %w", err)
	}

	submitted := 0
	for _, id := range ids {
		err := s.processor.Dispatch(ctx, id)
		if errors.Is(err, ErrAlreadyQueued) {
			continue
		}
		if err != nil {
			s.logger.Warn("resubmit failed", zap.String("audio_file_id", id), zap.Error(err))
			continue
		}
		submitted++
	}
	if p := s.processor; p.metrics != nil {
		p.metrics.Swept.Add(float64(submitted))
	}
	if len(ids) > 0 {
		s.logger.Info("sweep resubmitted jobs", zap.Int("found", len(ids)), zap.Int("submitted", submitted))
	}
	return submitted, nil
}

// Run sweeps every interval until ctx ends. A zero interval disables it.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("sweep failed", zap.Error(err))
			}
		}
	}
}
