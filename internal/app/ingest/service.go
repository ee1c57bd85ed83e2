package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/metrics"
	"podbrief/internal/app/model"
	"podbrief/internal/app/storage/blob"
	"podbrief/internal/config"
	"podbrief/internal/downloader"
)

// Store persists new jobs.
type Store interface {
	CreateAudioFile(ctx context.Context, f *model.AudioFile) error
}

// JobDispatcher hands a stored job to the pipeline without waiting for it.
type JobDispatcher interface {
	Dispatch(ctx context.Context, audioFileID string) error
}

// Resolver finds and downloads remote media.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (*downloader.Media, error)
	Download(ctx context.Context, media *downloader.Media, maxBytes int64) ([]byte, string, error)
}

// IngestResult is returned once a job is stored and queued.
type IngestResult struct {
	AudioFileID string          `json:"audio_file_id"`
	Status      model.JobStatus `json:"status"`
	Filename    string          `json:"filename"`
	ContentType string          `json:"content_type"`
	SizeBytes   int64           `json:"size_bytes"`
}

// ChunkAck acknowledges a stored chunk.
type ChunkAck struct {
	UploadID string `json:"upload_id"`
	Index    int    `json:"index"`
	Received int    `json:"received"`
	Total    int    `json:"total"`
}

type Service struct {
	store      Store
	blobs      blob.Store
	admission  *Admission
	chunks     *ChunkStore
	resolver   Resolver
	dispatcher JobDispatcher
	metrics    *metrics.Metrics
	cfg        config.IngestConfig
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(
	store Store,
	blobs blob.Store,
	admission *Admission,
	chunks *ChunkStore,
	resolver Resolver,
	dispatcher JobDispatcher,
	m *metrics.Metrics,
	cfg config.IngestConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:      store,
		blobs:      blobs,
		admission:  admission,
		chunks:     chunks,
		resolver:   resolver,
		dispatcher: dispatcher,
		metrics:    m,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger.Named("ingest"),
	}
}

// Ingest normalizes src into a payload, stores it and queues the job.
func (s *Service) Ingest(ctx context.Context, ownerID string, src Source) (result IngestResult, err error) {
	defer func() { s.record(src, err) }()

	var payload *Payload
	switch v := src.(type) {
	case DirectSource:
		payload, err = s.direct(ctx, ownerID, v)
	case ChunkedSource:
		payload, err = s.assemble(ctx, ownerID, v)
	case RemoteSource:
		payload, err = s.remote(ctx, ownerID, v)
	default:
		err = apperrors.Newf("unknown source %T", src)
	}
	if err != nil {
		return IngestResult{}, err
	}

	result, err = s.persist(ctx, payload)
	if err != nil {
		return IngestResult{}, err
	}
	if cs, ok := src.(ChunkedSource); ok {
		if err := s.chunks.Remove(ownerID, cs.UploadID); err != nil {
			s.logger.Warn("failed to remove staged chunks", zap.String("upload_id", cs.UploadID), zap.Error(err))
		}
	}
	return result, nil
}

func (s *Service) direct(ctx context.Context, ownerID string, src DirectSource) (*Payload, error) {
	if src.Size > s.cfg.DirectMaxBytes {
		return nil, ErrFileTooLarge
	}
	if !untyped(src.ContentType) && !IsAllowedType(src.ContentType) {
		return nil, ErrUnsupportedType
	}
	if err := s.admission.Admit(ctx, ownerID, src.Size); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(src.Body, s.cfg.DirectMaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.DirectMaxBytes {
		return nil, ErrFileTooLarge
	}
	return s.payload(ownerID, src.Filename, src.ContentType, data)
}

func (s *Service) remote(ctx context.Context, ownerID string, src RemoteSource) (*Payload, error) {
	media, err := s.resolver.Resolve(ctx, src.URL)
	if err != nil {
		return nil, remoteError(err)
	}
	if media.Size > s.cfg.RemoteMaxBytes {
		return nil, ErrFileTooLarge
	}

	// Unknown sizes are admitted against the minimum charge.
	estimate := max(media.Size, 0)
	if err := s.admission.Admit(ctx, ownerID, estimate); err != nil {
		return nil, err
	}

	data, contentType, err := s.resolver.Download(ctx, media, s.cfg.RemoteMaxBytes)
	if err != nil {
		return nil, remoteError(err)
	}
	if media.Size < 0 {
		if err := s.admission.CheckCredits(ctx, ownerID, int64(len(data))); err != nil {
			return nil, err
		}
	}
	return s.payload(ownerID, media.Filename, contentType, data)
}

func remoteError(err error) error {
	switch {
	case errors.Is(err, downloader.ErrTooLarge):
		return ErrFileTooLarge
	case errors.Is(err, downloader.ErrInvalidURL), errors.Is(err, downloader.ErrNoMedia):
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	default:
		return apperrors.Wrap(apperrors.ErrUnavailable, err.Error())
	}
}

func (s *Service) payload(ownerID, filename, declared string, data []byte) (*Payload, error) {
	if len(data) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "empty upload")
	}
	contentType, err := ResolveContentType(declared, data)
	if err != nil {
		return nil, err
	}
	return &Payload{
		Bytes:       data,
		Filename:    cleanFilename(filename),
		ContentType: contentType,
		OwnerID:     ownerID,
	}, nil
}

func cleanFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "audio"
	}
	return name
}

func (s *Service) persist(ctx context.Context, p *Payload) (IngestResult, error) {
	ref, err := s.blobs.Put(ctx, blob.ObjectKey(p.OwnerID, p.Filename), bytes.NewReader(p.Bytes), int64(len(p.Bytes)), p.ContentType)
	if err != nil {
		return IngestResult{}, fmt.Errorf("store audio: %w", err)
	}

	file := &model.AudioFile{
		ID:               uuid.NewString(),
		OwnerID:          p.OwnerID,
		LocationRef:      ref,
		OriginalFilename: p.Filename,
		ContentType:      p.ContentType,
		SizeBytes:        int64(len(p.Bytes)),
		Status:           model.StatusPending,
	}
	if err := s.store.CreateAudioFile(ctx, file); err != nil {
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), ref); derr != nil {
			s.logger.Warn("failed to remove orphaned blob", zap.String("ref", ref), zap.Error(derr))
		}
		return IngestResult{}, fmt.Errorf("create audio file: %w", err)
	}

	if err := s.dispatcher.Dispatch(ctx, file.ID); err != nil {
		// the sweep picks up pending rows
		s.logger.Warn("dispatch failed", zap.String("audio_file_id", file.ID), zap.Error(err))
	}

	s.logger.Info("audio ingested",
		zap.String("audio_file_id", file.ID),
		zap.String("owner_id", p.OwnerID),
		zap.String("content_type", p.ContentType),
		zap.Int64("size_bytes", file.SizeBytes))

	return IngestResult{
		AudioFileID: file.ID,
		Status:      file.Status,
		Filename:    file.OriginalFilename,
		ContentType: file.ContentType,
		SizeBytes:   file.SizeBytes,
	}, nil
}

// SaveChunk stores one chunk. The first chunk of an unseen upload id is the
// upload initiation and runs admission.
func (s *Service) SaveChunk(ctx context.Context, ownerID string, meta ChunkMeta, body io.Reader) (ChunkAck, error) {
	if err := s.validateChunk(meta); err != nil {
		return ChunkAck{}, err
	}

	existing, err := s.chunks.Manifest(ownerID, meta.UploadID)
	switch {
	case errors.Is(err, ErrUploadNotFound):
		// Every chunk but the last is full size, so the count bounds the upload
		// from below when the declared size is missing or understated.
		estimate := max(meta.TotalSize, int64(meta.Total-1)*s.cfg.ChunkSize)
		if err := s.admission.Admit(ctx, ownerID, estimate); err != nil {
			s.record(ChunkedSource{}, err)
			return ChunkAck{}, err
		}
		created, err := s.chunks.CreateManifest(ownerID, meta, s.now())
		if err != nil {
			return ChunkAck{}, err
		}
		if !created {
			existing, err = s.chunks.Manifest(ownerID, meta.UploadID)
			if err != nil {
				return ChunkAck{}, err
			}
		}
	case err != nil:
		return ChunkAck{}, err
	}
	if existing != nil && existing.Total != meta.Total {
		return ChunkAck{}, fmt.Errorf("%w: total changed from %d to %d", ErrInvalidChunk, existing.Total, meta.Total)
	}

	if _, err := s.chunks.WriteChunk(ownerID, meta.UploadID, meta.Index, body, s.cfg.ChunkSize); err != nil {
		return ChunkAck{}, err
	}
	received, err := s.chunks.Received(ownerID, meta.UploadID)
	if err != nil {
		return ChunkAck{}, err
	}
	return ChunkAck{UploadID: meta.UploadID, Index: meta.Index, Received: len(received), Total: meta.Total}, nil
}

func (s *Service) validateChunk(meta ChunkMeta) error {
	if _, err := uuid.Parse(meta.UploadID); err != nil {
		return fmt.Errorf("%w: upload id must be a uuid", ErrInvalidChunk)
	}
	if meta.Total <= 0 || meta.Index < 0 || meta.Index >= meta.Total {
		return fmt.Errorf("%w: index %d out of range for total %d", ErrInvalidChunk, meta.Index, meta.Total)
	}
	if meta.TotalSize > s.cfg.ChunkedMaxBytes || int64(meta.Total)*s.cfg.ChunkSize > s.cfg.ChunkedMaxBytes+s.cfg.ChunkSize {
		return ErrFileTooLarge
	}
	if !untyped(meta.ContentType) && !IsAllowedType(meta.ContentType) {
		return ErrUnsupportedType
	}
	return nil
}

// Complete assembles a fully received upload and ingests it.
func (s *Service) Complete(ctx context.Context, ownerID, uploadID string) (IngestResult, error) {
	m, err := s.chunks.Manifest(ownerID, uploadID)
	if err != nil {
		return IngestResult{}, err
	}
	return s.Ingest(ctx, ownerID, NewChunkedSource(uploadID, m.Filename, m.ContentType))
}

func (s *Service) assemble(ctx context.Context, ownerID string, src ChunkedSource) (*Payload, error) {
	m, err := s.chunks.Manifest(ownerID, src.UploadID)
	if err != nil {
		return nil, err
	}
	missing, err := s.chunks.Missing(ownerID, src.UploadID, m.Total)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &MissingChunksError{UploadID: src.UploadID, Missing: missing}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := s.chunks.Assemble(ownerID, src.UploadID, m.Total, s.cfg.ChunkedMaxBytes)
	if err != nil {
		return nil, err
	}
	if err := s.admission.CheckCredits(ctx, ownerID, int64(len(data))); err != nil {
		return nil, err
	}
	filename := src.Filename
	if filename == "" {
		filename = m.Filename
	}
	return s.payload(ownerID, filename, src.ContentType, data)
}

// Cleanup discards a staged upload.
func (s *Service) Cleanup(ctx context.Context, ownerID, uploadID string) error {
	if _, err := s.chunks.Manifest(ownerID, uploadID); err != nil {
		return err
	}
	return s.chunks.Remove(ownerID, uploadID)
}

// PurgeStaging removes chunk sets untouched for longer than the staging TTL.
func (s *Service) PurgeStaging(ctx context.Context) (int, error) {
	return s.chunks.PurgeStale(ctx, s.now().Add(-s.cfg.StagingTTL))
}

func (s *Service) record(src Source, err error) {
	if s.metrics == nil || src == nil {
		return
	}
	outcome := "accepted"
	var rl *RateLimitedError
	var ic *InsufficientCreditsError
	switch {
	case err == nil:
	case errors.As(err, &rl):
		outcome = "rate_limited"
	case errors.As(err, &ic):
		outcome = "insufficient_credits"
	case errors.Is(err, ErrFileTooLarge):
		outcome = "too_large"
	case errors.Is(err, ErrUnsupportedType):
		outcome = "unsupported_type"
	default:
		outcome = "failed"
	}
	s.metrics.Ingest.WithLabelValues(string(src.Kind()), outcome).Inc()
}
