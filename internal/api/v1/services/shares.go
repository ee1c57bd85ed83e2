package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"podbrief/internal/api/v1/dto"
	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/model"
)

// ShareStore persists sharing state.
type ShareStore interface {
	EnableSharing(ctx context.Context, ownerID, id, candidateToken string) (string, error)
	DisableSharing(ctx context.Context, ownerID, id string) error
	GetPublicTranscription(ctx context.Context, token string) (*model.Transcription, error)
	GetSummaryByTranscription(ctx context.Context, transcriptionID string) (*model.Summary, error)
}

type shareService struct {
	store ShareStore
}

func NewShareService(store ShareStore) ShareService {
	return &shareService{store: store}
}

// EnableSharing keeps an existing token so links stay stable across toggles.
func (s *shareService) EnableSharing(ctx context.Context, ownerID, id string) (*dto.ShareResponse, error) {
	candidate := strings.ReplaceAll(uuid.NewString(), "-", "")
	token, err := s.store.EnableSharing(ctx, ownerID, id, candidate)
	if err != nil {
		return nil, err
	}
	return &dto.ShareResponse{TranscriptionID: id, ShareToken: token, Path: "/api/v1/shared/" + token}, nil
}

func (s *shareService) DisableSharing(ctx context.Context, ownerID, id string) error {
	return s.store.DisableSharing(ctx, ownerID, id)
}

func (s *shareService) GetShared(ctx context.Context, token string) (*dto.SharedTranscriptResponse, error) {
	t, err := s.store.GetPublicTranscription(ctx, token)
	if err != nil {
		return nil, err
	}
	resp := &dto.SharedTranscriptResponse{Text: t.Text, CreatedAt: t.CreatedAt}
	if t.Language.Valid {
		resp.Language = t.Language.String
	}

	sum, err := s.store.GetSummaryByTranscription(ctx, t.ID)
	switch {
	case err == nil:
		resp.Summary = dto.NewSummaryResponse(sum)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}
	return resp, nil
}
