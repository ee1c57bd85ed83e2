package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/model"
	"podbrief/internal/app/testutil"
)

func TestShareService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestStore(t)
	user := testutil.SeedUser(t, store, "10")
	file := testutil.SeedAudioFile(t, store, user.ID)

	tr := &model.Transcription{
		ID:          uuid.NewString(),
		OwnerID:     user.ID,
		AudioFileID: sql.NullString{String: file.ID, Valid: true},
		Text:        "welcome to the show",
		Language:    sql.NullString{String: "en", Valid: true},
		CostCents:   100,
	}
	require.NoError(t, store.CreateTranscription(ctx, tr))

	svc := NewShareService(store)

	first, err := svc.EnableSharing(ctx, user.ID, tr.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ShareToken)
	assert.Equal(t, "/api/v1/shared/"+first.ShareToken, first.Path)

	shared, err := svc.GetShared(ctx, first.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, "welcome to the show", shared.Text)
	assert.Equal(t, "en", shared.Language)
	assert.Nil(t, shared.Summary)

	require.NoError(t, svc.DisableSharing(ctx, user.ID, tr.ID))
	_, err = svc.GetShared(ctx, first.ShareToken)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	second, err := svc.EnableSharing(ctx, user.ID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ShareToken, second.ShareToken, "token survives a disable/enable toggle")
}

func TestShareService_OtherOwner(t *testing.T) {
	ctx := context.Background()
	store := testutil.SetupTestStore(t)
	owner := testutil.SeedUser(t, store, "0")
	other := testutil.SeedUser(t, store, "0")

	tr := &model.Transcription{ID: uuid.NewString(), OwnerID: owner.ID, Text: "private", CostCents: 100}
	require.NoError(t, store.CreateTranscription(ctx, tr))

	svc := NewShareService(store)

	_, err := svc.EnableSharing(ctx, other.ID, tr.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.DisableSharing(ctx, other.ID, tr.ID), apperrors.ErrNotFound)
}
