package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "podbrief/internal/app/errors"
	apptest "podbrief/internal/app/testutil"
)

func TestDelete_RemovesBlobsThenRows(t *testing.T) {
	store := apptest.SetupTestStore(t)
	blobs := apptest.NewMemoryBlobStore()
	ctx := context.Background()

	user := apptest.SeedUser(t, store, "12.00")
	other := apptest.SeedUser(t, store, "1.00")
	ref1 := blobs.PutBytes("audio/"+user.ID+"/a.mp3", []byte("a"))
	ref2 := blobs.PutBytes("audio/"+user.ID+"/b.mp3", []byte("b"))
	keep := blobs.PutBytes("audio/"+other.ID+"/c.mp3", []byte("c"))
	f1 := apptest.SeedAudioFile(t, store, user.ID, apptest.WithLocation(ref1))
	apptest.SeedAudioFile(t, store, user.ID, apptest.WithLocation(ref2))
	apptest.SeedAudioFile(t, store, other.ID, apptest.WithLocation(keep))

	svc := NewService(store, blobs, zap.NewNop())
	report, err := svc.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, DeletionReport{BlobsDeleted: 2}, report)

	assert.False(t, blobs.Has(ref1))
	assert.False(t, blobs.Has(ref2))
	assert.True(t, blobs.Has(keep))

	_, err = store.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = store.GetAudioFile(ctx, f1.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Delete(ctx, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProfile(t *testing.T) {
	store := apptest.SetupTestStore(t)
	user := apptest.SeedUser(t, store, "7.25")

	p, err := NewService(store, apptest.NewMemoryBlobStore(), zap.NewNop()).Profile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "7.25", p.Credits.StringFixed(2))
	assert.Equal(t, user.Email, p.Email)
}
