package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"podbrief/internal/app/model"
	"podbrief/internal/app/repository"
	"podbrief/internal/config"
)

// SetupTestStore creates a migrated store that is closed when the test ends.
// It uses PostgreSQL when POSTGRES_TEST_URL is set and a temp SQLite file
// otherwise.
func SetupTestStore(t *testing.T) *repository.Store {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:       "sqlite3",
		DSN:          filepath.Join(t.TempDir(), "podbrief_test.db"),
		MaxOpenConns: 1,
	}
	if pgURL := os.Getenv("POSTGRES_TEST_URL"); pgURL != "" {
		cfg = config.DatabaseConfig{Driver: "postgres", DSN: pgURL, MaxOpenConns: 5}
	}

	store, cleanup, err := repository.OpenStore(context.Background(), cfg)
	require.NoError(t, err, "failed to open test store")
	t.Cleanup(cleanup)
	return store
}

// SeedUser creates a user holding credits.
func SeedUser(t *testing.T, store *repository.Store, credits string) *model.User {
	t.Helper()
	ctx := context.Background()

	id := uuid.NewString()
	user, err := store.EnsureUser(ctx, id, id+"@example.com")
	require.NoError(t, err)

	cents := model.CentsFromDecimal(decimal.RequireFromString(credits))
	if cents > 0 {
		balance, err := store.CreditCents(ctx, id, cents)
		require.NoError(t, err)
		user.CreditsCents = balance
	}
	return user
}

// AudioFileOption customizes SeedAudioFile.
type AudioFileOption func(*model.AudioFile)

func WithLocation(ref string) AudioFileOption {
	return func(f *model.AudioFile) { f.LocationRef = ref }
}

func WithSize(size int64) AudioFileOption {
	return func(f *model.AudioFile) { f.SizeBytes = size }
}

func WithFilename(name, contentType string) AudioFileOption {
	return func(f *model.AudioFile) {
		f.OriginalFilename = name
		f.ContentType = contentType
	}
}

func WithStatus(status model.JobStatus) AudioFileOption {
	return func(f *model.AudioFile) { f.Status = status }
}

// SeedAudioFile inserts a pending job for ownerID.
func SeedAudioFile(t *testing.T, store *repository.Store, ownerID string, opts ...AudioFileOption) *model.AudioFile {
	t.Helper()

	f := &model.AudioFile{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		LocationRef:      "mem://audio/" + ownerID + "/episode.mp3",
		OriginalFilename: "episode.mp3",
		ContentType:      "audio/mpeg",
		SizeBytes:        1 << 20,
		Status:           model.StatusPending,
	}
	for _, opt := range opts {
		opt(f)
	}
	require.NoError(t, store.CreateAudioFile(context.Background(), f))
	return f
}

// Balance returns a user's balance as a fixed two-decimal string.
func Balance(t *testing.T, store *repository.Store, userID string) string {
	t.Helper()
	cents, err := store.BalanceCents(context.Background(), userID)
	require.NoError(t, err)
	return model.DecimalFromCents(cents).StringFixed(2)
}
