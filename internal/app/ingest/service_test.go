package ingest

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/app/ledger"
	"podbrief/internal/app/metrics"
	"podbrief/internal/app/model"
	"podbrief/internal/app/ratelimit"
	"podbrief/internal/app/repository"
	apptest "podbrief/internal/app/testutil"
	"podbrief/internal/config"
	"podbrief/internal/downloader"
)

type recordingDispatcher struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, id)
	return d.err
}

func (d *recordingDispatcher) IDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ids...)
}

type fixture struct {
	store      *repository.Store
	blobs      *apptest.MemoryBlobStore
	dispatcher *recordingDispatcher
	metrics    *metrics.Metrics
	staging    string
	service    *Service
}

func newFixture(t *testing.T, rateLimit int) *fixture {
	t.Helper()
	logger := zap.NewNop()
	store := apptest.SetupTestStore(t)
	limiter := ratelimit.NewMemoryLimiter(rateLimit, time.Hour)
	t.Cleanup(limiter.Stop)

	f := &fixture{
		store:      store,
		blobs:      apptest.NewMemoryBlobStore(),
		dispatcher: &recordingDispatcher{},
		metrics:    metrics.New(),
		staging:    t.TempDir(),
	}
	cfg := config.IngestConfig{
		DirectMaxBytes:  4 << 20,
		ChunkSize:       1024,
		ChunkedMaxBytes: 64 << 20,
		RemoteMaxBytes:  8 << 20,
		StagingTTL:      24 * time.Hour,
	}
	admission := NewAdmission(limiter, ledger.New(store, logger), ledger.NewPricing(decimal.NewFromInt(1)), logger)
	f.service = NewService(store, f.blobs, admission, NewChunkStore(f.staging),
		downloader.NewResolver(nil), f.dispatcher, f.metrics, cfg, logger)
	return f
}

func TestIngest_DirectUpload(t *testing.T) {
	f := newFixture(t, 10)
	user := apptest.SeedUser(t, f.store, "50.00")
	data := apptest.MP3Frames(20)

	result, err := f.service.Ingest(context.Background(), user.ID,
		NewDirectSource("My Episode.mp3", "audio/mpeg", int64(len(data)), bytes.NewReader(data)))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, result.Status)
	assert.Equal(t, "audio/mpeg", result.ContentType)
	assert.Equal(t, int64(len(data)), result.SizeBytes)
	assert.Equal(t, []string{result.AudioFileID}, f.dispatcher.IDs())

	stored, err := f.store.GetAudioFile(context.Background(), result.AudioFileID)
	require.NoError(t, err)
	assert.Equal(t, "My Episode.mp3", stored.OriginalFilename)
	assert.Contains(t, stored.LocationRef, "audio/"+user.ID+"/")
	assert.Contains(t, stored.LocationRef, "-my-episode.mp3")
	assert.Equal(t, data, f.blobs.Bytes(stored.LocationRef))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Ingest.WithLabelValues("direct", "accepted")))
}

func TestIngest_DirectSniffsGenericType(t *testing.T) {
	f := newFixture(t, 10)
	user := apptest.SeedUser(t, f.store, "50.00")
	data := apptest.MP3Frames(20)

	result, err := f.service.Ingest(context.Background(), user.ID,
		NewDirectSource("upload.bin", "application/octet-stream", int64(len(data)), bytes.NewReader(data)))
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", result.ContentType)
}

func TestIngest_DirectRejections(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		body        []byte
		wantErr     error
	}{
		{"declared too large", "audio/mpeg", 5 << 20, apptest.MP3Frames(1), ErrFileTooLarge},
		{"body larger than declared", "audio/mpeg", 10, bytes.Repeat([]byte{0}, 4<<20+1), ErrFileTooLarge},
		{"declared text", "text/plain", 12, []byte("hello, world"), ErrUnsupportedType},
		{"sniffed text", "", 12, []byte("hello, world"), ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 10)
			user := apptest.SeedUser(t, f.store, "50.00")

			_, err := f.service.Ingest(context.Background(), user.ID,
				NewDirectSource("a.mp3", tt.contentType, tt.size, bytes.NewReader(tt.body)))
			require.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Zero(t, f.blobs.Len())
			assert.Empty(t, f.dispatcher.IDs())
		})
	}
}

func TestIngest_RateLimited(t *testing.T) {
	f := newFixture(t, 2)
	user := apptest.SeedUser(t, f.store, "50.00")
	data := apptest.MP3Frames(4)

	upload := func() error {
		_, err := f.service.Ingest(context.Background(), user.ID,
			NewDirectSource("a.mp3", "audio/mpeg", int64(len(data)), bytes.NewReader(data)))
		return err
	}
	require.NoError(t, upload())
	require.NoError(t, upload())

	err := upload()
	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Greater(t, rl.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, rl.RetryAfter, time.Hour)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Ingest.WithLabelValues("direct", "rate_limited")))
}

func TestIngest_InsufficientCredits(t *testing.T) {
	f := newFixture(t, 10)
	user := apptest.SeedUser(t, f.store, "0.50")

	_, err := f.service.Ingest(context.Background(), user.ID,
		NewDirectSource("long.mp3", "audio/mpeg", 3<<20, bytes.NewReader(nil)))

	var ic *InsufficientCreditsError
	require.ErrorAs(t, err, &ic)
	assert.True(t, ic.Required.Equal(decimal.RequireFromString("3.00")), ic.Required.String())
	assert.True(t, ic.Balance.Equal(decimal.RequireFromString("0.50")))
	assert.True(t, ic.Shortfall.Equal(decimal.RequireFromString("2.50")))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientCredits)
	assert.Zero(t, f.blobs.Len())
}

func TestIngest_BlobRemovedWhenInsertFails(t *testing.T) {
	f := newFixture(t, 10)
	data := apptest.MP3Frames(4)

	// unknown owner violates the foreign key
	_, err := f.service.persist(context.Background(), &Payload{
		Bytes: data, Filename: "a.mp3", ContentType: "audio/mpeg", OwnerID: uuid.NewString(),
	})
	require.Error(t, err)
	assert.Zero(t, f.blobs.Len())
	assert.Empty(t, f.dispatcher.IDs())
}

func TestIngest_DispatchFailureKeepsJob(t *testing.T) {
	f := newFixture(t, 10)
	f.dispatcher.err = errors.New("dispatcher closed")
	user := apptest.SeedUser(t, f.store, "50.00")
	data := apptest.MP3Frames(4)

	result, err := f.service.Ingest(context.Background(), user.ID,
		NewDirectSource("a.mp3", "audio/mpeg", int64(len(data)), bytes.NewReader(data)))
	require.NoError(t, err)

	stored, err := f.store.GetAudioFile(context.Background(), result.AudioFileID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
}

func splitChunks(data []byte, size int) [][]byte {
	var out [][]byte
	for len(data) > 0 {
		n := min(size, len(data))
		out = append(out, data[:n])
		data = data[n:]
	}
	return out
}

func TestChunked_ReassemblesInIndexOrder(t *testing.T) {
	f := newFixture(t, 10)
	user := apptest.SeedUser(t, f.store, "50.00")
	data := apptest.MP3Frames(6)
	chunks := splitChunks(data, 1024)
	require.Len(t, chunks, 3)
	uploadID := uuid.NewString()

	for _, i := range []int{2, 0, 1} {
		meta := ChunkMeta{UploadID: uploadID, Index: i, Total: 3, Filename: "show.mp3", ContentType: "audio/mpeg", TotalSize: int64(len(data))}
		ack, err := f.service.SaveChunk(context.Background(), user.ID, meta, bytes.NewReader(chunks[i]))
		require.NoError(t, err)
		assert.Equal(t, 3, ack.Total)
	}

	result, err := f.service.Complete(context.Background(), user.ID, uploadID)
	require.NoError(t, err)

	stored, err := f.store.GetAudioFile(context.Background(), result.AudioFileID)
	require.NoError(t, err)
	assert.Equal(t, data, f.blobs.Bytes(stored.LocationRef))
	assert.Equal(t, "show.mp3", stored.OriginalFilename)

	_, err = os.Stat(filepath.Join(f.staging, user.ID, uploadID))
	assert.True(t, os.IsNotExist(err), "staging directory should be removed")
}

func TestChunked_RepeatedChunkOverwrites(t *testing.T) {
	f := newFixture(t, 10)
	user := apptest.SeedUser(t, f.store, "50.00")
	data := apptest.MP3Frames(4)
	chunks := splitChunks(data, 1024)
	uploadID := uuid.NewString()
	total := len(chunks)

	save := func(i int, body []byte) {
		meta := ChunkMeta{UploadID: uploadID, Index: i, Total: total, Filename: "a.mp3", ContentType: "audio/mpeg"}
		_, err := f.service.SaveChunk(context.Background(), user.ID, meta, bytes.NewReader(body))
		require.NoError(t, err)
	}
	save(0, bytes.Repeat([]byte{1}, 1024))
	for i, c := range chunks {
		save(i, c)
	}
	save(0, chunks[0])

	result, err := f.service.Complete(context.Background(), user.ID, uploadID)
	require.NoError(t, err)
	stored, err := f.store.GetAudioFile(context.Background(), result.AudioFileID)
	require.NoError(t, err)
	assert.Equal(t, data, f.blobs.Bytes(stored.LocationRef))
}

func TestChunked_AdmissionOnlyOnFirstChunk(t *testing.T) {
	f := newFixture(t, 1)
	user := apptest.SeedUser(t, f.store, "50.00")
	uploadID := uuid.NewString()

	for i := 0; i < 3; i++ {
		meta := ChunkMeta{UploadID: uploadID, Index: i, Total: 3, Filename: "a.mp3", ContentType: "audio/mpeg"}
		_, err := f.service.SaveChunk(context.Background(), user.ID, meta, bytes.NewReader([]byte{byte(i)}))
		require.NoError(t, err)
	}

	other := ChunkMeta{UploadID: uuid.NewString(), Index: 0, Total: 1, Filename: "b.mp3", ContentType: "audio/mpeg"}
	_, err := f.service.SaveChunk(context.Background(), user.ID, other, bytes.NewReader([]byte{1}))
	var rl *RateLimitedError
	assert.ErrorAs(t, err, &rl)
}

func TestChunked_AdmissionCountsChunksWithoutDeclaredSize(t *testing.T) {
	f := newFixture(t, 10)
	user := apptest.SeedUser(t, f.store, "0.05")

	// 200 full chunks of 1 KiB cost about 0.20 even though no size is declared.
	meta := ChunkMeta{UploadID: uuid.NewString(), Index: 0, Total: 200, Filename: "long.mp3", ContentType: "audio/mpeg"}
	_, err := f.service.SaveChunk(context.Background(), user.ID, meta, bytes.NewReader(make([]byte, 1024)))

	var ic *InsufficientCreditsError
	require.ErrorAs(t, err, &ic)
	assert.True(t, ic.Required.Equal(decimal.RequireFromString("0.19")), ic.Required.String())
	_, err = os.Stat(filepath.Join(f.staging, user.ID, meta.UploadID))
	assert.True(t, os.IsNotExist(err), "rejected upload must not be staged")
}

func TestChunked_CompleteRechecksAssembledSize(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	user := apptest.SeedUser(t, f.store, "1.00")
	uploadID := uuid.NewString()
	const total = 100

	for i := 0; i < total; i++ {
		meta := ChunkMeta{UploadID: uploadID, Index: i, Total: total, Filename: "long.mp3", ContentType: "audio/mpeg"}
		_, err := f.service.SaveChunk(ctx, user.ID, meta, bytes.NewReader(make([]byte, 1024)))
		require.NoError(t, err)
	}

	// Balance drops below the ~0.10 estimate after admission.
	_, err := f.store.DebitCents(ctx, user.ID, 96)
	require.NoError(t, err)

	_, err = f.service.Complete(ctx, user.ID, uploadID)
	var ic *InsufficientCreditsError
	require.ErrorAs(t, err, &ic)
	assert.True(t, ic.Required.Equal(decimal.RequireFromString("0.10")), ic.Required.String())
	assert.Zero(t, f.blobs.Len())
	assert.Empty(t, f.dispatcher.IDs())

	_, err = f.store.CreditCents(ctx, user.ID, 100)
	require.NoError(t, err)
	result, err := f.service.Complete(ctx, user.ID, uploadID)
	require.NoError(t, err)
	assert.Equal(t, int64(total*1024), result.SizeBytes)
}

func TestChunked_MissingChunks(t *testing.T) {
	f := newFixture(t, 10)
	user := apptest.SeedUser(t, f.store, "50.00")
	uploadID := uuid.NewString()

	for _, i := range []int{0, 2} {
		meta := ChunkMeta{UploadID: uploadID, Index: i, Total: 5, Filename: "a.mp3", ContentType: "audio/mpeg"}
		_, err := f.service.SaveChunk(context.Background(), user.ID, meta, bytes.NewReader([]byte{byte(i)}))
		require.NoError(t, err)
	}

	_, err := f.service.Complete(context.Background(), user.ID, uploadID)
	var missing *MissingChunksError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []int{1, 3, 4}, missing.Missing)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Zero(t, f.blobs.Len())
	assert.Contains(t, err.Error(), "[1, 3, 4]")
}

func TestChunked_InvalidMetadata(t *testing.T) {
	f := newFixture(t, 10)
	user := apptest.SeedUser(t, f.store, "50.00")

	tests := []struct {
		name string
		meta ChunkMeta
		body []byte
		want error
	}{
		{"bad upload id", ChunkMeta{UploadID: "../etc", Index: 0, Total: 1}, []byte{1}, ErrInvalidChunk},
		{"index out of range", ChunkMeta{UploadID: uuid.NewString(), Index: 3, Total: 3}, []byte{1}, ErrInvalidChunk},
		{"oversized chunk", ChunkMeta{UploadID: uuid.NewString(), Index: 0, Total: 2}, bytes.Repeat([]byte{1}, 1025), ErrFileTooLarge},
		{"bad type", ChunkMeta{UploadID: uuid.NewString(), Index: 0, Total: 1, ContentType: "image/png"}, []byte{1}, ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.SaveChunk(context.Background(), user.ID, tt.meta, bytes.NewReader(tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestChunked_CleanupAndUnknownUpload(t *testing.T) {
	f := newFixture(t, 10)
	user := apptest.SeedUser(t, f.store, "50.00")
	uploadID := uuid.NewString()

	meta := ChunkMeta{UploadID: uploadID, Index: 0, Total: 2, Filename: "a.mp3", ContentType: "audio/mpeg"}
	_, err := f.service.SaveChunk(context.Background(), user.ID, meta, bytes.NewReader([]byte{1}))
	require.NoError(t, err)

	require.NoError(t, f.service.Cleanup(context.Background(), user.ID, uploadID))
	assert.ErrorIs(t, f.service.Cleanup(context.Background(), user.ID, uploadID), ErrUploadNotFound)

	_, err = f.service.Complete(context.Background(), user.ID, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestChunkStore_PurgeStale(t *testing.T) {
	root := t.TempDir()
	cs := NewChunkStore(root)
	owner := uuid.NewString()
	oldID, freshID := uuid.NewString(), uuid.NewString()
	now := time.Now()

	for _, id := range []string{oldID, freshID} {
		_, err := cs.CreateManifest(owner, ChunkMeta{UploadID: id, Total: 1}, now)
		require.NoError(t, err)
	}
	old := now.Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, owner, oldID), old, old))

	removed, err := cs.PurgeStale(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoDirExists(t, filepath.Join(root, owner, oldID))
	assert.DirExists(t, filepath.Join(root, owner, freshID))
}

func TestIngest_RemotePage(t *testing.T) {
	f := newFixture(t, 10)
	user := apptest.SeedUser(t, f.store, "50.00")
	data := apptest.MP3Frames(10)

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/episodes/12", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(apptest.HTMLWithAudio(srv.URL + "/media/ep12.mp3")))
	})
	mux.HandleFunc("/media/ep12.mp3", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(data)
	})

	result, err := f.service.Ingest(context.Background(), user.ID, NewRemoteSource(srv.URL+"/episodes/12"))
	require.NoError(t, err)
	assert.Equal(t, "ep12.mp3", result.Filename)
	assert.Equal(t, "audio/mpeg", result.ContentType)

	stored, err := f.store.GetAudioFile(context.Background(), result.AudioFileID)
	require.NoError(t, err)
	assert.Equal(t, data, f.blobs.Bytes(stored.LocationRef))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Ingest.WithLabelValues("remote", "accepted")))
}

func TestIngest_RemoteErrors(t *testing.T) {
	f := newFixture(t, 10)
	user := apptest.SeedUser(t, f.store, "50.00")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>nothing here</body></html>"))
	}))
	defer srv.Close()

	_, err := f.service.Ingest(context.Background(), user.ID, NewRemoteSource(srv.URL))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.service.Ingest(context.Background(), user.ID, NewRemoteSource("ftp://example.com/a.mp3"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
