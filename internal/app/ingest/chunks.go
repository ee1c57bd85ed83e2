package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const manifestName = "manifest.json"

// ChunkMeta describes one chunk of a chunked upload.
type ChunkMeta struct {
	UploadID    string `json:"upload_id"`
	Index       int    `json:"-"`
	Total       int    `json:"total"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	TotalSize   int64  `json:"total_size"`
}

// Manifest is persisted next to the chunks when an upload starts.
type Manifest struct {
	ChunkMeta
	CreatedAt time.Time `json:"created_at"`
}

// ChunkStatus reports progress of an upload.
type ChunkStatus struct {
	UploadID string `json:"upload_id"`
	Received int    `json:"received"`
	Total    int    `json:"total"`
}

// ChunkStore stages chunks on the local filesystem under
// <root>/<owner>/<uploadId>/<index>.part.
type ChunkStore struct {
	root string
}

func NewChunkStore(root string) *ChunkStore {
	return &ChunkStore{root: root}
}

func (s *ChunkStore) dir(ownerID, uploadID string) (string, error) {
	if _, err := uuid.Parse(uploadID); err != nil {
		return "", fmt.Errorf("%w: upload id must be a uuid", ErrInvalidChunk)
	}
	if ownerID == "" || strings.ContainsAny(ownerID, `/\`) || ownerID == "." || ownerID == ".." {
		return "", fmt.Errorf("%w: bad owner", ErrInvalidChunk)
	}
	return filepath.Join(s.root, ownerID, uploadID), nil
}

func partName(index int) string {
	return strconv.Itoa(index) + ".part"
}

// CreateManifest records an upload. It reports false when the manifest
// already existed, meaning the upload was initiated earlier.
func (s *ChunkStore) CreateManifest(ownerID string, meta ChunkMeta, now time.Time) (bool, error) {
	dir, err := s.dir(ownerID, meta.UploadID)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create staging dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, manifestName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create manifest: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(Manifest{ChunkMeta: meta, CreatedAt: now.UTC()}); err != nil {
		return false, fmt.Errorf("write manifest: %w", err)
	}
	return true, nil
}

// Manifest loads the manifest of an upload.
func (s *ChunkStore) Manifest(ownerID, uploadID string) (*Manifest, error) {
	dir, err := s.dir(ownerID, uploadID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// WriteChunk stores one chunk. It writes a temp file and renames it, so a
// repeated index replaces the previous copy atomically.
func (s *ChunkStore) WriteChunk(ownerID, uploadID string, index int, body io.Reader, maxBytes int64) (int64, error) {
	dir, err := s.dir(ownerID, uploadID)
	if err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(dir, ".chunk-*")
	if err != nil {
		return 0, fmt.Errorf("create chunk: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(body, maxBytes+1))
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write chunk: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close chunk: %w", err)
	}
	if n > maxBytes {
		return 0, ErrFileTooLarge
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, partName(index))); err != nil {
		return 0, fmt.Errorf("commit chunk: %w", err)
	}
	return n, nil
}

// Received returns the sorted indices present for an upload.
func (s *ChunkStore) Received(ownerID, uploadID string) ([]int, error) {
	dir, err := s.dir(ownerID, uploadID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}
	indices := lo.FilterMap(entries, func(e os.DirEntry, _ int) (int, bool) {
		name, ok := strings.CutSuffix(e.Name(), ".part")
		if !ok || e.IsDir() {
			return 0, false
		}
		i, err := strconv.Atoi(name)
		return i, err == nil
	})
	return indices, nil
}

// Missing returns the indices of 0..total-1 that have not been received.
func (s *ChunkStore) Missing(ownerID, uploadID string, total int) ([]int, error) {
	received, err := s.Received(ownerID, uploadID)
	if err != nil {
		return nil, err
	}
	missing, _ := lo.Difference(lo.Range(total), received)
	return missing, nil
}

// Assemble concatenates chunks 0..total-1 in index order.
func (s *ChunkStore) Assemble(ownerID, uploadID string, total int, maxBytes int64) ([]byte, error) {
	dir, err := s.dir(ownerID, uploadID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for i := 0; i < total; i++ {
		f, err := os.Open(filepath.Join(dir, partName(i)))
		if err != nil {
			return nil, fmt.Errorf("open chunk %d: %w", i, err)
		}
		_, err = io.Copy(&buf, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read chunk %d: %w", i, err)
		}
		if int64(buf.Len()) > maxBytes {
			return nil, ErrFileTooLarge
		}
	}
	return buf.Bytes(), nil
}

// Remove discards an upload's staging directory.
func (s *ChunkStore) Remove(ownerID, uploadID string) error {
	dir, err := s.dir(ownerID, uploadID)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

// PurgeStale removes upload directories not modified since cutoff and
// returns how many were removed.
func (s *ChunkStore) PurgeStale(ctx context.Context, cutoff time.Time) (int, error) {
	owners, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, owner := range owners {
		if !owner.IsDir() {
			continue
		}
		uploads, err := os.ReadDir(filepath.Join(s.root, owner.Name()))
		if err != nil {
			continue
		}
		for _, upload := range uploads {
			if err := ctx.Err(); err != nil {
				return removed, err
			}
			info, err := upload.Info()
			if err != nil || !upload.IsDir() || info.ModTime().After(cutoff) {
				continue
			}
			if err := os.RemoveAll(filepath.Join(s.root, owner.Name(), upload.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
