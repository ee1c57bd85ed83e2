package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	storage "github.com/supabase-community/storage-go"

	apperrors "podbrief/internal/app/errors"
	"podbrief/internal/config"
)

// SupabaseStore keeps audio in a Supabase Storage bucket. References are the
// object URLs under <project>/storage/v1/object/<bucket>/.
type SupabaseStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewSupabaseStore creates a client for the configured project.
func NewSupabaseStore(cfg config.StorageConfig) *SupabaseStore {
	base := strings.TrimRight(cfg.SupabaseURL, "/")
	return &SupabaseStore{
		client:  storage.NewClient(base+"/storage/v1", cfg.SupabaseKey, nil),
		bucket:  cfg.SupabaseBucket,
		baseURL: base,
	}
}

func (s *SupabaseStore) prefix() string {
	return fmt.Sprintf("%s/storage/v1/object/%s/", s.baseURL, s.bucket)
}

// Put uploads one object.
func (s *SupabaseStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	upsert := false
	_, err := s.client.UploadFile(s.bucket, key, r, storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to Supabase: %w", err)
	}
	return s.prefix() + key, nil
}

// Get downloads an object into memory.
func (s *SupabaseStore) Get(_ context.Context, ref string) (io.ReadCloser, error) {
	key, err := trimRef(ref, s.prefix())
	if err != nil {
		return nil, err
	}
	data, err := s.client.DownloadFile(s.bucket, key)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, apperrors.NotFound("object", key)
		}
		return nil, fmt.Errorf("failed to download %s from Supabase: %w", key, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes an object.
func (s *SupabaseStore) Delete(_ context.Context, ref string) error {
	key, err := trimRef(ref, s.prefix())
	if err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("failed to delete file from Supabase: %w", err)
	}
	return nil
}
