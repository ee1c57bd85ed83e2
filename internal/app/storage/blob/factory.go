package blob

import (
	"context"
	"fmt"
	"path/filepath"

	"podbrief/internal/config"
)

// New builds the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig, stagingDir string) (Store, error) {
	switch cfg.Driver {
	case "minio":
		return NewMinioStore(ctx, cfg)
	case "supabase":
		return NewSupabaseStore(cfg), nil
	case "local":
		return NewLocalStore(filepath.Join(filepath.Dir(filepath.Clean(stagingDir)), "blobs"))
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
