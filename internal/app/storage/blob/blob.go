package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	apperrors "podbrief/internal/app/errors"
)

// Store is durable storage for uploaded audio. Put returns an opaque
// reference that Get and Delete accept.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Get(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}

// ErrForeignRef is returned when a reference was not produced by the store.
var ErrForeignRef = apperrors.New("reference does not belong to this store")

// ObjectKey builds audio/<owner>/<uuid>-<slugged name><ext>.
func ObjectKey(ownerID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	base := slug.Make(strings.TrimSuffix(filename, path.Ext(filename)))
	if base == "" {
		base = "audio"
	}
	if len(base) > 80 {
		base = base[:80]
	}
	return fmt.Sprintf("audio/%s/%s-%s%s", ownerID, uuid.NewString(), base, ext)
}

func trimRef(ref, prefix string) (string, error) {
	if !strings.HasPrefix(ref, prefix) {
		return "", fmt.Errorf("%q: %w", ref, ErrForeignRef)
	}
	key := strings.TrimPrefix(ref, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%q: %w", ref, ErrForeignRef)
	}
	return key, nil
}
