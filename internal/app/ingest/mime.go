package ingest

import (
	"maps"
	"mime"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var allowedTypes = map[string]bool{
	"audio/mpeg":      true,
	"audio/mp3":       true,
	"audio/wav":       true,
	"audio/x-wav":     true,
	"audio/wave":      true,
	"audio/mp4":       true,
	"audio/x-m4a":     true,
	"audio/m4a":       true,
	"video/mp4":       true,
	"audio/ogg":       true,
	"application/ogg": true,
	"audio/flac":      true,
	"audio/x-flac":    true,
	"audio/webm":      true,
	"video/webm":      true,
}

var allowedSorted = slices.Sorted(maps.Keys(allowedTypes))

// IsAllowedType reports whether contentType is on the allow-list.
func IsAllowedType(contentType string) bool {
	return allowedTypes[normalizeType(contentType)]
}

func normalizeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return strings.ToLower(mediaType)
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func untyped(contentType string) bool {
	ct := normalizeType(contentType)
	return ct == "" || ct == "application/octet-stream" || ct == "binary/octet-stream"
}

// ResolveContentType returns the effective type of a payload. Declared types
// are trusted unless empty or generic, in which case the content is sniffed.
func ResolveContentType(declared string, data []byte) (string, error) {
	if !untyped(declared) {
		ct := normalizeType(declared)
		if !allowedTypes[ct] {
			return "", ErrUnsupportedType
		}
		return ct, nil
	}

	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if ct := normalizeType(m.String()); allowedTypes[ct] {
			return ct, nil
		}
		for _, ct := range allowedSorted {
			if m.Is(ct) {
				return ct, nil
			}
		}
	}

	return "", ErrUnsupportedType
}
