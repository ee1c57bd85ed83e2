package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptest "podbrief/internal/app/testutil"
)

func wavHeader() []byte {
	b := append([]byte("RIFF"), 0x24, 0, 0, 0)
	b = append(b, []byte("WAVEfmt ")...)
	return append(b, make([]byte, 32)...)
}

func TestResolveContentType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		data     []byte
		want     string
		wantErr  error
	}{
		{"declared with params", "Audio/MPEG; charset=binary", []byte{1}, "audio/mpeg", nil},
		{"declared not allowed", "image/png", []byte{1}, "", ErrUnsupportedType},
		{"sniffed id3", "", append([]byte("ID3"), make([]byte, 64)...), "audio/mpeg", nil},
		{"sniffed frames", "application/octet-stream", apptest.MP3Frames(4), "audio/mpeg", nil},
		{"sniffed wav", "binary/octet-stream", wavHeader(), "audio/wav", nil},
		{"sniffed png", "", []byte("\x89PNG\r\n\x1a\n0000000000000"), "", ErrUnsupportedType},
		{"plain text", "", []byte("hello world"), "", ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveContentType(tt.declared, tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllowedSortedMatchesAllowList(t *testing.T) {
	assert.Len(t, allowedSorted, len(allowedTypes))
	assert.IsNonDecreasing(t, allowedSorted)
}
