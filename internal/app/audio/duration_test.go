package audio

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mp3Frames builds n silent MPEG-1 Layer III frames at 128 kbit/s, 44.1 kHz.
func mp3Frames(n int) []byte {
	const frameSize = 144 * 128000 / 44100
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		frame := make([]byte, frameSize)
		copy(frame, []byte{0xFF, 0xFB, 0x90, 0x64})
		buf.Write(frame)
	}
	return buf.Bytes()
}

func TestMP3Duration(t *testing.T) {
	d, err := MP3Duration(bytes.NewReader(mp3Frames(100)))
	require.NoError(t, err)
	assert.InDelta(t, 100*1152.0/44100.0, d, 0.05)
}

func TestMP3Duration_NotMP3(t *testing.T) {
	_, err := MP3Duration(bytes.NewReader([]byte("RIFF....WAVEfmt ")))
	assert.Error(t, err)
}

func TestParseProbeOutput(t *testing.T) {
	testCases := []struct {
		name    string
		output  string
		want    float64
		wantErr bool
	}{
		{name: "format duration", output: `{"format":{"duration":"270.5"}}`, want: 270.5},
		{name: "stream fallback", output: `{"streams":[{"codec_type":"video","duration":"9"},{"codec_type":"audio","duration":"61.2"}],"format":{}}`, want: 61.2},
		{name: "missing", output: `{"format":{"duration":"N/A"}}`, wantErr: true},
		{name: "invalid json", output: `not json`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseProbeOutput([]byte(tc.output))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 0.0001)
		})
	}
}

func TestMeasure_FallbackOrder(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	mp3Path := filepath.Join(dir, "episode.mp3")
	require.NoError(t, os.WriteFile(mp3Path, mp3Frames(50), 0o644))
	d, source := Measure(ctx, mp3Path, "audio/mpeg", 999, 888)
	assert.Equal(t, SourceContainer, source)
	assert.InDelta(t, 50*1152.0/44100.0, d, 0.05)

	// Random bytes labelled as something ffprobe would have to read; without
	// usable metadata the engine duration wins, then the estimate.
	junk := filepath.Join(dir, "junk.mp3")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not audio"), 0o644))
	d, source = Measure(ctx, junk, "audio/mpeg", 42, 60)
	assert.Equal(t, SourceEngine, source)
	assert.Equal(t, 42.0, d)

	d, source = Measure(ctx, junk, "audio/mpeg", 0, 60)
	assert.Equal(t, SourceEstimate, source)
	assert.Equal(t, 60.0, d)
}
