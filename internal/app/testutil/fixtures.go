package testutil

import (
	"bytes"
)

// MP3FrameSeconds is the duration of one frame produced by MP3Frames.
const MP3FrameSeconds = 1152.0 / 44100.0

// MP3Frames builds n silent MPEG-1 Layer III frames (128 kbit/s, 44.1 kHz).
// The result decodes as a valid MP3 of n*MP3FrameSeconds seconds.
func MP3Frames(n int) []byte {
	const frameSize = 144 * 128000 / 44100
	var buf bytes.Buffer
	buf.Grow(n * frameSize)
	for i := 0; i < n; i++ {
		frame := make([]byte, frameSize)
		copy(frame, []byte{0xFF, 0xFB, 0x90, 0x64})
		buf.Write(frame)
	}
	return buf.Bytes()
}

// SampleTranscript is a short transcript used across tests.
const SampleTranscript = "Welcome to our podcast. Today we're discussing the latest developments in " +
	"artificial intelligence and machine learning. Our guest is a researcher in the field of neural networks."

// SampleSummaryJSON is a well-formed summarizer reply for SampleTranscript.
const SampleSummaryJSON = `{
  "short_summary": "A conversation about recent AI research.",
  "long_summary": "The host and a neural network researcher discuss recent developments in artificial intelligence and machine learning.",
  "bullet_points": ["Recent AI developments", "Machine learning research", "Neural networks"],
  "keywords": ["ai", "machine learning", "neural networks"],
  "sentiment": "positive",
  "language": "en"
}`

// HTMLWithAudio returns a page that advertises mediaURL through og:audio.
func HTMLWithAudio(mediaURL string) string {
	return `<!doctype html><html><head>
<meta property="og:title" content="Episode 12">
<meta property="og:audio" content="` + mediaURL + `">
</head><body><h1>Episode 12</h1></body></html>`
}
