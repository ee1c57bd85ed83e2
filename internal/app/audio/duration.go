package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	tcmp3 "github.com/tcolgate/mp3"

	"podbrief/internal/app/model"
)

// ErrDurationUnavailable means no container metadata could be read.
var ErrDurationUnavailable = errors.New("audio duration unavailable")

// Source of a measured duration.
const (
	SourceContainer = "container"
	SourceEngine    = "engine"
	SourceEstimate  = "estimate"
)

// MP3Duration sums the duration of every MPEG audio frame in r.
func MP3Duration(r io.Reader) (float64, error) {
	var (
		dur     float64
		frames  int
		dec     = tcmp3.NewDecoder(r)
		frame   tcmp3.Frame
		skipped int
	)

	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			if frames > 0 {
				break
			}
			return 0, fmt.Errorf("decode mp3 frame: %w", err)
		}
		frames++
		dur += frame.Duration().Seconds()
	}

	if frames == 0 {
		return 0, ErrDurationUnavailable
	}
	return dur, nil
}

// ProbeDuration asks ffprobe for the container duration.
func ProbeDuration(ctx context.Context, filePath string) (float64, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return 0, ErrDurationUnavailable
	}
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", filePath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe error: %v, stderr: %s", err, stderr.String())
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(output []byte) (float64, error) {
	var probe model.FFProbeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if d, ok := parseSeconds(probe.Format.Duration); ok {
		return d, nil
	}
	for _, stream := range probe.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		if d, ok := parseSeconds(stream.Duration); ok {
			return d, nil
		}
	}
	return 0, ErrDurationUnavailable
}

func parseSeconds(s string) (float64, bool) {
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func isMP3(contentType, filename string) bool {
	ct := strings.ToLower(contentType)
	return ct == "audio/mpeg" || ct == "audio/mp3" || strings.HasSuffix(strings.ToLower(filename), ".mp3")
}

// ContainerDuration reads the duration from the file's own metadata: MPEG
// frames for MP3, ffprobe for everything else.
func ContainerDuration(ctx context.Context, filePath, contentType string) (float64, error) {
	if isMP3(contentType, filePath) {
		f, err := os.Open(filePath)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		if d, err := MP3Duration(f); err == nil {
			return d, nil
		}
	}
	return ProbeDuration(ctx, filePath)
}

// Measure picks the best available duration: container metadata, then the
// duration reported by the transcription engine, then the size estimate.
func Measure(ctx context.Context, filePath, contentType string, engineSeconds, estimateSeconds float64) (float64, string) {
	if d, err := ContainerDuration(ctx, filePath, contentType); err == nil {
		return d, SourceContainer
	}
	if engineSeconds > 0 {
		return engineSeconds, SourceEngine
	}
	return estimateSeconds, SourceEstimate
}
