package provider

import (
	"context"
)

// Transcriber turns an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, request *TranscribeRequest) (*TranscribeResult, error)
	Name() string
}

// Summarizer produces a structured summary of a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, text, languageHint string) (*SummaryContent, error)
	Name() string
}
