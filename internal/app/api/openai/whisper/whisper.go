package whisper

import (
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"

	"podbrief/internal/app/api/provider"
	openaiclient "podbrief/internal/app/api/openai"
	"podbrief/internal/config"
)

func init() {
	provider.RegisterTranscriber("openai", func(cfg config.EnginesConfig) (provider.Transcriber, error) {
		client, err := openaiclient.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return NewRemoteTranscriber(client, cfg.WhisperModel), nil
	})
}

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
	model  string
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client, model string) *RemoteTranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	return &RemoteTranscriber{client: client, model: model}
}

func (rt *RemoteTranscriber) Name() string {
	return "openai"
}

// Transcribe uploads the file and asks for verbose JSON so the engine reports
// language and duration alongside the text.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, request *provider.TranscribeRequest) (*provider.TranscribeResult, error) {
	if request == nil || request.InputFilePath == "" {
		return nil, &provider.EngineError{
			Code:     provider.CodeInvalidInput,
			Message:  "input file path is required",
			Provider: rt.Name(),
		}
	}
	if _, err := os.Stat(request.InputFilePath); err != nil {
		return nil, &provider.EngineError{
			Code:     provider.CodeInvalidInput,
			Message:  fmt.Sprintf("input file not readable: %s", request.InputFilePath),
			Provider: rt.Name(),
			Err:      err,
		}
	}

	req := openai.AudioRequest{
		Model:    rt.model,
		FilePath: request.InputFilePath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: request.Language,
	}
	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, openaiclient.ClassifyError(err)
	}

	return &provider.TranscribeResult{
		Text:            resp.Text,
		Language:        resp.Language,
		DurationSeconds: resp.Duration,
		Model:           rt.model,
	}, nil
}
