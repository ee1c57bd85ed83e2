// Package whisper_server transcribes through a self-hosted whisper.cpp
// server (the /inference endpoint of whisper.cpp's examples/server).
package whisper_server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"podbrief/internal/app/api/provider"
	"podbrief/internal/config"
)

const name = "whisper_server"

func init() {
	provider.RegisterTranscriber(name, func(cfg config.EnginesConfig) (provider.Transcriber, error) {
		if cfg.WhisperServerURL == "" {
			return nil, fmt.Errorf("whisper_server transcriber requires WHISPER_SERVER_URL")
		}
		return NewTranscriber(Config{BaseURL: cfg.WhisperServerURL}), nil
	})
}

// Config describes the server endpoint.
type Config struct {
	BaseURL       string
	InferencePath string        // default "/inference"
	Timeout       time.Duration // default 10m
	Temperature   float64
}

// response is the verbose_json body returned by the server.
type response struct {
	Text     string  `json:"text"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// Transcriber posts audio files to a whisper server.
type Transcriber struct {
	config Config
	client *http.Client
}

func NewTranscriber(config Config) *Transcriber {
	if config.InferencePath == "" {
		config.InferencePath = "/inference"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Minute
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Transcriber{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

func (t *Transcriber) Name() string { return name }

func (t *Transcriber) Transcribe(ctx context.Context, request *provider.TranscribeRequest) (*provider.TranscribeResult, error) {
	if request == nil || request.InputFilePath == "" {
		return nil, t.fail(provider.CodeInvalidInput, "input file path is required", false, nil)
	}

	body, contentType, err := t.form(request)
	if err != nil {
		return nil, t.fail(provider.CodeInvalidInput, "could not build request", false, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.BaseURL+t.config.InferencePath, body)
	if err != nil {
		return nil, t.fail(provider.CodeInvalidInput, "could not build request", false, err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, t.fail(provider.CodeUnknown, "request failed", true, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, t.fail(provider.CodeUnknown, "could not read response", true, err)
	}
	if resp.StatusCode != http.StatusOK {
		code, retryable := classify(resp.StatusCode)
		return nil, t.fail(code, fmt.Sprintf("server returned status %d", resp.StatusCode), retryable, nil)
	}

	var parsed response
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, t.fail(provider.CodeInvalidResponse, "malformed response", false, err)
	}
	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		return nil, t.fail(provider.CodeInvalidResponse, "no transcription text in response", false, nil)
	}

	language := parsed.Language
	if language == "" {
		language = request.Language
	}
	return &provider.TranscribeResult{
		Text:            text,
		Language:        language,
		DurationSeconds: parsed.Duration,
		Model:           name,
	}, nil
}

func (t *Transcriber) form(request *provider.TranscribeRequest) (*bytes.Buffer, string, error) {
	file, err := os.Open(request.InputFilePath)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	filename := request.Filename
	if filename == "" {
		filename = filepath.Base(request.InputFilePath)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}

	params := map[string]string{
		"response_format": "verbose_json",
		"temperature":     fmt.Sprintf("%.2f", t.config.Temperature),
	}
	if request.Language != "" {
		params["language"] = request.Language
	}
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func classify(status int) (provider.ErrorCode, bool) {
	switch {
	case status == http.StatusTooManyRequests:
		return provider.CodeRateLimited, true
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return provider.CodeInvalidCredentials, false
	case status == http.StatusBadRequest || status == http.StatusUnsupportedMediaType:
		return provider.CodeUnsupportedFormat, false
	case status >= 500:
		return provider.CodeUnknown, true
	default:
		return provider.CodeUnknown, false
	}
}

func (t *Transcriber) fail(code provider.ErrorCode, msg string, retryable bool, err error) error {
	return &provider.EngineError{Code: code, Message: msg, Provider: name, Retryable: retryable, Err: err}
}
