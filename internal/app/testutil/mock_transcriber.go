package testutil

import (
	"context"
	"sync"
	"time"

	"podbrief/internal/app/api/provider"
)

// TranscriptionCall records one call to MockTranscriber.
type TranscriptionCall struct {
	Request   provider.TranscribeRequest
	Timestamp time.Time
	Err       error
}

// MockTranscriber is a scripted provider.Transcriber.
type MockTranscriber struct {
	mu sync.Mutex

	result  provider.TranscribeResult
	err     error
	latency time.Duration
	gate    chan struct{}

	calls []TranscriptionCall
}

// NewMockTranscriber returns a transcriber answering with a fixed English text.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{
		result: provider.TranscribeResult{
			Text:     SampleTranscript,
			Language: "en",
			Model:    "mock-whisper",
		},
	}
}

// WithText sets the transcript text.
func (m *MockTranscriber) WithText(text string) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result.Text = text
	return m
}

// WithEngineDuration sets the duration the engine reports.
func (m *MockTranscriber) WithEngineDuration(seconds float64) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result.DurationSeconds = seconds
	return m
}

// WithError makes every call fail with err.
func (m *MockTranscriber) WithError(err error) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithLatency delays every call.
func (m *MockTranscriber) WithLatency(latency time.Duration) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = latency
	return m
}

// WithGate blocks every call until gate is closed or the context ends.
func (m *MockTranscriber) WithGate(gate chan struct{}) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = gate
	return m
}

func (m *MockTranscriber) Name() string {
	return "mock"
}

func (m *MockTranscriber) Transcribe(ctx context.Context, request *provider.TranscribeRequest) (*provider.TranscribeResult, error) {
	m.mu.Lock()
	result, err, latency, gate := m.result, m.err, m.latency, m.gate
	m.calls = append(m.calls, TranscriptionCall{Request: *request, Timestamp: time.Now(), Err: err})
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CallCount returns how many times Transcribe was called.
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the call history.
func (m *MockTranscriber) Calls() []TranscriptionCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TranscriptionCall(nil), m.calls...)
}
