package testutil

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"podbrief/internal/app/api/provider"
	apperrors "podbrief/internal/app/errors"
)

// MockSummarizer is a scripted provider.Summarizer.
type MockSummarizer struct {
	mu      sync.Mutex
	content *provider.SummaryContent
	err     error
	calls   int
}

func NewMockSummarizer() *MockSummarizer {
	content, err := provider.ParseSummaryJSON(SampleSummaryJSON)
	if err != nil {
		panic(err)
	}
	return &MockSummarizer{content: content}
}

func (m *MockSummarizer) WithError(err error) *MockSummarizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MockSummarizer) Name() string { return "mock" }

func (m *MockSummarizer) Summarize(ctx context.Context, text, languageHint string) (*provider.SummaryContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	content := *m.content
	return &content, nil
}

func (m *MockSummarizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LowBalanceCall records one notification.
type LowBalanceCall struct {
	UserID  string
	Balance decimal.Decimal
}

// RecordingNotifier captures notifications instead of sending them.
type RecordingNotifier struct {
	mu    sync.Mutex
	calls []LowBalanceCall
}

func (n *RecordingNotifier) LowBalance(ctx context.Context, userID string, balance decimal.Decimal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, LowBalanceCall{UserID: userID, Balance: balance})
	return nil
}

func (n *RecordingNotifier) Calls() []LowBalanceCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]LowBalanceCall(nil), n.calls...)
}

const memPrefix = "mem://"

// MemoryBlobStore is an in-memory blob.Store. References look like mem://<key>.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
	PutErr  error
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *MemoryBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if s.PutErr != nil {
		return "", s.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return memPrefix + key, nil
}

// PutBytes stores data directly and returns its reference.
func (s *MemoryBlobStore) PutBytes(key string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return memPrefix + key
}

func (s *MemoryBlobStore) Get(ctx context.Context, ref string) (io.ReadCloser, error) {
	key := strings.TrimPrefix(ref, memPrefix)
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, apperrors.NotFound("object", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryBlobStore) Delete(ctx context.Context, ref string) error {
	key := strings.TrimPrefix(ref, memPrefix)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	delete(s.types, key)
	return nil
}

// Has reports whether ref is stored.
func (s *MemoryBlobStore) Has(ref string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[strings.TrimPrefix(ref, memPrefix)]
	return ok
}

// Len returns the number of stored objects.
func (s *MemoryBlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Bytes returns a stored object's content.
func (s *MemoryBlobStore) Bytes(ref string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[strings.TrimPrefix(ref, memPrefix)]
}
