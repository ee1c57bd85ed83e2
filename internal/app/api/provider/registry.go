package provider

import (
	"fmt"
	"sort"
	"sync"

	"podbrief/internal/config"
)

// TranscriberCreator builds a transcriber from engine configuration.
type TranscriberCreator func(cfg config.EnginesConfig) (Transcriber, error)

// SummarizerCreator builds a summarizer from engine configuration.
type SummarizerCreator func(cfg config.EnginesConfig) (Summarizer, error)

var (
	transcribers  = make(map[string]TranscriberCreator)
	summarizers   = make(map[string]SummarizerCreator)
	registryMutex sync.RWMutex
)

// RegisterTranscriber registers a transcriber creator under name.
func RegisterTranscriber(name string, creator TranscriberCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	transcribers[name] = creator
}

// RegisterSummarizer registers a summarizer creator under name.
func RegisterSummarizer(name string, creator SummarizerCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	summarizers[name] = creator
}

// NewTranscriber builds the registered transcriber called name.
func NewTranscriber(name string, cfg config.EnginesConfig) (Transcriber, error) {
	registryMutex.RLock()
	creator, ok := transcribers[name]
	registryMutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("transcriber %s not registered", name)
	}
	return creator(cfg)
}

// NewSummarizer builds the summarizer selected by cfg.SummaryProvider.
// The "none" provider yields a nil summarizer and no error.
func NewSummarizer(cfg config.EnginesConfig) (Summarizer, error) {
	if cfg.SummaryProvider == "none" {
		return nil, nil
	}
	registryMutex.RLock()
	creator, ok := summarizers[cfg.SummaryProvider]
	registryMutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("summarizer %s not registered", cfg.SummaryProvider)
	}
	return creator(cfg)
}

// ListTranscribers returns all registered transcriber names.
func ListTranscribers() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	names := make([]string, 0, len(transcribers))
	for name := range transcribers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
