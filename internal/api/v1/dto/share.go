package dto

import "time"

// ShareResponse is returned when sharing is enabled.
type ShareResponse struct {
	TranscriptionID string `json:"transcription_id"`
	ShareToken      string `json:"share_token"`
	Path            string `json:"path"`
}

// SharedTranscriptResponse is the public view of a shared transcript.
type SharedTranscriptResponse struct {
	Text      string           `json:"text"`
	Language  string           `json:"language,omitempty"`
	Summary   *SummaryResponse `json:"summary,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
