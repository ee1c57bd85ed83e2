package model

import (
	"database/sql"
	"time"
)

// JobStatus is the processing state of an AudioFile.
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// IsTerminal reports whether no worker will move the job further on its own.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// AudioFile is one ingested media item and its processing state. It doubles as the job record.
type AudioFile struct {
	ID                  string          `json:"id" db:"id"`
	OwnerID             string          `json:"owner_id" db:"owner_id"`
	LocationRef         string          `json:"-" db:"location_ref"`
	OriginalFilename    string          `json:"original_filename" db:"original_filename"`
	ContentType         string          `json:"content_type" db:"content_type"`
	SizeBytes           int64           `json:"size_bytes" db:"size_bytes"`
	DurationSeconds     sql.NullFloat64 `json:"-" db:"duration_seconds"`
	Status              JobStatus       `json:"status" db:"status"`
	ErrorReason         sql.NullString  `json:"-" db:"error_reason"`
	Attempts            int             `json:"attempts" db:"attempts"`
	ProcessingStartedAt sql.NullTime    `json:"-" db:"processing_started_at"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for AudioFile
func (AudioFile) TableName() string {
	return "audio_files"
}
