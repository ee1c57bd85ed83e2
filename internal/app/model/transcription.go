package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Transcription is the settled output of a completed job.
type Transcription struct {
	ID          string         `json:"id" db:"id"`
	OwnerID     string         `json:"owner_id" db:"owner_id"`
	AudioFileID sql.NullString `json:"-" db:"audio_file_id"`
	Text        string         `json:"text" db:"text"`
	Language    sql.NullString `json:"-" db:"language"`
	CostCents   int64          `json:"-" db:"cost_cents"`
	IsPublic    bool           `json:"is_public" db:"is_public"`
	ShareToken  sql.NullString `json:"-" db:"share_token"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// Cost returns the amount debited for this transcription.
func (t Transcription) Cost() decimal.Decimal {
	return DecimalFromCents(t.CostCents)
}

// TableName returns the table name for Transcription
func (Transcription) TableName() string {
	return "transcriptions"
}
