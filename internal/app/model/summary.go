package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Sentiment classification of a transcript.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// StringList is stored as a JSON array in a text column.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// Summary is the optional LLM enrichment of a Transcription.
type Summary struct {
	ID              string     `json:"id" db:"id"`
	TranscriptionID string     `json:"transcription_id" db:"transcription_id"`
	ShortSummary    string     `json:"short_summary" db:"short_summary"`
	LongSummary     string     `json:"long_summary" db:"long_summary"`
	BulletPoints    StringList `json:"bullet_points" db:"bullet_points"`
	Keywords        StringList `json:"keywords" db:"keywords"`
	Sentiment       Sentiment  `json:"sentiment" db:"sentiment"`
	Language        string     `json:"language" db:"language"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// TableName returns the table name for Summary
func (Summary) TableName() string {
	return "summaries"
}
