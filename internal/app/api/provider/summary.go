package provider

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SummaryPrompt builds the instruction sent to chat models. The model must
// answer with a single JSON object matching SummaryContent.
func SummaryPrompt(text, languageHint string) string {
	var b strings.Builder
	b.WriteString("You summarize podcast and audio transcripts.\n")
	b.WriteString("Reply with one JSON object and nothing else, using exactly these keys:\n")
	b.WriteString(`{"short_summary": string (1-2 sentences), "long_summary": string (one or two paragraphs), `)
	b.WriteString(`"bullet_points": [string] (3 to 8 items), "keywords": [string] (up to 10), `)
	b.WriteString(`"sentiment": "positive" | "negative" | "neutral", "language": ISO 639-1 code}` + "\n")
	if languageHint != "" {
		fmt.Fprintf(&b, "Write the summary in the transcript language (%s).\n", languageHint)
	} else {
		b.WriteString("Write the summary in the transcript language.\n")
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(text)
	return b.String()
}

// ParseSummaryJSON decodes a model reply into SummaryContent. Markdown code
// fences around the object are tolerated.
func ParseSummaryJSON(raw string) (*SummaryContent, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		s = s[start : end+1]
	}

	var content SummaryContent
	if err := json.Unmarshal([]byte(s), &content); err != nil {
		return nil, fmt.Errorf("decode summary json: %w", err)
	}
	if strings.TrimSpace(content.ShortSummary) == "" && strings.TrimSpace(content.LongSummary) == "" {
		return nil, fmt.Errorf("summary json has no summary text")
	}
	return &content, nil
}
