package trace

import "time"

// Session represents one WebSocket streaming connection.
type Session struct {
	ID             string     `json:"id"`
	Metadata       string     `json:"metadata"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	UtteranceCount int        `json:"utterance_count,omitempty"`
}

// Utterance represents one traced stretch of a session's speech.
// internal/pipeline.Session records a single utterance per session, from
// Start to Stop; VAC utterance boundaries do not start new ones.
type Utterance struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	StartedAt    time.Time `json:"started_at"`
	DurationMs   float64   `json:"duration_ms,omitempty"`
	Transcript   string    `json:"transcript,omitempty"`
	Translations string    `json:"translations,omitempty"` // JSON object supplied by the caller
	Status       string    `json:"status"`
	SpanCount    int       `json:"span_count,omitempty"`
}

// Span represents an individual pipeline stage record. internal/pipeline.Session
// records one "commit" span per committed source segment.
type Span struct {
	ID          string    `json:"id"`
	UtteranceID string    `json:"utterance_id"`
	Name        string    `json:"name"`
	StartedAt   time.Time `json:"started_at"`
	DurationMs  float64   `json:"duration_ms"`
	Input       string    `json:"input,omitempty"`
	Output      string    `json:"output,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
}
