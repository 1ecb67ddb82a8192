package trace

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// maxTraceFieldLen caps the length of transcript/translation/input/output
	// strings stored in trace spans to avoid bloating the trace database.
	maxTraceFieldLen = 500

	// traceChannelBuffer is how many trace messages can queue before the
	// background drain goroutine writes them to the store.
	traceChannelBuffer = 64
)

type traceMsg struct {
	kind string // "utterance_create", "utterance_update", "span"
	// utterance fields
	utteranceID  string
	sessionID    string
	durationMs   float64
	transcript   string
	translations string
	status       string
	// span fields
	span Span
}

// Tracer writes trace data asynchronously via a buffered channel.
// All methods are nil-safe (no-op on nil receiver).
type Tracer struct {
	store     *Store
	sessionID string
	ch        chan traceMsg
	done      chan struct{}
}

// NewTracer creates a tracer bound to a session.
// Launches a background goroutine (drain) that writes trace messages to the
// store sequentially. Callers MUST call Close() when done to flush pending
// writes and stop the goroutine — otherwise writes are lost and the goroutine leaks.
func NewTracer(store *Store, sessionID string) *Tracer {
	t := &Tracer{
		store:     store,
		sessionID: sessionID,
		ch:        make(chan traceMsg, traceChannelBuffer),
		done:      make(chan struct{}),
	}
	go t.drain()
	return t
}

func (t *Tracer) drain() {
	defer close(t.done)
	for msg := range t.ch {
		t.handle(msg)
	}
}

func (t *Tracer) handle(m traceMsg) {
	err := t.dispatch(m)
	if err != nil {
		slog.Warn("trace write failed", "kind", m.kind, "error", err)
	}
}

func (t *Tracer) dispatch(m traceMsg) error {
	if m.kind == "utterance_create" {
		return t.store.CreateUtterance(m.utteranceID, m.sessionID)
	}
	if m.kind == "utterance_update" {
		return t.store.UpdateUtterance(m.utteranceID, m.durationMs, m.transcript, m.translations, m.status)
	}
	if m.kind == "span" {
		return t.store.CreateSpan(m.span)
	}
	return nil
}

// StartUtterance begins a new utterance and returns its ID.
func (t *Tracer) StartUtterance() string {
	if t == nil {
		return ""
	}
	id := uuid.NewString()
	t.ch <- traceMsg{kind: "utterance_create", utteranceID: id, sessionID: t.sessionID}
	return id
}

// EndUtterance finalizes an utterance with its committed transcript and a
// caller-supplied translations payload (a pre-marshaled JSON object).
func (t *Tracer) EndUtterance(utteranceID string, durationMs float64, transcript, translations, status string) {
	if t == nil {
		return
	}
	t.ch <- traceMsg{
		kind:         "utterance_update",
		utteranceID:  utteranceID,
		durationMs:   durationMs,
		transcript:   truncate(transcript, maxTraceFieldLen),
		translations: truncate(translations, maxTraceFieldLen),
		status:       status,
	}
}

// RecordSpan records a completed pipeline-stage span.
func (t *Tracer) RecordSpan(utteranceID, name string, startedAt time.Time, durationMs float64, input, output, status, errMsg string) {
	if t == nil {
		return
	}
	t.ch <- traceMsg{
		kind: "span",
		span: Span{
			ID:          uuid.NewString(),
			UtteranceID: utteranceID,
			Name:        name,
			StartedAt:   startedAt,
			DurationMs:  durationMs,
			Input:       truncate(input, maxTraceFieldLen),
			Output:      truncate(output, maxTraceFieldLen),
			Status:      status,
			Error:       errMsg,
		},
	}
}

// Close drains pending writes and shuts down the background goroutine.
func (t *Tracer) Close() {
	if t == nil {
		return
	}
	close(t.ch)
	<-t.done
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
