package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vocalstream/translator/internal/asr"
	"github.com/vocalstream/translator/internal/metrics"
	"github.com/vocalstream/translator/internal/trace"
	"github.com/vocalstream/translator/internal/transcript"
	"github.com/vocalstream/translator/internal/translate"
)

// processIterInterval is how often the session's background loop asks the
// VAC-wrapped ASR processor for a new hypothesis, independent of how often
// audio chunks arrive over the websocket.
const processIterInterval = 500 * time.Millisecond

// Config holds everything one session's Pipeline needs to wire C4→C3→C5→C6.
type Config struct {
	SessionID       string
	SrcLang         string
	TargetLanguages []string
	VAC             *asr.VACProcessor
	Translation     *translate.Pipeline
	Tracer          *trace.Tracer
}

// Event is a pipeline output sent back to the client over the websocket:
// a committed or in-progress source-language transcript update.
type Event struct {
	Type       string  `json:"type"`
	Lang       string  `json:"lang"`
	Text       string  `json:"text"`
	IsComplete bool    `json:"is_complete"`
	LatencyMs  float64 `json:"latency_ms,omitempty"`
}

// EventCallback is invoked for each transcript update produced by the session.
type EventCallback func(Event)

// Session owns the full C7(audio in)→C4(VAC)→C3(ASR)→C5(translation fan-out)
// →C6(sinks) chain for a single websocket connection (spec §2, §4).
type Session struct {
	cfg       Config
	utterID   string
	startedAt time.Time
	finalText string
	onEvent   EventCallback
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewSession creates a pipeline session. Call Start to begin the background
// transcription loop and InsertAudio to feed it audio.
func NewSession(cfg Config) *Session {
	return &Session{cfg: cfg}
}

// InsertAudio forwards one chunk of 16kHz mono float32 audio into the VAC
// wrapper. Safe to call from the websocket read loop; non-blocking.
func (s *Session) InsertAudio(samples []float32) {
	s.cfg.VAC.InsertAudio(samples)
}

// translationsSnapshot is a trivial trace payload recorded at utterance end;
// the per-language sinks hold the authoritative translated text, this is
// only a marker for the trace store.
func (s *Session) translationsSnapshot() string {
	return fmt.Sprintf(`{"target_languages":%d}`, len(s.cfg.TargetLanguages))
}

// Start launches the background loop that periodically asks the ASR
// processor for a new hypothesis and fans committed text out to
// translation. onEvent is called with every source-language update.
func (s *Session) Start(ctx context.Context, onEvent EventCallback) {
	s.onEvent = onEvent
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.startedAt = time.Now()
	if s.cfg.Tracer != nil {
		s.utterID = s.cfg.Tracer.StartUtterance()
	}

	s.cfg.Translation.Start(runCtx)

	go s.run(runCtx)
}

// Stop halts the background loop and the translation fan-out worker.
func (s *Session) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	s.cfg.Translation.Stop()
	if s.cfg.Tracer != nil && s.utterID != "" {
		durationMs := float64(time.Since(s.startedAt).Milliseconds())
		s.cfg.Tracer.EndUtterance(s.utterID, durationMs, s.finalText, s.translationsSnapshot(), "ok")
	}
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(processIterInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.finish(context.Background())
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Session) tick(ctx context.Context) {
	start := time.Now()
	committed, uncommitted := s.cfg.VAC.ProcessIter(ctx)
	metrics.HypothesisCommitLatency.Observe(time.Since(start).Seconds())
	metrics.AudioBufferSeconds.Set(s.cfg.VAC.AudioSeconds())

	if !committed.IsEmpty() {
		metrics.E2EDuration.Observe(time.Since(start).Seconds())
		s.commit(committed)
	}
	if !uncommitted.IsEmpty() {
		s.emitUncommitted(uncommitted)
	}
}

func (s *Session) finish(ctx context.Context) {
	committed, _ := s.cfg.VAC.ProcessIter(ctx)
	if !committed.IsEmpty() {
		s.commit(committed)
	}
}

func (s *Session) commit(seg transcript.Segment) {
	s.emit(Event{Type: "transcript", Lang: s.cfg.SrcLang, Text: seg.Text, IsComplete: true})
	s.finalText += seg.Text + " "

	if err := s.cfg.Translation.PutText(seg, true); err != nil {
		slog.Warn("translation put_text failed", "session", s.cfg.SessionID, "error", err)
	}

	if s.cfg.Tracer != nil && s.utterID != "" {
		s.cfg.Tracer.RecordSpan(s.utterID, "commit", time.Now(), 0, "", seg.Text, "ok", "")
	}
}

func (s *Session) emitUncommitted(seg transcript.Segment) {
	s.emit(Event{Type: "transcript", Lang: s.cfg.SrcLang, Text: seg.Text, IsComplete: false})
	if err := s.cfg.Translation.PutText(seg, false); err != nil {
		slog.Debug("skip uncommitted translation", "error", err)
	}
}

func (s *Session) emit(e Event) {
	if s.onEvent != nil {
		s.onEvent(e)
	}
}

// Validate checks that the session's target languages are non-empty and
// distinct from the source language, failing fast at construction time.
func Validate(srcLang string, targetLanguages []string) error {
	if len(targetLanguages) == 0 {
		return fmt.Errorf("pipeline: target_languages must be non-empty")
	}
	for _, lang := range targetLanguages {
		if lang == srcLang {
			return fmt.Errorf("pipeline: target language %q equals source language", lang)
		}
	}
	return nil
}
