package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vocalstream/translator/internal/asr"
	"github.com/vocalstream/translator/internal/audio"
	"github.com/vocalstream/translator/internal/metrics"
	"github.com/vocalstream/translator/internal/pipeline"
	"github.com/vocalstream/translator/internal/sink"
	"github.com/vocalstream/translator/internal/trace"
	"github.com/vocalstream/translator/internal/translate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16384,
	WriteBufferSize: 16384,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandlerConfig holds the shared collaborator clients for all sessions.
type HandlerConfig struct {
	ASRRouter       *asr.Router[asr.Transcriber]
	TranslateRouter *translate.Router[translate.Backend]
	VADServerURL    string
	OutputFolder    string
	TraceStore      *trace.Store
}

// Handler manages WebSocket translation sessions.
type Handler struct {
	cfg HandlerConfig

	mu        sync.RWMutex
	registries map[string]*sink.Registry
}

// NewHandler creates a WebSocket handler bound to shared collaborator clients.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg, registries: make(map[string]*sink.Registry)}
}

// WebRegistry returns the web-sink registry for an active session, used by
// the HTTP polling endpoints in cmd/translator/routes.go.
func (h *Handler) WebRegistry(sessionID string) (*sink.Registry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.registries[sessionID]
	return r, ok
}

// sessionMetadata is the first text frame sent by the client, naming the
// source language, target languages, and ASR/buffer-trimming configuration
// for this connection (spec §2, §4.3).
type sessionMetadata struct {
	Codec                 string   `json:"codec"`
	SampleRate            int      `json:"sample_rate"`
	SrcLang               string   `json:"src_lang"`
	TargetLanguages       []string `json:"target_languages"`
	ASREngine             string   `json:"asr_engine"`
	MTEngine              string   `json:"mt_engine"`
	BufferTrimmingMode    string   `json:"buffer_trimming_mode"`
	BufferTrimmingSeconds float64  `json:"buffer_trimming_seconds"`
	LogToWeb              bool     `json:"log_to_web"`
	LogToConsole          *bool    `json:"log_to_console"`
}

// ServeHTTP upgrades the connection and runs the translation session.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.runSession(conn)
}

func (h *Handler) runSession(conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	meta, err := readMetadata(conn)
	if err != nil {
		slog.Error("read metadata", "error", err)
		return
	}
	if err = validateMetadata(meta); err != nil {
		sendError(conn, err)
		return
	}

	sessionID := uuid.NewString()
	codec := audio.Codec(meta.Codec)
	sampleRate := meta.SampleRate
	if sampleRate <= 0 {
		sampleRate = audio.SampleRate
	}

	tracer := h.startTracer(sessionID, meta)
	if tracer != nil {
		defer func() {
			tracer.Close()
			_ = h.cfg.TraceStore.EndSession(sessionID)
		}()
	}

	registry := sink.NewRegistry()
	h.mu.Lock()
	h.registries[sessionID] = registry
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.registries, sessionID)
		h.mu.Unlock()
	}()

	session, err := h.buildSession(sessionID, meta, tracer, registry)
	if err != nil {
		sendError(conn, err)
		return
	}

	sendEvent := newEventSender(conn)
	session.Start(ctx, sendEvent)
	defer session.Stop()

	metrics.SessionsTotal.Inc()
	metrics.SessionsActive.Inc()
	defer metrics.SessionsActive.Dec()

	slog.Info("translation session started", "session_id", sessionID, "src_lang", meta.SrcLang, "target_languages", meta.TargetLanguages, "asr_engine", meta.ASREngine)

	runReadLoop(conn, session, codec, sampleRate)

	slog.Info("translation session ended", "session_id", sessionID)
}

func validateMetadata(meta *sessionMetadata) error {
	if meta.SrcLang == "" {
		return fmt.Errorf("src_lang is required")
	}
	return pipeline.Validate(meta.SrcLang, meta.TargetLanguages)
}

func (h *Handler) buildSession(sessionID string, meta *sessionMetadata, tracer *trace.Tracer, registry *sink.Registry) (*pipeline.Session, error) {
	asrEngine := orDefault(meta.ASREngine, "whisper")
	transcriber, err := h.cfg.ASRRouter.Route(asrEngine)
	if err != nil {
		return nil, err
	}

	trimMode := asr.TrimMode(orDefault(meta.BufferTrimmingMode, string(asr.TrimSegment)))
	trimSeconds := meta.BufferTrimmingSeconds
	if trimSeconds <= 0 {
		trimSeconds = 15
	}
	trim := asr.TrimConfig{Mode: trimMode, Seconds: trimSeconds}

	var vad asr.VAD
	if h.cfg.VADServerURL != "" {
		vad = asr.NewVADClient(h.cfg.VADServerURL)
	} else {
		vad = asr.NewPassthroughVAD()
	}

	vac, err := asr.NewVACProcessor(transcriber, trim, vad)
	if err != nil {
		return nil, err
	}

	srcSinks := h.buildSinks(meta.SrcLang, meta, registry, 93)
	mtEngine := orDefault(meta.MTEngine, "m2m100")

	targets := make([]translate.Target, 0, len(meta.TargetLanguages))
	for _, lang := range meta.TargetLanguages {
		backend, routeErr := h.cfg.TranslateRouter.Route(mtEngine)
		if routeErr != nil {
			return nil, routeErr
		}
		targets = append(targets, translate.Target{
			Lang:    lang,
			Backend: backend,
			Sinks:   h.buildSinks(lang, meta, registry, 36),
		})
	}

	tp := translate.NewPipeline(meta.SrcLang, srcSinks, targets)

	return pipeline.NewSession(pipeline.Config{
		SessionID:       sessionID,
		SrcLang:         meta.SrcLang,
		TargetLanguages: meta.TargetLanguages,
		VAC:             vac,
		Translation:     tp,
		Tracer:          tracer,
	}), nil
}

func (h *Handler) buildSinks(lang string, meta *sessionMetadata, registry *sink.Registry, color int) []translate.Sink {
	var sinks []translate.Sink

	logToConsole := true
	if meta.LogToConsole != nil {
		logToConsole = *meta.LogToConsole
	}
	if logToConsole {
		sinks = append(sinks, sink.NewConsole(lang, color))
	}

	if h.cfg.OutputFolder != "" {
		path := fmt.Sprintf("%s/%s.md", h.cfg.OutputFolder, lang)
		if f, err := sink.NewFile(path, lang); err == nil {
			sinks = append(sinks, f)
		} else {
			slog.Warn("open file sink failed", "lang", lang, "error", err)
		}
	}

	if meta.LogToWeb {
		sinks = append(sinks, registry.Register(lang))
	}

	return sinks
}

func (h *Handler) startTracer(sessionID string, meta *sessionMetadata) *trace.Tracer {
	if h.cfg.TraceStore == nil {
		return nil
	}
	metaJSON, _ := json.Marshal(meta)
	_ = h.cfg.TraceStore.CreateSession(sessionID, string(metaJSON))
	return trace.NewTracer(h.cfg.TraceStore, sessionID)
}

func runReadLoop(conn *websocket.Conn, session *pipeline.Session, codec audio.Codec, sampleRate int) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		samples, srcRate, err := audio.Decode(data, codec, sampleRate)
		if err != nil {
			slog.Warn("decode audio chunk", "error", err)
			continue
		}
		metrics.AudioChunksTotal.Inc()
		session.InsertAudio(audio.Resample(samples, srcRate, audio.SampleRate))
	}
}

func orDefault(val, fallback string) string {
	if val != "" {
		return val
	}
	return fallback
}

func newEventSender(conn *websocket.Conn) pipeline.EventCallback {
	var mu sync.Mutex
	return func(ev pipeline.Event) {
		mu.Lock()
		defer mu.Unlock()
		jsonBytes, err := json.Marshal(ev)
		if err != nil {
			return
		}
		if err = conn.WriteMessage(websocket.TextMessage, jsonBytes); err != nil {
			slog.Error("write event", "error", err)
		}
	}
}

func sendError(conn *websocket.Conn, err error) {
	jsonBytes, _ := json.Marshal(pipeline.Event{Type: "error", Text: err.Error()})
	_ = conn.WriteMessage(websocket.TextMessage, jsonBytes)
}

func readMetadata(conn *websocket.Conn) (*sessionMetadata, error) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var meta sessionMetadata
	if err = json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
