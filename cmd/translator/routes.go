package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vocalstream/translator/internal/asr"
	"github.com/vocalstream/translator/internal/orchestrator"
	"github.com/vocalstream/translator/internal/trace"
	"github.com/vocalstream/translator/internal/translate"
	"github.com/vocalstream/translator/internal/ws"
)

const defaultTraceSessionLimit = 20

type deps struct {
	asrRouter       *asr.Router[asr.Transcriber]
	translateRouter *translate.Router[translate.Backend]
	svcMgr          orchestrator.ServiceManager
	wsHandler       http.Handler
	traceStore      *trace.Store
	webHandler      *ws.Handler
}

// registerRoutes wires all HTTP endpoints to the shared mux.
func registerRoutes(mux *http.ServeMux, d deps) {
	mux.Handle("/ws/translate", d.wsHandler)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("GET /api/languages", handleLanguages)
	mux.HandleFunc("GET /api/engines", d.handleEngines)
	mux.HandleFunc("GET /api/translations/{sessionId}/{lang}", d.handlePollTranslations)
	mux.HandleFunc("GET /api/services", d.handleServices)
	mux.HandleFunc("POST /api/services/{name}/start", d.handleServiceStart)
	mux.HandleFunc("POST /api/services/{name}/stop", d.handleServiceStop)
	mux.HandleFunc("GET /api/services/{name}/status", d.handleServiceStatus)
	registerTraceRoutes(mux, d.traceStore)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleLanguages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(translate.LanguageName)
}

func (d deps) handleEngines(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"asr": d.asrRouter.Engines(),
		"mt":  d.translateRouter.Models(),
	})
}

// handlePollTranslations serves a session's web sink for one target
// language: new committed text since the caller's last poll, plus the
// current in-progress fragment (spec §4.6).
func (d deps) handlePollTranslations(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	lang := r.PathValue("lang")

	registry, ok := d.webHandler.WebRegistry(sessionID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	stream, ok := registry.Get(lang)
	if !ok {
		http.Error(w, "language not logged to web for this session", http.StatusNotFound)
		return
	}

	var committed, incomplete string
	if r.URL.Query().Get("full") == "true" {
		committed, incomplete = stream.Snapshot()
	} else {
		committed, incomplete = stream.PollNew()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"committed": committed, "incomplete": incomplete})
}

func (d deps) handleServices(w http.ResponseWriter, r *http.Request) {
	services, err := d.svcMgr.StatusAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(services)
}

func (d deps) handleServiceStart(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	gpuData, err := d.svcMgr.Start(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{"status": "starting", "detail": gpuData})
}

func (d deps) handleServiceStop(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	detail, err := d.svcMgr.Stop(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"status": "stopped", "detail": detail})
}

func (d deps) handleServiceStatus(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	info, err := d.svcMgr.Status(r.Context(), name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

func stopRunningServices(ctx context.Context, svcMgr orchestrator.ServiceManager, label string) {
	svcs, _ := svcMgr.StatusAll(ctx)
	for _, svc := range svcs {
		stopIfRunning(ctx, svcMgr, svc, label)
	}
}

func stopIfRunning(ctx context.Context, svcMgr orchestrator.ServiceManager, svc orchestrator.ServiceInfo, label string) {
	if svc.Status == orchestrator.StatusStopped {
		return
	}
	if _, err := svcMgr.Stop(ctx, svc.Name); err != nil {
		slog.Warn(label+" stop service", "name", svc.Name, "error", err)
	}
}

func registerTraceRoutes(mux *http.ServeMux, store *trace.Store) {
	mux.HandleFunc("GET /api/traces/sessions", func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			http.Error(w, "tracing disabled", http.StatusNotFound)
			return
		}
		limit := queryInt(r, "limit", defaultTraceSessionLimit)
		offset := queryInt(r, "offset", 0)
		sessions, total, err := store.ListSessions(limit, offset)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"sessions": sessions, "total": total})
	})

	mux.HandleFunc("GET /api/traces/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			http.Error(w, "tracing disabled", http.StatusNotFound)
			return
		}
		sess, utterances, err := store.GetSession(r.PathValue("id"))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"session": sess, "utterances": utterances})
	})

	mux.HandleFunc("GET /api/traces/sessions/{id}/utterances/{utteranceId}", func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			http.Error(w, "tracing disabled", http.StatusNotFound)
			return
		}
		utterance, spans, err := store.GetUtterance(r.PathValue("id"), r.PathValue("utteranceId"))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"utterance": utterance, "spans": spans})
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
