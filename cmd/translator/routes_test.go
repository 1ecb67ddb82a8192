package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vocalstream/translator/internal/asr"
	"github.com/vocalstream/translator/internal/orchestrator"
	"github.com/vocalstream/translator/internal/transcript"
	"github.com/vocalstream/translator/internal/translate"
	"github.com/vocalstream/translator/internal/ws"
)

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(ctx context.Context, samples []float32, initPrompt string) ([]transcript.Word, error) {
	return nil, nil
}
func (fakeTranscriber) TranscribeFile(ctx context.Context, path string) error { return nil }

type fakeTranslateBackend struct{}

func (fakeTranslateBackend) Translate(ctx context.Context, text, srcLang, tgtLang string) (string, error) {
	return text, nil
}

type fakeServiceManager struct {
	statuses []orchestrator.ServiceInfo
}

func (f *fakeServiceManager) Start(ctx context.Context, name string) (json.RawMessage, error) {
	return json.RawMessage(`{"ok":true}`), nil
}
func (f *fakeServiceManager) Stop(ctx context.Context, name string) (json.RawMessage, error) {
	return json.RawMessage(`{"ok":true}`), nil
}
func (f *fakeServiceManager) Status(ctx context.Context, name string) (*orchestrator.ServiceInfo, error) {
	for _, s := range f.statuses {
		if s.Name == name {
			return &s, nil
		}
	}
	return &orchestrator.ServiceInfo{Name: name, Status: orchestrator.StatusStopped}, nil
}
func (f *fakeServiceManager) StatusAll(ctx context.Context) ([]orchestrator.ServiceInfo, error) {
	return f.statuses, nil
}

func testDeps() deps {
	asrRouter := asr.NewRouter(map[string]asr.Transcriber{"whisper": fakeTranscriber{}}, "whisper")
	translateRouter := translate.NewRouter(map[string]translate.Backend{"m2m100": fakeTranslateBackend{}}, "m2m100")
	handler := ws.NewHandler(ws.HandlerConfig{})
	return deps{
		asrRouter:       asrRouter,
		translateRouter: translateRouter,
		svcMgr:          &fakeServiceManager{statuses: []orchestrator.ServiceInfo{{Name: "asr-server", Status: orchestrator.StatusHealthy}}},
		wsHandler:       handler,
		webHandler:      handler,
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	registerRoutes(mux, testDeps())
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestHandleLanguages(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/languages")
	if err != nil {
		t.Fatalf("GET /api/languages: %v", err)
	}
	defer resp.Body.Close()

	var names map[string]string
	if err = json.NewDecoder(resp.Body).Decode(&names); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if names["en"] != "English" {
		t.Fatalf("names[en] = %q, want English", names["en"])
	}
}

func TestHandleEngines(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/engines")
	if err != nil {
		t.Fatalf("GET /api/engines: %v", err)
	}
	defer resp.Body.Close()

	var body map[string][]string
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body["asr"]) != 1 || body["asr"][0] != "whisper" {
		t.Fatalf("asr engines = %v, want [whisper]", body["asr"])
	}
	if len(body["mt"]) != 1 || body["mt"][0] != "m2m100" {
		t.Fatalf("mt engines = %v, want [m2m100]", body["mt"])
	}
}

func TestHandleServices(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/services")
	if err != nil {
		t.Fatalf("GET /api/services: %v", err)
	}
	defer resp.Body.Close()

	var services []orchestrator.ServiceInfo
	if err = json.NewDecoder(resp.Body).Decode(&services); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(services) != 1 || services[0].Name != "asr-server" {
		t.Fatalf("services = %+v, want one asr-server entry", services)
	}
}

func TestHandleServiceStart(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/api/services/asr-server/start", "application/json", nil)
	if err != nil {
		t.Fatalf("POST start: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
}

func TestHandlePollTranslations_UnknownSessionIs404(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/translations/missing-session/en")
	if err != nil {
		t.Fatalf("GET poll: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRegisterTraceRoutes_DisabledWhenNoStore(t *testing.T) {
	mux := http.NewServeMux()
	registerTraceRoutes(mux, nil)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/traces/sessions")
	if err != nil {
		t.Fatalf("GET traces: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 when tracing disabled", resp.StatusCode)
	}
}
