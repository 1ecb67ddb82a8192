package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/openai/openai-go/v2/packages/param"

	"github.com/vocalstream/translator/internal/asr"
	"github.com/vocalstream/translator/internal/orchestrator"
	"github.com/vocalstream/translator/internal/trace"
	"github.com/vocalstream/translator/internal/translate"
	"github.com/vocalstream/translator/internal/ws"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := loadAppConfig()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	svcRegistry := orchestrator.NewRegistry(map[string]orchestrator.ServiceMeta{
		"asr-server": {Category: "asr", HealthURL: cfg.ASRURL, ControlURL: cfg.ASRControlURL},
		"vad-server": {Category: "vad", HealthURL: cfg.VADURL, ControlURL: cfg.VADControlURL},
		"mt-server":  {Category: "mt", HealthURL: cfg.MTURL, ControlURL: cfg.MTControlURL},
	})
	svcMgr := newServiceManager(cfg, svcRegistry)

	asrRouter := initASR(cfg)
	translateRouter := initTranslate(cfg)
	warmupASR(cfg, asrRouter)

	if maybeRunReplay(cfg, asrRouter, translateRouter) {
		return
	}

	var traceStore *trace.Store
	if cfg.PostgresURL != "" {
		var traceErr error
		traceStore, traceErr = trace.Open(cfg.PostgresURL)
		if traceErr != nil {
			slog.Error("trace store open failed", "error", traceErr)
		} else {
			slog.Info("tracing enabled", "postgres", cfg.PostgresURL)
		}
	}

	handler := ws.NewHandler(ws.HandlerConfig{
		ASRRouter:       asrRouter,
		TranslateRouter: translateRouter,
		VADServerURL:    cfg.VADURL,
		OutputFolder:    cfg.OutputFolder,
		TraceStore:      traceStore,
	})

	mux := http.NewServeMux()
	registerRoutes(mux, deps{
		asrRouter:       asrRouter,
		translateRouter: translateRouter,
		svcMgr:          svcMgr,
		wsHandler:       handler,
		traceStore:      traceStore,
		webHandler:      handler,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: mux}

	go awaitShutdown(srv, svcMgr, envInt("SHUTDOWN_TIMEOUT_SECONDS", 30))

	slog.Info("translator starting", "addr", addr, "src_lang", cfg.SrcLang, "target_languages", cfg.TargetLanguages)

	if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("translator stopped")
}

// newServiceManager picks the orchestrator backend named by cfg.DeploymentMode.
// "compose" is grounded on the teacher's own docker-compose-based ML service
// lifecycle; "http" (default) matches this repo's lightweight control-server
// collaborators.
func newServiceManager(cfg appConfig, registry *orchestrator.Registry) orchestrator.ServiceManager {
	if cfg.DeploymentMode == "compose" {
		mgr := orchestrator.NewComposeManager(cfg.ComposeFile, cfg.ComposeEnvFile, cfg.ComposeProject, registry)
		mgr.PullAll(context.Background())
		return mgr
	}
	return orchestrator.NewHTTPControlManager(registry)
}

func awaitShutdown(srv *http.Server, svcMgr orchestrator.ServiceManager, timeoutSeconds int) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutting down", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSeconds)*time.Second)
	defer cancel()

	slog.Info("stopping collaborator services")
	stopRunningServices(ctx, svcMgr, "shutdown")

	srv.Shutdown(ctx)
}

func initASR(cfg appConfig) *asr.Router[asr.Transcriber] {
	backends := map[string]asr.Transcriber{}
	if cfg.ASRURL != "" {
		backends[cfg.ASREngine] = asr.NewClient(cfg.ASRURL, cfg.ASRPoolSize)
	}
	return asr.NewRouter(backends, cfg.ASREngine)
}

// warmupASR primes the ASR collaborator with a known-good clip at
// startup: the first real transcription call is typically far slower
// than steady-state calls, so this absorbs that cost before any
// session audio arrives.
func warmupASR(cfg appConfig, router *asr.Router[asr.Transcriber]) {
	if cfg.WarmupFile == "" {
		return
	}
	transcriber, err := router.Route(cfg.ASREngine)
	if err != nil {
		slog.Warn("asr warmup: no backend available", "error", err)
		return
	}
	if err = transcriber.TranscribeFile(context.Background(), cfg.WarmupFile); err != nil {
		slog.Warn("asr warmup failed", "path", cfg.WarmupFile, "error", err)
		return
	}
	slog.Info("asr warmed up", "path", cfg.WarmupFile)
}

func initTranslate(cfg appConfig) *translate.Router[translate.Backend] {
	backends := map[string]translate.Backend{}
	if cfg.MTURL != "" {
		backends[cfg.MTEngine] = translate.NewClient(cfg.MTURL, cfg.MTPoolSize)
	}
	if cfg.OpenAIAPIKey != "" {
		hosted := translate.NewAgentBackend("hosted", cfg.MTMaxTokens)
		hosted.Register("hosted", agents.NewOpenAIProvider(agents.OpenAIProviderParams{
			BaseURL:      param.NewOpt(cfg.OpenAIURL + "/v1/"),
			APIKey:       param.NewOpt(cfg.OpenAIAPIKey),
			UseResponses: param.NewOpt(true),
		}), cfg.OpenAIModel)
		backends["hosted"] = hosted
	}
	fallback := cfg.MTEngine
	if _, ok := backends[fallback]; !ok {
		fallback = "hosted"
	}
	return translate.NewRouter(backends, fallback)
}
