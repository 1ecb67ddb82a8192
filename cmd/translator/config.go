package main

import (
	"os"
	"strconv"

	"github.com/vocalstream/translator/internal/config"
)

// appConfig bundles the validated config.Config with deployment-only
// settings that internal/config has no business validating: API keys,
// the trace database DSN, and service-control URLs for the orchestrator.
type appConfig struct {
	config.Config

	OpenAIAPIKey  string
	OpenAIURL     string
	OpenAIModel   string
	PostgresURL   string
	ASRControlURL string
	VADControlURL string
	MTControlURL  string

	// DeploymentMode selects how the orchestrator reaches the ASR/VAD/MT
	// collaborators: "http" (default) talks to their control servers
	// directly, "compose" shells out to docker compose instead (for
	// deployments where the translator owns the collaborators' lifecycle).
	DeploymentMode string
	ComposeFile    string
	ComposeEnvFile string
	ComposeProject string
}

func loadAppConfig() (appConfig, error) {
	base, err := config.Load(envStr("TRANSLATOR_TUNING_FILE", "translator.json"))
	if err != nil {
		return appConfig{}, err
	}

	return appConfig{
		Config:         base,
		OpenAIAPIKey:   envStr("OPENAI_API_KEY", ""),
		OpenAIURL:      envStr("OPENAI_URL", "https://api.openai.com"),
		OpenAIModel:    envStr("OPENAI_MODEL", "gpt-4.1-nano"),
		PostgresURL:    envStr("POSTGRES_URL", ""),
		ASRControlURL:  envStr("ASR_CONTROL_URL", ""),
		VADControlURL:  envStr("VAD_CONTROL_URL", ""),
		MTControlURL:   envStr("MT_CONTROL_URL", ""),
		DeploymentMode: envStr("DEPLOYMENT_MODE", "http"),
		ComposeFile:    envStr("COMPOSE_FILE", "docker-compose.yml"),
		ComposeEnvFile: envStr("COMPOSE_ENV_FILE", ".env"),
		ComposeProject: envStr("COMPOSE_PROJECT_NAME", "translator"),
	}, nil
}

func envStr(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
