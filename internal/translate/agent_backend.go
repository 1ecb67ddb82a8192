package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/modelsettings"
	"github.com/openai/openai-go/v2/packages/param"
)

// AgentBackend routes translation requests to a hosted LLM provider using
// the openai-agents-go SDK, prompting the model to act as a translator.
// This is the "hosted-client" backend named in spec §6 for target languages
// not served by the self-hosted tokenizer+generate pipeline.
type AgentBackend struct {
	providers map[string]agents.ModelProvider
	models    map[string]string
	fallback  string
	maxTokens int
}

// NewAgentBackend creates an AgentBackend with the given fallback provider
// name and a max-output-tokens bound applied to every translation call.
func NewAgentBackend(fallback string, maxTokens int) *AgentBackend {
	return &AgentBackend{
		providers: make(map[string]agents.ModelProvider),
		models:    make(map[string]string),
		fallback:  fallback,
		maxTokens: maxTokens,
	}
}

// Register adds an SDK provider and default model for the given engine name.
func (a *AgentBackend) Register(engine string, provider agents.ModelProvider, defaultModel string) {
	a.providers[engine] = provider
	a.models[engine] = defaultModel
}

// Has reports whether a provider is registered for the given engine name.
func (a *AgentBackend) Has(engine string) bool {
	_, ok := a.providers[engine]
	return ok
}

// Translate asks the resolved provider's model to translate text from
// srcLang to tgtLang, treating the model as a one-shot, non-conversational
// translator (one agent run per call, no tool use, no multi-turn state).
func (a *AgentBackend) Translate(ctx context.Context, text, srcLang, tgtLang string) (string, error) {
	provider, model, err := a.resolve("")
	if err != nil {
		return "", err
	}

	instructions := fmt.Sprintf(
		"You are a real-time speech translator. Translate the user's %s text into %s. "+
			"Reply with only the translation, no explanation, no quotation marks.",
		languageLabel(srcLang), languageLabel(tgtLang),
	)

	agent := agents.New("translator").
		WithInstructions(instructions).
		WithModel(model).
		WithModelSettings(modelsettings.ModelSettings{
			MaxTokens: param.NewOpt(int64(a.maxTokens)),
		})

	runner := agents.Runner{Config: agents.RunConfig{
		ModelProvider:   provider,
		MaxTurns:        1,
		TracingDisabled: true,
	}}

	events, errCh, err := runner.RunStreamedChan(ctx, agent, text)
	if err != nil {
		return "", fmt.Errorf("translate stream start: %w", err)
	}

	var out strings.Builder
	for ev := range events {
		raw, ok := ev.(agents.RawResponsesStreamEvent)
		if !ok {
			continue
		}
		if raw.Data.Type != "response.output_text.delta" {
			continue
		}
		out.WriteString(raw.Data.Delta)
	}

	if streamErr := <-errCh; streamErr != nil {
		return "", fmt.Errorf("translate stream: %w", streamErr)
	}

	return strings.TrimSpace(out.String()), nil
}

func (a *AgentBackend) resolve(engine string) (agents.ModelProvider, string, error) {
	provider, ok := a.providers[engine]
	model := a.models[engine]
	if !ok {
		provider, ok = a.providers[a.fallback]
		model = a.models[a.fallback]
	}
	if !ok {
		return nil, "", fmt.Errorf("no translation provider for engine %q", engine)
	}
	return provider, model, nil
}

func languageLabel(code string) string {
	if name, ok := LanguageName[code]; ok {
		return name
	}
	return code
}
