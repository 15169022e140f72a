// Package gateway adapts the generic LLM provider into the two calls the
// orchestrator needs: a contextual coaching reply and a summary refresh.
package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"run-coach-be/pkg/coach/prompt"
	"run-coach-be/pkg/llm"
)

// ModelGateway is the orchestrator's view of the remote model.
type ModelGateway interface {
	// Ask sends the assembled turn context and returns the parsed answer.
	Ask(ctx context.Context, askCtx prompt.AskContext) (*prompt.Answer, error)

	// Summarize refreshes the rolling conversation summary.
	Summarize(ctx context.Context, summaryPrompt string) (string, error)
}

type llmGateway struct {
	provider llm.LLMProvider
}

func New(provider llm.LLMProvider) ModelGateway {
	return &llmGateway{provider: provider}
}

func (g *llmGateway) Ask(ctx context.Context, askCtx prompt.AskContext) (*prompt.Answer, error) {
	history := []llm.Message{
		{Role: "system", Content: prompt.BuildSystem(askCtx)},
		{Role: "user", Content: askCtx.Message},
	}

	raw, err := g.provider.Chat(ctx, history, llm.WithTemperature(0.7))
	if err != nil {
		return nil, err
	}
	return prompt.ParseAnswer(raw), nil
}

func (g *llmGateway) Summarize(ctx context.Context, summaryPrompt string) (string, error) {
	history := []llm.Message{
		{Role: "system", Content: "You are a concise summarizer. Keep to 200 words max."},
		{Role: "user", Content: summaryPrompt},
	}

	raw, err := g.provider.Chat(ctx, history, llm.WithTemperature(0.5))
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(raw)
	// Some models answer with {"summary": "..."}; unwrap when they do.
	var wrapped struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil && wrapped.Summary != "" {
		return wrapped.Summary, nil
	}
	return text, nil
}
