// Package ai adapts the Anthropic messages API for content generation.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/meetscribe/backend/internal/config"
	"github.com/meetscribe/backend/internal/domain"
)

// Generator produces text completions for rendered prompts.
type Generator struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	log       *slog.Logger
}

// NewGenerator creates a Generator from configuration.
func NewGenerator(cfg config.AIConfig, logger *slog.Logger) *Generator {
	return &Generator{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     anthropic.Model(cfg.Model),
		maxTokens: int64(cfg.MaxTokens),
		log:       logger.With("adapter", "ai"),
	}
}

// NewGeneratorWithURL creates a Generator pointed at a custom API endpoint
// (for testing).
func NewGeneratorWithURL(baseURL, apiKey, model string, maxTokens int64, logger *slog.Logger) *Generator {
	return &Generator{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL)),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		log:       logger.With("adapter", "ai"),
	}
}

// Generate sends one prompt and returns the model's text response.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", domain.NewTransientError("ai.generate", err)
	}

	if len(msg.Content) == 0 {
		return "", domain.NewPermanentError("ai.generate", fmt.Errorf("empty response"))
	}

	text := strings.TrimSpace(msg.Content[0].Text)
	if text == "" {
		return "", domain.NewPermanentError("ai.generate", fmt.Errorf("response contains no text"))
	}

	g.log.DebugContext(ctx, "completion generated", slog.Int("chars", len(text)))
	return text, nil
}
