// Package integrations adapts external services to the interfaces the
// pipeline consumes.
package integrations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/julianshen/repodoc/internal/provider"
)

// LLMCompleter wraps an LLMProvider to collect streamed text into a single
// string. It satisfies pipeline.Generator.
type LLMCompleter struct {
	provider provider.LLMProvider
	model    string
	logger   *slog.Logger
}

// NewLLMCompleter creates a new LLMCompleter.
func NewLLMCompleter(p provider.LLMProvider, model string, logger *slog.Logger) *LLMCompleter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMCompleter{provider: p, model: model, logger: logger}
}

// Generate sends one system and user prompt pair and returns the full
// response text.
func (c *LLMCompleter) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	req := provider.CompletionRequest{
		Model:     c.model,
		System:    systemPrompt,
		Messages:  []provider.Message{provider.NewUserMessage(userPrompt)},
		MaxTokens: maxTokens,
	}

	ch, err := c.provider.Stream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm complete: %w", err)
	}

	var (
		sb           strings.Builder
		streamErr    error
		inputTokens  int
		outputTokens int
		stopReason   string
	)
	for evt := range ch {
		if streamErr != nil {
			// Drain so the producer goroutine can exit.
			continue
		}
		switch evt.Type {
		case provider.EventTextDelta:
			sb.WriteString(evt.Text)
		case provider.EventUsage:
			inputTokens += evt.InputTokens
			outputTokens += evt.OutputTokens
			if evt.StopReason != "" {
				stopReason = evt.StopReason
			}
		case provider.EventError:
			streamErr = evt.Error
		}
	}
	if streamErr != nil {
		return "", fmt.Errorf("llm stream error: %w", streamErr)
	}

	c.logger.Debug("completion finished",
		"model", c.model,
		"input_tokens", inputTokens,
		"output_tokens", outputTokens,
		"stop_reason", stopReason,
	)
	if stopReason == "max_tokens" || stopReason == "length" {
		c.logger.Warn("completion truncated at token limit", "model", c.model, "max_tokens", maxTokens)
	}

	// Blank output is not an error here. The stages fall back on it.
	out := sb.String()
	if strings.TrimSpace(out) == "" {
		c.logger.Warn("completion returned no text", "model", c.model, "stop_reason", stopReason)
		return "", nil
	}
	return out, nil
}
