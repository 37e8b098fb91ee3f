package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/charmbracelet/log"

	"github.com/ibeckermayer/sentiview/internal/config"
	"github.com/ibeckermayer/sentiview/internal/store"
	"github.com/ibeckermayer/sentiview/internal/types"
)

// AnthropicProvider implements the Provider interface using Anthropic's Claude API
type AnthropicProvider struct {
	client    *anthropic.Client
	provider  string // e.g. "anthropic"
	model     string
	snapshots store.Snapshots
	logger    *log.Logger
}

// NewAnthropicProvider creates a new Anthropic provider. Exchanges are
// cached under snapshots for later inspection.
func NewAnthropicProvider(apiKey, model string, snapshots store.Snapshots, logger *log.Logger) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicProvider{
		client:    &client,
		provider:  config.ProviderAnthropic,
		model:     model,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Classify sends posts to Claude for sentiment labelling
func (c *AnthropicProvider) Classify(ctx context.Context, posts []types.Post) ([]types.Label, error) {
	prompt := buildPrompt(posts)

	// Prefill so the reply continues a JSON array (starting after the "[")
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock("[")),
		},
	})

	var responseText string
	if err == nil {
		for _, block := range message.Content {
			if block.Type == "text" {
				responseText = block.Text
				break
			}
		}
	}

	exchange := store.LLMExchange{
		Timestamp: time.Now(),
		Provider:  c.provider,
		Model:     c.model,
		Prompt:    prompt,
		Response:  responseText,
	}
	if err != nil {
		exchange.Error = err.Error()
	}
	if cachePath, cacheErr := c.snapshots.SaveLLMExchange(exchange); cacheErr != nil {
		c.logger.Warn("Failed to cache LLM exchange", "error", cacheErr)
	} else {
		c.logger.Debug("Cached LLM exchange", "path", cachePath)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to call Claude API: %w", err)
	}
	if responseText == "" {
		return nil, errors.New("claude returned empty response")
	}

	// The response continues from after the prefilled "["
	return ParseLabelResponse([]byte("["+responseText), posts)
}
