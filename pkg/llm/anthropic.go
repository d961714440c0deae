package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultModel = "claude-3-5-haiku-latest"

// AnthropicGenerator implements TextGenerator with the Messages API.
type AnthropicGenerator struct {
	client  anthropic.Client
	models  map[string]string
	timeout time.Duration
}

// NewAnthropic builds a generator. models maps quality names (basic,
// standard, premium, ultra) to model ids; timeout bounds each call.
func NewAnthropic(apiKey string, models map[string]string, timeout time.Duration, opts ...option.RequestOption) *AnthropicGenerator {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &AnthropicGenerator{
		client:  anthropic.NewClient(opts...),
		models:  models,
		timeout: timeout,
	}
}

func (g *AnthropicGenerator) model(q Quality) string {
	if m, ok := g.models[q.String()]; ok && m != "" {
		return m
	}
	return defaultModel
}

// GenerateText sends prompt as a single user message and returns the
// concatenated text blocks of the reply.
func (g *AnthropicGenerator) GenerateText(ctx context.Context, prompt string, maxTokens int, temperature float64, quality Quality) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model(quality)),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages request failed: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
