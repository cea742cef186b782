package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vc-assistant/internal/common/config"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient calls the Messages API through the official SDK. The SDK's
// own retries are disabled; the caller decides what a failure means.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	system    string
}

func NewAnthropicClient(cfg config.CompletionConfig) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	if timeout := config.GetDuration(cfg.Timeout); timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		system:    cfg.SystemPrompt,
	}
}

// Complete sends the conversation and returns the first text block of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, conversation []Turn, data map[string]interface{}) (text string, err error) {
	start := time.Now()
	defer func() { observe("anthropic", start, err) }()

	turns, err := withContext(conversation, data)
	if err != nil {
		return "", err
	}

	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := anthropic.NewTextBlock(t.Text)
		if t.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  messages,
	}
	if c.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: c.system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", classify(ctx, err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text block in reply (stop reason %q)", ErrCompletionFailed, msg.StopReason)
}

func (c *AnthropicClient) String() string {
	return fmt.Sprintf("anthropic:%s", c.model)
}
