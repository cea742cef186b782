// Package llm sends conversations to a text-completion provider and pulls
// structured payloads out of the replies.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vc-assistant/internal/common/config"
	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/common/metrics"
)

var (
	ErrMissingAPIKey     = errors.New("MISSING_API_KEY")
	ErrUnknownProvider   = errors.New("UNKNOWN_PROVIDER")
	ErrCompletionFailed  = errors.New("COMPLETION_FAILED")
	ErrCompletionTimeout = errors.New("COMPLETION_TIMEOUT")
	ErrEmptyConversation = errors.New("EMPTY_CONVERSATION")
)

// Role is the speaker of a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"content"`
}

// Completer returns the provider's raw text for a conversation. A non-empty
// context map is serialized onto the final turn.
type Completer interface {
	Complete(ctx context.Context, conversation []Turn, context map[string]interface{}) (string, error)
}

// NewClient builds the configured provider, wrapped in a circuit breaker
// when enabled. It fails when no API key is configured.
func NewClient(ctx context.Context, cfg config.CompletionConfig, log logger.Logger) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: apis.completion.api_key is not set for provider %q", ErrMissingAPIKey, cfg.Provider)
	}

	var c Completer
	switch cfg.Provider {
	case "anthropic", "":
		c = NewAnthropicClient(cfg)
	case "genai":
		g, err := NewGenAIClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c = g
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	if cfg.Breaker.Enabled {
		c = NewBreakerCompleter(c, BreakerSettings{
			Name:             "completion-" + cfg.Provider,
			MinRequests:      cfg.Breaker.MinRequests,
			FailureThreshold: cfg.Breaker.FailureThreshold,
			OpenTimeout:      config.GetDuration(cfg.Breaker.OpenTimeout),
		}, log)
	}
	return c, nil
}

// withContext returns a copy of conversation whose last turn carries the
// serialized context.
func withContext(conversation []Turn, data map[string]interface{}) ([]Turn, error) {
	if len(conversation) == 0 {
		return nil, ErrEmptyConversation
	}

	out := make([]Turn, len(conversation))
	copy(out, conversation)
	if len(data) == 0 {
		return out, nil
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode context: %w", err)
	}
	last := len(out) - 1
	out[last].Text = out[last].Text + "\n\n[Context: " + string(encoded) + "]"
	return out, nil
}

// classify maps a provider error onto the package sentinels.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %v", ErrCompletionTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrCompletionFailed, err)
}

func observe(provider string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.CompletionRequests.WithLabelValues(provider, outcome).Inc()
	metrics.CompletionDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}
