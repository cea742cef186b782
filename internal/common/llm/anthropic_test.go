package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vc-assistant/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig(baseURL string) config.CompletionConfig {
	return config.CompletionConfig{
		Provider:     "anthropic",
		BaseURL:      baseURL,
		APIKey:       "test-key",
		Model:        "test-model",
		MaxTokens:    256,
		Timeout:      2000,
		SystemPrompt: "You are a VC assistant.",
	}
}

type wireRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func messageReply(content string) string {
	return `{"id":"msg_1","type":"message","role":"assistant","model":"test-model",` +
		`"content":` + content + `,"stop_reason":"end_turn","stop_sequence":null,` +
		`"usage":{"input_tokens":3,"output_tokens":2}}`
}

func messagesServer(t *testing.T, status int, body string, got *wireRequest) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.NotEmpty(t, r.Header.Get("Anthropic-Version"))
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAnthropicClient_Complete(t *testing.T) {
	var got wireRequest
	server := messagesServer(t, http.StatusOK, messageReply(`[{"type":"text","text":"Hello partner"}]`), &got)

	client := NewAnthropicClient(createTestConfig(server.URL))
	conversation := []Turn{
		{Role: RoleUser, Text: "hi"},
		{Role: RoleAssistant, Text: "hello"},
		{Role: RoleUser, Text: "what is new?"},
	}

	text, err := client.Complete(context.Background(), conversation, map[string]interface{}{"dealId": "deal-1"})

	require.NoError(t, err)
	assert.Equal(t, "Hello partner", text)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	require.Len(t, got.System, 1)
	assert.Equal(t, "You are a VC assistant.", got.System[0].Text)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	require.Len(t, got.Messages[2].Content, 1)
	assert.Equal(t, "what is new?\n\n[Context: {\"dealId\":\"deal-1\"}]", got.Messages[2].Content[0].Text)
	assert.Equal(t, "what is new?", conversation[2].Text, "caller's conversation must not be mutated")
}

func TestAnthropicClient_Complete_NoContext(t *testing.T) {
	var got wireRequest
	server := messagesServer(t, http.StatusOK, messageReply(`[{"type":"text","text":"ok"}]`), &got)

	client := NewAnthropicClient(createTestConfig(server.URL))
	_, err := client.Complete(context.Background(), []Turn{{Role: RoleUser, Text: "plain"}}, nil)

	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "plain", got.Messages[0].Content[0].Text)
}

func TestAnthropicClient_Complete_NoTextBlock(t *testing.T) {
	server := messagesServer(t, http.StatusOK, messageReply(`[]`), nil)

	client := NewAnthropicClient(createTestConfig(server.URL))
	text, err := client.Complete(context.Background(), []Turn{{Role: RoleUser, Text: "hi"}}, nil)

	assert.Empty(t, text)
	assert.True(t, errors.Is(err, ErrCompletionFailed), "got %v", err)
}

func TestAnthropicClient_Complete_ProviderError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	defer server.Close()

	client := NewAnthropicClient(createTestConfig(server.URL))
	_, err := client.Complete(context.Background(), []Turn{{Role: RoleUser, Text: "hi"}}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompletionFailed))
	assert.Equal(t, 1, calls, "provider errors are not retried")
}

func TestAnthropicClient_Complete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewAnthropicClient(createTestConfig(server.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, []Turn{{Role: RoleUser, Text: "hi"}}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompletionTimeout))
}

func TestAnthropicClient_Complete_EmptyConversation(t *testing.T) {
	client := NewAnthropicClient(createTestConfig("http://127.0.0.1:0"))
	_, err := client.Complete(context.Background(), nil, nil)
	assert.True(t, errors.Is(err, ErrEmptyConversation))
}

func TestNewClient(t *testing.T) {
	log := newTestLogger(t)

	t.Run("missing key fails fast", func(t *testing.T) {
		cfg := createTestConfig("http://localhost")
		cfg.APIKey = ""
		_, err := NewClient(context.Background(), cfg, log)
		assert.True(t, errors.Is(err, ErrMissingAPIKey))
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := createTestConfig("http://localhost")
		cfg.Provider = "mystery"
		_, err := NewClient(context.Background(), cfg, log)
		assert.True(t, errors.Is(err, ErrUnknownProvider))
	})

	t.Run("anthropic with breaker", func(t *testing.T) {
		cfg := createTestConfig("http://localhost")
		cfg.Breaker.Enabled = true
		cfg.Breaker.MinRequests = 3
		cfg.Breaker.FailureThreshold = 0.5
		c, err := NewClient(context.Background(), cfg, log)
		require.NoError(t, err)
		_, ok := c.(*BreakerCompleter)
		assert.True(t, ok)
	})
}
