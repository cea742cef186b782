package llm

import (
	"context"
	"fmt"
	"time"

	"vc-assistant/internal/common/config"

	"google.golang.org/genai"
)

// GenAIClient calls Gemini through google.golang.org/genai.
type GenAIClient struct {
	client    *genai.Client
	model     string
	maxTokens int32
	system    string
}

func NewGenAIClient(ctx context.Context, cfg config.CompletionConfig) (*GenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GenAI API key is required", ErrMissingAPIKey)
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIClient{
		client:    client,
		model:     cfg.Model,
		maxTokens: int32(cfg.MaxTokens),
		system:    cfg.SystemPrompt,
	}, nil
}

// Complete maps assistant turns onto the model role and returns the reply text.
func (c *GenAIClient) Complete(ctx context.Context, conversation []Turn, data map[string]interface{}) (text string, err error) {
	start := time.Now()
	defer func() { observe("genai", start, err) }()

	turns, err := withContext(conversation, data)
	if err != nil {
		return "", err
	}

	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		var role genai.Role = genai.RoleUser
		if t.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	genCfg := &genai.GenerateContentConfig{MaxOutputTokens: c.maxTokens}
	if c.system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(c.system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		return "", classify(ctx, err)
	}
	return resp.Text(), nil
}
