package llm

import (
	"context"
	"fmt"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
)

const jsonSystemPrompt = "You are a structured data extractor. Respond with a single JSON object and nothing else."

// promptFunc sends one request and returns the text of the first content block
type promptFunc func(systemPrompt, userPrompt, schema, apiKey string, settings types.RequestSettings) (string, error)

func llmkitPrompt(systemPrompt, userPrompt, schema, apiKey string, settings types.RequestSettings) (string, error) {
	resp, err := anthropic.PromptWithSettings(systemPrompt, userPrompt, schema, apiKey, settings)
	if err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	return resp.Content[0].Text, nil
}

// AnthropicClient implements Client for Anthropic models through llmkit
type AnthropicClient struct {
	apiKey string
	config *Config
	prompt promptFunc
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(config *Config, apiKey string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config == nil {
		config = DefaultAnthropicConfig()
	}
	return &AnthropicClient{
		apiKey: apiKey,
		config: config,
		prompt: llmkitPrompt,
	}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *AnthropicClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, "", prompt, "", tier)
}

// GenerateJSON generates JSON content. When the config carries a response schema
// the request uses structured output.
func (c *AnthropicClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	systemPrompt := c.config.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = jsonSystemPrompt
	}
	text, err := c.generate(ctx, systemPrompt, prompt, c.config.ResponseSchema, tier)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// generate runs the blocking llmkit call and gives up when ctx ends first.
// The abandoned call finishes in the background and its result is dropped.
func (c *AnthropicClient) generate(ctx context.Context, systemPrompt, userPrompt, schema string, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	settings := types.RequestSettings{
		Model:       modelName,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := c.prompt(systemPrompt, userPrompt, schema, c.apiKey, settings)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", &GenerationError{Provider: ProviderAnthropic, Model: modelName, Message: "request abandoned", Cause: ctx.Err()}
	case r := <-done:
		if r.err != nil {
			return "", &GenerationError{Provider: ProviderAnthropic, Model: modelName, Message: "failed to generate content", Cause: r.err}
		}
		return r.text, nil
	}
}

// GetModel returns the model name for a tier
func (c *AnthropicClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; llmkit holds no long-lived resources
func (c *AnthropicClient) Close() error {
	return nil
}
