// Package llm provides provider-agnostic LLM configuration and client abstractions.
package llm

import "fmt"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, extraction, basic summarization
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: structured output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderAnthropic is the Anthropic/Claude provider
	ProviderAnthropic Provider = "anthropic"
)

// ParseProvider returns the provider named by s
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderGemini, ProviderAnthropic:
		return Provider(s), nil
	case "":
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unknown LLM provider %q", s)
	}
}

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// Temperature applies to every request; low values keep the output consistent
	Temperature float64
	// MaxTokens caps the response size where the provider requires it
	MaxTokens int
	// ResponseSchema is a JSON schema passed to providers that support structured output
	ResponseSchema string
	// SystemPrompt replaces the provider's built-in system instruction for JSON requests
	SystemPrompt string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.1,
		MaxTokens:   2048,
	}
}

// DefaultAnthropicConfig returns the default Anthropic configuration
func DefaultAnthropicConfig() *Config {
	return &Config{
		Provider: ProviderAnthropic,
		Models: map[ModelTier]string{
			TierLite:     "claude-3-5-haiku-latest",
			TierStandard: "claude-sonnet-4-0",
			TierAdvanced: "claude-opus-4-0",
		},
		Temperature: 0.1,
		MaxTokens:   2048,
	}
}

// ConfigFor returns the default configuration of a provider
func ConfigFor(provider Provider) *Config {
	if provider == ProviderAnthropic {
		return DefaultAnthropicConfig()
	}
	return DefaultGeminiConfig()
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := c.clone()
	newConfig.Models[tier] = model
	return newConfig
}

// WithResponseSchema returns a new Config carrying a structured output schema
func (c *Config) WithResponseSchema(schema string) *Config {
	newConfig := c.clone()
	newConfig.ResponseSchema = schema
	return newConfig
}

// WithSystemPrompt returns a new Config carrying a system instruction
func (c *Config) WithSystemPrompt(prompt string) *Config {
	newConfig := c.clone()
	newConfig.SystemPrompt = prompt
	return newConfig
}

func (c *Config) clone() *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models))
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	return &newConfig
}
