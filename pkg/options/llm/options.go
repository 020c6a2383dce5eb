// Package llmopts provides model provider configuration options.
package llmopts

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/bookrag-io/bookrag/pkg/options"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions configures one model provider (embedding or chat).
type ProviderOptions struct {
	// Provider is the provider name (huggingface, openai).
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL is the API base address.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey is the API key or token.
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// Model is the model name.
	Model string `json:"model" mapstructure:"model"`

	// Temperature controls sampling randomness (chat only).
	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	// MaxTokens bounds the completion length (chat only).
	MaxTokens int `json:"max-tokens" mapstructure:"max-tokens"`

	// Timeout bounds each provider call.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewEmbeddingOptions creates defaults for the embedding provider.
func NewEmbeddingOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider: "huggingface",
		BaseURL:  "https://api-inference.huggingface.co",
		Model:    "sentence-transformers/all-MiniLM-L6-v2",
		Timeout:  60 * time.Second,
	}
}

// NewChatOptions creates defaults for the chat provider.
func NewChatOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:    "openai",
		BaseURL:     "https://api.openai.com",
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		MaxTokens:   400,
		Timeout:     60 * time.Second,
	}
}

// AddFlags adds flags to the flagset.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Provider, p+"provider", o.Provider, "Model provider name (huggingface, openai).")
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "Provider API base URL.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "Provider API key or token.")
	fs.StringVar(&o.Model, p+"model", o.Model, "Model name.")
	fs.Float64Var(&o.Temperature, p+"temperature", o.Temperature, "Sampling temperature (chat only).")
	fs.IntVar(&o.MaxTokens, p+"max-tokens", o.MaxTokens, "Maximum completion tokens (chat only).")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Provider request timeout.")
}

// Validate validates the options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("provider is required"))
	}
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("base-url is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("model is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	return errs
}

// ToConfigMap converts the options into a provider factory config map.
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":    o.BaseURL,
		"api_key":     o.APIKey,
		"embed_model": o.Model,
		"chat_model":  o.Model,
		"temperature": o.Temperature,
		"max_tokens":  o.MaxTokens,
		"timeout":     o.Timeout,
	}
}
