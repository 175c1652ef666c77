package config

import (
	"fmt"
	"strings"
)

// ProviderName identifies a completion provider implementation.
type ProviderName string

const (
	// ProviderOpenAI uses the OpenAI chat completions API.
	ProviderOpenAI ProviderName = "openai"
	// ProviderHuggingFace uses the Hugging Face inference API.
	ProviderHuggingFace ProviderName = "huggingface"
)

// UnmarshalText implements encoding.TextUnmarshaler for ProviderName.
func (p *ProviderName) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "openai", "huggingface":
		*p = ProviderName(v)
		return nil
	default:
		return fmt.Errorf("invalid ProviderName: %q (valid options: openai, huggingface)", v)
	}
}

// OpenAIConfig contains OpenAI provider configuration.
type OpenAIConfig struct {
	APIKey  string `env:"API_KEY"`
	BaseURL string `env:"BASE_URL"`
}

// HuggingFaceConfig contains Hugging Face provider configuration.
type HuggingFaceConfig struct {
	APIKey  string `env:"API_KEY"`
	BaseURL string `env:"BASE_URL"`
}

// ProviderConfig groups completion provider configuration.
type ProviderConfig struct {
	// Name selects which provider serves completions.
	Name ProviderName `env:"PROVIDER" envDefault:"openai"`

	// OpenAI configuration (used when Name=openai).
	OpenAI OpenAIConfig `envPrefix:"OPENAI_"`

	// HuggingFace configuration (used when Name=huggingface).
	HuggingFace HuggingFaceConfig `envPrefix:"HUGGINGFACE_"`
}
