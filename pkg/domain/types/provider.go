package types

import "fmt"

// Provider represents an external AI provider an API key belongs to
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	ProviderGemini Provider = "gemini"
	ProviderOther  Provider = "other"
)

// AllProviders returns all valid providers
func AllProviders() []Provider {
	return []Provider{
		ProviderOpenAI,
		ProviderClaude,
		ProviderGemini,
		ProviderOther,
	}
}

// IsValid checks if the provider is valid
func (p Provider) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderClaude, ProviderGemini, ProviderOther:
		return true
	default:
		return false
	}
}

// String returns the string representation of the provider
func (p Provider) String() string {
	return string(p)
}

// ParseProvider parses a string into a Provider
func ParseProvider(s string) (Provider, error) {
	p := Provider(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid provider: %s", s)
	}
	return p, nil
}
