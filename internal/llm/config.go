// Package llm provides the multimodal model client used for page analysis.
package llm

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider, the only one implemented.
const ProviderGemini Provider = "gemini"

// DefaultTemperature keeps structured output stable between runs.
const DefaultTemperature float32 = 0.1

// ResponseMIMEJSON asks the endpoint for structured JSON output.
const ResponseMIMEJSON = "application/json"

// Config holds client settings shared by every request.
type Config struct {
	Provider    Provider
	Temperature float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGemini,
		Temperature: DefaultTemperature,
	}
}
