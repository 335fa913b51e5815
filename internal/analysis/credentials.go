package analysis

import "strings"

// CredentialResolver picks the API key for a run.
type CredentialResolver interface {
	Resolve(requestKey string) (string, error)
}

// StaticCredentials prefers the key supplied with the request and falls back to
// a process-wide key.
type StaticCredentials struct {
	FallbackKey string
}

// Resolve implements CredentialResolver.
func (c StaticCredentials) Resolve(requestKey string) (string, error) {
	if key := strings.TrimSpace(requestKey); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(c.FallbackKey); key != "" {
		return key, nil
	}
	return "", &ConfigurationError{Message: "API key is required"}
}
