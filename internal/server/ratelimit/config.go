package ratelimit

import "time"

// DefaultCleanupInterval is how often idle buckets are swept.
const DefaultCleanupInterval = 5 * time.Minute

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// NewConfig limits analysis requests to perMinute per client with the given
// burst. Other endpoints are not limited.
func NewConfig(enabled bool, perMinute, burst int) *Config {
	if !enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		CleanupInterval: DefaultCleanupInterval,
		EndpointConfigs: DefaultEndpointConfigs(perMinute, burst),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific configurations.
func DefaultEndpointConfigs(perMinute, burst int) []EndpointConfig {
	return []EndpointConfig{
		// each analysis launches a browser and calls the model
		{Path: "/analyze", Method: "POST", Limit: perMinute, Window: time.Minute, Burst: burst},
	}
}
