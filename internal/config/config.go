// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default values mirror what the hosted deployment runs with.
const (
	DefaultPort              = 5001
	DefaultModel             = "gemini-2.0-flash"
	DefaultNavigationTimeout = 90 * time.Second
	DefaultModelTimeout      = 120 * time.Second
	DefaultSettleDelay       = 2 * time.Second
	DefaultTextExcerptLimit  = 2000
	DefaultReportLanguage    = "Japanese"
	DefaultMaxConcurrentRuns = 2
	DefaultRateLimitPerMin   = 10
	DefaultRateLimitBurst    = 2
)

// DefaultFallbackModels is the ordered list of models tried after the selected one.
var DefaultFallbackModels = []string{"gemini-2.0-flash", "gemini-flash-latest", "gemini-pro-latest"}

// Config holds every tunable of the analyzer. Values come from defaults, an optional
// config file and the environment, in increasing precedence.
type Config struct {
	Port int

	// Credentials and endpoints
	GeminiAPIKey     string // Process-wide fallback when a request carries no key
	RemoteBrowserURL string // CDP endpoint; when set, no local browser is launched
	Serverless       bool   // Constrained deployment where a local browser may not be launched
	ChromePath       string // Overrides the Chrome binary for local launches

	// Models
	DefaultModel   string
	FallbackModels []string

	// Pipeline tuning
	NavigationTimeout time.Duration
	ModelTimeout      time.Duration
	SettleDelay       time.Duration
	TextExcerptLimit  int
	ReportLanguage    string

	// Server limits
	MaxConcurrentRuns int
	RateLimitEnabled  bool
	RateLimitPerMin   int
	RateLimitBurst    int

	LogLevel string
	Debug    bool
}

// envBindings maps config keys to the environment variables they are read from.
var envBindings = map[string]string{
	"port":                "PORT",
	"gemini_api_key":      "GEMINI_API_KEY",
	"remote_browser_url":  "REMOTE_BROWSER_URL",
	"serverless":          "VERCEL",
	"chrome_path":         "CHROME_PATH",
	"default_model":       "LP_DEFAULT_MODEL",
	"fallback_models":     "LP_FALLBACK_MODELS",
	"navigation_timeout":  "LP_NAVIGATION_TIMEOUT",
	"model_timeout":       "LP_MODEL_TIMEOUT",
	"settle_delay":        "LP_SETTLE_DELAY",
	"text_excerpt_limit":  "LP_TEXT_EXCERPT_LIMIT",
	"report_language":     "LP_REPORT_LANGUAGE",
	"max_concurrent_runs": "LP_MAX_CONCURRENT_RUNS",
	"rate_limit_enabled":  "RATE_LIMIT_ENABLED",
	"rate_limit_per_min":  "RATE_LIMIT_PER_MINUTE",
	"rate_limit_burst":    "RATE_LIMIT_BURST",
	"log_level":           "LP_LOG_LEVEL",
	"debug":               "LP_DEBUG",
}

// Load reads configuration. path may be empty, in which case only defaults and
// the environment are consulted.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:              v.GetInt("port"),
		GeminiAPIKey:      strings.TrimSpace(v.GetString("gemini_api_key")),
		RemoteBrowserURL:  strings.TrimSpace(v.GetString("remote_browser_url")),
		Serverless:        parseServerless(v.GetString("serverless")),
		ChromePath:        strings.TrimSpace(v.GetString("chrome_path")),
		DefaultModel:      strings.TrimSpace(v.GetString("default_model")),
		FallbackModels:    parseList(v.Get("fallback_models")),
		NavigationTimeout: v.GetDuration("navigation_timeout"),
		ModelTimeout:      v.GetDuration("model_timeout"),
		SettleDelay:       v.GetDuration("settle_delay"),
		TextExcerptLimit:  v.GetInt("text_excerpt_limit"),
		ReportLanguage:    v.GetString("report_language"),
		MaxConcurrentRuns: v.GetInt("max_concurrent_runs"),
		RateLimitEnabled:  v.GetBool("rate_limit_enabled"),
		RateLimitPerMin:   v.GetInt("rate_limit_per_min"),
		RateLimitBurst:    v.GetInt("rate_limit_burst"),
		LogLevel:          v.GetString("log_level"),
		Debug:             v.GetBool("debug"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("serverless", "")
	v.SetDefault("default_model", DefaultModel)
	v.SetDefault("fallback_models", strings.Join(DefaultFallbackModels, ","))
	v.SetDefault("navigation_timeout", DefaultNavigationTimeout)
	v.SetDefault("model_timeout", DefaultModelTimeout)
	v.SetDefault("settle_delay", DefaultSettleDelay)
	v.SetDefault("text_excerpt_limit", DefaultTextExcerptLimit)
	v.SetDefault("report_language", DefaultReportLanguage)
	v.SetDefault("max_concurrent_runs", DefaultMaxConcurrentRuns)
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_per_min", DefaultRateLimitPerMin)
	v.SetDefault("rate_limit_burst", DefaultRateLimitBurst)
	v.SetDefault("log_level", "info")
	v.SetDefault("debug", false)
}

// Validate checks that the configuration has usable values.
// Missing credentials are not an error here: a request may bring its own key.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535")
	}
	if c.DefaultModel == "" && len(c.FallbackModels) == 0 {
		return fmt.Errorf("config error: at least one model must be configured")
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("config error: 'navigation_timeout' must be positive")
	}
	if c.ModelTimeout <= 0 {
		return fmt.Errorf("config error: 'model_timeout' must be positive")
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("config error: 'settle_delay' must be non-negative")
	}
	if c.TextExcerptLimit <= 0 {
		return fmt.Errorf("config error: 'text_excerpt_limit' must be positive")
	}
	if c.MaxConcurrentRuns <= 0 {
		return fmt.Errorf("config error: 'max_concurrent_runs' must be positive")
	}
	if c.RateLimitEnabled && (c.RateLimitPerMin <= 0 || c.RateLimitBurst <= 0) {
		return fmt.Errorf("config error: rate limit values must be positive when enabled")
	}
	return nil
}

// CandidateModels returns the default model followed by the fallback models.
// Duplicates are left for the pipeline to remove.
func (c *Config) CandidateModels() []string {
	models := make([]string, 0, len(c.FallbackModels)+1)
	if c.DefaultModel != "" {
		models = append(models, c.DefaultModel)
	}
	return append(models, c.FallbackModels...)
}

// parseServerless treats the platform marker as a boolean, accepting "1" like the
// hosting platform sets it.
func parseServerless(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// parseList accepts a comma-separated string (environment) or a list (config file).
func parseList(raw any) []string {
	var items []string
	switch val := raw.(type) {
	case string:
		items = strings.Split(val, ",")
	case []string:
		items = val
	case []any:
		for _, item := range val {
			items = append(items, fmt.Sprint(item))
		}
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
