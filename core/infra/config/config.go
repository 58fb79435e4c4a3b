package config

import (
	"os"
	"strings"
)

const (
	defaultHTTPAddr         = ":8787"
	defaultMetricsAddr      = ":9092"
	defaultTranslatorConfig = "config/translator.yaml"
	envHTTPAddr             = "GATEWAY_HTTP_ADDR"
	envMetricsAddr          = "GATEWAY_METRICS_ADDR"
	envTranslatorConfig     = "TRANSLATOR_CONFIG_PATH"
	// #nosec G101 -- environment variable name, not a credential.
	envGeminiAPIKey = "GEMINI_API_KEY"
)

// Config holds process-level settings read from the environment.
type Config struct {
	HTTPAddr             string
	MetricsAddr          string
	TranslatorConfigPath string
	// GeminiAPIKey is the operator's own key. It is only used when the
	// translator config enables server_key_fallback.
	GeminiAPIKey string
}

// Load returns configuration using environment variables with sane defaults.
func Load() *Config {
	return &Config{
		HTTPAddr:             envOrDefault(envHTTPAddr, defaultHTTPAddr),
		MetricsAddr:          envOrDefault(envMetricsAddr, defaultMetricsAddr),
		TranslatorConfigPath: envOrDefault(envTranslatorConfig, defaultTranslatorConfig),
		GeminiAPIKey:         strings.TrimSpace(os.Getenv(envGeminiAPIKey)),
	}
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
