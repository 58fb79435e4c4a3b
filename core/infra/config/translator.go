package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultModel is used when a translate request omits "model".
	DefaultModel = "gemini-pro"

	ProviderSDK  = "sdk"
	ProviderREST = "rest"

	defaultRESTBaseURL = "https://generativelanguage.googleapis.com"
)

// Generation holds the sampling settings sent with every upstream call.
type Generation struct {
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
	TopK            int32   `yaml:"top_k"`
	TopP            float32 `yaml:"top_p"`
}

// CORS is the browser access policy for the gateway.
type CORS struct {
	AllowOrigins  []string `yaml:"allow_origins"`
	MaxAgeSeconds int      `yaml:"max_age_seconds"`
}

// Translator configures the translate endpoint and its upstream.
type Translator struct {
	DefaultModel           string     `yaml:"default_model"`
	Provider               string     `yaml:"provider"`
	RESTBaseURL            string     `yaml:"rest_base_url"`
	UpstreamTimeoutSeconds int64      `yaml:"upstream_timeout_seconds"`
	ServerKeyFallback      bool       `yaml:"server_key_fallback"`
	Generation             Generation `yaml:"generation"`
	CORS                   CORS       `yaml:"cors"`
}

// UpstreamTimeout returns the per-call bound; zero means unbounded.
func (t *Translator) UpstreamTimeout() time.Duration {
	if t == nil || t.UpstreamTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(t.UpstreamTimeoutSeconds) * time.Second
}

// DefaultTranslator returns the built-in settings.
func DefaultTranslator() *Translator {
	return &Translator{
		DefaultModel: DefaultModel,
		Provider:     ProviderSDK,
		RESTBaseURL:  defaultRESTBaseURL,
		Generation: Generation{
			Temperature:     0.2,
			MaxOutputTokens: 8192,
			TopK:            1,
			TopP:            0.8,
		},
		CORS: CORS{
			AllowOrigins:  []string{"http://localhost:3000", "https://your-domain.com"},
			MaxAgeSeconds: 86400,
		},
	}
}

// LoadTranslator loads a YAML translator file; returns defaults if missing.
func LoadTranslator(path string) (*Translator, error) {
	if path == "" {
		return DefaultTranslator(), nil
	}
	// #nosec G304 -- translator config path is operator-provided.
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultTranslator(), fmt.Errorf("read translator config: %w", err)
	}
	return ParseTranslator(data)
}

// ParseTranslator parses translator config data from YAML/JSON bytes.
// Keys absent from data keep their default values.
func ParseTranslator(data []byte) (*Translator, error) {
	if err := validateConfigSchema("translator", translatorSchemaFile, data); err != nil {
		return DefaultTranslator(), err
	}
	cfg := DefaultTranslator()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultTranslator(), fmt.Errorf("parse translator config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (t *Translator) normalize() {
	def := DefaultTranslator()
	t.DefaultModel = strings.TrimSpace(t.DefaultModel)
	if t.DefaultModel == "" {
		t.DefaultModel = def.DefaultModel
	}
	t.Provider = strings.ToLower(strings.TrimSpace(t.Provider))
	if t.Provider == "" {
		t.Provider = def.Provider
	}
	t.RESTBaseURL = strings.TrimRight(strings.TrimSpace(t.RESTBaseURL), "/")
	if t.RESTBaseURL == "" {
		t.RESTBaseURL = def.RESTBaseURL
	}
	origins := t.CORS.AllowOrigins[:0]
	for _, o := range t.CORS.AllowOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	t.CORS.AllowOrigins = origins
}
