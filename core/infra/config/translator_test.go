package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultTranslator(t *testing.T) {
	cfg := DefaultTranslator()
	if cfg.DefaultModel != "gemini-pro" || cfg.Provider != ProviderSDK {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if cfg.Generation.MaxOutputTokens != 8192 || cfg.Generation.TopK != 1 {
		t.Fatalf("unexpected generation defaults: %#v", cfg.Generation)
	}
	if cfg.CORS.MaxAgeSeconds != 86400 || len(cfg.CORS.AllowOrigins) != 2 {
		t.Fatalf("unexpected cors defaults: %#v", cfg.CORS)
	}
	if cfg.UpstreamTimeout() != 0 {
		t.Fatalf("expected unbounded upstream timeout")
	}
}

func TestLoadTranslatorSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "translator.yaml")
	body := []byte(`default_model: gemini-1.5-flash
provider: rest
rest_base_url: "http://proxy.local/ "
upstream_timeout_seconds: 90
generation:
  temperature: 0.5
cors:
  allow_origins: ["https://fw.example.com", " "]
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadTranslator(path)
	if err != nil {
		t.Fatalf("LoadTranslator returned error: %v", err)
	}
	if cfg.DefaultModel != "gemini-1.5-flash" || cfg.Provider != ProviderREST {
		t.Fatalf("unexpected model/provider: %#v", cfg)
	}
	if cfg.RESTBaseURL != "http://proxy.local" {
		t.Fatalf("unexpected rest base url: %q", cfg.RESTBaseURL)
	}
	if cfg.UpstreamTimeout() != 90*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.UpstreamTimeout())
	}
	if cfg.Generation.Temperature != 0.5 {
		t.Fatalf("unexpected temperature: %v", cfg.Generation.Temperature)
	}
	// keys absent from the file keep their defaults
	if cfg.Generation.MaxOutputTokens != 8192 || cfg.Generation.TopP != 0.8 {
		t.Fatalf("expected generation defaults retained: %#v", cfg.Generation)
	}
	if len(cfg.CORS.AllowOrigins) != 1 || cfg.CORS.AllowOrigins[0] != "https://fw.example.com" {
		t.Fatalf("unexpected origins: %#v", cfg.CORS.AllowOrigins)
	}
	if cfg.CORS.MaxAgeSeconds != 86400 {
		t.Fatalf("expected default max age")
	}
}

func TestLoadTranslatorMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadTranslator(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if cfg == nil || cfg.DefaultModel != DefaultModel {
		t.Fatalf("expected defaults alongside error")
	}
	cfg, err = LoadTranslator("")
	if err != nil || cfg.DefaultModel != DefaultModel {
		t.Fatalf("expected defaults for empty path")
	}
}

func TestParseTranslatorSchemaErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "surprise: true\n",
		"bad provider":  "provider: carrier-pigeon\n",
		"bad top_p":     "generation:\n  top_p: 3\n",
		"negative ttl":  "upstream_timeout_seconds: -1\n",
		"origins shape": "cors:\n  allow_origins: localhost\n",
	}
	for name, body := range cases {
		cfg, err := ParseTranslator([]byte(body))
		if err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
		if !strings.Contains(err.Error(), "validate translator config") {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if cfg == nil || cfg.DefaultModel != DefaultModel {
			t.Fatalf("%s: expected defaults alongside error", name)
		}
	}
}

func TestParseTranslatorSchemaErrorNamesPath(t *testing.T) {
	_, err := ParseTranslator([]byte("generation:\n  top_p: 3\n  top_k: 0\n"))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "/generation/top_p: ") || !strings.Contains(msg, "/generation/top_k: ") {
		t.Fatalf("expected both violating paths, got %q", msg)
	}
	if strings.Index(msg, "/generation/top_k") > strings.Index(msg, "/generation/top_p") {
		t.Fatalf("expected violations sorted, got %q", msg)
	}
}

func TestParseTranslatorSchemaErrorAtRoot(t *testing.T) {
	_, err := ParseTranslator([]byte("surprise: true\n"))
	if err == nil || !strings.Contains(err.Error(), "validate translator config: /: ") {
		t.Fatalf("expected root violation, got %v", err)
	}
}

func TestParseTranslatorEmpty(t *testing.T) {
	for _, body := range []string{"", "\n", "# only a comment\n"} {
		cfg, err := ParseTranslator([]byte(body))
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", body, err)
		}
		if cfg.Provider != ProviderSDK {
			t.Fatalf("expected defaults for %q", body)
		}
	}
}

func TestParseTranslatorInvalidYAML(t *testing.T) {
	if _, err := ParseTranslator([]byte("default_model: [unterminated\n")); err == nil {
		t.Fatalf("expected parse error")
	}
}
