package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/firemason/firemason/core/infra/config"
	"github.com/firemason/firemason/core/translator"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

func TestGenerateEmptyPromptErrors(t *testing.T) {
	p := New(config.DefaultTranslator().Generation)
	if _, err := p.Generate(context.Background(), translator.GenerateRequest{APIKey: "k", Model: "gemini-pro"}); err == nil {
		t.Fatalf("expected error on empty prompt")
	}
}

func TestGenerateMissingKeyErrors(t *testing.T) {
	p := New(config.DefaultTranslator().Generation)
	if _, err := p.Generate(context.Background(), translator.GenerateRequest{Prompt: "p", Model: "gemini-pro"}); err == nil {
		t.Fatalf("expected error on missing key")
	}
}

func TestConfigureAppliesGeneration(t *testing.T) {
	p := New(config.Generation{Temperature: 0.2, MaxOutputTokens: 8192, TopK: 1, TopP: 0.8})
	model := &genai.GenerativeModel{}
	p.configure(model)

	if model.Temperature == nil || *model.Temperature != 0.2 {
		t.Fatalf("unexpected temperature: %v", model.Temperature)
	}
	if model.MaxOutputTokens == nil || *model.MaxOutputTokens != 8192 {
		t.Fatalf("unexpected max tokens: %v", model.MaxOutputTokens)
	}
	if model.TopK == nil || *model.TopK != 1 {
		t.Fatalf("unexpected top k: %v", model.TopK)
	}
	if model.TopP == nil || *model.TopP != 0.8 {
		t.Fatalf("unexpected top p: %v", model.TopP)
	}
}

func TestConfigureSkipsUnsetLimits(t *testing.T) {
	p := New(config.Generation{})
	model := &genai.GenerativeModel{}
	p.configure(model)
	if model.MaxOutputTokens != nil || model.TopK != nil || model.TopP != nil {
		t.Fatalf("expected unset limits to stay nil")
	}
	if model.Temperature == nil || *model.Temperature != 0 {
		t.Fatalf("expected explicit zero temperature")
	}
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("```c\n"), genai.Text("int x;\n```")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	if got := responseText(resp); got != "```c\nint x;\n```" {
		t.Fatalf("unexpected text: %q", got)
	}
	if got := responseText(nil); got != "" {
		t.Fatalf("expected empty text for nil response")
	}
	if got := responseText(&genai.GenerateContentResponse{}); got != "" {
		t.Fatalf("expected empty text without candidates")
	}
	if got := responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}); got != "" {
		t.Fatalf("expected empty text without content")
	}
}

type seenRequest struct {
	mu     sync.Mutex
	path   string
	key    string
	config map[string]any
}

func (s *seenRequest) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = r.URL.Path
	// The transport sends the key as a header or, on older auth stacks, as ?key=.
	s.key = r.Header.Get("x-goog-api-key")
	if s.key == "" {
		s.key = r.URL.Query().Get("key")
	}
	var body struct {
		GenerationConfig map[string]any `json:"generationConfig"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
		s.config = body.GenerationConfig
	}
}

func TestGenerateAgainstServer(t *testing.T) {
	seen := &seenRequest{}
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.record(r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"` + "```c\\n" + `"},{"text":"int x;\n` + "```" + `"}]},"finishReason":"STOP","index":0}]}`))
	}))
	defer srv.Close()

	p := New(config.DefaultTranslator().Generation, option.WithEndpoint(srv.URL))
	out, err := p.Generate(context.Background(), translator.GenerateRequest{APIKey: "per-call-key", Model: "gemini-pro", Prompt: "translate these rules"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if out != "```c\nint x;\n```" {
		t.Fatalf("unexpected text %q", out)
	}

	seen.mu.Lock()
	defer seen.mu.Unlock()
	if seen.key != "per-call-key" {
		t.Fatalf("expected per-call api key, got %q", seen.key)
	}
	if !strings.HasSuffix(seen.path, "/models/gemini-pro:generateContent") {
		t.Fatalf("unexpected path %q", seen.path)
	}
	if seen.config["maxOutputTokens"] != float64(8192) {
		t.Fatalf("unexpected generation config: %#v", seen.config)
	}
}

func TestGenerateReturnsGoogleAPIError(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	p := New(config.DefaultTranslator().Generation, option.WithEndpoint(srv.URL))
	_, err := p.Generate(context.Background(), translator.GenerateRequest{APIKey: "bad-key", Model: "gemini-pro", Prompt: "p"})
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected googleapi error, got %T %v", err, err)
	}
	if gerr.Code != http.StatusBadRequest || gerr.Message != "API key not valid. Please pass a valid API key." {
		t.Fatalf("unexpected error: %#v", gerr)
	}
}

func newIPv4Server(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping: unable to listen on ipv4 loopback (%v)", err)
	}
	srv := httptest.NewUnstartedServer(handler)
	srv.Listener = ln
	srv.Start()
	return srv
}
