package translator

import (
	"context"
	"strings"
	"time"

	"github.com/firemason/firemason/core/infra/config"
	"github.com/firemason/firemason/core/infra/logging"
	infraMetrics "github.com/firemason/firemason/core/infra/metrics"
)

const component = "translator"

// Request is the decoded body of a translate call.
type Request struct {
	Rules  string `json:"rules"`
	APIKey string `json:"apiKey"`
	Model  string `json:"model,omitempty"`
}

// Response carries the cleaned program text.
type Response struct {
	Code string `json:"code"`
}

// GenerateRequest is what a Generator receives for one call.
type GenerateRequest struct {
	APIKey string
	Model  string
	Prompt string
}

// Generator performs the upstream text-generation call.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req GenerateRequest) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	return f(ctx, req)
}

// Options tune a Service. Zero values fall back to defaults.
type Options struct {
	DefaultModel string
	// ServerKey replaces a missing caller key. Leave empty to require one.
	ServerKey string
	Timeout   time.Duration
	Metrics   infraMetrics.TranslatorMetrics
}

// OptionsFromConfig maps translator config onto Options. serverKey is only
// honoured when the config enables the fallback.
func OptionsFromConfig(cfg *config.Translator, serverKey string, m infraMetrics.TranslatorMetrics) Options {
	if cfg == nil {
		cfg = config.DefaultTranslator()
	}
	opts := Options{
		DefaultModel: cfg.DefaultModel,
		Timeout:      cfg.UpstreamTimeout(),
		Metrics:      m,
	}
	if cfg.ServerKeyFallback {
		opts.ServerKey = strings.TrimSpace(serverKey)
	}
	return opts
}

// Service turns rule sets into TC classifier programs.
type Service struct {
	gen  Generator
	opts Options
}

// New builds a Service around gen.
func New(gen Generator, opts Options) *Service {
	if opts.DefaultModel == "" {
		opts.DefaultModel = config.DefaultModel
	}
	if opts.Metrics == nil {
		opts.Metrics = infraMetrics.Noop{}
	}
	return &Service{gen: gen, opts: opts}
}

// Translate validates req, calls the generator once and cleans its output.
// Every failure is returned as *Error.
func (s *Service) Translate(ctx context.Context, req Request) (*Response, error) {
	if req.Rules == "" {
		s.opts.Metrics.IncRejected("missing_rules")
		return nil, validationError(MsgRulesRequired)
	}
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = s.opts.ServerKey
	}
	if apiKey == "" {
		s.opts.Metrics.IncRejected("missing_api_key")
		return nil, validationError(MsgAPIKeyRequired)
	}
	model := req.Model
	if model == "" {
		model = s.opts.DefaultModel
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.gen.Generate(ctx, GenerateRequest{
		APIKey: apiKey,
		Model:  model,
		Prompt: BuildPrompt(req.Rules),
	})
	took := time.Since(start)
	elapsed := took.Seconds()
	if err != nil {
		s.opts.Metrics.ObserveUpstream(model, "error", elapsed)
		uerr := upstreamError(err, apiKey)
		logging.Error(component, "gemini api error", "model", model, "error", uerr.Message, "details", uerr.Details)
		return nil, uerr
	}
	if text == "" {
		s.opts.Metrics.ObserveUpstream(model, "empty", elapsed)
		logging.Error(component, "gemini api error", "model", model, "error", MsgEmptyResponse)
		return nil, &Error{Kind: KindUpstream, Message: MsgEmptyResponse}
	}
	s.opts.Metrics.ObserveUpstream(model, "ok", elapsed)

	code := StripFences(text)
	logging.Debug(component, "translated", "model", model, "rules_bytes", len(req.Rules), "code_bytes", len(code), "duration_ms", took.Milliseconds())
	return &Response{Code: code}, nil
}
