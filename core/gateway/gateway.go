package gateway

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/firemason/firemason/core/infra/buildinfo"
	"github.com/firemason/firemason/core/infra/config"
	"github.com/firemason/firemason/core/infra/logging"
	infraMetrics "github.com/firemason/firemason/core/infra/metrics"
	"github.com/firemason/firemason/core/translator"
	"github.com/firemason/firemason/packages/providers/gemini"
	"github.com/firemason/firemason/packages/providers/geminirest"
)

const (
	component        = "api-gateway"
	metricsNamespace = "firemason"
	maxBodyBytes     = 1 << 20
	shutdownGrace    = 15 * time.Second
	// writeSlack leaves room to encode the response after the upstream call returns.
	writeSlack = 10 * time.Second
)

// translateService is the part of translator.Service the gateway needs.
type translateService interface {
	Translate(ctx context.Context, req translator.Request) (*translator.Response, error)
}

type server struct {
	svc     translateService
	metrics infraMetrics.GatewayMetrics
	cors    corsPolicy
}

// Run serves the translator API until SIGINT/SIGTERM.
func Run(cfg *config.Config, tcfg *config.Translator) error {
	if cfg == nil {
		cfg = config.Load()
	}
	if tcfg == nil {
		tcfg = config.DefaultTranslator()
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info(component, "translator configured",
		"provider", tcfg.Provider,
		"default_model", tcfg.DefaultModel,
		"upstream_timeout", tcfg.UpstreamTimeout().String(),
		"server_key_fallback", tcfg.ServerKeyFallback,
	)
	return startHTTPServer(ctx, Handler(cfg, tcfg), cfg.HTTPAddr, cfg.MetricsAddr, writeTimeout(tcfg))
}

// Handler assembles the production handler: upstream provider, translator
// service and Prometheus collectors. Call it once per process.
func Handler(cfg *config.Config, tcfg *config.Translator) http.Handler {
	if cfg == nil {
		cfg = config.Load()
	}
	if tcfg == nil {
		tcfg = config.DefaultTranslator()
	}
	infraMetrics.NewBuildInfo(metricsNamespace, buildinfo.Version, buildinfo.Revision(), buildinfo.Date)
	svc := NewService(cfg, tcfg, infraMetrics.NewTranslatorProm(metricsNamespace))
	return NewHandler(svc, tcfg, infraMetrics.NewGatewayProm(metricsNamespace))
}

// NewService builds the translator around the configured provider. A nil m
// disables upstream metrics.
func NewService(cfg *config.Config, tcfg *config.Translator, m infraMetrics.TranslatorMetrics) *translator.Service {
	if cfg == nil {
		cfg = config.Load()
	}
	if tcfg == nil {
		tcfg = config.DefaultTranslator()
	}
	return translator.New(newGenerator(tcfg), translator.OptionsFromConfig(tcfg, cfg.GeminiAPIKey, m))
}

// NewHandler builds the routed, CORS-wrapped handler around svc.
func NewHandler(svc translateService, tcfg *config.Translator, m infraMetrics.GatewayMetrics) http.Handler {
	if tcfg == nil {
		tcfg = config.DefaultTranslator()
	}
	if m == nil {
		m = infraMetrics.Noop{}
	}
	s := &server{svc: svc, metrics: m, cors: newCORSPolicy(tcfg.CORS)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.instrumented("/health", s.handleHealth))
	mux.HandleFunc("POST /translate", s.instrumented("/translate", s.handleTranslate))
	// Everything else, including GET /translate.
	mux.HandleFunc("/", s.instrumented("notfound", s.handleNotFound))

	return requestIDMiddleware(corsMiddleware(s.cors, recoverMiddleware(mux)))
}

func newGenerator(tcfg *config.Translator) translator.Generator {
	switch tcfg.Provider {
	case config.ProviderREST:
		return geminirest.New(tcfg.RESTBaseURL, tcfg.Generation, tcfg.UpstreamTimeout())
	default:
		return gemini.New(tcfg.Generation)
	}
}

func writeTimeout(tcfg *config.Translator) time.Duration {
	if d := tcfg.UpstreamTimeout(); d > 0 {
		return d + writeSlack
	}
	return 0
}

func startHTTPServer(ctx context.Context, handler http.Handler, httpAddr, metricsAddr string, writeTimeout time.Duration) error {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", infraMetrics.Handler())
	metricsSrv := &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logging.Info(component, "metrics listening", "addr", metricsAddr+"/metrics")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(component, "metrics server error", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logging.Info(component, "http listening", "addr", httpAddr, "write_timeout", writeTimeout.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = metricsSrv.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logging.Error(component, "http server error", "error", err)
		return err
	case <-ctx.Done():
	}

	logging.Info(component, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(component, "http shutdown error", "error", err)
		return err
	}
	return nil
}
