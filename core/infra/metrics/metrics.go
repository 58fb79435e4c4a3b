package metrics

import (
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GatewayMetrics captures request metrics for the HTTP gateway.
type GatewayMetrics interface {
	ObserveRequest(method, route, status string, durationSeconds float64)
}

// TranslatorMetrics captures upstream generation calls.
type TranslatorMetrics interface {
	ObserveUpstream(model, outcome string, durationSeconds float64)
	IncRejected(reason string)
}

// Noop implements every metrics interface without emitting anything.
type Noop struct{}

func (Noop) ObserveRequest(string, string, string, float64) {}
func (Noop) ObserveUpstream(string, string, float64)        {}
func (Noop) IncRejected(string)                             {}

// Handler returns an HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewBuildInfo publishes a constant build_info gauge carrying the build labels.
// Registering it twice is a no-op.
func NewBuildInfo(namespace, version, commit, date string) {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build metadata; the value is always 1",
	}, []string{"version", "commit", "date"})
	g.WithLabelValues(version, commit, date).Set(1)
	if err := prometheus.Register(g); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			panic(err)
		}
	}
}

// --- Gateway metrics ---

type gatewayProm struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	once     sync.Once
}

// NewGatewayProm constructs a GatewayMetrics with counters/histograms.
func NewGatewayProm(namespace string) GatewayMetrics {
	g := &gatewayProm{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method/route/status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method/route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	g.once.Do(func() {
		prometheus.MustRegister(g.requests, g.latency)
	})
	return g
}

func (g *gatewayProm) ObserveRequest(method, route, status string, durationSeconds float64) {
	g.requests.WithLabelValues(method, route, status).Inc()
	g.latency.WithLabelValues(method, route).Observe(durationSeconds)
}

// --- Translator metrics ---

// Model calls routinely take tens of seconds, so the default buckets stop too early.
var upstreamBuckets = []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120}

type translatorProm struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rejected *prometheus.CounterVec
	once     sync.Once
}

// NewTranslatorProm constructs TranslatorMetrics backed by Prometheus.
func NewTranslatorProm(namespace string) TranslatorMetrics {
	p := &translatorProm{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_calls_total",
			Help:      "Generation calls by model and outcome",
		}, []string{"model", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_call_duration_seconds",
			Help:      "Generation call latency by model",
			Buckets:   upstreamBuckets,
		}, []string{"model"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_rejected_total",
			Help:      "Translate requests rejected before the upstream call",
		}, []string{"reason"}),
	}
	p.once.Do(func() {
		prometheus.MustRegister(p.calls, p.duration, p.rejected)
	})
	return p
}

func (p *translatorProm) ObserveUpstream(model, outcome string, durationSeconds float64) {
	p.calls.WithLabelValues(model, outcome).Inc()
	p.duration.WithLabelValues(model).Observe(durationSeconds)
}

func (p *translatorProm) IncRejected(reason string) {
	p.rejected.WithLabelValues(reason).Inc()
}
