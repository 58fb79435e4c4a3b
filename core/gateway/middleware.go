package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/firemason/firemason/core/infra/config"
	"github.com/firemason/firemason/core/infra/logging"
	"github.com/google/uuid"
)

const (
	headerRequestID   = "X-Request-Id"
	maxRequestIDLen   = 128
	corsAllowMethods  = "POST, GET, OPTIONS"
	defaultCORSMaxAge = 86400
)

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// requestIDMiddleware keeps a sane inbound X-Request-Id or mints a uuid.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		if c > unicode.MaxASCII || !unicode.IsPrint(c) {
			return false
		}
	}
	return true
}

type corsPolicy struct {
	origins map[string]struct{}
	maxAge  string
}

func newCORSPolicy(cfg config.CORS) corsPolicy {
	p := corsPolicy{origins: make(map[string]struct{}, len(cfg.AllowOrigins))}
	for _, o := range cfg.AllowOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			p.origins[o] = struct{}{}
		}
	}
	maxAge := cfg.MaxAgeSeconds
	if maxAge <= 0 {
		maxAge = defaultCORSMaxAge
	}
	p.maxAge = strconv.Itoa(maxAge)
	return p
}

func (p corsPolicy) allowed(origin string) bool {
	if _, ok := p.origins["*"]; ok {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// corsMiddleware never rejects a request: disallowed origins simply get no
// Access-Control-Allow-Origin and the browser blocks the response.
func corsMiddleware(p corsPolicy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" && p.allowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
				w.Header().Add("Vary", "Access-Control-Request-Headers")
			}
			w.Header().Set("Access-Control-Max-Age", p.maxAge)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware turns a handler panic into the generic 500 body.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			msg := fmt.Sprint(rec)
			if err, ok := rec.(error); ok {
				msg = err.Error()
			}
			logging.Error(component, "unhandled failure", "request_id", requestIDFrom(r.Context()), "path", r.URL.Path, "error", msg)
			writeInternalError(w, msg)
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush preserves streaming support if the wrapped writer implements it.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// instrumented wraps handlers to record metrics.
func (s *server) instrumented(route string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			p := recover()
			if p != nil {
				rec.status = http.StatusInternalServerError
			}
			took := time.Since(start)
			if s.metrics != nil {
				s.metrics.ObserveRequest(r.Method, route, strconv.Itoa(rec.status), took.Seconds())
			}
			logging.Debug(component, "request", "request_id", requestIDFrom(r.Context()), "method", r.Method, "route", route, "status", rec.status, "duration_ms", took.Milliseconds())
			if p != nil {
				panic(p)
			}
		}()
		fn(rec, r)
	}
}
