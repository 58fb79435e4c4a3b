// Package main serves the translator API from AWS Lambda behind an API
// Gateway HTTP API (payload format 2.0).
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/firemason/firemason/core/gateway"
	"github.com/firemason/firemason/core/infra/buildinfo"
	"github.com/firemason/firemason/core/infra/config"
	"github.com/firemason/firemason/core/infra/logging"
	"github.com/firemason/firemason/core/infra/metrics"
)

const service = "firemason-translator-lambda"

func main() {
	buildinfo.Log(service)
	cfg := config.Load()
	tcfg, err := config.LoadTranslator(cfg.TranslatorConfigPath)
	if err != nil {
		logging.Error(service, "translator config not loaded, using defaults", "path", cfg.TranslatorConfigPath, "error", err)
	}
	// Nothing scrapes a Lambda, so collectors stay unregistered.
	svc := gateway.NewService(cfg, tcfg, metrics.Noop{})
	lambda.Start(newHandler(gateway.NewHandler(svc, tcfg, metrics.Noop{})))
}

type handlerFunc func(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

func newHandler(h http.Handler) handlerFunc {
	return func(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		req, err := toHTTPRequest(ctx, ev)
		if err != nil {
			logging.Error(service, "bad gateway event", "request_id", ev.RequestContext.RequestID, "error", err)
			return events.APIGatewayV2HTTPResponse{
				StatusCode: http.StatusBadRequest,
				Headers:    map[string]string{"Content-Type": "application/json; charset=UTF-8"},
				Body:       `{"error":"Bad request"}`,
			}, nil
		}
		w := newResponseBuffer()
		h.ServeHTTP(w, req)
		return w.toEvent(), nil
	}
}

func toHTTPRequest(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	body := []byte(ev.Body)
	if ev.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		body = decoded
	}
	path := ev.RawPath
	if path == "" {
		path = "/"
	}
	if ev.RawQueryString != "" {
		path += "?" + ev.RawQueryString
	}
	method := ev.RequestContext.HTTP.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range ev.Headers {
		req.Header.Set(k, v)
	}
	for _, c := range ev.Cookies {
		req.Header.Add("Cookie", c)
	}
	if req.Header.Get("X-Request-Id") == "" && ev.RequestContext.RequestID != "" {
		req.Header.Set("X-Request-Id", ev.RequestContext.RequestID)
	}
	req.Host = ev.RequestContext.DomainName
	req.RemoteAddr = ev.RequestContext.HTTP.SourceIP
	req.ContentLength = int64(len(body))
	return req, nil
}

// responseBuffer collects a handler's response for the Lambda return value.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: make(http.Header)}
}

func (r *responseBuffer) Header() http.Header { return r.header }

func (r *responseBuffer) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
}

func (r *responseBuffer) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(p)
}

func (r *responseBuffer) toEvent() events.APIGatewayV2HTTPResponse {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	headers := make(map[string]string, len(r.header))
	var cookies []string
	for k, v := range r.header {
		if http.CanonicalHeaderKey(k) == "Set-Cookie" {
			cookies = append(cookies, v...)
			continue
		}
		headers[k] = strings.Join(v, ", ")
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       r.body.String(),
		Cookies:    cookies,
	}
}
