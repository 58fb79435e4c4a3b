package geminirest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/firemason/firemason/core/infra/config"
	"github.com/firemason/firemason/core/translator"
	"github.com/go-resty/resty/v2"
	"google.golang.org/api/googleapi"
)

const generatePath = "/v1beta/models/{model}:generateContent"

// Provider calls the Gemini generateContent REST endpoint directly. It is
// used behind API proxies that only speak plain HTTPS.
type Provider struct {
	client *resty.Client
	gen    config.Generation
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"maxOutputTokens,omitempty"`
	TopK            int32   `json:"topK,omitempty"`
	TopP            float32 `json:"topP,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// New builds a REST provider against baseURL. timeout bounds each call when
// positive.
func New(baseURL string, gen config.Generation, timeout time.Duration) *Provider {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &Provider{client: c, gen: gen}
}

// Generate implements translator.Generator.
func (p *Provider) Generate(ctx context.Context, req translator.GenerateRequest) (string, error) {
	if req.Prompt == "" {
		return "", fmt.Errorf("empty prompt")
	}
	if req.APIKey == "" {
		return "", fmt.Errorf("missing api key")
	}
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     p.gen.Temperature,
			MaxOutputTokens: p.gen.MaxOutputTokens,
			TopK:            p.gen.TopK,
			TopP:            p.gen.TopP,
		},
	}

	var out generateResponse
	var apiErr errorEnvelope
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", req.APIKey).
		SetPathParam("model", strings.TrimPrefix(req.Model, "models/")).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post(generatePath)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", toAPIError(resp, apiErr)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", out.PromptFeedback.BlockReason)
	}
	if len(out.Candidates) == 0 {
		return "", nil
	}
	var b strings.Builder
	for _, pt := range out.Candidates[0].Content.Parts {
		b.WriteString(pt.Text)
	}
	return b.String(), nil
}

// toAPIError shapes REST failures like the SDK's so callers see one error type.
func toAPIError(resp *resty.Response, env errorEnvelope) *googleapi.Error {
	gerr := &googleapi.Error{
		Code:    resp.StatusCode(),
		Message: env.Error.Message,
		Body:    resp.String(),
		Header:  resp.Header(),
	}
	if gerr.Message == "" {
		gerr.Message = strings.TrimSpace(resp.Status())
	}
	if env.Error.Status != "" {
		gerr.Errors = []googleapi.ErrorItem{{Reason: env.Error.Status, Message: env.Error.Message}}
	}
	return gerr
}
