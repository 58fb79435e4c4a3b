package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/firemason/firemason/core/infra/config"
	"github.com/firemason/firemason/core/translator"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Provider calls Gemini through the official Go SDK. A client is built per
// call because every request brings its own API key.
type Provider struct {
	gen  config.Generation
	opts []option.ClientOption
}

// New builds an SDK provider. Extra client options (endpoint, HTTP client)
// are appended after the per-call API key.
func New(gen config.Generation, opts ...option.ClientOption) *Provider {
	return &Provider{gen: gen, opts: opts}
}

// Generate implements translator.Generator.
func (p *Provider) Generate(ctx context.Context, req translator.GenerateRequest) (string, error) {
	if req.Prompt == "" {
		return "", fmt.Errorf("empty prompt")
	}
	if req.APIKey == "" {
		return "", fmt.Errorf("missing api key")
	}
	opts := append([]option.ClientOption{option.WithAPIKey(req.APIKey)}, p.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	p.configure(model)

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (p *Provider) configure(model *genai.GenerativeModel) {
	model.SetTemperature(p.gen.Temperature)
	if p.gen.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(p.gen.MaxOutputTokens)
	}
	if p.gen.TopK > 0 {
		model.SetTopK(p.gen.TopK)
	}
	if p.gen.TopP > 0 {
		model.SetTopP(p.gen.TopP)
	}
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
