package llm

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"joke-cli/internal/apperr"
)

// GeminiClient calls GenerateContent on the Gemini API.
type GeminiClient struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, apperr.New(apperr.KindCredentials, "gemini", "GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindCredentials, "gemini init", err)
	}
	return &GeminiClient{client: client}, nil
}

func (c *GeminiClient) Name() string { return "gemini" }
func (c *GeminiClient) Shape() Shape { return ShapeConversation }

func (c *GeminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		TopP:            genai.Ptr(req.TopP),
		MaxOutputTokens: int32(req.MaxTokens),
	})
	if err != nil {
		return Response{}, classifyGemini(c.Name(), err)
	}
	out := Response{Content: resp.Text(), Model: req.Model}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		out.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

func classifyGemini(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		kind := kindForStatus(apiErr.Code)
		if apiErr.Code == 400 && apiErr.Status == "FAILED_PRECONDITION" {
			kind = apperr.KindAccessDenied
		}
		return apperr.Wrap(kind, op, err)
	}
	if e, ok := classifyTransport(op, err); ok {
		return e
	}
	return apperr.Wrap(apperr.KindService, op, err)
}
