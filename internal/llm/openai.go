package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"joke-cli/internal/apperr"
)

func newOpenAIClient(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}

// OpenAIChat calls the chat completions endpoint.
type OpenAIChat struct {
	client *openai.Client
}

func NewOpenAIChat(apiKey, baseURL string) *OpenAIChat {
	return &OpenAIChat{client: newOpenAIClient(apiKey, baseURL)}
}

func (c *OpenAIChat) Name() string { return "openai-chat" }
func (c *OpenAIChat) Shape() Shape { return ShapeConversation }

func (c *OpenAIChat) Generate(ctx context.Context, req Request) (Response, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	})
	if err != nil {
		return Response{}, classifyOpenAI(c.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, apperr.New(apperr.KindMalformed, c.Name(), "no choices in response")
	}
	return Response{
		Content:          resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// OpenAICompletion calls the legacy text completions endpoint.
type OpenAICompletion struct {
	client *openai.Client
}

func NewOpenAICompletion(apiKey, baseURL string) *OpenAICompletion {
	return &OpenAICompletion{client: newOpenAIClient(apiKey, baseURL)}
}

func (c *OpenAICompletion) Name() string { return "openai-completion" }
func (c *OpenAICompletion) Shape() Shape { return ShapeRawInvoke }

func (c *OpenAICompletion) Generate(ctx context.Context, req Request) (Response, error) {
	resp, err := c.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       req.Model,
		Prompt:      req.Prompt,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	})
	if err != nil {
		return Response{}, classifyOpenAI(c.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, apperr.New(apperr.KindMalformed, c.Name(), "no choices in response")
	}
	return Response{
		Content:          resp.Choices[0].Text,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

func classifyOpenAI(op string, err error) error {
	if errors.Is(err, openai.ErrChatCompletionInvalidModel) || errors.Is(err, openai.ErrCompletionUnsupportedModel) {
		return apperr.Wrap(apperr.KindUnsupported, op, err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		kind := kindForStatus(apiErr.HTTPStatusCode)
		if (apiErr.HTTPStatusCode == http.StatusNotFound || apiErr.HTTPStatusCode == http.StatusBadRequest) && rejectsShape(apiErr.Message) {
			kind = apperr.KindUnsupported
		}
		return apperr.Wrap(kind, op, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return apperr.Wrap(kindForStatus(reqErr.HTTPStatusCode), op, err)
	}
	if e, ok := classifyTransport(op, err); ok {
		return e
	}
	return apperr.Wrap(apperr.KindService, op, err)
}
