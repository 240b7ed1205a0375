package llm

import "context"

// Shape tells apart the two ways a model can be called.
type Shape string

const (
	// ShapeConversation is a structured, message-based chat call.
	ShapeConversation Shape = "conversation"
	// ShapeRawInvoke is a single-shot prompt-in, text-out call.
	ShapeRawInvoke Shape = "raw-invoke"
)

type Request struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is one call strategy against a provider. Implementations return
// errors classified with apperr so callers can decide whether to retry or
// fall back to the next strategy.
type Client interface {
	Name() string
	Shape() Shape
	Generate(ctx context.Context, req Request) (Response, error)
}
