package gemini

import (
	"context"

	"google.golang.org/genai"
)

// GenerateFunc adapts a function to the generator interface.
type GenerateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

func (f GenerateFunc) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return f(ctx, model, contents, config)
}

// NewWithGenerator creates a Client backed by fn instead of the network.
func NewWithGenerator(fn GenerateFunc, opts ...Option) *Client {
	return newClient(fn, opts...)
}
