// Package gemini implements [chatlib.Answerer] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating a session history
// into Gemini contents and grounding metadata back into citations.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/chatlib"
	"google.golang.org/genai"
)

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 8192

	// DefaultSystemPrompt frames the model as a bank onboarding assistant.
	DefaultSystemPrompt = "You are an onboarding assistant for new bank employees. " +
		"Answer questions about accounts, internal policies and the first weeks at the bank. " +
		"Be concise and say so when you do not know."
)

// Interface compliance check.
var _ chatlib.Answerer = (*Client)(nil)

// generator is the subset of *genai.Models used by Client.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements [chatlib.Answerer] for the Google Gemini API.
type Client struct {
	models       generator
	model        string
	systemPrompt string
	search       bool
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) { c.systemPrompt = prompt }
}

// WithSearchGrounding enables Google Search grounding, which populates
// reply sources.
func WithSearchGrounding() Option {
	return func(c *Client) { c.search = true }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return newClient(gc.Models, opts...), nil
}

func newClient(models generator, opts ...Option) *Client {
	c := &Client{
		models:       models,
		model:        defaultModel,
		systemPrompt: DefaultSystemPrompt,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Answer sends the conversation to Gemini and returns the reply text with
// any grounding sources.
func (c *Client) Answer(ctx context.Context, history []chatlib.Message) (chatlib.Reply, error) {
	contents := ConvertHistory(history)
	if len(contents) == 0 {
		return chatlib.Reply{}, fmt.Errorf("gemini: no user message in history")
	}
	resp, err := c.models.GenerateContent(ctx, c.model, contents, c.config())
	if err != nil {
		return chatlib.Reply{}, fmt.Errorf("gemini: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return chatlib.Reply{}, fmt.Errorf("gemini: %w", chatlib.ErrEmptyAnswer)
	}
	return chatlib.Reply{Text: text, Sources: ExtractSources(resp)}, nil
}

func (c *Client) config() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: defaultMaxTokens,
	}
	if c.systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: c.systemPrompt}},
		}
	}
	if c.search {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return config
}

// ConvertHistory converts session messages to genai Contents. Bot
// messages before the first user message, such as the welcome, are
// dropped because Gemini requires a conversation to open with a user turn.
// Exported for testing.
func ConvertHistory(history []chatlib.Message) []*genai.Content {
	var result []*genai.Content
	for _, m := range history {
		if m.IsBot && len(result) == 0 {
			continue
		}
		role := "user"
		if m.IsBot {
			role = "model"
		}
		result = append(result, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Text}},
		})
	}
	return result
}

// ExtractSources returns the web and retrieval citations of the first
// candidate, skipping chunks with neither title nor URI and repeated URIs.
// Exported for testing.
func ExtractSources(resp *genai.GenerateContentResponse) []chatlib.Source {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var sources []chatlib.Source
	seen := make(map[string]bool)
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil {
			continue
		}
		var src chatlib.Source
		switch {
		case chunk.Web != nil:
			src = chatlib.Source{Title: chunk.Web.Title, URL: chunk.Web.URI}
		case chunk.RetrievedContext != nil:
			src = chatlib.Source{
				Title:   chunk.RetrievedContext.Title,
				URL:     chunk.RetrievedContext.URI,
				Snippet: chunk.RetrievedContext.Text,
			}
		default:
			continue
		}
		if src.Title == "" && src.URL == "" {
			continue
		}
		if src.URL != "" {
			if seen[src.URL] {
				continue
			}
			seen[src.URL] = true
		}
		sources = append(sources, src)
	}
	return sources
}
