// Package rest implements [chatlib.Answerer] against a retrieval-augmented
// question answering endpoint speaking JSON over HTTP.
//
// Request:  {"question": "...", "history": [{"role": "user", "content": "..."}]}
// Response: {"answer": "...", "sources": [{"title": "...", "url": "...", "snippet": "..."}]}
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/chatlib"
)

// DefaultURL is the endpoint used when none is configured.
const DefaultURL = "http://localhost:8000/chat"

// maxErrorBody bounds how much of an error response is quoted.
const maxErrorBody = 512

// Interface compliance check.
var _ chatlib.Answerer = (*Client)(nil)

// Client posts questions to a REST endpoint.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIKey sends key as a bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// New creates a [Client] for url. An empty url selects DefaultURL.
func New(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:        url,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type apiTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Question string    `json:"question"`
	History  []apiTurn `json:"history"`
}

type apiSource struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

type apiResponse struct {
	Answer  string      `json:"answer"`
	Sources []apiSource `json:"sources,omitempty"`
}

type apiError struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Answer posts the last user message as the question and the preceding
// messages as history.
func (c *Client) Answer(ctx context.Context, history []chatlib.Message) (chatlib.Reply, error) {
	apiReq := buildRequest(history)
	if apiReq.Question == "" {
		return chatlib.Reply{}, fmt.Errorf("rest: no user message in history")
	}
	body, err := json.Marshal(apiReq)
	if err != nil {
		return chatlib.Reply{}, fmt.Errorf("rest: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return chatlib.Reply{}, fmt.Errorf("rest: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chatlib.Reply{}, fmt.Errorf("rest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return chatlib.Reply{}, parseHTTPError(resp)
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return chatlib.Reply{}, fmt.Errorf("rest: decode response: %w", err)
	}
	text := strings.TrimSpace(out.Answer)
	if text == "" {
		return chatlib.Reply{}, fmt.Errorf("rest: %w", chatlib.ErrEmptyAnswer)
	}
	reply := chatlib.Reply{Text: text}
	for _, s := range out.Sources {
		reply.Sources = append(reply.Sources, chatlib.Source{Title: s.Title, URL: s.URL, Snippet: s.Snippet})
	}
	return reply, nil
}

// buildRequest splits history at the last user message. Everything before
// it becomes history; the welcome message is kept so the backend sees the
// conversation as the user did.
func buildRequest(history []chatlib.Message) apiRequest {
	last := -1
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].IsBot {
			last = i
			break
		}
	}
	req := apiRequest{History: []apiTurn{}}
	if last < 0 {
		return req
	}
	req.Question = history[last].Text
	for _, m := range history[:last] {
		role := "user"
		if m.IsBot {
			role = "assistant"
		}
		req.History = append(req.History, apiTurn{Role: role, Content: m.Text})
	}
	return req
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("rest: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		msg := apiErr.Error
		if msg == "" {
			msg = apiErr.Detail
		}
		if msg != "" {
			return fmt.Errorf("rest: HTTP %d: %s", resp.StatusCode, msg)
		}
	}
	return fmt.Errorf("rest: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
