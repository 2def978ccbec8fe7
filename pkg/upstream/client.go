// Package upstream talks to the generative search API that proposes candidate
// products.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultURL   = "https://api.perplexity.ai/chat/completions"
	defaultModel = "sonar"

	searchTemperature = 0.2
	searchMaxTokens   = 4000
)

// Config holds client settings.
type Config struct {
	APIKey  string
	URL     string
	Model   string
	Timeout time.Duration
}

// Client calls an OpenAI-compatible chat-completions endpoint with web search.
type Client struct {
	apiKey     string
	url        string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Message is a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the chat-completions request body.
type Request struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Temperature         float64   `json:"temperature"`
	MaxTokens           int       `json:"max_tokens"`
	TopP                float64   `json:"top_p,omitempty"`
	SearchDomainFilter  []string  `json:"search_domain_filter,omitempty"`
	SearchRecencyFilter string    `json:"search_recency_filter,omitempty"`
	ReturnImages        bool      `json:"return_images"`
	Stream              bool      `json:"stream"`
}

// Response is the subset of the chat-completions response we read.
type Response struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
}

// Choice is a single completion choice.
type Choice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates a client. The HTTP timeout is the only bound on a hung call.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		url:        cfg.URL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "upstream").Logger(),
	}
}

// Query asks the endpoint for products matching q and returns the raw decoded
// array elements. It fails with *UpstreamError or *ParseError.
func (c *Client) Query(ctx context.Context, q Query) ([]any, error) {
	req := Request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(q)},
		},
		Temperature:         searchTemperature,
		MaxTokens:           searchMaxTokens,
		TopP:                0.9,
		SearchDomainFilter:  []string{"amazon.com", "alibaba.com"},
		SearchRecencyFilter: "month",
	}

	content, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return ExtractJSONArray(content)
}

// Complete sends a single-turn prompt and returns the text reply.
func (c *Client) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	return c.do(ctx, Request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	})
}

func (c *Client) do(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", &UpstreamError{Status: http.StatusUnauthorized, Body: "search API key not configured"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &UpstreamError{Body: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &UpstreamError{Status: resp.StatusCode, Body: "failed to read response body", Err: err}
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("model", req.Model).
		Msg("search API responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamError{Status: resp.StatusCode, Body: diagnostic(respBody, resp.Status)}
	}

	var decoded Response
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", &ParseError{Raw: truncate(string(respBody), maxDiagnosticLen), Err: fmt.Errorf("decode response envelope: %w", err)}
	}
	if len(decoded.Choices) == 0 {
		return "", &ParseError{Raw: truncate(string(respBody), maxDiagnosticLen), Err: fmt.Errorf("response has no choices")}
	}
	return decoded.Choices[0].Message.Content, nil
}

// diagnostic prefers the API's own error message over the raw body.
func diagnostic(body []byte, status string) string {
	var apiErr apiErrorBody
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return truncate(apiErr.Error.Message, maxDiagnosticLen)
	}
	if len(bytes.TrimSpace(body)) > 0 {
		return truncate(string(body), maxDiagnosticLen)
	}
	return status
}
