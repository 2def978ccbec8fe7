package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", URL: srv.URL, Model: "sonar", Timeout: 2 * time.Second}, zerolog.Nop())
}

func completion(content string) string {
	b, _ := json.Marshal(Response{ID: "cmpl-1", Choices: []Choice{{Message: Message{Role: "assistant", Content: content}}}})
	return string(b)
}

func TestClient_QuerySuccess(t *testing.T) {
	var got Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(completion("```json\n[{\"title\":\"Bands\",\"asin\":\"B0ABCDEFGH\"}]\n```")))
	})

	items, err := c.Query(context.Background(), Query{Category: "Fitness", Keyword: "bands"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Bands", items[0].(map[string]any)["title"])

	assert.Equal(t, "sonar", got.Model)
	assert.Equal(t, searchTemperature, got.Temperature)
	assert.Equal(t, searchMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, `"bands"`)
}

func TestClient_QueryBadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	})

	_, err := c.Query(context.Background(), Query{Category: "Tech"})
	var uerr *UpstreamError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, http.StatusTooManyRequests, uerr.Status)
	assert.Equal(t, "rate limit exceeded", uerr.Body)
}

func TestClient_QueryBadStatusTruncatesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("x", 2000)))
	})

	_, err := c.Query(context.Background(), Query{Category: "Tech"})
	var uerr *UpstreamError
	require.True(t, errors.As(err, &uerr))
	assert.LessOrEqual(t, len(uerr.Body), maxDiagnosticLen+3)
}

func TestClient_QueryParseError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completion("```json\n{not valid}\n```")))
	})

	_, err := c.Query(context.Background(), Query{Category: "Tech"})
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	var uerr *UpstreamError
	assert.False(t, errors.As(err, &uerr))
}

func TestClient_MissingAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()
	c := NewClient(Config{URL: srv.URL}, zerolog.Nop())

	_, err := c.Query(context.Background(), Query{Category: "Tech"})
	var uerr *UpstreamError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, http.StatusUnauthorized, uerr.Status)
	assert.False(t, called)
}

func TestClient_Complete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completion("Bundle the mat with the bands.")))
	})

	text, err := c.Complete(context.Background(), "system", "prompt", 300)
	require.NoError(t, err)
	assert.Equal(t, "Bundle the mat with the bands.", text)
}
