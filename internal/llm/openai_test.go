package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joke-cli/internal/apperr"
)

func openAIServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL + "/v1"
}

func writeAPIError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": msg, "type": "invalid_request_error"},
	})
}

func TestOpenAIChat_Generate(t *testing.T) {
	var got map[string]any
	base := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "A chat joke"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	})

	resp, err := NewOpenAIChat("key", base).Generate(context.Background(), testRequest("gpt-4o-mini"))
	require.NoError(t, err)
	assert.Equal(t, "A chat joke", resp.Content)
	assert.Equal(t, 15, resp.TotalTokens)
	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 200, got["max_tokens"])
}

func TestOpenAIChat_NotAChatModelIsUnsupported(t *testing.T) {
	base := openAIServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeAPIError(w, http.StatusNotFound, "This is not a chat model and thus not supported in the v1/chat/completions endpoint.")
	})

	_, err := NewOpenAIChat("key", base).Generate(context.Background(), testRequest("my-instruct-model"))
	assert.Equal(t, apperr.KindUnsupported, apperr.KindOf(err))
}

func TestOpenAIChat_StatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   apperr.Kind
	}{
		{http.StatusTooManyRequests, apperr.KindThrottled},
		{http.StatusUnauthorized, apperr.KindCredentials},
		{http.StatusForbidden, apperr.KindAccessDenied},
		{http.StatusServiceUnavailable, apperr.KindUnavailable},
		{http.StatusBadRequest, apperr.KindService},
	}
	for _, tc := range cases {
		base := openAIServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeAPIError(w, tc.status, "nope")
		})
		_, err := NewOpenAIChat("key", base).Generate(context.Background(), testRequest("gpt-4o-mini"))
		assert.Equal(t, tc.want, apperr.KindOf(err), "status %d", tc.status)
	}
}

func TestOpenAICompletion_Generate(t *testing.T) {
	base := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "gpt-3.5-turbo-instruct",
			"choices": [{"index": 0, "text": "A completion joke"}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 4, "total_tokens": 7}
		}`))
	})

	c := NewOpenAICompletion("key", base)
	assert.Equal(t, ShapeRawInvoke, c.Shape())
	resp, err := c.Generate(context.Background(), testRequest("gpt-3.5-turbo-instruct"))
	require.NoError(t, err)
	assert.Equal(t, "A completion joke", resp.Content)
}

func TestOpenAI_EmptyChoicesIsMalformed(t *testing.T) {
	base := openAIServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model": "gpt-4o-mini", "choices": []}`))
	})

	_, err := NewOpenAIChat("key", base).Generate(context.Background(), testRequest("gpt-4o-mini"))
	assert.Equal(t, apperr.KindMalformed, apperr.KindOf(err))
}

func TestOpenAI_DeadlineIsTimeout(t *testing.T) {
	block := make(chan struct{})
	base := openAIServer(t, func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	})
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewOpenAIChat("key", base).Generate(ctx, testRequest("gpt-4o-mini"))
	assert.Equal(t, apperr.KindTimeout, apperr.KindOf(err))
}
