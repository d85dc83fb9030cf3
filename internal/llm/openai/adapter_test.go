package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terrascribe/llm-api/internal/llm"
	"github.com/terrascribe/llm-api/pkg/api"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) llm.Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewAdapter(llm.ProviderConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return adapter
}

func TestComplete(t *testing.T) {
	var captured Request
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-123",
			"model": "gpt-4",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello there!"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 12, "total_tokens": 21}
		}`))
	})

	resp, err := adapter.Complete(context.Background(), &api.CompletionRequest{
		Prompt:  "Hi",
		ModelID: "gpt-4",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello there!", resp.Content)
	// usage passes through verbatim, total included
	assert.Equal(t, api.Usage{PromptTokens: 9, CompletionTokens: 12, TotalTokens: 21}, resp.Usage)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "Hi", captured.Messages[1].Content)
	assert.Equal(t, 2000, captured.MaxTokens)
	assert.Equal(t, 0.7, captured.Temperature)
}

func TestComplete_WithDocuments(t *testing.T) {
	var captured Request
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}], "usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}}`))
	})

	_, err := adapter.Complete(context.Background(), &api.CompletionRequest{
		Prompt:    "Review the abstract",
		ModelID:   "gpt-4",
		Documents: []api.Document{{Name: "abstract.txt", Content: "Abstract body"}},
	})
	require.NoError(t, err)

	require.Len(t, captured.Messages, 2)
	assert.Contains(t, captured.Messages[1].Content, "Document 1: abstract.txt")
	assert.Contains(t, captured.Messages[1].Content, "User request: Review the abstract")
}

func TestComplete_TruncatesLargeDocuments(t *testing.T) {
	var captured Request
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}], "usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}}`))
	})

	_, err := adapter.Complete(context.Background(), &api.CompletionRequest{
		Prompt:    "Summarize",
		ModelID:   "gpt-4",
		Documents: []api.Document{{Name: "core.txt", Content: strings.Repeat("a", 50000)}},
	})
	require.NoError(t, err)

	require.Len(t, captured.Messages, 2)
	userTurn := captured.Messages[1].Content
	assert.Contains(t, userTurn, truncationMarker)
	// the document body is cut to the limit, not sent whole
	assert.Less(t, len(userTurn), maxDocumentChars+1000)
}

func TestTruncate(t *testing.T) {
	short := strings.Repeat("a", maxDocumentChars)
	assert.Equal(t, short, truncate(short))

	long := strings.Repeat("b", maxDocumentChars+500)
	got := truncate(long)
	assert.Equal(t, long[:maxDocumentChars]+truncationMarker, got)
	// stable under reprocessing of the same input
	assert.Equal(t, got, truncate(long))
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// place a multi-byte rune straddling the cut point
	long := strings.Repeat("x", maxDocumentChars-1) + "日本語テキスト"
	got := truncate(long)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, truncationMarker))
}

func TestComplete_UpstreamError(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	})

	_, err := adapter.Complete(context.Background(), &api.CompletionRequest{
		Prompt:  "Hi",
		ModelID: "gpt-4",
	})
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Code)
	assert.Contains(t, apiErr.Message, "status 401")
	assert.Contains(t, apiErr.Message, "Incorrect API key provided")
}

func TestListModels(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": [
			{"id": "gpt-4", "object": "model", "owned_by": "openai"},
			{"id": "gpt-3.5-turbo", "object": "model", "owned_by": "openai"},
			{"id": "gpt-3.5-turbo-instruct", "object": "model", "owned_by": "openai"},
			{"id": "whisper-1", "object": "model", "owned_by": "openai"}
		]}`))
	})

	models, err := adapter.ListModels(context.Background())
	require.NoError(t, err)

	// instruct variants and non-gpt models are excluded
	require.Len(t, models, 2)

	assert.Equal(t, "gpt-4", models[0].ID)
	assert.Equal(t, api.ProviderOpenAI, models[0].Provider)
	assert.Equal(t, 8192, models[0].MaxTokens)
	assert.Equal(t, 0.03, models[0].InputPricePerToken)
	assert.Equal(t, 0.06, models[0].OutputPricePerToken)

	assert.Equal(t, "gpt-3.5-turbo", models[1].ID)
	assert.Equal(t, 4096, models[1].MaxTokens)
	assert.Equal(t, 0.0015, models[1].InputPricePerToken)
	assert.Equal(t, 0.002, models[1].OutputPricePerToken)
}

func TestListModels_UpstreamFailure(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := adapter.ListModels(context.Background())
	require.Error(t, err)
}
