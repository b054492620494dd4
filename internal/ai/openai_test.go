package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIProvider(srv.URL, "test-key", "test-model")
}

func TestGenerate_FlatOutputText(t *testing.T) {
	var gotReq openaiResponsesReq
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/responses", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"output_text": "  flat reply  ",
			"usage":       map[string]any{"total_tokens": 17},
		})
	})

	res, err := p.Generate(context.Background(), []Message{{Role: "user", Content: "earlier"}}, "now")
	require.NoError(t, err)
	assert.Equal(t, "flat reply", res.Text)
	assert.Equal(t, 17, res.TokensUsed)

	// system persona + prior + new user message
	require.Len(t, gotReq.Input, 3)
	assert.Equal(t, "system", gotReq.Input[0].Role)
	assert.Equal(t, SystemPrompt, gotReq.Input[0].Content)
	assert.Equal(t, "now", gotReq.Input[2].Content)
}

func TestGenerate_NestedContentParts(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"output": []map[string]any{
				{"type": "reasoning", "content": []map[string]any{}},
				{"type": "message", "content": []map[string]any{
					{"type": "output_text", "text": "part one "},
					{"type": "annotation", "text": "skipped"},
					{"type": "output_text", "text": "part two"},
				}},
			},
			"usage": map[string]any{"total_tokens": 5},
		})
	})

	res, err := p.Generate(context.Background(), nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, "part one part two", res.Text)
	assert.Equal(t, 5, res.TokensUsed)
}

func TestGenerate_ProviderError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key"},
		})
	})

	_, err := p.Generate(context.Background(), nil, "hi")
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Contains(t, genErr.Error(), "invalid api key")
}

func TestGenerate_EmptyCompletionIsError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"output": []any{}})
	})

	_, err := p.Generate(context.Background(), nil, "hi")
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	p := NewOpenAIProvider("", "", "")
	_, err := p.Generate(context.Background(), nil, "hi")
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
}
