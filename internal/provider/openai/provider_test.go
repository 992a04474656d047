package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julianshen/repodoc/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(ch <-chan provider.StreamEvent) []provider.StreamEvent {
	var events []provider.StreamEvent
	for evt := range ch {
		events = append(events, evt)
	}
	return events
}

func TestStreamTextResponse(t *testing.T) {
	sseBody := `data: {"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"role":"assistant","content":""},"finish_reason":null}]}

data: {"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"Hello"},"finish_reason":null}]}

data: {"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":" world"},"finish_reason":null}]}

data: {"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"!"},"finish_reason":null}]}

data: {"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}

data: {"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[],"usage":{"prompt_tokens":12,"completion_tokens":3}}

data: [DONE]

`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "https://example.com", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(sseBody))
	}))
	defer server.Close()

	p := New(server.URL+"/", "test-api-key", map[string]string{"HTTP-Referer": "https://example.com"})
	var _ provider.LLMProvider = p

	ch, err := p.Stream(context.Background(), provider.CompletionRequest{
		Model:     "gpt-4o",
		Messages:  []provider.Message{provider.NewUserMessage("Hi")},
		MaxTokens: 1024,
	})
	require.NoError(t, err)

	var texts []string
	var stopReason string
	var usage provider.StreamEvent
	events := collect(ch)
	for _, evt := range events {
		switch evt.Type {
		case provider.EventTextDelta:
			texts = append(texts, evt.Text)
		case provider.EventUsage:
			if evt.StopReason != "" {
				stopReason = evt.StopReason
			}
			if evt.InputTokens > 0 {
				usage = evt
			}
		}
	}

	assert.Equal(t, []string{"Hello", " world", "!"}, texts)
	assert.Equal(t, "stop", stopReason)
	assert.Equal(t, 12, usage.InputTokens)
	assert.Equal(t, 3, usage.OutputTokens)
	require.NotEmpty(t, events)
	assert.Equal(t, provider.EventStop, events[len(events)-1].Type)
}

func TestStreamRequestBodyIncludesSystemMessage(t *testing.T) {
	var captured apiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	ch, err := New(server.URL, "", nil).Stream(context.Background(), provider.CompletionRequest{
		Model:     "local-model",
		System:    "You are a technical writer.",
		Messages:  []provider.Message{provider.NewUserMessage("document this")},
		MaxTokens: 8192,
	})
	require.NoError(t, err)
	collect(ch)

	assert.Equal(t, "local-model", captured.Model)
	assert.Equal(t, 8192, captured.MaxTokens)
	assert.True(t, captured.Stream)
	require.NotNil(t, captured.StreamOptions)
	assert.True(t, captured.StreamOptions.IncludeUsage)
	assert.Nil(t, captured.Temperature)
	assert.Equal(t, []apiMessage{
		{Role: "system", Content: "You are a technical writer."},
		{Role: "user", Content: "document this"},
	}, captured.Messages)
}

func TestStreamNoAuthHeaderWithoutKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	ch, err := New(server.URL, "", nil).Stream(context.Background(), provider.CompletionRequest{Model: "m", MaxTokens: 1})
	require.NoError(t, err)
	events := collect(ch)
	require.Len(t, events, 1)
	assert.Equal(t, provider.EventStop, events[0].Type)
}

func TestStreamAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit"}}`))
	}))
	defer server.Close()

	_, err := New(server.URL, "k", nil).Stream(context.Background(), provider.CompletionRequest{Model: "m", MaxTokens: 1})
	require.Error(t, err)

	var apiErr *provider.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "openai", apiErr.Provider)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
}

func TestStreamMalformedChunk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data: {broken\n\ndata: [DONE]\n\n"))
	}))
	defer server.Close()

	ch, err := New(server.URL, "k", nil).Stream(context.Background(), provider.CompletionRequest{Model: "m", MaxTokens: 1})
	require.NoError(t, err)

	events := collect(ch)
	require.Len(t, events, 1)
	assert.Equal(t, provider.EventError, events[0].Type)
	assert.Contains(t, events[0].Error.Error(), "parsing chunk")
}
