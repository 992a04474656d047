package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/julianshen/repodoc/internal/provider"
)

func init() {
	provider.RegisterProvider("openai", func(baseURL, apiKey string, extraHeaders map[string]string, client *http.Client) provider.LLMProvider {
		p := New(baseURL, apiKey, extraHeaders)
		if client != nil {
			p.client = client
		}
		return p
	})
}

// Provider implements LLMProvider for OpenAI-compatible chat completion APIs.
type Provider struct {
	baseURL      string
	apiKey       string
	extraHeaders map[string]string
	client       *http.Client
}

// New creates a new OpenAI-compatible provider. baseURL should include the
// API version prefix, e.g. https://api.openai.com/v1.
func New(baseURL, apiKey string, extraHeaders map[string]string) *Provider {
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}
	return &Provider{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		extraHeaders: extraHeaders,
		client:       &http.Client{},
	}
}

type apiRequest struct {
	Model         string         `json:"model"`
	Messages      []apiMessage   `json:"messages"`
	MaxTokens     int            `json:"max_tokens"`
	Temperature   *float64       `json:"temperature,omitempty"`
	Stream        bool           `json:"stream"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChunk struct {
	Choices []chunkChoice `json:"choices"`
	Usage   *chunkUsage   `json:"usage"`
}

type chunkChoice struct {
	Delta        chunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

type chunkDelta struct {
	Content *string `json:"content"`
}

type chunkUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Stream sends a chat completion request and returns a channel of
// StreamEvents parsed from the SSE response.
func (p *Provider) Stream(ctx context.Context, req provider.CompletionRequest) (<-chan provider.StreamEvent, error) {
	body, err := p.buildRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("building request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	for k, v := range p.extraHeaders {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &provider.APIError{Provider: "openai", Status: resp.StatusCode, Body: string(respBody)}
	}

	ch := make(chan provider.StreamEvent)
	go p.processStream(ctx, resp.Body, ch)
	return ch, nil
}

func (p *Provider) buildRequestBody(req provider.CompletionRequest) ([]byte, error) {
	apiReq := apiRequest{
		Model:         req.Model,
		MaxTokens:     req.MaxTokens,
		Stream:        true,
		StreamOptions: &streamOptions{IncludeUsage: true},
	}
	if req.Temperature != nil {
		temp := *req.Temperature
		apiReq.Temperature = &temp
	}
	if req.System != "" {
		apiReq.Messages = append(apiReq.Messages, apiMessage{Role: "system", Content: req.System})
	}
	for _, msg := range req.Messages {
		apiReq.Messages = append(apiReq.Messages, apiMessage{Role: msg.Role, Content: msg.Content})
	}
	return json.Marshal(apiReq)
}

// processStream reads SSE data lines from the response body and sends
// StreamEvents until [DONE].
func (p *Provider) processStream(ctx context.Context, body io.ReadCloser, ch chan<- provider.StreamEvent) {
	defer close(ch)
	defer body.Close()

	send := func(evt provider.StreamEvent) bool {
		select {
		case ch <- evt:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := provider.NewSSEScanner(body)
	for scanner.Next() {
		if ctx.Err() != nil {
			select {
			case ch <- provider.StreamEvent{Type: provider.EventError, Error: ctx.Err()}:
			default:
			}
			return
		}

		data := scanner.Event().Data
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			send(provider.StreamEvent{Type: provider.EventStop})
			return
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			send(provider.StreamEvent{Type: provider.EventError, Error: fmt.Errorf("parsing chunk: %w", err)})
			return
		}

		if chunk.Usage != nil {
			if !send(provider.StreamEvent{
				Type:         provider.EventUsage,
				InputTokens:  chunk.Usage.PromptTokens,
				OutputTokens: chunk.Usage.CompletionTokens,
			}) {
				return
			}
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if c := choice.Delta.Content; c != nil && *c != "" {
			if !send(provider.StreamEvent{Type: provider.EventTextDelta, Text: *c}) {
				return
			}
		}
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			if !send(provider.StreamEvent{Type: provider.EventUsage, StopReason: *choice.FinishReason}) {
				return
			}
		}
	}

	if err := scanner.Err(); err != nil {
		send(provider.StreamEvent{Type: provider.EventError, Error: err})
	}
}
