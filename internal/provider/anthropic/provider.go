package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/julianshen/repodoc/internal/provider"
)

func init() {
	provider.RegisterProvider("anthropic", func(baseURL, apiKey string, _ map[string]string, client *http.Client) provider.LLMProvider {
		p := New(baseURL, apiKey)
		if client != nil {
			p.client = client
		}
		return p
	})
}

const apiVersion = "2023-06-01"

// Provider implements the LLMProvider interface for the Anthropic Messages API.
type Provider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates a new Anthropic provider.
func New(baseURL, apiKey string) *Provider {
	return &Provider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

// apiRequest is the request body sent to the Anthropic API.
type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	Stream      bool         `json:"stream"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Stream sends a completion request to the Anthropic API and returns a channel
// of StreamEvents parsed from the SSE response.
func (p *Provider) Stream(ctx context.Context, req provider.CompletionRequest) (<-chan provider.StreamEvent, error) {
	body, err := p.buildRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("building request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &provider.APIError{Provider: "anthropic", Status: resp.StatusCode, Body: string(respBody)}
	}

	ch := make(chan provider.StreamEvent)
	go p.processStream(ctx, resp.Body, ch)
	return ch, nil
}

func (p *Provider) buildRequestBody(req provider.CompletionRequest) ([]byte, error) {
	apiReq := apiRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Stream:    true,
		System:    req.System,
	}
	if req.Temperature != nil {
		temp := *req.Temperature
		apiReq.Temperature = &temp
	}
	for _, msg := range req.Messages {
		apiReq.Messages = append(apiReq.Messages, apiMessage{Role: msg.Role, Content: msg.Content})
	}
	return json.Marshal(apiReq)
}

// processStream reads SSE events from the response body and sends StreamEvents
// to the channel as they arrive. It closes both the body and the channel when done.
func (p *Provider) processStream(ctx context.Context, body io.ReadCloser, ch chan<- provider.StreamEvent) {
	defer close(ch)
	defer body.Close()

	scanner := provider.NewSSEScanner(body)
	for scanner.Next() {
		if ctx.Err() != nil {
			trySend(ch, provider.StreamEvent{Type: provider.EventError, Error: ctx.Err()})
			return
		}

		evt := convertSSEEvent(scanner.Event())
		if evt == nil {
			continue
		}

		select {
		case ch <- *evt:
		case <-ctx.Done():
			trySend(ch, provider.StreamEvent{Type: provider.EventError, Error: ctx.Err()})
			return
		}
		if evt.Type == provider.EventError {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		select {
		case ch <- provider.StreamEvent{Type: provider.EventError, Error: err}:
		case <-ctx.Done():
		}
	}
}

func trySend(ch chan<- provider.StreamEvent, evt provider.StreamEvent) {
	select {
	case ch <- evt:
	default:
	}
}

// convertSSEEvent converts a raw SSE event into a StreamEvent.
func convertSSEEvent(evt provider.SSEEvent) *provider.StreamEvent {
	switch evt.Event {
	case "message_start":
		return handleMessageStart(evt.Data)
	case "content_block_delta":
		return handleContentBlockDelta(evt.Data)
	case "message_delta":
		return handleMessageDelta(evt.Data)
	case "message_stop":
		return &provider.StreamEvent{Type: provider.EventStop}
	case "error":
		return handleError(evt.Data)
	default:
		return nil
	}
}

func handleMessageStart(data string) *provider.StreamEvent {
	var parsed struct {
		Message struct {
			Usage struct {
				InputTokens int `json:"input_tokens"`
			} `json:"usage"`
		} `json:"message"`
	}
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return &provider.StreamEvent{Type: provider.EventError, Error: fmt.Errorf("parsing message_start: %w", err)}
	}
	return &provider.StreamEvent{Type: provider.EventUsage, InputTokens: parsed.Message.Usage.InputTokens}
}

func handleContentBlockDelta(data string) *provider.StreamEvent {
	var parsed struct {
		Delta struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"delta"`
	}
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return &provider.StreamEvent{Type: provider.EventError, Error: fmt.Errorf("parsing content_block_delta: %w", err)}
	}
	if parsed.Delta.Type != "text_delta" {
		return nil
	}
	return &provider.StreamEvent{Type: provider.EventTextDelta, Text: parsed.Delta.Text}
}

func handleMessageDelta(data string) *provider.StreamEvent {
	var parsed struct {
		Delta struct {
			StopReason string `json:"stop_reason"`
		} `json:"delta"`
		Usage struct {
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return &provider.StreamEvent{Type: provider.EventError, Error: fmt.Errorf("parsing message_delta: %w", err)}
	}
	return &provider.StreamEvent{
		Type:         provider.EventUsage,
		StopReason:   parsed.Delta.StopReason,
		OutputTokens: parsed.Usage.OutputTokens,
	}
}

func handleError(data string) *provider.StreamEvent {
	var parsed struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return &provider.StreamEvent{Type: provider.EventError, Error: fmt.Errorf("stream error: %s", data)}
	}
	return &provider.StreamEvent{
		Type:  provider.EventError,
		Error: fmt.Errorf("stream error (%s): %s", parsed.Error.Type, parsed.Error.Message),
	}
}
