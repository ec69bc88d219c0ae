package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI streams chat completions from the OpenAI API. The upstream wire
// protocol is an SSE stream of chat.completion.chunk objects carrying delta
// fragments, terminated by a "[DONE]" sentinel line.
type OpenAI struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// OpenAIOption configures an OpenAI client.
type OpenAIOption func(*OpenAI)

// WithOpenAIBaseURL overrides the API base URL.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *OpenAI) {
		c.baseURL = url
	}
}

// WithOpenAIHTTPClient overrides the HTTP client.
func WithOpenAIHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *OpenAI) {
		c.httpClient = hc
	}
}

// NewOpenAI creates an OpenAI streaming client.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	c := &OpenAI{
		apiKey:     apiKey,
		baseURL:    defaultOpenAIBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the vendor.
func (c *OpenAI) Name() string {
	return "openai"
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type openAIChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// StreamReply opens a streaming chat-completions call.
func (c *OpenAI) StreamReply(ctx context.Context, req Request) (Stream, error) {
	messages := make([]openAIMessage, 0, len(req.History)+2)
	if req.Instructions != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.Instructions})
	}
	for _, turn := range req.History {
		role := "user"
		if turn.Role == RoleModel {
			role = "assistant"
		}
		messages = append(messages, openAIMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(openAIChatRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling chat completions: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:errcheck // Best-effort error detail.
		return nil, fmt.Errorf("chat completions: unexpected status %d: %s", resp.StatusCode, detail)
	}

	return &openAIStream{
		body: resp.Body,
		sse:  newSSEReader(resp.Body),
	}, nil
}

// openAIStream decodes chat.completion.chunk events into delta fragments.
type openAIStream struct {
	body io.ReadCloser
	sse  *sseReader
	done bool
}

// Recv returns the next delta fragment, io.EOF at the [DONE] sentinel, or a
// non-EOF error on malformed payloads and transport failures.
func (s *openAIStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for {
		payload, err := s.sse.next()
		if err != nil {
			if err == io.EOF {
				// Server closed the stream without the sentinel.
				s.done = true
				return "", io.EOF
			}
			return "", fmt.Errorf("reading stream: %w", err)
		}

		if payload == "[DONE]" {
			s.done = true
			return "", io.EOF
		}

		var chunk openAIChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return "", fmt.Errorf("decoding stream chunk: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
		// Role-only or finish chunks carry no text; keep reading.
	}
}

// Close releases the response body.
func (s *openAIStream) Close() error {
	return s.body.Close()
}
