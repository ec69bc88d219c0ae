package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini streams replies from the Google generative language API. The
// upstream wire protocol is an SSE stream of GenerateContentResponse chunks;
// each chunk's candidate text is already a delta.
type Gemini struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// GeminiOption configures a Gemini client.
type GeminiOption func(*Gemini)

// WithGeminiBaseURL overrides the API base URL.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(c *Gemini) {
		c.baseURL = url
	}
}

// WithGeminiHTTPClient overrides the HTTP client.
func WithGeminiHTTPClient(hc *http.Client) GeminiOption {
	return func(c *Gemini) {
		c.httpClient = hc
	}
}

// NewGemini creates a Gemini streaming client.
func NewGemini(apiKey string, opts ...GeminiOption) *Gemini {
	c := &Gemini{
		apiKey:     apiKey,
		baseURL:    defaultGeminiBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the vendor.
func (c *Gemini) Name() string {
	return "gemini"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerateRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiChunk struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StreamReply opens a streaming generateContent call.
func (c *Gemini) StreamReply(ctx context.Context, req Request) (Stream, error) {
	contents := make([]geminiContent, 0, len(req.History)+1)
	for _, turn := range req.History {
		contents = append(contents, geminiContent{
			Role:  string(turn.Role),
			Parts: []geminiPart{{Text: turn.Text}},
		})
	}
	contents = append(contents, geminiContent{
		Role:  string(RoleUser),
		Parts: []geminiPart{{Text: req.Prompt}},
	})

	payload := geminiGenerateRequest{Contents: contents}
	if req.Instructions != "" {
		payload.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.Instructions}},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", c.baseURL, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling generate content: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:errcheck // Best-effort error detail.
		return nil, fmt.Errorf("generate content: unexpected status %d: %s", resp.StatusCode, detail)
	}

	return &geminiStream{
		body: resp.Body,
		sse:  newSSEReader(resp.Body),
	}, nil
}

// geminiStream decodes GenerateContentResponse events into delta fragments.
type geminiStream struct {
	body io.ReadCloser
	sse  *sseReader
}

// Recv returns the next delta fragment, io.EOF at the end of the stream, or
// a non-EOF error on malformed payloads, upstream errors, and transport
// failures.
func (s *geminiStream) Recv() (string, error) {
	for {
		payload, err := s.sse.next()
		if err != nil {
			if err == io.EOF {
				return "", io.EOF
			}
			return "", fmt.Errorf("reading stream: %w", err)
		}

		var chunk geminiChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return "", fmt.Errorf("decoding stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return "", fmt.Errorf("upstream error %d: %s", chunk.Error.Code, chunk.Error.Message)
		}
		if len(chunk.Candidates) == 0 {
			continue
		}

		var b strings.Builder
		for _, part := range chunk.Candidates[0].Content.Parts {
			b.WriteString(part.Text)
		}
		if b.Len() == 0 {
			continue
		}
		return b.String(), nil
	}
}

// Close releases the response body.
func (s *geminiStream) Close() error {
	return s.body.Close()
}
