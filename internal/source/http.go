package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"sync"

	"github.com/riverfjs/torchmaster-go/internal/types"
)

// HTTP is a Source backed by a plain-text streaming endpoint. Generation
// requests POST a JSON Request; chat messages POST a ChatRequest. The
// response body is the generated text, read as it arrives.
type HTTP struct {
	Endpoint  string
	Client    *http.Client
	ChunkSize int
}

// ChatRequest is the body of a chat turn.
type ChatRequest struct {
	SystemInstruction string              `json:"system_instruction,omitempty"`
	History           []types.ChatMessage `json:"history"`
	Message           string              `json:"message"`
}

// NewHTTP creates an HTTP source. A nil client uses http.DefaultClient.
func NewHTTP(endpoint string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{Endpoint: endpoint, Client: client}
}

// Generate returns the whole answer for req.
func (h *HTTP) Generate(ctx context.Context, req Request) (string, error) {
	return Collect(h.GenerateStream(ctx, req))
}

// GenerateStream streams the answer for req.
func (h *HTTP) GenerateStream(ctx context.Context, req Request) iter.Seq2[string, error] {
	return h.post(ctx, req)
}

// NewChat opens a conversation; the transcript is resent on every turn.
func (h *HTTP) NewChat(systemInstruction string) Chat {
	return &httpChat{source: h, instruction: systemInstruction}
}

func (h *HTTP) post(ctx context.Context, body any) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		payload, err := json.Marshal(body)
		if err != nil {
			yield("", fmt.Errorf("source http: encode request: %w", err))
			return
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(payload))
		if err != nil {
			yield("", fmt.Errorf("source http: build request: %w", err))
			return
		}
		if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
			yield("", fmt.Errorf("source http: unsupported scheme %q", req.URL.Scheme))
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/plain")

		resp, err := h.Client.Do(req)
		if err != nil {
			yield("", fmt.Errorf("source http: request: %w", err))
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			yield("", fmt.Errorf("source http: status %s", resp.Status))
			return
		}
		for chunk, err := range ReaderStream(ctx, resp.Body, h.ChunkSize) {
			if !yield(chunk, err) || err != nil {
				return
			}
		}
	}
}

type httpChat struct {
	source      *HTTP
	instruction string

	mu      sync.Mutex
	history []types.ChatMessage
}

// SendMessageStream sends message with the transcript so far. The exchange
// joins the history only when the reply completes.
func (c *httpChat) SendMessageStream(ctx context.Context, message string) iter.Seq2[string, error] {
	c.mu.Lock()
	body := ChatRequest{
		SystemInstruction: c.instruction,
		History:           append([]types.ChatMessage(nil), c.history...),
		Message:           message,
	}
	c.mu.Unlock()

	return func(yield func(string, error) bool) {
		var reply strings.Builder
		for chunk, err := range c.source.post(ctx, body) {
			if err != nil {
				yield("", err)
				return
			}
			reply.WriteString(chunk)
			if !yield(chunk, nil) {
				return
			}
		}
		c.mu.Lock()
		c.history = append(c.history,
			types.ChatMessage{Role: types.RoleUser, Text: message},
			types.ChatMessage{Role: types.RoleModel, Text: reply.String()})
		c.mu.Unlock()
	}
}
