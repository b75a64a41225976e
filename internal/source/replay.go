package source

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"time"
)

// ErrInjected is the failure yielded by a Replay configured with FailAfter.
var ErrInjected = errors.New("source: injected stream failure")

// Replay is an offline Source. It answers every prompt from Responses (keyed
// by the exact prompt), falling back to Default, and streams the answer in
// chunks of ChunkSize runes with Delay between chunks.
type Replay struct {
	Responses map[string]string
	Default   string
	ChunkSize int
	Delay     time.Duration
	// FailAfter > 0 yields Err (ErrInjected if nil) after that many chunks.
	FailAfter int
	Err       error

	mu       sync.Mutex
	requests []Request
}

// NewReplay creates a Replay answering every prompt with text.
func NewReplay(text string, chunkSize int, delay time.Duration) *Replay {
	return &Replay{Default: text, ChunkSize: chunkSize, Delay: delay}
}

// Requests returns the requests seen so far, chat messages included.
func (r *Replay) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.requests...)
}

func (r *Replay) record(req Request) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if text, ok := r.Responses[req.Prompt]; ok {
		return text
	}
	return r.Default
}

// Generate returns the whole answer for req.
func (r *Replay) Generate(ctx context.Context, req Request) (string, error) {
	return Collect(r.GenerateStream(ctx, req))
}

// GenerateStream streams the answer for req.
func (r *Replay) GenerateStream(ctx context.Context, req Request) iter.Seq2[string, error] {
	text := r.record(req)
	return r.stream(ctx, text)
}

// NewChat opens a replay conversation. Every message is answered like a
// prompt under the given system instruction.
func (r *Replay) NewChat(systemInstruction string) Chat {
	return &replayChat{replay: r, instruction: systemInstruction}
}

type replayChat struct {
	replay      *Replay
	instruction string
}

func (c *replayChat) SendMessageStream(ctx context.Context, message string) iter.Seq2[string, error] {
	return c.replay.GenerateStream(ctx, Request{Prompt: message, SystemInstruction: c.instruction})
}

func (r *Replay) stream(ctx context.Context, text string) iter.Seq2[string, error] {
	chunks := splitRunes(text, r.ChunkSize)
	failAfter, failErr := r.FailAfter, r.Err
	if failErr == nil {
		failErr = ErrInjected
	}
	delay := r.Delay

	return func(yield func(string, error) bool) {
		for i, chunk := range chunks {
			if failAfter > 0 && i == failAfter {
				yield("", failErr)
				return
			}
			if i > 0 && delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					yield("", ctx.Err())
					return
				case <-timer.C:
				}
			} else if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
		if failAfter > 0 && failAfter >= len(chunks) {
			yield("", failErr)
		}
	}
}

// splitRunes cuts text into pieces of at most size runes. Size <= 0 keeps
// the text whole.
func splitRunes(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}
	var chunks []string
	var sb strings.Builder
	n := 0
	for _, r := range text {
		sb.WriteRune(r)
		n++
		if n == size {
			chunks = append(chunks, sb.String())
			sb.Reset()
			n = 0
		}
	}
	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}
	return chunks
}
