// Package source defines the generation service consumed by the tutorial
// loader and chat sessions, with a replaying simulator and an HTTP client.
//
// Streams are iter.Seq2[string, error] sequences: chunks arrive in order and
// are never retracted. A stream ends when the sequence ends or yields a
// non-nil error; the consumer may stop ranging at any time.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
)

// ErrNoResponse is returned when the service completes without any text.
var ErrNoResponse = errors.New("source: no content generated")

// Request is one generation call.
type Request struct {
	Prompt            string  `json:"prompt"`
	SystemInstruction string  `json:"system_instruction,omitempty"`
	Temperature       float64 `json:"temperature,omitempty"`
}

// Generator produces text for a prompt, whole or streamed.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	GenerateStream(ctx context.Context, req Request) iter.Seq2[string, error]
}

// Chat is a multi-turn conversation with the service.
type Chat interface {
	SendMessageStream(ctx context.Context, message string) iter.Seq2[string, error]
}

// ChatFactory opens conversations.
type ChatFactory interface {
	NewChat(systemInstruction string) Chat
}

// Source is a complete generation service.
type Source interface {
	Generator
	ChatFactory
}

// Collect drains a stream into one string. An empty result is ErrNoResponse.
func Collect(stream iter.Seq2[string, error]) (string, error) {
	var out []byte
	for chunk, err := range stream {
		if err != nil {
			return string(out), err
		}
		out = append(out, chunk...)
	}
	if len(out) == 0 {
		return "", ErrNoResponse
	}
	return string(out), nil
}

// ReaderStream yields the content of r in chunks of at most size bytes. Read
// errors other than io.EOF end the stream. Chunks may split multi-byte
// characters; buffer.Accumulator reassembles them.
func ReaderStream(ctx context.Context, r io.Reader, size int) iter.Seq2[string, error] {
	if size <= 0 {
		size = 4096
	}
	return func(yield func(string, error) bool) {
		buf := make([]byte, size)
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			n, err := r.Read(buf)
			if n > 0 && !yield(string(buf[:n]), nil) {
				return
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("source: read stream: %w", err))
				return
			}
		}
	}
}
