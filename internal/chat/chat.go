// Package chat implements the streaming chat transcript of the tutor.
//
// A Session moves Idle -> Sending -> Streaming -> Idle, or through Error
// back to Idle when the stream fails. The transcript is append-only; while a
// reply streams in, its entry is replaced by a new value on every chunk and
// only inline formatting is applied to it.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/riverfjs/torchmaster-go/internal/buffer"
	"github.com/riverfjs/torchmaster-go/internal/converter"
	"github.com/riverfjs/torchmaster-go/internal/source"
	"github.com/riverfjs/torchmaster-go/internal/types"
)

const (
	// Greeting opens every session.
	Greeting = "Hi! I'm your PyTorch tutor. Ask me anything about the code or concepts!"
	// ErrorMessage replaces a reply whose stream failed.
	ErrorMessage = "Sorry, I encountered an error. Please try again."
	// SystemInstruction is the default assistant instruction.
	SystemInstruction = "You are a helpful PyTorch teaching assistant. Answer questions briefly and provide code snippets where relevant. Use LaTeX for math ($...$) where needed. Assume the user is currently learning from a tutorial."
)

var (
	// ErrEmptyMessage rejects blank input.
	ErrEmptyMessage = errors.New("chat: message is empty")
	// ErrBusy rejects a send while a reply is still streaming.
	ErrBusy = errors.New("chat: a reply is still streaming")
	// ErrStale is returned by a Send whose session was reset mid-stream.
	ErrStale = errors.New("chat: session was reset")
)

// State 会话状态
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateError
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of a session.
type Snapshot struct {
	State    State
	Messages []types.MessageView
}

// Config configures a Session.
type Config struct {
	// Source opens the underlying conversation; required.
	Source            source.ChatFactory
	SystemInstruction string
	Greeting          string
	Logger            *log.Logger
	// OnChange receives a snapshot after every state or transcript change.
	// It is called without the session lock held.
	OnChange func(Snapshot)
}

// Session 一次聊天会话
type Session struct {
	cfg Config

	mu       sync.Mutex
	chat     source.Chat
	messages []types.MessageView
	state    State
	epoch    uint64
	lastErr  error
}

// New creates a session holding only the greeting.
func New(cfg Config) *Session {
	if cfg.SystemInstruction == "" {
		cfg.SystemInstruction = SystemInstruction
	}
	if cfg.Greeting == "" {
		cfg.Greeting = Greeting
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	s := &Session{cfg: cfg}
	s.resetLocked()
	return s
}

func view(role types.Role, text string) types.MessageView {
	return types.MessageView{
		Message:   types.ChatMessage{Role: role, Text: text},
		Fragments: converter.FormatInline(text),
	}
}

func (s *Session) resetLocked() {
	s.epoch++
	s.chat = s.cfg.Source.NewChat(s.cfg.SystemInstruction)
	s.messages = []types.MessageView{view(types.RoleModel, s.cfg.Greeting)}
	s.state = StateIdle
	s.lastErr = nil
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:    s.state,
		Messages: append([]types.MessageView(nil), s.messages...),
	}
}

func (s *Session) publish(snap Snapshot) {
	if s.cfg.OnChange != nil {
		s.cfg.OnChange(snap)
	}
}

// Snapshot returns the current state and transcript.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Messages returns the transcript without formatting.
func (s *Session) Messages() []types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ChatMessage, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.Message
	}
	return out
}

// Err returns the failure of the last send, nil if it succeeded.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reset replaces the conversation with a fresh one. A stream still running
// for the old conversation is ignored from here on.
func (s *Session) Reset() {
	s.mu.Lock()
	s.resetLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// Send appends text as a user message and streams the reply into a model
// placeholder. It returns once the reply completes, fails, or goes stale.
func (s *Session) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.messages = append(s.messages, view(types.RoleUser, text))
	s.state = StateSending
	s.lastErr = nil
	sending := s.snapshotLocked()

	placeholder := view(types.RoleModel, "")
	placeholder.Pending = true
	s.messages = append(s.messages, placeholder)
	s.state = StateStreaming
	streaming := s.snapshotLocked()
	epoch, conversation := s.epoch, s.chat
	s.mu.Unlock()

	s.publish(sending)
	s.publish(streaming)

	acc := buffer.New()
	for chunk, err := range conversation.SendMessageStream(ctx, text) {
		if err != nil {
			return s.fail(epoch, err)
		}
		if acc.Append(chunk) == "" {
			continue
		}
		if !s.update(epoch, acc.String()) {
			return ErrStale
		}
	}
	if acc.Flush() != "" && !s.update(epoch, acc.String()) {
		return ErrStale
	}
	return s.finish(epoch)
}

// update replaces the placeholder with the accumulated reply. It reports
// false if the session was reset since the stream started.
func (s *Session) update(epoch uint64, text string) bool {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.cfg.Logger.Printf("chat: discarding chunk of stale stream")
		return false
	}
	s.messages[len(s.messages)-1] = view(types.RoleModel, text)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return true
}

func (s *Session) finish(epoch uint64) error {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return ErrStale
	}
	last := &s.messages[len(s.messages)-1]
	last.Pending = false
	s.state = StateIdle
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return nil
}

func (s *Session) fail(epoch uint64, err error) error {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.cfg.Logger.Printf("chat: ignoring error of stale stream: %v", err)
		return ErrStale
	}
	s.cfg.Logger.Printf("chat: stream failed: %v", err)
	s.lastErr = err
	s.state = StateError
	s.messages[len(s.messages)-1] = view(types.RoleModel, ErrorMessage)
	failed := s.snapshotLocked()
	s.state = StateIdle
	idle := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(failed)
	s.publish(idle)
	return fmt.Errorf("chat: stream reply: %w", err)
}
