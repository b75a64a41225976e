package tutorial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/riverfjs/torchmaster-go/internal/buffer"
	"github.com/riverfjs/torchmaster-go/internal/converter"
	"github.com/riverfjs/torchmaster-go/internal/source"
	"github.com/riverfjs/torchmaster-go/internal/types"
)

const (
	// SystemInstruction is the default instruction for tutorial generation.
	SystemInstruction = `You are a world-class PyTorch instructor designed to teach students from basics to expert level.
Your output must be strictly formatted in Markdown.
1. Use clear headings (#, ##).
2. Use code blocks (` + "```python ... ```" + `) for all code.
3. Use LaTeX for mathematical equations. Wrap inline math in single $ (e.g., $E=mc^2$) and block math in double $$ (e.g., $$E=mc^2$$).
4. Keep explanations concise but deep.
5. Always include a "Key Takeaway" section at the end.`
	// Temperature keeps tutorial output factual.
	Temperature = 0.3
	// NoContent is the document of a generation that produced no text.
	NoContent = "No content generated."
)

// ErrStale is returned by a load superseded by a newer Select.
var ErrStale = errors.New("tutorial: superseded by a newer selection")

// Status 加载状态
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the loader.
type Snapshot struct {
	Status  Status
	Topic   Topic
	Content string
	Blocks  []types.Block
	// Version counts the chunks applied to Content by the current load.
	Version int
	Err     error
}

// Config configures a Loader.
type Config struct {
	// Source generates the documents; required.
	Source            source.Generator
	SystemInstruction string
	Temperature       float64
	Logger            *log.Logger
	// OnChange receives a snapshot after every change, without the lock held.
	OnChange func(Snapshot)
}

// Loader fetches the document of the selected topic.
type Loader struct {
	cfg Config

	mu       sync.Mutex
	selected bool
	epoch    uint64
	snap     Snapshot
}

// NewLoader creates an idle loader with no topic selected.
func NewLoader(cfg Config) *Loader {
	if cfg.SystemInstruction == "" {
		cfg.SystemInstruction = SystemInstruction
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = Temperature
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	return &Loader{cfg: cfg}
}

// Snapshot returns the current state.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.copyLocked()
}

func (l *Loader) copyLocked() Snapshot {
	s := l.snap
	s.Blocks = append([]types.Block(nil), l.snap.Blocks...)
	return s
}

func (l *Loader) publish(s Snapshot) {
	if l.cfg.OnChange != nil {
		l.cfg.OnChange(s)
	}
}

func (l *Loader) request(t Topic) source.Request {
	return source.Request{
		Prompt:            t.Prompt,
		SystemInstruction: l.cfg.SystemInstruction,
		Temperature:       l.cfg.Temperature,
	}
}

// begin clears the document and enters Loading for t.
func (l *Loader) begin(t Topic) uint64 {
	l.mu.Lock()
	l.epoch++
	l.selected = true
	l.snap = Snapshot{Status: StatusLoading, Topic: t}
	epoch := l.epoch
	s := l.copyLocked()
	l.mu.Unlock()
	l.publish(s)
	return epoch
}

// apply runs fn on the state if epoch is still current.
func (l *Loader) apply(epoch uint64, fn func(*Snapshot)) bool {
	l.mu.Lock()
	if l.epoch != epoch {
		l.mu.Unlock()
		l.cfg.Logger.Printf("tutorial: discarding result of stale load")
		return false
	}
	fn(&l.snap)
	s := l.copyLocked()
	l.mu.Unlock()
	l.publish(s)
	return true
}

func setContent(s *Snapshot, text string) {
	s.Content = text
	s.Blocks = converter.Segment(text)
}

// Select loads the whole document of t and returns once it is applied.
func (l *Loader) Select(ctx context.Context, t Topic) error {
	epoch := l.begin(t)
	text, err := l.cfg.Source.Generate(ctx, l.request(t))
	if errors.Is(err, source.ErrNoResponse) {
		text, err = NoContent, nil
	}
	return l.complete(epoch, t, text, err)
}

func (l *Loader) complete(epoch uint64, t Topic, text string, err error) error {
	if err != nil {
		l.cfg.Logger.Printf("tutorial: generate %q: %v", t.ID, err)
	}
	ok := l.apply(epoch, func(s *Snapshot) {
		if err != nil {
			s.Status = StatusError
			s.Err = err
			return
		}
		setContent(s, text)
		s.Status = StatusSuccess
	})
	switch {
	case !ok:
		return ErrStale
	case err != nil:
		return fmt.Errorf("tutorial: load %q: %w", t.ID, err)
	}
	return nil
}

// Stream loads t chunk by chunk. The document is re-segmented after every
// chunk, so an unterminated fence shows as text until it closes.
func (l *Loader) Stream(ctx context.Context, t Topic) error {
	epoch := l.begin(t)
	acc := buffer.New()
	for chunk, err := range l.cfg.Source.GenerateStream(ctx, l.request(t)) {
		if err != nil {
			return l.complete(epoch, t, "", err)
		}
		if acc.Append(chunk) == "" {
			continue
		}
		text, version := acc.String(), acc.Version()
		if !l.apply(epoch, func(s *Snapshot) {
			setContent(s, text)
			s.Version = version
		}) {
			return ErrStale
		}
	}
	acc.Flush()
	text := acc.String()
	if text == "" {
		text = NoContent
	}
	return l.complete(epoch, t, text, nil)
}

// SelectID selects the topic of curriculum with the given id.
func (l *Loader) SelectID(ctx context.Context, c Curriculum, id string) error {
	t, err := c.Find(id)
	if err != nil {
		return err
	}
	return l.Select(ctx, t)
}

// Retry reloads the current topic.
func (l *Loader) Retry(ctx context.Context) error {
	l.mu.Lock()
	t, ok := l.snap.Topic, l.selected
	l.mu.Unlock()
	if !ok {
		return ErrNoTopic
	}
	return l.Select(ctx, t)
}
