package tutorial

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"testing"

	"github.com/riverfjs/torchmaster-go/internal/source"
	"github.com/riverfjs/torchmaster-go/internal/types"
)

func TestDefaultCurriculum(t *testing.T) {
	c := DefaultCurriculum()
	wantModules := []struct {
		difficulty Difficulty
		ids        []string
	}{
		{Basics, []string{"tensors-intro", "tensor-ops", "autograd"}},
		{Intermediate, []string{"linear-regression", "nn-module", "optimizers-loss"}},
		{Advanced, []string{"cnns", "custom-datasets", "vaes", "gans"}},
		{Expert, []string{"transformers-nlp", "vision-transformers", "llm-finetuning", "distributed", "custom-autograd", "quantization"}},
	}
	if len(c) != len(wantModules) {
		t.Fatalf("len(curriculum) = %d, want %d", len(c), len(wantModules))
	}
	for i, want := range wantModules {
		t.Run(string(want.difficulty), func(t *testing.T) {
			m := c[i]
			if m.Difficulty != want.difficulty {
				t.Errorf("difficulty = %q, want %q", m.Difficulty, want.difficulty)
			}
			if len(m.Topics) != len(want.ids) {
				t.Fatalf("topics = %d, want %d", len(m.Topics), len(want.ids))
			}
			for j, id := range want.ids {
				topic := m.Topics[j]
				if topic.ID != id || topic.Difficulty != want.difficulty || topic.Title == "" || topic.Prompt == "" {
					t.Errorf("topic %d = %+v", j, topic)
				}
			}
		})
	}

	first, ok := c.First()
	if !ok || first.Title != "Introduction to Tensors" {
		t.Errorf("First() = %+v, %v", first, ok)
	}
	if n := len(c.Topics()); n != 16 {
		t.Errorf("len(Topics()) = %d, want 16", n)
	}
}

func TestCurriculum_Find(t *testing.T) {
	c := DefaultCurriculum()
	topic, err := c.Find("vaes")
	if err != nil || topic.Title != "Variational Autoencoders (VAEs)" || topic.Difficulty != Advanced {
		t.Errorf("Find(vaes) = %+v, %v", topic, err)
	}
	if _, err := c.Find("rnn"); !errors.Is(err, ErrNoTopic) {
		t.Errorf("Find(rnn) error = %v, want ErrNoTopic", err)
	}
}

func TestLoadCurriculum(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:  "valid",
			input: "- difficulty: Basics\n  topics:\n    - id: a\n      title: A\n      prompt: explain a\n",
		},
		{name: "empty", input: "", wantErr: "empty"},
		{name: "bad yaml", input: "- difficulty: [", wantErr: "decode"},
		{name: "unknown field", input: "- difficulty: Basics\n  level: 1\n", wantErr: "decode"},
		{name: "unknown difficulty", input: "- difficulty: Hard\n", wantErr: "unknown difficulty"},
		{
			name:    "duplicate id",
			input:   "- difficulty: Basics\n  topics:\n    - {id: a, prompt: x}\n    - {id: a, prompt: y}\n",
			wantErr: "duplicate",
		},
		{
			name:    "missing prompt",
			input:   "- difficulty: Expert\n  topics:\n    - {id: a, title: A}\n",
			wantErr: "no prompt",
		},
		{
			name:    "missing id",
			input:   "- difficulty: Expert\n  topics:\n    - {title: A, prompt: x}\n",
			wantErr: "no id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := LoadCurriculum(strings.NewReader(tt.input))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("LoadCurriculum() error = %v", err)
				}
				if c[0].Topics[0].Difficulty != Basics {
					t.Errorf("topic difficulty not inherited: %+v", c[0].Topics[0])
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadCurriculum() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

var tensors = Topic{ID: "tensors-intro", Title: "Introduction to Tensors", Difficulty: Basics, Prompt: "Explain tensors"}

func TestLoader_Select(t *testing.T) {
	doc := "# Tensors\n```python\nx = torch.ones(2)\n```\n$$x_i$$"
	replay := source.NewReplay(doc, 0, 0)
	var statuses []Status
	l := NewLoader(Config{Source: replay, OnChange: func(s Snapshot) { statuses = append(statuses, s.Status) }})

	if s := l.Snapshot(); s.Status != StatusIdle {
		t.Errorf("initial status = %v", s.Status)
	}
	if err := l.Select(context.Background(), tensors); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	s := l.Snapshot()
	if s.Status != StatusSuccess || s.Content != doc || s.Topic.ID != tensors.ID {
		t.Errorf("Snapshot() = %+v", s)
	}
	kinds := []types.BlockKind{types.BlockText, types.BlockCode, types.BlockText, types.BlockMath}
	if len(s.Blocks) != len(kinds) {
		t.Fatalf("blocks = %+v", s.Blocks)
	}
	for i, k := range kinds {
		if s.Blocks[i].Kind != k {
			t.Errorf("block %d kind = %v, want %v", i, s.Blocks[i].Kind, k)
		}
	}
	if len(statuses) != 2 || statuses[0] != StatusLoading || statuses[1] != StatusSuccess {
		t.Errorf("statuses = %v, want [loading success]", statuses)
	}

	req := replay.Requests()[0]
	if req.Prompt != tensors.Prompt || req.SystemInstruction != SystemInstruction || req.Temperature != Temperature {
		t.Errorf("request = %+v", req)
	}
}

func TestLoader_NoContent(t *testing.T) {
	l := NewLoader(Config{Source: source.NewReplay("", 0, 0)})
	if err := l.Select(context.Background(), tensors); err != nil {
		t.Fatal(err)
	}
	if s := l.Snapshot(); s.Status != StatusSuccess || s.Content != NoContent {
		t.Errorf("Snapshot() = %+v", s)
	}
}

// failingGenerator fails the first n requests.
type failingGenerator struct {
	source.Replay
	mu    sync.Mutex
	fails int
}

func (f *failingGenerator) Generate(ctx context.Context, req source.Request) (string, error) {
	f.mu.Lock()
	fail := f.fails > 0
	f.fails--
	f.mu.Unlock()
	if fail {
		return "", errors.New("quota exceeded")
	}
	return f.Replay.Generate(ctx, req)
}

func TestLoader_ErrorAndRetry(t *testing.T) {
	gen := &failingGenerator{Replay: source.Replay{Default: "# ok"}, fails: 1}
	l := NewLoader(Config{Source: gen})

	if err := l.Retry(context.Background()); !errors.Is(err, ErrNoTopic) {
		t.Errorf("Retry() before select error = %v, want ErrNoTopic", err)
	}

	err := l.Select(context.Background(), tensors)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("Select() error = %v", err)
	}
	if s := l.Snapshot(); s.Status != StatusError || s.Err == nil || s.Content != "" {
		t.Errorf("Snapshot() after failure = %+v", s)
	}

	if err := l.Retry(context.Background()); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if s := l.Snapshot(); s.Status != StatusSuccess || s.Content != "# ok" || s.Err != nil {
		t.Errorf("Snapshot() after retry = %+v", s)
	}
}

// gatedGenerator answers a prompt only once its gate is released.
type gatedGenerator struct {
	gates map[string]chan string
}

func (g *gatedGenerator) Generate(ctx context.Context, req source.Request) (string, error) {
	select {
	case text := <-g.gates[req.Prompt]:
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *gatedGenerator) GenerateStream(ctx context.Context, req source.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			select {
			case chunk, ok := <-g.gates[req.Prompt]:
				if !ok || !yield(chunk, nil) {
					return
				}
			case <-ctx.Done():
				yield("", ctx.Err())
				return
			}
		}
	}
}

func TestLoader_StaleSelectDiscarded(t *testing.T) {
	gen := &gatedGenerator{gates: map[string]chan string{"old": make(chan string), "new": make(chan string)}}
	loading := make(chan Topic, 4)
	l := NewLoader(Config{Source: gen, OnChange: func(s Snapshot) {
		if s.Status == StatusLoading {
			loading <- s.Topic
		}
	}})

	oldTopic := Topic{ID: "old", Prompt: "old"}
	newTopic := Topic{ID: "new", Prompt: "new"}

	oldDone := make(chan error, 1)
	go func() { oldDone <- l.Select(context.Background(), oldTopic) }()
	<-loading

	newDone := make(chan error, 1)
	go func() { newDone <- l.Select(context.Background(), newTopic) }()
	<-loading

	gen.gates["new"] <- "new document"
	if err := <-newDone; err != nil {
		t.Fatalf("new Select() error = %v", err)
	}
	gen.gates["old"] <- "old document"
	if err := <-oldDone; !errors.Is(err, ErrStale) {
		t.Errorf("old Select() error = %v, want ErrStale", err)
	}

	s := l.Snapshot()
	if s.Topic.ID != "new" || s.Content != "new document" || s.Status != StatusSuccess {
		t.Errorf("Snapshot() = %+v, want the newer document", s)
	}
}

func TestLoader_Stream(t *testing.T) {
	doc := "Intro\n```python\nx = 1\n```\nDone"
	var snaps []Snapshot
	l := NewLoader(Config{
		Source:   source.NewReplay(doc, 5, 0),
		OnChange: func(s Snapshot) { snaps = append(snaps, s) },
	})
	if err := l.Stream(context.Background(), tensors); err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	final := l.Snapshot()
	if final.Status != StatusSuccess || final.Content != doc || len(final.Blocks) != 3 {
		t.Fatalf("final snapshot = %+v", final)
	}

	// 围栏闭合之前整段都是文本
	sawOpenFence := false
	for _, s := range snaps {
		if s.Status != StatusLoading || !strings.Contains(s.Content, "```") {
			continue
		}
		if strings.Count(s.Content, "```") == 1 {
			sawOpenFence = true
			for _, b := range s.Blocks {
				if b.Kind != types.BlockText {
					t.Errorf("partial %q produced %v block", s.Content, b.Kind)
				}
			}
		}
	}
	if !sawOpenFence {
		t.Error("no snapshot with an unterminated fence")
	}

	prev := ""
	for _, s := range snaps[1 : len(snaps)-1] {
		if !strings.HasPrefix(s.Content, prev) {
			t.Errorf("content %q does not extend %q", s.Content, prev)
		}
		prev = s.Content
	}
}

func TestLoader_StreamSupersededStops(t *testing.T) {
	gen := &gatedGenerator{gates: map[string]chan string{"old": make(chan string), "new": make(chan string)}}
	var mu sync.Mutex
	var contents []string
	loading := make(chan struct{}, 8)
	applied := make(chan struct{}, 8)
	l := NewLoader(Config{Source: gen, OnChange: func(s Snapshot) {
		mu.Lock()
		contents = append(contents, s.Topic.ID+":"+s.Content)
		mu.Unlock()
		if s.Status != StatusLoading {
			return
		}
		switch s.Content {
		case "":
			loading <- struct{}{}
		case "part one ":
			applied <- struct{}{}
		}
	}})

	done := make(chan error, 1)
	go func() { done <- l.Stream(context.Background(), Topic{ID: "old", Prompt: "old"}) }()
	<-loading
	gen.gates["old"] <- "part one "
	// 第一个分片生效后再切换主题
	<-applied

	go l.Select(context.Background(), Topic{ID: "new", Prompt: "new"})
	<-loading

	var err error
	select {
	case gen.gates["old"] <- "part two":
		err = <-done
	case err = <-done:
	}
	if !errors.Is(err, ErrStale) {
		t.Errorf("Stream() error = %v, want ErrStale", err)
	}
	close(gen.gates["new"])

	mu.Lock()
	defer mu.Unlock()
	for _, c := range contents {
		if strings.Contains(c, "part two") {
			t.Errorf("stale chunk applied: %q", c)
		}
	}
}

func TestLoader_StreamError(t *testing.T) {
	replay := source.NewReplay("abcdef", 2, 0)
	replay.FailAfter = 1
	l := NewLoader(Config{Source: replay})
	err := l.Stream(context.Background(), tensors)
	if !errors.Is(err, source.ErrInjected) {
		t.Fatalf("Stream() error = %v", err)
	}
	if s := l.Snapshot(); s.Status != StatusError || !errors.Is(s.Err, source.ErrInjected) {
		t.Errorf("Snapshot() = %+v", s)
	}
}

func TestStatus_String(t *testing.T) {
	for st, want := range map[Status]string{StatusIdle: "idle", StatusLoading: "loading", StatusSuccess: "success", StatusError: "error", Status(7): "unknown"} {
		if st.String() != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(st), st.String(), want)
		}
	}
}
