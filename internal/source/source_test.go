package source

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riverfjs/torchmaster-go/internal/types"
)

func collectChunks(t *testing.T, seq func(func(string, error) bool)) ([]string, error) {
	t.Helper()
	var chunks []string
	for chunk, err := range seq {
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func TestReplay_GenerateStream(t *testing.T) {
	r := NewReplay("张量 tensor", 3, 0)
	chunks, err := collectChunks(t, r.GenerateStream(context.Background(), Request{Prompt: "p"}))
	if err != nil {
		t.Fatalf("stream error = %v", err)
	}
	want := []string{"张量 ", "ten", "sor"}
	if strings.Join(chunks, "|") != strings.Join(want, "|") {
		t.Errorf("chunks = %q, want %q", chunks, want)
	}
}

func TestReplay_Responses(t *testing.T) {
	r := &Replay{Responses: map[string]string{"a": "alpha"}, Default: "other"}
	got, err := r.Generate(context.Background(), Request{Prompt: "a", Temperature: 0.3})
	if err != nil || got != "alpha" {
		t.Errorf("Generate(a) = %q, %v", got, err)
	}
	got, _ = r.Generate(context.Background(), Request{Prompt: "b"})
	if got != "other" {
		t.Errorf("Generate(b) = %q, want other", got)
	}
	reqs := r.Requests()
	if len(reqs) != 2 || reqs[0].Temperature != 0.3 {
		t.Errorf("Requests() = %+v", reqs)
	}
}

func TestReplay_EmptyIsNoResponse(t *testing.T) {
	_, err := NewReplay("", 4, 0).Generate(context.Background(), Request{})
	if !errors.Is(err, ErrNoResponse) {
		t.Errorf("Generate() error = %v, want ErrNoResponse", err)
	}
}

func TestReplay_FailAfter(t *testing.T) {
	r := NewReplay("abcdef", 2, 0)
	r.FailAfter = 2
	chunks, err := collectChunks(t, r.GenerateStream(context.Background(), Request{}))
	if !errors.Is(err, ErrInjected) {
		t.Fatalf("error = %v, want ErrInjected", err)
	}
	if strings.Join(chunks, "") != "abcd" {
		t.Errorf("chunks before failure = %q", chunks)
	}
}

func TestReplay_ContextCancel(t *testing.T) {
	r := NewReplay("abcdef", 1, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var got []string
	var gotErr error
	for chunk, err := range r.GenerateStream(ctx, Request{}) {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, chunk)
		cancel()
	}
	if !errors.Is(gotErr, context.Canceled) || len(got) != 1 {
		t.Errorf("got %q, err %v; want one chunk then context.Canceled", got, gotErr)
	}
}

func TestReplay_ChatRecordsInstruction(t *testing.T) {
	r := NewReplay("ok", 0, 0)
	chat := r.NewChat("be brief")
	if _, err := Collect(chat.SendMessageStream(context.Background(), "hi")); err != nil {
		t.Fatal(err)
	}
	reqs := r.Requests()
	if len(reqs) != 1 || reqs[0].SystemInstruction != "be brief" || reqs[0].Prompt != "hi" {
		t.Errorf("Requests() = %+v", reqs)
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestReaderStream(t *testing.T) {
	chunks, err := collectChunks(t, ReaderStream(context.Background(), strings.NewReader("abcdefg"), 3))
	if err != nil || strings.Join(chunks, "|") != "abc|def|g" {
		t.Errorf("ReaderStream() = %q, %v", chunks, err)
	}
	_, err = collectChunks(t, ReaderStream(context.Background(), errReader{}, 3))
	if err == nil || !strings.Contains(err.Error(), "disk gone") {
		t.Errorf("ReaderStream() error = %v", err)
	}
}

func TestHTTP_GenerateStream(t *testing.T) {
	requests := make(chan Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var req Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		requests <- req
		flusher := w.(http.Flusher)
		for _, part := range []string{"# Ten", "sors\n", "$$x$$"} {
			io.WriteString(w, part)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL, srv.Client())
	text, err := h.Generate(context.Background(), Request{Prompt: "tensors", SystemInstruction: "teach", Temperature: 0.3})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "# Tensors\n$$x$$" {
		t.Errorf("Generate() = %q", text)
	}
	got := <-requests
	if got.Prompt != "tensors" || got.SystemInstruction != "teach" || got.Temperature != 0.3 {
		t.Errorf("request = %+v", got)
	}
}

func TestHTTP_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()
	_, err := NewHTTP(srv.URL, srv.Client()).Generate(context.Background(), Request{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("Generate() error = %v, want status 429", err)
	}
}

func TestHTTP_UnsupportedScheme(t *testing.T) {
	_, err := NewHTTP("ftp://example.com", nil).Generate(context.Background(), Request{})
	if err == nil || !strings.Contains(err.Error(), "unsupported scheme") {
		t.Errorf("Generate() error = %v", err)
	}
}

// TestHTTP_ChatHistory 每轮请求携带之前完成的对话
func TestHTTP_ChatHistory(t *testing.T) {
	requests := make(chan ChatRequest, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		requests <- body
		io.WriteString(w, "reply to "+body.Message)
	}))
	defer srv.Close()

	chat := NewHTTP(srv.URL, srv.Client()).NewChat("assistant")
	for _, msg := range []string{"one", "two"} {
		if _, err := Collect(chat.SendMessageStream(context.Background(), msg)); err != nil {
			t.Fatal(err)
		}
	}
	bodies := []ChatRequest{<-requests, <-requests}
	want := []types.ChatMessage{{Role: types.RoleUser, Text: "one"}, {Role: types.RoleModel, Text: "reply to one"}}
	h := bodies[1].History
	if len(h) != 2 || h[0] != want[0] || h[1] != want[1] {
		t.Errorf("second request history = %+v, want %+v", h, want)
	}
	if bodies[0].SystemInstruction != "assistant" || len(bodies[0].History) != 0 {
		t.Errorf("first request = %+v", bodies[0])
	}
}
