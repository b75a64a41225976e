package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	torchmaster "github.com/riverfjs/torchmaster-go"
	"github.com/riverfjs/torchmaster-go/internal/buffer"
	"github.com/riverfjs/torchmaster-go/internal/chat"
	"github.com/riverfjs/torchmaster-go/internal/source"
	"github.com/riverfjs/torchmaster-go/internal/tutorial"
)

// offlineReply answers chat messages when no endpoint or reply file is given.
const offlineReply = "I'm running offline. Start with `--endpoint URL` to reach a model, or pass a file whose text I should answer with."

// runDocument renders the inputs. With --simulate the text arrives in chunks
// and, on a terminal, every chunk redraws the partial document.
func (a *app) runDocument(ctx context.Context, args []string, stdin io.Reader) error {
	text, err := readAll(args, stdin)
	if err != nil {
		return err
	}
	if !a.opts.simulate {
		return a.writeDocument(ctx, text, false)
	}

	acc := buffer.New()
	for chunk, err := range a.replay(text).GenerateStream(ctx, source.Request{}) {
		if err != nil {
			return err
		}
		if acc.Append(chunk) != "" && a.live {
			if err := a.writeDocument(ctx, acc.String(), true); err != nil {
				return err
			}
		}
	}
	acc.Flush()
	if a.live {
		if _, err := io.WriteString(a.out, clearScreen); err != nil {
			return err
		}
	}
	return a.writeDocument(ctx, acc.String(), false)
}

// runTopic generates the tutorial of a curriculum topic. Without an endpoint
// the inputs are replayed as the generated document.
func (a *app) runTopic(ctx context.Context, args []string, stdin io.Reader) error {
	topic, err := a.curriculum.Find(a.opts.topic)
	if err != nil {
		return err
	}

	var gen source.Generator
	if a.opts.endpoint != "" {
		gen = a.httpSource()
	} else {
		text, err := readAll(args, stdin)
		if err != nil {
			return err
		}
		gen = a.replay(text)
	}

	loader := tutorial.NewLoader(tutorial.Config{
		Source: gen,
		Logger: torchmaster.Logger,
		OnChange: func(s tutorial.Snapshot) {
			if a.live && s.Status == tutorial.StatusLoading {
				a.redraw(ctx, s.Content)
			}
		},
	})
	if err := loader.Stream(ctx, topic); err != nil {
		return err
	}

	s := loader.Snapshot()
	if a.live {
		if _, err := io.WriteString(a.out, clearScreen); err != nil {
			return err
		}
	}
	if a.opts.format == "ansi" {
		fmt.Fprintf(a.out, "%s / %s\n\n", topic.Difficulty, topic.Title)
	}
	return a.writeDocument(ctx, s.Content, false)
}

// redraw repaints the partial document; failures are logged.
func (a *app) redraw(ctx context.Context, content string) {
	if err := a.writeDocument(ctx, content, true); err != nil {
		torchmaster.Logger.Printf("Redraw failed: %v", err)
	}
}

func (a *app) redrawTranscript(views []torchmaster.MessageView) {
	_, err := io.WriteString(a.out, clearScreen)
	if err == nil {
		err = a.writer.WriteTranscript(a.out, views, a.typesetter)
	}
	if err != nil {
		torchmaster.Logger.Printf("Redraw failed: %v", err)
	}
}

// runChat reads one message per stdin line. "/reset" starts over, "/exit"
// or end of input quits.
func (a *app) runChat(ctx context.Context, args []string, stdin io.Reader) error {
	var factory source.ChatFactory
	switch {
	case a.opts.endpoint != "":
		factory = a.httpSource()
	case len(args) > 0:
		text, err := readAll(args, nil)
		if err != nil {
			return err
		}
		factory = a.replay(text)
	default:
		factory = a.replay(offlineReply)
	}

	session := chat.New(chat.Config{
		Source: factory,
		Logger: torchmaster.Logger,
		OnChange: func(s chat.Snapshot) {
			if a.live {
				a.redrawTranscript(s.Messages)
			}
		},
	})

	printed := 0
	flush := func() error {
		if a.live {
			return nil
		}
		views := session.Snapshot().Messages
		if printed > len(views) {
			printed = 0
		}
		err := a.writer.WriteTranscript(a.out, views[printed:], a.typesetter)
		printed = len(views)
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit":
			return nil
		case "/reset":
			session.Reset()
			printed = 0
		default:
			// 流失败时会话已显示道歉消息，继续读取下一行
			if err := session.Send(ctx, line); err != nil && session.Err() == nil {
				return err
			}
		}
		if err := flush(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return scanner.Err()
}
