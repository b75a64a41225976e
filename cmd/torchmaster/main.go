package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"pkt.systems/version"

	torchmaster "github.com/riverfjs/torchmaster-go"
	"github.com/riverfjs/torchmaster-go/internal/latex"
	"github.com/riverfjs/torchmaster-go/internal/source"
	"github.com/riverfjs/torchmaster-go/internal/tutorial"
)

const (
	defaultWidth     = 80
	defaultChunkSize = 3
	defaultDelay     = 20 * time.Millisecond
	clearScreen      = "\x1b[H\x1b[2J"
)

func init() {
	version.SetDefaultModule("github.com/riverfjs/torchmaster-go")
}

type options struct {
	format         string
	width          int
	plain          bool
	simulate       bool
	chunkSize      int
	delay          time.Duration
	endpoint       string
	topic          string
	chat           bool
	listTopics     bool
	curriculumPath string
	configPath     string
	diagrams       bool
	latexDelims    bool
	showVersion    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	flags := pflag.NewFlagSet("torchmaster", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&opts.format, "format", "f", "ansi", "Output format: ansi|html|json")
	flags.IntVarP(&opts.width, "width", "w", 0, "Output width override (0 uses terminal width if available)")
	flags.BoolVarP(&opts.plain, "plain", "p", false, "Disable ANSI styles")
	flags.BoolVar(&opts.simulate, "simulate", false, "Stream the input in chunks as a model would")
	flags.IntVar(&opts.chunkSize, "simulate-chunk", defaultChunkSize, "Max runes per simulated chunk")
	flags.DurationVar(&opts.delay, "simulate-delay", defaultDelay, "Delay per simulated chunk")
	flags.StringVar(&opts.endpoint, "endpoint", "", "Streaming generation endpoint (default: replay the input)")
	flags.StringVarP(&opts.topic, "topic", "t", "", "Generate the tutorial of a curriculum topic")
	flags.BoolVar(&opts.chat, "chat", false, "Chat with the tutor, one message per stdin line")
	flags.BoolVar(&opts.listTopics, "list-topics", false, "List curriculum topics")
	flags.StringVar(&opts.curriculumPath, "curriculum", "", "YAML curriculum file (default: built-in)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flags.BoolVar(&opts.diagrams, "diagrams", false, "Render mermaid blocks through mermaid.ink")
	flags.BoolVar(&opts.latexDelims, "latex-delimiters", false, `Treat \[..\] and \(..\) as math`)
	flags.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: torchmaster [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nIf no input is provided, text is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return 0
	}

	torchmaster.SetLogger(log.New(stderr, "[torchmaster] ", log.LstdFlags))
	a, err := newApp(opts, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}

	switch {
	case opts.listTopics:
		err = a.printTopics()
	case opts.topic != "":
		err = a.runTopic(ctx, flags.Args(), stdin)
	case opts.chat:
		err = a.runChat(ctx, flags.Args(), stdin)
	default:
		err = a.runDocument(ctx, flags.Args(), stdin)
	}
	if err != nil {
		fmt.Fprintf(stderr, "torchmaster: %v\n", err)
		return 1
	}
	return 0
}

// app 一次命令行调用的运行环境
type app struct {
	opts       options
	out        io.Writer
	config     *torchmaster.FileConfig
	curriculum tutorial.Curriculum
	writer     outputWriter
	typesetter *latex.Typesetter
	// live redraws the whole view on every update.
	live bool
}

func newApp(opts options, stdout io.Writer) (*app, error) {
	cfg, err := torchmaster.ParseConfig(nil)
	if opts.configPath != "" {
		cfg, err = torchmaster.LoadConfig(opts.configPath)
	}
	if err != nil {
		return nil, err
	}
	if opts.latexDelims {
		cfg.Render.LatexDelimiters = true
	}

	curriculum := tutorial.DefaultCurriculum()
	if opts.curriculumPath != "" {
		f, err := os.Open(normalizePath(opts.curriculumPath))
		if err != nil {
			return nil, fmt.Errorf("open curriculum: %w", err)
		}
		defer f.Close()
		if curriculum, err = tutorial.LoadCurriculum(f); err != nil {
			return nil, err
		}
	}

	terminal := isTerminal(stdout)
	width := opts.width
	if width <= 0 {
		width = cfg.Render.Width
		if terminal {
			width = terminalWidth(stdout, width)
		}
	}
	if width <= 0 {
		width = defaultWidth
	}
	writer, err := newOutputWriter(opts.format, width, cfg.Render.MarkdownSymbol, opts.plain || !terminal)
	if err != nil {
		return nil, err
	}

	return &app{
		opts:       opts,
		out:        stdout,
		config:     cfg,
		curriculum: curriculum,
		writer:     writer,
		typesetter: latex.NewTypesetter(torchmaster.Logger),
		live:       terminal && opts.format == "ansi",
	}, nil
}

func (a *app) renderOptions() []torchmaster.Option {
	opts := []torchmaster.Option{
		torchmaster.WithConfig(a.config.Render),
		torchmaster.WithTypesetter(a.typesetter),
	}
	if a.opts.diagrams {
		opts = append(opts, torchmaster.WithDiagrams(a.config.Diagrams, nil))
	}
	return opts
}

// writeDocument renders buffer; frame clears the screen first.
func (a *app) writeDocument(ctx context.Context, buffer string, frame bool) error {
	var contents []torchmaster.Content
	if frame {
		contents = torchmaster.Render(buffer, a.renderOptions()...)
		if _, err := io.WriteString(a.out, clearScreen); err != nil {
			return err
		}
	} else {
		var err error
		if contents, err = torchmaster.Process(ctx, buffer, a.renderOptions()...); err != nil {
			return err
		}
	}
	return a.writer.WriteDocument(a.out, contents)
}

// replay builds the offline source answering with text.
func (a *app) replay(text string) *source.Replay {
	chunk, delay := 0, time.Duration(0)
	if a.opts.simulate {
		chunk, delay = a.opts.chunkSize, a.opts.delay
	}
	return source.NewReplay(text, chunk, delay)
}

func (a *app) httpSource() *source.HTTP {
	return source.NewHTTP(a.opts.endpoint, &http.Client{})
}

func readAll(args []string, stdin io.Reader) (string, error) {
	reader, closer, err := openInputs(args, stdin)
	if err != nil {
		return "", fmt.Errorf("open input: %w", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func (a *app) printTopics() error {
	for _, m := range a.curriculum {
		if _, err := fmt.Fprintln(a.out, m.Difficulty); err != nil {
			return err
		}
		for _, t := range m.Topics {
			fmt.Fprintf(a.out, "  %-22s %s\n", t.ID, t.Title)
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer, fallback int) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	if value := strings.TrimSpace(os.Getenv("COLUMNS")); value != "" {
		var width int
		if _, err := fmt.Sscanf(value, "%d", &width); err == nil && width > 0 {
			return width
		}
	}
	return fallback
}
