package torchmaster

import (
	"io"
	"log"
	"net/http"

	"github.com/riverfjs/torchmaster-go/internal/latex"
	"github.com/riverfjs/torchmaster-go/internal/mermaid"
	"github.com/riverfjs/torchmaster-go/internal/render"
)

// Typesetter renders LaTeX and never fails.
type Typesetter = render.Typesetter

// RenderOptions holds options for rendering.
type RenderOptions struct {
	Config     *RenderConfig
	Typesetter Typesetter
	Logger     *log.Logger
	// Diagrams renders mermaid code blocks in Process; nil keeps them as code.
	Diagrams *mermaid.Renderer
}

// Option is a function that configures RenderOptions.
type Option func(*RenderOptions)

// WithConfig sets a custom RenderConfig.
func WithConfig(config *RenderConfig) Option {
	return func(opts *RenderOptions) {
		opts.Config = config
	}
}

// WithLatexDelimiters sets whether \[..\] and \(..\) count as math.
func WithLatexDelimiters(enable bool) Option {
	return func(opts *RenderOptions) {
		base := opts.Config
		if base == nil {
			base = DefaultConfig()
		}
		cfg := *base
		cfg.LatexDelimiters = enable
		opts.Config = &cfg
	}
}

// WithTypesetter replaces the LaTeX to Unicode typesetter.
func WithTypesetter(ts Typesetter) Option {
	return func(opts *RenderOptions) {
		opts.Typesetter = ts
	}
}

// WithLogger sets the logger for fallbacks; the default is Logger.
func WithLogger(logger *log.Logger) Option {
	return func(opts *RenderOptions) {
		opts.Logger = logger
	}
}

// WithDiagrams renders mermaid blocks through mermaid.ink. A nil config uses
// the default theme and size, a nil client gets a 10 second timeout.
func WithDiagrams(config *DiagramConfig, client *http.Client) Option {
	return func(opts *RenderOptions) {
		opts.Diagrams = mermaid.NewRenderer(config, client)
	}
}

// defaultRenderOptions returns the default rendering options.
func defaultRenderOptions() *RenderOptions {
	return &RenderOptions{
		Config: DefaultConfig(),
		Logger: Logger,
	}
}

// applyOptions applies the given options to the default options.
func applyOptions(opts ...Option) *RenderOptions {
	options := defaultRenderOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Config == nil {
		options.Config = DefaultConfig()
	}
	if options.Logger == nil {
		options.Logger = log.New(io.Discard, "", 0)
	}
	if options.Typesetter == nil {
		options.Typesetter = latex.NewTypesetter(options.Logger)
	}
	return options
}
