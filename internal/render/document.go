// Package render turns segmented blocks and chat transcripts into display
// output: a typed content list, HTML, or ANSI terminal text.
package render

import (
	"strings"

	"github.com/riverfjs/torchmaster-go/internal/converter"
	"github.com/riverfjs/torchmaster-go/internal/types"
	"github.com/riverfjs/torchmaster-go/internal/util"
)

// Typesetter renders LaTeX for display and never fails; malformed input
// comes back in some readable form, typically the source itself.
type Typesetter interface {
	Render(latex string, displayMode bool) string
}

// Document converts blocks into display contents in block order. Text blocks
// are classified into lines with typeset inline math, code bodies are named
// and optionally trimmed, and display math is typeset.
func Document(blocks []types.Block, ts Typesetter, cfg *types.RenderConfig) []types.Content {
	if cfg == nil {
		cfg = types.DefaultRenderConfig()
	}
	contents := make([]types.Content, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case types.BlockCode:
			contents = append(contents, CodeContent(b, cfg))
		case types.BlockMath:
			contents = append(contents, &types.Math{
				Latex:    b.Content,
				Rendered: ts.Render(b.Content, true),
				Block:    b,
			})
		default:
			contents = append(contents, &types.Text{
				Lines: Lines(converter.ClassifyLines(b.Content), ts),
				Block: b,
			})
		}
	}
	return contents
}

// CodeContent builds the display form of a code block.
func CodeContent(b types.Block, cfg *types.RenderConfig) *types.Code {
	code := b.Content
	if cfg.TrimCode {
		code = strings.TrimSpace(code)
	}
	return &types.Code{
		Language: b.Language,
		Code:     code,
		FileName: util.CodeFileName(code, b.Language),
		Block:    b,
	}
}

// Lines attaches display spans to classified lines.
func Lines(lines []types.Line, ts Typesetter) []types.RenderedLine {
	out := make([]types.RenderedLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, types.RenderedLine{
			Kind:   l.Kind,
			Marker: l.Marker,
			Spans:  Spans(l.Fragments, ts),
		})
	}
	return out
}

// Spans converts inline fragments into display spans, typesetting inline
// math in inline mode.
func Spans(fragments []types.Fragment, ts Typesetter) []types.Span {
	spans := make([]types.Span, 0, len(fragments))
	for _, f := range fragments {
		s := types.Span{Kind: f.Kind, Text: f.Content}
		if f.Kind == types.FragmentInlineMath {
			s.Math = ts.Render(f.Content, false)
		}
		spans = append(spans, s)
	}
	return spans
}
