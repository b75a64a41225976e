package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/riverfjs/torchmaster-go/internal/types"
)

// SGR sequences
const (
	sgrReset     = "\x1b[0m"
	sgrBold      = "\x1b[1m"
	sgrNoBold    = "\x1b[22m"
	sgrUnderline = "\x1b[4m"
	sgrDim       = "\x1b[2m"
	sgrCyan      = "\x1b[36m"
	sgrMagenta   = "\x1b[35m"
	sgrGreen     = "\x1b[32m"
	sgrYellow    = "\x1b[33m"
	sgrFgReset   = "\x1b[39m"
)

// ANSI writes contents as terminal text. Width wraps prose; zero disables
// wrapping. Plain drops all escape sequences.
type ANSI struct {
	Width   int
	Symbols *types.Symbol
	Plain   bool
}

// NewANSI creates a terminal renderer.
func NewANSI(width int, symbols *types.Symbol, plain bool) *ANSI {
	if symbols == nil {
		symbols = types.DefaultSymbol()
	}
	return &ANSI{Width: width, Symbols: symbols, Plain: plain}
}

func (a *ANSI) style(text, on, off string) string {
	if a.Plain || text == "" {
		return text
	}
	return on + text + off
}

// WriteDocument writes a rendered document.
func (a *ANSI) WriteDocument(w io.Writer, contents []types.Content) error {
	bw := bufio.NewWriter(w)
	for _, c := range contents {
		switch v := c.(type) {
		case *types.Text:
			a.writeText(bw, v.Lines)
		case *types.Code:
			a.writeCode(bw, v.Language, v.FileName, v.Code)
		case *types.Math:
			bw.WriteString(indent.String(a.style(v.Rendered, sgrMagenta, sgrFgReset), 4))
			bw.WriteString("\n")
		case *types.Diagram:
			a.writeCode(bw, "mermaid", v.FileName, v.Code)
			if v.EditURL != "" {
				bw.WriteString(a.style("edit: "+v.EditURL, sgrDim, sgrReset))
				bw.WriteString("\n")
			}
		}
	}
	return bw.Flush()
}

// WriteTranscript writes a chat transcript with a role label per message.
func (a *ANSI) WriteTranscript(w io.Writer, views []types.MessageView, ts Typesetter) error {
	bw := bufio.NewWriter(w)
	for i, v := range views {
		if i > 0 {
			bw.WriteString("\n")
		}
		label, color := "Tutor", sgrGreen
		if v.Message.Role == types.RoleUser {
			label, color = "You", sgrYellow
		}
		bw.WriteString(a.style(label+":", sgrBold+color, sgrReset))
		bw.WriteString("\n")
		text := "…"
		if !v.Pending {
			text = a.spans(Spans(v.Fragments, ts))
		}
		for _, line := range strings.Split(text, "\n") {
			bw.WriteString(a.hang("  ", a.wrap(line, 2)))
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

func (a *ANSI) writeText(bw *bufio.Writer, lines []types.RenderedLine) {
	for _, l := range lines {
		text := a.spans(l.Spans)
		switch l.Kind {
		case types.LineSpacer:
			bw.WriteString("\n")
			continue
		case types.LineHeading1:
			text = a.style(a.Symbols.HeadingLevel1+text, sgrBold+sgrUnderline, sgrReset)
		case types.LineHeading2, types.LineHeading3:
			prefix := a.Symbols.HeadingLevel2
			if l.Kind == types.LineHeading3 {
				prefix = a.Symbols.HeadingLevel3
			}
			text = a.style(prefix+text, sgrBold, sgrNoBold)
		case types.LineBullet:
			marker := "  " + a.Symbols.Bullet + " "
			text = a.hang(marker, a.wrap(text, ansi.PrintableRuneWidth(marker)))
			bw.WriteString(text)
			bw.WriteString("\n")
			continue
		case types.LineNumbered:
			marker := "  " + l.Marker + ". "
			text = a.hang(marker, a.wrap(text, ansi.PrintableRuneWidth(marker)))
			bw.WriteString(text)
			bw.WriteString("\n")
			continue
		}
		bw.WriteString(a.wrap(text, 0))
		bw.WriteString("\n")
	}
}

// wrap wraps text to the renderer width minus used columns.
func (a *ANSI) wrap(text string, used int) string {
	if a.Width <= 0 || a.Width-used < 8 {
		return text
	}
	return wordwrap.String(text, a.Width-used)
}

// hang prefixes the first line with marker and indents the rest to align.
func (a *ANSI) hang(marker, text string) string {
	first, rest, found := strings.Cut(text, "\n")
	if !found {
		return marker + first
	}
	return marker + first + "\n" + indent.String(rest, uint(ansi.PrintableRuneWidth(marker)))
}

func (a *ANSI) spans(spans []types.Span) string {
	var sb strings.Builder
	for _, s := range spans {
		switch s.Kind {
		case types.FragmentBold:
			sb.WriteString(a.style(s.Text, sgrBold, sgrNoBold))
		case types.FragmentInlineCode:
			sb.WriteString(a.style(s.Text, sgrCyan, sgrFgReset))
		case types.FragmentInlineMath:
			sb.WriteString(a.style(s.Math, sgrMagenta, sgrFgReset))
		default:
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

// writeCode draws the code in a box sized to its widest line.
func (a *ANSI) writeCode(bw *bufio.Writer, language, fileName, code string) {
	lines := strings.Split(strings.ReplaceAll(code, "\t", "    "), "\n")
	title := " " + fileName + " "
	inner := runewidth.StringWidth(title) + 2
	for _, l := range lines {
		inner = max(inner, runewidth.StringWidth(l)+2)
	}

	bw.WriteString(a.style("┌─"+title+strings.Repeat("─", max(0, inner-runewidth.StringWidth(title)-1))+"┐", sgrDim, sgrReset))
	bw.WriteString("\n")
	for _, l := range lines {
		bw.WriteString(a.style("│", sgrDim, sgrReset))
		bw.WriteString(" ")
		bw.WriteString(a.style(runewidth.FillRight(l, inner-1), sgrCyan, sgrFgReset))
		bw.WriteString(a.style("│", sgrDim, sgrReset))
		bw.WriteString("\n")
	}
	bw.WriteString(a.style("└"+strings.Repeat("─", inner)+"┘", sgrDim, sgrReset))
	if language != "" && language != types.DefaultLanguage {
		bw.WriteString(" ")
		bw.WriteString(a.style(language, sgrDim, sgrReset))
	}
	bw.WriteString("\n")
}
