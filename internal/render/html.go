package render

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/yuin/goldmark/util"

	"github.com/riverfjs/torchmaster-go/internal/mermaid"
	"github.com/riverfjs/torchmaster-go/internal/types"
)

// HTML writes contents as an HTML fragment.
type HTML struct {
	Symbols *types.Symbol
}

// NewHTML creates an HTML renderer. A nil symbols uses types.DefaultSymbol.
func NewHTML(symbols *types.Symbol) *HTML {
	if symbols == nil {
		symbols = types.DefaultSymbol()
	}
	return &HTML{Symbols: symbols}
}

func escape(s string) []byte {
	return util.EscapeHTML([]byte(s))
}

// WriteDocument writes a rendered document.
func (h *HTML) WriteDocument(w io.Writer, contents []types.Content) error {
	bw := bufio.NewWriter(w)
	for _, c := range contents {
		switch v := c.(type) {
		case *types.Text:
			h.writeText(bw, v.Lines)
		case *types.Code:
			writeCode(bw, v.Language, v.FileName, v.Code)
		case *types.Math:
			bw.WriteString(`<div class="math display">`)
			bw.Write(escape(v.Rendered))
			bw.WriteString("</div>\n")
		case *types.Diagram:
			writeDiagram(bw, v)
		}
	}
	return bw.Flush()
}

// WriteTranscript writes a chat transcript, one element per message.
func (h *HTML) WriteTranscript(w io.Writer, views []types.MessageView, ts Typesetter) error {
	bw := bufio.NewWriter(w)
	for _, v := range views {
		fmt.Fprintf(bw, `<div class="message %s">`, v.Message.Role)
		if v.Pending {
			bw.WriteString(`<span class="pending">…</span>`)
		} else {
			writeSpans(bw, Spans(v.Fragments, ts))
		}
		bw.WriteString("</div>\n")
	}
	return bw.Flush()
}

func (h *HTML) writeText(bw *bufio.Writer, lines []types.RenderedLine) {
	list := ""
	closeList := func() {
		if list != "" {
			fmt.Fprintf(bw, "</%s>\n", list)
			list = ""
		}
	}
	openList := func(tag string) {
		if list != tag {
			closeList()
			fmt.Fprintf(bw, "<%s>\n", tag)
			list = tag
		}
	}

	for _, l := range lines {
		switch l.Kind {
		case types.LineSpacer:
			closeList()
		case types.LineHeading1, types.LineHeading2, types.LineHeading3:
			closeList()
			level := int(l.Kind-types.LineHeading1) + 1
			fmt.Fprintf(bw, "<h%d>", level)
			if prefix := h.headingPrefix(l.Kind); prefix != "" {
				bw.Write(escape(prefix))
			}
			writeSpans(bw, l.Spans)
			fmt.Fprintf(bw, "</h%d>\n", level)
		case types.LineBullet:
			openList("ul")
			bw.WriteString("<li>")
			writeSpans(bw, l.Spans)
			bw.WriteString("</li>\n")
		case types.LineNumbered:
			openList("ol")
			fmt.Fprintf(bw, `<li value="%s">`, escape(l.Marker))
			writeSpans(bw, l.Spans)
			bw.WriteString("</li>\n")
		default:
			closeList()
			bw.WriteString("<p>")
			writeSpans(bw, l.Spans)
			bw.WriteString("</p>\n")
		}
	}
	closeList()
}

func (h *HTML) headingPrefix(kind types.LineKind) string {
	switch kind {
	case types.LineHeading1:
		return h.Symbols.HeadingLevel1
	case types.LineHeading2:
		return h.Symbols.HeadingLevel2
	default:
		return h.Symbols.HeadingLevel3
	}
}

func writeSpans(bw *bufio.Writer, spans []types.Span) {
	for _, s := range spans {
		switch s.Kind {
		case types.FragmentBold:
			bw.WriteString("<strong>")
			bw.Write(escape(s.Text))
			bw.WriteString("</strong>")
		case types.FragmentInlineCode:
			bw.WriteString("<code>")
			bw.Write(escape(s.Text))
			bw.WriteString("</code>")
		case types.FragmentInlineMath:
			bw.WriteString(`<span class="math inline">`)
			bw.Write(escape(s.Math))
			bw.WriteString("</span>")
		default:
			bw.Write(escape(s.Text))
		}
	}
}

func writeCode(bw *bufio.Writer, language, fileName, code string) {
	bw.WriteString(`<figure class="code">`)
	fmt.Fprintf(bw, `<figcaption>%s</figcaption>`, escape(fileName))
	fmt.Fprintf(bw, `<pre><code class="language-%s">`, escape(language))
	bw.Write(escape(code))
	bw.WriteString("</code></pre></figure>\n")
}

func writeDiagram(bw *bufio.Writer, d *types.Diagram) {
	format := mermaid.ImageFormat(d.Image)
	if format == "" {
		writeCode(bw, "mermaid", d.FileName, d.Code)
		return
	}
	bw.WriteString(`<figure class="diagram">`)
	fmt.Fprintf(bw, `<img alt="%s" src="data:image/%s;base64,%s">`,
		escape(d.FileName), format, base64.StdEncoding.EncodeToString(d.Image))
	if d.EditURL != "" {
		fmt.Fprintf(bw, `<figcaption><a href="%s">edit</a></figcaption>`, escape(string(util.URLEscape([]byte(d.EditURL), false))))
	}
	bw.WriteString("</figure>\n")
}
