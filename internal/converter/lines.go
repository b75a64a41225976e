package converter

import (
	"regexp"
	"strings"

	"github.com/riverfjs/torchmaster-go/internal/types"
)

var numberedRe = regexp.MustCompile(`^(\d+)\.\s+(.*)`)

// headingPrefixes is checked longest first so "### " is not taken for "# ".
var headingPrefixes = []struct {
	prefix string
	kind   types.LineKind
}{
	{"### ", types.LineHeading3},
	{"## ", types.LineHeading2},
	{"# ", types.LineHeading1},
}

// ClassifyLines splits a text block on newlines and formats every line.
// Blank lines become spacers; headings, bullets and numbered items are
// formatted on their trimmed remainder, paragraphs on the line as written.
func ClassifyLines(text string) []types.Line {
	if text == "" {
		return nil
	}
	rawLines := strings.Split(text, "\n")
	lines := make([]types.Line, 0, len(rawLines))
	for _, raw := range rawLines {
		lines = append(lines, classifyLine(raw))
	}
	return lines
}

// isLineSpace reports the characters trimmed from both ends of a line, the
// same set as fenceSpace.
func isLineSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

func classifyLine(raw string) types.Line {
	trimmed := strings.TrimFunc(raw, isLineSpace)
	if trimmed == "" {
		return types.Line{Kind: types.LineSpacer}
	}
	for _, h := range headingPrefixes {
		if strings.HasPrefix(trimmed, h.prefix) {
			return newLine(h.kind, "", trimmed[len(h.prefix):])
		}
	}
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		return newLine(types.LineBullet, "", trimmed[2:])
	}
	if m := numberedRe.FindStringSubmatch(trimmed); m != nil {
		return newLine(types.LineNumbered, m[1], m[2])
	}
	return newLine(types.LineParagraph, "", raw)
}

func newLine(kind types.LineKind, marker, text string) types.Line {
	return types.Line{
		Kind:      kind,
		Marker:    marker,
		Text:      text,
		Fragments: FormatInline(text),
	}
}
