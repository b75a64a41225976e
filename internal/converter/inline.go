package converter

import (
	"regexp"

	"github.com/riverfjs/torchmaster-go/internal/scan"
	"github.com/riverfjs/torchmaster-go/internal/types"
)

// lineChar matches any character except a line terminator.
const lineChar = `[^\n\r\x{2028}\x{2029}]`

var (
	inlineMathRe = regexp.MustCompile(`\$([^$]+?)\$`)
	boldRe       = regexp.MustCompile(`\*\*(` + lineChar + `*?)\*\*`)
	inlineCodeRe = regexp.MustCompile("`(" + lineChar + "*?)`")

	// 优先级：行内公式 > 粗体 > 行内代码
	inlineScanner = scan.New(
		scan.Rule{Kind: int(types.FragmentInlineMath), Pattern: inlineMathRe},
		scan.Rule{Kind: int(types.FragmentBold), Pattern: boldRe},
		scan.Rule{Kind: int(types.FragmentInlineCode), Pattern: inlineCodeRe},
	)
)

// FormatInline splits text into Plain, Bold, InlineCode and InlineMath
// fragments with delimiters stripped from Content. Unmatched delimiters stay
// in the surrounding plain text.
func FormatInline(text string) []types.Fragment {
	fragments := make([]types.Fragment, 0)
	inlineScanner.Each(text, func(t scan.Token) {
		raw := text[t.Start:t.End]
		frag := types.Fragment{
			Kind:    types.FragmentPlain,
			Start:   t.Start,
			End:     t.End,
			Raw:     raw,
			Content: raw,
		}
		if t.Kind != scan.KindPlain {
			frag.Kind = types.FragmentKind(t.Kind)
			frag.Content, _ = t.Group(1)
		}
		fragments = append(fragments, frag)
	})
	return fragments
}

// PlainText joins the display text of fragments, dropping delimiters.
func PlainText(fragments []types.Fragment) string {
	n := 0
	for _, f := range fragments {
		n += len(f.Content)
	}
	buf := make([]byte, 0, n)
	for _, f := range fragments {
		buf = append(buf, f.Content...)
	}
	return string(buf)
}
