package converter

import (
	"regexp"
	"strings"

	"github.com/riverfjs/torchmaster-go/internal/scan"
	"github.com/riverfjs/torchmaster-go/internal/types"
)

// fenceSpace is the whitespace allowed between the language tag and the body,
// including the Unicode spaces an LLM sometimes emits.
const fenceSpace = `[\t\n\v\f\r \x{a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}]`

var (
	// 代码块：```lang 可选，内容非贪婪，直到下一个 ```
	fencedCodeRe = regexp.MustCompile("```(\\w+)?" + fenceSpace + "*([\\s\\S]*?)```")

	// 块级公式：$$...$$
	blockMathRe = regexp.MustCompile(`\$\$([\s\S]*?)\$\$`)

	blockScanner = scan.New(
		scan.Rule{Kind: int(types.BlockCode), Pattern: fencedCodeRe},
		scan.Rule{Kind: int(types.BlockMath), Pattern: blockMathRe},
	)
)

// Segment splits buffer into ordered Text, Code and MathBlock blocks.
//
// Whichever complete fence opens first wins and scanning resumes after it.
// An unterminated fence has no match and stays inside the surrounding text
// block until its closing delimiter arrives.
func Segment(buffer string) []types.Block {
	blocks := make([]types.Block, 0)
	blockScanner.Each(buffer, func(t scan.Token) {
		blocks = append(blocks, blockFromToken(buffer, t))
	})
	return blocks
}

func blockFromToken(buffer string, t scan.Token) types.Block {
	raw := buffer[t.Start:t.End]
	block := types.Block{
		Start: t.Start,
		End:   t.End,
		Raw:   raw,
	}
	switch types.BlockKind(t.Kind) {
	case types.BlockCode:
		block.Kind = types.BlockCode
		lang, _ := t.Group(1)
		body, _ := t.Group(2)
		block.Language = normalizeLanguage(lang)
		block.Content = body
	case types.BlockMath:
		block.Kind = types.BlockMath
		block.Content, _ = t.Group(1)
	default:
		block.Kind = types.BlockText
		block.Content = raw
	}
	return block
}

func normalizeLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return types.DefaultLanguage
	}
	return lang
}
