package converter

import (
	"regexp"
	"strings"
)

var (
	// 代码块和行内代码区域，预处理时跳过
	codeRegionRe = regexp.MustCompile("(```[\\s\\S]*?```|`[^`\\n]+`)")

	// LaTeX 块级公式：\[...\]
	latexMathRe = regexp.MustCompile(`(?s)\\\[(.*?)\\\]`)

	// LaTeX 行内公式：\(...\)
	latexInlineRe = regexp.MustCompile(`\\\((.*?)\\\)`)
)

// NormalizeDelimiters rewrites \[...\] to $$...$$ and \(...\) to $...$ so
// that models using the LaTeX bracket syntax segment like dollar math.
// Fenced and inline code regions are left untouched.
func NormalizeDelimiters(text string) string {
	if !strings.Contains(text, `\[`) && !strings.Contains(text, `\(`) {
		return text
	}
	parts := codeRegionRe.Split(text, -1)
	codes := codeRegionRe.FindAllString(text, -1)

	var result strings.Builder
	result.Grow(len(text))
	for i, part := range parts {
		result.WriteString(rewriteLatexDelimiters(part))
		if i < len(codes) {
			result.WriteString(codes[i])
		}
	}
	return result.String()
}

func rewriteLatexDelimiters(text string) string {
	text = latexMathRe.ReplaceAllStringFunc(text, func(match string) string {
		content := latexMathRe.FindStringSubmatch(match)[1]
		return "$$" + content + "$$"
	})
	return latexInlineRe.ReplaceAllStringFunc(text, func(match string) string {
		content := strings.TrimSpace(latexInlineRe.FindStringSubmatch(match)[1])
		if content == "" || strings.Contains(content, "$") {
			return match
		}
		return "$" + content + "$"
	})
}
