package torchmaster

import (
	"github.com/riverfjs/torchmaster-go/internal/converter"
	"github.com/riverfjs/torchmaster-go/internal/latex"
	"github.com/riverfjs/torchmaster-go/internal/render"
)

// Segment 将缓冲区拆分为 Text / Code / Math 块
//
// 参数:
//   - buffer: 目前收到的全部文本，可以是未完成的流
//   - opts: WithLatexDelimiters 在拆分前把 \[..\] 和 \(..\) 改写为 $$ 与 $
//
// 返回:
//   - []Block: 按顺序排列的块；未闭合的围栏保留为文本。
//     改写分隔符时，偏移量相对于改写后的缓冲区。
func Segment(buffer string, opts ...Option) []Block {
	options := applyOptions(opts...)
	return converter.Segment(prepare(buffer, options))
}

func prepare(buffer string, options *RenderOptions) string {
	if options.Config.LatexDelimiters {
		return converter.NormalizeDelimiters(buffer)
	}
	return buffer
}

// FormatInline splits text into plain, bold, inline code and inline math
// fragments. Unmatched delimiters stay in the plain text.
func FormatInline(text string) []Fragment {
	return converter.FormatInline(text)
}

// ClassifyLines splits a text block into headings, list items, paragraphs
// and spacers.
func ClassifyLines(text string) []Line {
	return converter.ClassifyLines(text)
}

// Typeset converts LaTeX to Unicode text. Malformed input is returned as is.
func Typeset(src string, displayMode bool) string {
	return latex.Render(src, displayMode)
}

// Render 将缓冲区转换为可显示的内容列表
//
// Text 块拆分为行并排版行内公式，Code 块带有文件名，Math 块以显示模式排版。
// 不会失败，也不会访问网络；需要渲染 Mermaid 图表时使用 Process。
func Render(buffer string, opts ...Option) []Content {
	options := applyOptions(opts...)
	blocks := converter.Segment(prepare(buffer, options))
	return render.Document(blocks, options.Typesetter, options.Config)
}
