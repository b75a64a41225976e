package torchmaster

import (
	"context"
	"strings"

	"github.com/riverfjs/torchmaster-go/internal/converter"
	"github.com/riverfjs/torchmaster-go/internal/render"
)

// Process 完整管道：缓冲区 → 内容列表，含 Mermaid 图表
//
// 步骤：
//  1. 预处理并拆分缓冲区
//  2. 按顺序转换每个块（同 Render）
//  3. 配置了 WithDiagrams 时，mermaid 代码块渲染为 Diagram；
//     渲染失败记录日志并保留为 Code
//
// 只有 ctx 被取消时才返回错误。
func Process(ctx context.Context, buffer string, opts ...Option) ([]Content, error) {
	options := applyOptions(opts...)
	blocks := converter.Segment(prepare(buffer, options))
	contents := render.Document(blocks, options.Typesetter, options.Config)
	if options.Diagrams == nil {
		return contents, nil
	}

	for i, c := range contents {
		code, ok := c.(*Code)
		if !ok || code.Language != ContentTypeMermaid {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d := renderDiagram(ctx, options, code); d != nil {
			contents[i] = d
		}
	}
	return contents, nil
}

// renderDiagram 渲染 mermaid 代码块，失败返回 nil
func renderDiagram(ctx context.Context, options *RenderOptions, code *Code) *Diagram {
	d, err := options.Diagrams.Render(ctx, code.Code)
	if err != nil {
		options.Logger.Printf("Mermaid rendering failed: %v", err)
		return nil
	}
	return &Diagram{
		Code:     code.Code,
		Image:    d.Image,
		EditURL:  d.EditURL,
		FileName: strings.TrimSuffix(code.FileName, ".mmd") + "." + d.Format,
		Block:    code.Block,
	}
}
