// Package torchmaster 将模型生成的教学文本渲染为结构化的显示内容
//
// 文本是 Markdown 风格的散文，夹杂 ``` 代码围栏和 LaTeX 公式，并且通常是逐块
// 流式到达的。每次收到新内容时对完整缓冲区重新拆分即可：拆分是纯函数，
// 未闭合的围栏在闭合之前保持为文本。
//
// 核心功能：
//   - 块级拆分：Text / Code / Math
//   - 行内格式：粗体、行内代码、行内公式
//   - LaTeX 转 Unicode，永不失败
//   - Mermaid 图表预览（可选）
//
// 主要 API：
//   - Segment(): 块级拆分
//   - FormatInline(): 行内拆分，同样用于聊天消息
//   - Render(): 同步转换为内容列表
//   - Process(): 含图表渲染的完整管道
//
// 示例：
//
//	contents := torchmaster.Render(buffer)
//	for _, c := range contents {
//	    switch c := c.(type) {
//	    case *torchmaster.Text:
//	        // 显示 c.Lines
//	    case *torchmaster.Code:
//	        // 代码框，c.FileName 用于保存
//	    case *torchmaster.Math:
//	        // 显示 c.Rendered
//	    }
//	}
package torchmaster
