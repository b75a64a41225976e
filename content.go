package torchmaster

import "github.com/riverfjs/torchmaster-go/internal/types"

// 导出类型别名
type (
	Block        = types.Block
	BlockKind    = types.BlockKind
	Fragment     = types.Fragment
	FragmentKind = types.FragmentKind
	Line         = types.Line
	LineKind     = types.LineKind

	Content      = types.Content
	ContentType  = types.ContentType
	Text         = types.Text
	Code         = types.Code
	Math         = types.Math
	Diagram      = types.Diagram
	Span         = types.Span
	RenderedLine = types.RenderedLine

	Role        = types.Role
	ChatMessage = types.ChatMessage
	MessageView = types.MessageView
)

const (
	BlockText = types.BlockText
	BlockCode = types.BlockCode
	BlockMath = types.BlockMath

	FragmentPlain      = types.FragmentPlain
	FragmentBold       = types.FragmentBold
	FragmentInlineCode = types.FragmentInlineCode
	FragmentInlineMath = types.FragmentInlineMath

	LineParagraph = types.LineParagraph
	LineSpacer    = types.LineSpacer
	LineHeading1  = types.LineHeading1
	LineHeading2  = types.LineHeading2
	LineHeading3  = types.LineHeading3
	LineBullet    = types.LineBullet
	LineNumbered  = types.LineNumbered

	ContentTypeText    = types.ContentTypeText
	ContentTypeCode    = types.ContentTypeCode
	ContentTypeMath    = types.ContentTypeMath
	ContentTypeDiagram = types.ContentTypeDiagram

	RoleUser  = types.RoleUser
	RoleModel = types.RoleModel

	// ContentTypeMermaid is the code language rendered as a diagram.
	ContentTypeMermaid = "mermaid"
)
