package types

// BlockKind 区分文档顶层片段的类型
type BlockKind int

const (
	// BlockText is a run of prose between fences.
	BlockText BlockKind = iota
	// BlockCode is a fenced ``` code span.
	BlockCode
	// BlockMath is a $$ display math span.
	BlockMath
)

// String returns the string representation of BlockKind.
func (k BlockKind) String() string {
	switch k {
	case BlockText:
		return "text"
	case BlockCode:
		return "code"
	case BlockMath:
		return "math"
	default:
		return "unknown"
	}
}

// DefaultLanguage is used for code fences without a language tag.
const DefaultLanguage = "text"

// Block 记录一个顶层片段及其在缓冲区中的位置
//
// Raw is the delimiter-preserving span buffer[Start:End]; concatenating the
// Raw of every block of a segmentation reproduces the buffer.
type Block struct {
	Kind     BlockKind `json:"kind"`
	Start    int       `json:"start"`
	End      int       `json:"end"`
	Raw      string    `json:"raw"`
	Content  string    `json:"content"`            // text content, code body or latex
	Language string    `json:"language,omitempty"` // code only
}

// FragmentKind 区分行内片段的类型
type FragmentKind int

const (
	FragmentPlain FragmentKind = iota
	FragmentBold
	FragmentInlineCode
	FragmentInlineMath
)

// String returns the string representation of FragmentKind.
func (k FragmentKind) String() string {
	switch k {
	case FragmentPlain:
		return "plain"
	case FragmentBold:
		return "bold"
	case FragmentInlineCode:
		return "inline_code"
	case FragmentInlineMath:
		return "inline_math"
	default:
		return "unknown"
	}
}

// Fragment is an inline span of a text block or chat message. Offsets are
// relative to the string that was formatted.
type Fragment struct {
	Kind    FragmentKind `json:"kind"`
	Start   int          `json:"start"`
	End     int          `json:"end"`
	Raw     string       `json:"raw"`
	Content string       `json:"content"`
}

// LineKind 区分文本块中的行类型
type LineKind int

const (
	LineParagraph LineKind = iota
	LineSpacer
	LineHeading1
	LineHeading2
	LineHeading3
	LineBullet
	LineNumbered
)

// String returns the string representation of LineKind.
func (k LineKind) String() string {
	switch k {
	case LineParagraph:
		return "paragraph"
	case LineSpacer:
		return "spacer"
	case LineHeading1:
		return "heading1"
	case LineHeading2:
		return "heading2"
	case LineHeading3:
		return "heading3"
	case LineBullet:
		return "bullet"
	case LineNumbered:
		return "numbered"
	default:
		return "unknown"
	}
}

// Line is one classified line of a text block.
type Line struct {
	Kind      LineKind
	Marker    string // list number for LineNumbered
	Text      string // text the fragments were derived from
	Fragments []Fragment
}

// Symbol 定义渲染时使用的显示符号
type Symbol struct {
	HeadingLevel1 string `yaml:"heading1"`
	HeadingLevel2 string `yaml:"heading2"`
	HeadingLevel3 string `yaml:"heading3"`
	Bullet        string `yaml:"bullet"`
	Rule          string `yaml:"rule"`
}

// DefaultSymbol 返回默认符号配置
func DefaultSymbol() *Symbol {
	return &Symbol{
		HeadingLevel1: "",
		HeadingLevel2: "",
		HeadingLevel3: "",
		Bullet:        "•",
		Rule:          "────────",
	}
}

// RenderConfig 渲染配置
type RenderConfig struct {
	MarkdownSymbol *Symbol `yaml:"symbols"`
	// TrimCode trims surrounding whitespace of code bodies for display.
	TrimCode bool `yaml:"trim_code"`
	// LatexDelimiters rewrites \[..\] and \(..\) to $$..$$ and $..$ before segmenting.
	LatexDelimiters bool `yaml:"latex_delimiters"`
	// Width is the wrap width of the terminal renderer, 0 disables wrapping.
	Width int `yaml:"width"`
}

// DefaultRenderConfig 返回默认渲染配置
func DefaultRenderConfig() *RenderConfig {
	return &RenderConfig{
		MarkdownSymbol: DefaultSymbol(),
		TrimCode:       true,
		Width:          80,
	}
}
