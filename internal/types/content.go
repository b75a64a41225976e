package types

// ContentType represents the type of rendered content.
type ContentType int

const (
	// ContentTypeText represents formatted prose.
	ContentTypeText ContentType = iota
	// ContentTypeCode represents a code block.
	ContentTypeCode
	// ContentTypeMath represents display math.
	ContentTypeMath
	// ContentTypeDiagram represents a rendered diagram.
	ContentTypeDiagram
)

// String returns the string representation of ContentType.
func (ct ContentType) String() string {
	switch ct {
	case ContentTypeText:
		return "text"
	case ContentTypeCode:
		return "code"
	case ContentTypeMath:
		return "math"
	case ContentTypeDiagram:
		return "diagram"
	default:
		return "unknown"
	}
}

// Content is one renderable piece of a document, in block order.
type Content interface {
	GetContentType() ContentType
	// Source returns the block the content was produced from.
	Source() Block
}

// Span is an inline fragment ready for display. Math holds the typeset
// rendering of inline math spans.
type Span struct {
	Kind FragmentKind
	Text string
	Math string
}

// RenderedLine is a classified line with display spans.
type RenderedLine struct {
	Kind   LineKind
	Marker string
	Spans  []Span
}

// Text represents formatted prose.
type Text struct {
	Lines []RenderedLine
	Block Block
}

// GetContentType returns ContentTypeText.
func (t *Text) GetContentType() ContentType { return ContentTypeText }

// Source returns the originating block.
func (t *Text) Source() Block { return t.Block }

// Code represents a code block.
type Code struct {
	Language string
	Code     string
	FileName string
	Block    Block
}

// GetContentType returns ContentTypeCode.
func (c *Code) GetContentType() ContentType { return ContentTypeCode }

// Source returns the originating block.
func (c *Code) Source() Block { return c.Block }

// Math represents display math.
type Math struct {
	Latex    string
	Rendered string
	Block    Block
}

// GetContentType returns ContentTypeMath.
func (m *Math) GetContentType() ContentType { return ContentTypeMath }

// Source returns the originating block.
func (m *Math) Source() Block { return m.Block }

// Diagram represents a mermaid code block rendered to an image.
type Diagram struct {
	Code     string
	Image    []byte
	EditURL  string
	FileName string
	Block    Block
}

// GetContentType returns ContentTypeDiagram.
func (d *Diagram) GetContentType() ContentType { return ContentTypeDiagram }

// Source returns the originating block.
func (d *Diagram) Source() Block { return d.Block }
