package torchmaster

import (
	"strings"
	"testing"
)

// findContent 查找指定类型的第一个内容
func findContent(contents []Content, ct ContentType) Content {
	for _, c := range contents {
		if c.GetContentType() == ct {
			return c
		}
	}
	return nil
}

// TestSegment_Simple 测试基本块拆分
func TestSegment_Simple(t *testing.T) {
	blocks := Segment("Intro\n```python\nprint(1)\n```\n$$a^2$$")
	if len(blocks) != 4 {
		t.Fatalf("Segment() = %d blocks, want 4", len(blocks))
	}
	if blocks[1].Kind != BlockCode || blocks[1].Language != "python" || blocks[1].Content != "print(1)\n" {
		t.Errorf("code block = %+v", blocks[1])
	}
	if blocks[3].Kind != BlockMath || blocks[3].Content != "a^2" {
		t.Errorf("math block = %+v", blocks[3])
	}
}

func TestSegment_LatexDelimiters(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		wantMath bool
	}{
		{name: "disabled", enabled: false, wantMath: false},
		{name: "enabled", enabled: true, wantMath: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Segment(`Energy: \[E = mc^2\]`, WithLatexDelimiters(tt.enabled))
			gotMath := false
			for _, b := range blocks {
				if b.Kind == BlockMath {
					gotMath = true
					if b.Content != "E = mc^2" {
						t.Errorf("math content = %q", b.Content)
					}
				}
			}
			if gotMath != tt.wantMath {
				t.Errorf("math block found = %v, want %v", gotMath, tt.wantMath)
			}
		})
	}
}

// TestWithLatexDelimiters_DoesNotMutateDefault 选项不修改全局默认配置
func TestWithLatexDelimiters_DoesNotMutateDefault(t *testing.T) {
	_ = Segment(`\(x\)`, WithLatexDelimiters(true))
	if DefaultConfig().LatexDelimiters {
		t.Error("WithLatexDelimiters changed DefaultConfig()")
	}
}

func TestFormatInline_Root(t *testing.T) {
	frags := FormatInline("Call **x.backward()** then read `x.grad`")
	kinds := []FragmentKind{FragmentPlain, FragmentBold, FragmentPlain, FragmentInlineCode}
	if len(frags) != len(kinds) {
		t.Fatalf("FormatInline() = %+v", frags)
	}
	for i, k := range kinds {
		if frags[i].Kind != k {
			t.Errorf("fragment %d kind = %v, want %v", i, frags[i].Kind, k)
		}
	}
	if frags[1].Content != "x.backward()" {
		t.Errorf("bold content = %q", frags[1].Content)
	}
}

func TestTypeset(t *testing.T) {
	tests := []struct {
		src     string
		display bool
		want    string
	}{
		{src: `\alpha^2`, want: "α²"},
		{src: `\frac{1}{2}`, display: true, want: "½"},
		{src: `\frac{1}{`, want: `\frac{1}{`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := Typeset(tt.src, tt.display); got != tt.want {
				t.Errorf("Typeset(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

// TestRender_Document 测试完整文档转换
func TestRender_Document(t *testing.T) {
	doc := "# Autograd\nGradients of $x^2$ are **easy**.\n" +
		"```python\n# train.py\nloss.backward()\n```\n" +
		"$$\\frac{a+b}{2}$$"
	contents := Render(doc, WithLogger(nil))
	if len(contents) != 4 {
		t.Fatalf("Render() = %d contents, want 4", len(contents))
	}

	text, ok := contents[0].(*Text)
	if !ok {
		t.Fatalf("contents[0] = %T, want *Text", contents[0])
	}
	if text.Lines[0].Kind != LineHeading1 {
		t.Errorf("first line kind = %v", text.Lines[0].Kind)
	}
	var math string
	for _, s := range text.Lines[1].Spans {
		if s.Kind == FragmentInlineMath {
			math = s.Math
		}
	}
	if math != "x²" {
		t.Errorf("inline math = %q, want x²", math)
	}

	code := findContent(contents, ContentTypeCode).(*Code)
	if code.FileName != "train.py" || !strings.HasPrefix(code.Code, "# train.py") {
		t.Errorf("code = %+v", code)
	}
	m := findContent(contents, ContentTypeMath).(*Math)
	if m.Rendered != "(a+b)/2" {
		t.Errorf("display math = %q, want (a+b)/2", m.Rendered)
	}
}

type echoTypesetter struct{ calls int }

func (e *echoTypesetter) Render(src string, display bool) string {
	e.calls++
	if display {
		return "[" + src + "]"
	}
	return "(" + src + ")"
}

func TestRender_WithTypesetter(t *testing.T) {
	ts := &echoTypesetter{}
	contents := Render("a $b$ c\n$$d$$", WithTypesetter(ts))
	m := findContent(contents, ContentTypeMath).(*Math)
	if m.Rendered != "[d]" {
		t.Errorf("display math = %q", m.Rendered)
	}
	if ts.calls != 2 {
		t.Errorf("typesetter calls = %d, want 2", ts.calls)
	}
}

func TestRender_Empty(t *testing.T) {
	if got := Render(""); len(got) != 0 {
		t.Errorf("Render(\"\") = %+v, want empty", got)
	}
}

// TestRender_Streaming 逐字符增长的缓冲区每次都能渲染，代码块只在闭合后出现
func TestRender_Streaming(t *testing.T) {
	doc := "Before\n```go\nfmt.Println(1)\n```\nAfter"
	closed := strings.LastIndex(doc, "```") + 3
	for i := 0; i <= len(doc); i++ {
		contents := Render(doc[:i])
		hasCode := findContent(contents, ContentTypeCode) != nil
		if hasCode != (i >= closed) {
			t.Fatalf("prefix %q: code block present = %v", doc[:i], hasCode)
		}
	}
}
