// Package latex typesets LaTeX math into plain Unicode text.
//
// The Typesetter never panics and never fails its caller: Render returns the
// raw source when the input is malformed or the converter breaks.
package latex

import (
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
)

// SyntaxError reports where a LaTeX fragment stops being well formed.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("latex: %s at offset %d", e.Msg, e.Pos)
}

// Typesetter converts LaTeX fragments for display.
type Typesetter struct {
	parser *Parser
	logger *log.Logger
}

// NewTypesetter 创建排版器，logger 为 nil 时丢弃日志
func NewTypesetter(logger *log.Logger) *Typesetter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Typesetter{parser: NewParser(), logger: logger}
}

var defaultTypesetter = NewTypesetter(nil)

// Render typesets src with the package default Typesetter.
func Render(src string, displayMode bool) string {
	return defaultTypesetter.Render(src, displayMode)
}

// Render returns the Unicode rendering of src, or src itself if it cannot be
// typeset.
func (t *Typesetter) Render(src string, displayMode bool) string {
	out, err := t.Typeset(src, displayMode)
	if err != nil {
		t.logger.Printf("latex fallback (display=%v): %v", displayMode, err)
		return src
	}
	return out
}

var (
	inlineSpaceRe = regexp.MustCompile(`\s+`)
	blankLinesRe  = regexp.MustCompile(`\n[ \t]*\n+`)
)

// Typeset converts src and reports malformed input as an error. Inline mode
// collapses all whitespace to single spaces; display mode keeps line breaks.
func (t *Typesetter) Typeset(src string, displayMode bool) (out string, err error) {
	if err := Validate(src); err != nil {
		return "", err
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("latex: converter panic: %v", r)
		}
	}()

	out = t.parser.Parse(src)
	if !displayMode {
		return strings.TrimSpace(inlineSpaceRe.ReplaceAllString(out, " ")), nil
	}
	out = blankLinesRe.ReplaceAllString(out, "\n")
	return strings.Trim(out, " \t\n"), nil
}

// Validate checks that braces balance and that every \begin{env} is closed by
// a matching \end{env}.
func Validate(src string) error {
	var braces []int
	type env struct {
		name string
		pos  int
	}
	var envs []env

	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\\':
			name, next := envCommand(src, i)
			switch name {
			case "begin", "end":
				arg, after, ok := envArgument(src, next)
				if !ok {
					return &SyntaxError{Pos: i, Msg: fmt.Sprintf(`\%s without environment name`, name)}
				}
				if name == "begin" {
					envs = append(envs, env{arg, i})
				} else {
					if len(envs) == 0 {
						return &SyntaxError{Pos: i, Msg: fmt.Sprintf(`\end{%s} without \begin`, arg)}
					}
					if top := envs[len(envs)-1]; top.name != arg {
						return &SyntaxError{Pos: i, Msg: fmt.Sprintf(`\end{%s} closes \begin{%s}`, arg, top.name)}
					}
					envs = envs[:len(envs)-1]
				}
				i = after - 1
			default:
				i = next - 1
			}
		case '{':
			braces = append(braces, i)
		case '}':
			if len(braces) == 0 {
				return &SyntaxError{Pos: i, Msg: "unexpected }"}
			}
			braces = braces[:len(braces)-1]
		}
	}
	if len(braces) > 0 {
		return &SyntaxError{Pos: braces[len(braces)-1], Msg: "unclosed {"}
	}
	if len(envs) > 0 {
		top := envs[len(envs)-1]
		return &SyntaxError{Pos: top.pos, Msg: fmt.Sprintf(`unclosed \begin{%s}`, top.name)}
	}
	return nil
}

// envCommand returns the command name at src[i] (a backslash) and the index
// after it. Escaped single characters yield an empty name.
func envCommand(src string, i int) (string, int) {
	j := i + 1
	for j < len(src) && isLetter(src[j]) {
		j++
	}
	if j == i+1 {
		return "", min(i+2, len(src))
	}
	return src[i+1 : j], j
}

func envArgument(src string, i int) (string, int, bool) {
	i = skipSpaces(src, i)
	if i >= len(src) || src[i] != '{' {
		return "", i, false
	}
	end := strings.IndexByte(src[i:], '}')
	if end == -1 {
		return "", i, false
	}
	return src[i+1 : i+end], i + end + 1, true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
