package latex

import (
	"regexp"
	"strings"
	"unicode"
)

// Parser 递归下降 LaTeX→Unicode 转换引擎
//
// Unknown commands come back as their source text. Parse may panic on
// pathological input; Convert and the Typesetter recover at their boundary.
type Parser struct {
	handlers map[string]commandHandler
}

// commandHandler translates a command whose arguments start at index and
// returns the rendering and the index after the last consumed argument.
type commandHandler func(p *Parser, command, latex string, index int) (string, int)

// NewParser 创建新的 LaTeX 解析器
func NewParser() *Parser {
	p := &Parser{handlers: make(map[string]commandHandler)}
	p.register(handleNot, `\not`)
	p.register(handleFrac, `\frac`, `\dfrac`, `\tfrac`, `\cfrac`)
	p.register(handleSqrt, `\sqrt`)
	p.register(handleText, `\text`, `\operatorname`, `\mbox`, `\textrm`, `\textup`, `\mathop`, `\textnormal`)
	p.register(handleDelimiter, `\left`, `\right`, `\big`, `\Big`, `\bigg`, `\Bigg`, `\bigl`, `\bigr`, `\Bigl`, `\Bigr`)
	p.register(handleBinom, `\binom`, `\tbinom`, `\dbinom`)
	p.register(handleBoxed, `\boxed`)
	p.register(handlePmod, `\pmod`)
	p.register(handlePhantom, `\phantom`, `\hphantom`, `\vphantom`)
	p.register(handleOverset, `\overset`, `\stackrel`)
	p.register(handleUnderset, `\underset`)
	p.register(handleSubstack, `\substack`)
	p.register(handleColor, `\color`)
	p.register(handleCancel, `\cancel`, `\bcancel`, `\xcancel`, `\sout`)
	p.register(handleBrace, `\overbrace`, `\underbrace`)
	p.register(handleXArrow, `\xrightarrow`, `\xleftarrow`)
	p.register(handleBegin, `\begin`)
	p.register(handleEnd, `\end`)
	return p
}

func (p *Parser) register(h commandHandler, commands ...string) {
	for _, c := range commands {
		p.handlers[c] = h
	}
}

// ──────────────────────────────────────────────
// 静态工具方法
// ──────────────────────────────────────────────

// TranslateCombining 将组合字符应用于文本
func TranslateCombining(command, text string) string {
	sample, ok := Combining[command]
	if !ok {
		return text
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return text
	}

	switch sample.Type {
	case FirstChar:
		// 跳过首字符之后的空格和已有组合字符
		i := 1
		for i < len(runes) && (unicode.IsSpace(runes[i]) || isCombiningChar(runes[i])) {
			i++
		}
		if i >= len(runes) {
			return string(runes) + string(sample.Char)
		}
		return string(runes[:i]) + string(sample.Char) + string(runes[i:])
	case LastChar:
		return text + string(sample.Char)
	case AllChars:
		var result strings.Builder
		for _, r := range runes {
			result.WriteRune(r)
			result.WriteRune(sample.Char)
		}
		return result.String()
	}
	return text
}

// MakeNot 生成带否定符号的字符
func MakeNot(negated string) string {
	trimmed := strings.TrimSpace(negated)
	if trimmed == "" {
		return " "
	}
	if notSymbol, ok := NotMap[trimmed]; ok {
		return notSymbol
	}
	runes := []rune(trimmed)
	return string(runes[0]) + "\u0338" + string(runes[1:])
}

// TryMakeSubscript converts every rune of text to a Unicode subscript, or
// returns "" if any rune has none.
func TryMakeSubscript(text string) string {
	return mapAll(text, Subscripts)
}

// TryMakeSuperscript converts every rune of text to a Unicode superscript,
// or returns "" if any rune has none.
func TryMakeSuperscript(text string) string {
	return mapAll(text, Superscripts)
}

func mapAll(text string, table map[rune]rune) string {
	if text == "" {
		return ""
	}
	var result strings.Builder
	for _, ch := range text {
		mapped, ok := table[ch]
		if !ok {
			return ""
		}
		result.WriteRune(mapped)
	}
	return result.String()
}

// MakeSubscript 生成下标表示，无法用 Unicode 表示时退化为 _x 或 _(xy)
func MakeSubscript(text string) string {
	return makeScript(text, "_", TryMakeSubscript)
}

// MakeSuperscript 生成上标表示，无法用 Unicode 表示时退化为 ^x 或 ^(xy)
func MakeSuperscript(text string) string {
	return makeScript(text, "^", TryMakeSuperscript)
}

func makeScript(text, marker string, try func(string) string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if scripted := try(text); scripted != "" {
		return scripted
	}
	if len([]rune(text)) == 1 {
		return marker + text
	}
	return marker + "(" + text + ")"
}

// TranslateStyles 翻译样式命令（粗体、黑板体、花体等）
func TranslateStyles(command, text string) string {
	styleMap, ok := LatexStyles[command]
	if !ok || styleMap == nil {
		return text
	}
	var result strings.Builder
	for _, ch := range text {
		if styled, ok := styleMap[ch]; ok {
			result.WriteRune(styled)
		} else {
			result.WriteRune(ch)
		}
	}
	return result.String()
}

// MakeSqrt 生成根号的 Unicode 表示
func MakeSqrt(index, radicand string) string {
	var radix string
	switch index {
	case "", "2":
		radix = "√"
	case "3":
		radix = "∛"
	case "4":
		radix = "∜"
	default:
		if sup := TryMakeSuperscript(index); sup != "" {
			radix = sup + "√"
		} else {
			radix = "(" + index + ")√"
		}
	}
	if len([]rune(radicand)) > 1 {
		return radix + "(" + radicand + ")"
	}
	return radix + radicand
}

// MakeFraction 生成分数的 Unicode 表示
func MakeFraction(numerator, denominator string) string {
	n, d := strings.TrimSpace(numerator), strings.TrimSpace(denominator)
	if n == "" && d == "" {
		return ""
	}
	if frac, ok := FracMap[[2]string{n, d}]; ok {
		return frac
	}
	return maybeParenthesize(n) + "/" + maybeParenthesize(d)
}

func maybeParenthesize(text string) string {
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && !isCombiningChar(r) && r != '_' {
			return "(" + text + ")"
		}
	}
	return text
}

func isCombiningChar(r rune) bool {
	return (r >= '\u0300' && r <= '\u036F') ||
		(r >= '\u1AB0' && r <= '\u1AFF') ||
		(r >= '\u1DC0' && r <= '\u1DFF') ||
		(r >= '\u20D0' && r <= '\u20FF') ||
		(r >= '\uFE20' && r <= '\uFE2F')
}

// TranslateEscape 查找 LaTeX 符号，找不到时原样返回
func TranslateEscape(name string) string {
	if symbol, ok := LatexSymbols[name]; ok {
		return symbol
	}
	return name
}

// ──────────────────────────────────────────────
// 解析器核心
// ──────────────────────────────────────────────

// Parse 递归下降解析 LaTeX 字符串，转换为 Unicode
func (p *Parser) Parse(latex string) string {
	var out strings.Builder
	i := 0
	for i < len(latex) {
		switch c := latex[i]; {
		case c == '\\':
			command, next := p.parseCommand(latex, i)
			p.spaceMixedFraction(&out, command)
			rendered, next := p.handleCommand(command, latex, next)
			out.WriteString(rendered)
			i = next
		case c == '{':
			block, next := p.parseBlock(latex, i)
			out.WriteString(block)
			i = next
		case c == '}':
			// 多余的右括号直接丢弃
			i++
		case c == '_' || c == '^':
			arg, next := p.parseScriptArg(&out, latex, i+1)
			if c == '_' {
				out.WriteString(MakeSubscript(arg))
			} else {
				out.WriteString(MakeSuperscript(arg))
			}
			i = next
		case c == '\'':
			out.WriteString("′")
			i++
		case c == '~':
			out.WriteString(" ")
			i++
		case unicode.IsSpace(rune(c)):
			spaces, next := p.parseSpaces(latex, i)
			out.WriteString(spaces)
			i = next
		default:
			// 按 rune 复制，保持多字节字符完整
			j := i + 1
			for j < len(latex) && latex[j]&0xC0 == 0x80 {
				j++
			}
			out.WriteString(latex[i:j])
			i = j
		}
	}
	return out.String()
}

// spaceMixedFraction separates a digit from a following \frac so "1\frac12"
// reads as a mixed number.
func (p *Parser) spaceMixedFraction(out *strings.Builder, command string) {
	if command != `\frac` {
		return
	}
	s := out.String()
	if s != "" && s[len(s)-1] >= '0' && s[len(s)-1] <= '9' {
		out.WriteByte(' ')
	}
}

func (p *Parser) parseScriptArg(out *strings.Builder, latex string, i int) (string, int) {
	if i >= len(latex) {
		return "", i
	}
	switch latex[i] {
	case '{':
		return p.parseBlock(latex, i)
	case '\\':
		command, next := p.parseCommand(latex, i)
		p.spaceMixedFraction(out, command)
		return p.handleCommand(command, latex, next)
	}
	j := i + 1
	for j < len(latex) && latex[j]&0xC0 == 0x80 {
		j++
	}
	return latex[i:j], j
}

// handleCommand 按优先级分派：符号表 > 注册的命令 > 组合字符 > 样式 > 原文
func (p *Parser) handleCommand(command, latex string, index int) (string, int) {
	if symbol, ok := LatexSymbols[command]; ok {
		return symbol, index
	}
	if h, ok := p.handlers[command]; ok {
		return h(p, command, latex, index)
	}
	if _, ok := Combining[command]; ok {
		arg, next := p.parseBlock(latex, index)
		return TranslateCombining(command, arg), next
	}
	if _, ok := LatexStyles[command]; ok {
		text, next := p.parseBlock(latex, index)
		return TranslateStyles(command, text), next
	}
	return command, index
}

// ──────────────────────────────────────────────
// 命令处理
// ──────────────────────────────────────────────

func handleNot(p *Parser, _ string, latex string, index int) (string, int) {
	if index >= len(latex) {
		return "\u0338", index
	}
	if latex[index] == '\\' {
		next, nextIdx := p.parseCommand(latex, index)
		symbol, ok := LatexSymbols[next]
		if !ok {
			symbol = next
		}
		return MakeNot(symbol), nextIdx
	}
	return MakeNot(string(latex[index])), index + 1
}

func handleFrac(p *Parser, _ string, latex string, index int) (string, int) {
	numer, idx1 := p.parseBlock(latex, index)
	denom, idx2 := p.parseBlock(latex, idx1)
	return MakeFraction(numer, denom), idx2
}

func handleSqrt(p *Parser, _ string, latex string, index int) (string, int) {
	option, idx1 := p.parseOptional(latex, index)
	param, idx2 := p.parseBlock(latex, idx1)
	return MakeSqrt(strings.TrimSpace(option), strings.TrimSpace(param)), idx2
}

func handleText(p *Parser, _ string, latex string, index int) (string, int) {
	return p.parseRawBlock(latex, index)
}

func handleDelimiter(p *Parser, _ string, latex string, index int) (string, int) {
	return p.parseDelimiter(latex, index)
}

func handleBinom(p *Parser, _ string, latex string, index int) (string, int) {
	n, idx1 := p.parseBlock(latex, index)
	k, idx2 := p.parseBlock(latex, idx1)
	return "C(" + n + "," + k + ")", idx2
}

func handleBoxed(p *Parser, _ string, latex string, index int) (string, int) {
	text, next := p.parseBlock(latex, index)
	return "[" + text + "]", next
}

func handlePmod(p *Parser, _ string, latex string, index int) (string, int) {
	text, next := p.parseBlock(latex, index)
	return " (mod " + text + ")", next
}

func handlePhantom(p *Parser, _ string, latex string, index int) (string, int) {
	text, next := p.parseBlock(latex, index)
	return strings.Repeat(" ", max(1, len([]rune(text)))), next
}

func handleOverset(p *Parser, _ string, latex string, index int) (string, int) {
	over, idx1 := p.parseBlock(latex, index)
	base, idx2 := p.parseBlock(latex, idx1)
	if sup := TryMakeSuperscript(over); sup != "" {
		return base + sup, idx2
	}
	return base + "^(" + over + ")", idx2
}

func handleUnderset(p *Parser, _ string, latex string, index int) (string, int) {
	under, idx1 := p.parseBlock(latex, index)
	base, idx2 := p.parseBlock(latex, idx1)
	if sub := TryMakeSubscript(under); sub != "" {
		return base + sub, idx2
	}
	return base + "_(" + under + ")", idx2
}

func handleSubstack(p *Parser, _ string, latex string, index int) (string, int) {
	raw, next := p.parseRawBlock(latex, index)
	var parsed []string
	for _, line := range strings.Split(raw, `\\`) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parsed = append(parsed, p.Parse(trimmed))
		}
	}
	return strings.Join(parsed, ", "), next
}

func handleColor(p *Parser, _ string, latex string, index int) (string, int) {
	_, next := p.parseRawBlock(latex, index)
	return "", next
}

func handleCancel(p *Parser, _ string, latex string, index int) (string, int) {
	text, next := p.parseBlock(latex, index)
	return TranslateCombining(`\underline`, text), next
}

func handleBrace(p *Parser, command, latex string, index int) (string, int) {
	text, next := p.parseBlock(latex, index)
	if command == `\overbrace` {
		return TranslateCombining(`\overline`, text), next
	}
	return TranslateCombining(`\underline`, text), next
}

func handleXArrow(p *Parser, command, latex string, index int) (string, int) {
	arrow := "→"
	if command == `\xleftarrow` {
		arrow = "←"
	}
	_, index = p.parseOptional(latex, index)
	text, next := p.parseBlock(latex, index)
	if strings.TrimSpace(text) != "" {
		return arrow + "(" + text + ")", next
	}
	return arrow, next
}

func handleBegin(p *Parser, _ string, latex string, index int) (string, int) {
	envName, idx1 := p.parseEnvName(latex, index)
	content, idx2 := p.parseEnvironment(latex, idx1, envName)
	return p.renderEnvironment(envName, content), idx2
}

func handleEnd(p *Parser, _ string, latex string, index int) (string, int) {
	_, next := p.parseEnvName(latex, index)
	return "", next
}

// ──────────────────────────────────────────────
// 底层解析方法
// ──────────────────────────────────────────────

var commandRegex = regexp.MustCompile(`^\\([a-zA-Z]+\*?|.)`)

func (p *Parser) parseCommand(latex string, start int) (string, int) {
	if match := commandRegex.FindString(latex[start:]); match != "" {
		return match, start + len(match)
	}
	return `\`, start + 1
}

// skipSpaces returns the first index at or after start that is not a space.
func skipSpaces(latex string, start int) int {
	for start < len(latex) && (latex[start] == ' ' || latex[start] == '\t' || latex[start] == '\n') {
		start++
	}
	return start
}

// matchBrace returns the index of the closer matching latex[start], or -1.
func matchBrace(latex string, start int, open, close byte) int {
	level := 0
	for pos := start; pos < len(latex); pos++ {
		switch latex[pos] {
		case '\\':
			pos++ // \{ and \} do not nest
		case open:
			level++
		case close:
			level--
			if level == 0 {
				return pos
			}
		}
	}
	return -1
}

// parseRawBlock returns the unparsed content of a {...} argument.
func (p *Parser) parseRawBlock(latex string, start int) (string, int) {
	start = skipSpaces(latex, start)
	if start >= len(latex) {
		return "", start
	}
	if latex[start] != '{' {
		return string(latex[start]), start + 1
	}
	end := matchBrace(latex, start, '{', '}')
	if end == -1 {
		// 未闭合：取到末尾
		return latex[start+1:], len(latex)
	}
	return latex[start+1 : end], end + 1
}

func (p *Parser) parseBlock(latex string, start int) (string, int) {
	start = skipSpaces(latex, start)
	if start >= len(latex) {
		return "", start
	}
	if latex[start] != '{' {
		// 无 {} 包裹，读取单个 token
		if latex[start] == '\\' {
			cmd, next := p.parseCommand(latex, start)
			return p.handleCommand(cmd, latex, next)
		}
		return string(latex[start]), start + 1
	}
	raw, next := p.parseRawBlock(latex, start)
	return p.Parse(raw), next
}

func (p *Parser) parseOptional(latex string, start int) (string, int) {
	if start >= len(latex) || latex[start] != '[' {
		return "", start
	}
	end := matchBrace(latex, start, '[', ']')
	if end == -1 {
		return p.Parse(latex[start+1:]), len(latex)
	}
	return p.Parse(latex[start+1 : end]), end + 1
}

func (p *Parser) parseSpaces(latex string, start int) (string, int) {
	end := start
	hasNewline := false
	for end < len(latex) && unicode.IsSpace(rune(latex[end])) {
		if latex[end] == '\n' {
			hasNewline = true
		}
		end++
	}
	if hasNewline {
		return "\n", end
	}
	return " ", end
}

func (p *Parser) parseDelimiter(latex string, index int) (string, int) {
	index = skipSpaces(latex, index)
	if index >= len(latex) {
		return "", index
	}
	switch ch := latex[index]; ch {
	case '\\':
		cmd, next := p.parseCommand(latex, index)
		symbol, ok := LatexSymbols[cmd]
		if !ok {
			symbol = strings.TrimPrefix(cmd, `\`)
		}
		return symbol, next
	case '.':
		return "", index + 1 // 不可见定界符
	default:
		return string(ch), index + 1
	}
}

// ──────────────────────────────────────────────
// 环境解析与渲染
// ──────────────────────────────────────────────

func (p *Parser) parseEnvName(latex string, index int) (string, int) {
	if index < len(latex) && latex[index] == '{' {
		if close := strings.IndexByte(latex[index:], '}'); close != -1 {
			return latex[index+1 : index+close], index + close + 1
		}
	}
	return "", index
}

func (p *Parser) parseEnvironment(latex string, index int, envName string) (string, int) {
	endMarker := `\end{` + envName + `}`
	endPos := strings.Index(latex[index:], endMarker)
	if endPos == -1 {
		return latex[index:], len(latex)
	}
	return latex[index : index+endPos], index + endPos + len(endMarker)
}

// 矩阵类环境 → (左定界符, 右定界符)
var matrixTypes = map[string][2]string{
	"matrix":      {"", ""},
	"pmatrix":     {"(", ")"},
	"bmatrix":     {"[", "]"},
	"Bmatrix":     {"{", "}"},
	"vmatrix":     {"|", "|"},
	"Vmatrix":     {"‖", "‖"},
	"smallmatrix": {"", ""},
}

var alignTypes = map[string]bool{
	"align": true, "align*": true, "aligned": true, "gather": true, "gather*": true,
	"gathered": true, "equation": true, "equation*": true, "multline": true,
	"multline*": true, "split": true, "flalign": true, "flalign*": true,
}

func (p *Parser) renderEnvironment(envName, content string) string {
	if delims, ok := matrixTypes[envName]; ok {
		return p.renderMatrix(content, delims[0], delims[1], envName == "smallmatrix")
	}
	if envName == "cases" {
		return p.renderCases(content)
	}
	if alignTypes[envName] {
		return p.renderAlign(content)
	}
	if envName == "array" {
		return p.renderArray(content)
	}
	return p.Parse(content)
}

func splitRows(content string) []string {
	var rows []string
	for _, row := range strings.Split(content, `\\`) {
		if trimmed := strings.TrimSpace(row); trimmed != "" {
			rows = append(rows, trimmed)
		}
	}
	return rows
}

func (p *Parser) renderMatrix(content, left, right string, compact bool) string {
	sep, joiner := "  ", "\n"
	if compact {
		sep, joiner = ", ", "; "
	}
	var rendered []string
	for _, row := range splitRows(content) {
		var cells []string
		for _, cell := range strings.Split(row, "&") {
			cells = append(cells, p.Parse(strings.TrimSpace(cell)))
		}
		rendered = append(rendered, strings.Join(cells, sep))
	}
	return left + strings.Join(rendered, joiner) + right
}

func (p *Parser) renderCases(content string) string {
	var parts []string
	for _, row := range splitRows(content) {
		segments := strings.SplitN(row, "&", 2)
		val := p.Parse(strings.TrimSpace(segments[0]))
		if len(segments) > 1 {
			if cond := p.Parse(strings.TrimSpace(segments[1])); cond != "" {
				val += ", " + cond
			}
		}
		parts = append(parts, val)
	}

	switch len(parts) {
	case 0:
		return ""
	case 1:
		return "⎧ " + parts[0]
	}
	lines := make([]string, len(parts))
	for i, part := range parts {
		switch i {
		case 0:
			lines[i] = "⎧ " + part
		case len(parts) - 1:
			lines[i] = "⎩ " + part
		default:
			lines[i] = "⎨ " + part
		}
	}
	return strings.Join(lines, "\n")
}

func (p *Parser) renderAlign(content string) string {
	var rendered []string
	for _, row := range splitRows(content) {
		rendered = append(rendered, p.Parse(strings.ReplaceAll(row, "&", "")))
	}
	return strings.Join(rendered, "\n")
}

func (p *Parser) renderArray(content string) string {
	// 第一个 {} 是列格式说明（如 {ccc}），跳过
	stripped := strings.TrimSpace(content)
	if strings.HasPrefix(stripped, "{") {
		if close := strings.IndexByte(stripped, '}'); close != -1 {
			content = stripped[close+1:]
		}
	}
	return p.renderMatrix(content, "", "", false)
}

// ──────────────────────────────────────────────
// 公开接口
// ──────────────────────────────────────────────

// Convert 将 LaTeX 字符串转换为 Unicode 文本。出错时返回原文。
func (p *Parser) Convert(latex string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = latex
		}
	}()
	return p.Parse(latex)
}
