package latex

// CombiningType 决定组合字符附加到哪个位置
type CombiningType int

const (
	// FirstChar attaches the mark after the first character.
	FirstChar CombiningType = iota
	// LastChar appends the mark after the whole text.
	LastChar
	// AllChars attaches the mark after every character.
	AllChars
)

// CombiningSample is a combining mark and where it attaches.
type CombiningSample struct {
	Char rune
	Type CombiningType
}

// Combining 组合字符命令（\hat, \bar, \vec ...）
var Combining = map[string]CombiningSample{
	`\hat`:       {'\u0302', FirstChar},
	`\widehat`:   {'\u0302', FirstChar},
	`\tilde`:     {'\u0303', FirstChar},
	`\widetilde`: {'\u0303', FirstChar},
	`\bar`:       {'\u0304', FirstChar},
	`\overline`:  {'\u0305', AllChars},
	`\underline`: {'\u0332', AllChars},
	`\dot`:       {'\u0307', FirstChar},
	`\ddot`:      {'\u0308', FirstChar},
	`\vec`:       {'\u20D7', FirstChar},
	`\check`:     {'\u030C', FirstChar},
	`\breve`:     {'\u0306', FirstChar},
	`\acute`:     {'\u0301', FirstChar},
	`\grave`:     {'\u0300', FirstChar},
}

// LatexSymbols 命令到 Unicode 的直接映射
var LatexSymbols = map[string]string{
	// greek
	`\alpha`: "α", `\beta`: "β", `\gamma`: "γ", `\delta`: "δ", `\epsilon`: "ϵ",
	`\varepsilon`: "ε", `\zeta`: "ζ", `\eta`: "η", `\theta`: "θ", `\vartheta`: "ϑ",
	`\iota`: "ι", `\kappa`: "κ", `\lambda`: "λ", `\mu`: "μ", `\nu`: "ν", `\xi`: "ξ",
	`\pi`: "π", `\varpi`: "ϖ", `\rho`: "ρ", `\varrho`: "ϱ", `\sigma`: "σ",
	`\varsigma`: "ς", `\tau`: "τ", `\upsilon`: "υ", `\phi`: "ϕ", `\varphi`: "φ",
	`\chi`: "χ", `\psi`: "ψ", `\omega`: "ω",
	`\Gamma`: "Γ", `\Delta`: "Δ", `\Theta`: "Θ", `\Lambda`: "Λ", `\Xi`: "Ξ",
	`\Pi`: "Π", `\Sigma`: "Σ", `\Upsilon`: "Υ", `\Phi`: "Φ", `\Psi`: "Ψ", `\Omega`: "Ω",

	// operators
	`\sum`: "∑", `\prod`: "∏", `\coprod`: "∐", `\int`: "∫", `\iint`: "∬",
	`\iiint`: "∭", `\oint`: "∮", `\partial`: "∂", `\nabla`: "∇", `\infty`: "∞",
	`\cdot`: "·", `\cdots`: "⋯", `\ldots`: "…", `\dots`: "…", `\vdots`: "⋮",
	`\ddots`: "⋱", `\times`: "×", `\div`: "÷", `\pm`: "±", `\mp`: "∓",
	`\ast`: "∗", `\star`: "⋆", `\circ`: "∘", `\bullet`: "∙", `\oplus`: "⊕",
	`\otimes`: "⊗", `\odot`: "⊙", `\cup`: "∪", `\cap`: "∩", `\setminus`: "∖",
	`\wedge`: "∧", `\vee`: "∨", `\land`: "∧", `\lor`: "∨", `\lnot`: "¬", `\neg`: "¬",
	`\bigcup`: "⋃", `\bigcap`: "⋂",

	// relations
	`\leq`: "≤", `\le`: "≤", `\geq`: "≥", `\ge`: "≥", `\neq`: "≠", `\ne`: "≠",
	`\approx`: "≈", `\equiv`: "≡", `\sim`: "∼", `\simeq`: "≃", `\cong`: "≅",
	`\propto`: "∝", `\ll`: "≪", `\gg`: "≫", `\in`: "∈", `\notin`: "∉", `\ni`: "∋",
	`\subset`: "⊂", `\subseteq`: "⊆", `\supset`: "⊃", `\supseteq`: "⊇",
	`\perp`: "⊥", `\parallel`: "∥", `\mid`: "∣", `\models`: "⊨", `\vdash`: "⊢",
	`\triangleq`: "≜", `\coloneqq`: "≔",

	// arrows
	`\to`: "→", `\rightarrow`: "→", `\leftarrow`: "←", `\gets`: "←",
	`\leftrightarrow`: "↔", `\Rightarrow`: "⇒", `\Leftarrow`: "⇐",
	`\Leftrightarrow`: "⇔", `\implies`: "⟹", `\iff`: "⟺", `\mapsto`: "↦",
	`\uparrow`: "↑", `\downarrow`: "↓", `\longrightarrow`: "⟶", `\longleftarrow`: "⟵",

	// misc
	`\forall`: "∀", `\exists`: "∃", `\nexists`: "∄", `\emptyset`: "∅",
	`\varnothing`: "∅", `\angle`: "∠", `\triangle`: "△", `\hbar`: "ℏ", `\ell`: "ℓ",
	`\Re`: "ℜ", `\Im`: "ℑ", `\aleph`: "ℵ", `\prime`: "′", `\degree`: "°",
	`\langle`: "⟨", `\rangle`: "⟩", `\lceil`: "⌈", `\rceil`: "⌉", `\lfloor`: "⌊",
	`\rfloor`: "⌋", `\lvert`: "|", `\rvert`: "|", `\lVert`: "‖", `\rVert`: "‖",
	`\|`: "‖", `\top`: "⊤", `\bot`: "⊥", `\dagger`: "†",

	// named functions
	`\sin`: "sin", `\cos`: "cos", `\tan`: "tan", `\cot`: "cot", `\sec`: "sec",
	`\csc`: "csc", `\arcsin`: "arcsin", `\arccos`: "arccos", `\arctan`: "arctan",
	`\sinh`: "sinh", `\cosh`: "cosh", `\tanh`: "tanh", `\log`: "log", `\ln`: "ln",
	`\exp`: "exp", `\lim`: "lim", `\max`: "max", `\min`: "min", `\sup`: "sup",
	`\inf`: "inf", `\arg`: "arg", `\argmax`: "argmax", `\argmin`: "argmin",
	`\det`: "det", `\dim`: "dim", `\ker`: "ker", `\deg`: "deg", `\gcd`: "gcd",
	`\Pr`: "Pr", `\mod`: "mod", `\softmax`: "softmax",

	// spacing and escapes
	`\,`: " ", `\;`: " ", `\:`: " ", `\!`: "", `\ `: " ", `\quad`: "  ",
	`\qquad`: "    ", `\\`: "\n", `\{`: "{", `\}`: "}", `\_`: "_", `\%`: "%",
	`\$`: "$", `\&`: "&", `\#`: "#", `\displaystyle`: "", `\textstyle`: "",
	`\limits`: "", `\nolimits`: "",
}

// NotMap 否定符号
var NotMap = map[string]string{
	"=": "≠", "<": "≮", ">": "≯", "∈": "∉", "≤": "≰", "≥": "≱",
	"⊂": "⊄", "⊆": "⊈", "⊃": "⊅", "⊇": "⊉", "≡": "≢", "∼": "≁",
	"≈": "≉", "∃": "∄", "∋": "∌", "∣": "∤", "∥": "∦",
}

// Superscripts 上标字符
var Superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵', '6': '⁶',
	'7': '⁷', '8': '⁸', '9': '⁹', '+': '⁺', '-': '⁻', '−': '⁻', '=': '⁼',
	'(': '⁽', ')': '⁾', 'a': 'ᵃ', 'b': 'ᵇ', 'c': 'ᶜ', 'd': 'ᵈ', 'e': 'ᵉ',
	'f': 'ᶠ', 'g': 'ᵍ', 'h': 'ʰ', 'i': 'ⁱ', 'j': 'ʲ', 'k': 'ᵏ', 'l': 'ˡ',
	'm': 'ᵐ', 'n': 'ⁿ', 'o': 'ᵒ', 'p': 'ᵖ', 'r': 'ʳ', 's': 'ˢ', 't': 'ᵗ',
	'u': 'ᵘ', 'v': 'ᵛ', 'w': 'ʷ', 'x': 'ˣ', 'y': 'ʸ', 'z': 'ᶻ', 'T': 'ᵀ',
	'′': '′', '∗': '*', '*': '*',
}

// Subscripts 下标字符
var Subscripts = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄', '5': '₅', '6': '₆',
	'7': '₇', '8': '₈', '9': '₉', '+': '₊', '-': '₋', '−': '₋', '=': '₌',
	'(': '₍', ')': '₎', 'a': 'ₐ', 'e': 'ₑ', 'h': 'ₕ', 'i': 'ᵢ', 'j': 'ⱼ',
	'k': 'ₖ', 'l': 'ₗ', 'm': 'ₘ', 'n': 'ₙ', 'o': 'ₒ', 'p': 'ₚ', 'r': 'ᵣ',
	's': 'ₛ', 't': 'ₜ', 'u': 'ᵤ', 'v': 'ᵥ', 'x': 'ₓ',
}

// FracMap 常见分数
var FracMap = map[[2]string]string{
	{"1", "2"}: "½", {"1", "3"}: "⅓", {"2", "3"}: "⅔", {"1", "4"}: "¼",
	{"3", "4"}: "¾", {"1", "5"}: "⅕", {"2", "5"}: "⅖", {"3", "5"}: "⅗",
	{"4", "5"}: "⅘", {"1", "6"}: "⅙", {"5", "6"}: "⅚", {"1", "8"}: "⅛",
	{"3", "8"}: "⅜", {"5", "8"}: "⅝", {"7", "8"}: "⅞", {"1", "10"}: "⅒",
}

// LatexStyles 字体样式命令；nil 表示原样输出
var LatexStyles = map[string]map[rune]rune{
	`\mathbb`:     alphabet(0x1D538, 0x1D552, 0x1D7D8, map[rune]rune{'C': 'ℂ', 'H': 'ℍ', 'N': 'ℕ', 'P': 'ℙ', 'Q': 'ℚ', 'R': 'ℝ', 'Z': 'ℤ'}),
	`\mathbf`:     alphabet(0x1D400, 0x1D41A, 0x1D7CE, nil),
	`\boldsymbol`: alphabet(0x1D400, 0x1D41A, 0x1D7CE, nil),
	`\textbf`:     alphabet(0x1D400, 0x1D41A, 0x1D7CE, nil),
	`\mathit`:     alphabet(0x1D434, 0x1D44E, 0, map[rune]rune{'h': 'ℎ'}),
	`\mathcal`:    alphabet(0x1D49C, 0x1D4B6, 0, map[rune]rune{'B': 'ℬ', 'E': 'ℰ', 'F': 'ℱ', 'H': 'ℋ', 'I': 'ℐ', 'L': 'ℒ', 'M': 'ℳ', 'R': 'ℛ', 'e': 'ℯ', 'g': 'ℊ', 'o': 'ℴ'}),
	`\mathfrak`:   alphabet(0x1D504, 0x1D51E, 0, map[rune]rune{'C': 'ℭ', 'H': 'ℌ', 'I': 'ℑ', 'R': 'ℜ', 'Z': 'ℨ'}),
	`\mathtt`:     alphabet(0x1D670, 0x1D68A, 0x1D7F6, nil),
	`\mathrm`:     nil,
	`\mathsf`:     nil,
	`\textit`:     nil,
}

// alphabet builds a style table from the first code points of the styled
// uppercase, lowercase and digit runs. A zero digit start leaves digits
// unstyled. Reserved code points inside the Mathematical Alphanumeric block
// are covered by holes.
func alphabet(upper, lower, digit rune, holes map[rune]rune) map[rune]rune {
	m := make(map[rune]rune, 62)
	for i := rune(0); i < 26; i++ {
		m['A'+i] = upper + i
		m['a'+i] = lower + i
	}
	if digit != 0 {
		for i := rune(0); i < 10; i++ {
			m['0'+i] = digit + i
		}
	}
	for k, v := range holes {
		m[k] = v
	}
	return m
}
