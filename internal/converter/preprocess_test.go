package converter

import "testing"

func TestNormalizeDelimiters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "block brackets",
			input: `before \[ a^2 + b^2 \] after`,
			want:  `before $$ a^2 + b^2 $$ after`,
		},
		{
			name:  "inline parens",
			input: `the value \( x_1 \) here`,
			want:  `the value $x_1$ here`,
		},
		{
			name:  "multiline block",
			input: "\\[\n\\sum_i x_i\n\\]",
			want:  "$$\n\\sum_i x_i\n$$",
		},
		{
			name:  "code fences are skipped",
			input: "```py\nprint('\\(x\\)')\n``` and \\(y\\)",
			want:  "```py\nprint('\\(x\\)')\n``` and $y$",
		},
		{
			name:  "inline code is skipped",
			input: "`\\(raw\\)` vs \\(z\\)",
			want:  "`\\(raw\\)` vs $z$",
		},
		{
			name:  "nothing to do",
			input: "plain $x$ text",
			want:  "plain $x$ text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDelimiters(tt.input); got != tt.want {
				t.Errorf("NormalizeDelimiters(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
