package buffer

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAccumulator_Append(t *testing.T) {
	a := New()
	a.Append("Hello, ")
	a.Append("world")
	if got := a.String(); got != "Hello, world" {
		t.Errorf("String() = %q, want %q", got, "Hello, world")
	}
	if a.Version() != 2 {
		t.Errorf("Version() = %d, want 2", a.Version())
	}
	if a.Append("") != "" || a.Version() != 2 {
		t.Errorf("empty chunk changed the version: %d", a.Version())
	}
}

// TestAccumulator_SplitRune 多字节字符被拆分到两个 chunk 时暂存尾部
func TestAccumulator_SplitRune(t *testing.T) {
	word := "张量" // 6 bytes
	tests := []struct {
		name   string
		chunks []string
	}{
		{"split after first byte", []string{word[:1], word[1:]}},
		{"split mid second rune", []string{word[:4], word[4:]}},
		{"byte by byte", bytesOf(word)},
		{"emoji", []string{"🔥"[:2], "🔥"[2:3], "🔥"[3:]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New()
			var want strings.Builder
			for _, c := range tt.chunks {
				want.WriteString(c)
				a.Append(c)
				if !utf8.ValidString(a.String()) {
					t.Fatalf("snapshot %q is not valid UTF-8", a.String())
				}
			}
			if a.Pending() != 0 {
				t.Errorf("Pending() = %d after complete input", a.Pending())
			}
			if got := a.String(); got != want.String() {
				t.Errorf("String() = %q, want %q", got, want.String())
			}
		})
	}
}

func bytesOf(s string) []string {
	out := make([]string, len(s))
	for i := range len(s) {
		out[i] = s[i : i+1]
	}
	return out
}

func TestAccumulator_PendingAndFlush(t *testing.T) {
	a := New()
	if got := a.Append("ab\xe5\xbc"); got != "ab" {
		t.Errorf("Append() committed %q, want %q", got, "ab")
	}
	if a.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", a.Pending())
	}
	if got := a.Flush(); got != "\xe5\xbc" {
		t.Errorf("Flush() = %q", got)
	}
	if a.Len() != 4 || a.Pending() != 0 {
		t.Errorf("Len() = %d Pending() = %d, want 4 and 0", a.Len(), a.Pending())
	}
	if a.Flush() != "" {
		t.Error("second Flush() returned data")
	}
}

func TestAccumulator_InvalidBytesPassThrough(t *testing.T) {
	a := New()
	a.Append("x\x80\x80")
	if got := a.String(); got != "x\x80\x80" {
		t.Errorf("String() = %q", got)
	}
}

func TestAccumulator_SnapshotsStable(t *testing.T) {
	a := New()
	a.Append("first")
	snap := a.String()
	a.Append(" second")
	if snap != "first" {
		t.Errorf("earlier snapshot changed to %q", snap)
	}
}

func TestAccumulator_UTF16Offset(t *testing.T) {
	a := New()
	a.Append("a𝐱é")
	if got := a.UTF16Offset(); got != 4 {
		t.Errorf("UTF16Offset() = %d, want 4", got)
	}
}

func TestAccumulator_Reset(t *testing.T) {
	a := New()
	a.Append("text\xe5")
	a.Reset()
	if a.String() != "" || a.Len() != 0 || a.Pending() != 0 || a.Version() != 0 || a.UTF16Offset() != 0 {
		t.Errorf("Reset() left state: %q len=%d pending=%d version=%d", a.String(), a.Len(), a.Pending(), a.Version())
	}
}
