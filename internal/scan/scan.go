// Package scan implements the delimiter-scanning loop shared by the block
// segmenter and the inline formatter.
//
// A Scanner holds an ordered list of rules. Starting at a cursor it finds, for
// every rule, the leftmost complete match at or after the cursor and takes the
// one that starts earliest; on an equal start the earlier rule wins. Text
// between matches is reported as plain tokens. This is equivalent to repeatedly
// applying one alternation regexp whose branches are the rules in order.
package scan

import (
	"regexp"
	"unicode/utf8"
)

// KindPlain marks a token that no rule matched.
const KindPlain = -1

// Rule pairs a pattern with the token kind it produces.
type Rule struct {
	Kind    int
	Pattern *regexp.Regexp
}

// Token is a contiguous span of the input. Groups holds the submatches of the
// winning rule ("" when a group did not participate); Matched reports which
// groups participated.
type Token struct {
	Kind    int
	Start   int
	End     int
	Groups  []string
	Matched []bool
}

// Group returns submatch i and whether it participated in the match.
func (t Token) Group(i int) (string, bool) {
	if i < 0 || i >= len(t.Groups) {
		return "", false
	}
	return t.Groups[i], t.Matched[i]
}

// Scanner tokenizes strings against an ordered rule list. It is safe for
// concurrent use; all per-call state lives in Split.
type Scanner struct {
	rules []Rule
}

// New creates a Scanner. Rule order is the tie-break order.
func New(rules ...Rule) *Scanner {
	return &Scanner{rules: append([]Rule(nil), rules...)}
}

// Rules returns the scanner's rules in precedence order.
func (s *Scanner) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

// pending 缓存每条规则在当前游标之后的最左匹配
type pending struct {
	loc  []int // absolute submatch offsets, nil when not searched yet
	done bool  // rule has no further match
}

// Split tokenizes input. Plain runs are only emitted when non-empty, so the
// empty string yields no tokens. Concatenating input[t.Start:t.End] over the
// result reproduces input.
func (s *Scanner) Split(input string) []Token {
	var tokens []Token
	s.Each(input, func(t Token) {
		tokens = append(tokens, t)
	})
	return tokens
}

// Each is Split with a callback instead of a result slice.
func (s *Scanner) Each(input string, fn func(Token)) {
	cache := make([]pending, len(s.rules))
	cursor := 0
	for cursor < len(input) {
		best := -1
		for i := range s.rules {
			loc := s.next(input, cursor, i, cache)
			if loc == nil {
				continue
			}
			if best == -1 || loc[0] < cache[best].loc[0] {
				best = i
			}
		}
		if best == -1 {
			break
		}
		loc := cache[best].loc
		if loc[0] > cursor {
			fn(Token{Kind: KindPlain, Start: cursor, End: loc[0]})
		}
		fn(s.token(input, best, loc))
		cursor = loc[1]
		// 空匹配时按一个 rune 前进，避免死循环
		if loc[1] == loc[0] {
			if cursor >= len(input) {
				break
			}
			_, size := utf8.DecodeRuneInString(input[cursor:])
			fn(Token{Kind: KindPlain, Start: cursor, End: cursor + size})
			cursor += size
		}
	}
	if cursor < len(input) {
		fn(Token{Kind: KindPlain, Start: cursor, End: len(input)})
	}
}

// next returns the memoised leftmost match of rule i at or after cursor.
// A match found from an earlier cursor stays valid while it starts at or
// after the current one; a rule that found nothing is never searched again.
func (s *Scanner) next(input string, cursor, i int, cache []pending) []int {
	p := &cache[i]
	if p.done {
		return nil
	}
	if p.loc != nil && p.loc[0] >= cursor {
		return p.loc
	}
	loc := s.rules[i].Pattern.FindStringSubmatchIndex(input[cursor:])
	if loc == nil {
		p.done = true
		p.loc = nil
		return nil
	}
	for j := range loc {
		if loc[j] >= 0 {
			loc[j] += cursor
		}
	}
	p.loc = loc
	return loc
}

func (s *Scanner) token(input string, rule int, loc []int) Token {
	n := len(loc) / 2
	t := Token{
		Kind:    s.rules[rule].Kind,
		Start:   loc[0],
		End:     loc[1],
		Groups:  make([]string, n),
		Matched: make([]bool, n),
	}
	for g := 0; g < n; g++ {
		if loc[2*g] >= 0 {
			t.Groups[g] = input[loc[2*g]:loc[2*g+1]]
			t.Matched[g] = true
		}
	}
	return t
}
