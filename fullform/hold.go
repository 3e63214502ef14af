package fullform

import "regexp"

var holdPattern = regexp.MustCompile(`(?s)^Hold\[(.*)\]$`)

// StripHold removes a Hold[...] wrapper spanning the whole of s, which a
// kernel prints around input it left unevaluated. Nested wrappers are
// removed too, so StripHold(StripHold(s)) == StripHold(s). Text that is not
// wrapped, such as "Hold[a] + Hold[b]", is returned unchanged.
func StripHold(s string) string {
	for {
		m := holdPattern.FindStringSubmatch(s)
		if m == nil || !balanced(m[1]) {
			return s
		}
		s = m[1]
	}
}

// balanced reports whether the bracket opened after Hold closes at the final
// character, i.e. inner never closes more brackets than it opens.
func balanced(inner string) bool {
	depth := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
