package rewrite

import "strings"

// metachars are the pattern characters that carry special meaning in a
// regular expression.
const metachars = `\.+*?()|[]{}^$`

// QuoteMeta returns a string that escapes all regular expression
// metacharacters inside the argument text; the returned string is a regular
// expression matching the literal text. It backs the Literal+Case_Insensitive
// flag combination, which runs through the backtracking engine because the
// literal automaton has no case folding.
func QuoteMeta(s string) string {
	if !strings.ContainsAny(s, metachars) {
		return s
	}
	var b strings.Builder
	b.Grow(2 * len(s))
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(metachars, s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
