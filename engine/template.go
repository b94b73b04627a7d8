package engine

import "fmt"

// ExpandReplacement appends repl to dst with its group references expanded
// and returns the extended slice. The syntax is ICU's appendReplacement
// syntax: "$" followed by digits inserts the text of that capture group
// (digits are consumed greedily while the group number stays valid), and a
// backslash makes the following character literal. "$" followed by anything
// else is an error, as is a group number above groupCount. Groups that did
// not participate in the match expand to nothing.
//
// group(n) returns the text of capture group n for the current match, for
// n in [0, groupCount].
func ExpandReplacement(dst, repl []rune, groupCount int, group func(int) []rune) ([]rune, error) {
	for i := 0; i < len(repl); i++ {
		switch repl[i] {
		case '\\':
			if i+1 < len(repl) {
				i++
			}
			dst = append(dst, repl[i])
		case '$':
			if i+1 >= len(repl) || !isDigit(repl[i+1]) {
				return nil, fmt.Errorf("%w: expected a group number after $", ErrBadReplacement)
			}
			i++
			n := int(repl[i] - '0')
			if n > groupCount {
				return nil, fmt.Errorf("%w: $%d, pattern has %d group(s)", ErrBadGroup, n, groupCount)
			}
			for i+1 < len(repl) && isDigit(repl[i+1]) && n*10+int(repl[i+1]-'0') <= groupCount {
				i++
				n = n*10 + int(repl[i]-'0')
			}
			dst = append(dst, group(n)...)
		default:
			dst = append(dst, repl[i])
		}
	}
	return dst, nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
