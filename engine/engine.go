// Package engine defines the matcher capability that the substitution core
// drives: a compiled pattern bound to a text, advanced match by match, whose
// append operations write into a caller-supplied buffer and signal overflow
// with the exact shortfall instead of allocating.
//
// Two implementations ship with this module: backtrack (regexp2-backed, full
// pattern syntax and capture groups) and literal (Aho-Corasick automaton for
// literal patterns). Both keep all offsets in characters (runes).
package engine

// Pattern is a compiled pattern. Compiling is independent of any text; Bind
// attaches the pattern to a text and yields a fresh match cursor over it.
type Pattern interface {
	// Bind binds the pattern to text and returns a matcher positioned
	// before the first match. The matcher borrows text and must not
	// outlive it being mutated.
	Bind(text []rune) Matcher
}

// Matcher iterates the matches of one pattern within one text and appends
// substituted output into caller-supplied buffers.
//
// The matcher carries two pieces of position state. The current match is set
// by FindFrom/FindNext and read by MatchStart/MatchEnd. The append cursor
// marks the start of the not-yet-appended portion of the text: FindFrom sets
// it to the search start, FindNext moves it to the end of the previous
// match, and AppendReplacement moves it past the current match. The
// substitution core's head back-fill relies on exactly this behavior.
//
// A Matcher is not safe for concurrent use.
type Matcher interface {
	// FindFrom reports whether the pattern matches the text, starting the
	// search at the given character offset. A false result without an
	// error means no match; offsets outside [0, len(text)] are an error.
	FindFrom(start int) (bool, error)

	// FindNext reports whether another match exists after the current
	// one. Calling FindNext with no current match is an error.
	FindNext() (bool, error)

	// MatchStart returns the start offset of the given capture group
	// within the current match. Group 0 is the entire match.
	MatchStart(group int) (int, error)

	// MatchEnd returns the exclusive end offset of the given capture
	// group within the current match.
	MatchEnd(group int) (int, error)

	// AppendReplacement writes, into dst, the text between the append
	// cursor and the start of the current match followed by repl with
	// its group references expanded, and returns the number of runes
	// written. If dst is too small, it returns the exact number of runes
	// required together with an *OverflowError and leaves all matcher
	// state untouched, so the identical call succeeds once dst has that
	// capacity. When the append cursor is already past the match start,
	// the segment before repl is empty; repeated calls for one match
	// write the expanded replacement alone.
	AppendReplacement(dst, repl []rune) (int, error)

	// AppendTail writes the text between the append cursor and the end
	// of the text into dst, with the same overflow contract as
	// AppendReplacement.
	AppendTail(dst []rune) (int, error)
}
