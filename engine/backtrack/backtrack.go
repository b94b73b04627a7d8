// Package backtrack adapts the regexp2 backtracking engine to the matcher
// capability: find-from-offset / find-next iteration in rune coordinates,
// plus the overflow-signaling append protocol the substitution core drives.
package backtrack

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/coregx/rewrite/engine"
)

// Pattern is a compiled backtracking pattern. A Pattern is immutable and may
// be bound to any number of texts.
type Pattern struct {
	re *regexp2.Regexp
}

// Compile compiles pattern with the given regexp2 options. matchTimeout
// bounds a single match operation against pathological backtracking; zero
// leaves it unbounded.
func Compile(pattern string, opts regexp2.RegexOptions, matchTimeout time.Duration) (*Pattern, error) {
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	if matchTimeout > 0 {
		re.MatchTimeout = matchTimeout
	}
	return &Pattern{re: re}, nil
}

// Bind implements engine.Pattern.
func (p *Pattern) Bind(text []rune) engine.Matcher {
	return &matcher{re: p.re, text: text}
}

// matcher iterates regexp2 matches over one text. cur is the current match;
// appendPos is the start of the not-yet-appended portion of the text.
type matcher struct {
	re        *regexp2.Regexp
	text      []rune
	cur       *regexp2.Match
	appendPos int
	scratch   []rune
}

var _ engine.Matcher = (*matcher)(nil)

// FindFrom implements engine.Matcher.
func (m *matcher) FindFrom(start int) (bool, error) {
	if start < 0 || start > len(m.text) {
		return false, fmt.Errorf("%w: %d with text length %d", engine.ErrStartOutOfBounds, start, len(m.text))
	}
	match, err := m.re.FindRunesMatchStartingAt(m.text, start)
	if err != nil {
		return false, err
	}
	m.cur = match
	m.appendPos = start
	return match != nil, nil
}

// FindNext implements engine.Matcher. The append cursor moves to the end of
// the current match before advancing, so a skipped match stays covered by
// the head back-fill rather than being re-appended later.
func (m *matcher) FindNext() (bool, error) {
	if m.cur == nil {
		return false, engine.ErrNoCurrentMatch
	}
	m.appendPos = m.cur.Index + m.cur.Length
	match, err := m.re.FindNextMatch(m.cur)
	if err != nil {
		return false, err
	}
	if match == nil {
		return false, nil
	}
	m.cur = match
	return true, nil
}

// MatchStart implements engine.Matcher. Non-participating groups report -1,
// as ICU does.
func (m *matcher) MatchStart(group int) (int, error) {
	g, err := m.group(group)
	if err != nil {
		return 0, err
	}
	if len(g.Captures) == 0 {
		return -1, nil
	}
	return g.Index, nil
}

// MatchEnd implements engine.Matcher.
func (m *matcher) MatchEnd(group int) (int, error) {
	g, err := m.group(group)
	if err != nil {
		return 0, err
	}
	if len(g.Captures) == 0 {
		return -1, nil
	}
	return g.Index + g.Length, nil
}

func (m *matcher) group(n int) (*regexp2.Group, error) {
	if m.cur == nil {
		return nil, engine.ErrNoCurrentMatch
	}
	g := m.cur.GroupByNumber(n)
	if g == nil {
		return nil, fmt.Errorf("%w: group %d", engine.ErrBadGroup, n)
	}
	return g, nil
}

// AppendReplacement implements engine.Matcher. The segment is staged in a
// reused scratch slice so the required size is exact before anything touches
// dst; on overflow no matcher state advances and the identical retry
// succeeds.
func (m *matcher) AppendReplacement(dst, repl []rune) (int, error) {
	if m.cur == nil {
		return 0, engine.ErrNoCurrentMatch
	}
	// The cursor is already past the match start on a repeated append for
	// the same match; the inter-match segment is empty then.
	seg := m.scratch[:0]
	if m.appendPos < m.cur.Index {
		seg = append(seg, m.text[m.appendPos:m.cur.Index]...)
	}
	seg, err := engine.ExpandReplacement(seg, repl, m.cur.GroupCount()-1, m.groupText)
	if err != nil {
		return 0, err
	}
	m.scratch = seg
	if len(seg) > len(dst) {
		return len(seg), &engine.OverflowError{Required: len(seg)}
	}
	copy(dst, seg)
	m.appendPos = m.cur.Index + m.cur.Length
	return len(seg), nil
}

// AppendTail implements engine.Matcher.
func (m *matcher) AppendTail(dst []rune) (int, error) {
	tail := m.text[m.appendPos:]
	if len(tail) > len(dst) {
		return len(tail), &engine.OverflowError{Required: len(tail)}
	}
	copy(dst, tail)
	m.appendPos = len(m.text)
	return len(tail), nil
}

// groupText resolves $n references for the current match. Group numbers are
// validated by the template expansion before this is called.
func (m *matcher) groupText(n int) []rune {
	g := m.cur.GroupByNumber(n)
	if g == nil || len(g.Captures) == 0 {
		return nil
	}
	return g.Runes()
}
