// Package literal implements the matcher capability for literal patterns
// with an Aho-Corasick automaton. The automaton searches bytes; a rune/byte
// offset table built at bind time keeps the capability's coordinate space in
// characters.
package literal

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/rewrite/engine"
)

// ErrEmptyPattern is returned by Compile for an empty literal, which would
// match everywhere and has no meaningful occurrence order.
var ErrEmptyPattern = errors.New("literal pattern is empty")

// Pattern is a compiled literal pattern.
type Pattern struct {
	auto *ahocorasick.Automaton
}

// Compile builds the automaton for a single literal.
func Compile(literal string) (*Pattern, error) {
	if literal == "" {
		return nil, ErrEmptyPattern
	}
	builder := ahocorasick.NewBuilder()
	builder.AddPattern([]byte(literal))
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Pattern{auto: auto}, nil
}

// Bind implements engine.Pattern.
func (p *Pattern) Bind(text []rune) engine.Matcher {
	m := &matcher{
		auto:    p.auto,
		text:    text,
		bytes:   []byte(string(text)),
		byteOff: make([]int, len(text)+1),
		start:   -1,
		end:     -1,
	}
	off := 0
	for i := range text {
		m.byteOff[i] = off
		_, size := utf8.DecodeRune(m.bytes[off:])
		off += size
	}
	m.byteOff[len(text)] = off
	return m
}

// matcher iterates non-overlapping occurrences of the literal, each next
// search resuming at the end of the previous occurrence.
type matcher struct {
	auto    *ahocorasick.Automaton
	text    []rune
	bytes   []byte
	byteOff []int

	// current match in rune coordinates, -1 when there is none
	start, end int
	appendPos  int
	scratch    []rune
}

var _ engine.Matcher = (*matcher)(nil)

// FindFrom implements engine.Matcher.
func (m *matcher) FindFrom(start int) (bool, error) {
	if start < 0 || start > len(m.text) {
		return false, fmt.Errorf("%w: %d with text length %d", engine.ErrStartOutOfBounds, start, len(m.text))
	}
	m.appendPos = start
	return m.findAt(start), nil
}

// FindNext implements engine.Matcher.
func (m *matcher) FindNext() (bool, error) {
	if m.start < 0 {
		return false, engine.ErrNoCurrentMatch
	}
	m.appendPos = m.end
	return m.findAt(m.end), nil
}

func (m *matcher) findAt(at int) bool {
	if at >= len(m.text) {
		return false
	}
	found := m.auto.Find(m.bytes, m.byteOff[at])
	if found == nil {
		return false
	}
	// The literal is well-formed UTF-8, so its occurrences always sit on
	// rune boundaries and the offsets resolve exactly.
	m.start = m.runeIndex(found.Start)
	m.end = m.runeIndex(found.End)
	return true
}

func (m *matcher) runeIndex(byteIdx int) int {
	return sort.SearchInts(m.byteOff, byteIdx)
}

// MatchStart implements engine.Matcher. A literal pattern only has group 0.
func (m *matcher) MatchStart(group int) (int, error) {
	if err := m.checkGroup(group); err != nil {
		return 0, err
	}
	return m.start, nil
}

// MatchEnd implements engine.Matcher.
func (m *matcher) MatchEnd(group int) (int, error) {
	if err := m.checkGroup(group); err != nil {
		return 0, err
	}
	return m.end, nil
}

func (m *matcher) checkGroup(group int) error {
	if m.start < 0 {
		return engine.ErrNoCurrentMatch
	}
	if group != 0 {
		return fmt.Errorf("%w: group %d", engine.ErrBadGroup, group)
	}
	return nil
}

// AppendReplacement implements engine.Matcher.
func (m *matcher) AppendReplacement(dst, repl []rune) (int, error) {
	if m.start < 0 {
		return 0, engine.ErrNoCurrentMatch
	}
	// The cursor is already past the match start on a repeated append for
	// the same match; the inter-match segment is empty then.
	seg := m.scratch[:0]
	if m.appendPos < m.start {
		seg = append(seg, m.text[m.appendPos:m.start]...)
	}
	seg, err := engine.ExpandReplacement(seg, repl, 0, func(int) []rune {
		return m.text[m.start:m.end]
	})
	if err != nil {
		return 0, err
	}
	m.scratch = seg
	if len(seg) > len(dst) {
		return len(seg), &engine.OverflowError{Required: len(seg)}
	}
	copy(dst, seg)
	m.appendPos = m.end
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
