// Package subst implements occurrence-selected substitution on top of the
// matcher capability: a growable append buffer with a write cursor, and the
// orchestrator that drives a matcher through head, replacement, and tail
// appends using the resize-and-retry overflow protocol.
package subst

import (
	"errors"
	"fmt"

	"github.com/coregx/rewrite/engine"
)

// ErrResizeOverflow indicates a matcher overflowed again after the buffer
// was resized to the exact size the matcher reported. The reported size was
// wrong; that is a matcher defect, not a condition to keep retrying.
var ErrResizeOverflow = errors.New("append overflowed after resizing to the reported size")

// appendBuffer is a rune buffer with a write cursor. Invariant: pos never
// exceeds the buffer length after a successful append; an append that would
// overrun signals overflow instead, and the buffer grows to the exact
// reported size before the one retry.
type appendBuffer struct {
	buf []rune
	pos int
}

func newAppendBuffer(capacity int) *appendBuffer {
	return &appendBuffer{buf: make([]rune, capacity)}
}

// grow resizes the buffer to size runes, preserving the written prefix.
func (b *appendBuffer) grow(size int) {
	next := make([]rune, size)
	copy(next, b.buf[:b.pos])
	b.buf = next
}

// appendHead copies original[:size] to the start of the buffer and places
// the cursor after it. This back-fills the prefix the matcher's own append
// operations never visit: the text before the search start, plus any
// occurrences that were skipped over. No-op when size is zero.
func (b *appendBuffer) appendHead(original []rune, size int) {
	if size == 0 {
		return
	}
	if len(b.buf) < size {
		b.grow(size)
	}
	copy(b.buf, original[:size])
	b.pos = size
}

// appendReplacement appends the current match's substitution at the cursor.
func (b *appendBuffer) appendReplacement(m engine.Matcher, repl []rune) error {
	n, err := m.AppendReplacement(b.buf[b.pos:], repl)
	if engine.IsOverflow(err) {
		b.grow(b.pos + n)
		n, err = m.AppendReplacement(b.buf[b.pos:], repl)
		if engine.IsOverflow(err) {
			return fmt.Errorf("%w: appendReplacement still needs %d runes", ErrResizeOverflow, n)
		}
	}
	if err != nil {
		return err
	}
	b.pos += n
	return nil
}

// appendTail appends everything between the last appended match and the end
// of the text at the cursor.
func (b *appendBuffer) appendTail(m engine.Matcher) error {
	n, err := m.AppendTail(b.buf[b.pos:])
	if engine.IsOverflow(err) {
		b.grow(b.pos + n)
		n, err = m.AppendTail(b.buf[b.pos:])
		if engine.IsOverflow(err) {
			return fmt.Errorf("%w: appendTail still needs %d runes", ErrResizeOverflow, n)
		}
	}
	if err != nil {
		return err
	}
	b.pos += n
	return nil
}

// take returns the written runes as a freshly allocated slice of exactly
// that length. Excess capacity from growth is never exposed to the caller.
func (b *appendBuffer) take() []rune {
	out := make([]rune, b.pos)
	copy(out, b.buf[:b.pos])
	return out
}
