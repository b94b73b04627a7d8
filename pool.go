package rewrite

import "sync"

// bufferPool recycles the preallocated text buffers handed out by
// CreateRegex. The backing arrays are the expensive part of a buffered
// Regex, and callers tend to create one Regex per expression evaluated, so
// buffers go back to the pool on Close and come out again for the next
// instance.
var bufferPool = sync.Pool{
	New: func() any { return new(textBuffer) },
}

// textBuffer is the reusable rune storage behind a buffered Regex's match
// string. It is owned by exactly one Regex between CreateRegex and Close.
type textBuffer struct {
	runes []rune
}

// ensure returns storage for exactly n runes, growing the backing array only
// when it is too small.
func (tb *textBuffer) ensure(n int) []rune {
	if cap(tb.runes) < n {
		tb.runes = make([]rune, n)
	}
	return tb.runes[:n]
}
