package subst

import "github.com/coregx/rewrite/engine"

// Replace builds a new text in which occurrences of m's pattern inside
// original are substituted by repl. The matcher must be bound to original;
// start is the character offset the search begins at. occurrence 0 replaces
// every match found at or after start, occurrence k > 0 replaces only the
// k-th such match.
//
// When no match qualifies (none at all, or fewer than k), Replace returns
// original itself with replaced == false and performs no allocation. The
// caller must use the replaced flag, not slice identity, to tell the two
// outcomes apart. Any matcher error other than buffer overflow aborts the
// operation with no partial result; overflow is handled internally by
// growing the buffer to the matcher's reported size and retrying once.
func Replace(m engine.Matcher, original, repl []rune, start, occurrence int) (result []rune, replaced bool, err error) {
	found, err := m.FindFrom(start)
	if err != nil {
		return nil, false, err
	}

	// Skip the first occurrence-1 matches, remembering where the last
	// one ended so the head append can cover the skipped text verbatim.
	lastSkippedEnd := 0
	for i := 1; i < occurrence && found; i++ {
		if lastSkippedEnd, err = m.MatchEnd(0); err != nil {
			return nil, false, err
		}
		if found, err = m.FindNext(); err != nil {
			return nil, false, err
		}
	}
	if !found {
		return original, false, nil
	}

	buf := newAppendBuffer(len(original))
	buf.appendHead(original, max(start, lastSkippedEnd))
	for {
		if err = buf.appendReplacement(m, repl); err != nil {
			return nil, false, err
		}
		if occurrence != 0 {
			break
		}
		if found, err = m.FindNext(); err != nil {
			return nil, false, err
		}
		if !found {
			break
		}
	}
	if err = buf.appendTail(m); err != nil {
		return nil, false, err
	}
	return buf.take(), true, nil
}
