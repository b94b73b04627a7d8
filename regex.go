// Package rewrite provides MySQL-flavored regular expression operations:
// occurrence-aware matching, substitution, index lookup, and substring
// extraction over a pattern and a match string.
//
// The package separates pattern matching from substitution. Matching is a
// capability (see the engine package) with two implementations: a
// backtracking engine with full pattern syntax and capture groups, and an
// Aho-Corasick automaton for literal patterns. Substitution (the subst
// package) drives a matcher through an append protocol in which the matcher
// writes into a caller-supplied buffer and reports the exact shortfall on
// overflow, so the result buffer grows at most once per append.
//
// Basic usage:
//
//	re := rewrite.CreateRegex(0)
//	defer re.Close()
//
//	ctx := context.Background()
//	if err := re.SetRegexString(ctx, `[a-z]+`, rewrite.RegexFlags_None); err != nil {
//	    log.Fatal(err)
//	}
//	if err := re.SetMatchString(ctx, "abc def ghi"); err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := re.Replace(ctx, "X", 1, 2)
//	// out = "abc X ghi"
//
// Positions follow MySQL conventions: Replace, IndexOf, and Substring take
// one-based positions, and occurrence 0 in Replace means "every occurrence".
package rewrite

import (
	"context"
	"runtime"

	"github.com/dlclark/regexp2"
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/coregx/rewrite/engine"
	"github.com/coregx/rewrite/engine/backtrack"
	"github.com/coregx/rewrite/engine/literal"
	"github.com/coregx/rewrite/subst"
)

// Regex exposes occurrence-aware regular expression operations over a
// pattern and a match string. It is imperative that a Regex is closed once
// it is finished.
type Regex interface {
	// SetRegexString sets the pattern that will later be matched against. This must be called at least once before
	// any other calls are made (except for Close).
	SetRegexString(ctx context.Context, regexStr string, flags RegexFlags) error
	// SetMatchString sets the string that we will either be matching against, or executing the replacements on. This
	// must be called after SetRegexString, but before any other calls.
	SetMatchString(ctx context.Context, matchStr string) error
	// Matches returns whether the previously-set regex matches the previously-set match string, starting the search at
	// the zero-based offset start and skipping to the given occurrence. Must call SetRegexString and SetMatchString
	// before this function.
	Matches(ctx context.Context, start int, occurrence int) (bool, error)
	// Replace returns a new string with the replacement string occupying the matched portions of the match string.
	// Position starts at 1, not 0. Occurrence 0 replaces every match at or after the position, k > 0 replaces only the
	// k-th. When nothing qualifies, the match string is returned unchanged. Must call SetRegexString and
	// SetMatchString before this function.
	Replace(ctx context.Context, replacementStr string, position int, occurrence int) (string, error)
	// IndexOf returns the one-based character position of the selected occurrence, or one past its end when endIndex
	// is set. It returns 0 when there is no such occurrence. Position starts at 1, not 0. Must call SetRegexString and
	// SetMatchString before this function.
	IndexOf(ctx context.Context, position int, occurrence int, endIndex bool) (int, error)
	// Substring returns the text of the selected occurrence, with ok reporting whether it exists. Position starts at
	// 1, not 0. Must call SetRegexString and SetMatchString before this function.
	Substring(ctx context.Context, position int, occurrence int) (string, bool, error)
	// StringBufferSize returns the size of the string buffer, in bytes. If the string buffer is not being used, then
	// this returns zero.
	StringBufferSize() uint32
	// Close frees up the internal resources. This MUST be called, else a panic will occur at some non-deterministic
	// time.
	Close() error
}

var (
	// ErrRegexNotYetSet is returned when attempting to use another function before the regex has been initialized.
	ErrRegexNotYetSet = errors.NewKind("SetRegexString must be called before any other function")
	// ErrMatchNotYetSet is returned when attempting to use another function before the match string has been set.
	ErrMatchNotYetSet = errors.NewKind("SetMatchString must be called as there is nothing to match against")
	// ErrInvalidRegex is returned when an invalid regex is given
	ErrInvalidRegex = errors.NewKind("the given regular expression is invalid")
	// ErrUnsupportedFlags is returned when the given flags contain a flag the backing engine cannot honor
	ErrUnsupportedFlags = errors.NewKind("unsupported regex flags: %d")
)

// ShouldPanic determines whether the finalizer will panic if it finds a Regex that has not been closed.
var ShouldPanic bool = true

// CreateRegex creates a Regex, with a region of memory that has been preallocated to support match strings that are
// less than or equal to the given size. Such strings will skip the allocation phase, which saves time. A size of zero
// will force all strings to be allocated. Once the Regex is done with, you must remember to call Close. A Regex is
// intended for single-threaded use only, therefore it is advised for each goroutine to use its own Regex when one is
// needed.
func CreateRegex(stringBufferInBytes uint32) Regex {
	cfg := DefaultConfig()
	cfg.StringBufferSize = stringBufferInBytes
	return CreateRegexWithConfig(cfg)
}

// CreateRegexWithConfig creates a Regex with the given configuration. The same lifecycle rules as CreateRegex apply.
func CreateRegexWithConfig(cfg Config) Regex {
	pr := &privateRegex{cfg: cfg}
	if cfg.StringBufferSize > 0 {
		pr.textBuf = bufferPool.Get().(*textBuffer)
	}
	// This finalizer will let us know if a user never called Close. Although everything would eventually be reclaimed
	// by GC, leaked instances keep their buffers out of the pool. Hopefully, this would be caught during development
	// and not in production.
	runtime.SetFinalizer(pr, func(pr *privateRegex) {
		if !pr.closed && ShouldPanic {
			panic("Finalizer found a Regex that was never closed")
		}
	})
	return pr
}

// privateRegex is the private implementation of the Regex interface.
type privateRegex struct {
	cfg      Config
	compiled engine.Pattern
	matcher  engine.Matcher
	matchStr string
	text     []rune
	textSet  bool
	textBuf  *textBuffer
	closed   bool
}

var _ Regex = (*privateRegex)(nil)

// SetRegexString implements the interface Regex.
func (pr *privateRegex) SetRegexString(ctx context.Context, regexStr string, flags RegexFlags) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	compiled, err := pr.compile(regexStr, flags)
	if err != nil {
		return err
	}
	pr.compiled = compiled
	// Re-bind an already-set match string, so the pattern can be swapped
	// without the caller repeating SetMatchString.
	if pr.textSet {
		pr.matcher = pr.compiled.Bind(pr.text)
	}
	return nil
}

// compile selects the engine for the flags and compiles the pattern.
func (pr *privateRegex) compile(regexStr string, flags RegexFlags) (engine.Pattern, error) {
	if flags&(RegexFlags_Unix_Lines|RegexFlags_Error_On_Unknown_Escapes) != 0 {
		return nil, ErrUnsupportedFlags.New(uint32(flags))
	}
	if flags&RegexFlags_Literal != 0 {
		// Case folding is the one flag that still matters under Literal, and the automaton cannot do it, so
		// that combination runs the escaped literal through the backtracking engine instead.
		if flags&RegexFlags_Case_Insensitive != 0 {
			p, err := backtrack.Compile(QuoteMeta(regexStr), regexp2.IgnoreCase, pr.cfg.MatchTimeout)
			if err != nil {
				return nil, ErrInvalidRegex.New()
			}
			return p, nil
		}
		p, err := literal.Compile(regexStr)
		if err != nil {
			return nil, ErrInvalidRegex.New()
		}
		return p, nil
	}
	p, err := backtrack.Compile(regexStr, regexOptions(flags), pr.cfg.MatchTimeout)
	if err != nil {
		return nil, ErrInvalidRegex.New()
	}
	return p, nil
}

// regexOptions translates RegexFlags to the backtracking engine's options.
func regexOptions(flags RegexFlags) regexp2.RegexOptions {
	var opts regexp2.RegexOptions
	if flags&RegexFlags_Case_Insensitive != 0 {
		opts |= regexp2.IgnoreCase
	}
	if flags&RegexFlags_Comments != 0 {
		opts |= regexp2.IgnorePatternWhitespace
	}
	if flags&RegexFlags_Multiline != 0 {
		opts |= regexp2.Multiline
	}
	if flags&RegexFlags_Dot_All != 0 {
		opts |= regexp2.Singleline
	}
	if flags&RegexFlags_Unicode_Word != 0 {
		opts |= regexp2.Unicode
	}
	return opts
}

// SetMatchString implements the interface Regex.
func (pr *privateRegex) SetMatchString(ctx context.Context, matchStr string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pr.compiled == nil {
		return ErrRegexNotYetSet.New()
	}
	pr.matchStr = matchStr
	pr.text = pr.toRunes(matchStr)
	pr.textSet = true
	pr.matcher = pr.compiled.Bind(pr.text)
	return nil
}

// toRunes converts matchStr, reusing the preallocated buffer when the string
// fits. The buffer size is in bytes and a rune counts as four bytes, so the
// check never depends on the encoding of the actual characters.
func (pr *privateRegex) toRunes(s string) []rune {
	runes := []rune(s)
	if pr.textBuf == nil || uint32(len(runes)*4) > pr.cfg.StringBufferSize {
		return runes
	}
	buf := pr.textBuf.ensure(len(runes))
	copy(buf, runes)
	return buf
}

// Matches implements the interface Regex.
func (pr *privateRegex) Matches(ctx context.Context, start int, occurrence int) (bool, error) {
	if err := pr.ready(ctx); err != nil {
		return false, err
	}
	return pr.find(start, occurrence)
}

// Replace implements the interface Regex.
func (pr *privateRegex) Replace(ctx context.Context, replacementStr string, position int, occurrence int) (string, error) {
	if err := pr.ready(ctx); err != nil {
		return "", err
	}
	result, replaced, err := subst.Replace(pr.matcher, pr.text, []rune(replacementStr), position-1, occurrence)
	if err != nil {
		return "", err
	}
	if !replaced {
		// No qualifying match: hand back the stored input string, no new allocation.
		return pr.matchStr, nil
	}
	return string(result), nil
}

// IndexOf implements the interface Regex.
func (pr *privateRegex) IndexOf(ctx context.Context, position int, occurrence int, endIndex bool) (int, error) {
	if err := pr.ready(ctx); err != nil {
		return 0, err
	}
	found, err := pr.find(position-1, occurrence)
	if err != nil || !found {
		return 0, err
	}
	if endIndex {
		end, err := pr.matcher.MatchEnd(0)
		if err != nil {
			return 0, err
		}
		return end + 1, nil
	}
	start, err := pr.matcher.MatchStart(0)
	if err != nil {
		return 0, err
	}
	return start + 1, nil
}

// Substring implements the interface Regex.
func (pr *privateRegex) Substring(ctx context.Context, position int, occurrence int) (string, bool, error) {
	if err := pr.ready(ctx); err != nil {
		return "", false, err
	}
	found, err := pr.find(position-1, occurrence)
	if err != nil || !found {
		return "", false, err
	}
	start, err := pr.matcher.MatchStart(0)
	if err != nil {
		return "", false, err
	}
	end, err := pr.matcher.MatchEnd(0)
	if err != nil {
		return "", false, err
	}
	return string(pr.text[start:end]), true, nil
}

// StringBufferSize implements the interface Regex.
func (pr *privateRegex) StringBufferSize() uint32 {
	return pr.cfg.StringBufferSize
}

// Close implements the interface Regex.
func (pr *privateRegex) Close() error {
	if pr == nil || pr.closed {
		return nil
	}
	pr.closed = true
	pr.compiled = nil
	pr.matcher = nil
	pr.matchStr = ""
	pr.text = nil
	pr.textSet = false
	if pr.textBuf != nil {
		bufferPool.Put(pr.textBuf)
		pr.textBuf = nil
	}
	runtime.SetFinalizer(pr, nil)
	return nil
}

// ready gates the query operations on the context and on both setters having
// run.
func (pr *privateRegex) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pr.compiled == nil {
		return ErrRegexNotYetSet.New()
	}
	if !pr.textSet {
		return ErrMatchNotYetSet.New()
	}
	return nil
}

// find positions the matcher on the given occurrence of the pattern at or
// after the zero-based start offset. Occurrence values below 2 select the
// first match.
func (pr *privateRegex) find(start int, occurrence int) (bool, error) {
	found, err := pr.matcher.FindFrom(start)
	if err != nil {
		return false, err
	}
	for i := 1; i < occurrence && found; i++ {
		if found, err = pr.matcher.FindNext(); err != nil {
			return false, err
		}
	}
	return found, nil
}
