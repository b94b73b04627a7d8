package rewrite

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegexMatch(t *testing.T) {
	ctx := context.Background()
	regex := CreateRegex(512 * 1024)
	defer func() {
		require.NoError(t, regex.Close())
	}()

	require.NoError(t, regex.SetRegexString(ctx, "abc", RegexFlags_None))
	require.NoError(t, regex.SetMatchString(ctx, "123abc456"))
	ok, err := regex.Matches(ctx, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, regex.SetRegexString(ctx, "^abc$", RegexFlags_None))
	require.NoError(t, regex.SetMatchString(ctx, "123abc456"))
	ok, err = regex.Matches(ctx, 0, 0)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, regex.SetMatchString(ctx, "abc"))
	ok, err = regex.Matches(ctx, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegexMatchOccurrence(t *testing.T) {
	ctx := context.Background()
	regex := CreateRegex(0)
	defer func() {
		require.NoError(t, regex.Close())
	}()

	require.NoError(t, regex.SetRegexString(ctx, "a", RegexFlags_None))
	require.NoError(t, regex.SetMatchString(ctx, "a-a-a"))

	for occurrence := 0; occurrence <= 3; occurrence++ {
		ok, err := regex.Matches(ctx, 0, occurrence)
		require.NoError(t, err)
		require.True(t, ok, "occurrence %d", occurrence)
	}
	ok, err := regex.Matches(ctx, 0, 4)
	require.NoError(t, err)
	require.False(t, ok)

	// A start offset past the first occurrence leaves two.
	ok, err = regex.Matches(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = regex.Matches(ctx, 1, 3)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegexReplace(t *testing.T) {
	ctx := context.Background()
	regex := CreateRegex(512 * 1024)
	defer func() {
		require.NoError(t, regex.Close())
	}()

	require.NoError(t, regex.SetRegexString(ctx, `[a-z]+`, RegexFlags_None))
	require.NoError(t, regex.SetMatchString(ctx, "abc def ghi"))

	tests := []struct {
		position   int
		occurrence int
		want       string
	}{
		{1, 0, "X X X"},
		{1, 1, "X def ghi"},
		{1, 2, "abc X ghi"},
		{1, 3, "abc def X"},
		{1, 4, "abc def ghi"},
		{5, 0, "abc X X"},
		{5, 1, "abc X ghi"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("position %d occurrence %d", tt.position, tt.occurrence), func(t *testing.T) {
			out, err := regex.Replace(ctx, "X", tt.position, tt.occurrence)
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
		})
	}
}

func TestRegexReplaceGroupReferences(t *testing.T) {
	ctx := context.Background()
	regex := CreateRegex(0)
	defer func() {
		require.NoError(t, regex.Close())
	}()

	require.NoError(t, regex.SetRegexString(ctx, `(\w+)@(\w+)`, RegexFlags_None))
	require.NoError(t, regex.SetMatchString(ctx, "alice@db1 bob@db2"))

	out, err := regex.Replace(ctx, "$2/$1", 1, 0)
	require.NoError(t, err)
	require.Equal(t, "db1/alice db2/bob", out)

	out, err = regex.Replace(ctx, `<$0>`, 1, 2)
	require.NoError(t, err)
	require.Equal(t, "alice@db1 <bob@db2>", out)
}

func TestRegexReplaceGrowth(t *testing.T) {
	ctx := context.Background()
	regex := CreateRegex(1024)
	defer func() {
		require.NoError(t, regex.Close())
	}()

	require.NoError(t, regex.SetRegexString(ctx, "a", RegexFlags_None))
	require.NoError(t, regex.SetMatchString(ctx, "ababababab"))

	repl := strings.Repeat("x", 1000)
	out, err := regex.Replace(ctx, repl, 1, 0)
	require.NoError(t, err)
	require.Len(t, out, 5*1000+5)
	require.Equal(t, strings.Repeat(repl+"b", 5), out)
}

func TestRegexIndexOf(t *testing.T) {
	ctx := context.Background()
	regex := CreateRegex(512 * 1024)
	defer func() {
		require.NoError(t, regex.Close())
	}()

	require.NoError(t, regex.SetRegexString(ctx, `[a-z]+`, RegexFlags_None))
	require.NoError(t, regex.SetMatchString(ctx, "abc def ghi"))

	tests := []struct {
		position   int
		occurrence int
		endIndex   bool
		want       int
	}{
		{1, 1, false, 1},
		{1, 1, true, 4},
		{1, 2, false, 5},
		{1, 2, true, 8},
		{1, 3, false, 9},
		{1, 3, true, 12},
		{1, 4, false, 0},
		{2, 1, false, 2},
		{5, 1, false, 5},
		{5, 2, true, 12},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("position %d occurrence %d end %v", tt.position, tt.occurrence, tt.endIndex), func(t *testing.T) {
			idx, err := regex.IndexOf(ctx, tt.position, tt.occurrence, tt.endIndex)
			require.NoError(t, err)
			require.Equal(t, tt.want, idx)
		})
	}
}

func TestRegexSubstring(t *testing.T) {
	ctx := context.Background()
	regex := CreateRegex(512 * 1024)
	defer func() {
		require.NoError(t, regex.Close())
	}()

	require.NoError(t, regex.SetRegexString(ctx, `[a-z]+`, RegexFlags_None))
	require.NoError(t, regex.SetMatchString(ctx, "abc def ghi"))

	tests := []struct {
		position   int
		occurrence int
		want       string
		ok         bool
	}{
		{1, 1, "abc", true},
		{1, 2, "def", true},
		{1, 3, "ghi", true},
		{1, 4, "", false},
		{5, 1, "def", true},
		{2, 1, "bc", true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("position %d occurrence %d", tt.position, tt.occurrence), func(t *testing.T) {
			s, ok, err := regex.Substring(ctx, tt.position, tt.occurrence)
			require.NoError(t, err)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, s)
		})
	}
}

func TestRegexFlags(t *testing.T) {
	ctx := context.Background()

	matches := func(t *testing.T, pattern string, flags RegexFlags, matchStr string) bool {
		t.Helper()
		regex := CreateRegex(0)
		defer func() {
			require.NoError(t, regex.Close())
		}()
		require.NoError(t, regex.SetRegexString(ctx, pattern, flags))
		require.NoError(t, regex.SetMatchString(ctx, matchStr))
		ok, err := regex.Matches(ctx, 0, 0)
		require.NoError(t, err)
		return ok
	}

	require.False(t, matches(t, "abc", RegexFlags_None, "ABC"))
	require.True(t, matches(t, "abc", RegexFlags_Case_Insensitive, "ABC"))

	require.False(t, matches(t, "a.b", RegexFlags_None, "a\nb"))
	require.True(t, matches(t, "a.b", RegexFlags_Dot_All, "a\nb"))

	require.False(t, matches(t, "^b", RegexFlags_None, "a\nb"))
	require.True(t, matches(t, "^b", RegexFlags_Multiline, "a\nb"))

	require.True(t, matches(t, "a b c # trailing", RegexFlags_Comments, "xabcx"))
}

func TestRegexLiteralFlag(t *testing.T) {
	ctx := context.Background()
	regex := CreateRegex(0)
	defer func() {
		require.NoError(t, regex.Close())
	}()

	// "a.c" is a literal here, so "abc" must not match.
	require.NoError(t, regex.SetRegexString(ctx, "a.c", RegexFlags_Literal))
	require.NoError(t, regex.SetMatchString(ctx, "xabcx"))
	ok, err := regex.Matches(ctx, 0, 0)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, regex.SetMatchString(ctx, "xa.cx"))
	ok, err = regex.Matches(ctx, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	out, err := regex.Replace(ctx, "Y", 1, 0)
	require.NoError(t, err)
	require.Equal(t, "xYx", out)

	idx, err := regex.IndexOf(ctx, 1, 1, false)
	require.NoError(t, err)
	require.Equal(t, 2, idx)
}

func TestRegexLiteralCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	regex := CreateRegex(0)
	defer func() {
		require.NoError(t, regex.Close())
	}()

	require.NoError(t, regex.SetRegexString(ctx, "A.C", RegexFlags_Literal|RegexFlags_Case_Insensitive))
	require.NoError(t, regex.SetMatchString(ctx, "xa.cx"))
	ok, err := regex.Matches(ctx, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, regex.SetMatchString(ctx, "xabcx"))
	ok, err = regex.Matches(ctx, 0, 0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegexUnsupportedFlags(t *testing.T) {
	ctx := context.Background()
	regex := CreateRegex(0)
	defer func() {
		require.NoError(t, regex.Close())
	}()

	err := regex.SetRegexString(ctx, "abc", RegexFlags_Unix_Lines)
	require.True(t, ErrUnsupportedFlags.Is(err))
	err = regex.SetRegexString(ctx, "abc", RegexFlags_Error_On_Unknown_Escapes)
	require.True(t, ErrUnsupportedFlags.Is(err))
}

func TestRegexLifecycleErrors(t *testing.T) {
	ctx := context.Background()
	regex := CreateRegex(0)
	defer func() {
		require.NoError(t, regex.Close())
	}()

	err := regex.SetMatchString(ctx, "abc")
	require.True(t, ErrRegexNotYetSet.Is(err))
	_, err = regex.Matches(ctx, 0, 0)
	require.True(t, ErrRegexNotYetSet.Is(err))

	err = regex.SetRegexString(ctx, "a(", RegexFlags_None)
	require.True(t, ErrInvalidRegex.Is(err))

	require.NoError(t, regex.SetRegexString(ctx, "abc", RegexFlags_None))
	_, err = regex.Matches(ctx, 0, 0)
	require.True(t, ErrMatchNotYetSet.Is(err))
	_, err = regex.Replace(ctx, "X", 1, 0)
	require.True(t, ErrMatchNotYetSet.Is(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, regex.SetRegexString(cancelled, "abc", RegexFlags_None), context.Canceled)
}

func TestRegexSwapPatternKeepsMatchString(t *testing.T) {
	ctx := context.Background()
	regex := CreateRegex(0)
	defer func() {
		require.NoError(t, regex.Close())
	}()

	require.NoError(t, regex.SetRegexString(ctx, "abc", RegexFlags_None))
	require.NoError(t, regex.SetMatchString(ctx, "abc def"))
	ok, err := regex.Matches(ctx, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	// Swapping the pattern must not require the match string to be set again.
	require.NoError(t, regex.SetRegexString(ctx, "def", RegexFlags_None))
	ok, err = regex.Matches(ctx, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)
	idx, err := regex.IndexOf(ctx, 1, 1, false)
	require.NoError(t, err)
	require.Equal(t, 5, idx)
}

func TestRegexStringBuffer(t *testing.T) {
	ctx := context.Background()

	regex := CreateRegex(64)
	require.Equal(t, uint32(64), regex.StringBufferSize())
	require.NoError(t, regex.SetRegexString(ctx, `\w+`, RegexFlags_None))

	// 16 runes fit the 64-byte buffer, 17 do not; both paths must behave
	// identically.
	for _, matchStr := range []string{strings.Repeat("a", 16), strings.Repeat("a", 17)} {
		require.NoError(t, regex.SetMatchString(ctx, matchStr))
		s, ok, err := regex.Substring(ctx, 1, 1)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, matchStr, s)
	}
	require.NoError(t, regex.Close())

	regex = CreateRegex(0)
	require.Equal(t, uint32(0), regex.StringBufferSize())
	require.NoError(t, regex.Close())
}

func TestRegexClose(t *testing.T) {
	ctx := context.Background()
	regex := CreateRegex(64)
	require.NoError(t, regex.SetRegexString(ctx, "abc", RegexFlags_None))
	require.NoError(t, regex.SetMatchString(ctx, "abc"))
	require.NoError(t, regex.Close())
	require.NoError(t, regex.Close())

	var pr *privateRegex
	require.NoError(t, pr.Close())
}

func TestRegexpMatchLoop(t *testing.T) {
	const goroutines = 8
	const iterations = 100

	ctx := context.Background()
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				regex := CreateRegex(1024)
				if err := regex.SetRegexString(ctx, `[a-z]+`, RegexFlags_None); err != nil {
					t.Error(err)
					return
				}
				if err := regex.SetMatchString(ctx, "abc def ghi"); err != nil {
					t.Error(err)
					return
				}
				out, err := regex.Replace(ctx, "X", 1, 2)
				if err != nil {
					t.Error(err)
					return
				}
				if out != "abc X ghi" {
					t.Errorf("Replace = %q, want %q", out, "abc X ghi")
					return
				}
				if err = regex.Close(); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
