package rewrite

import "time"

// Config controls the resource behavior of a Regex.
//
// Example:
//
//	cfg := rewrite.DefaultConfig()
//	cfg.MatchTimeout = time.Second
//	re := rewrite.CreateRegexWithConfig(cfg)
type Config struct {
	// StringBufferSize is the size, in bytes, of the preallocated buffer
	// that holds the match string. Strings whose encoding fits skip the
	// allocation on every SetMatchString; larger strings allocate as
	// usual. Zero disables the buffer.
	StringBufferSize uint32

	// MatchTimeout bounds a single match operation, guarding against
	// patterns with pathological backtracking. Zero means no bound.
	// Default: 0
	MatchTimeout time.Duration
}

// DefaultConfig returns the default configuration: no preallocated string
// buffer and no match timeout.
//
// Users can customize this and pass it to CreateRegexWithConfig.
func DefaultConfig() Config {
	return Config{
		StringBufferSize: 0,
		MatchTimeout:     0,
	}
}
