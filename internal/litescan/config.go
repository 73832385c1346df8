package litescan

import (
	"io"
	"time"
)

// sessionConfig collects the options a Session can be tuned with, applied
// through the functional-options pattern.
type sessionConfig struct {
	PageCacheEnabled bool
	MaxConcurrency   int
	ReadTimeout      time.Duration
	Validate         bool
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		PageCacheEnabled: true,
		MaxConcurrency:   1,
		ReadTimeout:      0,
		Validate:         true,
	}
}

// Option configures a Session at Open time.
type Option func(*sessionConfig)

// WithPageCacheSize toggles in-memory caching of decoded pages by page
// number. Disabling it trades memory for a guarantee that every page read
// hits the file.
func WithPageCacheSize(enabled bool) Option {
	return func(c *sessionConfig) { c.PageCacheEnabled = enabled }
}

// WithMaxConcurrency is accepted for API compatibility but has no effect:
// this core is single-threaded and synchronous by design, and never spawns
// goroutines to serve a read.
func WithMaxConcurrency(n int) Option {
	return func(c *sessionConfig) {
		if n > 0 {
			c.MaxConcurrency = n
		}
	}
}

// WithReadTimeout is accepted for API compatibility but has no effect: no
// timeout is enforced for any value. Plumbing it through would require
// wrapping every ReadAt in a context-aware goroutine, which would violate
// the no-suspension invariant this core otherwise upholds.
func WithReadTimeout(d time.Duration) Option {
	return func(c *sessionConfig) { c.ReadTimeout = d }
}

// WithValidation toggles the extra structural checks Open performs against
// the database header (magic string, page size range) beyond the minimum
// the format requires.
func WithValidation(enabled bool) Option {
	return func(c *sessionConfig) { c.Validate = enabled }
}

// resourceManager closes its registered closers in LIFO order: acquisition
// order in, reverse order out.
type resourceManager struct {
	closers []io.Closer
}

func (r *resourceManager) add(c io.Closer) {
	r.closers = append(r.closers, c)
}

func (r *resourceManager) addCleaner(fn func() error) {
	r.add(closerFunc(fn))
}

func (r *resourceManager) close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
