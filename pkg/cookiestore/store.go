// Package cookiestore owns the persistent cookie state of the daemon.
//
// A Store wraps a native Jar and picks, once at construction, how cookies
// are cleared (synchronously or through a completion callback) and whether
// writes are followed by a flush. Both clear strategies report whether the
// jar held cookies before the removal was requested.
package cookiestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/warpdl/cookiebridge/pkg/logger"
)

// Store is the only component that touches persistent cookie state.
type Store struct {
	jar     Jar
	caps    Capabilities
	clearer clearStrategy
	flusher Flusher
	log     logger.Logger
}

// New returns a Store over jar. The async clear path and flushing are
// used only when caps enables them and jar implements the matching
// interface. l may be nil.
func New(jar Jar, caps Capabilities, l logger.Logger) *Store {
	if l == nil {
		l = logger.NewNopLogger()
	}
	s := &Store{
		jar:  jar,
		caps: caps,
		log:  l,
	}
	s.clearer = &syncClear{jar: jar}
	if ar, ok := jar.(AsyncRemover); ok && caps.AsyncClear {
		s.clearer = &asyncClear{jar: ar, log: l}
	}
	if f, ok := jar.(Flusher); ok && caps.Flush {
		s.flusher = f
	}
	return s
}

// Capabilities returns the capability set the store was built with.
func (s *Store) Capabilities() Capabilities {
	return s.caps
}

// CookieHeader returns the combined Cookie header for rawURL, or "" when
// no cookie matches or the URL has no host.
func (s *Store) CookieHeader(rawURL string) string {
	u, ok := ParseTarget(rawURL)
	if !ok {
		return ""
	}
	return s.jar.CookieHeader(u)
}

// SetCookies applies cookies to rawURL in order and flushes when
// supported. A nil slice means the list is absent and fails with
// ErrInvalidArgument; an empty slice succeeds without touching the jar.
func (s *Store) SetCookies(rawURL string, cookies []string) error {
	if cookies == nil {
		return fmt.Errorf("%w: cookie list is absent", ErrInvalidArgument)
	}
	u, ok := ParseTarget(rawURL)
	if !ok {
		return fmt.Errorf("%w: url %q has no host", ErrInvalidArgument, rawURL)
	}
	for _, c := range cookies {
		if err := s.jar.SetCookie(u, c); err != nil {
			return fmt.Errorf("set cookie for %s: %w", u.Host, err)
		}
	}
	return s.Flush()
}

// Flush persists buffered writes. It is a no-op when flushing is not
// supported; such jars persist eagerly.
func (s *Store) Flush() error {
	if s.flusher == nil {
		return nil
	}
	if err := s.flusher.Flush(); err != nil {
		return fmt.Errorf("flush cookies: %w", err)
	}
	return nil
}

// HasCookies reports whether any cookie is stored.
func (s *Store) HasCookies() bool {
	return s.jar.HasCookies()
}

// ClearAll removes every cookie and reports whether the jar held any
// before the call. Occupancy is read before removal is requested; the
// jar's own removal confirmation is not used. Cancelling ctx abandons the
// wait but not the removal.
func (s *Store) ClearAll(ctx context.Context) (bool, error) {
	hadCookies := s.jar.HasCookies()
	if err := s.clearer.removeAll(ctx); err != nil {
		return false, err
	}
	return hadCookies, nil
}

type clearStrategy interface {
	removeAll(ctx context.Context) error
}

type syncClear struct {
	jar Jar
}

func (c *syncClear) removeAll(_ context.Context) error {
	if err := c.jar.RemoveAllCookies(); err != nil {
		return fmt.Errorf("remove cookies: %w", err)
	}
	return nil
}

type asyncClear struct {
	jar AsyncRemover
	log logger.Logger
}

// removeAll waits on a one-shot channel for the jar's completion. Extra
// completions from a misbehaving jar are dropped.
func (c *asyncClear) removeAll(ctx context.Context) error {
	done := make(chan error, 1)
	var once sync.Once
	c.jar.RemoveAllCookiesAsync(func(_ bool, err error) {
		delivered := false
		once.Do(func() {
			done <- err
			delivered = true
		})
		if !delivered {
			c.log.Warning("duplicate cookie removal completion ignored")
		}
	})

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("remove cookies: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
