package cookiestore

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// MemoryJar is an in-memory RFC 6265 cookie jar. net/http/cookiejar does
// the matching; MemoryJar adds the occupancy query and bulk removal the
// stdlib jar lacks.
type MemoryJar struct {
	mu  sync.Mutex
	jar *cookiejar.Jar
	// index records a sample URL per stored cookie identity so HasCookies
	// can ask the jar whether the cookie is still alive.
	index map[entryKey]*url.URL
}

// NewMemoryJar returns an empty jar using the public suffix list.
func NewMemoryJar() *MemoryJar {
	return &MemoryJar{
		jar:   newCookieJar(),
		index: make(map[entryKey]*url.URL),
	}
}

func newCookieJar() *cookiejar.Jar {
	// cookiejar.New never fails.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

// SetCookie implements Jar.
func (j *MemoryJar) SetCookie(u *url.URL, raw string) error {
	pc, ok := parseCookie(u, raw)
	if !ok {
		return nil
	}
	j.set(u, pc)
	return nil
}

func (j *MemoryJar) set(u *url.URL, pc *parsedCookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, []*http.Cookie{pc.cookie})
	j.index[pc.key] = pc.sample
}

// CookieHeader implements Jar.
func (j *MemoryJar) CookieHeader(u *url.URL) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return joinHeader(j.jar.Cookies(u))
}

// HasCookies implements Jar. Index entries whose cookie expired or was
// deleted are dropped on the way.
func (j *MemoryJar) HasCookies() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	for key, sample := range j.index {
		if j.aliveLocked(key, sample) {
			return true
		}
		delete(j.index, key)
	}
	return false
}

func (j *MemoryJar) alive(key entryKey, sample *url.URL) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.aliveLocked(key, sample)
}

func (j *MemoryJar) aliveLocked(key entryKey, sample *url.URL) bool {
	for _, c := range j.jar.Cookies(sample) {
		if c.Name == key.name {
			return true
		}
	}
	return false
}

// RemoveAllCookies implements Jar.
func (j *MemoryJar) RemoveAllCookies() error {
	j.removeAll()
	return nil
}

// RemoveAllCookiesAsync implements AsyncRemover.
func (j *MemoryJar) RemoveAllCookiesAsync(done func(removed bool, err error)) {
	go func() {
		done(j.removeAll(), nil)
	}()
}

func (j *MemoryJar) removeAll() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	removed := len(j.index) > 0
	j.jar = newCookieJar()
	j.index = make(map[entryKey]*url.URL)
	return removed
}

var (
	_ Jar          = (*MemoryJar)(nil)
	_ AsyncRemover = (*MemoryJar)(nil)
)
