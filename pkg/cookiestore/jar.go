package cookiestore

import (
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Jar is the native cookie jar a Store delegates to. Implementations
// serialize their own mutations.
type Jar interface {
	// SetCookie applies one Set-Cookie style string for u. Strings the jar
	// cannot interpret are ignored.
	SetCookie(u *url.URL, raw string) error
	// CookieHeader returns the Cookie header for u, or "".
	CookieHeader(u *url.URL) string
	// HasCookies reports whether any live cookie is stored.
	HasCookies() bool
	// RemoveAllCookies removes every cookie before returning.
	RemoveAllCookies() error
}

// Flusher is implemented by jars that buffer writes until Flush.
type Flusher interface {
	Flush() error
}

// AsyncRemover is implemented by jars that can remove cookies in the
// background. done must be called once with whether any cookie was removed.
type AsyncRemover interface {
	RemoveAllCookiesAsync(done func(removed bool, err error))
}

// entryKey identifies a cookie inside the jar.
type entryKey struct {
	domain string
	path   string
	name   string
}

// parsedCookie is a Set-Cookie string resolved against its target URL.
type parsedCookie struct {
	cookie *http.Cookie
	key    entryKey
	// sample is a URL the cookie is sent to while it is alive.
	sample *url.URL
}

func parseCookie(u *url.URL, raw string) (*parsedCookie, bool) {
	c, err := http.ParseSetCookie(raw)
	if err != nil {
		return nil, false
	}

	host := strings.ToLower(u.Hostname())
	domain := host
	if c.Domain != "" {
		domain = strings.TrimPrefix(strings.ToLower(c.Domain), ".")
	}

	cpath := c.Path
	if cpath == "" || cpath[0] != '/' {
		cpath = defaultPath(u.Path)
	}

	scheme := u.Scheme
	if c.Secure {
		scheme = "https"
	}
	sample := &url.URL{Scheme: scheme, Host: u.Host, Path: cpath}

	return &parsedCookie{
		cookie: c,
		key:    entryKey{domain: domain, path: cpath, name: c.Name},
		sample: sample,
	}, true
}

// defaultPath implements the default-path algorithm of RFC 6265 5.1.4.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return path.Clean(p[:i])
}

// ParseTarget resolves a target URL string. Strings without a scheme are
// treated as http URLs. The second result is false when no host is present.
func ParseTarget(raw string) (*url.URL, bool) {
	if raw == "" {
		return nil, false
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, false
	}
	return u, true
}

func joinHeader(cookies []*http.Cookie) string {
	if len(cookies) == 0 {
		return ""
	}
	parts := make([]string, len(cookies))
	for i, c := range cookies {
		parts[i] = c.Name + "=" + c.Value
	}
	return strings.Join(parts, "; ")
}
