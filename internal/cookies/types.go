package cookies

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Format identifies the format of a browser cookie store.
type Format int

const (
	FormatUnknown Format = iota
	FormatFirefox
	FormatChrome
	FormatNetscape
)

func (f Format) String() string {
	switch f {
	case FormatFirefox:
		return "firefox"
	case FormatChrome:
		return "chrome"
	case FormatNetscape:
		return "netscape"
	}
	return "unknown"
}

// Cookie is one cookie read from a browser store. Value is sensitive.
type Cookie struct {
	Name  string
	Value string
	// Domain has a leading dot for cookies shared with subdomains.
	Domain string
	Path   string
	// Expiry is zero for session cookies.
	Expiry   time.Time
	Secure   bool
	HttpOnly bool
}

// HostOnly reports whether the cookie is bound to exactly its host.
func (c Cookie) HostOnly() bool {
	return !strings.HasPrefix(c.Domain, ".")
}

// URL returns the URL the cookie is set for: its host, over https for
// secure cookies.
func (c Cookie) URL() string {
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	p := c.Path
	if p == "" || p[0] != '/' {
		p = "/"
	}
	u := url.URL{Scheme: scheme, Host: strings.TrimPrefix(c.Domain, "."), Path: p}
	return u.String()
}

// SetCookie renders the cookie as a Set-Cookie header value. It returns
// "" when the name is not a valid cookie name or the value holds bytes a
// cookie value cannot carry, such as '"' or '\'.
func (c Cookie) SetCookie() string {
	if err := (&http.Cookie{Name: c.Name, Value: c.Value}).Valid(); err != nil {
		return ""
	}
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
	if !c.HostOnly() {
		hc.Domain = c.Domain
	}
	if !c.Expiry.IsZero() {
		hc.Expires = c.Expiry
	}
	return hc.String()
}

// Source describes where cookies were imported from.
type Source struct {
	Path    string
	Format  Format
	Browser string
}

// matchesDomain reports whether a cookie domain belongs to domain or one
// of its subdomains.
func matchesDomain(cookieDomain, domain string) bool {
	cd := strings.TrimPrefix(strings.ToLower(cookieDomain), ".")
	domain = strings.TrimPrefix(strings.ToLower(domain), ".")
	return cd == domain || strings.HasSuffix(cd, "."+domain)
}
