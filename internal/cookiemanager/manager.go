// Package cookiemanager serves the cookie store on a messenger channel.
package cookiemanager

import (
	"context"
	"net/url"

	"github.com/warpdl/cookiebridge/internal/messenger"
	"github.com/warpdl/cookiebridge/pkg/logger"
)

// Error codes replied to callers.
const (
	ErrCodeMissingURL     = "Missing url argument"
	ErrCodeMissingCookies = "Missing cookies argument"
	ErrCodeSetFailed      = "Failed to set cookies"
	ErrCodeClearFailed    = "Failed to clear cookies"
)

// Method names served on the channel.
const (
	MethodGetCookies   = "getCookies"
	MethodSetCookies   = "setCookies"
	MethodClearCookies = "clearCookies"
)

// Store is the cookie state the manager delegates to.
type Store interface {
	CookieHeader(rawURL string) string
	SetCookies(rawURL string, cookies []string) error
	ClearAll(ctx context.Context) (bool, error)
}

// Policy rewrites cookies before they are stored.
type Policy interface {
	Apply(rawURL string, cookies []string) ([]string, error)
}

// Option configures a CookieManager.
type Option func(*CookieManager)

// WithPolicy filters setCookies through p.
func WithPolicy(p Policy) Option {
	return func(c *CookieManager) {
		c.policy = p
	}
}

// CookieManager answers getCookies, setCookies and clearCookies.
type CookieManager struct {
	channel *messenger.MethodChannel
	store   Store
	policy  Policy
	log     logger.Logger
}

// New registers a CookieManager on channelName of m.
func New(m *messenger.Messenger, channelName string, store Store, l logger.Logger, opts ...Option) *CookieManager {
	if l == nil {
		l = logger.NewNopLogger()
	}
	c := &CookieManager{
		channel: m.Channel(channelName),
		store:   store,
		log:     l,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.channel.SetMethodCallHandler(c)
	return c
}

// OnMethodCall implements messenger.MethodCallHandler.
func (c *CookieManager) OnMethodCall(ctx context.Context, call *messenger.MethodCall, result messenger.Result) {
	switch call.Method {
	case MethodGetCookies:
		c.getCookies(call, result)
	case MethodSetCookies:
		c.setCookies(call, result)
	case MethodClearCookies:
		c.clearCookies(ctx, result)
	default:
		result.NotImplemented()
	}
}

func (c *CookieManager) getCookies(call *messenger.MethodCall, result messenger.Result) {
	var rawURL string
	if ok, err := call.Argument("url", &rawURL); err != nil || !ok {
		result.Error(ErrCodeMissingURL, argMessage(err), nil)
		return
	}
	result.Success(c.store.CookieHeader(rawURL))
}

func (c *CookieManager) setCookies(call *messenger.MethodCall, result messenger.Result) {
	var rawURL string
	if ok, err := call.Argument("url", &rawURL); err != nil || !ok {
		result.Error(ErrCodeMissingURL, argMessage(err), nil)
		return
	}
	var cookies []string
	if ok, err := call.Argument("cookies", &cookies); err != nil || !ok {
		result.Error(ErrCodeMissingCookies, argMessage(err), nil)
		return
	}
	if cookies == nil {
		cookies = []string{}
	}

	if c.policy != nil && len(cookies) > 0 {
		filtered, err := c.policy.Apply(rawURL, cookies)
		if err != nil {
			c.log.Error("cookie policy for %s: %s", hostOf(rawURL), err.Error())
			result.Error(ErrCodeSetFailed, err.Error(), nil)
			return
		}
		if filtered == nil {
			filtered = []string{}
		}
		cookies = filtered
	}

	if err := c.store.SetCookies(rawURL, cookies); err != nil {
		c.log.Error("set cookies for %s: %s", hostOf(rawURL), err.Error())
		result.Error(ErrCodeSetFailed, err.Error(), nil)
		return
	}
	result.Success(true)
}

// argMessage is empty for an absent argument and describes the decode
// failure for one of the wrong type.
func argMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (c *CookieManager) clearCookies(ctx context.Context, result messenger.Result) {
	had, err := c.store.ClearAll(ctx)
	if err != nil {
		c.log.Error("clear cookies: %s", err.Error())
		result.Error(ErrCodeClearFailed, err.Error(), nil)
		return
	}
	result.Success(had)
}

// Dispose detaches the manager from its channel. It leaves the channel
// alone if another handler has replaced this one, and may be called
// repeatedly.
func (c *CookieManager) Dispose() {
	c.channel.ClearMethodCallHandler(c)
}

// hostOf returns the host of rawURL for log lines.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "<invalid url>"
	}
	return u.Host
}
