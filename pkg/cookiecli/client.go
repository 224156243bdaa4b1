// Package cookiecli is the client side of the cookiebridge daemon. It
// speaks newline framed JSON-RPC over the daemon's local socket.
package cookiecli

import (
	"context"
	"fmt"
	"net"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/warpdl/cookiebridge/common"
	"github.com/warpdl/cookiebridge/pkg/cookiestore"
)

// Version describes the daemon build.
type Version struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// Client calls the daemon. It is safe for concurrent use; the daemon
// dispatches one call at a time per connection.
type Client struct {
	rpc *jrpc2.Client
}

// NewClient dials the daemon at its default address.
func NewClient() (*Client, error) {
	conn, err := dial()
	if err != nil {
		return nil, fmt.Errorf("error connecting to daemon: %w", err)
	}
	return NewClientWithConn(conn), nil
}

// NewClientWithURI dials the daemon at an explicit address. An empty
// rawURI behaves like NewClient.
func NewClientWithURI(rawURI string) (*Client, error) {
	if rawURI == "" {
		return NewClient()
	}
	uri, err := ParseDaemonURI(rawURI)
	if err != nil {
		return nil, err
	}
	conn, err := dialURI(uri)
	if err != nil {
		return nil, fmt.Errorf("error connecting to daemon: %w", err)
	}
	return NewClientWithConn(conn), nil
}

// NewClientWithConn wraps an established connection.
func NewClientWithConn(conn net.Conn) *Client {
	return &Client{rpc: jrpc2.NewClient(channel.Line(conn, conn), nil)}
}

func cookieMethod(name string) string {
	return common.CookieChannel + "." + name
}

func systemMethod(name string) string {
	return common.SystemChannel + "." + name
}

// GetCookies returns the Cookie header value the daemon holds for rawURL.
func (c *Client) GetCookies(ctx context.Context, rawURL string) (string, error) {
	var header string
	err := c.rpc.CallResult(ctx, cookieMethod("getCookies"), map[string]any{"url": rawURL}, &header)
	return header, err
}

// SetCookies stores Set-Cookie strings for rawURL. A nil slice is sent
// as an empty list.
func (c *Client) SetCookies(ctx context.Context, rawURL string, cookies []string) (bool, error) {
	if cookies == nil {
		cookies = []string{}
	}
	var ok bool
	err := c.rpc.CallResult(ctx, cookieMethod("setCookies"), map[string]any{
		"url":     rawURL,
		"cookies": cookies,
	}, &ok)
	return ok, err
}

// ClearCookies removes every cookie and reports whether any existed.
func (c *Client) ClearCookies(ctx context.Context) (bool, error) {
	var had bool
	err := c.rpc.CallResult(ctx, cookieMethod("clearCookies"), nil, &had)
	return had, err
}

func (c *Client) Version(ctx context.Context) (*Version, error) {
	var v Version
	if err := c.rpc.CallResult(ctx, systemMethod("getVersion"), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) Capabilities(ctx context.Context) (*cookiestore.Capabilities, error) {
	var caps cookiestore.Capabilities
	if err := c.rpc.CallResult(ctx, systemMethod("getCapabilities"), nil, &caps); err != nil {
		return nil, err
	}
	return &caps, nil
}

func (c *Client) Close() error {
	return c.rpc.Close()
}

// Call invokes a daemon method by its full "<channel>.<method>" name and
// decodes the reply into result.
func (c *Client) Call(ctx context.Context, method string, params, result any) error {
	return c.rpc.CallResult(ctx, method, params, result)
}
