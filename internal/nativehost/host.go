package nativehost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/warpdl/cookiebridge/common"
)

// Client is the part of the daemon client the host relays through.
type Client interface {
	Call(ctx context.Context, method string, params, result any) error
	Close() error
}

// methods maps extension method names to daemon methods.
var methods = map[string]string{
	"version":      common.SystemChannel + ".getVersion",
	"capabilities": common.SystemChannel + ".getCapabilities",
	"getCookies":   common.CookieChannel + ".getCookies",
	"setCookies":   common.CookieChannel + ".setCookies",
	"clearCookies": common.CookieChannel + ".clearCookies",
}

// DefaultCallTimeout bounds one relayed call.
const DefaultCallTimeout = 10 * time.Second

// Host relays extension requests to the daemon, one at a time.
type Host struct {
	client  Client
	stdin   io.Reader
	stdout  io.Writer
	timeout time.Duration
}

// NewHost returns a Host reading os.Stdin and writing os.Stdout.
func NewHost(client Client) *Host {
	return &Host{
		client:  client,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		timeout: DefaultCallTimeout,
	}
}

// Run serves requests until the browser closes stdin.
func (h *Host) Run() error {
	for {
		err := h.processOneMessage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (h *Host) processOneMessage() error {
	data, err := ReadMessage(h.stdin)
	if err != nil {
		return err
	}
	req, err := ParseRequest(data)
	if err != nil {
		return WriteMessage(h.stdout, MakeErrorResponse(0, fmt.Errorf("invalid request: %w", err)))
	}
	return WriteMessage(h.stdout, h.handleRequest(req))
}

// handleRequest forwards the request's message as the daemon call's
// arguments so argument checking stays with the daemon.
func (h *Host) handleRequest(req *Request) []byte {
	method, ok := methods[req.Method]
	if !ok {
		return MakeErrorResponse(req.ID, fmt.Errorf("unknown method: %s", req.Method))
	}
	var params any
	if len(req.Message) > 0 && string(req.Message) != "null" {
		params = req.Message
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	var result json.RawMessage
	if err := h.client.Call(ctx, method, params, &result); err != nil {
		var rpcErr *jrpc2.Error
		if errors.As(err, &rpcErr) {
			return rejectedResponse(req.ID, rpcErr)
		}
		return MakeErrorResponse(req.ID, err)
	}
	return MakeSuccessResponse(req.ID, result)
}
