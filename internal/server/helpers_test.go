package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/warpdl/cookiebridge/internal/messenger"
)

// newTestMessenger returns a messenger whose "test.echo" method replies
// with its "value" argument.
func newTestMessenger() *messenger.Messenger {
	m := messenger.New(nil)
	m.Channel("test").SetMethodCallHandler(messenger.MethodCallHandlerFunc(
		func(_ context.Context, call *messenger.MethodCall, result messenger.Result) {
			if call.Method != "echo" {
				result.NotImplemented()
				return
			}
			var v string
			if _, err := call.Argument("value", &v); err != nil {
				result.Error("bad value", err.Error(), nil)
				return
			}
			result.Success(v)
		}))
	return m
}

// startTestServer serves newTestMessenger and returns the server and a
// cancel func that stops it and waits for Serve to return.
func startTestServer(t *testing.T) (*Server, func()) {
	t.Helper()
	s := NewServer(nil, newTestMessenger(), 0)
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	return s, func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Serve: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Serve did not return after cancel")
		}
	}
}

func dialTestClient(t *testing.T, addr net.Addr) *jrpc2.Client {
	t.Helper()
	conn, err := net.DialTimeout(addr.Network(), addr.String(), 2*time.Second)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	return jrpc2.NewClient(channel.Line(conn, conn), nil)
}
