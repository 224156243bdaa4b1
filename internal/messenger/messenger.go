// Package messenger routes method calls to handlers registered on named
// channels. It serves calls in-process through Invoke and over JSON-RPC
// by implementing jrpc2.Assigner, with method names of the form
// "<channel>.<method>".
package messenger

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/warpdl/cookiebridge/pkg/logger"
)

// codeCallError is the JSON-RPC code of error replies. The reply's own
// code travels in the message and data fields.
const codeCallError = jrpc2.Code(-32000)

// MethodCallHandler handles calls arriving on a channel. It must reply
// through result exactly once, possibly after returning.
type MethodCallHandler interface {
	OnMethodCall(ctx context.Context, call *MethodCall, result Result)
}

// MethodCallHandlerFunc adapts a function to MethodCallHandler.
type MethodCallHandlerFunc func(ctx context.Context, call *MethodCall, result Result)

func (f MethodCallHandlerFunc) OnMethodCall(ctx context.Context, call *MethodCall, result Result) {
	f(ctx, call, result)
}

// Messenger holds the channel to handler routing table.
type Messenger struct {
	mu       sync.RWMutex
	handlers map[string]MethodCallHandler
	log      logger.Logger
}

// New returns an empty Messenger. l may be nil.
func New(l logger.Logger) *Messenger {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Messenger{
		handlers: make(map[string]MethodCallHandler),
		log:      l,
	}
}

// Channel returns a handle for the named channel.
func (m *Messenger) Channel(name string) *MethodChannel {
	return &MethodChannel{name: name, m: m}
}

// Channels lists the channels that currently have a handler.
func (m *Messenger) Channels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.handlers))
	for name := range m.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Messenger) handler(channel string) MethodCallHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handlers[channel]
}

// Invoke dispatches call to the handler on channel and waits for its
// reply. A channel without a handler yields a NotImplemented outcome.
// The error is non-nil only when ctx ends before the reply.
func (m *Messenger) Invoke(ctx context.Context, channel string, call *MethodCall) (Outcome, error) {
	h := m.handler(channel)
	if h == nil {
		return Outcome{Kind: OutcomeNotImplemented}, nil
	}
	r := newReply(channel+"."+call.Method, m.log)
	h.OnMethodCall(ctx, call, r)
	select {
	case o := <-r.done:
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Assign implements jrpc2.Assigner. Methods on channels without a
// handler are left unassigned, which jrpc2 reports as method not found.
func (m *Messenger) Assign(_ context.Context, method string) jrpc2.Handler {
	channel, name, ok := splitMethod(method)
	if !ok || m.handler(channel) == nil {
		return nil
	}
	return func(ctx context.Context, req *jrpc2.Request) (any, error) {
		var params json.RawMessage
		if req.HasParams() {
			if err := req.UnmarshalParams(&params); err != nil {
				return nil, &jrpc2.Error{Code: jrpc2.InvalidParams, Message: err.Error()}
			}
		}
		call, err := NewRawMethodCall(name, params)
		if err != nil {
			return nil, &jrpc2.Error{Code: jrpc2.InvalidParams, Message: err.Error()}
		}
		o, err := m.Invoke(ctx, channel, call)
		if err != nil {
			return nil, err
		}
		return outcomeResult(method, o)
	}
}

// splitMethod splits "a.b.c" into channel "a.b" and method "c".
func splitMethod(method string) (channel, name string, ok bool) {
	i := strings.LastIndexByte(method, '.')
	if i <= 0 || i == len(method)-1 {
		return "", "", false
	}
	return method[:i], method[i+1:], true
}

func outcomeResult(method string, o Outcome) (any, error) {
	switch o.Kind {
	case OutcomeSuccess:
		return o.Value, nil
	case OutcomeError:
		data, err := json.Marshal(o.Err)
		if err != nil {
			data = nil
		}
		return nil, &jrpc2.Error{Code: codeCallError, Message: o.Err.Code, Data: data}
	default:
		return nil, &jrpc2.Error{Code: jrpc2.MethodNotFound, Message: "method not implemented: " + method}
	}
}

// MethodChannel is a named route on a Messenger.
type MethodChannel struct {
	name string
	m    *Messenger
}

// Name returns the channel name.
func (c *MethodChannel) Name() string {
	return c.name
}

// SetMethodCallHandler routes the channel to h, replacing any previous
// handler. A nil h unregisters the channel.
func (c *MethodChannel) SetMethodCallHandler(h MethodCallHandler) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	if h == nil {
		delete(c.m.handlers, c.name)
		return
	}
	c.m.handlers[c.name] = h
}

// ClearMethodCallHandler unregisters the channel only if it still routes
// to h. It reports whether a route was removed.
func (c *MethodChannel) ClearMethodCallHandler(h MethodCallHandler) bool {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	cur, ok := c.m.handlers[c.name]
	if !ok || !sameHandler(cur, h) {
		return false
	}
	delete(c.m.handlers, c.name)
	return true
}

// sameHandler compares handlers by identity. Function handlers are not
// comparable with ==, so they compare by code pointer.
func sameHandler(a, b MethodCallHandler) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Kind() == reflect.Func {
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	if !ta.Comparable() {
		return false
	}
	return a == b
}

var _ jrpc2.Assigner = (*Messenger)(nil)
