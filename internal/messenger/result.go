package messenger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/warpdl/cookiebridge/pkg/logger"
)

// ErrBadParams is returned when call parameters are not a JSON object or
// an argument has the wrong shape.
var ErrBadParams = errors.New("bad params")

// Result receives the single reply of a method call. Handlers may reply
// from another goroutine. Only the first reply counts.
type Result interface {
	Success(v any)
	Error(code, message string, details any)
	NotImplemented()
}

// OutcomeKind classifies a reply.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeError
	OutcomeNotImplemented
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	case OutcomeNotImplemented:
		return "not implemented"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// CallError is the payload of an error reply.
type CallError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func (e *CallError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Outcome is what a handler replied.
type Outcome struct {
	Kind  OutcomeKind
	Value any
	Err   *CallError
}

// reply is the Result handed to handlers by Invoke.
type reply struct {
	method string
	log    logger.Logger
	once   sync.Once
	done   chan Outcome
}

func newReply(method string, l logger.Logger) *reply {
	return &reply{method: method, log: l, done: make(chan Outcome, 1)}
}

func (r *reply) deliver(o Outcome) {
	delivered := false
	r.once.Do(func() {
		r.done <- o
		delivered = true
	})
	if !delivered {
		r.log.Warning("%s: reply %s dropped, call already answered", r.method, o.Kind)
	}
}

func (r *reply) Success(v any) {
	r.deliver(Outcome{Kind: OutcomeSuccess, Value: v})
}

func (r *reply) Error(code, message string, details any) {
	r.deliver(Outcome{Kind: OutcomeError, Err: &CallError{Code: code, Message: message, Details: details}})
}

func (r *reply) NotImplemented() {
	r.deliver(Outcome{Kind: OutcomeNotImplemented})
}
