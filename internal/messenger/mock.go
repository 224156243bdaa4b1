package messenger

import (
	"context"
	"sync"
	"time"
)

// MockResult records replies for handler tests.
type MockResult struct {
	mu       sync.Mutex
	outcomes []Outcome
	ch       chan struct{}
}

// NewMockResult returns an empty recorder.
func NewMockResult() *MockResult {
	return &MockResult{ch: make(chan struct{}, 16)}
}

func (m *MockResult) record(o Outcome) {
	m.mu.Lock()
	m.outcomes = append(m.outcomes, o)
	m.mu.Unlock()
	select {
	case m.ch <- struct{}{}:
	default:
	}
}

func (m *MockResult) Success(v any) {
	m.record(Outcome{Kind: OutcomeSuccess, Value: v})
}

func (m *MockResult) Error(code, message string, details any) {
	m.record(Outcome{Kind: OutcomeError, Err: &CallError{Code: code, Message: message, Details: details}})
}

func (m *MockResult) NotImplemented() {
	m.record(Outcome{Kind: OutcomeNotImplemented})
}

// Outcomes returns every reply received so far.
func (m *MockResult) Outcomes() []Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Outcome, len(m.outcomes))
	copy(out, m.outcomes)
	return out
}

// Wait blocks until at least one reply arrived or timeout passes, and
// returns the first reply.
func (m *MockResult) Wait(timeout time.Duration) (Outcome, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for {
		if o := m.Outcomes(); len(o) > 0 {
			return o[0], true
		}
		select {
		case <-m.ch:
		case <-ctx.Done():
			return Outcome{}, false
		}
	}
}
