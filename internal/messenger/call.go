package messenger

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MethodCall is one invocation received on a channel. Arguments are kept
// as raw JSON until a handler asks for them.
type MethodCall struct {
	Method string
	args   map[string]json.RawMessage
}

// NewMethodCall builds a call from Go values. A nil args map yields a
// call without arguments.
func NewMethodCall(method string, args map[string]any) (*MethodCall, error) {
	call := &MethodCall{Method: method, args: make(map[string]json.RawMessage, len(args))}
	for k, v := range args {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal argument %q: %w", k, err)
		}
		call.args[k] = data
	}
	return call, nil
}

// NewRawMethodCall builds a call from a JSON params document. Params must
// be an object, null, or empty.
func NewRawMethodCall(method string, params json.RawMessage) (*MethodCall, error) {
	call := &MethodCall{Method: method, args: map[string]json.RawMessage{}}
	if isNull(params) {
		return call, nil
	}
	if err := json.Unmarshal(params, &call.args); err != nil {
		return nil, fmt.Errorf("%w: params must be an object", ErrBadParams)
	}
	if call.args == nil {
		call.args = map[string]json.RawMessage{}
	}
	return call, nil
}

// Argument decodes the argument key into dst. It reports false when the
// argument is absent or JSON null, leaving dst untouched.
func (c *MethodCall) Argument(key string, dst any) (bool, error) {
	raw, ok := c.args[key]
	if !ok || isNull(raw) {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("%w: argument %q: %v", ErrBadParams, key, err)
	}
	return true, nil
}

// HasArgument reports whether key is present and not null.
func (c *MethodCall) HasArgument(key string) bool {
	raw, ok := c.args[key]
	return ok && !isNull(raw)
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
