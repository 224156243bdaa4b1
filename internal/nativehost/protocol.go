// Package nativehost lets a browser extension reach the cookie daemon
// through native messaging: each message on stdin and stdout is a 4-byte
// little-endian length followed by a JSON payload.
package nativehost

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/creachadair/jrpc2"
)

// MaxMessageSize is the largest message a browser sends to a host.
const MaxMessageSize = 1 << 20

const headerLen = 4

// ErrMessageTooLarge is returned for frames over MaxMessageSize.
var ErrMessageTooLarge = errors.New("native message too large")

// Request is a message from the extension. ID correlates the reply.
type Request struct {
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Message json.RawMessage `json:"message,omitempty"`
}

// Response is sent back for every Request. Code carries the daemon's
// error code when the daemon rejected the call.
type Response struct {
	ID     int    `json:"id"`
	Ok     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
	Result any    `json:"result,omitempty"`
}

// ReadMessage reads one framed payload. A clean end of input before the
// header is reported as io.EOF.
func ReadMessage(r io.Reader) ([]byte, error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteMessage frames msg and writes header and payload in one call.
func WriteMessage(w io.Writer, msg []byte) error {
	if len(msg) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(msg))
	}
	frame := make([]byte, headerLen+len(msg))
	binary.LittleEndian.PutUint32(frame, uint32(len(msg)))
	copy(frame[headerLen:], msg)
	_, err := w.Write(frame)
	return err
}

func ParseRequest(b []byte) (*Request, error) {
	req := new(Request)
	if err := json.Unmarshal(b, req); err != nil {
		return nil, err
	}
	return req, nil
}

func MakeSuccessResponse(id int, result any) []byte {
	return encodeResponse(Response{ID: id, Ok: true, Result: result})
}

// MakeErrorResponse reports a failure that did not come from the daemon.
func MakeErrorResponse(id int, err error) []byte {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return encodeResponse(Response{ID: id, Error: msg})
}

// rejectedResponse reports a daemon rejection. The daemon puts its
// cookie error code in the message of the JSON-RPC error.
func rejectedResponse(id int, e *jrpc2.Error) []byte {
	return encodeResponse(Response{ID: id, Error: e.Error(), Code: e.Message})
}

func encodeResponse(r Response) []byte {
	b, err := json.Marshal(r)
	if err != nil {
		b, _ = json.Marshal(Response{ID: r.ID, Error: err.Error()})
	}
	return b
}
