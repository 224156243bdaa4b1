package nativehost

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/creachadair/jrpc2"
)

func TestReadMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    []byte
		wantErr bool
	}{
		{
			name:  "simple message",
			input: append([]byte{5, 0, 0, 0}, []byte("hello")...),
			want:  []byte("hello"),
		},
		{
			name:  "empty message",
			input: []byte{0, 0, 0, 0},
			want:  []byte{},
		},
		{
			name:    "incomplete header",
			input:   []byte{5, 0},
			wantErr: true,
		},
		{
			name:    "incomplete body",
			input:   append([]byte{10, 0, 0, 0}, []byte("short")...),
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   nil,
			wantErr: true,
		},
		{
			name:    "over the size limit",
			input:   []byte{0, 0, 0x10, 0x01},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadMessage(bytes.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !bytes.Equal(got, tt.want) {
				t.Errorf("ReadMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteMessage(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMessage(&buf, []byte(`{"id":1}`)); err != nil {
		t.Fatal(err)
	}
	want := append([]byte{8, 0, 0, 0}, []byte(`{"id":1}`)...)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("WriteMessage() = %v, want %v", buf.Bytes(), want)
	}

	if err := WriteMessage(&buf, make([]byte, MaxMessageSize+1)); !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("oversized message: err = %v", err)
	}
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"id":7,"method":"getCookies","message":{"url":"https://a.test/"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if req.ID != 7 || req.Method != "getCookies" || string(req.Message) != `{"url":"https://a.test/"}` {
		t.Fatalf("request = %+v", req)
	}
	if _, err := ParseRequest([]byte("{")); err == nil {
		t.Fatal("invalid JSON should fail")
	}
}

func TestMakeResponses(t *testing.T) {
	var ok Response
	if err := json.Unmarshal(MakeSuccessResponse(3, "a=1"), &ok); err != nil {
		t.Fatal(err)
	}
	if ok.ID != 3 || !ok.Ok || ok.Result != "a=1" || ok.Error != "" {
		t.Fatalf("success = %+v", ok)
	}

	var bad Response
	if err := json.Unmarshal(rejectedResponse(4, &jrpc2.Error{Code: 1, Message: "Missing url argument"}), &bad); err != nil {
		t.Fatal(err)
	}
	if bad.ID != 4 || bad.Ok || bad.Error != "[1] Missing url argument" || bad.Code != "Missing url argument" {
		t.Fatalf("error = %+v", bad)
	}

	if err := json.Unmarshal(MakeErrorResponse(5, nil), &bad); err != nil {
		t.Fatal(err)
	}
	if bad.Error != "unknown error" {
		t.Fatalf("nil error = %+v", bad)
	}
}
