package nativehost

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/warpdl/cookiebridge/common"
	"github.com/warpdl/cookiebridge/internal/cookiemanager"
	"github.com/warpdl/cookiebridge/internal/messenger"
	"github.com/warpdl/cookiebridge/pkg/cookiecli"
	"github.com/warpdl/cookiebridge/pkg/cookiestore"
)

// newDaemonClient serves a memory backed daemon over a pipe.
func newDaemonClient(t *testing.T) *cookiecli.Client {
	t.Helper()
	m := messenger.New(nil)
	store := cookiestore.New(cookiestore.NewMemoryJar(), cookiestore.DefaultCapabilities(), nil)
	cookiemanager.New(m, common.CookieChannel, store, nil)
	cookiemanager.NewSystem(m, common.SystemChannel, cookiemanager.VersionResult{Version: "2.0.0"}, cookiestore.DefaultCapabilities())

	sc, cc := net.Pipe()
	srv := jrpc2.NewServer(m, &jrpc2.ServerOptions{Concurrency: 1}).Start(channel.Line(sc, sc))
	c := cookiecli.NewClientWithConn(cc)
	t.Cleanup(func() {
		c.Close()
		srv.Stop()
	})
	return c
}

// frame encodes requests in native messaging format.
func frame(t *testing.T, reqs ...string) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	for _, r := range reqs {
		if err := WriteMessage(&buf, []byte(r)); err != nil {
			t.Fatal(err)
		}
	}
	return &buf
}

func readResponses(t *testing.T, r io.Reader) []Response {
	t.Helper()
	var out []Response
	for {
		msg, err := ReadMessage(r)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatal(err)
		}
		var resp Response
		if err := json.Unmarshal(msg, &resp); err != nil {
			t.Fatal(err)
		}
		out = append(out, resp)
	}
}

func runHost(t *testing.T, client Client, reqs ...string) []Response {
	t.Helper()
	var stdout bytes.Buffer
	h := NewHost(client)
	h.stdin = frame(t, reqs...)
	h.stdout = &stdout
	if err := h.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return readResponses(t, &stdout)
}

func TestHost_CookieRoundTrip(t *testing.T) {
	resps := runHost(t, newDaemonClient(t),
		`{"id":1,"method":"getCookies","message":{"url":"https://example.com/"}}`,
		`{"id":2,"method":"setCookies","message":{"url":"https://example.com/","cookies":["sid=1"]}}`,
		`{"id":3,"method":"getCookies","message":{"url":"https://example.com/"}}`,
		`{"id":4,"method":"clearCookies"}`,
		`{"id":5,"method":"clearCookies"}`,
	)
	if len(resps) != 5 {
		t.Fatalf("got %d responses", len(resps))
	}
	want := []any{"", true, "sid=1", true, false}
	for i, r := range resps {
		if r.ID != i+1 || !r.Ok {
			t.Fatalf("response %d = %+v", i, r)
		}
		if r.Result != want[i] {
			t.Errorf("response %d result = %#v, want %#v", r.ID, r.Result, want[i])
		}
	}
}

func TestHost_DaemonErrorCodes(t *testing.T) {
	resps := runHost(t, newDaemonClient(t),
		`{"id":1,"method":"getCookies","message":{}}`,
		`{"id":2,"method":"setCookies","message":{"url":"https://example.com/"}}`,
	)
	if len(resps) != 2 {
		t.Fatalf("got %d responses", len(resps))
	}
	if resps[0].Ok || resps[0].Code != cookiemanager.ErrCodeMissingURL {
		t.Errorf("getCookies without url = %+v", resps[0])
	}
	if resps[1].Ok || resps[1].Code != cookiemanager.ErrCodeMissingCookies {
		t.Errorf("setCookies without cookies = %+v", resps[1])
	}
}

func TestHost_Version(t *testing.T) {
	resps := runHost(t, newDaemonClient(t), `{"id":9,"method":"version"}`)
	if len(resps) != 1 || !resps[0].Ok {
		t.Fatalf("responses = %+v", resps)
	}
	v, ok := resps[0].Result.(map[string]any)
	if !ok || v["version"] != "2.0.0" {
		t.Fatalf("version result = %#v", resps[0].Result)
	}
}

func TestHost_UnknownMethodAndBadJSON(t *testing.T) {
	resps := runHost(t, newDaemonClient(t),
		`{"id":1,"method":"download"}`,
		`not json`,
	)
	if len(resps) != 2 {
		t.Fatalf("got %d responses", len(resps))
	}
	if resps[0].Ok || resps[0].ID != 1 || resps[0].Error != "unknown method: download" {
		t.Errorf("unknown method = %+v", resps[0])
	}
	if resps[1].Ok || resps[1].ID != 0 {
		t.Errorf("bad json = %+v", resps[1])
	}
}

func TestHost_TruncatedInput(t *testing.T) {
	h := NewHost(newDaemonClient(t))
	h.stdin = bytes.NewReader([]byte{9, 0, 0, 0, '{'})
	h.stdout = io.Discard
	if err := h.Run(); err == nil {
		t.Fatal("truncated message should end Run with an error")
	}
}
