//go:build !windows

package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/warpdl/cookiebridge/common"
)

func testSocketPath(t *testing.T) string {
	t.Helper()
	// t.TempDir can exceed the sun_path limit on macOS.
	dir, err := os.MkdirTemp("", "cb")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "cb.sock")
}

func TestServer_UnixSocket(t *testing.T) {
	path := testSocketPath(t)
	t.Setenv(common.SocketPathEnv, path)

	s, stop := startTestServer(t)
	if s.Addr().Network() != "unix" {
		t.Fatalf("network = %s, want unix", s.Addr().Network())
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat socket: %v", err)
	}
	if perm := fi.Mode().Perm(); perm&0077 != 0 {
		t.Fatalf("socket mode = %o, want no group or other bits", perm)
	}

	cli := dialTestClient(t, s.Addr())
	var got string
	if err := cli.CallResult(context.Background(), "test.echo", map[string]any{"value": "unix"}, &got); err != nil {
		t.Fatalf("echo: %v", err)
	}
	if got != "unix" {
		t.Fatalf("echo = %q", got)
	}
	cli.Close()
	stop()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("socket not removed after shutdown: %v", err)
	}
}

func TestServer_StaleSocketReplaced(t *testing.T) {
	path := testSocketPath(t)
	t.Setenv(common.SocketPathEnv, path)
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}
	s, stop := startTestServer(t)
	defer stop()
	if s.Addr().Network() != "unix" {
		t.Fatalf("network = %s, want unix", s.Addr().Network())
	}
}

func TestServer_UnixFallsBackToTCP(t *testing.T) {
	t.Setenv(common.SocketPathEnv, filepath.Join(t.TempDir(), "missing", "dir", "cb.sock"))
	s, stop := startTestServer(t)
	defer stop()
	if s.Addr().Network() != "tcp" {
		t.Fatalf("network = %s, want tcp fallback", s.Addr().Network())
	}
}
