package cookiestore

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var testMasterKey = bytes.Repeat([]byte{0x42}, 32)

func openTestJar(t *testing.T, path string, eager bool) *SQLiteJar {
	t.Helper()
	j, err := OpenSQLiteJar(context.Background(), path, SQLiteOptions{
		MasterKey: testMasterKey,
		Eager:     eager,
	})
	if err != nil {
		t.Fatalf("OpenSQLiteJar: %v", err)
	}
	return j
}

func countRows(t *testing.T, j *SQLiteJar) int {
	t.Helper()
	var n int
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM cookies`).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func TestSQLiteJar_PersistsAfterFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.db")
	j := openTestJar(t, path, false)
	u := mustURL(t, "https://example.com/")

	_ = j.SetCookie(u, "sid=abc; Max-Age=3600")
	_ = j.SetCookie(u, "lang=en; Max-Age=3600")
	if n := countRows(t, j); n != 0 {
		t.Fatalf("expected buffered writes before Flush, found %d rows", n)
	}
	if err := j.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if n := countRows(t, j); n != 2 {
		t.Fatalf("expected 2 rows after Flush, got %d", n)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := openTestJar(t, path, false)
	defer reopened.Close()
	header := reopened.CookieHeader(u)
	if !strings.Contains(header, "sid=abc") || !strings.Contains(header, "lang=en") {
		t.Fatalf("cookies lost across reopen: %q", header)
	}
}

func TestSQLiteJar_SessionCookieSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.db")
	j := openTestJar(t, path, true)
	_ = j.SetCookie(mustURL(t, "https://example.com/"), "session=1")
	j.Close()

	reopened := openTestJar(t, path, true)
	defer reopened.Close()
	if !reopened.HasCookies() {
		t.Fatal("session cookie should be replayed on open")
	}
}

func TestSQLiteJar_EagerWritesThrough(t *testing.T) {
	j := openTestJar(t, filepath.Join(t.TempDir(), "cookies.db"), true)
	defer j.Close()

	_ = j.SetCookie(mustURL(t, "https://example.com/"), "a=1")
	if n := countRows(t, j); n != 1 {
		t.Fatalf("eager jar should write immediately, got %d rows", n)
	}
}

func TestSQLiteJar_UpsertKeepsOneRow(t *testing.T) {
	j := openTestJar(t, filepath.Join(t.TempDir(), "cookies.db"), true)
	defer j.Close()
	u := mustURL(t, "https://example.com/")

	_ = j.SetCookie(u, "a=1")
	_ = j.SetCookie(u, "a=2")
	if n := countRows(t, j); n != 1 {
		t.Fatalf("expected 1 row for the same identity, got %d", n)
	}
	if h := j.CookieHeader(u); h != "a=2" {
		t.Fatalf("header = %q, want a=2", h)
	}
}

func TestSQLiteJar_ValuesAreSealed(t *testing.T) {
	j := openTestJar(t, filepath.Join(t.TempDir(), "cookies.db"), true)
	defer j.Close()
	_ = j.SetCookie(mustURL(t, "https://example.com/"), "token=supersecretvalue")

	var value []byte
	if err := j.db.QueryRow(`SELECT value FROM cookies`).Scan(&value); err != nil {
		t.Fatalf("select value: %v", err)
	}
	if bytes.Contains(value, []byte("supersecretvalue")) {
		t.Fatal("cookie value stored in plaintext")
	}
}

func TestSQLiteJar_ClearEmptiesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.db")
	j := openTestJar(t, path, false)
	u := mustURL(t, "https://example.com/")
	_ = j.SetCookie(u, "a=1")
	_ = j.Flush()
	_ = j.SetCookie(u, "b=2")

	s := New(j, DefaultCapabilities(), nil)
	had, err := s.ClearAll(context.Background())
	if err != nil || !had {
		t.Fatalf("ClearAll = %v, %v", had, err)
	}
	if n := countRows(t, j); n != 0 {
		t.Fatalf("expected empty table, got %d rows", n)
	}
	// Pending writes were dropped with the clear and Close has nothing to add.
	j.Close()

	reopened := openTestJar(t, path, false)
	defer reopened.Close()
	if reopened.HasCookies() {
		t.Fatal("cleared cookies came back after reopen")
	}
}

func TestSQLiteJar_ExpiredRowsPruned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.db")
	j := openTestJar(t, path, true)
	u := mustURL(t, "https://example.com/")
	_ = j.SetCookie(u, "keep=1; Max-Age=3600")
	_ = j.SetCookie(u, "gone=1; Expires=Thu, 01 Jan 1970 00:00:01 GMT")
	j.Close()

	reopened := openTestJar(t, path, true)
	defer reopened.Close()
	if n := countRows(t, reopened); n != 1 {
		t.Fatalf("expected expired row pruned, %d rows remain", n)
	}
}

func TestSQLiteJar_MaxAgeCountsFromWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.db")
	j := openTestJar(t, path, true)
	u := mustURL(t, "https://example.com/")
	if err := j.SetCookie(u, "sid=abc; Max-Age=1"); err != nil {
		t.Fatal(err)
	}
	j.Close()

	time.Sleep(2 * time.Second)
	reopened := openTestJar(t, path, true)
	defer reopened.Close()
	if h := reopened.CookieHeader(u); h != "" {
		t.Fatalf("expired cookie served after reopen: %q", h)
	}
	if n := countRows(t, reopened); n != 0 {
		t.Fatalf("expired row kept, %d rows remain", n)
	}
}

func TestPersistedForm(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		raw    string
		maxAge int
		want   string
	}{
		{"a=1", 0, "a=1"},
		{"a=1; Max-Age=0", -1, "a=1; Max-Age=0"},
		{"a=1; Path=/x; Max-Age=60; Secure", 60, "a=1; Path=/x; Secure; Expires=Sun, 01 Mar 2026 12:01:00 GMT"},
		{"a=1; expires=Wed, 01 Jan 2031 00:00:00 GMT; max-age=3600", 3600, "a=1; Expires=Sun, 01 Mar 2026 13:00:00 GMT"},
	}
	for _, tt := range tests {
		if got := persistedForm(tt.raw, tt.maxAge, now); got != tt.want {
			t.Errorf("persistedForm(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSQLiteJar_WrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.db")
	j := openTestJar(t, path, true)
	_ = j.SetCookie(mustURL(t, "https://example.com/"), "a=1")
	j.Close()

	_, err := OpenSQLiteJar(context.Background(), path, SQLiteOptions{
		MasterKey: bytes.Repeat([]byte{0x07}, 32),
	})
	if err == nil {
		t.Fatal("expected error opening with a different key")
	}
}

func TestSQLiteJar_EmptyKey(t *testing.T) {
	_, err := OpenSQLiteJar(context.Background(), filepath.Join(t.TempDir(), "c.db"), SQLiteOptions{})
	if err == nil {
		t.Fatal("expected error for empty master key")
	}
}

func TestSQLiteJar_CloseIdempotent(t *testing.T) {
	j := openTestJar(t, filepath.Join(t.TempDir(), "cookies.db"), false)
	_ = j.SetCookie(mustURL(t, "https://example.com/"), "a=1")

	if err := j.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := j.SetCookie(mustURL(t, "https://example.com/"), "b=2"); !errors.Is(err, ErrClosed) {
		t.Fatalf("SetCookie after Close = %v, want ErrClosed", err)
	}
	if err := j.Flush(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Flush after Close = %v, want ErrClosed", err)
	}
}
