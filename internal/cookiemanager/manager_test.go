package cookiemanager

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/warpdl/cookiebridge/internal/messenger"
	"github.com/warpdl/cookiebridge/pkg/cookiestore"
)

const testChannel = "cookies"

func newTestManager(t *testing.T, level int, opts ...Option) (*messenger.Messenger, *CookieManager, *cookiestore.Store) {
	t.Helper()
	m := messenger.New(nil)
	store := cookiestore.New(cookiestore.NewMemoryJar(), cookiestore.CapabilitiesForLevel(level), nil)
	return m, New(m, testChannel, store, nil, opts...), store
}

func invoke(t *testing.T, m *messenger.Messenger, method string, args map[string]any) messenger.Outcome {
	t.Helper()
	call, err := messenger.NewMethodCall(method, args)
	if err != nil {
		t.Fatalf("NewMethodCall: %v", err)
	}
	o, err := m.Invoke(context.Background(), testChannel, call)
	if err != nil {
		t.Fatalf("Invoke %s: %v", method, err)
	}
	return o
}

func expectError(t *testing.T, o messenger.Outcome, code string) {
	t.Helper()
	if o.Kind != messenger.OutcomeError || o.Err.Code != code {
		t.Fatalf("expected error %q, got %v %+v", code, o.Kind, o.Err)
	}
}

func TestGetCookies_FreshURL(t *testing.T) {
	m, _, _ := newTestManager(t, cookiestore.LevelModern)
	o := invoke(t, m, MethodGetCookies, map[string]any{"url": "https://fresh.example.com/"})
	if o.Kind != messenger.OutcomeSuccess || o.Value != "" {
		t.Fatalf("expected empty header, got %+v", o)
	}
}

func TestGetCookies_MissingURL(t *testing.T) {
	m, _, _ := newTestManager(t, cookiestore.LevelModern)
	expectError(t, invoke(t, m, MethodGetCookies, nil), ErrCodeMissingURL)
	expectError(t, invoke(t, m, MethodGetCookies, map[string]any{"url": nil}), ErrCodeMissingURL)
}

func TestSetCookies_RoundTrip(t *testing.T) {
	for _, level := range []int{cookiestore.LevelLegacy, cookiestore.LevelModern} {
		m, _, _ := newTestManager(t, level)
		url := "https://example.com/"
		o := invoke(t, m, MethodSetCookies, map[string]any{
			"url":     url,
			"cookies": []string{"a=1", "b=2; Path=/", "c=3; Max-Age=60"},
		})
		if o.Kind != messenger.OutcomeSuccess || o.Value != true {
			t.Fatalf("level %d: setCookies = %+v", level, o)
		}

		o = invoke(t, m, MethodGetCookies, map[string]any{"url": url})
		header, _ := o.Value.(string)
		for _, name := range []string{"a=", "b=", "c="} {
			if !strings.Contains(header, name) {
				t.Errorf("level %d: %s missing from %q", level, name, header)
			}
		}
	}
}

func TestSetCookies_EmptyList(t *testing.T) {
	m, _, store := newTestManager(t, cookiestore.LevelModern)
	o := invoke(t, m, MethodSetCookies, map[string]any{"url": "https://example.com", "cookies": []string{}})
	if o.Kind != messenger.OutcomeSuccess || o.Value != true {
		t.Fatalf("expected true, got %+v", o)
	}
	if store.HasCookies() {
		t.Fatal("empty list changed the store")
	}
}

func TestArguments_WrongTypeKeepsCodeWithMessage(t *testing.T) {
	m, _, store := newTestManager(t, cookiestore.LevelModern)

	o := invoke(t, m, MethodGetCookies, map[string]any{"url": 5})
	expectError(t, o, ErrCodeMissingURL)
	if !strings.Contains(o.Err.Message, `"url"`) {
		t.Fatalf("message = %q", o.Err.Message)
	}

	o = invoke(t, m, MethodSetCookies, map[string]any{"url": "https://example.com/", "cookies": "a=1"})
	expectError(t, o, ErrCodeMissingCookies)
	if !strings.Contains(o.Err.Message, `"cookies"`) {
		t.Fatalf("message = %q", o.Err.Message)
	}
	if store.CookieHeader("https://example.com/") != "" {
		t.Fatal("store changed by a rejected call")
	}

	o = invoke(t, m, MethodGetCookies, nil)
	expectError(t, o, ErrCodeMissingURL)
	if o.Err.Message != "" {
		t.Fatalf("absent argument message = %q, want empty", o.Err.Message)
	}
}

func TestSetCookies_MissingArguments(t *testing.T) {
	m, _, store := newTestManager(t, cookiestore.LevelModern)

	expectError(t, invoke(t, m, MethodSetCookies, map[string]any{"url": "https://example.com"}), ErrCodeMissingCookies)
	expectError(t, invoke(t, m, MethodSetCookies, map[string]any{"url": "https://example.com", "cookies": nil}), ErrCodeMissingCookies)
	expectError(t, invoke(t, m, MethodSetCookies, map[string]any{"cookies": []string{"a=1"}}), ErrCodeMissingURL)

	if store.HasCookies() {
		t.Fatal("store changed by a rejected call")
	}
}

func TestSetCookies_UnknownHost(t *testing.T) {
	m, _, _ := newTestManager(t, cookiestore.LevelModern)
	expectError(t, invoke(t, m, MethodSetCookies, map[string]any{"url": "http://", "cookies": []string{"a=1"}}), ErrCodeSetFailed)
}

func TestClearCookies(t *testing.T) {
	for _, level := range []int{cookiestore.LevelLegacy, cookiestore.LevelModern} {
		m, _, store := newTestManager(t, level)

		if o := invoke(t, m, MethodClearCookies, nil); o.Value != false {
			t.Fatalf("level %d: clear on empty store = %+v", level, o)
		}
		invoke(t, m, MethodSetCookies, map[string]any{"url": "https://example.com", "cookies": []string{"a=1"}})
		if o := invoke(t, m, MethodClearCookies, nil); o.Value != true {
			t.Fatalf("level %d: clear on filled store = %+v", level, o)
		}
		if store.HasCookies() {
			t.Fatalf("level %d: store not empty after clear", level)
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	m, _, _ := newTestManager(t, cookiestore.LevelModern)
	if o := invoke(t, m, "deleteCookie", nil); o.Kind != messenger.OutcomeNotImplemented {
		t.Fatalf("expected not implemented, got %v", o.Kind)
	}
}

func TestDispose(t *testing.T) {
	m, c, _ := newTestManager(t, cookiestore.LevelModern)
	c.Dispose()
	c.Dispose()

	if o := invoke(t, m, MethodGetCookies, map[string]any{"url": "https://example.com"}); o.Kind != messenger.OutcomeNotImplemented {
		t.Fatalf("disposed manager still routed: %v", o.Kind)
	}
}

func TestDispose_KeepsReplacement(t *testing.T) {
	m, old, store := newTestManager(t, cookiestore.LevelModern)
	New(m, testChannel, store, nil)
	old.Dispose()

	if o := invoke(t, m, MethodGetCookies, map[string]any{"url": "https://example.com"}); o.Kind != messenger.OutcomeSuccess {
		t.Fatalf("dispose of replaced manager removed the new route: %v", o.Kind)
	}
}

type stubPolicy struct {
	out []string
	err error
	got []string
}

func (p *stubPolicy) Apply(_ string, cookies []string) ([]string, error) {
	p.got = cookies
	return p.out, p.err
}

func TestSetCookies_Policy(t *testing.T) {
	p := &stubPolicy{out: []string{"kept=1"}}
	m, _, store := newTestManager(t, cookiestore.LevelModern, WithPolicy(p))

	invoke(t, m, MethodSetCookies, map[string]any{"url": "https://example.com", "cookies": []string{"kept=1", "tracker=1"}})
	if len(p.got) != 2 {
		t.Fatalf("policy saw %v", p.got)
	}
	if h := store.CookieHeader("https://example.com"); h != "kept=1" {
		t.Fatalf("header = %q, want kept=1", h)
	}
}

func TestSetCookies_PolicyError(t *testing.T) {
	p := &stubPolicy{err: errors.New("script threw")}
	m, _, store := newTestManager(t, cookiestore.LevelModern, WithPolicy(p))

	o := invoke(t, m, MethodSetCookies, map[string]any{"url": "https://example.com", "cookies": []string{"a=1"}})
	expectError(t, o, ErrCodeSetFailed)
	if !strings.Contains(o.Err.Message, "script threw") {
		t.Fatalf("message = %q", o.Err.Message)
	}
	if store.HasCookies() {
		t.Fatal("store changed after policy failure")
	}
}

type failingStore struct{}

func (failingStore) CookieHeader(string) string { return "" }
func (failingStore) SetCookies(string, []string) error {
	return errors.New("disk full")
}
func (failingStore) ClearAll(context.Context) (bool, error) {
	return false, errors.New("disk full")
}

func TestStoreFailures(t *testing.T) {
	m := messenger.New(nil)
	New(m, testChannel, failingStore{}, nil)

	expectError(t, invoke(t, m, MethodSetCookies, map[string]any{"url": "https://example.com", "cookies": []string{"a=1"}}), ErrCodeSetFailed)
	expectError(t, invoke(t, m, MethodClearCookies, nil), ErrCodeClearFailed)
}
