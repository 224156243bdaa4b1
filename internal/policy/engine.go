// Package policy runs cookie policy scripts. A policy is a JavaScript
// module exporting matches, an array of regular expressions tested
// against the target URL, and onSetCookie(url, cookie). A string
// returned by onSetCookie replaces the cookie; null or undefined drops
// it. A module without matches applies to every URL.
package policy

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
	"github.com/spf13/afero"
	"github.com/warpdl/cookiebridge/pkg/logger"
)

// DefaultTimeout bounds one onSetCookie call.
const DefaultTimeout = 2 * time.Second

// Module is a loaded policy script.
type Module struct {
	Name    string
	Path    string
	matches []*regexp.Regexp
	hook    goja.Callable
}

// Matches reports whether the module applies to rawURL.
func (m *Module) Matches(rawURL string) bool {
	if len(m.matches) == 0 {
		return true
	}
	for _, re := range m.matches {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// Engine holds the policy modules. All modules share one runtime, which
// is not safe for concurrent use, so calls are serialized.
type Engine struct {
	mu      sync.Mutex
	vm      *goja.Runtime
	req     *require.RequireModule
	modules []*Module
	log     logger.Logger
	timeout time.Duration
}

// NewEngine returns an engine without modules reading scripts from fsys.
func NewEngine(fsys afero.Fs, l logger.Logger) *Engine {
	if l == nil {
		l = logger.NewNopLogger()
	}
	l = logger.Named(l, "policy")
	vm, req := newRuntime(fsys, l)
	return &Engine{
		vm:      vm,
		req:     req,
		log:     l,
		timeout: DefaultTimeout,
	}
}

// Load returns an engine with every *.js file of dir loaded in name
// order. A missing dir yields an empty engine.
func Load(fsys afero.Fs, dir string, l logger.Logger) (*Engine, error) {
	e := NewEngine(fsys, l)
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if ok, _ := afero.DirExists(fsys, dir); !ok {
			return e, nil
		}
		return nil, fmt.Errorf("read policy dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".js") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := e.AddModule(filepath.Join(dir, name)); err != nil {
			return nil, fmt.Errorf("load policy %s: %w", name, err)
		}
	}
	return e, nil
}

// SetTimeout changes the per-call script timeout.
func (e *Engine) SetTimeout(d time.Duration) {
	e.mu.Lock()
	e.timeout = d
	e.mu.Unlock()
}

// AddModule loads the script at file and appends it to the chain.
func (e *Engine) AddModule(file string) (*Module, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := filepath.ToSlash(file)
	if !path.IsAbs(p) && !strings.HasPrefix(p, "./") && !strings.HasPrefix(p, "../") {
		p = "./" + p
	}
	exports, err := e.req.Require(p)
	if err != nil {
		return nil, err
	}
	obj := exports.ToObject(e.vm)

	hook, ok := goja.AssertFunction(obj.Get("onSetCookie"))
	if !ok {
		return nil, ErrHookNotDefined
	}
	matches, err := e.compileMatches(obj.Get("matches"))
	if err != nil {
		return nil, err
	}

	m := &Module{
		Name:    strings.TrimSuffix(filepath.Base(file), ".js"),
		Path:    file,
		matches: matches,
		hook:    hook,
	}
	e.modules = append(e.modules, m)
	e.log.Info("loaded %s with %d patterns", m.Name, len(matches))
	return m, nil
}

func (e *Engine) compileMatches(v goja.Value) ([]*regexp.Regexp, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	var patterns []string
	if err := e.vm.ExportTo(v, &patterns); err != nil {
		return nil, ErrInvalidMatches
	}
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMatches, err)
		}
		res = append(res, re)
	}
	return res, nil
}

// Modules returns the names of the loaded modules in chain order.
func (e *Engine) Modules() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, len(e.modules))
	for i, m := range e.modules {
		names[i] = m.Name
	}
	return names
}

// Apply passes every cookie through the matching modules in order. The
// output of one module feeds the next; a dropped cookie leaves the chain.
// The result is never nil.
func (e *Engine) Apply(rawURL string, cookies []string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var chain []*Module
	for _, m := range e.modules {
		if m.Matches(rawURL) {
			chain = append(chain, m)
		}
	}
	if len(chain) == 0 {
		return cookies, nil
	}

	out := make([]string, 0, len(cookies))
	for _, c := range cookies {
		kept := true
		for _, m := range chain {
			next, keep, err := e.call(m, rawURL, c)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m.Name, err)
			}
			if !keep {
				kept = false
				break
			}
			c = next
		}
		if kept {
			out = append(out, c)
		}
	}
	return out, nil
}

func (e *Engine) call(m *Module, rawURL, cookie string) (string, bool, error) {
	var (
		imu      sync.Mutex
		finished bool
	)
	timer := time.AfterFunc(e.timeout, func() {
		imu.Lock()
		defer imu.Unlock()
		if !finished {
			e.vm.Interrupt(ErrTimeout)
		}
	})
	defer func() {
		imu.Lock()
		finished = true
		imu.Unlock()
		timer.Stop()
		e.vm.ClearInterrupt()
	}()

	v, err := m.hook(goja.Undefined(), e.vm.ToValue(rawURL), e.vm.ToValue(cookie))
	if err != nil {
		if ie, ok := err.(*goja.InterruptedError); ok {
			if v, ok := ie.Value().(error); ok {
				return "", false, v
			}
		}
		return "", false, err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "", false, nil
	}
	s, ok := v.Export().(string)
	if !ok {
		return "", false, ErrInvalidReturnType
	}
	return s, true, nil
}
