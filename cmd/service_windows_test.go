//go:build windows

package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/warpdl/cookiebridge/internal/service"
)

type memSCM struct {
	services map[string]*memService
}

func (m *memSCM) OpenService(name string) (service.ServiceInterface, error) {
	s, ok := m.services[name]
	if !ok {
		return nil, service.ErrServiceNotFound
	}
	return s, nil
}

func (m *memSCM) CreateService(name, exePath string, cfg service.ServiceConfig) (service.ServiceInterface, error) {
	if _, ok := m.services[name]; ok {
		return nil, service.ErrServiceExists
	}
	s := &memService{args: cfg.Args, status: service.StatusStopped}
	m.services[name] = s
	return s, nil
}

func (m *memSCM) Close() error { return nil }

type memService struct {
	args   []string
	status service.ServiceStatus
}

func (s *memService) Start() error                           { s.status = service.StatusRunning; return nil }
func (s *memService) Stop() error                            { s.status = service.StatusStopped; return nil }
func (s *memService) Delete() error                          { return nil }
func (s *memService) Status() (service.ServiceStatus, error) { return s.status, nil }
func (s *memService) Close() error                           { return nil }

func useMemSCM(t *testing.T, admin bool) *memSCM {
	t.Helper()
	scm := &memSCM{services: map[string]*memService{}}
	origAdmin, origOpen, origInstall, origRemove := isAdminFunc, openSCManager, installSource, removeSource
	isAdminFunc = func() bool { return admin }
	openSCManager = func() (service.SCManagerInterface, error) { return scm, nil }
	installSource = func(string) error { return nil }
	removeSource = func(string) error { return nil }
	t.Cleanup(func() {
		isAdminFunc, openSCManager, installSource, removeSource = origAdmin, origOpen, origInstall, origRemove
	})
	return scm
}

func TestServiceInstall_RequiresAdmin(t *testing.T) {
	useMemSCM(t, false)
	ctx, _ := newTestContext(t, "service", nil)
	if err := serviceInstall(ctx); !errors.Is(err, ErrRequiresAdmin) {
		t.Fatalf("err = %v", err)
	}
}

func TestServiceLifecycle(t *testing.T) {
	scm := useMemSCM(t, true)
	ctx, out := newTestContext(t, "service", nil)
	if err := serviceInstall(ctx); err != nil {
		t.Fatal(err)
	}
	s := scm.services["CookieBridge"]
	if s == nil || len(s.args) != 1 || s.args[0] != "daemon" {
		t.Fatalf("service = %+v", s)
	}
	if err := serviceStart(ctx); err != nil {
		t.Fatal(err)
	}
	if err := serviceStatus(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Running") {
		t.Fatalf("output = %q", out.String())
	}
	if err := serviceStop(ctx); err != nil {
		t.Fatal(err)
	}
	if err := serviceUninstall(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestServiceStatus_NotInstalled(t *testing.T) {
	useMemSCM(t, false)
	ctx, _ := newTestContext(t, "service", nil)
	err := serviceStatus(ctx)
	if err == nil || !strings.Contains(err.Error(), "not installed") {
		t.Fatalf("err = %v", err)
	}
}
