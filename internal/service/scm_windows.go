//go:build windows

package service

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

// scmErrors maps SCM error codes onto the package's sentinels.
var scmErrors = map[windows.Errno]error{
	windows.ERROR_SERVICE_DOES_NOT_EXIST:  ErrServiceNotFound,
	windows.ERROR_SERVICE_EXISTS:          ErrServiceExists,
	windows.ERROR_SERVICE_ALREADY_RUNNING: ErrServiceAlreadyRunning,
	windows.ERROR_SERVICE_NOT_ACTIVE:      ErrServiceNotRunning,
}

// scmError wraps err with the operation and service name. Known SCM
// codes also match their sentinel under errors.Is.
func scmError(op, name string, err error) error {
	var errno windows.Errno
	if errors.As(err, &errno) {
		if sentinel, ok := scmErrors[errno]; ok {
			return fmt.Errorf("%s service %q: %w (%w)", op, name, sentinel, err)
		}
	}
	return fmt.Errorf("%s service %q: %w", op, name, err)
}

type scm struct {
	m *mgr.Mgr
}

type scmService struct {
	name string
	s    *mgr.Service
}

// OpenSCManager connects to the local Service Control Manager. The
// caller closes it.
func OpenSCManager() (SCManagerInterface, error) {
	m, err := mgr.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect to service control manager: %w", err)
	}
	return &scm{m: m}, nil
}

func (c *scm) OpenService(name string) (ServiceInterface, error) {
	s, err := c.m.OpenService(name)
	if err != nil {
		return nil, scmError("open", name, err)
	}
	return &scmService{name: name, s: s}, nil
}

// CreateService registers name as an own-process service. The SCM
// refuses a duplicate name, which surfaces as ErrServiceExists.
func (c *scm) CreateService(name, exePath string, config ServiceConfig) (ServiceInterface, error) {
	s, err := c.m.CreateService(name, exePath, mgr.Config{
		DisplayName:  config.DisplayName,
		Description:  config.Description,
		StartType:    config.StartType,
		ServiceType:  windows.SERVICE_WIN32_OWN_PROCESS,
		ErrorControl: windows.SERVICE_ERROR_NORMAL,
	}, config.Args...)
	if err != nil {
		return nil, scmError("create", name, err)
	}
	return &scmService{name: name, s: s}, nil
}

func (c *scm) Close() error {
	return c.m.Disconnect()
}

func (s *scmService) Start() error {
	if err := s.s.Start(); err != nil {
		return scmError("start", s.name, err)
	}
	return nil
}

func (s *scmService) Stop() error {
	if _, err := s.s.Control(svc.Stop); err != nil {
		return scmError("stop", s.name, err)
	}
	return nil
}

func (s *scmService) Delete() error {
	if err := s.s.Delete(); err != nil {
		return scmError("delete", s.name, err)
	}
	return nil
}

func (s *scmService) Status() (ServiceStatus, error) {
	st, err := s.s.Query()
	if err != nil {
		return 0, scmError("query", s.name, err)
	}
	return ServiceStatus(st.State), nil
}

func (s *scmService) Close() error {
	return s.s.Close()
}
