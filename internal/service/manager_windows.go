//go:build windows

package service

import (
	"errors"
	"fmt"
)

var (
	ErrServiceExists         = errors.New("service already exists")
	ErrServiceNotFound       = errors.New("service not found")
	ErrServiceAlreadyRunning = errors.New("service is already running")
	ErrServiceNotRunning     = errors.New("service is not running")
)

// SERVICE_START_TYPE values.
const (
	StartTypeAutomatic uint32 = 2
	StartTypeManual    uint32 = 3
	StartTypeDisabled  uint32 = 4
)

// ServiceStatus mirrors SERVICE_STATUS dwCurrentState.
type ServiceStatus uint32

const (
	StatusStopped         ServiceStatus = 1
	StatusStartPending    ServiceStatus = 2
	StatusStopPending     ServiceStatus = 3
	StatusRunning         ServiceStatus = 4
	StatusContinuePending ServiceStatus = 5
	StatusPausePending    ServiceStatus = 6
	StatusPaused          ServiceStatus = 7
)

var statusNames = map[ServiceStatus]string{
	StatusStopped:         "Stopped",
	StatusStartPending:    "Start Pending",
	StatusStopPending:     "Stop Pending",
	StatusRunning:         "Running",
	StatusContinuePending: "Continue Pending",
	StatusPausePending:    "Pause Pending",
	StatusPaused:          "Paused",
}

func (s ServiceStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", uint32(s))
}

// ServiceConfig describes a service to register.
type ServiceConfig struct {
	DisplayName string
	Description string
	StartType   uint32
	// Args follow the executable path on the service command line.
	Args []string
}

// SCManagerInterface is the part of the SCM the manager needs.
type SCManagerInterface interface {
	OpenService(name string) (ServiceInterface, error)
	CreateService(name, exePath string, config ServiceConfig) (ServiceInterface, error)
	Close() error
}

// ServiceInterface is an open service handle.
type ServiceInterface interface {
	Start() error
	Stop() error
	Delete() error
	Status() (ServiceStatus, error)
	Close() error
}

// ServiceManager installs, removes and controls a named service.
type ServiceManager struct {
	scm SCManagerInterface
}

func NewServiceManager(scm SCManagerInterface) *ServiceManager {
	return &ServiceManager{scm: scm}
}

// Install registers the service. Returns ErrServiceExists when a
// service with that name is already registered.
func (m *ServiceManager) Install(name, exePath string, config ServiceConfig) error {
	s, err := m.scm.CreateService(name, exePath, config)
	if err != nil {
		return err
	}
	return s.Close()
}

// Uninstall stops the service if it runs and deletes it.
func (m *ServiceManager) Uninstall(name string) error {
	return m.withService(name, func(s ServiceInterface) error {
		st, err := s.Status()
		if err != nil {
			return err
		}
		if st == StatusRunning {
			if err := s.Stop(); err != nil {
				return err
			}
		}
		return s.Delete()
	})
}

func (m *ServiceManager) Start(name string) error {
	return m.withService(name, func(s ServiceInterface) error {
		st, err := s.Status()
		if err != nil {
			return err
		}
		if st == StatusRunning {
			return ErrServiceAlreadyRunning
		}
		return s.Start()
	})
}

func (m *ServiceManager) Stop(name string) error {
	return m.withService(name, func(s ServiceInterface) error {
		st, err := s.Status()
		if err != nil {
			return err
		}
		if st == StatusStopped {
			return ErrServiceNotRunning
		}
		return s.Stop()
	})
}

func (m *ServiceManager) Status(name string) (st ServiceStatus, err error) {
	err = m.withService(name, func(s ServiceInterface) error {
		st, err = s.Status()
		return err
	})
	return st, err
}

func (m *ServiceManager) withService(name string, fn func(ServiceInterface) error) error {
	s, err := m.scm.OpenService(name)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
