//go:build windows

// Package service runs the cookie daemon under the Windows Service
// Control Manager and installs it there.
package service

import (
	"context"
	"time"

	"github.com/warpdl/cookiebridge/pkg/logger"
	"golang.org/x/sys/windows/svc"
)

const acceptedCommands = svc.AcceptStop | svc.AcceptShutdown

// startGrace is how long Execute waits for an immediate start failure
// before reporting Running.
const startGrace = 50 * time.Millisecond

// Runner is the daemon lifecycle driven by the handler.
type Runner interface {
	Start(ctx context.Context) error
	Shutdown() error
	IsRunning() bool
}

// WindowsHandler implements svc.Handler.
type WindowsHandler struct {
	runner Runner
	log    logger.Logger
}

// NewWindowsHandler returns a handler for runner. A nil logger discards.
func NewWindowsHandler(runner Runner, l logger.Logger) *WindowsHandler {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &WindowsHandler{runner: runner, log: l}
}

// Execute implements svc.Handler. Service start arguments are ignored;
// the daemon reads its settings from the registered command line and
// the environment.
//
//	StartPending -> Running -> StopPending -> Stopped
func (h *WindowsHandler) Execute(_ []string, requests <-chan svc.ChangeRequest, status chan<- svc.Status) (bool, uint32) {
	status <- svc.Status{State: svc.StartPending}
	h.log.Info("cookie daemon service starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startErr := make(chan error, 1)
	go func() {
		startErr <- h.runner.Start(ctx)
	}()

	select {
	case err := <-startErr:
		if err != nil {
			h.log.Error("cookie daemon failed to start: %s", err.Error())
		}
		status <- svc.Status{State: svc.Stopped}
		return false, 1
	case <-time.After(startGrace):
	}

	status <- svc.Status{State: svc.Running, Accepts: acceptedCommands}
	h.log.Info("cookie daemon service running")

	for {
		select {
		case err := <-startErr:
			// serving stopped without being asked to
			if err != nil {
				h.log.Error("cookie daemon stopped: %s", err.Error())
			}
			status <- svc.Status{State: svc.Stopped}
			return false, 1
		case req, ok := <-requests:
			if !ok {
				return false, 0
			}
			switch req.Cmd {
			case svc.Interrogate:
				status <- req.CurrentStatus
			case svc.Stop, svc.Shutdown:
				return h.stop(status)
			}
		}
	}
}

func (h *WindowsHandler) stop(status chan<- svc.Status) (bool, uint32) {
	h.log.Info("cookie daemon service stopping")
	status <- svc.Status{State: svc.StopPending}

	if err := h.runner.Shutdown(); err != nil {
		h.log.Error("shutdown: %s", err.Error())
		status <- svc.Status{State: svc.Stopped}
		return false, 1
	}
	h.log.Info("cookie daemon service stopped")
	status <- svc.Status{State: svc.Stopped}
	return false, 0
}

// AcceptedCommands returns the controls the handler accepts.
func (h *WindowsHandler) AcceptedCommands() svc.Accepted {
	return acceptedCommands
}
