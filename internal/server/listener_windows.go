//go:build windows

package server

import (
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"
	"github.com/warpdl/cookiebridge/common"
)

// pipeSecurityDescriptor grants access to SYSTEM, Administrators and the
// pipe's creator only.
const pipeSecurityDescriptor = "D:(A;;GA;;;SY)(A;;GA;;;BA)(A;;GA;;;CO)"

// createListener creates a named pipe listener, falling back to TCP.
func (s *Server) createListener() (net.Listener, error) {
	if common.ForceTCP() {
		return s.tcpListener()
	}
	l, err := winio.ListenPipe(common.PipePath(), &winio.PipeConfig{
		SecurityDescriptor: pipeSecurityDescriptor,
	})
	if err != nil {
		s.log.Warning("named pipe: %s, falling back to tcp", err.Error())
		return s.tcpListener()
	}
	return l, nil
}

func (s *Server) tcpListener() (net.Listener, error) {
	l, err := net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.port))
	if err != nil {
		return nil, fmt.Errorf("listen tcp: %w", err)
	}
	return l, nil
}

// cleanupSocket is a no-op; the OS removes a pipe with its last handle.
func cleanupSocket(net.Addr) error {
	return nil
}
