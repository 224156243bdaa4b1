//go:build !windows

package server

import (
	"fmt"
	"net"
	"os"

	"github.com/warpdl/cookiebridge/common"
	"golang.org/x/sys/unix"
)

// createListener creates a unix socket listener, falling back to TCP.
// The socket is created under a 0077 umask so it is never reachable by
// other users, even briefly.
func (s *Server) createListener() (net.Listener, error) {
	if common.ForceTCP() {
		return s.tcpListener()
	}
	path := common.SocketPath()
	_ = os.Remove(path)

	old := unix.Umask(0077)
	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	unix.Umask(old)
	if err != nil {
		s.log.Warning("unix socket %s: %s, falling back to tcp", path, err.Error())
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

func cleanupSocket(addr net.Addr) error {
	if addr == nil || addr.Network() != "unix" {
		return nil
	}
	if err := os.Remove(addr.String()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
