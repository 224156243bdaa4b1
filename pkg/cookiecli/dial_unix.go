//go:build !windows

package cookiecli

import (
	"fmt"
	"net"

	"github.com/warpdl/cookiebridge/common"
)

func dialPipeFunc(string) (net.Conn, error) {
	return nil, ErrPipeNotSupported
}

// dial connects to the daemon's unix socket, falling back to TCP.
func dial() (net.Conn, error) {
	if common.ForceTCP() {
		return dialFunc("tcp", common.TCPAddress())
	}
	path := common.SocketPath()
	debugLog("connecting via unix socket at %s", path)
	conn, unixErr := dialFunc("unix", path)
	if unixErr == nil {
		return conn, nil
	}
	debugLog("unix socket failed: %v, falling back to tcp", unixErr)
	conn, err := dialFunc("tcp", common.TCPAddress())
	if err != nil {
		return nil, fmt.Errorf("failed to connect: unix socket error: %v; tcp error: %w", unixErr, err)
	}
	return conn, nil
}
