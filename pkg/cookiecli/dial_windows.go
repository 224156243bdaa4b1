//go:build windows

package cookiecli

import (
	"context"
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"
	"github.com/warpdl/cookiebridge/common"
)

// dialPipeFunc is swapped in tests.
var dialPipeFunc = func(path string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), common.DefaultDialTimeout)
	defer cancel()
	return winio.DialPipeContext(ctx, path)
}

// dial connects to the daemon's named pipe, falling back to TCP.
func dial() (net.Conn, error) {
	if common.ForceTCP() {
		return dialFunc("tcp", common.TCPAddress())
	}
	path := common.PipePath()
	debugLog("connecting via named pipe at %s", path)
	conn, pipeErr := dialPipeFunc(path)
	if pipeErr == nil {
		return conn, nil
	}
	debugLog("named pipe failed: %v, falling back to tcp", pipeErr)
	conn, err := dialFunc("tcp", common.TCPAddress())
	if err != nil {
		return nil, fmt.Errorf("failed to connect: named pipe error: %v; tcp error: %w", pipeErr, err)
	}
	return conn, nil
}
