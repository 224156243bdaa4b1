package cookiecli

import (
	"fmt"
	"log"
	"net"

	"github.com/warpdl/cookiebridge/common"
)

// dialFunc is swapped in tests.
var dialFunc = func(network, address string) (net.Conn, error) {
	return net.DialTimeout(network, address, common.DefaultDialTimeout)
}

func debugLog(format string, args ...any) {
	if common.DebugMode() {
		log.Printf(format, args...)
	}
}

// dialURI connects to an explicit daemon address.
func dialURI(uri *DaemonURI) (net.Conn, error) {
	switch uri.Scheme {
	case SchemeTCP, SchemeUnix:
		debugLog("connecting via %s to %s", uri.Scheme, uri.Address)
		conn, err := dialFunc(uri.Scheme, uri.Address)
		if err != nil {
			return nil, fmt.Errorf("%s connection failed: %w", uri.Scheme, err)
		}
		return conn, nil
	case SchemePipe:
		debugLog("connecting via named pipe to %s", uri.Address)
		conn, err := dialPipeFunc(uri.Address)
		if err != nil {
			return nil, fmt.Errorf("named pipe connection failed: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, uri.Scheme)
	}
}
