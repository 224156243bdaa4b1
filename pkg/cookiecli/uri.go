package cookiecli

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	"github.com/warpdl/cookiebridge/common"
)

// DaemonURI is a parsed daemon address such as unix:///tmp/cb.sock,
// tcp://localhost:3850 or pipe://cookiebridge.
type DaemonURI struct {
	Scheme  string
	Address string
}

const (
	SchemeUnix = "unix"
	SchemeTCP  = "tcp"
	SchemePipe = "pipe"
)

var (
	ErrEmptyURI          = errors.New("daemon URI cannot be empty")
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
	ErrInvalidPath       = errors.New("invalid path in URI")
	ErrPipeNotSupported  = errors.New("pipe:// scheme only supported on Windows")
	ErrUnixNotSupported  = errors.New("unix:// scheme not supported on Windows")
)

// ParseDaemonURI parses raw into a DaemonURI. A tcp URI without a port
// gets common.DefaultTCPPort.
func ParseDaemonURI(raw string) (*DaemonURI, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyURI
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	switch strings.ToLower(u.Scheme) {
	case SchemeUnix:
		if runtime.GOOS == "windows" {
			return nil, ErrUnixNotSupported
		}
		if u.Host != "" || !strings.HasPrefix(u.Path, "/") {
			return nil, ErrInvalidPath
		}
		return &DaemonURI{Scheme: SchemeUnix, Address: u.Path}, nil
	case SchemeTCP:
		return parseTCP(u)
	case SchemePipe:
		if runtime.GOOS != "windows" {
			return nil, ErrPipeNotSupported
		}
		name := u.Host + u.Path
		name = strings.Trim(name, "/")
		if name == "" {
			return nil, ErrInvalidPath
		}
		return &DaemonURI{Scheme: SchemePipe, Address: common.PipePathFor(name)}, nil
	default:
		return nil, ErrUnsupportedScheme
	}
}

func parseTCP(u *url.URL) (*DaemonURI, error) {
	if u.Host == "" {
		return nil, ErrInvalidPath
	}
	if u.Port() == "" {
		host := u.Hostname()
		return &DaemonURI{
			Scheme:  SchemeTCP,
			Address: net.JoinHostPort(host, strconv.Itoa(common.DefaultTCPPort)),
		}, nil
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid port", ErrInvalidPath)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("%w: port out of range", ErrInvalidPath)
	}
	return &DaemonURI{Scheme: SchemeTCP, Address: u.Host}, nil
}
