package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ConfigDir returns the absolute configuration directory, creating it if
// needed. COOKIEBRIDGE_CONFIG_DIR takes precedence over the user config dir.
func ConfigDir() (string, error) {
	dir := os.Getenv(ConfigDirEnv)
	if dir == "" {
		cdr, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(cdr, AppName)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return abs, nil
}

// SocketPath returns the unix socket path of the daemon.
func SocketPath() string {
	if path := os.Getenv(SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), AppName+".sock")
}

// TCPPort returns the TCP port from environment or DefaultTCPPort.
// Out of range or malformed values fall back to the default.
func TCPPort() int {
	if port := os.Getenv(TCPPortEnv); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p >= 1 && p <= 65535 {
			return p
		}
	}
	return DefaultTCPPort
}

// TCPAddress returns "localhost:{port}".
func TCPAddress() string {
	return fmt.Sprintf("%s:%d", TCPHost, TCPPort())
}

// ForceTCP returns true if COOKIEBRIDGE_FORCE_TCP=1.
func ForceTCP() bool {
	return os.Getenv(ForceTCPEnv) == "1"
}

// DebugMode returns true if COOKIEBRIDGE_DEBUG=1.
func DebugMode() bool {
	return os.Getenv(DebugEnv) == "1"
}

// ErrInvalidCapabilityLevel is returned for a non numeric capability level.
var ErrInvalidCapabilityLevel = errors.New("invalid capability level")

// CapabilityLevel parses a capability level, returning def for "".
func CapabilityLevel(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	lvl, err := strconv.Atoi(s)
	if err != nil || lvl < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCapabilityLevel, s)
	}
	return lvl, nil
}
