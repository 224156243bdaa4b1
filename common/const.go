package common

import "time"

const (
	// AppName is used for the keyring service and default paths.
	AppName = "cookiebridge"

	// DefaultTCPPort is the local fallback port when unix sockets or
	// named pipes are unavailable.
	DefaultTCPPort = 3850

	// DefaultRPCPort is the port of the HTTP JSON-RPC endpoint.
	DefaultRPCPort = 3851

	// TCPHost is the loopback host used for TCP transports.
	TCPHost = "localhost"

	// DefaultDialTimeout bounds client connection attempts.
	DefaultDialTimeout = 5 * time.Second

	// CookieChannel is the messenger channel the cookie manager listens on.
	CookieChannel = "cookies"

	// SystemChannel serves daemon metadata.
	SystemChannel = "system"

	// CookieDBName is the file name of the persistent cookie database.
	CookieDBName = "cookies.db"

	// PolicyDirName is the directory holding cookie policy scripts.
	PolicyDirName = "policies"
)
