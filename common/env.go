// Package common provides shared constants and configuration lookups used by
// the cookiebridge daemon, its client and the CLI.
package common

// Environment variable names for configuration.
const (
	// ConfigDirEnv overrides the directory holding the cookie database,
	// the key file and the policy scripts.
	ConfigDirEnv = "COOKIEBRIDGE_CONFIG_DIR"

	// SocketPathEnv is the environment variable for custom socket path.
	SocketPathEnv = "COOKIEBRIDGE_SOCKET_PATH"

	// PipeNameEnv is the environment variable for a custom Windows pipe name.
	PipeNameEnv = "COOKIEBRIDGE_PIPE_NAME"

	// TCPPortEnv is the environment variable for custom TCP port.
	TCPPortEnv = "COOKIEBRIDGE_TCP_PORT"

	// ForceTCPEnv is the environment variable to force TCP connections.
	ForceTCPEnv = "COOKIEBRIDGE_FORCE_TCP"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "COOKIEBRIDGE_DEBUG"

	// CookieKeyEnv holds a hex encoded 32 byte master key. When set the
	// system keyring is not consulted.
	CookieKeyEnv = "COOKIEBRIDGE_COOKIE_KEY"

	// RPCSecretEnv is the bearer token for the HTTP JSON-RPC endpoint.
	RPCSecretEnv = "COOKIEBRIDGE_RPC_SECRET"

	// DaemonURIEnv points CLI commands at an explicit daemon address,
	// e.g. tcp://localhost:3850 or unix:///run/cookiebridge.sock.
	DaemonURIEnv = "COOKIEBRIDGE_DAEMON_URI"

	// CapabilityLevelEnv selects the platform capability level of the
	// cookie store.
	CapabilityLevelEnv = "COOKIEBRIDGE_CAPABILITY_LEVEL"
)
