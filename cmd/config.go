package cmd

import "time"

// DEF_CALL_TIMEOUT bounds a single CLI call to the daemon.
const DEF_CALL_TIMEOUT = 10 * time.Second

const DESCRIPTION = `
cookiebridge keeps a persistent cookie jar behind a small JSON-RPC
daemon. Download tools and browser extensions read and write cookies
through it so a login made in one place is visible everywhere else.
`

const (
	DaemonDescription = `The daemon command starts the cookie daemon in the
foreground. It listens on a unix socket (a named pipe on
Windows) and falls back to TCP. Set --rpc-secret to also
serve JSON-RPC over HTTP and websocket.

Example:
        cookiebridge daemon
        cookiebridge daemon --rpc-secret s3cret --rpc-port 3851

`
	GetDescription = `The get command prints the Cookie header the daemon
would send to the given url.

Example:
        cookiebridge get https://example.com/

`
	SetDescription = `The set command stores one or more Set-Cookie strings
for the given url.

Example:
        cookiebridge set https://example.com/ "sid=abc; Path=/; Secure"

`
	ClearDescription = `The clear command removes every stored cookie and
reports whether there was anything to remove.

Example:
        cookiebridge clear

`
	ImportDescription = `The import command copies cookies for the given
domains out of a browser profile into the daemon. By default
the Firefox, Chrome, Chromium and Brave profiles of the
current user are searched. Use --from with a cookie database
or a Netscape cookies.txt file to import from it directly.

Example:
        cookiebridge import example.com
        cookiebridge import --from ~/cookies.txt example.com

`
	StatusDescription = `The status command prints the version and
capabilities of the running daemon.

Example:
        cookiebridge status

`
	NativeHostDescription = `The native-host command installs, removes and runs
the native messaging host that lets a browser extension
sync cookies with the daemon.

Example:
        cookiebridge native-host install --chrome-extension-id <id>
        cookiebridge native-host status

`
)
