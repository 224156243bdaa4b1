// Package nativehost holds the CLI commands that install and run the
// browser native messaging host.
package nativehost

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
	"github.com/warpdl/cookiebridge/common"
	"github.com/warpdl/cookiebridge/internal/nativehost"
	"github.com/warpdl/cookiebridge/pkg/cookiecli"
)

var Commands = []cli.Command{
	{
		Name:   "install",
		Action: install,
		Usage:  "install native messaging manifest for browsers",
		Flags:  installFlags,
	},
	{
		Name:   "uninstall",
		Action: uninstall,
		Usage:  "remove native messaging manifest from browsers",
		Flags:  browserFlags,
	},
	{
		Name:   "run",
		Action: run,
		Usage:  "run native messaging host (called by browser)",
		Hidden: true,
	},
	{
		Name:   "status",
		Action: status,
		Usage:  "show installation status for all browsers",
	},
}

var browserFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "browser",
		Usage: "browser (chrome, firefox, chromium, edge, brave, all)",
		Value: "all",
	},
}

var installFlags = append([]cli.Flag{
	cli.StringFlag{
		Name:  "chrome-extension-id",
		Usage: "extension ID for Chrome-based browsers",
	},
	cli.StringFlag{
		Name:  "firefox-extension-id",
		Usage: "extension ID for Firefox",
	},
}, browserFlags...)

// newInstaller and newClient are swapped in tests.
var (
	newInstaller = func(hostPath, chromeID, firefoxID string) *nativehost.ManifestInstaller {
		return &nativehost.ManifestInstaller{
			HostPath:           hostPath,
			ChromeExtensionID:  chromeID,
			FirefoxExtensionID: firefoxID,
		}
	}
	newClient = func() (nativehost.Client, error) {
		c, err := cookiecli.NewClientWithURI(os.Getenv(common.DaemonURIEnv))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
)

func selectBrowsers(name string) ([]nativehost.Browser, error) {
	if name == "" || name == "all" {
		return nativehost.SupportedBrowsers(), nil
	}
	b, err := nativehost.ParseBrowser(name)
	if err != nil {
		return nil, err
	}
	return []nativehost.Browser{b}, nil
}

func install(c *cli.Context) error {
	chromeID := c.String("chrome-extension-id")
	firefoxID := c.String("firefox-extension-id")
	if chromeID == "" && firefoxID == "" {
		return cli.NewExitError("at least one extension ID is required (--chrome-extension-id or --firefox-extension-id)", 1)
	}
	browsers, err := selectBrowsers(c.String("browser"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	hostPath, err := os.Executable()
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("failed to get executable path: %v", err), 1)
	}

	inst := newInstaller(hostPath, chromeID, firefoxID)
	w := c.App.Writer
	var installed, failed []string
	for _, b := range browsers {
		if (b.IsChromeBased() && chromeID == "") || (!b.IsChromeBased() && firefoxID == "") {
			continue
		}
		path, err := inst.Install(b)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", b, err))
			continue
		}
		installed = append(installed, fmt.Sprintf("%s: %s", b, path))
	}
	printList(w, "Installed manifests:", installed)
	printList(w, "Errors:", failed)
	if len(installed) == 0 {
		return cli.NewExitError("installation failed", 1)
	}
	return nil
}

func uninstall(c *cli.Context) error {
	browsers, err := selectBrowsers(c.String("browser"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	inst := newInstaller("", "", "")
	var failed []string
	for _, b := range browsers {
		if err := inst.Uninstall(b); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", b, err))
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s: removed\n", b)
	}
	printList(c.App.Writer, "Errors:", failed)
	if len(failed) > 0 {
		return cli.NewExitError("uninstall failed", 1)
	}
	return nil
}

func status(c *cli.Context) error {
	inst := newInstaller("", "", "")
	for _, b := range nativehost.SupportedBrowsers() {
		state := "not installed"
		if inst.Installed(b) {
			state = "installed"
		}
		fmt.Fprintf(c.App.Writer, "%-10s %-14s %s\n", b, state, inst.Path(b))
	}
	return nil
}

func run(*cli.Context) error {
	return RunHost()
}

// RunHost serves the native messaging protocol on stdin and stdout.
// Nothing but protocol frames may be written to stdout.
func RunHost() error {
	client, err := newClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to daemon: %v\n", err)
		return cli.NewExitError("failed to connect to daemon", 1)
	}
	defer client.Close()

	if err := nativehost.NewHost(client).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "native host error: %v\n", err)
		return cli.NewExitError("native host error", 1)
	}
	return nil
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	for _, it := range items {
		fmt.Fprintf(w, "  %s\n", it)
	}
}
