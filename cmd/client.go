package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli"
	"github.com/warpdl/cookiebridge/cmd/common"
	"github.com/warpdl/cookiebridge/pkg/cookiecli"
	"github.com/warpdl/cookiebridge/pkg/cookiestore"
)

type cookieClient interface {
	GetCookies(ctx context.Context, rawURL string) (string, error)
	SetCookies(ctx context.Context, rawURL string, cookies []string) (bool, error)
	ClearCookies(ctx context.Context) (bool, error)
	Version(ctx context.Context) (*cookiecli.Version, error)
	Capabilities(ctx context.Context) (*cookiestore.Capabilities, error)
	Close() error
}

// newClient is swapped in tests.
var newClient = func(uri string) (cookieClient, error) {
	c, err := cookiecli.NewClientWithURI(uri)
	if err != nil {
		return nil, err
	}
	return c, nil
}

var errMissingArgs = errors.New("missing required arguments")

func connect(ctx *cli.Context, cmd string) (cookieClient, bool) {
	client, err := newClient(ctx.GlobalString("daemon-uri"))
	if err != nil {
		common.PrintRuntimeErr(ctx, cmd, "new_client", err)
		fmt.Fprintf(ctx.App.Writer, "is the daemon running? start it with %q\n", ctx.App.HelpName+" daemon")
		return nil, false
	}
	return client, true
}

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DEF_CALL_TIMEOUT)
}

func getCookies(ctx *cli.Context) error {
	rawURL := ctx.Args().First()
	if rawURL == "" {
		return common.PrintErrWithCmdHelp(ctx, errMissingArgs)
	}
	client, ok := connect(ctx, "get")
	if !ok {
		return nil
	}
	defer client.Close()

	cctx, cancel := callContext()
	defer cancel()
	header, err := client.GetCookies(cctx, rawURL)
	if err != nil {
		common.PrintRuntimeErr(ctx, "get", "get_cookies", err)
		return nil
	}
	fmt.Fprintln(ctx.App.Writer, header)
	return nil
}

func setCookies(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		return common.PrintErrWithCmdHelp(ctx, errMissingArgs)
	}
	rawURL := ctx.Args().First()
	cookies := []string(ctx.Args().Tail())

	client, ok := connect(ctx, "set")
	if !ok {
		return nil
	}
	defer client.Close()

	cctx, cancel := callContext()
	defer cancel()
	if _, err := client.SetCookies(cctx, rawURL, cookies); err != nil {
		common.PrintRuntimeErr(ctx, "set", "set_cookies", err)
		return nil
	}
	fmt.Fprintf(ctx.App.Writer, "stored %d cookie(s) for %s\n", len(cookies), rawURL)
	return nil
}

func clearCookies(ctx *cli.Context) error {
	client, ok := connect(ctx, "clear")
	if !ok {
		return nil
	}
	defer client.Close()

	cctx, cancel := callContext()
	defer cancel()
	had, err := client.ClearCookies(cctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "clear", "clear_cookies", err)
		return nil
	}
	if had {
		fmt.Fprintln(ctx.App.Writer, "cleared all cookies")
	} else {
		fmt.Fprintln(ctx.App.Writer, "no cookies to clear")
	}
	return nil
}

func status(ctx *cli.Context) error {
	client, ok := connect(ctx, "status")
	if !ok {
		return nil
	}
	defer client.Close()

	cctx, cancel := callContext()
	defer cancel()
	v, err := client.Version(cctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "get_version", err)
		return nil
	}
	caps, err := client.Capabilities(cctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "get_capabilities", err)
		return nil
	}
	w := ctx.App.Writer
	fmt.Fprintf(w, "daemon:       %s", v.Version)
	if v.BuildType != "" {
		fmt.Fprintf(w, "-%s", v.BuildType)
	}
	if v.Commit != "" {
		fmt.Fprintf(w, " (%s)", v.Commit)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "level:        %d\n", caps.Level)
	fmt.Fprintf(w, "async clear:  %t\n", caps.AsyncClear)
	fmt.Fprintf(w, "flush:        %t\n", caps.Flush)
	if v.Version != currentBuildArgs.Version && currentBuildArgs.Version != "" {
		fmt.Fprintf(w, "warning: daemon version %s differs from cli version %s\n", v.Version, currentBuildArgs.Version)
	}
	return nil
}
