//go:build windows

package cmd

import (
	"github.com/urfave/cli"
	daemonpkg "github.com/warpdl/cookiebridge/internal/daemon"
	"github.com/warpdl/cookiebridge/internal/service"
	"github.com/warpdl/cookiebridge/pkg/logger"
	"golang.org/x/sys/windows/svc"
)

var isWindowsService = svc.IsWindowsService

func getDaemonAction() cli.ActionFunc {
	return daemonWindows
}

// daemonWindows runs the daemon under the SCM when started as a service
// and in the foreground otherwise.
func daemonWindows(ctx *cli.Context) error {
	isService, err := isWindowsService()
	if err != nil {
		return err
	}
	if !isService {
		return daemon(ctx)
	}
	return runAsWindowsService(ctx)
}

func runAsWindowsService(ctx *cli.Context) error {
	var extra []logger.Logger
	// an unregistered event source leaves console logging only
	if el, err := logger.NewEventLogger(daemonpkg.DefaultServiceName); err == nil {
		defer el.Close()
		extra = append(extra, el)
	}
	runner, closeLog, err := prepareDaemon(ctx, extra...)
	if err != nil {
		return err
	}
	defer closeLog()
	return svc.Run(daemonpkg.DefaultServiceName, service.NewWindowsHandler(runner, logger.NewMultiLogger(extra...)))
}

