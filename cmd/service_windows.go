//go:build windows

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"
	daemonpkg "github.com/warpdl/cookiebridge/internal/daemon"
	"github.com/warpdl/cookiebridge/internal/service"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc/eventlog"
)

var ErrRequiresAdmin = errors.New("this operation requires administrator privileges")

// swapped in tests
var (
	isAdminFunc   = isAdmin
	openSCManager = service.OpenSCManager
	installSource = func(name string) error {
		return eventlog.InstallAsEventCreate(name, eventlog.Info|eventlog.Warning|eventlog.Error)
	}
	removeSource = eventlog.Remove
	executable   = os.Executable
)

// isAdmin reports whether the process token is in BUILTIN\Administrators.
func isAdmin() bool {
	var sid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)
	isMember, err := windows.Token(0).IsMember(sid)
	return err == nil && isMember
}

func serviceCommand() cli.Command {
	return cli.Command{
		Name:  "service",
		Usage: "manage the cookie daemon Windows service",
		Subcommands: []cli.Command{
			{Name: "install", Usage: "register the daemon as a Windows service", Action: serviceInstall},
			{Name: "uninstall", Usage: "remove the Windows service", Action: serviceUninstall},
			{Name: "start", Usage: "start the Windows service", Action: serviceStart},
			{Name: "stop", Usage: "stop the Windows service", Action: serviceStop},
			{Name: "status", Usage: "show the Windows service state", Action: serviceStatus},
		},
	}
}

// withServiceManager opens the SCM for fn. admin selects whether fn
// needs elevation.
func withServiceManager(admin bool, fn func(*service.ServiceManager) error) error {
	if admin && !isAdminFunc() {
		return ErrRequiresAdmin
	}
	scm, err := openSCManager()
	if err != nil {
		return err
	}
	defer scm.Close()
	return fn(service.NewServiceManager(scm))
}

func notInstalled(err error) error {
	if errors.Is(err, service.ErrServiceNotFound) {
		return fmt.Errorf("service '%s' is not installed", daemonpkg.DefaultServiceName)
	}
	return err
}

func serviceInstall(ctx *cli.Context) error {
	exePath, err := executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	return withServiceManager(true, func(m *service.ServiceManager) error {
		err := m.Install(daemonpkg.DefaultServiceName, exePath, service.ServiceConfig{
			DisplayName: daemonpkg.DefaultDisplayName,
			Description: daemonpkg.DefaultDescription,
			StartType:   service.StartTypeAutomatic,
			Args:        []string{"daemon"},
		})
		if errors.Is(err, service.ErrServiceExists) {
			return fmt.Errorf("service '%s' is already installed", daemonpkg.DefaultServiceName)
		}
		if err != nil {
			return fmt.Errorf("failed to install service: %w", err)
		}
		if err := installSource(daemonpkg.DefaultServiceName); err != nil {
			_ = m.Uninstall(daemonpkg.DefaultServiceName)
			return fmt.Errorf("failed to register event source: %w", err)
		}
		fmt.Fprintf(ctx.App.Writer, "Service '%s' installed\n", daemonpkg.DefaultServiceName)
		return nil
	})
}

func serviceUninstall(ctx *cli.Context) error {
	return withServiceManager(true, func(m *service.ServiceManager) error {
		if err := m.Uninstall(daemonpkg.DefaultServiceName); err != nil {
			return notInstalled(err)
		}
		_ = removeSource(daemonpkg.DefaultServiceName)
		fmt.Fprintf(ctx.App.Writer, "Service '%s' uninstalled\n", daemonpkg.DefaultServiceName)
		return nil
	})
}

func serviceStart(ctx *cli.Context) error {
	return withServiceManager(true, func(m *service.ServiceManager) error {
		if err := m.Start(daemonpkg.DefaultServiceName); err != nil {
			return notInstalled(err)
		}
		fmt.Fprintf(ctx.App.Writer, "Service '%s' started\n", daemonpkg.DefaultServiceName)
		return nil
	})
}

func serviceStop(ctx *cli.Context) error {
	return withServiceManager(true, func(m *service.ServiceManager) error {
		if err := m.Stop(daemonpkg.DefaultServiceName); err != nil {
			return notInstalled(err)
		}
		fmt.Fprintf(ctx.App.Writer, "Service '%s' stopped\n", daemonpkg.DefaultServiceName)
		return nil
	})
}

// serviceStatus does not need elevation.
func serviceStatus(ctx *cli.Context) error {
	return withServiceManager(false, func(m *service.ServiceManager) error {
		st, err := m.Status(daemonpkg.DefaultServiceName)
		if err != nil {
			return notInstalled(err)
		}
		fmt.Fprintf(ctx.App.Writer, "Service '%s': %s\n", daemonpkg.DefaultServiceName, st)
		return nil
	})
}
