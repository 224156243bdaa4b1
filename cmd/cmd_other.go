//go:build !windows

package cmd

import "github.com/urfave/cli"

func getPlatformCommands() []cli.Command {
	return nil
}

func getDaemonAction() cli.ActionFunc {
	return daemon
}
