package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
	"github.com/warpdl/cookiebridge/cmd/common"
	nhcmd "github.com/warpdl/cookiebridge/cmd/nativehost"
	cbcommon "github.com/warpdl/cookiebridge/common"
	"github.com/warpdl/cookiebridge/internal/nativehost"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

// currentBuildArgs is reported by the daemon's system channel.
var currentBuildArgs BuildArgs

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "daemon-uri",
		Usage:  "daemon address (unix:///path, tcp://host:port or pipe://name)",
		EnvVar: cbcommon.DaemonURIEnv,
	},
}

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	// browsers start the host with their own arguments, not a subcommand
	if len(args) > 1 && nativehost.LaunchedByBrowser(args[1:]) {
		return nhcmd.RunHost()
	}
	app := cli.App{
		Name:                  "cookiebridge",
		HelpName:              "cookiebridge",
		Usage:                 "A persistent cookie jar shared over JSON-RPC.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "cookiebridge <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Flags:                 globalFlags,
		Commands: []cli.Command{
			{
				Name:               "daemon",
				Usage:              "run the cookie daemon",
				Description:        DaemonDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             getDaemonAction(),
				Flags:              daemonFlags,
			},
			{
				Name:               "get",
				Aliases:            []string{"g"},
				Usage:              "print the cookie header for a url",
				UsageText:          "<url>",
				Description:        GetDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             getCookies,
			},
			{
				Name:               "set",
				Aliases:            []string{"s"},
				Usage:              "store cookies for a url",
				UsageText:          "<url> <set-cookie>...",
				Description:        SetDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             setCookies,
			},
			{
				Name:               "clear",
				Usage:              "remove every stored cookie",
				UsageText:          " ",
				Description:        ClearDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             clearCookies,
			},
			{
				Name:                   "import",
				Aliases:                []string{"i"},
				Usage:                  "import cookies from a browser profile",
				UsageText:              "[--from <path>] <domain>...",
				Description:            ImportDescription,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				OnUsageError:           common.UsageErrorCallback,
				Action:                 importCookies,
				Flags:                  importFlags,
				UseShortOptionHandling: true,
			},
			{
				Name:               "status",
				Usage:              "show daemon version and capabilities",
				UsageText:          " ",
				Description:        StatusDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             status,
			},
			{
				Name:               "native-host",
				Usage:              "manage the browser native messaging host",
				Description:        NativeHostDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Subcommands:        nhcmd.Commands,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of cookiebridge",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:      common.Help,
		HideHelp:    true,
		HideVersion: true,
	}
	app.Commands = append(app.Commands, getPlatformCommands()...)
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
