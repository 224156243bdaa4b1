package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"github.com/warpdl/cookiebridge/cmd/common"
	cbcommon "github.com/warpdl/cookiebridge/common"
	"github.com/warpdl/cookiebridge/internal/cookiemanager"
	daemonpkg "github.com/warpdl/cookiebridge/internal/daemon"
	"github.com/warpdl/cookiebridge/internal/messenger"
	"github.com/warpdl/cookiebridge/internal/policy"
	"github.com/warpdl/cookiebridge/internal/server"
	"github.com/warpdl/cookiebridge/pkg/cookiestore"
	"github.com/warpdl/cookiebridge/pkg/credman/keyring"
	"github.com/warpdl/cookiebridge/pkg/logger"
)

var daemonFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "capability-level",
		Usage:  "platform capability level of the cookie store (19 legacy, 21+ modern)",
		EnvVar: cbcommon.CapabilityLevelEnv,
	},
	cli.BoolFlag{
		Name:  "memory",
		Usage: "keep cookies in memory only",
	},
	cli.IntFlag{
		Name:  "port",
		Usage: "TCP fallback port (default $" + cbcommon.TCPPortEnv + " or 3850)",
	},
	cli.IntFlag{
		Name:  "rpc-port",
		Usage: "port of the HTTP JSON-RPC endpoint",
		Value: cbcommon.DefaultRPCPort,
	},
	cli.StringFlag{
		Name:   "rpc-secret",
		Usage:  "bearer token enabling the HTTP JSON-RPC endpoint",
		EnvVar: cbcommon.RPCSecretEnv,
	},
	cli.BoolFlag{
		Name:  "rpc-listen-all",
		Usage: "bind the HTTP JSON-RPC endpoint on every interface",
	},
	cli.StringFlag{
		Name:  "policy-dir",
		Usage: "directory of cookie policy scripts (default <config dir>/policies)",
	},
	cli.StringFlag{
		Name:  "log-file",
		Usage: "also write logs to this file",
	},
	cli.BoolFlag{
		Name:   "debug",
		Usage:  "enable debug logging",
		EnvVar: cbcommon.DebugEnv,
	},
}

// daemonOptions is the resolved daemon configuration.
type daemonOptions struct {
	ConfigDir       string
	CapabilityLevel string
	Memory          bool
	Port            int
	PolicyDir       string
	RPCPort         int
	RPCSecret       string
	RPCListenAll    bool
}

// daemonComponents holds everything the daemon wires together so it can
// be torn down in reverse order.
type daemonComponents struct {
	Server    *server.Server
	Messenger *messenger.Messenger

	jar     io.Closer
	store   *cookiestore.Store
	cookies *cookiemanager.CookieManager
	system  *cookiemanager.System
	log     logger.Logger
}

// Close disposes the handlers, flushes pending cookies and closes the jar.
func (c *daemonComponents) Close() {
	c.log.Info("shutting down daemon")
	if c.cookies != nil {
		c.cookies.Dispose()
	}
	if c.system != nil {
		c.system.Dispose()
	}
	if c.store != nil {
		if err := c.store.Flush(); err != nil {
			c.log.Error("final flush: %s", err.Error())
		}
	}
	if c.jar != nil {
		if err := c.jar.Close(); err != nil {
			c.log.Error("close cookie database: %s", err.Error())
		}
	}
	c.log.Info("daemon stopped")
}

// newKeyProvider is swapped in tests.
var newKeyProvider = func(configDir string, w keyring.Warner) keyring.Provider {
	return keyring.NewWithFallback(cbcommon.AppName, configDir, afero.NewOsFs(), w)
}

var errBadCookieKey = errors.New("cookie key must be 32 hex encoded bytes")

// loadMasterKey returns the key sealing the cookie database. An explicit
// key in the environment wins over the keyring.
func loadMasterKey(configDir string, l logger.Logger) ([]byte, error) {
	if keyHex := os.Getenv(cbcommon.CookieKeyEnv); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != keyring.KeySize {
			return nil, fmt.Errorf("%s: %w", cbcommon.CookieKeyEnv, errBadCookieKey)
		}
		return key, nil
	}
	return keyring.LoadOrCreate(newKeyProvider(configDir, l))
}

// initDaemonComponents builds the store, the handlers and the server. On
// error everything already opened is released.
var initDaemonComponents = func(opts daemonOptions, l logger.Logger) (*daemonComponents, error) {
	level, err := cbcommon.CapabilityLevel(opts.CapabilityLevel, cookiestore.LevelModern)
	if err != nil {
		return nil, err
	}
	caps := cookiestore.CapabilitiesForLevel(level)
	comps := &daemonComponents{log: l}

	var jar cookiestore.Jar
	if opts.Memory {
		l.Warning("cookies are kept in memory only and will be lost on exit")
		jar = cookiestore.NewMemoryJar()
	} else {
		key, err := loadMasterKey(opts.ConfigDir, l)
		if err != nil {
			return nil, fmt.Errorf("load master key: %w", err)
		}
		dbPath := filepath.Join(opts.ConfigDir, cbcommon.CookieDBName)
		sj, err := cookiestore.OpenSQLiteJar(context.Background(), dbPath, cookiestore.SQLiteOptions{
			MasterKey: key,
			Eager:     !caps.Flush,
			Logger:    logger.Named(l, "store"),
		})
		if err != nil {
			return nil, fmt.Errorf("open cookie database: %w", err)
		}
		comps.jar = sj
		jar = sj
	}
	comps.store = cookiestore.New(jar, caps, logger.Named(l, "store"))

	var cmOpts []cookiemanager.Option
	policyDir := opts.PolicyDir
	if policyDir == "" {
		policyDir = filepath.Join(opts.ConfigDir, cbcommon.PolicyDirName)
	}
	eng, err := policy.Load(afero.NewOsFs(), policyDir, logger.Named(l, "policy"))
	if err != nil {
		comps.Close()
		return nil, fmt.Errorf("load cookie policies: %w", err)
	}
	if mods := eng.Modules(); len(mods) > 0 {
		l.Info("loaded %d cookie policies: %v", len(mods), mods)
		cmOpts = append(cmOpts, cookiemanager.WithPolicy(eng))
	}

	m := messenger.New(logger.Named(l, "messenger"))
	comps.Messenger = m
	comps.cookies = cookiemanager.New(m, cbcommon.CookieChannel, comps.store, logger.Named(l, "cookies"), cmOpts...)
	comps.system = cookiemanager.NewSystem(m, cbcommon.SystemChannel, cookiemanager.VersionResult{
		Version:   currentBuildArgs.Version,
		Commit:    currentBuildArgs.Commit,
		BuildType: currentBuildArgs.BuildType,
	}, caps)

	port := opts.Port
	if port == 0 {
		port = cbcommon.TCPPort()
	}
	comps.Server = server.NewServer(logger.Named(l, "server"), m, port)
	if opts.RPCSecret != "" {
		comps.Server.SetWebServer(server.NewWebServer(logger.Named(l, "rpc"), m, server.WebConfig{
			Secret:    opts.RPCSecret,
			ListenAll: opts.RPCListenAll,
			Port:      opts.RPCPort,
		}))
	} else if opts.RPCListenAll {
		l.Warning("--rpc-listen-all has no effect without --rpc-secret")
	}
	return comps, nil
}

// newDaemonLogger logs to stderr and, when logFile is set, to that file
// too. The returned func closes the file.
func newDaemonLogger(logFile string, debug bool) (*logger.StandardLogger, logger.Logger, func(), error) {
	console := logger.NewStandardLogger(log.New(os.Stderr, "cookiebridge: ", log.LstdFlags)).WithDebug(debug)
	if logFile == "" {
		return console, console, func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, nil, err
	}
	file := logger.NewStandardLogger(log.New(f, "", log.LstdFlags)).WithDebug(debug)
	return console, logger.NewMultiLogger(console, file), func() { f.Close() }, nil
}

// prepareDaemon builds a runner from the daemon flags. extra loggers
// receive everything the daemon logs. The returned func closes the log
// file and must run after the runner stops.
func prepareDaemon(ctx *cli.Context, extra ...logger.Logger) (*daemonpkg.Runner, func(), error) {
	console, l, closeLog, err := newDaemonLogger(ctx.String("log-file"), ctx.Bool("debug") || cbcommon.DebugMode())
	if err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}
	if len(extra) > 0 {
		l = logger.NewMultiLogger(append([]logger.Logger{l}, extra...)...)
	}

	configDir, err := cbcommon.ConfigDir()
	if err != nil {
		closeLog()
		return nil, nil, fmt.Errorf("config dir: %w", err)
	}
	console.Debug("config dir %s", configDir)

	comps, err := initDaemonComponents(daemonOptions{
		ConfigDir:       configDir,
		CapabilityLevel: ctx.String("capability-level"),
		Memory:          ctx.Bool("memory"),
		Port:            ctx.Int("port"),
		PolicyDir:       ctx.String("policy-dir"),
		RPCPort:         ctx.Int("rpc-port"),
		RPCSecret:       ctx.String("rpc-secret"),
		RPCListenAll:    ctx.Bool("rpc-listen-all"),
	}, l)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return newDaemonRunner(comps), closeLog, nil
}

func newDaemonRunner(comps *daemonComponents) *daemonpkg.Runner {
	return daemonpkg.New(nil, &daemonpkg.Dependencies{
		Serve: comps.Server.Start,
		ShutdownFunc: func() error {
			comps.Close()
			return nil
		},
	})
}

// daemon runs in the foreground until interrupted.
func daemon(ctx *cli.Context) error {
	runner, closeLog, err := prepareDaemon(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "init", err)
		return nil
	}
	defer closeLog()

	sctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runner.Run(sctx)
}
