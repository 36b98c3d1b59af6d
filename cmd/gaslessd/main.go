package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/iov-one/gasless"
	gaslessd "github.com/iov-one/gasless/cmd/gaslessd/app"
	"github.com/iov-one/gasless/commands/server"
	"github.com/iov-one/gasless/crypto"
	"github.com/iov-one/gasless/notify"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".gasless")

	return &cli.App{
		Name:      "gaslessd",
		Usage:     "Gasless relayed transfer node",
		Version:   gasless.Version(),
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "home",
				Usage:   "directory to store files under",
				Value:   defaultHome,
				EnvVars: []string{"GASLESS_HOME"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "one of debug, info, error, none",
				Value:   "info",
				EnvVars: []string{"GASLESS_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			initCommand(),
			validateCommand(),
			startCommand(),
			keysCommand(),
		},
	}
}

func tmLogger(c *cli.Context) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(c.App.Writer)).
		With("module", "gasless")
	level, err := log.AllowLevel(c.String("log-level"))
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, level), nil
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Initialize app options in genesis file",
		ArgsUsage: "[ticker] [owner address] [protocol id hex]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "chain-id",
				Usage:   "chain id used when the genesis file does not set one",
				Value:   "gasless-dev",
				EnvVars: []string{"GASLESS_CHAIN_ID"},
			},
		},
		Action: func(c *cli.Context) error {
			logger, err := tmLogger(c)
			if err != nil {
				return err
			}
			return server.InitCmd(gaslessd.GenInitOptions, logger,
				c.String("home"), c.String("chain-id"), c.Args().Slice(), c.App.Writer)
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Load genesis files without starting a node",
		ArgsUsage: "[genesis file...]",
		Action: func(c *cli.Context) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				paths = []string{server.GenesisPath(c.String("home"))}
			}
			if err := server.ValidateGenesis(gaslessd.Initializers(), paths); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "genesis is valid")
			return nil
		},
	}
}

func startCommand() *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "Run the abci server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "bind",
				Usage:   "address server listens on",
				Value:   server.DefaultBind,
				EnvVars: []string{"GASLESS_BIND"},
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "call stack returned on error",
				EnvVars: []string{"GASLESS_DEBUG"},
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "publish events to this redis server",
				EnvVars: []string{"GASLESS_REDIS_ADDR"},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				EnvVars: []string{"GASLESS_REDIS_PASSWORD"},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				EnvVars: []string{"GASLESS_REDIS_DB"},
			},
			&cli.StringFlag{
				Name:    "redis-channel",
				Value:   notify.DefaultChannel,
				EnvVars: []string{"GASLESS_REDIS_CHANNEL"},
			},
		},
		Action: runStart,
	}
}

func runStart(c *cli.Context) error {
	logger, err := tmLogger(c)
	if err != nil {
		return err
	}
	zl, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	sinks := []notify.Sink{notify.NewLogSink(zl)}
	if addr := c.String("redis-addr"); addr != "" {
		redisSink, err := notify.NewRedisSink(&notify.RedisConfig{
			Address:  addr,
			Password: c.String("redis-password"),
			DB:       c.Int("redis-db"),
			Channel:  c.String("redis-channel"),
		}, zl)
		if err != nil {
			return err
		}
		defer func() { _ = redisSink.Close() }()
		sinks = append(sinks, redisSink)
	}
	sink := notify.Multi(sinks...)

	gen := func(home string, logger log.Logger, debug bool) (abci.Application, io.Closer, error) {
		return gaslessd.GenerateApp(home, logger, zl.Named("store"), sink, debug)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.StartCmd(ctx, gen, logger, c.String("home"), server.StartOptions{
		Bind:  c.String("bind"),
		Debug: c.Bool("debug"),
	})
}

func keysCommand() *cli.Command {
	return &cli.Command{
		Name:  "keys",
		Usage: "Manage ed25519 key files",
		Subcommands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "Write a new key file",
				ArgsUsage: "<key file>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("key file path required", 2)
					}
					key := crypto.GenPrivKeyEd25519()
					if err := crypto.SaveKey(c.Args().First(), key); err != nil {
						return err
					}
					return printKey(c.App.Writer, key)
				},
			},
			{
				Name:      "show",
				Usage:     "Print the public key and addresses of a key file",
				ArgsUsage: "<key file>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("key file path required", 2)
					}
					key, err := crypto.LoadKey(c.Args().First())
					if err != nil {
						return err
					}
					return printKey(c.App.Writer, key)
				},
			},
		},
	}
}

func printKey(out io.Writer, key *crypto.PrivateKey) error {
	pub := key.PublicKey()
	addr := pub.Address()
	b32, err := addr.Bech32()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "pubkey:  %X\n", pub.Ed25519)
	fmt.Fprintf(out, "address: %s\n", addr)
	fmt.Fprintf(out, "bech32:  %s\n", b32)
	return nil
}
