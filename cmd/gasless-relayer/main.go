package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/client"
	gaslessd "github.com/iov-one/gasless/cmd/gaslessd/app"
	"github.com/iov-one/gasless/crypto"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/relayer"
	"github.com/iov-one/gasless/x/permit"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

var nodeFlag = &cli.StringFlag{
	Name:    "node",
	Usage:   "tendermint rpc address of a gasless node",
	Value:   "http://localhost:26657",
	EnvVars: []string{"GASLESS_NODE"},
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "gasless-relayer",
		Usage:     "Submit owner signed permits and collect their fee",
		Version:   gasless.Version(),
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			serveCommand(),
			signCommand(),
			openEscrowCommand(),
			{
				Name:      "keys",
				Usage:     "Write a new ed25519 key file",
				ArgsUsage: "<key file>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("key file path required", 2)
					}
					key := crypto.GenPrivKeyEd25519()
					if err := crypto.SaveKey(c.Args().First(), key); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "address: %s\n", key.PublicKey().Address())
					return nil
				},
			},
		},
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the relayer HTTP service",
		Flags: []cli.Flag{
			nodeFlag,
			&cli.StringFlag{
				Name:     "key",
				Usage:    "relayer key file, signs and pays for transactions",
				EnvVars:  []string{"GASLESS_RELAYER_KEY"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "HTTP listen address",
				Value:   ":8080",
				EnvVars: []string{"GASLESS_RELAYER_ADDR"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "require this value in the X-Relayer-Key header",
				EnvVars: []string{"RELAYER_API_KEY"},
			},
			&cli.Float64Flag{
				Name:    "rate",
				Usage:   "accepted requests per second, 0 for no limit",
				Value:   10,
				EnvVars: []string{"GASLESS_RELAYER_RATE"},
			},
			&cli.IntFlag{
				Name:    "burst",
				Value:   20,
				EnvVars: []string{"GASLESS_RELAYER_BURST"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "time limit of one relay request",
				Value:   30 * time.Second,
				EnvVars: []string{"GASLESS_RELAYER_TIMEOUT"},
			},
			&cli.StringFlag{
				Name:    "journal",
				Usage:   "submission journal backend: memory, badger or redis",
				Value:   "memory",
				EnvVars: []string{"GASLESS_RELAYER_JOURNAL"},
			},
			&cli.StringFlag{
				Name:    "journal-dir",
				Usage:   "directory of the badger journal",
				Value:   filepath.Join(os.ExpandEnv("$HOME"), ".gasless-relayer", "journal"),
				EnvVars: []string{"GASLESS_RELAYER_JOURNAL_DIR"},
			},
			&cli.StringFlag{
				Name:    "redis-addr",
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
			&cli.BoolFlag{
				Name:    "dev",
				Usage:   "human readable development logging",
				EnvVars: []string{"GASLESS_RELAYER_DEV"},
			},
		},
		Action: runServe,
	}
}

func openJournal(c *cli.Context, logger *zap.Logger) (relayer.Journal, error) {
	switch kind := c.String("journal"); kind {
	case "memory":
		return relayer.NewMemoryJournal(), nil
	case "badger":
		return relayer.NewBadgerJournal(c.String("journal-dir"), logger)
	case "redis":
		return relayer.NewRedisJournal(&relayer.RedisConfig{
			Address:  c.String("redis-addr"),
			Password: c.String("redis-password"),
			DB:       c.Int("redis-db"),
		}, logger)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown journal %q", kind)
	}
}

func runServe(c *cli.Context) error {
	logger, err := newLogger(c.Bool("dev"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	key, err := crypto.LoadKey(c.String("key"))
	if err != nil {
		return err
	}
	journal, err := openJournal(c, logger)
	if err != nil {
		return err
	}

	chain := client.NewClient(client.NewHTTPConnection(c.String("node")))
	r := relayer.NewRelayer(chain, key, journal, logger, nil)
	defer func() { _ = r.Close() }()

	srv := relayer.NewServer(r, relayer.ServerConfig{
		Addr:          c.String("addr"),
		APIKey:        c.String("api-key"),
		RatePerSecond: c.Float64("rate"),
		Burst:         c.Int("burst"),
		Timeout:       c.Duration("timeout"),
	}, logger)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func signCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "Sign a permit with an owner key and print its JSON",
		Flags: []cli.Flag{
			nodeFlag,
			&cli.StringFlag{
				Name:     "key",
				Usage:    "owner key file",
				EnvVars:  []string{"GASLESS_OWNER_KEY"},
				Required: true,
			},
			&cli.StringFlag{
				Name:  "ticker",
				Value: gaslessd.DefaultTicker,
			},
			&cli.StringFlag{
				Name:     "receiver",
				Usage:    "address paid by the permit",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:     "amount",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:  "fee",
				Usage: "paid to the relayer",
			},
			&cli.DurationFlag{
				Name:  "valid-for",
				Usage: "the permit expires this long from now",
				Value: time.Hour,
			},
			&cli.Uint64Flag{
				Name:  "nonce",
				Usage: "permit nonce, the next nonce of the escrow when zero",
			},
			&cli.StringFlag{
				Name:  "protocol-id",
				Usage: "hex protocol id of the chain, queried when empty",
			},
		},
		Action: runSign,
	}
}

func runSign(c *cli.Context) error {
	key, err := crypto.LoadKey(c.String("key"))
	if err != nil {
		return err
	}
	receiver, err := gasless.ParseAddress(c.String("receiver"))
	if err != nil {
		return err
	}
	escrow := permit.EscrowID(key.PublicKey().Ed25519, c.String("ticker"))

	ctx := c.Context
	chain := client.NewClient(client.NewHTTPConnection(c.String("node")))

	var protocolID []byte
	if enc := c.String("protocol-id"); enc != "" {
		if protocolID, err = gasless.ParseHex(enc); err != nil {
			return err
		}
	} else if protocolID, err = chain.ProtocolID(ctx); err != nil {
		return err
	}

	nonce := c.Uint64("nonce")
	if nonce == 0 {
		if nonce, err = chain.NextNonce(ctx, escrow); err != nil {
			return err
		}
	}

	deadline := time.Now().Add(c.Duration("valid-for")).Unix()
	p, err := relayer.SignPermit(key, protocolID, escrow, receiver,
		c.Uint64("amount"), c.Uint64("fee"), deadline, nonce)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func openEscrowCommand() *cli.Command {
	return &cli.Command{
		Name:  "open-escrow",
		Usage: "Create the escrow of an owner key and fund it from the owner account",
		Flags: []cli.Flag{
			nodeFlag,
			&cli.StringFlag{
				Name:     "key",
				Usage:    "owner key file",
				EnvVars:  []string{"GASLESS_OWNER_KEY"},
				Required: true,
			},
			&cli.StringFlag{
				Name:  "ticker",
				Value: gaslessd.DefaultTicker,
			},
			&cli.Uint64Flag{
				Name:  "deposit",
				Usage: "amount moved into the escrow",
			},
		},
		Action: func(c *cli.Context) error {
			key, err := crypto.LoadKey(c.String("key"))
			if err != nil {
				return err
			}
			chain := client.NewClient(client.NewHTTPConnection(c.String("node")))
			res, err := openEscrow(c.Context, chain, key, c.String("ticker"), c.Uint64("deposit"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "escrow %s opened at height %d\n",
				permit.EscrowID(key.PublicKey().Ed25519, c.String("ticker")), res.Height)
			return nil
		},
	}
}

func openEscrow(ctx context.Context, chain *client.Client, owner *crypto.PrivateKey, ticker string, deposit uint64) (*client.CommitResult, error) {
	tx, err := gaslessd.OpenEscrowTx(owner.PublicKey().Ed25519, ticker, deposit)
	if err != nil {
		return nil, err
	}
	sig, err := chain.SignTx(ctx, tx, owner)
	if err != nil {
		return nil, err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return chain.BroadcastTxCommit(ctx, tx)
}
