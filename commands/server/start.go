package server

import (
	"context"
	"io"

	"github.com/iov-one/gasless/errors"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// DefaultBind is where tendermint expects the application by default.
const DefaultBind = "tcp://localhost:26658"

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags. The closer releases
// the resources of the app once the server stopped.
type AppGenerator func(home string, logger log.Logger, debug bool) (abci.Application, io.Closer, error)

// StartOptions configure the ABCI server.
type StartOptions struct {
	// Bind is the address the server listens on.
	Bind string
	// Debug returns the call stack of errors to clients.
	Debug bool
}

// StartCmd initializes the application and serves it until ctx is
// cancelled.
func StartCmd(ctx context.Context, gen AppGenerator, logger log.Logger, home string, opts StartOptions) error {
	if opts.Bind == "" {
		opts.Bind = DefaultBind
	}

	// Generate the app in the proper dir
	app, closer, err := gen(home, logger, opts.Debug)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Error("Cannot close application", "err", err)
		}
	}()

	logger.Info("Starting ABCI app", "bind", opts.Bind)

	svr, err := server.NewServer(opts.Bind, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot create listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrapf(errors.ErrState, "cannot start server: %s", err)
	}

	<-ctx.Done()
	logger.Info("Stopping ABCI app")
	if err := svr.Stop(); err != nil {
		return errors.Wrapf(errors.ErrState, "cannot stop server: %s", err)
	}
	return nil
}
