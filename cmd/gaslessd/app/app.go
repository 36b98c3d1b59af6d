/*
Package gaslessd links together all the various components
to construct the gaslessd app.
*/
package gaslessd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/app"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/notify"
	"github.com/iov-one/gasless/store/iavl"
	"github.com/iov-one/gasless/x"
	"github.com/iov-one/gasless/x/batch"
	"github.com/iov-one/gasless/x/ledger"
	"github.com/iov-one/gasless/x/permit"
	"github.com/iov-one/gasless/x/sigs"
	"github.com/iov-one/gasless/x/utils"
	"github.com/iov-one/gasless/x/verify"
	"go.uber.org/zap"
)

// Name is returned in the ABCI Info response.
const Name = "gaslessd"

// Authenticator returns the typical authentication, transaction signatures
// and the escrow authority granted while a permit is executed.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{}, permit.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// signature proofs, logging, and recovery
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// an invalid proof fails the transaction before any handler runs
		verify.NewDecorator(),
		// on DeliverTx, bad tx will increment the signer sequence
		// even if the message fails
		utils.NewSavepoint().OnDeliver(),
		batch.NewDecorator(),
		utils.NewActionTagger(),
	)
}

// Router returns a default router for all messages of the chain.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	ctrl := ledger.NewController(authFn)
	ledger.RegisterRoutes(r, ctrl)
	verify.RegisterRoutes(r)
	permit.RegisterRoutes(r, authFn, ctrl, verify.Reader{})
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/accounts", "/escrows", "/auth" and "/gconf/permit"
func QueryRouter() app.QueryRouter {
	r := app.NewQueryRouter()
	r.RegisterAll(
		ledger.RegisterQuery,
		permit.RegisterQuery,
		sigs.RegisterQuery,
	)
	return r
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack() gasless.Handler {
	authFn := Authenticator()
	return Chain().WithHandler(Router(authFn))
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack(). sink may be nil.
func Application(name string, h gasless.Handler, tx gasless.TxDecoder,
	kv gasless.CommitKVStore, sink notify.Sink, debug bool) (*app.BaseApp, error) {

	store, err := app.NewStoreApp(name, kv, QueryRouter(), context.Background())
	if err != nil {
		return nil, err
	}
	return app.NewBaseApp(store, tx, h, sink, debug), nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string, logger *zap.Logger) (*iavl.CommitStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database path %q", dbPath)
	}
	// Some external calls accidentally add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name, logger)
}
