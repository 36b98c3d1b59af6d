/*
Package server implements the node commands shared by gasless binaries:
writing the genesis app state, validating a genesis file and running the
ABCI server.
*/
package server

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/iov-one/gasless/app"
	"github.com/iov-one/gasless/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// GenOptions can parse command-line arguments to generate default
// app_options for the genesis file. This is application-specific. Anything
// the user must keep (generated keys) is written to out.
type GenOptions func(args []string, out io.Writer) (json.RawMessage, error)

// GenesisPath returns the location of the genesis file under home, the same
// place tendermint reads it from.
func GenesisPath(home string) string {
	return filepath.Join(home, "config", "genesis.json")
}

// InitCmd will add proper app_options to the genesis file under home,
// creating it when tendermint has not been initialized yet.
func InitCmd(gen GenOptions, logger log.Logger, home, chainID string, args []string, out io.Writer) error {
	genFile := GenesisPath(home)
	if err := os.MkdirAll(filepath.Dir(genFile), 0o755); err != nil {
		return errors.Wrap(err, "cannot create config directory")
	}

	options, err := gen(args, out)
	if err != nil {
		return err
	}
	if err := app.AddGenesisOptions(genFile, chainID, options); err != nil {
		return err
	}
	logger.Info("App state written to genesis", "path", genFile)
	return nil
}
