package server

import (
	"encoding/json"
	"os"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/store"
)

// ValidateGenesis loads the app state of every genesis file with ini and
// returns the first failure. Nothing is persisted.
func ValidateGenesis(ini gasless.Initializer, genesisPaths []string) error {
	if len(genesisPaths) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no genesis file")
	}
	for _, path := range genesisPaths {
		if err := validateGenesis(ini, path); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func validateGenesis(ini gasless.Initializer, genesisPath string) error {
	b, err := os.ReadFile(genesisPath)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	var genesis struct {
		ChainID string          `json:"chain_id"`
		State   gasless.Options `json:"app_state"`
	}
	if err := json.Unmarshal(b, &genesis); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot JSON deserialize genesis: %s", err)
	}
	if !gasless.IsValidChainID(genesis.ChainID) {
		return errors.Wrapf(errors.ErrInput, "chain id %q", genesis.ChainID)
	}
	if genesis.State == nil {
		return errors.Wrap(errors.ErrEmpty, "app_state not set in genesis.json")
	}

	// Use in memory store because we want to discard the result.
	db := store.MemStore()

	if err := ini.FromGenesis(genesis.State, db); err != nil {
		return errors.Wrap(err, "cannot initialize from genesis")
	}
	return nil
}
