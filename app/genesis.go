package app

import (
	"encoding/json"
	"os"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
)

// ChainInitializers lets you initialize many extensions with one function.
func ChainInitializers(inits ...gasless.Initializer) gasless.Initializer {
	return chainInitializers(inits)
}

type chainInitializers []gasless.Initializer

// FromGenesis passes opts to all initializers in order, aborting at the
// first error.
func (c chainInitializers) FromGenesis(opts gasless.Options, kv gasless.KVStore) error {
	for _, i := range c {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}

// GenesisDoc involves some tendermint-specific structures we don't want to
// parse, so we just grab it into a raw object format.
type GenesisDoc map[string]json.RawMessage

// AddGenesisOptions sets the app_state of the genesis file at path. The
// file is created when it does not exist yet.
func AddGenesisOptions(path, chainID string, options json.RawMessage) error {
	doc := GenesisDoc{}
	switch raw, err := os.ReadFile(path); {
	case err == nil:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return errors.Wrapf(errors.ErrInput, "genesis file %s: %s", path, err)
		}
	case os.IsNotExist(err):
	default:
		return errors.Wrap(err, "cannot read genesis file")
	}

	if _, ok := doc["chain_id"]; !ok {
		if !gasless.IsValidChainID(chainID) {
			return errors.Wrapf(errors.ErrInput, "chain id: %q", chainID)
		}
		doc["chain_id"], _ = json.Marshal(chainID)
	}
	doc["app_state"] = options

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot serialize genesis")
	}
	return os.WriteFile(path, out, 0o600)
}
