package ledger

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
)

const optKey = "ledger"

// GenesisAccount is a single initial balance. Owner is in hex.
type GenesisAccount struct {
	Owner  gasless.Address `json:"owner"`
	Ticker string          `json:"ticker"`
	Amount uint64          `json:"amount"`
}

// Initializer loads initial balances from the genesis file.
type Initializer struct{}

var _ gasless.Initializer = Initializer{}

// FromGenesis creates or credits every listed account.
func (Initializer) FromGenesis(opts gasless.Options, db gasless.KVStore) error {
	var accounts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accounts); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	ctrl := NewController(nil)
	for i, a := range accounts {
		if err := ctrl.Mint(db, a.Owner, a.Ticker, a.Amount); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
