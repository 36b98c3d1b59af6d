package ledger

import (
	"math"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/x"
)

// Controller is the ledger primitive other extensions build on.
type Controller interface {
	CreateAccount(db gasless.KVStore, owner gasless.Address, ticker string) (*Account, error)
	Balance(db gasless.ReadOnlyKVStore, id gasless.Address) (*Account, error)
	Transfer(ctx gasless.Context, db gasless.KVStore, from, to gasless.Address, amount uint64) error
}

// BaseController implements Controller. Debits are authorized with the
// given authenticator.
type BaseController struct {
	auth   x.Authenticator
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a controller that uses auth to authorize debits.
func NewController(auth x.Authenticator) BaseController {
	return BaseController{
		auth:   auth,
		bucket: NewBucket(),
	}
}

// CreateAccount opens an empty account. Anyone may open an account for any
// owner.
func (c BaseController) CreateAccount(db gasless.KVStore, owner gasless.Address, ticker string) (*Account, error) {
	acc := &Account{Owner: owner, Ticker: ticker}
	if err := acc.Validate(); err != nil {
		return nil, err
	}
	switch ok, err := c.bucket.Has(db, acc.ID()); {
	case err != nil:
		return nil, errors.Wrap(err, "cannot read account")
	case ok:
		return nil, errors.Wrapf(errors.ErrDuplicate, "account %s", acc.ID())
	}
	if err := c.bucket.Save(db, acc); err != nil {
		return nil, errors.Wrap(err, "cannot save account")
	}
	return acc, nil
}

// Balance returns the account stored under id.
func (c BaseController) Balance(db gasless.ReadOnlyKVStore, id gasless.Address) (*Account, error) {
	return c.bucket.Get(db, id)
}

// Transfer moves amount between two accounts of the same asset. The owner
// of the source account must be authenticated.
func (c BaseController) Transfer(ctx gasless.Context, db gasless.KVStore, from, to gasless.Address, amount uint64) error {
	src, err := c.bucket.Get(db, from)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	if !c.auth.HasAddress(ctx, src.Owner) {
		return errors.Wrapf(errors.ErrUnauthorized, "account %s owner", from)
	}
	dst, err := c.bucket.Get(db, to)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if src.Ticker != dst.Ticker {
		return errors.Wrapf(errors.ErrAccountMismatch, "cannot move %s to a %s account", src.Ticker, dst.Ticker)
	}
	if src.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientFunds, "%d %s available", src.Amount, src.Ticker)
	}
	if from.Equals(to) {
		return nil
	}
	if dst.Amount > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}
	src.Amount -= amount
	dst.Amount += amount

	if err := c.bucket.Save(db, src); err != nil {
		return errors.Wrap(err, "cannot save source")
	}
	if err := c.bucket.Save(db, dst); err != nil {
		return errors.Wrap(err, "cannot save destination")
	}
	return nil
}

// Mint credits amount to the account of owner, creating it if needed. It is
// only used when loading the genesis state.
func (c BaseController) Mint(db gasless.KVStore, owner gasless.Address, ticker string, amount uint64) error {
	acc, err := c.bucket.Get(db, AccountID(owner, ticker))
	switch {
	case errors.ErrNotFound.Is(err):
		acc = &Account{Owner: owner, Ticker: ticker}
	case err != nil:
		return err
	}
	if acc.Amount > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	acc.Amount += amount
	return c.bucket.Save(db, acc)
}
