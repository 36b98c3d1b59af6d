package permit

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/x/ledger"
)

// Payment describes the transfers of an authorized request.
type Payment struct {
	Receiver       gasless.Address
	RelayerAccount gasless.Address
	Amount         uint64
	Fee            uint64
	Nonce          uint64
}

// Executor moves escrowed funds under the derived authority of a record.
type Executor struct {
	ledger ledger.Controller
	bucket EscrowBucket
}

// NewExecutor returns an executor moving funds with ctrl. The controller
// must accept Authenticate as a debit authority.
func NewExecutor(ctrl ledger.Controller) Executor {
	return Executor{
		ledger: ctrl,
		bucket: NewEscrowBucket(),
	}
}

// Execute pays the amount to the receiver and the fee, when not zero, to the
// relayer account, then commits the nonce. All writes land in db together
// or not at all.
func (e Executor) Execute(ctx gasless.Context, db gasless.KVStore, rec *EscrowRecord, p Payment) error {
	cacheable, ok := db.(gasless.CacheableKVStore)
	if !ok {
		return errors.Wrapf(errors.ErrHuman, "%T cannot be cache wrapped", db)
	}
	cache := cacheable.CacheWrap()

	ctx = withEscrowAuthority(ctx, rec.Authority.Condition())
	if err := e.ledger.Transfer(ctx, cache, rec.Custodial, p.Receiver, p.Amount); err != nil {
		cache.Discard()
		return errors.Wrap(err, "amount")
	}
	if p.Fee > 0 {
		if err := e.ledger.Transfer(ctx, cache, rec.Custodial, p.RelayerAccount, p.Fee); err != nil {
			cache.Discard()
			return errors.Wrap(err, "fee")
		}
	}

	updated := *rec
	CommitNonce(&updated, p.Nonce)
	if err := e.bucket.Save(cache, &updated); err != nil {
		cache.Discard()
		return errors.Wrap(err, "cannot save escrow")
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "cannot write")
	}
	*rec = updated
	return nil
}
