package utils

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
)

// Savepoint isolates all writes done by the rest of the stack. They are
// committed when the call succeeds and dropped otherwise.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ gasless.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator that does nothing until
// OnCheck or OnDeliver is called.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck returns a savepoint that also triggers on CheckTx.
func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

// OnDeliver returns a savepoint that also triggers on DeliverTx.
func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx, next gasless.Checker) (*gasless.CheckResult, error) {
	if !s.onCheck {
		return next.Check(ctx, db, tx)
	}
	var res *gasless.CheckResult
	err := savepoint(db, func(db gasless.KVStore) (err error) {
		res, err = next.Check(ctx, db, tx)
		return err
	})
	return res, err
}

func (s Savepoint) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx, next gasless.Deliverer) (*gasless.DeliverResult, error) {
	if !s.onDeliver {
		return next.Deliver(ctx, db, tx)
	}
	var res *gasless.DeliverResult
	err := savepoint(db, func(db gasless.KVStore) (err error) {
		res, err = next.Deliver(ctx, db, tx)
		return err
	})
	return res, err
}

// savepoint runs fn on a cache of db. A store that cannot be cached is
// passed through unchanged.
func savepoint(db gasless.KVStore, fn func(gasless.KVStore) error) error {
	cacheable, ok := db.(gasless.CacheableKVStore)
	if !ok {
		return fn(db)
	}
	cache := cacheable.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "writing savepoint")
	}
	return nil
}
