package utils

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
)

// Recovery turns panics of the rest of the stack into ErrPanic, so that a
// broken transaction fails alone instead of halting the node.
type Recovery struct{}

var _ gasless.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

func (r Recovery) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx, next gasless.Checker) (_ *gasless.CheckResult, err error) {
	defer recoverAndLog(ctx, &err)
	return next.Check(ctx, db, tx)
}

func (r Recovery) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx, next gasless.Deliverer) (_ *gasless.DeliverResult, err error) {
	defer recoverAndLog(ctx, &err)
	return next.Deliver(ctx, db, tx)
}

func recoverAndLog(ctx gasless.Context, err *error) {
	if r := recover(); r != nil {
		*err = errors.Wrapf(errors.ErrPanic, "%v", r)
		gasless.GetLogger(ctx).Error("transaction panic", "err", *err)
	}
}
