package verify

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/x/batch"
)

// RegisterRoutes routes VerifyMsg to a handler that only confirms the
// instruction went through the Decorator.
func RegisterRoutes(r gasless.Registry) {
	r.Handle(pathVerifyMsg, handler{})
}

type handler struct{}

func (h handler) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.CheckResult, error) {
	if err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &gasless.CheckResult{}, nil
}

func (h handler) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.DeliverResult, error) {
	if err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &gasless.DeliverResult{}, nil
}

func (handler) validate(ctx gasless.Context, tx gasless.Tx) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return err
	}
	if _, ok := msg.(*VerifyMsg); !ok {
		return errors.Wrapf(errors.ErrType, "%T", msg)
	}
	i, _ := batch.InstructionIndex(ctx)
	if _, ok := (Reader{}).ProofAt(ctx, i); !ok {
		return errors.Wrap(errors.ErrState, "signature was not verified")
	}
	return nil
}
