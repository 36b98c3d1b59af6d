package verify

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/crypto"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/x/batch"
)

// Decorator verifies all signature instructions of a transaction before
// any instruction is executed and records the result in the context.
type Decorator struct{}

var _ gasless.Decorator = Decorator{}

// NewDecorator returns a verification decorator.
func NewDecorator() Decorator {
	return Decorator{}
}

func (d Decorator) Check(ctx gasless.Context, store gasless.KVStore, tx gasless.Tx, next gasless.Checker) (*gasless.CheckResult, error) {
	records, err := verifyTx(tx)
	if err != nil {
		return nil, err
	}
	return next.Check(withRecords(ctx, records), store, tx)
}

func (d Decorator) Deliver(ctx gasless.Context, store gasless.KVStore, tx gasless.Tx, next gasless.Deliverer) (*gasless.DeliverResult, error) {
	records, err := verifyTx(tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(withRecords(ctx, records), store, tx)
}

func verifyTx(tx gasless.Tx) ([]Record, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	msgs := []gasless.Msg{msg}
	if b, ok := msg.(batch.Msg); ok {
		if msgs, err = b.MsgList(); err != nil {
			return nil, errors.Wrap(err, "cannot retrieve instructions")
		}
	}

	var records []Record
	for i, m := range msgs {
		vm, ok := m.(*VerifyMsg)
		if !ok {
			continue
		}
		if err := Verify(vm); err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
		records = append(records, Record{
			Index:   i,
			Scheme:  vm.Scheme,
			Pubkey:  vm.Pubkey,
			Message: vm.Message,
		})
	}
	return records, nil
}

// Verify checks the signature of a single instruction.
func Verify(m *VerifyMsg) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if !crypto.NewPublicKey(m.Pubkey).Verify(m.Message, m.Signature) {
		return errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	return nil
}
