package batch

import (
	"strings"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
)

// Decorator iterates through batch transaction messages and passes them down the stack
type Decorator struct{}

var _ gasless.Decorator = Decorator{}

// NewDecorator returns a batch transaction decorator
func NewDecorator() Decorator {
	return Decorator{}
}

// BatchTx is passed down the stack for every instruction. GetMsg returns
// the instruction, everything else is the original transaction.
type BatchTx struct {
	gasless.Tx
	Msg gasless.Msg
}

func (tx *BatchTx) GetMsg() (gasless.Msg, error) {
	return tx.Msg, nil
}

// Check iterates through messages in a batch transaction and passes them
// down the stack
func (d Decorator) Check(ctx gasless.Context, store gasless.KVStore, tx gasless.Tx, next gasless.Checker) (*gasless.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}

	batchMsg, ok := msg.(Msg)
	if !ok {
		return next.Check(withInstructionIndex(ctx, 0), store, tx)
	}
	if err := Validate(batchMsg); err != nil {
		return nil, err
	}
	msgList, _ := batchMsg.MsgList()

	checks := make([]*gasless.CheckResult, len(msgList))
	for i, m := range msgList {
		checks[i], err = next.Check(withInstructionIndex(ctx, i), store, &BatchTx{Tx: tx, Msg: m})
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
	}
	return d.combineChecks(checks)
}

// combines all data bytes as a ByteArrayList.
// joins all log messages with \n
func (*Decorator) combineChecks(checks []*gasless.CheckResult) (*gasless.CheckResult, error) {
	var datas ByteArrayList
	logs := make([]string, len(checks))
	var allocated, payments int64
	for i, r := range checks {
		datas.Elements = append(datas.Elements, r.Data)
		logs[i] = r.Log
		allocated += r.GasAllocated
		payments += r.GasPayment
	}
	data, err := datas.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "cannot combine results")
	}
	return &gasless.CheckResult{
		Data:         data,
		Log:          strings.Join(logs, "\n"),
		GasAllocated: allocated,
		GasPayment:   payments,
	}, nil
}

// Deliver iterates through messages in a batch transaction and passes them
// down the stack
func (d Decorator) Deliver(ctx gasless.Context, store gasless.KVStore, tx gasless.Tx, next gasless.Deliverer) (*gasless.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}

	batchMsg, ok := msg.(Msg)
	if !ok {
		return next.Deliver(withInstructionIndex(ctx, 0), store, tx)
	}
	if err := Validate(batchMsg); err != nil {
		return nil, err
	}
	msgList, _ := batchMsg.MsgList()

	delivers := make([]*gasless.DeliverResult, len(msgList))
	for i, m := range msgList {
		delivers[i], err = next.Deliver(withInstructionIndex(ctx, i), store, &BatchTx{Tx: tx, Msg: m})
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
	}
	return d.combineDelivers(delivers)
}

// combines all data bytes as a ByteArrayList.
// joins all log messages with \n
func (*Decorator) combineDelivers(delivers []*gasless.DeliverResult) (*gasless.DeliverResult, error) {
	var datas ByteArrayList
	logs := make([]string, len(delivers))
	var gas int64
	res := &gasless.DeliverResult{}
	for i, r := range delivers {
		datas.Elements = append(datas.Elements, r.Data)
		logs[i] = r.Log
		gas += r.GasUsed
		res.Tags = append(res.Tags, r.Tags...)
		res.Events = append(res.Events, r.Events...)
	}
	data, err := datas.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "cannot combine results")
	}
	res.Data = data
	res.Log = strings.Join(logs, "\n")
	res.GasUsed = gas
	return res, nil
}
