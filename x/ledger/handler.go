package ledger

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
)

const (
	createAccountCost = 50
	sendCost          = 100
)

// RegisterRoutes registers the ledger message handlers.
func RegisterRoutes(r gasless.Registry, ctrl Controller) {
	r.Handle(pathCreateAccountMsg, CreateAccountHandler{ctrl: ctrl})
	r.Handle(pathSendMsg, SendHandler{ctrl: ctrl})
}

// RegisterQuery exposes accounts as "/accounts".
func RegisterQuery(qr gasless.QueryRegister) {
	NewBucket().Register("accounts", qr)
}

// CreateAccountHandler opens accounts.
type CreateAccountHandler struct {
	ctrl Controller
}

var _ gasless.Handler = CreateAccountHandler{}

func (h CreateAccountHandler) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.CheckResult, error) {
	var msg CreateAccountMsg
	if err := gasless.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &gasless.CheckResult{GasAllocated: createAccountCost}, nil
}

func (h CreateAccountHandler) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.DeliverResult, error) {
	var msg CreateAccountMsg
	if err := gasless.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	acc, err := h.ctrl.CreateAccount(db, msg.Owner, msg.Ticker)
	if err != nil {
		return nil, err
	}
	return &gasless.DeliverResult{Data: acc.ID()}, nil
}

// SendHandler moves funds on behalf of an authenticated owner.
type SendHandler struct {
	ctrl Controller
}

var _ gasless.Handler = SendHandler{}

func (h SendHandler) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.CheckResult, error) {
	var msg SendMsg
	if err := gasless.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &gasless.CheckResult{GasAllocated: sendCost}, nil
}

func (h SendHandler) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.DeliverResult, error) {
	var msg SendMsg
	if err := gasless.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.ctrl.Transfer(ctx, db, msg.From, msg.To, msg.Amount); err != nil {
		return nil, err
	}
	return &gasless.DeliverResult{}, nil
}
