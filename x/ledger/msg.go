package ledger

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
)

const (
	pathCreateAccountMsg = "ledger/create_account"
	pathSendMsg          = "ledger/send"

	maxMemoSize = 128
)

// CreateAccountMsg opens an empty account.
type CreateAccountMsg struct {
	Owner  gasless.Address `protobuf:"bytes,1,opt,name=owner,proto3"`
	Ticker string          `protobuf:"bytes,2,opt,name=ticker,proto3"`
}

var _ gasless.Msg = (*CreateAccountMsg)(nil)

func (CreateAccountMsg) Path() string {
	return pathCreateAccountMsg
}

func (m *CreateAccountMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	if !IsTicker(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrInput)
	}
	return errs
}

// SendMsg moves funds between two accounts of the same asset. The owner of
// the source account must sign.
type SendMsg struct {
	From   gasless.Address `protobuf:"bytes,1,opt,name=from,proto3"`
	To     gasless.Address `protobuf:"bytes,2,opt,name=to,proto3"`
	Amount uint64          `protobuf:"varint,3,opt,name=amount,proto3"`
	Memo   string          `protobuf:"bytes,4,opt,name=memo,proto3"`
}

var _ gasless.Msg = (*SendMsg)(nil)

func (SendMsg) Path() string {
	return pathSendMsg
}

func (m *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "From", m.From.Validate())
	errs = errors.AppendField(errs, "To", m.To.Validate())
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	return errs
}
