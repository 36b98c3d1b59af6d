package permit

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/x/ledger"
)

const (
	pathInitializeEscrowMsg = "permit/initialize"
	pathRelayedTransferMsg  = "permit/relay"
)

// InitializeEscrowMsg links a custodial account to a new escrow. The owner
// must sign it.
type InitializeEscrowMsg struct {
	Owner     []byte          `protobuf:"bytes,1,opt,name=owner,proto3"`
	Ticker    string          `protobuf:"bytes,2,opt,name=ticker,proto3"`
	Custodial gasless.Address `protobuf:"bytes,3,opt,name=custodial,proto3"`
}

var _ gasless.Msg = (*InitializeEscrowMsg)(nil)

func (InitializeEscrowMsg) Path() string {
	return pathInitializeEscrowMsg
}

func (m *InitializeEscrowMsg) Validate() error {
	var errs error
	if len(m.Owner) != KeySize {
		errs = errors.AppendField(errs, "Owner", errors.ErrInput)
	}
	if !ledger.IsTicker(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrInput)
	}
	errs = errors.AppendField(errs, "Custodial", m.Custodial.Validate())
	return errs
}

// RelayedTransferMsg spends escrowed funds with an owner signed permit. The
// signature must be verified by the first instruction of the transaction.
type RelayedTransferMsg struct {
	Escrow         gasless.Address `protobuf:"bytes,1,opt,name=escrow,proto3"`
	Receiver       gasless.Address `protobuf:"bytes,2,opt,name=receiver,proto3"`
	RelayerAccount gasless.Address `protobuf:"bytes,3,opt,name=relayer_account,json=relayerAccount,proto3"`
	Amount         uint64          `protobuf:"varint,4,opt,name=amount,proto3"`
	Fee            uint64          `protobuf:"varint,5,opt,name=fee,proto3"`
	Deadline       int64           `protobuf:"varint,6,opt,name=deadline,proto3"`
	SignerKey      []byte          `protobuf:"bytes,7,opt,name=signer_key,json=signerKey,proto3"`
	Nonce          uint64          `protobuf:"varint,8,opt,name=nonce,proto3"`
}

var _ gasless.Msg = (*RelayedTransferMsg)(nil)

func (RelayedTransferMsg) Path() string {
	return pathRelayedTransferMsg
}

func (m *RelayedTransferMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Escrow", m.Escrow.Validate())
	errs = errors.AppendField(errs, "Receiver", m.Receiver.Validate())
	if m.Fee > 0 || m.RelayerAccount != nil {
		errs = errors.AppendField(errs, "RelayerAccount", m.RelayerAccount.Validate())
	}
	if len(m.SignerKey) != KeySize {
		errs = errors.AppendField(errs, "SignerKey", errors.ErrInput)
	}
	return errs
}

// Request returns the part of the message covered by the owner signature.
func (m *RelayedTransferMsg) Request() AuthorizationRequest {
	return AuthorizationRequest{
		SignerKey: m.SignerKey,
		Amount:    m.Amount,
		Fee:       m.Fee,
		Deadline:  m.Deadline,
		Nonce:     m.Nonce,
	}
}
