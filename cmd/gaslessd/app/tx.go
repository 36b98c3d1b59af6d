package gaslessd

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/x/batch"
	"github.com/iov-one/gasless/x/ledger"
	"github.com/iov-one/gasless/x/permit"
	"github.com/iov-one/gasless/x/sigs"
	"github.com/iov-one/gasless/x/verify"
)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (gasless.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

// make sure tx fulfills all interfaces
var _ gasless.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// Tx is the transaction format of the gaslessd chain: an ordered list of
// instructions and the signatures of the whole list.
type Tx struct {
	Instructions []*Instruction       `protobuf:"bytes,1,rep,name=instructions,proto3"`
	Signatures   []*sigs.StdSignature `protobuf:"bytes,2,rep,name=signatures,proto3"`
}

// NewTx wraps the given messages, in order, into a transaction.
func NewTx(msgs ...gasless.Msg) (*Tx, error) {
	tx := &Tx{Instructions: make([]*Instruction, len(msgs))}
	for i, m := range msgs {
		inst, err := NewInstruction(m)
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
		tx.Instructions[i] = inst
	}
	return tx, nil
}

// GetMsg returns the only instruction of the transaction or, when there are
// more, all of them as a batch.
func (tx *Tx) GetMsg() (gasless.Msg, error) {
	switch len(tx.Instructions) {
	case 0:
		return nil, errors.Wrap(errors.ErrEmpty, "no instructions")
	case 1:
		return tx.Instructions[0].Msg()
	}
	msgs := make(Instructions, len(tx.Instructions))
	for i, inst := range tx.Instructions {
		m, err := inst.Msg()
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", i)
		}
		msgs[i] = m
	}
	return &msgs, nil
}

// GetSignatures returns the signatures of the transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign...
func (tx *Tx) GetSignBytes() ([]byte, error) {
	// temporarily unset the signatures, as the sign bytes
	// should only come from the data itself, not previous signatures
	sigs := tx.Signatures
	tx.Signatures = nil

	bz, err := tx.Marshal()

	// reset the signatures after calculating the bytes
	tx.Signatures = sigs
	return bz, err
}

// Instruction holds exactly one of the messages the chain understands.
type Instruction struct {
	VerifyMsg           *verify.VerifyMsg           `protobuf:"bytes,1,opt,name=verify_msg,json=verifyMsg,proto3"`
	CreateAccountMsg    *ledger.CreateAccountMsg    `protobuf:"bytes,2,opt,name=create_account_msg,json=createAccountMsg,proto3"`
	SendMsg             *ledger.SendMsg             `protobuf:"bytes,3,opt,name=send_msg,json=sendMsg,proto3"`
	InitializeEscrowMsg *permit.InitializeEscrowMsg `protobuf:"bytes,4,opt,name=initialize_escrow_msg,json=initializeEscrowMsg,proto3"`
	RelayedTransferMsg  *permit.RelayedTransferMsg  `protobuf:"bytes,5,opt,name=relayed_transfer_msg,json=relayedTransferMsg,proto3"`
}

// NewInstruction puts msg in the matching field of a new instruction.
func NewInstruction(msg gasless.Msg) (*Instruction, error) {
	switch m := msg.(type) {
	case *verify.VerifyMsg:
		return &Instruction{VerifyMsg: m}, nil
	case *ledger.CreateAccountMsg:
		return &Instruction{CreateAccountMsg: m}, nil
	case *ledger.SendMsg:
		return &Instruction{SendMsg: m}, nil
	case *permit.InitializeEscrowMsg:
		return &Instruction{InitializeEscrowMsg: m}, nil
	case *permit.RelayedTransferMsg:
		return &Instruction{RelayedTransferMsg: m}, nil
	}
	return nil, errors.Wrapf(errors.ErrType, "unsupported message %T", msg)
}

// GetSum returns the message that is set, or nil.
func (i *Instruction) GetSum() interface{} {
	switch {
	case i.VerifyMsg != nil:
		return i.VerifyMsg
	case i.CreateAccountMsg != nil:
		return i.CreateAccountMsg
	case i.SendMsg != nil:
		return i.SendMsg
	case i.InitializeEscrowMsg != nil:
		return i.InitializeEscrowMsg
	case i.RelayedTransferMsg != nil:
		return i.RelayedTransferMsg
	}
	return nil
}

// Msg returns the message of the instruction.
func (i *Instruction) Msg() (gasless.Msg, error) {
	return gasless.ExtractMsgFromSum(i.GetSum())
}

// Instructions is the message of a transaction with more than one
// instruction. It never reaches the router; batch.Decorator splits it.
type Instructions []gasless.Msg

var _ batch.Msg = (*Instructions)(nil)

func (Instructions) Path() string {
	return "batch/execute"
}

func (m *Instructions) Validate() error {
	return batch.Validate(m)
}

func (m *Instructions) MsgList() ([]gasless.Msg, error) {
	return *m, nil
}

func (m *Instructions) Marshal() ([]byte, error) {
	tx, err := NewTx(*m...)
	if err != nil {
		return nil, err
	}
	return tx.Marshal()
}

func (m *Instructions) Unmarshal(raw []byte) error {
	var tx Tx
	if err := tx.Unmarshal(raw); err != nil {
		return err
	}
	out := make(Instructions, len(tx.Instructions))
	for i, inst := range tx.Instructions {
		msg, err := inst.Msg()
		if err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
		out[i] = msg
	}
	*m = out
	return nil
}
