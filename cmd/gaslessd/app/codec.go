package gaslessd

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/gasless/codec"
	"github.com/iov-one/gasless/errors"
)

// Wire views, see package codec. The schema is in codec.proto.

type txView Tx

func (v *txView) Reset()         { *v = txView{} }
func (v *txView) String() string { return proto.CompactTextString(v) }
func (*txView) ProtoMessage()    {}

func (tx *Tx) Marshal() ([]byte, error) {
	for i, inst := range tx.Instructions {
		if inst == nil || inst.GetSum() == nil {
			return nil, errors.Wrapf(errors.ErrEmpty, "instruction %d", i)
		}
	}
	for i, sig := range tx.Signatures {
		if sig == nil {
			return nil, errors.Wrapf(errors.ErrEmpty, "signature %d", i)
		}
	}
	return codec.Marshal((*txView)(tx))
}

func (tx *Tx) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*txView)(tx))
}

type instructionView Instruction

func (v *instructionView) Reset()         { *v = instructionView{} }
func (v *instructionView) String() string { return proto.CompactTextString(v) }
func (*instructionView) ProtoMessage()    {}

func (i *Instruction) Marshal() ([]byte, error) {
	if i.GetSum() == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "instruction without message")
	}
	return codec.Marshal((*instructionView)(i))
}

func (i *Instruction) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*instructionView)(i))
}
