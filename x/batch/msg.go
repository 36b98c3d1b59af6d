package batch

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
)

// MaxInstructions is the greatest number of instructions a single
// transaction may hold.
const MaxInstructions = 16

// Msg is implemented by messages that carry a list of instructions.
type Msg interface {
	gasless.Msg
	MsgList() ([]gasless.Msg, error)
}

// Validate checks the instruction list of a batch message, including every
// instruction.
func Validate(msg Msg) error {
	msgs, err := msg.MsgList()
	if err != nil {
		return errors.Wrap(err, "cannot retrieve instructions")
	}
	if len(msgs) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no instructions")
	}
	if len(msgs) > MaxInstructions {
		return errors.Wrapf(errors.ErrInput, "transaction must not have more than %d instructions", MaxInstructions)
	}
	for i, m := range msgs {
		if m == nil {
			return errors.Wrapf(errors.ErrEmpty, "instruction %d", i)
		}
		if err := m.Validate(); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}
	return nil
}

// ByteArrayList is the combined Data of all instructions of a transaction.
type ByteArrayList struct {
	Elements [][]byte `protobuf:"bytes,1,rep,name=elements,proto3"`
}
