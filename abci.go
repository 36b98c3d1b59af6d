package gasless

import (
	"fmt"

	"github.com/iov-one/gasless/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// Event is a notification produced by a successful delivery, for example a
// completed relayed payment. Events never change state.
type Event interface {
	// EventKind names the event, ex. "payment_completed".
	EventKind() string
	// EventTags are indexed by tendermint with the transaction.
	EventTags() []common.KVPair
}

// DeliverResult is what a handler returns from a successful Deliver.
// Failures are reported through the error return only.
type DeliverResult struct {
	// Data is machine readable, for example the id of a created escrow.
	Data []byte
	Log  string
	Tags []common.KVPair
	// Events go to the notification sinks after the block commits the
	// transaction. Their tags are added to Tags in the abci response.
	Events  []Event
	GasUsed int64
}

// ToABCI flattens the event tags into the response tags.
func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	tags := append([]common.KVPair(nil), d.Tags...)
	for _, ev := range d.Events {
		tags = append(tags, ev.EventTags()...)
	}
	return abci.ResponseDeliverTx{
		Data:    d.Data,
		Log:     d.Log,
		Tags:    tags,
		GasUsed: d.GasUsed,
	}
}

// CheckResult is what a handler returns from a successful Check.
type CheckResult struct {
	Data []byte
	Log  string
	// GasAllocated is the work a transaction may perform once delivered.
	GasAllocated int64
	// GasPayment is the cost already accounted for by decorators, for
	// example signature verification.
	GasPayment int64
}

// NewCheck returns a CheckResult allocating the given gas.
func NewCheck(gasAllocated int64, log string) CheckResult {
	return CheckResult{GasAllocated: gasAllocated, Log: log}
}

func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// DeliverOrError builds the DeliverTx response of a handler call.
func DeliverOrError(result *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return DeliverTxError(err, debug)
	}
	return result.ToABCI()
}

// CheckOrError builds the CheckTx response of a handler call.
func CheckOrError(result *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return CheckTxError(err, debug)
	}
	return result.ToABCI()
}

// DeliverTxError reports err with its registered code. Debug mode keeps the
// full error text, stack included.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := failure("deliver", err, debug)
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

// CheckTxError is DeliverTxError for CheckTx.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := failure("check", err, debug)
	return abci.ResponseCheckTx{Code: code, Log: log}
}

func failure(phase string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code != errors.SuccessABCICode {
		log = fmt.Sprintf("cannot %s tx: %s", phase, log)
	}
	return code, log
}

// ParseDeliverOrError turns a DeliverTx response back into a result, or into
// the registered error of its code.
func ParseDeliverOrError(res abci.ResponseDeliverTx) (*DeliverResult, error) {
	if res.Code != errors.SuccessABCICode {
		return nil, errors.FromABCI(res.Code, res.Log)
	}
	return &DeliverResult{
		Data:    res.Data,
		Log:     res.Log,
		Tags:    res.Tags,
		GasUsed: res.GasUsed,
	}, nil
}
