package permit

import (
	"strconv"

	"github.com/iov-one/gasless"
	"github.com/tendermint/tendermint/libs/common"
)

// PaymentCompletedKind is the kind of PaymentCompleted events.
const PaymentCompletedKind = "payment_completed"

// PaymentCompleted is emitted by every accepted relayed transfer.
type PaymentCompleted struct {
	Owner     gasless.HexBytes `json:"owner"`
	Receiver  gasless.Address  `json:"receiver"`
	Ticker    string           `json:"ticker"`
	Amount    uint64           `json:"amount"`
	Fee       uint64           `json:"fee"`
	Relayer   gasless.Address  `json:"relayer"`
	Nonce     uint64           `json:"nonce"`
	Timestamp int64            `json:"timestamp"`
}

var _ gasless.Event = (*PaymentCompleted)(nil)

func (PaymentCompleted) EventKind() string {
	return PaymentCompletedKind
}

// EventTags allow searching transactions by escrow owner, receiver and
// relayer.
func (e PaymentCompleted) EventTags() []common.KVPair {
	return []common.KVPair{
		{Key: []byte("permit.owner"), Value: []byte(e.Owner.String())},
		{Key: []byte("permit.receiver"), Value: []byte(e.Receiver.String())},
		{Key: []byte("permit.relayer"), Value: []byte(e.Relayer.String())},
		{Key: []byte("permit.ticker"), Value: []byte(e.Ticker)},
		{Key: []byte("permit.nonce"), Value: []byte(strconv.FormatUint(e.Nonce, 10))},
	}
}
