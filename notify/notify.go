/*
Package notify delivers events of committed transactions to the outside
world. The node buffers events of a block and hands them to every Sink once
the block is committed. Delivery is best effort: a failing sink is logged
and never affects the chain.
*/
package notify

import (
	"context"
	"encoding/json"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
)

// Notification is a single event together with where it happened.
type Notification struct {
	Height int64
	TxHash gasless.HexBytes
	Event  gasless.Event
}

// MarshalJSON flattens the notification, the event is keyed by its kind.
func (n Notification) MarshalJSON() ([]byte, error) {
	if n.Event == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "event")
	}
	return json.Marshal(struct {
		Height int64            `json:"height"`
		TxHash gasless.HexBytes `json:"tx_hash"`
		Kind   string           `json:"kind"`
		Event  gasless.Event    `json:"event"`
	}{
		Height: n.Height,
		TxHash: n.TxHash,
		Kind:   n.Event.EventKind(),
		Event:  n.Event,
	})
}

// Sink receives notifications of committed blocks.
type Sink interface {
	Notify(ctx context.Context, n Notification) error
}

// Multi returns a sink notifying all sinks in order. All sinks are called
// even if one fails and all errors are returned.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

type multiSink []Sink

func (m multiSink) Notify(ctx context.Context, n Notification) error {
	var errs error
	for _, s := range m {
		errs = errors.Append(errs, s.Notify(ctx, n))
	}
	return errs
}
