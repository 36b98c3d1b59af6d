package app

import (
	"context"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/notify"
	abci "github.com/tendermint/tendermint/abci/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

// BaseApp adds DeliverTx and CheckTx handlers to the storage and query
// functionality of StoreApp. Events of delivered transactions are handed
// to the sink once their block is committed.
type BaseApp struct {
	*StoreApp
	decoder gasless.TxDecoder
	handler gasless.Handler
	sink    notify.Sink
	debug   bool

	// pending notifications of the current block
	pending []notify.Notification
}

var _ abci.Application = (*BaseApp)(nil)

// NewBaseApp constructs a basic abci application. sink may be nil.
func NewBaseApp(
	store *StoreApp,
	decoder gasless.TxDecoder,
	handler gasless.Handler,
	sink notify.Sink,
	debug bool,
) *BaseApp {
	return &BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		sink:     sink,
		debug:    debug,
	}
}

// DeliverTx - ABCI - dispatches to the handler
func (b *BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return gasless.DeliverTxError(err, b.debug)
	}

	ctx := gasless.WithLogInfo(b.BlockContext(),
		"call", "deliver_tx",
		"path", txPath(tx))

	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	if err == nil && b.sink != nil && len(res.Events) > 0 {
		height, _ := gasless.GetHeight(b.BlockContext())
		hash := tmtypes.Tx(txBytes).Hash()
		for _, ev := range res.Events {
			b.pending = append(b.pending, notify.Notification{
				Height: height,
				TxHash: hash,
				Event:  ev,
			})
		}
	}
	return gasless.DeliverOrError(res, err, b.debug)
}

// CheckTx - ABCI - dispatches to the handler
func (b *BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return gasless.CheckTxError(err, b.debug)
	}

	ctx := gasless.WithLogInfo(b.BlockContext(),
		"call", "check_tx",
		"path", txPath(tx))

	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return gasless.CheckOrError(res, err, b.debug)
}

// BeginBlock drops notifications of a block that was never committed.
func (b *BaseApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	b.pending = nil
	return b.StoreApp.BeginBlock(req)
}

// Commit persists the block and then notifies the sink.
func (b *BaseApp) Commit() abci.ResponseCommit {
	res := b.StoreApp.Commit()

	pending := b.pending
	b.pending = nil
	for _, n := range pending {
		if err := b.sink.Notify(context.Background(), n); err != nil {
			b.Logger().Error("cannot notify", "kind", n.Event.EventKind(), "height", n.Height, "err", err)
		}
	}
	return res
}

// loadTx calls the decoder, and capture any panics
func (b *BaseApp) loadTx(txBytes []byte) (tx gasless.Tx, err error) {
	defer errors.Recover(&err)
	tx, err = b.decoder(txBytes)
	return
}

// txPath returns the message path of tx, empty if it cannot be read.
func txPath(tx gasless.Tx) string {
	msg, err := tx.GetMsg()
	if err != nil || msg == nil {
		return ""
	}
	return msg.Path()
}
