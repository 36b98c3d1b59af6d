package utils

import (
	"github.com/iov-one/gasless"
	"github.com/tendermint/tendermint/libs/common"
)

// ActionKey is the tag key set by ActionTagger.
const ActionKey = "action"

// ActionTagger tags every successful delivery with action=<message path>,
// so that relayers can subscribe to e.g. "action='permit/relay'".
//
// Place it after the batch decorator so that each instruction is tagged.
type ActionTagger struct{}

var _ gasless.Decorator = ActionTagger{}

// NewActionTagger creates a ActionTagger decorator
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

func (ActionTagger) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx, next gasless.Checker) (*gasless.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

func (ActionTagger) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx, next gasless.Deliverer) (*gasless.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, common.KVPair{
		Key:   []byte(ActionKey),
		Value: []byte(msg.Path()),
	})
	return res, nil
}
