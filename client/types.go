package client

import (
	cmn "github.com/tendermint/tendermint/libs/common"
)

// TransactionID is the hash used to identify the transaction
type TransactionID = cmn.HexBytes

// Status is the current status of the node we connect to.
type Status struct {
	ChainID    string
	Height     int64
	CatchingUp bool
}

// CommitResult describes a transaction included in a block.
type CommitResult struct {
	ID     TransactionID
	Height int64
	Tags   []cmn.KVPair
	Log    string
}

// Tag returns the value of the first tag with the given key.
func (r *CommitResult) Tag(key string) (string, bool) {
	for _, kv := range r.Tags {
		if string(kv.Key) == key {
			return string(kv.Value), true
		}
	}
	return "", false
}
