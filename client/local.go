package client

import (
	"sync"
	"time"

	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/p2p"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
)

// LocalConnection drives an in-process abci application without a
// tendermint node. Every broadcast transaction is checked, then delivered
// and committed in a block of its own.
type LocalConnection struct {
	mu      sync.Mutex
	app     abci.Application
	chainID string
	height  int64
	now     func() time.Time
}

var _ Connection = (*LocalConnection)(nil)

// NewLocalConnection returns a connection to app. The chain must already be
// initialized. now provides block times, time.Now is used when nil.
func NewLocalConnection(app abci.Application, chainID string, now func() time.Time) *LocalConnection {
	if now == nil {
		now = time.Now
	}
	return &LocalConnection{
		app:     app,
		chainID: chainID,
		height:  app.Info(abci.RequestInfo{}).LastBlockHeight,
		now:     now,
	}
}

func (c *LocalConnection) Status() (*ctypes.ResultStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &ctypes.ResultStatus{
		NodeInfo: p2p.DefaultNodeInfo{Network: c.chainID},
		SyncInfo: ctypes.SyncInfo{LatestBlockHeight: c.height},
	}, nil
}

func (c *LocalConnection) ABCIQuery(path string, data cmn.HexBytes) (*ctypes.ResultABCIQuery, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := c.app.Query(abci.RequestQuery{Path: path, Data: data})
	return &ctypes.ResultABCIQuery{Response: res}, nil
}

func (c *LocalConnection) BroadcastTxCommit(tx tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := &ctypes.ResultBroadcastTxCommit{Hash: tx.Hash()}
	res.CheckTx = c.app.CheckTx(tx)
	if res.CheckTx.IsErr() {
		return res, nil
	}

	c.height++
	c.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{
		ChainID: c.chainID,
		Height:  c.height,
		Time:    c.now(),
	}})
	res.DeliverTx = c.app.DeliverTx(tx)
	c.app.EndBlock(abci.RequestEndBlock{Height: c.height})
	c.app.Commit()
	res.Height = c.height
	return res, nil
}
