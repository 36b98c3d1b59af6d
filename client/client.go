/*
Package client reads gasless state and submits transactions through a
tendermint rpc connection.
*/
package client

import (
	"context"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/crypto"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/x/ledger"
	"github.com/iov-one/gasless/x/permit"
	"github.com/iov-one/gasless/x/sigs"
)

// Client is a tendermint client wrapped to provide simple access to the
// data structures of a gasless chain.
type Client struct {
	conn Connection
}

// NewClient wraps a Client around an existing tendermint client connection.
func NewClient(conn Connection) *Client {
	return &Client{conn: conn}
}

// Status returns current height and other (subjective) status info from this node
func (c *Client) Status(ctx context.Context) (*Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrTimeout, err.Error())
	}
	status, err := c.conn.Status()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "status: %s", err)
	}
	return &Status{
		ChainID:    status.NodeInfo.Network,
		Height:     status.SyncInfo.LatestBlockHeight,
		CatchingUp: status.SyncInfo.CatchingUp,
	}, nil
}

// ChainID returns the chain id of the connected node. Transactions must be
// signed for it.
func (c *Client) ChainID(ctx context.Context) (string, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return "", err
	}
	return status.ChainID, nil
}

// Query returns the raw value stored under key for the given query path. A
// missing value is returned as nil without an error.
func (c *Client) Query(ctx context.Context, path string, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrTimeout, err.Error())
	}
	res, err := c.conn.ABCIQuery(path, key)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "query %s: %s", path, err)
	}
	if res.Response.IsErr() {
		return nil, errors.FromABCI(res.Response.Code, res.Response.Log)
	}
	if len(res.Response.Value) == 0 {
		return nil, nil
	}
	return res.Response.Value, nil
}

func (c *Client) load(ctx context.Context, path string, key []byte, dst interface{ Unmarshal([]byte) error }) error {
	raw, err := c.Query(ctx, path, key)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", path, key)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

// GetAccount returns the ledger account with the given id.
func (c *Client) GetAccount(ctx context.Context, id gasless.Address) (*ledger.Account, error) {
	var acc ledger.Account
	if err := c.load(ctx, "/accounts", id, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// GetEscrow returns the escrow record with the given id.
func (c *Client) GetEscrow(ctx context.Context, id gasless.Address) (*permit.EscrowRecord, error) {
	var rec permit.EscrowRecord
	if err := c.load(ctx, "/escrows", id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// NextNonce returns the smallest nonce the escrow accepts.
func (c *Client) NextNonce(ctx context.Context, escrow gasless.Address) (uint64, error) {
	rec, err := c.GetEscrow(ctx, escrow)
	if err != nil {
		return 0, err
	}
	return rec.LastNonce + 1, nil
}

// ProtocolID returns the protocol id every permit of this chain is signed
// with.
func (c *Client) ProtocolID(ctx context.Context) ([]byte, error) {
	var conf permit.Configuration
	if err := c.load(ctx, "/gconf/permit", nil, &conf); err != nil {
		return nil, err
	}
	return conf.ProtocolID, nil
}

// Sequence returns the sequence the next signature of addr must use. An
// address that never signed starts at zero.
func (c *Client) Sequence(ctx context.Context, addr gasless.Address) (int64, error) {
	raw, err := c.Query(ctx, "/auth", addr)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	var user sigs.UserData
	if err := user.Unmarshal(raw); err != nil {
		return 0, errors.Wrap(err, "decode /auth")
	}
	return user.Sequence, nil
}

// BroadcastTxCommit submits tx and blocks until it is included in a block.
// A transaction rejected by CheckTx or failing in DeliverTx is returned as
// the registered error of its result code.
func (c *Client) BroadcastTxCommit(ctx context.Context, tx gasless.Tx) (*CommitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrTimeout, err.Error())
	}
	raw, err := tx.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal tx")
	}
	res, err := c.conn.BroadcastTxCommit(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNetwork, "broadcast: %s", err)
	}
	if res.CheckTx.IsErr() {
		return nil, errors.Wrap(errors.FromABCI(res.CheckTx.Code, res.CheckTx.Log), "check tx")
	}
	if res.DeliverTx.IsErr() {
		return nil, errors.Wrap(errors.FromABCI(res.DeliverTx.Code, res.DeliverTx.Log), "deliver tx")
	}
	return &CommitResult{
		ID:     res.Hash,
		Height: res.Height,
		Tags:   res.DeliverTx.Tags,
		Log:    res.DeliverTx.Log,
	}, nil
}

// SignTx signs tx for the connected chain, using the current sequence of
// signer. The caller appends the signature to the transaction.
func (c *Client) SignTx(ctx context.Context, tx sigs.SignedTx, signer crypto.Signer) (*sigs.StdSignature, error) {
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	seq, err := c.Sequence(ctx, signer.PublicKey().Address())
	if err != nil {
		return nil, err
	}
	return sigs.SignTx(signer, tx, chainID, seq)
}
