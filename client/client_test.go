package client_test

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"testing"
	"time"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/client"
	gaslessd "github.com/iov-one/gasless/cmd/gaslessd/app"
	"github.com/iov-one/gasless/crypto"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/gaslesstest"
	"github.com/iov-one/gasless/x/ledger"
	"github.com/iov-one/gasless/x/permit"
	"github.com/iov-one/gasless/x/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
	"go.uber.org/zap/zaptest"
)

const (
	chainID = "gasless-client"
	ticker  = "IOV"
)

var blockTime = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newClient(t *testing.T, owner *crypto.PrivateKey, protocol []byte) *client.Client {
	t.Helper()

	opts, err := gaslessd.GenInitOptions([]string{
		ticker,
		owner.PublicKey().Address().String(),
		hex.EncodeToString(protocol),
	}, io.Discard)
	require.NoError(t, err)

	myApp, closer, err := gaslessd.GenerateApp("", log.NewNopLogger(), zaptest.NewLogger(t), nil, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer.Close() })
	myApp.InitChain(abci.RequestInitChain{ChainId: chainID, AppStateBytes: opts})

	conn := client.NewLocalConnection(myApp, chainID, func() time.Time { return blockTime })
	return client.NewClient(conn)
}

func broadcast(t *testing.T, c *client.Client, tx *gaslessd.Tx, signer crypto.Signer) (*client.CommitResult, error) {
	t.Helper()
	sig, err := c.SignTx(context.Background(), tx, signer)
	require.NoError(t, err)
	tx.Signatures = append(tx.Signatures, sig)
	return c.BroadcastTxCommit(context.Background(), tx)
}

func TestQueries(t *testing.T) {
	owner := crypto.GenPrivKeyEd25519()
	protocol := bytes.Repeat([]byte{0x05}, permit.KeySize)
	c := newClient(t, owner, protocol)
	ctx := context.Background()

	status, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, chainID, status.ChainID)
	assert.Equal(t, int64(0), status.Height)

	got, err := c.ProtocolID(ctx)
	require.NoError(t, err)
	assert.Equal(t, protocol, got)

	acc, err := c.GetAccount(ctx, ledger.AccountID(owner.PublicKey().Address(), ticker))
	require.NoError(t, err)
	assert.Equal(t, uint64(123456789), acc.Amount)

	seq, err := c.Sequence(ctx, owner.PublicKey().Address())
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	_, err = c.GetEscrow(ctx, permit.EscrowID(owner.PublicKey().Ed25519, ticker))
	assert.True(t, errors.ErrNotFound.Is(err), "got %v", err)
}

func TestOpenEscrowThenRelay(t *testing.T) {
	owner := crypto.GenPrivKeyEd25519()
	relayer := crypto.GenPrivKeyEd25519()
	receiver := gaslesstest.NewCondition().Address()
	protocol := bytes.Repeat([]byte{0x05}, permit.KeySize)
	c := newClient(t, owner, protocol)
	ctx := context.Background()
	pub := owner.PublicKey().Ed25519

	open, err := gaslessd.OpenEscrowTx(pub, ticker, 1000)
	require.NoError(t, err)
	res, err := broadcast(t, c, open, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Height)

	seq, err := c.Sequence(ctx, owner.PublicKey().Address())
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	escrowID := permit.EscrowID(pub, ticker)
	next, err := c.NextNonce(ctx, escrowID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next)

	accounts, err := gaslessd.NewTx(
		&ledger.CreateAccountMsg{Owner: relayer.PublicKey().Address(), Ticker: ticker},
		&ledger.CreateAccountMsg{Owner: receiver, Ticker: ticker},
	)
	require.NoError(t, err)
	_, err = broadcast(t, c, accounts, relayer)
	require.NoError(t, err)

	relayTx := func(nonce uint64) *gaslessd.Tx {
		deadline := blockTime.Add(time.Hour).Unix()
		proof, err := verify.NewEd25519Msg(owner, permit.CanonicalMessage(pub, protocol, 300, 5, deadline, nonce))
		require.NoError(t, err)
		tx, err := gaslessd.RelayTx(proof, &permit.RelayedTransferMsg{
			Escrow:         escrowID,
			Receiver:       ledger.AccountID(receiver, ticker),
			RelayerAccount: ledger.AccountID(relayer.PublicKey().Address(), ticker),
			Amount:         300,
			Fee:            5,
			Deadline:       deadline,
			SignerKey:      pub,
			Nonce:          nonce,
		})
		require.NoError(t, err)
		return tx
	}

	res, err = broadcast(t, c, relayTx(1), relayer)
	require.NoError(t, err)
	nonce, ok := res.Tag("permit.nonce")
	assert.True(t, ok)
	assert.Equal(t, "1", nonce)

	acc, err := c.GetAccount(ctx, ledger.AccountID(receiver, ticker))
	require.NoError(t, err)
	assert.Equal(t, uint64(300), acc.Amount)
	acc, err = c.GetAccount(ctx, permit.CustodialAccountID(pub, ticker))
	require.NoError(t, err)
	assert.Equal(t, uint64(695), acc.Amount)

	_, err = broadcast(t, c, relayTx(1), relayer)
	assert.True(t, permit.ErrInvalidOrReplayedNonce.Is(err), "got %v", err)

	next, err = c.NextNonce(ctx, escrowID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next)
}

type brokenConn struct{}

func (brokenConn) Status() (*ctypes.ResultStatus, error) {
	return nil, io.ErrUnexpectedEOF
}

func (brokenConn) ABCIQuery(string, cmn.HexBytes) (*ctypes.ResultABCIQuery, error) {
	return nil, io.ErrUnexpectedEOF
}

func (brokenConn) BroadcastTxCommit(tmtypes.Tx) (*ctypes.ResultBroadcastTxCommit, error) {
	return nil, io.ErrUnexpectedEOF
}

func TestConnectionFailures(t *testing.T) {
	c := client.NewClient(brokenConn{})
	ctx := context.Background()

	_, err := c.ChainID(ctx)
	assert.True(t, errors.ErrNetwork.Is(err))
	_, err = c.GetAccount(ctx, gasless.Address(make([]byte, gasless.AddressLength)))
	assert.True(t, errors.ErrNetwork.Is(err))

	tx, err := gaslessd.NewTx(&ledger.CreateAccountMsg{Owner: gaslesstest.NewCondition().Address(), Ticker: ticker})
	require.NoError(t, err)
	_, err = c.BroadcastTxCommit(ctx, tx)
	assert.True(t, errors.ErrNetwork.Is(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.Query(cancelled, "/accounts", nil)
	assert.True(t, errors.ErrTimeout.Is(err))
}
