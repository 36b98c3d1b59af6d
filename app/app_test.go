package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/gaslesstest"
	"github.com/iov-one/gasless/gaslesstest/assert"
	"github.com/iov-one/gasless/notify"
	"github.com/iov-one/gasless/store"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

func TestChainDecorators(t *testing.T) {
	d1 := &gaslesstest.Decorator{}
	d2 := &gaslesstest.Decorator{}
	var missing *gaslesstest.Decorator
	h := &gaslesstest.Handler{}

	stack := ChainDecorators(d1, nil, missing).Chain(d2).WithHandler(h)
	ctx := gaslesstest.Context(1, time.Now())

	_, err := stack.Check(ctx, store.MemStore(), &gaslesstest.Tx{})
	require.NoError(t, err)
	_, err = stack.Deliver(ctx, store.MemStore(), &gaslesstest.Tx{})
	require.NoError(t, err)
	assert.Equal(t, 2, d1.CallCount())
	assert.Equal(t, 2, d2.CallCount())
	assert.Equal(t, 2, h.CallCount())

	// An error stops the chain.
	d1.DeliverErr = errors.ErrUnauthorized
	_, err = stack.Deliver(ctx, store.MemStore(), &gaslesstest.Tx{})
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Equal(t, 2, d2.CallCount())
	assert.Equal(t, 2, h.CallCount())
}

func TestRouter(t *testing.T) {
	r := NewRouter()
	h := &gaslesstest.Handler{}
	r.Handle("ledger/send", h)

	assert.Panics(t, func() { r.Handle("ledger/send", h) })
	assert.Panics(t, func() { r.Handle("Ledger Send", h) })
	assert.Panics(t, func() { r.Handle("ledger", h) })

	ctx := gaslesstest.Context(1, time.Now())
	_, err := r.Deliver(ctx, store.MemStore(), &gaslesstest.Tx{Msg: &gaslesstest.Msg{RoutePath: "ledger/send"}})
	require.NoError(t, err)
	_, err = r.Check(ctx, store.MemStore(), &gaslesstest.Tx{Msg: &gaslesstest.Msg{RoutePath: "ledger/send"}})
	require.NoError(t, err)
	assert.Equal(t, 2, h.CallCount())

	_, err = r.Deliver(ctx, store.MemStore(), &gaslesstest.Tx{Msg: &gaslesstest.Msg{RoutePath: "ledger/mint"}})
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = r.Check(ctx, store.MemStore(), &gaslesstest.Tx{Err: errors.ErrMsg})
	assert.IsErr(t, errors.ErrMsg, err)
}

type staticQuery []byte

func (q staticQuery) Query(gasless.ReadOnlyKVStore, []byte) ([]byte, error) { return q, nil }

func TestQueryRouter(t *testing.T) {
	r := NewQueryRouter()
	r.RegisterAll(func(qr gasless.QueryRegister) {
		qr.RegisterQuery("/a", staticQuery("a"))
	})
	assert.Panics(t, func() { r.RegisterQuery("/a", staticQuery("b")) })
	assert.Equal(t, staticQuery("a"), r.Handler("/a"))
	assert.Nil(t, r.Handler("/b"))
}

func TestChainInitializers(t *testing.T) {
	var calls []string
	record := func(name string, err error) gasless.Initializer {
		return initFunc(func(gasless.Options, gasless.KVStore) error {
			calls = append(calls, name)
			return err
		})
	}

	err := ChainInitializers(record("a", nil), record("b", errors.ErrState), record("c", nil)).
		FromGenesis(gasless.Options{}, store.MemStore())
	assert.IsErr(t, errors.ErrState, err)
	assert.Equal(t, []string{"a", "b"}, calls)
}

type initFunc func(gasless.Options, gasless.KVStore) error

func (fn initFunc) FromGenesis(opts gasless.Options, db gasless.KVStore) error { return fn(opts, db) }

func TestAddGenesisOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, AddGenesisOptions(path, "test-chain", json.RawMessage(`{"a":1}`)))
	// A second call keeps the chain id.
	require.NoError(t, os.WriteFile(path, []byte(`{"chain_id":"other-chain","validators":[]}`), 0o600))
	require.NoError(t, AddGenesisOptions(path, "test-chain", json.RawMessage(`{"b":2}`)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "other-chain", doc["chain_id"])
	assert.Equal(t, map[string]interface{}{"b": float64(2)}, doc["app_state"])
	assert.Equal(t, []interface{}{}, doc["validators"])

	err = AddGenesisOptions(filepath.Join(t.TempDir(), "g.json"), "x", json.RawMessage(`{}`))
	assert.IsErr(t, errors.ErrInput, err)
}

// pathDecoder decodes a transaction into a message routed by the raw bytes.
func pathDecoder(raw []byte) (gasless.Tx, error) {
	if len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrInput, "empty")
	}
	return &gaslesstest.Tx{Msg: &gaslesstest.Msg{RoutePath: string(raw)}}, nil
}

type stamped struct{}

func (stamped) EventKind() string { return "stamped" }
func (stamped) EventTags() []common.KVPair {
	return []common.KVPair{{Key: []byte("stamp"), Value: []byte("yes")}}
}

type recordingSink struct {
	got []notify.Notification
}

func (s *recordingSink) Notify(_ context.Context, n notify.Notification) error {
	s.got = append(s.got, n)
	return errors.ErrDatabase
}

// writeEvent writes a key and emits an event.
type writeEvent struct{}

func (writeEvent) Check(gasless.Context, gasless.KVStore, gasless.Tx) (*gasless.CheckResult, error) {
	return &gasless.CheckResult{GasAllocated: 10}, nil
}

func (writeEvent) Deliver(_ gasless.Context, db gasless.KVStore, _ gasless.Tx) (*gasless.DeliverResult, error) {
	if err := db.Set([]byte("written"), []byte("yes")); err != nil {
		return nil, err
	}
	return &gasless.DeliverResult{Events: []gasless.Event{stamped{}}}, nil
}

type failing struct{}

func (failing) Check(gasless.Context, gasless.KVStore, gasless.Tx) (*gasless.CheckResult, error) {
	return nil, errors.ErrAmount
}

func (failing) Deliver(gasless.Context, gasless.KVStore, gasless.Tx) (*gasless.DeliverResult, error) {
	return nil, errors.ErrAmount
}

type rawQuery struct{}

func (rawQuery) Query(db gasless.ReadOnlyKVStore, key []byte) ([]byte, error) { return db.Get(key) }

func TestBaseAppLifecycle(t *testing.T) {
	db := gaslesstest.CommitKVStore(t)

	r := NewRouter()
	r.Handle("test/write", writeEvent{})
	r.Handle("test/fail", failing{})
	qr := NewQueryRouter()
	qr.RegisterQuery("/raw", rawQuery{})

	var genesis gasless.Options
	init := initFunc(func(opts gasless.Options, kv gasless.KVStore) error {
		genesis = opts
		return kv.Set([]byte("genesis"), []byte("loaded"))
	})

	sa, err := NewStoreApp("testapp", db, qr, context.Background())
	require.NoError(t, err)
	sink := &recordingSink{}
	base := NewBaseApp(sa.WithInit(init), pathDecoder, r, sink, false)

	base.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{"foo":"bar"}`)})
	assert.Equal(t, "test-chain", base.GetChainID())
	assert.Equal(t, json.RawMessage(`"bar"`), genesis["foo"])
	assert.Panics(t, func() {
		base.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{}`)})
	})

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	base.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{ChainID: "test-chain", Height: 1, Time: now}})

	check := base.CheckTx([]byte("test/write"))
	assert.Equal(t, uint32(0), check.Code)
	assert.Equal(t, int64(10), check.GasWanted)

	res := base.DeliverTx([]byte("test/write"))
	require.Equal(t, uint32(0), res.Code, res.Log)
	assert.Equal(t, []common.KVPair{{Key: []byte("stamp"), Value: []byte("yes")}}, res.Tags)

	res = base.DeliverTx([]byte("test/fail"))
	assert.Equal(t, errors.ErrAmount.ABCICode(), res.Code)
	res = base.DeliverTx([]byte("test/unknown"))
	assert.Equal(t, errors.ErrNotFound.ABCICode(), res.Code)
	res = base.DeliverTx(nil)
	assert.Equal(t, errors.ErrInput.ABCICode(), res.Code)

	// Nothing is visible to queries nor notified before the commit.
	q := base.Query(abci.RequestQuery{Path: "/raw", Data: []byte("written")})
	assert.Equal(t, uint32(0), q.Code)
	assert.Equal(t, 0, len(q.Value))
	assert.Equal(t, 0, len(sink.got))

	commit := base.Commit()
	assert.Equal(t, false, len(commit.Data) == 0)
	require.Len(t, sink.got, 1)
	assert.Equal(t, int64(1), sink.got[0].Height)
	assert.Equal(t, "stamped", sink.got[0].Event.EventKind())

	q = base.Query(abci.RequestQuery{Path: "/raw", Data: []byte("written")})
	assert.Equal(t, []byte("yes"), q.Value)
	assert.Equal(t, int64(1), q.Height)
	q = base.Query(abci.RequestQuery{Path: "/raw", Data: []byte("genesis")})
	assert.Equal(t, []byte("loaded"), q.Value)
	q = base.Query(abci.RequestQuery{Path: "/missing"})
	assert.Equal(t, errors.ErrNotFound.ABCICode(), q.Code)

	info := base.Info(abci.RequestInfo{})
	assert.Equal(t, "testapp", info.Data)
	assert.Equal(t, int64(1), info.LastBlockHeight)
	assert.Equal(t, commit.Data, info.LastBlockAppHash)
	assert.Equal(t, gasless.Version(), info.Version)
}

func TestStoreAppRestoresChainID(t *testing.T) {
	db := gaslesstest.CommitKVStore(t)

	sa, err := NewStoreApp("testapp", db, NewQueryRouter(), context.Background())
	require.NoError(t, err)
	sa.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{}`)})
	sa.Commit()

	restarted, err := NewStoreApp("testapp", db, NewQueryRouter(), context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-chain", restarted.GetChainID())
	assert.Equal(t, "test-chain", gasless.GetChainID(restarted.BlockContext()))
	height, _ := gasless.GetHeight(restarted.BlockContext())
	assert.Equal(t, int64(1), height)
}

func TestInitChainFailsClosed(t *testing.T) {
	sa, err := NewStoreApp("testapp", gaslesstest.CommitKVStore(t), NewQueryRouter(), context.Background())
	require.NoError(t, err)
	sa.WithInit(initFunc(func(gasless.Options, gasless.KVStore) error { return errors.ErrState }))

	assert.Panics(t, func() {
		sa.InitChain(abci.RequestInitChain{ChainId: "test-chain", AppStateBytes: []byte(`{}`)})
	})
	assert.Panics(t, func() {
		sa.InitChain(abci.RequestInitChain{ChainId: "test-chain"})
	})
}
