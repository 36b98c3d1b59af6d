package batch_test

import (
	"context"
	"testing"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/gaslesstest"
	"github.com/iov-one/gasless/store"
	"github.com/iov-one/gasless/x/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/common"
)

type listMsg struct {
	gaslesstest.Msg
	msgs []gasless.Msg
	err  error
}

var _ batch.Msg = (*listMsg)(nil)

func (m *listMsg) MsgList() ([]gasless.Msg, error) {
	return m.msgs, m.err
}

// recordingHandler remembers the instruction index and message of each call.
type recordingHandler struct {
	mock.Mock
	indexes []int
}

func (h *recordingHandler) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.CheckResult, error) {
	i, _ := batch.InstructionIndex(ctx)
	h.indexes = append(h.indexes, i)
	msg, _ := tx.GetMsg()
	args := h.Called(msg.Path())
	return args.Get(0).(*gasless.CheckResult), args.Error(1)
}

func (h *recordingHandler) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.DeliverResult, error) {
	i, _ := batch.InstructionIndex(ctx)
	h.indexes = append(h.indexes, i)
	msg, _ := tx.GetMsg()
	args := h.Called(msg.Path())
	return args.Get(0).(*gasless.DeliverResult), args.Error(1)
}

func msgs(paths ...string) []gasless.Msg {
	out := make([]gasless.Msg, len(paths))
	for i, p := range paths {
		out[i] = &gaslesstest.Msg{RoutePath: p}
	}
	return out
}

func TestDeliverDispatchesInOrder(t *testing.T) {
	h := new(recordingHandler)
	h.On("Deliver", "verify/ed25519").Return(&gasless.DeliverResult{Data: []byte("a"), Log: "one"}, nil)
	h.On("Deliver", "permit/relay").Return(&gasless.DeliverResult{
		Data:    []byte("b"),
		Log:     "two",
		GasUsed: 3,
		Tags:    []common.KVPair{{Key: []byte("k"), Value: []byte("v")}},
	}, nil)

	tx := &gaslesstest.Tx{Msg: &listMsg{msgs: msgs("verify/ed25519", "permit/relay")}}
	res, err := batch.NewDecorator().Deliver(context.Background(), store.MemStore(), tx, h)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, h.indexes)
	assert.Equal(t, "one\ntwo", res.Log)
	assert.Equal(t, int64(3), res.GasUsed)
	assert.Len(t, res.Tags, 1)

	var data batch.ByteArrayList
	require.NoError(t, data.Unmarshal(res.Data))
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, data.Elements)
	h.AssertExpectations(t)
}

func TestDeliverStopsAtFirstFailure(t *testing.T) {
	h := new(recordingHandler)
	h.On("Deliver", "a/one").Return((*gasless.DeliverResult)(nil), errors.ErrInsufficientFunds)

	tx := &gaslesstest.Tx{Msg: &listMsg{msgs: msgs("a/one", "a/two")}}
	_, err := batch.NewDecorator().Deliver(context.Background(), store.MemStore(), tx, h)
	assert.True(t, errors.ErrInsufficientFunds.Is(err))
	assert.Equal(t, []int{0}, h.indexes)
	h.AssertNotCalled(t, "Deliver", "a/two")
}

func TestCheckCombinesResults(t *testing.T) {
	h := new(recordingHandler)
	h.On("Check", "a/one").Return(&gasless.CheckResult{GasAllocated: 2, GasPayment: 5}, nil)
	h.On("Check", "a/two").Return(&gasless.CheckResult{GasAllocated: 3, GasPayment: 1}, nil)

	tx := &gaslesstest.Tx{Msg: &listMsg{msgs: msgs("a/one", "a/two")}}
	res, err := batch.NewDecorator().Check(context.Background(), store.MemStore(), tx, h)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.GasAllocated)
	assert.Equal(t, int64(6), res.GasPayment)

	var data batch.ByteArrayList
	require.NoError(t, data.Unmarshal(res.Data))
	assert.Len(t, data.Elements, 2)
}

func TestSingleMessageIsIndexZero(t *testing.T) {
	h := new(recordingHandler)
	h.On("Deliver", "a/one").Return(&gasless.DeliverResult{Data: []byte("x")}, nil)

	tx := &gaslesstest.Tx{Msg: &gaslesstest.Msg{RoutePath: "a/one"}}
	res, err := batch.NewDecorator().Deliver(context.Background(), store.MemStore(), tx, h)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), res.Data)
	assert.Equal(t, []int{0}, h.indexes)
}

func TestInvalidBatch(t *testing.T) {
	cases := map[string]struct {
		msg     *listMsg
		wantErr *errors.Error
	}{
		"empty": {
			msg:     &listMsg{},
			wantErr: errors.ErrEmpty,
		},
		"too many": {
			msg:     &listMsg{msgs: msgs(make([]string, batch.MaxInstructions+1)...)},
			wantErr: errors.ErrInput,
		},
		"list error": {
			msg:     &listMsg{err: errors.ErrState},
			wantErr: errors.ErrState,
		},
		"invalid instruction": {
			msg:     &listMsg{msgs: []gasless.Msg{&gaslesstest.Msg{Err: errors.ErrMsg}}},
			wantErr: errors.ErrMsg,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			h := new(recordingHandler)
			tx := &gaslesstest.Tx{Msg: tc.msg}
			_, err := batch.NewDecorator().Deliver(context.Background(), store.MemStore(), tx, h)
			assert.True(t, tc.wantErr.Is(err), "%+v", err)
			assert.Empty(t, h.indexes)
		})
	}
}

func TestInstructionIndexOutsideBatch(t *testing.T) {
	_, ok := batch.InstructionIndex(context.Background())
	assert.False(t, ok)
}
