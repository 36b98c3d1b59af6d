package gasless_test

import (
	"fmt"
	"testing"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/common"
)

func TestCreateErrorResult(t *testing.T) {
	cases := map[string]struct {
		err  error
		log  string
		code uint32
	}{
		"stdlib error is redacted": {
			err:  fmt.Errorf("base"),
			log:  "internal error",
			code: 1,
		},
		"registered error": {
			err:  errors.ErrUnauthorized,
			log:  "unauthorized",
			code: 2,
		},
		"wrapped registered error": {
			err:  errors.Wrap(errors.ErrInsufficientFunds, "custodial"),
			log:  "custodial: insufficient funds",
			code: 12,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			dres := gasless.DeliverTxError(tc.err, false)
			assert.True(t, dres.IsErr())
			assert.Equal(t, "cannot deliver tx: "+tc.log, dres.Log)
			assert.Equal(t, tc.code, dres.Code)

			cres := gasless.CheckTxError(tc.err, false)
			assert.True(t, cres.IsErr())
			assert.Equal(t, "cannot check tx: "+tc.log, cres.Log)
			assert.Equal(t, tc.code, cres.Code)
		})
	}
}

type paid struct{ who string }

func (p paid) EventKind() string { return "paid" }
func (p paid) EventTags() []common.KVPair {
	return []common.KVPair{{Key: []byte("paid.to"), Value: []byte(p.who)}}
}

func TestCreateResults(t *testing.T) {
	d, msg := []byte{1, 3, 4}, "got it"
	dres := gasless.DeliverResult{Data: d, Log: msg}
	ad := dres.ToABCI()
	assert.EqualValues(t, d, ad.Data)
	assert.Equal(t, msg, ad.Log)
	assert.Empty(t, ad.Tags)

	dres.Tags = []common.KVPair{{Key: []byte("action"), Value: []byte("x")}}
	dres.Events = []gasless.Event{paid{who: "bob"}}
	ad = dres.ToABCI()
	require.Len(t, ad.Tags, 2)
	assert.Equal(t, "paid.to", string(ad.Tags[1].Key))

	c, gas := "aok", int64(12345)
	cres := gasless.NewCheck(gas, c)
	ac := cres.ToABCI()
	assert.Equal(t, c, ac.Log)
	assert.Equal(t, gas, ac.GasWanted)
	assert.Empty(t, ac.Data)
}

func TestParseDeliverOrError(t *testing.T) {
	res := gasless.DeliverOrError(nil, errors.ErrExpired.New("deadline"), false)
	_, err := gasless.ParseDeliverOrError(res)
	assert.True(t, errors.ErrExpired.Is(err))

	ok := gasless.DeliverOrError(&gasless.DeliverResult{Data: []byte("id")}, nil, false)
	got, err := gasless.ParseDeliverOrError(ok)
	require.NoError(t, err)
	assert.Equal(t, []byte("id"), got.Data)
}
