package gasless_test

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawAddr = "0102030405060708090a0b0c0d0e0f1011121314"

func TestAddressPrinting(t *testing.T) {
	addr := gasless.Address(mustHex(t, rawAddr))
	assert.Equal(t, strings.ToUpper(rawAddr), addr.String())
	assert.Equal(t, "", gasless.Address(nil).String())

	cond := gasless.NewCondition("permit", "escrow", []byte("ABCD"))
	assert.Equal(t, "permit/escrow/41424344", cond.String())
	assert.NotEqual(t, fmt.Sprintf("%X", []byte(cond)), cond.String())
}

func TestConditionParse(t *testing.T) {
	cond := gasless.NewCondition("permit", "escrow", []byte{0, 1, 2})
	ext, typ, data, err := cond.Parse()
	require.NoError(t, err)
	assert.Equal(t, "permit", ext)
	assert.Equal(t, "escrow", typ)
	assert.Equal(t, []byte{0, 1, 2}, data)
	require.NoError(t, cond.Validate())

	// Different data must give a different derived address.
	other := gasless.NewCondition("permit", "escrow", []byte{0, 1, 3})
	assert.False(t, cond.Address().Equals(other.Address()))
	assert.Len(t, cond.Address(), gasless.AddressLength)

	bad := gasless.Condition("no-slashes")
	_, _, _, err = bad.Parse()
	assert.True(t, errors.ErrInput.Is(err))
	assert.True(t, errors.ErrInput.Is(bad.Validate()))
}

func TestAddressUnmarshalJSON(t *testing.T) {
	addr := gasless.Address(mustHex(t, rawAddr))
	b32, err := addr.Bech32()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(b32, gasless.AddressHRP+"1"))

	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr gasless.Address
	}{
		"default decoding": {
			json:     `"` + rawAddr + `"`,
			wantAddr: addr,
		},
		"hex decoding": {
			json:     `"hex:` + rawAddr + `"`,
			wantAddr: addr,
		},
		"bech32 decoding": {
			json:     `"bech32:` + b32 + `"`,
			wantAddr: addr,
		},
		"cond decoding": {
			json:     `"cond:foo/bar/636f6e646974696f6e64617461"`,
			wantAddr: gasless.NewCondition("foo", "bar", []byte("conditiondata")).Address(),
		},
		"short hex address": {
			json:    `"0102"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition format": {
			json:    `"cond:foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"cond:foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"invalid bech32": {
			json:    `"bech32:gas1qqqq"`,
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			json:    `"foobar:xxx"`,
			wantErr: errors.ErrType,
		},
		"zero address": {
			json:     `""`,
			wantAddr: nil,
		},
		"zero hex address": {
			json:     `"hex:"`,
			wantAddr: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a gasless.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil {
				assert.Equal(t, tc.wantAddr, a)
			}
		})
	}
}

func TestAddressMarshalJSON(t *testing.T) {
	addr := gasless.Address(mustHex(t, rawAddr))
	raw, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Equal(t, `"`+strings.ToUpper(rawAddr)+`"`, string(raw))

	var back gasless.Address
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, addr.Equals(back))
}

func TestConditionJSON(t *testing.T) {
	cases := map[string]struct {
		json          string
		wantErr       *errors.Error
		wantCondition gasless.Condition
	}{
		"default decoding": {
			json:          `"foo/bar/636f6e646974696f6e64617461"`,
			wantCondition: gasless.NewCondition("foo", "bar", []byte("conditiondata")),
		},
		"invalid condition format": {
			json:    `"foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"zero condition": {
			json:          `""`,
			wantCondition: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got gasless.Condition
			err := json.Unmarshal([]byte(tc.json), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !got.Equals(tc.wantCondition) {
				t.Fatalf("expected %q but got condition: %q", tc.wantCondition, got)
			}
		})
	}

	raw, err := json.Marshal(gasless.NewCondition("foo", "bar", []byte("conditiondata")))
	require.NoError(t, err)
	assert.Equal(t, `"foo/bar/636F6E646974696F6E64617461"`, string(raw))

	raw, err = json.Marshal(gasless.Condition(nil))
	require.NoError(t, err)
	assert.Equal(t, `""`, string(raw))
}

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}
