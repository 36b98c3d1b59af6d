package gaslesstest

import (
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/crypto"
)

// NewKey returns a freshly generated ed25519 private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns a signature condition of a random key.
func NewCondition() gasless.Condition {
	return NewKey().PublicKey().Condition()
}

// SequenceKey returns a key derived from a deterministic seed. Use it when a
// test needs the same identity across runs, for example in golden values.
func SequenceKey(n byte) *crypto.PrivateKey {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = n
	}
	return crypto.PrivKeyEd25519FromSeed(seed)
}
