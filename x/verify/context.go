package verify

import (
	"context"

	"github.com/iov-one/gasless"
)

type contextKey int

const (
	contextKeyRecords contextKey = iota
)

// Record is a successful signature verification.
type Record struct {
	// Index is the position of the VerifyMsg instruction in the
	// transaction.
	Index   int
	Scheme  string
	Pubkey  []byte
	Message []byte
}

func withRecords(ctx gasless.Context, records []Record) gasless.Context {
	return context.WithValue(ctx, contextKeyRecords, records)
}

// Records returns all verifications of the current transaction.
func Records(ctx gasless.Context) []Record {
	val, _ := ctx.Value(contextKeyRecords).([]Record)
	return val
}

// Reader gives access to the verification records stored in the context.
type Reader struct{}

// ProofAt returns the verification produced for instruction index of the
// current transaction.
func (Reader) ProofAt(ctx gasless.Context, index int) (*Record, bool) {
	for _, r := range Records(ctx) {
		if r.Index == index {
			r := r
			return &r, true
		}
	}
	return nil, false
}
