package permit

import (
	"context"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/x"
)

type contextKey int // local to the permit module

const (
	contextKeyEscrow contextKey = iota
)

// withEscrowAuthority is private, only the executor can grant the right
// to debit a custodial account.
func withEscrowAuthority(ctx gasless.Context, cond gasless.Condition) gasless.Context {
	return context.WithValue(ctx, contextKeyEscrow, cond)
}

// Authenticate exposes the escrow authority granted for the duration of a
// relayed transfer.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the granted escrow authority, if any.
func (a Authenticate) GetConditions(ctx gasless.Context) []gasless.Condition {
	val, _ := ctx.Value(contextKeyEscrow).(gasless.Condition)
	if val == nil {
		return nil
	}
	return []gasless.Condition{val}
}

// HasAddress returns true iff this address is in GetConditions
func (a Authenticate) HasAddress(ctx gasless.Context, addr gasless.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
