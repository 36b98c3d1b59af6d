package sigs

import (
	"context"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/x"
)

type contextKey int // local to the sigs module

const (
	contextKeySigners contextKey = iota
)

// withSigners is a private method, as only this module
// can add a signer
func withSigners(ctx gasless.Context, signers []gasless.Condition) gasless.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate exposes the transaction signers.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns who signed the current Context.
// May be empty
func (a Authenticate) GetConditions(ctx gasless.Context) []gasless.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeySigners).([]gasless.Condition)
	return val
}

// HasAddress returns true if the address signed the current Context.
func (a Authenticate) HasAddress(ctx gasless.Context, addr gasless.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
