package gaslesstest

import (
	"context"
	"fmt"

	"github.com/iov-one/gasless"
)

// Auth is a mock implementing x.Authenticator interface.
//
// All conditions referenced by Signer and Signers are authenticated.
type Auth struct {
	// Signer is a convenience attribute for the single signer case.
	Signer gasless.Condition

	// Signers represents an authentication of multiple signers.
	Signers []gasless.Condition
}

func (a *Auth) GetConditions(gasless.Context) []gasless.Condition {
	if a.Signer != nil {
		return append(a.Signers, a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx gasless.Context, addr gasless.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface that keeps
// conditions in the context.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context.
	Key string
}

type ctxAuthKey string

func (a *CtxAuth) SetConditions(ctx gasless.Context, conds ...gasless.Condition) gasless.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), conds)
}

func (a *CtxAuth) GetConditions(ctx gasless.Context) []gasless.Condition {
	val := ctx.Value(ctxAuthKey(a.Key))
	if val == nil {
		return nil
	}
	conds, ok := val.([]gasless.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []gasless.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx gasless.Context, addr gasless.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
