package app

import (
	"reflect"

	"github.com/iov-one/gasless"
)

// Decorators holds a chain of decorators, not yet resolved by a Handler
type Decorators struct {
	chain []gasless.Decorator
}

/*
ChainDecorators takes a chain of decorators, and upon adding a final Handler
(often a Router), returns a Handler that will execute this whole stack.

	app.ChainDecorators(
	  utils.NewLogging(),
	  utils.NewRecovery(),
	  sigs.NewDecorator(),
	  verify.NewDecorator(),
	  utils.NewSavepoint().OnDeliver(),
	  batch.NewDecorator(),
	).WithHandler(
	  myapp.Router(),
	)
*/
func ChainDecorators(chain ...gasless.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain. Nil
// decorators are skipped.
func (d Decorators) Chain(chain ...gasless.Decorator) Decorators {
	next := make([]gasless.Decorator, 0, len(d.chain)+len(chain))
	next = append(next, d.chain...)
	for _, dc := range chain {
		if isNil(dc) {
			continue
		}
		next = append(next, dc)
	}
	return Decorators{chain: next}
}

func isNil(d gasless.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler resolves the stack and returns a concrete Handler that will
// pass through the chain of decorators before calling the final Handler.
func (d Decorators) WithHandler(h gasless.Handler) gasless.Handler {
	// The top of the chain is executed first.
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step captures one step executing a decorator around a specific Handler.
type step struct {
	d    gasless.Decorator
	next gasless.Handler
}

var _ gasless.Handler = step{}

func (s step) Check(ctx gasless.Context, store gasless.KVStore, tx gasless.Tx) (*gasless.CheckResult, error) {
	return s.d.Check(ctx, store, tx, s.next)
}

func (s step) Deliver(ctx gasless.Context, store gasless.KVStore, tx gasless.Tx) (*gasless.DeliverResult, error) {
	return s.d.Deliver(ctx, store, tx, s.next)
}
