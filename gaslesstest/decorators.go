package gaslesstest

import "github.com/iov-one/gasless"

// Decorator is a mock implementation of the gasless.Decorator interface.
//
// Set CheckErr or DeliverErr to force error response for corresponding method.
// If error attributes are not set then wrapped handler method is called and
// its result returned. Each method call is counted.
type Decorator struct {
	checkCall int
	CheckErr  error

	deliverCall int
	DeliverErr  error
}

var _ gasless.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx, next gasless.Checker) (*gasless.CheckResult, error) {
	d.checkCall++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx, next gasless.Deliverer) (*gasless.DeliverResult, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

// Decorate returns a handler that calls the decorator before the handler.
func Decorate(h gasless.Handler, d gasless.Decorator) gasless.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn gasless.Handler
	dc gasless.Decorator
}

var _ gasless.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
