package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
)

// isPath is the pattern of a message path, for example "permit/relay".
var isPath = regexp.MustCompile(`^[a-z0-9_]+/[a-z0-9_]+$`).MatchString

// Router dispatches a transaction to the handler registered for the path
// of its message.
type Router struct {
	routes map[string]gasless.Handler
}

var (
	_ gasless.Registry = (*Router)(nil)
	_ gasless.Handler  = (*Router)(nil)
)

// NewRouter returns a router with no routes.
func NewRouter() *Router {
	return &Router{routes: make(map[string]gasless.Handler, 8)}
}

// Handle registers h for path. It panics on a malformed path or if the
// path is already taken, both being programming errors.
func (r *Router) Handle(path string, h gasless.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid message path: %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

func (r *Router) handler(tx gasless.Tx) (gasless.Handler, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	h, ok := r.routes[msg.Path()]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for path %q", msg.Path())
	}
	return h, nil
}

func (r *Router) Check(ctx gasless.Context, store gasless.KVStore, tx gasless.Tx) (*gasless.CheckResult, error) {
	h, err := r.handler(tx)
	if err != nil {
		return nil, err
	}
	return h.Check(ctx, store, tx)
}

func (r *Router) Deliver(ctx gasless.Context, store gasless.KVStore, tx gasless.Tx) (*gasless.DeliverResult, error) {
	h, err := r.handler(tx)
	if err != nil {
		return nil, err
	}
	return h.Deliver(ctx, store, tx)
}
