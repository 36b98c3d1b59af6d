package app

import (
	"fmt"

	"github.com/iov-one/gasless"
)

// QueryRouter directs each ABCI query to the handler registered for its
// path. Minimal interface modeled after net/http.ServeMux.
type QueryRouter struct {
	routes map[string]gasless.QueryHandler
}

var _ gasless.QueryRegister = QueryRouter{}

// NewQueryRouter initializes a QueryRouter with no routes
func NewQueryRouter() QueryRouter {
	return QueryRouter{
		routes: make(map[string]gasless.QueryHandler, 8),
	}
}

// RegisterAll calls every register function with this router.
func (r QueryRouter) RegisterAll(fns ...func(gasless.QueryRegister)) {
	for _, fn := range fns {
		fn(r)
	}
}

// RegisterQuery adds a new handler for the given path. It panics if
// another handler was already registered.
func (r QueryRouter) RegisterQuery(path string, h gasless.QueryHandler) {
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering query route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the handler registered for path, nil if there is none.
func (r QueryRouter) Handler(path string) gasless.QueryHandler {
	return r.routes[path]
}
