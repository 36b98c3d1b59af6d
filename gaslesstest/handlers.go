package gaslesstest

import "github.com/iov-one/gasless"

// Handler is a mock implementation of the gasless.Handler interface. Each
// method call is counted and returns the configured result or error.
type Handler struct {
	checkCall   int
	CheckResult gasless.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult gasless.DeliverResult
	DeliverErr    error
}

var _ gasless.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.DeliverResult, error) {
	h.deliverCall++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// WriteHandler writes a single key/value pair on deliver. It is useful to
// observe what part of a transaction was committed.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ gasless.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) Check(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.CheckResult, error) {
	return &gasless.CheckResult{}, h.Err
}

func (h *WriteHandler) Deliver(ctx gasless.Context, db gasless.KVStore, tx gasless.Tx) (*gasless.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &gasless.DeliverResult{}, nil
}
