package relayer

import (
	"context"
	"fmt"
	"sync"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
)

// Entry identifies one permit. A permit can be submitted once per escrow
// and nonce.
type Entry struct {
	Escrow gasless.Address
	Nonce  uint64
}

// Key returns the string form used as a storage key.
func (e Entry) Key() string {
	return fmt.Sprintf("%s/%d", e.Escrow, e.Nonce)
}

// Journal remembers the permits this relayer is submitting or has
// submitted, so that a permit posted twice costs a single transaction.
type Journal interface {
	// Reserve claims the entry. It returns errors.ErrDuplicate when the
	// entry was claimed before.
	Reserve(ctx context.Context, e Entry) error
	// Release drops the claim of an entry whose submission failed.
	Release(ctx context.Context, e Entry) error
	Close() error
}

// MemoryJournal keeps entries in process memory. Entries are lost on
// restart.
type MemoryJournal struct {
	mu      sync.Mutex
	entries map[string]struct{}
}

var _ Journal = (*MemoryJournal)(nil)

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{entries: make(map[string]struct{})}
}

func (j *MemoryJournal) Reserve(_ context.Context, e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	k := e.Key()
	if _, ok := j.entries[k]; ok {
		return errors.Wrap(errors.ErrDuplicate, k)
	}
	j.entries[k] = struct{}{}
	return nil
}

func (j *MemoryJournal) Release(_ context.Context, e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.entries, e.Key())
	return nil
}

func (j *MemoryJournal) Close() error { return nil }
