/*
Package iavl provides the persistent CommitKVStore of the chain on top of
a versioned iavl tree. The application hash of every block is the root
hash of the tree, so two nodes agree on it exactly when they hold the same
state.
*/
package iavl

import (
	"sync"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
	"go.uber.org/zap"
)

const cacheSize = 10000

// CommitStore manages an iavl committed state. Writes made through a cache
// wrap land in the working tree and become a version on Commit.
type CommitStore struct {
	mu     sync.Mutex
	db     dbm.DB
	tree   *iavl.MutableTree
	logger *zap.Logger
}

var _ gasless.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore opens (or creates) the leveldb database name in dir. Call
// LoadLatestVersion before use and Close when done.
func NewCommitStore(dir, name string, logger *zap.Logger) (*CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open %s in %s: %s", name, dir, err)
	}
	return newCommitStore(db, logger), nil
}

// MockCommitStore keeps the tree in memory, for tests.
func MockCommitStore() *CommitStore {
	return newCommitStore(dbm.NewMemDB(), nil)
}

func newCommitStore(db dbm.DB, logger *zap.Logger) *CommitStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommitStore{
		db:     db,
		tree:   iavl.NewMutableTree(db, cacheSize),
		logger: logger,
	}
}

// Close releases the database.
func (s *CommitStore) Close() error {
	s.db.Close()
	return nil
}

// Get returns the value at last committed state.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.tree.Version()
	if version == 0 {
		return nil, nil
	}
	_, val := s.tree.GetVersioned(key, version)
	return val, nil
}

// Commit saves the working tree as the next version.
func (s *CommitStore) Commit() (gasless.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return gasless.CommitID{}, errors.Wrapf(errors.ErrDatabase, "save version: %s", err)
	}
	s.logger.Debug("committed", zap.Int64("version", version), zap.Binary("hash", hash))
	return gasless.CommitID{Version: version, Hash: hash}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s *CommitStore) LoadLatestVersion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.tree.Load(); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "load tree: %s", err)
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk
func (s *CommitStore) LatestVersion() (gasless.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gasless.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap gives us a savepoint to perform actions. Writing it applies
// the operations to the working tree.
func (s *CommitStore) CacheWrap() gasless.KVCacheWrap {
	return store.NewBTreeCacheWrap(treeReader{s}, &treeBatch{s: s}, nil)
}

// treeReader serves the working tree.
type treeReader struct {
	s *CommitStore
}

var _ gasless.ReadOnlyKVStore = treeReader{}

func (r treeReader) Get(key []byte) ([]byte, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, val := r.s.tree.Get(key)
	return val, nil
}

func (r treeReader) Has(key []byte) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.tree.Has(key), nil
}

func (r treeReader) Iterator(start, end []byte) (gasless.Iterator, error) {
	return store.NewSliceIterator(r.collect(start, end, true)), nil
}

func (r treeReader) ReverseIterator(start, end []byte) (gasless.Iterator, error) {
	return store.NewSliceIterator(r.collect(start, end, false)), nil
}

func (r treeReader) collect(start, end []byte, ascending bool) []gasless.Model {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var res []gasless.Model
	r.s.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, gasless.Pair(key, value))
		return false
	})
	return res
}

// treeBatch applies the operations of a written cache to the working tree.
type treeBatch struct {
	s   *CommitStore
	ops []store.Op
}

var _ gasless.Batch = (*treeBatch)(nil)

func (b *treeBatch) Set(key, value []byte) error {
	if value == nil {
		// iavl refuses nil values.
		value = []byte{}
	}
	b.ops = append(b.ops, store.SetOp(key, value))
	return nil
}

func (b *treeBatch) Delete(key []byte) error {
	b.ops = append(b.ops, store.DelOp(key))
	return nil
}

func (b *treeBatch) Write() error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	for _, op := range b.ops {
		if op.IsSetOp() {
			b.s.tree.Set(op.Key(), op.Value())
		} else {
			b.s.tree.Remove(op.Key())
		}
	}
	b.ops = nil
	return nil
}
