package relayer

import (
	"context"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/store/badgerdb"
	"go.uber.org/zap"
)

const badgerKeyPrefix = "relay:"

// BadgerJournal persists entries in a local badger database.
type BadgerJournal struct {
	db     *badger.DB
	logger *zap.Logger
}

var _ Journal = (*BadgerJournal)(nil)

// NewBadgerJournal opens (or creates) the journal database in dir.
func NewBadgerJournal(dir string, logger *zap.Logger) (*BadgerJournal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	opts := badger.DefaultOptions(abs)
	opts.Logger = badgerdb.NewLogger(logger)
	opts.SyncWrites = true
	opts.NumVersionsToKeep = 1

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "open journal at %s: %s", abs, err)
	}
	logger.Sugar().Infow("Badger journal initialized", "path", abs)
	return &BadgerJournal{db: db, logger: logger}, nil
}

func (j *BadgerJournal) Reserve(_ context.Context, e Entry) error {
	key := []byte(badgerKeyPrefix + e.Key())
	err := j.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return errors.Wrap(errors.ErrDuplicate, e.Key())
		case err != badger.ErrKeyNotFound:
			return errors.Wrap(errors.ErrDatabase, err.Error())
		}
		return txn.Set(key, nil)
	})
	if err == badger.ErrConflict {
		// A concurrent reservation of the same key won.
		return errors.Wrap(errors.ErrDuplicate, e.Key())
	}
	return err
}

func (j *BadgerJournal) Release(_ context.Context, e Entry) error {
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerKeyPrefix + e.Key()))
	})
}

func (j *BadgerJournal) Close() error {
	return j.db.Close()
}
