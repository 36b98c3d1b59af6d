package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
)

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString
)

// Bucket is a prefixed subspace of the DB. All values stored in a bucket
// should be of the same type.
type Bucket struct {
	name   string
	prefix []byte
}

var _ gasless.QueryHandler = Bucket{}

// NewBucket creates a bucket to store data
func NewBucket(name string) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
	}
}

// Name returns the bucket name.
func (b Bucket) Name() string {
	return b.name
}

// Register registers this Bucket for queries. You can define a name here
// for queries, which is different than the bucket name used to prefix the
// data.
func (b Bucket) Register(name string, r gasless.QueryRegister) {
	if name == "" {
		name = b.name
	}
	r.RegisterQuery("/"+name, b)
}

// Query returns the raw value stored under the given primary key, nil on
// miss.
func (b Bucket) Query(db gasless.ReadOnlyKVStore, key []byte) ([]byte, error) {
	return db.Get(b.DBKey(key))
}

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// One loads the model stored under key into dest. ErrNotFound is returned
// if the entity does not exist in the database.
func (b Bucket) One(db gasless.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot read from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot unmarshal %T: %s", dest, err)
	}
	return nil
}

// Has returns true if a value is stored under key.
func (b Bucket) Has(db gasless.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Put validates and saves given model under key.
func (b Bucket) Put(db gasless.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Field("Key", errors.ErrEmpty, "missing key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "cannot marshal %T: %s", m, err)
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

// Delete removes an entity with given primary key from the database.
// It returns ErrNotFound if an entity with given key does not exist.
func (b Bucket) Delete(db gasless.KVStore, key []byte) error {
	ok, err := b.Has(db, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrNotFound
	}
	return db.Delete(b.DBKey(key))
}

// Keys iterates over all primary keys stored in this bucket, in order.
// Iteration stops at the first error returned by fn.
func (b Bucket) Keys(db gasless.ReadOnlyKVStore, fn func(key, raw []byte) error) error {
	end := prefixEnd(b.prefix)
	it, err := db.Iterator(b.prefix, end)
	if err != nil {
		return err
	}
	defer it.Release()

	for {
		k, v, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(k[len(b.prefix):], v); err != nil {
			return err
		}
	}
}

// prefixEnd returns the first key that does not start with prefix.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
