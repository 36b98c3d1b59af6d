package orm

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/codec"
	"github.com/iov-one/gasless/errors"
	"github.com/iov-one/gasless/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Name  string `protobuf:"bytes,1,opt,name=name,proto3"`
	Count uint64 `protobuf:"varint,2,opt,name=count,proto3"`
}

type counterView counter

func (v *counterView) Reset()         { *v = counterView{} }
func (v *counterView) String() string { return proto.CompactTextString(v) }
func (*counterView) ProtoMessage()    {}

func (c *counter) Marshal() ([]byte, error) {
	return codec.Marshal((*counterView)(c))
}

func (c *counter) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, (*counterView)(c))
}

func (c *counter) Validate() error {
	if c.Name == "" {
		return errors.Field("Name", errors.ErrEmpty, "required")
	}
	return nil
}

type queryRecorder map[string]gasless.QueryHandler

func (q queryRecorder) RegisterQuery(path string, h gasless.QueryHandler) {
	q[path] = h
}

func TestBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("counters")
	require.NoError(t, b.Put(db, []byte("a"), &counter{Name: "a", Count: 3}))

	qr := queryRecorder{}
	b.Register("", qr)
	b.Register("stats", qr)
	require.Contains(t, qr, "/counters")
	require.Contains(t, qr, "/stats")

	raw, err := qr["/stats"].Query(db, []byte("a"))
	require.NoError(t, err)
	var got counter
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, uint64(3), got.Count)

	raw, err = qr["/counters"].Query(db, []byte("missing"))
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestBucketPutOne(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("counters")

	require.NoError(t, b.Put(db, []byte("a"), &counter{Name: "a", Count: 3}))

	var got counter
	require.NoError(t, b.One(db, []byte("a"), &got))
	assert.Equal(t, counter{Name: "a", Count: 3}, got)

	err := b.One(db, []byte("missing"), &got)
	assert.True(t, errors.ErrNotFound.Is(err))

	has, err := b.Has(db, []byte("a"))
	require.NoError(t, err)
	assert.True(t, has)

	// data is prefixed with the bucket name
	raw, err := db.Get([]byte("counters:a"))
	require.NoError(t, err)
	assert.NotNil(t, raw)

	raw2, err := b.Query(db, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, raw, raw2)
}

func TestBucketValidatesOnPut(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("counters")

	err := b.Put(db, []byte("a"), &counter{})
	assert.True(t, errors.ErrEmpty.Is(err))

	err = b.Put(db, nil, &counter{Name: "x"})
	assert.True(t, errors.ErrEmpty.Is(err))
}

func TestBucketDelete(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("counters")

	assert.True(t, errors.ErrNotFound.Is(b.Delete(db, []byte("a"))))
	require.NoError(t, b.Put(db, []byte("a"), &counter{Name: "a"}))
	require.NoError(t, b.Delete(db, []byte("a")))

	has, err := b.Has(db, []byte("a"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestBucketKeys(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("counters")
	other := NewBucket("countersx")

	require.NoError(t, b.Put(db, []byte("b"), &counter{Name: "b"}))
	require.NoError(t, b.Put(db, []byte("a"), &counter{Name: "a"}))
	require.NoError(t, other.Put(db, []byte("c"), &counter{Name: "c"}))

	var keys []string
	err := b.Keys(db, func(key, raw []byte) error {
		var c counter
		if err := c.Unmarshal(raw); err != nil {
			return err
		}
		assert.Equal(t, string(key), c.Name)
		keys = append(keys, string(key))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestBucketName(t *testing.T) {
	assert.Panics(t, func() { NewBucket("x") })
	assert.Panics(t, func() { NewBucket("Upper") })
	assert.Equal(t, "escrows", NewBucket("escrows").Name())
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte("ab;"), prefixEnd([]byte("ab:")))
	assert.Equal(t, []byte{1}, prefixEnd([]byte{0, 0xff}))
	assert.Nil(t, prefixEnd([]byte{0xff}))
}
