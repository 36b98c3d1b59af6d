package store

import (
	"bytes"
	"crypto/rand"
	"sort"
	"testing"

	"github.com/iov-one/gasless"
	"github.com/iov-one/gasless/errors"
	"github.com/stretchr/testify/require"
)

// TestStoreConstructor returns a fresh store and a function releasing it.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

// TestSuite runs the same cache wrap and iteration checks against any
// CacheableKVStore. The in-memory btree store and the badger commit store
// share it.
type TestSuite struct {
	makeBase TestStoreConstructor
}

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{makeBase: constructor}
}

// GetSet checks visibility of writes through one level of cache wraps,
// with both Write and Discard.
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	escrow, record := []byte("escrow:alice"), []byte("nonce=1")
	s.AssertGetHas(t, base, escrow, nil, false)
	require.NoError(t, base.Set(escrow, record))
	s.AssertGetHas(t, base, escrow, record, true)

	tx := base.CacheWrap()
	s.AssertGetHas(t, tx, escrow, record, true)

	receiver, balance := []byte("account:bob"), []byte("300")
	require.NoError(t, tx.Set(receiver, balance))
	s.AssertGetHas(t, tx, receiver, balance, true)
	s.AssertGetHas(t, base, receiver, nil, false)
	require.NoError(t, tx.Write())
	s.AssertGetHas(t, base, receiver, balance, true)

	failed := base.CacheWrap()
	relayer := []byte("account:relayer")
	require.NoError(t, failed.Set(relayer, []byte("5")))
	failed.Discard()
	s.AssertGetHas(t, base, relayer, nil, false)

	// A second wrap deletes a key. The discarded wrap still reads through
	// to the base and sees the delete.
	del := base.CacheWrap()
	require.NoError(t, del.Delete(escrow))
	require.NoError(t, del.Write())
	s.AssertGetHas(t, failed, escrow, nil, false)
	s.AssertGetHas(t, failed, receiver, balance, true)
	s.AssertGetHas(t, failed, relayer, nil, false)
}

// CacheConflicts checks a cache wrap overwriting and deleting values of its
// parent.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	ks := randKeys(4, 16)
	vs := randKeys(4, 40)

	parent, cleanup := s.makeBase()
	defer cleanup()
	require.NoError(t, parent.Set(ks[1], vs[1]))
	require.NoError(t, parent.Set(ks[2], vs[2]))

	child := parent.CacheWrap()
	require.NoError(t, child.Set(ks[1], vs[0]))
	require.NoError(t, child.Set(ks[3], vs[3]))
	require.NoError(t, child.Delete(ks[2]))

	s.AssertGetHas(t, parent, ks[1], vs[1], true)
	s.AssertGetHas(t, parent, ks[2], vs[2], true)
	s.AssertGetHas(t, parent, ks[3], nil, false)

	want := []Model{gasless.Pair(ks[1], vs[0]), gasless.Pair(ks[2], nil), gasless.Pair(ks[3], vs[3])}
	for _, m := range want {
		s.AssertGetHas(t, child, m.Key, m.Value, m.Value != nil)
	}
	require.NoError(t, child.Write())
	for _, m := range want {
		s.AssertGetHas(t, parent, m.Key, m.Value, m.Value != nil)
	}
}

// FuzzIterator iterates random data spread over a parent and a cache wrap,
// with deletes of keys that were never written.
func (s *TestSuite) FuzzIterator(t *testing.T) {
	const size = 50

	child := randModels(size, 8, 40)
	parent := randModels(size, 8, 40)
	childOps := append(setOps(child...), delOps(randModels(20, 8, 40)...)...)
	parentOps := append(setOps(parent...), delOps(randModels(20, 8, 40)...)...)

	cases := map[string]iterCase{
		"empty parent": {child: childOps, queries: rangeQueries(sortModels(child))},
		"parent and child": {
			pre:     parentOps,
			child:   childOps,
			queries: rangeQueries(sortModels(append(child, parent...))),
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			tc.verify(t, base)
		})
	}
}

// rangeQueries covers open and bounded ranges in both directions over
// sorted models of at least 40 elements.
func rangeQueries(m []Model) []rangeQuery {
	n := len(m)
	return []rangeQuery{
		{nil, nil, false, m},
		{m[10].Key, nil, false, m[10:]},
		{nil, m[n-8].Key, false, m[:n-8]},
		{m[17].Key, m[28].Key, false, m[17:28]},
		{nil, nil, true, reverse(m)},
		{m[34].Key, nil, true, reverse(m[34:])},
		{nil, m[19].Key, true, reverse(m[:19])},
		{m[6].Key, m[26].Key, true, reverse(m[6:26])},
	}
}

// IteratorWithConflicts iterates a cache wrap that overwrites or deletes
// keys of its parent.
func (s *TestSuite) IteratorWithConflicts(t *testing.T) {
	ms := randModels(6, 20, 100)
	a, a2, b, b2, c, d := ms[0], ms[1], ms[2], ms[3], ms[4], ms[5]
	a2.Key = a.Key
	b2.Key = b.Key

	abc := sortModels([]Model{a, b, c})
	overwritten := sortModels([]Model{a2, b2, c, d})
	basic := []rangeQuery{
		{nil, nil, false, abc},
		{abc[1].Key, abc[2].Key, false, abc[1:2]},
		{nil, nil, true, reverse(abc)},
	}

	cases := map[string]iterCase{
		"child only":  {child: setOps(a, b, c), queries: basic},
		"parent only": {pre: setOps(a, b, c), queries: basic},
		"split":       {pre: setOps(a, b), child: setOps(c), queries: basic},
		"child overwrites parent": {
			pre:   setOps(a, b, c),
			child: setOps(a2, b2, d),
			queries: []rangeQuery{
				{nil, nil, false, overwritten},
				{overwritten[1].Key, overwritten[3].Key, false, overwritten[1:3]},
				{nil, nil, true, reverse(overwritten)},
			},
		},
		"child deletes parent": {
			pre:   setOps(a, c, d),
			child: delOps(a, b, d),
			queries: []rangeQuery{
				{nil, nil, false, []Model{c}},
				{nil, c.Key, false, nil},
			},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			tc.verify(t, base)
		})
	}
}

// AssertGetHas requires Get to return val and Has to return has.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	require.Equal(t, val, got)
	exists, err := kv.Has(key)
	require.NoError(t, err)
	require.Equal(t, has, exists)
}

func randBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

func randKeys(count, size int) [][]byte {
	keys := make([][]byte, count)
	for i := range keys {
		keys[i] = randBytes(size)
	}
	return keys
}

func randModels(count, keySize, valueSize int) []Model {
	models := make([]Model, count)
	for i := range models {
		models[i] = gasless.Pair(randBytes(keySize), randBytes(valueSize))
	}
	return models
}

type iterCase struct {
	pre     []Op
	child   []Op
	queries []rangeQuery
}

type rangeQuery struct {
	start, end []byte
	reverse    bool
	expected   []Model
}

func (c iterCase) verify(t testing.TB, base CacheableKVStore) {
	t.Helper()
	for _, op := range c.pre {
		require.NoError(t, op.Apply(base))
	}
	child := base.CacheWrap()
	for _, op := range c.child {
		require.NoError(t, op.Apply(child))
	}

	for _, q := range c.queries {
		open := child.Iterator
		if q.reverse {
			open = child.ReverseIterator
		}
		iter, err := open(q.start, q.end)
		require.NoError(t, err)

		for i, want := range q.expected {
			key, value, err := iter.Next()
			require.NoError(t, err)
			if !bytes.Equal(want.Key, key) {
				t.Fatalf("key %d: want %X, got %X", i, want.Key, key)
			}
			require.Equal(t, want.Value, value)
		}
		if _, _, err := iter.Next(); !errors.ErrIteratorDone.Is(err) {
			t.Fatalf("want ErrIteratorDone, got %+v", err)
		}
		iter.Release()
	}
}

func reverse(models []Model) []Model {
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}

func sortModels(models []Model) []Model {
	res := append([]Model(nil), models...)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}

func setOps(ms ...Model) []Op {
	ops := make([]Op, len(ms))
	for i, m := range ms {
		ops[i] = SetOp(m.Key, m.Value)
	}
	return ops
}

func delOps(ms ...Model) []Op {
	ops := make([]Op, len(ms))
	for i, m := range ms {
		ops[i] = DelOp(m.Key)
	}
	return ops
}
