package store

import "github.com/iov-one/gasless"

// Move references for all storage types into this package
// for shorter names everywhere
type (
	ReadOnlyKVStore  = gasless.ReadOnlyKVStore
	SetDeleter       = gasless.SetDeleter
	KVStore          = gasless.KVStore
	Batch            = gasless.Batch
	Iterator         = gasless.Iterator
	CacheableKVStore = gasless.CacheableKVStore
	KVCacheWrap      = gasless.KVCacheWrap
	CommitKVStore    = gasless.CommitKVStore
	CommitID         = gasless.CommitID
	Model            = gasless.Model
)
