package orm

import (
	"github.com/iov-one/gasless"
)

// Model is implemented by any entity that can be stored using a Bucket.
type Model interface {
	gasless.Persistent
	Validate() error
}
