package gaslesstest

import (
	"testing"

	"github.com/iov-one/gasless/store/iavl"
	"go.uber.org/zap/zaptest"
)

// CommitKVStore returns a persistent store kept in a temporary directory.
// Use it instead of MemStore when a test needs the same storage engine as a
// running node.
func CommitKVStore(t testing.TB) *iavl.CommitStore {
	t.Helper()

	db, err := iavl.NewCommitStore(t.TempDir(), "db", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("cannot open commit store: %s", err)
	}
	if err := db.LoadLatestVersion(); err != nil {
		t.Fatalf("cannot load latest version: %s", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
