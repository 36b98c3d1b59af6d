package gaslesstest

import (
	"context"
	"time"

	"github.com/iov-one/gasless"
)

// ChainID is used by Context when no chain ID is given.
const ChainID = "test-chain"

// Context returns a context with a chain ID, height and block time set,
// which is what handlers expect when called by the application.
func Context(height int64, now time.Time) gasless.Context {
	ctx := context.Background()
	ctx = gasless.WithChainID(ctx, ChainID)
	ctx = gasless.WithHeight(ctx, height)
	return gasless.WithBlockTime(ctx, now)
}
