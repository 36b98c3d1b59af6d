package batch

import (
	"context"

	"github.com/iov-one/gasless"
)

type contextKey int

const (
	contextKeyIndex contextKey = iota
)

func withInstructionIndex(ctx gasless.Context, i int) gasless.Context {
	return context.WithValue(ctx, contextKeyIndex, i)
}

// InstructionIndex returns the position of the currently processed
// instruction within its transaction. ok is false outside of the batch
// decorator.
func InstructionIndex(ctx gasless.Context) (int, bool) {
	i, ok := ctx.Value(contextKeyIndex).(int)
	return i, ok
}
