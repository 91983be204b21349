package context

import (
	"context"
	"testing"
	"time"
)

// margin left between the returned deadline and the deadline of the test.
const margin = time.Second

// WithTest bounds ctx by the deadline of t, so cleanups run before the test is killed.
//
// Tests without deadline get ctx as it is with a no-op cancel.
func WithTest(ctx context.Context, t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	deadline, ok := t.Deadline()
	if !ok {
		return ctx, func() {}
	}
	return context.WithDeadline(ctx, deadline.Add(-margin))
}
