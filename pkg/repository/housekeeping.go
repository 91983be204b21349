package repository

import (
	"context"
	"time"

	"github.com/opst/footprintweb/pkg/loop"
)

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// ExpireTask is a loop.Task removing graphs idle longer than idle, every interval.
//
// The value passed through the loop is the number of graphs expired so far.
// Failures are logged and retried at the next interval.
func ExpireTask(provider Provider, idle time.Duration, interval time.Duration, now func() time.Time, logger Logger) loop.Task[int] {
	return func(ctx context.Context, expired int) (int, loop.Next) {
		if err := ctx.Err(); err != nil {
			return expired, loop.Break(nil)
		}
		ids, err := provider.Expire(ctx, now().Add(-idle))
		if err != nil {
			logger.Warnf("failed to expire idle graphs: %s", err)
			return expired, loop.Continue(interval)
		}
		if 0 < len(ids) {
			logger.Infof("expired %d idle graphs", len(ids))
		}
		return expired + len(ids), loop.Continue(interval)
	}
}
