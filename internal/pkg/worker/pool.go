// Package worker provides a small goroutine pool for fanning work out
// across aggregates. The EventStore itself never schedules concurrency —
// it is synchronous per spec §5 ("the caller owns aggregate
// serialization") — so this pool exists only at a caller's edge, e.g. the
// CLI's verify-all command replaying every aggregate in parallel.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"rpki-ca.dev/core/internal/pkg/logger"
)

// ErrPoolClosed is returned when submitting to a released pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Task is a context-aware unit of work.
type Task func(ctx context.Context)

// Pool wraps ants.Pool with context-aware submission: a task is skipped,
// not run, if its context is already cancelled by the time a worker picks
// it up.
type Pool struct {
	pool *ants.Pool
	name string
}

// New builds a Pool of the given size. name is used only in log fields.
func New(name string, size int) (*Pool, error) {
	panicHandler := func(p any) {
		logger.Error("worker panic recovered", zap.String("pool", name), zap.Any("panic", p), zap.Stack("stack"))
	}
	p, err := ants.NewPool(size,
		ants.WithPanicHandler(panicHandler),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Pool{pool: p, name: name}, nil
}

// Submit runs task on a pooled goroutine once the context allows it.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	return p.pool.Submit(func() {
		select {
		case <-ctx.Done():
			logger.Debug("task skipped: context cancelled", zap.String("pool", p.name), zap.Error(ctx.Err()))
			return
		default:
		}
		task(ctx)
	})
}

// Release shuts the pool down, waiting up to timeout for in-flight tasks.
func (p *Pool) Release(timeout time.Duration) error {
	return p.pool.ReleaseTimeout(timeout)
}

// Running returns the number of workers currently executing a task.
func (p *Pool) Running() int { return p.pool.Running() }
