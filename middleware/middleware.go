// Package middleware provides composable wrappers around task
// execution. Middleware observe or bound a task run without knowing how
// the task itself works.
//
// Middleware compose with Chain:
//
//	mw := middleware.Chain(
//		middleware.Logging(logger),
//		middleware.Recover(logger),
//		middleware.Timeout(time.Minute),
//	)
package middleware

import (
	"context"
	"time"

	"github.com/xraph/conduit/id"
)

// Task describes one task execution for middleware purposes.
type Task struct {
	JobID    id.ID
	TaskID   id.ID
	TaskType string
	Timeout  time.Duration
}

// Handler runs the task body.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler. It must call next to continue the chain,
// unless it is deliberately short-circuiting.
type Middleware func(ctx context.Context, task *Task, next Handler) error

// Chain composes middleware so the first listed runs outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(ctx context.Context, task *Task, next Handler) error {
		wrapped := next
		for i := len(middlewares) - 1; i >= 0; i-- {
			mw := middlewares[i]
			inner := wrapped
			wrapped = func(ctx context.Context) error {
				return mw(ctx, task, inner)
			}
		}

		return wrapped(ctx)
	}
}
