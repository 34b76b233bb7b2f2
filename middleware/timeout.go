package middleware

import "context"

// Timeout bounds the task run with the task's own timeout. Tasks
// without a timeout run unbounded.
func Timeout() Middleware {
	return func(ctx context.Context, task *Task, next Handler) error {
		if task.Timeout <= 0 {
			return next(ctx)
		}

		ctx, cancel := context.WithTimeout(ctx, task.Timeout)
		defer cancel()

		return next(ctx)
	}
}
