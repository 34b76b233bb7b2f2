package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recover converts a panicking task into a returned error so one bad
// task cannot take down the worker process.
func Recover(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, task *Task, next Handler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "task panicked",
					slog.String("job_id", task.JobID.String()),
					slog.String("task_id", task.TaskID.String()),
					slog.String("task_type", task.TaskType),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				err = fmt.Errorf("middleware: task panicked: %v", r)
			}
		}()

		return next(ctx)
	}
}
