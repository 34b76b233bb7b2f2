package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging logs the start and outcome of every task run, with duration.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, task *Task, next Handler) error {
		start := time.Now()
		logger.InfoContext(ctx, "task started",
			slog.String("job_id", task.JobID.String()),
			slog.String("task_id", task.TaskID.String()),
			slog.String("task_type", task.TaskType),
		)

		err := next(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "task failed",
				slog.String("job_id", task.JobID.String()),
				slog.String("task_id", task.TaskID.String()),
				slog.String("task_type", task.TaskType),
				slog.Duration("duration", time.Since(start)),
				slog.String("error", err.Error()),
			)

			return err
		}

		logger.InfoContext(ctx, "task completed",
			slog.String("job_id", task.JobID.String()),
			slog.String("task_id", task.TaskID.String()),
			slog.String("task_type", task.TaskType),
			slog.Duration("duration", time.Since(start)),
		)

		return nil
	}
}
