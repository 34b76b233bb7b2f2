package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records task run counts and durations using the globally
// registered meter provider.
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(tracerName))
}

// MetricsWithMeter is Metrics with an explicit meter.
func MetricsWithMeter(meter metric.Meter) Middleware {
	runs, _ := meter.Int64Counter("conduit.task.runs",
		metric.WithDescription("Number of task runs by type and outcome."),
	)
	duration, _ := meter.Float64Histogram("conduit.task.duration",
		metric.WithDescription("Task run duration in seconds."),
		metric.WithUnit("s"),
	)

	return func(ctx context.Context, task *Task, next Handler) error {
		start := time.Now()
		err := next(ctx)

		outcome := "succeeded"
		if err != nil {
			outcome = "failed"
		}
		attrs := metric.WithAttributes(
			attribute.String("conduit.task.type", task.TaskType),
			attribute.String("conduit.task.outcome", outcome),
		)
		runs.Add(ctx, 1, attrs)
		duration.Record(ctx, time.Since(start).Seconds(), attrs)

		return err
	}
}
