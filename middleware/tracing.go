package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/xraph/conduit"

// Tracing wraps each task run in an OpenTelemetry span using the
// globally registered tracer provider.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer is Tracing with an explicit tracer.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, task *Task, next Handler) error {
		ctx, span := tracer.Start(ctx, "conduit.task "+task.TaskType,
			trace.WithAttributes(
				attribute.String("conduit.job.id", task.JobID.String()),
				attribute.String("conduit.task.id", task.TaskID.String()),
				attribute.String("conduit.task.type", task.TaskType),
			),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		return err
	}
}
