package middleware_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/xraph/conduit/middleware"
)

func newTestTracer() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	return recorder, provider
}

func TestTracingRecordsSpan(t *testing.T) {
	recorder, provider := newTestTracer()
	task := testTask()

	err := middleware.TracingWithTracer(provider.Tracer("test"))(
		context.Background(), task, func(context.Context) error {
			return nil
		})
	if err != nil {
		t.Fatalf("chain error = %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	span := spans[0]
	if got, want := span.Name(), "conduit.task grow_system"; got != want {
		t.Errorf("span name = %q, want %q", got, want)
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if got := attrs["conduit.job.id"].AsString(); got != task.JobID.String() {
		t.Errorf("conduit.job.id = %q, want %q", got, task.JobID.String())
	}
	if got := attrs["conduit.task.type"].AsString(); got != "grow_system" {
		t.Errorf("conduit.task.type = %q", got)
	}
	if span.Status().Code == codes.Error {
		t.Error("clean run should not set an error status")
	}
}

func TestTracingRecordsError(t *testing.T) {
	recorder, provider := newTestTracer()

	sentinel := errors.New("task broke")
	err := middleware.TracingWithTracer(provider.Tracer("test"))(
		context.Background(), testTask(), func(context.Context) error {
			return sentinel
		})
	if !errors.Is(err, sentinel) {
		t.Fatalf("chain error = %v, want the handler's error", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Error("failed run should set an error status")
	}
	if len(spans[0].Events()) == 0 {
		t.Error("failed run should record the error event")
	}
}
