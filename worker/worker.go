// Package worker bridges a single task implementation to the bus. An
// Adapter runs one task type per process: it publishes a progress
// update when the task starts, relays the task's own progress reports,
// and always publishes exactly one terminal result, even when the task
// errors or panics.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/conduit/bus"
	"github.com/xraph/conduit/id"
	"github.com/xraph/conduit/middleware"
	"github.com/xraph/conduit/wire"
)

const (
	// DefaultProgressQueue receives the worker's progress updates for
	// the orchestrator to relay.
	DefaultProgressQueue = "task_progress"

	// DefaultResultQueue receives the worker's terminal results.
	DefaultResultQueue = "task_result"
)

// ProgressReporter publishes an intermediate progress report from
// inside a running task. Fraction runs 0 through 1.
type ProgressReporter func(fraction float64, message string) error

// TaskFunc is the task implementation. It receives the submission's
// input document and decoded parameter document, and returns the output
// document.
type TaskFunc func(ctx context.Context, input []byte, config map[string]any, progress ProgressReporter) ([]byte, error)

// Config describes the one task type this worker process runs.
type Config struct {
	// TaskType is the technical name of the task.
	TaskType string

	// Task is the implementation.
	Task TaskFunc

	// ProgressQueue overrides the queue progress updates are published
	// to. Defaults to DefaultProgressQueue.
	ProgressQueue string

	// ResultQueue overrides the queue results are published to.
	// Defaults to DefaultResultQueue.
	ResultQueue string

	// Timeout bounds each task run. Zero runs unbounded.
	Timeout time.Duration

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.TaskType == "" {
		return errors.New("conduit/worker: config needs a task type")
	}
	if c.Task == nil {
		return errors.New("conduit/worker: config needs a task function")
	}

	return nil
}

// Adapter executes tasks and publishes their lifecycle onto the bus.
type Adapter struct {
	bus    bus.Bus
	cfg    Config
	codec  wire.Codec
	logger *slog.Logger
	chain  middleware.Middleware
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithCodec overrides the message codec. Defaults to JSON.
func WithCodec(codec wire.Codec) Option {
	return func(a *Adapter) {
		a.codec = codec
	}
}

// WithMiddleware replaces the default middleware chain of Logging,
// Recover and Timeout. The Recover stage is what turns a panicking task
// into a FAILED result; leave it in unless panics are handled
// elsewhere.
func WithMiddleware(middlewares ...middleware.Middleware) Option {
	return func(a *Adapter) {
		a.chain = middleware.Chain(middlewares...)
	}
}

// New creates an Adapter for the configured task type.
func New(b bus.Bus, cfg Config, opts ...Option) (*Adapter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.ProgressQueue == "" {
		cfg.ProgressQueue = DefaultProgressQueue
	}
	if cfg.ResultQueue == "" {
		cfg.ResultQueue = DefaultResultQueue
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	a := &Adapter{
		bus:    b,
		cfg:    cfg,
		codec:  &wire.JSONCodec{},
		logger: cfg.Logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.chain == nil {
		a.chain = middleware.Chain(
			middleware.Logging(a.logger),
			middleware.Recover(a.logger),
			middleware.Timeout(),
		)
	}

	return a, nil
}

// RunTask executes one task for the given job and publishes its
// lifecycle: a zero-progress update before the task starts, a full
// progress update and a SUCCEEDED result on success, or a FAILED result
// carrying the error text otherwise. The returned error mirrors the
// task outcome; the terminal result is published either way.
func (a *Adapter) RunTask(ctx context.Context, jobID id.ID, input []byte, config map[string]any) error {
	taskID := id.NewTaskID()
	task := &middleware.Task{
		JobID:    jobID,
		TaskID:   taskID,
		TaskType: a.cfg.TaskType,
		Timeout:  a.cfg.Timeout,
	}

	if err := a.publishProgress(ctx, task, 0, "Job calculation started"); err != nil {
		return err
	}

	reporter := func(fraction float64, message string) error {
		return a.publishProgress(ctx, task, fraction, message)
	}

	var output []byte
	runErr := a.chain(ctx, task, func(ctx context.Context) error {
		var err error
		output, err = a.cfg.Task(ctx, input, config, reporter)

		return err
	})

	if runErr != nil {
		result := &wire.JobResult{
			JobID:      jobID.String(),
			TaskID:     taskID.String(),
			TaskType:   a.cfg.TaskType,
			ResultType: wire.ResultFailed,
			Logs:       runErr.Error(),
		}
		if err := a.publishResult(ctx, result); err != nil {
			return err
		}

		return runErr
	}

	if err := a.publishProgress(ctx, task, 1.0, "Calculation finished."); err != nil {
		return err
	}

	result := &wire.JobResult{
		JobID:      jobID.String(),
		TaskID:     taskID.String(),
		TaskType:   a.cfg.TaskType,
		ResultType: wire.ResultSucceeded,
		Output:     output,
	}

	return a.publishResult(ctx, result)
}

func (a *Adapter) publishProgress(ctx context.Context, task *middleware.Task, fraction float64, message string) error {
	update := &wire.JobProgressUpdate{
		JobID:    task.JobID.String(),
		TaskID:   task.TaskID.String(),
		TaskType: task.TaskType,
		Progress: fraction,
		Message:  message,
	}

	payload, err := a.codec.Encode(update)
	if err != nil {
		return fmt.Errorf("conduit/worker: encode progress update: %w", err)
	}
	if err := a.bus.Publish(ctx, a.cfg.ProgressQueue, payload); err != nil {
		return fmt.Errorf("conduit/worker: publish progress update: %w", err)
	}

	return nil
}

func (a *Adapter) publishResult(ctx context.Context, result *wire.JobResult) error {
	payload, err := a.codec.Encode(result)
	if err != nil {
		return fmt.Errorf("conduit/worker: encode result: %w", err)
	}
	if err := a.bus.Publish(ctx, a.cfg.ResultQueue, payload); err != nil {
		return fmt.Errorf("conduit/worker: publish result: %w", err)
	}

	return nil
}
