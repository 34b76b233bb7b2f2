// Package orchestrator implements the job-executing side of the SDK.
// An Orchestrator consumes submissions and cancellations, and publishes
// status, progress and result updates onto each job's queues.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/conduit/bus"
	"github.com/xraph/conduit/id"
	"github.com/xraph/conduit/job"
	"github.com/xraph/conduit/queues"
	"github.com/xraph/conduit/wire"
	"github.com/xraph/conduit/workflow"
)

// Orchestrator mediates between submitting clients and the workers that
// execute jobs.
type Orchestrator struct {
	bus       bus.Bus
	workflows *workflow.Manager
	codec     wire.Codec
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCodec overrides the message codec. Defaults to JSON.
func WithCodec(codec wire.Codec) Option {
	return func(o *Orchestrator) {
		o.codec = codec
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator serving the given workflow registry on an
// established bus.
func New(b bus.Bus, workflows *workflow.Manager, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		bus:       b,
		workflows: workflows,
		codec:     &wire.JSONCodec{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// ListenForSubmissions subscribes to every workflow type's submission
// queue. Each valid submission yields a job handle through onNewJob.
//
// A submission whose declared workflow type does not match the queue it
// arrived on is dropped with an error log; so is any message that does
// not decode. Dropping instead of failing keeps one malformed client
// from stalling the queue.
func (o *Orchestrator) ListenForSubmissions(ctx context.Context, onNewJob func(j *job.Job, submission *wire.JobSubmission)) error {
	for _, workflowType := range o.workflows.All() {
		wt := workflowType
		onMessage := func(message []byte) {
			var submission wire.JobSubmission
			if err := o.codec.Decode(message, &submission); err != nil {
				o.logger.Error("dropping undecodable job submission",
					slog.String("workflow_type", wt.Name),
					slog.String("error", err.Error()),
				)

				return
			}

			if submission.WorkflowType != wt.Name {
				o.logger.Error("dropping misrouted job submission",
					slog.String("job_id", submission.UUID),
					slog.String("queue_workflow_type", wt.Name),
					slog.String("submission_workflow_type", submission.WorkflowType),
				)

				return
			}

			jobID, err := id.ParseJobID(submission.UUID)
			if err != nil {
				o.logger.Error("dropping job submission with invalid id",
					slog.String("job_id", submission.UUID),
					slog.String("error", err.Error()),
				)

				return
			}

			onNewJob(job.Restore(jobID, wt), &submission)
		}

		if err := o.bus.Subscribe(ctx, queues.SubmissionQueueName(wt), onMessage); err != nil {
			return fmt.Errorf("conduit/orchestrator: subscribe submissions for %q: %w", wt.Name, err)
		}
	}

	return nil
}

// ListenForCancellations subscribes to the shared cancellation queue
// and routes each request by job ID.
func (o *Orchestrator) ListenForCancellations(ctx context.Context, onCancel func(jobID id.ID)) error {
	onMessage := func(message []byte) {
		var cancel wire.JobCancel
		if err := o.codec.Decode(message, &cancel); err != nil {
			o.logger.Error("dropping undecodable cancellation request",
				slog.String("error", err.Error()),
			)

			return
		}

		jobID, err := id.ParseJobID(cancel.UUID)
		if err != nil {
			o.logger.Error("dropping cancellation request with invalid id",
				slog.String("job_id", cancel.UUID),
				slog.String("error", err.Error()),
			)

			return
		}
		onCancel(jobID)
	}

	if err := o.bus.Subscribe(ctx, queues.CancellationQueue, onMessage); err != nil {
		return fmt.Errorf("conduit/orchestrator: subscribe cancellations: %w", err)
	}

	return nil
}

// PublishStatus sends a lifecycle status transition for the job.
func (o *Orchestrator) PublishStatus(ctx context.Context, j *job.Job, status wire.JobStatus) error {
	update := &wire.JobStatusUpdate{UUID: j.ID.String(), Status: status}
	payload, err := o.codec.Encode(update)
	if err != nil {
		return fmt.Errorf("conduit/orchestrator: encode status update: %w", err)
	}

	if err := o.bus.Publish(ctx, queues.StatusQueueName(j), payload); err != nil {
		return fmt.Errorf("conduit/orchestrator: publish status update: %w", err)
	}

	return nil
}

// PublishProgress relays a progress update onto the job's progress
// queue. The job ID is filled from the handle on a copy; the caller's
// message is left untouched.
func (o *Orchestrator) PublishProgress(ctx context.Context, j *job.Job, update *wire.JobProgressUpdate) error {
	msg := *update
	msg.JobID = j.ID.String()
	payload, err := o.codec.Encode(&msg)
	if err != nil {
		return fmt.Errorf("conduit/orchestrator: encode progress update: %w", err)
	}

	if err := o.bus.Publish(ctx, queues.ProgressQueueName(j), payload); err != nil {
		return fmt.Errorf("conduit/orchestrator: publish progress update: %w", err)
	}

	return nil
}

// PublishResult sends the job's single final result. The job ID is
// filled from the handle on a copy; the caller's message is left
// untouched. Publishing a second result for the same job is a protocol
// violation the broker cannot detect; callers must publish exactly
// once.
func (o *Orchestrator) PublishResult(ctx context.Context, j *job.Job, result *wire.JobResult) error {
	msg := *result
	msg.JobID = j.ID.String()
	payload, err := o.codec.Encode(&msg)
	if err != nil {
		return fmt.Errorf("conduit/orchestrator: encode result: %w", err)
	}

	if err := o.bus.Publish(ctx, queues.ResultQueueName(j), payload); err != nil {
		return fmt.Errorf("conduit/orchestrator: publish result: %w", err)
	}

	return nil
}

// PublishAvailableWorkflows broadcasts the registry's catalog to the
// shared workflow catalog queue.
func (o *Orchestrator) PublishAvailableWorkflows(ctx context.Context) error {
	payload, err := o.codec.Encode(o.workflows.ToCatalog())
	if err != nil {
		return fmt.Errorf("conduit/orchestrator: encode workflow catalog: %w", err)
	}

	if err := o.bus.Publish(ctx, queues.AvailableWorkflowsQueue, payload); err != nil {
		return fmt.Errorf("conduit/orchestrator: publish workflow catalog: %w", err)
	}

	return nil
}
