// Package client implements the job-submitting side of the SDK. A
// Client submits jobs over a Bus, attaches the per-job callbacks before
// anything is published so no update can be lost, and delivers the
// single final result through ReceiveOnce.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/conduit"
	"github.com/xraph/conduit/bus"
	"github.com/xraph/conduit/job"
	"github.com/xraph/conduit/queues"
	"github.com/xraph/conduit/wire"
	"github.com/xraph/conduit/workflow"
)

// Callbacks receive the per-job updates. OnFinished fires exactly once;
// nil callbacks drop their updates.
type Callbacks struct {
	OnFinished       func(j *job.Job, result *wire.JobResult)
	OnProgressUpdate func(j *job.Job, update *wire.JobProgressUpdate)
	OnStatusUpdate   func(j *job.Job, update *wire.JobStatusUpdate)
}

// Client submits jobs and listens for their updates.
type Client struct {
	bus       bus.Bus
	codec     wire.Codec
	logger    *slog.Logger
	workflows *workflow.Manager
}

// Option configures a Client.
type Option func(*Client)

// WithCodec overrides the message codec. Defaults to JSON.
func WithCodec(codec wire.Codec) Option {
	return func(c *Client) {
		c.codec = codec
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithWorkflows installs a workflow registry. When set, Submit rejects
// workflow types the registry does not know.
func WithWorkflows(manager *workflow.Manager) Option {
	return func(c *Client) {
		c.workflows = manager
	}
}

// New creates a Client on an established bus. The caller keeps
// ownership of the bus.
func New(b bus.Bus, opts ...Option) *Client {
	c := &Client{
		bus:    b,
		codec:  &wire.JSONCodec{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SubmitOption configures one submission.
type SubmitOption func(*submitOptions)

type submitOptions struct {
	autoDisconnect bool
}

// WithAutoDisconnect tears down the job's subscriptions automatically
// after OnFinished returns.
func WithAutoDisconnect() SubmitOption {
	return func(o *submitOptions) {
		o.autoDisconnect = true
	}
}

// Submit creates a job, attaches its result, progress and status
// subscriptions, and only then publishes the submission. A timeout of
// zero submits without a deadline.
//
// Parameter values are validated against the workflow's declared
// parameters; see EncodeParameters for the exact policy.
func (c *Client) Submit(ctx context.Context, document []byte, parameters map[string]any, workflowType *workflow.Type, timeout time.Duration, cb Callbacks, opts ...SubmitOption) (*job.Job, error) {
	if c.workflows != nil && !c.workflows.Exists(workflowType) {
		return nil, fmt.Errorf("%w: %q", conduit.ErrUnknownWorkflow, workflowType.Name)
	}

	encoded, err := EncodeParameters(workflowType, parameters, c.logger)
	if err != nil {
		return nil, err
	}

	j := job.New(workflowType)
	if err := c.connect(ctx, j, cb, opts...); err != nil {
		return nil, err
	}

	submission := &wire.JobSubmission{
		UUID:         j.ID.String(),
		WorkflowType: workflowType.Name,
		Document:     document,
		Parameters:   encoded,
	}
	if timeout > 0 {
		ms := timeout.Milliseconds()
		submission.TimeoutMS = &ms
	}

	payload, err := c.codec.Encode(submission)
	if err != nil {
		return nil, fmt.Errorf("conduit/client: encode submission: %w", err)
	}

	if err := c.bus.Publish(ctx, queues.SubmissionQueueName(workflowType), payload); err != nil {
		return nil, fmt.Errorf("conduit/client: publish submission: %w", err)
	}

	c.logger.Info("job submitted",
		slog.String("job_id", j.ID.String()),
		slog.String("workflow_type", workflowType.Name),
	)

	return j, nil
}

// Reconnect re-attaches the subscriptions of a job submitted before a
// process restart. Nothing is published; buffered updates are delivered
// as soon as the subscriptions attach.
func (c *Client) Reconnect(ctx context.Context, j *job.Job, cb Callbacks, opts ...SubmitOption) error {
	return c.connect(ctx, j, cb, opts...)
}

// connect attaches the three per-job subscriptions. Result delivery is
// one-shot; progress and status persist until Disconnect. A failure
// partway through unwinds the subscriptions already attached, so a
// failed connect leaves the job fully detached and a later retry starts
// clean.
func (c *Client) connect(ctx context.Context, j *job.Job, cb Callbacks, opts ...SubmitOption) (err error) {
	var options submitOptions
	for _, opt := range opts {
		opt(&options)
	}

	var attached []string
	defer func() {
		if err == nil {
			return
		}
		for _, queueName := range attached {
			if unsubErr := c.bus.Unsubscribe(ctx, queueName); unsubErr != nil {
				c.logger.Warn("failed to unwind subscription",
					slog.String("job_id", j.ID.String()),
					slog.String("queue", queueName),
					slog.String("error", unsubErr.Error()),
				)
			}
		}
	}()

	onResult := func(message []byte) {
		var result wire.JobResult
		if err := c.codec.Decode(message, &result); err != nil {
			c.logger.Error("dropping undecodable job result",
				slog.String("job_id", j.ID.String()),
				slog.String("error", err.Error()),
			)

			return
		}
		if cb.OnFinished != nil {
			cb.OnFinished(j, &result)
		}
		if options.autoDisconnect {
			if err := c.Disconnect(context.Background(), j); err != nil {
				c.logger.Warn("auto-disconnect failed",
					slog.String("job_id", j.ID.String()),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if err := c.bus.ReceiveOnce(ctx, queues.ResultQueueName(j), 0, onResult, nil); err != nil {
		return fmt.Errorf("conduit/client: subscribe result queue: %w", err)
	}
	attached = append(attached, queues.ResultQueueName(j))

	onProgress := func(message []byte) {
		var update wire.JobProgressUpdate
		if err := c.codec.Decode(message, &update); err != nil {
			c.logger.Error("dropping undecodable progress update",
				slog.String("job_id", j.ID.String()),
				slog.String("error", err.Error()),
			)

			return
		}
		if cb.OnProgressUpdate != nil {
			cb.OnProgressUpdate(j, &update)
		}
	}
	if err := c.bus.Subscribe(ctx, queues.ProgressQueueName(j), onProgress); err != nil {
		return fmt.Errorf("conduit/client: subscribe progress queue: %w", err)
	}
	attached = append(attached, queues.ProgressQueueName(j))

	onStatus := func(message []byte) {
		var update wire.JobStatusUpdate
		if err := c.codec.Decode(message, &update); err != nil {
			c.logger.Error("dropping undecodable status update",
				slog.String("job_id", j.ID.String()),
				slog.String("error", err.Error()),
			)

			return
		}
		if cb.OnStatusUpdate != nil {
			cb.OnStatusUpdate(j, &update)
		}
	}
	if err := c.bus.Subscribe(ctx, queues.StatusQueueName(j), onStatus); err != nil {
		return fmt.Errorf("conduit/client: subscribe status queue: %w", err)
	}

	return nil
}

// Disconnect detaches a job's subscriptions. No callback fires after
// Disconnect returns. Disconnecting an already-disconnected job is a
// no-op.
func (c *Client) Disconnect(ctx context.Context, j *job.Job) error {
	for _, queueName := range []string{
		queues.ResultQueueName(j),
		queues.ProgressQueueName(j),
		queues.StatusQueueName(j),
	} {
		if err := c.bus.Unsubscribe(ctx, queueName); err != nil {
			return fmt.Errorf("conduit/client: unsubscribe %q: %w", queueName, err)
		}
	}

	return nil
}

// Cancel requests cancellation of a submitted job. The request is
// routed by the orchestrator; a job may still finish normally if the
// request arrives too late.
func (c *Client) Cancel(ctx context.Context, j *job.Job) error {
	payload, err := c.codec.Encode(&wire.JobCancel{UUID: j.ID.String()})
	if err != nil {
		return fmt.Errorf("conduit/client: encode cancellation: %w", err)
	}

	if err := c.bus.Publish(ctx, queues.CancellationQueue, payload); err != nil {
		return fmt.Errorf("conduit/client: publish cancellation: %w", err)
	}

	c.logger.Info("job cancellation requested", slog.String("job_id", j.ID.String()))

	return nil
}

// SubscribeAvailableWorkflows listens for workflow catalog broadcasts
// and hands each decoded registry to onCatalog.
func (c *Client) SubscribeAvailableWorkflows(ctx context.Context, onCatalog func(*workflow.Manager)) error {
	onMessage := func(message []byte) {
		var catalog wire.AvailableWorkflows
		if err := c.codec.Decode(message, &catalog); err != nil {
			c.logger.Error("dropping undecodable workflow catalog",
				slog.String("error", err.Error()),
			)

			return
		}

		manager, err := workflow.FromCatalog(&catalog)
		if err != nil {
			c.logger.Error("dropping invalid workflow catalog",
				slog.String("error", err.Error()),
			)

			return
		}
		onCatalog(manager)
	}

	if err := c.bus.Subscribe(ctx, queues.AvailableWorkflowsQueue, onMessage); err != nil {
		return fmt.Errorf("conduit/client: subscribe workflow catalog: %w", err)
	}

	return nil
}
