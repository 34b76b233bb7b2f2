// Package conduit provides a broker-mediated SDK for long-running,
// asynchronous job execution. A client submits a job (an input document
// plus typed workflow parameters), receives progress and status updates
// over per-job queues, and eventually receives exactly one result or
// cancels the job. The orchestrator counterpart accepts submissions,
// dispatches them to workers, and republishes updates back to the
// originating client.
//
// Conduit is designed as a library, not a service. The message broker is
// the sole transport: every operation maps onto a deterministic queue
// topology (see the queues package) interpreted by a bus.Bus backend.
//
// # Quick Start
//
//	b := memory.New()
//	c := client.New(b)
//
//	j, err := c.Submit(ctx, document, values, workflowType, 0, client.Callbacks{
//	    OnFinished: func(j *job.Job, res *wire.JobResult) { ... },
//	})
//
// # Architecture
//
// Conduit follows a composable bus pattern: the bus package defines the
// MessageBus capability and each backend (memory, amqp, redis) implements
// it. Workflow types are described by a closed set of typed parameters
// (params package) that round-trip between a human-editable configuration
// file, an in-memory form, and the wire catalog.
//
// All entity IDs use TypeID: type-prefixed, K-sortable, UUIDv7-based
// identifiers.
package conduit
