// Package queues derives the broker queue names of the job lifecycle
// topology. Names are pure functions of workflow type and job ID so any
// party can address a job's queues from the ID alone, with no registry
// round trip.
package queues

import (
	"github.com/xraph/conduit/job"
	"github.com/xraph/conduit/workflow"
)

const (
	// CancellationQueue is the single queue shared by all cancellation
	// requests. The orchestrator routes each request by the job ID
	// inside the message.
	CancellationQueue = "job_cancellations"

	// AvailableWorkflowsQueue carries the orchestrator's workflow
	// catalog to clients.
	AvailableWorkflowsQueue = "available_workflows"
)

// SubmissionQueueName is the per-workflow-type queue new submissions
// are published to. The workflow type name is embedded verbatim.
func SubmissionQueueName(workflowType *workflow.Type) string {
	return "job_submissions." + workflowType.Name
}

// ResultQueueName is the per-job queue that carries the single final
// result.
func ResultQueueName(j *job.Job) string {
	return "jobs." + j.ID.String() + ".result"
}

// ProgressQueueName is the per-job queue that carries progress updates.
func ProgressQueueName(j *job.Job) string {
	return "jobs." + j.ID.String() + ".progress"
}

// StatusQueueName is the per-job queue that carries lifecycle status
// transitions.
func StatusQueueName(j *job.Job) string {
	return "jobs." + j.ID.String() + ".status"
}
