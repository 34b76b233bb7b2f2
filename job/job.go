// Package job holds the Job handle that client and orchestrator pass
// around. A Job carries only identity and its workflow type; all
// payloads travel over the bus.
package job

import (
	"github.com/xraph/conduit/id"
	"github.com/xraph/conduit/workflow"
)

// Job is a handle on one submitted job. Jobs with the same ID address
// the same set of per-job queues, so a handle can be reconstructed on a
// restarted process from a persisted ID alone.
type Job struct {
	ID           id.ID
	WorkflowType *workflow.Type
}

// New creates a job handle with a fresh unique ID.
func New(workflowType *workflow.Type) *Job {
	return &Job{
		ID:           id.NewJobID(),
		WorkflowType: workflowType,
	}
}

// Restore rebuilds a handle for an already-submitted job, as after a
// process restart.
func Restore(jobID id.ID, workflowType *workflow.Type) *Job {
	return &Job{ID: jobID, WorkflowType: workflowType}
}

// Equal reports whether two handles refer to the same job.
func (j *Job) Equal(other *Job) bool {
	if j == nil || other == nil {
		return j == other
	}

	return j.ID.String() == other.ID.String()
}
