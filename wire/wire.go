// Package wire defines the messages exchanged between clients, the
// orchestrator, and workers, together with a pluggable Codec for
// encoding them. Message field names are a stable cross-process
// contract; changing them breaks compatibility with peers.
package wire

// JobSubmission asks the orchestrator to start a new job.
type JobSubmission struct {
	// UUID is the job identifier generated by the submitting side.
	UUID string `json:"uuid" msgpack:"uuid"`

	// TimeoutMS bounds how long the job may run. Nil means no timeout.
	TimeoutMS *int64 `json:"timeout_ms,omitempty" msgpack:"timeout_ms,omitempty"`

	// WorkflowType names the workflow to run. It must match the
	// submission queue the message is published on.
	WorkflowType string `json:"workflow_type" msgpack:"workflow_type"`

	// Document is the input document for the job.
	Document []byte `json:"document" msgpack:"document"`

	// Parameters carries the typed workflow parameter values keyed by
	// parameter key name.
	Parameters map[string]Value `json:"parameters,omitempty" msgpack:"parameters,omitempty"`
}

// JobCancel asks the orchestrator to cancel a running job.
type JobCancel struct {
	UUID string `json:"uuid" msgpack:"uuid"`
}

// JobProgressUpdate reports execution progress for one task of a job.
type JobProgressUpdate struct {
	JobID    string  `json:"job_id" msgpack:"job_id"`
	TaskID   string  `json:"task_id" msgpack:"task_id"`
	TaskType string  `json:"task_type" msgpack:"task_type"`
	Progress float64 `json:"progress" msgpack:"progress"`
	Message  string  `json:"message,omitempty" msgpack:"message,omitempty"`
}

// JobStatus enumerates the orchestrator-visible lifecycle states of a job.
type JobStatus string

const (
	StatusRegistered JobStatus = "REGISTERED"
	StatusEnqueued   JobStatus = "ENQUEUED"
	StatusRunning    JobStatus = "RUNNING"
	StatusFinished   JobStatus = "FINISHED"
	StatusCancelled  JobStatus = "CANCELLED"
)

// JobStatusUpdate reports a lifecycle state change for a job.
type JobStatusUpdate struct {
	UUID   string    `json:"uuid" msgpack:"uuid"`
	Status JobStatus `json:"status" msgpack:"status"`
}

// ResultType distinguishes successful from failed job results.
type ResultType string

const (
	ResultSucceeded ResultType = "SUCCEEDED"
	ResultFailed    ResultType = "FAILED"
)

// JobResult is the single terminal message for a job.
type JobResult struct {
	JobID      string     `json:"job_id" msgpack:"job_id"`
	TaskID     string     `json:"task_id" msgpack:"task_id"`
	TaskType   string     `json:"task_type" msgpack:"task_type"`
	ResultType ResultType `json:"result_type" msgpack:"result_type"`
	Output     []byte     `json:"output,omitempty" msgpack:"output,omitempty"`
	Logs       string     `json:"logs,omitempty" msgpack:"logs,omitempty"`
}

// AvailableWorkflows is the wire catalog: the full set of workflow types
// an orchestrator supports, exchanged so clients can discover server-side
// capabilities.
type AvailableWorkflows struct {
	Workflows []Workflow `json:"workflows" msgpack:"workflows"`
}

// Workflow describes one workflow type in the catalog.
type Workflow struct {
	TypeName        string             `json:"type_name" msgpack:"type_name"`
	TypeDescription string             `json:"type_description,omitempty" msgpack:"type_description,omitempty"`
	Parameters      []ParameterMessage `json:"parameters,omitempty" msgpack:"parameters,omitempty"`
}

// ParameterMessage is a tagged union over the parameter variants.
// Exactly one field is populated per entry.
type ParameterMessage struct {
	String   *StringParameter   `json:"string,omitempty" msgpack:"string,omitempty"`
	Boolean  *BooleanParameter  `json:"boolean,omitempty" msgpack:"boolean,omitempty"`
	Integer  *IntegerParameter  `json:"integer,omitempty" msgpack:"integer,omitempty"`
	Float    *FloatParameter    `json:"float,omitempty" msgpack:"float,omitempty"`
	DateTime *DateTimeParameter `json:"datetime,omitempty" msgpack:"datetime,omitempty"`
}

// StringEnumOption is one selectable value of an enumerated string
// parameter.
type StringEnumOption struct {
	KeyName     string `json:"key_name" msgpack:"key_name"`
	DisplayName string `json:"display_name" msgpack:"display_name"`
}

// StringParameter describes a string (or enumerated string) parameter.
type StringParameter struct {
	KeyName     string             `json:"key_name" msgpack:"key_name"`
	Title       string             `json:"title,omitempty" msgpack:"title,omitempty"`
	Description string             `json:"description,omitempty" msgpack:"description,omitempty"`
	Default     *string            `json:"default,omitempty" msgpack:"default,omitempty"`
	EnumOptions []StringEnumOption `json:"enum_options,omitempty" msgpack:"enum_options,omitempty"`
}

// BooleanParameter describes a boolean parameter.
type BooleanParameter struct {
	KeyName     string `json:"key_name" msgpack:"key_name"`
	Title       string `json:"title,omitempty" msgpack:"title,omitempty"`
	Description string `json:"description,omitempty" msgpack:"description,omitempty"`
	Default     *bool  `json:"default,omitempty" msgpack:"default,omitempty"`
}

// IntegerParameter describes an integer parameter with optional bounds.
// Bounds use pointers so that an absent bound is distinguishable from a
// bound explicitly set to zero.
type IntegerParameter struct {
	KeyName     string `json:"key_name" msgpack:"key_name"`
	Title       string `json:"title,omitempty" msgpack:"title,omitempty"`
	Description string `json:"description,omitempty" msgpack:"description,omitempty"`
	Default     *int64 `json:"default,omitempty" msgpack:"default,omitempty"`
	Minimum     *int64 `json:"minimum,omitempty" msgpack:"minimum,omitempty"`
	Maximum     *int64 `json:"maximum,omitempty" msgpack:"maximum,omitempty"`
}

// FloatParameter describes a float parameter with optional bounds.
type FloatParameter struct {
	KeyName     string   `json:"key_name" msgpack:"key_name"`
	Title       string   `json:"title,omitempty" msgpack:"title,omitempty"`
	Description string   `json:"description,omitempty" msgpack:"description,omitempty"`
	Default     *float64 `json:"default,omitempty" msgpack:"default,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty" msgpack:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty" msgpack:"maximum,omitempty"`
}

// DateTimeParameter describes a datetime parameter. The default is a
// Unix timestamp in seconds.
type DateTimeParameter struct {
	KeyName     string `json:"key_name" msgpack:"key_name"`
	Title       string `json:"title,omitempty" msgpack:"title,omitempty"`
	Description string `json:"description,omitempty" msgpack:"description,omitempty"`
	Default     *int64 `json:"default,omitempty" msgpack:"default,omitempty"`
}
