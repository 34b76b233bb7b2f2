package orchestrator_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/xraph/conduit/bus/memory"
	"github.com/xraph/conduit/id"
	"github.com/xraph/conduit/job"
	"github.com/xraph/conduit/orchestrator"
	"github.com/xraph/conduit/queues"
	"github.com/xraph/conduit/wire"
	"github.com/xraph/conduit/workflow"
)

func testManager() *workflow.Manager {
	return workflow.NewManager(
		&workflow.Type{Name: "grow_system"},
		&workflow.Type{Name: "optimize"},
	)
}

func publishJSON(t *testing.T, b *memory.Bus, queueName string, msg any) {
	t.Helper()

	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := b.Publish(context.Background(), queueName, payload); err != nil {
		t.Fatalf("publish to %q: %v", queueName, err)
	}
}

func TestListenForSubmissions(t *testing.T) {
	b := memory.New()
	defer b.Close()
	o := orchestrator.New(b, testManager())
	ctx := context.Background()

	type arrival struct {
		job        *job.Job
		submission *wire.JobSubmission
	}
	arrivals := make(chan arrival, 1)
	err := o.ListenForSubmissions(ctx, func(j *job.Job, s *wire.JobSubmission) {
		arrivals <- arrival{job: j, submission: s}
	})
	if err != nil {
		t.Fatalf("ListenForSubmissions() error = %v", err)
	}

	jobID := id.NewJobID()
	grow := &workflow.Type{Name: "grow_system"}
	publishJSON(t, b, queues.SubmissionQueueName(grow), &wire.JobSubmission{
		UUID:         jobID.String(),
		WorkflowType: "grow_system",
		Document:     []byte(`{"pipes": 3}`),
	})

	select {
	case a := <-arrivals:
		if a.job.ID.String() != jobID.String() {
			t.Errorf("job ID = %q, want %q", a.job.ID.String(), jobID.String())
		}
		if a.job.WorkflowType.Name != "grow_system" {
			t.Errorf("workflow type = %q", a.job.WorkflowType.Name)
		}
		if string(a.submission.Document) != `{"pipes": 3}` {
			t.Errorf("document = %s", a.submission.Document)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("submission never arrived")
	}
}

func TestMisroutedSubmissionDropped(t *testing.T) {
	b := memory.New()
	defer b.Close()
	logs := &captureLogger{}
	o := orchestrator.New(b, testManager(), orchestrator.WithLogger(slog.New(logs)))
	ctx := context.Background()

	arrivals := make(chan *job.Job, 1)
	err := o.ListenForSubmissions(ctx, func(j *job.Job, _ *wire.JobSubmission) {
		arrivals <- j
	})
	if err != nil {
		t.Fatalf("ListenForSubmissions() error = %v", err)
	}

	// A submission declaring "optimize" lands on grow_system's queue.
	grow := &workflow.Type{Name: "grow_system"}
	publishJSON(t, b, queues.SubmissionQueueName(grow), &wire.JobSubmission{
		UUID:         id.NewJobID().String(),
		WorkflowType: "optimize",
	})

	select {
	case j := <-arrivals:
		t.Fatalf("misrouted submission was delivered as job %s", j.ID)
	case <-time.After(100 * time.Millisecond):
	}

	// The drop is observable as exactly one error log.
	drops := logs.countErrors("dropping misrouted job submission")
	if drops != 1 {
		t.Fatalf("got %d misroute error logs, want exactly 1", drops)
	}

	// The queue keeps working after the drop.
	publishJSON(t, b, queues.SubmissionQueueName(grow), &wire.JobSubmission{
		UUID:         id.NewJobID().String(),
		WorkflowType: "grow_system",
	})
	select {
	case <-arrivals:
	case <-time.After(2 * time.Second):
		t.Fatal("valid submission after a drop never arrived")
	}

	if drops := logs.countErrors("dropping misrouted job submission"); drops != 1 {
		t.Errorf("got %d misroute error logs after a valid delivery, want still 1", drops)
	}
}

// captureLogger collects slog records for assertions.
type captureLogger struct {
	mu      sync.Mutex
	records []slog.Record
}

func (c *captureLogger) countErrors(message string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, r := range c.records {
		if r.Level == slog.LevelError && r.Message == message {
			n++
		}
	}

	return n
}

func (c *captureLogger) Enabled(context.Context, slog.Level) bool { return true }

func (c *captureLogger) Handle(_ context.Context, r slog.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)

	return nil
}

func (c *captureLogger) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *captureLogger) WithGroup(string) slog.Handler      { return c }

func TestUndecodableSubmissionDropped(t *testing.T) {
	b := memory.New()
	defer b.Close()
	o := orchestrator.New(b, testManager())
	ctx := context.Background()

	arrivals := make(chan *job.Job, 1)
	if err := o.ListenForSubmissions(ctx, func(j *job.Job, _ *wire.JobSubmission) { arrivals <- j }); err != nil {
		t.Fatal(err)
	}

	grow := &workflow.Type{Name: "grow_system"}
	if err := b.Publish(ctx, queues.SubmissionQueueName(grow), []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	select {
	case <-arrivals:
		t.Fatal("undecodable submission was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestListenForCancellations(t *testing.T) {
	b := memory.New()
	defer b.Close()
	o := orchestrator.New(b, testManager())
	ctx := context.Background()

	cancels := make(chan id.ID, 1)
	if err := o.ListenForCancellations(ctx, func(jobID id.ID) { cancels <- jobID }); err != nil {
		t.Fatalf("ListenForCancellations() error = %v", err)
	}

	jobID := id.NewJobID()
	publishJSON(t, b, queues.CancellationQueue, &wire.JobCancel{UUID: jobID.String()})

	select {
	case got := <-cancels:
		if got.String() != jobID.String() {
			t.Errorf("cancelled job = %q, want %q", got.String(), jobID.String())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation never arrived")
	}
}

func TestPublishLifecycle(t *testing.T) {
	b := memory.New()
	defer b.Close()
	o := orchestrator.New(b, testManager())
	ctx := context.Background()

	grow, _ := testManager().ByName("grow_system")
	j := job.New(grow)

	statuses := make(chan []byte, 1)
	progresses := make(chan []byte, 1)
	results := make(chan []byte, 1)
	if err := b.Subscribe(ctx, queues.StatusQueueName(j), func(m []byte) { statuses <- m }); err != nil {
		t.Fatal(err)
	}
	if err := b.Subscribe(ctx, queues.ProgressQueueName(j), func(m []byte) { progresses <- m }); err != nil {
		t.Fatal(err)
	}
	if err := b.Subscribe(ctx, queues.ResultQueueName(j), func(m []byte) { results <- m }); err != nil {
		t.Fatal(err)
	}

	if err := o.PublishStatus(ctx, j, wire.StatusRunning); err != nil {
		t.Fatalf("PublishStatus() error = %v", err)
	}
	if err := o.PublishProgress(ctx, j, &wire.JobProgressUpdate{Progress: 0.5, Message: "halfway"}); err != nil {
		t.Fatalf("PublishProgress() error = %v", err)
	}
	if err := o.PublishResult(ctx, j, &wire.JobResult{ResultType: wire.ResultSucceeded, Output: []byte(`{}`)}); err != nil {
		t.Fatalf("PublishResult() error = %v", err)
	}

	select {
	case payload := <-statuses:
		var update wire.JobStatusUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			t.Fatal(err)
		}
		if update.UUID != j.ID.String() || update.Status != wire.StatusRunning {
			t.Errorf("status update = %+v", update)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("status update never arrived")
	}

	select {
	case payload := <-progresses:
		var update wire.JobProgressUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			t.Fatal(err)
		}
		if update.JobID != j.ID.String() || update.Progress != 0.5 {
			t.Errorf("progress update = %+v", update)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("progress update never arrived")
	}

	select {
	case payload := <-results:
		var result wire.JobResult
		if err := json.Unmarshal(payload, &result); err != nil {
			t.Fatal(err)
		}
		if result.JobID != j.ID.String() || result.ResultType != wire.ResultSucceeded {
			t.Errorf("result = %+v", result)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("result never arrived")
	}
}

func TestPublishLeavesInputUnmodified(t *testing.T) {
	b := memory.New()
	defer b.Close()
	o := orchestrator.New(b, testManager())
	ctx := context.Background()

	grow, _ := testManager().ByName("grow_system")
	j := job.New(grow)

	update := &wire.JobProgressUpdate{Progress: 0.5, Message: "halfway"}
	if err := o.PublishProgress(ctx, j, update); err != nil {
		t.Fatalf("PublishProgress() error = %v", err)
	}
	if update.JobID != "" {
		t.Errorf("PublishProgress mutated the caller's update: JobID = %q", update.JobID)
	}

	result := &wire.JobResult{ResultType: wire.ResultSucceeded}
	if err := o.PublishResult(ctx, j, result); err != nil {
		t.Fatalf("PublishResult() error = %v", err)
	}
	if result.JobID != "" {
		t.Errorf("PublishResult mutated the caller's result: JobID = %q", result.JobID)
	}

	// The published copies still carry the handle's ID.
	results := make(chan []byte, 1)
	if err := b.Subscribe(ctx, queues.ResultQueueName(j), func(m []byte) { results <- m }); err != nil {
		t.Fatal(err)
	}
	select {
	case payload := <-results:
		var published wire.JobResult
		if err := json.Unmarshal(payload, &published); err != nil {
			t.Fatal(err)
		}
		if published.JobID != j.ID.String() {
			t.Errorf("published JobID = %q, want %q", published.JobID, j.ID.String())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("result never arrived")
	}
}

func TestPublishAvailableWorkflows(t *testing.T) {
	b := memory.New()
	defer b.Close()
	o := orchestrator.New(b, testManager())
	ctx := context.Background()

	catalogs := make(chan []byte, 1)
	if err := b.Subscribe(ctx, queues.AvailableWorkflowsQueue, func(m []byte) { catalogs <- m }); err != nil {
		t.Fatal(err)
	}

	if err := o.PublishAvailableWorkflows(ctx); err != nil {
		t.Fatalf("PublishAvailableWorkflows() error = %v", err)
	}

	select {
	case payload := <-catalogs:
		var catalog wire.AvailableWorkflows
		if err := json.Unmarshal(payload, &catalog); err != nil {
			t.Fatal(err)
		}
		restored, err := workflow.FromCatalog(&catalog)
		if err != nil {
			t.Fatalf("FromCatalog() error = %v", err)
		}
		if len(restored.All()) != 2 {
			t.Errorf("catalog has %d workflows, want 2", len(restored.All()))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("catalog never arrived")
	}
}
