package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/conduit/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"JobID", id.NewJobID, "job_"},
		{"TaskID", id.NewTaskID, "task_"},
		{"WorkerID", id.NewWorkerID, "wkr_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	i := id.New(id.PrefixJob)
	if i.IsNil() {
		t.Fatal("expected non-nil ID")
	}
	if i.Prefix() != id.PrefixJob {
		t.Errorf("expected prefix %q, got %q", id.PrefixJob, i.Prefix())
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"JobID", id.NewJobID, id.ParseJobID},
		{"TaskID", id.NewTaskID, id.ParseTaskID},
		{"WorkerID", id.NewWorkerID, id.ParseWorkerID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	jobID := id.NewJobID()

	if _, err := id.ParseTaskID(jobID.String()); err == nil {
		t.Fatal("expected error parsing job ID as task ID")
	}
	if _, err := id.ParseWorkerID(jobID.String()); err == nil {
		t.Fatal("expected error parsing job ID as worker ID")
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []string{"", "not a typeid", "job_!!!!"}
	for _, input := range tests {
		if _, err := id.Parse(input); err == nil {
			t.Errorf("expected error parsing %q", input)
		}
	}
}

func TestParseAny(t *testing.T) {
	original := id.NewWorkerID()
	parsed, err := id.ParseAny(original.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.Prefix() != id.PrefixWorker {
		t.Errorf("expected prefix %q, got %q", id.PrefixWorker, parsed.Prefix())
	}
}

func TestTextMarshalRoundTrip(t *testing.T) {
	original := id.NewJobID()

	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded id.ID
	if err := decoded.UnmarshalText(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.String() != original.String() {
		t.Errorf("round-trip mismatch: %q != %q", decoded.String(), original.String())
	}
}

func TestNilID(t *testing.T) {
	if !id.Nil.IsNil() {
		t.Fatal("expected Nil to be nil")
	}
	if id.Nil.String() != "" {
		t.Errorf("expected empty string, got %q", id.Nil.String())
	}

	data, err := id.Nil.MarshalText()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded id.ID
	if err := decoded.UnmarshalText(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !decoded.IsNil() {
		t.Fatal("expected nil ID after empty round trip")
	}
}
