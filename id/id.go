// Package id defines TypeID-based identity types for all Conduit entities.
//
// Every entity in Conduit uses a single ID struct with a prefix that
// identifies the entity type. IDs are K-sortable (UUIDv7-based), globally
// unique, and URL-safe in the format "prefix_suffix". Job IDs appear
// verbatim inside per-job queue names, so the format is part of the wire
// contract once a job is in flight.
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// Prefix constants for all Conduit entity types.
const (
	PrefixJob    Prefix = "job"
	PrefixTask   Prefix = "task"
	PrefixWorker Prefix = "wkr"
)

// ID is the primary identifier type for all Conduit entities.
// It wraps a TypeID providing a prefix-qualified, globally unique,
// sortable, URL-safe identifier in the format "prefix_suffix".
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receiver for UnmarshalText.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "job_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Type aliases
// ──────────────────────────────────────────────────

// JobID is a type-safe identifier for jobs (prefix: "job").
type JobID = ID

// TaskID is a type-safe identifier for task executions (prefix: "task").
type TaskID = ID

// WorkerID is a type-safe identifier for workers (prefix: "wkr").
type WorkerID = ID

// AnyID is a type alias that accepts any valid prefix.
type AnyID = ID

// ──────────────────────────────────────────────────
// Convenience constructors
// ──────────────────────────────────────────────────

// NewJobID generates a new unique job ID.
func NewJobID() ID { return New(PrefixJob) }

// NewTaskID generates a new unique task ID.
func NewTaskID() ID { return New(PrefixTask) }

// NewWorkerID generates a new unique worker ID.
func NewWorkerID() ID { return New(PrefixWorker) }

// ──────────────────────────────────────────────────
// Convenience parsers
// ──────────────────────────────────────────────────

// ParseJobID parses a string and validates the "job" prefix.
func ParseJobID(s string) (ID, error) { return ParseWithPrefix(s, PrefixJob) }

// ParseTaskID parses a string and validates the "task" prefix.
func ParseTaskID(s string) (ID, error) { return ParseWithPrefix(s, PrefixTask) }

// ParseWorkerID parses a string and validates the "wkr" prefix.
func ParseWorkerID(s string) (ID, error) { return ParseWithPrefix(s, PrefixWorker) }

// ParseAny parses a string into an ID without type checking the prefix.
func ParseAny(s string) (ID, error) { return Parse(s) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}
