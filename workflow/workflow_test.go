package workflow_test

import (
	"testing"

	"github.com/xraph/conduit/params"
	"github.com/xraph/conduit/workflow"
)

func TestTypeEqualByName(t *testing.T) {
	a := &workflow.Type{Name: "grow_system", Description: "Grow the system"}
	b := &workflow.Type{Name: "grow_system", Description: "Different words"}
	c := &workflow.Type{Name: "optimize"}

	if !a.Equal(b) {
		t.Error("same name should be equal regardless of description")
	}
	if a.Equal(c) {
		t.Error("different names should not be equal")
	}
	var nilType *workflow.Type
	if a.Equal(nilType) {
		t.Error("non-nil should not equal nil")
	}
	if !nilType.Equal(nil) {
		t.Error("nil should equal nil")
	}
}

func TestManagerLookup(t *testing.T) {
	grow := &workflow.Type{Name: "grow_system"}
	optimize := &workflow.Type{Name: "optimize"}
	m := workflow.NewManager(grow, optimize)

	got, ok := m.ByName("grow_system")
	if !ok || got != grow {
		t.Errorf("ByName(grow_system) = %v, %v", got, ok)
	}
	if _, ok := m.ByName("unknown"); ok {
		t.Error("ByName(unknown) should not be found")
	}

	if !m.Exists(&workflow.Type{Name: "optimize"}) {
		t.Error("Exists should match by name")
	}
	if m.Exists(&workflow.Type{Name: "unknown"}) {
		t.Error("Exists should reject unknown names")
	}
	if m.Exists(nil) {
		t.Error("Exists(nil) should be false")
	}

	if got := len(m.All()); got != 2 {
		t.Errorf("len(All()) = %d, want 2", got)
	}
}

func TestManagerDuplicateNameReplaces(t *testing.T) {
	first := &workflow.Type{Name: "grow_system", Description: "first"}
	second := &workflow.Type{Name: "grow_system", Description: "second"}
	m := workflow.NewManager(first, second)

	got, _ := m.ByName("grow_system")
	if got != second {
		t.Errorf("ByName() = %v, want the later registration", got)
	}
	if len(m.All()) != 1 {
		t.Errorf("len(All()) = %d, want 1", len(m.All()))
	}
}

func TestManagerPreservesParameterOrder(t *testing.T) {
	wt := &workflow.Type{
		Name: "grow_system",
		Parameters: []params.Parameter{
			&params.String{Key: "scenario"},
			&params.Integer{Key: "iterations"},
			&params.Boolean{Key: "dry_run"},
		},
	}
	m := workflow.NewManager(wt)

	got, _ := m.ByName("grow_system")
	want := []string{"scenario", "iterations", "dry_run"}
	for i, p := range got.Parameters {
		if p.KeyName() != want[i] {
			t.Errorf("Parameters[%d] = %q, want %q", i, p.KeyName(), want[i])
		}
	}
}
