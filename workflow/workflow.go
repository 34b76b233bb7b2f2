// Package workflow defines workflow types, the named definitions of
// what a job requires (an input document plus typed parameters), and
// the Manager registry that holds every workflow type a process knows
// about.
//
// A Manager is built once, either from a configuration file on the
// orchestrator side or from a received wire catalog on the client side,
// and is read-only afterwards: it may be shared across any number of
// subscription callbacks without locking.
package workflow

import "github.com/xraph/conduit/params"

// Type is a named workflow definition.
//
// Two Types are interchangeable iff their Name matches; Description and
// Parameters are cosmetic for identity purposes so registries can
// compare catalogs across refreshes.
type Type struct {
	// Name is the technical identifier. It keys the registry and the
	// submission queue name.
	Name string

	// Description is the human-readable label.
	Description string

	// Parameters is the ordered parameter list. Nil means the workflow
	// takes no configuration beyond the input document.
	Parameters []params.Parameter
}

// Equal reports whether two workflow types share the same technical name.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}

	return t.Name == other.Name
}

// Manager is the registry of all workflow types this process supports,
// keyed by technical name. Lookup order is unordered; parameter order
// within a Type is preserved.
type Manager struct {
	workflows map[string]*Type
}

// NewManager creates a registry from the given workflow types. A later
// type with the same name replaces an earlier one.
func NewManager(types ...*Type) *Manager {
	m := &Manager{workflows: make(map[string]*Type, len(types))}
	for _, t := range types {
		m.workflows[t.Name] = t
	}

	return m
}

// ByName returns the workflow type with the given technical name.
// Returns false if the name is not registered.
func (m *Manager) ByName(name string) (*Type, bool) {
	t, ok := m.workflows[name]

	return t, ok
}

// All returns every registered workflow type.
func (m *Manager) All() []*Type {
	all := make([]*Type, 0, len(m.workflows))
	for _, t := range m.workflows {
		all = append(all, t)
	}

	return all
}

// Exists reports whether a workflow type with the same technical name
// is registered.
func (m *Manager) Exists(t *Type) bool {
	if t == nil {
		return false
	}
	_, ok := m.workflows[t.Name]

	return ok
}
