package workflow

import (
	"fmt"

	"github.com/xraph/conduit/params"
	"github.com/xraph/conduit/wire"
)

// ToCatalog serializes the full registry into the wire catalog message.
// Parameter order within a workflow is preserved; workflow order within
// the catalog is not guaranteed.
func (m *Manager) ToCatalog() *wire.AvailableWorkflows {
	catalog := &wire.AvailableWorkflows{
		Workflows: make([]wire.Workflow, 0, len(m.workflows)),
	}

	for _, t := range m.workflows {
		entry := wire.Workflow{
			TypeName:        t.Name,
			TypeDescription: t.Description,
		}
		for _, p := range t.Parameters {
			entry.Parameters = append(entry.Parameters, p.ToMessage())
		}
		catalog.Workflows = append(catalog.Workflows, entry)
	}

	return catalog
}

// FromCatalog builds a Manager from a received wire catalog message.
// The round trip through ToCatalog is lossless per workflow.
func FromCatalog(catalog *wire.AvailableWorkflows) (*Manager, error) {
	types := make([]*Type, 0, len(catalog.Workflows))
	for _, entry := range catalog.Workflows {
		t := &Type{Name: entry.TypeName, Description: entry.TypeDescription}
		for _, msg := range entry.Parameters {
			p, err := params.FromMessage(msg)
			if err != nil {
				return nil, fmt.Errorf("workflow: catalog entry %q: %w", entry.TypeName, err)
			}
			t.Parameters = append(t.Parameters, p)
		}
		types = append(types, t)
	}

	return NewManager(types...), nil
}
