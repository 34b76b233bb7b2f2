package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/xraph/conduit/params"
)

// typeConfig is the configuration-file shape of one workflow definition.
type typeConfig struct {
	Name        string           `json:"workflow_type_name"`
	Description string           `json:"workflow_type_description_name"`
	Parameters  []map[string]any `json:"workflow_parameters"`
}

// LoadConfigFile builds a Manager from a human-editable JSON file
// holding an ordered list of workflow definitions.
//
// Parameter entries dispatch on their "parameter_type" discriminator.
// Entries with an unknown discriminator are skipped with a warning
// rather than rejected, so a config written for a newer SDK still loads.
// Any other validation failure aborts the load.
func LoadConfigFile(path string) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("workflow: read config file: %w", err)
	}

	return loadConfig(data)
}

func loadConfig(data []byte) (*Manager, error) {
	var entries []typeConfig
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("workflow: parse config: %w", err)
	}

	types := make([]*Type, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "" {
			return nil, errors.New("workflow: config entry missing workflow_type_name")
		}

		t := &Type{Name: entry.Name, Description: entry.Description}
		for _, paramCfg := range entry.Parameters {
			p, err := params.FromConfig(paramCfg)
			if errors.Is(err, params.ErrUnknownKind) {
				slog.Warn("skipping workflow parameter of unknown kind",
					slog.String("workflow_type", entry.Name),
					slog.String("error", err.Error()),
				)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("workflow: parameter in %q: %w", entry.Name, err)
			}
			t.Parameters = append(t.Parameters, p)
		}

		types = append(types, t)
	}

	return NewManager(types...), nil
}
