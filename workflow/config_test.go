package workflow_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xraph/conduit/workflow"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "workflows.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfigFile(t, `[
		{
			"workflow_type_name": "grow_system",
			"workflow_type_description_name": "Grow the system",
			"workflow_parameters": [
				{"key_name": "scenario", "parameter_type": "string", "default": "base"},
				{"key_name": "iterations", "parameter_type": "integer", "minimum": 1}
			]
		},
		{
			"workflow_type_name": "optimize",
			"workflow_type_description_name": "Optimize the system"
		}
	]`)

	m, err := workflow.LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}

	grow, ok := m.ByName("grow_system")
	if !ok {
		t.Fatal("grow_system not loaded")
	}
	if grow.Description != "Grow the system" {
		t.Errorf("Description = %q", grow.Description)
	}
	if len(grow.Parameters) != 2 {
		t.Fatalf("len(Parameters) = %d, want 2", len(grow.Parameters))
	}
	if grow.Parameters[0].KeyName() != "scenario" || grow.Parameters[1].KeyName() != "iterations" {
		t.Errorf("parameter order = %q, %q", grow.Parameters[0].KeyName(), grow.Parameters[1].KeyName())
	}

	optimize, ok := m.ByName("optimize")
	if !ok {
		t.Fatal("optimize not loaded")
	}
	if len(optimize.Parameters) != 0 {
		t.Errorf("optimize should have no parameters, got %d", len(optimize.Parameters))
	}
}

func TestLoadConfigFileSkipsUnknownParameterKind(t *testing.T) {
	path := writeConfigFile(t, `[
		{
			"workflow_type_name": "grow_system",
			"workflow_parameters": [
				{"key_name": "blob", "parameter_type": "binary"},
				{"key_name": "scenario", "parameter_type": "string"}
			]
		}
	]`)

	m, err := workflow.LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}

	grow, _ := m.ByName("grow_system")
	if len(grow.Parameters) != 1 {
		t.Fatalf("len(Parameters) = %d, want 1 after skipping unknown kind", len(grow.Parameters))
	}
	if grow.Parameters[0].KeyName() != "scenario" {
		t.Errorf("surviving parameter = %q, want scenario", grow.Parameters[0].KeyName())
	}
}

func TestLoadConfigFileRejectsInvalidParameter(t *testing.T) {
	path := writeConfigFile(t, `[
		{
			"workflow_type_name": "grow_system",
			"workflow_parameters": [
				{"key_name": "iterations", "parameter_type": "integer", "default": 1.5}
			]
		}
	]`)

	if _, err := workflow.LoadConfigFile(path); err == nil {
		t.Fatal("LoadConfigFile() should fail on an invalid parameter")
	}
}

func TestLoadConfigFileRejectsMissingName(t *testing.T) {
	path := writeConfigFile(t, `[{"workflow_type_description_name": "no name"}]`)

	if _, err := workflow.LoadConfigFile(path); err == nil {
		t.Fatal("LoadConfigFile() should fail on a nameless workflow")
	}
}

func TestLoadConfigFileMissingFile(t *testing.T) {
	if _, err := workflow.LoadConfigFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("LoadConfigFile() should fail on a missing file")
	}
}

func TestLoadConfigFileMalformedJSON(t *testing.T) {
	path := writeConfigFile(t, `{not json`)

	if _, err := workflow.LoadConfigFile(path); err == nil {
		t.Fatal("LoadConfigFile() should fail on malformed JSON")
	}
}
