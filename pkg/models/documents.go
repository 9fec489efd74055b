package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Source document shapes, as produced by the upstream collaborators.
// The workflow definition is the structural document (ordered
// processes -> phases -> steps); the process catalog is the flat
// per-process step/alias/health document; alias overrides are optional
// additions merged at compile time.

// DefinitionStep is one step inside a workflow-definition phase.
type DefinitionStep struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name,omitempty"`
	ShortName string `yaml:"short_name,omitempty"`
}

// DefinitionPhase is one ordered phase of a process.
type DefinitionPhase struct {
	ID    string           `yaml:"id"`
	Name  string           `yaml:"name,omitempty"`
	Steps []DefinitionStep `yaml:"steps,omitempty"`
}

// DefinitionProcess is one process in the workflow definition document.
type DefinitionProcess struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name,omitempty"`
	Owner     string            `yaml:"owner,omitempty"`
	OwnerRole string            `yaml:"owner_role,omitempty"`
	Phases    []DefinitionPhase `yaml:"phases,omitempty"`
}

// WorkflowDefinitionDoc is the root of the workflow definition document.
type WorkflowDefinitionDoc struct {
	Processes []DefinitionProcess `yaml:"processes"`
}

// ProcessSpec is one flat declarative process entry in the process
// catalog document.
type ProcessSpec struct {
	DisplayName    string              `yaml:"display_name,omitempty"`
	Owner          string              `yaml:"owner,omitempty"`
	Steps          []string            `yaml:"steps"`
	ProcessAliases []string            `yaml:"process_aliases,omitempty"`
	StepAliases    map[string][]string `yaml:"step_aliases,omitempty"`
	Health         *HealthSpec         `yaml:"health,omitempty"`
}

// ProcessCatalogDoc is the root of the flat process catalog document.
// ProcessIDs preserves the document key order for deterministic loading.
type ProcessCatalogDoc struct {
	Processes  map[string]ProcessSpec
	ProcessIDs []string
}

// UnmarshalYAML decodes the processes mapping while recording key order,
// since Go map iteration would otherwise make catalog loading
// non-deterministic.
func (d *ProcessCatalogDoc) UnmarshalYAML(value *yaml.Node) error {
	var root struct {
		Processes yaml.Node `yaml:"processes"`
	}
	if err := value.Decode(&root); err != nil {
		return err
	}
	d.Processes = make(map[string]ProcessSpec)
	d.ProcessIDs = nil
	if root.Processes.Kind == 0 || root.Processes.Tag == "!!null" {
		return nil
	}
	if root.Processes.Kind != yaml.MappingNode {
		return fmt.Errorf("processes must be a mapping")
	}
	for i := 0; i+1 < len(root.Processes.Content); i += 2 {
		keyNode := root.Processes.Content[i]
		valNode := root.Processes.Content[i+1]
		var spec ProcessSpec
		if valNode.Tag != "!!null" {
			if err := valNode.Decode(&spec); err != nil {
				return fmt.Errorf("process %q: %w", keyNode.Value, err)
			}
		}
		d.Processes[keyNode.Value] = spec
		d.ProcessIDs = append(d.ProcessIDs, keyNode.Value)
	}
	return nil
}

// ProcessOverride carries extra aliases merged into one compiled process.
type ProcessOverride struct {
	ProcessAliases []string            `yaml:"process_aliases,omitempty"`
	StepAliases    map[string][]string `yaml:"step_aliases,omitempty"`
}

// AliasOverridesDoc is the root of the optional alias override document.
type AliasOverridesDoc struct {
	Processes map[string]ProcessOverride `yaml:"processes,omitempty"`
}
