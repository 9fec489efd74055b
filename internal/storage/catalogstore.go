// Package storage loads the catalog and run documents and persists the
// workflow store and run reports. All writes use a write-new-then-replace
// discipline so a failed run never leaves a partially written store.
package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/workflow-radar/internal/core"
	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// CatalogLoader reads the catalog source documents and compiles the
// unified process catalog plus the clients and roles catalogs.
type CatalogLoader interface {
	LoadWorkflowDefinitionDoc(path string) (*models.WorkflowDefinitionDoc, error)
	LoadProcessCatalogDoc(path string) (*models.ProcessCatalogDoc, error)
	LoadAliasOverrides(path string) (*models.AliasOverridesDoc, error)
	LoadClientsCatalog(path string) (*models.ClientsCatalog, error)
	LoadRolesCatalog(path string) (*models.RolesCatalog, error)
	LoadUnifiedCatalog(definitionPath, catalogPath, overridePath string, scope models.ScopeConfig) (*models.ProcessCatalog, error)
}

type yamlCatalogLoader struct{}

// NewCatalogLoader creates a CatalogLoader over YAML source documents.
func NewCatalogLoader() CatalogLoader {
	return &yamlCatalogLoader{}
}

// loadYAML reads and decodes one YAML document. Missing or malformed
// documents are config errors: they abort the run before any instance
// is processed.
func loadYAML(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: YAML file not found: %s", core.ErrConfig, path)
		}
		return fmt.Errorf("%w: reading %s: %v", core.ErrConfig, path, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: parsing YAML at %s: %v", core.ErrConfig, path, err)
	}
	return nil
}

func (l *yamlCatalogLoader) LoadWorkflowDefinitionDoc(path string) (*models.WorkflowDefinitionDoc, error) {
	var doc models.WorkflowDefinitionDoc
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (l *yamlCatalogLoader) LoadProcessCatalogDoc(path string) (*models.ProcessCatalogDoc, error) {
	var doc models.ProcessCatalogDoc
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadAliasOverrides reads the optional override document. A missing
// file is not an error; overrides are additive only.
func (l *yamlCatalogLoader) LoadAliasOverrides(path string) (*models.AliasOverridesDoc, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var doc models.AliasOverridesDoc
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (l *yamlCatalogLoader) LoadClientsCatalog(path string) (*models.ClientsCatalog, error) {
	var doc models.ClientsCatalog
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (l *yamlCatalogLoader) LoadRolesCatalog(path string) (*models.RolesCatalog, error) {
	var doc models.RolesCatalog
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadUnifiedCatalog compiles the primary process from the workflow
// definition (with optional alias overrides) and merges it with the
// flat-spec processes from the process catalog document. Reserved ids
// in the flat document are ignored.
func (l *yamlCatalogLoader) LoadUnifiedCatalog(definitionPath, catalogPath, overridePath string, scope models.ScopeConfig) (*models.ProcessCatalog, error) {
	defDoc, err := l.LoadWorkflowDefinitionDoc(definitionPath)
	if err != nil {
		return nil, fmt.Errorf("loading workflow definition: %w", err)
	}
	override, err := l.LoadAliasOverrides(overridePath)
	if err != nil {
		return nil, fmt.Errorf("loading alias overrides: %w", err)
	}
	primary, err := core.CompileProcess(defDoc, scope.PrimaryProcess, override)
	if err != nil {
		return nil, fmt.Errorf("compiling primary process: %w", err)
	}
	catalogDoc, err := l.LoadProcessCatalogDoc(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading process catalog: %w", err)
	}
	catalog, err := core.BuildUnifiedCatalog(primary, catalogDoc, scope.ReservedKeys)
	if err != nil {
		return nil, fmt.Errorf("building unified catalog: %w", err)
	}
	return catalog, nil
}
