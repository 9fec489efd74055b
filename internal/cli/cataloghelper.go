package cli

import (
	"fmt"
	"path/filepath"

	"github.com/valter-silva-au/workflow-radar/internal/core"
	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// resolvePath makes a configured document path absolute against the base
// path. Absolute paths pass through unchanged.
func resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(BasePath, path)
}

// loadCatalogs loads and compiles the three catalogs every enrichment
// needs: the unified process catalog, clients, and roles.
func loadCatalogs() (*models.ProcessCatalog, *models.ClientsCatalog, *models.RolesCatalog, error) {
	if CatalogLoader == nil || Config == nil {
		return nil, nil, nil, fmt.Errorf("catalog loader not initialized")
	}
	processes, err := CatalogLoader.LoadUnifiedCatalog(
		resolvePath(Config.Catalog.DefinitionPath),
		resolvePath(Config.Catalog.CatalogPath),
		resolvePath(Config.Catalog.OverridePath),
		Config.Scope,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading process catalog: %w", err)
	}
	clients, err := CatalogLoader.LoadClientsCatalog(resolvePath(Config.Catalog.ClientsPath))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading clients catalog: %w", err)
	}
	roles, err := CatalogLoader.LoadRolesCatalog(resolvePath(Config.Catalog.RolesPath))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading roles catalog: %w", err)
	}
	return processes, clients, roles, nil
}

// loadDefinition builds the workflow definition used by reconciliation.
func loadDefinition() (*core.WorkflowDefinition, error) {
	if CatalogLoader == nil || Config == nil {
		return nil, fmt.Errorf("catalog loader not initialized")
	}
	doc, err := CatalogLoader.LoadWorkflowDefinitionDoc(resolvePath(Config.Catalog.DefinitionPath))
	if err != nil {
		return nil, fmt.Errorf("loading workflow definition: %w", err)
	}
	return core.BuildWorkflowDefinition(doc), nil
}
