package cli

import (
	"github.com/valter-silva-au/workflow-radar/internal/observability"
	"github.com/valter-silva-au/workflow-radar/internal/storage"
	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Config   *models.ReconcileConfig

	CatalogLoader storage.CatalogLoader
	RunStore      storage.RunStore
	StoreMgr      storage.WorkflowStoreManager

	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
