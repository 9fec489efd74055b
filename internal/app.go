// Package internal provides the App struct that wires all components of
// Workflow Radar together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/workflow-radar/internal/cli"
	"github.com/valter-silva-au/workflow-radar/internal/core"
	"github.com/valter-silva-au/workflow-radar/internal/observability"
	"github.com/valter-silva-au/workflow-radar/internal/storage"
	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// App holds all service dependencies for Workflow Radar.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.ReconcileConfig

	// Storage layer
	CatalogLoader storage.CatalogLoader
	RunStore      storage.RunStore
	StoreMgr      storage.WorkflowStoreManager

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components. basePath is the directory
// holding .wfrconfig, the catalog documents, and the workflow store.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadReconcileConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateReconcileConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Storage layer ---
	app.CatalogLoader = storage.NewCatalogLoader()
	app.RunStore = storage.NewRunStore()
	storePath := cfg.Store.PersistentPath
	if !filepath.IsAbs(storePath) {
		storePath = filepath.Join(basePath, storePath)
	}
	app.StoreMgr = storage.NewWorkflowStoreManager(storePath, cfg.Store.SnapshotName)

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".wfr_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable observability if the log can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = app.Config
	cli.CatalogLoader = app.CatalogLoader
	cli.RunStore = app.RunStore
	cli.StoreMgr = app.StoreMgr
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App, such as the event log file
// handle. It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for the Workflow Radar data
// directory. It checks the WFR_HOME env var, then walks up from the
// current directory looking for a .wfrconfig file.
func ResolveBasePath() string {
	if home := os.Getenv("WFR_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".wfrconfig")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
