package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// ConfigurationManager loads and validates the run configuration from
// the .wfrconfig YAML file in the base path.
type ConfigurationManager interface {
	LoadReconcileConfig() (*models.ReconcileConfig, error)
	ValidateReconcileConfig(cfg *models.ReconcileConfig) error
}

type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultReconcileConfig returns the configuration used when no
// .wfrconfig file is present.
func DefaultReconcileConfig() *models.ReconcileConfig {
	return &models.ReconcileConfig{
		Enabled: true,
		Catalog: models.CatalogConfig{
			DefinitionPath: "catalog/workflow_definition.yaml",
			CatalogPath:    "catalog/process_catalog.yaml",
			OverridePath:   "catalog/alias_overrides.yaml",
			ClientsPath:    "catalog/clients.yaml",
			RolesPath:      "catalog/roles.yaml",
		},
		Store: models.StoreConfig{
			PersistentPath: "data/workflow_store.json",
			SnapshotName:   "workflow_store.snapshot.json",
		},
		Scope: models.ScopeConfig{
			ScopedOnly:     true,
			ProcessKeys:    []string{"recruiting", "hiring"},
			PrimaryProcess: "recruiting",
			ReservedKeys:   []string{"recruiting", "hiring"},
		},
		Match: models.MatchConfig{
			Method:         "key_then_fuzzy",
			ExactKeyFields: []string{"canonical_client", "canonical_role", "canonical_process"},
			FuzzyThreshold: 0.88,
		},
		Evidence: models.EvidenceConfig{
			MaxIDsPerInstance:   200,
			TimelineFallbackMax: 30,
		},
		Inference: models.InferenceConfig{
			PositionalEnabled: true,
			CompletedLabel:    "completed_inferred",
		},
		Reports: models.ReportsConfig{
			CoverageName:       "coverage_report.json",
			ReconciliationName: "reconciliation_report.json",
			DriftName:          "mapping_drift_report.json",
		},
	}
}

// LoadReconcileConfig reads .wfrconfig from the base path. A missing
// file yields the defaults; a malformed file is a config error.
func (cm *viperConfigManager) LoadReconcileConfig() (*models.ReconcileConfig, error) {
	cfg := DefaultReconcileConfig()

	v := viper.New()
	v.SetConfigName(".wfrconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("reconciliation.enabled", cfg.Enabled)
	v.SetDefault("reconciliation.catalog.definition_path", cfg.Catalog.DefinitionPath)
	v.SetDefault("reconciliation.catalog.catalog_path", cfg.Catalog.CatalogPath)
	v.SetDefault("reconciliation.catalog.override_path", cfg.Catalog.OverridePath)
	v.SetDefault("reconciliation.catalog.clients_path", cfg.Catalog.ClientsPath)
	v.SetDefault("reconciliation.catalog.roles_path", cfg.Catalog.RolesPath)
	v.SetDefault("reconciliation.store.persistent_path", cfg.Store.PersistentPath)
	v.SetDefault("reconciliation.store.snapshot_name", cfg.Store.SnapshotName)
	v.SetDefault("reconciliation.scope.scoped_only", cfg.Scope.ScopedOnly)
	v.SetDefault("reconciliation.scope.process_keys", cfg.Scope.ProcessKeys)
	v.SetDefault("reconciliation.scope.primary_process", cfg.Scope.PrimaryProcess)
	v.SetDefault("reconciliation.scope.reserved_keys", cfg.Scope.ReservedKeys)
	v.SetDefault("reconciliation.reconcile.match.method", cfg.Match.Method)
	v.SetDefault("reconciliation.reconcile.match.exact_key_fields", cfg.Match.ExactKeyFields)
	v.SetDefault("reconciliation.reconcile.match.fuzzy_threshold", cfg.Match.FuzzyThreshold)
	v.SetDefault("reconciliation.reconcile.evidence.max_ids_per_instance", cfg.Evidence.MaxIDsPerInstance)
	v.SetDefault("reconciliation.reconcile.evidence.timeline_fallback_max", cfg.Evidence.TimelineFallbackMax)
	v.SetDefault("reconciliation.inference.positional.enabled", cfg.Inference.PositionalEnabled)
	v.SetDefault("reconciliation.inference.positional.completed_label", cfg.Inference.CompletedLabel)
	v.SetDefault("reconciliation.reports.coverage_name", cfg.Reports.CoverageName)
	v.SetDefault("reconciliation.reports.reconciliation_name", cfg.Reports.ReconciliationName)
	v.SetDefault("reconciliation.reports.drift_name", cfg.Reports.DriftName)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: reading .wfrconfig: %v", ErrConfig, err)
	}

	cfg.Enabled = v.GetBool("reconciliation.enabled")
	cfg.Catalog.DefinitionPath = v.GetString("reconciliation.catalog.definition_path")
	cfg.Catalog.CatalogPath = v.GetString("reconciliation.catalog.catalog_path")
	cfg.Catalog.OverridePath = v.GetString("reconciliation.catalog.override_path")
	cfg.Catalog.ClientsPath = v.GetString("reconciliation.catalog.clients_path")
	cfg.Catalog.RolesPath = v.GetString("reconciliation.catalog.roles_path")
	cfg.Store.PersistentPath = v.GetString("reconciliation.store.persistent_path")
	cfg.Store.SnapshotName = v.GetString("reconciliation.store.snapshot_name")
	cfg.Scope.ScopedOnly = v.GetBool("reconciliation.scope.scoped_only")
	cfg.Scope.ProcessKeys = v.GetStringSlice("reconciliation.scope.process_keys")
	cfg.Scope.PrimaryProcess = v.GetString("reconciliation.scope.primary_process")
	cfg.Scope.ReservedKeys = v.GetStringSlice("reconciliation.scope.reserved_keys")
	cfg.Match.Method = v.GetString("reconciliation.reconcile.match.method")
	cfg.Match.ExactKeyFields = v.GetStringSlice("reconciliation.reconcile.match.exact_key_fields")
	cfg.Match.FuzzyThreshold = v.GetFloat64("reconciliation.reconcile.match.fuzzy_threshold")
	cfg.Evidence.MaxIDsPerInstance = v.GetInt("reconciliation.reconcile.evidence.max_ids_per_instance")
	cfg.Evidence.TimelineFallbackMax = v.GetInt("reconciliation.reconcile.evidence.timeline_fallback_max")
	cfg.Inference.PositionalEnabled = v.GetBool("reconciliation.inference.positional.enabled")
	cfg.Inference.CompletedLabel = v.GetString("reconciliation.inference.positional.completed_label")
	cfg.Reports.CoverageName = v.GetString("reconciliation.reports.coverage_name")
	cfg.Reports.ReconciliationName = v.GetString("reconciliation.reports.reconciliation_name")
	cfg.Reports.DriftName = v.GetString("reconciliation.reports.drift_name")

	return cfg, nil
}

// ValidateReconcileConfig checks the loaded configuration for values the
// engine cannot run with.
func (cm *viperConfigManager) ValidateReconcileConfig(cfg *models.ReconcileConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: configuration is nil", ErrConfig)
	}
	var errs []string
	if cfg.Catalog.DefinitionPath == "" {
		errs = append(errs, "catalog.definition_path must not be empty")
	}
	if cfg.Catalog.CatalogPath == "" {
		errs = append(errs, "catalog.catalog_path must not be empty")
	}
	if cfg.Match.FuzzyThreshold <= 0 || cfg.Match.FuzzyThreshold > 1 {
		errs = append(errs, fmt.Sprintf("match.fuzzy_threshold %v is invalid, must be in (0, 1]", cfg.Match.FuzzyThreshold))
	}
	if len(cfg.Match.ExactKeyFields) == 0 {
		errs = append(errs, "match.exact_key_fields must not be empty")
	}
	if cfg.Evidence.MaxIDsPerInstance <= 0 {
		errs = append(errs, fmt.Sprintf("evidence.max_ids_per_instance %d is invalid, must be positive", cfg.Evidence.MaxIDsPerInstance))
	}
	if cfg.Evidence.TimelineFallbackMax < 0 {
		errs = append(errs, fmt.Sprintf("evidence.timeline_fallback_max %d is invalid, must not be negative", cfg.Evidence.TimelineFallbackMax))
	}
	if cfg.Inference.CompletedLabel == "" {
		errs = append(errs, "inference.positional.completed_label must not be empty")
	}
	if cfg.Scope.ScopedOnly && len(cfg.Scope.ProcessKeys) == 0 {
		errs = append(errs, "scope.process_keys must not be empty when scope.scoped_only is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: reconcile config validation failed:\n  - %s", ErrConfig, strings.Join(errs, "\n  - "))
	}
	return nil
}
