package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/workflow-radar/internal/core"
	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// RunStore reads and writes the per-run documents inside one run
// directory: instances, the optional timeline, and the report outputs.
type RunStore interface {
	LoadInstances(runDir string) ([]models.Instance, error)
	SaveInstances(runDir string, instances []models.Instance) error
	LoadTimeline(runDir string) (map[string][]models.TimelineEvent, error)
	WriteReport(runDir, name string, report any) error
	WriteEnrichmentStats(runDir string, stats *models.EnrichmentStats) error
}

type fileRunStore struct {
	instancesName string
	timelineName  string
	statsName     string
}

// NewRunStore creates a RunStore with the conventional run-dir file
// names.
func NewRunStore() RunStore {
	return &fileRunStore{
		instancesName: "instances.json",
		timelineName:  "timeline.json",
		statsName:     "enrichment_stats.json",
	}
}

// LoadInstances reads the instances document. A missing instances file
// is fatal for the run.
func (s *fileRunStore) LoadInstances(runDir string) ([]models.Instance, error) {
	path := filepath.Join(runDir, s.instancesName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: missing instances file: %s", core.ErrConfig, path)
		}
		return nil, fmt.Errorf("reading instances file %s: %w", path, err)
	}
	var doc models.InstancesDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing instances file %s: %v", core.ErrConfig, path, err)
	}
	return doc.Instances, nil
}

// SaveInstances writes the (enriched) instances document back.
func (s *fileRunStore) SaveInstances(runDir string, instances []models.Instance) error {
	path := filepath.Join(runDir, s.instancesName)
	if err := writeJSONAtomic(path, models.InstancesDoc{Instances: instances}); err != nil {
		return fmt.Errorf("saving instances: %w", err)
	}
	return nil
}

// LoadTimeline reads the optional per-instance timeline document. A
// missing file returns a nil map, which disables the timeline evidence
// fallback.
func (s *fileRunStore) LoadTimeline(runDir string) (map[string][]models.TimelineEvent, error) {
	path := filepath.Join(runDir, s.timelineName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading timeline file %s: %w", path, err)
	}
	var doc models.TimelineDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing timeline file %s: %v", core.ErrConfig, path, err)
	}
	if doc.ByInstance == nil {
		doc.ByInstance = map[string][]models.TimelineEvent{}
	}
	return doc.ByInstance, nil
}

// WriteReport writes one report document into the run directory.
func (s *fileRunStore) WriteReport(runDir, name string, report any) error {
	if err := writeJSONAtomic(filepath.Join(runDir, name), report); err != nil {
		return fmt.Errorf("writing report %s: %w", name, err)
	}
	return nil
}

// WriteEnrichmentStats writes the enrichment coverage summary.
func (s *fileRunStore) WriteEnrichmentStats(runDir string, stats *models.EnrichmentStats) error {
	if err := writeJSONAtomic(filepath.Join(runDir, s.statsName), stats); err != nil {
		return fmt.Errorf("writing enrichment stats: %w", err)
	}
	return nil
}
