package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// WorkflowStoreManager owns the persistent cross-run workflow store
// document. Load degrades a corrupt store to an empty one (the engine
// will regenerate it); Save is atomic so a failed write never leaves a
// partially overwritten store behind.
type WorkflowStoreManager interface {
	Load() (*models.WorkflowStore, error)
	Save(store *models.WorkflowStore) error
	SaveSnapshot(runDir string, store *models.WorkflowStore) error
	Path() string
}

type fileWorkflowStore struct {
	path         string
	snapshotName string
	now          func() time.Time
}

// NewWorkflowStoreManager creates a WorkflowStoreManager over the JSON
// store document at path. snapshotName is the per-run snapshot file
// written next to the run outputs.
func NewWorkflowStoreManager(path, snapshotName string) WorkflowStoreManager {
	return &fileWorkflowStore{
		path:         path,
		snapshotName: snapshotName,
		now:          time.Now,
	}
}

func (s *fileWorkflowStore) Path() string {
	return s.path
}

// Load reads the persistent store. A missing or unreadable store starts
// empty; prior runs' data only exists once a run has written it.
func (s *fileWorkflowStore) Load() (*models.WorkflowStore, error) {
	empty := &models.WorkflowStore{
		Version:   1,
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return nil, fmt.Errorf("loading workflow store: %w", err)
	}
	var store models.WorkflowStore
	if err := json.Unmarshal(data, &store); err != nil {
		// A corrupt store is replaced wholesale on the next save.
		return empty, nil
	}
	if store.Version == 0 {
		store.Version = 1
	}
	return &store, nil
}

// Save stamps and writes the full store document atomically.
func (s *fileWorkflowStore) Save(store *models.WorkflowStore) error {
	store.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	if store.Version == 0 {
		store.Version = 1
	}
	if err := writeJSONAtomic(s.path, store); err != nil {
		return fmt.Errorf("saving workflow store: %w", err)
	}
	return nil
}

// SaveSnapshot writes a run-scoped copy of the store into the run dir.
func (s *fileWorkflowStore) SaveSnapshot(runDir string, store *models.WorkflowStore) error {
	path := filepath.Join(runDir, s.snapshotName)
	if err := writeJSONAtomic(path, store); err != nil {
		return fmt.Errorf("saving workflow store snapshot: %w", err)
	}
	return nil
}

// writeJSONAtomic pretty-prints obj to a temp file in the target
// directory, then renames it over the destination.
func writeJSONAtomic(path string, obj any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON for %s: %w", path, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
