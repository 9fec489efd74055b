package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

func TestWorkflowStore_LoadMissingStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	mgr := NewWorkflowStoreManager(filepath.Join(dir, "store.json"), "snap.json")

	store, err := mgr.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Version != 1 {
		t.Errorf("version = %d, want 1", store.Version)
	}
	if len(store.Workflows) != 0 {
		t.Errorf("expected empty store, got %d workflows", len(store.Workflows))
	}
}

func TestWorkflowStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "store.json")
	mgr := NewWorkflowStoreManager(path, "snap.json")

	store := &models.WorkflowStore{
		Workflows: []models.Workflow{
			{WorkflowID: "wf_abc123def456", ProcessID: "recruiting", Client: "Acme Corp"},
		},
	}
	if err := mgr.Save(store); err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.UpdatedAt == "" {
		t.Error("save must stamp updated_at")
	}
	if store.Version != 1 {
		t.Errorf("save must default version, got %d", store.Version)
	}

	loaded, err := mgr.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Workflows) != 1 || loaded.Workflows[0].WorkflowID != "wf_abc123def456" {
		t.Errorf("loaded workflows = %+v", loaded.Workflows)
	}
}

func TestWorkflowStore_CorruptFileDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing corrupt store: %v", err)
	}

	mgr := NewWorkflowStoreManager(path, "snap.json")
	store, err := mgr.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.Workflows) != 0 {
		t.Errorf("corrupt store should degrade to empty, got %d workflows", len(store.Workflows))
	}
}

func TestWorkflowStore_SaveSnapshot(t *testing.T) {
	dir := t.TempDir()
	runDir := filepath.Join(dir, "run-001")
	mgr := NewWorkflowStoreManager(filepath.Join(dir, "store.json"), "workflow_store.snapshot.json")

	store := &models.WorkflowStore{Version: 1, Workflows: []models.Workflow{{WorkflowID: "wf_000000000001"}}}
	if err := mgr.SaveSnapshot(runDir, store); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(runDir, "workflow_store.snapshot.json"))
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	var snap models.WorkflowStore
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("parsing snapshot: %v", err)
	}
	if len(snap.Workflows) != 1 {
		t.Errorf("snapshot workflows = %+v", snap.Workflows)
	}
}

func TestWorkflowStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	mgr := NewWorkflowStoreManager(path, "snap.json")

	if err := mgr.Save(&models.WorkflowStore{}); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "store.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("unexpected directory contents: %v", names)
	}
}
