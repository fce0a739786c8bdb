package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/geomichelon/vtsdk/internal/vision"
)

// setupTestStore creates a temporary directory and returns an FSStore for testing.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	return store, tempDir
}

func createTestRun(id string) *Run {
	min := 90
	return &Run{
		ID:        id,
		Timestamp: time.Now(),
		Backend:   "real",
		Request: vision.CompareRequest{
			BaselineImage: "baseline/login.png",
			InputImage:    "current/login.png",
			MinSimilarity: &min,
			ExcludedAreas: []vision.Rect{{TopLeftX: 0, TopLeftY: 0, BottomRightX: 10, BottomRightY: 10}},
			Meta:          vision.Meta{TestName: "login", ProjectName: "shop"},
		},
		Result: vision.CompareResult{
			ObtainedSimilarity: 97.5,
			Status:             vision.StatusPassed,
			ResultImageRef:     "/tmp/vt_diff_1.png",
			NoiseFilter:        20,
		},
	}
}

func TestNewFSStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewFSStore(dir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	if store.BaseDir() != dir {
		t.Errorf("Expected base dir %s, got %s", dir, store.BaseDir())
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("Base directory was not created: %v", err)
	}
}

func TestSaveRun(t *testing.T) {
	store, tempDir := setupTestStore(t)

	if err := store.SaveRun(createTestRun("run-1")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	expectedPath := filepath.Join(tempDir, "runs", "run-1", "run.json")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Fatalf("Run file was not created at %s", expectedPath)
	}
	if _, err := os.Stat(expectedPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file was left behind")
	}
}

func TestSaveRun_Invalid(t *testing.T) {
	store, _ := setupTestStore(t)

	if err := store.SaveRun(nil); err == nil {
		t.Error("Expected error for nil run")
	}

	run := createTestRun("")
	err := store.SaveRun(run)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if verr.Field != "ID" {
		t.Errorf("Expected field ID, got %s", verr.Field)
	}
}

func TestSaveRun_Overwrite(t *testing.T) {
	store, _ := setupTestStore(t)

	run := createTestRun("run-1")
	if err := store.SaveRun(run); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	run.Result.ObtainedSimilarity = 12.5
	run.Result.Status = vision.StatusFailed
	if err := store.SaveRun(run); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := store.LoadRun("run-1")
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if loaded.Result.ObtainedSimilarity != 12.5 || loaded.Result.Status != vision.StatusFailed {
		t.Errorf("Expected overwritten result, got %+v", loaded.Result)
	}
}

func TestLoadRun(t *testing.T) {
	store, _ := setupTestStore(t)

	original := createTestRun("run-1")
	if err := store.SaveRun(original); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	loaded, err := store.LoadRun("run-1")
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}

	if loaded.Request.BaselineImage != original.Request.BaselineImage {
		t.Errorf("Baseline mismatch: %s vs %s", loaded.Request.BaselineImage, original.Request.BaselineImage)
	}
	if loaded.Request.MinSimilarity == nil || *loaded.Request.MinSimilarity != 90 {
		t.Errorf("MinSimilarity not preserved: %v", loaded.Request.MinSimilarity)
	}
	if loaded.Request.NoiseFilter != nil {
		t.Errorf("Absent noise filter came back as %d", *loaded.Request.NoiseFilter)
	}
	if len(loaded.Request.ExcludedAreas) != 1 {
		t.Errorf("Expected 1 excluded area, got %d", len(loaded.Request.ExcludedAreas))
	}
	if loaded.Request.Meta.TestName != "login" {
		t.Errorf("Meta not preserved: %+v", loaded.Request.Meta)
	}
	if !loaded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp mismatch: %v vs %v", loaded.Timestamp, original.Timestamp)
	}
}

func TestLoadRun_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadRun("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if err.Error() != "run not found: missing" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestLoadRun_EmptyID(t *testing.T) {
	store, _ := setupTestStore(t)

	if _, err := store.LoadRun(""); err == nil {
		t.Error("Expected error for empty ID")
	}
}

func TestListRuns_Empty(t *testing.T) {
	store, _ := setupTestStore(t)

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("Expected 0 runs, got %d", len(infos))
	}
}

func TestListRuns_SortedByTimestamp(t *testing.T) {
	store, _ := setupTestStore(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, offset := range []int{3, 1, 2} {
		run := createTestRun(fmt.Sprintf("run-%d", i))
		run.Timestamp = base.Add(time.Duration(offset) * time.Hour)
		if err := store.SaveRun(run); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(infos))
	}

	want := []string{"run-1", "run-2", "run-0"}
	for i, id := range want {
		if infos[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, infos[i].ID)
		}
	}
}

func TestListRuns_SkipsInvalidDirectories(t *testing.T) {
	store, tempDir := setupTestStore(t)

	if err := store.SaveRun(createTestRun("good")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	runsDir := filepath.Join(tempDir, "runs")
	if err := os.MkdirAll(filepath.Join(runsDir, "partial"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(runsDir, "corrupt"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(runsDir, "corrupt", "run.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(runsDir, "stray.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != "good" {
		t.Errorf("Expected only the good run, got %+v", infos)
	}
}

func TestDeleteRun(t *testing.T) {
	store, tempDir := setupTestStore(t)

	if err := store.SaveRun(createTestRun("run-1")); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	if err := store.DeleteRun("run-1"); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "runs", "run-1")); !os.IsNotExist(err) {
		t.Error("Run directory still exists after delete")
	}

	if err := store.DeleteRun("run-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteRun_EmptyID(t *testing.T) {
	store, _ := setupTestStore(t)

	if err := store.DeleteRun(""); err == nil {
		t.Error("Expected error for empty ID")
	}
}

func TestAttachArtifact(t *testing.T) {
	store, tempDir := setupTestStore(t)

	src := filepath.Join(t.TempDir(), "vt_diff_1.png")
	if err := os.WriteFile(src, []byte("png-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	path, err := store.AttachArtifact("run-1", src)
	if err != nil {
		t.Fatalf("AttachArtifact failed: %v", err)
	}

	want := filepath.Join(tempDir, "runs", "run-1", ArtifactName)
	if path != want {
		t.Errorf("Expected %s, got %s", want, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read copy: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("Copy content mismatch: %q", data)
	}
}

func TestAttachArtifact_MissingSource(t *testing.T) {
	store, tempDir := setupTestStore(t)

	if _, err := store.AttachArtifact("run-1", filepath.Join(tempDir, "nope.png")); err == nil {
		t.Fatal("Expected error for missing artifact")
	}
	if _, err := os.Stat(filepath.Join(tempDir, "runs", "run-1", ArtifactName)); !os.IsNotExist(err) {
		t.Error("No artifact copy should exist")
	}
}

func TestConcurrentSave(t *testing.T) {
	store, _ := setupTestStore(t)

	const n = 10
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			done <- store.SaveRun(createTestRun(fmt.Sprintf("run-%d", i)))
		}(i)
	}
	for i := 0; i < n; i++ {
		if err := <-done; err != nil {
			t.Errorf("Concurrent save failed: %v", err)
		}
	}

	infos, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != n {
		t.Errorf("Expected %d runs, got %d", n, len(infos))
	}
}
