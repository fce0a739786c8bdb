package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/geomichelon/vtsdk/internal/vision"
)

func TestRun_JSONRoundTrip(t *testing.T) {
	run := createTestRun("run-1")
	run.Timestamp = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	run.ArtifactPath = "/data/runs/run-1/diff.png"

	data, err := json.Marshal(run)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Run
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if diff := cmp.Diff(run, &decoded); diff != "" {
		t.Errorf("Round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Validate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(r *Run)
		field string
	}{
		{"valid", func(r *Run) {}, ""},
		{"empty id", func(r *Run) { r.ID = "" }, "ID"},
		{"zero timestamp", func(r *Run) { r.Timestamp = time.Time{} }, "Timestamp"},
		{"no baseline", func(r *Run) { r.Request.BaselineImage = "" }, "Request.BaselineImage"},
		{"no input", func(r *Run) { r.Request.InputImage = "" }, "Request.InputImage"},
		{"negative score", func(r *Run) { r.Result.ObtainedSimilarity = -1 }, "Result.ObtainedSimilarity"},
		{"score above range", func(r *Run) { r.Result.ObtainedSimilarity = 100.5 }, "Result.ObtainedSimilarity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := createTestRun("run-1")
			tt.edit(run)

			err := run.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Expected valid run, got %v", err)
				}
				return
			}

			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Expected *ValidationError, got %T (%v)", err, err)
			}
			if verr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestRun_ToInfo(t *testing.T) {
	run := createTestRun("run-1")

	info := run.ToInfo()
	if info.ID != "run-1" || info.TestName != "login" {
		t.Errorf("Unexpected identity fields: %+v", info)
	}
	if info.Similarity != 97.5 || info.Status != vision.StatusPassed {
		t.Errorf("Unexpected result fields: %+v", info)
	}
	if info.HasArtifact {
		t.Error("HasArtifact should be false without a stored copy")
	}

	run.ArtifactPath = "diff.png"
	if !run.ToInfo().HasArtifact {
		t.Error("HasArtifact should be true with a stored copy")
	}
}

func TestNewRun(t *testing.T) {
	before := time.Now()
	run := NewRun("id", "mock", vision.CompareRequest{BaselineImage: "a", InputImage: "b"}, vision.CompareResult{ObtainedSimilarity: 42})

	if run.Timestamp.Before(before) {
		t.Error("Timestamp should be set to now")
	}
	if run.Backend != "mock" {
		t.Errorf("Expected backend mock, got %s", run.Backend)
	}
	if err := run.Validate(); err != nil {
		t.Errorf("NewRun produced invalid run: %v", err)
	}
}
