package store

import (
	"time"

	"github.com/geomichelon/vtsdk/internal/vision"
)

// Run is one persisted comparison: what was asked, what came back, and
// where the stored copy of the diff artifact lives.
type Run struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Backend names the engine that produced the result (real, mock).
	Backend string `json:"backend"`

	Request vision.CompareRequest `json:"request"`
	Result  vision.CompareResult  `json:"result"`

	// ArtifactPath is the copy of the diff artifact kept with the run.
	// Empty when the comparison produced none or the copy failed.
	ArtifactPath string `json:"artifactPath,omitempty"`
}

// RunInfo is the listing view of a Run.
type RunInfo struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	TestName    string        `json:"testName,omitempty"`
	Baseline    string        `json:"baseline"`
	Input       string        `json:"input"`
	Similarity  float64       `json:"similarity"`
	Status      vision.Status `json:"status,omitempty"`
	HasArtifact bool          `json:"hasArtifact"`
}

// NewRun creates a run record stamped with the current time.
func NewRun(id, backend string, req vision.CompareRequest, res vision.CompareResult) *Run {
	return &Run{
		ID:        id,
		Timestamp: time.Now(),
		Backend:   backend,
		Request:   req,
		Result:    res,
	}
}

// ToInfo converts a full Run to its listing view.
func (r *Run) ToInfo() RunInfo {
	return RunInfo{
		ID:          r.ID,
		Timestamp:   r.Timestamp,
		TestName:    r.Request.Meta.TestName,
		Baseline:    r.Request.BaselineImage,
		Input:       r.Request.InputImage,
		Similarity:  r.Result.ObtainedSimilarity,
		Status:      r.Result.Status,
		HasArtifact: r.ArtifactPath != "",
	}
}

// Validate checks that the record is complete enough to be stored.
func (r *Run) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Request.BaselineImage == "" {
		return &ValidationError{Field: "Request.BaselineImage", Reason: "cannot be empty"}
	}
	if r.Request.InputImage == "" {
		return &ValidationError{Field: "Request.InputImage", Reason: "cannot be empty"}
	}
	if s := r.Result.ObtainedSimilarity; s < 0 || s > 100 {
		return &ValidationError{Field: "Result.ObtainedSimilarity", Reason: "must be within [0,100]"}
	}
	return nil
}

// ValidationError represents an invalid run record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
