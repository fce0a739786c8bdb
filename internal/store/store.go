// Package store persists comparison runs so they can be listed, inspected and
// cleaned up after the process that produced them has exited.
package store

// Store defines the interface for run persistence operations.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if the run doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRun atomically saves a run record. An existing record with the
	// same ID is overwritten.
	SaveRun(run *Run) error

	// LoadRun retrieves the run with the given ID.
	LoadRun(id string) (*Run, error)

	// ListRuns returns summaries of all readable runs. Corrupt or partial
	// run directories are skipped.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the run record and every file stored with it.
	DeleteRun(id string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
