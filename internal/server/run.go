package server

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/geomichelon/vtsdk/internal/store"
	"github.com/geomichelon/vtsdk/internal/vision"
)

// RunManager keeps the comparison runs served by this process and, when a
// store is configured, persists each one.
type RunManager struct {
	mu          sync.RWMutex
	runs        map[string]*store.Run
	store       *store.FSStore
	history     *store.HistoryWriter
	broadcaster *EventBroadcaster
}

// NewRunManager creates a RunManager. st may be nil for an in-memory server.
func NewRunManager(st *store.FSStore) *RunManager {
	rm := &RunManager{
		runs:        make(map[string]*store.Run),
		store:       st,
		broadcaster: NewEventBroadcaster(),
	}
	if st != nil {
		hw, err := store.NewHistoryWriter(st.BaseDir())
		if err != nil {
			slog.Warn("Similarity history disabled", "error", err)
		} else {
			rm.history = hw
		}
	}
	return rm
}

// Record registers a finished comparison, persists it and notifies
// subscribers. Persistence failures are logged; the run is still served
// from memory.
func (rm *RunManager) Record(backend string, req vision.CompareRequest, res vision.CompareResult) *store.Run {
	run := store.NewRun(uuid.New().String(), backend, req, res)

	if rm.store != nil {
		rm.persist(run)
	}

	rm.mu.Lock()
	rm.runs[run.ID] = run
	rm.mu.Unlock()

	rm.broadcaster.Broadcast(RunEvent{
		RunID:      run.ID,
		TestName:   req.Meta.TestName,
		Similarity: res.ObtainedSimilarity,
		Status:     res.Status,
		Timestamp:  run.Timestamp,
	})
	return run
}

func (rm *RunManager) persist(run *store.Run) {
	if ref := run.Result.ResultImageRef; ref != "" {
		path, err := rm.store.AttachArtifact(run.ID, ref)
		if err != nil {
			slog.Warn("Diff artifact not stored", "run_id", run.ID, "ref", ref, "error", err)
		} else {
			run.ArtifactPath = path
		}
	}

	if err := rm.store.SaveRun(run); err != nil {
		slog.Error("Failed to save run", "run_id", run.ID, "error", err)
		return
	}

	if rm.history != nil {
		if err := rm.history.Write(store.HistoryEntryFor(run)); err != nil {
			slog.Error("Failed to write history", "run_id", run.ID, "error", err)
		} else if err := rm.history.Flush(); err != nil {
			slog.Error("Failed to flush history", "run_id", run.ID, "error", err)
		}
	}
}

// GetRun looks a run up in memory first and then in the store.
func (rm *RunManager) GetRun(id string) (*store.Run, bool) {
	rm.mu.RLock()
	run, ok := rm.runs[id]
	rm.mu.RUnlock()
	if ok {
		return run, true
	}

	if rm.store == nil {
		return nil, false
	}
	run, err := rm.store.LoadRun(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("Failed to load run", "run_id", id, "error", err)
		}
		return nil, false
	}
	return run, true
}

// ListRuns returns run summaries, oldest first. With a store configured this
// includes runs recorded by earlier processes.
func (rm *RunManager) ListRuns() ([]store.RunInfo, error) {
	if rm.store != nil {
		return rm.store.ListRuns()
	}

	rm.mu.RLock()
	infos := make([]store.RunInfo, 0, len(rm.runs))
	for _, run := range rm.runs {
		infos = append(infos, run.ToInfo())
	}
	rm.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.Before(infos[j].Timestamp)
	})
	return infos, nil
}

// Close releases the history file and disconnects event subscribers.
func (rm *RunManager) Close() error {
	rm.broadcaster.Close()
	if rm.history != nil {
		return rm.history.Close()
	}
	return nil
}
