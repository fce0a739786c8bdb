package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/geomichelon/vtsdk/internal/vision"
)

// HistoryEntry is one line of the similarity history, recorded for every
// persisted comparison so scores can be tracked per test over time.
type HistoryEntry struct {
	RunID      string        `json:"runId"`
	TestName   string        `json:"testName,omitempty"`
	Project    string        `json:"project,omitempty"`
	Similarity float64       `json:"similarity"`
	Status     vision.Status `json:"status,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// HistoryEntryFor builds the history line for a run.
func HistoryEntryFor(run *Run) HistoryEntry {
	return HistoryEntry{
		RunID:      run.ID,
		TestName:   run.Request.Meta.TestName,
		Project:    run.Request.Meta.ProjectName,
		Similarity: run.Result.ObtainedSimilarity,
		Status:     run.Result.Status,
		Timestamp:  run.Timestamp,
	}
}

func historyPath(baseDir string) string {
	return filepath.Join(baseDir, "history.jsonl")
}

// HistoryWriter appends entries to <baseDir>/history.jsonl.
// It buffers writes and is safe for concurrent use.
type HistoryWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
}

// NewHistoryWriter opens the history file for appending, creating it if needed.
func NewHistoryWriter(baseDir string) (*HistoryWriter, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	path := historyPath(baseDir)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}

	return &HistoryWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, 16*1024),
		path:   path,
	}, nil
}

// Write buffers one entry. It is persisted on Flush or Close.
func (hw *HistoryWriter) Write(entry HistoryEntry) error {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}
	if _, err := hw.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write history entry: %w", err)
	}
	if err := hw.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

// Flush writes buffered entries and syncs the file.
func (hw *HistoryWriter) Flush() error {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	if err := hw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush history writer: %w", err)
	}
	if err := hw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync history file: %w", err)
	}
	return nil
}

// Close flushes buffered entries and closes the file.
func (hw *HistoryWriter) Close() error {
	hw.mu.Lock()
	defer hw.mu.Unlock()

	if err := hw.writer.Flush(); err != nil {
		hw.file.Close()
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := hw.file.Close(); err != nil {
		return fmt.Errorf("failed to close history file: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the history file.
func (hw *HistoryWriter) Path() string {
	return hw.path
}

// ReadHistory returns all entries, optionally filtered by test name.
// A missing history file yields an empty slice.
func ReadHistory(baseDir, testName string) ([]HistoryEntry, error) {
	file, err := os.Open(historyPath(baseDir))
	if os.IsNotExist(err) {
		return []HistoryEntry{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	return decodeHistory(file, testName)
}

func decodeHistory(r io.Reader, testName string) ([]HistoryEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	entries := []HistoryEntry{}
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry HistoryEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry: %w", err)
		}
		if testName != "" && entry.TestName != testName {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}
	return entries, nil
}
