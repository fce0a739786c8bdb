package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/geomichelon/vtsdk/internal/vision"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// parseMeta decodes the --meta flag. Unlike the C boundary, the CLI reports
// malformed input instead of ignoring it.
func parseMeta(s string) (vision.Meta, error) {
	var meta vision.Meta
	if s == "" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(s), &meta); err != nil {
		return meta, fmt.Errorf("invalid --meta: %w", err)
	}
	return meta, nil
}

func parseRects(s string) ([]vision.Rect, error) {
	if s == "" {
		return nil, nil
	}
	var rects []vision.Rect
	if err := json.Unmarshal([]byte(s), &rects); err != nil {
		return nil, fmt.Errorf("invalid --exclude: %w", err)
	}
	return rects, nil
}
