// Package ffi turns raw C-side arguments into engine requests and engine
// results back into JSON text. It holds no cgo code so it can be tested with
// the regular toolchain; cmd/libvtsdk only copies strings across.
package ffi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/geomichelon/vtsdk/internal/engine"
	"github.com/geomichelon/vtsdk/internal/vision"
)

// EmptyResponse is returned whenever a call cannot produce a result.
const EmptyResponse = "{}"

// Boundary adapts an engine to the string-in/string-out C calling convention.
// A nil *string stands for a null C pointer.
type Boundary struct {
	engine engine.Engine
	logger *slog.Logger
}

// Option configures a Boundary.
type Option func(*Boundary)

// WithLogger sets the logger used for recovered failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Boundary) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBoundary wraps e.
func NewBoundary(e engine.Engine, opts ...Option) *Boundary {
	b := &Boundary{engine: e, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Engine returns the wrapped engine.
func (b *Boundary) Engine() engine.Engine { return b.engine }

// Compare handles vt_compare_images. Negative minSimilarity or noiseFilter
// mean the value is absent.
func (b *Boundary) Compare(baseline, input *string, minSimilarity, noiseFilter int32, excludedJSON, metaJSON *string) string {
	return b.guard("compare", func() string {
		base, ok := required(baseline)
		if !ok {
			return EmptyResponse
		}
		in, ok := required(input)
		if !ok {
			return EmptyResponse
		}

		req := vision.CompareRequest{
			BaselineImage: base,
			InputImage:    in,
			MinSimilarity: OptionalInt(minSimilarity),
			NoiseFilter:   OptionalInt(noiseFilter),
			ExcludedAreas: parseRects(excludedJSON),
			Meta:          parseMeta(metaJSON),
		}
		return encode(b.engine.Compare(req))
	})
}

// Search handles vt_flex_search.
func (b *Boundary) Search(parent, child, metaJSON *string) string {
	return b.guard("search", func() string {
		p, ok := required(parent)
		if !ok {
			return EmptyResponse
		}
		c, ok := required(child)
		if !ok {
			return EmptyResponse
		}

		return encode(b.engine.Search(vision.SearchRequest{
			ParentImage: p,
			ChildImage:  c,
			Meta:        parseMeta(metaJSON),
		}))
	})
}

// Locate handles vt_flex_locate.
func (b *Boundary) Locate(container, main, relative, metaJSON *string) string {
	return b.guard("locate", func() string {
		c, ok := required(container)
		if !ok {
			return EmptyResponse
		}
		m, ok := required(main)
		if !ok {
			return EmptyResponse
		}
		r, ok := required(relative)
		if !ok {
			return EmptyResponse
		}

		return encode(b.engine.Locate(vision.LocateRequest{
			ContainerImage: c,
			MainImage:      m,
			RelativeImage:  r,
			Meta:           parseMeta(metaJSON),
		}))
	})
}

// guard keeps panics from crossing into the C caller.
func (b *Boundary) guard(op string, fn func() string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered panic at C boundary",
				"op", op,
				"error", fmt.Sprint(r))
			out = EmptyResponse
		}
	}()
	return fn()
}

// OptionalInt decodes the negative-means-absent convention.
func OptionalInt(v int32) *int {
	if v < 0 {
		return nil
	}
	n := int(v)
	return &n
}

func required(s *string) (string, bool) {
	if s == nil || !utf8.ValidString(*s) {
		return "", false
	}
	return *s, true
}

func parseRects(s *string) []vision.Rect {
	if s == nil {
		return nil
	}
	var rects []vision.Rect
	if err := json.Unmarshal([]byte(*s), &rects); err != nil {
		slog.Debug("Ignoring malformed excluded areas", "error", err)
		return nil
	}
	return rects
}

func parseMeta(s *string) vision.Meta {
	var meta vision.Meta
	if s == nil {
		return meta
	}
	if err := json.Unmarshal([]byte(*s), &meta); err != nil {
		slog.Debug("Ignoring malformed meta", "error", err)
		return vision.Meta{}
	}
	return meta
}

func encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode boundary response", "error", err)
		return EmptyResponse
	}
	return string(data)
}
