// Package engine selects the comparison backend behind every outer surface
// (C library, CLI, HTTP server).
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/geomichelon/vtsdk/internal/vision"
)

// Backend identifies an engine implementation.
type Backend string

const (
	BackendReal Backend = "real"
	BackendMock Backend = "mock"
)

// ErrUnknownBackend is returned when the name does not match a known backend.
var ErrUnknownBackend = errors.New("unknown engine backend")

// Engine is the capability every backend provides. Calls are synchronous and
// independent; implementations hold no per-call state.
type Engine interface {
	Compare(req vision.CompareRequest) vision.CompareResult
	Search(req vision.SearchRequest) vision.SearchResult
	Locate(req vision.LocateRequest) vision.LocateResult
	Backend() Backend
}

// NormalizeBackend maps arbitrary user input to a canonical backend identifier.
func NormalizeBackend(name string) Backend {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "real", "core":
		return BackendReal
	case "mock", "fake":
		return BackendMock
	default:
		return Backend(name)
	}
}

// SupportedBackends returns the list of backends understood by New.
func SupportedBackends() []Backend {
	return []Backend{BackendReal, BackendMock}
}

// New constructs the requested backend. Options only affect the real engine.
func New(name string, opts ...vision.Option) (Engine, error) {
	switch backend := NormalizeBackend(name); backend {
	case BackendReal:
		return NewReal(opts...), nil
	case BackendMock:
		return Mock{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
}
