//go:build !vtmock

package main

import "github.com/geomichelon/vtsdk/internal/engine"

const defaultBackend = engine.BackendReal
