// Command libvtsdk builds the engine as a C shared library:
//
//	go build -buildmode=c-shared -o libvtsdk.so ./cmd/libvtsdk
//
// The cgo toolchain writes libvtsdk.h next to the library. Every returned
// string is owned by the caller and must be released with vt_free_string.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"log/slog"
	"os"
	"unsafe"

	"github.com/geomichelon/vtsdk/internal/engine"
	"github.com/geomichelon/vtsdk/internal/ffi"
)

var (
	boundary *ffi.Boundary
	ledger   = ffi.NewLedger()
)

func init() {
	level := slog.LevelWarn
	if os.Getenv("VTSDK_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	e, err := engine.New(string(defaultBackend))
	if err != nil {
		// defaultBackend is a compile-time constant.
		panic(err)
	}
	boundary = ffi.NewBoundary(e)
}

func goString(p *C.char) *string {
	if p == nil {
		return nil
	}
	s := C.GoString(p)
	return &s
}

func cString(s string) *C.char {
	p := C.CString(s)
	ledger.Issue(uintptr(unsafe.Pointer(p)))
	return p
}

//export vt_compare_images
func vt_compare_images(baseline, input *C.char, minSimilarity, noiseFilter C.int32_t, excludedAreasJSON, metaJSON *C.char) *C.char {
	return cString(boundary.Compare(
		goString(baseline), goString(input),
		int32(minSimilarity), int32(noiseFilter),
		goString(excludedAreasJSON), goString(metaJSON),
	))
}

//export vt_flex_search
func vt_flex_search(parent, child, metaJSON *C.char) *C.char {
	return cString(boundary.Search(goString(parent), goString(child), goString(metaJSON)))
}

//export vt_flex_locate
func vt_flex_locate(container, mainImage, relative, metaJSON *C.char) *C.char {
	return cString(boundary.Locate(goString(container), goString(mainImage), goString(relative), goString(metaJSON)))
}

//export vt_free_string
func vt_free_string(p *C.char) {
	if p == nil {
		return
	}
	if ledger.Release(uintptr(unsafe.Pointer(p))) {
		C.free(unsafe.Pointer(p))
	}
}

func main() {}
