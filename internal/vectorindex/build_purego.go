//go:build !cgo_sqlite
// +build !cgo_sqlite

package vectorindex

// This file is compiled when building without the cgo_sqlite tag.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// The pure Go driver provides:
//   - No C compiler required
//   - Cross-platform compilation
//   - Suitable default for development and typical index sizes
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
