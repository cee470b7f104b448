//go:build !darwin || !cgo

// Package darwin binds the accessibility provider to the macOS AX API.
// On other platforms (or without cgo) it compiles to nothing and no
// provider is registered.
package darwin
