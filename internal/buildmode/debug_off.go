//go:build !hioload_debug
// +build !hioload_debug

package buildmode

// Debug is true in hioload_debug builds.
const Debug = false
