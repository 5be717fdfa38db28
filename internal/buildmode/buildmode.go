// Package buildmode exposes the build-time debug switch. Build with
// `-tags hioload_debug` to turn on free-list link checks and buffer usage
// tracking by default.
package buildmode
