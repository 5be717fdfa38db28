//go:build !unix

// File: shm/shm_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package shm

import (
	"os"

	"github.com/momentics/hioload-fabric/api"
)

// Dir holds segment files.
var Dir = os.TempDir()

func mapSegment(string, int, bool) ([]byte, error) { return nil, api.ErrNotSupported }

func unmapSegment([]byte) error { return api.ErrNotSupported }

func syncSegment([]byte) error { return api.ErrNotSupported }

func removeSegment(string) error { return api.ErrNotSupported }
