// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Platform probes: CPU count and huge page support as resolved for region
// backing.

package control

import (
	"runtime"

	"github.com/momentics/hioload-fabric/internal/mem"
)

// RegisterPlatformProbes adds the platform.* probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.huge_page_size", func() any {
		return mem.Caps().HugePageSize
	})
}
