// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"fmt"

	"github.com/momentics/hioload-fabric/internal/mem"
)

// Registration is the context handed out by Registrar for one region.
type Registration struct {
	Key  int
	Base uintptr
	Size int
}

// Registrar records region hook calls, standing in for a memory
// registration service.
type Registrar struct {
	// FailOn makes registration number n (1-based) fail; 0 never fails.
	FailOn int

	Registered   []*Registration
	Deregistered []*Registration
	calls        int
}

// Register is an api.RegionAllocHook.
func (r *Registrar) Register(_ any, buf []byte) (any, error) {
	r.calls++
	if r.FailOn == r.calls {
		return nil, fmt.Errorf("fake: registration %d refused", r.calls)
	}
	reg := &Registration{Key: r.calls, Base: mem.Addr(buf), Size: len(buf)}
	r.Registered = append(r.Registered, reg)
	return reg, nil
}

// Deregister is an api.RegionFreeHook.
func (r *Registrar) Deregister(_ any, ctx any) {
	r.Deregistered = append(r.Deregistered, ctx.(*Registration))
}
