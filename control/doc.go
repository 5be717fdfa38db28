// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, metrics and debug introspection for buffer pools.
//
// Pool configs are read from TOML, either one pool per file (LoadPoolConfig)
// or a [pools.<name>] table per pool (ConfigStore.LoadFile). Pools publish
// stats into a MetricsRegistry and register probes with DebugProbes.
package control
