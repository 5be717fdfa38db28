// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Pool configuration from TOML, and a store of named pool configs with
// reload listeners.

package control

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/momentics/hioload-fabric/api"
	"github.com/momentics/hioload-fabric/pool"
)

// DecodePoolConfig parses one pool table:
//
//	size = 2048
//	alignment = 64
//	chunk_count = 128
//	max_count = 4096
//	index_tracking = true
func DecodePoolConfig(data string) (pool.Config, error) {
	var cfg pool.Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return pool.Config{}, fmt.Errorf("control: decode pool config: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return pool.Config{}, err
	}
	return cfg, nil
}

// LoadPoolConfig reads a single pool table from path.
func LoadPoolConfig(path string) (pool.Config, error) {
	var cfg pool.Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return pool.Config{}, fmt.Errorf("control: load %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return pool.Config{}, err
	}
	return cfg, nil
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("control: unknown keys %s: %w", strings.Join(names, ", "), api.ErrInvalidArgument)
}

// poolsFile is the layout read by ConfigStore.LoadFile: one [pools.<name>]
// table per pool.
type poolsFile struct {
	Pools map[string]pool.Config `toml:"pools"`
}

// ConfigStore holds named pool configs and notifies listeners on change.
type ConfigStore struct {
	mu        sync.RWMutex
	config    map[string]pool.Config
	listeners []func(name string, cfg pool.Config)
}

// NewConfigStore initializes an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		config: make(map[string]pool.Config),
	}
}

// Get returns the config stored under name.
func (cs *ConfigStore) Get(name string) (pool.Config, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	cfg, ok := cs.config[name]
	return cfg, ok
}

// Names lists the stored pool names in order.
func (cs *ConfigStore) Names() []string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]string, 0, len(cs.config))
	for k := range cs.config {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// GetSnapshot returns a copy of all configs.
func (cs *ConfigStore) GetSnapshot() map[string]pool.Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make(map[string]pool.Config, len(cs.config))
	for k, v := range cs.config {
		out[k] = v
	}
	return out
}

// SetConfig merges newCfg and calls the listeners once per changed entry,
// after the lock is released.
func (cs *ConfigStore) SetConfig(newCfg map[string]pool.Config) {
	cs.mu.Lock()
	changed := make([]string, 0, len(newCfg))
	for k, v := range newCfg {
		if old, ok := cs.config[k]; ok && sameTunables(old, v) {
			continue
		}
		cs.config[k] = v
		changed = append(changed, k)
	}
	listeners := append(([]func(string, pool.Config))(nil), cs.listeners...)
	cs.mu.Unlock()

	sort.Strings(changed)
	for _, name := range changed {
		for _, fn := range listeners {
			fn(name, newCfg[name])
		}
	}
}

// sameTunables compares the TOML-settable fields; hooks are not comparable.
func sameTunables(a, b pool.Config) bool {
	return a.Size == b.Size &&
		a.Alignment == b.Alignment &&
		a.MaxCount == b.MaxCount &&
		a.ChunkCount == b.ChunkCount &&
		a.IndexTracking == b.IndexTracking &&
		a.TrackUsage == b.TrackUsage &&
		a.PanicOnLeak == b.PanicOnLeak
}

// OnReload registers a listener for config changes.
func (cs *ConfigStore) OnReload(fn func(name string, cfg pool.Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// LoadFile decodes a file of [pools.<name>] tables into the store.
func (cs *ConfigStore) LoadFile(path string) error {
	var f poolsFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return fmt.Errorf("control: load %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return err
	}
	cs.SetConfig(f.Pools)
	return nil
}
