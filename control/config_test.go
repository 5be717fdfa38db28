package control_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-fabric/api"
	"github.com/momentics/hioload-fabric/control"
	"github.com/momentics/hioload-fabric/pool"
)

func TestDecodePoolConfig(t *testing.T) {
	cfg, err := control.DecodePoolConfig(`
size = 2048
alignment = 64
chunk_count = 128
max_count = 4096
index_tracking = true
`)
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.Size)
	assert.Equal(t, 64, cfg.Alignment)
	assert.Equal(t, 128, cfg.ChunkCount)
	assert.Equal(t, 4096, cfg.MaxCount)
	assert.True(t, cfg.IndexTracking)
	assert.False(t, cfg.TrackUsage)
}

func TestDecodePoolConfigRejectsUnknownKeys(t *testing.T) {
	_, err := control.DecodePoolConfig("size = 64\nchunk = 4\n")
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "chunk")

	_, err = control.DecodePoolConfig("size = ")
	assert.Error(t, err)
}

func TestLoadPoolConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.toml")
	require.NoError(t, os.WriteFile(path, []byte("size = 512\nchunk_count = 8\ntrack_usage = true\n"), 0o644))
	cfg, err := control.LoadPoolConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Size)
	assert.True(t, cfg.TrackUsage)

	_, err = control.LoadPoolConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigStoreLoadFileNotifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pools.toml")
	write := func(body string) {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write(`
[pools.rx]
size = 2048
chunk_count = 64

[pools.tx]
size = 4096
chunk_count = 32
`)
	cs := control.NewConfigStore()
	var seen []string
	cs.OnReload(func(name string, cfg pool.Config) {
		seen = append(seen, name)
	})
	require.NoError(t, cs.LoadFile(path))
	assert.Equal(t, []string{"rx", "tx"}, seen)
	assert.Equal(t, []string{"rx", "tx"}, cs.Names())

	rx, ok := cs.Get("rx")
	require.True(t, ok)
	assert.Equal(t, 2048, rx.Size)

	seen = nil
	write(`
[pools.rx]
size = 2048
chunk_count = 64

[pools.tx]
size = 4096
chunk_count = 16
`)
	require.NoError(t, cs.LoadFile(path))
	assert.Equal(t, []string{"tx"}, seen)
	tx, _ := cs.Get("tx")
	assert.Equal(t, 16, tx.ChunkCount)
	assert.Len(t, cs.GetSnapshot(), 2)
}
