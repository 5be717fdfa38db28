package logutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	Named("pool").Debug("grow", zap.Int("chunk", 4))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "pool", entry.LoggerName)
	assert.Equal(t, int64(4), entry.ContextMap()["chunk"])
}

func TestSetLoggerNilRestoresNop(t *testing.T) {
	SetLogger(nil)
	assert.NotNil(t, GetLogger())
}

func TestNewDevelopmentRejectsBadLevel(t *testing.T) {
	_, err := NewDevelopment("loud")
	assert.Error(t, err)

	l, err := NewDevelopment("warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
}
