// File: internal/logutil/logutil.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process-wide zap logger shared by pools, platform code and examples.

package logutil

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// GetLogger returns the process logger. It is a no-op logger until SetLogger
// is called.
func GetLogger() *zap.Logger {
	return logger.Load()
}

// SetLogger replaces the process logger; nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// Named is a shortcut for GetLogger().Named(name).
func Named(name string) *zap.Logger {
	return GetLogger().Named(name)
}

// NewDevelopment builds a console logger at the given level ("debug",
// "info", "warn", "error").
func NewDevelopment(level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg.Level = lvl
	return cfg.Build()
}
