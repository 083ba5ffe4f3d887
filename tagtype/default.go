package tagtype

import (
	"context"
	"sync"
)

var (
	defaultMu sync.RWMutex
	instance  *Manager
)

// SetDefault installs m as the process-wide manager and loads it.
func SetDefault(ctx context.Context, m *Manager) error {
	if err := m.EnsureLoaded(ctx); err != nil {
		return err
	}
	defaultMu.Lock()
	instance = m
	defaultMu.Unlock()
	return nil
}

// Default returns the process-wide manager, or nil if none is installed.
func Default() *Manager {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return instance
}

// ResetDefault drops the process-wide manager so the next SetDefault starts
// from scratch, e.g. after its storage was removed.
func ResetDefault() {
	defaultMu.Lock()
	instance = nil
	defaultMu.Unlock()
}

// Dimensions returns width and height for id from the default manager, or
// 296x128 if no manager is installed.
func Dimensions(id int) (int, int) {
	if m := Default(); m != nil {
		return m.Dimensions(id)
	}
	return DefaultWidth, DefaultHeight
}

// Name returns the display name for id from the default manager.
func Name(id int) string {
	if m := Default(); m != nil {
		return m.Name(id)
	}
	return unknownName(id)
}

// Known reports whether the default manager has a definition for id. It is
// false if no manager is installed.
func Known(id int) bool {
	if m := Default(); m != nil {
		return m.Known(id)
	}
	return false
}
