// Package platform holds OS specific helpers.
package platform

import (
	"errors"
	"path/filepath"
)

// ErrConfigInUse means another viewer already runs with the same config file.
var ErrConfigInUse = errors.New("config file is in use by another instance")

// ErrConfigLockUnsupported means the platform has no lock backend.
var ErrConfigLockUnsupported = errors.New("config lock unsupported")

// ConfigLock is held for as long as a viewer owns a config file.
type ConfigLock interface {
	Release() error
}

// LockConfig takes an exclusive lock on a sidecar file next to configPath.
// Viewers with different config files do not block each other.
func LockConfig(configPath string) (ConfigLock, error) {
	return lockFile(configLockPath(configPath))
}

func configLockPath(configPath string) string {
	return filepath.Clean(configPath) + ".lock"
}
