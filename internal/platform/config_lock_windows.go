//go:build windows

package platform

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

type windowsConfigLock struct {
	file *os.File
}

func lockFile(path string) (ConfigLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create config lock dir: %w", err)
	}
	// #nosec G304 -- path is derived from the resolved config file.
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open config lock file: %w", err)
	}

	overlapped := new(windows.Overlapped)
	err = windows.LockFileEx(
		windows.Handle(file.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		math.MaxUint32,
		math.MaxUint32,
		overlapped,
	)
	if err != nil {
		_ = file.Close()
		if errors.Is(err, windows.ERROR_LOCK_VIOLATION) || errors.Is(err, windows.ERROR_SHARING_VIOLATION) {
			return nil, fmt.Errorf("%w: %s", ErrConfigInUse, path)
		}

		return nil, fmt.Errorf("lock config file: %w", err)
	}

	return &windowsConfigLock{file: file}, nil
}

// Release unlocks and closes the lock file. It is safe to call twice.
func (l *windowsConfigLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	overlapped := new(windows.Overlapped)
	unlockErr := windows.UnlockFileEx(windows.Handle(l.file.Fd()), 0, math.MaxUint32, math.MaxUint32, overlapped)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil {
		return fmt.Errorf("unlock config file: %w", unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close config lock file: %w", closeErr)
	}

	return nil
}
