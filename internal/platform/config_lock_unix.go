//go:build unix

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

type flockConfigLock struct {
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

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) {
			return nil, fmt.Errorf("%w: %s", ErrConfigInUse, path)
		}

		return nil, fmt.Errorf("lock config file: %w", err)
	}

	return &flockConfigLock{file: file}, nil
}

// Release unlocks and closes the lock file. It is safe to call twice.
func (l *flockConfigLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	unlockErr := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil && !errors.Is(unlockErr, syscall.EBADF) {
		return fmt.Errorf("unlock config file: %w", unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close config lock file: %w", closeErr)
	}

	return nil
}
