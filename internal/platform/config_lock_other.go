//go:build !unix && !windows

package platform

import (
	"fmt"
	"runtime"
)

func lockFile(_ string) (ConfigLock, error) {
	return nil, fmt.Errorf("%w on %s", ErrConfigLockUnsupported, runtime.GOOS)
}
