package platform

import (
	"path/filepath"
	"testing"
)

func TestConfigLockPath(t *testing.T) {
	got := configLockPath(filepath.Join("cfg", "..", "cfg", "config.json"))
	if got != filepath.Join("cfg", "config.json.lock") {
		t.Fatalf("unexpected lock path: %q", got)
	}
}
