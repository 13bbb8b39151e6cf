package paths

import (
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")
	if got := CacheDir(); got != filepath.Join("/xdg/cache", "tku") {
		t.Errorf("got %q", got)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got := CacheDir(); got != filepath.Join(home, ".cache", "tku") {
		t.Errorf("got %q", got)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	if got := ConfigDir(); got != filepath.Join("/xdg/config", "tku") {
		t.Errorf("got %q", got)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	if got := ConfigDir(); got != filepath.Join(home, ".config", "tku") {
		t.Errorf("got %q", got)
	}
}
