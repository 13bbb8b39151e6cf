// Package paths resolves the tku cache and config directories following
// XDG conventions.
package paths

import (
	"os"
	"path/filepath"
)

// CacheDir returns the tku cache directory. Empty when no home directory
// can be resolved; callers treat that as "no persistent cache".
func CacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "tku")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", "tku")
}

// ConfigDir returns the tku config directory.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tku")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tku")
}
