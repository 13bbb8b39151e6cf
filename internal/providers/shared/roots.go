package shared

import (
	"os"
	"path/filepath"
)

// XDGBase selects which base directory a fallback path hangs off.
type XDGBase int

const (
	// BaseHome resolves directly under $HOME (legacy tool defaults).
	BaseHome XDGBase = iota
	// BaseConfig resolves under $XDG_CONFIG_HOME, falling back to ~/.config.
	BaseConfig
	// BaseData resolves under $XDG_DATA_HOME, falling back to ~/.local/share.
	BaseData
)

// HomeFallback is one default location: a base directory kind plus the
// path segments to join onto it.
type HomeFallback struct {
	Base     XDGBase
	Subpaths []string
}

// Roots resolves a provider's root directories:
//
//  1. If envVar is set, its value (joined with each envSubpath) fully
//     replaces the defaults.
//  2. Otherwise every fallback contributes; existence is checked later by
//     discovery, not here.
//
// Returns nil when neither the env var nor a home directory is available.
func Roots(envVar string, envSubpaths []string, fallbacks []HomeFallback) []string {
	if envVar != "" {
		if val := os.Getenv(envVar); val != "" {
			if len(envSubpaths) == 0 {
				return []string{val}
			}
			roots := make([]string, 0, len(envSubpaths))
			for _, sub := range envSubpaths {
				roots = append(roots, filepath.Join(val, sub))
			}
			return roots
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	roots := make([]string, 0, len(fallbacks))
	for _, fb := range fallbacks {
		base := home
		switch fb.Base {
		case BaseConfig:
			if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
				base = dir
			} else {
				base = filepath.Join(home, ".config")
			}
		case BaseData:
			if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
				base = dir
			} else {
				base = filepath.Join(home, ".local", "share")
			}
		}
		roots = append(roots, filepath.Join(append([]string{base}, fb.Subpaths...)...))
	}
	return roots
}

// ExistingRoots filters roots down to directories present on disk. The
// watch loop uses this; discovery does its own existence handling.
func ExistingRoots(roots []string) []string {
	var out []string
	for _, root := range roots {
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			out = append(out, root)
		}
	}
	return out
}
