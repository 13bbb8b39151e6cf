// Package providers registers every supported coding tool.
package providers

import (
	"github.com/franzos/tku/internal/providers/amp"
	"github.com/franzos/tku/internal/providers/claude"
	"github.com/franzos/tku/internal/providers/codex"
	"github.com/franzos/tku/internal/providers/droid"
	"github.com/franzos/tku/internal/providers/gemini"
	"github.com/franzos/tku/internal/providers/kimi"
	"github.com/franzos/tku/internal/providers/openclaw"
	"github.com/franzos/tku/internal/providers/opencode"
	"github.com/franzos/tku/internal/providers/pi"
	"github.com/franzos/tku/internal/providers/shared"
)

// All returns the providers in their fixed scan order.
func All() []shared.Provider {
	return []shared.Provider{
		claude.New(),
		codex.New(),
		gemini.New(),
		opencode.New(),
		amp.New(),
		droid.New(),
		kimi.New(),
		pi.New(),
		openclaw.New(),
	}
}

// WatchRoots collects every provider root that exists on disk.
func WatchRoots() []string {
	var roots []string
	for _, p := range All() {
		roots = append(roots, shared.ExistingRoots(p.Roots())...)
	}
	return roots
}
