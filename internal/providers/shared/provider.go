// Package shared carries the provider contract and the discovery/parse
// machinery common to every coding tool integration.
package shared

import "github.com/franzos/tku/internal/storage"

// ProgressFunc receives strictly increasing (completed, total) pairs while
// a provider works through its file list. Feedback only; it never affects
// the outcome of a run.
type ProgressFunc func(completed, total int)

// Provider is one local coding tool whose usage logs tku can read.
type Provider interface {
	// Name is the stable lowercase provider id.
	Name() string

	// Roots lists the directories this provider scans. Non-existent roots
	// are fine; discovery skips them.
	Roots() []string

	// DiscoverAndParse scans the provider's roots, reuses cached parse
	// results where fingerprints match, parses the rest, and commits
	// everything into the store.
	DiscoverAndParse(store storage.Store, progress ProgressFunc)
}
