// Package storage persists parsed usage records per (provider, file path)
// so unchanged log files are never re-parsed. Two interchangeable backends
// satisfy the same contract: a per-provider gob blob and a SQLite database.
package storage

import (
	"fmt"
	"path/filepath"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/paths"
)

const (
	BackendBlob   = "blob"
	BackendSQLite = "sqlite"
)

// Store caches parse results keyed by (provider, file path) and a cheap
// content fingerprint. It is owned by a single goroutine: the parse
// pipeline only touches it in its sequential phases, so no locking exists
// here by design of the call pattern, not by accident.
type Store interface {
	// IsCached reports whether an entry exists whose stored fingerprint
	// exactly matches the given one.
	IsCached(provider, path string, mtime, size int64) bool

	// Insert replaces the entry for (provider, path) wholesale. It never
	// merges with a previous record list.
	Insert(provider, path string, mtime, size int64, records []core.UsageRecord)

	// Prune deletes every entry of the provider whose path is absent from
	// existing.
	Prune(provider string, existing []string)

	// Flush persists pending state. A no-op when nothing is dirty.
	Flush()

	// DrainAll returns every cached record across all providers. Called
	// exactly once per run, after Flush. Record order is unspecified.
	DrainAll() []core.UsageRecord

	Close() error
}

// Open initializes the selected cache backend. This is the only fatal
// failure point of the storage layer; everything past startup degrades to
// warnings.
func Open(backend string) (Store, error) {
	switch backend {
	case "", BackendBlob:
		return NewBlobStore(paths.CacheDir()), nil
	case BackendSQLite:
		dir := paths.CacheDir()
		if dir == "" {
			return nil, fmt.Errorf("storage: cannot resolve cache directory for sqlite backend")
		}
		return OpenSQLiteStore(filepath.Join(dir, "records.db"))
	default:
		return nil, fmt.Errorf("storage: unknown cache backend %q", backend)
	}
}
