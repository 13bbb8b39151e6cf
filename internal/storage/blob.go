package storage

import (
	"bytes"
	"encoding/gob"
	"log"
	"os"
	"path/filepath"

	"github.com/franzos/tku/internal/core"
)

// cachedFile is one log file's parse result at a given fingerprint.
// Mtime has second granularity: two writes within the same second that
// leave the size unchanged are indistinguishable.
type cachedFile struct {
	MtimeSecs int64
	Size      int64
	Records   []core.UsageRecord
}

type providerBlob struct {
	Files map[string]cachedFile
	dirty bool
}

// blobStore keeps one gob-encoded file per provider under the cache dir.
// A provider's blob is decoded wholesale on first touch, mutated only in
// memory, and rewritten wholesale on Flush when dirty. A crash before
// Flush loses that run's updates but never corrupts existing blobs.
type blobStore struct {
	dir       string
	providers map[string]*providerBlob
}

// NewBlobStore creates the blob backend rooted at dir. An empty dir
// disables persistence; the store then acts as an in-memory cache.
func NewBlobStore(dir string) Store {
	return &blobStore{
		dir:       dir,
		providers: make(map[string]*providerBlob),
	}
}

func (s *blobStore) provider(name string) *providerBlob {
	if pb, ok := s.providers[name]; ok {
		return pb
	}
	pb := &providerBlob{Files: make(map[string]cachedFile)}
	s.providers[name] = pb

	if s.dir == "" {
		return pb
	}
	data, err := os.ReadFile(s.blobPath(name))
	if err != nil {
		return pb
	}
	var files map[string]cachedFile
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&files); err != nil {
		// Incompatible blob layout: treat as invalidation and rebuild
		// from source files.
		log.Printf("tku: discarding unreadable %s cache: %v", name, err)
		return pb
	}
	pb.Files = files
	return pb
}

func (s *blobStore) blobPath(name string) string {
	return filepath.Join(s.dir, name+".bin")
}

func (s *blobStore) IsCached(provider, path string, mtime, size int64) bool {
	entry, ok := s.provider(provider).Files[path]
	return ok && entry.MtimeSecs == mtime && entry.Size == size
}

func (s *blobStore) Insert(provider, path string, mtime, size int64, records []core.UsageRecord) {
	pb := s.provider(provider)
	pb.Files[path] = cachedFile{MtimeSecs: mtime, Size: size, Records: records}
	pb.dirty = true
}

func (s *blobStore) Prune(provider string, existing []string) {
	known := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		known[p] = struct{}{}
	}

	pb := s.provider(provider)
	for path := range pb.Files {
		if _, ok := known[path]; !ok {
			delete(pb.Files, path)
			pb.dirty = true
		}
	}
}

func (s *blobStore) Flush() {
	if s.dir == "" {
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		log.Printf("tku: creating cache dir: %v", err)
		return
	}

	for name, pb := range s.providers {
		if !pb.dirty {
			continue
		}
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(pb.Files); err != nil {
			log.Printf("tku: encoding %s cache: %v", name, err)
			continue
		}
		if err := os.WriteFile(s.blobPath(name), buf.Bytes(), 0o644); err != nil {
			log.Printf("tku: writing %s cache: %v", name, err)
			continue
		}
		pb.dirty = false
	}
}

func (s *blobStore) DrainAll() []core.UsageRecord {
	var all []core.UsageRecord
	for _, pb := range s.providers {
		for _, entry := range pb.Files {
			all = append(all, entry.Records...)
		}
	}
	s.providers = make(map[string]*providerBlob)
	return all
}

func (s *blobStore) Close() error { return nil }
