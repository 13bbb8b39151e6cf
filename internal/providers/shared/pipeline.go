package shared

import (
	"runtime"
	"sync"

	"github.com/franzos/tku/internal/core"
	"github.com/franzos/tku/internal/storage"
)

// ParseFunc extracts usage records from one log file. Unreadable or
// malformed files yield an empty slice, never an error; a single broken
// file must not sink the whole scan.
type ParseFunc func(path string) []core.UsageRecord

// Run drives the standard provider pipeline over an already discovered
// file list:
//
//  1. Partition by cache state, counting cached files as completed work
//     up front.
//  2. Parse the uncached files on a bounded worker pool. Results land in
//     a slice indexed by discovery position, so the outcome is identical
//     regardless of worker scheduling.
//  3. Insert the fresh results sequentially, then prune cache entries for
//     files that no longer exist on disk.
func Run(name string, files []DiscoveredFile, store storage.Store, progress ProgressFunc, parse ParseFunc) {
	total := len(files)
	completed := 0

	var uncached []DiscoveredFile
	for _, f := range files {
		if store.IsCached(name, f.Path, f.Mtime, f.Size) {
			completed++
			continue
		}
		uncached = append(uncached, f)
	}
	if progress != nil && completed > 0 {
		progress(completed, total)
	}

	if len(uncached) > 0 {
		workers := runtime.GOMAXPROCS(0)
		if workers > len(uncached) {
			workers = len(uncached)
		}

		results := make([][]core.UsageRecord, len(uncached))
		jobs := make(chan int)
		done := make(chan struct{})

		var mu sync.Mutex
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i] = parse(uncached[i].Path)
					mu.Lock()
					completed++
					if progress != nil {
						progress(completed, total)
					}
					mu.Unlock()
				}
			}()
		}

		go func() {
			for i := range uncached {
				jobs <- i
			}
			close(jobs)
			wg.Wait()
			close(done)
		}()
		<-done

		for i, f := range uncached {
			store.Insert(name, f.Path, f.Mtime, f.Size, results[i])
		}
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	store.Prune(name, paths)
}
