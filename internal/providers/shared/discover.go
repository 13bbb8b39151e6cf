package shared

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiscoveredFile is a candidate log file with its identity fingerprint.
// Mtime is truncated to seconds: two writes within the same second that
// leave the size unchanged look identical to the cache.
type DiscoveredFile struct {
	Path  string
	Mtime int64
	Size  int64
}

// StatFile fingerprints a single file.
func StatFile(path string) (DiscoveredFile, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return DiscoveredFile{}, false
	}
	return DiscoveredFile{
		Path:  path,
		Mtime: info.ModTime().Unix(),
		Size:  info.Size(),
	}, true
}

// DiscoverFiles recursively lists regular files with the given extension
// under each root. Symlinks are not followed; missing roots mean the tool
// is not installed and are skipped silently.
func DiscoverFiles(roots []string, ext string) []DiscoveredFile {
	suffix := "." + ext
	var files []DiscoveredFile

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), suffix) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			files = append(files, DiscoveredFile{
				Path:  path,
				Mtime: info.ModTime().Unix(),
				Size:  info.Size(),
			})
			return nil
		})
	}

	return files
}
