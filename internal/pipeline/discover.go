package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoverSessions walks the sessions directory for session JSONL files,
// newest first. Index files (sessions-*.jsonl) are not sessions and are
// skipped.
func DiscoverSessions(dir string) ([]string, error) {
	dir = ExpandHome(dir)

	type found struct {
		path  string
		mtime int64
	}
	var files []found

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if info.IsDir() {
			return nil
		}
		name := info.Name()
		if !strings.HasSuffix(name, ".jsonl") || strings.HasPrefix(name, "sessions-") {
			return nil
		}
		files = append(files, found{path: path, mtime: info.ModTime().UnixNano()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].mtime > files[j].mtime
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}
