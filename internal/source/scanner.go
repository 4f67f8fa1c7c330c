package source

import (
	"os"
	"path/filepath"
	"sort"
)

// ScanDir walks dir and discovers all .jsonl trip files beneath it.
// A missing directory yields no files and no error.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() || filepath.Ext(path) != ".jsonl" {
			return nil
		}
		files = append(files, discovered(path))
		return nil
	})
	return files, err
}

// ScanPaths expands a mix of files and directories. Files are taken as
// given whatever their extension; directories are walked with ScanDir.
// The result is sorted by path and free of duplicates.
func ScanPaths(paths []string) ([]DiscoveredFile, error) {
	seen := make(map[string]struct{})
	var files []DiscoveredFile
	add := func(df DiscoveredFile) {
		if _, ok := seen[df.Path]; ok {
			return
		}
		seen[df.Path] = struct{}{}
		files = append(files, df)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(discovered(p))
			continue
		}
		found, err := ScanDir(p)
		if err != nil {
			return nil, err
		}
		for _, df := range found {
			add(df)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func discovered(path string) DiscoveredFile {
	return DiscoveredFile{
		Path:       path,
		Collection: filepath.Base(filepath.Dir(path)),
	}
}

// CountCollections returns the number of unique collections in a set of files.
func CountCollections(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.Collection] = struct{}{}
	}
	return len(seen)
}

