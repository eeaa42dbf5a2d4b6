// Package library batches sample analysis over folders: it walks sample
// packs, caches analysis records in SQLite, fans work out over a bounded
// worker pool and follows folders for new files.
package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the file extensions collected when none are configured
var DefaultExtensions = []string{"wav", "mp3", "flac", "ogg", "aiff", "aif"}

// IsAudioFile reports whether path carries one of the given extensions.
// Matching is case-insensitive and ignores a leading dot in the list.
func IsAudioFile(path string, extensions []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return false
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// CollectAudioFiles walks root and returns every audio file below it in
// lexical order. Hidden directories are skipped. Symlinked directories are
// only descended into when followSymlinks is set.
func CollectAudioFiles(root string, extensions []string, followSymlinks bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		if IsAudioFile(root, extensions) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	visited := map[string]bool{}
	if err := collect(root, extensions, followSymlinks, visited, &files); err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func collect(dir string, extensions []string, followSymlinks bool, visited map[string]bool, files *[]string) error {
	// walk the resolved folder but report paths under dir
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if visited[real] {
		return nil
	}
	visited[real] = true

	return filepath.WalkDir(real, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable subtrees are skipped, not fatal
			if path == real {
				return err
			}
			return nil
		}

		shown := dir
		if rel, err := filepath.Rel(real, path); err == nil && rel != "." {
			shown = filepath.Join(dir, rel)
		}

		name := d.Name()
		if d.IsDir() {
			if path != real && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				return nil
			}
			if target.IsDir() {
				if followSymlinks && !strings.HasPrefix(name, ".") {
					return collect(shown, extensions, followSymlinks, visited, files)
				}
				return nil
			}
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if IsAudioFile(path, extensions) {
			*files = append(*files, shown)
		}
		return nil
	})
}
