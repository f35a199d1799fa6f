package manifest

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

var skipDirs = map[string]bool{
	"bin":          true,
	"obj":          true,
	".git":         true,
	"node_modules": true,
}

// Discover expands paths into the project files to analyze. A file path is
// kept when a dialect claims it. A directory contributes the matching files
// directly inside it, and is searched recursively when recursive is set or
// when it holds no matching file itself. The result is sorted and free of
// duplicates.
func Discover(paths []string, recursive bool) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, &FileError{Path: root, Op: "discover", Err: err}
		}
		if !info.IsDir() {
			if _, ok := DialectFor(root); !ok {
				return nil, &FileError{Path: root, Op: "discover", Err: ErrNoDialect}
			}
			add(root)
			continue
		}

		direct, err := matchingFiles(root)
		if err != nil {
			return nil, &FileError{Path: root, Op: "discover", Err: err}
		}
		for _, p := range direct {
			add(p)
		}
		if !recursive && len(direct) > 0 {
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && skipDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if _, ok := DialectFor(path); ok {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, &FileError{Path: root, Op: "discover", Err: err}
		}
	}

	sort.Strings(out)
	return out, nil
}

func matchingFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := DialectFor(e.Name()); ok {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
