package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Extension is the file extension of Elm source files.
const Extension = ".elm"

// IgnoreFileName lists paths, in gitignore syntax, that directory expansion
// skips. It is read from the root of each directory input.
const IgnoreFileName = ".elmfmtignore"

// Target is one file to format.
type Target struct {
	// Path is absolute and cleaned.
	Path string
	// Display is Path relative to the working directory when possible.
	Display string
}

// Expand resolves inputs to the files they name. Directories are walked
// recursively, following symlinks, and contribute every file with the Elm
// extension. The result is sorted by path and holds each file once.
func Expand(inputs []string) ([]Target, error) {
	wd, _ := os.Getwd()
	seen := make(map[string]struct{})
	var paths []string

	// Files are keyed by their real path, so one reached through a symlink
	// and directly is formatted once.
	add := func(path string) {
		key := path
		if real, err := filepath.EvalSymlinks(path); err == nil {
			key = real
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		paths = append(paths, path)
	}

	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", input, err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			// Named files are formatted whatever their extension.
			add(abs)
			continue
		}

		gi, err := loadIgnore(abs)
		if err != nil {
			return nil, err
		}
		w := &walker{root: abs, ignore: gi, visited: make(map[string]struct{}), add: add}
		if err := w.walk(abs); err != nil {
			return nil, err
		}
	}

	sort.Strings(paths)

	targets := make([]Target, len(paths))
	for i, p := range paths {
		targets[i] = Target{Path: p, Display: displayPath(wd, p)}
	}
	return targets, nil
}

type walker struct {
	root    string
	ignore  *ignore.GitIgnore
	visited map[string]struct{}
	add     func(path string)
}

func (w *walker) walk(dir string) error {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}
	// A symlink cycle leads back to a directory already walked.
	if _, ok := w.visited[real]; ok {
		return nil
	}
	w.visited[real] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if w.ignored(path) {
			continue
		}

		mode := e.Type()
		if mode&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					// Dangling link.
					continue
				}
				return err
			}
			mode = info.Mode().Type()
		}

		switch {
		case mode.IsDir():
			if err := w.walk(path); err != nil {
				return err
			}
		case mode.IsRegular() && filepath.Ext(path) == Extension:
			w.add(path)
		}
	}
	return nil
}

func (w *walker) ignored(path string) bool {
	if w.ignore == nil {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return w.ignore.MatchesPath(filepath.ToSlash(rel))
}

func loadIgnore(dir string) (*ignore.GitIgnore, error) {
	path := filepath.Join(dir, IgnoreFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return gi, nil
}

func displayPath(wd, path string) string {
	if wd == "" {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
