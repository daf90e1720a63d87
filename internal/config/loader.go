package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"
)

// FileName is the config file searched for in each directory.
const FileName = "elmfmt.yaml"

// defaultCacheSize bounds the number of directories remembered by a Resolver.
const defaultCacheSize = 1024

// Error reports a config file that exists but cannot be used.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Parse decodes a config document over the defaults. Keys missing from the
// document keep their default values; unknown keys are ignored.
func Parse(data []byte) (StyleConfig, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return StyleConfig{}, err
	}
	// A comment-only document decodes to an empty node.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return cfg, nil
	}
	if err := checkNullValues(doc.Content[0]); err != nil {
		return StyleConfig{}, err
	}
	if err := doc.Decode(&cfg); err != nil {
		return StyleConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return StyleConfig{}, err
	}
	return cfg, nil
}

// knownKeys are the keys StyleConfig decodes.
var knownKeys = map[string]bool{
	"indentation":            true,
	"if_style":               true,
	"tuple_style":            true,
	"newlines_between_decls": true,
}

// checkNullValues rejects a known key with an empty or null value. The
// decoder would otherwise leave the default in place.
func checkNullValues(root *yaml.Node) error {
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if knownKeys[key.Value] && value.Tag == "!!null" {
			return fmt.Errorf("line %d: %s has no value", value.Line, key.Value)
		}
	}
	return nil
}

// Load reads and parses the config file at path.
func Load(path string) (StyleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return StyleConfig{}, &Error{Path: path, Err: fmt.Errorf("file not found")}
		}
		return StyleConfig{}, &Error{Path: path, Err: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		return StyleConfig{}, &Error{Path: path, Err: err}
	}
	return cfg, nil
}

// Discover returns the path of the config file in dir, or an empty string
// if dir has none.
func Discover(dir string) string {
	path := filepath.Join(dir, FileName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}

// Ancestors returns dir followed by each of its parents, ending with the
// filesystem root.
func Ancestors(dir string) []string {
	dir = filepath.Clean(dir)
	dirs := []string{dir}
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return dirs
		}
		dirs = append(dirs, parent)
		dir = parent
	}
}

// Resolution is the outcome of resolving config for a directory.
type Resolution struct {
	Config StyleConfig
	// Path is the config file used, or "" when defaults apply.
	Path string
}

type cached struct {
	res Resolution
	err error
}

// Resolver finds the nearest elmfmt.yaml for a directory. Results are cached
// per directory, so a Resolver should live for a single run. It is safe for
// concurrent use.
type Resolver struct {
	explicit string
	cache    *lru.Cache[string, cached]
}

// NewResolver returns a Resolver. If explicitPath is non-empty, that file is
// used for every directory instead of searching.
func NewResolver(explicitPath string) *Resolver {
	cache, err := lru.New[string, cached](defaultCacheSize)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}
	return &Resolver{explicit: explicitPath, cache: cache}
}

// Resolve returns the config that applies to startDir.
func (r *Resolver) Resolve(startDir string) (StyleConfig, error) {
	res, err := r.Lookup(startDir)
	if err != nil {
		return StyleConfig{}, err
	}
	return res.Config, nil
}

// Lookup searches startDir and its ancestors for a config file. The first
// file found wins; if none exists up to the root, defaults apply. An empty
// startDir means the working directory.
func (r *Resolver) Lookup(startDir string) (Resolution, error) {
	if r.explicit != "" {
		return r.lookupCached(r.explicit, func() (Resolution, error) {
			cfg, err := Load(r.explicit)
			return Resolution{Config: cfg, Path: r.explicit}, err
		})
	}

	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Resolution{}, fmt.Errorf("getting working directory: %w", err)
		}
		startDir = wd
	}
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolving %s: %w", startDir, err)
	}

	return r.lookupCached(abs, func() (Resolution, error) {
		for _, dir := range Ancestors(abs) {
			path := Discover(dir)
			if path == "" {
				continue
			}
			cfg, err := Load(path)
			return Resolution{Config: cfg, Path: path}, err
		}
		return Resolution{Config: Default()}, nil
	})
}

func (r *Resolver) lookupCached(key string, resolve func() (Resolution, error)) (Resolution, error) {
	if c, ok := r.cache.Get(key); ok {
		return c.res, c.err
	}
	res, err := resolve()
	if err != nil {
		res = Resolution{}
	}
	r.cache.Add(key, cached{res: res, err: err})
	return res, err
}
