// Package manifest handles cvarpack.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/sofplus/cvarpack/compiler"
)

// ManifestName is the file name looked up in project directories.
const ManifestName = "cvarpack.toml"

// Manifest represents a cvarpack.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Pack    Pack    `toml:"pack"`
	Source  Source  `toml:"source"`
	Output  Output  `toml:"output"`

	// Dir is the directory containing the cvarpack.toml file (set at
	// load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Pack configures the capacity packer.
type Pack struct {
	MaxCvarSize int `toml:"max-cvar-size"`
	HashLen     int `toml:"hash-len"`
}

// Source lists the script and markup files to compile.
type Source struct {
	Scripts []string `toml:"scripts"`
	Menus   []string `toml:"menus"`
}

// Output configures artifact locations.
type Output struct {
	Dir   string `toml:"dir"`
	Cache string `toml:"cache"` // SQLite build cache path; empty disables caching
}

// Load parses a cvarpack.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Pack.MaxCvarSize == 0 {
		m.Pack.MaxCvarSize = compiler.DefaultMaxCellSize
	}
	if m.Pack.HashLen == 0 {
		m.Pack.HashLen = compiler.DefaultHashLen
	}
	if m.Output.Dir == "" {
		m.Output.Dir = "out"
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a cvarpack.toml file, then
// loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", startDir, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ManifestName)); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Options returns the compiler options the manifest configures.
func (m *Manifest) Options() compiler.Options {
	return compiler.Options{
		MaxCellSize: m.Pack.MaxCvarSize,
		HashLen:     m.Pack.HashLen,
	}
}

// OutputPath returns the artifact path for a source file: the source's
// manifest-relative path with a .cfg extension, under the configured
// output dir. Keeping the directory component means two sources sharing
// a base name map to distinct artifacts.
func (m *Manifest) OutputPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	return filepath.Join(m.Dir, m.Output.Dir, sourcePath[:len(sourcePath)-len(ext)]+".cfg")
}

// CachePath returns the absolute build-cache path, or "" when caching is
// disabled.
func (m *Manifest) CachePath() string {
	if m.Output.Cache == "" {
		return ""
	}
	if filepath.IsAbs(m.Output.Cache) {
		return m.Output.Cache
	}
	return filepath.Join(m.Dir, m.Output.Cache)
}
