package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sofplus/cvarpack/bundle"
	"github.com/sofplus/cvarpack/compiler"
	"github.com/sofplus/cvarpack/manifest"
	"github.com/sofplus/cvarpack/store"
)

var flagNoCache bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile every source listed in the project manifest",
	Long: `Build the whole project described by the nearest cvarpack.toml: every
script and menu source is compiled and written under the configured
output directory.

When the manifest configures a cache, unchanged sources are restored
from the cached build instead of being recompiled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild()
	},
}

func init() {
	buildCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "recompile everything, ignoring the build cache")
}

func loadProject() (*manifest.Manifest, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, err := manifest.FindAndLoad(cwd)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("no %s found in %s or any parent", manifest.ManifestName, cwd)
	}
	return m, nil
}

func runBuild() error {
	m, err := loadProject()
	if err != nil {
		return err
	}

	var cache *store.Store
	if path := m.CachePath(); path != "" && !flagNoCache {
		if cache, err = store.Open(path); err != nil {
			return err
		}
		defer cache.Close()
	}

	opts := m.Options()
	built, cached := 0, 0
	run := func(rel, format string) error {
		path := filepath.Join(m.Dir, rel)
		res, fromCache, err := buildSource(path, format, opts, cache)
		if err != nil {
			return err
		}
		if fromCache {
			cached++
		} else {
			built++
		}
		out := m.OutputPath(rel)
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return fmt.Errorf("cannot create output dir: %w", err)
		}
		if err := os.WriteFile(out, []byte(compiler.RenderConfig(res)), 0644); err != nil {
			return fmt.Errorf("cannot write %s: %w", out, err)
		}
		return nil
	}

	for _, rel := range m.Source.Scripts {
		if err := run(rel, "script"); err != nil {
			return err
		}
	}
	for _, rel := range m.Source.Menus {
		if err := run(rel, "markup"); err != nil {
			return err
		}
	}

	fmt.Printf("Built %d source(s), %d from cache\n", built, cached)
	return nil
}

// buildSource compiles one source, consulting and feeding the cache when
// one is open. A cached result is only used when the bundle matches the
// source text, the label, and the pack options; cell names depend on all
// three.
func buildSource(path, format string, opts compiler.Options, cache *store.Store) (*compiler.Result, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("cannot read %s: %w", path, err)
	}
	source := string(data)
	label := sourceLabel(path)

	if cache != nil {
		b, err := cache.Get(bundle.SourceHash(source))
		switch {
		case err == nil:
			if b.Matches(source, label, opts) {
				log.Infof("%s: restored from cache", path)
				return b.Result(), true, nil
			}
		case !errors.Is(err, store.ErrNotFound):
			return nil, false, err
		}
	}

	res, err := compileFile(path, format, opts)
	if err != nil {
		return nil, false, err
	}

	if cache != nil {
		if err := cache.Put(bundle.New(source, label, res, opts)); err != nil {
			return nil, false, err
		}
	}
	return res, false, nil
}
