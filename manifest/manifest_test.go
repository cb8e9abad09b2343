package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sofplus/cvarpack/compiler"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "sp-coop"
version = "0.3.0"

[pack]
max-cvar-size = 200
hash-len = 6

[source]
scripts = ["scripts/doors.func"]
menus = ["menus/main.rfm", "menus/options.rfm"]

[output]
dir = "dist"
cache = "build.db"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "sp-coop" {
		t.Errorf("project name = %q, want sp-coop", m.Project.Name)
	}
	if m.Pack.MaxCvarSize != 200 {
		t.Errorf("max-cvar-size = %d, want 200", m.Pack.MaxCvarSize)
	}
	if len(m.Source.Scripts) != 1 || len(m.Source.Menus) != 2 {
		t.Errorf("sources = %v/%v, want 1 script and 2 menus", m.Source.Scripts, m.Source.Menus)
	}
	if m.Output.Dir != "dist" {
		t.Errorf("output dir = %q, want dist", m.Output.Dir)
	}
	if m.Dir == "" || !filepath.IsAbs(m.Dir) {
		t.Errorf("manifest dir = %q, want absolute", m.Dir)
	}

	opts := m.Options()
	if opts.MaxCellSize != 200 || opts.HashLen != 6 {
		t.Errorf("options = %+v, want the configured pack values", opts)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "defaults"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Pack.MaxCvarSize != compiler.DefaultMaxCellSize {
		t.Errorf("max-cvar-size = %d, want default %d", m.Pack.MaxCvarSize, compiler.DefaultMaxCellSize)
	}
	if m.Pack.HashLen != compiler.DefaultHashLen {
		t.Errorf("hash-len = %d, want default %d", m.Pack.HashLen, compiler.DefaultHashLen)
	}
	if m.Output.Dir != "out" {
		t.Errorf("output dir = %q, want out", m.Output.Dir)
	}
	if m.CachePath() != "" {
		t.Errorf("cache path = %q, want disabled", m.CachePath())
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[project]\nname = \"walk\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil || m.Project.Name != "walk" {
		t.Fatalf("m = %+v, want the root manifest", m)
	}
}

func TestFindAndLoadMissing(t *testing.T) {
	m, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m != nil {
		t.Errorf("m = %+v, want nil when no manifest exists", m)
	}
}

func TestOutputPath(t *testing.T) {
	m := &Manifest{Dir: "/proj", Output: Output{Dir: "dist"}}
	got := m.OutputPath("scripts/doors.func")
	want := filepath.Join("/proj", "dist", "scripts", "doors.cfg")
	if got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
}

func TestOutputPathKeepsSameBaseNamesApart(t *testing.T) {
	m := &Manifest{Dir: "/proj", Output: Output{Dir: "out"}}
	script := m.OutputPath("scripts/x.func")
	menu := m.OutputPath("menus/x.rfm")
	if script == menu {
		t.Errorf("scripts/x.func and menus/x.rfm both map to %q", script)
	}
}
