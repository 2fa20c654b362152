package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFileName)
	writeFile(t, path, `
name: demo-app
version: 0.1.0
main: src/main.tlox
lib: src/lib.tlox
preludes: src/util.tlox
dependencies:
  shared: ../shared
  mathx:
    git: https://example.com/mathx.git
    tag: v1.0.0
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest error: %v", err)
	}
	if manifest.Name != "demo_app" || manifest.Version != "0.1.0" {
		t.Fatalf("unexpected identity %q %q", manifest.Name, manifest.Version)
	}
	if manifest.Resolve(manifest.Main) != filepath.Join(dir, "src", "main.tlox") {
		t.Fatalf("main resolved to %q", manifest.Resolve(manifest.Main))
	}
	if len(manifest.Preludes) != 1 || manifest.Preludes[0] != "src/util.tlox" {
		t.Fatalf("Preludes = %v", manifest.Preludes)
	}
	if dep := manifest.Dependencies["shared"]; dep == nil || dep.Path != "../shared" {
		t.Fatalf("shorthand path dependency = %#v", dep)
	}
	if dep := manifest.Dependencies["mathx"]; dep == nil || dep.Git != "https://example.com/mathx.git" || dep.Tag != "v1.0.0" {
		t.Fatalf("git dependency = %#v", dep)
	}
}

func TestLoadManifestValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFileName)
	writeFile(t, path, `
preludes: ["", "a.tlox"]
dependencies:
  both: { path: ../x, git: https://example.com/x.git, rev: abc }
  unpinned: { git: https://example.com/y.git }
  pinned_path: { path: ../z, branch: main }
`)
	_, err := LoadManifest(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{
		"name must be provided",
		"preludes[0] must be a non-empty path",
		"dependencies.both: path dependencies cannot also specify git",
		"dependencies.both: rev, tag and branch apply only to git dependencies",
		"dependencies.pinned_path: rev, tag and branch apply only to git dependencies",
		"dependencies.unpinned: git dependencies require rev, tag, or branch",
	}
	if strings.Join(verr.Issues, "\n") != strings.Join(want, "\n") {
		t.Fatalf("issues:\n%s\nwant:\n%s", strings.Join(verr.Issues, "\n"), strings.Join(want, "\n"))
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFileName)
	writeFile(t, path, "name: demo\ntargets: {}\n")
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "targets") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadManifestEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestFileName)
	writeFile(t, path, "")
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty manifest error, got %v", err)
	}
}

func TestFindManifestWalksUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestFileName), "name: demo\n")
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err := FindManifest(nested)
	if err != nil {
		t.Fatalf("FindManifest error: %v", err)
	}
	want, _ := filepath.Abs(filepath.Join(root, ManifestFileName))
	if got != want {
		t.Fatalf("FindManifest = %q, want %q", got, want)
	}

	if _, err := FindManifest(t.TempDir()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist without a manifest, got %v", err)
	}
}
