package driver

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/oarkflow/log"
)

func quietLogger() *log.Logger {
	return NewLogger("error", io.Discard)
}

// initGitRepo commits everything under dir and tags the commit.
func initGitRepo(t *testing.T, dir, tag string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "tlox tests",
			Email: "tlox@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if tag != "" {
		if _, err := repo.CreateTag(tag, hash, nil); err != nil {
			t.Fatalf("CreateTag: %v", err)
		}
	}
	return hash.String()
}

func loadManifestAt(t *testing.T, dir string) *Manifest {
	t.Helper()
	manifest, err := LoadManifest(filepath.Join(dir, ManifestFileName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	return manifest
}

func TestInstallerResolvesPathDependenciesTransitively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "core", ManifestFileName), "name: core\nversion: 1.0.0\nlib: lib.tlox\n")
	writeFile(t, filepath.Join(root, "core", "lib.tlox"), "fn twice(x) { return x * 2; }\n")
	writeFile(t, filepath.Join(root, "shared", ManifestFileName), "name: shared\nlib: lib.tlox\ndependencies:\n  core: ../core\n")
	writeFile(t, filepath.Join(root, "shared", "lib.tlox"), "fn quad(x) { return twice(twice(x)); }\n")
	writeFile(t, filepath.Join(root, "app", ManifestFileName), "name: app\ndependencies:\n  shared: { path: ../shared }\n  core: { path: ../core }\n")

	manifest := loadManifestAt(t, filepath.Join(root, "app"))
	lock := NewLockfile(manifest.Name, "tlox test")
	installer := NewInstaller(manifest, t.TempDir(), quietLogger())

	changed, logs, err := installer.Install(lock)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !changed {
		t.Fatalf("first install should change the lockfile")
	}
	if len(logs) != 2 || !strings.HasPrefix(logs[0], "linked core 1.0.0") || !strings.HasPrefix(logs[1], "linked shared 0.0.0-dev") {
		t.Fatalf("unexpected logs %v", logs)
	}
	if len(lock.Packages) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(lock.Packages))
	}
	core, shared := lock.Packages[0], lock.Packages[1]
	if core.Name != "core" || core.Lib != "lib.tlox" || core.Checksum == "" {
		t.Fatalf("unexpected core package %#v", core)
	}
	if shared.Name != "shared" || len(shared.Dependencies) != 1 || shared.Dependencies[0] != "core" {
		t.Fatalf("unexpected shared package %#v", shared)
	}
	wantSource := "path:" + filepath.Join(root, "core")
	if core.Source != wantSource {
		t.Fatalf("core source = %q, want %q", core.Source, wantSource)
	}

	changed, _, err = NewInstaller(manifest, t.TempDir(), quietLogger()).Install(lock)
	if err != nil {
		t.Fatalf("second Install: %v", err)
	}
	if changed {
		t.Fatalf("re-installing unchanged dependencies should not change the lockfile")
	}
}

func TestInstallerDetectsCycles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", ManifestFileName), "name: a\ndependencies:\n  b: ../b\n")
	writeFile(t, filepath.Join(root, "b", ManifestFileName), "name: b\ndependencies:\n  a: ../a\n")
	writeFile(t, filepath.Join(root, "app", ManifestFileName), "name: app\ndependencies:\n  a: ../a\n")

	manifest := loadManifestAt(t, filepath.Join(root, "app"))
	_, _, err := NewInstaller(manifest, t.TempDir(), quietLogger()).Install(NewLockfile("app", ""))
	if err == nil || !strings.Contains(err.Error(), "dependency cycle detected at a") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestInstallerFetchesGitDependency(t *testing.T) {
	repoDir := t.TempDir()
	writeFile(t, filepath.Join(repoDir, ManifestFileName), "name: mathx\nversion: 1.0.0\nlib: src/lib.tlox\n")
	writeFile(t, filepath.Join(repoDir, "src", "lib.tlox"), "fn square(x) { return x * x; }\n")
	commit := initGitRepo(t, repoDir, "v1.0.0")

	appDir := t.TempDir()
	writeFile(t, filepath.Join(appDir, ManifestFileName),
		"name: app\ndependencies:\n  mathx:\n    git: "+repoDir+"\n    tag: v1.0.0\n")
	manifest := loadManifestAt(t, appDir)

	cacheDir := t.TempDir()
	lock := NewLockfile(manifest.Name, "tlox test")
	if _, _, err := NewInstaller(manifest, cacheDir, quietLogger()).Install(lock); err != nil {
		t.Fatalf("Install: %v", err)
	}
	pkg, ok := lock.Find("mathx")
	if !ok {
		t.Fatalf("mathx missing from lockfile")
	}
	if pkg.Commit != commit || pkg.Version != "v1.0.0@"+commit {
		t.Fatalf("unexpected pin %q / %q (commit %s)", pkg.Version, pkg.Commit, commit)
	}
	if pkg.Source != "git+"+repoDir+"@"+commit || pkg.Lib != "src/lib.tlox" {
		t.Fatalf("unexpected package %#v", pkg)
	}

	root, err := PackageRoot(pkg, cacheDir)
	if err != nil {
		t.Fatalf("PackageRoot: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "src", "lib.tlox")); err != nil {
		t.Fatalf("checkout missing library file: %v", err)
	}
	sum, err := dirChecksum(repoDir)
	if err != nil {
		t.Fatalf("dirChecksum: %v", err)
	}
	if pkg.Checksum != sum {
		t.Fatalf("checkout checksum %s differs from source %s", pkg.Checksum, sum)
	}
}

func TestGitRefFor(t *testing.T) {
	cases := []struct {
		spec     DependencySpec
		revision string
		label    string
		commit   bool
	}{
		{DependencySpec{Rev: "abc123"}, "abc123", "abc123", false},
		{DependencySpec{Rev: "0123456789abcdef0123456789abcdef01234567"}, "0123456789abcdef0123456789abcdef01234567", "0123456789abcdef0123456789abcdef01234567", true},
		{DependencySpec{Tag: "v2"}, "refs/tags/v2", "v2", false},
		{DependencySpec{Branch: "main"}, "refs/remotes/origin/main", "main", false},
	}
	for _, tc := range cases {
		ref, err := gitRefFor(&tc.spec)
		if err != nil || string(ref.revision) != tc.revision || ref.label != tc.label || ref.commit != tc.commit {
			t.Fatalf("gitRefFor(%+v) = %+v, %v", tc.spec, ref, err)
		}
	}
	if _, err := gitRefFor(&DependencySpec{}); err == nil {
		t.Fatalf("expected error without a pin")
	}
	if got := (gitRef{label: "v2"}).pin("abc"); got != "v2@abc" {
		t.Fatalf("pin = %q", got)
	}
	if got := (gitRef{label: "abc"}).pin("abc"); got != "abc" {
		t.Fatalf("commit pin = %q", got)
	}
	if got := sanitizePathSegment("v2@abc/def"); got != "v2_abc_def" {
		t.Fatalf("sanitizePathSegment = %q", got)
	}
}

func TestPackageRootMatchesGitCheckout(t *testing.T) {
	cacheDir := t.TempDir()
	pkg := &LockedPackage{Name: "mathx", Version: "v1.0.0@abc", Source: "git+https://example.com/mathx.git@abc"}
	root, err := PackageRoot(pkg, cacheDir)
	if err != nil {
		t.Fatalf("PackageRoot: %v", err)
	}
	if want := gitCheckoutDir(cacheDir, "mathx", "v1.0.0@abc"); root != want {
		t.Fatalf("PackageRoot = %q, want %q", root, want)
	}
	if _, err := PackageRoot(pkg, ""); err == nil {
		t.Fatalf("expected error for a git source without a cache directory")
	}
}
