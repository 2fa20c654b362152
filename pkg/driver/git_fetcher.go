package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// GitFetcher checks git dependencies out into the cache, one directory per
// pinned version: <cache>/pkg/src/<name>/<version>.
type GitFetcher struct {
	CacheDir string
}

func NewGitFetcher(cacheDir string) *GitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &GitFetcher{CacheDir: cacheDir}
}

// gitRef is the revision a dependency pins, plus the label it was written as
// in the manifest.
type gitRef struct {
	revision plumbing.Revision
	label    string
	commit   bool
}

func gitRefFor(spec *DependencySpec) (gitRef, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return gitRef{revision: plumbing.Revision(rev), label: rev, commit: plumbing.IsHash(rev)}, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return gitRef{revision: plumbing.Revision("refs/tags/" + tag), label: tag}, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return gitRef{revision: plumbing.Revision("refs/remotes/origin/" + branch), label: branch}, nil
	}
	return gitRef{}, errors.New("git dependencies require rev, tag, or branch")
}

// pin names the locked version: the label alone for a commit pin, otherwise
// label@commit.
func (r gitRef) pin(commit string) string {
	commit = strings.TrimSpace(commit)
	if commit == "" {
		return r.label
	}
	if r.label == "" || r.label == commit {
		return commit
	}
	return r.label + "@" + commit
}

// gitCheckout is a materialised revision in the cache.
type gitCheckout struct {
	dir     string
	version string
	commit  string
}

func gitPackageDir(cacheDir, name string) string {
	return filepath.Join(cacheDir, "pkg", "src", sanitizeSegment(name))
}

func gitCheckoutDir(cacheDir, name, version string) string {
	return filepath.Join(gitPackageDir(cacheDir, name), sanitizePathSegment(version))
}

// Fetch clones spec.Git at the pinned revision (reusing an existing checkout)
// and returns the locked package plus the checkout directory.
func (g *GitFetcher) Fetch(name string, spec *DependencySpec) (*LockedPackage, string, error) {
	if g == nil {
		return nil, "", errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, "", fmt.Errorf("dependency %q: git URL required", name)
	}
	ref, err := gitRefFor(spec)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", name, err)
	}

	co, err := g.checkout(name, url, ref)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", name, err)
	}
	checksum, err := dirChecksum(co.dir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: checksum %s: %w", name, co.dir, err)
	}

	return &LockedPackage{
		Name:     sanitizeSegment(name),
		Version:  co.version,
		Source:   fmt.Sprintf("git+%s@%s", url, co.commit),
		Commit:   co.commit,
		Checksum: checksum,
	}, co.dir, nil
}

// checkout returns the cached directory for ref, cloning into a staging
// directory and renaming it into place when the pinned version is new.
func (g *GitFetcher) checkout(name, url string, ref gitRef) (gitCheckout, error) {
	// A full commit pin never moves, so an existing checkout is final.
	if ref.commit {
		dir := gitCheckoutDir(g.CacheDir, name, ref.label)
		if _, err := os.Stat(dir); err == nil {
			return gitCheckout{dir: dir, version: ref.label, commit: ref.label}, nil
		}
	}

	pkgDir := gitPackageDir(g.CacheDir, name)
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		return gitCheckout{}, err
	}
	staging, err := os.MkdirTemp(pkgDir, "git-fetch-*")
	if err != nil {
		return gitCheckout{}, err
	}
	defer os.RemoveAll(staging)

	repo, err := git.PlainClone(staging, false, &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		return gitCheckout{}, fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := repo.ResolveRevision(ref.revision)
	if err != nil {
		return gitCheckout{}, fmt.Errorf("resolve revision %s: %w", ref.revision, err)
	}

	co := gitCheckout{version: ref.pin(hash.String()), commit: hash.String()}
	co.dir = gitCheckoutDir(g.CacheDir, name, co.version)
	if _, err := os.Stat(co.dir); err == nil {
		return co, nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return gitCheckout{}, err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return gitCheckout{}, fmt.Errorf("git checkout %s: %w", ref.label, err)
	}
	if err := os.Rename(staging, co.dir); err != nil {
		return gitCheckout{}, err
	}
	return co, nil
}
