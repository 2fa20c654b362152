package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oarkflow/log"
)

// Installer resolves the dependencies named by a manifest (transitively) into
// locked packages, fetching git sources into the cache.
type Installer struct {
	manifest     *Manifest
	manifestRoot string
	cacheDir     string
	logger       *log.Logger
	logs         []string
	git          *GitFetcher
	resolved     map[string]*LockedPackage
	resolving    map[string]bool
}

type resolvedPackage struct {
	pkg      *LockedPackage
	manifest *Manifest
	root     string
}

func NewInstaller(manifest *Manifest, cacheDir string, logger *log.Logger) *Installer {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Installer{
		manifest:     manifest,
		manifestRoot: manifest.Root(),
		cacheDir:     cacheDir,
		logger:       logger,
		git:          NewGitFetcher(cacheDir),
	}
}

// Install resolves every dependency and rewrites lock.Packages. It reports
// whether the locked set changed and returns one human readable line per
// resolved package.
func (d *Installer) Install(lock *Lockfile) (bool, []string, error) {
	d.logs = []string{}
	d.resolved = make(map[string]*LockedPackage)
	d.resolving = make(map[string]bool)

	for _, name := range sortedKeys(d.manifest.Dependencies) {
		spec := d.manifest.Dependencies[name]
		if spec == nil {
			return false, d.logs, fmt.Errorf("dependency %q has no descriptor", name)
		}
		if _, err := d.installDependency(name, spec.clone(), d.manifestRoot); err != nil {
			return false, d.logs, err
		}
	}

	desired := make([]*LockedPackage, 0, len(d.resolved))
	for _, pkg := range d.resolved {
		desired = append(desired, pkg)
	}
	sort.SliceStable(desired, func(i, j int) bool {
		return desired[i].Name < desired[j].Name
	})

	existing := make(map[string]*LockedPackage, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg != nil {
			existing[pkg.Name] = pkg
		}
	}
	changed := len(desired) != len(existing)
	for _, pkg := range desired {
		if current, ok := existing[pkg.Name]; !ok || !lockedPackageEqual(current, pkg) {
			changed = true
		}
	}

	lock.Packages = desired
	return changed, d.logs, nil
}

func (d *Installer) installDependency(name string, spec *DependencySpec, base string) (string, error) {
	alias := sanitizeSegment(name)
	if _, ok := d.resolved[alias]; ok {
		return alias, nil
	}
	if d.resolving[alias] {
		return "", fmt.Errorf("dependency cycle detected at %s", alias)
	}
	d.resolving[alias] = true
	defer delete(d.resolving, alias)

	var (
		resolved *resolvedPackage
		err      error
	)
	switch {
	case spec.Path != "":
		resolved, err = d.resolvePathDependency(alias, spec, base)
	case spec.Git != "":
		resolved, err = d.resolveGitDependency(alias, spec)
	default:
		err = fmt.Errorf("dependency %q: unsupported descriptor", name)
	}
	if err != nil {
		d.logger.Error().Err(err).Str("dependency", alias).Msg("dependency resolution failed")
		return "", err
	}

	pkg := resolved.pkg
	pkg.Name = alias
	pkg.Dependencies = nil
	if resolved.manifest != nil {
		pkg.Lib = resolved.manifest.Lib
		for _, childName := range sortedKeys(resolved.manifest.Dependencies) {
			childSpec := resolved.manifest.Dependencies[childName].clone()
			if childSpec == nil {
				return "", fmt.Errorf("dependency %s lists %s without descriptor", alias, childName)
			}
			child, err := d.installDependency(childName, childSpec, resolved.root)
			if err != nil {
				return "", err
			}
			pkg.Dependencies = append(pkg.Dependencies, child)
		}
	}

	d.resolved[alias] = pkg
	d.logger.Info().Str("dependency", alias).Str("version", pkg.Version).Str("source", pkg.Source).Msg("dependency resolved")
	return alias, nil
}

func (d *Installer) resolvePathDependency(name string, spec *DependencySpec, base string) (*resolvedPackage, error) {
	pathSpec := spec.Path
	if !filepath.IsAbs(pathSpec) {
		pathSpec = filepath.Join(base, filepath.FromSlash(pathSpec))
	}
	abs, err := filepath.Abs(pathSpec)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: resolve path %q: %w", name, spec.Path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: stat %s: %w", name, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dependency %q: expected directory at %s", name, abs)
	}

	manifestPath := filepath.Join(abs, ManifestFileName)
	depManifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: load manifest %s: %w", name, manifestPath, err)
	}
	version := depManifest.Version
	if version == "" {
		version = "0.0.0-dev"
	}
	checksum, err := dirChecksum(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: checksum %s: %w", name, abs, err)
	}

	d.logs = append(d.logs, fmt.Sprintf("linked %s %s (%s)", name, version, d.displayPath(abs)))
	return &resolvedPackage{
		pkg: &LockedPackage{
			Version:  version,
			Source:   "path:" + abs,
			Checksum: checksum,
		},
		manifest: depManifest,
		root:     abs,
	}, nil
}

func (d *Installer) resolveGitDependency(name string, spec *DependencySpec) (*resolvedPackage, error) {
	if d.git == nil {
		return nil, fmt.Errorf("dependency %q: git dependencies need a cache directory", name)
	}
	pkg, checkoutDir, err := d.git.Fetch(name, spec)
	if err != nil {
		return nil, err
	}
	d.logs = append(d.logs, fmt.Sprintf("fetched %s %s", name, pkg.Version))

	var manifest *Manifest
	manifestPath := filepath.Join(checkoutDir, ManifestFileName)
	if data, err := LoadManifest(manifestPath); err == nil {
		manifest = data
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("dependency %q: load manifest %s: %w", name, manifestPath, err)
	}
	return &resolvedPackage{pkg: pkg, manifest: manifest, root: checkoutDir}, nil
}

func (d *Installer) displayPath(path string) string {
	if d.manifestRoot != "" {
		if rel, err := filepath.Rel(d.manifestRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return path
}

// PackageRoot locates a locked package's files: path sources point at their
// directory, git sources at their checkout in the cache.
func PackageRoot(pkg *LockedPackage, cacheDir string) (string, error) {
	source := strings.TrimSpace(pkg.Source)
	switch {
	case strings.HasPrefix(source, "path:"):
		dir := strings.TrimSpace(strings.TrimPrefix(source, "path:"))
		if dir == "" {
			return "", fmt.Errorf("package %s: empty path source", pkg.Name)
		}
		return filepath.Clean(dir), nil
	case strings.HasPrefix(source, "git+"):
		if cacheDir == "" {
			return "", fmt.Errorf("package %s: git source without a cache directory", pkg.Name)
		}
		return gitCheckoutDir(cacheDir, pkg.Name, pkg.Version), nil
	default:
		return "", fmt.Errorf("package %s: unsupported source %q", pkg.Name, source)
	}
}
