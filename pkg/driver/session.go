// Package driver wires the interpreter pipeline (scan, parse, resolve,
// evaluate) into sessions and loads projects described by tlox.yml together
// with their locked dependencies.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/oarkflow/log"

	"github.com/fcruzel/tlox/pkg/ast"
	"github.com/fcruzel/tlox/pkg/diagnostics"
	"github.com/fcruzel/tlox/pkg/interpreter"
	"github.com/fcruzel/tlox/pkg/lexer"
	"github.com/fcruzel/tlox/pkg/parser"
	"github.com/fcruzel/tlox/pkg/resolver"
	"github.com/fcruzel/tlox/pkg/runtime"
)

// ErrNotInstalled is returned when a manifest dependency has no lock entry.
var ErrNotInstalled = errors.New("dependency not installed")

// Options configures a Session.
type Options struct {
	// Output receives `print` output; defaults to stdout.
	Output io.Writer
	Logger *log.Logger
	// CacheDir is where git dependencies were checked out.
	CacheDir string
}

// Session owns one interpreter. Every Run shares its global environment, so
// definitions from earlier runs (REPL entries, preludes, dependency
// libraries) stay visible to later ones.
type Session struct {
	interp   *interpreter.Interpreter
	logger   *log.Logger
	cacheDir string
	loaded   map[string]bool
}

// Result describes one run.
type Result struct {
	// Value is the value of a trailing expression statement, if any.
	Value        runtime.Value
	Diagnostics  []diagnostics.Diagnostic
	StaticError  bool
	RuntimeError bool
}

// OK reports whether the run finished without any error.
func (r Result) OK() bool {
	return !r.StaticError && !r.RuntimeError
}

// ScriptError reports a failed script run during project loading.
type ScriptError struct {
	Path   string
	Result Result
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s:\n%s", e.Path, diagnostics.Format(e.Result.Diagnostics))
}

func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = &log.DefaultLogger
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	return &Session{
		interp:   interpreter.New(interpreter.WithOutput(out)),
		logger:   logger,
		cacheDir: opts.CacheDir,
		loaded:   make(map[string]bool),
	}
}

// Globals exposes the session's global environment.
func (s *Session) Globals() *runtime.Environment {
	return s.interp.Globals()
}

// Check scans, parses and resolves source without executing it.
func (s *Session) Check(name, source string) (*ast.Program, Result) {
	c := diagnostics.NewCollector()
	program := s.analyze(source, c)
	result := Result{Diagnostics: c.Diagnostics(), StaticError: c.HasErrors()}
	s.logger.Debug().Str("script", name).Int("diagnostics", len(result.Diagnostics)).Msg("script checked")
	return program, result
}

// Run executes source. Static errors prevent execution entirely; a runtime
// error stops the run but leaves earlier global definitions in place.
func (s *Session) Run(name, source string) Result {
	start := time.Now()
	c := diagnostics.NewCollector()
	program := s.analyze(source, c)
	if c.HasErrors() {
		s.logger.Debug().Str("script", name).Msg("static errors, not executing")
		return Result{Diagnostics: c.Diagnostics(), StaticError: true}
	}

	value, err := s.interp.Interpret(program)
	result := Result{Value: value}
	if err != nil {
		if rtErr, ok := runtime.AsError(err); ok {
			c.ReportToken(diagnostics.PhaseRuntime, rtErr.Token, rtErr.Message)
		} else {
			c.ReportLine(diagnostics.PhaseRuntime, 0, err.Error())
		}
	}
	result.Diagnostics = c.Diagnostics()
	result.RuntimeError = c.HasRuntimeErrors()
	s.logger.Debug().Str("script", name).Dur("duration", time.Since(start)).Msg("script executed")
	return result
}

// RunFile reads and runs the script at path.
func (s *Session) RunFile(path string) (Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return s.Run(path, string(source)), nil
}

func (s *Session) analyze(source string, c *diagnostics.Collector) *ast.Program {
	program := parser.Parse(lexer.Scan(source, c), c)
	if c.HasErrors() {
		return program
	}
	resolver.New(s.interp, c).Resolve(program)
	return program
}

// LoadProject runs the library entry of every locked dependency (dependencies
// before their dependents), then the manifest's preludes, in this session.
// It returns the absolute path of the manifest's main script, or "" when the
// manifest has none.
func (s *Session) LoadProject(manifest *Manifest, lock *Lockfile) (string, error) {
	if manifest == nil {
		return "", fmt.Errorf("load project: nil manifest")
	}
	for _, name := range sortedKeys(manifest.Dependencies) {
		if err := s.loadPackage(name, lock, nil); err != nil {
			return "", err
		}
	}
	for _, prelude := range manifest.Preludes {
		if err := s.runRequired(manifest.Resolve(prelude)); err != nil {
			return "", err
		}
	}
	if manifest.Main == "" {
		return "", nil
	}
	return manifest.Resolve(manifest.Main), nil
}

func (s *Session) loadPackage(name string, lock *Lockfile, stack []string) error {
	name = sanitizeSegment(name)
	if s.loaded[name] {
		return nil
	}
	for _, seen := range stack {
		if seen == name {
			return fmt.Errorf("dependency cycle detected at %s", name)
		}
	}
	pkg, ok := lock.Find(name)
	if !ok {
		return fmt.Errorf("%s: %w (run `tlox deps install`)", name, ErrNotInstalled)
	}
	for _, dep := range pkg.Dependencies {
		if err := s.loadPackage(dep, lock, append(stack, name)); err != nil {
			return err
		}
	}
	if pkg.Lib != "" {
		root, err := PackageRoot(pkg, s.cacheDir)
		if err != nil {
			return err
		}
		if err := s.runRequired(filepath.Join(root, filepath.FromSlash(pkg.Lib))); err != nil {
			return err
		}
	}
	s.loaded[name] = true
	s.logger.Info().Str("package", name).Str("version", pkg.Version).Msg("package loaded")
	return nil
}

func (s *Session) runRequired(path string) error {
	result, err := s.RunFile(path)
	if err != nil {
		return err
	}
	if !result.OK() {
		return &ScriptError{Path: path, Result: result}
	}
	return nil
}
