package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oarkflow/log"

	"github.com/fcruzel/tlox/pkg/ast"
	"github.com/fcruzel/tlox/pkg/diagnostics"
	"github.com/fcruzel/tlox/pkg/driver"
)

const cliToolVersion = "tlox 0.1.0-dev"

// Exit codes follow sysexits(3).
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 64
	exitStatic  = 65
	exitRuntime = 70
)

const scriptSuffix = ".tlox"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	level, args, err := splitLogLevel(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage(os.Stderr)
		return exitUsage
	}
	logger := driver.NewLogger(level, os.Stderr)

	if len(args) == 0 {
		return runRepl(logger)
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(os.Stdout)
		return exitOK
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return exitOK
	case "run":
		return runEntry(args[1:], logger)
	case "check":
		return runCheck(args[1:], logger)
	case "repl":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "tlox repl does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return exitUsage
		}
		return runRepl(logger)
	case "deps":
		return runDeps(args[1:], logger)
	default:
		if looksLikeScript(args[0]) {
			return runEntry(args, logger)
		}
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		printUsage(os.Stderr)
		return exitUsage
	}
}

// splitLogLevel strips leading --log-level flags, in either the
// `--log-level debug` or `--log-level=debug` form.
func splitLogLevel(args []string) (string, []string, error) {
	level := ""
	for len(args) > 0 {
		arg := args[0]
		switch {
		case arg == "--log-level":
			if len(args) < 2 {
				return "", nil, errors.New("--log-level requires a value")
			}
			level = args[1]
			args = args[2:]
		case strings.HasPrefix(arg, "--log-level="):
			level = strings.TrimPrefix(arg, "--log-level=")
			args = args[1:]
		default:
			return level, args, nil
		}
	}
	return level, args, nil
}

func looksLikeScript(arg string) bool {
	if arg == "" || strings.HasPrefix(arg, "-") {
		return false
	}
	return filepath.Ext(arg) == scriptSuffix ||
		strings.ContainsAny(arg, `/\`) ||
		strings.HasPrefix(arg, ".")
}

func runEntry(args []string, logger *log.Logger) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return exitUsage
	}
	entry := ""
	start := "."
	if len(args) == 1 {
		entry = args[0]
		start = filepath.Dir(entry)
	}

	manifest, err := loadManifestFrom(start)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return exitFailure
	}
	if entry == "" && manifest == nil {
		fmt.Fprintf(os.Stderr, "tlox run requires a script or a %s with a main entry\n", driver.ManifestFileName)
		return exitUsage
	}

	cacheDir, err := driver.ResolveHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve %s: %v\n", driver.HomeEnv, err)
		return exitFailure
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	session := driver.NewSession(driver.Options{Output: out, Logger: logger, CacheDir: cacheDir})

	if manifest != nil {
		lock, existed, err := driver.LoadLockfileForManifest(manifest, cliToolVersion)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
			return exitFailure
		}
		if !existed && len(manifest.Dependencies) > 0 {
			fmt.Fprintf(os.Stderr, "%s missing for %q; run `tlox deps install`\n", driver.LockfileName, manifest.Name)
			return exitFailure
		}
		mainPath, err := session.LoadProject(manifest, lock)
		if err != nil {
			out.Flush()
			var scriptErr *driver.ScriptError
			if errors.As(err, &scriptErr) {
				fmt.Fprintf(os.Stderr, "%s:\n", scriptErr.Path)
				return reportResult(os.Stderr, scriptErr.Result)
			}
			fmt.Fprintf(os.Stderr, "failed to load project: %v\n", err)
			return exitFailure
		}
		if entry == "" {
			entry = mainPath
		}
	}
	if entry == "" {
		fmt.Fprintf(os.Stderr, "%s does not name a main script\n", manifest.Path)
		return exitUsage
	}

	result, err := session.RunFile(entry)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	out.Flush()
	return reportResult(os.Stderr, result)
}

func runCheck(args []string, logger *log.Logger) int {
	printAST := false
	if len(args) > 0 && args[0] == "--ast" {
		printAST = true
		args = args[1:]
	}
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "tlox check requires exactly one script")
		return exitUsage
	}
	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", args[0], err)
		return exitFailure
	}
	session := driver.NewSession(driver.Options{Output: io.Discard, Logger: logger})
	program, result := session.Check(args[0], string(source))
	if code := reportResult(os.Stderr, result); code != exitOK {
		return code
	}
	if printAST && len(program.Statements) > 0 {
		fmt.Fprintln(os.Stdout, ast.SprintProgram(program))
	}
	return exitOK
}

// reportResult writes a run's diagnostics to w and maps it to an exit code.
func reportResult(w io.Writer, result driver.Result) int {
	if len(result.Diagnostics) > 0 {
		fmt.Fprintln(w, diagnostics.Format(result.Diagnostics))
	}
	switch {
	case result.StaticError:
		return exitStatic
	case result.RuntimeError:
		return exitRuntime
	default:
		return exitOK
	}
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	path, err := driver.FindManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}

func runDeps(args []string, logger *log.Logger) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "tlox deps requires a subcommand (install)")
		return exitUsage
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "tlox deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return exitUsage
		}
		return runDepsInstall(logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return exitUsage
	}
}

func runDepsInstall(logger *log.Logger) int {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to load %s: %v\n", driver.ManifestFileName, err)
		return exitFailure
	}
	cacheDir, err := driver.ResolveHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve %s: %v\n", driver.HomeEnv, err)
		return exitFailure
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Root package: %s\n", manifest.Name)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	lock, existed, err := driver.LoadLockfileForManifest(manifest, cliToolVersion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return exitFailure
	}
	if existed && lock.Root != manifest.Name {
		fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
		return exitFailure
	}
	lock.Tool = cliToolVersion

	changed, logs, err := driver.NewInstaller(manifest, cacheDir, logger).Install(lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return exitFailure
	}
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if changed || !existed {
		action := "Updated"
		if !existed {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, driver.LockfilePathFor(manifest)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return exitFailure
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileName, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileName, lock.Path)
	}
	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return exitOK
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tlox [--log-level <level>] <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tlox                     start the REPL")
	fmt.Fprintln(w, "  tlox <file.tlox>         run a script")
	fmt.Fprintln(w, "  tlox run [file.tlox]     run a script, or the manifest's main")
	fmt.Fprintln(w, "  tlox check [--ast] <file.tlox>")
	fmt.Fprintln(w, "  tlox repl")
	fmt.Fprintln(w, "  tlox deps install")
	fmt.Fprintln(w, "  tlox version")
}
