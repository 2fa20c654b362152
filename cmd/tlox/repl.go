package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oarkflow/log"
	"github.com/peterh/liner"

	"github.com/fcruzel/tlox/pkg/diagnostics"
	"github.com/fcruzel/tlox/pkg/driver"
	"github.com/fcruzel/tlox/pkg/interpreter"
	"github.com/fcruzel/tlox/pkg/lexer"
	"github.com/fcruzel/tlox/pkg/parser"
)

const (
	historyFile = ".tlox_history"
	promptMain  = "> "
	promptCont  = "... "
)

func runRepl(logger *log.Logger) int {
	fmt.Fprintf(os.Stdout, "%s (type :globals to list definitions, :quit to exit)\n", cliToolVersion)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	session, code := openReplSession(".", logger, os.Stdout, os.Stderr)
	if code != exitOK {
		return code
	}

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(os.Stdout)
			return exitOK
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q":
				return exitOK
			case ":globals":
				printGlobals(session, os.Stdout)
			default:
				fmt.Fprintln(os.Stdout, "unknown command. Commands: :globals, :quit")
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		evalReplEntry(session, code, os.Stdout, os.Stderr)
	}
}

// evalReplEntry runs one entry in the shared session and echoes the value of
// a trailing expression statement.
func evalReplEntry(session *driver.Session, code string, out, errOut io.Writer) {
	result := session.Run("repl", code)
	if len(result.Diagnostics) > 0 {
		fmt.Fprintln(errOut, diagnostics.Format(result.Diagnostics))
		return
	}
	if result.Value != nil {
		fmt.Fprintln(out, interpreter.Stringify(result.Value))
	}
}

// printGlobals lists every global binding with its current value.
func printGlobals(session *driver.Session, w io.Writer) {
	globals := session.Globals()
	values := globals.Snapshot()
	for _, name := range globals.Keys() {
		fmt.Fprintf(w, "%s = %s\n", name, interpreter.Stringify(values[name]))
	}
}

// openReplSession builds the REPL session and, when a manifest is found above
// dir, preloads the project's packages and preludes into it.
func openReplSession(dir string, logger *log.Logger, out, errOut io.Writer) (*driver.Session, int) {
	cacheDir, err := driver.ResolveHome()
	if err != nil {
		fmt.Fprintf(errOut, "failed to resolve %s: %v\n", driver.HomeEnv, err)
		return nil, exitFailure
	}
	session := driver.NewSession(driver.Options{Output: out, Logger: logger, CacheDir: cacheDir})

	manifest, err := loadManifestFrom(dir)
	if errors.Is(err, os.ErrNotExist) {
		return session, exitOK
	}
	if err != nil {
		fmt.Fprintf(errOut, "failed to load manifest: %v\n", err)
		return nil, exitFailure
	}
	if code := loadReplProject(session, manifest, errOut); code != exitOK {
		return nil, code
	}
	return session, exitOK
}

func loadReplProject(session *driver.Session, manifest *driver.Manifest, errOut io.Writer) int {
	lock, existed, err := driver.LoadLockfileForManifest(manifest, cliToolVersion)
	if err != nil {
		fmt.Fprintf(errOut, "failed to read lockfile: %v\n", err)
		return exitFailure
	}
	if !existed && len(manifest.Dependencies) > 0 {
		fmt.Fprintf(errOut, "%s missing for %q; run `tlox deps install`\n", driver.LockfileName, manifest.Name)
		return exitFailure
	}
	if _, err := session.LoadProject(manifest, lock); err != nil {
		var scriptErr *driver.ScriptError
		if errors.As(err, &scriptErr) {
			fmt.Fprintf(errOut, "%s:\n", scriptErr.Path)
			return reportResult(errOut, scriptErr.Result)
		}
		fmt.Fprintf(errOut, "failed to load project: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if !needsMoreInput(src) {
			return src, true
		}
	}
}

// needsMoreInput reports whether src stops inside an unclosed construct.
func needsMoreInput(src string) bool {
	c := diagnostics.NewCollector()
	tokens := lexer.Scan(src, c)
	parser.Parse(tokens, c)
	return parser.IsIncomplete(tokens, c.Diagnostics())
}
