package interpreter

import (
	"bytes"
	"testing"

	"github.com/fcruzel/tlox/pkg/ast"
	"github.com/fcruzel/tlox/pkg/diagnostics"
	"github.com/fcruzel/tlox/pkg/lexer"
	"github.com/fcruzel/tlox/pkg/parser"
	"github.com/fcruzel/tlox/pkg/resolver"
	"github.com/fcruzel/tlox/pkg/runtime"
)

func newTestInterpreter() (*Interpreter, *bytes.Buffer) {
	var out bytes.Buffer
	return New(WithOutput(&out)), &out
}

// resolveProgram runs the static pass for a tree built with the ast DSL.
func resolveProgram(t *testing.T, interp *Interpreter, program *ast.Program) {
	t.Helper()
	c := diagnostics.NewCollector()
	resolver.New(interp, c).Resolve(program)
	if c.HasErrors() {
		t.Fatalf("resolution failed:\n%s", diagnostics.Format(c.Diagnostics()))
	}
}

// runSource scans, parses, resolves and interprets src, failing the test on
// any static error.
func runSource(t *testing.T, interp *Interpreter, src string) (runtime.Value, error) {
	t.Helper()
	c := diagnostics.NewCollector()
	program := parser.Parse(lexer.Scan(src, c), c)
	if !c.HasErrors() {
		resolver.New(interp, c).Resolve(program)
	}
	if c.HasErrors() {
		t.Fatalf("static errors in %q:\n%s", src, diagnostics.Format(c.Diagnostics()))
	}
	return interp.Interpret(program)
}

func mustRun(t *testing.T, interp *Interpreter, src string) runtime.Value {
	t.Helper()
	val, err := runSource(t, interp, src)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	return val
}

func expectRuntimeError(t *testing.T, interp *Interpreter, src, want string) *runtime.Error {
	t.Helper()
	_, err := runSource(t, interp, src)
	if err == nil {
		t.Fatalf("expected runtime error %q", want)
	}
	rtErr, ok := runtime.AsError(err)
	if !ok {
		t.Fatalf("expected *runtime.Error, got %T: %v", err, err)
	}
	if rtErr.Message != want {
		t.Fatalf("runtime error = %q, want %q", rtErr.Message, want)
	}
	return rtErr
}

func expectNumber(t *testing.T, val runtime.Value, want float64) {
	t.Helper()
	num, ok := val.(runtime.NumberValue)
	if !ok || num.Val != want {
		t.Fatalf("expected number %v, got %#v", want, val)
	}
}

func expectString(t *testing.T, val runtime.Value, want string) {
	t.Helper()
	str, ok := val.(runtime.StringValue)
	if !ok || str.Val != want {
		t.Fatalf("expected string %q, got %#v", want, val)
	}
}
