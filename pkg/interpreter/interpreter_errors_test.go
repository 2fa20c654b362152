package interpreter

import (
	"testing"

	"github.com/fcruzel/tlox/pkg/ast"
	"github.com/fcruzel/tlox/pkg/runtime"
)

func TestUndefinedGlobalAtRuntime(t *testing.T) {
	interp, _ := newTestInterpreter()
	rtErr := expectRuntimeError(t, interp, "print later;\nlet later = 1;", "Undefined variable 'later'.")
	if rtErr.Token.Lexeme != "later" || rtErr.Token.Line != 1 {
		t.Fatalf("error should point at the reference, got %#v", rtErr.Token)
	}
}

func TestUndefinedGlobalWithoutResolution(t *testing.T) {
	interp, _ := newTestInterpreter()
	// Trees that skip the resolver fall back to the global environment.
	_, err := interp.Interpret(ast.Prog(ast.Print(ast.Var("ghost"))))
	rtErr, ok := runtime.AsError(err)
	if !ok || rtErr.Message != "Undefined variable 'ghost'." {
		t.Fatalf("unexpected error %v", err)
	}
	_, err = interp.Interpret(ast.Prog(ast.Expr(ast.AssignTo("ghost", ast.Num(1)))))
	if rtErr, ok := runtime.AsError(err); !ok || rtErr.Message != "Undefined variable 'ghost'." {
		t.Fatalf("assignment must not create globals, got %v", err)
	}
	if interp.Globals().Has("ghost") {
		t.Fatalf("failed assignment defined a global")
	}
}

func TestTopLevelSelfReferenceFailsAtRuntime(t *testing.T) {
	interp, _ := newTestInterpreter()
	expectRuntimeError(t, interp, "let a = a;", "Undefined variable 'a'.")

	mustRun(t, interp, "let b = 1;")
	expectNumber(t, mustRun(t, interp, "let b = b + 1; b;"), 2)
}

func TestArityErrors(t *testing.T) {
	interp, _ := newTestInterpreter()
	mustRun(t, interp, "fn add(a, b) { return a + b; } class C {}")
	expectRuntimeError(t, interp, "add(1);", "Expected 2 arguments but got 1.")
	expectRuntimeError(t, interp, "add(1, 2, 3);", "Expected 2 arguments but got 3.")
	expectRuntimeError(t, interp, "C(1);", "Expected 0 arguments but got 1.")
}

func TestCallingNonCallable(t *testing.T) {
	interp, _ := newTestInterpreter()
	rtErr := expectRuntimeError(t, interp, `"text"();`, "Can only call functions and classes.")
	if rtErr.Token.Lexeme != ")" {
		t.Fatalf("error should point at the call's closing paren, got %q", rtErr.Token.Lexeme)
	}
	expectRuntimeError(t, interp, "let n = nil; n();", "Can only call functions and classes.")
}

func TestOperandTypeErrors(t *testing.T) {
	interp, _ := newTestInterpreter()
	expectRuntimeError(t, interp, `-"a";`, "Operand must be a number.")
	expectRuntimeError(t, interp, `1 - "a";`, "Operands must be numbers.")
	expectRuntimeError(t, interp, `"a" < "b";`, "Operands must be numbers.")
	expectRuntimeError(t, interp, "true + nil;", "Operands must be two numbers or include a string.")
}

func TestPropertyErrors(t *testing.T) {
	interp, _ := newTestInterpreter()
	mustRun(t, interp, "class C {} let c = C();")
	expectRuntimeError(t, interp, "c.missing;", "Undefined property 'missing'.")
	expectRuntimeError(t, interp, "let n = 1; n.field;", "Only instances have properties.")
	expectRuntimeError(t, interp, "let s = 1; s.field = 2;", "Only instances have fields.")
}

func TestRuntimeErrorKeepsEarlierGlobals(t *testing.T) {
	interp, _ := newTestInterpreter()
	expectRuntimeError(t, interp, "let kept = 1; kept();", "Can only call functions and classes.")
	expectNumber(t, mustRun(t, interp, "kept;"), 1)

	mustRun(t, interp, "let total = 0;")
	expectRuntimeError(t, interp, "total = total + 5; nil();", "Can only call functions and classes.")
	expectNumber(t, mustRun(t, interp, "total;"), 5)
}

func TestRuntimeErrorInsideBlockRestoresScope(t *testing.T) {
	interp, _ := newTestInterpreter()
	expectRuntimeError(t, interp, `{ let local = 1; local(); }`, "Can only call functions and classes.")
	if interp.Globals().Has("local") {
		t.Fatalf("block binding leaked after an error")
	}
}

func TestStrayReturnSignalIsNotReported(t *testing.T) {
	interp, _ := newTestInterpreter()
	// The resolver rejects this; without it the interpreter still refuses to
	// leak the control signal.
	_, err := interp.Interpret(ast.Prog(ast.Ret(ast.Num(1))))
	if err == nil {
		t.Fatalf("expected an error for a top-level return")
	}
	if _, ok := err.(returnSignal); ok {
		t.Fatalf("return signal escaped Interpret")
	}
	if _, ok := runtime.AsError(err); ok {
		t.Fatalf("a stray return is an internal error, not a runtime error")
	}
}
