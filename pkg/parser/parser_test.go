package parser

import (
	"testing"

	"github.com/fcruzel/tlox/pkg/ast"
	"github.com/fcruzel/tlox/pkg/diagnostics"
	"github.com/fcruzel/tlox/pkg/lexer"
)

func parseSource(t *testing.T, src string) (*ast.Program, *diagnostics.Collector) {
	t.Helper()
	c := diagnostics.NewCollector()
	program := Parse(lexer.Scan(src, c), c)
	return program, c
}

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, c := parseSource(t, src)
	if c.HasErrors() {
		t.Fatalf("unexpected diagnostics for %q:\n%s", src, diagnostics.Format(c.Diagnostics()))
	}
	return program
}

func TestParseExpressionPrecedence(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3;", "(; (+ 1 (* 2 3)))"},
		{"(1 + 2) * 3;", "(; (* (group (+ 1 2)) 3))"},
		{"-a - -b;", "(; (- (- a) (- b)))"},
		{"!true == false;", "(; (== (! true) false))"},
		{"a < b == c >= d;", "(; (== (< a b) (>= c d)))"},
		{"a or b and c;", "(; (or a (and b c)))"},
		{"1 - 2 - 3;", "(; (- (- 1 2) 3))"},
		{`"s" + nil;`, `(; (+ "s" nil))`},
	}
	for _, tc := range cases {
		program := mustParse(t, tc.src)
		if got := ast.SprintProgram(program); got != tc.want {
			t.Fatalf("%q parsed as %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	program := mustParse(t, "a = b = 1;")
	if got := ast.SprintProgram(program); got != "(; (= a (= b 1)))" {
		t.Fatalf("unexpected tree %s", got)
	}
}

func TestParseCallsAndProperties(t *testing.T) {
	program := mustParse(t, "g.greet(1, x).name = f()();")
	want := "(; (set .name (call (.greet g) 1 x) (call (call f))))"
	if got := ast.SprintProgram(program); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseDeclarations(t *testing.T) {
	src := `
let a;
let b = 1;
fn add(x, y) { return x + y; }
class Greeter {
  greet() { return "hi " + this.name; }
  shout(msg) { print msg; }
}
print;
`
	program := mustParse(t, src)
	want := []string{
		"(let a)",
		"(let b 1)",
		"(fn add (x y) (return (+ x y)))",
		`(class Greeter (method greet () (return (+ "hi " (.name this)))) (method shout (msg) (print msg)))`,
		"(print)",
	}
	if len(program.Statements) != len(want) {
		t.Fatalf("got %d statements, want %d", len(program.Statements), len(want))
	}
	for i, stmt := range program.Statements {
		if got := ast.Sprint(stmt); got != want[i] {
			t.Fatalf("statement %d = %s, want %s", i, got, want[i])
		}
	}
}

func TestParseControlFlow(t *testing.T) {
	program := mustParse(t, "if (a) print 1; else { print 2; } while (x < 3) x = x + 1;")
	want := "(if a (print 1) (block (print 2)))\n(while (< x 3) (; (= x (+ x 1))))"
	if got := ast.SprintProgram(program); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseForDesugarsToWhile(t *testing.T) {
	program := mustParse(t, "for (let i = 0; i < 3; i = i + 1) print i;")
	want := "(block (let i 0) (while (< i 3) (block (print i) (; (= i (+ i 1))))))"
	if got := ast.SprintProgram(program); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	program = mustParse(t, "for (;;) print 1;")
	if got := ast.SprintProgram(program); got != "(while true (print 1))" {
		t.Fatalf("got %s", got)
	}
}

func TestParseInvalidAssignmentTarget(t *testing.T) {
	program, c := parseSource(t, "1 + 2 = 3; print 4;")
	diags := c.Diagnostics()
	if len(diags) != 1 || diags[0].Message != "Invalid assignment target." {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
	if diags[0].Where != " at '='" {
		t.Fatalf("unexpected location %q", diags[0].Where)
	}
	if len(program.Statements) != 2 {
		t.Fatalf("parser should keep going after an invalid target, got %d statements", len(program.Statements))
	}
}

func TestParseRecoversAndReportsEveryError(t *testing.T) {
	program, c := parseSource(t, "let = 1;\nprint 2;\nlet x = ;\nprint 3;")
	diags := c.Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(diags), diags)
	}
	if diags[0].Message != "Expect variable name." || diags[0].Line != 1 {
		t.Fatalf("unexpected first diagnostic %#v", diags[0])
	}
	if diags[1].Message != "Expect expression." || diags[1].Line != 3 {
		t.Fatalf("unexpected second diagnostic %#v", diags[1])
	}
	if got := ast.SprintProgram(program); got != "(print 2)\n(print 3)" {
		t.Fatalf("unexpected recovered program %s", got)
	}
}

func TestIsIncomplete(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"fn f() {\n  print 1;", true},
		{"print \"abc", true},
		{"print (1 +", true},
		{"class A { m() { }", true},
		{"print 1", false},
		{"print 1 +", false},
		{"print );", false},
		{"print 1;", false},
	}
	for _, tc := range cases {
		c := diagnostics.NewCollector()
		tokens := lexer.Scan(tc.src, c)
		Parse(tokens, c)
		if got := IsIncomplete(tokens, c.Diagnostics()); got != tc.want {
			t.Fatalf("IsIncomplete(%q) = %v, want %v (diagnostics %v)", tc.src, got, tc.want, c.Diagnostics())
		}
	}
}
