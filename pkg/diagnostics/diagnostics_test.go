package diagnostics

import (
	"strings"
	"testing"

	"github.com/fcruzel/tlox/pkg/token"
)

func TestReportTokenFormatsLocation(t *testing.T) {
	c := NewCollector()
	c.ReportToken(PhaseResolve, token.Ident("a", 3), "Can't read local variable in its own initializer.")

	diags := c.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	want := "[line 3] Error at 'a': Can't read local variable in its own initializer."
	if got := diags[0].String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if !c.HasErrors() {
		t.Fatalf("expected HasErrors after a resolve diagnostic")
	}
	if c.HasRuntimeErrors() {
		t.Fatalf("resolve diagnostic must not count as runtime error")
	}
}

func TestReportTokenAtEnd(t *testing.T) {
	c := NewCollector()
	c.ReportToken(PhaseParse, token.New(token.EOF, "", 7), "Expect ';' after value.")
	if got := c.Diagnostics()[0].String(); got != "[line 7] Error at end: Expect ';' after value." {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestRuntimeDiagnosticFormat(t *testing.T) {
	c := NewCollector()
	c.ReportLine(PhaseRuntime, 12, "Undefined variable 'x'")

	if c.HasErrors() {
		t.Fatalf("runtime diagnostics must not be reported as static errors")
	}
	if !c.HasRuntimeErrors() {
		t.Fatalf("expected runtime error flag")
	}
	out := Format(c.Diagnostics())
	if !strings.Contains(out, "Undefined variable 'x'\n[line 12]") {
		t.Fatalf("unexpected runtime format %q", out)
	}
}

func TestDiagnosticsReturnsCopy(t *testing.T) {
	c := NewCollector()
	c.ReportLine(PhaseLex, 1, "Unexpected character.")
	diags := c.Diagnostics()
	diags[0].Message = "mutated"
	if c.Diagnostics()[0].Message != "Unexpected character." {
		t.Fatalf("collector state changed through returned slice")
	}
}
