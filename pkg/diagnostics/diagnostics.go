// Package diagnostics collects static and runtime errors reported while a
// program is scanned, parsed, resolved and executed. A Collector is threaded
// through each stage and inspected by the caller afterwards; there is no
// process-wide error state.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/fcruzel/tlox/pkg/token"
)

// Phase identifies the stage that produced a diagnostic.
type Phase string

const (
	PhaseLex     Phase = "lex"
	PhaseParse   Phase = "parse"
	PhaseResolve Phase = "resolve"
	PhaseRuntime Phase = "runtime"
)

// Static reports whether diagnostics of this phase prevent execution.
func (p Phase) Static() bool {
	return p != PhaseRuntime
}

// Diagnostic is a single reported error.
type Diagnostic struct {
	Phase   Phase
	Line    int
	Where   string
	Message string
}

func (d Diagnostic) String() string {
	if d.Phase == PhaseRuntime {
		if d.Line > 0 {
			return fmt.Sprintf("%s\n[line %d]", d.Message, d.Line)
		}
		return d.Message
	}
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// Reporter is the sink every stage reports into.
type Reporter interface {
	ReportToken(phase Phase, tok token.Token, message string)
	ReportLine(phase Phase, line int, message string)
}

// Collector is the default Reporter; it keeps diagnostics in report order.
type Collector struct {
	diags []Diagnostic
}

func NewCollector() *Collector {
	return &Collector{}
}

// ReportToken records an error located at tok.
func (c *Collector) ReportToken(phase Phase, tok token.Token, message string) {
	where := fmt.Sprintf(" at '%s'", tok.Lexeme)
	if tok.Type == token.EOF {
		where = " at end"
	}
	c.diags = append(c.diags, Diagnostic{Phase: phase, Line: tok.Line, Where: where, Message: message})
}

// ReportLine records an error that only has a line number.
func (c *Collector) ReportLine(phase Phase, line int, message string) {
	c.diags = append(c.diags, Diagnostic{Phase: phase, Line: line, Message: message})
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

// HasErrors reports whether any static (non-runtime) error was recorded.
func (c *Collector) HasErrors() bool {
	for _, d := range c.diags {
		if d.Phase.Static() {
			return true
		}
	}
	return false
}

func (c *Collector) HasRuntimeErrors() bool {
	for _, d := range c.diags {
		if d.Phase == PhaseRuntime {
			return true
		}
	}
	return false
}

// Format renders diagnostics one per line block, in report order.
func Format(diags []Diagnostic) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n")
}
