package interpreter

import (
	"fmt"
	"io"
	"os"

	"github.com/fcruzel/tlox/pkg/ast"
	"github.com/fcruzel/tlox/pkg/runtime"
)

// Interpreter evaluates resolved programs against a persistent global
// environment. It is not safe for concurrent use.
type Interpreter struct {
	global *runtime.Environment
	locals map[ast.Expression]int
	out    io.Writer
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput sends `print` output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) {
		if w != nil {
			i.out = w
		}
	}
}

// New returns an interpreter whose global environment holds the builtins.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		global: runtime.NewEnvironment(nil),
		locals: make(map[ast.Expression]int),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.installNatives()
	return i
}

// Globals returns the interpreter's global environment.
func (i *Interpreter) Globals() *runtime.Environment {
	return i.global
}

// Resolve records the binding distance of a variable, assignment or `this`
// expression. Expressions without an entry are looked up in the globals.
func (i *Interpreter) Resolve(expr ast.Expression, depth int) {
	i.locals[expr] = depth
}

// Interpret executes program in the global environment and returns the value
// of the final statement when it is an expression statement, otherwise nil. Execution
// stops at the first runtime error, which is returned as a *runtime.Error.
// Globals defined before the failure stay defined.
func (i *Interpreter) Interpret(program *ast.Program) (runtime.Value, error) {
	if program == nil {
		return nil, nil
	}
	var last runtime.Value
	for _, stmt := range program.Statements {
		val, err := i.evaluateStatement(stmt, i.global)
		if err != nil {
			if _, ok := err.(returnSignal); ok {
				return nil, fmt.Errorf("return outside function")
			}
			return nil, err
		}
		last = nil
		if _, ok := stmt.(*ast.ExpressionStatement); ok {
			last = val
		}
	}
	return last, nil
}
