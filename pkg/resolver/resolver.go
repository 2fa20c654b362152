// Package resolver performs the static pass that runs between parsing and
// evaluation. It fixes, for every variable reference, how many environment
// frames the interpreter has to walk to reach the declaring frame, and it
// reports the errors that can be detected without running the program.
package resolver

import (
	"fmt"

	"github.com/fcruzel/tlox/pkg/ast"
	"github.com/fcruzel/tlox/pkg/diagnostics"
	"github.com/fcruzel/tlox/pkg/runtime"
	"github.com/fcruzel/tlox/pkg/token"
)

// Locals is the interpreter surface the resolver writes to.
type Locals interface {
	// Resolve records that expr refers to a binding depth frames outward.
	Resolve(expr ast.Expression, depth int)
	// Globals is consulted for names no lexical scope declares.
	Globals() *runtime.Environment
}

type functionKind int

const (
	functionNone functionKind = iota
	functionPlain
	functionMethod
)

type classKind int

const (
	classNone classKind = iota
	classPlain
)

type binding int

const (
	absent binding = iota
	declared
	defined
)

type scope map[string]binding

type Resolver struct {
	locals   Locals
	reporter diagnostics.Reporter
	// scopes[0] is the global frame; it is never popped.
	scopes          []scope
	currentFunction functionKind
	currentClass    classKind
}

func New(locals Locals, reporter diagnostics.Reporter) *Resolver {
	return &Resolver{locals: locals, reporter: reporter}
}

// Resolve walks program. Every error is reported and resolution carries on,
// so one pass surfaces all of them.
func (r *Resolver) Resolve(program *ast.Program) {
	if program == nil {
		return
	}
	r.scopes = []scope{predeclare(program.Statements)}
	r.currentFunction = functionNone
	r.currentClass = classNone
	r.resolveStatements(program.Statements)
}

// predeclare collects top-level declarations so code may refer to globals
// defined further down the file.
func predeclare(stmts []ast.Statement) scope {
	global := scope{}
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.LetStatement:
			global[s.Name.Lexeme] = defined
		case *ast.FunctionStatement:
			global[s.Name.Lexeme] = defined
		case *ast.ClassStatement:
			global[s.Name.Lexeme] = defined
		}
	}
	return global
}

func (r *Resolver) resolveStatements(stmts []ast.Statement) {
	for _, stmt := range stmts {
		r.resolveStatement(stmt)
	}
}

func (r *Resolver) resolveStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.BlockStatement:
		r.beginScope()
		r.resolveStatements(s.Statements)
		r.endScope()
	case *ast.LetStatement:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpression(s.Initializer)
		}
		r.define(s.Name)
	case *ast.FunctionStatement:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, functionPlain)
	case *ast.ClassStatement:
		r.resolveClass(s)
	case *ast.ExpressionStatement:
		r.resolveExpression(s.Expression)
	case *ast.PrintStatement:
		if s.Expression != nil {
			r.resolveExpression(s.Expression)
		}
	case *ast.IfStatement:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.ThenBranch)
		if s.ElseBranch != nil {
			r.resolveStatement(s.ElseBranch)
		}
	case *ast.WhileStatement:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.Body)
	case *ast.ReturnStatement:
		if r.currentFunction == functionNone {
			r.error(s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			r.resolveExpression(s.Value)
		}
	default:
		panic(fmt.Sprintf("resolver: unhandled statement %T", stmt))
	}
}

func (r *Resolver) resolveClass(s *ast.ClassStatement) {
	enclosing := r.currentClass
	r.currentClass = classPlain
	defer func() { r.currentClass = enclosing }()

	r.declare(s.Name)
	r.define(s.Name)

	r.beginScope()
	r.innermost()["this"] = defined
	for _, method := range s.Methods {
		r.resolveFunction(method, functionMethod)
	}
	r.endScope()
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStatement, kind functionKind) {
	enclosing := r.currentFunction
	r.currentFunction = kind
	defer func() { r.currentFunction = enclosing }()

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStatements(fn.Body)
	r.endScope()
}

func (r *Resolver) resolveExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Variable:
		if len(r.scopes) > 1 && r.innermost()[e.Name.Lexeme] == declared {
			r.error(e.Name, "Can't read local variable in its own initializer.")
		}
		r.resolveLocal(e, e.Name)
	case *ast.Assign:
		r.resolveExpression(e.Value)
		r.resolveLocal(e, e.Name)
	case *ast.This:
		if r.currentClass == classNone {
			r.error(e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, e.Keyword)
	case *ast.Literal:
	case *ast.Grouping:
		r.resolveExpression(e.Inner)
	case *ast.Unary:
		r.resolveExpression(e.Right)
	case *ast.Binary:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)
	case *ast.Logical:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)
	case *ast.Call:
		r.resolveExpression(e.Callee)
		for _, arg := range e.Arguments {
			r.resolveExpression(arg)
		}
	case *ast.Get:
		r.resolveExpression(e.Object)
	case *ast.Set:
		r.resolveExpression(e.Value)
		r.resolveExpression(e.Object)
	default:
		panic(fmt.Sprintf("resolver: unhandled expression %T", expr))
	}
}

// resolveLocal records the distance to the nearest non-global scope that
// declares name. Global references get no entry; they must be known either
// to this program's top level or to the interpreter's global environment.
func (r *Resolver) resolveLocal(expr ast.Expression, name token.Token) {
	for i := len(r.scopes) - 1; i >= 1; i-- {
		if r.scopes[i][name.Lexeme] != absent {
			r.locals.Resolve(expr, len(r.scopes)-1-i)
			return
		}
	}
	if r.scopes[0][name.Lexeme] != absent {
		return
	}
	if globals := r.locals.Globals(); globals != nil && globals.Has(name.Lexeme) {
		return
	}
	r.error(name, fmt.Sprintf("Undefined variable '%s'.", name.Lexeme))
}

func (r *Resolver) declare(name token.Token) {
	current := r.innermost()
	if len(r.scopes) > 1 && current[name.Lexeme] != absent {
		r.error(name, "Already a variable with this name in this scope.")
	}
	if current[name.Lexeme] == absent {
		current[name.Lexeme] = declared
	}
}

func (r *Resolver) define(name token.Token) {
	r.innermost()[name.Lexeme] = defined
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, scope{})
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) innermost() scope {
	return r.scopes[len(r.scopes)-1]
}

func (r *Resolver) error(tok token.Token, message string) {
	if r.reporter != nil {
		r.reporter.ReportToken(diagnostics.PhaseResolve, tok, message)
	}
}
