package interpreter

import (
	"fmt"

	"github.com/fcruzel/tlox/pkg/ast"
	"github.com/fcruzel/tlox/pkg/runtime"
)

// evaluateStatement executes node in env. Only expression statements produce
// a value; everything else yields nil.
func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.ExpressionStatement:
		return i.evaluateExpression(n.Expression, env)
	case *ast.PrintStatement:
		return nil, i.evaluatePrintStatement(n, env)
	case *ast.LetStatement:
		return nil, i.evaluateLetStatement(n, env)
	case *ast.BlockStatement:
		return nil, i.evaluateBlock(n.Statements, env.Extend())
	case *ast.IfStatement:
		return nil, i.evaluateIfStatement(n, env)
	case *ast.WhileStatement:
		return nil, i.evaluateWhileStatement(n, env)
	case *ast.FunctionStatement:
		env.Define(n.Name.Lexeme, &runtime.FunctionValue{Declaration: n, Closure: env})
		return nil, nil
	case *ast.ClassStatement:
		return nil, i.evaluateClassStatement(n, env)
	case *ast.ReturnStatement:
		return nil, i.evaluateReturnStatement(n, env)
	default:
		return nil, fmt.Errorf("unsupported statement type: %s", node.NodeType())
	}
}

// evaluateBlock runs stmts in env, which the caller has already created.
// Bindings made here vanish with env once nothing captures it.
func (i *Interpreter) evaluateBlock(stmts []ast.Statement, env *runtime.Environment) error {
	for _, stmt := range stmts {
		if _, err := i.evaluateStatement(stmt, env); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) evaluatePrintStatement(n *ast.PrintStatement, env *runtime.Environment) error {
	text := ""
	if n.Expression != nil {
		val, err := i.evaluateExpression(n.Expression, env)
		if err != nil {
			return err
		}
		text = valueToString(val)
	}
	if _, err := fmt.Fprintln(i.out, text); err != nil {
		return fmt.Errorf("print: %w", err)
	}
	if f, ok := i.out.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("print: %w", err)
		}
	}
	return nil
}

func (i *Interpreter) evaluateLetStatement(n *ast.LetStatement, env *runtime.Environment) error {
	var value runtime.Value = runtime.Nil
	if n.Initializer != nil {
		val, err := i.evaluateExpression(n.Initializer, env)
		if err != nil {
			return err
		}
		value = val
	}
	env.Define(n.Name.Lexeme, value)
	return nil
}

func (i *Interpreter) evaluateIfStatement(n *ast.IfStatement, env *runtime.Environment) error {
	cond, err := i.evaluateExpression(n.Condition, env)
	if err != nil {
		return err
	}
	var branch ast.Statement
	if runtime.Truthy(cond) {
		branch = n.ThenBranch
	} else {
		branch = n.ElseBranch
	}
	if branch == nil {
		return nil
	}
	_, err = i.evaluateStatement(branch, env)
	return err
}

func (i *Interpreter) evaluateWhileStatement(n *ast.WhileStatement, env *runtime.Environment) error {
	for {
		cond, err := i.evaluateExpression(n.Condition, env)
		if err != nil {
			return err
		}
		if !runtime.Truthy(cond) {
			return nil
		}
		if _, err := i.evaluateStatement(n.Body, env); err != nil {
			return err
		}
	}
}

func (i *Interpreter) evaluateClassStatement(n *ast.ClassStatement, env *runtime.Environment) error {
	methods := make(map[string]*runtime.FunctionValue, len(n.Methods))
	for _, m := range n.Methods {
		methods[m.Name.Lexeme] = &runtime.FunctionValue{Declaration: m, Closure: env}
	}
	env.Define(n.Name.Lexeme, &runtime.ClassValue{Name: n.Name.Lexeme, Methods: methods})
	return nil
}

func (i *Interpreter) evaluateReturnStatement(n *ast.ReturnStatement, env *runtime.Environment) error {
	var result runtime.Value = runtime.Nil
	if n.Value != nil {
		val, err := i.evaluateExpression(n.Value, env)
		if err != nil {
			return err
		}
		result = val
	}
	return returnSignal{value: result}
}
