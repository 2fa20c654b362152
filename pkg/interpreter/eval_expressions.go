package interpreter

import (
	"fmt"

	"github.com/fcruzel/tlox/pkg/ast"
	"github.com/fcruzel/tlox/pkg/runtime"
	"github.com/fcruzel/tlox/pkg/token"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return runtime.FromLiteral(n.Value), nil
	case *ast.Grouping:
		return i.evaluateExpression(n.Inner, env)
	case *ast.Variable:
		return i.lookUpVariable(n.Name, n, env)
	case *ast.Assign:
		return i.evaluateAssign(n, env)
	case *ast.This:
		return i.lookUpVariable(n.Keyword, n, env)
	case *ast.Unary:
		return i.evaluateUnary(n, env)
	case *ast.Binary:
		return i.evaluateBinary(n, env)
	case *ast.Logical:
		return i.evaluateLogical(n, env)
	case *ast.Call:
		return i.evaluateCall(n, env)
	case *ast.Get:
		return i.evaluateGet(n, env)
	case *ast.Set:
		return i.evaluateSet(n, env)
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", node.NodeType())
	}
}

// lookUpVariable reads name at the distance the resolver fixed for expr, or
// from the globals when the resolver left no entry.
func (i *Interpreter) lookUpVariable(name token.Token, expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	if depth, ok := i.locals[expr]; ok {
		return env.GetAt(depth, name)
	}
	return i.global.Get(name)
}

func (i *Interpreter) evaluateAssign(n *ast.Assign, env *runtime.Environment) (runtime.Value, error) {
	value, err := i.evaluateExpression(n.Value, env)
	if err != nil {
		return nil, err
	}
	if depth, ok := i.locals[n]; ok {
		env.AssignAt(depth, n.Name, value)
		return value, nil
	}
	if err := i.global.Assign(n.Name, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (i *Interpreter) evaluateUnary(n *ast.Unary, env *runtime.Environment) (runtime.Value, error) {
	right, err := i.evaluateExpression(n.Right, env)
	if err != nil {
		return nil, err
	}
	switch n.Operator.Type {
	case token.Bang:
		return runtime.BoolValue{Val: !runtime.Truthy(right)}, nil
	case token.Minus:
		num, ok := right.(runtime.NumberValue)
		if !ok {
			return nil, runtime.NewError(n.Operator, "Operand must be a number.")
		}
		return runtime.NumberValue{Val: -num.Val}, nil
	default:
		return nil, runtime.NewError(n.Operator, fmt.Sprintf("Unsupported unary operator %s.", n.Operator.Lexeme))
	}
}

func (i *Interpreter) evaluateBinary(n *ast.Binary, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(n.Right, env)
	if err != nil {
		return nil, err
	}
	return evaluateBinaryOperator(n.Operator, left, right)
}

// evaluateLogical short-circuits and yields the operand that decided the
// result, not a coerced boolean.
func (i *Interpreter) evaluateLogical(n *ast.Logical, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(n.Left, env)
	if err != nil {
		return nil, err
	}
	if n.Operator.Type == token.Or {
		if runtime.Truthy(left) {
			return left, nil
		}
	} else if !runtime.Truthy(left) {
		return left, nil
	}
	return i.evaluateExpression(n.Right, env)
}
