package interpreter

import (
	"github.com/fcruzel/tlox/pkg/runtime"
	"github.com/fcruzel/tlox/pkg/token"
)

func evaluateBinaryOperator(op token.Token, left, right runtime.Value) (runtime.Value, error) {
	switch op.Type {
	case token.EqualEqual:
		return runtime.BoolValue{Val: runtime.Equal(left, right)}, nil
	case token.BangEqual:
		return runtime.BoolValue{Val: !runtime.Equal(left, right)}, nil
	case token.Plus:
		return evaluatePlus(op, left, right)
	}

	l, lok := left.(runtime.NumberValue)
	r, rok := right.(runtime.NumberValue)
	if !lok || !rok {
		return nil, runtime.NewError(op, "Operands must be numbers.")
	}
	switch op.Type {
	case token.Minus:
		return runtime.NumberValue{Val: l.Val - r.Val}, nil
	case token.Star:
		return runtime.NumberValue{Val: l.Val * r.Val}, nil
	case token.Slash:
		return runtime.NumberValue{Val: l.Val / r.Val}, nil
	case token.Greater:
		return runtime.BoolValue{Val: l.Val > r.Val}, nil
	case token.GreaterEqual:
		return runtime.BoolValue{Val: l.Val >= r.Val}, nil
	case token.Less:
		return runtime.BoolValue{Val: l.Val < r.Val}, nil
	case token.LessEqual:
		return runtime.BoolValue{Val: l.Val <= r.Val}, nil
	default:
		return nil, runtime.NewError(op, "Unsupported binary operator "+op.Lexeme+".")
	}
}

// evaluatePlus adds numbers, and concatenates as soon as either side is a
// string, stringifying the other side.
func evaluatePlus(op token.Token, left, right runtime.Value) (runtime.Value, error) {
	if l, ok := left.(runtime.NumberValue); ok {
		if r, ok := right.(runtime.NumberValue); ok {
			return runtime.NumberValue{Val: l.Val + r.Val}, nil
		}
	}
	_, lstr := left.(runtime.StringValue)
	_, rstr := right.(runtime.StringValue)
	if lstr || rstr {
		return runtime.StringValue{Val: valueToString(left) + valueToString(right)}, nil
	}
	return nil, runtime.NewError(op, "Operands must be two numbers or include a string.")
}
