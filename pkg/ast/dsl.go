package ast

import (
	"fmt"

	"github.com/fcruzel/tlox/pkg/token"
)

// Helpers for building trees by hand, mostly in tests. Every helper returns a
// fresh node, so two calls never share identity.

var operatorTypes = map[string]token.Type{
	"-":   token.Minus,
	"+":   token.Plus,
	"/":   token.Slash,
	"*":   token.Star,
	"!":   token.Bang,
	"!=":  token.BangEqual,
	"==":  token.EqualEqual,
	">":   token.Greater,
	">=":  token.GreaterEqual,
	"<":   token.Less,
	"<=":  token.LessEqual,
	"and": token.And,
	"or":  token.Or,
}

// Tok returns an identifier token on line 1.
func Tok(name string) token.Token {
	return token.Ident(name, 1)
}

// Op returns the operator token for lexeme, panicking on unknown operators.
func Op(lexeme string) token.Token {
	typ, ok := operatorTypes[lexeme]
	if !ok {
		panic(fmt.Sprintf("ast: unknown operator %q", lexeme))
	}
	return token.New(typ, lexeme, 1)
}

func Num(value float64) *Literal {
	return NewLiteral(value)
}

func Str(value string) *Literal {
	return NewLiteral(value)
}

func Bool(value bool) *Literal {
	return NewLiteral(value)
}

func Nil() *Literal {
	return NewLiteral(nil)
}

func Group(inner Expression) *Grouping {
	return NewGrouping(inner)
}

func Un(op string, right Expression) *Unary {
	return NewUnary(Op(op), right)
}

func Bin(op string, left, right Expression) *Binary {
	return NewBinary(left, Op(op), right)
}

func Logic(op string, left, right Expression) *Logical {
	return NewLogical(left, Op(op), right)
}

func Var(name string) *Variable {
	return NewVariable(Tok(name))
}

func AssignTo(name string, value Expression) *Assign {
	return NewAssign(Tok(name), value)
}

func CallExpr(callee Expression, args ...Expression) *Call {
	return NewCall(callee, token.New(token.RightParen, ")", 1), args)
}

func GetProp(object Expression, name string) *Get {
	return NewGet(object, Tok(name))
}

func SetProp(object Expression, name string, value Expression) *Set {
	return NewSet(object, Tok(name), value)
}

func ThisExpr() *This {
	return NewThis(token.New(token.This, "this", 1))
}

func Expr(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func Print(expr Expression) *PrintStatement {
	return NewPrintStatement(token.New(token.Print, "print", 1), expr)
}

func Let(name string, initializer Expression) *LetStatement {
	return NewLetStatement(Tok(name), initializer)
}

func Block(statements ...Statement) *BlockStatement {
	return NewBlockStatement(statements)
}

func If(condition Expression, thenBranch, elseBranch Statement) *IfStatement {
	return NewIfStatement(condition, thenBranch, elseBranch)
}

func While(condition Expression, body Statement) *WhileStatement {
	return NewWhileStatement(condition, body)
}

func Fn(name string, params []string, body ...Statement) *FunctionStatement {
	toks := make([]token.Token, 0, len(params))
	for _, p := range params {
		toks = append(toks, Tok(p))
	}
	return NewFunctionStatement(Tok(name), toks, body)
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(token.New(token.Return, "return", 1), value)
}

func Class(name string, methods ...*FunctionStatement) *ClassStatement {
	return NewClassStatement(Tok(name), methods)
}

func Prog(statements ...Statement) *Program {
	return NewProgram(statements)
}
