package ast

import "github.com/fcruzel/tlox/pkg/token"

// Statements

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

// PrintStatement prints Expression, or an empty line when it is nil.
type PrintStatement struct {
	nodeImpl
	statementMarker

	Keyword    token.Token `json:"keyword"`
	Expression Expression  `json:"expression,omitempty"`
}

func NewPrintStatement(keyword token.Token, expr Expression) *PrintStatement {
	return &PrintStatement{nodeImpl: newNodeImpl(NodePrintStatement), Keyword: keyword, Expression: expr}
}

type LetStatement struct {
	nodeImpl
	statementMarker

	Name        token.Token `json:"name"`
	Initializer Expression  `json:"initializer,omitempty"`
}

func NewLetStatement(name token.Token, initializer Expression) *LetStatement {
	return &LetStatement{nodeImpl: newNodeImpl(NodeLetStatement), Name: name, Initializer: initializer}
}

type BlockStatement struct {
	nodeImpl
	statementMarker

	Statements []Statement `json:"statements"`
}

func NewBlockStatement(statements []Statement) *BlockStatement {
	return &BlockStatement{nodeImpl: newNodeImpl(NodeBlockStatement), Statements: statements}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition  Expression `json:"condition"`
	ThenBranch Statement  `json:"thenBranch"`
	ElseBranch Statement  `json:"elseBranch,omitempty"`
}

func NewIfStatement(condition Expression, thenBranch, elseBranch Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

type WhileStatement struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Body      Statement  `json:"body"`
}

func NewWhileStatement(condition Expression, body Statement) *WhileStatement {
	return &WhileStatement{nodeImpl: newNodeImpl(NodeWhileStatement), Condition: condition, Body: body}
}

// FunctionStatement declares a named function, or a method when it appears
// inside a ClassStatement.
type FunctionStatement struct {
	nodeImpl
	statementMarker

	Name   token.Token   `json:"name"`
	Params []token.Token `json:"params"`
	Body   []Statement   `json:"body"`
}

func NewFunctionStatement(name token.Token, params []token.Token, body []Statement) *FunctionStatement {
	return &FunctionStatement{nodeImpl: newNodeImpl(NodeFunctionStatement), Name: name, Params: params, Body: body}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Keyword token.Token `json:"keyword"`
	Value   Expression  `json:"value,omitempty"`
}

func NewReturnStatement(keyword token.Token, value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Keyword: keyword, Value: value}
}

type ClassStatement struct {
	nodeImpl
	statementMarker

	Name    token.Token          `json:"name"`
	Methods []*FunctionStatement `json:"methods"`
}

func NewClassStatement(name token.Token, methods []*FunctionStatement) *ClassStatement {
	return &ClassStatement{nodeImpl: newNodeImpl(NodeClassStatement), Name: name, Methods: methods}
}
