package ast

import "github.com/fcruzel/tlox/pkg/token"

type NodeType string

const (
	NodeLiteral             NodeType = "Literal"
	NodeGrouping            NodeType = "Grouping"
	NodeUnary               NodeType = "Unary"
	NodeBinary              NodeType = "Binary"
	NodeLogical             NodeType = "Logical"
	NodeVariable            NodeType = "Variable"
	NodeAssign              NodeType = "Assign"
	NodeCall                NodeType = "Call"
	NodeGet                 NodeType = "Get"
	NodeSet                 NodeType = "Set"
	NodeThis                NodeType = "This"
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodePrintStatement      NodeType = "PrintStatement"
	NodeLetStatement        NodeType = "LetStatement"
	NodeBlockStatement      NodeType = "BlockStatement"
	NodeIfStatement         NodeType = "IfStatement"
	NodeWhileStatement      NodeType = "WhileStatement"
	NodeFunctionStatement   NodeType = "FunctionStatement"
	NodeReturnStatement     NodeType = "ReturnStatement"
	NodeClassStatement      NodeType = "ClassStatement"
)

// Node is implemented by every expression and statement variant. Nodes are
// always handled through pointers; the pointer is the node's identity.
type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Program is the unit handed to the resolver and the interpreter.
type Program struct {
	Statements []Statement `json:"statements"`
}

func NewProgram(statements []Statement) *Program {
	return &Program{Statements: statements}
}

// Expressions

// Literal holds nil, a bool, a float64 or a string.
type Literal struct {
	nodeImpl
	expressionMarker

	Value any `json:"value"`
}

func NewLiteral(value any) *Literal {
	return &Literal{nodeImpl: newNodeImpl(NodeLiteral), Value: value}
}

type Grouping struct {
	nodeImpl
	expressionMarker

	Inner Expression `json:"inner"`
}

func NewGrouping(inner Expression) *Grouping {
	return &Grouping{nodeImpl: newNodeImpl(NodeGrouping), Inner: inner}
}

type Unary struct {
	nodeImpl
	expressionMarker

	Operator token.Token `json:"operator"`
	Right    Expression  `json:"right"`
}

func NewUnary(operator token.Token, right Expression) *Unary {
	return &Unary{nodeImpl: newNodeImpl(NodeUnary), Operator: operator, Right: right}
}

type Binary struct {
	nodeImpl
	expressionMarker

	Left     Expression  `json:"left"`
	Operator token.Token `json:"operator"`
	Right    Expression  `json:"right"`
}

func NewBinary(left Expression, operator token.Token, right Expression) *Binary {
	return &Binary{nodeImpl: newNodeImpl(NodeBinary), Left: left, Operator: operator, Right: right}
}

// Logical is a short-circuiting `and` / `or`.
type Logical struct {
	nodeImpl
	expressionMarker

	Left     Expression  `json:"left"`
	Operator token.Token `json:"operator"`
	Right    Expression  `json:"right"`
}

func NewLogical(left Expression, operator token.Token, right Expression) *Logical {
	return &Logical{nodeImpl: newNodeImpl(NodeLogical), Left: left, Operator: operator, Right: right}
}

type Variable struct {
	nodeImpl
	expressionMarker

	Name token.Token `json:"name"`
}

func NewVariable(name token.Token) *Variable {
	return &Variable{nodeImpl: newNodeImpl(NodeVariable), Name: name}
}

type Assign struct {
	nodeImpl
	expressionMarker

	Name  token.Token `json:"name"`
	Value Expression  `json:"value"`
}

func NewAssign(name token.Token, value Expression) *Assign {
	return &Assign{nodeImpl: newNodeImpl(NodeAssign), Name: name, Value: value}
}

// Call keeps the closing paren token so runtime errors can point at the call site.
type Call struct {
	nodeImpl
	expressionMarker

	Callee    Expression   `json:"callee"`
	Paren     token.Token  `json:"paren"`
	Arguments []Expression `json:"arguments"`
}

func NewCall(callee Expression, paren token.Token, arguments []Expression) *Call {
	return &Call{nodeImpl: newNodeImpl(NodeCall), Callee: callee, Paren: paren, Arguments: arguments}
}

type Get struct {
	nodeImpl
	expressionMarker

	Object Expression  `json:"object"`
	Name   token.Token `json:"name"`
}

func NewGet(object Expression, name token.Token) *Get {
	return &Get{nodeImpl: newNodeImpl(NodeGet), Object: object, Name: name}
}

type Set struct {
	nodeImpl
	expressionMarker

	Object Expression  `json:"object"`
	Name   token.Token `json:"name"`
	Value  Expression  `json:"value"`
}

func NewSet(object Expression, name token.Token, value Expression) *Set {
	return &Set{nodeImpl: newNodeImpl(NodeSet), Object: object, Name: name, Value: value}
}

type This struct {
	nodeImpl
	expressionMarker

	Keyword token.Token `json:"keyword"`
}

func NewThis(keyword token.Token) *This {
	return &This{nodeImpl: newNodeImpl(NodeThis), Keyword: keyword}
}
