package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Sprint renders a node as a parenthesised prefix form, e.g. `(+ 1 (* 2 3))`.
// It is used by parser tests and by `tlox check --ast`.
func Sprint(node Node) string {
	var b strings.Builder
	printNode(&b, node)
	return b.String()
}

// SprintProgram renders every top-level statement on its own line.
func SprintProgram(program *Program) string {
	if program == nil {
		return ""
	}
	lines := make([]string, len(program.Statements))
	for i, stmt := range program.Statements {
		lines[i] = Sprint(stmt)
	}
	return strings.Join(lines, "\n")
}

func printNode(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Literal:
		b.WriteString(literalText(n.Value))
	case *Grouping:
		parenthesize(b, "group", n.Inner)
	case *Unary:
		parenthesize(b, n.Operator.Lexeme, n.Right)
	case *Binary:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *Logical:
		parenthesize(b, n.Operator.Lexeme, n.Left, n.Right)
	case *Variable:
		b.WriteString(n.Name.Lexeme)
	case *Assign:
		parenthesize(b, "= "+n.Name.Lexeme, n.Value)
	case *Call:
		nodes := make([]Node, 0, len(n.Arguments)+1)
		nodes = append(nodes, n.Callee)
		for _, arg := range n.Arguments {
			nodes = append(nodes, arg)
		}
		parenthesize(b, "call", nodes...)
	case *Get:
		parenthesize(b, "."+n.Name.Lexeme, n.Object)
	case *Set:
		parenthesize(b, "set ."+n.Name.Lexeme, n.Object, n.Value)
	case *This:
		b.WriteString("this")
	case *ExpressionStatement:
		parenthesize(b, ";", n.Expression)
	case *PrintStatement:
		if n.Expression == nil {
			b.WriteString("(print)")
			return
		}
		parenthesize(b, "print", n.Expression)
	case *LetStatement:
		if n.Initializer == nil {
			fmt.Fprintf(b, "(let %s)", n.Name.Lexeme)
			return
		}
		parenthesize(b, "let "+n.Name.Lexeme, n.Initializer)
	case *BlockStatement:
		parenthesize(b, "block", statementNodes(n.Statements)...)
	case *IfStatement:
		if n.ElseBranch == nil {
			parenthesize(b, "if", n.Condition, n.ThenBranch)
			return
		}
		parenthesize(b, "if", n.Condition, n.ThenBranch, n.ElseBranch)
	case *WhileStatement:
		parenthesize(b, "while", n.Condition, n.Body)
	case *FunctionStatement:
		printFunction(b, "fn", n)
	case *ReturnStatement:
		if n.Value == nil {
			b.WriteString("(return)")
			return
		}
		parenthesize(b, "return", n.Value)
	case *ClassStatement:
		fmt.Fprintf(b, "(class %s", n.Name.Lexeme)
		for _, m := range n.Methods {
			b.WriteByte(' ')
			printFunction(b, "method", m)
		}
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<%s>", node.NodeType())
	}
}

func printFunction(b *strings.Builder, kind string, fn *FunctionStatement) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Lexeme
	}
	fmt.Fprintf(b, "(%s %s (%s)", kind, fn.Name.Lexeme, strings.Join(params, " "))
	for _, stmt := range fn.Body {
		b.WriteByte(' ')
		printNode(b, stmt)
	}
	b.WriteByte(')')
}

func parenthesize(b *strings.Builder, name string, nodes ...Node) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, n := range nodes {
		b.WriteByte(' ')
		printNode(b, n)
	}
	b.WriteByte(')')
}

func statementNodes(stmts []Statement) []Node {
	out := make([]Node, len(stmts))
	for i, s := range stmts {
		out[i] = s
	}
	return out
}

func literalText(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return strconv.Quote(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
