package ast

import "testing"

func TestNodeTypesAreTagged(t *testing.T) {
	cases := []struct {
		node Node
		want NodeType
	}{
		{Num(1), NodeLiteral},
		{Group(Num(1)), NodeGrouping},
		{Un("-", Num(1)), NodeUnary},
		{Bin("+", Num(1), Num(2)), NodeBinary},
		{Logic("or", Bool(true), Bool(false)), NodeLogical},
		{Var("x"), NodeVariable},
		{AssignTo("x", Num(1)), NodeAssign},
		{CallExpr(Var("f")), NodeCall},
		{GetProp(Var("o"), "f"), NodeGet},
		{SetProp(Var("o"), "f", Nil()), NodeSet},
		{ThisExpr(), NodeThis},
		{Expr(Num(1)), NodeExpressionStatement},
		{Print(nil), NodePrintStatement},
		{Let("x", nil), NodeLetStatement},
		{Block(), NodeBlockStatement},
		{If(Bool(true), Block(), nil), NodeIfStatement},
		{While(Bool(false), Block()), NodeWhileStatement},
		{Fn("f", nil), NodeFunctionStatement},
		{Ret(nil), NodeReturnStatement},
		{Class("C"), NodeClassStatement},
	}
	for _, tc := range cases {
		if got := tc.node.NodeType(); got != tc.want {
			t.Fatalf("NodeType() = %s, want %s", got, tc.want)
		}
	}
}

func TestHelpersProduceDistinctIdentities(t *testing.T) {
	a := Var("x")
	b := Var("x")
	if Expression(a) == Expression(b) {
		t.Fatalf("expected separate variable nodes to have distinct identity")
	}
	table := map[Expression]int{a: 0, b: 1}
	if len(table) != 2 {
		t.Fatalf("expected two table entries, got %d", len(table))
	}
}

func TestOpPanicsOnUnknownOperator(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown operator")
		}
	}()
	Op("%")
}
