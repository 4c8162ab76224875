package ast

import (
	"testing"

	"github.com/cwbudde/scriptcore/internal/lexer"
	"github.com/cwbudde/scriptcore/internal/value"
)

func TestProgramString(t *testing.T) {
	prog := &Program{
		Statements: []Statement{
			&ReturnStatement{Expr: Expr{&Literal{Value: value.NewInt(7)}}},
		},
	}
	if got := prog.String(); got == "" {
		t.Fatal("expected non-empty program rendering")
	}
}

func TestExprPosUsesFirstUnit(t *testing.T) {
	pos := lexer.Position{Line: 3, Column: 5}
	e := Expr{&Literal{Position: pos, Value: value.NewInt(1)}}
	if got := e.Pos(); got != pos {
		t.Fatalf("expected %v, got %v", pos, got)
	}
}

func TestOpcodeString(t *testing.T) {
	if OpAdd.String() != "+" {
		t.Fatalf("expected +, got %s", OpAdd.String())
	}
	if OpSpaceship.String() != "<=>" {
		t.Fatalf("expected <=>, got %s", OpSpaceship.String())
	}
}

func TestSwitchClauseDefaultHasNilExpr(t *testing.T) {
	sw := &SwitchStatement{
		Control: Expr{&Literal{Value: value.NewInt(2)}},
		Clauses: []*SwitchClause{
			{Expr: Expr{&Literal{Value: value.NewInt(1)}}, Body: nil},
			{Expr: nil, Body: nil},
		},
	}
	if sw.Clauses[1].Expr != nil {
		t.Fatal("expected default clause to have a nil Expr")
	}
	if sw.String() == "" {
		t.Fatal("expected non-empty rendering")
	}
}

func TestLoopTargetString(t *testing.T) {
	if TargetWhile.String() != "while" {
		t.Fatalf("expected while, got %s", TargetWhile.String())
	}
	if TargetUnspecified.String() != "" {
		t.Fatalf("expected empty string for unspecified target, got %q", TargetUnspecified.String())
	}
}
