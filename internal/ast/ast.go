// Package ast defines the node families of spec.md §3: tree-shaped
// Statement nodes (a Node/Statement hierarchy) and a flat
// RPN Expression-Unit vector for expressions,
// which the evaluator consumes against a Reference stack instead of
// walking a nested expression tree.
package ast

import (
	"bytes"
	"strings"

	"github.com/cwbudde/scriptcore/internal/lexer"
)

// Node is the base interface every AST node satisfies.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() lexer.Position
}

// Statement is a node that performs an action rather than producing a value.
type Statement interface {
	Node
	statementNode()
}

// Expr is a flat Expression-Unit sequence (spec.md §3): evaluating it
// against a Reference stack leaves exactly one Reference behind.
type Expr []Unit

func (e Expr) String() string {
	parts := make([]string, len(e))
	for i, u := range e {
		parts[i] = u.String()
	}
	return strings.Join(parts, " ")
}

func (e Expr) Pos() lexer.Position {
	if len(e) > 0 {
		return e[0].Pos()
	}
	return lexer.Position{Line: 1, Column: 1}
}

// Program is the root node: a bound top-level block (spec.md §6 — a
// Program is executed as a zero-parameter function whose __varg exposes
// the driver-supplied args).
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

func (p *Program) Pos() lexer.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return lexer.Position{Line: 1, Column: 1, Offset: 0}
}
