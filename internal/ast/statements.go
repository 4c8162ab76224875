package ast

import (
	"bytes"
	"strings"

	"github.com/cwbudde/scriptcore/internal/lexer"
)

// LoopTarget discriminates which construct an unlabeled break/continue
// unwinds (spec.md §4.8): an unspecified target in a switch arm exits only
// the switch; unspecified in a loop exits only that loop.
type LoopTarget int

const (
	TargetUnspecified LoopTarget = iota
	TargetSwitch
	TargetWhile
	TargetFor
)

func (t LoopTarget) String() string {
	switch t {
	case TargetSwitch:
		return "switch"
	case TargetWhile:
		return "while"
	case TargetFor:
		return "for"
	default:
		return ""
	}
}

// ExpressionStatement evaluates Expr for effect and discards the result.
type ExpressionStatement struct {
	Position lexer.Position
	Expr     Expr
}

func (s *ExpressionStatement) statementNode()       {}
func (s *ExpressionStatement) Pos() lexer.Position  { return s.Position }
func (s *ExpressionStatement) TokenLiteral() string { return "expr" }
func (s *ExpressionStatement) String() string       { return s.Expr.String() + ";" }

// Block is a braced statement list; executing it opens a child executive
// context and destroys it on exit (spec.md §4.8).
type Block struct {
	Position   lexer.Position
	Statements []Statement
}

func (b *Block) statementNode()       {}
func (b *Block) Pos() lexer.Position  { return b.Position }
func (b *Block) TokenLiteral() string { return "{" }
func (b *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{\n")
	for _, s := range b.Statements {
		out.WriteString("  ")
		out.WriteString(strings.ReplaceAll(s.String(), "\n", "\n  "))
		out.WriteString("\n")
	}
	out.WriteString("}")
	return out.String()
}

// VarDecl declares one or more names in the current context, each with its
// own initializer expression (spec.md §4.8): the slot is pre-declared as
// null before the initializer runs, so self-reference in the initializer
// sees null rather than an undeclared-name error.
type VarDecl struct {
	Position     lexer.Position
	Names        []string
	Initializers []Expr // Initializers[i] may be nil (no initializer -> stays null)
	Const        bool
}

func (v *VarDecl) statementNode()       {}
func (v *VarDecl) Pos() lexer.Position  { return v.Position }
func (v *VarDecl) TokenLiteral() string { return "var" }
func (v *VarDecl) String() string {
	kw := "var"
	if v.Const {
		kw = "const"
	}
	return kw + " " + strings.Join(v.Names, ", ") + ";"
}

// FuncDecl declares Name as a constant slot whose value is the closure of
// Body against the defining context (spec.md §4.8: identical to VarDecl
// with a closure-function initializer and an implicit const flag).
type FuncDecl struct {
	Position lexer.Position
	Header   *FunctionHeader
	Body     *Block
}

func (f *FuncDecl) statementNode()       {}
func (f *FuncDecl) Pos() lexer.Position  { return f.Position }
func (f *FuncDecl) TokenLiteral() string { return "func" }
func (f *FuncDecl) String() string {
	return "func " + f.Header.Name + f.Header.String() + " " + f.Body.String()
}

// IfStatement evaluates Condition, applies Negate, and runs Then or Else.
type IfStatement struct {
	Position  lexer.Position
	Condition Expr
	Negate    bool
	Then      Statement
	Else      Statement
}

func (i *IfStatement) statementNode()       {}
func (i *IfStatement) Pos() lexer.Position  { return i.Position }
func (i *IfStatement) TokenLiteral() string { return "if" }
func (i *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	if i.Negate {
		out.WriteString("!")
	}
	out.WriteString(i.Condition.String())
	out.WriteString(") ")
	out.WriteString(i.Then.String())
	if i.Else != nil {
		out.WriteString(" else ")
		out.WriteString(i.Else.String())
	}
	return out.String()
}

// SwitchClause is one `case`/`default` arm. Expr is nil for `default`.
type SwitchClause struct {
	Expr Expr // nil => default
	Body []Statement
}

// SwitchStatement implements spec.md §4.8's fall-through semantics: every
// clause shares one nested context (so a variable declared under an
// earlier case is visible to a later one reached by fall-through), and at
// most one clause may have a nil Expr (the default).
type SwitchStatement struct {
	Position lexer.Position
	Control  Expr
	Clauses  []*SwitchClause
}

func (s *SwitchStatement) statementNode()       {}
func (s *SwitchStatement) Pos() lexer.Position  { return s.Position }
func (s *SwitchStatement) TokenLiteral() string { return "switch" }
func (s *SwitchStatement) String() string {
	var out bytes.Buffer
	out.WriteString("switch (")
	out.WriteString(s.Control.String())
	out.WriteString(") {")
	for _, c := range s.Clauses {
		if c.Expr == nil {
			out.WriteString(" default:")
		} else {
			out.WriteString(" case " + c.Expr.String() + ":")
		}
	}
	out.WriteString(" }")
	return out.String()
}

// DoWhileStatement runs Body, then evaluates Condition (with Negate
// applied), repeating while truthy.
type DoWhileStatement struct {
	Position  lexer.Position
	Body      Statement
	Condition Expr
	Negate    bool
}

func (d *DoWhileStatement) statementNode()       {}
func (d *DoWhileStatement) Pos() lexer.Position  { return d.Position }
func (d *DoWhileStatement) TokenLiteral() string { return "do" }
func (d *DoWhileStatement) String() string {
	return "do " + d.Body.String() + " while (" + d.Condition.String() + ");"
}

// WhileStatement evaluates Condition before each iteration of Body.
type WhileStatement struct {
	Position  lexer.Position
	Condition Expr
	Body      Statement
}

func (w *WhileStatement) statementNode()       {}
func (w *WhileStatement) Pos() lexer.Position  { return w.Position }
func (w *WhileStatement) TokenLiteral() string { return "while" }
func (w *WhileStatement) String() string {
	return "while (" + w.Condition.String() + ") " + w.Body.String()
}

// ForStatement is the three-clause C-style for loop (spec.md §4.8): Init
// runs once in a fresh scope that also encloses Condition, Step, and Body;
// a nil Condition means "always true".
type ForStatement struct {
	Position  lexer.Position
	Init      Statement // may be nil
	Condition Expr      // may be nil
	Step      Expr      // may be nil
	Body      Statement
}

func (f *ForStatement) statementNode()       {}
func (f *ForStatement) Pos() lexer.Position  { return f.Position }
func (f *ForStatement) TokenLiteral() string { return "for" }
func (f *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if f.Init != nil {
		out.WriteString(f.Init.String())
	}
	out.WriteString(" ")
	if f.Condition != nil {
		out.WriteString(f.Condition.String())
	}
	out.WriteString("; ")
	if f.Step != nil {
		out.WriteString(f.Step.String())
	}
	out.WriteString(") ")
	out.WriteString(f.Body.String())
	return out.String()
}

// ForEachStatement iterates Range (must evaluate to array or object): for
// an array, KeyName binds the integer index and ValueName a live reference
// into the element; for an object, KeyName binds the string member name
// (spec.md §4.8).
type ForEachStatement struct {
	Position  lexer.Position
	KeyName   string
	ValueName string
	Range     Expr
	Body      Statement
}

func (f *ForEachStatement) statementNode()       {}
func (f *ForEachStatement) Pos() lexer.Position  { return f.Position }
func (f *ForEachStatement) TokenLiteral() string { return "for" }
func (f *ForEachStatement) String() string {
	return "for each(" + f.KeyName + ", " + f.ValueName + " : " + f.Range.String() + ") " + f.Body.String()
}

// TryStatement binds a thrown value to ExceptionName (plus the reserved
// __backtrace) in a fresh catch scope and runs Catch (spec.md §4.8).
type TryStatement struct {
	Position      lexer.Position
	Body          *Block
	ExceptionName string
	Catch         *Block
}

func (t *TryStatement) statementNode()       {}
func (t *TryStatement) Pos() lexer.Position  { return t.Position }
func (t *TryStatement) TokenLiteral() string { return "try" }
func (t *TryStatement) String() string {
	return "try " + t.Body.String() + " catch (" + t.ExceptionName + ") " + t.Catch.String()
}

// BreakStatement unwinds to the nearest construct matching Target.
type BreakStatement struct {
	Position lexer.Position
	Target   LoopTarget
}

func (b *BreakStatement) statementNode()       {}
func (b *BreakStatement) Pos() lexer.Position  { return b.Position }
func (b *BreakStatement) TokenLiteral() string { return "break" }
func (b *BreakStatement) String() string       { return "break;" }

// ContinueStatement re-enters the next iteration of the nearest construct
// matching Target (switch is not a valid Continue target).
type ContinueStatement struct {
	Position lexer.Position
	Target   LoopTarget
}

func (c *ContinueStatement) statementNode()       {}
func (c *ContinueStatement) Pos() lexer.Position  { return c.Position }
func (c *ContinueStatement) TokenLiteral() string { return "continue" }
func (c *ContinueStatement) String() string       { return "continue;" }

// ThrowStatement evaluates Expr and unwinds carrying it as the thrown value.
type ThrowStatement struct {
	Position lexer.Position
	Expr     Expr
}

func (t *ThrowStatement) statementNode()       {}
func (t *ThrowStatement) Pos() lexer.Position  { return t.Position }
func (t *ThrowStatement) TokenLiteral() string { return "throw" }
func (t *ThrowStatement) String() string       { return "throw " + t.Expr.String() + ";" }

// ReturnStatement evaluates Expr (nil => return null) and produces the
// `return` status. ByRef mirrors the `&` call-argument convention: when
// set, the caller receives the callee's own Reference rather than a
// materialized copy.
type ReturnStatement struct {
	Position lexer.Position
	Expr     Expr // may be nil
	ByRef    bool
}

func (r *ReturnStatement) statementNode()       {}
func (r *ReturnStatement) Pos() lexer.Position  { return r.Position }
func (r *ReturnStatement) TokenLiteral() string { return "return" }
func (r *ReturnStatement) String() string {
	if r.Expr == nil {
		return "return;"
	}
	return "return " + r.Expr.String() + ";"
}

// AssertStatement throws if Expr is falsy (or truthy, when Negate is set),
// with Message (optional) appended to the diagnostic.
type AssertStatement struct {
	Position lexer.Position
	Expr     Expr
	Message  Expr // may be nil
	Negate   bool
}

func (a *AssertStatement) statementNode()       {}
func (a *AssertStatement) Pos() lexer.Position  { return a.Position }
func (a *AssertStatement) TokenLiteral() string { return "assert" }
func (a *AssertStatement) String() string       { return "assert(" + a.Expr.String() + ");" }

// DeferStatement registers a zero-argument closure on the enclosing
// function's scope; callbacks run LIFO when that function's top-level
// scope unwinds (supplemented feature, SPEC_FULL.md §C, grounded on
// Asteria's Scope::defer_callback).
type DeferStatement struct {
	Position lexer.Position
	Expr     Expr // must evaluate to a function value; a trailing zero-argument call is dropped at execution
}

func (d *DeferStatement) statementNode()       {}
func (d *DeferStatement) Pos() lexer.Position  { return d.Position }
func (d *DeferStatement) TokenLiteral() string { return "defer" }
func (d *DeferStatement) String() string       { return "defer " + d.Expr.String() + ";" }
