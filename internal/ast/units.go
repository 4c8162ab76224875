package ast

import (
	"fmt"
	"strings"

	"github.com/cwbudde/scriptcore/internal/lexer"
	"github.com/cwbudde/scriptcore/internal/ref"
	"github.com/cwbudde/scriptcore/internal/value"
)

// Unit is one entry in a flat Expression-Unit vector (spec.md §3/§4.7).
type Unit interface {
	Node
	unitNode()
}

// Opcode enumerates every operator-rpn dispatch the evaluator recognizes
// (spec.md §4.5's precedence table and §4.7's operator semantics). Logical
// `&&`/`||`/`and`/`or` and the ternary/`??` are deliberately absent here —
// the parser lowers those to Branch/Coalescence units instead, since they
// need short-circuit sub-expression evaluation rather than a pop-two-push-one
// dispatch.
type Opcode int

const (
	OpAdd Opcode = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl  // <<  arithmetic left shift
	OpShr  // >>  arithmetic right shift
	OpUshl // <<< logical left shift
	OpUshr // >>> logical right shift
	OpBitAnd
	OpBitXor
	OpBitOr
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpSpaceship // <=>

	OpNeg      // unary -
	OpPos      // unary +
	OpBitNot   // ~
	OpNot      // ! / not
	OpPreInc   // ++x
	OpPreDec   // --x
	OpPostInc  // x++
	OpPostDec  // x--
	OpUnset    // prefix unset
	OpLengthOf // lengthof
	OpTypeOf   // typeof

	OpAbs
	OpSqrt
	OpSignb
	OpIsNan
	OpIsInf
	OpRound
	OpFloor
	OpCeil
	OpTrunc
	OpIRound
	OpIFloor
	OpICeil
	OpITrunc
	OpFma // ternary: fma(a, b, c)

	OpIndex       // a[i] — pops index value, pops array/object reference, pushes zoomed reference
	OpMaterialize // "prefix-pos": pop a reference, push a materialized temporary copy of its value
	OpAssign      // plain `=`: always carries Assign=true: write right through left, keep left's identity
)

var opcodeStrings = map[Opcode]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpShl: "<<", OpShr: ">>", OpUshl: "<<<", OpUshr: ">>>",
	OpBitAnd: "&", OpBitXor: "^", OpBitOr: "|",
	OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=", OpEq: "==", OpNe: "!=", OpSpaceship: "<=>",
	OpNeg: "neg", OpPos: "pos", OpBitNot: "~", OpNot: "!",
	OpPreInc: "++x", OpPreDec: "--x", OpPostInc: "x++", OpPostDec: "x--",
	OpUnset: "unset", OpLengthOf: "lengthof", OpTypeOf: "typeof",
	OpAbs: "__abs", OpSqrt: "__sqrt", OpSignb: "__signb", OpIsNan: "__isnan", OpIsInf: "__isinf",
	OpRound: "__round", OpFloor: "__floor", OpCeil: "__ceil", OpTrunc: "__trunc",
	OpIRound: "__iround", OpIFloor: "__ifloor", OpICeil: "__iceil", OpITrunc: "__itrunc",
	OpFma: "__fma", OpIndex: "[]", OpMaterialize: "prefix-pos", OpAssign: "=",
}

func (o Opcode) String() string {
	if s, ok := opcodeStrings[o]; ok {
		return s
	}
	return fmt.Sprintf("opcode(%d)", int(o))
}

// Literal pushes a constant-root reference wrapping a fixed Value.
type Literal struct {
	Position lexer.Position
	Value    value.Value
}

func (l *Literal) unitNode()               {}
func (l *Literal) Pos() lexer.Position     { return l.Position }
func (l *Literal) TokenLiteral() string    { return l.Value.Dump() }
func (l *Literal) String() string          { return l.Value.Dump() }

// NamedReference looks a name up through the context chain at evaluation
// time (the binder could not resolve it to a run-time scope ahead of time).
type NamedReference struct {
	Position lexer.Position
	Name     string
}

func (n *NamedReference) unitNode()            {}
func (n *NamedReference) Pos() lexer.Position  { return n.Position }
func (n *NamedReference) TokenLiteral() string { return n.Name }
func (n *NamedReference) String() string       { return n.Name }

// BoundReference carries a Reference captured during analytic binding
// (spec.md §4.6): produced per function instantiation, never shared across
// instantiations, so embedding a live *ref.Reference here is safe.
type BoundReference struct {
	Position lexer.Position
	Name     string
	Ref      *ref.Reference
}

func (b *BoundReference) unitNode()            {}
func (b *BoundReference) Pos() lexer.Position  { return b.Position }
func (b *BoundReference) TokenLiteral() string { return b.Name }
func (b *BoundReference) String() string       { return "bound:" + b.Name }

// ClosureFunction binds Body against the current context and wraps
// Header+bound-body in a function value, pushed as a temporary.
type ClosureFunction struct {
	Position lexer.Position
	Header   *FunctionHeader
	Body     *Block
}

func (c *ClosureFunction) unitNode()            {}
func (c *ClosureFunction) Pos() lexer.Position  { return c.Position }
func (c *ClosureFunction) TokenLiteral() string { return "func" }
func (c *ClosureFunction) String() string       { return "func" + c.Header.String() + " " + c.Body.String() }

// FunctionHeader is the declared shape of a function: its name (empty for
// an anonymous closure), its parameter names, and whether the last
// parameter is variadic (`...`).
type FunctionHeader struct {
	Position  lexer.Position
	Name      string
	Params    []string
	Variadic  bool
}

func (h *FunctionHeader) String() string {
	params := strings.Join(h.Params, ", ")
	if h.Variadic {
		if params != "" {
			params += ", "
		}
		params += "..."
	}
	return "(" + params + ")"
}

// FunctionCall pops ArgCount argument references then the callee
// reference, verifies the callee holds a function Value, and invokes it.
type FunctionCall struct {
	Position lexer.Position
	ArgCount int
	// ByRef[i] reports whether argument i was prefixed with `&` (pass the
	// caller's own Reference) rather than materialized via OpMaterialize
	// before the call (spec.md §4.5).
	ByRef []bool
}

func (f *FunctionCall) unitNode()            {}
func (f *FunctionCall) Pos() lexer.Position  { return f.Position }
func (f *FunctionCall) TokenLiteral() string { return "(call)" }
func (f *FunctionCall) String() string       { return fmt.Sprintf("call(%d)", f.ArgCount) }

// MemberAccess pushes a zoomed-in reference using a compile-time-known key
// (`.key`); dynamic subscripting (`a[expr]`) instead pushes the index
// expression's units followed by an OperatorRPN{Op: OpIndex}.
type MemberAccess struct {
	Position lexer.Position
	Key      string
}

func (m *MemberAccess) unitNode()            {}
func (m *MemberAccess) Pos() lexer.Position  { return m.Position }
func (m *MemberAccess) TokenLiteral() string { return m.Key }
func (m *MemberAccess) String() string       { return "." + m.Key }

// UnnamedArray pops ElementCount values (materialized, left to right) and
// pushes a temporary array Reference.
type UnnamedArray struct {
	Position     lexer.Position
	ElementCount int
}

func (u *UnnamedArray) unitNode()            {}
func (u *UnnamedArray) Pos() lexer.Position  { return u.Position }
func (u *UnnamedArray) TokenLiteral() string { return "[" }
func (u *UnnamedArray) String() string       { return fmt.Sprintf("array(%d)", u.ElementCount) }

// UnnamedObject pops len(Keys) values (in Keys order) and pushes a
// temporary object Reference.
type UnnamedObject struct {
	Position lexer.Position
	Keys     []string
}

func (u *UnnamedObject) unitNode()            {}
func (u *UnnamedObject) Pos() lexer.Position  { return u.Position }
func (u *UnnamedObject) TokenLiteral() string { return "{" }
func (u *UnnamedObject) String() string {
	return "object(" + strings.Join(u.Keys, ",") + ")"
}

// OperatorRPN dispatches on Op (spec.md §4.7). Assign is set when the
// source used a compound-assignment form (e.g. `+=`): the evaluator writes
// the result back through the left operand instead of producing a bare
// temporary.
type OperatorRPN struct {
	Position lexer.Position
	Op       Opcode
	Assign   bool
}

func (o *OperatorRPN) unitNode()            {}
func (o *OperatorRPN) Pos() lexer.Position  { return o.Position }
func (o *OperatorRPN) TokenLiteral() string { return o.Op.String() }
func (o *OperatorRPN) String() string {
	if o.Assign {
		return o.Op.String() + "="
	}
	return o.Op.String()
}

// Branch implements `?:`, `&&`/`and`, `||`/`or`: the condition already on
// top of the stack selects True or False, which is a complete
// sub-expression evaluated against the same stack. An empty False models
// `a && b` (false branch is just "keep the falsy condition"); an empty
// True models `a || b` symmetrically.
type Branch struct {
	Position lexer.Position
	True     Expr
	False    Expr
	Assign   bool
}

func (b *Branch) unitNode()            {}
func (b *Branch) Pos() lexer.Position  { return b.Position }
func (b *Branch) TokenLiteral() string { return "?:" }
func (b *Branch) String() string       { return "(" + b.True.String() + " : " + b.False.String() + ")" }

// Coalescence implements `??`: if the condition on top of the stack is
// null, evaluate Right against the same stack and replace the top.
type Coalescence struct {
	Position lexer.Position
	Right    Expr
	Assign   bool
}

func (c *Coalescence) unitNode()            {}
func (c *Coalescence) Pos() lexer.Position  { return c.Position }
func (c *Coalescence) TokenLiteral() string { return "??" }
func (c *Coalescence) String() string       { return "(?? " + c.Right.String() + ")" }
