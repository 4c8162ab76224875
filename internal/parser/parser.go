// Package parser implements scriptcore's recursive-descent statement parser
// and precedence-climbing expression engine (spec.md §4.5): statements
// build the tree-shaped ast.Statement family directly; expressions are
// flattened into ast.Expr (a flat Expression-Unit vector) as they parse,
// rather than built as a tree and flattened afterward.
package parser

import (
	"fmt"

	"github.com/cwbudde/scriptcore/internal/ast"
	"github.com/cwbudde/scriptcore/internal/diag"
	"github.com/cwbudde/scriptcore/internal/lexer"
)

// Precedence levels, lowest to highest (spec.md §4.5's table, reversed).
// All assignment forms and the ternary share the lowest level and are
// right-associative. `??`, `||` and `&&` also group to the right (which
// gives the same result); every other level is left-associative.
const (
	_ int = iota
	LOWEST
	ASSIGN_TERNARY // = += -= ... ?: ?= ??= ||= &&= |= ^= &=
	COALESCE       // ??
	LOGICAL_OR     // || or
	LOGICAL_AND    // && and
	BIT_OR         // |
	BIT_XOR        // ^
	BIT_AND        // &
	EQUALITY       // == != <=>
	RELATIONAL     // < <= > >=
	SHIFT          // << >> <<< >>>
	ADDITIVE       // + -
	MULTIPLICATIVE // * / %
	PREFIX         // unary -x !x ~x ++x --x unset lengthof typeof __abs ... (operand precedence, not a token entry)
	POSTFIX        // () [] . ++ --  (postfix forms bind tighter than a prefix operator's operand)
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN: ASSIGN_TERNARY, lexer.PLUS_ASSIGN: ASSIGN_TERNARY, lexer.MINUS_ASSIGN: ASSIGN_TERNARY,
	lexer.STAR_ASSIGN: ASSIGN_TERNARY, lexer.SLASH_ASSIGN: ASSIGN_TERNARY, lexer.PERCENT_ASSIGN: ASSIGN_TERNARY,
	lexer.SHL_ASSIGN: ASSIGN_TERNARY, lexer.SHR_ASSIGN: ASSIGN_TERNARY,
	lexer.USHL_ASSIGN: ASSIGN_TERNARY, lexer.USHR_ASSIGN: ASSIGN_TERNARY,
	lexer.AMP_ASSIGN: ASSIGN_TERNARY, lexer.BITXOR_ASSIGN: ASSIGN_TERNARY, lexer.BITOR_ASSIGN: ASSIGN_TERNARY,
	lexer.ANDAND_ASSIGN: ASSIGN_TERNARY, lexer.OROR_ASSIGN: ASSIGN_TERNARY, lexer.QQ_ASSIGN: ASSIGN_TERNARY,
	lexer.QUESTION_ASSIGN: ASSIGN_TERNARY, lexer.QUESTION: ASSIGN_TERNARY,

	lexer.QQ: COALESCE,

	lexer.OROR: LOGICAL_OR, lexer.OR: LOGICAL_OR,
	lexer.ANDAND: LOGICAL_AND, lexer.AND: LOGICAL_AND,

	lexer.BITOR:  BIT_OR,
	lexer.BITXOR: BIT_XOR,
	lexer.AMP:    BIT_AND,

	lexer.EQEQ: EQUALITY, lexer.NEQ: EQUALITY, lexer.SPACESHIP: EQUALITY,
	lexer.LT: RELATIONAL, lexer.LE: RELATIONAL, lexer.GT: RELATIONAL, lexer.GE: RELATIONAL,
	lexer.SHL: SHIFT, lexer.SHR: SHIFT, lexer.USHL: SHIFT, lexer.USHR: SHIFT,
	lexer.PLUS: ADDITIVE, lexer.MINUS: ADDITIVE,
	lexer.STAR: MULTIPLICATIVE, lexer.SLASH: MULTIPLICATIVE, lexer.PERCENT: MULTIPLICATIVE,

	lexer.LPAREN: POSTFIX, lexer.LBRACK: POSTFIX, lexer.DOT: POSTFIX,
	lexer.INC: POSTFIX, lexer.DEC: POSTFIX,
}

// assignOpcodes maps every compound-assignment token to the binary opcode
// whose result gets written back through the left operand.
var assignOpcodes = map[lexer.TokenType]ast.Opcode{
	lexer.PLUS_ASSIGN: ast.OpAdd, lexer.MINUS_ASSIGN: ast.OpSub, lexer.STAR_ASSIGN: ast.OpMul,
	lexer.SLASH_ASSIGN: ast.OpDiv, lexer.PERCENT_ASSIGN: ast.OpMod,
	lexer.SHL_ASSIGN: ast.OpShl, lexer.SHR_ASSIGN: ast.OpShr,
	lexer.USHL_ASSIGN: ast.OpUshl, lexer.USHR_ASSIGN: ast.OpUshr,
	lexer.AMP_ASSIGN: ast.OpBitAnd, lexer.BITXOR_ASSIGN: ast.OpBitXor, lexer.BITOR_ASSIGN: ast.OpBitOr,
}

type prefixParseFn func() ast.Expr
type infixParseFn func(left ast.Expr) ast.Expr

// Parser turns a token stream into a Program. It returns the first error it
// hits (spec.md §4.5: "the parser returns the first error, not a
// recovery"): once Errors() is non-empty, ParseProgram's result should be
// discarded.
type Parser struct {
	l      *lexer.Lexer
	source string
	file   string

	cur  lexer.Token
	peek lexer.Token

	errors []*diag.SourceError

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New constructs a Parser reading from l. source/file are carried through
// to every diagnostic for source-line rendering.
func New(l *lexer.Lexer, source, file string) *Parser {
	p := &Parser{l: l, source: source, file: file}

	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:    p.parseIdentifier,
		lexer.INT:      p.parseIntegerLiteral,
		lexer.FLOAT:    p.parseFloatLiteral,
		lexer.STRING:   p.parseStringLiteral,
		lexer.TRUEKW:   p.parseBoolLiteral,
		lexer.FALSEKW:  p.parseBoolLiteral,
		lexer.NULLKW:   p.parseNullLiteral,
		lexer.NAN:      p.parseNanLiteral,
		lexer.INFINITY: p.parseInfinityLiteral,
		lexer.THIS:     p.parseThis,
		lexer.FILEKW:   p.parseReservedRef,
		lexer.LINEKW:   p.parseReservedRef,

		lexer.LPAREN: p.parseGroupedExpression,
		lexer.LBRACK: p.parseArrayLiteral,
		lexer.LBRACE: p.parseObjectLiteral,
		lexer.FUNC:   p.parseClosureExpression,

		lexer.PLUS:  p.parseUnaryOp(ast.OpPos),
		lexer.MINUS: p.parseUnaryOp(ast.OpNeg),
		lexer.TILDE: p.parseUnaryOp(ast.OpBitNot),
		lexer.BANG:  p.parseUnaryOp(ast.OpNot),
		lexer.NOT:   p.parseUnaryOp(ast.OpNot),

		lexer.INC: p.parseUnaryOp(ast.OpPreInc),
		lexer.DEC: p.parseUnaryOp(ast.OpPreDec),

		lexer.UNSET:    p.parseUnaryOp(ast.OpUnset),
		lexer.LENGTHOF: p.parseUnaryOp(ast.OpLengthOf),
		lexer.TYPEOF:   p.parseUnaryOp(ast.OpTypeOf),

		lexer.ABS:    p.parseUnaryOp(ast.OpAbs),
		lexer.SQRT:   p.parseUnaryOp(ast.OpSqrt),
		lexer.SIGNB:  p.parseUnaryOp(ast.OpSignb),
		lexer.ISNAN:  p.parseUnaryOp(ast.OpIsNan),
		lexer.ISINF:  p.parseUnaryOp(ast.OpIsInf),
		lexer.ROUND:  p.parseUnaryOp(ast.OpRound),
		lexer.FLOOR:  p.parseUnaryOp(ast.OpFloor),
		lexer.CEIL:   p.parseUnaryOp(ast.OpCeil),
		lexer.TRUNC:  p.parseUnaryOp(ast.OpTrunc),
		lexer.IROUND: p.parseUnaryOp(ast.OpIRound),
		lexer.IFLOOR: p.parseUnaryOp(ast.OpIFloor),
		lexer.ICEIL:  p.parseUnaryOp(ast.OpICeil),
		lexer.ITRUNC: p.parseUnaryOp(ast.OpITrunc),
		lexer.FMA:    p.parseFmaExpression,
	}

	p.infixFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS: p.parseBinaryOp(ast.OpAdd), lexer.MINUS: p.parseBinaryOp(ast.OpSub),
		lexer.STAR: p.parseBinaryOp(ast.OpMul), lexer.SLASH: p.parseBinaryOp(ast.OpDiv), lexer.PERCENT: p.parseBinaryOp(ast.OpMod),
		lexer.SHL: p.parseBinaryOp(ast.OpShl), lexer.SHR: p.parseBinaryOp(ast.OpShr),
		lexer.USHL: p.parseBinaryOp(ast.OpUshl), lexer.USHR: p.parseBinaryOp(ast.OpUshr),
		lexer.AMP: p.parseBinaryOp(ast.OpBitAnd), lexer.BITXOR: p.parseBinaryOp(ast.OpBitXor), lexer.BITOR: p.parseBinaryOp(ast.OpBitOr),
		lexer.LT: p.parseBinaryOp(ast.OpLt), lexer.LE: p.parseBinaryOp(ast.OpLe),
		lexer.GT: p.parseBinaryOp(ast.OpGt), lexer.GE: p.parseBinaryOp(ast.OpGe),
		lexer.EQEQ: p.parseBinaryOp(ast.OpEq), lexer.NEQ: p.parseBinaryOp(ast.OpNe), lexer.SPACESHIP: p.parseBinaryOp(ast.OpSpaceship),

		lexer.ANDAND: p.parseLogicalAnd, lexer.AND: p.parseLogicalAnd, lexer.ANDAND_ASSIGN: p.parseLogicalAndAssign,
		lexer.OROR: p.parseLogicalOr, lexer.OR: p.parseLogicalOr, lexer.OROR_ASSIGN: p.parseLogicalOrAssign,
		lexer.QQ: p.parseCoalesce, lexer.QQ_ASSIGN: p.parseCoalesceAssign,
		lexer.QUESTION: p.parseTernary, lexer.QUESTION_ASSIGN: p.parseTernaryAssign,

		lexer.ASSIGN: p.parsePlainAssign,
		lexer.PLUS_ASSIGN: p.parseCompoundAssign, lexer.MINUS_ASSIGN: p.parseCompoundAssign,
		lexer.STAR_ASSIGN: p.parseCompoundAssign, lexer.SLASH_ASSIGN: p.parseCompoundAssign, lexer.PERCENT_ASSIGN: p.parseCompoundAssign,
		lexer.SHL_ASSIGN: p.parseCompoundAssign, lexer.SHR_ASSIGN: p.parseCompoundAssign,
		lexer.USHL_ASSIGN: p.parseCompoundAssign, lexer.USHR_ASSIGN: p.parseCompoundAssign,
		lexer.AMP_ASSIGN: p.parseCompoundAssign, lexer.BITXOR_ASSIGN: p.parseCompoundAssign, lexer.BITOR_ASSIGN: p.parseCompoundAssign,

		lexer.LPAREN: p.parseCallExpression,
		lexer.LBRACK: p.parseIndexExpression,
		lexer.DOT:    p.parseMemberExpression,
		lexer.INC:    p.parsePostfixOp(ast.OpPostInc),
		lexer.DEC:    p.parsePostfixOp(ast.OpPostDec),
	}

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []*diag.SourceError { return p.errors }

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peek.Type]; ok {
		return prec
	}
	return LOWEST
}

// expect advances past peek if it matches t, else records an error.
func (p *Parser) expect(t lexer.TokenType) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(diag.CodeExpectedToken, p.peek.Pos, "expected %s, got %s", t, p.peek.Type)
	return false
}

func (p *Parser) errorf(code diag.Code, pos lexer.Position, format string, args ...any) {
	p.errors = append(p.errors, diag.New(code, fmt.Sprintf(format, args...), pos, p.source, p.file))
}

// ParseProgram parses the entire token stream into a Program. Once an
// error is recorded the caller should discard the result (spec.md §4.5).
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(lexer.EOF) && len(p.errors) == 0 {
		if stmt := p.parseStatement(); stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.nextToken()
	}
	return prog
}
