package parser

import (
	"math"

	"github.com/cwbudde/scriptcore/internal/ast"
	"github.com/cwbudde/scriptcore/internal/diag"
	"github.com/cwbudde/scriptcore/internal/lexer"
	"github.com/cwbudde/scriptcore/internal/value"
)

// parseExpression is the precedence-climbing engine: it resolves a prefix
// production at p.cur, then repeatedly folds in infix productions bound
// more tightly than precedence, each appending further Units to the flat
// stream rather than nesting a tree.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		p.errorf(diag.CodeUnexpectedToken, p.cur.Pos, "no expression can start with %s", p.cur.Type)
		return nil
	}
	left := prefix()

	for !p.peekIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peek.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expr {
	tok := p.cur
	return ast.Expr{&ast.NamedReference{Position: tok.Pos, Name: tok.Literal}}
}

func (p *Parser) parseThis() ast.Expr {
	return ast.Expr{&ast.NamedReference{Position: p.cur.Pos, Name: "__this"}}
}

// parseReservedRef handles the `__file`/`__line` keyword tokens, which
// read as ordinary reserved-name references despite being lexer keywords.
func (p *Parser) parseReservedRef() ast.Expr {
	return ast.Expr{&ast.NamedReference{Position: p.cur.Pos, Name: p.cur.Literal}}
}

func (p *Parser) parseIntegerLiteral() ast.Expr {
	tok := p.cur
	v, err := parseIntLiteral(tok.Literal)
	if err != nil {
		p.errorf(diag.CodeIntegerLiteralOverflow, tok.Pos, "%s", err)
		return ast.Expr{&ast.Literal{Position: tok.Pos, Value: value.NewInt(0)}}
	}
	return ast.Expr{&ast.Literal{Position: tok.Pos, Value: value.NewInt(v)}}
}

func (p *Parser) parseFloatLiteral() ast.Expr {
	tok := p.cur
	v, err := parseFloatLiteral(tok.Literal)
	if err != nil {
		p.errorf(diag.CodeRealLiteralOutOfRange, tok.Pos, "%s", err)
		return ast.Expr{&ast.Literal{Position: tok.Pos, Value: value.NewReal(0)}}
	}
	return ast.Expr{&ast.Literal{Position: tok.Pos, Value: value.NewReal(v)}}
}

func (p *Parser) parseStringLiteral() ast.Expr {
	tok := p.cur
	return ast.Expr{&ast.Literal{Position: tok.Pos, Value: value.NewString(tok.Literal)}}
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	tok := p.cur
	return ast.Expr{&ast.Literal{Position: tok.Pos, Value: value.NewBool(tok.Type == lexer.TRUEKW)}}
}

func (p *Parser) parseNullLiteral() ast.Expr {
	return ast.Expr{&ast.Literal{Position: p.cur.Pos, Value: value.NewNull()}}
}

func (p *Parser) parseNanLiteral() ast.Expr {
	return ast.Expr{&ast.Literal{Position: p.cur.Pos, Value: value.NewReal(math.NaN())}}
}

func (p *Parser) parseInfinityLiteral() ast.Expr {
	return ast.Expr{&ast.Literal{Position: p.cur.Pos, Value: value.NewReal(math.Inf(1))}}
}

func (p *Parser) parseGroupedExpression() ast.Expr {
	p.nextToken()
	e := p.parseExpression(LOWEST)
	if !p.expect(lexer.RPAREN) {
		return e
	}
	return e
}

// parseArrayLiteral parses `[e1, e2, ...]` into the elements' units
// followed by an UnnamedArray unit (spec.md §4.7).
func (p *Parser) parseArrayLiteral() ast.Expr {
	pos := p.cur.Pos
	var units ast.Expr
	count := 0
	if !p.peekIs(lexer.RBRACK) {
		p.nextToken()
		units = append(units, p.parseExpression(ASSIGN_TERNARY)...)
		count++
		for p.peekIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			units = append(units, p.parseExpression(ASSIGN_TERNARY)...)
			count++
		}
	}
	if !p.expect(lexer.RBRACK) {
		return units
	}
	units = append(units, &ast.UnnamedArray{Position: pos, ElementCount: count})
	return units
}

// parseObjectLiteral parses `{ k: v, ... }` into the values' units followed
// by an UnnamedObject unit carrying the ordered key list.
func (p *Parser) parseObjectLiteral() ast.Expr {
	pos := p.cur.Pos
	var units ast.Expr
	var keys []string
	seen := map[string]bool{}

	parseEntry := func() {
		var key string
		switch p.peek.Type {
		case lexer.IDENT:
			key = p.peek.Literal
			p.nextToken()
		case lexer.STRING:
			key = p.peek.Literal
			p.nextToken()
		default:
			p.errorf(diag.CodeExpectedToken, p.peek.Pos, "expected object key, got %s", p.peek.Type)
			return
		}
		if seen[key] {
			p.errorf(diag.CodeDuplicateObjectKey, p.cur.Pos, "duplicate object key %q", key)
		}
		seen[key] = true
		if !p.expect(lexer.COLON) {
			return
		}
		p.nextToken()
		units = append(units, p.parseExpression(ASSIGN_TERNARY)...)
		keys = append(keys, key)
	}

	if !p.peekIs(lexer.RBRACE) {
		parseEntry()
		for p.peekIs(lexer.COMMA) {
			p.nextToken()
			parseEntry()
		}
	}
	if !p.expect(lexer.RBRACE) {
		return units
	}
	units = append(units, &ast.UnnamedObject{Position: pos, Keys: keys})
	return units
}

// parseClosureExpression parses an inline `func(params) { body }`
// expression into a ClosureFunction unit (spec.md §3's "closure-function"
// variant).
func (p *Parser) parseClosureExpression() ast.Expr {
	pos := p.cur.Pos
	header := &ast.FunctionHeader{Position: pos}
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	header.Params, header.Variadic = p.parseParamList()
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	return ast.Expr{&ast.ClosureFunction{Position: pos, Header: header, Body: body}}
}

// parseFmaExpression parses `__fma(a, b, c)`, the one ternary operator.
func (p *Parser) parseFmaExpression() ast.Expr {
	pos := p.cur.Pos
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	var units ast.Expr
	p.nextToken()
	units = append(units, p.parseExpression(ASSIGN_TERNARY)...)
	if !p.expect(lexer.COMMA) {
		return units
	}
	p.nextToken()
	units = append(units, p.parseExpression(ASSIGN_TERNARY)...)
	if !p.expect(lexer.COMMA) {
		return units
	}
	p.nextToken()
	units = append(units, p.parseExpression(ASSIGN_TERNARY)...)
	if !p.expect(lexer.RPAREN) {
		return units
	}
	units = append(units, &ast.OperatorRPN{Position: pos, Op: ast.OpFma})
	return units
}

// parseUnaryOp returns a prefix parse function for a simple
// pop-one-push-one prefix opcode (spec.md §4.5's "unary prefix" level).
// The operand parses at PREFIX precedence (one below POSTFIX) so that a
// trailing call/index/member/postfix-++ on the operand binds tighter than
// the prefix operator itself (`-a[0]` is `-(a[0])`, not `(-a)[0]`), while a
// following binary operator does not (`-a * b` is `(-a) * b`).
func (p *Parser) parseUnaryOp(op ast.Opcode) prefixParseFn {
	return func() ast.Expr {
		pos := p.cur.Pos
		p.nextToken()
		operand := p.parseExpression(PREFIX)
		return append(operand, &ast.OperatorRPN{Position: pos, Op: op})
	}
}

// parseBinaryOp returns an infix parse function for a simple
// pop-two-push-one binary opcode.
func (p *Parser) parseBinaryOp(op ast.Opcode) infixParseFn {
	return func(left ast.Expr) ast.Expr {
		pos := p.cur.Pos
		prec := precedences[p.cur.Type]
		p.nextToken()
		right := p.parseExpression(prec)
		units := append(append(ast.Expr{}, left...), right...)
		return append(units, &ast.OperatorRPN{Position: pos, Op: op})
	}
}

// parsePostfixOp returns an infix parse function for `x++`/`x--`: no right
// operand, just append the opcode unit.
func (p *Parser) parsePostfixOp(op ast.Opcode) infixParseFn {
	return func(left ast.Expr) ast.Expr {
		return append(left, &ast.OperatorRPN{Position: p.cur.Pos, Op: op})
	}
}

func (p *Parser) parseLogicalAnd(left ast.Expr) ast.Expr  { return p.parseShortCircuit(left, true, false) }
func (p *Parser) parseLogicalOr(left ast.Expr) ast.Expr   { return p.parseShortCircuit(left, false, false) }
func (p *Parser) parseLogicalAndAssign(left ast.Expr) ast.Expr {
	return p.parseShortCircuit(left, true, true)
}
func (p *Parser) parseLogicalOrAssign(left ast.Expr) ast.Expr {
	return p.parseShortCircuit(left, false, true)
}

// parseShortCircuit lowers `&&`/`and` and `||`/`or` to a Branch unit
// (spec.md §4.5/§4.7): `a && b` evaluates b only when a is truthy, and
// keeps a (falsy) otherwise, so True/False model that asymmetrically.
func (p *Parser) parseShortCircuit(left ast.Expr, isAnd, assign bool) ast.Expr {
	pos := p.cur.Pos
	prec := LOGICAL_AND
	if !isAnd {
		prec = LOGICAL_OR
	}
	p.nextToken()
	rhs := p.parseExpression(prec - 1)

	branch := &ast.Branch{Position: pos, Assign: assign}
	if isAnd {
		branch.True, branch.False = rhs, nil
	} else {
		branch.True, branch.False = nil, rhs
	}
	return append(append(ast.Expr{}, left...), branch)
}

func (p *Parser) parseCoalesce(left ast.Expr) ast.Expr       { return p.parseCoalesceImpl(left, false) }
func (p *Parser) parseCoalesceAssign(left ast.Expr) ast.Expr { return p.parseCoalesceImpl(left, true) }

func (p *Parser) parseCoalesceImpl(left ast.Expr, assign bool) ast.Expr {
	pos := p.cur.Pos
	p.nextToken()
	rhs := p.parseExpression(COALESCE - 1)
	return append(append(ast.Expr{}, left...), &ast.Coalescence{Position: pos, Right: rhs, Assign: assign})
}

func (p *Parser) parseTernary(left ast.Expr) ast.Expr       { return p.parseTernaryImpl(left, false) }
func (p *Parser) parseTernaryAssign(left ast.Expr) ast.Expr { return p.parseTernaryImpl(left, true) }

func (p *Parser) parseTernaryImpl(left ast.Expr, assign bool) ast.Expr {
	pos := p.cur.Pos
	p.nextToken()
	trueExpr := p.parseExpression(ASSIGN_TERNARY - 1)
	if !p.expect(lexer.COLON) {
		return left
	}
	p.nextToken()
	falseExpr := p.parseExpression(ASSIGN_TERNARY - 1)
	branch := &ast.Branch{Position: pos, True: trueExpr, False: falseExpr, Assign: assign}
	return append(append(ast.Expr{}, left...), branch)
}

func (p *Parser) parsePlainAssign(left ast.Expr) ast.Expr {
	pos := p.cur.Pos
	p.nextToken()
	rhs := p.parseExpression(ASSIGN_TERNARY - 1)
	units := append(append(ast.Expr{}, left...), rhs...)
	return append(units, &ast.OperatorRPN{Position: pos, Op: ast.OpAssign, Assign: true})
}

func (p *Parser) parseCompoundAssign(left ast.Expr) ast.Expr {
	pos := p.cur.Pos
	op := assignOpcodes[p.cur.Type]
	p.nextToken()
	rhs := p.parseExpression(ASSIGN_TERNARY - 1)
	units := append(append(ast.Expr{}, left...), rhs...)
	return append(units, &ast.OperatorRPN{Position: pos, Op: op, Assign: true})
}

// parseCallExpression parses the argument list following a callee
// expression, prefixing any `&arg` with nothing extra (ByRef[i] records
// it) and wrapping every other argument in OpMaterialize (spec.md §4.5).
func (p *Parser) parseCallExpression(callee ast.Expr) ast.Expr {
	pos := p.cur.Pos
	units := append(ast.Expr{}, callee...)

	var byRef []bool
	count := 0
	if !p.peekIs(lexer.RPAREN) {
		u, ref := p.parseCallArgument()
		units = append(units, u...)
		byRef = append(byRef, ref)
		count++
		for p.peekIs(lexer.COMMA) {
			p.nextToken()
			u, ref := p.parseCallArgument()
			units = append(units, u...)
			byRef = append(byRef, ref)
			count++
		}
	}
	if !p.expect(lexer.RPAREN) {
		return units
	}
	units = append(units, &ast.FunctionCall{Position: pos, ArgCount: count, ByRef: byRef})
	return units
}

func (p *Parser) parseCallArgument() (ast.Expr, bool) {
	byRef := p.peekIs(lexer.AMP)
	if byRef {
		p.nextToken()
	}
	p.nextToken()
	arg := p.parseExpression(ASSIGN_TERNARY)
	if !byRef {
		arg = append(arg, &ast.OperatorRPN{Position: arg.Pos(), Op: ast.OpMaterialize})
	}
	return arg, byRef
}

func (p *Parser) parseIndexExpression(left ast.Expr) ast.Expr {
	pos := p.cur.Pos
	p.nextToken()
	idx := p.parseExpression(LOWEST)
	if !p.expect(lexer.RBRACK) {
		return left
	}
	units := append(append(ast.Expr{}, left...), idx...)
	return append(units, &ast.OperatorRPN{Position: pos, Op: ast.OpIndex})
}

func (p *Parser) parseMemberExpression(left ast.Expr) ast.Expr {
	pos := p.cur.Pos
	if !p.expect(lexer.IDENT) {
		return left
	}
	key := p.cur.Literal
	return append(append(ast.Expr{}, left...), &ast.MemberAccess{Position: pos, Key: key})
}

// parseParamList parses `(a, b, ...)`, leaving p.cur on the closing paren.
// A trailing bare `...` (lexed as DOTDOT then DOT, since the lexer has no
// dedicated three-dot token) marks the function variadic; spec.md §4.9
// requires it to be the last declared parameter.
func (p *Parser) parseParamList() ([]string, bool) {
	var params []string
	variadic := false
	if p.peekIs(lexer.RPAREN) {
		p.nextToken()
		return params, variadic
	}
	p.nextToken()
	for {
		if p.curIs(lexer.DOTDOT) {
			if !p.expect(lexer.DOT) {
				return params, variadic
			}
			variadic = true
		} else if p.curIs(lexer.IDENT) {
			params = append(params, p.cur.Literal)
		} else {
			p.errorf(diag.CodeExpectedToken, p.cur.Pos, "expected parameter name, got %s", p.cur.Type)
		}
		if !p.peekIs(lexer.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	if !p.expect(lexer.RPAREN) {
		return params, variadic
	}
	return params, variadic
}
