package parser

import (
	"github.com/cwbudde/scriptcore/internal/ast"
	"github.com/cwbudde/scriptcore/internal/diag"
	"github.com/cwbudde/scriptcore/internal/lexer"
)

// parseStatement dispatches on the leading token. p.cur is left on the
// last token of the statement; ParseProgram/parseBlockStatements advance
// past it.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.VAR:
		return p.parseVarDecl(false)
	case lexer.CONST:
		return p.parseVarDecl(true)
	case lexer.FUNC:
		return p.parseFuncDecl()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.SWITCH:
		return p.parseSwitchStatement()
	case lexer.DO:
		return p.parseDoWhileStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.BREAK:
		return p.parseBreakStatement()
	case lexer.CONTINUE:
		return p.parseContinueStatement()
	case lexer.THROW:
		return p.parseThrowStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.ASSERT:
		return p.parseAssertStatement()
	case lexer.DEFER:
		return p.parseDeferStatement()
	case lexer.SEMICOLON:
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

// parseBlock parses `{ stmt* }`; p.cur must be the opening LBRACE on entry
// and is left on the closing RBRACE on return.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Position: p.cur.Pos}
	p.nextToken()
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	if !p.curIs(lexer.RBRACE) {
		p.errorf(diag.CodeExpectedClosingBrace, p.cur.Pos, "expected closing '}', got %s", p.cur.Type)
	}
	return block
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	pos := p.cur.Pos
	expr := p.parseExpression(LOWEST)
	stmt := &ast.ExpressionStatement{Position: pos, Expr: expr}
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// parseVarDecl parses `var a = 1, b, c = 2;` / `const a = 1;` (spec.md
// §4.8): a comma-separated list of names, each with an optional
// initializer.
func (p *Parser) parseVarDecl(isConst bool) ast.Statement {
	decl := &ast.VarDecl{Position: p.cur.Pos, Const: isConst}
	for {
		if !p.expect(lexer.IDENT) {
			return decl
		}
		name := p.cur.Literal
		decl.Names = append(decl.Names, name)

		var init ast.Expr
		if p.peekIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			init = p.parseExpression(ASSIGN_TERNARY)
		} else if isConst {
			p.errorf(diag.CodeExpectedToken, p.cur.Pos, "const %q requires an initializer", name)
		}
		decl.Initializers = append(decl.Initializers, init)

		if !p.peekIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return decl
}

func (p *Parser) parseFuncDecl() ast.Statement {
	pos := p.cur.Pos
	if !p.expect(lexer.IDENT) {
		return nil
	}
	header := &ast.FunctionHeader{Position: pos, Name: p.cur.Literal}
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	header.Params, header.Variadic = p.parseParamList()
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	return &ast.FuncDecl{Position: pos, Header: header, Body: body}
}

func (p *Parser) parseIfStatement() ast.Statement {
	pos := p.cur.Pos
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	negate := false
	if p.peekIs(lexer.BANG) || p.peekIs(lexer.NOT) {
		p.nextToken()
		negate = true
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	then := p.parseStatement()

	stmt := &ast.IfStatement{Position: pos, Condition: cond, Negate: negate, Then: then}
	if p.peekIs(lexer.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Else = p.parseStatement()
	}
	return stmt
}

// parseSwitchStatement parses `switch (ctrl) { case e: stmt* ... default: stmt* }`.
// Fall-through (spec.md §4.8) means clause bodies simply run in sequence
// with no implicit break, so parsing just accumulates statements until the
// next `case`/`default`/closing brace.
func (p *Parser) parseSwitchStatement() ast.Statement {
	pos := p.cur.Pos
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	control := p.parseExpression(LOWEST)
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	stmt := &ast.SwitchStatement{Position: pos, Control: control}

	p.nextToken()
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		clause := &ast.SwitchClause{}
		switch p.cur.Type {
		case lexer.CASE:
			p.nextToken()
			clause.Expr = p.parseExpression(LOWEST)
			if !p.expect(lexer.COLON) {
				return stmt
			}
		case lexer.DEFAULT:
			if !p.expect(lexer.COLON) {
				return stmt
			}
		default:
			p.errorf(diag.CodeExpectedToken, p.cur.Pos, "expected 'case' or 'default', got %s", p.cur.Type)
			return stmt
		}
		p.nextToken()
		for !p.curIs(lexer.CASE) && !p.curIs(lexer.DEFAULT) && !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			if s := p.parseStatement(); s != nil {
				clause.Body = append(clause.Body, s)
			}
			p.nextToken()
		}
		stmt.Clauses = append(stmt.Clauses, clause)
	}
	if !p.curIs(lexer.RBRACE) {
		p.errorf(diag.CodeExpectedClosingBrace, p.cur.Pos, "expected closing '}', got %s", p.cur.Type)
	}
	return stmt
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	pos := p.cur.Pos
	p.nextToken()
	body := p.parseStatement()
	if !p.expect(lexer.WHILE) {
		return nil
	}
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	negate := false
	if p.peekIs(lexer.BANG) || p.peekIs(lexer.NOT) {
		p.nextToken()
		negate = true
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return &ast.DoWhileStatement{Position: pos, Body: body, Condition: cond, Negate: negate}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	pos := p.cur.Pos
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	body := p.parseStatement()
	return &ast.WhileStatement{Position: pos, Condition: cond, Body: body}
}

// parseForStatement distinguishes the three-clause `for (init; cond; step)`
// form from `for each(key, value : range)` by peeking the EACH keyword
// immediately after FOR.
func (p *Parser) parseForStatement() ast.Statement {
	pos := p.cur.Pos
	if p.peekIs(lexer.EACH) {
		p.nextToken()
		return p.parseForEachStatement(pos)
	}
	if !p.expect(lexer.LPAREN) {
		return nil
	}

	var initStmt ast.Statement
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
	} else {
		p.nextToken()
		switch p.cur.Type {
		case lexer.VAR:
			initStmt = p.parseVarDecl(false)
		default:
			initStmt = p.parseExpressionStatement()
		}
	}

	var cond ast.Expr
	if !p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
		cond = p.parseExpression(LOWEST)
	}
	if !p.expect(lexer.SEMICOLON) {
		return nil
	}

	var step ast.Expr
	if !p.peekIs(lexer.RPAREN) {
		p.nextToken()
		step = p.parseExpression(LOWEST)
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	body := p.parseStatement()

	return &ast.ForStatement{Position: pos, Init: initStmt, Condition: cond, Step: step, Body: body}
}

// parseForEachStatement parses `each(key, value : range) body` with p.cur
// on the `each` token.
func (p *Parser) parseForEachStatement(pos lexer.Position) ast.Statement {
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	if !p.expect(lexer.IDENT) {
		return nil
	}
	first := p.cur.Literal

	stmt := &ast.ForEachStatement{Position: pos}
	if p.peekIs(lexer.COMMA) {
		p.nextToken()
		if !p.expect(lexer.IDENT) {
			return nil
		}
		stmt.KeyName = first
		stmt.ValueName = p.cur.Literal
	} else {
		stmt.ValueName = first
	}
	if !p.expect(lexer.COLON) {
		return nil
	}
	p.nextToken()
	stmt.Range = p.parseExpression(LOWEST)
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseTryStatement() ast.Statement {
	pos := p.cur.Pos
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	if !p.expect(lexer.CATCH) {
		return nil
	}
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	if !p.expect(lexer.IDENT) {
		return nil
	}
	exceptionName := p.cur.Literal
	if !p.expect(lexer.RPAREN) {
		return nil
	}
	if !p.expect(lexer.LBRACE) {
		return nil
	}
	catch := p.parseBlock()
	return &ast.TryStatement{Position: pos, Body: body, ExceptionName: exceptionName, Catch: catch}
}

func (p *Parser) parseLoopTarget() ast.LoopTarget {
	switch {
	case p.peekIs(lexer.WHILE):
		p.nextToken()
		return ast.TargetWhile
	case p.peekIs(lexer.FOR):
		p.nextToken()
		return ast.TargetFor
	case p.peekIs(lexer.SWITCH):
		p.nextToken()
		return ast.TargetSwitch
	default:
		return ast.TargetUnspecified
	}
}

func (p *Parser) parseBreakStatement() ast.Statement {
	pos := p.cur.Pos
	target := p.parseLoopTarget()
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return &ast.BreakStatement{Position: pos, Target: target}
}

func (p *Parser) parseContinueStatement() ast.Statement {
	pos := p.cur.Pos
	target := p.parseLoopTarget()
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return &ast.ContinueStatement{Position: pos, Target: target}
}

func (p *Parser) parseThrowStatement() ast.Statement {
	pos := p.cur.Pos
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return &ast.ThrowStatement{Position: pos, Expr: expr}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	pos := p.cur.Pos
	stmt := &ast.ReturnStatement{Position: pos}
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	if p.peekIs(lexer.AMP) {
		p.nextToken()
		stmt.ByRef = true
	}
	p.nextToken()
	stmt.Expr = p.parseExpression(LOWEST)
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// parseAssertStatement parses `assert(expr)` or `assert(expr, "message")`,
// with an optional leading `!`/`not` negating the checked condition.
func (p *Parser) parseAssertStatement() ast.Statement {
	pos := p.cur.Pos
	negate := false
	if !p.expect(lexer.LPAREN) {
		return nil
	}
	if p.peekIs(lexer.BANG) || p.peekIs(lexer.NOT) {
		p.nextToken()
		negate = true
	}
	p.nextToken()
	expr := p.parseExpression(ASSIGN_TERNARY)

	stmt := &ast.AssertStatement{Position: pos, Expr: expr, Negate: negate}
	if p.peekIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		stmt.Message = p.parseExpression(ASSIGN_TERNARY)
	}
	if !p.expect(lexer.RPAREN) {
		return stmt
	}
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseDeferStatement() ast.Statement {
	pos := p.cur.Pos
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if p.peekIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return &ast.DeferStatement{Position: pos, Expr: expr}
}
