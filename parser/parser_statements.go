package parser

import (
	"github.com/thistle-lang/thistle/ast"
	"github.com/thistle-lang/thistle/token"
)

// statement := if | while | return | block | expression ";"
func (p *Parser) statement() ast.Stmt {
	switch p.cur.Type {
	case token.IF:
		return p.ifStatement()
	case token.WHILE:
		return p.whileStatement()
	case token.RETURN:
		return p.returnStatement()
	case token.LBRACE:
		return p.block()
	default:
		return p.expressionStatement()
	}
}

// let_decl := "let" IDENT ("=" expression)? ";"
func (p *Parser) letDecl() ast.Stmt {
	line := p.cur.Line
	p.advance() // 'let'
	name := p.expect(token.IDENT, "Expect variable name, got '%s'.")

	var init ast.Expr
	if p.match(token.ASSIGN) {
		init = p.expression()
	}
	p.expect(token.SEMI, "Expect ';' after variable declaration, got '%s'.")
	return &ast.LetStmt{Name: name.Lexeme, Initializer: init, Line: line}
}

func (p *Parser) ifStatement() ast.Stmt {
	line := p.cur.Line
	p.advance() // 'if'
	p.expect(token.LPAREN, "Expect '(' after 'if', got '%s'.")
	cond := p.expression()
	p.expect(token.RPAREN, "Expect ')' after if condition, got '%s'.")
	then := p.block()

	var elseBlock *ast.BlockStmt
	if p.match(token.ELSE) {
		elseBlock = p.block()
	}
	return &ast.IfStmt{Condition: cond, Then: then, Else: elseBlock, Line: line}
}

func (p *Parser) whileStatement() ast.Stmt {
	line := p.cur.Line
	p.advance() // 'while'
	p.expect(token.LPAREN, "Expect '(' after 'while', got '%s'.")
	cond := p.expression()
	p.expect(token.RPAREN, "Expect ')' after while condition, got '%s'.")
	body := p.block()
	return &ast.WhileStmt{Condition: cond, Body: body, Line: line}
}

func (p *Parser) returnStatement() ast.Stmt {
	line := p.cur.Line
	p.advance() // 'return'
	var value ast.Expr
	if !p.curIs(token.SEMI) {
		value = p.expression()
	}
	p.expect(token.SEMI, "Expect ';' after return value, got '%s'.")
	return &ast.ReturnStmt{Value: value, Line: line}
}

func (p *Parser) block() *ast.BlockStmt {
	line := p.cur.Line
	p.expect(token.LBRACE, "Expect '{' to start a block, got '%s'.")
	b := &ast.BlockStmt{Line: line}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		b.Statements = append(b.Statements, p.declaration())
		if p.hadError {
			return b
		}
	}
	p.expect(token.RBRACE, "Expect '}' to close a block, got '%s'.")
	return b
}

func (p *Parser) expressionStatement() ast.Stmt {
	line := p.cur.Line
	expr := p.expression()
	p.expect(token.SEMI, "Expect ';' after expression, got '%s'.")
	return &ast.ExpressionStmt{Expression: expr, Line: line}
}
