package parser

import (
	"github.com/thistle-lang/thistle/ast"
	"github.com/thistle-lang/thistle/token"
)

// function_decl := "function" IDENT "(" params? ")" block
func (p *Parser) functionDecl() ast.Stmt {
	line := p.cur.Line
	p.advance() // 'function'
	name := p.expect(token.IDENT, "Expect function name, got '%s'.")
	params := p.paramList()
	body := p.block()
	return &ast.FunctionStmt{Name: name.Lexeme, Params: params, Body: body, Line: line}
}

// class_decl := "class" IDENT "{" method* "}"
func (p *Parser) classDecl() ast.Stmt {
	line := p.cur.Line
	p.advance() // 'class'
	name := p.expect(token.IDENT, "Expect class name, got '%s'.")
	p.expect(token.LBRACE, "Expect '{' before class body, got '%s'.")

	cls := &ast.ClassStmt{Name: name.Lexeme, Line: line}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		cls.Methods = append(cls.Methods, p.method())
		if p.hadError {
			return cls
		}
	}
	p.expect(token.RBRACE, "Expect '}' after class body, got '%s'.")
	return cls
}

// method := ("constructor" | IDENT) "(" params? ")" block
func (p *Parser) method() *ast.MethodDecl {
	line := p.cur.Line
	isCtor := p.curIs(token.CONSTRUCTOR)
	var name string
	if isCtor {
		name = "constructor"
		p.advance()
	} else {
		tok := p.expect(token.IDENT, "Expect method name, got '%s'.")
		name = tok.Lexeme
	}
	params := p.paramList()
	body := p.block()
	return &ast.MethodDecl{Name: name, IsConstructor: isCtor, Params: params, Body: body, Line: line}
}

func (p *Parser) paramList() []string {
	p.expect(token.LPAREN, "Expect '(' before parameter list, got '%s'.")
	var params []string
	if !p.curIs(token.RPAREN) {
		for {
			tok := p.expect(token.IDENT, "Expect parameter name, got '%s'.")
			if len(params) >= 255 {
				p.errorAt(tok, "Too many parameters.")
			}
			params = append(params, tok.Lexeme)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN, "Expect ')' after parameters, got '%s'.")
	return params
}
