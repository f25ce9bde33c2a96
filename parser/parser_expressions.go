package parser

import (
	"github.com/thistle-lang/thistle/ast"
	"github.com/thistle-lang/thistle/token"
)

// expression := assignment
func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

// assignment := equality (("=" | "+=") assignment)?     -- right-assoc
//
// The left side is parsed down through the full precedence chain (it's
// how a target like `obj.name` or a bare identifier falls out of the
// Pratt climb); only after the fact do we check it's a legal target.
func (p *Parser) assignment() ast.Expr {
	line := p.cur.Line
	left := p.binary(precLowest + 1)

	if p.curIs(token.ASSIGN) || p.curIs(token.PLUS_EQ) {
		isCompound := p.curIs(token.PLUS_EQ)
		p.advance()
		value := p.assignment()

		target, ok := validAssignTarget(left)
		if !ok {
			p.errorAt(token.Token{Line: line}, "Invalid assignment target.")
			return left
		}

		if isCompound {
			// Desugar `x += e` into `x = x + e` by duplicating the target.
			value = &ast.Binary{Operator: "+", Left: duplicateTarget(target), Right: value, Line: line}
		}
		return &ast.Assign{Target: target, Value: value, Line: line}
	}
	return left
}

// validAssignTarget reports whether expr may appear on the left of '=':
// only a bare identifier or a property-access ("." ) expression.
func validAssignTarget(expr ast.Expr) (ast.Expr, bool) {
	switch expr.(type) {
	case *ast.Identifier, *ast.Get:
		return expr, true
	}
	return expr, false
}

// duplicateTarget copies the top node of an assignment target so it can
// be evaluated twice (once to read, once inside the store). The copy of a
// *Get shares its Object subtree with the original.
func duplicateTarget(target ast.Expr) ast.Expr {
	switch t := target.(type) {
	case *ast.Identifier:
		return &ast.Identifier{Name: t.Name, Line: t.Line}
	case *ast.Get:
		return &ast.Get{Object: t.Object, Name: t.Name, Line: t.Line}
	}
	return target
}

// binary implements precedence climbing over equality/comparison/term/factor.
func (p *Parser) binary(minPrec int) ast.Expr {
	left := p.unary()

	for {
		prec, ok := binaryPrecedence[p.cur.Type]
		if !ok || prec < minPrec {
			return left
		}
		op := p.cur
		p.advance()
		right := p.binary(prec + 1)
		left = &ast.Binary{Operator: string(op.Type), Left: left, Right: right, Line: op.Line}
	}
}

// unary := ("!" | "-") unary | call
func (p *Parser) unary() ast.Expr {
	if p.curIs(token.BANG) || p.curIs(token.MINUS) {
		op := p.cur
		p.advance()
		right := p.unary()
		return &ast.Unary{Operator: string(op.Type), Right: right, Line: op.Line}
	}
	return p.call()
}

// call := primary ( "(" args? ")" | "[" expression "]" | "." IDENT ("(" args? ")")? )*
func (p *Parser) call() ast.Expr {
	expr := p.primary()

	for {
		switch p.cur.Type {
		case token.LPAREN:
			line := p.cur.Line
			args := p.argumentList()
			expr = &ast.Call{Callee: expr, Args: args, Line: line}
		case token.LBRACKET:
			line := p.cur.Line
			p.advance()
			idx := p.expression()
			p.expect(token.RBRACKET, "Expect ']' after index, got '%s'.")
			expr = &ast.Index{Array: expr, Index: idx, Line: line}
		case token.DOT:
			line := p.cur.Line
			p.advance()
			name := p.expect(token.IDENT, "Expect property name after '.', got '%s'.")
			if p.curIs(token.LPAREN) {
				args := p.argumentList()
				expr = &ast.Invoke{Object: expr, Name: name.Lexeme, Args: args, Line: line}
			} else {
				expr = &ast.Get{Object: expr, Name: name.Lexeme, Line: line}
			}
		default:
			return expr
		}
	}
}

func (p *Parser) argumentList() []ast.Expr {
	p.expect(token.LPAREN, "Expect '(' before argument list, got '%s'.")
	var args []ast.Expr
	if !p.curIs(token.RPAREN) {
		for {
			arg := p.expression()
			if len(args) >= 255 {
				p.errorAt(p.cur, "Too many arguments.")
			}
			args = append(args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN, "Expect ')' after arguments, got '%s'.")
	return args
}

// primary := NUMBER | STRING | "true" | "false" | "null" | "this"
//          | IDENT | "(" expression ")" | "[" args? "]"
func (p *Parser) primary() ast.Expr {
	tok := p.cur
	switch tok.Type {
	case token.NUMBER:
		p.advance()
		return &ast.NumberLiteral{Value: tok.Number, Line: tok.Line}
	case token.STRING:
		p.advance()
		return &ast.StringLiteral{Value: tok.Lexeme, Line: tok.Line}
	case token.TRUE:
		p.advance()
		return &ast.BoolLiteral{Value: true, Line: tok.Line}
	case token.FALSE:
		p.advance()
		return &ast.BoolLiteral{Value: false, Line: tok.Line}
	case token.NULL:
		p.advance()
		return &ast.NullLiteral{Line: tok.Line}
	case token.THIS:
		p.advance()
		return &ast.This{Line: tok.Line}
	case token.IDENT:
		p.advance()
		return &ast.Identifier{Name: tok.Lexeme, Line: tok.Line}
	case token.LPAREN:
		p.advance()
		expr := p.expression()
		p.expect(token.RPAREN, "Expect ')' after expression, got '%s'.")
		return expr
	case token.LBRACKET:
		p.advance()
		lit := &ast.ArrayLiteral{Line: tok.Line}
		if !p.curIs(token.RBRACKET) {
			for {
				lit.Elements = append(lit.Elements, p.expression())
				if !p.match(token.COMMA) {
					break
				}
			}
		}
		p.expect(token.RBRACKET, "Expect ']' after array elements, got '%s'.")
		return lit
	}

	p.errorAt(tok, "Expect expression, got '"+tok.Lexeme+"'.")
	p.advance()
	return &ast.NullLiteral{Line: tok.Line}
}
