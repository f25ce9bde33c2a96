// Package parser implements a recursive-descent, Pratt-precedence parser
// that turns a token stream into a Program AST.
//
// Parsing never panics on a malformed program: the first error is recorded
// on a sticky error flag and the parser enters synchronize mode, skipping
// ahead to the next likely statement boundary so that further structural
// problems (if any) don't cascade into a wall of noise. Only the first
// error is ever surfaced to the caller.
package parser

import (
	"fmt"

	"github.com/thistle-lang/thistle/ast"
	"github.com/thistle-lang/thistle/lexer"
	"github.com/thistle-lang/thistle/token"
)

// Precedence levels, lowest to highest, matching spec.md §4.2.
const (
	_ int = iota
	precLowest
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
)

var binaryPrecedence = map[token.Type]int{
	token.EQ:     precEquality,
	token.NOT_EQ: precEquality,
	token.LT:     precComparison,
	token.LT_EQ:  precComparison,
	token.GT:     precComparison,
	token.GT_EQ:  precComparison,
	token.PLUS:   precTerm,
	token.MINUS:  precTerm,
	token.STAR:   precFactor,
	token.SLASH:  precFactor,
}

// Parser holds scanning state plus the sticky first-error record.
type Parser struct {
	lex *lexer.Lexer

	cur  token.Token
	peek token.Token

	hadError bool
	errMsg   string
	errLine  int
}

// New creates a Parser over src, primed with its first two tokens.
func New(src string) *Parser {
	p := &Parser{lex: lexer.New(src)}
	p.advance()
	p.advance()
	return p
}

// Parse runs the parser to completion. On the first error, it returns a
// nil Program and the recorded error; otherwise it returns the full AST.
func Parse(src string) (*ast.Program, error) {
	p := New(src)
	prog := p.parseProgram()
	if p.hadError {
		return nil, fmt.Errorf("parse error: %s", p.errMsg)
	}
	return prog, nil
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		decl := p.declaration()
		if p.hadError {
			p.synchronize()
			continue
		}
		if decl != nil {
			prog.Declarations = append(prog.Declarations, decl)
		}
	}
	return prog
}

// declaration := class_decl | function_decl | let_decl | statement
func (p *Parser) declaration() ast.Stmt {
	switch p.cur.Type {
	case token.CLASS:
		return p.classDecl()
	case token.FUNCTION:
		return p.functionDecl()
	case token.LET:
		return p.letDecl()
	default:
		return p.statement()
	}
}

// ---- token stream helpers ----

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
	if p.cur.Type == token.ILLEGAL {
		p.errorAt(p.cur, p.cur.Lexeme)
	}
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

// match consumes the current token if it has type t, returning whether it did.
func (p *Parser) match(t token.Type) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it has type t; otherwise records
// an error and leaves the cursor in place.
func (p *Parser) expect(t token.Type, errFormat string) token.Token {
	if p.curIs(t) {
		tok := p.cur
		p.advance()
		return tok
	}
	p.errorAt(p.cur, fmt.Sprintf(errFormat, p.cur.Lexeme))
	return p.cur
}

func (p *Parser) errorAt(tok token.Token, msg string) {
	if p.hadError {
		return // sticky: keep only the first error
	}
	p.hadError = true
	p.errMsg = msg
	p.errLine = tok.Line
}

// synchronize skips tokens until it finds a likely statement boundary,
// so a single bad statement doesn't corrupt the whole parse.
func (p *Parser) synchronize() {
	for !p.curIs(token.EOF) {
		if p.cur.Type == token.SEMI {
			p.advance()
			return
		}
		switch p.cur.Type {
		case token.CLASS, token.FUNCTION, token.LET, token.IF, token.WHILE, token.RETURN:
			return
		}
		p.advance()
	}
}
