package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thistle-lang/thistle/token"
)

func TestNextToken_Punctuation(t *testing.T) {
	l := New("let x = 5 + 2;")
	want := []token.Type{
		token.LET, token.IDENT, token.ASSIGN, token.NUMBER, token.PLUS,
		token.NUMBER, token.SEMI, token.EOF,
	}
	for i, typ := range want {
		tok := l.NextToken()
		require.Equalf(t, typ, tok.Type, "token %d", i)
	}
}

func TestNextToken_CompoundOperators(t *testing.T) {
	l := New("== != >= <= += !")
	want := []token.Type{
		token.EQ, token.NOT_EQ, token.GT_EQ, token.LT_EQ, token.PLUS_EQ, token.BANG, token.EOF,
	}
	for _, typ := range want {
		require.Equal(t, typ, l.NextToken().Type)
	}
}

func TestNextToken_Number(t *testing.T) {
	l := New("3.14 7 7.")
	tok := l.NextToken()
	require.Equal(t, token.NUMBER, tok.Type)
	require.Equal(t, 3.14, tok.Number)

	tok = l.NextToken()
	require.Equal(t, token.NUMBER, tok.Type)
	require.Equal(t, float64(7), tok.Number)

	// "7." — the dot is not followed by a digit, so it is a separate token.
	tok = l.NextToken()
	require.Equal(t, token.NUMBER, tok.Type)
	require.Equal(t, float64(7), tok.Number)
	tok = l.NextToken()
	require.Equal(t, token.DOT, tok.Type)
}

func TestNextToken_String(t *testing.T) {
	l := New(`"hello world"`)
	tok := l.NextToken()
	require.Equal(t, token.STRING, tok.Type)
	require.Equal(t, "hello world", tok.Lexeme)
}

func TestNextToken_UnterminatedString(t *testing.T) {
	l := New("\"hello")
	tok := l.NextToken()
	require.Equal(t, token.ILLEGAL, tok.Type)
}

func TestNextToken_Keywords(t *testing.T) {
	l := New("let function return if else while class constructor this true false null")
	want := []token.Type{
		token.LET, token.FUNCTION, token.RETURN, token.IF, token.ELSE, token.WHILE,
		token.CLASS, token.CONSTRUCTOR, token.THIS, token.TRUE, token.FALSE, token.NULL,
		token.EOF,
	}
	for _, typ := range want {
		require.Equal(t, typ, l.NextToken().Type)
	}
}

func TestNextToken_Comment(t *testing.T) {
	l := New("1 // this is a comment\n2")
	require.Equal(t, token.NUMBER, l.NextToken().Type)
	tok := l.NextToken()
	require.Equal(t, token.NUMBER, tok.Type)
	require.Equal(t, float64(2), tok.Number)
}

func TestNextToken_LineTracking(t *testing.T) {
	l := New("1\n2\n3")
	require.Equal(t, 1, l.NextToken().Line)
	require.Equal(t, 2, l.NextToken().Line)
	require.Equal(t, 3, l.NextToken().Line)
}
