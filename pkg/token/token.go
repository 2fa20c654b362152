// Package token defines the lexical tokens shared by the scanner, parser,
// resolver and interpreter.
package token

import "fmt"

// Type identifies the lexical category of a token.
type Type int

const (
	// Single-character tokens.
	LeftParen Type = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One or two character tokens.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	Identifier
	String
	Number

	// Keywords.
	And
	Class
	Else
	False
	Fn
	For
	If
	Let
	Nil
	Or
	Print
	Return
	This
	True
	While

	EOF
)

var typeNames = [...]string{
	LeftParen:    "LEFT_PAREN",
	RightParen:   "RIGHT_PAREN",
	LeftBrace:    "LEFT_BRACE",
	RightBrace:   "RIGHT_BRACE",
	Comma:        "COMMA",
	Dot:          "DOT",
	Minus:        "MINUS",
	Plus:         "PLUS",
	Semicolon:    "SEMICOLON",
	Slash:        "SLASH",
	Star:         "STAR",
	Bang:         "BANG",
	BangEqual:    "BANG_EQUAL",
	Equal:        "EQUAL",
	EqualEqual:   "EQUAL_EQUAL",
	Greater:      "GREATER",
	GreaterEqual: "GREATER_EQUAL",
	Less:         "LESS",
	LessEqual:    "LESS_EQUAL",
	Identifier:   "IDENTIFIER",
	String:       "STRING",
	Number:       "NUMBER",
	And:          "AND",
	Class:        "CLASS",
	Else:         "ELSE",
	False:        "FALSE",
	Fn:           "FN",
	For:          "FOR",
	If:           "IF",
	Let:          "LET",
	Nil:          "NIL",
	Or:           "OR",
	Print:        "PRINT",
	Return:       "RETURN",
	This:         "THIS",
	True:         "TRUE",
	While:        "WHILE",
	EOF:          "EOF",
}

func (t Type) String() string {
	if int(t) >= 0 && int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return fmt.Sprintf("token_type_%d", int(t))
}

// Keywords maps reserved words to their token types.
var Keywords = map[string]Type{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"fn":     Fn,
	"for":    For,
	"if":     If,
	"let":    Let,
	"nil":    Nil,
	"or":     Or,
	"print":  Print,
	"return": Return,
	"this":   This,
	"true":   True,
	"while":  While,
}

// Token is a single scanned lexeme. Tokens are values and are never mutated
// after scanning; they label AST nodes and runtime errors.
type Token struct {
	Type    Type
	Lexeme  string
	Literal any
	Line    int
}

// New constructs a token without a literal payload.
func New(typ Type, lexeme string, line int) Token {
	return Token{Type: typ, Lexeme: lexeme, Line: line}
}

// Ident is shorthand for an identifier token, used when synthesising nodes.
func Ident(name string, line int) Token {
	return Token{Type: Identifier, Lexeme: name, Line: line}
}

func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s %s %v", t.Type, t.Lexeme, t.Literal)
	}
	return fmt.Sprintf("%s %s", t.Type, t.Lexeme)
}
