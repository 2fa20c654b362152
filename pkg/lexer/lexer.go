// Package lexer turns source text into tokens.
package lexer

import (
	"strconv"

	"github.com/fcruzel/tlox/pkg/diagnostics"
	"github.com/fcruzel/tlox/pkg/token"
)

type scanner struct {
	source   string
	tokens   []token.Token
	start    int
	current  int
	line     int
	reporter diagnostics.Reporter
}

// Scan tokenizes source. Lexical errors are reported and scanning continues,
// so the returned slice always ends with an EOF token.
func Scan(source string, reporter diagnostics.Reporter) []token.Token {
	s := &scanner{source: source, line: 1, reporter: reporter}
	for !s.atEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.New(token.EOF, "", s.line))
	return s.tokens
}

func (s *scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.add(token.LeftParen)
	case ')':
		s.add(token.RightParen)
	case '{':
		s.add(token.LeftBrace)
	case '}':
		s.add(token.RightBrace)
	case ',':
		s.add(token.Comma)
	case '.':
		s.add(token.Dot)
	case '-':
		s.add(token.Minus)
	case '+':
		s.add(token.Plus)
	case ';':
		s.add(token.Semicolon)
	case '*':
		s.add(token.Star)
	case '!':
		s.addEither('=', token.BangEqual, token.Bang)
	case '=':
		s.addEither('=', token.EqualEqual, token.Equal)
	case '<':
		s.addEither('=', token.LessEqual, token.Less)
	case '>':
		s.addEither('=', token.GreaterEqual, token.Greater)
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.atEnd() {
				s.advance()
			}
			return
		}
		s.add(token.Slash)
	case ' ', '\r', '\t':
	case '\n':
		s.line++
	case '"':
		s.string()
	default:
		switch {
		case isDigit(c):
			s.number()
		case isAlpha(c):
			s.identifier()
		default:
			s.error("Unexpected character.")
		}
	}
}

func (s *scanner) string() {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		s.error("Unterminated string.")
		return
	}
	s.advance()
	s.addLiteral(token.String, s.source[s.start+1:s.current-1])
}

func (s *scanner) number() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	value, err := strconv.ParseFloat(s.source[s.start:s.current], 64)
	if err != nil {
		s.error("Invalid number literal.")
		return
	}
	s.addLiteral(token.Number, value)
}

func (s *scanner) identifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.current]
	if typ, ok := token.Keywords[text]; ok {
		s.add(typ)
		return
	}
	s.add(token.Identifier)
}

func (s *scanner) error(message string) {
	if s.reporter != nil {
		s.reporter.ReportLine(diagnostics.PhaseLex, s.line, message)
	}
}

func (s *scanner) add(typ token.Type) {
	s.addLiteral(typ, nil)
}

func (s *scanner) addLiteral(typ token.Type, literal any) {
	s.tokens = append(s.tokens, token.Token{
		Type:    typ,
		Lexeme:  s.source[s.start:s.current],
		Literal: literal,
		Line:    s.line,
	})
}

func (s *scanner) addEither(next byte, matched, single token.Type) {
	if s.match(next) {
		s.add(matched)
		return
	}
	s.add(single)
}

func (s *scanner) match(expected byte) bool {
	if s.atEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *scanner) atEnd() bool {
	return s.current >= len(s.source)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
