// Package scanner turns Hack assembly source text into a flat token stream.
//
// The scan is a single forward pass over the source buffer with greedy longest-match
// lexing; this is the first of the two front-end passes spec.md singles out as the
// "hardness" of the assembler (the other being the parser), so it is hand-rolled here
// rather than built on a parser-combinator library — see DESIGN.md.
package scanner

import (
	"github.com/sirupsen/logrus"

	"github.com/hackworks/n2t-toolchain/internal/diag"
	"github.com/hackworks/n2t-toolchain/internal/token"
)

// Scanner walks a source buffer and accumulates tokens. The source must outlive the
// returned tokens (Go strings are immutable and garbage-collected together with any
// substrings taken from them, so this is automatic here rather than a caller contract).
type Scanner struct {
	source  string
	start   int
	current int
	line    int
	tokens  []token.Token
	log     *logrus.Logger
}

// New allocates a Scanner over source. Pass a *logrus.Logger via SetLogger to trace
// which rule fires for each token scanned (mirrors the teacher's PARSEC_DEBUG env var,
// rendered through a structured logger instead of raw stdout prints).
func New(source string) *Scanner {
	return &Scanner{source: source, line: 1, log: discardLogger()}
}

// SetLogger swaps in a logger used for verbose scan tracing.
func (s *Scanner) SetLogger(l *logrus.Logger) { s.log = l }

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// Scan runs the scanner to completion and returns the token stream, terminated by a
// single EOF token. Returns the first scan error encountered (unexpected character,
// or a numeric literal that overflows uint16).
func (s *Scanner) Scan() ([]token.Token, error) {
	for !s.atEnd() {
		s.start = s.current
		if err := s.scanOne(); err != nil {
			return nil, err
		}
	}
	s.tokens = append(s.tokens, token.Token{Kind: token.EOF, Line: s.line, Lexeme: ""})
	return s.tokens, nil
}

func (s *Scanner) scanOne() error {
	c := s.advance()
	switch c {
	case '@':
		s.emit(token.At)
	case '(':
		s.emit(token.LeftParen)
	case ')':
		s.emit(token.RightParen)
	case '=':
		s.emit(token.Equal)
	case ';':
		s.emit(token.Semicolon)
	case '!':
		s.emit(token.Bang)
	case '-':
		s.emit(token.Minus)
	case '+':
		s.emit(token.Plus)
	case '&':
		s.emit(token.Ampersand)
	case '|':
		s.emit(token.Pipe)
	case '\n':
		s.emit(token.LineBreak)
		s.line++
	case ' ', '\r', '\t':
		// skipped, no token
	case '/':
		if s.peek() == '/' {
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			return diag.ScanErr(s.line, s.lexeme(), "unexpected character")
		}
	default:
		switch {
		case c >= '0' && c <= '9':
			return s.number()
		case isAlpha(c):
			s.identifier()
		default:
			return diag.ScanErr(s.line, s.lexeme(), "unexpected character")
		}
	}
	return nil
}

func (s *Scanner) number() error {
	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}
	lexeme := s.lexeme()
	n, err := parseUint16(lexeme)
	if err != nil {
		return diag.ScanErr(s.line, lexeme, "number literal overflows 16 bits")
	}
	s.log.Debugf("scan: number %q -> %d at line %d", lexeme, n, s.line)
	s.tokens = append(s.tokens, token.Token{Kind: token.Number, Line: s.line, Lexeme: lexeme, Num: n})
	return nil
}

func (s *Scanner) identifier() {
	for !s.atEnd() && isIdentCont(s.peek()) {
		s.advance()
	}
	lexeme := s.lexeme()
	s.log.Debugf("scan: identifier %q at line %d", lexeme, s.line)
	s.tokens = append(s.tokens, token.Token{Kind: token.Identifier, Line: s.line, Lexeme: lexeme, Text: lexeme})
}

func (s *Scanner) emit(kind token.Kind) {
	s.log.Debugf("scan: %s %q at line %d", kind, s.lexeme(), s.line)
	s.tokens = append(s.tokens, token.Token{Kind: kind, Line: s.line, Lexeme: s.lexeme()})
}

func (s *Scanner) lexeme() string { return s.source[s.start:s.current] }

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) atEnd() bool { return s.current >= len(s.source) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isDigit(c) || isAlpha(c) || c == '_' || c == '.' || c == '$'
}

// parseUint16 is a small local decimal parser (rather than strconv.ParseUint) so that
// an overflowing literal is reported as a scan error with the exact offending lexeme,
// instead of bubbling up a strconv.NumError the caller would have to unwrap.
func parseUint16(s string) (uint16, error) {
	var n uint32
	for i := 0; i < len(s); i++ {
		n = n*10 + uint32(s[i]-'0')
		if n > 0xFFFF {
			return 0, errOverflow
		}
	}
	return uint16(n), nil
}

var errOverflow = errOverflowType{}

type errOverflowType struct{}

func (errOverflowType) Error() string { return "number literal overflows 16 bits" }
