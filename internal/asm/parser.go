package asm

import (
	"github.com/hackworks/n2t-toolchain/internal/diag"
	"github.com/hackworks/n2t-toolchain/internal/token"
)

type tokenT = token.Token
type kindT = token.Kind

const (
	kindAt         = token.At
	kindLeftParen  = token.LeftParen
	kindRightParen = token.RightParen
	kindEqual      = token.Equal
	kindSemicolon  = token.Semicolon
	kindBang       = token.Bang
	kindMinus      = token.Minus
	kindPlus       = token.Plus
	kindAmpersand  = token.Ampersand
	kindPipe       = token.Pipe
	kindLineBreak  = token.LineBreak
	kindNumber     = token.Number
	kindIdentifier = token.Identifier
	kindEOF        = token.EOF
)

// Parser is a recursive-descent parser over a token stream produced by internal/scanner.
// It mirrors the Rust original's one-token-of-lookahead grammar line for line rather
// than building on the teacher's goparsec combinators: the assembler's diagnostics
// (spec.md §7) need to name the exact offending token, which is easiest to get right
// with hand-written recursive descent — see DESIGN.md.
type Parser struct {
	tokens  []tokenT
	current int
}

// New builds a Parser over a complete token stream (as returned by scanner.Scan, i.e.
// terminated by a single EOF token).
func New(tokens []tokenT) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the whole token stream and returns the program's instructions in
// source order. Returns the first parse error encountered.
func (p *Parser) Parse() ([]Instruction, error) {
	var program []Instruction
	for !p.atEnd() {
		if p.check(kindLineBreak) {
			p.advance()
			continue
		}
		inst, err := p.instruction()
		if err != nil {
			return nil, err
		}
		program = append(program, inst)
	}
	return program, nil
}

func (p *Parser) instruction() (Instruction, error) {
	switch {
	case p.check(kindLeftParen):
		return p.label()
	case p.check(kindAt):
		return p.aInstruction()
	default:
		return p.cInstruction()
	}
}

func (p *Parser) label() (Instruction, error) {
	p.advance() // '('
	name := p.advance()
	if name.Kind != kindIdentifier {
		return nil, diag.ParseErr(name.Line, name.Lexeme, "expected a label name after '('")
	}
	closing := p.advance()
	if closing.Kind != kindRightParen {
		return nil, diag.ParseErr(closing.Line, closing.Lexeme, "expected ')' after label name")
	}
	if err := p.endOfInstruction(); err != nil {
		return nil, err
	}
	return LabelDecl{Token: name}, nil
}

func (p *Parser) aInstruction() (Instruction, error) {
	p.advance() // '@'
	tok := p.peek()
	if tok.Kind != kindNumber && tok.Kind != kindIdentifier {
		return nil, diag.ParseErr(tok.Line, tok.Lexeme, "expected a number or symbol after '@'")
	}
	p.advance()
	if err := p.endOfInstruction(); err != nil {
		return nil, err
	}
	return AInstruction{Token: tok}, nil
}

func (p *Parser) cInstruction() (Instruction, error) {
	dest, err := p.destination()
	if err != nil {
		return nil, err
	}
	comp, err := p.computation()
	if err != nil {
		return nil, err
	}
	jump, err := p.jump()
	if err != nil {
		return nil, err
	}
	if err := p.endOfInstruction(); err != nil {
		return nil, err
	}
	return CInstruction{Dest: dest, Comp: comp, Jump: jump}, nil
}

// destination looks ahead for "IDENT =" and consumes it if present; a C-instruction
// with no destination (e.g. "0;JMP") is legal, so the absence of '=' is not an error.
func (p *Parser) destination() (Destination, error) {
	if p.check(kindIdentifier) && p.checkAt(1, kindEqual) {
		ident := p.advance()
		p.advance() // '='
		dest, ok := ParseDestination(ident.Lexeme)
		if !ok {
			return DestNull, diag.ParseErr(ident.Line, ident.Lexeme, "unknown destination")
		}
		return dest, nil
	}
	return DestNull, nil
}

// computation parses the single mandatory comp field of a C-instruction. The grammar
// spans one or two tokens (e.g. "D", "-1", "D+A"), so it can't be resolved from a
// single mnemonic string the way Destination and Jump can; this mirrors
// original_source/assembler/src/parser.rs's `computation` method almost verbatim.
func (p *Parser) computation() (Computation, error) {
	tok := p.advance()
	switch tok.Kind {
	case kindNumber:
		switch tok.Num {
		case 0:
			return CompZero, nil
		case 1:
			return CompOne, nil
		default:
			return 0, diag.ParseErr(tok.Line, tok.Lexeme, "expected 0 or 1 as a computation")
		}
	case kindMinus:
		operand := p.advance()
		switch {
		case operand.Kind == kindNumber && operand.Num == 1:
			return CompNegOne, nil
		case operand.Kind == kindIdentifier && operand.Lexeme == "A":
			return CompNegA, nil
		case operand.Kind == kindIdentifier && operand.Lexeme == "D":
			return CompNegD, nil
		case operand.Kind == kindIdentifier && operand.Lexeme == "M":
			return CompNegM, nil
		default:
			return 0, diag.ParseErr(operand.Line, operand.Lexeme, "expected 1, A, D, or M after unary '-'")
		}
	case kindBang:
		operand := p.advance()
		switch {
		case operand.Kind == kindIdentifier && operand.Lexeme == "A":
			return CompNotA, nil
		case operand.Kind == kindIdentifier && operand.Lexeme == "D":
			return CompNotD, nil
		case operand.Kind == kindIdentifier && operand.Lexeme == "M":
			return CompNotM, nil
		default:
			return 0, diag.ParseErr(operand.Line, operand.Lexeme, "expected A, D, or M after '!'")
		}
	case kindIdentifier:
		return p.computationFromIdentifier(tok)
	default:
		return 0, diag.ParseErr(tok.Line, tok.Lexeme, "unknown computation")
	}
}

func (p *Parser) computationFromIdentifier(ident tokenT) (Computation, error) {
	switch ident.Lexeme {
	case "A", "D", "M":
	default:
		return 0, diag.ParseErr(ident.Line, ident.Lexeme, "expected A, D, or M")
	}

	// A bare register computation ("A", "D", "M") ends the field if the next token
	// isn't an operator the two-operand forms use.
	op := p.peek()
	if !(op.Kind == kindPlus || op.Kind == kindMinus || op.Kind == kindAmpersand || op.Kind == kindPipe) {
		switch ident.Lexeme {
		case "A":
			return CompA, nil
		case "D":
			return CompD, nil
		default:
			return CompM, nil
		}
	}
	p.advance() // operator
	rhs := p.advance()

	comp, ok := twoTokenComputation(ident.Lexeme, op.Kind, rhs)
	if !ok {
		return 0, diag.ParseErr(rhs.Line, rhs.Lexeme, "unknown computation")
	}
	return comp, nil
}

func twoTokenComputation(lhs string, op kindT, rhs tokenT) (Computation, bool) {
	if op == kindPlus && rhs.Kind == kindNumber && rhs.Num == 1 {
		switch lhs {
		case "D":
			return CompDPlus1, true
		case "A":
			return CompAPlus1, true
		case "M":
			return CompMPlus1, true
		}
	}
	if op == kindMinus && rhs.Kind == kindNumber && rhs.Num == 1 {
		switch lhs {
		case "D":
			return CompDMinus1, true
		case "A":
			return CompAMinus1, true
		case "M":
			return CompMMinus1, true
		}
	}
	if rhs.Kind != kindIdentifier {
		return 0, false
	}
	switch {
	case lhs == "D" && op == kindPlus && rhs.Lexeme == "A":
		return CompDPlusA, true
	case lhs == "D" && op == kindPlus && rhs.Lexeme == "M":
		return CompDPlusM, true
	case lhs == "D" && op == kindMinus && rhs.Lexeme == "A":
		return CompDMinusA, true
	case lhs == "D" && op == kindMinus && rhs.Lexeme == "M":
		return CompDMinusM, true
	case lhs == "A" && op == kindMinus && rhs.Lexeme == "D":
		return CompAMinusD, true
	case lhs == "M" && op == kindMinus && rhs.Lexeme == "D":
		return CompMMinusD, true
	case lhs == "D" && op == kindAmpersand && rhs.Lexeme == "A":
		return CompDAndA, true
	case lhs == "D" && op == kindAmpersand && rhs.Lexeme == "M":
		return CompDAndM, true
	case lhs == "D" && op == kindPipe && rhs.Lexeme == "A":
		return CompDOrA, true
	case lhs == "D" && op == kindPipe && rhs.Lexeme == "M":
		return CompDOrM, true
	default:
		return 0, false
	}
}

// jump looks ahead for ";IDENT"; a C-instruction with no jump (e.g. "D=A") is legal.
func (p *Parser) jump() (Jump, error) {
	if !p.check(kindSemicolon) {
		return JumpNull, nil
	}
	p.advance() // ';'
	ident := p.advance()
	if ident.Kind != kindIdentifier {
		return JumpNull, diag.ParseErr(ident.Line, ident.Lexeme, "expected a jump mnemonic after ';'")
	}
	jump, ok := ParseJump(ident.Lexeme)
	if !ok {
		return JumpNull, diag.ParseErr(ident.Line, ident.Lexeme, "unknown jump condition")
	}
	return jump, nil
}

func (p *Parser) endOfInstruction() error {
	tok := p.advance()
	if tok.Kind == kindLineBreak || tok.Kind == kindEOF {
		return nil
	}
	return diag.ParseErr(tok.Line, tok.Lexeme, "expected end of instruction")
}

func (p *Parser) peek() tokenT { return p.tokens[p.current] }

func (p *Parser) check(k kindT) bool { return p.peek().Kind == k }

func (p *Parser) checkAt(offset int, k kindT) bool {
	idx := p.current + offset
	if idx >= len(p.tokens) {
		return false
	}
	return p.tokens[idx].Kind == k
}

func (p *Parser) advance() tokenT {
	tok := p.tokens[p.current]
	if !p.atEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) atEnd() bool { return p.peek().Kind == kindEOF }
