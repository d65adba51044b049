package asm_test

import (
	"testing"

	"github.com/hackworks/n2t-toolchain/internal/asm"
	"github.com/hackworks/n2t-toolchain/internal/scanner"
)

func parse(t *testing.T, src string) []asm.Instruction {
	t.Helper()
	tokens, err := scanner.New(src).Scan()
	if err != nil {
		t.Fatalf("scan error: %s", err)
	}
	program, err := asm.New(tokens).Parse()
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	return program
}

func TestParseAInstructionNumeric(t *testing.T) {
	program := parse(t, "@21\n")
	if len(program) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(program))
	}
	a, ok := program[0].(asm.AInstruction)
	if !ok {
		t.Fatalf("expected AInstruction, got %T", program[0])
	}
	if a.Token.Lexeme != "21" {
		t.Fatalf("unexpected token: %+v", a.Token)
	}
}

func TestParseAInstructionSymbolic(t *testing.T) {
	program := parse(t, "@LOOP\n")
	a := program[0].(asm.AInstruction)
	if a.Token.Lexeme != "LOOP" {
		t.Fatalf("unexpected token: %+v", a.Token)
	}
}

func TestParseLabelDecl(t *testing.T) {
	program := parse(t, "(LOOP)\n")
	label, ok := program[0].(asm.LabelDecl)
	if !ok {
		t.Fatalf("expected LabelDecl, got %T", program[0])
	}
	if label.Token.Lexeme != "LOOP" {
		t.Fatalf("unexpected label name: %q", label.Token.Lexeme)
	}
}

func TestParseCInstructionFull(t *testing.T) {
	program := parse(t, "MD=D+1;JGT\n")
	c, ok := program[0].(asm.CInstruction)
	if !ok {
		t.Fatalf("expected CInstruction, got %T", program[0])
	}
	if c.Dest != asm.DestMD {
		t.Fatalf("unexpected dest: %v", c.Dest)
	}
	if c.Comp != asm.CompDPlus1 {
		t.Fatalf("unexpected comp: %v", c.Comp)
	}
	if c.Jump != asm.JumpGT {
		t.Fatalf("unexpected jump: %v", c.Jump)
	}
}

func TestParseCInstructionNoDestNoJump(t *testing.T) {
	program := parse(t, "0\n")
	c := program[0].(asm.CInstruction)
	if c.Dest != asm.DestNull || c.Jump != asm.JumpNull || c.Comp != asm.CompZero {
		t.Fatalf("unexpected instruction: %+v", c)
	}
}

func TestParseCInstructionJumpOnly(t *testing.T) {
	program := parse(t, "D;JEQ\n")
	c := program[0].(asm.CInstruction)
	if c.Dest != asm.DestNull || c.Comp != asm.CompD || c.Jump != asm.JumpEQ {
		t.Fatalf("unexpected instruction: %+v", c)
	}
}

func TestParseAllUnaryAndBinaryComputations(t *testing.T) {
	cases := map[string]asm.Computation{
		"0":     asm.CompZero,
		"1":     asm.CompOne,
		"-1":    asm.CompNegOne,
		"D":     asm.CompD,
		"A":     asm.CompA,
		"M":     asm.CompM,
		"!D":    asm.CompNotD,
		"!A":    asm.CompNotA,
		"!M":    asm.CompNotM,
		"-D":    asm.CompNegD,
		"-A":    asm.CompNegA,
		"-M":    asm.CompNegM,
		"D+1":   asm.CompDPlus1,
		"A+1":   asm.CompAPlus1,
		"M+1":   asm.CompMPlus1,
		"D-1":   asm.CompDMinus1,
		"A-1":   asm.CompAMinus1,
		"M-1":   asm.CompMMinus1,
		"D+A":   asm.CompDPlusA,
		"D+M":   asm.CompDPlusM,
		"D-A":   asm.CompDMinusA,
		"D-M":   asm.CompDMinusM,
		"A-D":   asm.CompAMinusD,
		"M-D":   asm.CompMMinusD,
		"D&A":   asm.CompDAndA,
		"D&M":   asm.CompDAndM,
		"D|A":   asm.CompDOrA,
		"D|M":   asm.CompDOrM,
	}
	for src, want := range cases {
		program := parse(t, src+"\n")
		c, ok := program[0].(asm.CInstruction)
		if !ok {
			t.Fatalf("%q: expected CInstruction, got %T", src, program[0])
		}
		if c.Comp != want {
			t.Fatalf("%q: comp = %v, want %v", src, c.Comp, want)
		}
	}
}

func TestParseUnknownDestinationIsParseError(t *testing.T) {
	tokens, err := scanner.New("X=D\n").Scan()
	if err != nil {
		t.Fatalf("unexpected scan error: %s", err)
	}
	if _, err := asm.New(tokens).Parse(); err == nil {
		t.Fatal("expected a parse error for an unknown destination")
	}
}

func TestParseUnknownJumpIsParseError(t *testing.T) {
	tokens, err := scanner.New("D;JXX\n").Scan()
	if err != nil {
		t.Fatalf("unexpected scan error: %s", err)
	}
	if _, err := asm.New(tokens).Parse(); err == nil {
		t.Fatal("expected a parse error for an unknown jump condition")
	}
}

func TestParseTrailingGarbageIsParseError(t *testing.T) {
	tokens, err := scanner.New("D=A extra\n").Scan()
	if err != nil {
		t.Fatalf("unexpected scan error: %s", err)
	}
	if _, err := asm.New(tokens).Parse(); err == nil {
		t.Fatal("expected a parse error for trailing tokens on the instruction line")
	}
}

func TestParseMultipleInstructionsAndBlankLines(t *testing.T) {
	program := parse(t, "@0\nD=M\n\n(LOOP)\n@LOOP\n0;JMP\n")
	if len(program) != 5 {
		t.Fatalf("expected 5 instructions, got %d: %+v", len(program), program)
	}
}
