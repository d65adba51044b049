// Package asm holds the in-memory representation of a parsed Hack assembly program:
// an ordered list of Instructions (A-instructions, C-instructions, label declarations)
// plus the closed enums (Destination, Computation, Jump) a C-instruction is built from.
package asm

import "github.com/hackworks/n2t-toolchain/internal/token"

// Instruction is the shared type for everything the parser can produce for one logical
// line of source: an A-instruction, a C-instruction, or a label declaration.
type Instruction interface{ isInstruction() }

// AInstruction is `@x`, where x is either a numeric literal or a symbol reference. The
// backing token is kept so the code generator can distinguish Number from Identifier
// without re-parsing the lexeme, and so any code-generation error can cite the
// original line/lexeme.
type AInstruction struct {
	Token token.Token
}

func (AInstruction) isInstruction() {}

// LabelDecl is `(NAME)`. It never advances the program counter; the code generator's
// first pass binds it to the address of the next non-label instruction.
type LabelDecl struct {
	Token token.Token
}

func (LabelDecl) isInstruction() {}

// CInstruction is `dest=comp;jump` with both dest and jump optional at the syntax
// level (spec.md §3); Comp is the only field that's always meaningful.
type CInstruction struct {
	Dest Destination
	Comp Computation
	Jump Jump
}

func (CInstruction) isInstruction() {}

// Destination is the closed set of C-instruction destinations.
type Destination uint8

const (
	DestNull Destination = iota
	DestM
	DestD
	DestMD
	DestA
	DestAM
	DestAD
	DestAMD
)

var destinationNames = map[string]Destination{
	"M": DestM, "D": DestD, "MD": DestMD,
	"A": DestA, "AM": DestAM, "AD": DestAD, "AMD": DestAMD,
}

// ParseDestination resolves a destination mnemonic; ok is false for anything outside
// the closed set of eight destinations.
func ParseDestination(s string) (Destination, bool) {
	d, ok := destinationNames[s]
	return d, ok
}

// Jump is the closed set of C-instruction jump conditions.
type Jump uint8

const (
	JumpNull Jump = iota
	JumpGT
	JumpEQ
	JumpGE
	JumpLT
	JumpNE
	JumpLE
	JumpMP
)

var jumpNames = map[string]Jump{
	"JGT": JumpGT, "JEQ": JumpEQ, "JGE": JumpGE, "JLT": JumpLT,
	"JNE": JumpNE, "JLE": JumpLE, "JMP": JumpMP,
}

// ParseJump resolves a jump mnemonic; ok is false for anything outside the closed set.
func ParseJump(s string) (Jump, bool) {
	j, ok := jumpNames[s]
	return j, ok
}

// Computation is the closed set of 28 C-instruction computations. Unlike Destination
// and Jump, a Computation can't be resolved from a single mnemonic string in
// isolation — its grammar spans one or two tokens (see Parser.computation) — so there
// is no ParseComputation here; the parser builds these values directly.
type Computation uint8

const (
	CompZero Computation = iota
	CompOne
	CompNegOne
	CompD
	CompA
	CompM
	CompNotD
	CompNotA
	CompNotM
	CompNegD
	CompNegA
	CompNegM
	CompDPlus1
	CompAPlus1
	CompMPlus1
	CompDMinus1
	CompAMinus1
	CompMMinus1
	CompDPlusA
	CompDPlusM
	CompDMinusA
	CompDMinusM
	CompAMinusD
	CompMMinusD
	CompDAndA
	CompDAndM
	CompDOrA
	CompDOrM
)
