// Package hack turns a parsed assembly program (internal/asm) into Hack machine words.
//
// Generation is two passes over the same instruction slice: RegisterLabels binds every
// label declaration to the address of the instruction that follows it, then Next pulls
// one 16-bit word at a time, resolving A-instruction symbols (allocating new variables
// starting at address 16 on first reference) and packing C-instruction fields into
// their bit-coded form.
package hack

import (
	"github.com/hackworks/n2t-toolchain/internal/asm"
	"github.com/hackworks/n2t-toolchain/internal/token"
)

// MaxAddressableMemory is the first address an A-instruction cannot reach: the opcode
// bit occupies bit 15, leaving only a 15-bit address space.
const MaxAddressableMemory uint16 = 1 << 15

// firstVariableAddress is where the allocator places the first symbol that isn't a
// built-in register and isn't already bound by a label declaration.
const firstVariableAddress uint16 = 16

// SymbolTable maps user-defined label and variable names to their resolved address.
// It starts out holding only label bindings (from RegisterLabels); Next populates it
// further with variables as they're first referenced.
type SymbolTable map[string]uint16

// BuiltInTable is the fixed set of predefined Hack symbols: the virtual-machine
// segment aliases, the sixteen general-purpose registers, and the two memory-mapped
// I/O locations.
var BuiltInTable = map[string]uint16{
	"SP": 0, "LCL": 1, "ARG": 2, "THIS": 3, "THAT": 4,
	"R0": 0, "R1": 1, "R2": 2, "R3": 3, "R4": 4, "R5": 5,
	"R6": 6, "R7": 7, "R8": 8, "R9": 9, "R10": 10, "R11": 11,
	"R12": 12, "R13": 13, "R14": 14, "R15": 15,
	"SCREEN": 16384, "KBD": 24576,
}

var compBits = map[asm.Computation]uint16{
	asm.CompZero: 0b0101010, asm.CompOne: 0b0111111, asm.CompNegOne: 0b0111010,
	asm.CompD: 0b0001100, asm.CompA: 0b0110000, asm.CompM: 0b1110000,
	asm.CompNotD: 0b0001101, asm.CompNotA: 0b0110001, asm.CompNotM: 0b1110001,
	asm.CompNegD: 0b0001111, asm.CompNegA: 0b0110011, asm.CompNegM: 0b1110011,
	asm.CompDPlus1: 0b0011111, asm.CompAPlus1: 0b0110111, asm.CompMPlus1: 0b1110111,
	asm.CompDMinus1: 0b0001110, asm.CompAMinus1: 0b0110010, asm.CompMMinus1: 0b1110010,
	asm.CompDPlusA: 0b0000010, asm.CompDPlusM: 0b1000010,
	asm.CompDMinusA: 0b0010011, asm.CompDMinusM: 0b1010011,
	asm.CompAMinusD: 0b0000111, asm.CompMMinusD: 0b1000111,
	asm.CompDAndA: 0b0000000, asm.CompDAndM: 0b1000000,
	asm.CompDOrA: 0b0010101, asm.CompDOrM: 0b1010101,
}

var destBits = map[asm.Destination]uint16{
	asm.DestNull: 0b000, asm.DestM: 0b001, asm.DestD: 0b010, asm.DestMD: 0b011,
	asm.DestA: 0b100, asm.DestAM: 0b101, asm.DestAD: 0b110, asm.DestAMD: 0b111,
}

var jumpBits = map[asm.Jump]uint16{
	asm.JumpNull: 0b000, asm.JumpGT: 0b001, asm.JumpEQ: 0b010, asm.JumpGE: 0b011,
	asm.JumpLT: 0b100, asm.JumpNE: 0b101, asm.JumpLE: 0b110, asm.JumpMP: 0b111,
}

// Generator converts one parsed program to a stream of 16-bit machine words.
type Generator struct {
	program []asm.Instruction
	table   SymbolTable
	nextVar uint16
	cursor  int
}

// NewGenerator builds a Generator over program. The returned Generator owns an empty
// SymbolTable; call RegisterLabels before the first call to Next.
func NewGenerator(program []asm.Instruction) *Generator {
	return &Generator{program: program, table: SymbolTable{}}
}

// RegisterLabels is the first pass: it walks the program computing the address each
// instruction would occupy in the final binary (label declarations occupy no address)
// and binds every label declaration to the address of the instruction following it.
// Re-declaring a label silently overwrites its previous binding, last write wins.
func (g *Generator) RegisterLabels() error {
	var address uint16
	for _, inst := range g.program {
		switch t := inst.(type) {
		case asm.LabelDecl:
			g.table[t.Token.Text] = address
		case asm.AInstruction, asm.CInstruction:
			address++
		}
	}
	return nil
}

// Next pulls the next machine word out of the program, skipping label declarations
// (which don't themselves generate code). ok is false once the program is exhausted.
func (g *Generator) Next() (uint16, bool, error) {
	for g.cursor < len(g.program) {
		inst := g.program[g.cursor]
		g.cursor++

		switch t := inst.(type) {
		case asm.LabelDecl:
			continue
		case asm.AInstruction:
			word, err := g.generateA(t)
			return word, err == nil, err
		case asm.CInstruction:
			word, err := g.generateC(t)
			return word, err == nil, err
		}
	}
	return 0, false, nil
}

func (g *Generator) generateA(inst asm.AInstruction) (uint16, error) {
	var address uint16

	switch inst.Token.Kind {
	case token.Number:
		address = inst.Token.Num
	case token.Identifier:
		name := inst.Token.Text
		if a, ok := BuiltInTable[name]; ok {
			address = a
		} else if a, ok := g.table[name]; ok {
			address = a
		} else {
			address = firstVariableAddress + g.nextVar
			g.nextVar++
			g.table[name] = address
		}
	}

	// A raw numeric literal is masked rather than rejected: the opcode bit is simply
	// discarded, it never faults. Only the low 15 bits of the literal are kept.
	return address & (MaxAddressableMemory - 1), nil
}

func (g *Generator) generateC(inst asm.CInstruction) (uint16, error) {
	word := uint16(0b111) << 13
	word |= compBits[inst.Comp] << 6
	word |= destBits[inst.Dest] << 3
	word |= jumpBits[inst.Jump]
	return word, nil
}
