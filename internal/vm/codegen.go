package vm

import (
	"fmt"
	"strings"
)

// Emitter lowers a Module (or a whole Program) directly to Hack assembly text. Unlike
// the assembler half of this repository, the VM translator emits text rather than a
// structured []asm.Instruction: every fragment below is either a fixed instruction sequence
// or one with a single numeric/label hole, so round-tripping through internal/asm's
// typed Instruction values would only add an unused layer of indirection.
//
// condCounter and callCounter keep every generated COND_n / RET_fn_n label unique
// across the whole emission, mirroring the Rust original's per-translator counters.
type Emitter struct {
	condCounter uint16
	callCounter uint16
}

// NewEmitter returns a ready-to-use Emitter.
func NewEmitter() *Emitter { return &Emitter{} }

// segmentBase names the real Hack memory cell each addressable-by-pointer segment is
// based at; Constant, Static, Pointer and Temp have their own addressing below.
var segmentBase = map[SegmentType]string{
	Local:    "LCL",
	Argument: "ARG",
	This:     "THIS",
	That:     "THAT",
}

const (
	take1 = "@SP\nAM=M-1\nD=M\n"
	take2 = take1 + "@SP\nA=M-1\n"
	pushD = "@SP\nA=M\nM=D\n@SP\nM=M+1\n"
)

// EmitProgram translates a whole program, one module at a time, in order.
func (e *Emitter) EmitProgram(p Program) (string, error) {
	var sb strings.Builder
	for _, m := range p {
		code, err := e.EmitModule(m)
		if err != nil {
			return "", err
		}
		sb.WriteString(code)
	}
	return sb.String(), nil
}

// EmitModule translates one module's operations into Hack assembly text, in order.
func (e *Emitter) EmitModule(m Module) (string, error) {
	var sb strings.Builder
	for _, op := range m.Ops {
		code, err := e.emitOp(op, m.Name)
		if err != nil {
			return "", err
		}
		sb.WriteString(code)
	}
	return sb.String(), nil
}

// Boot emits the bootstrap sequence: initialize SP to 256, then call Sys.init with no
// arguments. It takes the next call-counter slot like any other call, so its
// return-address label stays distinct from those of every module emitted by the same
// Emitter.
func (e *Emitter) Boot() string {
	return "@256\nD=A\n@SP\nM=D\n" + e.call("Sys.init", 0)
}

func (e *Emitter) emitOp(op Operation, staticPrefix string) (string, error) {
	switch t := op.(type) {
	case MemoryOp:
		if t.Operation == Push {
			return push(t.Segment, t.Offset, staticPrefix)
		}
		return pop(t.Segment, t.Offset, staticPrefix)
	case ArithmeticOp:
		switch t.Operation {
		case Eq, Gt, Lt:
			code := e.conditional(t.Operation)
			return code, nil
		default:
			return arithmetic(t.Operation)
		}
	case LabelDeclaration:
		return label(t.Name), nil
	case GotoOp:
		if t.Jump == IfGoto {
			return take1 + fmt.Sprintf("@%s\nD;JNE\n", t.Label), nil
		}
		return fmt.Sprintf("@%s\n0;JMP\n", t.Label), nil
	case FuncDecl:
		return function(t.Name, t.ArgsNum), nil
	case FuncCallOp:
		return e.call(t.Name, t.ArgsNum), nil
	case ReturnOp:
		return returnSequence, nil
	default:
		return "", fmt.Errorf("unrecognized VM operation %T", op)
	}
}

func label(name string) string { return fmt.Sprintf("(%s)\n", name) }

func function(name string, nLocals uint8) string {
	code := label(name)
	for i := uint8(0); i < nLocals; i++ {
		code += "@SP\nA=M\nM=0\n@SP\nM=M+1\n"
	}
	return code
}

// call implements the Hack calling convention: save the caller's frame, reposition
// ARG/LCL for the callee, and transfer control, landing back at a generated
// return-address label once the callee's "return" runs.
func (e *Emitter) call(name string, nArgs uint8) string {
	retLabel := fmt.Sprintf("RET_%s_%d", name, e.callCounter)
	e.callCounter++

	var code strings.Builder
	code.WriteString(fmt.Sprintf("@%s\nD=A\n", retLabel))
	code.WriteString(pushD)
	for _, seg := range []string{"LCL", "ARG", "THIS", "THAT"} {
		code.WriteString(fmt.Sprintf("@%s\nD=M\n", seg))
		code.WriteString(pushD)
	}
	code.WriteString(fmt.Sprintf("@SP\nD=M\n@%d\nD=D-A\n@ARG\nM=D\n", 5+int(nArgs)))
	code.WriteString("@SP\nD=M\n@LCL\nM=D\n")
	code.WriteString(fmt.Sprintf("@%s\n0;JMP\n", name))
	code.WriteString(fmt.Sprintf("(%s)\n", retLabel))
	return code.String()
}

// returnSequence restores the caller's frame from the five saved slots below LCL (in
// reverse order: THAT, THIS, ARG, LCL) using R14/R15 as scratch, then jumps back to the
// saved return address. It must run before LCL/ARG are overwritten, which is why the
// return value is repositioned into *ARG before THAT/THIS/ARG/LCL are restored.
const returnSequence = "" +
	"@LCL\nD=M\n@R14\nM=D\n" + // R14 = endFrame (callee's LCL)
	"@5\nA=D-A\nD=M\n@R15\nM=D\n" + // R15 = return address, *(endFrame-5)
	take1 + // D = return value
	"@ARG\nA=M\nM=D\n" + // *ARG = return value
	"D=A\n@SP\nM=D+1\n" + // SP = ARG + 1
	"@R14\nA=M-1\nD=M\n@THAT\nM=D\n" + // THAT = *(endFrame-1)
	"@R14\nD=M-1\nA=D-1\nD=M\n@THIS\nM=D\n" + // THIS = *(endFrame-2)
	"@R14\nD=M-1\nD=D-1\nA=D-1\nD=M\n@ARG\nM=D\n" + // ARG = *(endFrame-3)
	"@R14\nD=M-1\nD=D-1\nD=D-1\nA=D-1\nD=M\n@LCL\nM=D\n" + // LCL = *(endFrame-4)
	"@R15\nA=M\n0;JMP\n" // jump to the saved return address

func (e *Emitter) conditional(op ArithOpType) string {
	jump := map[ArithOpType]string{Eq: "JEQ", Gt: "JGT", Lt: "JLT"}[op]
	counter := e.condCounter
	e.condCounter++
	return take2 + "D=M-D\nM=-1\n" +
		fmt.Sprintf("@COND_%d\nD;%s\n@SP\nA=M-1\nM=0\n(COND_%d)\n", counter, jump, counter)
}

func arithmetic(op ArithOpType) (string, error) {
	switch op {
	case Add:
		return take2 + "M=D+M\n", nil
	case Sub:
		return take2 + "M=M-D\n", nil
	case Neg:
		return "@SP\nA=M-1\nM=-M\n", nil
	case And:
		return take2 + "M=D&M\n", nil
	case Or:
		return take2 + "M=D|M\n", nil
	case Not:
		return "@SP\nA=M-1\nM=!M\n", nil
	default:
		return "", fmt.Errorf("unrecognized arithmetic operation %q", op)
	}
}

func pop(segment SegmentType, i uint16, staticPrefix string) (string, error) {
	if base, ok := segmentBase[segment]; ok {
		return fmt.Sprintf("@%d\nD=A\n@%s\nD=D+M\n@R13\nM=D\n", i, base) + take1 + "@R13\nA=M\nM=D\n", nil
	}
	switch segment {
	case Constant:
		return "", fmt.Errorf("'pop constant %d' is not a valid VM operation", i)
	case Static:
		return take1 + fmt.Sprintf("@%s.%d\nM=D\n", staticPrefix, i), nil
	case Pointer:
		addr, err := pointerTarget(i)
		if err != nil {
			return "", err
		}
		return take1 + fmt.Sprintf("@%s\nM=D\n", addr), nil
	case Temp:
		return fmt.Sprintf("@%d\nD=A\n@5\nD=D+A\n@R13\nM=D\n", i) + take1 + "@R13\nA=M\nM=D\n", nil
	default:
		return "", fmt.Errorf("unrecognized segment %q", segment)
	}
}

func push(segment SegmentType, i uint16, staticPrefix string) (string, error) {
	if base, ok := segmentBase[segment]; ok {
		return fmt.Sprintf("@%d\nD=A\n@%s\nAD=D+M\nD=M\n", i, base) + pushD, nil
	}
	switch segment {
	case Constant:
		return fmt.Sprintf("@%d\nD=A\n", i) + pushD, nil
	case Static:
		return fmt.Sprintf("@%s.%d\nD=M\n", staticPrefix, i) + pushD, nil
	case Pointer:
		addr, err := pointerTarget(i)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("@%s\nD=M\n", addr) + pushD, nil
	case Temp:
		return fmt.Sprintf("@%d\nD=A\n@5\nAD=D+A\nD=M\n", i) + pushD, nil
	default:
		return "", fmt.Errorf("unrecognized segment %q", segment)
	}
}

func pointerTarget(i uint16) (string, error) {
	switch i {
	case 0:
		return "THIS", nil
	case 1:
		return "THAT", nil
	default:
		return "", fmt.Errorf("pointer segment only supports index 0 or 1, got %d", i)
	}
}
