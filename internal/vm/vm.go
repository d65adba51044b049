// Package vm holds the in-memory representation of the VM intermediate language: a
// typed union of Operations (stack/memory access, arithmetic, branching, function
// call/return) grouped into Modules (one per translation unit) that together form a
// Program.
package vm

// Program is a whole translation run: one Module per input .vm file.
type Program []Module

// Module is the flat operation sequence of a single translation unit (one .vm file).
type Module struct {
	// Name is the translation unit's static prefix, used to namespace its static
	// segment variables (e.g. "Foo" for Foo.vm's `static 3` becoming `Foo.3`).
	Name string
	Ops  []Operation
}

// Operation is the shared type for every VM command. Use a type switch to
// disambiguate, matching the instruction set a concrete Operation belongs to.
type Operation interface{ isOperation() }

// OperationType distinguishes the two MemoryOp directions.
type OperationType string

const (
	Push OperationType = "push"
	Pop  OperationType = "pop"
)

// SegmentType is the closed set of memory segments a MemoryOp can address.
type SegmentType string

const (
	Constant SegmentType = "constant"
	Local    SegmentType = "local"
	Argument SegmentType = "argument"
	This     SegmentType = "this"
	That     SegmentType = "that"
	Static   SegmentType = "static"
	Pointer  SegmentType = "pointer"
	Temp     SegmentType = "temp"
)

// MemoryOp is "push segment index" or "pop segment index".
type MemoryOp struct {
	Operation OperationType
	Segment   SegmentType
	Offset    uint16
}

func (MemoryOp) isOperation() {}

// ArithOpType is the closed set of arithmetic/logical/comparison operations, every one
// of which acts in place on the top one or two stack slots.
type ArithOpType string

const (
	Add ArithOpType = "add"
	Sub ArithOpType = "sub"
	Neg ArithOpType = "neg"
	Eq  ArithOpType = "eq"
	Gt  ArithOpType = "gt"
	Lt  ArithOpType = "lt"
	And ArithOpType = "and"
	Or  ArithOpType = "or"
	Not ArithOpType = "not"
)

// ArithmeticOp is a nullary stack operation such as "add" or "not".
type ArithmeticOp struct{ Operation ArithOpType }

func (ArithmeticOp) isOperation() {}

// LabelDeclaration is "label NAME": a branch target, emitted as "(NAME)" exactly as
// written. The name is not qualified by the enclosing function or translation unit, so
// all labels of a program share one namespace.
type LabelDeclaration struct{ Name string }

func (LabelDeclaration) isOperation() {}

// JumpType distinguishes unconditional from stack-conditioned branches.
type JumpType string

const (
	Goto   JumpType = "goto"
	IfGoto JumpType = "if-goto"
)

// GotoOp is "goto NAME" or "if-goto NAME". An if-goto pops the stack top and branches
// when it is non-zero.
type GotoOp struct {
	Jump  JumpType
	Label string
}

func (GotoOp) isOperation() {}

// FuncDecl is "function NAME nLocals": it marks the function's entry point and
// zero-initializes its nLocals local slots.
type FuncDecl struct {
	Name    string
	ArgsNum uint8
}

func (FuncDecl) isOperation() {}

// FuncCallOp is "call NAME nArgs": it saves the caller's frame, repositions ARG/LCL
// for the callee, and transfers control.
type FuncCallOp struct {
	Name    string
	ArgsNum uint8
}

func (FuncCallOp) isOperation() {}

// ReturnOp is "return": it restores the caller's frame and transfers control back to
// the saved return address, leaving the callee's result on top of the stack.
type ReturnOp struct{}

func (ReturnOp) isOperation() {}
