package vm

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	pc "github.com/prataprc/goparsec"

	"github.com/hackworks/n2t-toolchain/internal/diag"
)

// ----------------------------------------------------------------------------
// Parser Combinator(s)

// Grammar for one VM translation unit, built the same way the Hack assembler's sibling
// package would if it used a combinator library: a handful of small combinators
// (pMemoryOp, pArithmeticOp, ...) combined into pOperation, itself repeated by pModule
// until input is exhausted.

var ast = pc.NewAST("virtual_machine", 0)

var (
	pModule = ast.ManyUntil("module", nil, ast.OrdChoice("node", nil, pComment, pOperation), pc.End())

	pComment = ast.And("comment", nil, pc.Atom("//", "//"), pc.Token(`(?m).*$`, "COMMENT"))

	pOperation = ast.OrdChoice("operation", nil,
		pMemoryOp, pArithmeticOp, pLabelDecl, pGotoOp,
		pFuncDecl, pFunCallOp, pReturnOp,
	)

	pMemoryOp     = ast.And("memory_op", nil, pMemOpType, pSegment, pc.Int())
	pArithmeticOp = ast.And("arithmetic_op", nil, pArithOpType)

	pLabelDecl = ast.And("label_decl", nil, pc.Atom("label", "LABEL"), pIdent)
	pGotoOp    = ast.And("goto_op", nil, pJumpType, pIdent)

	pFuncDecl  = ast.And("func_decl", nil, pc.Atom("function", "FUNC"), pIdent, pc.Int())
	pFunCallOp = ast.And("func_call", nil, pc.Atom("call", "CALL"), pIdent, pc.Int())
	pReturnOp  = ast.And("return_op", nil, pc.Atom("return", "RETURN"))
)

var (
	// NOTE: An ident cannot begin with a leading digit (a symbol is allowed).
	pIdent = pc.Token(`[A-Za-z_.$:][0-9a-zA-Z_.$:]*`, "IDENT")

	pMemOpType = ast.OrdChoice("mem_op_type", nil, pc.Atom("push", "PUSH"), pc.Atom("pop", "POP"))

	pSegment = ast.OrdChoice("mem_segment", nil,
		pc.Atom("argument", "ARGUMENT"), pc.Atom("local", "LOCAL"),
		pc.Atom("static", "STATIC"), pc.Atom("constant", "CONSTANT"),
		pc.Atom("this", "THIS"), pc.Atom("that", "THAT"),
		pc.Atom("temp", "TEMP"), pc.Atom("pointer", "POINTER"),
	)

	pArithOpType = ast.OrdChoice("operations", nil,
		pc.Atom("eq", "EQ"), pc.Atom("gt", "GT"), pc.Atom("lt", "LT"),
		pc.Atom("add", "ADD"), pc.Atom("sub", "SUB"), pc.Atom("neg", "NEG"),
		pc.Atom("not", "NOT"), pc.Atom("and", "AND"), pc.Atom("or", "OR"),
	)

	pJumpType = ast.OrdChoice("jump_type", nil, pc.Atom("goto", "GOTO"), pc.Atom("if-goto", "IF-GOTO"))
)

// ----------------------------------------------------------------------------
// Vm Parser

// Parser parses one translation unit's source into a Module. Name is the translation
// unit's static prefix (typically the .vm file's stem), attached to the returned
// Module for the code generator to namespace static-segment variables with.
type Parser struct {
	reader io.Reader
	name   string
}

// NewParser builds a Parser reading from r, tagging the resulting Module with name.
func NewParser(r io.Reader, name string) Parser {
	return Parser{reader: r, name: name}
}

// Parse runs both parsing phases: text to AST, then AST to Module.
func (p *Parser) Parse() (Module, error) {
	content, err := io.ReadAll(p.reader)
	if err != nil {
		return Module{}, fmt.Errorf("cannot read from input: %s", err)
	}

	root, err := p.FromSource(content)
	if err != nil {
		return Module{}, err
	}

	ops, err := p.FromAST(root)
	if err != nil {
		return Module{}, err
	}
	return Module{Name: p.name, Ops: ops}, nil
}

// FromSource scans source into a traversable AST. A trailing leftover in the scanner
// once pModule has consumed everything it can means some line didn't match the grammar
// at all (e.g. "push constant" with no index, or a stray token); that's a syntax error,
// not a partial program, so it's reported rather than silently dropped.
func (p *Parser) FromSource(source []byte) (pc.Queryable, error) {
	if os.Getenv("PARSEC_DEBUG") != "" {
		ast.SetDebug()
	}
	root, remaining := ast.Parsewith(pModule, pc.NewScanner(source))
	if !remaining.Endof() {
		line, lexeme := leftoverContext(source, remaining.GetCursor())
		return nil, diag.ParseErr(line, lexeme, "failed to parse entire input")
	}
	return root, nil
}

// leftoverContext locates the first unparsed line in source starting at cursor (the
// byte offset the scanner stopped at) and returns its 1-based line number plus its text,
// for naming the offending line in the diagnostic FromSource raises.
func leftoverContext(source []byte, cursor int) (int, string) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(source) {
		cursor = len(source)
	}
	line := 1 + bytes.Count(source[:cursor], []byte("\n"))
	rest := source[cursor:]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return line, strings.TrimSpace(string(rest))
}

// FromAST walks the AST's top-level children (a DFS one level deep, since the grammar
// is flat) producing the Module's Operation slice.
func (p *Parser) FromAST(root pc.Queryable) ([]Operation, error) {
	ops := []Operation{}

	if root.GetName() != "module" {
		return nil, fmt.Errorf("expected node 'module', found %s", root.GetName())
	}

	for _, child := range root.GetChildren() {
		var op Operation
		var err error

		switch child.GetName() {
		case "memory_op":
			op, err = p.handleMemoryOp(child)
		case "arithmetic_op":
			op, err = p.handleArithmeticOp(child)
		case "label_decl":
			op, err = p.handleLabelDecl(child)
		case "goto_op":
			op, err = p.handleGotoOp(child)
		case "func_decl":
			op, err = p.handleFuncDecl(child)
		case "func_call":
			op, err = p.handleFuncCall(child)
		case "return_op":
			op, err = p.handleReturnOp(child)
		case "comment":
			continue
		default:
			return nil, fmt.Errorf("unrecognized node '%s'", child.GetName())
		}

		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	return ops, nil
}

func (Parser) handleMemoryOp(node pc.Queryable) (Operation, error) {
	children := node.GetChildren()
	if len(children) != 3 {
		return nil, fmt.Errorf("expected node 'memory_op' with 3 leaves, got %d", len(children))
	}
	operation := OperationType(children[0].GetValue())
	segment := SegmentType(children[1].GetValue())
	offset, err := strconv.ParseUint(children[2].GetValue(), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("failed to parse 'offset' in memory_op, got '%s'", children[2].GetValue())
	}
	return MemoryOp{Operation: operation, Segment: segment, Offset: uint16(offset)}, nil
}

func (Parser) handleArithmeticOp(node pc.Queryable) (Operation, error) {
	children := node.GetChildren()
	if len(children) != 1 {
		return nil, fmt.Errorf("expected node 'arithmetic_op' with 1 leaf, got %d", len(children))
	}
	return ArithmeticOp{Operation: ArithOpType(children[0].GetValue())}, nil
}

func (Parser) handleLabelDecl(node pc.Queryable) (Operation, error) {
	children := node.GetChildren()
	if len(children) != 2 {
		return nil, fmt.Errorf("expected node 'label_decl' with 2 leaves, got %d", len(children))
	}
	return LabelDeclaration{Name: children[1].GetValue()}, nil
}

func (Parser) handleGotoOp(node pc.Queryable) (Operation, error) {
	children := node.GetChildren()
	if len(children) != 2 {
		return nil, fmt.Errorf("expected node 'goto_op' with 2 leaves, got %d", len(children))
	}
	return GotoOp{Jump: JumpType(children[0].GetValue()), Label: children[1].GetValue()}, nil
}

func (Parser) handleFuncDecl(node pc.Queryable) (Operation, error) {
	children := node.GetChildren()
	if len(children) != 3 {
		return nil, fmt.Errorf("expected node 'func_decl' with 3 leaves, got %d", len(children))
	}
	name := children[1].GetValue()
	nLocals, err := strconv.ParseUint(children[2].GetValue(), 10, 8)
	if err != nil {
		return nil, fmt.Errorf("failed to parse local count in func_decl, got '%s'", children[2].GetValue())
	}
	return FuncDecl{Name: name, ArgsNum: uint8(nLocals)}, nil
}

func (Parser) handleFuncCall(node pc.Queryable) (Operation, error) {
	children := node.GetChildren()
	if len(children) != 3 {
		return nil, fmt.Errorf("expected node 'func_call' with 3 leaves, got %d", len(children))
	}
	name := children[1].GetValue()
	nArgs, err := strconv.ParseUint(children[2].GetValue(), 10, 8)
	if err != nil {
		return nil, fmt.Errorf("failed to parse arg count in func_call, got '%s'", children[2].GetValue())
	}
	return FuncCallOp{Name: name, ArgsNum: uint8(nArgs)}, nil
}

func (Parser) handleReturnOp(node pc.Queryable) (Operation, error) {
	children := node.GetChildren()
	if len(children) != 1 {
		return nil, fmt.Errorf("expected node 'return_op' with 1 leaf, got %d", len(children))
	}
	return ReturnOp{}, nil
}
