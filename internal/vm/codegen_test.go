package vm_test

import (
	"strings"
	"testing"

	"github.com/hackworks/n2t-toolchain/internal/vm"
)

func TestEmitPushConstant(t *testing.T) {
	e := vm.NewEmitter()
	code, err := e.EmitModule(vm.Module{Name: "Foo", Ops: []vm.Operation{
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Constant, Offset: 7},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := "@7\nD=A\n@SP\nA=M\nM=D\n@SP\nM=M+1\n"
	if code != want {
		t.Fatalf("got:\n%s\nwant:\n%s", code, want)
	}
}

func TestEmitPopConstantIsError(t *testing.T) {
	e := vm.NewEmitter()
	_, err := e.EmitModule(vm.Module{Name: "Foo", Ops: []vm.Operation{
		vm.MemoryOp{Operation: vm.Pop, Segment: vm.Constant, Offset: 0},
	}})
	if err == nil {
		t.Fatal("expected an error for 'pop constant'")
	}
}

func TestEmitStaticSegmentUsesModulePrefix(t *testing.T) {
	e := vm.NewEmitter()
	code, err := e.EmitModule(vm.Module{Name: "Foo", Ops: []vm.Operation{
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Static, Offset: 3},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.Contains(code, "@Foo.3\n") {
		t.Fatalf("expected static variable to be namespaced by module name, got:\n%s", code)
	}
}

func TestEmitPointerSegmentBoundsCheck(t *testing.T) {
	e := vm.NewEmitter()
	_, err := e.EmitModule(vm.Module{Name: "Foo", Ops: []vm.Operation{
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Pointer, Offset: 2},
	}})
	if err == nil {
		t.Fatal("expected an error for pointer index outside {0,1}")
	}
}

func TestEmitPointerSegmentAddressing(t *testing.T) {
	e := vm.NewEmitter()
	code, err := e.EmitModule(vm.Module{Name: "Foo", Ops: []vm.Operation{
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Pointer, Offset: 0},
		vm.MemoryOp{Operation: vm.Push, Segment: vm.Pointer, Offset: 1},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.Contains(code, "@THIS\n") || !strings.Contains(code, "@THAT\n") {
		t.Fatalf("expected pointer 0/1 to address THIS/THAT, got:\n%s", code)
	}
}

func TestEmitConditionalLabelsAreUnique(t *testing.T) {
	e := vm.NewEmitter()
	code, err := e.EmitModule(vm.Module{Name: "Foo", Ops: []vm.Operation{
		vm.ArithmeticOp{Operation: vm.Eq},
		vm.ArithmeticOp{Operation: vm.Eq},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.Contains(code, "(COND_0)") || !strings.Contains(code, "(COND_1)") {
		t.Fatalf("expected two distinct COND labels, got:\n%s", code)
	}
}

func TestEmitCallPushesFrameAndJumps(t *testing.T) {
	e := vm.NewEmitter()
	code, err := e.EmitModule(vm.Module{Name: "Foo", Ops: []vm.Operation{
		vm.FuncCallOp{Name: "Bar.baz", ArgsNum: 2},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	for _, want := range []string{"@LCL\nD=M\n", "@ARG\nD=M\n", "@THIS\nD=M\n", "@THAT\nD=M\n", "@Bar.baz\n0;JMP\n"} {
		if !strings.Contains(code, want) {
			t.Fatalf("expected call sequence to contain %q, got:\n%s", want, code)
		}
	}
	if !strings.Contains(code, "@7\n") { // SP - 5 - nArgs(2) == SP - 7
		t.Fatalf("expected ARG repositioning by 5+nArgs, got:\n%s", code)
	}
}

func TestEmitCallReturnLabelsAreUniquePerCallSite(t *testing.T) {
	e := vm.NewEmitter()
	code, err := e.EmitModule(vm.Module{Name: "Foo", Ops: []vm.Operation{
		vm.FuncCallOp{Name: "Bar.baz", ArgsNum: 0},
		vm.FuncCallOp{Name: "Bar.baz", ArgsNum: 0},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.Contains(code, "(RET_Bar.baz_0)") || !strings.Contains(code, "(RET_Bar.baz_1)") {
		t.Fatalf("expected two distinct return-address labels, got:\n%s", code)
	}
}

func TestEmitFunctionZeroInitializesLocals(t *testing.T) {
	e := vm.NewEmitter()
	code, err := e.EmitModule(vm.Module{Name: "Foo", Ops: []vm.Operation{
		vm.FuncDecl{Name: "Foo.bar", ArgsNum: 3},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.HasPrefix(code, "(Foo.bar)\n") {
		t.Fatalf("expected function to start with its label, got:\n%s", code)
	}
	if count := strings.Count(code, "M=0\n"); count != 3 {
		t.Fatalf("expected 3 local-zeroing stores, got %d in:\n%s", count, code)
	}
}

func TestEmitReturnRestoresCallerFrame(t *testing.T) {
	e := vm.NewEmitter()
	code, err := e.EmitModule(vm.Module{Name: "Foo", Ops: []vm.Operation{vm.ReturnOp{}}})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	for _, want := range []string{"@THAT\nM=D\n", "@THIS\nM=D\n", "@ARG\nM=D\n", "@LCL\nM=D\n", "@R15\nA=M\n0;JMP\n"} {
		if !strings.Contains(code, want) {
			t.Fatalf("expected return sequence to contain %q, got:\n%s", want, code)
		}
	}
}

func TestEmitBootInitializesSPAndCallsSysInit(t *testing.T) {
	e := vm.NewEmitter()
	boot := e.Boot()
	if !strings.HasPrefix(boot, "@256\nD=A\n@SP\nM=D\n") {
		t.Fatalf("expected boot to initialize SP to 256, got:\n%s", boot)
	}
	if !strings.Contains(boot, "@Sys.init\n0;JMP\n") {
		t.Fatalf("expected boot to call Sys.init, got:\n%s", boot)
	}
}

func TestEmitProgramConcatenatesModulesInOrder(t *testing.T) {
	e := vm.NewEmitter()
	code, err := e.EmitProgram(vm.Program{
		{Name: "A", Ops: []vm.Operation{vm.LabelDeclaration{Name: "FIRST"}}},
		{Name: "B", Ops: []vm.Operation{vm.LabelDeclaration{Name: "SECOND"}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if strings.Index(code, "(FIRST)") > strings.Index(code, "(SECOND)") {
		t.Fatalf("expected modules to be emitted in order, got:\n%s", code)
	}
}
