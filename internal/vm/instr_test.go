package vm

import "testing"

func TestOperandConstructorsTagTheirKind(t *testing.T) {
	if got := RegOp(R1); got.Kind != OpReg || got.Reg != R1 {
		t.Fatalf("RegOp(R1) = %+v, want Kind=OpReg Reg=R1", got)
	}
	if got := ImmOp(42); got.Kind != OpImm || got.Imm != 42 {
		t.Fatalf("ImmOp(42) = %+v, want Kind=OpImm Imm=42", got)
	}
	if got := SymAddrOp("foo"); got.Kind != OpSymAddr || got.Ref != "foo" {
		t.Fatalf("SymAddrOp(foo) = %+v, want Kind=OpSymAddr Ref=foo", got)
	}
	if got := LabelOp("L1"); got.Kind != OpLabel || got.Ref != "L1" {
		t.Fatalf("LabelOp(L1) = %+v, want Kind=OpLabel Ref=L1", got)
	}
}

func TestIBuildsInstrWithArgsInOrder(t *testing.T) {
	instr := I(ADD, RegOp(R0), RegOp(R1), ImmOp(3))
	if instr.Op != ADD {
		t.Fatalf("instr.Op = %v, want ADD", instr.Op)
	}
	if len(instr.Args) != 3 {
		t.Fatalf("len(instr.Args) = %d, want 3", len(instr.Args))
	}
	if instr.Args[0].Reg != R0 || instr.Args[1].Reg != R1 || instr.Args[2].Imm != 3 {
		t.Fatalf("instr.Args = %+v, want [r0 r1 3]", instr.Args)
	}
}

func TestICallWithNoOperands(t *testing.T) {
	instr := I(RET)
	if instr.Op != RET || instr.Args != nil {
		t.Fatalf("I(RET) = %+v, want a bare RET with no args", instr)
	}
}
