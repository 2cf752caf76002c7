package vm

import "testing"

func TestRegStringKnownAndUnknown(t *testing.T) {
	if got := R0.String(); got != "r0" {
		t.Fatalf("R0.String() = %q, want r0", got)
	}
	if got := RFP.String(); got != "rfp" {
		t.Fatalf("RFP.String() = %q, want rfp", got)
	}
	if got := Reg(999).String(); got != "r?" {
		t.Fatalf("Reg(999).String() = %q, want r?", got)
	}
}

func TestOpStringKnownAndUnknown(t *testing.T) {
	if got := ADD.String(); got != "add" {
		t.Fatalf("ADD.String() = %q, want add", got)
	}
	if got := ENTER.String(); got != "enter" {
		t.Fatalf("ENTER.String() = %q, want enter", got)
	}
	if got := Op(999).String(); got != "???" {
		t.Fatalf("Op(999).String() = %q, want ???", got)
	}
}

func TestGPCountMatchesR0ThroughRB(t *testing.T) {
	if GPCount != 12 {
		t.Fatalf("GPCount = %d, want 12", GPCount)
	}
	if RB != Reg(GPCount-1) {
		t.Fatalf("RB = %d, want %d (last general-purpose register)", RB, GPCount-1)
	}
}

func TestImmByteRangeIsSymmetricAroundZero(t *testing.T) {
	if MaxImmByte != 127 || MinImmByte != -127 {
		t.Fatalf("immediate byte range = [%d, %d], want [-127, 127]", MinImmByte, MaxImmByte)
	}
}
