// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func amd64ContextBytes(rip uint64) []byte {
	var buf bytes.Buffer
	raw := contextAMD64{ContextFlags: contextFlagAMD64, Rip: rip, Rsp: 0x1000}
	binary.Write(&buf, binary.LittleEndian, raw)
	return buf.Bytes()
}

// TestDecodeContextAMD64ResolvesByPayloadSize covers the common case: an
// AMD64 context has no reliable flag word at offset 0 (ContextFlags sits
// behind P1Home..P6Home at offset 48), so it must resolve from the exact
// 1232-byte payload length alone, without consulting a SystemInfo hint.
func TestDecodeContextAMD64ResolvesByPayloadSize(t *testing.T) {
	ctx, err := decodeContext(amd64ContextBytes(0xdeadbeef), cpuUnknown)
	if err != nil {
		t.Fatalf("decodeContext: %v", err)
	}
	if ctx.Raw.CPUType() != CPUAMD64 {
		t.Fatalf("CPUType() = %v, want amd64", ctx.Raw.CPUType())
	}
	if ip := ctx.InstructionPointer(); ip != 0xdeadbeef {
		t.Errorf("InstructionPointer() = %#x, want 0xdeadbeef", ip)
	}
}

// TestDecodeContextAMD64IgnoresGarbageLeadingBytes confirms that, even
// when the first four bytes (really P1Home's low word) look like a
// plausible-but-wrong flag, size-first resolution still wins for AMD64.
func TestDecodeContextAMD64IgnoresGarbageLeadingBytes(t *testing.T) {
	data := amd64ContextBytes(0x1234)
	binary.LittleEndian.PutUint32(data[:4], 0xffffffff)

	ctx, err := decodeContext(data, cpuUnknown)
	if err != nil {
		t.Fatalf("decodeContext: %v", err)
	}
	if ctx.Raw.CPUType() != CPUAMD64 {
		t.Fatalf("CPUType() = %v, want amd64 (resolved by size)", ctx.Raw.CPUType())
	}
}

func TestDecodeContextUnknownCPUContext(t *testing.T) {
	data := make([]byte, 37) // matches no known flag word or exact size
	if _, err := decodeContext(data, cpuUnknown); err == nil {
		t.Fatal("decodeContext(garbage) = nil error, want ErrUnknownCPUContext")
	} else if ctxErr, ok := err.(*ContextError); !ok || ctxErr.Reason != ErrUnknownCPUContext {
		t.Errorf("decodeContext(garbage) = %v, want ContextError{Reason: ErrUnknownCPUContext}", err)
	}
}

func TestDecodeContextShortBufferIsOutOfBounds(t *testing.T) {
	if _, err := decodeContext([]byte{1, 2}, cpuUnknown); err == nil {
		t.Fatal("decodeContext(2 bytes) = nil error, want ContextError")
	}
}

func TestCPUHintDisambiguatesARM64Old(t *testing.T) {
	// ARM64 and ARM64-old share no distinguishing flag bit in this package;
	// only the SystemInfo-derived hint can tell them apart when a payload
	// happens to match neither architecture's exact size.
	data := make([]byte, contextSizeARM64Old+8)
	ctx, err := decodeContext(data, CPUARM64Old)
	if err != nil {
		t.Fatalf("decodeContext: %v", err)
	}
	if ctx.Raw.CPUType() != CPUARM64Old {
		t.Fatalf("CPUType() = %v, want arm64-old", ctx.Raw.CPUType())
	}
}

func TestContextValidityRestrictsGetRegister(t *testing.T) {
	raw := &contextX86{Eip: 0x401000, Esp: 0x2000}
	ctx := Context{
		Raw: raw,
		Valid: ContextValidity{
			Registers: map[string]struct{}{"eip": {}},
		},
	}

	if v, ok := ctx.GetRegister("eip"); !ok || v != 0x401000 {
		t.Errorf("GetRegister(eip) = (%#x, %v), want (0x401000, true)", v, ok)
	}
	if _, ok := ctx.GetRegister("esp"); ok {
		t.Error("GetRegister(esp) reported valid, want false (not in Registers set)")
	}
}

func TestCanonicalRegisterNameRejectsUnknownRegister(t *testing.T) {
	raw := &contextX86{}
	if got := CanonicalRegisterName(raw, "eip"); got != "eip" {
		t.Errorf("CanonicalRegisterName(eip) = %q, want eip", got)
	}
	if got := CanonicalRegisterName(raw, "rax"); got != "" {
		t.Errorf("CanonicalRegisterName(rax) = %q, want empty (not an x86 register)", got)
	}
}

func TestGetRegisterAlwaysPanicsOnUnknownRegister(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("GetRegisterAlways(bogus) did not panic")
		}
	}()
	(&contextX86{}).GetRegisterAlways("bogus")
}

func TestFormatRegisterWidth(t *testing.T) {
	x86 := &contextX86{Eip: 0x1}
	if got := x86.FormatRegister("eip"); got != "0x00000001" {
		t.Errorf("x86 FormatRegister(eip) = %q, want 0x00000001", got)
	}

	amd64 := &contextAMD64{Rip: 0x1}
	if got := amd64.FormatRegister("rip"); got != "0x0000000000000001" {
		t.Errorf("amd64 FormatRegister(rip) = %q, want 0x0000000000000001", got)
	}
}
