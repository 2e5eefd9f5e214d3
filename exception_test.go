// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestExceptionCodeClassify(t *testing.T) {
	tests := []struct {
		code ExceptionCode
		want ExceptionClass
	}{
		{ExceptionAccessViolation, ExceptionClassAccessViolation},
		{ExceptionStackOverflow, ExceptionClassStackOverflow},
		{ExceptionIllegalInstruction, ExceptionClassIllegalInstruction},
		{ExceptionPrivInstruction, ExceptionClassIllegalInstruction},
		{ExceptionBreakpoint, ExceptionClassBreakpoint},
		{ExceptionIntDivideByZero, ExceptionClassDivideByZero},
		{ExceptionFltDivideByZero, ExceptionClassDivideByZero},
		{ExceptionCode(0x12345678), ExceptionClassOther},
	}
	for _, tt := range tests {
		if got := tt.code.Classify(); got != tt.want {
			t.Errorf("ExceptionCode(%#x).Classify() = %v, want %v", uint32(tt.code), got, tt.want)
		}
	}
}

func exceptionStreamBytes(code ExceptionCode, addr uint64, params []uint64, contextRVA, contextSize uint32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(7)) // ThreadID
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // Alignment

	var paramArr [15]uint64
	copy(paramArr[:], params)
	rec := exceptionRecordOnDisk{
		ExceptionCode:        uint32(code),
		ExceptionAddress:     addr,
		NumberParameters:     uint32(len(params)),
		ExceptionInformation: paramArr,
	}
	binary.Write(&buf, binary.LittleEndian, rec)
	binary.Write(&buf, binary.LittleEndian, contextSize)
	binary.Write(&buf, binary.LittleEndian, contextRVA)
	return buf.Bytes()
}

func TestDecodeExceptionWithoutContext(t *testing.T) {
	data := exceptionStreamBytes(ExceptionAccessViolation, 0x401000, []uint64{1, 0x500}, 0, 0)
	exc, err := decodeException(data, nil, binary.LittleEndian, cpuUnknown)
	if err != nil {
		t.Fatalf("decodeException: %v", err)
	}
	if exc.ThreadID != 7 {
		t.Errorf("ThreadID = %d, want 7", exc.ThreadID)
	}
	if exc.Code != ExceptionAccessViolation {
		t.Errorf("Code = %#x, want ExceptionAccessViolation", uint32(exc.Code))
	}
	if len(exc.Parameters) != 2 || exc.Parameters[1] != 0x500 {
		t.Errorf("Parameters = %v, want [1 0x500]", exc.Parameters)
	}
	if _, err := exc.Context(); err == nil {
		t.Error("Context() with no embedded context = nil error, want ContextError")
	}
}

func TestDecodeExceptionWithEmbeddedContext(t *testing.T) {
	ctxBytes := amd64ContextBytes(0x77777)
	whole := make([]byte, 4096)
	copy(whole[1000:], ctxBytes)

	data := exceptionStreamBytes(ExceptionBreakpoint, 0x1234, nil, 1000, uint32(len(ctxBytes)))
	exc, err := decodeException(data, whole, binary.LittleEndian, CPUAMD64)
	if err != nil {
		t.Fatalf("decodeException: %v", err)
	}

	ctx, err := exc.Context()
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if ip := ctx.InstructionPointer(); ip != 0x77777 {
		t.Errorf("InstructionPointer() = %#x, want 0x77777", ip)
	}
}
