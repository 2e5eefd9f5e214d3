// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestDecodeBreakpadInfoValidityFlags(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, breakpadInfoOnDisk{
		Validity:           breakpadInfoValidDumpThreadID,
		DumpThreadID:       42,
		RequestingThreadID: 99,
	})

	info, err := decodeBreakpadInfo(buf.Bytes(), binary.LittleEndian)
	if err != nil {
		t.Fatalf("decodeBreakpadInfo: %v", err)
	}
	if !info.HasDumpThreadID || info.DumpThreadID != 42 {
		t.Errorf("DumpThreadID = (%d, %v), want (42, true)", info.DumpThreadID, info.HasDumpThreadID)
	}
	if info.HasRequestingThreadID {
		t.Error("HasRequestingThreadID = true, want false (validity bit unset)")
	}
}

func TestDecodeAssertionInfoTruncatesAtNUL(t *testing.T) {
	var raw assertionInfoOnDisk
	copy(raw.Expression[:], u16leUnits("x > 0"))
	copy(raw.Function[:], u16leUnits("doWork"))
	copy(raw.File[:], u16leUnits("work.c"))
	raw.Line = 17
	raw.Type = 1

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, raw)

	info, err := decodeAssertionInfo(buf.Bytes(), binary.LittleEndian)
	if err != nil {
		t.Fatalf("decodeAssertionInfo: %v", err)
	}
	if info.Expression != "x > 0" {
		t.Errorf("Expression = %q, want %q", info.Expression, "x > 0")
	}
	if info.Function != "doWork" {
		t.Errorf("Function = %q, want %q", info.Function, "doWork")
	}
	if info.Line != 17 {
		t.Errorf("Line = %d, want 17", info.Line)
	}
}

// u16leUnits encodes s as UTF-16LE code units, for embedding into a fixed
// [N]uint16 array field.
func u16leUnits(s string) []uint16 {
	b := u16le(s)
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return units
}
