// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestParseCodeViewPDB70(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(CVSignatureRSDS))
	binary.Write(&buf, binary.LittleEndian, GUID{Data1: 0x01020304, Data2: 0x0506, Data3: 0x0708})
	binary.Write(&buf, binary.LittleEndian, uint32(3)) // Age
	buf.WriteString("app.pdb\x00")

	cv, err := parseCodeView(buf.Bytes())
	if err != nil {
		t.Fatalf("parseCodeView: %v", err)
	}
	if cv.PDB70 == nil {
		t.Fatal("PDB70 = nil, want a decoded record")
	}
	if cv.PDB70.PDBFileName != "app.pdb" {
		t.Errorf("PDBFileName = %q, want app.pdb", cv.PDB70.PDBFileName)
	}
	if cv.PDB70.Age != 3 {
		t.Errorf("Age = %d, want 3", cv.PDB70.Age)
	}
}

func TestParseCodeViewUnknownSignatureIsNotAnError(t *testing.T) {
	data := []byte{0xff, 0xff, 0xff, 0xff, 1, 2, 3, 4}
	cv, err := parseCodeView(data)
	if err != nil {
		t.Fatalf("parseCodeView: %v", err)
	}
	if cv != nil {
		t.Errorf("parseCodeView(unknown sig) = %v, want nil", cv)
	}
}

func TestGUIDString(t *testing.T) {
	g := GUID{Data1: 0x01020304, Data2: 0x0506, Data3: 0x0708, Data4: [8]byte{0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}}
	want := "01020304-0506-0708-090A-0B0C0D0E0F10"
	if got := g.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
