// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "fmt"

// CodeViewSignature identifies the shape of an embedded CodeView debug
// record, mirroring the CVSignature idiom from the teacher's debug.go.
type CodeViewSignature uint32

// Known CodeView signatures.
const (
	// CVSignatureRSDS is 'SDSR', the PDB 7.0 record.
	CVSignatureRSDS CodeViewSignature = 0x53445352

	// CVSignatureNB10 is 'NB10', the PDB 2.0 record.
	CVSignatureNB10 CodeViewSignature = 0x3031424e

	// CVSignatureELF identifies a Breakpad extension carrying an ELF
	// build-id instead of a PDB GUID.
	CVSignatureELF CodeViewSignature = 0x4270454c
)

// String returns a human-readable CodeView signature name.
func (s CodeViewSignature) String() string {
	switch s {
	case CVSignatureRSDS:
		return "RSDS"
	case CVSignatureNB10:
		return "NB10"
	case CVSignatureELF:
		return "ELF"
	default:
		return "?"
	}
}

// GUID is a 128-bit value, formatted the same way Microsoft tooling prints
// a PDB signature.
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// String returns the canonical hyphenated hex representation of the GUID.
func (g GUID) String() string {
	return fmt.Sprintf("%08X-%04X-%04X-%04X-%X",
		g.Data1, g.Data2, g.Data3, g.Data4[0:2], g.Data4[2:])
}

// CodeViewPDB70 is the CodeView data block of a PDB 7.0 file: a GUID, an
// ever-incrementing age, and the PDB's file name.
type CodeViewPDB70 struct {
	Signature   CodeViewSignature
	PDBSigature GUID
	Age         uint32
	PDBFileName string
}

// CodeViewPDB20 is the CodeView data block of the older PDB 2.0 format.
type CodeViewPDB20 struct {
	Signature   CodeViewSignature
	Offset      uint32
	TimeStamp   uint32
	Age         uint32
	PDBFileName string
}

// CodeViewELF carries a Breakpad-extension build-id for ELF/Mach-O modules
// that have no PDB.
type CodeViewELF struct {
	Signature CodeViewSignature
	BuildID   []byte
}

// CodeView wraps whichever CodeView variant a module's debug directory
// entry carried, or neither if the module has none.
type CodeView struct {
	PDB70 *CodeViewPDB70
	PDB20 *CodeViewPDB20
	ELF   *CodeViewELF
}

// parseCodeView decodes the CodeView record embedded at the start of data.
// Unrecognized signatures are reported as a nil CodeView with no error:
// a module with debug info this parser doesn't understand is not fatal.
func parseCodeView(data []byte) (*CodeView, error) {
	if len(data) < 4 {
		return nil, nil
	}
	c := newCursor(data, littleEndian)
	sig, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}

	switch CodeViewSignature(sig) {
	case CVSignatureRSDS:
		pdb := &CodeViewPDB70{Signature: CVSignatureRSDS}
		if err := c.ReadStruct(&pdb.PDBSigature); err != nil {
			return nil, err
		}
		if pdb.Age, err = c.ReadUint32(); err != nil {
			return nil, err
		}
		name, _ := c.ReadBytes(c.Remaining())
		pdb.PDBFileName = cStringFromASCII(name)
		return &CodeView{PDB70: pdb}, nil

	case CVSignatureNB10:
		pdb := &CodeViewPDB20{Signature: CVSignatureNB10}
		if pdb.Offset, err = c.ReadUint32(); err != nil {
			return nil, err
		}
		if pdb.TimeStamp, err = c.ReadUint32(); err != nil {
			return nil, err
		}
		if pdb.Age, err = c.ReadUint32(); err != nil {
			return nil, err
		}
		name, _ := c.ReadBytes(c.Remaining())
		pdb.PDBFileName = cStringFromASCII(name)
		return &CodeView{PDB20: pdb}, nil

	case CVSignatureELF:
		buildID, _ := c.ReadBytes(c.Remaining())
		return &CodeView{ELF: &CodeViewELF{Signature: CVSignatureELF, BuildID: buildID}}, nil

	default:
		return nil, nil
	}
}

// cStringFromASCII returns the bytes up to the first NUL, or the whole
// slice if there is none.
func cStringFromASCII(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
