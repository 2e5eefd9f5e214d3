// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"encoding/binary"
	"fmt"
)

// Module is the contract a symbolizer needs from a decoded module record,
// whether it came from the full ModuleList or the leaner
// UnloadedModuleList.
type Module interface {
	BaseAddress() uint64
	Size() uint64
	CodeFile() string
	CodeIdentifier() string
	DebugFile() (string, bool)
	DebugIdentifier() (string, bool)
	Version() (string, bool)
}

// moduleRecordOnDisk is the fixed-size portion of MINIDUMP_MODULE.
type moduleRecordOnDisk struct {
	BaseOfImage          uint64
	SizeOfImage          uint32
	CheckSum             uint32
	TimeDateStamp        uint32
	ModuleNameRVA        uint32
	VersionInfo          versionInfoOnDisk
	CvRecordSize         uint32
	CvRecordRVA          uint32
	MiscRecordSize       uint32
	MiscRecordRVA        uint32
	Reserved0, Reserved1 uint64
}

// versionInfoOnDisk is VS_FIXEDFILEINFO as embedded in MINIDUMP_MODULE.
type versionInfoOnDisk struct {
	Signature        uint32
	StructVersion    uint32
	FileVersionMS    uint32
	FileVersionLS    uint32
	ProductVersionMS uint32
	ProductVersionLS uint32
	FileFlagsMask    uint32
	FileFlags        uint32
	FileOS           uint32
	FileType         uint32
	FileSubtype      uint32
	FileDateMS       uint32
	FileDateLS       uint32
}

// ModuleRecord is a decoded entry from the ModuleList stream.
type ModuleRecord struct {
	BaseOfImage   uint64
	SizeOfImage   uint32
	CheckSum      uint32
	TimeDateStamp uint32
	Name          string
	VersionInfo   versionInfoOnDisk
	CodeView      *CodeView
}

func (m *ModuleRecord) BaseAddress() uint64 { return m.BaseOfImage }
func (m *ModuleRecord) Size() uint64        { return uint64(m.SizeOfImage) }
func (m *ModuleRecord) CodeFile() string    { return m.Name }

// CodeIdentifier reproduces the Breakpad convention for PE modules: the
// timestamp as eight uppercase hex digits followed directly by the image
// size in lowercase hex, which is how symbol servers key PE debug info
// when no PDB GUID is available.
func (m *ModuleRecord) CodeIdentifier() string {
	return fmt.Sprintf("%08X%x", m.TimeDateStamp, m.SizeOfImage)
}

func (m *ModuleRecord) DebugFile() (string, bool) {
	switch {
	case m.CodeView == nil:
		return "", false
	case m.CodeView.PDB70 != nil:
		return m.CodeView.PDB70.PDBFileName, true
	case m.CodeView.PDB20 != nil:
		return m.CodeView.PDB20.PDBFileName, true
	default:
		return "", false
	}
}

func (m *ModuleRecord) DebugIdentifier() (string, bool) {
	switch {
	case m.CodeView == nil:
		return "", false
	case m.CodeView.PDB70 != nil:
		return fmt.Sprintf("%s%X", m.CodeView.PDB70.PDBSigature.String(), m.CodeView.PDB70.Age), true
	case m.CodeView.PDB20 != nil:
		return fmt.Sprintf("%08X%x", m.CodeView.PDB20.TimeStamp, m.CodeView.PDB20.Age), true
	default:
		return "", false
	}
}

// vsFixedFileInfoSignature is the magic VS_FIXEDFILEINFO stamps itself
// with; its absence means the producer never filled the field in.
const vsFixedFileInfoSignature = 0xFEEF04BD

func (m *ModuleRecord) Version() (string, bool) {
	if m.VersionInfo.Signature != vsFixedFileInfoSignature {
		return "", false
	}
	return fmt.Sprintf("%d.%d.%d.%d",
		m.VersionInfo.FileVersionMS>>16, m.VersionInfo.FileVersionMS&0xffff,
		m.VersionInfo.FileVersionLS>>16, m.VersionInfo.FileVersionLS&0xffff), true
}

// UnloadedModuleRecord is a decoded entry from the UnloadedModuleList
// stream: the subset of a module's identity that survives after it is
// unmapped from the process.
type UnloadedModuleRecord struct {
	BaseOfImage   uint64
	SizeOfImage   uint32
	CheckSum      uint32
	TimeDateStamp uint32
	Name          string
}

func (m *UnloadedModuleRecord) BaseAddress() uint64         { return m.BaseOfImage }
func (m *UnloadedModuleRecord) Size() uint64                { return uint64(m.SizeOfImage) }
func (m *UnloadedModuleRecord) CodeFile() string            { return m.Name }
func (m *UnloadedModuleRecord) CodeIdentifier() string {
	return fmt.Sprintf("%08X%x", m.TimeDateStamp, m.SizeOfImage)
}
func (m *UnloadedModuleRecord) DebugFile() (string, bool)       { return "", false }
func (m *UnloadedModuleRecord) DebugIdentifier() (string, bool) { return "", false }
func (m *UnloadedModuleRecord) Version() (string, bool)         { return "", false }

// ModuleList is the decoded ModuleListStream payload.
type ModuleList struct {
	Modules []*ModuleRecord
}

// unloadedModuleOnDisk is the fixed-size portion of MINIDUMP_UNLOADED_MODULE.
type unloadedModuleOnDisk struct {
	BaseOfImage   uint64
	SizeOfImage   uint32
	CheckSum      uint32
	TimeDateStamp uint32
	ModuleNameRVA uint32
}

// UnloadedModuleList is the decoded UnloadedModuleListStream payload.
type UnloadedModuleList struct {
	Modules []*UnloadedModuleRecord
}

func decodeModuleList(data, whole []byte, order binary.ByteOrder, maxCount uint32) (*ModuleList, error) {
	c := newCursor(data, order)
	count, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	if maxCount > 0 && count > maxCount {
		count = maxCount
	}

	out := &ModuleList{Modules: make([]*ModuleRecord, 0, count)}
	for i := uint32(0); i < count; i++ {
		var raw moduleRecordOnDisk
		if err := c.ReadStruct(&raw); err != nil {
			return nil, err
		}

		rec := &ModuleRecord{
			BaseOfImage:   raw.BaseOfImage,
			SizeOfImage:   raw.SizeOfImage,
			CheckSum:      raw.CheckSum,
			TimeDateStamp: raw.TimeDateStamp,
			VersionInfo:   raw.VersionInfo,
		}

		name, err := readStringRef(whole, order, raw.ModuleNameRVA)
		if err != nil {
			return nil, err
		}
		rec.Name = name.String()

		if raw.CvRecordSize > 0 {
			cvBytes, err := readBytesAt(whole, raw.CvRecordRVA, raw.CvRecordSize)
			if err == nil {
				rec.CodeView, _ = parseCodeView(cvBytes)
			}
		}

		out.Modules = append(out.Modules, rec)
	}
	return out, nil
}

func decodeUnloadedModuleList(data, whole []byte, order binary.ByteOrder, maxCount uint32) (*UnloadedModuleList, error) {
	c := newCursor(data, order)

	sizeOfHeader, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	sizeOfEntry, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	numberOfEntries, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	if maxCount > 0 && numberOfEntries > maxCount {
		numberOfEntries = maxCount
	}
	if err := c.Seek(sizeOfHeader); err != nil {
		return nil, err
	}

	out := &UnloadedModuleList{Modules: make([]*UnloadedModuleRecord, 0, numberOfEntries)}
	for i := uint32(0); i < numberOfEntries; i++ {
		entryStart := c.Offset()
		var raw unloadedModuleOnDisk
		if err := c.ReadStruct(&raw); err != nil {
			return nil, err
		}
		if err := c.Seek(entryStart + sizeOfEntry); err != nil {
			return nil, err
		}

		name, err := readStringRef(whole, order, raw.ModuleNameRVA)
		if err != nil {
			return nil, err
		}

		out.Modules = append(out.Modules, &UnloadedModuleRecord{
			BaseOfImage:   raw.BaseOfImage,
			SizeOfImage:   raw.SizeOfImage,
			CheckSum:      raw.CheckSum,
			TimeDateStamp: raw.TimeDateStamp,
			Name:          name.String(),
		})
	}
	return out, nil
}

// readBytesAt returns a borrowed sub-slice of data at an absolute
// (offset, length) pair, bounds-checked.
func readBytesAt(data []byte, offset, length uint32) ([]byte, error) {
	end := offset + length
	if end < offset || end > uint32(len(data)) {
		return nil, ErrOutOfBounds
	}
	return data[offset:end], nil
}
