// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "encoding/binary"

// Breakpad-specific validity flags for BreakpadInfo, matching
// MD_BREAKPAD_INFO_VALID_*.
const (
	breakpadInfoValidDumpThreadID       uint32 = 1 << 0
	breakpadInfoValidRequestingThreadID uint32 = 1 << 1
)

type breakpadInfoOnDisk struct {
	Validity           uint32
	DumpThreadID       uint32
	RequestingThreadID uint32
}

// BreakpadInfo is the decoded BreakpadInfoStream payload: which thread, if
// either, generated or requested the dump.
type BreakpadInfo struct {
	DumpThreadID          uint32
	HasDumpThreadID       bool
	RequestingThreadID    uint32
	HasRequestingThreadID bool
}

func decodeBreakpadInfo(data []byte, order binary.ByteOrder) (*BreakpadInfo, error) {
	var raw breakpadInfoOnDisk
	if err := readStructAt(data, order, 0, &raw); err != nil {
		return nil, err
	}
	return &BreakpadInfo{
		DumpThreadID:          raw.DumpThreadID,
		HasDumpThreadID:       raw.Validity&breakpadInfoValidDumpThreadID != 0,
		RequestingThreadID:    raw.RequestingThreadID,
		HasRequestingThreadID: raw.Validity&breakpadInfoValidRequestingThreadID != 0,
	}, nil
}

// assertionInfoFixedNameLen is the fixed UTF-16 array length Breakpad uses
// for each of AssertionInfo's four text fields.
const assertionInfoFixedNameLen = 24

type assertionInfoOnDisk struct {
	Expression [assertionInfoFixedNameLen]uint16
	Function   [assertionInfoFixedNameLen]uint16
	File       [assertionInfoFixedNameLen]uint16
	Line       uint32
	Type       uint32
}

// AssertionInfo is the decoded AssertionInfoStream payload, produced when a
// crash was triggered by a failed assertion rather than a hardware fault.
type AssertionInfo struct {
	Expression string
	Function   string
	File       string
	Line       uint32
	Type       uint32
}

func decodeAssertionInfo(data []byte, order binary.ByteOrder) (*AssertionInfo, error) {
	var raw assertionInfoOnDisk
	if err := readStructAt(data, order, 0, &raw); err != nil {
		return nil, err
	}
	return &AssertionInfo{
		Expression: utf16ArrayToString(raw.Expression[:]),
		Function:   utf16ArrayToString(raw.Function[:]),
		File:       utf16ArrayToString(raw.File[:]),
		Line:       raw.Line,
		Type:       raw.Type,
	}, nil
}

// utf16ArrayToString decodes a fixed-length UTF-16 array up to the first
// NUL code unit, or the whole array if there is none.
func utf16ArrayToString(units []uint16) string {
	for i, u := range units {
		if u == 0 {
			units = units[:i]
			break
		}
	}
	b := make([]byte, len(units)*2)
	for i, u := range units {
		littleEndian.PutUint16(b[i*2:], u)
	}
	return StringRef{raw: b}.String()
}
