// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "encoding/binary"

// MiscInfo is the decoded MiscInfoStream payload. Microsoft extended this
// record's shape three times (MINIDUMP_MISC_INFO, _2, _3, _4) while keeping
// every earlier field at the same offset; fields are only populated when
// the stream's declared SizeOfInfo covers their offset, mirroring the
// teacher's progressively-larger-variant decoding in version.go.
type MiscInfo struct {
	ProcessID           uint32
	ProcessCreateTime   uint32
	ProcessUserTime     uint32
	ProcessKernelTime   uint32
	HasProcessTimes     bool
	ProcessorMaxMhz     uint32
	ProcessorCurrentMhz uint32
	HasProcessorPower   bool
}

func decodeMiscInfo(data []byte, order binary.ByteOrder) (*MiscInfo, error) {
	c := newCursor(data, order)

	sizeOfInfo, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}

	info := &MiscInfo{}

	var flags1 uint32
	if flags1, err = c.ReadUint32(); err != nil {
		return nil, err
	}

	if info.ProcessID, err = c.ReadUint32(); err != nil {
		return nil, err
	}
	if info.ProcessCreateTime, err = c.ReadUint32(); err != nil {
		return nil, err
	}
	if info.ProcessUserTime, err = c.ReadUint32(); err != nil {
		return nil, err
	}
	if info.ProcessKernelTime, err = c.ReadUint32(); err != nil {
		return nil, err
	}
	const miscInfoFlags1ProcessTimes = 0x00000002
	info.HasProcessTimes = flags1&miscInfoFlags1ProcessTimes != 0

	// MINIDUMP_MISC_INFO ends at offset 24; _2 adds processor power info.
	const sizeOfMiscInfo1 = 24
	if sizeOfInfo < sizeOfMiscInfo1+4 {
		return info, nil
	}

	if info.ProcessorMaxMhz, err = c.ReadUint32(); err != nil {
		return info, nil
	}
	if sizeOfInfo < sizeOfMiscInfo1+8 {
		return info, nil
	}
	if info.ProcessorCurrentMhz, err = c.ReadUint32(); err != nil {
		return info, nil
	}
	const miscInfoFlags1ProcessorPower = 0x00000004
	info.HasProcessorPower = flags1&miscInfoFlags1ProcessorPower != 0

	return info, nil
}
