// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "encoding/binary"

// MemoryRegion is one captured range of process memory.
type MemoryRegion struct {
	StartOfMemoryRange uint64
	DataSize           uint32
	RVA                uint32
}

// Bytes returns the region's captured bytes from the backing buffer.
func (r MemoryRegion) Bytes(whole []byte) ([]byte, error) {
	return readBytesAt(whole, r.RVA, r.DataSize)
}

// MemoryList is the decoded MemoryListStream payload, plus an eagerly-built
// range index so address lookups are O(log n) as soon as the stream is
// decoded.
type MemoryList struct {
	Regions []MemoryRegion
	byAddr  *RangeMap[int]
}

// RegionForAddress returns the captured region containing addr, if any.
func (l *MemoryList) RegionForAddress(addr uint64) (MemoryRegion, bool) {
	idx, ok := l.byAddr.Lookup(addr)
	if !ok {
		return MemoryRegion{}, false
	}
	return l.Regions[idx], true
}

type memoryDescriptorOnDisk struct {
	StartOfMemoryRange uint64
	DataSize           uint32
	RVA                uint32
}

func decodeMemoryList(data []byte, order binary.ByteOrder, maxCount uint32, warn func(string, ...interface{})) (*MemoryList, error) {
	c := newCursor(data, order)
	count, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	if maxCount > 0 && count > maxCount {
		count = maxCount
	}

	out := &MemoryList{Regions: make([]MemoryRegion, 0, count)}
	entries := make([]RangeEntry[int], 0, count)
	for i := uint32(0); i < count; i++ {
		var raw memoryDescriptorOnDisk
		if err := c.ReadStruct(&raw); err != nil {
			return nil, err
		}
		region := MemoryRegion{
			StartOfMemoryRange: raw.StartOfMemoryRange,
			DataSize:           raw.DataSize,
			RVA:                raw.RVA,
		}
		idx := len(out.Regions)
		out.Regions = append(out.Regions, region)
		if raw.DataSize > 0 {
			entries = append(entries, RangeEntry[int]{
				Range: AddrRange{Start: raw.StartOfMemoryRange, End: raw.StartOfMemoryRange + uint64(raw.DataSize) - 1},
				Value: idx,
			})
		}
	}
	out.byAddr = BuildRangeMap(entries, warn)
	return out, nil
}

// MemoryInfo is one entry of the MemoryInfoListStream: the VirtualQuery-ish
// view of a page range's protection and state, used by unwinders to decide
// whether a candidate stack address is plausible.
type MemoryInfo struct {
	BaseAddress       uint64
	AllocationBase    uint64
	AllocationProtect uint32
	RegionSize        uint64
	State             uint32
	Protect           uint32
	Type              uint32
}

// MemoryInfoList is the decoded MemoryInfoListStream payload.
type MemoryInfoList struct {
	Entries []MemoryInfo
}

func decodeMemoryInfoList(data []byte, order binary.ByteOrder, maxCount uint32) (*MemoryInfoList, error) {
	c := newCursor(data, order)

	sizeOfHeader, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	sizeOfEntry, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	numberOfEntries, err := c.ReadUint64()
	if err != nil {
		return nil, err
	}
	// memoryInfoEntrySize is the on-disk size of MINIDUMP_MEMORY_INFO.
	const memoryInfoEntrySize = 48
	if sizeOfEntry < memoryInfoEntrySize {
		return nil, ErrOutOfBounds
	}
	if uint64(sizeOfHeader) > uint64(len(data)) ||
		numberOfEntries > (uint64(len(data))-uint64(sizeOfHeader))/uint64(sizeOfEntry) {
		return nil, ErrOutOfBounds
	}
	if maxCount > 0 && numberOfEntries > uint64(maxCount) {
		numberOfEntries = uint64(maxCount)
	}
	if err := c.Seek(sizeOfHeader); err != nil {
		return nil, err
	}

	out := &MemoryInfoList{Entries: make([]MemoryInfo, 0, numberOfEntries)}
	for i := uint64(0); i < numberOfEntries; i++ {
		entryStart := c.Offset()
		var info MemoryInfo
		if info.BaseAddress, err = c.ReadUint64(); err != nil {
			return nil, err
		}
		if info.AllocationBase, err = c.ReadUint64(); err != nil {
			return nil, err
		}
		if info.AllocationProtect, err = c.ReadUint32(); err != nil {
			return nil, err
		}
		if err := c.Skip(4); err != nil { // alignment padding
			return nil, err
		}
		if info.RegionSize, err = c.ReadUint64(); err != nil {
			return nil, err
		}
		if info.State, err = c.ReadUint32(); err != nil {
			return nil, err
		}
		if info.Protect, err = c.ReadUint32(); err != nil {
			return nil, err
		}
		if info.Type, err = c.ReadUint32(); err != nil {
			return nil, err
		}
		out.Entries = append(out.Entries, info)
		if err := c.Seek(entryStart + sizeOfEntry); err != nil {
			return nil, err
		}
	}
	return out, nil
}
