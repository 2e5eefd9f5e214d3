// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"bytes"
	"encoding/binary"
)

// dumpBuilder assembles a synthetic minidump byte buffer in memory. There
// are no proprietary .dmp samples to ship as fixtures, so tests build the
// exact bytes they want to exercise instead, the way the teacher's own
// table tests point at checked-in sample PEs.
type dumpBuilder struct {
	streams []builderStream
}

type builderStream struct {
	kind StreamKind
	data []byte
}

func newDumpBuilder() *dumpBuilder {
	return &dumpBuilder{}
}

func (b *dumpBuilder) addStream(kind StreamKind, data []byte) *dumpBuilder {
	b.streams = append(b.streams, builderStream{kind: kind, data: data})
	return b
}

// build lays out a full minidump: a 32-byte header, one directory entry per
// stream in arrival order, then each stream's bytes back to back.
func (b *dumpBuilder) build() []byte {
	dirOffset := uint32(headerSize)
	dirSize := uint32(len(b.streams)) * 12
	payloadOffset := dirOffset + dirSize

	var payload bytes.Buffer
	entries := make([]directoryEntry, len(b.streams))
	for i, s := range b.streams {
		entries[i] = directoryEntry{
			StreamType: uint32(s.kind),
			DataSize:   uint32(len(s.data)),
			RVA:        payloadOffset + uint32(payload.Len()),
		}
		payload.Write(s.data)
	}

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, uint32(HeaderSignature))
	binary.Write(&out, binary.LittleEndian, uint32(HeaderVersionLow))
	binary.Write(&out, binary.LittleEndian, uint32(len(b.streams)))
	binary.Write(&out, binary.LittleEndian, dirOffset)
	binary.Write(&out, binary.LittleEndian, uint32(0)) // checksum
	binary.Write(&out, binary.LittleEndian, uint32(0)) // timestamp
	binary.Write(&out, binary.LittleEndian, uint64(0)) // flags

	for _, e := range entries {
		binary.Write(&out, binary.LittleEndian, e.StreamType)
		binary.Write(&out, binary.LittleEndian, e.DataSize)
		binary.Write(&out, binary.LittleEndian, e.RVA)
	}

	out.Write(payload.Bytes())
	return out.Bytes()
}

// u16le appends the UTF-16LE encoding of s with no length prefix.
func u16le(s string) []byte {
	var buf bytes.Buffer
	for _, r := range s {
		if r <= 0xffff {
			binary.Write(&buf, binary.LittleEndian, uint16(r))
			continue
		}
		r -= 0x10000
		hi := uint16(0xd800 + (r >> 10))
		lo := uint16(0xdc00 + (r & 0x3ff))
		binary.Write(&buf, binary.LittleEndian, hi)
		binary.Write(&buf, binary.LittleEndian, lo)
	}
	return buf.Bytes()
}

// stringRefBytes builds a length-prefixed StringRef payload: a 4-byte byte
// count (not including the terminator, matching MINIDUMP_STRING) followed
// by UTF-16LE code units and a trailing NUL pair.
func stringRefBytes(s string) []byte {
	body := u16le(s)
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(len(body)))
	buf.Write(body)
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}
