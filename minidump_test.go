// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// nameBlobKind is an arbitrary directory entry used only to give a
// MINIDUMP_STRING a home at a predictable RVA; it is never read through
// GetStream.
const nameBlobKind = StreamKind(0x9000)

func moduleListBytes(nameRVA uint32, base uint64, size uint32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(1)) // count
	raw := moduleRecordOnDisk{
		BaseOfImage:   base,
		SizeOfImage:   size,
		TimeDateStamp: 0x5f000000,
		ModuleNameRVA: nameRVA,
	}
	binary.Write(&buf, binary.LittleEndian, raw)
	return buf.Bytes()
}

func TestModuleForAddressResolvesAndMisses(t *testing.T) {
	// The name blob is the first stream added, so its RVA is fixed at
	// headerSize + numStreams*12 regardless of what's added after it.
	const numStreams = 2
	nameRVA := uint32(headerSize) + numStreams*12

	buf := newDumpBuilder().
		addStream(nameBlobKind, stringRefBytes("test.dll")).
		addStream(ModuleListStream, moduleListBytes(nameRVA, 0x400000, 0x1000)).
		build()

	md, err := Read(buf, &Options{Fast: true})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	mod, ok := md.ModuleForAddress(0x400500)
	if !ok {
		t.Fatal("ModuleForAddress(0x400500) = false, want true")
	}
	if mod.CodeFile() != "test.dll" {
		t.Errorf("CodeFile() = %q, want test.dll", mod.CodeFile())
	}
	if mod.BaseAddress() != 0x400000 {
		t.Errorf("BaseAddress() = %#x, want 0x400000", mod.BaseAddress())
	}

	if _, ok := md.ModuleForAddress(0x500000); ok {
		t.Error("ModuleForAddress(0x500000) = true, want false (outside module range)")
	}
}

func TestReadDuplicateStreamKindKeepsFirstOccurrence(t *testing.T) {
	buf := newDumpBuilder().
		addStream(CommentStreamA, []byte("first")).
		addStream(CommentStreamA, []byte("second")).
		build()

	md, err := Read(buf, nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	raw, err := md.GetRawStream(CommentStreamA)
	if err != nil {
		t.Fatalf("GetRawStream: %v", err)
	}
	if string(raw) != "first" {
		t.Errorf("GetRawStream(CommentStreamA) = %q, want %q", raw, "first")
	}

	if got := len(md.AllStreams()); got != 2 {
		t.Errorf("len(AllStreams()) = %d, want 2 (both duplicates kept)", got)
	}
}

func TestGetStreamMissingReturnsStreamNotFoundError(t *testing.T) {
	buf := newDumpBuilder().build()
	md, err := Read(buf, &Options{Fast: true})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	_, err = md.GetStream(SystemInfoStream)
	if _, ok := err.(*StreamNotFoundError); !ok {
		t.Fatalf("GetStream(SystemInfoStream) error = %v (%T), want *StreamNotFoundError", err, err)
	}
}

func TestGetStreamUnknownKindReturnsRawBytes(t *testing.T) {
	payload := []byte("some linux aux data")
	buf := newDumpBuilder().addStream(LinuxAuxvStream, payload).build()

	md, err := Read(buf, &Options{Fast: true})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	got, err := md.GetStream(LinuxAuxvStream)
	if err != nil {
		t.Fatalf("GetStream: %v", err)
	}
	if !bytes.Equal(got.([]byte), payload) {
		t.Errorf("GetStream(LinuxAuxvStream) = %v, want raw bytes %v", got, payload)
	}
}

func twoModuleListBytes(nameRVA uint32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(2)) // count claims 2 modules
	for i := 0; i < 2; i++ {
		binary.Write(&buf, binary.LittleEndian, moduleRecordOnDisk{
			BaseOfImage:   uint64(0x10000 * (i + 1)),
			SizeOfImage:   0x1000,
			ModuleNameRVA: nameRVA,
		})
	}
	return buf.Bytes()
}

func TestOptionsMaxModuleCountCapsDecodedModules(t *testing.T) {
	const numStreams = 2
	nameRVA := uint32(headerSize) + numStreams*12

	dump := newDumpBuilder().
		addStream(nameBlobKind, stringRefBytes("a.dll")).
		addStream(ModuleListStream, twoModuleListBytes(nameRVA)).
		build()

	md, err := Read(dump, &Options{Fast: true, MaxModuleCount: 1})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	v, err := md.GetStream(ModuleListStream)
	if err != nil {
		t.Fatalf("GetStream: %v", err)
	}
	list := v.(*ModuleList)
	if len(list.Modules) != 1 {
		t.Errorf("len(Modules) = %d, want 1 (capped by MaxModuleCount)", len(list.Modules))
	}
}

func TestThreadContextLazyDecode(t *testing.T) {
	ctxBytes := amd64ContextBytes(0xdeadbeef)
	th := &Thread{
		ThreadID:    1,
		contextData: ctxBytes,
		cpuHint:     CPUAMD64,
	}

	ctx, err := th.Context()
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if ip := ctx.InstructionPointer(); ip != 0xdeadbeef {
		t.Errorf("InstructionPointer() = %#x, want 0xdeadbeef", ip)
	}
}

// bigEndianDumpWithSystemInfo builds a minimal minidump by hand, entirely
// in big-endian byte order, the way a PPC/SPARC producer would: dumpBuilder
// always writes little-endian, so this is assembled field-by-field instead.
func bigEndianDumpWithSystemInfo() []byte {
	const dirOffset = headerSize
	const dirSize = 12 // one entry
	const payloadOffset = dirOffset + dirSize

	var stream bytes.Buffer
	binary.Write(&stream, binary.BigEndian, systemInfoOnDisk{
		ProcessorArchitecture: 1, // PROCESSOR_ARCHITECTURE_PPC
		NumberOfProcessors:    2,
		MajorVersion:          2,
		MinorVersion:          6,
		BuildNumber:           1,
		PlatformID:            uint32(PlatformLinux),
	})

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(HeaderSignature))
	binary.Write(&out, binary.BigEndian, uint32(HeaderVersionLow))
	binary.Write(&out, binary.BigEndian, uint32(1)) // NumberOfStreams
	binary.Write(&out, binary.BigEndian, uint32(dirOffset))
	binary.Write(&out, binary.BigEndian, uint32(0)) // checksum
	binary.Write(&out, binary.BigEndian, uint32(0)) // timestamp
	binary.Write(&out, binary.BigEndian, uint64(0)) // flags

	binary.Write(&out, binary.BigEndian, uint32(SystemInfoStream))
	binary.Write(&out, binary.BigEndian, uint32(stream.Len()))
	binary.Write(&out, binary.BigEndian, uint32(payloadOffset))

	out.Write(stream.Bytes())
	return out.Bytes()
}

func TestReadBigEndianDumpDecodesWithDetectedOrder(t *testing.T) {
	md, err := Read(bigEndianDumpWithSystemInfo(), nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if md.order != binary.BigEndian {
		t.Fatalf("md.order = %v, want BigEndian", md.order)
	}

	v, err := md.GetStream(SystemInfoStream)
	if err != nil {
		t.Fatalf("GetStream: %v", err)
	}
	info := v.(*SystemInfo)
	if info.NumberOfProcessors != 2 {
		t.Errorf("NumberOfProcessors = %d, want 2 (misdecoded if read little-endian)", info.NumberOfProcessors)
	}
	if info.Platform != PlatformLinux {
		t.Errorf("Platform = %v, want PlatformLinux", info.Platform)
	}
}

func TestThreadContextMissingReturnsContextError(t *testing.T) {
	th := &Thread{ThreadID: 1}
	if _, err := th.Context(); err == nil {
		t.Error("Context() on a thread with no context data = nil error, want ContextError")
	}
}
