// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"encoding/binary"
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/saferwall/minidump/log"
)

// Minidump is the root handle over a parsed dump: the backing bytes, the
// resolved header and stream directory, and a running log of non-fatal
// oddities encountered while decoding. It never caches decoded streams;
// GetStream re-decodes on every call, keeping the value read-only and safe
// to share across goroutines once constructed.
type Minidump struct {
	data   []byte
	order  binary.ByteOrder
	header Header
	dir    *directory
	opts   *Options
	logger *log.Helper

	// Anomalies collects non-fatal oddities found while reading the dump.
	// Read records one when a SystemInfo stream is present but cannot be
	// decoded; the stream decoders behind GetStream do not append to it.
	// It mirrors the teacher's File.Anomalies field.
	Anomalies []string

	mapping mmap.MMap
	file    *os.File
}

// Read builds a Minidump over an in-memory buffer. opts may be nil to use
// defaults. Read only parses the header and directory; stream payloads are
// decoded lazily by GetStream/GetRawStream.
func Read(data []byte, opts *Options) (*Minidump, error) {
	header, order, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	dir, err := parseDirectory(data, header, order)
	if err != nil {
		return nil, err
	}

	md := &Minidump{
		data:   data,
		order:  order,
		header: header,
		dir:    dir,
		opts:   opts,
		logger: opts.logger(),
	}

	if !opts.fast() {
		md.warmSystemInfo()
	}

	return md, nil
}

// fast reports whether o requests directory-only parsing. A nil Options
// behaves as if Fast were false.
func (o *Options) fast() bool {
	return o != nil && o.Fast
}

// warmSystemInfo decodes SystemInfo once at Read time so that a SystemInfo
// stream which is present but cannot be decoded is recorded in Anomalies.
// The decoded value is not kept: cpuHint decodes SystemInfo again each
// time a thread list or exception stream is decoded. The dump's byte order itself is
// already fixed by this point: it comes from the header's signature, not
// from SystemInfo.
func (md *Minidump) warmSystemInfo() {
	if _, err := md.GetStream(SystemInfoStream); err != nil {
		if _, ok := err.(*StreamNotFoundError); !ok {
			md.addAnomaly("system info stream present but unreadable: %v", err)
		}
	}
}

// ReadPath memory-maps the file at path and builds a Minidump over it. The
// mapping (and the underlying file handle) stay open until Close is
// called.
func ReadPath(path string, opts *Options) (*Minidump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	md, err := Read([]byte(m), opts)
	if err != nil {
		m.Unmap()
		f.Close()
		return nil, err
	}

	md.mapping = m
	md.file = f
	return md, nil
}

// Close releases the memory map and file handle opened by ReadPath. It is
// a no-op for a Minidump built with Read.
func (md *Minidump) Close() error {
	var err error
	if md.mapping != nil {
		err = md.mapping.Unmap()
		md.mapping = nil
	}
	if md.file != nil {
		if cerr := md.file.Close(); err == nil {
			err = cerr
		}
		md.file = nil
	}
	return err
}

// GetRawStream returns the undecoded bytes of the first directory entry of
// the given kind.
func (md *Minidump) GetRawStream(kind StreamKind) ([]byte, error) {
	entry, ok := md.dir.byKind[kind]
	if !ok {
		return nil, &StreamNotFoundError{Kind: kind}
	}
	return readBytesAt(md.data, entry.Offset, entry.Length)
}

// AllStreams returns every directory entry in file order, including
// duplicates of the same kind.
func (md *Minidump) AllStreams() []DirectoryEntry {
	out := make([]DirectoryEntry, len(md.dir.entries))
	copy(out, md.dir.entries)
	return out
}

// cpuHint returns the CPU architecture recorded in SystemInfo, if that
// stream is present and already resolvable; used to disambiguate context
// records whose flag word alone doesn't identify an architecture.
func (md *Minidump) cpuHint() CPUType {
	raw, err := md.GetRawStream(SystemInfoStream)
	if err != nil {
		return cpuUnknown
	}
	info, err := decodeSystemInfo(raw, md.data, md.order)
	if err != nil {
		return cpuUnknown
	}
	return info.CPU
}

func (md *Minidump) addAnomaly(format string, args ...interface{}) {
	md.Anomalies = append(md.Anomalies, fmt.Sprintf(format, args...))
	md.logger.Warnf(format, args...)
}

// GetStream decodes and returns the stream of the given kind, selecting the
// right decoder by kind. Unsupported kinds (including ones this package
// simply hasn't implemented a typed view for) return the raw bytes typed as
// []byte.
func (md *Minidump) GetStream(kind StreamKind) (interface{}, error) {
	raw, err := md.GetRawStream(kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case SystemInfoStream:
		v, err := decodeSystemInfo(raw, md.data, md.order)
		return streamResult(kind, v, err)
	case ThreadListStream:
		v, err := decodeThreadList(raw, md.data, md.order, md.opts.maxThreadCount(), md.cpuHint())
		return streamResult(kind, v, err)
	case ModuleListStream:
		v, err := decodeModuleList(raw, md.data, md.order, md.opts.maxModuleCount())
		return streamResult(kind, v, err)
	case UnloadedModuleListStream:
		v, err := decodeUnloadedModuleList(raw, md.data, md.order, md.opts.maxModuleCount())
		return streamResult(kind, v, err)
	case MemoryListStream:
		warn := rangeMapLogger(md.logger)
		v, err := decodeMemoryList(raw, md.order, md.opts.maxMemoryRangeCount(), warn)
		return streamResult(kind, v, err)
	case MemoryInfoListStream:
		v, err := decodeMemoryInfoList(raw, md.order, md.opts.maxMemoryRangeCount())
		return streamResult(kind, v, err)
	case MiscInfoStream:
		v, err := decodeMiscInfo(raw, md.order)
		return streamResult(kind, v, err)
	case ExceptionStream:
		v, err := decodeException(raw, md.data, md.order, md.cpuHint())
		return streamResult(kind, v, err)
	case BreakpadInfoStream:
		v, err := decodeBreakpadInfo(raw, md.order)
		return streamResult(kind, v, err)
	case AssertionInfoStream:
		v, err := decodeAssertionInfo(raw, md.order)
		return streamResult(kind, v, err)
	default:
		return raw, nil
	}
}

// streamResult wraps a decoder's result into the StreamReadError
// convention: a non-nil err from a concrete decoder is never returned bare,
// so callers can type-switch on *StreamReadError regardless of which
// stream kind failed.
func streamResult(kind StreamKind, v interface{}, err error) (interface{}, error) {
	if err != nil {
		return nil, &StreamReadError{Kind: kind, Reason: err}
	}
	return v, nil
}

// moduleRangeValue lets ModuleForAddress reuse BuildRangeMap's generic
// machinery to index modules by the interval they occupy.
type moduleRangeValue struct {
	module Module
}

// ModuleForAddress returns the loaded module, if any, whose image contains
// addr. It decodes ModuleList on every call rather than caching: callers
// that query repeatedly should cache the ModuleList themselves via
// GetStream.
func (md *Minidump) ModuleForAddress(addr uint64) (Module, bool) {
	streamVal, err := md.GetStream(ModuleListStream)
	if err != nil {
		return nil, false
	}
	list := streamVal.(*ModuleList)

	entries := make([]RangeEntry[moduleRangeValue], 0, len(list.Modules))
	for _, m := range list.Modules {
		if m.SizeOfImage == 0 {
			continue
		}
		entries = append(entries, RangeEntry[moduleRangeValue]{
			Range: AddrRange{Start: m.BaseOfImage, End: m.BaseOfImage + uint64(m.SizeOfImage) - 1},
			Value: moduleRangeValue{module: m},
		})
	}

	idx := BuildRangeMap(entries, rangeMapLogger(md.logger))
	v, ok := idx.Lookup(addr)
	if !ok {
		return nil, false
	}
	return v.module, true
}

// ThreadInstructionModule returns the module containing the given thread's
// instruction pointer, composing ThreadList, the CPU-context decoder, and
// ModuleForAddress. This is the supplemented "for this thread, which
// module contains its instruction pointer" aggregate.
func (md *Minidump) ThreadInstructionModule(threadID uint32) (Module, bool) {
	streamVal, err := md.GetStream(ThreadListStream)
	if err != nil {
		return nil, false
	}
	threads := streamVal.(*ThreadList)

	t, ok := threads.ThreadByID(threadID)
	if !ok {
		return nil, false
	}

	ctx, err := t.Context()
	if err != nil {
		return nil, false
	}

	return md.ModuleForAddress(ctx.InstructionPointer())
}
