// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "encoding/binary"

// Header magic and version constants, matching the Microsoft/Breakpad
// minidump format.
const (
	// HeaderSignature is 'MDMP' read as a little-endian uint32.
	HeaderSignature uint32 = 0x504d444d

	// HeaderVersionLow is the required low word of the version field.
	HeaderVersionLow uint32 = 0xa793

	// headerSize is the fixed on-disk size of Header.
	headerSize = 32
)

// Header is the minidump's fixed 32-byte root record.
type Header struct {
	// Signature must equal HeaderSignature.
	Signature uint32

	// Version's low 16 bits must equal HeaderVersionLow; the high 16 bits
	// are implementation-defined and not validated.
	Version uint32

	// NumberOfStreams is the number of entries in the stream directory.
	NumberOfStreams uint32

	// StreamDirectoryRVA is the file offset of the first directory entry.
	StreamDirectoryRVA uint32

	// CheckSum is typically zero; unused by this parser.
	CheckSum uint32

	// TimeDateStamp is a unix timestamp of dump creation.
	TimeDateStamp uint32

	// Flags carries MINIDUMP_TYPE bits describing what the dump contains.
	Flags uint64
}

// VersionLow returns the validated low word of Version.
func (h Header) VersionLow() uint32 {
	return h.Version & 0xffff
}

// directoryEntry is the on-disk shape of one stream directory record.
type directoryEntry struct {
	StreamType uint32
	DataSize   uint32
	RVA        uint32
}

// DirectoryEntry is a resolved, typed view of a directoryEntry.
type DirectoryEntry struct {
	Kind   StreamKind
	Offset uint32
	Length uint32
}

// directory is the minidump's resolved table of contents: the fast
// first-occurrence-wins map plus the full ordered entry list (so callers can
// still reach duplicate streams by explicit enumeration).
type directory struct {
	byKind  map[StreamKind]DirectoryEntry
	entries []DirectoryEntry
}

// detectByteOrder identifies the byte order the whole dump was written in
// by comparing the header's first four bytes against the signature's
// little-endian and big-endian encodings, the same self-describing trick
// TIFF-style containers use instead of assuming a fixed order. x86/ARM
// producers emit the signature (and everything after it) little-endian;
// PPC/SPARC producers emit it big-endian.
func detectByteOrder(data []byte) (binary.ByteOrder, error) {
	magic := data[:4]
	switch {
	case binary.LittleEndian.Uint32(magic) == HeaderSignature:
		return binary.LittleEndian, nil
	case binary.BigEndian.Uint32(magic) == HeaderSignature:
		return binary.BigEndian, nil
	default:
		return nil, ErrHeaderMismatch
	}
}

// parseHeader reads the 32-byte header at offset 0 of data, detecting the
// dump's byte order from its signature before reading any other field, and
// validates the version. The returned order is authoritative for every
// later read of this dump, including the stream directory and every
// stream payload.
func parseHeader(data []byte) (Header, binary.ByteOrder, error) {
	if len(data) < headerSize {
		return Header{}, nil, ErrTooSmall
	}

	order, err := detectByteOrder(data)
	if err != nil {
		return Header{}, nil, err
	}

	c := newCursor(data, order)
	var h Header
	if h.Signature, err = c.ReadUint32(); err != nil {
		return Header{}, nil, err
	}
	if h.Version, err = c.ReadUint32(); err != nil {
		return Header{}, nil, err
	}
	if h.NumberOfStreams, err = c.ReadUint32(); err != nil {
		return Header{}, nil, err
	}
	if h.StreamDirectoryRVA, err = c.ReadUint32(); err != nil {
		return Header{}, nil, err
	}
	if h.CheckSum, err = c.ReadUint32(); err != nil {
		return Header{}, nil, err
	}
	if h.TimeDateStamp, err = c.ReadUint32(); err != nil {
		return Header{}, nil, err
	}
	if h.Flags, err = c.ReadUint64(); err != nil {
		return Header{}, nil, err
	}

	if h.VersionLow() != HeaderVersionLow {
		return Header{}, nil, ErrHeaderMismatch
	}

	return h, order, nil
}

// parseDirectory reads h.NumberOfStreams directory entries starting at
// h.StreamDirectoryRVA, validating that every entry's (rva, length) falls
// within data. UnusedStream and LastReservedStream sentinels are skipped.
// Duplicate kinds are tolerated: only the first occurrence is indexed by
// byKind, but every entry (including duplicates) is kept in entries.
func parseDirectory(data []byte, h Header, order binary.ByteOrder) (*directory, error) {
	dir := &directory{byKind: make(map[StreamKind]DirectoryEntry, h.NumberOfStreams)}

	c := newCursor(data, order)
	if err := c.Seek(h.StreamDirectoryRVA); err != nil {
		return nil, ErrDirectoryTruncated
	}

	for i := uint32(0); i < h.NumberOfStreams; i++ {
		var raw directoryEntry
		if err := c.ReadStruct(&raw); err != nil {
			return nil, ErrDirectoryTruncated
		}

		kind := StreamKind(raw.StreamType)
		if kind == UnusedStream || kind == LastReservedStream {
			continue
		}

		end := raw.RVA + raw.DataSize
		if end < raw.RVA || end > uint32(len(data)) {
			return nil, ErrDirectoryTruncated
		}

		entry := DirectoryEntry{Kind: kind, Offset: raw.RVA, Length: raw.DataSize}
		dir.entries = append(dir.entries, entry)
		if _, exists := dir.byKind[kind]; !exists {
			dir.byKind[kind] = entry
		}
	}

	return dir, nil
}
