// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"encoding/binary"
	"testing"
)

func TestParseHeaderRejectsShortBuffer(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"empty", nil},
		{"shorter than header", make([]byte, headerSize-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := parseHeader(tt.in); err != ErrTooSmall {
				t.Errorf("parseHeader(%s) = %v, want ErrTooSmall", tt.name, err)
			}
		})
	}
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	buf := newDumpBuilder().build()
	buf[0] ^= 0xff // corrupt the signature's first byte

	if _, _, err := parseHeader(buf); err != ErrHeaderMismatch {
		t.Fatalf("parseHeader() = %v, want ErrHeaderMismatch", err)
	}
}

func TestParseHeaderDetectsBigEndianSignature(t *testing.T) {
	buf := newDumpBuilder().build()

	// Re-encode the header's fixed fields big-endian, as a PPC/SPARC
	// producer would, and check the order comes back detected rather than
	// assumed.
	be := make([]byte, len(buf))
	copy(be, buf)
	binary.BigEndian.PutUint32(be[0:4], HeaderSignature)
	binary.BigEndian.PutUint32(be[4:8], binary.LittleEndian.Uint32(buf[4:8]))
	binary.BigEndian.PutUint32(be[8:12], binary.LittleEndian.Uint32(buf[8:12]))
	binary.BigEndian.PutUint32(be[12:16], binary.LittleEndian.Uint32(buf[12:16]))

	h, order, err := parseHeader(be)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if order != binary.BigEndian {
		t.Fatalf("parseHeader() order = %v, want BigEndian", order)
	}
	if h.NumberOfStreams != 0 {
		t.Errorf("h.NumberOfStreams = %d, want 0", h.NumberOfStreams)
	}
}

func TestParseDirectoryDuplicateKindsKeepFirstOccurrence(t *testing.T) {
	buf := newDumpBuilder().
		addStream(CommentStreamA, []byte("first")).
		addStream(CommentStreamA, []byte("second")).
		build()

	h, order, err := parseHeader(buf)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	dir, err := parseDirectory(buf, h, order)
	if err != nil {
		t.Fatalf("parseDirectory: %v", err)
	}

	if len(dir.entries) != 2 {
		t.Fatalf("len(dir.entries) = %d, want 2", len(dir.entries))
	}

	entry := dir.byKind[CommentStreamA]
	got := string(buf[entry.Offset : entry.Offset+entry.Length])
	if got != "first" {
		t.Errorf("byKind[CommentStreamA] resolved to %q, want %q", got, "first")
	}
}

func TestParseDirectoryTruncated(t *testing.T) {
	buf := newDumpBuilder().addStream(CommentStreamA, []byte("hello")).build()

	h, order, err := parseHeader(buf)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}

	if _, err := parseDirectory(buf[:len(buf)-3], h, order); err != ErrDirectoryTruncated {
		t.Fatalf("parseDirectory(truncated) = %v, want ErrDirectoryTruncated", err)
	}
}
