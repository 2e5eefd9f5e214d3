// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"encoding/binary"
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
)

// StringRef is an RVA-addressed, length-prefixed UTF-16LE string as it
// appears throughout a minidump (module paths, thread names, annotations).
// It decodes lazily: the on-disk bytes are validated for bounds when
// readStringRef is called, but the UTF-16 decode happens only when String
// is invoked.
type StringRef struct {
	raw []byte
}

// readStringRef reads the 4-byte length prefix (byte count, not including
// the prefix, not including a terminating NUL) at rva and returns a
// StringRef over the following UTF-16LE bytes.
func readStringRef(data []byte, order binary.ByteOrder, rva uint32) (StringRef, error) {
	length, err := readUint32At(data, order, rva)
	if err != nil {
		return StringRef{}, err
	}
	start := rva + 4
	end := start + length
	if end < start || end > uint32(len(data)) {
		return StringRef{}, ErrOutOfBounds
	}
	return StringRef{raw: data[start:end]}, nil
}

// String decodes the UTF-16LE bytes to a Go string. Malformed code units
// are replaced with U+FFFD rather than failing the decode: a single bad
// string should not make an otherwise-readable stream unusable.
func (s StringRef) String() string {
	if len(s.raw) == 0 {
		return ""
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := decoder.Bytes(s.raw)
	if err == nil {
		return string(out)
	}
	return decodeUTF16Lossy(s.raw)
}

// Len returns the length of the raw UTF-16 byte payload, without decoding.
func (s StringRef) Len() int {
	return len(s.raw)
}

// decodeUTF16Lossy is the fallback path for byte sequences x/text's
// decoder rejects outright: unpaired surrogates and similar come through
// as the Unicode replacement character instead of losing the whole string.
func decodeUTF16Lossy(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = littleEndian.Uint16(b[i*2:])
	}
	return string(utf16.Decode(units))
}
