// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"encoding/binary"
	"testing"
)

func TestReadStringRefRoundTrip(t *testing.T) {
	data := make([]byte, 128)
	copy(data[16:], stringRefBytes("C:\\Windows\\System32\\ntdll.dll"))

	ref, err := readStringRef(data, binary.LittleEndian, 16)
	if err != nil {
		t.Fatalf("readStringRef: %v", err)
	}
	if got := ref.String(); got != "C:\\Windows\\System32\\ntdll.dll" {
		t.Errorf("String() = %q, want the original path", got)
	}
}

func TestReadStringRefOutOfBounds(t *testing.T) {
	data := make([]byte, 8)
	if _, err := readStringRef(data, binary.LittleEndian, 100); err != ErrOutOfBounds {
		t.Errorf("readStringRef(rva past EOF) = %v, want ErrOutOfBounds", err)
	}
}

func TestStringRefUnpairedSurrogateFallsBackToLossyDecode(t *testing.T) {
	// A lone high surrogate with no following low surrogate is invalid
	// UTF-16; String must still return something rather than an error.
	raw := []byte{0x00, 0xd8} // 0xd800, little-endian
	got := StringRef{raw: raw}.String()
	if got == "" {
		t.Error("String() of an unpaired surrogate returned empty, want U+FFFD")
	}
}

func TestStringRefEmpty(t *testing.T) {
	if got := (StringRef{}).String(); got != "" {
		t.Errorf("String() of an empty StringRef = %q, want empty", got)
	}
}
