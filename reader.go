// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"bytes"
	"encoding/binary"
)

// littleEndian is the byte order of every on-disk minidump structure except
// a handful of cross-platform streams that record their own endianness.
var littleEndian = binary.LittleEndian

// cursor is a bounds-checked, endian-aware reader over an in-memory byte
// slice. Every read advances the cursor's offset and returns a typed value
// or ErrOutOfBounds; it never panics and never reads past the end of data.
type cursor struct {
	data  []byte
	order binary.ByteOrder
	pos   uint32
}

// newCursor returns a cursor over data starting at offset 0, reading
// multi-byte fields in the given byte order.
func newCursor(data []byte, order binary.ByteOrder) *cursor {
	if order == nil {
		order = binary.LittleEndian
	}
	return &cursor{data: data, order: order}
}

// Len returns the total size of the underlying buffer.
func (c *cursor) Len() uint32 {
	return uint32(len(c.data))
}

// Offset returns the current read position.
func (c *cursor) Offset() uint32 {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *cursor) Remaining() uint32 {
	if c.pos >= c.Len() {
		return 0
	}
	return c.Len() - c.pos
}

// Seek moves the cursor to an absolute offset. It fails if offset is beyond
// the buffer.
func (c *cursor) Seek(offset uint32) error {
	if offset > c.Len() {
		return ErrOutOfBounds
	}
	c.pos = offset
	return nil
}

// Skip advances the cursor by n bytes.
func (c *cursor) Skip(n uint32) error {
	return c.Seek(c.pos + n)
}

func (c *cursor) checkBounds(n uint32) error {
	total := c.pos + n
	if total < c.pos || total > c.Len() {
		return ErrOutOfBounds
	}
	return nil
}

// ReadUint8 reads a single byte and advances the cursor.
func (c *cursor) ReadUint8() (uint8, error) {
	if err := c.checkBounds(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

// ReadUint16 reads a uint16 in the cursor's byte order and advances it.
func (c *cursor) ReadUint16() (uint16, error) {
	if err := c.checkBounds(2); err != nil {
		return 0, err
	}
	v := c.order.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

// ReadUint32 reads a uint32 in the cursor's byte order and advances it.
func (c *cursor) ReadUint32() (uint32, error) {
	if err := c.checkBounds(4); err != nil {
		return 0, err
	}
	v := c.order.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// ReadUint64 reads a uint64 in the cursor's byte order and advances it.
func (c *cursor) ReadUint64() (uint64, error) {
	if err := c.checkBounds(8); err != nil {
		return 0, err
	}
	v := c.order.Uint64(c.data[c.pos:])
	c.pos += 8
	return v, nil
}

// ReadBytes returns a borrowed sub-slice of n bytes and advances the
// cursor. The returned slice aliases the cursor's backing array.
func (c *cursor) ReadBytes(n uint32) ([]byte, error) {
	if err := c.checkBounds(n); err != nil {
		return nil, err
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadStruct decodes a packed record described by the compile-time layout
// of v (a pointer to a fixed-size struct of fixed-width fields) starting at
// the cursor's current offset, advancing it by binary.Size(v).
func (c *cursor) ReadStruct(v interface{}) error {
	size := uint32(binary.Size(v))
	b, err := c.ReadBytes(size)
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(b), c.order, v)
}

// readStructAt decodes a packed record at an absolute offset in data
// without needing a cursor, returning ErrOutOfBounds on a short buffer.
func readStructAt(data []byte, order binary.ByteOrder, offset uint32, v interface{}) error {
	size := uint32(binary.Size(v))
	total := offset + size
	if total < offset || total > uint32(len(data)) {
		return ErrOutOfBounds
	}
	return binary.Read(bytes.NewReader(data[offset:total]), order, v)
}

// readUint32At reads a little/big-endian uint32 at an absolute offset.
func readUint32At(data []byte, order binary.ByteOrder, offset uint32) (uint32, error) {
	if offset+4 < offset || offset+4 > uint32(len(data)) {
		return 0, ErrOutOfBounds
	}
	return order.Uint32(data[offset:]), nil
}

// readUint16At reads a little/big-endian uint16 at an absolute offset.
func readUint16At(data []byte, order binary.ByteOrder, offset uint32) (uint16, error) {
	if offset+2 < offset || offset+2 > uint32(len(data)) {
		return 0, ErrOutOfBounds
	}
	return order.Uint16(data[offset:]), nil
}
