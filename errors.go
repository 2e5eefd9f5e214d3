// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "errors"

// Errors returned while locating and validating the minidump header and
// directory. These are fatal: the file as a whole could not be understood.
var (
	// ErrHeaderMismatch is returned when the signature or version low-word
	// does not match the minidump magic.
	ErrHeaderMismatch = errors.New("minidump: header signature or version mismatch")

	// ErrDirectoryTruncated is returned when the stream directory extends
	// past EOF, or an entry references bytes outside the file.
	ErrDirectoryTruncated = errors.New("minidump: stream directory truncated or out of bounds")

	// ErrTooSmall is returned when the buffer is smaller than a minidump
	// header.
	ErrTooSmall = errors.New("minidump: buffer smaller than header size")

	// ErrOutOfBounds is returned by the cursor when a read would run past
	// the end of the buffer.
	ErrOutOfBounds = errors.New("minidump: read outside buffer boundary")
)

// StreamNotFoundError is returned by GetStream/GetRawStream when the
// requested stream kind is absent from the directory. It is always
// recoverable: callers treat the stream as optional.
type StreamNotFoundError struct {
	Kind StreamKind
}

func (e *StreamNotFoundError) Error() string {
	return "minidump: stream not found: " + e.Kind.String()
}

// StreamReadError is returned when a stream kind is present in the
// directory but its payload could not be decoded. It never invalidates the
// rest of the Minidump: other streams remain readable.
type StreamReadError struct {
	Kind   StreamKind
	Reason error
}

func (e *StreamReadError) Error() string {
	return "minidump: failed to read stream " + e.Kind.String() + ": " + e.Reason.Error()
}

func (e *StreamReadError) Unwrap() error {
	return e.Reason
}

// ContextError describes why a CPU context record could not be decoded.
type ContextError struct {
	// Reason is either ErrOutOfBounds (short buffer) or
	// ErrUnknownCPUContext (flags/size identify no known architecture).
	Reason error
}

func (e *ContextError) Error() string {
	return "minidump: context decode failed: " + e.Reason.Error()
}

func (e *ContextError) Unwrap() error {
	return e.Reason
}

// ErrUnknownCPUContext is wrapped by ContextError when the context's flags
// do not identify any architecture this decoder understands.
var ErrUnknownCPUContext = errors.New("unknown CPU context")
