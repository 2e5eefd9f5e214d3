// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "encoding/binary"

// ExceptionCode is the raw platform exception/signal number recorded in an
// Exception stream.
type ExceptionCode uint32

// Well-known Windows exception codes, used by Classify.
const (
	ExceptionAccessViolation    ExceptionCode = 0xC0000005
	ExceptionStackOverflow      ExceptionCode = 0xC00000FD
	ExceptionIllegalInstruction ExceptionCode = 0xC000001D
	ExceptionBreakpoint         ExceptionCode = 0x80000003
	ExceptionIntDivideByZero    ExceptionCode = 0xC0000094
	ExceptionFltDivideByZero    ExceptionCode = 0xC000008E
	ExceptionPrivInstruction    ExceptionCode = 0xC0000096
)

// ExceptionClass is a coarse, platform-independent bucket for an exception
// code, in the spirit of the raw signal→category mapping crash reporters
// use to group crashes before symbolication can run.
type ExceptionClass int

const (
	ExceptionClassOther ExceptionClass = iota
	ExceptionClassAccessViolation
	ExceptionClassStackOverflow
	ExceptionClassIllegalInstruction
	ExceptionClassBreakpoint
	ExceptionClassDivideByZero
)

// Classify buckets a raw exception code into a coarse category. Codes this
// decoder doesn't recognize classify as ExceptionClassOther rather than
// failing: classification is advisory metadata, never load-bearing for the
// rest of the parse.
func (c ExceptionCode) Classify() ExceptionClass {
	switch c {
	case ExceptionAccessViolation:
		return ExceptionClassAccessViolation
	case ExceptionStackOverflow:
		return ExceptionClassStackOverflow
	case ExceptionIllegalInstruction, ExceptionPrivInstruction:
		return ExceptionClassIllegalInstruction
	case ExceptionBreakpoint:
		return ExceptionClassBreakpoint
	case ExceptionIntDivideByZero, ExceptionFltDivideByZero:
		return ExceptionClassDivideByZero
	default:
		return ExceptionClassOther
	}
}

type exceptionRecordOnDisk struct {
	ExceptionCode        uint32
	ExceptionFlags       uint32
	ExceptionRecordNext  uint64
	ExceptionAddress     uint64
	NumberParameters     uint32
	UnusedAlignment      uint32
	ExceptionInformation [15]uint64
}

type exceptionStreamOnDisk struct {
	ThreadID     uint32
	Alignment    uint32
	ExceptionRec exceptionRecordOnDisk
	ContextSize  uint32
	ContextRVA   uint32
}

// Exception is the decoded ExceptionStream payload: which thread faulted,
// why, and (if present) that thread's register state at fault time — which
// supersedes the same thread's entry in ThreadList for unwinding purposes,
// since the thread's own context by then reflects the exception handler,
// not the faulting frame.
type Exception struct {
	ThreadID   uint32
	Code       ExceptionCode
	Flags      uint32
	Address    uint64
	Parameters []uint64

	whole       []byte
	contextData []byte
	cpuHint     CPUType
}

// Context decodes the faulting thread's register snapshot, if the stream
// carried one.
func (e *Exception) Context() (*Context, error) {
	if len(e.contextData) == 0 {
		return nil, &ContextError{Reason: ErrOutOfBounds}
	}
	return decodeContext(e.contextData, e.cpuHint)
}

func decodeException(data, whole []byte, order binary.ByteOrder, cpuHint CPUType) (*Exception, error) {
	var raw exceptionStreamOnDisk
	if err := readStructAt(data, order, 0, &raw); err != nil {
		return nil, err
	}

	n := raw.ExceptionRec.NumberParameters
	if n > 15 {
		n = 15
	}

	exc := &Exception{
		ThreadID:   raw.ThreadID,
		Code:       ExceptionCode(raw.ExceptionRec.ExceptionCode),
		Flags:      raw.ExceptionRec.ExceptionFlags,
		Address:    raw.ExceptionRec.ExceptionAddress,
		Parameters: append([]uint64(nil), raw.ExceptionRec.ExceptionInformation[:n]...),
		whole:      whole,
		cpuHint:    cpuHint,
	}

	if raw.ContextSize > 0 {
		ctxBytes, err := readBytesAt(whole, raw.ContextRVA, raw.ContextSize)
		if err != nil {
			return nil, err
		}
		exc.contextData = ctxBytes
	}

	return exc, nil
}
