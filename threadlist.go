// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "encoding/binary"

// threadOnDisk is the fixed-size MINIDUMP_THREAD record.
type threadOnDisk struct {
	ThreadID      uint32
	SuspendCount  uint32
	PriorityClass uint32
	Priority      uint32
	Teb           uint64
	Stack         memoryDescriptorOnDisk
	ContextSize   uint32
	ContextRVA    uint32
}

// Thread is a decoded entry from the ThreadList stream. Its context is
// resolved lazily: contextData keeps the raw context bytes and Context()
// decodes them on each call, so no thread pays the decode cost up front.
type Thread struct {
	ThreadID      uint32
	SuspendCount  uint32
	PriorityClass uint32
	Priority      uint32
	Teb           uint64
	Stack         MemoryRegion

	whole       []byte
	contextData []byte
	cpuHint     CPUType
}

// Context decodes this thread's CPU register snapshot.
func (t *Thread) Context() (*Context, error) {
	if len(t.contextData) == 0 {
		return nil, &ContextError{Reason: ErrOutOfBounds}
	}
	return decodeContext(t.contextData, t.cpuHint)
}

// ThreadList is the decoded ThreadListStream payload.
type ThreadList struct {
	Threads []*Thread
}

// ThreadByID returns the thread with the given id, if present.
func (l *ThreadList) ThreadByID(id uint32) (*Thread, bool) {
	for _, t := range l.Threads {
		if t.ThreadID == id {
			return t, true
		}
	}
	return nil, false
}

func decodeThreadList(data, whole []byte, order binary.ByteOrder, maxCount uint32, cpuHint CPUType) (*ThreadList, error) {
	c := newCursor(data, order)
	count, err := c.ReadUint32()
	if err != nil {
		return nil, err
	}
	if maxCount > 0 && count > maxCount {
		count = maxCount
	}

	out := &ThreadList{Threads: make([]*Thread, 0, count)}
	for i := uint32(0); i < count; i++ {
		var raw threadOnDisk
		if err := c.ReadStruct(&raw); err != nil {
			return nil, err
		}

		th := &Thread{
			ThreadID:      raw.ThreadID,
			SuspendCount:  raw.SuspendCount,
			PriorityClass: raw.PriorityClass,
			Priority:      raw.Priority,
			Teb:           raw.Teb,
			Stack: MemoryRegion{
				StartOfMemoryRange: raw.Stack.StartOfMemoryRange,
				DataSize:           raw.Stack.DataSize,
				RVA:                raw.Stack.RVA,
			},
			whole:   whole,
			cpuHint: cpuHint,
		}

		if raw.ContextSize > 0 {
			ctxBytes, err := readBytesAt(whole, raw.ContextRVA, raw.ContextSize)
			if err != nil {
				return nil, err
			}
			th.contextData = ctxBytes
		}

		out.Threads = append(out.Threads, th)
	}
	return out, nil
}
