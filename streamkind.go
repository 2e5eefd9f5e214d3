// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "fmt"

// StreamKind identifies the payload carried by a directory entry. Values
// match the Breakpad/Microsoft MINIDUMP_STREAM_TYPE enumeration. Codes this
// parser doesn't recognize are not an error: they surface as Unknown(u32)
// so callers can still reach them through GetRawStream/AllStreams.
type StreamKind uint32

// Known stream kinds. Sentinel values UnusedStream (0) and LastReservedStream
// (0xFFFFFFFF) are never indexed by the directory locator.
const (
	UnusedStream              StreamKind = 0
	ReservedStream0           StreamKind = 1
	ReservedStream1           StreamKind = 2
	ThreadListStream          StreamKind = 3
	ModuleListStream          StreamKind = 4
	MemoryListStream          StreamKind = 5
	ExceptionStream           StreamKind = 6
	SystemInfoStream          StreamKind = 7
	ThreadExListStream        StreamKind = 8
	Memory64ListStream        StreamKind = 9
	CommentStreamA            StreamKind = 10
	CommentStreamW            StreamKind = 11
	HandleDataStream          StreamKind = 12
	FunctionTableStream       StreamKind = 13
	UnloadedModuleListStream  StreamKind = 14
	MiscInfoStream            StreamKind = 15
	MemoryInfoListStream      StreamKind = 16
	ThreadInfoListStream      StreamKind = 17
	HandleOperationListStream StreamKind = 18
	TokenStream               StreamKind = 19
	JavaScriptDataStream      StreamKind = 20
	SystemMemoryInfoStream    StreamKind = 21
	ProcessVMCountersStream   StreamKind = 22
	IPTTraceStream            StreamKind = 23
	ThreadNamesStream         StreamKind = 24
	ceStreamNull              StreamKind = 0x8000
	ceStreamSystemInfo        StreamKind = 0x8001
	ceStreamException         StreamKind = 0x8002
	ceStreamModuleList        StreamKind = 0x8003
	ceStreamProcessList       StreamKind = 0x8004
	ceStreamThreadList        StreamKind = 0x8005
	ceStreamThreadContextList StreamKind = 0x8006
	ceStreamThreadCallStack   StreamKind = 0x8007
	ceStreamMemoryVirtualList StreamKind = 0x8008
	ceStreamMemoryPhysicalList StreamKind = 0x8009
	ceStreamBucketParameters  StreamKind = 0x800A
	ceStreamProcessModuleMap  StreamKind = 0x800B
	ceStreamDiagnosisList     StreamKind = 0x800C
	BreakpadInfoStream        StreamKind = 0x47670001
	AssertionInfoStream       StreamKind = 0x47670002
	LinuxCPUInfoStream        StreamKind = 0x47670003
	LinuxProcStatusStream     StreamKind = 0x47670004
	LinuxLSBReleaseStream     StreamKind = 0x47670005
	LinuxCMDLineStream        StreamKind = 0x47670006
	LinuxEnvironStream        StreamKind = 0x47670007
	LinuxAuxvStream           StreamKind = 0x47670008
	LinuxMapsStream           StreamKind = 0x47670009
	LinuxDSODebugStream       StreamKind = 0x4767000A

	// LastReservedStream is the sentinel marking the end of the reserved
	// range; like UnusedStream, the directory locator ignores it.
	LastReservedStream StreamKind = 0xFFFFFFFF
)

var streamKindNames = map[StreamKind]string{
	UnusedStream:              "Unused",
	ThreadListStream:          "ThreadList",
	ModuleListStream:          "ModuleList",
	MemoryListStream:          "MemoryList",
	ExceptionStream:           "Exception",
	SystemInfoStream:          "SystemInfo",
	ThreadExListStream:        "ThreadExList",
	Memory64ListStream:        "Memory64List",
	CommentStreamA:            "CommentA",
	CommentStreamW:            "CommentW",
	HandleDataStream:          "HandleData",
	FunctionTableStream:       "FunctionTable",
	UnloadedModuleListStream:  "UnloadedModuleList",
	MiscInfoStream:            "MiscInfo",
	MemoryInfoListStream:      "MemoryInfoList",
	ThreadInfoListStream:      "ThreadInfoList",
	HandleOperationListStream: "HandleOperationList",
	TokenStream:               "Token",
	ThreadNamesStream:         "ThreadNames",
	BreakpadInfoStream:        "BreakpadInfo",
	AssertionInfoStream:       "AssertionInfo",
	LinuxCPUInfoStream:        "LinuxCPUInfo",
	LinuxProcStatusStream:     "LinuxProcStatus",
	LinuxLSBReleaseStream:     "LinuxLSBRelease",
	LinuxCMDLineStream:        "LinuxCMDLine",
	LinuxEnvironStream:        "LinuxEnviron",
	LinuxAuxvStream:           "LinuxAuxv",
	LinuxMapsStream:           "LinuxMaps",
	LinuxDSODebugStream:       "LinuxDSODebug",
}

// String returns a human-readable stream kind name, or "Unknown(0x...)" for
// codes this parser doesn't recognize.
func (k StreamKind) String() string {
	if name, ok := streamKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(0x%x)", uint32(k))
}
