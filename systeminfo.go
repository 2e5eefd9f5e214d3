// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import (
	"encoding/binary"
	"fmt"
)

// PlatformID identifies the operating system family a dump was captured
// on, matching the Microsoft MINIDUMP_OS enumeration.
type PlatformID uint32

// Known platform identifiers.
const (
	PlatformWin32s       PlatformID = 0
	PlatformWin32Windows PlatformID = 1
	PlatformWin32NT      PlatformID = 2
	PlatformWin32CE      PlatformID = 3
	PlatformUnix         PlatformID = 0x8201
	PlatformMacOSX       PlatformID = 0x8202
	PlatformIOS          PlatformID = 0x8203
	PlatformLinux        PlatformID = 0x8204
	PlatformSolaris      PlatformID = 0x8205
	PlatformAndroid      PlatformID = 0x8206
	PlatformPS3          PlatformID = 0x8207
	PlatformNaCl         PlatformID = 0x8208
)

type systemInfoOnDisk struct {
	ProcessorArchitecture uint16
	ProcessorLevel        uint16
	ProcessorRevision     uint16
	NumberOfProcessors    uint8
	ProductType           uint8
	MajorVersion          uint32
	MinorVersion          uint32
	BuildNumber           uint32
	PlatformID            uint32
	CSDVersionRVA         uint32
	SuiteMask             uint16
	Reserved2             uint16
	CPUFeaturesOrVendorID [3]uint32
	CPUInfoAMDX86OrOther  [1]uint32
}

// SystemInfo is the decoded SystemInfoStream payload.
type SystemInfo struct {
	CPU                CPUType
	ProcessorLevel     uint16
	ProcessorRevision  uint16
	NumberOfProcessors uint8
	ProductType        uint8
	MajorVersion       uint32
	MinorVersion       uint32
	BuildNumber        uint32
	Platform           PlatformID
	OSVersion          string
	CSDVersion         string
}

// cpuArchitectureToType maps MINIDUMP_PROCESSOR_ARCHITECTURE values to this
// package's CPUType, used to hint the context decoder when a thread's
// context flags alone are ambiguous (arm64 vs arm64-old in particular).
var cpuArchitectureToType = map[uint16]CPUType{
	0:  CPUX86,
	5:  CPUARM,
	6:  CPUX86, // IA64 carries no context decoder of its own; falls back
	9:  CPUAMD64,
	12: CPUARM64,

	0x8003: CPUARM64Old, // Breakpad's PROCESSOR_ARCHITECTURE_ARM64_OLD
}

func decodeSystemInfo(data, whole []byte, order binary.ByteOrder) (*SystemInfo, error) {
	var raw systemInfoOnDisk
	if err := readStructAt(data, order, 0, &raw); err != nil {
		return nil, err
	}

	info := &SystemInfo{
		ProcessorLevel:     raw.ProcessorLevel,
		ProcessorRevision:  raw.ProcessorRevision,
		NumberOfProcessors: raw.NumberOfProcessors,
		ProductType:        raw.ProductType,
		MajorVersion:       raw.MajorVersion,
		MinorVersion:       raw.MinorVersion,
		BuildNumber:        raw.BuildNumber,
		Platform:           PlatformID(raw.PlatformID),
	}

	if cpu, ok := cpuArchitectureToType[raw.ProcessorArchitecture]; ok {
		info.CPU = cpu
	}

	if raw.CSDVersionRVA > 0 {
		ref, err := readStringRef(whole, order, raw.CSDVersionRVA)
		if err == nil {
			info.CSDVersion = ref.String()
		}
	}

	info.OSVersion = formatOSVersion(info.MajorVersion, info.MinorVersion, info.BuildNumber)

	return info, nil
}

func formatOSVersion(major, minor, build uint32) string {
	return fmt.Sprintf("%d.%d.%d", major, minor, build)
}
