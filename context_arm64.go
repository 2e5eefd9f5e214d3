// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "fmt"

// aarch64 context flag bits. ARM64Old is Breakpad's original, pre-upstream
// layout (32 general registers x0-x31 plus separate pc and cpsr; fp and sp
// are read from x29 and x31); ARM64 is the later layout matching
// Microsoft's CONTEXT_ARM64, which keeps x0-x30 (fp and lr in x29/x30) in
// iregs and stores sp and pc in fields of their own alongside cpsr.
const (
	contextFlagARM64 uint32 = 0x80000000
	contextSizeARM64        = 656
	contextSizeARM64Old     = 596
)

var arm64RegisterNames = buildARM64RegisterNames()

func buildARM64RegisterNames() []string {
	names := make([]string, 0, 34)
	for i := 0; i <= 31; i++ {
		names = append(names, fmt.Sprintf("x%d", i))
	}
	return append(names, "pc", "fp", "sp")
}

const (
	arm64FramePointer = 29
	arm64StackPointer = 31
)

// contextARM64Old is Breakpad's original aarch64 layout: 32 general
// registers plus pc, cpsr and a float save area, predating Microsoft's
// CONTEXT_ARM64 publication.
type contextARM64Old struct {
	ContextFlags uint64
	Iregs        [32]uint64
	PC           uint64
	CPSR         uint32
	FloatSave    [32 + 8]uint64 // fpregs[32] + fpcr/fpsr/reserved padding
}

func (c *contextARM64Old) CPUType() CPUType { return CPUARM64Old }

func (c *contextARM64Old) GetRegisterAlways(reg string) uint64 {
	switch reg {
	case "pc":
		return c.PC
	case "fp":
		return c.Iregs[arm64FramePointer]
	case "sp":
		return c.Iregs[arm64StackPointer]
	}
	for i := 0; i <= 31; i++ {
		if reg == fmt.Sprintf("x%d", i) {
			return c.Iregs[i]
		}
	}
	panic("minidump: invalid arm64 register " + reg)
}

func (c *contextARM64Old) SetRegister(reg string, val uint64) bool {
	switch reg {
	case "pc":
		c.PC = val
	case "fp":
		c.Iregs[arm64FramePointer] = val
	case "sp":
		c.Iregs[arm64StackPointer] = val
	default:
		for i := 0; i <= 31; i++ {
			if reg == fmt.Sprintf("x%d", i) {
				c.Iregs[i] = val
				return true
			}
		}
		return false
	}
	return true
}

func (c *contextARM64Old) StackPointerName() string       { return "sp" }
func (c *contextARM64Old) InstructionPointerName() string { return "pc" }
func (c *contextARM64Old) GeneralPurposeRegisterNames() []string {
	return arm64RegisterNames
}
func (c *contextARM64Old) FormatRegister(reg string) string {
	return formatRegisterHex(c.GetRegisterAlways(reg), 64)
}

func decodeContextARM64Old(data []byte, flags uint32) (*Context, error) {
	var raw contextARM64Old
	if err := readStructAt(data, littleEndian, 0, &raw); err != nil {
		return nil, &ContextError{Reason: err}
	}
	raw.ContextFlags = uint64(flags)

	return &Context{Raw: &raw, Valid: AllRegistersValid()}, nil
}

// contextARM64 is the post-standardization aarch64 layout matching
// Microsoft's CONTEXT_ARM64.
type contextARM64 struct {
	ContextFlags uint32
	CPSR         uint32
	Iregs        [31]uint64
	SP           uint64
	PC           uint64
	FloatRegs    [32]uint64
	FPCR, FPSR   uint32
	BCR          [8]uint32
	BVR          [8]uint64
	WCR          [2]uint32
	WVR          [2]uint64
}

func (c *contextARM64) CPUType() CPUType { return CPUARM64 }

func (c *contextARM64) GetRegisterAlways(reg string) uint64 {
	switch reg {
	case "pc":
		return c.PC
	case "sp":
		return c.SP
	case "fp":
		return c.Iregs[arm64FramePointer]
	}
	for i := 0; i <= 30; i++ {
		if reg == fmt.Sprintf("x%d", i) {
			return c.Iregs[i]
		}
	}
	if reg == "x31" {
		return c.SP
	}
	panic("minidump: invalid arm64 register " + reg)
}

func (c *contextARM64) SetRegister(reg string, val uint64) bool {
	switch reg {
	case "pc":
		c.PC = val
	case "sp", "x31":
		c.SP = val
	case "fp":
		c.Iregs[arm64FramePointer] = val
	default:
		for i := 0; i <= 30; i++ {
			if reg == fmt.Sprintf("x%d", i) {
				c.Iregs[i] = val
				return true
			}
		}
		return false
	}
	return true
}

func (c *contextARM64) StackPointerName() string       { return "sp" }
func (c *contextARM64) InstructionPointerName() string { return "pc" }
func (c *contextARM64) GeneralPurposeRegisterNames() []string {
	return arm64RegisterNames
}
func (c *contextARM64) FormatRegister(reg string) string {
	return formatRegisterHex(c.GetRegisterAlways(reg), 64)
}

func decodeContextARM64(data []byte, flags uint32) (*Context, error) {
	var raw contextARM64
	if err := readStructAt(data, littleEndian, 0, &raw); err != nil {
		return nil, &ContextError{Reason: err}
	}
	raw.ContextFlags = flags

	return &Context{Raw: &raw, Valid: AllRegistersValid()}, nil
}
