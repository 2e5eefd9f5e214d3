// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "fmt"

// ppc (32-bit) and ppc64 context flag bits.
const (
	contextFlagPPC uint32 = 0x20000000
	contextSizePPC        = 164

	contextFlagPPC64 uint32 = 0x01000000
	contextSizePPC64        = 320
)

var ppcRegisterNames = buildPPCRegisterNames(32)
var ppc64RegisterNames = buildPPCRegisterNames(64)

func buildPPCRegisterNames(bits int) []string {
	names := make([]string, 0, 35)
	for i := 0; i <= 31; i++ {
		names = append(names, fmt.Sprintf("r%d", i))
	}
	return append(names, "srr0", "srr1", "cr", "xer")
}

// contextPPC mirrors Breakpad's MDRawContextPPC: 32 general-purpose
// registers, the two special-purpose save/restore registers that hold the
// equivalents of pc/msr, plus condition and fixed-point exception
// registers.
type contextPPC struct {
	ContextFlags uint32
	SRR0, SRR1   uint32
	GPR          [32]uint32
	CR, XER      uint32
	LR, CTR      uint32
	MQ           uint32
	VRSave       uint32
}

func (c *contextPPC) CPUType() CPUType { return CPUPPC }

func (c *contextPPC) GetRegisterAlways(reg string) uint64 {
	switch reg {
	case "srr0":
		return uint64(c.SRR0)
	case "srr1":
		return uint64(c.SRR1)
	case "cr":
		return uint64(c.CR)
	case "xer":
		return uint64(c.XER)
	}
	for i := 0; i <= 31; i++ {
		if reg == fmt.Sprintf("r%d", i) {
			return uint64(c.GPR[i])
		}
	}
	panic("minidump: invalid ppc register " + reg)
}

func (c *contextPPC) SetRegister(reg string, val uint64) bool {
	v := uint32(val)
	switch reg {
	case "srr0":
		c.SRR0 = v
	case "srr1":
		c.SRR1 = v
	case "cr":
		c.CR = v
	case "xer":
		c.XER = v
	default:
		for i := 0; i <= 31; i++ {
			if reg == fmt.Sprintf("r%d", i) {
				c.GPR[i] = v
				return true
			}
		}
		return false
	}
	return true
}

func (c *contextPPC) StackPointerName() string       { return "r1" }
func (c *contextPPC) InstructionPointerName() string { return "srr0" }
func (c *contextPPC) GeneralPurposeRegisterNames() []string {
	return ppcRegisterNames
}
func (c *contextPPC) FormatRegister(reg string) string {
	return formatRegisterHex(c.GetRegisterAlways(reg), 32)
}

func decodeContextPPC(data []byte, flags uint32) (*Context, error) {
	var raw contextPPC
	if err := readStructAt(data, littleEndian, 0, &raw); err != nil {
		return nil, &ContextError{Reason: err}
	}
	raw.ContextFlags = flags

	return &Context{Raw: &raw, Valid: AllRegistersValid()}, nil
}

// contextPPC64 is the 64-bit counterpart of contextPPC: the same register
// set widened to 64 bits, matching MDRawContextPPC64.
type contextPPC64 struct {
	ContextFlags uint64
	SRR0, SRR1   uint64
	GPR          [32]uint64
	CR, XER      uint64
	LR, CTR      uint64
	VRSave       uint64
}

func (c *contextPPC64) CPUType() CPUType { return CPUPPC64 }

func (c *contextPPC64) GetRegisterAlways(reg string) uint64 {
	switch reg {
	case "srr0":
		return c.SRR0
	case "srr1":
		return c.SRR1
	case "cr":
		return c.CR
	case "xer":
		return c.XER
	}
	for i := 0; i <= 31; i++ {
		if reg == fmt.Sprintf("r%d", i) {
			return c.GPR[i]
		}
	}
	panic("minidump: invalid ppc64 register " + reg)
}

func (c *contextPPC64) SetRegister(reg string, val uint64) bool {
	switch reg {
	case "srr0":
		c.SRR0 = val
	case "srr1":
		c.SRR1 = val
	case "cr":
		c.CR = val
	case "xer":
		c.XER = val
	default:
		for i := 0; i <= 31; i++ {
			if reg == fmt.Sprintf("r%d", i) {
				c.GPR[i] = val
				return true
			}
		}
		return false
	}
	return true
}

func (c *contextPPC64) StackPointerName() string       { return "r1" }
func (c *contextPPC64) InstructionPointerName() string { return "srr0" }
func (c *contextPPC64) GeneralPurposeRegisterNames() []string {
	return ppc64RegisterNames
}
func (c *contextPPC64) FormatRegister(reg string) string {
	return formatRegisterHex(c.GetRegisterAlways(reg), 64)
}

func decodeContextPPC64(data []byte, flags uint32) (*Context, error) {
	var raw contextPPC64
	if err := readStructAt(data, littleEndian, 0, &raw); err != nil {
		return nil, &ContextError{Reason: err}
	}
	raw.ContextFlags = uint64(flags)

	return &Context{Raw: &raw, Valid: AllRegistersValid()}, nil
}
