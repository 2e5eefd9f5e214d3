// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "fmt"

// arm (32-bit) context flag bits.
const (
	contextFlagARM uint32 = 0x40000000
	contextSizeARM        = 364
)

var armRegisterNames = []string{
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
	"r8", "r9", "r10", "fp", "ip", "sp", "lr", "pc", "cpsr",
}

// contextARM mirrors Breakpad's MDRawContextARM: 16 general-purpose
// registers (r0-r15, with r11/r13/r14/r15 aliased as fp/sp/lr/pc), the CPSR
// flags register, and an FPA/VFP floating point save area left opaque.
type contextARM struct {
	ContextFlags uint32
	Iregs        [16]uint32
	CPSR         uint32
	FPScr        uint32
	FPRegs       [32]uint64
	FPExtra      [8]uint32
}

func (c *contextARM) CPUType() CPUType { return CPUARM }

const (
	armFP = 11
	armIP = 12
	armSP = 13
	armLR = 14
	armPC = 15
)

func (c *contextARM) GetRegisterAlways(reg string) uint64 {
	switch reg {
	case "fp":
		return uint64(c.Iregs[armFP])
	case "ip":
		return uint64(c.Iregs[armIP])
	case "sp":
		return uint64(c.Iregs[armSP])
	case "lr":
		return uint64(c.Iregs[armLR])
	case "pc":
		return uint64(c.Iregs[armPC])
	case "cpsr":
		return uint64(c.CPSR)
	}
	for i := 0; i <= 10; i++ {
		if reg == fmt.Sprintf("r%d", i) {
			return uint64(c.Iregs[i])
		}
	}
	panic("minidump: invalid arm register " + reg)
}

func (c *contextARM) SetRegister(reg string, val uint64) bool {
	v := uint32(val)
	switch reg {
	case "fp":
		c.Iregs[armFP] = v
	case "ip":
		c.Iregs[armIP] = v
	case "sp":
		c.Iregs[armSP] = v
	case "lr":
		c.Iregs[armLR] = v
	case "pc":
		c.Iregs[armPC] = v
	case "cpsr":
		c.CPSR = v
	default:
		for i := 0; i <= 10; i++ {
			if reg == fmt.Sprintf("r%d", i) {
				c.Iregs[i] = v
				return true
			}
		}
		return false
	}
	return true
}

func (c *contextARM) StackPointerName() string       { return "sp" }
func (c *contextARM) InstructionPointerName() string { return "pc" }
func (c *contextARM) GeneralPurposeRegisterNames() []string {
	return armRegisterNames
}
func (c *contextARM) FormatRegister(reg string) string {
	return formatRegisterHex(c.GetRegisterAlways(reg), 32)
}

func decodeContextARM(data []byte, flags uint32) (*Context, error) {
	var raw contextARM
	if err := readStructAt(data, littleEndian, 0, &raw); err != nil {
		return nil, &ContextError{Reason: err}
	}
	raw.ContextFlags = flags

	return &Context{Raw: &raw, Valid: AllRegistersValid()}, nil
}
