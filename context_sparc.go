// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "fmt"

// sparc context flag bits.
const (
	contextFlagSPARC uint32 = 0x10000000
	contextSizeSPARC        = 308
)

var sparcRegisterNames = buildSPARCRegisterNames()

func buildSPARCRegisterNames() []string {
	names := make([]string, 0, 34)
	for _, group := range []string{"g", "o", "l", "i"} {
		for i := 0; i <= 7; i++ {
			names = append(names, fmt.Sprintf("%s%d", group, i))
		}
	}
	return append(names, "pc", "sp")
}

// contextSPARC mirrors MDRawContextSPARC: four banks of eight registers
// (global, out, local, in), the program counters, and condition/y state.
type contextSPARC struct {
	ContextFlags uint32
	GRegs        [32]uint64
	CCR          uint64
	PC, NPC      uint64
	Y            uint64
	ASI, FPRS    uint64
}

func (c *contextSPARC) CPUType() CPUType { return CPUSPARC }

func sparcRegisterIndex(reg string) (int, bool) {
	for i, name := range sparcRegisterNames[:32] {
		if name == reg {
			return i, true
		}
	}
	return 0, false
}

func (c *contextSPARC) GetRegisterAlways(reg string) uint64 {
	switch reg {
	case "pc":
		return c.PC
	case "sp":
		return c.GRegs[14] // %o6, the stack pointer bank slot
	}
	if i, ok := sparcRegisterIndex(reg); ok {
		return c.GRegs[i]
	}
	panic("minidump: invalid sparc register " + reg)
}

func (c *contextSPARC) SetRegister(reg string, val uint64) bool {
	switch reg {
	case "pc":
		c.PC = val
		return true
	case "sp":
		c.GRegs[14] = val
		return true
	}
	if i, ok := sparcRegisterIndex(reg); ok {
		c.GRegs[i] = val
		return true
	}
	return false
}

func (c *contextSPARC) StackPointerName() string       { return "sp" }
func (c *contextSPARC) InstructionPointerName() string { return "pc" }
func (c *contextSPARC) GeneralPurposeRegisterNames() []string {
	return sparcRegisterNames
}
func (c *contextSPARC) FormatRegister(reg string) string {
	return formatRegisterHex(c.GetRegisterAlways(reg), 64)
}

func decodeContextSPARC(data []byte, flags uint32) (*Context, error) {
	var raw contextSPARC
	if err := readStructAt(data, littleEndian, 0, &raw); err != nil {
		return nil, &ContextError{Reason: err}
	}
	raw.ContextFlags = flags

	return &Context{Raw: &raw, Valid: AllRegistersValid()}, nil
}
