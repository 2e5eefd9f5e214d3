// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "fmt"

// mips context flag bits.
const (
	// contextFlagMIPS is distinct from contextFlagARM (both are 0x40000000
	// in upstream Breakpad, which never needs to disambiguate them since
	// each target OS only ever produces one or the other): this package's
	// unified dispatch needs a value of its own, so MIPS contexts are
	// identified by size whenever the raw flag word is ambiguous.
	contextFlagMIPS uint32 = 0x00040000
	contextSizeMIPS        = 560
)

var mipsRegisterNames = buildMIPSRegisterNames()

func buildMIPSRegisterNames() []string {
	names := make([]string, 0, 36)
	for i := 0; i <= 31; i++ {
		names = append(names, fmt.Sprintf("r%d", i))
	}
	return append(names, "lo", "hi", "epc", "badvaddr")
}

// contextMIPS mirrors MDRawContextMIPS: 32 general-purpose registers, the
// multiply-result pair, exception program counter and bad virtual address.
type contextMIPS struct {
	ContextFlags uint32
	FpcsR        uint32
	IRegs        [32]uint64
	LO, HI       uint64
	EPC          uint64
	BadVAddr     uint64
	Status       uint32
	Cause        uint32
	FpRegs       [32]uint64
}

func (c *contextMIPS) CPUType() CPUType { return CPUMIPS }

func (c *contextMIPS) GetRegisterAlways(reg string) uint64 {
	switch reg {
	case "lo":
		return c.LO
	case "hi":
		return c.HI
	case "epc":
		return c.EPC
	case "badvaddr":
		return c.BadVAddr
	}
	for i := 0; i <= 31; i++ {
		if reg == fmt.Sprintf("r%d", i) {
			return c.IRegs[i]
		}
	}
	panic("minidump: invalid mips register " + reg)
}

func (c *contextMIPS) SetRegister(reg string, val uint64) bool {
	switch reg {
	case "lo":
		c.LO = val
	case "hi":
		c.HI = val
	case "epc":
		c.EPC = val
	case "badvaddr":
		c.BadVAddr = val
	default:
		for i := 0; i <= 31; i++ {
			if reg == fmt.Sprintf("r%d", i) {
				c.IRegs[i] = val
				return true
			}
		}
		return false
	}
	return true
}

func (c *contextMIPS) StackPointerName() string       { return "r29" }
func (c *contextMIPS) InstructionPointerName() string { return "epc" }
func (c *contextMIPS) GeneralPurposeRegisterNames() []string {
	return mipsRegisterNames
}
func (c *contextMIPS) FormatRegister(reg string) string {
	return formatRegisterHex(c.GetRegisterAlways(reg), 64)
}

func decodeContextMIPS(data []byte, flags uint32) (*Context, error) {
	var raw contextMIPS
	if err := readStructAt(data, littleEndian, 0, &raw); err != nil {
		return nil, &ContextError{Reason: err}
	}
	raw.ContextFlags = flags

	return &Context{Raw: &raw, Valid: AllRegistersValid()}, nil
}
