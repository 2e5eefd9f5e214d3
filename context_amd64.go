// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

// amd64 context flag bits (CONTEXT_AMD64).
const (
	contextFlagAMD64 uint32 = 0x00100000
	contextSizeAMD64        = 1232
)

var amd64RegisterNames = []string{
	"rax", "rdx", "rcx", "rbx", "rsi", "rdi", "rbp", "rsp",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15", "rip",
}

// contextAMD64 mirrors Microsoft's CONTEXT_AMD64 layout as Breakpad
// reproduces it: a 48-byte P1Home..P6Home header, ContextFlags/MxCsr,
// segment selectors and EFlags, the debug registers, the integer
// registers, the 512-byte legacy FXSAVE area, 416 bytes of vector/XSAVE
// state left opaque, and a trailing block of last-branch/last-exception
// record pointers.
type contextAMD64 struct {
	P1Home, P2Home, P3Home uint64
	P4Home, P5Home, P6Home uint64

	ContextFlags uint32
	MxCsr        uint32

	SegCs, SegDs, SegEs, SegFs, SegGs, SegSs uint16
	EFlags                                   uint32

	Dr0, Dr1, Dr2, Dr3, Dr6, Dr7 uint64

	Rax, Rcx, Rdx, Rbx uint64
	Rsp, Rbp           uint64
	Rsi, Rdi           uint64
	R8, R9, R10, R11   uint64
	R12, R13, R14, R15 uint64

	Rip uint64

	FltSave [512]byte
	Vector  [416]byte

	VectorControl uint64
	DebugControl  uint64

	LastBranchToRip      uint64
	LastBranchFromRip    uint64
	LastExceptionToRip   uint64
	LastExceptionFromRip uint64
}

func (c *contextAMD64) CPUType() CPUType { return CPUAMD64 }

func (c *contextAMD64) GetRegisterAlways(reg string) uint64 {
	switch reg {
	case "rax":
		return c.Rax
	case "rdx":
		return c.Rdx
	case "rcx":
		return c.Rcx
	case "rbx":
		return c.Rbx
	case "rsi":
		return c.Rsi
	case "rdi":
		return c.Rdi
	case "rbp":
		return c.Rbp
	case "rsp":
		return c.Rsp
	case "r8":
		return c.R8
	case "r9":
		return c.R9
	case "r10":
		return c.R10
	case "r11":
		return c.R11
	case "r12":
		return c.R12
	case "r13":
		return c.R13
	case "r14":
		return c.R14
	case "r15":
		return c.R15
	case "rip":
		return c.Rip
	default:
		panic("minidump: invalid amd64 register " + reg)
	}
}

func (c *contextAMD64) SetRegister(reg string, val uint64) bool {
	switch reg {
	case "rax":
		c.Rax = val
	case "rdx":
		c.Rdx = val
	case "rcx":
		c.Rcx = val
	case "rbx":
		c.Rbx = val
	case "rsi":
		c.Rsi = val
	case "rdi":
		c.Rdi = val
	case "rbp":
		c.Rbp = val
	case "rsp":
		c.Rsp = val
	case "r8":
		c.R8 = val
	case "r9":
		c.R9 = val
	case "r10":
		c.R10 = val
	case "r11":
		c.R11 = val
	case "r12":
		c.R12 = val
	case "r13":
		c.R13 = val
	case "r14":
		c.R14 = val
	case "r15":
		c.R15 = val
	case "rip":
		c.Rip = val
	default:
		return false
	}
	return true
}

func (c *contextAMD64) StackPointerName() string       { return "rsp" }
func (c *contextAMD64) InstructionPointerName() string { return "rip" }
func (c *contextAMD64) GeneralPurposeRegisterNames() []string {
	return amd64RegisterNames
}
func (c *contextAMD64) FormatRegister(reg string) string {
	return formatRegisterHex(c.GetRegisterAlways(reg), 64)
}

func decodeContextAMD64(data []byte, flags uint32) (*Context, error) {
	var raw contextAMD64
	if err := readStructAt(data, littleEndian, 0, &raw); err != nil {
		return nil, &ContextError{Reason: err}
	}
	raw.ContextFlags = flags

	return &Context{Raw: &raw, Valid: AllRegistersValid()}, nil
}
