// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

// x86 context flag bits (CONTEXT_i386 | CONTEXT_CONTROL | ...).
const (
	contextFlagX86 uint32 = 0x00010000
	contextSizeX86        = 716
)

var x86RegisterNames = []string{
	"eip", "esp", "ebp", "ebx", "esi", "edi", "eax", "ecx", "edx", "efl",
}

// contextX86 mirrors the Microsoft CONTEXT_X86 / Breakpad MDRawContextX86
// layout. On-disk order: the flag word, the debug registers, the FPU save
// area, the segment selectors, the integer registers, the control
// registers, and the extended register area.
type contextX86 struct {
	ContextFlags uint32

	// Debug registers, present only when CONTEXT_DEBUG_REGISTERS is set.
	Dr0, Dr1, Dr2, Dr3, Dr6, Dr7 uint32

	// Floating point save area (CONTEXT_FLOATING_POINT), opaque to this
	// decoder: no register accessor needs it, so it is kept as raw bytes
	// rather than broken into the x87 tag/status/register sub-fields.
	FloatSave [112]byte

	// Segment registers (CONTEXT_SEGMENTS).
	SegGs, SegFs, SegEs, SegDs uint32

	// Integer registers (CONTEXT_INTEGER).
	Edi, Esi, Ebx, Edx, Ecx, Eax uint32

	// Control registers (CONTEXT_CONTROL).
	Ebp, Eip uint32
	SegCs    uint32
	EFlags   uint32
	Esp      uint32
	SegSs    uint32

	// Extended registers (CONTEXT_EXTENDED_REGISTERS), e.g. SSE state.
	ExtendedRegisters [512]byte
}

func (c *contextX86) CPUType() CPUType { return CPUX86 }

func (c *contextX86) GetRegisterAlways(reg string) uint64 {
	switch reg {
	case "eip":
		return uint64(c.Eip)
	case "esp":
		return uint64(c.Esp)
	case "ebp":
		return uint64(c.Ebp)
	case "ebx":
		return uint64(c.Ebx)
	case "esi":
		return uint64(c.Esi)
	case "edi":
		return uint64(c.Edi)
	case "eax":
		return uint64(c.Eax)
	case "ecx":
		return uint64(c.Ecx)
	case "edx":
		return uint64(c.Edx)
	case "efl":
		return uint64(c.EFlags)
	default:
		panic("minidump: invalid x86 register " + reg)
	}
}

func (c *contextX86) SetRegister(reg string, val uint64) bool {
	v := uint32(val)
	switch reg {
	case "eip":
		c.Eip = v
	case "esp":
		c.Esp = v
	case "ebp":
		c.Ebp = v
	case "ebx":
		c.Ebx = v
	case "esi":
		c.Esi = v
	case "edi":
		c.Edi = v
	case "eax":
		c.Eax = v
	case "ecx":
		c.Ecx = v
	case "edx":
		c.Edx = v
	case "efl":
		c.EFlags = v
	default:
		return false
	}
	return true
}

func (c *contextX86) StackPointerName() string       { return "esp" }
func (c *contextX86) InstructionPointerName() string { return "eip" }
func (c *contextX86) GeneralPurposeRegisterNames() []string {
	return x86RegisterNames
}
func (c *contextX86) FormatRegister(reg string) string {
	return formatRegisterHex(c.GetRegisterAlways(reg), 32)
}

// decodeContextX86 decodes a CONTEXT_X86 record. The result is marked
// AllRegistersValid whatever CONTEXT_* group bits the flag word carries, so
// an exception's embedded context that only captured CONTEXT_CONTROL still
// reports the registers outside that group as valid.
func decodeContextX86(data []byte, flags uint32) (*Context, error) {
	var raw contextX86
	if err := readStructAt(data, littleEndian, 0, &raw); err != nil {
		return nil, &ContextError{Reason: err}
	}
	raw.ContextFlags = flags

	return &Context{Raw: &raw, Valid: AllRegistersValid()}, nil
}
