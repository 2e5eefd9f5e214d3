// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "fmt"

// CPUType identifies the architecture a CONTEXT record was captured on. The
// numeric values are this package's own tags: they are not the flag bits
// stored in a context's flag word (those are the contextFlag* constants),
// and SystemInfo's processor architecture codes are translated to them
// through cpuArchitectureToType.
type CPUType uint32

// Known CPU types. ARM64Old is Breakpad's pre-standardization ARM64 layout;
// it is kept distinct from ARM64 because the two are not bit-compatible.
const (
	CPUX86      CPUType = 0x00000000
	CPUPPC      CPUType = 0x00000001
	CPUPPC64    CPUType = 0x00000002
	CPUAMD64    CPUType = 0x00000003
	CPUSPARC    CPUType = 0x00000004
	CPUARM      CPUType = 0x00000005
	CPUARM64Old CPUType = 0x00000006
	CPUMIPS     CPUType = 0x00000007
	CPUARM64    CPUType = 0x00000008

	// cpuUnknown is never a real MDCPUArchitecture value; it is this
	// package's "no hint available" sentinel, distinct from CPUX86's zero
	// value so an absent SystemInfo stream doesn't silently bias dispatch
	// toward x86.
	cpuUnknown CPUType = 0xffffffff
)

var cpuTypeNames = map[CPUType]string{
	CPUX86:      "x86",
	CPUPPC:      "ppc",
	CPUPPC64:    "ppc64",
	CPUAMD64:    "amd64",
	CPUSPARC:    "sparc",
	CPUARM:      "arm",
	CPUARM64Old: "arm64-old",
	CPUMIPS:     "mips",
	CPUARM64:    "arm64",
}

// String returns the architecture's conventional short name.
func (t CPUType) String() string {
	if name, ok := cpuTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("CPUType(0x%x)", uint32(t))
}

// RawContext is the architecture-specific register file of a CONTEXT
// record. Every concrete implementation (contextX86, contextAMD64, ...)
// satisfies this the same way the teacher's per-stream structs implement a
// common directory-entry shape: one type per on-disk layout, one interface
// for callers that don't care which.
type RawContext interface {
	// CPUType identifies which architecture this context was captured on.
	CPUType() CPUType

	// GetRegisterAlways returns the value of the named register, ignoring
	// validity. It panics if reg does not name a register of this
	// architecture; callers that don't control reg should consult
	// GeneralPurposeRegisterNames first.
	GetRegisterAlways(reg string) uint64

	// SetRegister sets the named register and reports whether reg was
	// recognized.
	SetRegister(reg string, val uint64) bool

	// StackPointerName returns the register name to pass to
	// GetRegisterAlways/SetRegister to reach the stack pointer.
	StackPointerName() string

	// InstructionPointerName returns the register name for the program
	// counter.
	InstructionPointerName() string

	// GeneralPurposeRegisterNames lists every register this architecture
	// exposes, in the canonical order CanonicalRegisterName indexes.
	GeneralPurposeRegisterNames() []string

	// FormatRegister renders the named register as a zero-padded hex
	// literal sized to the architecture's native register width.
	FormatRegister(reg string) string
}

// ContextValidity describes which of a RawContext's registers carry
// meaningful values. A thread snapshot always has every register valid; an
// exception's embedded context may have only a subset populated depending
// on how the exception was raised.
type ContextValidity struct {
	// All is true when every register is valid, in which case Registers
	// is ignored.
	All bool

	// Registers is the set of valid register names when All is false.
	Registers map[string]struct{}
}

// AllRegistersValid returns a ContextValidity that validates every
// register.
func AllRegistersValid() ContextValidity {
	return ContextValidity{All: true}
}

// isValid reports whether reg is marked valid.
func (v ContextValidity) isValid(reg string) bool {
	if v.All {
		return true
	}
	_, ok := v.Registers[reg]
	return ok
}

// Context pairs a decoded RawContext with which of its registers actually
// carry data captured from the process, the same pairing
// MinidumpContext/MinidumpContextValidity make in the system this was
// ported from.
type Context struct {
	Raw   RawContext
	Valid ContextValidity
}

// GetRegister returns the named register's value if Valid marks it
// present.
func (c Context) GetRegister(reg string) (uint64, bool) {
	if !c.Valid.isValid(reg) {
		return 0, false
	}
	return c.Raw.GetRegisterAlways(reg), true
}

// InstructionPointer returns the program counter, unconditionally: every
// context this parser decodes always has its instruction pointer valid.
func (c Context) InstructionPointer() uint64 {
	return c.Raw.GetRegisterAlways(c.Raw.InstructionPointerName())
}

// StackPointer returns the stack pointer, unconditionally.
func (c Context) StackPointer() uint64 {
	return c.Raw.GetRegisterAlways(c.Raw.StackPointerName())
}

// CanonicalRegisterName returns reg unchanged if it names one of the raw
// context's registers, and "" otherwise. It exists so callers that build
// register names dynamically (e.g. from a user-supplied expression) can
// validate them against the architecture without risking a panic from
// GetRegisterAlways.
func CanonicalRegisterName(raw RawContext, reg string) string {
	for _, name := range raw.GeneralPurposeRegisterNames() {
		if name == reg {
			return name
		}
	}
	return ""
}

// formatRegisterHex renders val as zero-padded hex sized to widthBits.
func formatRegisterHex(val uint64, widthBits int) string {
	return fmt.Sprintf("0x%0*x", widthBits/4, val)
}

// contextCPUMask selects the CPU-family bits of a context flag word; the
// low byte names which register groups the record carries.
const contextCPUMask uint32 = 0xffffff00

// decodeContext dispatches context payload bytes to the matching
// per-architecture decoder. Breakpad/Microsoft contexts don't carry a
// single self-describing tag: older 32-bit contexts identify themselves by
// their first flag word, but AMD64, PPC64 and the pre-standardization
// ARM64 layout have no reliable flag word at offset 0 at all (AMD64's own
// ContextFlags sits at byte offset 48, behind P1Home..P6Home, so reading
// offset 0 for those three means reading unrelated register bytes). Those
// three are resolved first, by exact payload size or by a SystemInfo CPU
// hint; everything else falls through to the flag word, the same order
// every downstream minidump reader (including the one this package was
// ported from) resolves the union in.
func decodeContext(data []byte, cpuHint CPUType) (*Context, error) {
	if len(data) < 4 {
		return nil, &ContextError{Reason: ErrOutOfBounds}
	}

	switch {
	case len(data) == contextSizeAMD64 || cpuHint == CPUAMD64:
		return decodeContextAMD64(data, contextFlagAMD64)
	case len(data) == contextSizePPC64 || cpuHint == CPUPPC64:
		return decodeContextPPC64(data, contextFlagPPC64)
	case len(data) == contextSizeARM64Old || cpuHint == CPUARM64Old:
		return decodeContextARM64Old(data, contextFlagARM64)
	}

	flags := littleEndian.Uint32(data)
	cpuFlags := flags & contextCPUMask
	cpu := cpuHint

	switch {
	case cpuFlags == contextFlagX86 || cpu == CPUX86:
		return decodeContextX86(data, flags)
	case cpuFlags == contextFlagARM || cpu == CPUARM:
		return decodeContextARM(data, flags)
	case cpuFlags == contextFlagARM64 || cpu == CPUARM64:
		return decodeContextARM64(data, flags)
	case cpuFlags == contextFlagPPC || cpu == CPUPPC:
		return decodeContextPPC(data, flags)
	case cpuFlags == contextFlagSPARC || cpu == CPUSPARC:
		return decodeContextSPARC(data, flags)
	case cpuFlags == contextFlagMIPS || cpu == CPUMIPS:
		return decodeContextMIPS(data, flags)
	default:
		return decodeContextBySize(data)
	}
}

// decodeContextBySize is the fallback path for contexts whose flag word
// didn't resolve to a known architecture (some producers leave it zeroed).
// Each on-disk CONTEXT layout has a distinct fixed size, so an exact length
// match is a reliable tiebreaker.
func decodeContextBySize(data []byte) (*Context, error) {
	switch len(data) {
	case contextSizeX86:
		return decodeContextX86(data, contextFlagX86)
	case contextSizeAMD64:
		return decodeContextAMD64(data, contextFlagAMD64)
	case contextSizeARM:
		return decodeContextARM(data, contextFlagARM)
	case contextSizeARM64:
		return decodeContextARM64(data, contextFlagARM64)
	case contextSizeARM64Old:
		return decodeContextARM64Old(data, contextFlagARM64)
	case contextSizePPC:
		return decodeContextPPC(data, contextFlagPPC)
	case contextSizePPC64:
		return decodeContextPPC64(data, contextFlagPPC64)
	case contextSizeSPARC:
		return decodeContextSPARC(data, contextFlagSPARC)
	case contextSizeMIPS:
		return decodeContextMIPS(data, contextFlagMIPS)
	default:
		return nil, &ContextError{Reason: ErrUnknownCPUContext}
	}
}
