package cpu

// Mode is one of the 6502's addressing modes. Implied and Accumulator
// are kept distinct even though both resolve to no address, because
// the opcode table needs to tell them apart when deciding whether an
// ASL/LSR/ROL/ROR targets the accumulator or memory.
type Mode uint8

const (
	Implied Mode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX
	IndirectY
)

var modeNames = map[Mode]string{
	Implied:     "IMPLIED",
	Accumulator: "ACCUMULATOR",
	Immediate:   "IMMEDIATE",
	ZeroPage:    "ZEROPAGE",
	ZeroPageX:   "ZEROPAGE_X",
	ZeroPageY:   "ZEROPAGE_Y",
	Relative:    "RELATIVE",
	Absolute:    "ABSOLUTE",
	AbsoluteX:   "ABSOLUTE_X",
	AbsoluteY:   "ABSOLUTE_Y",
	Indirect:    "INDIRECT",
	IndirectX:   "INDIRECT_X",
	IndirectY:   "INDIRECT_Y",
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return "UNKNOWN"
}

// pageCrossed reports whether a and b sit in different 256-byte pages.
func pageCrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// resolveAddress maps (mode, registers, bus) to an effective address
// and whether resolving it crossed a page boundary. It is called once
// per instruction, before dispatch, so the crossing signal it returns
// doesn't need to be recomputed by whichever mnemonic handler pays a
// cycle for it.
func (c *CPU) resolveAddress(mode Mode) (addr uint16, crossed bool) {
	return c.resolveAddressAt(c.PC, mode)
}

// resolveAddressAt is the same resolution, parameterized on the
// operand pointer, so Trace can preview an instruction without
// mutating CPU state.
func (c *CPU) resolveAddressAt(operandPC uint16, mode Mode) (addr uint16, crossed bool) {
	switch mode {
	case Implied, Accumulator:
		return 0, false
	case Immediate:
		return operandPC, false
	case ZeroPage:
		return uint16(c.bus.Read(operandPC)), false
	case ZeroPageX:
		return uint16(c.bus.Read(operandPC) + c.X), false
	case ZeroPageY:
		return uint16(c.bus.Read(operandPC) + c.Y), false
	case Relative:
		next := operandPC + 1
		addr = next + uint16(int8(c.bus.Read(operandPC)))
		return addr, pageCrossed(next, addr)
	case Absolute:
		return c.readWord(operandPC), false
	case AbsoluteX:
		base := c.readWord(operandPC)
		addr = base + uint16(c.X)
		return addr, pageCrossed(base, addr)
	case AbsoluteY:
		base := c.readWord(operandPC)
		addr = base + uint16(c.Y)
		return addr, pageCrossed(base, addr)
	case Indirect:
		ptr := c.readWord(operandPC)
		lo := c.bus.Read(ptr)
		var hi uint8
		// Hardware bug: if the pointer's low byte is 0xFF, the high
		// byte wraps within the same page instead of crossing into
		// the next one.
		if ptr&0x00FF == 0x00FF {
			hi = c.bus.Read(ptr & 0xFF00)
		} else {
			hi = c.bus.Read(ptr + 1)
		}
		return uint16(hi)<<8 | uint16(lo), false
	case IndirectX:
		zp := c.bus.Read(operandPC) + c.X
		return c.ptr16zp(zp), false
	case IndirectY:
		zp := c.bus.Read(operandPC)
		base := c.ptr16zp(zp)
		addr = base + uint16(c.Y)
		return addr, pageCrossed(base, addr)
	default:
		panic("cpu: invalid addressing mode")
	}
}

// ptr16zp reads a little-endian pointer out of the zero page, with
// the high-byte lookup wrapping within page zero rather than spilling
// into page one.
func (c *CPU) ptr16zp(p uint8) uint16 {
	lo := c.bus.Read(uint16(p))
	hi := c.bus.Read(uint16(p + 1))
	return uint16(hi)<<8 | uint16(lo)
}
