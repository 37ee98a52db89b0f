package cpu

import (
	"github.com/bdwalton/nescore/bits"
	"github.com/bdwalton/nescore/status"
)

// Every method below is dispatched purely by name from opcodeTable
// via reflection, so each one takes a Mode argument even when it
// never consults it, to keep a single uniform method signature.

func (c *CPU) operand() uint8 {
	return c.bus.Read(c.effAddr)
}

func (c *CPU) setZN(v uint8) {
	c.P.SetBit(FlagZero, v == 0)
	c.P.SetBit(FlagNegative, v&0x80 != 0)
}

func (c *CPU) addWithCarry(v uint8) {
	sum := uint16(c.A) + uint16(v) + uint16(c.P.GetBit(FlagCarry))
	result := uint8(sum)
	c.P.SetBit(FlagCarry, sum > 0xFF)
	c.P.SetBit(FlagOverflow, (c.A^result)&(v^result)&0x80 != 0)
	c.A = result
	c.setZN(c.A)
}

func (c *CPU) compare(reg, v uint8) {
	c.P.SetBit(FlagCarry, reg >= v)
	c.setZN(reg - v)
}

func (c *CPU) branch(flag status.Flag, wantSet bool) {
	if c.P.IsRaised(flag) != wantSet {
		return
	}
	c.branchExtra = 1
	if c.pageCrossed {
		c.branchExtra++
	}
	c.PC = c.effAddr
}

func (c *CPU) shiftRotate(mode Mode, d bits.Displacement) {
	if mode == Accumulator {
		out, carry := d.Apply(c.A)
		c.A = out
		c.P.SetBit(FlagCarry, carry)
		c.setZN(c.A)
		return
	}
	out, carry := d.Apply(c.operand())
	c.bus.Write(c.effAddr, out)
	c.P.SetBit(FlagCarry, carry)
	c.setZN(out)
}

// Arithmetic and logic

func (c *CPU) ADC(mode Mode) { c.addWithCarry(c.operand()) }
func (c *CPU) SBC(mode Mode) { c.addWithCarry(^c.operand()) }
func (c *CPU) AND(mode Mode) { c.A &= c.operand(); c.setZN(c.A) }
func (c *CPU) ORA(mode Mode) { c.A |= c.operand(); c.setZN(c.A) }
func (c *CPU) EOR(mode Mode) { c.A ^= c.operand(); c.setZN(c.A) }

func (c *CPU) ASL(mode Mode) { c.shiftRotate(mode, bits.Displacement{Op: bits.Shift, Dir: bits.Left}) }
func (c *CPU) LSR(mode Mode) { c.shiftRotate(mode, bits.Displacement{Op: bits.Shift, Dir: bits.Right}) }
func (c *CPU) ROL(mode Mode) {
	c.shiftRotate(mode, bits.Displacement{Op: bits.Rotation, Dir: bits.Left, CarryIn: c.P.IsRaised(FlagCarry)})
}
func (c *CPU) ROR(mode Mode) {
	c.shiftRotate(mode, bits.Displacement{Op: bits.Rotation, Dir: bits.Right, CarryIn: c.P.IsRaised(FlagCarry)})
}

func (c *CPU) BIT(mode Mode) {
	v := c.operand()
	c.P.SetBit(FlagZero, c.A&v == 0)
	c.P.SetBit(FlagOverflow, v&0x40 != 0)
	c.P.SetBit(FlagNegative, v&0x80 != 0)
}

// Increment/decrement

func (c *CPU) INC(mode Mode) { v := c.operand() + 1; c.bus.Write(c.effAddr, v); c.setZN(v) }
func (c *CPU) DEC(mode Mode) { v := c.operand() - 1; c.bus.Write(c.effAddr, v); c.setZN(v) }
func (c *CPU) INX(mode Mode) { c.X++; c.setZN(c.X) }
func (c *CPU) INY(mode Mode) { c.Y++; c.setZN(c.Y) }
func (c *CPU) DEX(mode Mode) { c.X--; c.setZN(c.X) }
func (c *CPU) DEY(mode Mode) { c.Y--; c.setZN(c.Y) }

// Comparisons

func (c *CPU) CMP(mode Mode) { c.compare(c.A, c.operand()) }
func (c *CPU) CPX(mode Mode) { c.compare(c.X, c.operand()) }
func (c *CPU) CPY(mode Mode) { c.compare(c.Y, c.operand()) }

// Loads and stores

func (c *CPU) LDA(mode Mode) { c.A = c.operand(); c.setZN(c.A) }
func (c *CPU) LDX(mode Mode) { c.X = c.operand(); c.setZN(c.X) }
func (c *CPU) LDY(mode Mode) { c.Y = c.operand(); c.setZN(c.Y) }
func (c *CPU) STA(mode Mode) { c.bus.Write(c.effAddr, c.A) }
func (c *CPU) STX(mode Mode) { c.bus.Write(c.effAddr, c.X) }
func (c *CPU) STY(mode Mode) { c.bus.Write(c.effAddr, c.Y) }

// Register transfers

func (c *CPU) TAX(mode Mode) { c.X = c.A; c.setZN(c.X) }
func (c *CPU) TAY(mode Mode) { c.Y = c.A; c.setZN(c.Y) }
func (c *CPU) TXA(mode Mode) { c.A = c.X; c.setZN(c.A) }
func (c *CPU) TYA(mode Mode) { c.A = c.Y; c.setZN(c.A) }
func (c *CPU) TSX(mode Mode) { c.X = c.SP; c.setZN(c.X) }
func (c *CPU) TXS(mode Mode) { c.SP = c.X }

// Stack

func (c *CPU) PHA(mode Mode) { c.push(c.A) }
func (c *CPU) PHP(mode Mode) { c.push(c.P.ForPush(FlagOne, FlagBreak, true)) }
func (c *CPU) PLA(mode Mode) { c.A = c.pull(); c.setZN(c.A) }
func (c *CPU) PLP(mode Mode) { c.P.SetFromPull(c.pull(), FlagOne, FlagBreak) }

// Control flow

func (c *CPU) JMP(mode Mode) { c.PC = c.effAddr }
func (c *CPU) JSR(mode Mode) { c.pushWord(c.PC + 1); c.PC = c.effAddr }
func (c *CPU) RTS(mode Mode) { c.PC = c.pullWord() + 1 }
func (c *CPU) RTI(mode Mode) {
	c.P.SetFromPull(c.pull(), FlagOne, FlagBreak)
	c.PC = c.pullWord()
}

// BRK halts instruction dispatch rather than vectoring through
// 0xFFFE; Step reports irq.BRK back to the caller so the bus can stop
// its run loop. See the BRK policy decision in DESIGN.md.
func (c *CPU) BRK(mode Mode) {}

func (c *CPU) BCC(mode Mode) { c.branch(FlagCarry, false) }
func (c *CPU) BCS(mode Mode) { c.branch(FlagCarry, true) }
func (c *CPU) BEQ(mode Mode) { c.branch(FlagZero, true) }
func (c *CPU) BNE(mode Mode) { c.branch(FlagZero, false) }
func (c *CPU) BMI(mode Mode) { c.branch(FlagNegative, true) }
func (c *CPU) BPL(mode Mode) { c.branch(FlagNegative, false) }
func (c *CPU) BVC(mode Mode) { c.branch(FlagOverflow, false) }
func (c *CPU) BVS(mode Mode) { c.branch(FlagOverflow, true) }

// Flag operations

func (c *CPU) CLC(mode Mode) { c.P.Low(FlagCarry) }
func (c *CPU) SEC(mode Mode) { c.P.Raise(FlagCarry) }
func (c *CPU) CLD(mode Mode) { c.P.Low(FlagDecimal) }
func (c *CPU) SED(mode Mode) { c.P.Raise(FlagDecimal) }
func (c *CPU) CLI(mode Mode) { c.P.Low(FlagInterruptDisable) }
func (c *CPU) SEI(mode Mode) { c.P.Raise(FlagInterruptDisable) }
func (c *CPU) CLV(mode Mode) { c.P.Low(FlagOverflow) }

func (c *CPU) NOP(mode Mode) {}

// Unofficial opcodes. LAX/SAX/DCP/ISB/SLO/SRE/RLA/RRA are combined
// read-modify-write instructions real cartridges (and test ROMs such
// as blargg's) are known to execute.

func (c *CPU) LAX(mode Mode) { c.A = c.operand(); c.X = c.A; c.setZN(c.A) }
func (c *CPU) SAX(mode Mode) { c.bus.Write(c.effAddr, c.A&c.X) }

func (c *CPU) DCP(mode Mode) {
	v := c.operand() - 1
	c.bus.Write(c.effAddr, v)
	c.compare(c.A, v)
}

func (c *CPU) ISB(mode Mode) {
	v := c.operand() + 1
	c.bus.Write(c.effAddr, v)
	c.addWithCarry(^v)
}

func (c *CPU) SLO(mode Mode) {
	out, carry := bits.Displacement{Op: bits.Shift, Dir: bits.Left}.Apply(c.operand())
	c.bus.Write(c.effAddr, out)
	c.P.SetBit(FlagCarry, carry)
	c.A |= out
	c.setZN(c.A)
}

func (c *CPU) SRE(mode Mode) {
	out, carry := bits.Displacement{Op: bits.Shift, Dir: bits.Right}.Apply(c.operand())
	c.bus.Write(c.effAddr, out)
	c.P.SetBit(FlagCarry, carry)
	c.A ^= out
	c.setZN(c.A)
}

func (c *CPU) RLA(mode Mode) {
	out, carry := bits.Displacement{Op: bits.Rotation, Dir: bits.Left, CarryIn: c.P.IsRaised(FlagCarry)}.Apply(c.operand())
	c.bus.Write(c.effAddr, out)
	c.P.SetBit(FlagCarry, carry)
	c.A &= out
	c.setZN(c.A)
}

func (c *CPU) RRA(mode Mode) {
	out, carry := bits.Displacement{Op: bits.Rotation, Dir: bits.Right, CarryIn: c.P.IsRaised(FlagCarry)}.Apply(c.operand())
	c.bus.Write(c.effAddr, out)
	// The ROR's own carry-out feeds the ADC half as its carry-in.
	c.P.SetBit(FlagCarry, carry)
	c.addWithCarry(out)
}
