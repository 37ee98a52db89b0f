// Package cpu implements the MOS 6502 core with the 2A03's known
// quirks (no BCD arithmetic at runtime, the indirect-JMP page-wrap
// bug preserved, the documented set of unofficial opcodes). It talks
// to memory only through the Bus interface, the same separation the
// teacher's mos6502 package draws between the CPU and cpuMemory.
package cpu

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/bdwalton/nescore/irq"
	"github.com/bdwalton/nescore/status"
)

// Processor status bits, in the 6502's canonical NV1BDIZC order.
const (
	FlagCarry            status.Flag = 1 << 0
	FlagZero             status.Flag = 1 << 1
	FlagInterruptDisable status.Flag = 1 << 2
	FlagDecimal          status.Flag = 1 << 3
	FlagBreak            status.Flag = 1 << 4
	FlagOne              status.Flag = 1 << 5
	FlagOverflow         status.Flag = 1 << 6
	FlagNegative         status.Flag = 1 << 7
)

const (
	vectorNMI   = 0xFFFA
	vectorReset = 0xFFFC
	stackPage   = 0x0100
)

// ErrUnknownOpcode is wrapped into the error Step returns when it
// fetches a byte with no entry in opcodeTable.
var ErrUnknownOpcode = errors.New("cpu: unknown opcode")

// Bus is everything the CPU needs from the rest of the machine: byte
// addressing, and a way to advance the PPU/APU side of the system by
// however many CPU cycles an instruction just spent.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
	Tick(cpuCycles int)
}

// CPU is the register file and execution engine. It carries no cycle
// counter of its own; every Step reports its cost to the bus instead,
// the same accounting split the teacher's console.Bus/mos6502.CPU
// pair uses.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       status.Register

	bus  Bus
	cell *irq.Cell

	// Scratch set once per Step by resolveAddress and read by
	// whichever mnemonic handler dispatch lands on, so addressing
	// is computed exactly once per instruction.
	effAddr     uint16
	pageCrossed bool
	branchExtra uint8
}

// New builds a CPU wired to bus and the shared interrupt cell, and
// resets it (loading PC from the reset vector).
func New(bus Bus, cell *irq.Cell) *CPU {
	c := &CPU{bus: bus, cell: cell}
	c.Reset()
	return c
}

// Reset puts the CPU in its power-on-ish state: stack pointer at
// 0xFD, interrupts disabled, PC loaded from the reset vector.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.P = status.New(0x24)
	c.PC = c.readWord(vectorReset)
}

func (c *CPU) readWord(addr uint16) uint16 {
	lo := uint16(c.bus.Read(addr))
	hi := uint16(c.bus.Read(addr + 1))
	return hi<<8 | lo
}

func (c *CPU) push(v uint8) {
	c.bus.Write(stackPage|uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pull() uint8 {
	c.SP++
	return c.bus.Read(stackPage | uint16(c.SP))
}

func (c *CPU) pushWord(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v))
}

func (c *CPU) pullWord() uint16 {
	lo := uint16(c.pull())
	hi := uint16(c.pull())
	return hi<<8 | lo
}

// Step executes exactly one instruction, or services a pending NMI
// and then executes one instruction. It returns the interrupt that
// was handled this step (None if neither BRK nor a pending NMI fired)
// and an error if the byte at PC has no opcode-table entry.
func (c *CPU) Step() (irq.Signal, error) {
	serviced := irq.None
	if c.cell.Peek() == irq.NMI {
		c.cell.Take()
		c.serviceNMI()
		serviced = irq.NMI
	}

	op, err := c.fetch()
	if err != nil {
		return irq.None, err
	}
	c.PC++

	addr, crossed := c.resolveAddress(op.mode)
	c.effAddr, c.pageCrossed = addr, crossed
	c.branchExtra = 0

	startPC := c.PC
	reflect.ValueOf(c).MethodByName(op.name).Call([]reflect.Value{reflect.ValueOf(op.mode)})
	if c.PC == startPC {
		c.PC += uint16(op.bytes) - 1
	}

	cycles := int(op.baseCycles) + int(c.branchExtra)
	if op.pageCrossExtra && c.pageCrossed {
		cycles++
	}
	c.bus.Tick(cycles)

	if op.name == "BRK" {
		return irq.BRK, nil
	}
	return serviced, nil
}

func (c *CPU) fetch() (opcode, error) {
	b := c.bus.Read(c.PC)
	op, ok := opcodeTable[b]
	if !ok {
		return opcode{}, fmt.Errorf("cpu: pc=%#04x byte=%#02x: %w", c.PC, b, ErrUnknownOpcode)
	}
	return op, nil
}

// serviceNMI pushes PC and P (with Break forced low, per the NMI
// push semantics), raises InterruptDisable, spends the two
// PPU-driving cycles the hardware's NMI-detect logic costs before the
// CPU itself starts fetching the handler, and vectors PC. Two CPU
// cycles drive the PPU six dots, per the 3-dots-per-cycle ratio.
func (c *CPU) serviceNMI() {
	c.pushWord(c.PC)
	c.push(c.P.ForPush(FlagOne, FlagBreak, false))
	c.P.Raise(FlagInterruptDisable)
	c.bus.Tick(2)
	c.PC = c.readWord(vectorNMI)
}

// TraceEntry is a snapshot of the instruction about to execute and
// the register state it will execute against, suitable for a
// disassembly-style debug log.
type TraceEntry struct {
	PC            uint16
	Opcode        uint8
	Mnemonic      string
	Mode          Mode
	Operands      []uint8
	EffectiveAddr uint16
	A, X, Y, SP   uint8
	P             uint8
}

// Trace previews the instruction at PC without mutating any CPU
// state, for the bus's debug REPL.
func (c *CPU) Trace() TraceEntry {
	b := c.bus.Read(c.PC)
	op, ok := opcodeTable[b]
	name, mode, nb := "???", Mode(Implied), uint8(1)
	if ok {
		name, mode, nb = op.name, op.mode, op.bytes
	}

	operands := make([]uint8, 0, nb-1)
	for i := uint8(1); i < nb; i++ {
		operands = append(operands, c.bus.Read(c.PC+uint16(i)))
	}
	addr, _ := c.resolveAddressAt(c.PC+1, mode)

	return TraceEntry{
		PC:            c.PC,
		Opcode:        b,
		Mnemonic:      name,
		Mode:          mode,
		Operands:      operands,
		EffectiveAddr: addr,
		A:             c.A,
		X:             c.X,
		Y:             c.Y,
		SP:            c.SP,
		P:             c.P.Get(),
	}
}

var statusFlagLetters = []struct {
	flag   status.Flag
	letter byte
}{
	{FlagNegative, 'N'},
	{FlagOverflow, 'V'},
	{FlagOne, '-'},
	{FlagBreak, 'B'},
	{FlagDecimal, 'D'},
	{FlagInterruptDisable, 'I'},
	{FlagZero, 'Z'},
	{FlagCarry, 'C'},
}

func statusString(p uint8) string {
	var sb strings.Builder
	for _, f := range statusFlagLetters {
		if p&uint8(f.flag) != 0 {
			sb.WriteByte(f.letter)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// String renders a TraceEntry as a single disassembly-style line, the
// format the bus's debug BIOS prints for every step.
func (t TraceEntry) String() string {
	var operands strings.Builder
	for _, o := range t.Operands {
		fmt.Fprintf(&operands, " %02x", o)
	}
	return fmt.Sprintf("PC=%04x  %02x %-8s %s%s  A=%02x X=%02x Y=%02x SP=%02x P=%s",
		t.PC, t.Opcode, t.Mnemonic, t.Mode, operands.String(),
		t.A, t.X, t.Y, t.SP, statusString(t.P))
}
