package mappers

import "github.com/bdwalton/nescore/cartridge"

// Dummy is a flat, fully read/write mapper used by the ppu tests,
// which need addressable memory without a real ROM image behind it.
// Grounded on the teacher's mappers.Dummy test double.
type Dummy struct {
	Prg       [0x8000]uint8
	Chr       [0x2000]uint8
	Mirroring cartridge.Mirroring
}

func NewDummy() *Dummy {
	return &Dummy{}
}

func (d *Dummy) ID() uint8    { return 0xFF }
func (d *Dummy) Name() string { return "dummy" }

func (d *Dummy) PrgRead(addr uint16) uint8      { return d.Prg[addr-0x8000] }
func (d *Dummy) PrgWrite(addr uint16, val uint8) { d.Prg[addr-0x8000] = val }
func (d *Dummy) ChrRead(addr uint16) uint8       { return d.Chr[addr] }
func (d *Dummy) ChrWrite(addr uint16, val uint8) { d.Chr[addr] = val }

func (d *Dummy) MirroringMode() cartridge.Mirroring { return d.Mirroring }
