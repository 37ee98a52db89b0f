// Package ppu implements the NES Picture Processing Unit's register
// contracts and scanline/dot timing: enough to drive frame generation
// and the vblank NMI line. Sprite evaluation and scrolling are out of
// scope; see Frame and RenderFrame.
package ppu

import (
	"errors"
	"fmt"

	"github.com/bdwalton/nescore/cartridge"
	"github.com/bdwalton/nescore/irq"
	"github.com/bdwalton/nescore/mappers"
)

// Register addresses, as seen after the bus has already folded the
// 0x2000-0x3FFF mirror window down to 0x2000-0x2007.
const (
	RegCTRL    = 0x2000
	RegMASK    = 0x2001
	RegSTATUS  = 0x2002
	RegOAMADDR = 0x2003
	RegOAMDATA = 0x2004
	RegSCROLL  = 0x2005
	RegADDR    = 0x2006
	RegDATA    = 0x2007
)

const (
	ctrlVRAMIncrement     = 1 << 2
	ctrlSpritePatternAddr = 1 << 3
	ctrlBGPatternAddr     = 1 << 4
	ctrlGenerateNMI       = 1 << 7
)

const (
	statusSprite0Hit = 1 << 6
	statusVBlank     = 1 << 7
)

const (
	vramSize = 2048
	oamSize  = 256
)

var (
	ErrWriteOnlyRegister = errors.New("ppu: register is write-only")
	ErrReadOnlyRegister  = errors.New("ppu: register is read-only")
)

// PPU is the register/timing state machine plus enough memory (VRAM,
// OAM, palette) to answer DATA reads/writes and render background
// tiles. It reaches CHR ROM and learns its mirroring mode through a
// mappers.Mapper, the same separation the bus draws between CPU RAM
// and cartridge PRG.
type PPU struct {
	ctrl, mask, status, oamAddr uint8
	oam                         [oamSize]uint8
	vram                        [vramSize]uint8
	palette                     [paletteSize]uint8

	addr       addrReg
	scroll     scrollReg
	dataBuffer uint8

	scanline, dot int

	mapper    mappers.Mapper
	mirroring cartridge.Mirroring
	cell      *irq.Cell
}

// New builds a PPU wired to mapper (for CHR access and mirroring) and
// the interrupt cell it shares with the CPU.
func New(mapper mappers.Mapper, cell *irq.Cell) *PPU {
	return &PPU{
		mapper:    mapper,
		mirroring: mapper.MirroringMode(),
		cell:      cell,
	}
}

// ReadRegister dispatches a CPU-side read of one of the eight
// PPU-visible register addresses.
func (p *PPU) ReadRegister(addr uint16) (uint8, error) {
	switch addr {
	case RegSTATUS:
		return p.readStatus(), nil
	case RegOAMDATA:
		return p.oam[p.oamAddr], nil
	case RegDATA:
		return p.readData(), nil
	case RegCTRL, RegMASK, RegOAMADDR, RegSCROLL, RegADDR:
		return 0, fmt.Errorf("ppu: read %#04x: %w", addr, ErrWriteOnlyRegister)
	default:
		return 0, fmt.Errorf("ppu: unknown register %#04x", addr)
	}
}

// WriteRegister dispatches a CPU-side write.
func (p *PPU) WriteRegister(addr uint16, v uint8) error {
	switch addr {
	case RegCTRL:
		p.writeCtrl(v)
	case RegMASK:
		p.mask = v
	case RegOAMADDR:
		p.oamAddr = v
	case RegOAMDATA:
		p.oam[p.oamAddr] = v
		p.oamAddr++
	case RegSCROLL:
		p.scroll.write(v)
	case RegADDR:
		p.addr.write(v)
	case RegDATA:
		p.writeData(v)
	case RegSTATUS:
		return fmt.Errorf("ppu: write %#04x: %w", addr, ErrReadOnlyRegister)
	default:
		return fmt.Errorf("ppu: unknown register %#04x", addr)
	}
	return nil
}

func (p *PPU) writeCtrl(v uint8) {
	wasOn := p.ctrl&ctrlGenerateNMI != 0
	p.ctrl = v
	nowOn := p.ctrl&ctrlGenerateNMI != 0
	if !wasOn && nowOn && p.status&statusVBlank != 0 {
		p.cell.Raise(irq.NMI)
	}
}

func (p *PPU) readStatus() uint8 {
	v := p.status
	p.status &^= statusVBlank
	p.addr.reset()
	p.scroll.reset()
	return v
}

func (p *PPU) readData() uint8 {
	addr := p.addr.get()
	var v uint8
	if addr < 0x3F00 {
		v = p.dataBuffer
		p.dataBuffer = p.readMem(addr)
	} else {
		v = p.readMem(addr)
	}
	p.addr.inc(p.vramStride())
	return v
}

func (p *PPU) writeData(v uint8) {
	p.writeMem(p.addr.get(), v)
	p.addr.inc(p.vramStride())
}

func (p *PPU) vramStride() uint16 {
	if p.ctrl&ctrlVRAMIncrement != 0 {
		return 32
	}
	return 1
}

// readMem/writeMem cover the PPU's own 0x0000-0x3FFF address space:
// pattern tables via the mapper, nametable VRAM via mirroring, and
// palette RAM.
func (p *PPU) readMem(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.mapper.ChrRead(addr)
	case addr < 0x3000:
		return p.vram[p.mirrorNametable(addr)]
	case addr < 0x3F00:
		return p.vram[p.mirrorNametable(addr-0x1000)]
	default:
		return p.palette[paletteIndex(addr)]
	}
}

func (p *PPU) writeMem(addr uint16, v uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.mapper.ChrWrite(addr, v)
	case addr < 0x3000:
		p.vram[p.mirrorNametable(addr)] = v
	case addr < 0x3F00:
		p.vram[p.mirrorNametable(addr-0x1000)] = v
	default:
		p.palette[paletteIndex(addr)] = v
	}
}

// mirrorNametable folds an address already known to sit in
// 0x2000-0x2FFF down to a 2 KiB VRAM index, per the cartridge's
// mirroring tag.
func (p *PPU) mirrorNametable(addr uint16) uint16 {
	idx := (addr & 0x2FFF) - 0x2000
	switch p.mirroring {
	case cartridge.Vertical:
		return idx % 0x800
	case cartridge.Horizontal:
		table, offset := idx/0x400, idx%0x400
		if table == 0 || table == 1 {
			return offset
		}
		return 0x400 + offset
	default: // FourScreen: out of scope beyond the basic fold.
		return idx % 0x800
	}
}

// Tick advances the scanline/dot counters by one PPU dot. It reports
// whether this dot completed a frame.
func (p *PPU) Tick() (frameComplete bool) {
	p.dot++
	if p.dot != 341 {
		return false
	}
	p.dot = 0
	p.scanline++

	switch p.scanline {
	case 241:
		p.status |= statusVBlank
		p.status &^= statusSprite0Hit
		if p.ctrl&ctrlGenerateNMI != 0 {
			p.cell.Raise(irq.NMI)
		}
	case 262:
		p.scanline = 0
		p.status &^= statusVBlank
		p.status &^= statusSprite0Hit
		p.cell.Raise(irq.None)
		return true
	}
	return false
}
