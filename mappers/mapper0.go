package mappers

import "github.com/bdwalton/nescore/cartridge"

func init() {
	Register(0, func(rom *cartridge.ROM) Mapper {
		return &mapper0{rom: rom}
	})
}

// mapper0 is NROM: PRG is 16 KiB or 32 KiB, with the 16 KiB case
// mirrored into both halves of 0x8000-0xFFFF; CHR is a flat 8 KiB
// window with no banking.
type mapper0 struct {
	rom *cartridge.ROM
}

func (m *mapper0) ID() uint8    { return 0 }
func (m *mapper0) Name() string { return "NROM" }

func (m *mapper0) PrgRead(addr uint16) uint8 {
	a := addr - 0x8000
	if len(m.rom.PRG) == 0x4000 {
		a &= 0x3FFF
	}
	return m.rom.PRG[a]
}

func (m *mapper0) PrgWrite(addr uint16, val uint8) {
	// NROM has no PRG RAM or bank-select registers; writes are
	// dropped.
}

func (m *mapper0) ChrRead(addr uint16) uint8 {
	return m.rom.CHR[addr]
}

func (m *mapper0) ChrWrite(addr uint16, val uint8) {
	m.rom.CHR[addr] = val
}

func (m *mapper0) MirroringMode() cartridge.Mirroring {
	return m.rom.Mirroring
}
