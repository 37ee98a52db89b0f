// Package mappers implements the cartridge mapper registry, keyed by
// the numeric mapper id iNES ROMs carry. Only mapper 0 (NROM) is
// implemented, matching the spec's scope; the registry itself is kept
// open the way the teacher's mappers package keeps it, so a future
// mapper only has to register itself.
package mappers

import (
	"fmt"

	"github.com/bdwalton/nescore/cartridge"
)

// Mapper is the cartridge-side address decode the bus and PPU talk
// to: PRG reads/writes in the CPU's 0x8000-0xFFFF window, CHR
// reads/writes in the PPU's 0x0000-0x1FFF window, and the mirroring
// mode the cartridge wires into the PPU.
type Mapper interface {
	ID() uint8
	Name() string
	PrgRead(addr uint16) uint8
	PrgWrite(addr uint16, val uint8)
	ChrRead(addr uint16) uint8
	ChrWrite(addr uint16, val uint8)
	MirroringMode() cartridge.Mirroring
}

type factory func(*cartridge.ROM) Mapper

var registry = map[uint8]factory{}

// Register adds a mapper constructor under id. Re-registering an id
// is a programmer error and panics, the same way the teacher's
// RegisterMapper guards against two mappers claiming the same id.
func Register(id uint8, f factory) {
	if _, ok := registry[id]; ok {
		panic(fmt.Sprintf("mappers: id %d already registered", id))
	}
	registry[id] = f
}

// Get builds the mapper named by rom's header, or an error if no
// mapper is registered for that id.
func Get(rom *cartridge.ROM) (Mapper, error) {
	f, ok := registry[rom.Mapper]
	if !ok {
		return nil, fmt.Errorf("mappers: unknown mapper id %d", rom.Mapper)
	}
	return f(rom), nil
}
