package mappers

import (
	"testing"

	"github.com/bdwalton/nescore/cartridge"
)

func TestMapper0MirrorsSixteenKPRG(t *testing.T) {
	rom := &cartridge.ROM{PRG: make([]uint8, 0x4000), CHR: make([]uint8, 0x2000)}
	rom.PRG[0] = 0x42
	rom.PRG[0x3FFF] = 0x99

	m, err := Get(rom)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got := m.PrgRead(0x8000); got != 0x42 {
		t.Errorf("PrgRead(0x8000) = %#x, want 0x42", got)
	}
	if got := m.PrgRead(0xC000); got != 0x42 {
		t.Errorf("PrgRead(0xC000) = %#x, want 0x42 (16K PRG should mirror)", got)
	}
	if got := m.PrgRead(0xFFFF); got != 0x99 {
		t.Errorf("PrgRead(0xFFFF) = %#x, want 0x99", got)
	}
}

func TestMapper0ThirtyTwoKPRGNotMirrored(t *testing.T) {
	rom := &cartridge.ROM{PRG: make([]uint8, 0x8000), CHR: make([]uint8, 0x2000)}
	rom.PRG[0] = 0x11
	rom.PRG[0x4000] = 0x22

	m, err := Get(rom)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := m.PrgRead(0x8000); got != 0x11 {
		t.Errorf("PrgRead(0x8000) = %#x, want 0x11", got)
	}
	if got := m.PrgRead(0xC000); got != 0x22 {
		t.Errorf("PrgRead(0xC000) = %#x, want 0x22", got)
	}
}

func TestGetUnknownMapper(t *testing.T) {
	rom := &cartridge.ROM{Mapper: 255}
	if _, err := Get(rom); err == nil {
		t.Fatal("expected error for unregistered mapper id")
	}
}
