package ppu

import "testing"

func TestPaletteIndexAliasesSpriteBackgroundEntries(t *testing.T) {
	cases := map[uint16]uint16{
		0x3F00: 0x00,
		0x3F10: 0x00,
		0x3F04: 0x04,
		0x3F14: 0x04,
		0x3F08: 0x08,
		0x3F18: 0x08,
		0x3F0C: 0x0C,
		0x3F1C: 0x0C,
		0x3F05: 0x05,
	}
	for addr, want := range cases {
		if got := paletteIndex(addr); got != want {
			t.Errorf("paletteIndex(%#04x) = %#02x, want %#02x", addr, got, want)
		}
	}
}

func TestSystemPaletteHas64Entries(t *testing.T) {
	if len(SystemPalette) != 64 {
		t.Fatalf("len(SystemPalette) = %d, want 64", len(SystemPalette))
	}
}
