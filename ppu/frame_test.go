package ppu

import (
	"testing"

	"github.com/bdwalton/nescore/cartridge"
)

func TestReadTileDecodesTwoBitPlanesMSBFirst(t *testing.T) {
	p, m, _ := newTestPPU(cartridge.Vertical)
	// Tile 0: row 0 low-plane = 0b10000000, high-plane = 0b00000000.
	// MSB-first, pixel 0 should come out as color index 1 (hi=0,lo=1).
	m.Chr[0] = 0x80

	tl := p.readTile(0, 0)
	if tl[0][0] != 1 {
		t.Fatalf("tile[0][0] = %d, want 1", tl[0][0])
	}
	for x := 1; x < 8; x++ {
		if tl[0][x] != 0 {
			t.Fatalf("tile[0][%d] = %d, want 0", x, tl[0][x])
		}
	}
}

func TestRenderFrameProducesFullSizedBuffer(t *testing.T) {
	p, _, _ := newTestPPU(cartridge.Vertical)
	f := p.RenderFrame()
	if len(f) != FrameWidth*FrameHeight {
		t.Fatalf("len(frame) = %d, want %d", len(f), FrameWidth*FrameHeight)
	}
}
