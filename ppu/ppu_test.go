package ppu

import (
	"errors"
	"testing"

	"github.com/bdwalton/nescore/cartridge"
	"github.com/bdwalton/nescore/irq"
	"github.com/bdwalton/nescore/mappers"
)

func newTestPPU(mirroring cartridge.Mirroring) (*PPU, *mappers.Dummy, *irq.Cell) {
	m := mappers.NewDummy()
	m.Mirroring = mirroring
	cell := &irq.Cell{}
	return New(m, cell), m, cell
}

func TestWriteToReadOnlyRegisterReturnsError(t *testing.T) {
	p, _, _ := newTestPPU(cartridge.Vertical)
	if err := p.WriteRegister(RegSTATUS, 0); !errors.Is(err, ErrReadOnlyRegister) {
		t.Fatalf("err = %v, want ErrReadOnlyRegister", err)
	}
}

func TestReadFromWriteOnlyRegisterReturnsError(t *testing.T) {
	p, _, _ := newTestPPU(cartridge.Vertical)
	if _, err := p.ReadRegister(RegCTRL); !errors.Is(err, ErrWriteOnlyRegister) {
		t.Fatalf("err = %v, want ErrWriteOnlyRegister", err)
	}
}

func TestCTRLRisingEdgeAssertsNMIDuringVBlank(t *testing.T) {
	p, _, cell := newTestPPU(cartridge.Vertical)
	p.status |= statusVBlank

	if err := p.WriteRegister(RegCTRL, ctrlGenerateNMI); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	if cell.Peek() != irq.NMI {
		t.Fatalf("cell = %v, want NMI asserted on CTRL rising edge during vblank", cell.Peek())
	}
}

func TestCTRLWriteWithoutVBlankDoesNotAssertNMI(t *testing.T) {
	p, _, cell := newTestPPU(cartridge.Vertical)
	if err := p.WriteRegister(RegCTRL, ctrlGenerateNMI); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	if cell.Peek() != irq.None {
		t.Fatalf("cell = %v, want None", cell.Peek())
	}
}

func TestSTATUSReadClearsVBlankAndResetsToggles(t *testing.T) {
	p, _, _ := newTestPPU(cartridge.Vertical)
	p.status |= statusVBlank
	p.addr.write(0x12)  // first write, selects high byte; toggle now mid-write
	p.scroll.write(0x34) // ditto for scroll

	v, err := p.ReadRegister(RegSTATUS)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if v&statusVBlank == 0 {
		t.Fatal("expected the read value to still report vblank set")
	}
	if p.status&statusVBlank != 0 {
		t.Fatal("expected vblank cleared after the read")
	}
	if p.addr.next.writeLow || p.scroll.next.writeLow {
		t.Fatal("expected both double-write toggles reset to the first half")
	}
}

func TestADDRWriteMirrorsDownAndDATAReadIsBuffered(t *testing.T) {
	p, m, _ := newTestPPU(cartridge.Vertical)
	m.Chr[0x0005] = 0xAB

	if err := p.WriteRegister(RegADDR, 0x00); err != nil { // high byte
		t.Fatal(err)
	}
	if err := p.WriteRegister(RegADDR, 0x05); err != nil { // low byte -> addr=0x0005
		t.Fatal(err)
	}

	first, err := p.ReadRegister(RegDATA)
	if err != nil {
		t.Fatal(err)
	}
	if first != 0 {
		t.Fatalf("first DATA read = %#02x, want 0 (buffered, nothing primed yet)", first)
	}

	second, err := p.ReadRegister(RegDATA)
	if err != nil {
		t.Fatal(err)
	}
	if second != 0xAB {
		t.Fatalf("second DATA read = %#02x, want 0xAB (buffer now primed)", second)
	}
}

func TestPaletteDATAReadIsNotBuffered(t *testing.T) {
	p, _, _ := newTestPPU(cartridge.Vertical)
	p.palette[0x05] = 0x22

	if err := p.WriteRegister(RegADDR, 0x3F); err != nil {
		t.Fatal(err)
	}
	if err := p.WriteRegister(RegADDR, 0x05); err != nil {
		t.Fatal(err)
	}
	v, err := p.ReadRegister(RegDATA)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x22 {
		t.Fatalf("DATA read in palette range = %#02x, want 0x22 (no read delay)", v)
	}
}

func TestPaletteMirrorsUniversalBackgroundEntries(t *testing.T) {
	p, _, _ := newTestPPU(cartridge.Vertical)
	p.writeMem(0x3F00, 0x10)
	if got := p.readMem(0x3F10); got != 0x10 {
		t.Fatalf("0x3F10 = %#02x, want 0x10 (aliases 0x3F00)", got)
	}
}

func TestOAMDATAWriteAutoIncrementsAddr(t *testing.T) {
	p, _, _ := newTestPPU(cartridge.Vertical)
	if err := p.WriteRegister(RegOAMADDR, 0x10); err != nil {
		t.Fatal(err)
	}
	if err := p.WriteRegister(RegOAMDATA, 0x99); err != nil {
		t.Fatal(err)
	}
	if p.oamAddr != 0x11 {
		t.Fatalf("oamAddr = %#02x, want 0x11", p.oamAddr)
	}
	if p.oam[0x10] != 0x99 {
		t.Fatalf("oam[0x10] = %#02x, want 0x99", p.oam[0x10])
	}
}

func TestTickRaisesVBlankAtScanline241(t *testing.T) {
	p, _, cell := newTestPPU(cartridge.Vertical)
	p.ctrl |= ctrlGenerateNMI

	for dot := 0; dot < 341*242; dot++ {
		if p.Tick() {
			t.Fatal("frame should not be complete yet")
		}
	}
	if p.status&statusVBlank == 0 {
		t.Fatal("expected vblank flag set after reaching scanline 241")
	}
	if cell.Peek() != irq.NMI {
		t.Fatalf("cell = %v, want NMI", cell.Peek())
	}
}

func TestTickCompletesFrameAtScanline262(t *testing.T) {
	p, _, cell := newTestPPU(cartridge.Vertical)

	complete := false
	for dot := 0; dot < 341*262; dot++ {
		if p.Tick() {
			complete = true
			break
		}
	}
	if !complete {
		t.Fatal("expected frame completion within 262 scanlines")
	}
	if p.scanline != 0 || p.dot != 0 {
		t.Fatalf("scanline=%d dot=%d, want both reset to 0", p.scanline, p.dot)
	}
	if p.status&statusVBlank != 0 {
		t.Fatal("expected vblank cleared at end of frame")
	}
	if cell.Peek() != irq.None {
		t.Fatalf("cell = %v, want None cleared at end of frame", cell.Peek())
	}
}

func TestNametableMirroringVertical(t *testing.T) {
	p, _, _ := newTestPPU(cartridge.Vertical)
	p.writeMem(0x2000, 0x42)
	if got := p.readMem(0x2800); got != 0x42 { // table 2 mirrors table 0
		t.Fatalf("0x2800 = %#02x, want 0x42", got)
	}
}

func TestNametableMirroringHorizontal(t *testing.T) {
	p, _, _ := newTestPPU(cartridge.Horizontal)
	p.writeMem(0x2000, 0x55)
	if got := p.readMem(0x2400); got != 0x55 { // table 1 mirrors table 0
		t.Fatalf("0x2400 = %#02x, want 0x55", got)
	}
}
