// Package bus implements the memory-mapped address decode wiring the
// CPU to RAM, PPU registers and cartridge PRG, the run loop that
// drives both chips, and an ebiten.Game adapter so the assembled
// machine can be dropped straight into ebiten.RunGame. Grounded on
// the teacher's console.Bus.
package bus

import (
	"bufio"
	"context"
	"fmt"
	"image/color"
	"log"
	"os"
	"sync"

	"github.com/bdwalton/nescore/cartridge"
	"github.com/bdwalton/nescore/cpu"
	"github.com/bdwalton/nescore/irq"
	"github.com/bdwalton/nescore/mappers"
	"github.com/bdwalton/nescore/ppu"
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	ramSize       = 0x0800
	ramMirrorMask = 0x07FF
	ramEnd        = 0x1FFF
	ppuRegEnd     = 0x3FFF
	apuIOEnd      = 0x401F
	cartExpEnd    = 0x7FFF
)

// Bus owns every piece of state a loaded cartridge needs: CPU RAM,
// the PPU, the mapper, and the interrupt cell the two chips share.
// It implements cpu.Bus for the CPU's benefit and ebiten.Game so it
// can drive its own display window.
type Bus struct {
	ram    [ramSize]uint8
	mapper mappers.Mapper
	cpu    *cpu.CPU
	ppu    *ppu.PPU
	cell   *irq.Cell

	// lastValue is the open-bus latch: the last byte that crossed the
	// bus in either direction, returned when a register access the
	// spec calls invalid (write-only read, read-only write) would
	// otherwise need to fabricate a value.
	lastValue uint8

	mu    sync.RWMutex
	frame *ppu.Frame
}

// New builds a Bus around rom: resolves its mapper, then wires up the
// CPU and PPU.
func New(rom *cartridge.ROM) (*Bus, error) {
	m, err := mappers.Get(rom)
	if err != nil {
		return nil, err
	}

	cell := &irq.Cell{}
	b := &Bus{mapper: m, cell: cell}
	b.ppu = ppu.New(m, cell)
	b.cpu = cpu.New(b, cell)

	ebiten.SetWindowSize(ppu.FrameWidth*2, ppu.FrameHeight*2)
	ebiten.SetWindowTitle("nescore")

	return b, nil
}

// Read implements cpu.Bus.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr <= ramEnd:
		b.lastValue = b.ram[addr&ramMirrorMask]
	case addr <= ppuRegEnd:
		v, err := b.ppu.ReadRegister(0x2000 + addr&0x0007)
		if err != nil {
			log.Printf("bus: %v", err)
			break
		}
		b.lastValue = v
	case addr <= apuIOEnd:
		// APU/IO is stubbed; reads return whatever was last latched.
	case addr <= cartExpEnd:
		// Cartridge expansion space always reads as 0.
		b.lastValue = 0
	default:
		b.lastValue = b.mapper.PrgRead(addr)
	}
	return b.lastValue
}

// Write implements cpu.Bus.
func (b *Bus) Write(addr uint16, v uint8) {
	b.lastValue = v
	switch {
	case addr <= ramEnd:
		b.ram[addr&ramMirrorMask] = v
	case addr <= ppuRegEnd:
		if err := b.ppu.WriteRegister(0x2000+addr&0x0007, v); err != nil {
			log.Printf("bus: %v", err)
		}
	case addr <= apuIOEnd:
		// APU/IO is stubbed; writes are dropped.
	case addr <= cartExpEnd:
		// Cartridge expansion space has no backing store.
	default:
		b.mapper.PrgWrite(addr, v)
	}
}

// Tick implements cpu.Bus: every CPU cycle drives the PPU three dots.
func (b *Bus) Tick(cpuCycles int) {
	b.tickPPU(cpuCycles * 3)
}

func (b *Bus) tickPPU(dots int) {
	for i := 0; i < dots; i++ {
		if b.ppu.Tick() {
			f := b.ppu.RenderFrame()
			b.mu.Lock()
			b.frame = f
			b.mu.Unlock()
		}
	}
}

// Run drives the CPU until ctx is cancelled, an opcode fetch fails,
// or BRK halts execution.
func (b *Bus) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		sig, err := b.cpu.Step()
		if err != nil {
			return err
		}
		if sig == irq.BRK {
			return nil
		}
	}
}

// RunOneFrame steps the CPU until the PPU completes one full frame
// and returns it, for headless single-frame tooling (screenshot
// dumps, golden-frame tests) that has no use for a live window.
func (b *Bus) RunOneFrame() (*ppu.Frame, error) {
	b.mu.Lock()
	b.frame = nil
	b.mu.Unlock()

	for {
		b.mu.RLock()
		f := b.frame
		b.mu.RUnlock()
		if f != nil {
			return f, nil
		}

		sig, err := b.cpu.Step()
		if err != nil {
			return nil, err
		}
		if sig == irq.BRK {
			return nil, fmt.Errorf("bus: BRK before a frame completed")
		}
	}
}

// Update satisfies ebiten.Game. The CPU/PPU run on their own
// goroutine via Run, so there's nothing for ebiten's own tick to do.
func (b *Bus) Update() error {
	return nil
}

// Draw satisfies ebiten.Game, blitting the last completed frame's
// palette indices through SystemPalette into screen.
func (b *Bus) Draw(screen *ebiten.Image) {
	b.mu.RLock()
	f := b.frame
	b.mu.RUnlock()
	if f == nil {
		return
	}
	for y := 0; y < ppu.FrameHeight; y++ {
		for x := 0; x < ppu.FrameWidth; x++ {
			rgb := ppu.SystemPalette[f[y*ppu.FrameWidth+x]&0x3F]
			screen.Set(x, y, color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xFF})
		}
	}
}

// Layout satisfies ebiten.Game with the NES's fixed resolution, so
// ebiten scales the window rather than us.
func (b *Bus) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.FrameWidth, ppu.FrameHeight
}

func readAddress(r *bufio.Reader, prompt string) uint16 {
	fmt.Print(prompt)
	line, _ := r.ReadString('\n')
	var a uint16
	fmt.Sscanf(line, "%04x", &a)
	return a
}

// BIOS is a minimal interactive console for stepping the machine by
// hand: useful while bringing up a new ROM or chasing a CPU bug. It
// blocks until the user quits. Grounded on the teacher's console.Bus
// debug REPL.
func (b *Bus) BIOS(ctx context.Context) {
	r := bufio.NewReader(os.Stdin)

	for {
		fmt.Println(b.cpu.Trace())
		fmt.Println("(s)tep  (r)un  (m)emory  (p)c  (e) reset  (q)uit")
		fmt.Print("choice: ")

		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		if len(line) == 0 {
			continue
		}

		switch line[0] {
		case 's', 'S':
			if _, err := b.cpu.Step(); err != nil {
				fmt.Printf("step error: %v\n", err)
			}
		case 'r', 'R':
			if err := b.Run(ctx); err != nil {
				fmt.Printf("run stopped: %v\n", err)
			}
		case 'p', 'P':
			b.cpu.PC = readAddress(r, "set PC to (e.g. 0400): ")
		case 'e', 'E':
			b.cpu.Reset()
		case 'm', 'M':
			low := readAddress(r, "low address: ")
			high := readAddress(r, "high address: ")
			for i, col := low, 0; ; i++ {
				fmt.Printf("%04x: %02x  ", i, b.Read(i))
				col++
				if col%8 == 0 {
					fmt.Println()
				}
				if i == high {
					break
				}
			}
			fmt.Println()
		case 'q', 'Q':
			return
		}
	}
}
