// Command gintendo loads an iNES ROM and runs it: an ebiten window
// drives the display while the CPU and PPU run on their own
// goroutine, the same split the teacher's gintendo.go wires up.
package main

import (
	"context"
	"flag"
	"image"
	"image/color"
	"log"
	"os"

	"github.com/bdwalton/nescore/bus"
	"github.com/bdwalton/nescore/cartridge"
	"github.com/bdwalton/nescore/ppu"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/bmp"
)

var (
	romPath = flag.String("rom", "", "path to an iNES ROM to run")
	debug   = flag.Bool("debug", false, "drop into the step/trace debug console instead of running live")
	dump    = flag.String("dump", "", "run headless, render one frame, write it as a BMP to this path, and exit")
)

func main() {
	flag.Parse()

	if *romPath == "" {
		log.Fatal("gintendo: -rom is required")
	}

	rom, err := cartridge.Load(*romPath)
	if err != nil {
		log.Fatalf("gintendo: loading ROM: %v", err)
	}

	b, err := bus.New(rom)
	if err != nil {
		log.Fatalf("gintendo: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *dump != "" {
		if err := dumpFrame(b, *dump); err != nil {
			log.Fatalf("gintendo: %v", err)
		}
		return
	}

	if *debug {
		b.BIOS(ctx)
		return
	}

	go func() {
		if err := b.Run(ctx); err != nil {
			log.Printf("gintendo: machine halted: %v", err)
		}
	}()

	if err := ebiten.RunGame(b); err != nil {
		log.Fatalf("gintendo: %v", err)
	}
}

// dumpFrame runs the machine for one frame's worth of dots and writes
// the result as an indexed-color BMP, for attaching a screenshot to a
// bug report without standing up a display.
func dumpFrame(b *bus.Bus, path string) error {
	f, err := b.RunOneFrame()
	if err != nil {
		return err
	}

	palette := make(color.Palette, 64)
	for i, rgb := range ppu.SystemPalette {
		palette[i] = color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xFF}
	}

	img := image.NewPaletted(image.Rect(0, 0, ppu.FrameWidth, ppu.FrameHeight), palette)
	for y := 0; y < ppu.FrameHeight; y++ {
		for x := 0; x < ppu.FrameWidth; x++ {
			img.SetColorIndex(x, y, f[y*ppu.FrameWidth+x]&0x3F)
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return bmp.Encode(out, img)
}
