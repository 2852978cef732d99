// main.go - host window for the zcpu simulator

/*
zcpu-window is the external collaborator spec.md carves the
SDL-backed window/event loop and pixel blitter out to: it owns the host
window, pumps keyboard events into the simulated keyboard device, runs
the machine a burst of instructions per host frame, and blits the
framebuffer device's RGBA8888 snapshot into the window at whatever scale
the window is sized to.

Grounded on the teacher's video_backend_ebiten.go: an ebiten.Game
implementation driving Update/Draw/Layout, the same shape the teacher
uses for its own video chip, adapted here to consume the core's
framebuffer_snapshot() instead of a push-style UpdateFrame byte stream.
*/

package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/draw"

	zcpusim "github.com/zcpusim/zcpusim"
)

const defaultScale = 1

// hostWindow adapts a *zcpusim.Computer to ebiten.Game: it steps the
// machine a bounded number of instructions per frame and blits its
// framebuffer into the window.
type hostWindow struct {
	computer      *zcpusim.Computer
	scale         int
	instrPerFrame int
	scratchRGBA   *image.RGBA
}

func newHostWindow(c *zcpusim.Computer, scale int) *hostWindow {
	return &hostWindow{
		computer:      c,
		scale:         scale,
		instrPerFrame: 20000,
		scratchRGBA:   image.NewRGBA(image.Rect(0, 0, zcpusim.GraphicsWidth, zcpusim.GraphicsHeight)),
	}
}

func (w *hostWindow) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		w.computer.RequestKeyboardInput(uint16(key))
	}

	for i := 0; i < w.instrPerFrame; i++ {
		w.computer.SingleStep()
	}
	return nil
}

// snapshotToRGBA packs the framebuffer's RGBA8888 words into dst's Pix
// buffer; dst must already be sized to GraphicsWidth x GraphicsHeight.
func snapshotToRGBA(dst *image.RGBA, pixels []uint32) {
	for i, px := range pixels {
		binary.BigEndian.PutUint32(dst.Pix[i*4:i*4+4], px)
	}
}

func (w *hostWindow) Draw(screen *ebiten.Image) {
	snapshotToRGBA(w.scratchRGBA, w.computer.FramebufferSnapshot())

	bounds := screen.Bounds()
	if bounds.Dx() == w.scratchRGBA.Bounds().Dx() && bounds.Dy() == w.scratchRGBA.Bounds().Dy() {
		screen.WritePixels(w.scratchRGBA.Pix)
		return
	}

	scaled := image.NewRGBA(bounds)
	draw.BiLinear.Scale(scaled, bounds, w.scratchRGBA, w.scratchRGBA.Bounds(), draw.Over, nil)
	screen.WritePixels(scaled.Pix)
}

func (w *hostWindow) Layout(_, _ int) (int, int) {
	return zcpusim.GraphicsWidth * w.scale, zcpusim.GraphicsHeight * w.scale
}

func main() {
	imagePath := flag.String("program", "", "path to a flat 32-bit little-endian program image")
	scale := flag.Int("scale", defaultScale, "integer window scale factor")
	flag.Parse()

	c := zcpusim.Build()

	if *imagePath != "" {
		raw, err := os.ReadFile(*imagePath)
		if err != nil {
			log.Fatalf("zcpu-window: %v", err)
		}
		if len(raw)%4 != 0 {
			log.Fatalf("zcpu-window: %s is not a whole number of 32-bit words", *imagePath)
		}
		words := make([]uint32, len(raw)/4)
		for i := range words {
			words[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
		c.LoadProgram(words, 0)
	}

	w := newHostWindow(c, *scale)

	ebiten.SetWindowSize(zcpusim.GraphicsWidth*(*scale), zcpusim.GraphicsHeight*(*scale))
	ebiten.SetWindowTitle(fmt.Sprintf("zcpu (scale %dx)", *scale))
	ebiten.SetWindowResizable(true)

	if err := ebiten.RunGame(w); err != nil && err != ebiten.Termination {
		log.Fatalf("zcpu-window: %v", err)
	}
}
