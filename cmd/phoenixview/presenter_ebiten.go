//go:build !headless

// presenter_ebiten.go - windowed presentation backend.
//
// Grounded on video_backend_ebiten.go's EbitenOutput: the same vsync-gated
// RunGame/Draw/Layout shape, the same F11 fullscreen toggle read via
// inpututil, and the same Ctrl+Shift+V clipboard hook, now copying a
// frame-number and native-resolution summary for a bug report instead of pasting terminal
// input. The frame buffer itself is no longer a raw byte slice fed
// straight to WritePixels: a Viewer's native-resolution pixels are
// upscaled into the window with golang.org/x/image/draw's nearest-
// neighbor sampler first, keeping the hard, unfiltered pixel edges the
// renderer itself never tries to avoid (see drawers.go).
package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"

	render "github.com/BodbDearg/phoenix-doom-sub001"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
	"golang.org/x/image/draw"
)

type ebitenGame struct {
	viewer      *Viewer
	native      *image.RGBA
	window      *ebiten.Image
	scale       int
	fullscreen  bool
	windowedW   int
	windowedH   int
	clipboardOK bool
}

func newEbitenGame(v *Viewer, scale int) *ebitenGame {
	w, h := v.Width(), v.Height()
	return &ebitenGame{
		viewer:    v,
		native:    image.NewRGBA(image.Rect(0, 0, w, h)),
		window:    ebiten.NewImage(w*scale, h*scale),
		scale:     scale,
		windowedW: w * scale,
		windowedH: h * scale,
	}
}

func (g *ebitenGame) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		g.fullscreen = !g.fullscreen
		ebiten.SetFullscreen(g.fullscreen)
		if !g.fullscreen {
			ebiten.SetWindowSize(g.windowedW, g.windowedH)
		}
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.copyDebugSummary()
	}

	const moveSpeed = 8
	const turnSpeed = render.Ang90 / 64
	var dx, dy float32
	var dAngle render.Angle
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		dy += moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		dy -= moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		dx -= moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		dx += moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		dAngle += turnSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		dAngle -= turnSpeed
	}
	g.viewer.Move(dx, dy, dAngle)
	return nil
}

func (g *ebitenGame) copyDebugSummary() {
	g.clipboardOnceInit()
	if !g.clipboardOK {
		return
	}
	summary := fmt.Sprintf("phoenixview frame=%d native=%dx%d", g.viewer.frameCount, g.viewer.Width(), g.viewer.Height())
	clipboard.Write(clipboard.FmtText, []byte(summary))
}

func (g *ebitenGame) clipboardOnceInit() {
	if g.clipboardOK {
		return
	}
	g.clipboardOK = clipboard.Init() == nil
}

func (g *ebitenGame) Draw(screen *ebiten.Image) {
	pixels, err := g.viewer.RenderFrame()
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		return
	}
	w, h := g.viewer.Width(), g.viewer.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := pixels[y*w+x]
			g.native.SetRGBA(x, y, color.RGBA{
				R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p), A: 0xFF,
			})
		}
	}

	upscaled := image.NewRGBA(image.Rect(0, 0, w*g.scale, h*g.scale))
	draw.NearestNeighbor.Scale(upscaled, upscaled.Bounds(), g.native, g.native.Bounds(), draw.Src, nil)
	g.window.WritePixels(upscaled.Pix)
	screen.DrawImage(g.window, nil)
}

func (g *ebitenGame) Layout(_, _ int) (int, int) {
	return g.viewer.Width() * g.scale, g.viewer.Height() * g.scale
}

// runPresenter opens a window and runs the render loop until closed.
func runPresenter(_ context.Context, v *Viewer, scale int) error {
	g := newEbitenGame(v, scale)
	ebiten.SetWindowSize(g.windowedW, g.windowedH)
	ebiten.SetWindowTitle("phoenixview")
	ebiten.SetWindowResizable(true)
	return ebiten.RunGame(g)
}
