// framebuffer.go - owns the XRGB8888 buffer a Renderer draws into, plus
// debug clears and resizing.
//
// Grounded on video_chip.go's VideoChip front-buffer ownership
// (GetFrontBuffer, the buffer-allocation half of NewVideoChip/Start) and
// its RESOLUTION_* constants, adapted from a memory-mapped hardware
// register surface to a plain owned pixel slice: this port has no CPU bus
// to read/write VRAM through, only a renderer that wants somewhere to
// blit into and a presenter that wants the finished pixels back out.
package render

// DefaultFrameWidth and DefaultFrameHeight match the original's fixed 3DO
// viewport resolution (gScreenWidth/gScreenHeight in Renderer_Internal.h,
// confirmed in shape by every fixed-320-wide table this port already
// builds, e.g. referenceScreenWidth in weapon.go).
const (
	DefaultFrameWidth  = 320
	DefaultFrameHeight = 200
)

// FrameBuffer owns one frame's worth of XRGB8888 pixels, sized to a
// viewport that may be narrower than the full display width (the HUD
// border drawn by weapon.go's DrawMaskedUISprite occupies the rest).
type FrameBuffer struct {
	pixels        []uint32
	width, height uint32
}

// NewFrameBuffer allocates a zeroed buffer of the given dimensions.
func NewFrameBuffer(width, height uint32) *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize reallocates the buffer if its dimensions changed, discarding
// whatever was drawn before (matching VideoChip.scaleImageToMode's
// practice of never trying to preserve content across a mode change).
func (fb *FrameBuffer) Resize(width, height uint32) {
	if width == fb.width && height == fb.height && fb.pixels != nil {
		return
	}
	fb.width, fb.height = width, height
	fb.pixels = make([]uint32, width*height)
}

// Target returns a FrameTarget drawers.go can blit directly into.
func (fb *FrameBuffer) Target() FrameTarget {
	return FrameTarget{Pixels: fb.pixels, Width: fb.width, Height: fb.height, Pitch: fb.width}
}

// Pixels exposes the raw backing buffer for the presenter (cmd/phoenixview)
// to copy out after a frame finishes.
func (fb *FrameBuffer) Pixels() []uint32 { return fb.pixels }

func (fb *FrameBuffer) Width() uint32  { return fb.width }
func (fb *FrameBuffer) Height() uint32 { return fb.height }

// Clear fills the whole buffer with black, the normal start-of-frame
// state before BSP traversal paints over it; every pixel the renderer
// can see gets overwritten every frame, so this only matters for pixels
// outside the 3D viewport within a larger display buffer.
func (fb *FrameBuffer) Clear() {
	for i := range fb.pixels {
		fb.pixels[i] = 0
	}
}

// DebugClear fills the buffer with a solid color, for visualizing which
// regions a frame actually painted (an unpainted region stays the debug
// color instead of carrying over stale pixels from the previous frame).
func (fb *FrameBuffer) DebugClear(color uint32) {
	for i := range fb.pixels {
		fb.pixels[i] = color
	}
}
