// framebuffer_test.go - tests for the owned pixel buffer

package render

import "testing"

func TestNewFrameBuffer_ZeroedAndSized(t *testing.T) {
	fb := NewFrameBuffer(4, 3)
	if fb.Width() != 4 || fb.Height() != 3 {
		t.Fatalf("dimensions = (%d,%d), want (4,3)", fb.Width(), fb.Height())
	}
	if len(fb.Pixels()) != 12 {
		t.Fatalf("len(Pixels()) = %d, want 12", len(fb.Pixels()))
	}
	for i, p := range fb.Pixels() {
		if p != 0 {
			t.Errorf("pixel %d = %#08x, want 0", i, p)
		}
	}
}

func TestFrameBuffer_Target_SharesBackingArray(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	ft := fb.Target()
	ft.Pixels[0] = 0xABCDEF

	if fb.Pixels()[0] != 0xABCDEF {
		t.Error("Target() should return a view over the same backing array")
	}
	if ft.Width != 2 || ft.Height != 2 || ft.Pitch != 2 {
		t.Errorf("target dims = (%d,%d) pitch %d, want (2,2) pitch 2", ft.Width, ft.Height, ft.Pitch)
	}
}

func TestFrameBuffer_Resize_DiscardsContentOnDimensionChange(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	fb.Pixels()[0] = 0x112233

	fb.Resize(2, 2) // same dimensions: must be a no-op, keeping content
	if fb.Pixels()[0] != 0x112233 {
		t.Error("resizing to the same dimensions should not reallocate")
	}

	fb.Resize(3, 3)
	if fb.Width() != 3 || fb.Height() != 3 || len(fb.Pixels()) != 9 {
		t.Fatalf("after resize: (%d,%d) len %d, want (3,3) len 9", fb.Width(), fb.Height(), len(fb.Pixels()))
	}
	for i, p := range fb.Pixels() {
		if p != 0 {
			t.Errorf("pixel %d after resize = %#08x, want 0", i, p)
		}
	}
}

func TestFrameBuffer_ClearAndDebugClear(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	fb.DebugClear(0xFF00FF)
	for i, p := range fb.Pixels() {
		if p != 0xFF00FF {
			t.Errorf("pixel %d = %#08x, want 0xFF00FF", i, p)
		}
	}

	fb.Clear()
	for i, p := range fb.Pixels() {
		if p != 0 {
			t.Errorf("pixel %d after Clear = %#08x, want 0", i, p)
		}
	}
}
