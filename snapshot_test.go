// snapshot_test.go - tests for frame capture, restore, and disk round-trip.

package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFrameBuffer_SnapshotAndRestore_RoundTrips(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	fb.Pixels()[0] = 0x112233
	fb.Pixels()[1] = 0x445566

	snap := fb.Snapshot()

	fb.DebugClear(0) // drawing into fb after the snapshot must not affect it
	if snap.Pixels[0] != 0x112233 || snap.Pixels[1] != 0x445566 {
		t.Fatalf("snapshot mutated after further drawing: %#v", snap.Pixels)
	}

	if err := fb.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if fb.Pixels()[0] != 0x112233 || fb.Pixels()[1] != 0x445566 {
		t.Errorf("restored pixels = %#v, want [0x112233 0x445566 0 0]", fb.Pixels())
	}
}

func TestFrameBuffer_Restore_RejectsDimensionMismatch(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	snap := FrameSnapshot{Width: 3, Height: 2, Pixels: make([]uint32, 6)}

	err := fb.Restore(snap)
	if !errors.Is(err, ErrDecodeFailed) {
		t.Fatalf("Restore err = %v, want ErrDecodeFailed", err)
	}
}

func TestSaveLoadFrameSnapshot_RoundTrips(t *testing.T) {
	snap := FrameSnapshot{
		Width: 2, Height: 2,
		Pixels: []uint32{0x000000, 0xFFFFFF, 0xFF0000, 0x00FF00},
	}
	path := filepath.Join(t.TempDir(), "frame.snap")

	if err := SaveFrameSnapshotToFile(snap, path); err != nil {
		t.Fatalf("SaveFrameSnapshotToFile: %v", err)
	}

	got, err := LoadFrameSnapshotFromFile(path)
	if err != nil {
		t.Fatalf("LoadFrameSnapshotFromFile: %v", err)
	}
	if got.Width != snap.Width || got.Height != snap.Height {
		t.Fatalf("dims = (%d,%d), want (%d,%d)", got.Width, got.Height, snap.Width, snap.Height)
	}
	if len(got.Pixels) != len(snap.Pixels) {
		t.Fatalf("len(Pixels) = %d, want %d", len(got.Pixels), len(snap.Pixels))
	}
	for i, p := range got.Pixels {
		if p != snap.Pixels[i] {
			t.Errorf("pixel %d = %#08x, want %#08x", i, p, snap.Pixels[i])
		}
	}
}

func TestLoadFrameSnapshotFromFile_RejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snap")
	if err := os.WriteFile(path, []byte("XXXXnonsensepayload"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrameSnapshotFromFile(path)
	if !errors.Is(err, ErrDecodeFailed) {
		t.Fatalf("err = %v, want ErrDecodeFailed", err)
	}
}

func TestLoadFrameSnapshotFromFile_RejectsFutureVersion(t *testing.T) {
	snap := FrameSnapshot{Width: 1, Height: 1, Pixels: []uint32{0xABCDEF}}
	path := filepath.Join(t.TempDir(), "future.snap")
	if err := SaveFrameSnapshotToFile(snap, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Version is the little-endian uint32 immediately after the 4-byte magic.
	data[4] = 0xFF
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	_, err = LoadFrameSnapshotFromFile(path)
	if !errors.Is(err, ErrDecodeFailed) {
		t.Fatalf("err = %v, want ErrDecodeFailed", err)
	}
}
