// sprite_test.go - Tests for the Doom sprite decoder

package render

import (
	"encoding/binary"
	"testing"
)

// buildSpriteCelBytes builds a single-row, 8bpp color-indexed Cel
// (header+palette+pixel indices) suitable for embedding in a synthetic
// sprite resource, reusing the CCB layout helpers from cel_test.go.
func buildSpriteCelBytes(width uint16, colorIndices []byte, colors []uint16) []byte {
	pre0 := uint32(5) // bpp mode 5 (8bpp), height 1 -> VCount field stays 0
	pre1 := uint32(width - 1)

	plut := make([]byte, 12)
	for i, c := range colors {
		binary.BigEndian.PutUint16(plut[i*2:], c)
	}

	sourcePtr := uint32(60 + len(plut) - 12)
	header := buildCCBHeader(0, sourcePtr, pre0, pre1)
	return append(append(append([]byte{}, header...), plut...), colorIndices...)
}

func TestDecodeSprite_SingleDirection(t *testing.T) {
	celBytes := buildSpriteCelBytes(2, []byte{0, 1}, []uint16{0x1111, 0x2222})

	data := make([]byte, 0, 8+len(celBytes))
	data = binary.BigEndian.AppendUint32(data, 4) // firstFrameOffset: 1 frame, table is 4 bytes
	data = binary.BigEndian.AppendUint32(data, 0) // placeholder for leftOffset/topOffset header
	data = append(data, celBytes...)

	// Patch the sprite image header (leftOffset=-3, topOffset=7) at offset 4.
	binary.BigEndian.PutUint16(data[4:], uint16(int16(-3)))
	binary.BigEndian.PutUint16(data[6:], uint16(int16(7)))

	sprite, err := DecodeSprite(data, 500)
	if err != nil {
		t.Fatalf("DecodeSprite failed: %v", err)
	}
	if len(sprite.Frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(sprite.Frames))
	}
	if sprite.ResourceNum != 500 {
		t.Errorf("ResourceNum = %d, want 500", sprite.ResourceNum)
	}

	frame := sprite.Frames[0]
	for angle := 0; angle < NumSpriteDirections; angle++ {
		a := frame.Angles[angle]
		if a.LeftOffset != -3 || a.TopOffset != 7 {
			t.Errorf("angle %d offsets = (%d,%d), want (-3,7)", angle, a.LeftOffset, a.TopOffset)
		}
		if a.Flipped {
			t.Errorf("angle %d unexpectedly flipped", angle)
		}
		// The underlying Cel is 2 wide, 1 tall; sprite storage is
		// column-major so the decoded angle should report 1x2.
		if a.Width != 1 || a.Height != 2 {
			t.Errorf("angle %d dims = %dx%d, want 1x2", angle, a.Width, a.Height)
		}
		want := []uint16{0x1111 | celOpaqueBit, 0x2222 | celOpaqueBit}
		for i, p := range want {
			if a.Pixels[i] != p {
				t.Errorf("angle %d pixel %d = 0x%04X, want 0x%04X", angle, i, a.Pixels[i], p)
			}
		}
	}
}

func TestDecodeSprite_Rotated(t *testing.T) {
	celBytes := buildSpriteCelBytes(1, []byte{0}, []uint16{0x3333})

	const frameOffset = 4
	const angleTableSize = 4 * NumSpriteDirections
	const headerOffset = frameOffset + angleTableSize
	const relOffset = angleTableSize // header sits right after the angle table

	data := make([]byte, headerOffset+4+len(celBytes))
	binary.BigEndian.PutUint32(data[0:], sprOffsetFlagRotated|frameOffset)

	for angle := 0; angle < NumSpriteDirections; angle++ {
		raw := uint32(relOffset)
		if angle == 3 {
			raw |= sprOffsetFlagFlip
		}
		binary.BigEndian.PutUint32(data[frameOffset+angle*4:], raw)
	}

	binary.BigEndian.PutUint16(data[headerOffset:], uint16(int16(2)))  // leftOffset
	binary.BigEndian.PutUint16(data[headerOffset+2:], uint16(int16(0))) // topOffset
	copy(data[headerOffset+4:], celBytes)

	sprite, err := DecodeSprite(data, 600)
	if err != nil {
		t.Fatalf("DecodeSprite failed: %v", err)
	}
	frame := sprite.Frames[0]

	for angle := 0; angle < NumSpriteDirections; angle++ {
		a := frame.Angles[angle]
		wantFlipped := angle == 3
		if a.Flipped != wantFlipped {
			t.Errorf("angle %d flipped = %v, want %v", angle, a.Flipped, wantFlipped)
		}
		if a.LeftOffset != 2 {
			t.Errorf("angle %d leftOffset = %d, want 2", angle, a.LeftOffset)
		}
		if len(a.Pixels) != 1 || a.Pixels[0] != (0x3333|celOpaqueBit) {
			t.Errorf("angle %d pixels = %v, want [0x%04X]", angle, a.Pixels, 0x3333|celOpaqueBit)
		}
	}
}

func TestSpriteCache_LoadFreeLifecycle(t *testing.T) {
	celBytes := buildSpriteCelBytes(1, []byte{0}, []uint16{0x4444})
	spriteData := make([]byte, 0, 8+len(celBytes))
	spriteData = binary.BigEndian.AppendUint32(spriteData, 4)
	spriteData = binary.BigEndian.AppendUint32(spriteData, 0)
	spriteData = append(spriteData, celBytes...)

	archiveData := buildTestArchive(100, [][]byte{spriteData})
	archive, err := OpenArchive(archiveData)
	if err != nil {
		t.Fatalf("OpenArchive failed: %v", err)
	}

	cache := NewSpriteCache(archive, 100, 101)

	if _, err := cache.Get(100); err != nil {
		t.Fatalf("Get before Load errored: %v", err)
	}

	sprite, err := cache.Load(100)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sprite.Frames[0].Angles[0].Pixels[0] != (0x4444 | celOpaqueBit) {
		t.Errorf("loaded sprite pixel wrong: 0x%04X", sprite.Frames[0].Angles[0].Pixels[0])
	}

	again, err := cache.Load(100)
	if err != nil || again != sprite {
		t.Errorf("second Load should return the cached sprite unchanged")
	}

	cache.Free(100)
	cached, err := cache.Get(100)
	if err != nil {
		t.Fatalf("Get after Free errored: %v", err)
	}
	if cached != nil {
		t.Errorf("Get after Free = %v, want nil", cached)
	}

	if _, err := cache.Load(999); err == nil {
		t.Fatal("expected error loading out-of-range resource number")
	}
}
