// cel_test.go - Tests for the 3DO Cel image decoder

package render

import (
	"encoding/binary"
	"testing"
)

// testBitWriter packs MSB-first bits into bytes, mirroring the decoder's
// own BitStream but in the write direction, for building synthetic
// packed-row Cel test fixtures.
type testBitWriter struct {
	bytes  []byte
	bitPos int // number of bits already written into the final byte
}

func (w *testBitWriter) writeBits(value uint64, numBits int) {
	for i := numBits - 1; i >= 0; i-- {
		bit := byte((value >> uint(i)) & 1)
		if w.bitPos == 0 {
			w.bytes = append(w.bytes, 0)
		}
		w.bytes[len(w.bytes)-1] |= bit << (7 - w.bitPos)
		w.bitPos = (w.bitPos + 1) % 8
	}
}

// buildCCBHeader assembles the 60-byte region preceding the PLUT with only
// the fields the decoder reads populated; the rest mirror unused padding
// in the real format.
func buildCCBHeader(flags, sourcePtr, pre0, pre1 uint32) []byte {
	h := make([]byte, 60)
	binary.BigEndian.PutUint32(h[ccbOffFlags:], flags)
	binary.BigEndian.PutUint32(h[ccbOffSourcePtr:], sourcePtr)
	binary.BigEndian.PutUint32(h[ccbOffPre0:], pre0)
	binary.BigEndian.PutUint32(h[ccbOffPre1:], pre1)
	return h
}

func TestDecodeCelImage_UnpackedIndexed(t *testing.T) {
	const w, h = 2, 1
	pre0 := uint32(5) | uint32(h-1)<<6 // bpp mode 5 (8bpp), VCount
	pre1 := uint32(w - 1)              // HCount

	plut := make([]byte, 8) // 4 palette entries, only first 2 used
	binary.BigEndian.PutUint16(plut[0:], 0x1234)
	binary.BigEndian.PutUint16(plut[2:], 0x5678)

	imageData := []byte{0x00, 0x01} // color indices 0 and 1

	sourcePtr := uint32(60 + len(plut) - 12) // imageDataOffset = sourcePtr+12 = 60(header)+len(plut)
	header := buildCCBHeader(0, sourcePtr, pre0, pre1)

	celData := append(append(append([]byte{}, header...), plut...), imageData...)

	img, err := DecodeCelImage(celData, 0)
	if err != nil {
		t.Fatalf("DecodeCelImage failed: %v", err)
	}
	if img.Width != w || img.Height != h {
		t.Fatalf("got %dx%d, want %dx%d", img.Width, img.Height, w, h)
	}
	want := []uint16{0x1234 | celOpaqueBit, 0x5678 | celOpaqueBit}
	for i, p := range want {
		if img.Pixels[i] != p {
			t.Errorf("pixel %d = 0x%04X, want 0x%04X", i, img.Pixels[i], p)
		}
	}
}

func TestDecodeCelImage_Packed(t *testing.T) {
	const w, h = 3, 1
	pre0 := uint32(5) | uint32(h-1)<<6
	pre1 := uint32(w - 1)

	plut := make([]byte, 8)
	binary.BigEndian.PutUint16(plut[0:], 0x0100) // index 0
	binary.BigEndian.PutUint16(plut[2:], 0x0200) // index 1

	bw := &testBitWriter{}
	bw.writeBits(0, 16)             // next-row offset field (unused, single row)
	bw.writeBits(1, 2)               // LITERAL
	bw.writeBits(0, 6)               // count-1 => count 1
	bw.writeBits(0, 8)               // color index 0
	bw.writeBits(3, 2)               // REPEAT
	bw.writeBits(1, 6)               // count-1 => count 2
	bw.writeBits(1, 8)               // color index 1
	bw.writeBits(0, 2)               // END
	imageData := bw.bytes

	sourcePtr := uint32(60 + len(plut) - 12)
	header := buildCCBHeader(ccbFlagPacked, sourcePtr, pre0, pre1)
	celData := append(append(append([]byte{}, header...), plut...), imageData...)

	img, err := DecodeCelImage(celData, 0)
	if err != nil {
		t.Fatalf("DecodeCelImage failed: %v", err)
	}
	want := []uint16{
		0x0100 | celOpaqueBit,
		0x0200 | celOpaqueBit,
		0x0200 | celOpaqueBit,
	}
	for i, p := range want {
		if img.Pixels[i] != p {
			t.Errorf("pixel %d = 0x%04X, want 0x%04X", i, img.Pixels[i], p)
		}
	}
}

func TestDecodeCelImage_Masked(t *testing.T) {
	const w, h = 2, 1
	pre0 := uint32(5) | uint32(h-1)<<6
	pre1 := uint32(w - 1)

	plut := make([]byte, 8)
	binary.BigEndian.PutUint16(plut[0:], 0x0000) // transparent color (all zero)
	binary.BigEndian.PutUint16(plut[2:], 0x1234)

	imageData := []byte{0x00, 0x01}
	sourcePtr := uint32(60 + len(plut) - 12)
	header := buildCCBHeader(0, sourcePtr, pre0, pre1)
	celData := append(append(append([]byte{}, header...), plut...), imageData...)

	img, err := DecodeCelImage(celData, CelMasked)
	if err != nil {
		t.Fatalf("DecodeCelImage failed: %v", err)
	}
	if img.Pixels[0] != 0 {
		t.Errorf("masked transparent pixel = 0x%04X, want 0", img.Pixels[0])
	}
	if img.Pixels[1] != (0x1234 | celOpaqueBit) {
		t.Errorf("masked opaque pixel = 0x%04X, want 0x%04X", img.Pixels[1], 0x1234|celOpaqueBit)
	}
}

func TestDecodeCelImage_WithOffsets(t *testing.T) {
	const w, h = 1, 1
	pre0 := uint32(5) | uint32(h-1)<<6
	pre1 := uint32(w - 1)

	plut := make([]byte, 12) // padded out so celData clears the minimum header size
	binary.BigEndian.PutUint16(plut[0:], 0x0321)

	imageData := []byte{0x00}
	sourcePtr := uint32(60 + len(plut) - 12)
	header := buildCCBHeader(0, sourcePtr, pre0, pre1)
	celData := append(append(append([]byte{}, header...), plut...), imageData...)

	offsets := []byte{0xFF, 0xF8, 0x00, 0x05} // offsetX=-8, offsetY=5
	data := append(append([]byte{}, offsets...), celData...)

	img, err := DecodeCelImage(data, CelHasOffsets)
	if err != nil {
		t.Fatalf("DecodeCelImage failed: %v", err)
	}
	if img.OffsetX != -8 || img.OffsetY != 5 {
		t.Errorf("offsets = (%d,%d), want (-8,5)", img.OffsetX, img.OffsetY)
	}
}

func TestDecodeCelImages_Array(t *testing.T) {
	const w, h = 1, 1
	pre0 := uint32(5) | uint32(h-1)<<6
	pre1 := uint32(w - 1)

	buildOne := func(colorIdx byte, color uint16) []byte {
		plut := make([]byte, 12) // padded out so celData clears the minimum header size
		binary.BigEndian.PutUint16(plut[0:], color)
		sourcePtr := uint32(60 + len(plut) - 12)
		header := buildCCBHeader(0, sourcePtr, pre0, pre1)
		return append(append(append([]byte{}, header...), plut...), colorIdx)
	}

	img0 := buildOne(0, 0x1111)
	img1 := buildOne(0, 0x2222)

	off0 := uint32(8) // two offsets => 2*4 = 8 bytes
	off1 := off0 + uint32(len(img0))
	total := off1 + uint32(len(img1))

	data := make([]byte, total)
	binary.BigEndian.PutUint32(data[0:], off0)
	binary.BigEndian.PutUint32(data[4:], off1)
	copy(data[off0:], img0)
	copy(data[off1:], img1)

	images, err := DecodeCelImages(data, 0)
	if err != nil {
		t.Fatalf("DecodeCelImages failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2", len(images))
	}
	if images[0].Pixels[0] != (0x1111 | celOpaqueBit) {
		t.Errorf("image 0 pixel = 0x%04X", images[0].Pixels[0])
	}
	if images[1].Pixels[0] != (0x2222 | celOpaqueBit) {
		t.Errorf("image 1 pixel = 0x%04X", images[1].Pixels[0])
	}
}
