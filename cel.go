// cel.go - 3DO Cel image decoder
//
// Cels are the native 3DO image format: a Cel Control Block (CCB) header
// describing dimensions and pixel encoding, optionally followed by a
// palette (PLUT) and either packed (run-length) or unpacked pixel data.
// Grounded on original_source/source/ThreeDO/CelUtils.cpp/.h.

package render

import "fmt"

// CelPackMode is the per-packet encoding used within a packed Cel row.
type celPackMode uint8

const (
	celPackEnd         celPackMode = 0
	celPackLiteral     celPackMode = 1
	celPackTransparent celPackMode = 2
	celPackRepeat      celPackMode = 3
)

const (
	ccbFlagPacked = 0x00000200
	ccbFlagLinear = 0x00000010

	// celOpaqueBit marks a decoded pixel opaque; decoding from a palette
	// always sets it since palette entries carry no alpha of their own.
	celOpaqueBit uint16 = 0x8000

	// celPLUTOffset is the fixed byte offset of the palette within a Cel's
	// data, a constant the original game hardcodes rather than deriving it.
	celPLUTOffset = 60

	// celMinHeaderSize is the size of the full CCB; Cel data no longer
	// than this is rejected. The CCB's trailing width/height fields share
	// their bytes with the PLUT at celPLUTOffset and are never read.
	celMinHeaderSize = 68
)

// LoadFlags controls how Cel resource bytes are interpreted.
type LoadFlags uint32

const (
	// CelMasked treats any pixel whose low 15 bits (the 0x7FFF color bits)
	// are all zero as transparent, post-processing the decoded image into
	// one with a real alpha channel.
	CelMasked LoadFlags = 0x00000001
	// CelHasOffsets means two big-endian int16 offsets precede the CCB,
	// used for sprites that carry their own screen placement.
	CelHasOffsets LoadFlags = 0x00000002
)

// ccbHeader holds the fields of a Cel Control Block actually needed to
// decode pixel data. The CCB's own width/height struct fields are not
// modeled since the decoder derives dimensions from pre0/pre1 instead.
type ccbHeader struct {
	flags     uint32
	sourcePtr uint32
	pre0      uint32
	pre1      uint32
}

// CCB field byte offsets within the 68-byte header (see CelControlBlock).
const (
	ccbOffFlags     = 0
	ccbOffSourcePtr = 8
	ccbOffPre0      = 52
	ccbOffPre1      = 56
)

func parseCCBHeader(data []byte) (ccbHeader, error) {
	s := NewByteStream(data)
	var h ccbHeader

	read := func(offset int) (uint32, error) {
		if err := s.Seek(offset); err != nil {
			return 0, err
		}
		return s.ReadU32BE()
	}

	var err error
	if h.flags, err = read(ccbOffFlags); err != nil {
		return ccbHeader{}, fmt.Errorf("%w: ccb flags", ErrInvalidCCB)
	}
	if h.sourcePtr, err = read(ccbOffSourcePtr); err != nil {
		return ccbHeader{}, fmt.Errorf("%w: ccb sourcePtr", ErrInvalidCCB)
	}
	if h.pre0, err = read(ccbOffPre0); err != nil {
		return ccbHeader{}, fmt.Errorf("%w: ccb pre0", ErrInvalidCCB)
	}
	if h.pre1, err = read(ccbOffPre1); err != nil {
		return ccbHeader{}, fmt.Errorf("%w: ccb pre1", ErrInvalidCCB)
	}
	return h, nil
}

// width returns the HCount bits from pre1, matching burgerlib's GetShapeWidth.
func (h ccbHeader) width() uint16 {
	return uint16(h.pre1&0x7FF) + 1
}

// height returns the VCount bits from pre0, matching burgerlib's GetShapeHeight.
func (h ccbHeader) height() uint16 {
	return uint16((h.pre0>>6)&0x3FF) + 1
}

// bitsPerPixel decodes the 3-bit format code in the low bits of pre0.
// Returns 0 for an unrecognized mode.
func (h ccbHeader) bitsPerPixel() uint8 {
	switch h.pre0 & 0x07 {
	case 1:
		return 1
	case 2:
		return 2
	case 3:
		return 4
	case 4:
		return 6
	case 5:
		return 8
	case 6:
		return 16
	}
	return 0
}

func (h ccbHeader) isPacked() bool { return h.flags&ccbFlagPacked != 0 }
func (h ccbHeader) isLinear() bool { return h.flags&ccbFlagLinear != 0 }

// Image is a single decoded Cel: RGBA5551 pixels (loosely called ARGB1555
// in the original comments) plus the placement offset carried by sprites
// with CelHasOffsets.
type Image struct {
	Width, Height    uint16
	OffsetX, OffsetY int16
	Pixels           []uint16
}

func plutColor(plut []byte, idx uint8) (uint16, error) {
	off := int(idx) * 2
	if off+1 >= len(plut) {
		return 0, fmt.Errorf("%w: palette index %d out of range", ErrDecodeFailed, idx)
	}
	return uint16(plut[off])<<8 | uint16(plut[off+1]), nil
}

// decodeCelPixels dispatches to the packed or unpacked row decoder and
// returns the fully decoded pixel buffer.
func decodeCelPixels(h ccbHeader, imageData []byte, plut []byte) ([]uint16, error) {
	bpp := h.bitsPerPixel()
	if bpp == 0 || bpp > 16 {
		return nil, fmt.Errorf("%w: unsupported bpp %d", ErrDecodeFailed, bpp)
	}

	colorIndexed := !h.isLinear()
	if bpp < 8 {
		colorIndexed = true
	} else if bpp >= 16 {
		colorIndexed = false
	}

	if !colorIndexed && bpp != 16 {
		return nil, fmt.Errorf("%w: non-indexed image must be 16bpp", ErrDecodeFailed)
	}
	if colorIndexed && len(plut) == 0 {
		return nil, fmt.Errorf("%w: color-indexed image has no palette", ErrDecodeFailed)
	}

	w, height := h.width(), h.height()
	out := make([]uint16, int(w)*int(height))

	var err error
	if h.isPacked() {
		err = decodePackedCelPixels(imageData, plut, w, height, bpp, colorIndexed, out)
	} else {
		err = decodeUnpackedCelPixels(imageData, plut, w, height, bpp, colorIndexed, out)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func readPixelColor(bs *BitStream, plut []byte, bpp uint8, colorIndexed bool) (uint16, error) {
	if colorIndexed {
		idx, err := bs.ReadBitsAsUInt(bpp)
		if err != nil {
			return 0, err
		}
		color, err := plutColor(plut, uint8(idx))
		if err != nil {
			return 0, err
		}
		return color | celOpaqueBit, nil
	}
	color, err := bs.ReadBitsAsUInt(16)
	if err != nil {
		return 0, err
	}
	return uint16(color) | celOpaqueBit, nil
}

// decodeUnpackedCelPixels reads raw, non-run-length pixel rows. Most Cels
// in the game require 64-bit row alignment, but a few would overrun their
// own data if aligned, so alignment is applied only when the resulting
// total size still fits within imageData — matching the original's
// empirically-derived heuristic rather than any documented CCB flag.
func decodeUnpackedCelPixels(imageData []byte, plut []byte, w, height uint16, bpp uint8, colorIndexed bool, out []uint16) error {
	bs := NewBitStream(imageData)

	rowSizeInBits := uint32(bpp) * uint32(w)
	alignedRowSizeBytes := ((rowSizeInBits + 63) &^ 63) / 8
	doAlign := alignedRowSizeBytes*uint32(height) <= uint32(len(imageData))

	for y := uint16(0); y < height; y++ {
		if doAlign {
			if err := bs.Align64(); err != nil {
				return err
			}
		}
		for x := uint16(0); x < w; x++ {
			var color uint16
			var err error
			if colorIndexed {
				color, err = readPixelColor(bs, plut, bpp, true)
			} else {
				// Linear (already full RGBA5551) pixels keep their color
				// bits and, as in the packed path, are forced opaque.
				var raw uint64
				raw, err = bs.ReadBitsAsUInt(16)
				color = uint16(raw) | celOpaqueBit
			}
			if err != nil {
				return err
			}
			out[int(y)*int(w)+int(x)] = color
		}
	}
	return nil
}

// decodePackedCelPixels reads run-length encoded rows: each row starts
// with an offset to the next row, then a sequence of END/LITERAL/
// TRANSPARENT/REPEAT packets.
func decodePackedCelPixels(imageData []byte, plut []byte, w, height uint16, bpp uint8, colorIndexed bool, out []uint16) error {
	pos := 0

	for y := uint16(0); y < height; y++ {
		rowData := imageData[min(pos, len(imageData)):]
		bs := NewBitStream(rowData)

		var nextRowOffset uint64
		var err error
		if bpp >= 8 {
			nextRowOffset, err = bs.ReadBitsAsUInt(16)
			nextRowOffset &= 0x3FF
		} else {
			nextRowOffset, err = bs.ReadBitsAsUInt(8)
		}
		if err != nil {
			return err
		}
		// 3DO Doom and the GIMP Cel plugin both apply this same adjustment
		// to turn the raw field into a byte count; origin undocumented.
		nextRowOffset = (nextRowOffset + 2) * 4
		rowSize := uint32(nextRowOffset)

		rowPixels := out[int(y)*int(w) : int(y)*int(w)+int(w)]
		x := uint16(0)

		for {
			modeBits, err := bs.ReadBitsAsUInt(2)
			if err != nil {
				return err
			}
			mode := celPackMode(modeBits)

			if mode == celPackEnd {
				for i := x; i < w; i++ {
					rowPixels[i] = 0
				}
				break
			}

			countBits, err := bs.ReadBitsAsUInt(6)
			if err != nil {
				return err
			}
			count := uint16(countBits) + 1
			if int(x)+int(count) > int(w) {
				return fmt.Errorf("%w: packet overruns row width", ErrDecodeFailed)
			}

			switch mode {
			case celPackLiteral:
				end := x + count
				for x < end {
					color, err := readPixelColor(bs, plut, bpp, colorIndexed)
					if err != nil {
						return err
					}
					rowPixels[x] = color
					x++
				}
			case celPackTransparent:
				for i := uint16(0); i < count; i++ {
					rowPixels[x+i] = 0
				}
				x += count
			case celPackRepeat:
				color, err := readPixelColor(bs, plut, bpp, colorIndexed)
				if err != nil {
					return err
				}
				end := x + count
				for x < end {
					rowPixels[x] = color
					x++
				}
			}

			if !(bs.ByteIndex() < rowSize && x < w) {
				break
			}
		}

		pos += int(rowSize)
	}
	return nil
}

// applyMask turns a masked Cel (a pixel whose 0x7FFF color bits are all
// zero is transparent) into one with a real alpha bit: transparent pixels
// become all-zero, everything else gets the opaque bit forced on.
func applyMask(pixels []uint16) {
	const transMask = 0x7FFF
	for i, p := range pixels {
		if p&transMask == 0 {
			pixels[i] = 0
		} else {
			pixels[i] = p | celOpaqueBit
		}
	}
}

func readU32BE(data []byte) uint32 {
	return uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
}

// DecodeCelImage decodes a single Cel resource: an optional offset pair,
// a CCB header, a palette, and pixel data. Grounded on
// CelUtils::loadRezFileCelImage.
func DecodeCelImage(data []byte, flags LoadFlags) (Image, error) {
	pos := 0
	var offsetX, offsetY int16

	if flags&CelHasOffsets != 0 {
		if len(data) <= 4 {
			return Image{}, fmt.Errorf("%w: cel too small for offsets", ErrInvalidCCB)
		}
		offsetX = int16(uint16(data[0])<<8 | uint16(data[1]))
		offsetY = int16(uint16(data[2])<<8 | uint16(data[3]))
		pos = 4
	}

	celData := data[pos:]
	if len(celData) <= celMinHeaderSize {
		return Image{}, fmt.Errorf("%w: cel data too small for header and palette", ErrInvalidCCB)
	}

	header, err := parseCCBHeader(celData)
	if err != nil {
		return Image{}, err
	}

	imageDataOffset := header.sourcePtr + 12
	if imageDataOffset >= uint32(len(celData)) {
		return Image{}, fmt.Errorf("%w: image data offset out of range", ErrInvalidCCB)
	}

	w, height := header.width(), header.height()
	if w == 0 || height == 0 {
		return Image{}, fmt.Errorf("%w: zero-sized cel", ErrInvalidCCB)
	}

	plut := celData[celPLUTOffset:]
	imageData := celData[imageDataOffset:]

	pixels, err := decodeCelPixels(header, imageData, plut)
	if err != nil {
		return Image{}, err
	}

	img := Image{Width: w, Height: height, OffsetX: offsetX, OffsetY: offsetY, Pixels: pixels}
	if flags&CelMasked != 0 {
		applyMask(img.Pixels)
	}
	return img, nil
}

// DecodeCelImages decodes a resource holding an array of Cels, each
// addressed by a leading table of big-endian byte offsets — the offset
// to the first image doubles as the table's own byte length. Grounded on
// CelUtils::loadRezFileCelImages.
func DecodeCelImages(data []byte, flags LoadFlags) ([]Image, error) {
	if len(data) <= 4 {
		return nil, fmt.Errorf("%w: cel array too small", ErrInvalidCCB)
	}

	firstOffset := readU32BE(data)
	numImages := firstOffset / 4
	if numImages == 0 || uint32(len(data)) <= numImages*4 {
		return nil, fmt.Errorf("%w: invalid cel array offset table", ErrInvalidCCB)
	}

	images := make([]Image, numImages)
	for i := uint32(0); i < numImages; i++ {
		thisOffset := readU32BE(data[i*4:])
		var nextOffset uint32
		if i+1 < numImages {
			nextOffset = readU32BE(data[(i+1)*4:])
		} else {
			nextOffset = uint32(len(data))
		}
		if thisOffset >= uint32(len(data)) || nextOffset < thisOffset || nextOffset > uint32(len(data)) {
			return nil, fmt.Errorf("%w: cel array entry %d out of range", ErrInvalidCCB, i)
		}

		img, err := DecodeCelImage(data[thisOffset:nextOffset], flags)
		if err != nil {
			return nil, fmt.Errorf("cel array entry %d: %w", i, err)
		}
		images[i] = img
	}
	return images, nil
}
