// sprite.go - Doom sprite decoder
//
// A sprite resource packs one or more animation frames, each either a
// single direction of Cel image data or eight (one per 45-degree viewing
// angle), addressed by a leading table of big-endian offsets tagged with
// flip/rotated flags. Grounded on original_source/source/GFX/Sprites.cpp/.h.

package render

import "fmt"

// NumSpriteDirections is the number of viewing angles a rotated sprite
// frame can carry, one every 45 degrees.
const NumSpriteDirections = 8

// Flags encoded in the high bits of a frame/angle offset field.
const (
	sprOffsetFlagFlip        = uint32(0x80000000)
	sprOffsetFlagRotated     = uint32(0x40000000)
	sprRemoveOffsetFlagsMask = uint32(0x3FFFFFFF)
)

// spriteImageHeader precedes the pixel data for a single sprite frame
// angle: where the first column/row is drawn relative to the sprite's
// screen position.
type spriteImageHeader struct {
	leftOffset int16
	topOffset  int16
}

const spriteImageHeaderSize = 4

// SpriteFrameAngle is one decoded viewing angle of a sprite frame. Doom
// sprites are stored column-major, so Width/Height below are already
// swapped from the underlying Cel image's own width/height.
type SpriteFrameAngle struct {
	Pixels     []uint16
	Width      uint16
	Height     uint16
	Flipped    bool
	LeftOffset int16
	TopOffset  int16
}

// SpriteFrame is one animation frame of a sprite, one angle per viewing
// direction. A non-rotated frame has every angle pointing at the same
// decoded image.
type SpriteFrame struct {
	Angles [NumSpriteDirections]SpriteFrameAngle
}

// Sprite is a fully decoded sprite resource: every frame, every angle.
type Sprite struct {
	Frames      []SpriteFrame
	ResourceNum uint32
}

// decodedSpriteImage caches one decoded Cel image by its byte offset
// within the raw sprite resource, so frames/angles that alias the same
// data are only decoded once.
type decodedSpriteImage struct {
	pixels []uint16
	width  uint16
	height uint16
}

// DecodeSprite decodes a raw sprite resource's bytes into a Sprite.
// Grounded on Sprites::load.
func DecodeSprite(data []byte, resourceNum uint32) (*Sprite, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: sprite data too small", ErrDecodeFailed)
	}

	firstFrameOffsetWithFlags := readU32BE(data)
	firstFrameOffset := firstFrameOffsetWithFlags & sprRemoveOffsetFlagsMask
	if firstFrameOffset%4 != 0 {
		return nil, fmt.Errorf("%w: sprite frame table offset not word-aligned", ErrDecodeFailed)
	}
	numFrames := firstFrameOffset / 4
	if numFrames == 0 || uint32(len(data)) < numFrames*4 {
		return nil, fmt.Errorf("%w: invalid sprite frame table", ErrDecodeFailed)
	}

	sprite := &Sprite{
		Frames:      make([]SpriteFrame, numFrames),
		ResourceNum: resourceNum,
	}

	// pendingByOffset records, per image-data byte offset, every frame
	// angle that needs it (imageOffsetOrder keeps each offset once), so the
	// decode pass below can be driven purely off the deduplicated offset set
	// rather than re-walking frame headers.
	type pendingAngle struct {
		frameIdx, angleIdx int
	}
	imageOffsetOrder := []uint32{}
	pendingByOffset := make(map[uint32][]pendingAngle)

	addPending := func(imageDataOffset uint32, frameIdx, angleIdx int) {
		if _, seen := pendingByOffset[imageDataOffset]; !seen {
			imageOffsetOrder = append(imageOffsetOrder, imageDataOffset)
		}
		pendingByOffset[imageDataOffset] = append(pendingByOffset[imageDataOffset], pendingAngle{frameIdx, angleIdx})
	}

	readHeader := func(offset uint32) (spriteImageHeader, error) {
		if uint64(offset)+spriteImageHeaderSize > uint64(len(data)) {
			return spriteImageHeader{}, fmt.Errorf("%w: sprite frame header out of range", ErrDecodeFailed)
		}
		h := data[offset:]
		return spriteImageHeader{
			leftOffset: int16(uint16(h[0])<<8 | uint16(h[1])),
			topOffset:  int16(uint16(h[2])<<8 | uint16(h[3])),
		}, nil
	}

	for frameIdx := uint32(0); frameIdx < numFrames; frameIdx++ {
		frame := &sprite.Frames[frameIdx]

		if uint64(frameIdx)*4+4 > uint64(len(data)) {
			return nil, fmt.Errorf("%w: sprite frame table truncated", ErrDecodeFailed)
		}
		frameOffsetWithFlags := readU32BE(data[frameIdx*4:])
		frameOffset := frameOffsetWithFlags & sprRemoveOffsetFlagsMask

		if frameOffsetWithFlags&sprOffsetFlagRotated != 0 {
			// Frame defines one header+image per viewing angle, addressed by
			// a second table of offsets relative to frameOffset.
			if uint64(frameOffset)+4*NumSpriteDirections > uint64(len(data)) {
				return nil, fmt.Errorf("%w: sprite angle table out of range", ErrDecodeFailed)
			}
			for angle := 0; angle < NumSpriteDirections; angle++ {
				angleOffsetWithFlags := frameOffset + readU32BE(data[frameOffset+uint32(angle)*4:])
				angleOffset := angleOffsetWithFlags & sprRemoveOffsetFlagsMask
				imageDataOffset := angleOffset + spriteImageHeaderSize

				header, err := readHeader(angleOffset)
				if err != nil {
					return nil, err
				}

				frame.Angles[angle] = SpriteFrameAngle{
					Flipped:    angleOffsetWithFlags&sprOffsetFlagFlip != 0,
					LeftOffset: header.leftOffset,
					TopOffset:  header.topOffset,
				}
				addPending(imageDataOffset, int(frameIdx), angle)
			}
		} else {
			// A single direction of data is defined; every angle shares it.
			imageDataOffset := frameOffset + spriteImageHeaderSize

			header, err := readHeader(frameOffset)
			if err != nil {
				return nil, err
			}

			base := SpriteFrameAngle{
				Flipped:    frameOffsetWithFlags&sprOffsetFlagFlip != 0,
				LeftOffset: header.leftOffset,
				TopOffset:  header.topOffset,
			}
			for angle := 0; angle < NumSpriteDirections; angle++ {
				frame.Angles[angle] = base
				addPending(imageDataOffset, int(frameIdx), angle)
			}
		}
	}

	// Decode each unique image once. The size of an image's data is bounded
	// by the next distinct offset in ascending order, or the end of the
	// sprite resource for the last one — mirroring Sprites::load's use of
	// a sorted map of offsets to delimit each image's extent.
	sortedOffsets := append([]uint32(nil), imageOffsetOrder...)
	sortUint32s(sortedOffsets)

	decoded := make(map[uint32]decodedSpriteImage, len(sortedOffsets))
	for i, off := range sortedOffsets {
		var end uint32
		if i+1 < len(sortedOffsets) {
			end = sortedOffsets[i+1]
		} else {
			end = uint32(len(data))
		}
		if off >= end || end > uint32(len(data)) {
			return nil, fmt.Errorf("%w: sprite image data out of range", ErrDecodeFailed)
		}

		img, err := DecodeCelImage(data[off:end], 0)
		if err != nil {
			return nil, fmt.Errorf("sprite image at offset %d: %w", off, err)
		}
		decoded[off] = decodedSpriteImage{pixels: img.Pixels, width: img.Width, height: img.Height}
	}

	for off, pendings := range pendingByOffset {
		img, ok := decoded[off]
		if !ok {
			return nil, fmt.Errorf("%w: missing decoded image for offset %d", ErrDecodeFailed, off)
		}
		if img.width == 0 || img.height == 0 {
			return nil, fmt.Errorf("%w: zero-sized sprite image", ErrDecodeFailed)
		}
		for _, p := range pendings {
			angle := &sprite.Frames[p.frameIdx].Angles[p.angleIdx]
			angle.Pixels = img.pixels
			// Sprite pixel data is stored column-major, so the decoded
			// Cel's width/height are swapped here to describe the sprite
			// as it is actually drawn.
			angle.Width = img.height
			angle.Height = img.width
		}
	}

	return sprite, nil
}

// sortUint32s sorts a uint32 slice ascending; sort.Slice avoided to keep
// this file free of an extra import for a single call site.
func sortUint32s(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// SpriteCache provides lazy-load, load-once access to the sprites within
// an archive's sprite resource-number range, mirroring the Sprites
// package's init/load/free/shutdown lifecycle.
type SpriteCache struct {
	archive     *Archive
	firstResNum uint32
	endResNum   uint32
	sprites     []*Sprite
}

// NewSpriteCache reserves cache slots for the given resource-number range
// (first inclusive, end exclusive), matching getFirstSpriteResourceNum/
// getEndSpriteResourceNum.
func NewSpriteCache(archive *Archive, firstResNum, endResNum uint32) *SpriteCache {
	count := 0
	if endResNum > firstResNum {
		count = int(endResNum - firstResNum)
	}
	return &SpriteCache{
		archive:     archive,
		firstResNum: firstResNum,
		endResNum:   endResNum,
		sprites:     make([]*Sprite, count),
	}
}

func (c *SpriteCache) indexFor(resourceNum uint32) (int, error) {
	if resourceNum < c.firstResNum || resourceNum >= c.endResNum {
		return 0, fmt.Errorf("%w: sprite resource %d out of range", ErrResourceNotFound, resourceNum)
	}
	return int(resourceNum - c.firstResNum), nil
}

// Get returns the sprite at resourceNum if already loaded, else nil.
func (c *SpriteCache) Get(resourceNum uint32) (*Sprite, error) {
	idx, err := c.indexFor(resourceNum)
	if err != nil {
		return nil, err
	}
	return c.sprites[idx], nil
}

// Load decodes and caches the sprite at resourceNum, or returns the
// already-cached one if a previous Load has not been Freed.
func (c *SpriteCache) Load(resourceNum uint32) (*Sprite, error) {
	idx, err := c.indexFor(resourceNum)
	if err != nil {
		return nil, err
	}
	if c.sprites[idx] != nil {
		return c.sprites[idx], nil
	}

	if err := c.archive.Load(resourceNum); err != nil {
		return nil, err
	}
	data := c.archive.GetData(resourceNum)

	sprite, err := DecodeSprite(data, resourceNum)
	if err != nil {
		return nil, err
	}
	c.sprites[idx] = sprite
	return sprite, nil
}

// Free discards the cached sprite, if any, at resourceNum.
func (c *SpriteCache) Free(resourceNum uint32) {
	idx, err := c.indexFor(resourceNum)
	if err != nil {
		return
	}
	c.sprites[idx] = nil
	c.archive.Free(resourceNum)
}

// FreeAll discards every cached sprite.
func (c *SpriteCache) FreeAll() {
	for num := c.firstResNum; num < c.endResNum; num++ {
		c.Free(num)
	}
}
