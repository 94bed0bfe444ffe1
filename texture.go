// texture.go - wall and flat (floor/ceiling) texture decoder
//
// Wall and flat textures share one palette-indexed resource layout: a
// small RGBA5551 lookup table followed by packed low-bit-depth pixel
// indices. Flats are always 64x64; wall texture dimensions come from a
// shared texture-info resource read once up front.
// Grounded on original_source/source/GFX/Textures.cpp/.h.

package render

import "fmt"

const (
	wallPLUTEntries = 16 // 4-bit indices
	wallPLUTBytes   = wallPLUTEntries * 2
	flatPLUTEntries = 32 // 5-bit indices
	flatPLUTBytes   = flatPLUTEntries * 2
	flatWidth       = 64
	flatHeight      = 64

	textureInfoHeaderSize = 16 // 4 big-endian uint32 fields
	textureInfoEntrySize  = 12 // width, height, unused
)

// Texture is a single decoded wall or flat, plus the bookkeeping gameplay
// code uses to animate it. Pixels is nil until Load is called on its set.
type Texture struct {
	Width, Height uint32
	ResourceNum   uint32
	// AnimTexNum is the texture index to substitute for this one when
	// rendering; gameplay advances it to animate the texture. It starts
	// out pointing at the texture itself.
	AnimTexNum uint32
	Pixels     []uint16
}

// decodeWallTextureImage unpacks a wall texture: a 32-byte, 16-entry
// RGBA5551 palette followed by 4-bit color indices, two pixels per byte,
// high nibble first.
func decodeWallTextureImage(data []byte, width, height uint32) ([]uint16, error) {
	if width%2 != 0 {
		return nil, fmt.Errorf("%w: odd-sized wall texture %dx%d", ErrDecodeFailed, width, height)
	}
	numPixels := width * height
	needed := wallPLUTBytes + (numPixels+1)/2
	if uint64(len(data)) < uint64(needed) {
		return nil, fmt.Errorf("%w: wall texture data too small", ErrDecodeFailed)
	}

	plut := data[:wallPLUTBytes]
	srcPixels := data[wallPLUTBytes:]

	out := make([]uint16, numPixels)
	for i := uint32(0); i < numPixels; i += 2 {
		b := srcPixels[i/2]
		idx1 := b >> 4
		idx2 := b & 0x0F
		c1, err := plutColor(plut, idx1)
		if err != nil {
			return nil, err
		}
		out[i] = c1
		if i+1 < numPixels {
			c2, err := plutColor(plut, idx2)
			if err != nil {
				return nil, err
			}
			out[i+1] = c2
		}
	}
	return out, nil
}

// decodeFlatTextureImage unpacks a 64x64 flat: a 64-byte, 32-entry
// RGBA5551 palette followed by one 5-bit color index per byte (the top 3
// bits of each source byte are ignored).
func decodeFlatTextureImage(data []byte) ([]uint16, error) {
	const numPixels = flatWidth * flatHeight
	needed := flatPLUTBytes + numPixels
	if len(data) < needed {
		return nil, fmt.Errorf("%w: flat texture data too small", ErrDecodeFailed)
	}

	plut := data[:flatPLUTBytes]
	srcPixels := data[flatPLUTBytes : flatPLUTBytes+numPixels]

	out := make([]uint16, numPixels)
	for i, b := range srcPixels {
		c, err := plutColor(plut, b&0x1F)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// TextureSet is a lazily-decoded collection of either all wall textures
// or all flat textures, indexed 0..NumTextures()-1 rather than by archive
// resource number (matching the original's index-based wall/flat tables).
type TextureSet struct {
	archive  *Archive
	textures []Texture
	isWall   bool
}

// NumTextures returns the number of textures in the set.
func (s *TextureSet) NumTextures() int { return len(s.textures) }

// Get returns the texture at the given index; Pixels is nil if it has not
// been Loaded.
func (s *TextureSet) Get(num uint32) (*Texture, error) {
	if num >= uint32(len(s.textures)) {
		return nil, fmt.Errorf("%w: texture index %d", ErrResourceNotFound, num)
	}
	return &s.textures[num], nil
}

// Load decodes and caches the pixels for a texture, a no-op if already
// loaded.
func (s *TextureSet) Load(num uint32) error {
	tex, err := s.Get(num)
	if err != nil {
		return err
	}
	if tex.Pixels != nil {
		return nil
	}

	if err := s.archive.Load(tex.ResourceNum); err != nil {
		return err
	}
	data := s.archive.GetData(tex.ResourceNum)

	var pixels []uint16
	if s.isWall {
		pixels, err = decodeWallTextureImage(data, tex.Width, tex.Height)
	} else {
		pixels, err = decodeFlatTextureImage(data)
	}
	// The raw resource is never needed again once decoded, matching
	// Textures::loadTexture freeing it immediately after decode.
	s.archive.Free(tex.ResourceNum)
	if err != nil {
		return err
	}

	tex.Pixels = pixels
	return nil
}

// Free discards the decoded pixels for a texture, if loaded.
func (s *TextureSet) Free(num uint32) {
	if tex, err := s.Get(num); err == nil {
		tex.Pixels = nil
	}
}

// FreeAll discards every loaded texture's pixels.
func (s *TextureSet) FreeAll() {
	for i := range s.textures {
		s.textures[i].Pixels = nil
	}
}

// SetAnimTexNum points a texture at a replacement to substitute for it
// when rendering, advancing its animation.
func (s *TextureSet) SetAnimTexNum(num, animTexNum uint32) error {
	tex, err := s.Get(num)
	if err != nil {
		return err
	}
	if animTexNum >= uint32(len(s.textures)) {
		return fmt.Errorf("%w: anim texture index %d", ErrResourceNotFound, animTexNum)
	}
	tex.AnimTexNum = animTexNum
	return nil
}

// GetAnim dereferences a texture's AnimTexNum, returning the texture that
// should actually be drawn in its place.
func (s *TextureSet) GetAnim(num uint32) (*Texture, error) {
	tex, err := s.Get(num)
	if err != nil {
		return nil, err
	}
	return s.Get(tex.AnimTexNum)
}

// TextureLibrary holds the wall and flat texture sets decoded from a
// single texture-info resource.
type TextureLibrary struct {
	Wall                 *TextureSet
	Flat                 *TextureSet
	FirstWallResourceNum uint32
	FirstFlatResourceNum uint32
}

// LoadTextureLibrary reads the texture-info resource (wall/flat counts,
// first resource numbers, and each wall texture's dimensions; flats are
// always 64x64) and builds the wall and flat texture sets. Grounded on
// Textures::init.
func LoadTextureLibrary(archive *Archive, textureInfoResourceNum uint32) (*TextureLibrary, error) {
	if err := archive.Load(textureInfoResourceNum); err != nil {
		return nil, err
	}
	data := archive.GetData(textureInfoResourceNum)
	defer archive.Free(textureInfoResourceNum)

	if len(data) < textureInfoHeaderSize {
		return nil, fmt.Errorf("%w: texture info resource too small", ErrDecodeFailed)
	}
	numWall := readU32BE(data)
	firstWall := readU32BE(data[4:])
	numFlat := readU32BE(data[8:])
	firstFlat := readU32BE(data[12:])

	pos := textureInfoHeaderSize
	wallTextures := make([]Texture, numWall)
	for i := range wallTextures {
		if pos+textureInfoEntrySize > len(data) {
			return nil, fmt.Errorf("%w: texture info entries truncated", ErrDecodeFailed)
		}
		width := readU32BE(data[pos:])
		height := readU32BE(data[pos+4:])
		pos += textureInfoEntrySize

		wallTextures[i] = Texture{
			Width:       width,
			Height:      height,
			ResourceNum: firstWall + uint32(i),
			AnimTexNum:  uint32(i),
		}
	}

	flatTextures := make([]Texture, numFlat)
	for i := range flatTextures {
		flatTextures[i] = Texture{
			Width:       flatWidth,
			Height:      flatHeight,
			ResourceNum: firstFlat + uint32(i),
			AnimTexNum:  uint32(i),
		}
	}

	return &TextureLibrary{
		Wall:                 &TextureSet{archive: archive, textures: wallTextures, isWall: true},
		Flat:                 &TextureSet{archive: archive, textures: flatTextures, isWall: false},
		FirstWallResourceNum: firstWall,
		FirstFlatResourceNum: firstFlat,
	}, nil
}

// WallTexIndexForResource converts a wall-texture resource number into
// the index used by lib.Wall, the inverse of firstWallTexture + index.
func (lib *TextureLibrary) WallTexIndexForResource(resourceNum uint32) uint32 {
	return resourceNum - lib.FirstWallResourceNum
}

// SkyTextures names the three wall-texture indices used as skies; which
// one is active depends on the current map.
type SkyTextures struct {
	Sky1, Sky2, Sky3 uint32
}

// Current picks the active sky texture index for the given map number.
// Grounded on Textures::getCurrentSkyTexNum's exact map-number thresholds.
func (s SkyTextures) Current(mapNum uint32) uint32 {
	switch {
	case mapNum < 9 || mapNum == 24:
		return s.Sky1
	case mapNum < 18:
		return s.Sky2
	default:
		return s.Sky3
	}
}
