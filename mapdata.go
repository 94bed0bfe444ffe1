// mapdata.go - level geometry tables: vertices, sectors, sides, lines,
// segs, subsectors and the BSP tree.
//
// The original links these together with raw pointers (sides point at
// sectors, lines at sides, segs at lines, BSP node children at other nodes
// or subsectors via a tagged low bit). Here every cross-reference is a
// plain array index into the owning MapData's slices instead, and BSP node
// children are an explicit tagged union rather than a pointer with a
// stolen bit. Grounded on original_source/source/Map/MapData.cpp/.h.
package render

import (
	"fmt"
	"math"
)

// Line flag bits, matching the original's ML_* constants in MapData.h.
const (
	MLBlocking       = 1 << 0 // blocks players and monsters
	MLBlockMonsters  = 1 << 1 // blocks monsters only
	MLTwoSided       = 1 << 2 // has a back side; segs on it may be see-through
	MLDontPegTop     = 1 << 3 // upper texture is unpegged
	MLDontPegBottom  = 1 << 4 // lower texture is unpegged
	MLSecret         = 1 << 5 // shows as a normal wall on the automap until crossed
	MLSoundBlock     = 1 << 6 // stops sound propagation
	MLDontDraw       = 1 << 7 // never shows on the automap
	MLMapped         = 1 << 8 // always shows on the automap once seen
)

// SlopeType classifies a line's direction for move-clipping purposes.
type SlopeType uint8

const (
	SlopeHorizontal SlopeType = iota
	SlopeVertical
	SlopePositive
	SlopeNegative
)

// Bounding box component indices, matching the order the original fills
// bbox[BOXTOP..BOXRIGHT] in.
const (
	BoxTop = iota
	BoxBottom
	BoxLeft
	BoxRight
	BoxCount
)

// Map lump indices, in the fixed order mapDataInit loads them.
const (
	MLVertexes = iota
	MLSectors
	MLSidedefs
	MLLinedefs
	MLSegs
	MLSSectors
	MLNodes
	MLReject
	MLBlockmap
	NumMapLumps
)

// noIndex marks an absent index (e.g. a one-sided line's back side) in
// place of a null pointer.
const noIndex = ^uint32(0)

// Vertex is a fixed-point map-plane point.
type Vertex struct {
	X, Y Fixed
}

// VertexF is a Vertex's float32 mirror, used on the render-time hot path.
type VertexF struct {
	X, Y float32
}

// Sector is a convex floor/ceiling polygon. Lines reference sectors by
// index rather than a lines-of-this-sector back-list: nothing in the
// render pipeline walks sector->lines, only line->sector.
type Sector struct {
	FloorHeight   Fixed
	CeilingHeight Fixed
	FloorPic      uint32
	CeilingPic    uint32
	LightLevel    uint32
	Special       uint32
	Tag           uint32
}

// Side holds one line side's texture references and offsets.
type Side struct {
	TexXOffset  float32
	TexYOffset  float32
	TopTexture  uint32
	BottomTexture uint32
	MidTexture  uint32
	SectorIndex uint32
}

// Line is a two-dimensional map edge between two sides (one of which may
// be absent for a one-sided line).
type Line struct {
	V1, V2   Vertex
	V1f, V2f VertexF
	Flags    uint32
	Special  uint32
	Tag      uint32

	// SideIndex[1] is noIndex for a one-sided line.
	SideIndex [2]uint32
	BBox      [BoxCount]Fixed
	SlopeType SlopeType

	FrontSectorIndex uint32
	// BackSectorIndex is noIndex for a one-sided line.
	BackSectorIndex uint32

	// FineAngle indexes the sine/cosine tables for this line's direction,
	// derived from whichever seg starts at v1.
	FineAngle uint32
}

// LineFrameState holds the per-frame intrusive fields the BSP/seg pass
// writes and sprite clipping reads, kept as parallel arrays indexed by
// line index rather than embedded in Line (§9: map data stays immutable
// and cache-friendly; mutation is explicit and separate).
type LineFrameState struct {
	ValidCount         []uint32
	V1DrawDepth        []float32
	V2DrawDepth        []float32
	DrawnSideIndex     []uint8
	BIsInFrontOfSprite []bool
	Mapped             []bool // latched ML_MAPPED bit, OR-only, never cleared per frame
}

// NewLineFrameState allocates per-line frame state for a level with the
// given number of lines.
func NewLineFrameState(numLines int) *LineFrameState {
	return &LineFrameState{
		ValidCount:         make([]uint32, numLines),
		V1DrawDepth:        make([]float32, numLines),
		V2DrawDepth:        make([]float32, numLines),
		DrawnSideIndex:     make([]uint8, numLines),
		BIsInFrontOfSprite: make([]bool, numLines),
		Mapped:             make([]bool, numLines),
	}
}

// ResetFrame clears the fields that must not carry over between frames.
// ValidCount is not reset here: it is compared against a monotonically
// increasing frame counter instead, so a stale value simply never
// matches. Mapped is a latched automap bit and is never cleared.
func (s *LineFrameState) ResetFrame() {
	for i := range s.BIsInFrontOfSprite {
		s.BIsInFrontOfSprite[i] = false
	}
}

// SectorFrameState holds the per-frame intrusive field BSP traversal uses
// to gather each sector's things at most once per frame, again kept
// separate from the immutable Sector rather than embedded in it.
type SectorFrameState struct {
	ValidCount []uint32
}

// NewSectorFrameState allocates per-sector frame state for a level with
// the given number of sectors.
func NewSectorFrameState(numSectors int) *SectorFrameState {
	return &SectorFrameState{ValidCount: make([]uint32, numSectors)}
}

// Seg is one wall segment of a subsector, the atomic rasterizable unit.
type Seg struct {
	V1, V2 VertexF
	Angle  Angle

	// TexXOffset is an additional per-seg texture x offset added to the
	// owning side's TexXOffset.
	TexXOffset float32

	// SideIndex is 0 or 1, which side of LineIndex this seg runs along.
	SideIndex uint8

	LineIndex        uint32
	SideDefIndex     uint32
	FrontSectorIndex uint32
	// BackSectorIndex is noIndex for a seg along a one-sided line.
	BackSectorIndex uint32

	// LightMul is the fake-contrast light multiplier computed once after
	// load from this seg's screen-space direction.
	LightMul float32
}

// Subsector is a BSP leaf: a contiguous run of segs all bordering one
// sector.
type Subsector struct {
	SectorIndex  uint32
	FirstSegIndex uint32
	NumSegs      uint32
}

// NodeChild is the node-or-subsector tagged union a BSP node's two
// children are. The original steals the low bit of a pointer for this;
// here it is an explicit field instead (§9).
type NodeChild struct {
	Index       uint32
	IsSubsector bool
}

// BSPNode is one binary space partition: a splitting line plus two
// children, each either another node or a leaf subsector.
type BSPNode struct {
	// LineX, LineY is the partition line's origin; LineDX, LineDY its
	// direction vector.
	LineX, LineY, LineDX, LineDY Fixed

	// BBox[child] is that child's bounding box, indexed by BoxTop..BoxRight.
	BBox [2][BoxCount]Fixed

	Children [2]NodeChild
}

// BlockMap partitions the map plane into fixed 128-unit blocks, each
// listing the lines that intersect it.
type BlockMap struct {
	OriginX, OriginY Fixed
	Width, Height    uint32

	// LineIndices[block] is the list of line indices intersecting that
	// block. The original represents this as a pointer into a flat,
	// UINT32_MAX-terminated array; a slice-of-slices carries its own
	// length and needs no sentinel, the same information with one fewer
	// moving part.
	LineIndices [][]uint32
}

// MapData is one level's complete static geometry, owned by the level
// session and borrowed immutably by the renderer for the frame.
type MapData struct {
	Vertexes   []Vertex
	Sectors    []Sector
	Sides      []Side
	Lines      []Line
	Segs       []Seg
	Subsectors []Subsector
	Nodes      []BSPNode
	// RootNodeIndex is the BSP tree root, the last-loaded node.
	RootNodeIndex uint32

	RejectMatrix []byte
	BlockMap     BlockMap
}

func lumpEntityCount(s *ByteStream) (uint32, error) {
	n, err := s.ReadU32BE()
	if err != nil {
		return 0, fmt.Errorf("%w: map lump count", ErrStreamExhausted)
	}
	return n, nil
}

func loadVertexes(data []byte) ([]Vertex, error) {
	s := NewByteStream(data)
	count, err := lumpEntityCount(s)
	if err != nil {
		return nil, err
	}
	out := make([]Vertex, count)
	for i := range out {
		x, err := s.ReadFixedBE()
		if err != nil {
			return nil, err
		}
		y, err := s.ReadFixedBE()
		if err != nil {
			return nil, err
		}
		out[i] = Vertex{X: x, Y: y}
	}
	return out, nil
}

func loadSectors(data []byte) ([]Sector, error) {
	s := NewByteStream(data)
	count, err := lumpEntityCount(s)
	if err != nil {
		return nil, err
	}
	out := make([]Sector, count)
	for i := range out {
		floorH, err := s.ReadFixedBE()
		if err != nil {
			return nil, err
		}
		ceilH, err := s.ReadFixedBE()
		if err != nil {
			return nil, err
		}
		floorPic, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		ceilPic, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		light, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		special, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		tag, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		out[i] = Sector{
			FloorHeight: floorH, CeilingHeight: ceilH,
			FloorPic: floorPic, CeilingPic: ceilPic,
			LightLevel: light, Special: special, Tag: tag,
		}
	}
	return out, nil
}

func loadSides(data []byte, numSectors uint32) ([]Side, error) {
	s := NewByteStream(data)
	count, err := lumpEntityCount(s)
	if err != nil {
		return nil, err
	}
	out := make([]Side, count)
	for i := range out {
		texX, err := s.ReadFixedBE()
		if err != nil {
			return nil, err
		}
		texY, err := s.ReadFixedBE()
		if err != nil {
			return nil, err
		}
		top, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		bottom, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		mid, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		sectorNum, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		if sectorNum >= numSectors {
			return nil, fmt.Errorf("%w: side %d references sector %d", ErrDecodeFailed, i, sectorNum)
		}
		out[i] = Side{
			TexXOffset: FixedToFloat(texX), TexYOffset: FixedToFloat(texY),
			TopTexture: top, BottomTexture: bottom, MidTexture: mid,
			SectorIndex: sectorNum,
		}
	}
	return out, nil
}

func loadLines(data []byte, vertexes []Vertex, sides []Side) ([]Line, error) {
	s := NewByteStream(data)
	count, err := lumpEntityCount(s)
	if err != nil {
		return nil, err
	}
	out := make([]Line, count)
	for i := range out {
		v1Idx, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		v2Idx, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		flags, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		special, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		tag, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		side1, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		side2, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		if v1Idx >= uint32(len(vertexes)) || v2Idx >= uint32(len(vertexes)) {
			return nil, fmt.Errorf("%w: line %d vertex index out of range", ErrDecodeFailed, i)
		}

		ln := &out[i]
		ln.Flags, ln.Special, ln.Tag = flags, special, tag
		ln.V1, ln.V2 = vertexes[v1Idx], vertexes[v2Idx]
		ln.V1f = VertexF{X: FixedToFloat(ln.V1.X), Y: FixedToFloat(ln.V1.Y)}
		ln.V2f = VertexF{X: FixedToFloat(ln.V2.X), Y: FixedToFloat(ln.V2.Y)}

		dx := ln.V2.X - ln.V1.X
		dy := ln.V2.Y - ln.V1.Y

		switch {
		case dx == 0:
			ln.SlopeType = SlopeVertical
		case dy == 0:
			ln.SlopeType = SlopeHorizontal
		case (dy^dx) >= 0:
			ln.SlopeType = SlopePositive
		default:
			ln.SlopeType = SlopeNegative
		}

		if dx >= 0 {
			ln.BBox[BoxLeft], ln.BBox[BoxRight] = ln.V1.X, ln.V2.X
		} else {
			ln.BBox[BoxLeft], ln.BBox[BoxRight] = ln.V2.X, ln.V1.X
		}
		if dy >= 0 {
			ln.BBox[BoxBottom], ln.BBox[BoxTop] = ln.V1.Y, ln.V2.Y
		} else {
			ln.BBox[BoxBottom], ln.BBox[BoxTop] = ln.V2.Y, ln.V1.Y
		}

		if side1 >= uint32(len(sides)) {
			return nil, fmt.Errorf("%w: line %d front side out of range", ErrDecodeFailed, i)
		}
		ln.SideIndex[0] = side1
		ln.FrontSectorIndex = sides[side1].SectorIndex

		if side2 != noIndex {
			if side2 >= uint32(len(sides)) {
				return nil, fmt.Errorf("%w: line %d back side out of range", ErrDecodeFailed, i)
			}
			ln.SideIndex[1] = side2
			ln.BackSectorIndex = sides[side2].SectorIndex
		} else {
			ln.SideIndex[1] = noIndex
			ln.BackSectorIndex = noIndex
		}
	}
	return out, nil
}

func loadLineSegs(data []byte, vertexes []Vertex, lines []Line) ([]Seg, error) {
	s := NewByteStream(data)
	count, err := lumpEntityCount(s)
	if err != nil {
		return nil, err
	}
	out := make([]Seg, count)
	for i := range out {
		v1Idx, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		v2Idx, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		angle, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		offset, err := s.ReadFixedBE()
		if err != nil {
			return nil, err
		}
		lineIdx, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		side, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		if v1Idx >= uint32(len(vertexes)) || v2Idx >= uint32(len(vertexes)) {
			return nil, fmt.Errorf("%w: seg %d vertex index out of range", ErrDecodeFailed, i)
		}
		if lineIdx >= uint32(len(lines)) {
			return nil, fmt.Errorf("%w: seg %d line index out of range", ErrDecodeFailed, i)
		}
		if side > 1 {
			return nil, fmt.Errorf("%w: seg %d side must be 0 or 1", ErrDecodeFailed, i)
		}

		line := &lines[lineIdx]
		v1, v2 := vertexes[v1Idx], vertexes[v2Idx]
		sideDefIdx := line.SideIndex[side]
		if sideDefIdx == noIndex {
			return nil, fmt.Errorf("%w: seg %d references a missing side", ErrDecodeFailed, i)
		}

		sg := &out[i]
		sg.V1 = VertexF{X: FixedToFloat(v1.X), Y: FixedToFloat(v1.Y)}
		sg.V2 = VertexF{X: FixedToFloat(v2.X), Y: FixedToFloat(v2.Y)}
		sg.Angle = Angle(angle)
		sg.TexXOffset = FixedToFloat(offset)
		sg.LineIndex = lineIdx
		sg.SideIndex = uint8(side)
		sg.SideDefIndex = sideDefIdx

		if side == 0 {
			sg.FrontSectorIndex = line.FrontSectorIndex
		} else {
			sg.FrontSectorIndex = line.BackSectorIndex
		}

		if line.Flags&MLTwoSided != 0 {
			otherSideIdx := line.SideIndex[side^1]
			if otherSideIdx == noIndex {
				return nil, fmt.Errorf("%w: seg %d two-sided line missing other side", ErrDecodeFailed, i)
			}
			if side == 0 {
				sg.BackSectorIndex = line.BackSectorIndex
			} else {
				sg.BackSectorIndex = line.FrontSectorIndex
			}
		} else {
			sg.BackSectorIndex = noIndex
		}

		// The line's fine angle is derived from whichever seg starts at v1,
		// matching loadLineSegs's "this is a point only" check.
		if line.V1.X == v1.X && line.V1.Y == v1.Y {
			line.FineAngle = uint32(sg.Angle) >> AngleToFineShift
		}
	}
	return out, nil
}

func loadSubSectors(data []byte, segs []Seg) ([]Subsector, error) {
	s := NewByteStream(data)
	count, err := lumpEntityCount(s)
	if err != nil {
		return nil, err
	}
	out := make([]Subsector, count)
	for i := range out {
		numLines, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		firstLine, err := s.ReadU32BE()
		if err != nil {
			return nil, err
		}
		if firstLine >= uint32(len(segs)) {
			return nil, fmt.Errorf("%w: subsector %d first seg out of range", ErrDecodeFailed, i)
		}
		out[i] = Subsector{
			SectorIndex:   segs[firstLine].FrontSectorIndex,
			FirstSegIndex: firstLine,
			NumSegs:       numLines,
		}
	}
	return out, nil
}

// nodeSubsectorFlag marks a BSP node child index as a subsector rather
// than another node, matching the original's NF_SUBSECTOR bit.
const nodeSubsectorFlag = 0x8000

func loadNodes(data []byte, numSubSectors uint32) ([]BSPNode, error) {
	s := NewByteStream(data)
	count, err := lumpEntityCount(s)
	if err != nil {
		return nil, err
	}
	out := make([]BSPNode, count)
	for i := range out {
		node := &out[i]
		var err error
		if node.LineX, err = s.ReadFixedBE(); err != nil {
			return nil, err
		}
		if node.LineY, err = s.ReadFixedBE(); err != nil {
			return nil, err
		}
		if node.LineDX, err = s.ReadFixedBE(); err != nil {
			return nil, err
		}
		if node.LineDY, err = s.ReadFixedBE(); err != nil {
			return nil, err
		}

		for child := 0; child < 2; child++ {
			for b := 0; b < BoxCount; b++ {
				v, err := s.ReadFixedBE()
				if err != nil {
					return nil, err
				}
				node.BBox[child][b] = v
			}
		}

		for child := 0; child < 2; child++ {
			raw, err := s.ReadU32BE()
			if err != nil {
				return nil, err
			}
			if raw&nodeSubsectorFlag != 0 {
				subIdx := raw &^ nodeSubsectorFlag
				if subIdx >= numSubSectors {
					return nil, fmt.Errorf("%w: node %d subsector child out of range", ErrDecodeFailed, i)
				}
				node.Children[child] = NodeChild{Index: subIdx, IsSubsector: true}
			} else {
				if raw >= count {
					return nil, fmt.Errorf("%w: node %d node child out of range", ErrDecodeFailed, i)
				}
				node.Children[child] = NodeChild{Index: raw}
			}
		}
	}
	return out, nil
}

func loadBlockMap(data []byte, numLines uint32) (BlockMap, error) {
	s := NewByteStream(data)
	originX, err := s.ReadFixedBE()
	if err != nil {
		return BlockMap{}, err
	}
	originY, err := s.ReadFixedBE()
	if err != nil {
		return BlockMap{}, err
	}
	width, err := s.ReadU32BE()
	if err != nil {
		return BlockMap{}, err
	}
	height, err := s.ReadU32BE()
	if err != nil {
		return BlockMap{}, err
	}

	numBlocks := width * height
	blockOffsets := make([]uint32, numBlocks)
	for i := range blockOffsets {
		v, err := s.ReadU32BE()
		if err != nil {
			return BlockMap{}, err
		}
		blockOffsets[i] = v
	}

	// Offsets are byte offsets into the blockmap resource, in units of
	// uint32; the header plus the offset table occupies (4+numBlocks)
	// such units.
	headerU32Count := uint32(4) + numBlocks
	lineLists := make([][]uint32, numBlocks)
	for b, byteOffset := range blockOffsets {
		u32Idx := byteOffset / 4
		if u32Idx < headerU32Count {
			return BlockMap{}, fmt.Errorf("%w: blockmap block %d offset out of range", ErrDecodeFailed, b)
		}
		entry := NewByteStream(data)
		if err := entry.Seek(int(byteOffset)); err != nil {
			return BlockMap{}, fmt.Errorf("%w: blockmap block %d offset out of range", ErrDecodeFailed, b)
		}
		var lines []uint32
		for {
			v, err := entry.ReadU32BE()
			if err != nil {
				return BlockMap{}, fmt.Errorf("%w: blockmap line list unterminated", ErrDecodeFailed)
			}
			if v == 0xFFFFFFFF {
				break
			}
			if v >= numLines {
				return BlockMap{}, fmt.Errorf("%w: blockmap line index out of range", ErrDecodeFailed)
			}
			lines = append(lines, v)
		}
		lineLists[b] = lines
	}

	return BlockMap{
		OriginX: originX, OriginY: originY,
		Width: width, Height: height,
		LineIndices: lineLists,
	}, nil
}

// calcSegLightMultipliers computes each seg's fake-contrast light
// multiplier from its screen-space direction, or leaves every multiplier
// at 1.0 when fake contrast is disabled. Grounded on
// MapData.cpp's calcSegLightMultipliers.
func calcSegLightMultipliers(segs []Seg, doFakeContrast bool) {
	const minLightMul = 0.75
	const maxLightMul = 1.05

	for i := range segs {
		if !doFakeContrast {
			segs[i].LightMul = 1.0
			continue
		}
		dx := float64(segs[i].V2.X - segs[i].V1.X)
		dy := float64(segs[i].V2.Y - segs[i].V1.Y)
		segAngle := math.Atan2(dy, dx) + math.Pi/2
		lerp := float32(math.Abs(math.Cos(segAngle)))
		segs[i].LightMul = minLightMul*lerp + maxLightMul*(1.0-lerp)
	}
}

// LoadMapData parses all nine map lumps for one level from the archive,
// starting at firstLumpResourceNum (i.e. firstLumpResourceNum+MLVertexes
// is the vertexes lump, +MLSectors the sectors lump, and so on through
// +MLBlockmap). doFakeContrast mirrors Config::gbDoFakeContrast: whether
// seg light multipliers vary with wall facing. Grounded on
// MapData::mapDataInit.
func LoadMapData(archive *Archive, firstLumpResourceNum uint32, doFakeContrast bool) (*MapData, error) {
	loadLump := func(lumpOffset uint32) ([]byte, error) {
		num := firstLumpResourceNum + lumpOffset
		if err := archive.Load(num); err != nil {
			return nil, err
		}
		data := archive.GetData(num)
		archive.Free(num)
		return data, nil
	}

	vertexData, err := loadLump(MLVertexes)
	if err != nil {
		return nil, err
	}
	vertexes, err := loadVertexes(vertexData)
	if err != nil {
		return nil, err
	}

	sectorData, err := loadLump(MLSectors)
	if err != nil {
		return nil, err
	}
	sectors, err := loadSectors(sectorData)
	if err != nil {
		return nil, err
	}

	sideData, err := loadLump(MLSidedefs)
	if err != nil {
		return nil, err
	}
	sides, err := loadSides(sideData, uint32(len(sectors)))
	if err != nil {
		return nil, err
	}

	lineData, err := loadLump(MLLinedefs)
	if err != nil {
		return nil, err
	}
	lines, err := loadLines(lineData, vertexes, sides)
	if err != nil {
		return nil, err
	}

	segData, err := loadLump(MLSegs)
	if err != nil {
		return nil, err
	}
	segs, err := loadLineSegs(segData, vertexes, lines)
	if err != nil {
		return nil, err
	}

	subSectorData, err := loadLump(MLSSectors)
	if err != nil {
		return nil, err
	}
	subsectors, err := loadSubSectors(subSectorData, segs)
	if err != nil {
		return nil, err
	}

	nodeData, err := loadLump(MLNodes)
	if err != nil {
		return nil, err
	}
	nodes, err := loadNodes(nodeData, uint32(len(subsectors)))
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: map has no BSP nodes", ErrDecodeFailed)
	}

	rejectResourceNum := firstLumpResourceNum + MLReject
	if err := archive.Load(rejectResourceNum); err != nil {
		return nil, err
	}
	rejectMatrix := archive.GetData(rejectResourceNum)

	blockMapData, err := loadLump(MLBlockmap)
	if err != nil {
		return nil, err
	}
	blockMap, err := loadBlockMap(blockMapData, uint32(len(lines)))
	if err != nil {
		return nil, err
	}

	calcSegLightMultipliers(segs, doFakeContrast)

	return &MapData{
		Vertexes:      vertexes,
		Sectors:       sectors,
		Sides:         sides,
		Lines:         lines,
		Segs:          segs,
		Subsectors:    subsectors,
		Nodes:         nodes,
		RootNodeIndex: uint32(len(nodes) - 1),
		RejectMatrix:  rejectMatrix,
		BlockMap:      blockMap,
	}, nil
}

// Free releases the reject matrix resource borrowed for the lifetime of
// the level. Every other lump is freed immediately after decode in
// LoadMapData; the reject matrix is the one lump consulted directly
// from archive-owned memory instead of being copied out.
func (m *MapData) Free(archive *Archive, firstLumpResourceNum uint32) {
	archive.Free(firstLumpResourceNum + MLReject)
	m.RejectMatrix = nil
}
