// segemit.go - converts a screen-space DrawSeg into per-column wall, floor,
// ceiling, sky, and sprite-occluder fragments for later drawing.
//
// Grounded on original_source/source/GFX/Renderer_WallPrep.cpp's
// emitDrawSegColumns/clipAndEmitWallColumn/clipAndEmitFlatColumn/
// emitOccluderColumn/addWallColumnPartToClipBounds and addSegToFrame's
// three-way flag dispatch (one-sided / two-sided / two-sided-with-sky-
// ceiling-backsector). The original specializes emitDrawSegColumns at
// compile time per flag combination via a C++ template parameter; Go has
// no equivalent of that constexpr branch elimination, so EmitFlags is an
// ordinary runtime bitmask checked with plain conditionals instead of one
// function per combination.
package render

import "math"

// EmitFlags selects which fragment kinds a seg's column emission pass
// produces, mirroring FragEmitFlags.
type EmitFlags uint16

const (
	EmitMidWall EmitFlags = 1 << iota
	EmitUpperWall
	EmitLowerWall
	EmitFloor
	EmitCeiling
	EmitSky
	EmitMidWallOccluder
	EmitUpperWallOccluder
	EmitLowerWallOccluder
)

func (f EmitFlags) has(bit EmitFlags) bool { return f&bit != 0 }

// SkyCeilingPic is the sentinel ceiling-picture index that marks a sector
// as having a sky ceiling rather than a drawable flat. Its exact value is
// not present in the retrieved source (only comparisons against it are);
// this follows the codebase's existing noIndex sentinel convention.
const SkyCeilingPic = ^uint32(0)

const minDepthForFlatPixelClamp = 128.0

const bottomTexYAdjust = -0.0001

// SegClip holds the top and bottom screen-space clip bounds (exclusive of
// the rows at top and bottom themselves) for one screen column, as segs
// are submitted nearest-to-farthest. top >= bottom means the column is
// fully occluded.
type SegClip struct {
	Top, Bottom int16
}

const maxOccluderEntries = 16

// OccluderBounds describes the screen rows an occluding column entry
// covers; everything at or above Top, or at or below Bottom, is occluded.
type OccluderBounds struct {
	Top, Bottom int16
}

// OccludingColumns is the growing stack of occluder entries recorded for
// one screen column over a frame, in increasing depth order (the farthest
// entry last). Used later to clip
// sprite fragments: LineIndex records which line produced each entry, so a
// sprite can be tested for being in front of that specific line rather than
// unconditionally occluded by depth alone.
type OccludingColumns struct {
	Count     int
	Depths    [maxOccluderEntries]float32
	Bounds    [maxOccluderEntries]OccluderBounds
	LineIndex [maxOccluderEntries]uint32
}

// EmitOccluderMode says whether an occluder covers the screen from a row
// upward (TOP) or downward (BOTTOM).
type EmitOccluderMode int

const (
	OccludeTop EmitOccluderMode = iota
	OccludeBottom
)

// WallFragment is one column of a wall piece ready for texture mapping.
type WallFragment struct {
	X, Y, Height                      uint16
	TexCoordX                         uint16
	TexCoordY, TexCoordYSubPixelAdjust, TexCoordYStep float32
	LightMul                          float32
	Texture                           *Texture
}

// SkyFragment is one column of sky backdrop, drawn behind everything else.
type SkyFragment struct {
	X, Height uint16
}

// FlatFragment is one column of a floor or ceiling ready for texture
// mapping.
type FlatFragment struct {
	X, Y, Height     uint16
	SectorLightLevel uint8
	ClampFirstPixel  bool
	Depth            float32
	WorldX, WorldY, WorldZ float32
	Texture          *Texture
}

// ColumnFrame is the per-frame accumulator for seg column emission: the
// per-column clip/occlusion state plus the emitted fragment lists. It is
// reset once per frame and shared across every seg the BSP walk visits.
type ColumnFrame struct {
	SegClip        []SegClip
	OccludingCols  []OccludingColumns
	NumFullSegCols int

	WallFrags   []WallFragment
	FloorFrags  []FlatFragment
	CeilFrags   []FlatFragment
	SkyFrags    []SkyFragment
	SpriteFrags []SpriteFragment

	viewHeight int32
}

// NewColumnFrame allocates per-column state sized to the view width.
func NewColumnFrame(viewWidth, viewHeight int) *ColumnFrame {
	cf := &ColumnFrame{
		SegClip:       make([]SegClip, viewWidth),
		OccludingCols: make([]OccludingColumns, viewWidth),
	}
	cf.Reset(viewHeight)
	return cf
}

// Reset clears all per-column state for the start of a new frame.
func (cf *ColumnFrame) Reset(viewHeight int) {
	cf.viewHeight = int32(viewHeight)
	for i := range cf.SegClip {
		cf.SegClip[i] = SegClip{Top: -1, Bottom: int16(viewHeight)}
		cf.OccludingCols[i] = OccludingColumns{}
	}
	cf.NumFullSegCols = 0
	cf.WallFrags = cf.WallFrags[:0]
	cf.FloorFrags = cf.FloorFrags[:0]
	cf.CeilFrags = cf.CeilFrags[:0]
	cf.SkyFrags = cf.SkyFrags[:0]
	cf.SpriteFrags = cf.SpriteFrags[:0]
}

// FullyOccluded reports whether every screen column has been completely
// filled in by nearer geometry, letting BSP traversal stop early.
func (cf *ColumnFrame) FullyOccluded() bool {
	return cf.NumFullSegCols >= len(cf.SegClip)
}

// LightParams describes a diminishing-light curve for one sector light
// level: a multiplier that starts at LightMax up close and falls toward
// LightMin with distance.
//
// getLightParams/LightParams.GetLightMulForDist's bodies are not present
// anywhere in the retrieved source (only call sites referencing them are),
// so this follows only the field doc comments in Renderer_Internal.h and
// the shape of its use as a texture-brightness multiplier: a curve that's
// brightest at LightMax near the camera, falls off linearly with depth at
// a rate set by LightCoef after subtracting LightSub, and never drops
// below LightMin.
type LightParams struct {
	LightMin  float32
	LightMax  float32
	LightSub  float32
	LightCoef float32
}

// GetLightMulForDist returns the light multiplier for an object at the
// given depth from the camera.
func (lp LightParams) GetLightMulForDist(dist float32) float32 {
	mul := lp.LightMax - lp.LightSub - lp.LightCoef*dist
	if mul < lp.LightMin {
		mul = lp.LightMin
	}
	if mul > lp.LightMax {
		mul = lp.LightMax
	}
	return mul
}

// getLightParams derives a LightParams curve from a sector's effective
// light level (0..255): brighter sectors both start higher and tolerate
// more distance before dimming to their floor.
func getLightParams(sectorLightLevel uint32) LightParams {
	lvl := float32(sectorLightLevel) / 255.0
	return LightParams{
		LightMin:  lvl * lvl * 0.4,
		LightMax:  lvl,
		LightSub:  0,
		LightCoef: 0.0005 + (1.0-lvl)*0.001,
	}
}

// wallPieceKind picks which of a DrawSeg's three possible wall pieces a
// clipAndEmitWallColumn call is for; addWallColumnPartToClipBounds treats
// each differently (a mid wall always fills the column, upper/lower only
// grow the clip bounds from their respective side).
type wallPieceKind int

const (
	wallPieceMid wallPieceKind = iota
	wallPieceUpper
	wallPieceLower
)

// addWallColumnPartToClipBounds folds a just-emitted wall piece into a
// column's clip bounds. It only ever grows the occluded region.
func addWallColumnPartToClipBounds(kind wallPieceKind, clip *SegClip, zt, zb int32, cf *ColumnFrame) {
	if clip.Top+1 >= clip.Bottom {
		return
	}
	if kind == wallPieceMid {
		*clip = SegClip{}
		cf.NumFullSegCols++
		return
	}
	if kind == wallPieceUpper {
		if int16(zb) > clip.Top {
			clip.Top = int16(zb)
		}
	} else {
		if int16(zt) < clip.Bottom {
			clip.Bottom = int16(zt)
		}
	}
	if clip.Top+1 >= clip.Bottom {
		*clip = SegClip{}
		cf.NumFullSegCols++
	}
}

// clipAndEmitWallColumn clips one column of a wall piece against the
// current clip bounds, steps its texture-Y coordinate accordingly, and
// appends a WallFragment if anything survives. Returns 1 if a fragment
// was emitted, 0 otherwise.
func clipAndEmitWallColumn(
	kind wallPieceKind,
	x uint32,
	zt, zb float32,
	texX, texTy, texBy float32,
	depth float32,
	clip *SegClip,
	lightParams LightParams,
	segLightMul float32,
	tex *Texture,
	cf *ColumnFrame,
) uint32 {
	emitted := uint32(0)

	for {
		if zt >= zb || zb < 0 || zt >= float32(cf.viewHeight) {
			if kind != wallPieceMid {
				return 0
			}
			break
		}

		texYStep := (texBy - texTy) / (zb - zt)

		curZt, curZb := zt, zb
		curTexTy, curTexBy := texTy, texBy
		var texYSubPixelAdjust float32

		curZtInt := int32(curZt)
		if curZtInt <= int32(clip.Top) {
			curZt = float32(clip.Top) + 1.0
			curZtInt = int32(curZt)
			pixelsOffscreen := curZt - zt
			curTexTy += texYStep * pixelsOffscreen
			if curZt >= curZb {
				break
			}
			texYSubPixelAdjust = 0
		} else {
			texYSubPixelAdjust = -(curZt - float32(math.Trunc(float64(curZt)))) * texYStep
		}

		curZbInt := int32(curZb)
		if curZbInt >= int32(clip.Bottom) {
			curZb = math.Nextafter32(float32(clip.Bottom), -1)
			curZbInt = int32(curZb)
			pixelsOffscreen := zb - curZb
			curTexBy -= texYStep * pixelsOffscreen
			if curZt >= curZb {
				break
			}
		}

		columnHeight := curZbInt - curZtInt + 1

		cf.WallFrags = append(cf.WallFrags, WallFragment{
			X:                       uint16(x),
			Y:                       uint16(curZtInt),
			Height:                  uint16(columnHeight),
			TexCoordX:               uint16(texX),
			TexCoordY:               curTexTy,
			TexCoordYSubPixelAdjust: texYSubPixelAdjust,
			TexCoordYStep:           texYStep,
			LightMul:                lightParams.GetLightMulForDist(depth) * segLightMul,
			Texture:                 tex,
		})
		emitted = 1
		break
	}

	addWallColumnPartToClipBounds(kind, clip, int32(zt), int32(math.Floor(float64(zb))), cf)
	return emitted
}

type flatKind int

const (
	flatKindFloor flatKind = iota
	flatKindCeiling
)

// clipAndEmitFlatColumn clips one column of a floor or ceiling fragment
// against the current clip bounds and, if anything survives, appends a
// FlatFragment and shrinks the clip bounds from the appropriate side.
// Returns 1 if a fragment was emitted, 0 otherwise.
func clipAndEmitFlatColumn(
	kind flatKind,
	x uint32,
	zt, zb float32,
	clip *SegClip,
	depth, worldX, worldY, worldZ float32,
	clampFirstPixel bool,
	sectorLightLevel uint8,
	tex *Texture,
	cf *ColumnFrame,
) uint32 {
	if zt >= zb {
		return 0
	}

	ztInt := int32(zt)
	zbInt := int32(zb)

	if ztInt <= int32(clip.Top) {
		ztInt = int32(clip.Top) + 1
		if ztInt > zbInt {
			return 0
		}
	}
	if zbInt >= int32(clip.Bottom) {
		zbInt = int32(clip.Bottom) - 1
		if ztInt > zbInt {
			return 0
		}
	}

	columnHeight := zbInt - ztInt + 1

	frag := FlatFragment{
		X: uint16(x), Y: uint16(ztInt), Height: uint16(columnHeight),
		SectorLightLevel: sectorLightLevel,
		ClampFirstPixel:  clampFirstPixel,
		Depth:            depth,
		WorldX:           worldX, WorldY: worldY, WorldZ: worldZ,
		Texture: tex,
	}
	if kind == flatKindFloor {
		cf.FloorFrags = append(cf.FloorFrags, frag)
	} else {
		cf.CeilFrags = append(cf.CeilFrags, frag)
	}

	if kind == flatKindCeiling {
		if zbInt+1 < int32(clip.Bottom) {
			*clip = SegClip{Top: int16(zbInt), Bottom: clip.Bottom}
		} else {
			*clip = SegClip{}
			cf.NumFullSegCols++
		}
	} else {
		if ztInt-1 >= int32(clip.Top) {
			*clip = SegClip{Top: clip.Top, Bottom: int16(ztInt)}
		} else {
			*clip = SegClip{}
			cf.NumFullSegCols++
		}
	}

	return 1
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// emitOccluderColumn records a new occluding entry for one screen column,
// used later to clip sprite fragments. An occluder deeper than the column's
// most recent entry is appended as a new entry only when doing so strictly
// shrinks the visible gap; one at the same or a nearer depth instead
// extends the most recent entry's bound, which only ever grows the occluded
// region (see DESIGN.md). lineIndex is stamped on any entry this call
// creates; an entry that only gets extended keeps the line that first
// created it.
func emitOccluderColumn(mode EmitOccluderMode, x uint32, screenYCoord int32, depth float32, lineIndex uint32, cf *ColumnFrame) {
	if mode == OccludeTop {
		if screenYCoord < 0 {
			return
		}
	} else if screenYCoord >= cf.viewHeight {
		return
	}

	oc := &cf.OccludingCols[x]
	n := oc.Count

	if n <= 0 {
		if n >= maxOccluderEntries {
			return
		}
		oc.Count++
		oc.Depths[0] = depth
		oc.LineIndex[0] = lineIndex
		if mode == OccludeTop {
			oc.Bounds[0] = OccluderBounds{Top: int16(screenYCoord), Bottom: int16(cf.viewHeight)}
		} else {
			oc.Bounds[0] = OccluderBounds{Top: -1, Bottom: int16(screenYCoord)}
		}
		return
	}

	curIdx := n - 1
	if oc.Depths[curIdx] < depth {
		prev := oc.Bounds[curIdx]
		numRowsVisible := maxI32(int32(prev.Bottom)-int32(prev.Top)-1, 0)
		newBound := int16(screenYCoord)

		var emit bool
		if mode == OccludeTop {
			emit = maxI32(int32(prev.Bottom)-int32(newBound)-1, 0) < numRowsVisible
		} else {
			emit = maxI32(int32(newBound)-int32(prev.Top)-1, 0) < numRowsVisible
		}

		if emit {
			if n >= maxOccluderEntries {
				return
			}
			oc.Count++
			oc.Depths[n] = depth
			oc.LineIndex[n] = lineIndex
			if mode == OccludeTop {
				oc.Bounds[n] = OccluderBounds{Top: newBound, Bottom: prev.Bottom}
			} else {
				oc.Bounds[n] = OccluderBounds{Top: prev.Top, Bottom: newBound}
			}
		}
	} else {
		b := &oc.Bounds[curIdx]
		if mode == OccludeTop {
			if int16(screenYCoord) > b.Top {
				b.Top = int16(screenYCoord)
			}
		} else if int16(screenYCoord) < b.Bottom {
			b.Bottom = int16(screenYCoord)
		}
	}
}

// EmitSegColumns emits every fragment and occluder entry for one prepared
// seg, dispatching the flag combination addSegToFrame would pick based on
// whether the seg is one-sided, two-sided, or borders a sky-ceilinged back
// sector. It latches the seg's line as automap-visible if anything was
// actually drawn, and returns the number of wall, floor and ceiling columns
// emitted.
func EmitSegColumns(ds *DrawSeg, seg *Seg, m *MapData, cam *Camera, lines *LineFrameState, extraLight uint32, cf *ColumnFrame, lib *TextureLibrary) uint32 {
	var flags EmitFlags
	switch {
	case seg.BackSectorIndex == noIndex:
		flags = EmitMidWall | EmitMidWallOccluder | EmitFloor | EmitCeiling | EmitSky
	case m.Sectors[seg.BackSectorIndex].CeilingPic != SkyCeilingPic:
		flags = EmitLowerWall | EmitUpperWall | EmitLowerWallOccluder | EmitUpperWallOccluder | EmitFloor | EmitCeiling | EmitSky
	default:
		flags = EmitLowerWall | EmitLowerWallOccluder | EmitUpperWallOccluder | EmitFloor | EmitCeiling
	}

	n := emitDrawSegColumns(flags, ds, seg, m, cam, extraLight, cf, lib)
	if n > 0 {
		lines.Mapped[seg.LineIndex] = true
	}
	return n
}

// emitDrawSegColumns is the per-column loop: it steps every interpolated
// quantity (1/w, texture X, world X/Y, the four wall-piece Z values) from
// p1 to p2 and, for each unclipped screen column, hands the result to the
// wall/flat/occluder emit helpers selected by flags.
func emitDrawSegColumns(flags EmitFlags, ds *DrawSeg, seg *Seg, m *MapData, cam *Camera, extraLight uint32, cf *ColumnFrame, lib *TextureLibrary) uint32 {
	emitAnyWall := flags.has(EmitMidWall) || flags.has(EmitUpperWall) || flags.has(EmitLowerWall)
	emitAnyFlat := flags.has(EmitFloor) || flags.has(EmitCeiling)

	x1 := int(ds.P1X)
	x2 := int(ds.P2X)
	if x1 < 0 {
		x1 = 0
	}
	if x2 >= cam.ViewWidth {
		x2 = cam.ViewWidth - 1
	}
	if x1 > x2 {
		return 0
	}

	side := &m.Sides[seg.SideDefIndex]
	front := &m.Sectors[seg.FrontSectorIndex]
	line := &m.Lines[seg.LineIndex]

	var back *Sector
	if seg.BackSectorIndex != noIndex {
		back = &m.Sectors[seg.BackSectorIndex]
	}

	var canClampFloor, canClampCeiling bool
	if emitAnyFlat {
		if back != nil {
			canClampFloor = front.FloorHeight != back.FloorHeight || front.FloorPic != back.FloorPic
			canClampCeiling = front.CeilingHeight != back.CeilingHeight || front.CeilingPic != back.CeilingPic
		} else {
			canClampFloor = true
			canClampCeiling = true
		}
	}

	lightLevel := front.LightLevel
	if lightLevel < 240 {
		lightLevel += extraLight
	}
	if lightLevel > 255 {
		lightLevel = 255
	}
	lightParams := getLightParams(lightLevel)

	var midTex, upperTex, lowerTex, floorTex, ceilTex *Texture
	if flags.has(EmitMidWall) {
		midTex, _ = lib.Wall.GetAnim(side.MidTexture)
	}
	if flags.has(EmitUpperWall) {
		upperTex, _ = lib.Wall.GetAnim(side.TopTexture)
	}
	if flags.has(EmitLowerWall) {
		lowerTex, _ = lib.Wall.GetAnim(side.BottomTexture)
	}
	if flags.has(EmitFloor) {
		floorTex, _ = lib.Flat.GetAnim(front.FloorPic)
	}
	if (flags.has(EmitCeiling) || flags.has(EmitSky)) && front.CeilingPic != SkyCeilingPic {
		ceilTex, _ = lib.Flat.GetAnim(front.CeilingPic)
	}

	frontFloorZ := FixedToFloat(front.FloorHeight)
	frontCeilZ := FixedToFloat(front.CeilingHeight)
	var backFloorZ, backCeilZ float32
	if back != nil {
		backFloorZ = FixedToFloat(back.FloorHeight)
		backCeilZ = FixedToFloat(back.CeilingHeight)
	}

	bBottomUnpegged := line.Flags&MLDontPegBottom != 0
	bTopUnpegged := line.Flags&MLDontPegTop != 0
	rowOffset := side.TexYOffset

	var midTexTy, upperTexTy, lowerTexTy float32
	if flags.has(EmitMidWall) && midTex != nil {
		texH := float32(midTex.Height)
		anchor := frontCeilZ
		if bBottomUnpegged {
			anchor = frontFloorZ + texH
		}
		midTexTy = anchor + rowOffset - frontCeilZ
		if midTexTy < 0 {
			midTexTy += texH
		}
	}
	if flags.has(EmitUpperWall) && upperTex != nil {
		texH := float32(upperTex.Height)
		anchor := backCeilZ + texH
		if bTopUnpegged {
			anchor = frontCeilZ
		}
		upperTexTy = anchor + rowOffset - frontCeilZ
		if upperTexTy < 0 {
			upperTexTy += texH
		}
	}
	if flags.has(EmitLowerWall) && lowerTex != nil {
		texH := float32(lowerTex.Height)
		anchor := backFloorZ
		if bBottomUnpegged {
			anchor = frontCeilZ
		}
		lowerTexTy = anchor + rowOffset - backFloorZ
		if lowerTexTy < 0 {
			lowerTexTy += texH
		}
	}

	upperWorldTz := frontCeilZ
	var upperWorldBz, lowerWorldTz float32
	if back != nil {
		upperWorldBz = backCeilZ
		lowerWorldTz = backFloorZ
	}
	lowerWorldBz := frontFloorZ

	var midTexBy, upperTexBy, lowerTexBy float32
	if flags.has(EmitMidWall) && midTex != nil {
		midTexBy = midTexTy + (upperWorldTz - lowerWorldBz) + bottomTexYAdjust
	}
	if flags.has(EmitUpperWall) && upperTex != nil {
		upperTexBy = upperTexTy + (upperWorldTz - upperWorldBz) + bottomTexYAdjust
	}
	if flags.has(EmitLowerWall) && lowerTex != nil {
		lowerTexBy = lowerTexTy + (lowerWorldTz - lowerWorldBz) + bottomTexYAdjust
	}

	xRangeDivider := 1.0 / (ds.P2X - ds.P1X)

	p1InvW := 1.0 / ds.P1W
	p2InvW := 1.0 / ds.P2W
	invWStep := (p2InvW - p1InvW) * xRangeDivider

	var p1TexX, texXStep float32
	if emitAnyWall {
		p1TexX = ds.P1TexX * p1InvW
		p2TexX := ds.P2TexX * p2InvW
		texXStep = (p2TexX - p1TexX) * xRangeDivider
	}

	var p1WorldX, p1WorldY, worldXStep, worldYStep float32
	if emitAnyFlat {
		p1WorldX = ds.P1WorldX * p1InvW
		p1WorldY = ds.P1WorldY * p1InvW
		p2WorldX := ds.P2WorldX * p2InvW
		p2WorldY := ds.P2WorldY * p2InvW
		worldXStep = (p2WorldX - p1WorldX) * xRangeDivider
		worldYStep = (p2WorldY - p1WorldY) * xRangeDivider
	}

	upperTzStep := (ds.P2TZ - ds.P1TZ) * xRangeDivider
	upperBzStep := (ds.P2TZBack - ds.P1TZBack) * xRangeDivider
	lowerTzStep := (ds.P2BZBack - ds.P1BZBack) * xRangeDivider
	lowerBzStep := (ds.P2BZ - ds.P1BZ) * xRangeDivider

	curXStepCount := float32(0)
	nextXStepCount := -(ds.P1X - float32(x1))

	viewHf := float32(cf.viewHeight)
	emittedCols := uint32(0)

	for x := x1; x <= x2; x++ {
		clip := &cf.SegClip[x]
		if clip.Top >= clip.Bottom {
			nextXStepCount += 1.0
			curXStepCount = nextXStepCount
			continue
		}

		var wInv float32
		if x < x2 {
			wInv = p1InvW + invWStep*curXStepCount
		} else {
			wInv = p2InvW
		}
		w := 1.0 / wInv
		depth := w

		var texX float32
		if emitAnyWall {
			texX = (p1TexX + texXStep*curXStepCount) * w
		}
		var worldX, worldY float32
		if emitAnyFlat {
			worldX = (p1WorldX + worldXStep*curXStepCount) * w
			worldY = (p1WorldY + worldYStep*curXStepCount) * w
		}

		var upperTz, upperBz, lowerTz, lowerBz float32
		if flags.has(EmitMidWall) || flags.has(EmitUpperWall) || flags.has(EmitCeiling) {
			upperTz = ds.P1TZ + upperTzStep*curXStepCount
		}
		if flags.has(EmitUpperWall) || flags.has(EmitUpperWallOccluder) {
			upperBz = ds.P1TZBack + upperBzStep*curXStepCount
		}
		if flags.has(EmitLowerWall) || flags.has(EmitLowerWallOccluder) {
			lowerTz = ds.P1BZBack + lowerTzStep*curXStepCount
		}
		if flags.has(EmitMidWall) || flags.has(EmitLowerWall) || flags.has(EmitFloor) {
			lowerBz = ds.P1BZ + lowerBzStep*curXStepCount
		}

		nextXStepCount += 1.0
		curXStepCount = nextXStepCount

		if flags.has(EmitFloor) && ds.EmitFloor && floorTex != nil {
			clampFirst := canClampFloor && depth >= minDepthForFlatPixelClamp
			emittedCols += clipAndEmitFlatColumn(flatKindFloor, uint32(x), lowerBz, viewHf, clip, depth, worldX, worldY, lowerWorldBz, clampFirst, uint8(lightLevel), floorTex, cf)
		}

		if flags.has(EmitCeiling) && ds.EmitCeiling && ceilTex != nil {
			clampFirst := canClampCeiling && depth >= minDepthForFlatPixelClamp
			emittedCols += clipAndEmitFlatColumn(flatKindCeiling, uint32(x), 0, upperTz, clip, depth, worldX, worldY, upperWorldTz, clampFirst, uint8(lightLevel), ceilTex, cf)
		}

		if flags.has(EmitSky) && ceilTex == nil && upperTz > 0 {
			cf.SkyFrags = append(cf.SkyFrags, SkyFragment{X: uint16(x), Height: uint16(math.Ceil(float64(upperTz)))})
		}

		if flags.has(EmitMidWall) && midTex != nil {
			emittedCols += clipAndEmitWallColumn(wallPieceMid, uint32(x), upperTz, lowerBz, texX, midTexTy, midTexBy, depth, clip, lightParams, seg.LightMul, midTex, cf)
		}
		if flags.has(EmitLowerWall) && lowerTex != nil {
			emittedCols += clipAndEmitWallColumn(wallPieceLower, uint32(x), lowerTz, lowerBz, texX, lowerTexTy, lowerTexBy, depth, clip, lightParams, seg.LightMul, lowerTex, cf)
		}
		if flags.has(EmitUpperWall) && upperTex != nil {
			emittedCols += clipAndEmitWallColumn(wallPieceUpper, uint32(x), upperTz, upperBz, texX, upperTexTy, upperTexBy, depth, clip, lightParams, seg.LightMul, upperTex, cf)
		}

		if flags.has(EmitMidWallOccluder) {
			emitOccluderColumn(OccludeTop, uint32(x), cf.viewHeight, depth, seg.LineIndex, cf)
		} else if clip.Top >= clip.Bottom {
			emitOccluderColumn(OccludeTop, uint32(x), cf.viewHeight, depth, seg.LineIndex, cf)
			continue
		}

		if flags.has(EmitLowerWallOccluder) && ds.EmitLowerOccluder {
			z := lowerBz
			if ds.LowerOccluderUsesBackZ {
				z = lowerTz
			}
			emitOccluderColumn(OccludeBottom, uint32(x), int32(z), depth, seg.LineIndex, cf)
		}
		if flags.has(EmitUpperWallOccluder) && ds.EmitUpperOccluder {
			z := upperTz
			if ds.UpperOccluderUsesBackZ {
				z = upperBz
			}
			emitOccluderColumn(OccludeTop, uint32(x), int32(z), depth, seg.LineIndex, cf)
		}
	}

	return emittedCols
}
