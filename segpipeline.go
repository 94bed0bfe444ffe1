// segpipeline.go - per-seg geometry preparation: transforms one wall seg
// from world space into a screen-space DrawSeg ready for column emission.
//
// Grounded on original_source/source/GFX/Renderer_WallPrep.cpp
// (populateSegVertexAttribs, transformSegXYToViewSpace,
// transformSegXYWToClipSpace, clipSegAgainst{Front,Left,Right}Plane,
// addClipSpaceZValuesForSeg, doPerspectiveDivisionForSeg,
// transformSegXZToScreenSpace, addSegToFrame) and the ProjectionMatrix /
// DrawSeg struct docs in Renderer_Internal.h.
package render

import "math"

// ProjectionMatrix is the sparse 4x4 perspective matrix used to project
// view-space coordinates to clip space. Doom's 'y' (height) takes the role
// of a conventional renderer's depth axis; elements not listed here are
// either always zero or an implicit 1 and are folded directly into the
// transform code instead of being stored.
type ProjectionMatrix struct {
	R0C0 float32
	R1C1 float32
	R2C2 float32
	R2C3 float32
}

// NewProjectionMatrix builds a projection matrix for a screen of the given
// pixel dimensions, near/far depth planes, and horizontal field of view in
// radians.
func NewProjectionMatrix(viewWidth, viewHeight int, zNear, zFar, fovRadians float32) ProjectionMatrix {
	f := float32(math.Tan(float64(fovRadians) * 0.5))
	a := float32(viewWidth) / float32(viewHeight)

	return ProjectionMatrix{
		R0C0: 1.0 / f,
		R1C1: -a / f,
		R2C2: -zFar / (zNear - zFar),
		R2C3: 1.0,
	}
}

// Camera holds the per-frame view parameters every seg and sprite is
// transformed against: position, the precomputed sine/cosine of the view
// angle, screen dimensions, and the projection matrix built from them.
type Camera struct {
	ViewX, ViewY, ViewZ float32
	ViewSin, ViewCos    float32

	ViewWidth, ViewHeight int
	Proj                  ProjectionMatrix

	// ExtraLight is added to a sector's light level before a sprite's light
	// multiplier is computed (the light-amp visor power-up), mirroring the
	// frame-global gExtraLight read in Renderer_SpriteDraw.cpp's
	// determineLightMultiplierForThing. Walls and flats use it too:
	// Renderer.EmitSeg passes it (clamped to zero or more) to EmitSegColumns.
	ExtraLight int32
}

// DrawSeg holds one wall seg's geometry after view/clip-space transforms,
// ready for column-by-column emission. p1/p2 name the seg's two endpoints
// throughout, matching the source this is ported from.
type DrawSeg struct {
	P1X, P1Y, P1W, P1WInv float32
	P2X, P2Y, P2W, P2WInv float32

	P1TZ, P1BZ, P1TZBack, P1BZBack float32
	P2TZ, P2BZ, P2TZBack, P2BZBack float32

	// EmitCeiling/EmitFloor: whether a front-facing flat should be drawn
	// above/below this seg.
	EmitCeiling bool
	EmitFloor   bool

	// EmitUpperOccluder/EmitLowerOccluder: for two-sided segs only, whether
	// the upper/lower wall part fully occludes the columns behind it.
	EmitUpperOccluder bool
	EmitLowerOccluder bool
	// UpperOccluderUsesBackZ/LowerOccluderUsesBackZ: which sector's height
	// the occluder's screen-space extent is computed from.
	UpperOccluderUsesBackZ bool
	LowerOccluderUsesBackZ bool

	P1TexX, P2TexX float32

	P1WorldX, P1WorldY float32
	P2WorldX, P2WorldY float32
}

// populateSegVertexAttribs fills in the seg's texture-space and world-space
// vertex attributes: values that clipping interpolates but no transform
// ever changes.
func populateSegVertexAttribs(seg *Seg, side *Side, ds *DrawSeg) {
	segDX := seg.V2.X - seg.V1.X
	segDY := seg.V2.Y - seg.V1.Y
	segLength := float32(math.Sqrt(float64(segDX*segDX + segDY*segDY)))
	texXOffset := seg.TexXOffset + side.TexXOffset

	ds.P1TexX = texXOffset
	ds.P2TexX = texXOffset + segLength - 0.001

	ds.P1WorldX, ds.P1WorldY = seg.V1.X, seg.V1.Y
	ds.P2WorldX, ds.P2WorldY = seg.V2.X, seg.V2.Y
}

// transformSegXYToViewSpace moves the seg's endpoints into camera-relative
// space and rotates them by the view angle.
func transformSegXYToViewSpace(seg *Seg, cam *Camera, ds *DrawSeg) {
	p1x := seg.V1.X - cam.ViewX
	p1y := seg.V1.Y - cam.ViewY
	p2x := seg.V2.X - cam.ViewX
	p2y := seg.V2.Y - cam.ViewY

	sin, cos := cam.ViewSin, cam.ViewCos
	ds.P1X = cos*p1x - sin*p1y
	ds.P1Y = sin*p1x + cos*p1y
	ds.P2X = cos*p2x - sin*p2y
	ds.P2Y = sin*p2x + cos*p2y
}

// transformSegXYWToClipSpace applies the projection matrix. Doom's 'y'
// plays the role of depth ('z' in the matrix), carried through as 'y' on
// DrawSeg to match the rest of this file.
func transformSegXYWToClipSpace(ds *DrawSeg, proj ProjectionMatrix) {
	y1, y2 := ds.P1Y, ds.P2Y

	ds.P1X *= proj.R0C0
	ds.P2X *= proj.R0C0
	ds.P1Y = proj.R2C2*y1 + proj.R2C3
	ds.P2Y = proj.R2C2*y2 + proj.R2C3
	ds.P1W = y1
	ds.P2W = y2
}

func lerp32(a, b, t float32) float32 { return a + (b-a)*t }

// clipSegAgainstFrontPlane clips the seg to the near plane (w=-y in clip
// space). Returns false if the whole seg is behind the camera.
func clipSegAgainstFrontPlane(ds *DrawSeg) bool {
	p1Dist := ds.P1Y + ds.P1W
	p2Dist := ds.P2Y + ds.P2W
	p1In := p1Dist >= 0
	p2In := p2Dist >= 0

	if p1In == p2In {
		return p1In
	}

	t := absF32(p1Dist) / (absF32(p1Dist) + absF32(p2Dist))
	newX := lerp32(ds.P1X, ds.P2X, t)
	newY := lerp32(ds.P1Y, ds.P2Y, t)
	newTexX := lerp32(ds.P1TexX, ds.P2TexX, t)
	newWorldX := lerp32(ds.P1WorldX, ds.P2WorldX, t)
	newWorldY := lerp32(ds.P1WorldY, ds.P2WorldY, t)

	if p1In {
		ds.P2X, ds.P2Y, ds.P2W = newX, newY, -newY
		ds.P2TexX, ds.P2WorldX, ds.P2WorldY = newTexX, newWorldX, newWorldY
	} else {
		ds.P1X, ds.P1Y, ds.P1W = newX, newY, -newY
		ds.P1TexX, ds.P1WorldX, ds.P1WorldY = newTexX, newWorldX, newWorldY
	}
	return true
}

// clipSegAgainstLeftPlane clips the seg to the left plane (w=-x in clip
// space). Returns false if the whole seg is to the left of the frustum.
func clipSegAgainstLeftPlane(ds *DrawSeg) bool {
	p1Dist := ds.P1X + ds.P1W
	p2Dist := ds.P2X + ds.P2W
	p1In := p1Dist >= 0
	p2In := p2Dist >= 0

	if p1In == p2In {
		return p1In
	}

	t := absF32(p1Dist) / (absF32(p1Dist) + absF32(p2Dist))
	newX := lerp32(ds.P1X, ds.P2X, t)
	newY := lerp32(ds.P1Y, ds.P2Y, t)
	newTexX := lerp32(ds.P1TexX, ds.P2TexX, t)
	newWorldX := lerp32(ds.P1WorldX, ds.P2WorldX, t)
	newWorldY := lerp32(ds.P1WorldY, ds.P2WorldY, t)

	if p1In {
		ds.P2X, ds.P2Y, ds.P2W = newX, newY, -newX
		ds.P2TexX, ds.P2WorldX, ds.P2WorldY = newTexX, newWorldX, newWorldY
	} else {
		ds.P1X, ds.P1Y, ds.P1W = newX, newY, -newX
		ds.P1TexX, ds.P1WorldX, ds.P1WorldY = newTexX, newWorldX, newWorldY
	}
	return true
}

// clipSegAgainstRightPlane clips the seg to the right plane (w=x in clip
// space). Returns false if the whole seg is to the right of the frustum.
func clipSegAgainstRightPlane(ds *DrawSeg) bool {
	p1Dist := -ds.P1X + ds.P1W
	p2Dist := -ds.P2X + ds.P2W
	p1In := p1Dist >= 0
	p2In := p2Dist >= 0

	if p1In == p2In {
		return p1In
	}

	t := absF32(p1Dist) / (absF32(p1Dist) + absF32(p2Dist))
	newX := lerp32(ds.P1X, ds.P2X, t)
	newY := lerp32(ds.P1Y, ds.P2Y, t)
	newTexX := lerp32(ds.P1TexX, ds.P2TexX, t)
	newWorldX := lerp32(ds.P1WorldX, ds.P2WorldX, t)
	newWorldY := lerp32(ds.P1WorldY, ds.P2WorldY, t)

	if p1In {
		ds.P2X, ds.P2Y, ds.P2W = newX, newY, newX
		ds.P2TexX, ds.P2WorldX, ds.P2WorldY = newTexX, newWorldX, newWorldY
	} else {
		ds.P1X, ds.P1Y, ds.P1W = newX, newY, newX
		ds.P1TexX, ds.P1WorldX, ds.P1WorldY = newTexX, newWorldX, newWorldY
	}
	return true
}

func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// addClipSpaceZValuesForSeg fills in the seg's top/bottom clip-space
// height values from its front (and, for two-sided segs, back) sector, and
// decides which floor/ceiling/occluder fragments this seg can contribute.
func addClipSpaceZValuesForSeg(ds *DrawSeg, seg *Seg, m *MapData, cam *Camera) {
	front := &m.Sectors[seg.FrontSectorIndex]
	frontFloorZ := FixedToFloat(front.FloorHeight)
	frontCeilZ := FixedToFloat(front.CeilingHeight)
	frontFloorViewZ := frontFloorZ - cam.ViewZ
	frontCeilViewZ := frontCeilZ - cam.ViewZ

	ds.EmitCeiling = frontCeilViewZ > 0
	ds.EmitFloor = frontFloorViewZ < 0

	ds.P1TZ = frontCeilViewZ * cam.Proj.R1C1
	ds.P1BZ = frontFloorViewZ * cam.Proj.R1C1
	ds.P2TZ = frontCeilViewZ * cam.Proj.R1C1
	ds.P2BZ = frontFloorViewZ * cam.Proj.R1C1

	if seg.BackSectorIndex == noIndex {
		ds.P1TZBack, ds.P1BZBack, ds.P2TZBack, ds.P2BZBack = 0, 0, 0, 0
		return
	}

	back := &m.Sectors[seg.BackSectorIndex]
	backFloorZ := FixedToFloat(back.FloorHeight)
	backCeilZ := FixedToFloat(back.CeilingHeight)
	backFloorViewZ := backFloorZ - cam.ViewZ
	backCeilViewZ := backCeilZ - cam.ViewZ

	ds.P1TZBack = backCeilViewZ * cam.Proj.R1C1
	ds.P1BZBack = backFloorViewZ * cam.Proj.R1C1
	ds.P2TZBack = backCeilViewZ * cam.Proj.R1C1
	ds.P2BZBack = backFloorViewZ * cam.Proj.R1C1

	clipFloorZ := maxF32(frontFloorZ, backFloorZ)
	if clipFloorZ < backCeilZ {
		switch {
		case frontFloorZ < backFloorZ:
			ds.EmitLowerOccluder = cam.ViewZ <= backFloorZ
			ds.LowerOccluderUsesBackZ = true
		case frontFloorZ > backFloorZ:
			ds.EmitLowerOccluder = cam.ViewZ >= backFloorZ
			ds.LowerOccluderUsesBackZ = false
		default:
			ds.EmitLowerOccluder = false
		}

		switch {
		case frontCeilZ < backCeilZ:
			ds.EmitUpperOccluder = cam.ViewZ <= backCeilZ
			ds.UpperOccluderUsesBackZ = false
		case frontCeilZ > backCeilZ:
			ds.EmitUpperOccluder = cam.ViewZ >= backCeilZ
			ds.UpperOccluderUsesBackZ = true
		default:
			ds.EmitUpperOccluder = false
		}
	} else {
		// Closed door or crusher: fully blocks the view either way.
		ds.EmitLowerOccluder, ds.LowerOccluderUsesBackZ = true, true
		ds.EmitUpperOccluder, ds.UpperOccluderUsesBackZ = true, true
	}
}

func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// doPerspectiveDivisionForSeg converts clip-space coordinates to normalized
// device coordinates by dividing through by w, caching 1/w for later
// perspective-correct interpolation.
func doPerspectiveDivisionForSeg(ds *DrawSeg) {
	w1Inv := 1.0 / ds.P1W
	w2Inv := 1.0 / ds.P2W
	ds.P1WInv = w1Inv
	ds.P2WInv = w2Inv

	ds.P1X *= w1Inv
	ds.P1Y *= w1Inv
	ds.P2X *= w2Inv
	ds.P2Y *= w2Inv

	ds.P1TZ *= w1Inv
	ds.P1BZ *= w1Inv
	ds.P1TZBack *= w1Inv
	ds.P1BZBack *= w1Inv

	ds.P2TZ *= w2Inv
	ds.P2BZ *= w2Inv
	ds.P2TZBack *= w2Inv
	ds.P2BZBack *= w2Inv
}

// transformSegXZToScreenSpace maps normalized device coordinates (-1..+1)
// to screen pixel coordinates.
func transformSegXZToScreenSpace(ds *DrawSeg, viewWidth, viewHeight int) {
	viewW := float32(viewWidth) - 0.5
	viewH := float32(viewHeight) - 0.5

	ds.P1X = (ds.P1X*0.5 + 0.5) * viewW
	ds.P2X = (ds.P2X*0.5 + 0.5) * viewW

	ds.P1TZ = (ds.P1TZ*0.5 + 0.5) * viewH
	ds.P1BZ = (ds.P1BZ*0.5 + 0.5) * viewH
	ds.P2TZ = (ds.P2TZ*0.5 + 0.5) * viewH
	ds.P2BZ = (ds.P2BZ*0.5 + 0.5) * viewH

	ds.P1TZBack = (ds.P1TZBack*0.5 + 0.5) * viewH
	ds.P1BZBack = (ds.P1BZBack*0.5 + 0.5) * viewH
	ds.P2TZBack = (ds.P2TZBack*0.5 + 0.5) * viewH
	ds.P2BZBack = (ds.P2BZBack*0.5 + 0.5) * viewH
}

// isScreenSpaceSegBackFacing reports whether a seg faces away from the
// camera. Front-facing segs are always left-to-right once projected to
// screen space, so a seg whose endpoints come out reversed is back-facing.
func isScreenSpaceSegBackFacing(ds *DrawSeg) bool {
	return ds.P1X >= ds.P2X
}

// PrepareDrawSeg runs one seg through the full view/clip/screen-space
// pipeline. ok is false if the seg was clipped away entirely (outside the
// frustum) or turned out to be back-facing, in which case ds is not valid
// and nothing further should be done with this seg this frame.
func PrepareDrawSeg(seg *Seg, m *MapData, cam *Camera) (ds DrawSeg, ok bool) {
	side := &m.Sides[seg.SideDefIndex]

	populateSegVertexAttribs(seg, side, &ds)
	transformSegXYToViewSpace(seg, cam, &ds)
	transformSegXYWToClipSpace(&ds, cam.Proj)

	if !clipSegAgainstFrontPlane(&ds) {
		return ds, false
	}
	if !clipSegAgainstLeftPlane(&ds) {
		return ds, false
	}
	if !clipSegAgainstRightPlane(&ds) {
		return ds, false
	}

	addClipSpaceZValuesForSeg(&ds, seg, m, cam)
	doPerspectiveDivisionForSeg(&ds)
	transformSegXZToScreenSpace(&ds, cam.ViewWidth, cam.ViewHeight)

	if isScreenSpaceSegBackFacing(&ds) {
		return ds, false
	}
	return ds, true
}
