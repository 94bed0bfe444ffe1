// drawers.go - consumes one frame's wall, floor, ceiling, sky, and sprite
// fragments (built by segemit.go and spritepipeline.go) and blits them into
// a destination framebuffer.
//
// Grounded on original_source/source/GFX/Renderer_WallDraw.cpp
// (drawAllWallFragments, drawAllSkyFragments, drawSkyColumn),
// Renderer_FloorDraw.cpp (drawAllFloorFragments, drawAllCeilingFragments,
// drawFlatColumn, doRayFlatPlaneIntersection), and
// Renderer_SpriteDraw.cpp's clipAndDrawSpriteFragment (the two
// Blit::blitColumn<...> branches, one plain and one for MF_SHADOW things).
// Renderer_Draw.cpp holds an older, pre-Blit 3DO-hardware-CCB drawing path
// for the same three fragment kinds (DrawWallColumn/DrawFloorColumn/
// drawSpriteClip) that the modern WallDraw/FloorDraw/SpriteDraw files
// supersede; it's used here only for its call-order comment (sky and walls
// first, then floors/ceilings, then sprites), not as an implementation
// source.
package render

import "math"

// FrameTarget is the destination surface a draw pass writes into: a
// row-major XRGB8888 buffer, its dimensions, and the pixel offset of the
// 3D viewport within it (mirroring gScreenXOffset/gScreenYOffset).
type FrameTarget struct {
	Pixels         []uint32
	Width, Height  uint32
	Pitch          uint32
	XOffset        int32
	YOffset        int32
}

// DrawAllWallFragments blits every wall column segemit.go recorded this
// frame. Grounded on drawAllWallFragments: horizontal and vertical texture
// coordinates both wrap, and the column is tinted by its fragment's light
// multiplier.
func DrawAllWallFragments(cf *ColumnFrame, ft FrameTarget) {
	for _, frag := range cf.WallFrags {
		tex := frag.Texture
		BlitColumn16(
			BlitStepY|BlitHWrapWrap|BlitVWrapWrap|BlitColorMultRGB,
			tex.Pixels, tex.Width, tex.Height,
			float32(frag.TexCoordX), frag.TexCoordY, 0, frag.TexCoordYSubPixelAdjust,
			ft.Pixels, ft.Width, ft.Height, ft.Pitch,
			ft.XOffset+int32(frag.X), ft.YOffset+int32(frag.Y), uint32(frag.Height),
			0, frag.TexCoordYStep,
			frag.LightMul, frag.LightMul, frag.LightMul, 1,
		)
	}
}

// skyAngleToSkyShift folds a full BAM angle difference down to an index
// into a 256-wide sky texture that repeats 4 times over a full turn:
// 2^32 / (256*4) = 2^22. Grounded on drawSkyColumn's literal ">> 22" shift.
const skyAngleToSkyShift = 22

// BuildScreenXToAngleTable precomputes, for every screen column, the BAM
// angle offset from the view's forward direction a ray through that column
// would travel. Mirrors gScreenXToAngleBAM, whose own construction was not
// among the retrieved sources (only drawSkyColumn's use of it was); derived
// here as the algebraic inverse of transformSpriteXBoundsAndWToClipSpace/
// transformSpriteCoordsToScreenSpace's forward view-to-screen mapping,
// evaluated at the near plane where view-space depth is exactly zNearClip.
func BuildScreenXToAngleTable(viewWidth int, proj ProjectionMatrix) []Angle {
	table := make([]Angle, viewWidth)
	screenW := float32(viewWidth) - 0.5
	for x := 0; x < viewWidth; x++ {
		ndcX := (float32(x)/screenW)*2 - 1
		viewX := ndcX * zNearClip / proj.R0C0
		table[x] = PointToAngle(0, 0, FloatToFixed(viewX), FloatToFixed(zNearClip))
	}
	return table
}

// drawSkyColumn draws one column of the sky backdrop behind everything
// else, scaled so a reference 160-pixel-tall view always shows the whole
// texture height. Grounded on drawSkyColumn in Renderer_WallDraw.cpp.
func drawSkyColumn(x uint32, maxColHeight uint32, viewAngle Angle, screenXToAngle []Angle, skyTex *Texture, viewHeight int, ft FrameTarget) {
	angle := viewAngle + screenXToAngle[x]
	texX := uint32(angle>>skyAngleToSkyShift) & 0xFF

	skyScale := FixedDiv(FloatToFixed(float32(viewHeight)), FloatToFixed(referenceViewHeight))
	scaledColHeight := FixedMul(FloatToFixed(float32(skyTex.Height)), skyScale)
	roundColHeight := uint32(0)
	if scaledColHeight&(FracUnit-1) != 0 {
		roundColHeight = 1
	}
	colHeight := uint32(scaledColHeight>>FracBits) + roundColHeight

	// colHeight only fixes the texture's vertical scale (texYStep); the
	// number of rows actually drawn is the unoccluded run the caller
	// measured up to the visible ceiling line (maxColHeight).
	texYStep := FixedToFloat(calcTexelStep(skyTex.Height, colHeight))

	BlitColumn16(
		BlitStepY,
		skyTex.Pixels, skyTex.Width, skyTex.Height,
		float32(texX), 0, 0, 0,
		ft.Pixels, ft.Width, ft.Height, ft.Pitch,
		ft.XOffset+int32(x), ft.YOffset, maxColHeight,
		0, texYStep,
		1, 1, 1, 1,
	)
}

// referenceViewHeight mirrors Renderer::REFERENCE_3D_VIEW_HEIGHT.
const referenceViewHeight = 160

// DrawAllSkyFragments draws every recorded sky column. screenXToAngle must
// be sized to the frame's view width (BuildScreenXToAngleTable).
func DrawAllSkyFragments(cf *ColumnFrame, viewAngle Angle, screenXToAngle []Angle, skyTex *Texture, viewHeight int, ft FrameTarget) {
	for _, frag := range cf.SkyFrags {
		drawSkyColumn(uint32(frag.X), uint32(frag.Height), viewAngle, screenXToAngle, skyTex, viewHeight, ft)
	}
}

// NearPlane holds the precomputed world-space geometry of the screen's
// projection plane at depth zNearClip, used to cast a primary ray through
// any screen column/row without repeating the trig per pixel.
//
// Not present in the retrieved source beyond its field names and per-pixel
// use in Renderer_FloorDraw.cpp (gNearPlaneP1x/Tz/XStepPerViewCol/etc. are
// declared extern in Renderer_Internal.h and read in drawFlatColumn, but
// never assigned anywhere in the retrieved corpus). Derived here as the
// algebraic inverse of the screen projection already established by
// transformWorldCoordsToViewSpace/transformSpriteCoordsToScreenSpace: the
// near-plane corner/step values that, run back through that same forward
// transform, reproduce the screen's column/row coordinates exactly.
type NearPlane struct {
	P1x, P1y           float32
	XStep, YStep       float32
	Tz                 float32
	ZStep              float32
}

// NewNearPlane computes a frame's near-plane geometry from its camera.
func NewNearPlane(cam *Camera) NearPlane {
	halfW := zNearClip / cam.Proj.R0C0
	halfH := zNearClip / -cam.Proj.R1C1

	screenW := float32(cam.ViewWidth) - 0.5
	screenH := float32(cam.ViewHeight) - 0.5

	viewX0 := -halfW
	tx0 := cam.ViewCos*viewX0 + cam.ViewSin*zNearClip
	ty0 := -cam.ViewSin*viewX0 + cam.ViewCos*zNearClip

	xStep := cam.ViewCos * (2 * halfW / screenW)
	yStep := -cam.ViewSin * (2 * halfW / screenW)

	return NearPlane{
		P1x:   cam.ViewX + tx0,
		P1y:   cam.ViewY + ty0,
		XStep: xStep,
		YStep: yStep,
		Tz:    cam.ViewZ + halfH,
		ZStep: -(2 * halfH) / screenH,
	}
}

// doRayFlatPlaneIntersection intersects a ray against a horizontal plane at
// planeZ, the plane facing up for floors and down for ceilings. Grounded on
// doRayFlatPlaneIntersection.
func doRayFlatPlaneIntersection(mode flatKind, planeZ, originX, originY, originZ, dirX, dirY, dirZ float32) (ix, iy, iz float32) {
	var divisor, dividend float32
	if mode == flatKindFloor {
		divisor = dirZ
		dividend = originZ - planeZ
	} else {
		divisor = -dirZ
		dividend = -originZ + planeZ
	}

	t := -dividend / divisor
	ix = originX + dirX*t
	iy = originY + dirY*t
	iz = originZ + dirZ*t
	return
}

// drawFlatColumn draws one column of a floor or ceiling fragment by
// ray-casting the near plane through the fragment's world-space plane
// height and sampling the always-64x64 flat texture with wraparound.
// Grounded on drawFlatColumn; unlike the original this port never bothers
// with visplanes or horizontal-span conversion, matching the original
// author's own comment that it isn't worth it on modern hardware.
func drawFlatColumn(mode flatKind, frag FlatFragment, np NearPlane, cam *Camera, ft FrameTarget) {
	assertf(frag.Depth >= 0, "drawFlatColumn: negative depth")

	nearPlaneX := np.P1x + (float32(frag.X)+0.5)*np.XStep
	nearPlaneY := np.P1y + (float32(frag.X)+0.5)*np.YStep
	rayDirX := nearPlaneX - cam.ViewX
	rayDirY := nearPlaneY - cam.ViewY

	var curDstY, endDstY int32
	if mode == flatKindFloor {
		curDstY = int32(frag.Y)
		endDstY = int32(frag.Y) + int32(frag.Height)
	} else {
		curDstY = int32(frag.Y) + int32(frag.Height) - 1
		endDstY = int32(frag.Y) - 1
	}

	var ix, iy, iz float32
	if frag.ClampFirstPixel {
		ix, iy, iz = frag.WorldX, frag.WorldY, frag.WorldZ
	} else {
		nearPlaneZ := np.Tz + np.ZStep*(float32(curDstY)+0.5)
		ix, iy, iz = doRayFlatPlaneIntersection(mode, frag.WorldZ, cam.ViewX, cam.ViewY, cam.ViewZ, rayDirX, rayDirY, nearPlaneZ-cam.ViewZ)
	}

	lightParams := getLightParams(uint32(frag.SectorLightLevel))
	pix := frag.Texture.Pixels
	startScreenX := uint32(ft.XOffset) + uint32(frag.X)
	startScreenY := uint32(int32(ft.YOffset) + curDstY)
	dstIdx := startScreenY*ft.Pitch + startScreenX
	dstStep := int32(ft.Pitch)
	if mode != flatKindFloor {
		dstStep = -dstStep
	}

	for {
		if mode == flatKindFloor {
			if curDstY >= endDstY {
				break
			}
		} else if curDstY <= endDstY {
			break
		}

		srcX := uint32(ix) & 63
		srcY := uint32(iy) & 63
		smp := sampleRGBA5551(pix[srcY*64+srcX])

		dist := float32(math.Sqrt(float64((ix-cam.ViewX)*(ix-cam.ViewX) + (iy-cam.ViewY)*(iy-cam.ViewY) + (iz-cam.ViewZ)*(iz-cam.ViewZ))))
		lightMul := lightParams.GetLightMulForDist(dist)

		r := min(smp.r*lightMul, 255)
		g := min(smp.g*lightMul, 255)
		b := min(smp.b*lightMul, 255)
		ft.Pixels[dstIdx] = uint32(r)<<16 | uint32(g)<<8 | uint32(b)

		if mode == flatKindFloor {
			curDstY++
		} else {
			curDstY--
		}
		dstIdx = uint32(int32(dstIdx) + dstStep)

		nearPlaneZ := np.Tz + np.ZStep*(float32(curDstY)+0.5)
		ix, iy, iz = doRayFlatPlaneIntersection(mode, frag.WorldZ, cam.ViewX, cam.ViewY, cam.ViewZ, rayDirX, rayDirY, nearPlaneZ-cam.ViewZ)
	}
}

// DrawAllFloorFragments draws every recorded floor column, top to bottom.
func DrawAllFloorFragments(cf *ColumnFrame, np NearPlane, cam *Camera, ft FrameTarget) {
	for _, frag := range cf.FloorFrags {
		drawFlatColumn(flatKindFloor, frag, np, cam, ft)
	}
}

// DrawAllCeilingFragments draws every recorded ceiling column, bottom to
// top (so clamped first-pixel sampling starts from the correct edge).
func DrawAllCeilingFragments(cf *ColumnFrame, np NearPlane, cam *Camera, ft FrameTarget) {
	for _, frag := range cf.CeilFrags {
		drawFlatColumn(flatKindCeiling, frag, np, cam, ft)
	}
}

// mfShadowColorMult and mfShadowAlpha mirror MF_SHADOW_COLOR_MULT and
// MF_SHADOW_ALPHA: the tint and transparency applied to things carrying
// the shadow (partial invisibility) flag. Grounded on Game/DoomDefines.h.
const (
	mfShadowColorMult = 0.1
	mfShadowAlpha     = 0.5
)

// DrawAllSpriteFragments blits every sprite column spritepipeline.go
// recorded and occlusion.go already clipped this frame. Grounded on the
// drawing half of clipAndDrawSpriteFragment (the clipping half already ran
// in appendClippedSpriteFragment, so frag.Y/Height/TexYStart here are
// final).
func DrawAllSpriteFragments(cf *ColumnFrame, ft FrameTarget) {
	for _, frag := range cf.SpriteFrags {
		if frag.Height == 0 {
			continue
		}

		if !frag.IsTransparent {
			BlitColumn16(
				BlitStepY|BlitAlphaTest|BlitColorMultRGB|BlitVWrapDiscard|BlitVClip,
				frag.Pixels, 1, uint32(frag.TexH),
				0, frag.TexYStart, 0, frag.TexYSubPixelAdjust,
				ft.Pixels, ft.Width, ft.Height, ft.Pitch,
				ft.XOffset+int32(frag.X), ft.YOffset+int32(frag.Y), uint32(frag.Height),
				0, frag.TexYStep,
				frag.LightMul, frag.LightMul, frag.LightMul, 1,
			)
		} else {
			BlitColumn16(
				BlitStepY|BlitAlphaTest|BlitAlphaBlend|BlitColorMultRGB|BlitColorMultA|BlitVWrapDiscard|BlitVClip,
				frag.Pixels, 1, uint32(frag.TexH),
				0, frag.TexYStart, 0, frag.TexYSubPixelAdjust,
				ft.Pixels, ft.Width, ft.Height, ft.Pitch,
				ft.XOffset+int32(frag.X), ft.YOffset+int32(frag.Y), uint32(frag.Height),
				0, frag.TexYStep,
				frag.LightMul*mfShadowColorMult, frag.LightMul*mfShadowColorMult, frag.LightMul*mfShadowColorMult, mfShadowAlpha,
			)
		}
	}
}
