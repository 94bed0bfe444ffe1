// blit.go - column and rectangle blitting onto the XRGB8888 framebuffer
//
// Source images are RGBA5551 (the ARGB1555 of the original) or XRGB8888;
// the destination is always row-major XRGB8888. Supports per-pixel alpha
// test/blend, RGB/alpha color multiply, horizontal/vertical wrap modes,
// and column clipping. Grounded on original_source/source/GFX/Blit.h.
//
// The original specializes blitColumn per flag combination at compile
// time via C++ templates; this port checks the same flags at runtime
// instead, and always addresses the source image with full 2D indexing
// rather than the original's row/column fast path — a performance-only
// optimization with no effect on the decoded pixel values.

package render

// BlitFlags mirrors the Blit::BCF_* flag set controlling column blits.
type BlitFlags uint32

const (
	BlitHorzColumn   BlitFlags = 0x00000001 // blit a horizontal run instead of a vertical column
	BlitRowMajorImg  BlitFlags = 0x00000002 // source image is row major instead of column major
	BlitStepX        BlitFlags = 0x00000004 // step the source x coordinate per output pixel
	BlitStepY        BlitFlags = 0x00000008 // step the source y coordinate per output pixel
	BlitAlphaTest    BlitFlags = 0x00000010 // discard pixels with source alpha 0
	BlitColorMultRGB BlitFlags = 0x00000020 // multiply source RGB by rMul/gMul/bMul
	BlitColorMultA   BlitFlags = 0x00000040 // multiply source alpha by aMul
	BlitAlphaBlend   BlitFlags = 0x00000080 // blend with the destination by source alpha
	BlitHWrapWrap    BlitFlags = 0x00000100
	BlitHWrapClamp   BlitFlags = 0x00000200
	BlitHWrapDiscard BlitFlags = 0x00000400
	BlitVWrapWrap    BlitFlags = 0x00000800
	BlitVWrapClamp   BlitFlags = 0x00001000
	BlitVWrapDiscard BlitFlags = 0x00002000
	BlitHClip        BlitFlags = 0x00004000 // clip the column against dstW
	BlitVClip        BlitFlags = 0x00008000 // clip the column against dstH
)

// calcTexelStep computes the per-pixel texture coordinate step needed to
// render the whole of textureSize texels across renderSize output pixels,
// biased to never quite reach textureSize itself.
func calcTexelStep(textureSize, renderSize uint32) Fixed {
	if textureSize <= 1 || renderSize <= 1 {
		return 0
	}
	numPixelSteps := Fixed(int32(renderSize) - 1)
	return FixedDiv((Fixed(textureSize)<<FracBits)-1, numPixelSteps<<FracBits)
}

// wrapXCoord applies the flags' horizontal wrap mode (if any) to x.
func wrapXCoord(flags BlitFlags, x int32, width uint32) uint32 {
	if flags&(BlitHWrapWrap|BlitHWrapClamp) == 0 {
		return uint32(x)
	}
	if flags&BlitHWrapWrap != 0 {
		x = int32(uint32(x) % width)
	}
	if flags&BlitHWrapClamp != 0 {
		if x < 0 {
			x = 0
		} else if x >= int32(width) {
			x = int32(width) - 1
		}
	}
	return uint32(x)
}

// wrapYCoord applies the flags' vertical wrap mode (if any) to y.
func wrapYCoord(flags BlitFlags, y int32, height uint32) uint32 {
	if flags&(BlitVWrapWrap|BlitVWrapClamp) == 0 {
		return uint32(y)
	}
	if flags&BlitVWrapWrap != 0 {
		y = int32(uint32(y) % height)
	}
	if flags&BlitVWrapClamp != 0 {
		if y < 0 {
			y = 0
		} else if y >= int32(height) {
			y = int32(height) - 1
		}
	}
	return uint32(y)
}

// srcSample holds one source pixel already split into channels: r/g/b in
// 0-255, texA the raw (pre-multiply) alpha used for the alpha test, and a
// the 0-1 alpha used for multiply/blend.
type srcSample struct {
	r, g, b float32
	texA    uint8
	a       float32
}

// sampleRGBA5551 decodes one ARGB1555 texel (A:15 R:14-10 G:9-5 B:4-0)
// into 0-255 channel floats; alpha is already a 0/1 bit.
func sampleRGBA5551(p uint16) srcSample {
	r := uint8((p>>10)&0x1F) << 3
	g := uint8((p>>5)&0x1F) << 3
	b := uint8(p&0x1F) << 3
	texA := uint8((p >> 15) & 0x01)
	return srcSample{r: float32(r), g: float32(g), b: float32(b), texA: texA, a: float32(texA)}
}

// sampleXRGB8888 decodes one XRGB8888/ARGB8888 texel into 0-255 channel
// floats; alpha is normalized to 0-1.
func sampleXRGB8888(p uint32) srcSample {
	texA := uint8(p >> 24)
	r := uint8(p >> 16)
	g := uint8(p >> 8)
	b := uint8(p)
	return srcSample{r: float32(r), g: float32(g), b: float32(b), texA: texA, a: float32(texA) / 255.0}
}

// blitColumnParams bundles blitColumn's many positional arguments so the
// call sites in BlitSprite read cleanly.
type blitColumnParams struct {
	flags                  BlitFlags
	srcW, srcH             uint32
	sample                 func(x, y uint32) srcSample
	srcX, srcY             float32
	srcXSubPx, srcYSubPx   float32
	dst                    []uint32
	dstW, dstH, dstPitch   uint32
	dstX, dstY             int32
	dstCount               uint32
	srcXStep, srcYStep     float32
	rMul, gMul, bMul, aMul float32
}

// blitColumn blits a single vertical or horizontal run of pixels from a
// source image into dst, with optional clipping, wrap, alpha test/blend
// and color multiply. Grounded on Blit::blitColumn.
func blitColumn(p blitColumnParams) {
	assertf(p.srcW > 0 && p.srcH > 0, "blitColumn: zero-sized source image")
	assertf(p.dstW > 0 && p.dstH > 0 && p.dstPitch > 0, "blitColumn: zero-sized destination image")

	isVertColumn := p.flags&BlitHorzColumn == 0
	isHorzColumn := !isVertColumn
	doXStep := p.flags&BlitStepX != 0
	doYStep := p.flags&BlitStepY != 0
	doAlphaTest := p.flags&BlitAlphaTest != 0
	doColorMultRGB := p.flags&BlitColorMultRGB != 0
	doColorMultA := p.flags&BlitColorMultA != 0
	doAlphaBlend := p.flags&BlitAlphaBlend != 0
	doHWrapDiscard := p.flags&BlitHWrapDiscard != 0
	doVWrapDiscard := p.flags&BlitVWrapDiscard != 0
	doHClip := p.flags&BlitHClip != 0
	doVClip := p.flags&BlitVClip != 0

	dstX, dstY, dstCount := p.dstX, p.dstY, p.dstCount
	srcX, srcY := p.srcX, p.srcY
	srcXSubPx, srcYSubPx := p.srcXSubPx, p.srcYSubPx

	if doAlphaTest && doColorMultA && p.aMul <= 0.0 {
		return
	}

	if isVertColumn && doHClip {
		if uint32(dstX) >= p.dstW {
			return
		}
	}
	if isHorzColumn && doVClip {
		if uint32(dstY) >= p.dstH {
			return
		}
	}

	if isVertColumn && doVClip {
		numOut := -dstY
		if numOut > 0 {
			if uint32(numOut) >= dstCount {
				return
			}
			dstY = 0
			srcY = srcY + p.srcYStep*float32(numOut) + srcYSubPx
			srcYSubPx = 0
			dstCount -= uint32(numOut)
		}
		endY := dstY + int32(dstCount)
		if endY > int32(p.dstH) {
			dstCount -= uint32(endY - int32(p.dstH))
		}
	}

	if isHorzColumn && doHClip {
		numOut := -dstX
		if numOut > 0 {
			if uint32(numOut) >= dstCount {
				return
			}
			dstX = 0
			srcX = srcX + p.srcXStep*float32(numOut) + srcXSubPx
			srcXSubPx = 0
			dstCount -= uint32(numOut)
		}
		endX := dstX + int32(dstCount)
		if endX > int32(p.dstW) {
			dstCount -= uint32(endX - int32(p.dstW))
		}
	}

	if doHWrapDiscard && !doXStep {
		if uint32(int32(srcX)) >= p.srcW {
			return
		}
	}
	if doVWrapDiscard && !doYStep {
		if uint32(int32(srcY)) >= p.srcH {
			return
		}
	}

	if dstCount == 0 {
		return
	}

	firstDstIdx := uint32(dstY)*p.dstPitch + uint32(dstX)
	pixelStep := uint32(1)
	if isVertColumn {
		pixelStep = p.dstPitch
	}

	curSrcXInt := uint32(int32(srcX))
	curSrcYInt := uint32(int32(srcY))
	nextSrcX := srcX + srcXSubPx
	nextSrcY := srcY + srcYSubPx
	didHDiscardClamp := false
	didVDiscardClamp := false

	dstIdx := firstDstIdx
	for i := uint32(0); i < dstCount; i++ {
		func() {
			if doHWrapDiscard && doXStep {
				if curSrcXInt >= p.srcW {
					if didHDiscardClamp {
						return
					}
					curSrcXInt = wrapXCoord(BlitHWrapClamp, int32(curSrcXInt), p.srcW)
					didHDiscardClamp = true
					prevSrcXInt := uint32(int32(nextSrcX - p.srcXStep))
					if prevSrcXInt == curSrcXInt {
						return
					}
				}
			}
			if doVWrapDiscard && doYStep {
				if curSrcYInt >= p.srcH {
					if didVDiscardClamp {
						return
					}
					curSrcYInt = wrapYCoord(BlitVWrapClamp, int32(curSrcYInt), p.srcH)
					didVDiscardClamp = true
					prevSrcYInt := uint32(int32(nextSrcY - p.srcYStep))
					if prevSrcYInt == curSrcYInt {
						return
					}
				}
			}

			x := wrapXCoord(p.flags, int32(curSrcXInt), p.srcW)
			y := wrapYCoord(p.flags, int32(curSrcYInt), p.srcH)
			smp := p.sample(x, y)

			r, g, b := smp.r, smp.g, smp.b
			a := smp.a

			if doColorMultRGB {
				r = min(r*p.rMul, 255.0)
				g = min(g*p.gMul, 255.0)
				b = min(b*p.bMul, 255.0)
			}
			if doColorMultA {
				a = min(a*p.aMul, 1.0)
			}

			if doAlphaTest && smp.texA == 0 {
				return
			}

			if doAlphaBlend {
				dstPixel := p.dst[dstIdx]
				dstR := float32(uint8(dstPixel >> 16))
				dstG := float32(uint8(dstPixel >> 8))
				dstB := float32(uint8(dstPixel))
				srcFactor := a
				dstFactor := 1.0 - a
				r = r*srcFactor + dstR*dstFactor
				g = g*srcFactor + dstG*dstFactor
				b = b*srcFactor + dstB*dstFactor
			}

			p.dst[dstIdx] = uint32(r)<<16 | uint32(g)<<8 | uint32(b)
		}()

		if doXStep {
			nextSrcX += p.srcXStep
			curSrcXInt = uint32(int32(nextSrcX))
		}
		if doYStep {
			nextSrcY += p.srcYStep
			curSrcYInt = uint32(int32(nextSrcY))
		}
		dstIdx += pixelStep
	}
}

func clamp32(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}

// BlitColumn16 blits a single vertical or horizontal run of pixels from
// an RGBA5551 source image (column major by default, row major if
// BlitRowMajorImg is set) into dst. This is the primitive the wall/floor/
// ceiling and sprite column rasterizers build on.
func BlitColumn16(
	flags BlitFlags,
	src []uint16, srcW, srcH uint32,
	srcX, srcY, srcXSubPx, srcYSubPx float32,
	dst []uint32, dstW, dstH, dstPitch uint32,
	dstX, dstY int32, dstCount uint32,
	srcXStep, srcYStep float32,
	rMul, gMul, bMul, aMul float32,
) {
	rowMajor := flags&BlitRowMajorImg != 0
	sample := func(x, y uint32) srcSample {
		if rowMajor {
			return sampleRGBA5551(src[y*srcW+x])
		}
		return sampleRGBA5551(src[x*srcH+y])
	}
	blitColumn(blitColumnParams{
		flags: flags, srcW: srcW, srcH: srcH, sample: sample,
		srcX: srcX, srcY: srcY, srcXSubPx: srcXSubPx, srcYSubPx: srcYSubPx,
		dst: dst, dstW: dstW, dstH: dstH, dstPitch: dstPitch,
		dstX: dstX, dstY: dstY, dstCount: dstCount,
		srcXStep: srcXStep, srcYStep: srcYStep,
		rMul: rMul, gMul: gMul, bMul: bMul, aMul: aMul,
	})
}

// BlitColumn32 is BlitColumn16 for a row-major XRGB8888/ARGB8888 source
// image (e.g. prerendered UI elements), always addressed row major.
func BlitColumn32(
	flags BlitFlags,
	src []uint32, srcW, srcH uint32,
	srcX, srcY, srcXSubPx, srcYSubPx float32,
	dst []uint32, dstW, dstH, dstPitch uint32,
	dstX, dstY int32, dstCount uint32,
	srcXStep, srcYStep float32,
	rMul, gMul, bMul, aMul float32,
) {
	blitColumn(blitColumnParams{
		flags: flags, srcW: srcW, srcH: srcH,
		sample: func(x, y uint32) srcSample { return sampleXRGB8888(src[y*srcW+x]) },
		srcX: srcX, srcY: srcY, srcXSubPx: srcXSubPx, srcYSubPx: srcYSubPx,
		dst: dst, dstW: dstW, dstH: dstH, dstPitch: dstPitch,
		dstX: dstX, dstY: dstY, dstCount: dstCount,
		srcXStep: srcXStep, srcYStep: srcYStep,
		rMul: rMul, gMul: gMul, bMul: bMul, aMul: aMul,
	})
}

// BlitSpriteParams bundles BlitSprite's arguments.
type BlitSpriteParams struct {
	Flags                  BlitFlags // only color-mult/alpha-test/blend flags are meaningful here
	SrcPixels              []uint16  // row-major RGBA5551 source image
	SrcPixelsW, SrcPixelsH uint32
	SrcX, SrcY             float32 // source rectangle origin
	SrcW, SrcH             float32 // source rectangle size
	Dst                    []uint32
	DstPixelsW, DstPixelsH uint32
	DstPixelsPitch         uint32
	DstX, DstY             float32 // destination rectangle origin
	DstW, DstH             float32 // destination rectangle size
	RMul, GMul, BMul, AMul float32
}

// BlitSprite scales and blits a rectangular region of a row-major
// RGBA5551 image into the destination, one horizontal run per
// destination row. Always discards out-of-bounds source coordinates;
// wrap/clamp modes are not meaningful for sprite blitting. Grounded on
// Blit::blitSprite.
func BlitSprite(p BlitSpriteParams) {
	disallowed := BlitHorzColumn | BlitRowMajorImg | BlitStepX | BlitStepY |
		BlitHWrapWrap | BlitHWrapClamp | BlitHWrapDiscard |
		BlitVWrapWrap | BlitVWrapClamp | BlitVWrapDiscard
	assertf(p.Flags&disallowed == 0, "BlitSprite: flags control sprite-blit-only behavior")

	if p.DstW <= 0 || p.DstH <= 0 {
		return
	}

	dstXi := uint32(p.DstX)
	dstXiEnd := uint32(p.DstX + ceil32(p.DstW))
	dstYi := uint32(p.DstY)
	dstYiEnd := uint32(p.DstY + ceil32(p.DstH))

	dstXCount := (dstXiEnd - dstXi) + 1
	dstYCount := (dstYiEnd - dstYi) + 1

	var srcXStep, srcYStep float32
	if dstXCount > 0 {
		srcXStep = (p.SrcW + 0.01) / p.DstW
	}
	if dstYCount > 0 {
		srcYStep = (p.SrcH + 0.01) / p.DstH
	}

	flags := p.Flags | BlitHorzColumn | BlitRowMajorImg | BlitStepX | BlitHWrapDiscard | BlitVWrapDiscard

	for row := uint32(0); row < dstYCount; row++ {
		blitColumn(blitColumnParams{
			flags:    flags,
			srcW:     p.SrcPixelsW,
			srcH:     p.SrcPixelsH,
			sample:   func(x, y uint32) srcSample { return sampleRGBA5551(p.SrcPixels[y*p.SrcPixelsW+x]) },
			srcX:     p.SrcX,
			srcY:     p.SrcY + srcYStep*float32(row),
			dst:      p.Dst,
			dstW:     p.DstPixelsW,
			dstH:     p.DstPixelsH,
			dstPitch: p.DstPixelsPitch,
			dstX:     int32(dstXi),
			dstY:     int32(dstYi + row),
			dstCount: dstXCount,
			srcXStep: srcXStep,
			srcYStep: 0,
			rMul:     p.RMul, gMul: p.GMul, bMul: p.BMul, aMul: p.AMul,
		})
	}
}

func ceil32(v float32) float32 {
	i := float32(int32(v))
	if i < v {
		return i + 1
	}
	return i
}

// BlitRect fills or alpha-blends a solid color into a rectangular region
// of the destination, clipped to its bounds. Grounded on Blit::blitRect.
func BlitRect(dst []uint32, dstW, dstH, dstPitch uint32, dstX, dstY, rectW, rectH float32, r, g, b, a float32) {
	assertf(dstW > 0 && dstH > 0 && dstPitch > 0, "BlitRect: zero-sized destination image")

	if a <= 0.0 {
		return
	}
	if rectW <= 0.0 || rectH <= 0.0 {
		return
	}

	xi := int32(dstX)
	xiEnd := int32(ceil32(dstX + rectW))
	yi := int32(dstY)
	yiEnd := int32(ceil32(dstY + rectH))

	if xi < 0 {
		xi = 0
	}
	if yi < 0 {
		yi = 0
	}
	if xiEnd > int32(dstW)-1 {
		xiEnd = int32(dstW) - 1
	}
	if yiEnd > int32(dstH)-1 {
		yiEnd = int32(dstH) - 1
	}
	if xi > xiEnd || yi > yiEnd {
		return
	}

	if a >= 1.0 {
		color := uint32(clamp32(r*255.0, 0, 255))<<16 | uint32(clamp32(g*255.0, 0, 255))<<8 | uint32(clamp32(b*255.0, 0, 255))
		for y := yi; y <= yiEnd; y++ {
			row := uint32(y) * dstPitch
			for x := xi; x <= xiEnd; x++ {
				dst[row+uint32(x)] = color
			}
		}
		return
	}

	srcR, srcG, srcB := r*255.0, g*255.0, b*255.0
	srcFactor := a
	dstFactor := 1.0 - a
	for y := yi; y <= yiEnd; y++ {
		row := uint32(y) * dstPitch
		for x := xi; x <= xiEnd; x++ {
			dstPixel := dst[row+uint32(x)]
			dstR := float32(uint8(dstPixel >> 16))
			dstG := float32(uint8(dstPixel >> 8))
			dstB := float32(uint8(dstPixel))
			rt := srcR*srcFactor + dstR*dstFactor
			gt := srcG*srcFactor + dstG*dstFactor
			bt := srcB*srcFactor + dstB*dstFactor
			dst[row+uint32(x)] = uint32(clamp32(rt, 0, 255))<<16 | uint32(clamp32(gt, 0, 255))<<8 | uint32(clamp32(bt, 0, 255))
		}
	}
}
