// occlusion.go - clips a sprite column's screen-space extent against the
// wall occluders a frame's seg emission recorded for that column.
//
// Grounded on original_source/source/GFX/Renderer_SpriteDraw.cpp's
// clipSpriteFragmentAgainstOccludingCols. See DESIGN.md for why
// OccludingColumns carries a LineIndex per entry even though the retrieved
// struct definition in Renderer_Internal.h does not: the cross-product test
// below needs a specific line to test the sprite against, and nothing else
// in the corpus supplies one.
package render

// ClipSpriteColumnAgainstOccluders narrows [-1, viewHeight) to the rows of
// screen column x a sprite at the given depth and world position is not
// blocked from by nearer wall geometry. validCount should be a counter
// incremented once per sprite (not per column or per frame): the per-line
// "in front of this sprite" result is expensive (a cross product) and only
// needs computing once per sprite, then reused across every column and
// every occluding entry that shares the same line.
func ClipSpriteColumnAgainstOccluders(
	x uint32,
	depth, spriteWorldX, spriteWorldY float32,
	cf *ColumnFrame,
	m *MapData,
	lines *LineFrameState,
	validCount uint32,
) (yClipT, yClipB int16) {
	yClipT = -1
	yClipB = int16(cf.viewHeight)

	cols := &cf.OccludingCols[x]
	for i := 0; i < cols.Count; i++ {
		lineIdx := cols.LineIndex[i]

		if lines.ValidCount[lineIdx] != validCount {
			lines.BIsInFrontOfSprite[lineIdx] = isLineInFrontOfSprite(m, lines, lineIdx, depth, spriteWorldX, spriteWorldY)
			lines.ValidCount[lineIdx] = validCount
		}

		if !lines.BIsInFrontOfSprite[lineIdx] {
			continue
		}

		bounds := cols.Bounds[i]
		if bounds.Top > yClipT {
			yClipT = bounds.Top
		}
		if bounds.Bottom < yClipB {
			yClipB = bounds.Bottom
		}
	}
	return yClipT, yClipB
}

// isLineInFrontOfSprite decides whether a line occludes a sprite at the
// given depth and world position. The line's drawn-depth range takes
// precedence over the cross-product test: a sprite deeper than the line's
// farthest drawn point is always behind it (even if technically past a
// corner), and a sprite nearer than its closest drawn point is always in
// front of it (even if technically on the line's far side). Only sprites
// whose depth falls between those two extremes need the cross-product,
// which uses whichever of the line's two vertices faces the camera
// (DrawnSideIndex) as the reference point.
func isLineInFrontOfSprite(m *MapData, lines *LineFrameState, lineIdx uint32, depth, spriteWorldX, spriteWorldY float32) bool {
	lineMinDepth := lines.V1DrawDepth[lineIdx]
	lineMaxDepth := lines.V2DrawDepth[lineIdx]
	if lineMinDepth > lineMaxDepth {
		lineMinDepth, lineMaxDepth = lineMaxDepth, lineMinDepth
	}

	if depth > lineMaxDepth {
		return true
	}
	if depth < lineMinDepth {
		return false
	}

	line := &m.Lines[lineIdx]
	var rx, ry, dx, dy float32
	if lines.DrawnSideIndex[lineIdx] == 0 {
		rx = spriteWorldX - line.V1f.X
		ry = spriteWorldY - line.V1f.Y
		dx = line.V2f.X - line.V1f.X
		dy = line.V2f.Y - line.V1f.Y
	} else {
		rx = spriteWorldX - line.V2f.X
		ry = spriteWorldY - line.V2f.Y
		dx = line.V1f.X - line.V2f.X
		dy = line.V1f.Y - line.V2f.Y
	}
	return rx*dy < ry*dx
}
