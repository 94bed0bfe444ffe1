// bsp.go - BSP tree traversal: decides visitation order of subsectors and
// culls subtrees outside the view frustum before any per-seg work runs.
//
// Grounded on original_source/source/GFX/Renderer.cpp (drawPlayerView's
// doBspTraversal call and the view-setup globals in Renderer_Internal.h)
// and spec §4.8; the traversal body itself follows the classic two-phase
// Doom algorithm (point-on-side decides the near child, a bounding-box
// frustum check gates the far child) since doBspTraversal's own body was
// not present in the retrieved source. Global mutable renderer state
// (gViewX/gViewY/gViewAngle/gClipAngle/...) is replaced by a BSPWalker
// value created fresh per frame (§9).
package render

import "math"

// Pipeline is implemented by the seg and sprite emission stages. BSP
// traversal only decides visitation order and frustum culling; it knows
// nothing about rasterization.
type Pipeline interface {
	// EmitSeg processes one seg of a visited subsector, in storage order.
	EmitSeg(segIndex uint32)
	// EmitSectorSprites draws every actor in a sector's thing list, called
	// at most once per sector per frame.
	EmitSectorSprites(sectorIndex uint32)
	// FullyOccluded reports whether every screen column has already been
	// fully covered by nearer geometry, letting traversal stop early.
	FullyOccluded() bool
}

// BSPWalker holds one frame's traversal state: camera pose, the frustum
// clip angles, and the map/pipeline it walks.
type BSPWalker struct {
	Map      *MapData
	Sectors  *SectorFrameState
	Pipeline Pipeline

	ViewX, ViewY float32
	ViewAngle    Angle

	// ClipAngle is the BAM half-field-of-view (gXToViewAngle[0] in the
	// original); DoubleClipAngle is twice that.
	ClipAngle       Angle
	DoubleClipAngle Angle

	// FrameCount is a monotonically increasing counter; a sector's sprites
	// are emitted only the first time this frame its ValidCount differs
	// from FrameCount.
	FrameCount uint32
}

// Traverse walks the BSP tree from its root, invoking w.Pipeline for every
// seg and sector the camera can potentially see. It returns early once the
// pipeline reports every column full.
func (w *BSPWalker) Traverse() {
	w.walkNode(NodeChild{Index: w.Map.RootNodeIndex})
}

func (w *BSPWalker) walkNode(child NodeChild) {
	if w.Pipeline.FullyOccluded() {
		return
	}
	if child.IsSubsector {
		w.visitSubsector(child.Index)
		return
	}

	node := &w.Map.Nodes[child.Index]
	side := w.pointOnSide(node)

	w.walkNode(node.Children[side])
	if w.Pipeline.FullyOccluded() {
		return
	}
	if w.boxInFrustum(&node.BBox[side^1]) {
		w.walkNode(node.Children[side^1])
	}
}

// pointOnSide reports which side (0 or 1) of a node's partition line the
// camera is standing on, via a 2D cross product of the partition's
// direction and the camera-relative position.
func (w *BSPWalker) pointOnSide(node *BSPNode) int {
	nx, ny := FixedToFloat(node.LineX), FixedToFloat(node.LineY)
	dx, dy := FixedToFloat(node.LineDX), FixedToFloat(node.LineDY)

	if dx == 0 {
		if w.ViewX <= nx {
			if dy > 0 {
				return 1
			}
			return 0
		}
		if dy < 0 {
			return 1
		}
		return 0
	}
	if dy == 0 {
		if w.ViewY <= ny {
			if dx < 0 {
				return 1
			}
			return 0
		}
		if dx > 0 {
			return 1
		}
		return 0
	}

	cross := (w.ViewX-nx)*dy - (w.ViewY-ny)*dx
	if cross <= 0 {
		return 1
	}
	return 0
}

// boxInFrustum reports whether a bounding box might be at least partly
// visible. The original's checkcoord table (selecting exactly two
// angularly-extreme corners from the viewpoint's quadrant relative to the
// box) is not present anywhere in the retrieved source, so this checks all
// four corners directly: with rel the corner's signed angle relative to the
// view, the box is culled only when rel-clipAngle exceeds doubleClipAngle
// for every corner, or clipAngle-rel exceeds doubleClipAngle for every
// corner. Requiring all four corners to agree, rather than picking two ahead
// of time, trades a missed cull opportunity (extra traversal) for never
// dropping a box that is even partly in view. A box straddling the camera
// is conservatively treated as visible for the same reason.
func (w *BSPWalker) boxInFrustum(box *[BoxCount]Fixed) bool {
	left := FixedToFloat(box[BoxLeft])
	right := FixedToFloat(box[BoxRight])
	top := FixedToFloat(box[BoxTop])
	bottom := FixedToFloat(box[BoxBottom])

	corners := [4][2]float32{
		{left, top}, {left, bottom}, {right, top}, {right, bottom},
	}

	clip := int32(w.ClipAngle)
	doubleClip := int32(w.DoubleClipAngle)

	allBeyondPositive := true
	allBeyondNegative := true
	for _, c := range corners {
		rel := int32(w.angleTo(c[0], c[1]) - w.ViewAngle)
		if rel-clip <= doubleClip {
			allBeyondPositive = false
		}
		if clip-rel <= doubleClip {
			allBeyondNegative = false
		}
	}

	return !(allBeyondPositive || allBeyondNegative)
}

// angleTo returns the BAM angle from the camera to a map-space point.
func (w *BSPWalker) angleTo(x, y float32) Angle {
	rad := math.Atan2(float64(y-w.ViewY), float64(x-w.ViewX))
	return Angle(uint32(rad / (2 * math.Pi) * 4294967296.0))
}

// visitSubsector runs the seg pipeline over every seg of a leaf subsector
// in storage order, then emits that subsector's sector's sprites exactly
// once per frame.
func (w *BSPWalker) visitSubsector(subIdx uint32) {
	sub := &w.Map.Subsectors[subIdx]
	for i := uint32(0); i < sub.NumSegs; i++ {
		w.Pipeline.EmitSeg(sub.FirstSegIndex + i)
	}

	sectorIdx := sub.SectorIndex
	if w.Sectors.ValidCount[sectorIdx] != w.FrameCount {
		w.Sectors.ValidCount[sectorIdx] = w.FrameCount
		w.Pipeline.EmitSectorSprites(sectorIdx)
	}
}
