// segemit_test.go - Tests for seg-to-column fragment emission

package render

import "testing"

func TestAddWallColumnPartToClipBounds_MidWallFillsColumn(t *testing.T) {
	cf := &ColumnFrame{SegClip: make([]SegClip, 1)}
	clip := SegClip{Top: -1, Bottom: 100}

	addWallColumnPartToClipBounds(wallPieceMid, &clip, 10, 50, cf)

	if clip != (SegClip{}) {
		t.Errorf("mid wall should fully close the column, got %+v", clip)
	}
	if cf.NumFullSegCols != 1 {
		t.Errorf("NumFullSegCols = %d, want 1", cf.NumFullSegCols)
	}
}

func TestAddWallColumnPartToClipBounds_UpperGrowsTop(t *testing.T) {
	cf := &ColumnFrame{SegClip: make([]SegClip, 1)}
	clip := SegClip{Top: -1, Bottom: 100}

	addWallColumnPartToClipBounds(wallPieceUpper, &clip, 5, 30, cf)

	if clip.Top != 30 {
		t.Errorf("clip.Top = %d, want 30", clip.Top)
	}
	if clip.Bottom != 100 {
		t.Errorf("clip.Bottom = %d, want unchanged 100", clip.Bottom)
	}
	if cf.NumFullSegCols != 0 {
		t.Errorf("NumFullSegCols = %d, want 0 (column still open)", cf.NumFullSegCols)
	}
}

func TestAddWallColumnPartToClipBounds_LowerClosesColumn(t *testing.T) {
	cf := &ColumnFrame{SegClip: make([]SegClip, 1)}
	clip := SegClip{Top: 48, Bottom: 50}

	// zt(40) < clip.Bottom(50) shrinks clip.Bottom to 40, leaving Top(48)+1 >= Bottom(40): closed.
	addWallColumnPartToClipBounds(wallPieceLower, &clip, 40, 49, cf)

	if clip != (SegClip{}) {
		t.Errorf("shrinking bottom to meet top should fully close the column, got %+v", clip)
	}
	if cf.NumFullSegCols != 1 {
		t.Errorf("NumFullSegCols = %d, want 1", cf.NumFullSegCols)
	}
}

func TestClipAndEmitFlatColumn_EmitsAndShrinksBounds(t *testing.T) {
	cf := &ColumnFrame{SegClip: make([]SegClip, 1)}
	clip := SegClip{Top: -1, Bottom: 100}
	tex := &Texture{Width: 64, Height: 64}

	n := clipAndEmitFlatColumn(flatKindFloor, 0, 50, 120, &clip, 200, 1, 2, 3, false, 128, tex, cf)

	if n != 1 {
		t.Fatalf("clipAndEmitFlatColumn returned %d, want 1", n)
	}
	if len(cf.FloorFrags) != 1 {
		t.Fatalf("FloorFrags len = %d, want 1", len(cf.FloorFrags))
	}
	frag := cf.FloorFrags[0]
	if frag.Y != 50 || frag.Height != 50 {
		t.Errorf("frag Y/Height = %d/%d, want 50/50", frag.Y, frag.Height)
	}
	if clip.Top != -1 || clip.Bottom != 50 {
		t.Errorf("floor emit should shrink clip.Bottom to 50, got %+v", clip)
	}
}

func TestClipAndEmitFlatColumn_RejectsWhenFullyClipped(t *testing.T) {
	cf := &ColumnFrame{SegClip: make([]SegClip, 1)}
	clip := SegClip{Top: 10, Bottom: 12}
	tex := &Texture{Width: 64, Height: 64}

	n := clipAndEmitFlatColumn(flatKindFloor, 0, 5, 9, &clip, 200, 0, 0, 0, false, 128, tex, cf)

	if n != 0 {
		t.Errorf("clipAndEmitFlatColumn returned %d, want 0 (clipped to nothing)", n)
	}
	if len(cf.FloorFrags) != 0 {
		t.Errorf("no fragment should have been appended, got %d", len(cf.FloorFrags))
	}
}

func TestEmitOccluderColumn_FirstEntryThenRejectsWorseNewer(t *testing.T) {
	cf := NewColumnFrame(4, 100)

	// First entry: occluder covering row 30 and everything above it, at depth 5.
	emitOccluderColumn(OccludeTop, 0, 30, 5.0, 7, cf)
	oc := &cf.OccludingCols[0]
	if oc.Count != 1 {
		t.Fatalf("Count = %d, want 1", oc.Count)
	}
	if oc.Bounds[0] != (OccluderBounds{Top: 30, Bottom: 100}) {
		t.Errorf("Bounds[0] = %+v, want {30 100}", oc.Bounds[0])
	}

	// A farther occluder (depth 10 > 5) that would show MORE rows than the
	// current nearest entry must be rejected outright.
	emitOccluderColumn(OccludeTop, 0, 10, 10.0, 9, cf)
	if oc.Count != 1 {
		t.Errorf("Count after worse farther occluder = %d, want still 1", oc.Count)
	}

	// A farther occluder that tightens the gap (fewer visible rows) is pushed
	// as a new entry, stamped with its own line.
	emitOccluderColumn(OccludeTop, 0, 50, 10.0, 9, cf)
	if oc.Count != 2 {
		t.Fatalf("Count after tightening farther occluder = %d, want 2", oc.Count)
	}
	if oc.Bounds[1] != (OccluderBounds{Top: 50, Bottom: 100}) {
		t.Errorf("Bounds[1] = %+v, want {50 100}", oc.Bounds[1])
	}
	if oc.LineIndex[0] != 7 || oc.LineIndex[1] != 9 {
		t.Errorf("LineIndex = %v, want [7 9]", oc.LineIndex[:2])
	}
}

func TestEmitOccluderColumn_SameDepthExtendsNeverShrinks(t *testing.T) {
	cf := NewColumnFrame(1, 100)

	emitOccluderColumn(OccludeBottom, 0, 60, 5.0, 3, cf)
	oc := &cf.OccludingCols[0]
	if oc.Bounds[0] != (OccluderBounds{Top: -1, Bottom: 60}) {
		t.Fatalf("Bounds[0] = %+v, want {-1 60}", oc.Bounds[0])
	}

	// Same depth, would shrink the occluded region (raise Bottom to 80): must
	// be ignored, only ever extending.
	emitOccluderColumn(OccludeBottom, 0, 80, 5.0, 3, cf)
	if oc.Bounds[0].Bottom != 60 {
		t.Errorf("Bottom = %d, want unchanged 60 (never shrinks)", oc.Bounds[0].Bottom)
	}

	// Same depth, extends the occluded region further (lowers Bottom to 40): applied.
	emitOccluderColumn(OccludeBottom, 0, 40, 5.0, 3, cf)
	if oc.Bounds[0].Bottom != 40 {
		t.Errorf("Bottom = %d, want extended to 40", oc.Bounds[0].Bottom)
	}
	if oc.LineIndex[0] != 3 {
		t.Errorf("LineIndex[0] = %d, want unchanged 3 (extend keeps the original line)", oc.LineIndex[0])
	}
}

// buildOneSidedWallMap builds a single one-sided seg directly ahead of the
// camera, matching segpipeline_test.go's TestPrepareDrawSeg_SolidWallAhead
// fixture so the projected DrawSeg values are already hand-verified there.
func buildOneSidedWallMap() (*MapData, *Seg, *Camera) {
	m := &MapData{
		Sectors: []Sector{{FloorHeight: 0, CeilingHeight: 128 << FracBits, FloorPic: 0, CeilingPic: 0, LightLevel: 200}},
		Sides:   []Side{{MidTexture: 0, TopTexture: 0, BottomTexture: 0}},
		Lines:   []Line{{Flags: 0}},
	}
	seg := &Seg{
		V1:               VertexF{X: -10, Y: 100},
		V2:               VertexF{X: 10, Y: 100},
		SideDefIndex:     0,
		FrontSectorIndex: 0,
		BackSectorIndex:  noIndex,
		LineIndex:        0,
		LightMul:         1.0,
	}
	cam := &Camera{
		ViewX: 0, ViewY: 0, ViewZ: 41,
		ViewSin: 0, ViewCos: 1,
		ViewWidth: 2, ViewHeight: 2,
		Proj: NewProjectionMatrix(2, 2, 1, 1000, 3.14159265/2),
	}
	return m, seg, cam
}

func buildTestTextureLibrary() *TextureLibrary {
	wall := &TextureSet{isWall: true, textures: []Texture{{Width: 64, Height: 128, Pixels: make([]uint16, 64*128)}}}
	flat := &TextureSet{textures: []Texture{{Width: 64, Height: 64, Pixels: make([]uint16, 64*64)}}}
	return &TextureLibrary{Wall: wall, Flat: flat}
}

// TestEmitSegColumns_OneSidedWallAheadSingleColumn hand-verifies column 0 of
// a one-sided wall seen through a 2x2 viewport (see segpipeline_test.go's
// TestPrepareDrawSeg_SolidWallAhead for the projected geometry this starts
// from). At this resolution both x1 and x2 project into screen column 0, so
// only one column is ever visited.
//
// The floor fragment claims row 1 and the ceiling fragment claims row 0,
// between them fully closing the column (NumFullSegCols reaches 1) before
// the mid wall is processed; the mid wall's own clip-and-emit call therefore
// finds nothing left to draw and emits no WallFragment, matching
// clipAndEmitWallColumn's behavior of returning 0 once the column's clip
// bounds are already empty.
func TestEmitSegColumns_OneSidedWallAheadSingleColumn(t *testing.T) {
	m, seg, cam := buildOneSidedWallMap()
	lib := buildTestTextureLibrary()
	lines := NewLineFrameState(len(m.Lines))
	cf := NewColumnFrame(cam.ViewWidth, cam.ViewHeight)

	ds, ok := PrepareDrawSeg(seg, m, cam)
	if !ok {
		t.Fatal("expected the seg to survive clipping and face the camera")
	}

	n := EmitSegColumns(&ds, seg, m, cam, lines, 0, cf, lib)

	if n != 2 {
		t.Fatalf("EmitSegColumns returned %d, want 2 (one floor + one ceiling column)", n)
	}
	if len(cf.WallFrags) != 0 {
		t.Errorf("WallFrags len = %d, want 0 (column already closed by the flats)", len(cf.WallFrags))
	}
	if len(cf.FloorFrags) != 1 {
		t.Fatalf("FloorFrags len = %d, want 1", len(cf.FloorFrags))
	}
	if len(cf.CeilFrags) != 1 {
		t.Fatalf("CeilFrags len = %d, want 1", len(cf.CeilFrags))
	}

	floor := cf.FloorFrags[0]
	if floor.Y != 1 || floor.Height != 1 {
		t.Errorf("floor frag Y/Height = %d/%d, want 1/1", floor.Y, floor.Height)
	}
	if !approxEq(floor.Depth, 100, 0.01) {
		t.Errorf("floor frag Depth = %v, want ~100", floor.Depth)
	}

	ceil := cf.CeilFrags[0]
	if ceil.Y != 0 || ceil.Height != 1 {
		t.Errorf("ceiling frag Y/Height = %d/%d, want 0/1", ceil.Y, ceil.Height)
	}
	if !approxEq(ceil.WorldZ, 128, 0.01) {
		t.Errorf("ceiling frag WorldZ = %v, want ~128", ceil.WorldZ)
	}

	if cf.NumFullSegCols != 1 {
		t.Errorf("NumFullSegCols = %d, want 1", cf.NumFullSegCols)
	}
	if cf.SegClip[0] != (SegClip{}) {
		t.Errorf("column 0 clip bounds = %+v, want fully closed", cf.SegClip[0])
	}

	oc := &cf.OccludingCols[0]
	if oc.Count != 1 {
		t.Fatalf("OccludingCols[0].Count = %d, want 1 (mid wall always occludes)", oc.Count)
	}
	if oc.Bounds[0] != (OccluderBounds{Top: 2, Bottom: 2}) {
		t.Errorf("OccludingCols[0].Bounds[0] = %+v, want {2 2} (zero visible rows)", oc.Bounds[0])
	}
	if oc.LineIndex[0] != seg.LineIndex {
		t.Errorf("OccludingCols[0].LineIndex[0] = %d, want %d", oc.LineIndex[0], seg.LineIndex)
	}

	if !lines.Mapped[0] {
		t.Error("line should be latched as mapped once columns were emitted for its seg")
	}
}

func TestGetLightParams_MonotonicWithLightLevel(t *testing.T) {
	dim := getLightParams(64)
	bright := getLightParams(240)

	if bright.LightMax <= dim.LightMax {
		t.Errorf("brighter sector LightMax = %v, want greater than dim's %v", bright.LightMax, dim.LightMax)
	}
	if bright.LightMin <= dim.LightMin {
		t.Errorf("brighter sector LightMin = %v, want greater than dim's %v", bright.LightMin, dim.LightMin)
	}

	if mul := bright.GetLightMulForDist(0); mul != bright.LightMax {
		t.Errorf("light mul at zero distance = %v, want LightMax %v", mul, bright.LightMax)
	}
	if mul := bright.GetLightMulForDist(1e9); mul != bright.LightMin {
		t.Errorf("light mul at huge distance = %v, want clamped to LightMin %v", mul, bright.LightMin)
	}
}
