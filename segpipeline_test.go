// segpipeline_test.go - Tests for seg view/clip/screen-space preparation

package render

import "testing"

func approxEq(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestNewProjectionMatrix(t *testing.T) {
	// 90-degree FOV, square viewport: f = tan(45) = 1, a = 1.
	proj := NewProjectionMatrix(2, 2, 1, 1000, 3.14159265/2)

	if !approxEq(proj.R0C0, 1.0, 0.01) {
		t.Errorf("R0C0 = %v, want ~1.0", proj.R0C0)
	}
	if !approxEq(proj.R1C1, -1.0, 0.01) {
		t.Errorf("R1C1 = %v, want ~-1.0", proj.R1C1)
	}
	// -zf/(zn-zf) = -1000/(1-1000) = 1000/999
	if !approxEq(proj.R2C2, 1000.0/999.0, 0.001) {
		t.Errorf("R2C2 = %v, want ~1.001001", proj.R2C2)
	}
	if proj.R2C3 != 1.0 {
		t.Errorf("R2C3 = %v, want 1.0", proj.R2C3)
	}
}

func TestPrepareDrawSeg_SolidWallAhead(t *testing.T) {
	m := &MapData{
		Sectors: []Sector{{FloorHeight: 0, CeilingHeight: 128 << FracBits}},
		Sides:   []Side{{}},
	}
	seg := &Seg{
		V1:               VertexF{X: -10, Y: 100},
		V2:               VertexF{X: 10, Y: 100},
		SideDefIndex:     0,
		FrontSectorIndex: 0,
		BackSectorIndex:  noIndex,
	}
	cam := &Camera{
		ViewX: 0, ViewY: 0, ViewZ: 41,
		ViewSin: 0, ViewCos: 1,
		ViewWidth: 2, ViewHeight: 2,
		Proj: NewProjectionMatrix(2, 2, 1, 1000, 3.14159265/2),
	}

	ds, ok := PrepareDrawSeg(seg, m, cam)
	if !ok {
		t.Fatal("expected the seg to survive clipping and face the camera")
	}
	if !ds.EmitCeiling {
		t.Error("ceiling above the camera should be emitted")
	}
	if !ds.EmitFloor {
		t.Error("floor below the camera should be emitted")
	}
	if ds.P1X >= ds.P2X {
		t.Errorf("front-facing seg should run left to right on screen: P1X=%v P2X=%v", ds.P1X, ds.P2X)
	}
	if !approxEq(ds.P1X, 0.675, 0.01) {
		t.Errorf("P1X = %v, want ~0.675", ds.P1X)
	}
	if !approxEq(ds.P2X, 0.825, 0.01) {
		t.Errorf("P2X = %v, want ~0.825", ds.P2X)
	}
	if !approxEq(ds.P1BZ, 1.0575, 0.01) {
		t.Errorf("P1BZ = %v, want ~1.0575", ds.P1BZ)
	}
}

func TestPrepareDrawSeg_BehindCameraRejected(t *testing.T) {
	m := &MapData{
		Sectors: []Sector{{FloorHeight: 0, CeilingHeight: 128 << FracBits}},
		Sides:   []Side{{}},
	}
	seg := &Seg{
		V1:               VertexF{X: -10, Y: -100},
		V2:               VertexF{X: 10, Y: -100},
		SideDefIndex:     0,
		FrontSectorIndex: 0,
		BackSectorIndex:  noIndex,
	}
	cam := &Camera{
		ViewX: 0, ViewY: 0, ViewZ: 41,
		ViewSin: 0, ViewCos: 1,
		ViewWidth: 2, ViewHeight: 2,
		Proj: NewProjectionMatrix(2, 2, 1, 1000, 3.14159265/2),
	}

	if _, ok := PrepareDrawSeg(seg, m, cam); ok {
		t.Error("a seg entirely behind the camera should be clipped away")
	}
}

func TestClipSegAgainstFrontPlane_PartialClip(t *testing.T) {
	// p1 in front (positive dist), p2 behind (negative dist): should clip
	// and keep both endpoints, with p2 moved to the plane.
	ds := &DrawSeg{P1Y: 10, P1W: 10, P2Y: -10, P2W: 5, P1X: 0, P2X: 10}
	if !clipSegAgainstFrontPlane(ds) {
		t.Fatal("seg straddling the front plane should not be fully rejected")
	}
	if ds.P2W != -ds.P2Y {
		t.Errorf("clipped point should have w = -y, got w=%v y=%v", ds.P2W, ds.P2Y)
	}
}

func TestClipSegAgainstFrontPlane_FullyBehind(t *testing.T) {
	ds := &DrawSeg{P1Y: -10, P1W: 5, P2Y: -20, P2W: 5}
	if clipSegAgainstFrontPlane(ds) {
		t.Error("seg fully behind the front plane should be rejected")
	}
}

func TestAddClipSpaceZValuesForSeg_TwoSidedOccluders(t *testing.T) {
	m := &MapData{
		Sectors: []Sector{
			{FloorHeight: 0, CeilingHeight: 128 << FracBits},
			{FloorHeight: 32 << FracBits, CeilingHeight: 128 << FracBits},
		},
	}
	seg := &Seg{FrontSectorIndex: 0, BackSectorIndex: 1}
	cam := &Camera{ViewZ: 0, Proj: ProjectionMatrix{R1C1: -1.0}}

	var ds DrawSeg
	addClipSpaceZValuesForSeg(&ds, seg, m, cam)

	// Front floor (0) is below back floor (32): a step up, so the lower
	// occluder only fires when standing at or below the (higher) back floor.
	if !ds.EmitLowerOccluder {
		t.Error("expected a lower occluder for the step-up front-to-back floor")
	}
	if !ds.LowerOccluderUsesBackZ {
		t.Error("step-up lower occluder should use the back sector's z")
	}
	if ds.EmitUpperOccluder {
		t.Error("equal ceiling heights should not emit an upper occluder")
	}
}
