// renderer_test.go - tests for per-frame orchestration and the Pipeline
// wiring between BSPWalker and the seg/sprite emission stages.

package render

import "testing"

// Compile-time assertion: Renderer must satisfy bsp.go's Pipeline so a
// BSPWalker can drive it directly.
var _ Pipeline = (*Renderer)(nil)

func TestBuildSectorThings_GroupsByCurrentSector(t *testing.T) {
	things := []*Thing{
		{SectorIndex: 1},
		{SectorIndex: 0},
		{SectorIndex: 1},
		{SectorIndex: 5}, // out of range for a 2-sector level, must be dropped
	}
	st := BuildSectorThings(2, things)

	if len(st) != 2 {
		t.Fatalf("len(st) = %d, want 2", len(st))
	}
	if len(st[0]) != 1 || st[0][0] != things[1] {
		t.Errorf("sector 0 = %v, want [things[1]]", st[0])
	}
	if len(st[1]) != 2 || st[1][0] != things[0] || st[1][1] != things[2] {
		t.Errorf("sector 1 = %v, want [things[0] things[2]]", st[1])
	}
}

func newTestRenderer(m *MapData, viewW, viewH int) *Renderer {
	return NewRenderer(RendererConfig{
		Map:       m,
		Textures:  &TextureLibrary{Wall: &TextureSet{}, Flat: &TextureSet{}},
		Sprites:   NewSpriteCache(nil, 0, 0),
		ViewWidth: viewW, ViewHeight: viewH,
		Proj: NewProjectionMatrix(viewW, viewH, 1, 1000, 3.14159265/2),
	})
}

func TestRenderer_FullyOccluded_DelegatesToColumnFrame(t *testing.T) {
	m := &MapData{Sectors: []Sector{{}}, Sides: []Side{{}}, Lines: []Line{{}}}
	r := newTestRenderer(m, 4, 4)

	if r.FullyOccluded() {
		t.Fatal("a freshly reset ColumnFrame should not report fully occluded")
	}

	r.cf.NumFullSegCols = len(r.cf.SegClip)
	if !r.FullyOccluded() {
		t.Error("FullyOccluded() = false once every column is full, want true")
	}
}

func TestRenderer_EmitSeg_AddsWallFragmentAndMarksLineMapped(t *testing.T) {
	m := &MapData{
		Sectors: []Sector{{FloorHeight: 0, CeilingHeight: 128 << FracBits}},
		Sides:   []Side{{MidTexture: 0}},
		Lines:   []Line{{}},
		Segs: []Seg{{
			V1: VertexF{X: -10, Y: 100}, V2: VertexF{X: 10, Y: 100},
			SideDefIndex: 0, LineIndex: 0,
			FrontSectorIndex: 0, BackSectorIndex: noIndex,
			LightMul: 1,
		}},
	}
	r := newTestRenderer(m, 2, 2)
	r.cam = &Camera{
		ViewX: 0, ViewY: 0, ViewZ: 41,
		ViewSin: 0, ViewCos: 1,
		ViewWidth: 2, ViewHeight: 2,
		Proj: NewProjectionMatrix(2, 2, 1, 1000, 3.14159265/2),
	}
	// A single 2x2 (all-zero) wall texture lets EmitSegColumns actually emit a
	// wall fragment rather than silently finding no pixels to sample.
	r.cfg.Textures.Wall.textures = []Texture{{Width: 2, Height: 2, Pixels: make([]uint16, 4)}}

	r.EmitSeg(0)

	if r.err != nil {
		t.Fatalf("EmitSeg recorded an error: %v", r.err)
	}
	if len(r.cf.WallFrags) == 0 {
		t.Fatal("expected at least one wall fragment")
	}
	if !r.lines.Mapped[0] {
		t.Error("line should be latched as automap-visible once a column was drawn through it")
	}
}

func TestRenderer_EmitSeg_CulledSegLeavesNoTrace(t *testing.T) {
	m := &MapData{
		Sectors: []Sector{{FloorHeight: 0, CeilingHeight: 128 << FracBits}},
		Sides:   []Side{{}},
		Lines:   []Line{{}},
		Segs: []Seg{{
			// Behind the camera: PrepareDrawSeg must reject this one.
			V1: VertexF{X: -10, Y: -100}, V2: VertexF{X: 10, Y: -100},
			SideDefIndex: 0, LineIndex: 0,
			FrontSectorIndex: 0, BackSectorIndex: noIndex,
		}},
	}
	r := newTestRenderer(m, 2, 2)
	r.cam = &Camera{
		ViewX: 0, ViewY: 0, ViewZ: 41,
		ViewSin: 0, ViewCos: 1,
		ViewWidth: 2, ViewHeight: 2,
		Proj: NewProjectionMatrix(2, 2, 1, 1000, 3.14159265/2),
	}

	r.EmitSeg(0)

	if r.err != nil {
		t.Fatalf("EmitSeg recorded an error for a culled seg: %v", r.err)
	}
	if len(r.cf.WallFrags) != 0 {
		t.Errorf("culled seg should emit nothing, got %d wall fragments", len(r.cf.WallFrags))
	}
	if r.lines.Mapped[0] {
		t.Error("culled seg should not mark its line as automap-visible")
	}
}

func TestRenderer_EmitSectorSprites_CullsPlayer(t *testing.T) {
	m := &MapData{Sectors: []Sector{{LightLevel: 255}}}
	r := newTestRenderer(m, 4, 4)
	r.cam = &Camera{
		ViewX: 0, ViewY: 0, ViewZ: 0,
		ViewSin: 0, ViewCos: 1,
		ViewWidth: 4, ViewHeight: 4,
		Proj: NewProjectionMatrix(4, 4, 1, 1000, 3.14159265/2),
	}
	// PrepareDrawSprite rejects the player's own thing unconditionally,
	// before it ever consults the sprite cache, so passing a nil-backed
	// cache here is still safe.
	r.things = BuildSectorThings(1, []*Thing{{IsPlayer: true, SectorIndex: 0}})

	r.EmitSectorSprites(0)

	if r.err != nil {
		t.Fatalf("unexpected error: %v", r.err)
	}
	if len(r.frameSprites) != 0 {
		t.Errorf("player thing should never become a draw sprite, got %d", len(r.frameSprites))
	}
}

func TestRenderer_EmitSectorSprites_OutOfRangeSectorIsNoOp(t *testing.T) {
	m := &MapData{Sectors: []Sector{{}}}
	r := newTestRenderer(m, 4, 4)
	r.things = SectorThings{{{SectorIndex: 0}}}

	r.EmitSectorSprites(7) // no sector 7 in r.things

	if r.err != nil {
		t.Fatalf("unexpected error: %v", r.err)
	}
	if len(r.frameSprites) != 0 {
		t.Error("an out-of-range sector index should add nothing")
	}
}

func TestDrawColorFlash_ZeroAlphaIsNoOp(t *testing.T) {
	ft := newFrameTarget(2, 2)
	ft.Pixels[0] = 0x123456

	drawColorFlash(ColorFlash{R: 1, G: 0, B: 0, Alpha: 0}, ft)

	if ft.Pixels[0] != 0x123456 {
		t.Errorf("zero-alpha flash modified the frame: got %#08x", ft.Pixels[0])
	}
}

func TestDrawColorFlash_BlendsOverWholeFrame(t *testing.T) {
	ft := newFrameTarget(2, 2)

	drawColorFlash(ColorFlash{R: 1, G: 0, B: 0, Alpha: 1}, ft)

	want := uint32(0xFF0000) // alpha >= 1 takes BlitRect's solid-fill path
	for i, p := range ft.Pixels {
		if p != want {
			t.Errorf("pixel %d = %#08x, want %#08x", i, p, want)
		}
	}
}
