// drawers_test.go - tests for wall/floor/ceiling/sky/sprite fragment drawing

package render

import "testing"

func newFrameTarget(w, h uint32) FrameTarget {
	return FrameTarget{
		Pixels: make([]uint32, w*h),
		Width:  w, Height: h, Pitch: w,
	}
}

func TestDrawAllWallFragments_WhiteColumn(t *testing.T) {
	tex := &Texture{Width: 1, Height: 2, Pixels: []uint16{0xFFFF, 0xFFFF}}
	cf := &ColumnFrame{WallFrags: []WallFragment{{
		X: 2, Y: 1, Height: 2,
		TexCoordX: 0, TexCoordY: 0, TexCoordYStep: 1,
		LightMul: 1, Texture: tex,
	}}}
	ft := newFrameTarget(5, 5)

	DrawAllWallFragments(cf, ft)

	want := uint32(0xF8F8F8)
	if got := ft.Pixels[1*5+2]; got != want {
		t.Errorf("pixel (2,1) = %#06x, want %#06x", got, want)
	}
	if got := ft.Pixels[2*5+2]; got != want {
		t.Errorf("pixel (2,2) = %#06x, want %#06x", got, want)
	}
	if ft.Pixels[0] != 0 {
		t.Errorf("pixel (0,0) should be untouched, got %#06x", ft.Pixels[0])
	}
}

func TestBuildScreenXToAngleTable_LeftEdgeIs135Degrees(t *testing.T) {
	proj := ProjectionMatrix{R0C0: 1}
	table := BuildScreenXToAngleTable(3, proj)
	if len(table) != 3 {
		t.Fatalf("len(table) = %d, want 3", len(table))
	}
	want := int64(1610612736) // 0.375 * 2^32, i.e. 135 degrees (atan2(1,-1))
	if diff := int64(table[0]) - want; diff < -2 || diff > 2 {
		t.Errorf("table[0] = %#x, want within 2 of %#x", uint32(table[0]), uint32(want))
	}
}

func TestDrawAllSkyFragments_SamplesSingleTexel(t *testing.T) {
	skyTex := &Texture{Width: 1, Height: 1, Pixels: []uint16{0x4000}}
	cf := &ColumnFrame{SkyFrags: []SkyFragment{{X: 0, Height: 1}}}
	ft := newFrameTarget(3, 3)

	DrawAllSkyFragments(cf, 0, []Angle{0}, skyTex, 160, ft)

	want := uint32(0x800000)
	if got := ft.Pixels[0]; got != want {
		t.Errorf("pixel (0,0) = %#06x, want %#06x", got, want)
	}
}

func TestNewNearPlane_StraightAheadCamera(t *testing.T) {
	cam := &Camera{
		ViewX: 10, ViewY: 20, ViewZ: 5,
		ViewSin: 0, ViewCos: 1,
		ViewWidth: 3, ViewHeight: 3,
		Proj: ProjectionMatrix{R0C0: 1, R1C1: -1},
	}
	np := NewNearPlane(cam)

	cases := []struct {
		name string
		got  float32
		want float32
	}{
		{"P1x", np.P1x, 9},
		{"P1y", np.P1y, 21},
		{"XStep", np.XStep, 0.8},
		{"YStep", np.YStep, 0},
		{"Tz", np.Tz, 6},
		{"ZStep", np.ZStep, -0.8},
	}
	for _, c := range cases {
		if !approxEq(c.got, c.want, 0.0001) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestDoRayFlatPlaneIntersection_FloorStraightDown(t *testing.T) {
	ix, iy, iz := doRayFlatPlaneIntersection(flatKindFloor, 0, 0, 0, 10, 0, 0, -1)
	if !approxEq(ix, 0, 0.0001) || !approxEq(iy, 0, 0.0001) || !approxEq(iz, 0, 0.0001) {
		t.Errorf("got (%v,%v,%v), want (0,0,0)", ix, iy, iz)
	}
}

func TestDoRayFlatPlaneIntersection_CeilingStraightUp(t *testing.T) {
	ix, iy, iz := doRayFlatPlaneIntersection(flatKindCeiling, 20, 0, 0, 10, 0, 0, 1)
	if !approxEq(ix, 0, 0.0001) || !approxEq(iy, 0, 0.0001) || !approxEq(iz, 20, 0.0001) {
		t.Errorf("got (%v,%v,%v), want (0,0,20)", ix, iy, iz)
	}
}

func TestDrawAllFloorFragments_ClampedFirstPixel(t *testing.T) {
	tex := &Texture{Width: 64, Height: 64, Pixels: make([]uint16, 64*64)}
	tex.Pixels[0] = 0x7C00 // pure red, zero alpha

	cf := &ColumnFrame{FloorFrags: []FlatFragment{{
		X: 0, Y: 0, Height: 1,
		SectorLightLevel: 255,
		ClampFirstPixel:  true,
		WorldX:           0, WorldY: 0, WorldZ: 0,
		Texture: tex,
	}}}
	cam := &Camera{}
	// Height is 1, so drawFlatColumn's single sample comes straight from
	// ClampFirstPixel's WorldX/Y/Z; the near-plane geometry does not
	// affect the drawn pixel.
	np := NearPlane{}
	ft := newFrameTarget(2, 2)

	DrawAllFloorFragments(cf, np, cam, ft)

	want := uint32(0xF80000)
	if got := ft.Pixels[0]; got != want {
		t.Errorf("pixel (0,0) = %#06x, want %#06x", got, want)
	}
}

func TestDrawAllSpriteFragments_Opaque(t *testing.T) {
	cf := &ColumnFrame{SpriteFrags: []SpriteFragment{{
		X: 1, Y: 1, Height: 2, TexH: 2,
		Pixels: []uint16{0xFFFF, 0xFFFF},
		TexYStep: 1, LightMul: 1,
	}}}
	ft := newFrameTarget(4, 4)

	DrawAllSpriteFragments(cf, ft)

	want := uint32(0xF8F8F8)
	if got := ft.Pixels[1*4+1]; got != want {
		t.Errorf("pixel (1,1) = %#06x, want %#06x", got, want)
	}
	if got := ft.Pixels[2*4+1]; got != want {
		t.Errorf("pixel (1,2) = %#06x, want %#06x", got, want)
	}
}

func TestDrawAllSpriteFragments_TransparentIsDimmedAndBlended(t *testing.T) {
	cf := &ColumnFrame{SpriteFrags: []SpriteFragment{{
		X: 0, Y: 0, Height: 1, TexH: 1,
		Pixels:        []uint16{0xFFFF},
		TexYStep:      1,
		LightMul:      1,
		IsTransparent: true,
	}}}
	ft := newFrameTarget(1, 1)

	DrawAllSpriteFragments(cf, ft)

	got := ft.Pixels[0]
	r := uint8(got >> 16)
	g := uint8(got >> 8)
	b := uint8(got)
	// Shadow tint multiplies by 0.1 then alpha-blends 50% over a black
	// destination: ~248*0.1*0.5 =~ 12.4, well short of the full 248 an
	// undimmed blend would produce.
	if r == 0 || r > 30 || r != g || g != b {
		t.Errorf("shadow pixel = (%d,%d,%d), want a dim, equal-channel blend under 30", r, g, b)
	}
}
