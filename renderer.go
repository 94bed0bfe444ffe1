// renderer.go - top-level per-frame orchestration: drives BSP traversal,
// then blits the fragments it collected in the fixed order the original
// renders them, then layers the screen color flash on top.
//
// Grounded on original_source/source/GFX/Renderer.cpp's drawPlayerView,
// which calls (in order) doBspTraversal, drawAllWallFragments/
// drawAllSkyFragments, drawAllVisPlanes (floors/ceilings),
// drawAllMapObjectSprites, DrawColors, then DrawWeapons. Renderer is the
// concrete bsp.go Pipeline implementation: BSPWalker knows nothing about
// rasterization, it just calls back into whatever satisfies the interface,
// and this is that thing.
package render

// SectorThings groups a level's movable objects by the sector each
// currently occupies, mirroring the original's sector_t::thinglist linked
// list threaded through mobj_t::snext/sprev (Map/MapObj.h). Game logic owns
// Thing.SectorIndex and rebuilds this grouping whenever things move between
// sectors; the renderer only ever reads it, once per frame.
type SectorThings [][]*Thing

// BuildSectorThings groups things by their current sector for a level with
// the given sector count. A thing whose SectorIndex is out of range is
// silently dropped rather than panicking, since thing placement is game
// logic's responsibility, not the renderer's to validate.
func BuildSectorThings(numSectors int, things []*Thing) SectorThings {
	st := make(SectorThings, numSectors)
	for _, t := range things {
		if int(t.SectorIndex) < numSectors {
			st[t.SectorIndex] = append(st[t.SectorIndex], t)
		}
	}
	return st
}

// ColorFlash is the full-screen color wash blended over the finished 3D
// view between sprite and weapon drawing (damage red, item-pickup gold,
// radiation-suit green in the original). DrawColors' own body was never
// retrieved, only its call site and position in drawPlayerView's call
// order; BlitRect's existing alpha-blend rectangle fill is the natural
// primitive for a full-viewport wash, so that is what drives it here.
// Alpha <= 0 skips the blend entirely.
type ColorFlash struct {
	R, G, B, Alpha float32
}

func drawColorFlash(flash ColorFlash, ft FrameTarget) {
	if flash.Alpha <= 0 {
		return
	}
	BlitRect(ft.Pixels, ft.Width, ft.Height, ft.Pitch, 0, 0, float32(ft.Width), float32(ft.Height), flash.R, flash.G, flash.B, flash.Alpha)
}

// RendererConfig bundles the static, level-scoped state a Renderer needs
// for the lifetime of a level: its geometry, decoded texture sets, cached
// sprite frames, and which of the three sky textures is current.
type RendererConfig struct {
	Map      *MapData
	Textures *TextureLibrary
	Sprites  *SpriteCache
	Sky      SkyTextures
	MapNum   uint32

	ViewWidth, ViewHeight int
	Proj                  ProjectionMatrix
}

// Renderer draws one frame at a time: BSP-ordered walls/floors/ceilings/
// sky, then every visible thing back-to-front, then the color flash. It
// implements bsp.go's Pipeline interface, so a BSPWalker can drive it
// directly; EmitSeg/EmitSectorSprites/FullyOccluded below are that
// interface, not meant to be called directly outside of Traverse.
type Renderer struct {
	cfg RendererConfig

	lines   *LineFrameState
	sectors *SectorFrameState
	cf      *ColumnFrame

	screenXToAngle []Angle

	cam              *Camera
	things           SectorThings
	frameSprites     []DrawSprite
	spriteValidCount uint32
	err              error
}

// NewRenderer allocates a Renderer's per-frame state sized for one level's
// geometry and view dimensions. screenXToAngle is built once here rather
// than per frame since it depends only on the (fixed, per-level) projection
// and view width, exactly like the original's gXToViewAngle table.
func NewRenderer(cfg RendererConfig) *Renderer {
	return &Renderer{
		cfg:            cfg,
		lines:          NewLineFrameState(len(cfg.Map.Lines)),
		sectors:        NewSectorFrameState(len(cfg.Map.Sectors)),
		cf:             NewColumnFrame(cfg.ViewWidth, cfg.ViewHeight),
		screenXToAngle: BuildScreenXToAngleTable(cfg.ViewWidth, cfg.Proj),
	}
}

// Render draws one complete frame from cam/viewAngle into ft, reading
// things for sprite placement and blending flash over the result last.
// frameCount must increase by exactly one every frame; BSPWalker uses it to
// dedupe a sector's sprites within the traversal.
func (r *Renderer) Render(cam *Camera, viewAngle Angle, things SectorThings, flash ColorFlash, frameCount uint32, ft FrameTarget) error {
	r.cam = cam
	r.things = things
	r.err = nil
	r.frameSprites = r.frameSprites[:0]
	r.lines.ResetFrame()
	r.cf.Reset(cam.ViewHeight)

	clipAngle := r.screenXToAngle[0]
	walker := &BSPWalker{
		Map:             r.cfg.Map,
		Sectors:         r.sectors,
		Pipeline:        r,
		ViewX:           cam.ViewX,
		ViewY:           cam.ViewY,
		ViewAngle:       viewAngle,
		ClipAngle:       clipAngle,
		DoubleClipAngle: clipAngle + clipAngle,
		FrameCount:      frameCount,
	}
	walker.Traverse()
	if r.err != nil {
		return r.err
	}

	if len(r.cf.SkyFrags) > 0 {
		skyTex, err := r.loadSkyTexture()
		if err != nil {
			return err
		}
		DrawAllSkyFragments(r.cf, viewAngle, r.screenXToAngle, skyTex, cam.ViewHeight, ft)
	}
	DrawAllWallFragments(r.cf, ft)

	np := NewNearPlane(cam)
	DrawAllFloorFragments(r.cf, np, cam, ft)
	DrawAllCeilingFragments(r.cf, np, cam, ft)

	SortSpritesBackToFront(r.frameSprites)
	for i := range r.frameSprites {
		r.spriteValidCount++
		EmitDrawSpriteColumns(&r.frameSprites[i], r.cf, r.cfg.Map, r.lines, r.spriteValidCount, cam.ViewWidth)
	}
	DrawAllSpriteFragments(r.cf, ft)

	drawColorFlash(flash, ft)

	return nil
}

// loadSkyTexture resolves and decodes this level's current sky, identified
// by SkyTextures.Current as a wall-texture-set index (§ texture.go).
func (r *Renderer) loadSkyTexture() (*Texture, error) {
	skyIdx := r.cfg.Sky.Current(r.cfg.MapNum)
	if err := r.cfg.Textures.Wall.Load(skyIdx); err != nil {
		return nil, err
	}
	return r.cfg.Textures.Wall.GetAnim(skyIdx)
}

// EmitSeg prepares and emits one seg's columns. Seg preparation and
// emission report no errors; EmitSeg does nothing once EmitSectorSprites
// has recorded an error for Render to surface (Pipeline has no error
// return of its own).
func (r *Renderer) EmitSeg(segIndex uint32) {
	if r.err != nil {
		return
	}
	seg := &r.cfg.Map.Segs[segIndex]
	ds, ok := PrepareDrawSeg(seg, r.cfg.Map, r.cam)
	if !ok {
		return
	}
	extraLight := r.cam.ExtraLight
	if extraLight < 0 {
		extraLight = 0
	}
	EmitSegColumns(&ds, seg, r.cfg.Map, r.cam, r.lines, uint32(extraLight), r.cf, r.cfg.Textures)
}

// EmitSectorSprites projects every thing in a sector into a DrawSprite,
// deferring the actual column emission until every sector's things have
// been gathered and sorted back-to-front (depth sorting only makes sense
// globally, not one sector at a time).
func (r *Renderer) EmitSectorSprites(sectorIndex uint32) {
	if r.err != nil || int(sectorIndex) >= len(r.things) {
		return
	}
	for _, thing := range r.things[sectorIndex] {
		ds, ok, err := PrepareDrawSprite(thing, r.cfg.Map, r.cam, r.cfg.Sprites)
		if err != nil {
			r.err = err
			return
		}
		if ok {
			r.frameSprites = append(r.frameSprites, ds)
		}
	}
}

// FullyOccluded delegates to the ColumnFrame's own tracking of how many
// screen columns have been completely filled by nearer geometry.
func (r *Renderer) FullyOccluded() bool {
	return r.cf.FullyOccluded()
}
