// viewer.go - loads one level's assets and drives the renderer frame by
// frame. Holds no presentation backend of its own: presenter_ebiten.go and
// presenter_headless.go each drive a Viewer the same way video_backend_
// ebiten.go/video_backend_headless.go each drove a VideoOutput from behind
// the same constructor name, split by build tag rather than runtime choice.
package main

import (
	"context"
	"fmt"

	render "github.com/BodbDearg/phoenix-doom-sub001"
)

// viewerConfig names every resource number this tool needs but that
// mapDataInit's own mapNum-to-resource-number formula (getMapStartLump)
// was never retrieved for (see DESIGN.md): rather than guess at an
// unfounded formula, they're taken as plain inputs instead.
type viewerConfig struct {
	ArchivePath           string
	TextureInfoResNum     uint32
	FirstMapLumpResNum    uint32
	FirstSpriteResNum     uint32
	EndSpriteResNum       uint32
	MapNum                uint32
	ViewWidth, ViewHeight int
	FOVDegrees            float32
	Sky1, Sky2, Sky3      uint32
}

// Viewer owns one level's decoded assets and per-frame camera state.
type Viewer struct {
	cfg      viewerConfig
	renderer *render.Renderer
	fb       *render.FrameBuffer
	cam      render.Camera
	angle    render.Angle

	numSectors int
	frameCount uint32
}

// NewViewer loads the archive and every asset a Renderer needs, and
// pre-warms every wall/flat texture and sprite in range before the first
// frame (see prewarm.go): a level's worth of lazy-decode stalls turned
// into one upfront cost, the same tradeoff a real player-facing frontend
// would want.
func NewViewer(ctx context.Context, baseDir string, cfg viewerConfig) (*Viewer, error) {
	data, err := loadFile(baseDir, cfg.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("loading archive: %w", err)
	}
	archive, err := render.OpenArchive(data)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	textures, err := render.LoadTextureLibrary(archive, cfg.TextureInfoResNum)
	if err != nil {
		return nil, fmt.Errorf("loading texture library: %w", err)
	}
	mapData, err := render.LoadMapData(archive, cfg.FirstMapLumpResNum, true)
	if err != nil {
		return nil, fmt.Errorf("loading map data: %w", err)
	}
	sprites := render.NewSpriteCache(archive, cfg.FirstSpriteResNum, cfg.EndSpriteResNum)

	if err := textures.PreWarm(ctx); err != nil {
		return nil, fmt.Errorf("pre-warming textures: %w", err)
	}
	if err := render.PreWarmSprites(ctx, sprites, cfg.FirstSpriteResNum, cfg.EndSpriteResNum); err != nil {
		return nil, fmt.Errorf("pre-warming sprites: %w", err)
	}

	proj := render.NewProjectionMatrix(cfg.ViewWidth, cfg.ViewHeight, 1, 1e5, cfg.FOVDegrees*(3.14159265/180))
	rcfg := render.RendererConfig{
		Map:      mapData,
		Textures: textures,
		Sprites:  sprites,
		Sky:      render.SkyTextures{Sky1: cfg.Sky1, Sky2: cfg.Sky2, Sky3: cfg.Sky3},
		MapNum:   cfg.MapNum,

		ViewWidth:  cfg.ViewWidth,
		ViewHeight: cfg.ViewHeight,
		Proj:       proj,
	}

	return &Viewer{
		cfg:        cfg,
		renderer:   render.NewRenderer(rcfg),
		fb:         render.NewFrameBuffer(uint32(cfg.ViewWidth), uint32(cfg.ViewHeight)),
		numSectors: len(mapData.Sectors),
		cam: render.Camera{
			ViewWidth:  cfg.ViewWidth,
			ViewHeight: cfg.ViewHeight,
			Proj:       proj,
		},
	}, nil
}

// Move advances the camera by dx/dy in view-relative ground units and
// dAngle in fixed-point angle units, recomputing ViewSin/ViewCos the way
// a frame's movement code would once per tick rather than once per
// emitted column.
func (v *Viewer) Move(dx, dy float32, dAngle render.Angle) {
	v.angle += dAngle
	v.cam.ViewSin = render.FixedToFloat(render.AngleSin(v.angle))
	v.cam.ViewCos = render.FixedToFloat(render.AngleCos(v.angle))
	v.cam.ViewX += dx*v.cam.ViewCos - dy*v.cam.ViewSin
	v.cam.ViewY += dx*v.cam.ViewSin + dy*v.cam.ViewCos
}

// RenderFrame draws the next frame into the viewer's own FrameBuffer and
// returns its pixels, ready for a presenter to blit or upscale.
func (v *Viewer) RenderFrame() ([]uint32, error) {
	v.frameCount++
	things := render.BuildSectorThings(v.numSectors, nil)
	err := v.renderer.Render(&v.cam, v.angle, things, render.ColorFlash{}, v.frameCount, v.fb.Target())
	if err != nil {
		return nil, err
	}
	return v.fb.Pixels(), nil
}

func (v *Viewer) Width() int  { return v.cfg.ViewWidth }
func (v *Viewer) Height() int { return v.cfg.ViewHeight }
