// main.go - command-line entry point for phoenixview, a demo presenter
// that loads an archive's map, textures and sprites and walks a camera
// through the rendered level.
//
// Grounded on main.go's own plain flag-free argument handling and its
// fmt.Printf-then-os.Exit(1) error convention; cpuMode/filename's
// positional-argument shape is widened here into a real flag set, since
// this tool takes many more independent resource numbers than the
// original took CPU-mode/program-path.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func main() {
	var cfg viewerConfig
	var baseDir string
	var scale int
	var textureInfo, mapLump, spriteFirst, spriteEnd, mapNum, sky1, sky2, sky3 uint

	flag.StringVar(&baseDir, "base-dir", ".", "directory archive and asset paths are resolved against")
	flag.StringVar(&cfg.ArchivePath, "archive", "", "path to a BRGR resource archive, relative to -base-dir")
	flag.UintVar(&textureInfo, "texture-info", 0, "resource number of the texture-info lump")
	flag.UintVar(&mapLump, "map-lump", 0, "resource number of the first lump of the map to load")
	flag.UintVar(&spriteFirst, "sprite-first", 0, "first resource number in the sprite range")
	flag.UintVar(&spriteEnd, "sprite-end", 0, "one past the last resource number in the sprite range")
	flag.UintVar(&mapNum, "map-num", 1, "map number, selects which sky texture is current")
	flag.UintVar(&sky1, "sky1", 0, "wall-texture index used as sky1")
	flag.UintVar(&sky2, "sky2", 0, "wall-texture index used as sky2")
	flag.UintVar(&sky3, "sky3", 0, "wall-texture index used as sky3")
	flag.IntVar(&cfg.ViewWidth, "width", 320, "native render width")
	flag.IntVar(&cfg.ViewHeight, "height", 200, "native render height")
	flag.IntVar(&scale, "scale", 3, "integer window upscale factor")
	var fov float64
	flag.Float64Var(&fov, "fov", 90, "horizontal field of view in degrees")
	flag.Parse()

	cfg.FOVDegrees = float32(fov)
	cfg.TextureInfoResNum = uint32(textureInfo)
	cfg.FirstMapLumpResNum = uint32(mapLump)
	cfg.FirstSpriteResNum = uint32(spriteFirst)
	cfg.EndSpriteResNum = uint32(spriteEnd)
	cfg.MapNum = uint32(mapNum)
	cfg.Sky1 = uint32(sky1)
	cfg.Sky2 = uint32(sky2)
	cfg.Sky3 = uint32(sky3)

	if cfg.ArchivePath == "" {
		fmt.Fprintln(os.Stderr, "usage: phoenixview -archive path.brgr -texture-info N -map-lump N -sprite-first N -sprite-end N [flags]")
		os.Exit(1)
	}

	ctx := context.Background()
	v, err := NewViewer(ctx, baseDir, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "phoenixview: %v\n", err)
		os.Exit(1)
	}

	if err := runPresenter(ctx, v, scale); err != nil {
		fmt.Fprintf(os.Stderr, "phoenixview: %v\n", err)
		os.Exit(1)
	}
}
