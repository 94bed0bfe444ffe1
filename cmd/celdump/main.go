// celdump is a standalone offline inspection tool: it decodes a single
// resource out of a BRGR archive (a raw Cel, a sprite, or a wall/flat
// texture resolved through a texture-info lump) and writes it out as a
// PNG, for eyeballing a decode without a running renderer.
//
// Grounded on the teacher's tools/font2rgba.go pattern: a small, single-
// purpose command that decodes one asset format and writes a standard
// image file, rather than anything resembling a game loop.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	render "github.com/BodbDearg/phoenix-doom-sub001"
)

func main() {
	var archivePath, kind, outPath string
	var resourceNum, textureInfoNum, index, width, height uint
	var hasOffsets bool

	flag.StringVar(&archivePath, "archive", "", "path to a BRGR resource archive")
	flag.StringVar(&kind, "kind", "cel", "resource kind: cel, sprite, wall, or flat")
	flag.StringVar(&outPath, "out", "out.png", "output PNG path")
	flag.UintVar(&resourceNum, "resource", 0, "resource number (cel/sprite kinds)")
	flag.UintVar(&textureInfoNum, "texture-info", 0, "texture-info resource number (wall/flat kinds)")
	flag.UintVar(&index, "index", 0, "texture index within the wall/flat set")
	flag.UintVar(&width, "width", 64, "not used: wall texture sizes are read from the texture-info resource")
	flag.UintVar(&height, "height", 64, "not used: wall texture sizes are read from the texture-info resource")
	flag.BoolVar(&hasOffsets, "offsets", false, "cel resource is prefixed with a left/top offset pair")
	flag.Parse()

	if archivePath == "" {
		fmt.Fprintln(os.Stderr, "usage: celdump -archive path.brgr -kind cel -resource N -out out.png")
		os.Exit(1)
	}

	data, err := os.ReadFile(archivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "celdump: %v\n", err)
		os.Exit(1)
	}
	archive, err := render.OpenArchive(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "celdump: %v\n", err)
		os.Exit(1)
	}

	img, err := decode(archive, kind, uint32(resourceNum), uint32(textureInfoNum), uint32(index), uint32(width), uint32(height), hasOffsets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "celdump: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "celdump: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		fmt.Fprintf(os.Stderr, "celdump: %v\n", err)
		os.Exit(1)
	}
}

func decode(archive *render.Archive, kind string, resourceNum, textureInfoNum, index, width, height uint32, hasOffsets bool) (image.Image, error) {
	switch kind {
	case "cel":
		return decodeCelKind(archive, resourceNum, hasOffsets)
	case "sprite":
		return decodeSpriteKind(archive, resourceNum)
	case "wall":
		return decodeWallKind(archive, textureInfoNum, index)
	case "flat":
		return decodeFlatKind(archive, textureInfoNum, index)
	default:
		return nil, fmt.Errorf("unknown kind %q: want cel, sprite, wall, or flat", kind)
	}
}

func decodeCelKind(archive *render.Archive, resourceNum uint32, hasOffsets bool) (image.Image, error) {
	data, err := loadResource(archive, resourceNum)
	if err != nil {
		return nil, err
	}
	var flags render.LoadFlags
	if hasOffsets {
		flags |= render.CelHasOffsets
	}
	img, err := render.DecodeCelImage(data, flags)
	if err != nil {
		return nil, err
	}
	return rgba5551Image(img.Pixels, int(img.Width), int(img.Height), false), nil
}

func decodeSpriteKind(archive *render.Archive, resourceNum uint32) (image.Image, error) {
	data, err := loadResource(archive, resourceNum)
	if err != nil {
		return nil, err
	}
	sprite, err := render.DecodeSprite(data, resourceNum)
	if err != nil {
		return nil, err
	}
	if len(sprite.Frames) == 0 {
		return nil, fmt.Errorf("sprite %d decoded with no frames", resourceNum)
	}
	angle := sprite.Frames[0].Angles[0]
	return rgba5551Image(angle.Pixels, int(angle.Width), int(angle.Height), true), nil
}

func decodeWallKind(archive *render.Archive, textureInfoNum, index uint32) (image.Image, error) {
	lib, err := render.LoadTextureLibrary(archive, textureInfoNum)
	if err != nil {
		return nil, err
	}
	if err := lib.Wall.Load(index); err != nil {
		return nil, err
	}
	tex, err := lib.Wall.Get(index)
	if err != nil {
		return nil, err
	}
	return rgba5551Image(tex.Pixels, int(tex.Width), int(tex.Height), true), nil
}

func decodeFlatKind(archive *render.Archive, textureInfoNum, index uint32) (image.Image, error) {
	lib, err := render.LoadTextureLibrary(archive, textureInfoNum)
	if err != nil {
		return nil, err
	}
	if err := lib.Flat.Load(index); err != nil {
		return nil, err
	}
	tex, err := lib.Flat.Get(index)
	if err != nil {
		return nil, err
	}
	return rgba5551Image(tex.Pixels, int(tex.Width), int(tex.Height), false), nil
}

func loadResource(archive *render.Archive, num uint32) ([]byte, error) {
	if err := archive.Load(num); err != nil {
		return nil, err
	}
	defer archive.Free(num)
	data := archive.GetData(num)
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// rgba5551Image converts a decoded RGBA5551 pixel buffer into a standard
// image.RGBA, honoring the column-major layout sprites and wall textures
// are stored in (see blit.go's BlitColumn16).
func rgba5551Image(pixels []uint16, width, height int, columnMajor bool) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var p uint16
			if columnMajor {
				p = pixels[x*height+y]
			} else {
				p = pixels[y*width+x]
			}
			img.SetRGBA(x, y, rgba5551ToColor(p))
		}
	}
	return img
}

// rgba5551ToColor unpacks one ARGB1555 texel (A:15 R:14-10 G:9-5 B:4-0),
// matching blit.go's sampleRGBA5551 bit layout.
func rgba5551ToColor(p uint16) color.RGBA {
	r := uint8((p>>10)&0x1F) << 3
	g := uint8((p>>5)&0x1F) << 3
	b := uint8(p&0x1F) << 3
	a := uint8(0xFF)
	if p&0x8000 == 0 {
		a = 0
	}
	return color.RGBA{R: r, G: g, B: b, A: a}
}
