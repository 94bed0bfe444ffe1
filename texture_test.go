// texture_test.go - Tests for wall/flat texture decoding

package render

import (
	"encoding/binary"
	"testing"
)

func buildWallPLUT(colors [16]uint16) []byte {
	plut := make([]byte, wallPLUTBytes)
	for i, c := range colors {
		binary.BigEndian.PutUint16(plut[i*2:], c)
	}
	return plut
}

func TestDecodeWallTextureImage(t *testing.T) {
	var colors [16]uint16
	colors[1] = 0x1111
	colors[2] = 0x2222
	plut := buildWallPLUT(colors)

	// 2x2 image: pixel indices 1,2,1,2 packed two per byte (high nibble first).
	pixels := []byte{0x12, 0x12}
	data := append(append([]byte{}, plut...), pixels...)

	out, err := decodeWallTextureImage(data, 2, 2)
	if err != nil {
		t.Fatalf("decodeWallTextureImage failed: %v", err)
	}
	want := []uint16{0x1111, 0x2222, 0x1111, 0x2222}
	for i, p := range want {
		if out[i] != p {
			t.Errorf("pixel %d = 0x%04X, want 0x%04X", i, out[i], p)
		}
	}
}

func TestDecodeWallTextureImage_OddSizeRejected(t *testing.T) {
	plut := buildWallPLUT([16]uint16{})
	if _, err := decodeWallTextureImage(plut, 3, 2); err == nil {
		t.Fatal("expected error for odd width")
	}
}

func TestDecodeFlatTextureImage(t *testing.T) {
	var colors [32]uint16
	colors[0] = 0xAAAA
	colors[5] = 0xBBBB
	plut := make([]byte, flatPLUTBytes)
	for i, c := range colors {
		binary.BigEndian.PutUint16(plut[i*2:], c)
	}

	pixels := make([]byte, flatWidth*flatHeight)
	pixels[0] = 0x05 // low 5 bits -> index 5
	pixels[1] = 0xE0 // low 5 bits -> index 0, high bits ignored

	data := append(append([]byte{}, plut...), pixels...)

	out, err := decodeFlatTextureImage(data)
	if err != nil {
		t.Fatalf("decodeFlatTextureImage failed: %v", err)
	}
	if out[0] != 0xBBBB {
		t.Errorf("pixel 0 = 0x%04X, want 0xBBBB", out[0])
	}
	if out[1] != 0xAAAA {
		t.Errorf("pixel 1 = 0x%04X, want 0xAAAA", out[1])
	}
}

func buildTextureInfoResource(numWall, firstWall, numFlat, firstFlat uint32, wallDims [][2]uint32) []byte {
	var data []byte
	data = binary.BigEndian.AppendUint32(data, numWall)
	data = binary.BigEndian.AppendUint32(data, firstWall)
	data = binary.BigEndian.AppendUint32(data, numFlat)
	data = binary.BigEndian.AppendUint32(data, firstFlat)
	for _, d := range wallDims {
		data = binary.BigEndian.AppendUint32(data, d[0])
		data = binary.BigEndian.AppendUint32(data, d[1])
		data = binary.BigEndian.AppendUint32(data, 0) // unused
	}
	return data
}

func TestLoadTextureLibrary(t *testing.T) {
	infoData := buildTextureInfoResource(2, 1000, 3, 2000, [][2]uint32{{16, 32}, {64, 64}})

	var colors [16]uint16
	colors[0] = 0x4444
	wallPLUT := buildWallPLUT(colors)
	wallPixels := []byte{0x00}
	wallTexData := append(append([]byte{}, wallPLUT...), wallPixels...)

	archiveData := buildTestArchive(1000, [][]byte{infoData, wallTexData})
	// buildTestArchive assigns sequential resource numbers starting at 1000,
	// so infoData is resource 1000 and wallTexData is resource 1001. firstWall
	// stays 1000, so wall texture 0 names the info resource itself; this test
	// only checks the library's bookkeeping and never loads a wall texture.
	archive, err := OpenArchive(archiveData)
	if err != nil {
		t.Fatalf("OpenArchive failed: %v", err)
	}

	lib, err := LoadTextureLibrary(archive, 1000)
	if err != nil {
		t.Fatalf("LoadTextureLibrary failed: %v", err)
	}
	if lib.Wall.NumTextures() != 2 {
		t.Fatalf("got %d wall textures, want 2", lib.Wall.NumTextures())
	}
	if lib.Flat.NumTextures() != 3 {
		t.Fatalf("got %d flat textures, want 3", lib.Flat.NumTextures())
	}

	tex, err := lib.Wall.Get(0)
	if err != nil {
		t.Fatalf("Get(0) failed: %v", err)
	}
	if tex.Width != 16 || tex.Height != 32 {
		t.Errorf("dims = %dx%d, want 16x32", tex.Width, tex.Height)
	}
	if tex.ResourceNum != 1000 {
		t.Errorf("ResourceNum = %d, want 1000", tex.ResourceNum)
	}

	flatTex, err := lib.Flat.Get(0)
	if err != nil {
		t.Fatalf("Flat Get(0) failed: %v", err)
	}
	if flatTex.ResourceNum != 2000 {
		t.Errorf("flat ResourceNum = %d, want 2000", flatTex.ResourceNum)
	}
	if flatTex.Width != 64 || flatTex.Height != 64 {
		t.Errorf("flat dims = %dx%d, want 64x64", flatTex.Width, flatTex.Height)
	}

	if idx := lib.WallTexIndexForResource(1001); idx != 1 {
		t.Errorf("WallTexIndexForResource(1001) = %d, want 1", idx)
	}
}

func TestTextureSet_LoadFreeAnim(t *testing.T) {
	var colors [16]uint16
	colors[3] = 0x7777
	plut := buildWallPLUT(colors)
	wallTexData := append(append([]byte{}, plut...), 0x33)

	archiveData := buildTestArchive(10, [][]byte{wallTexData})
	archive, err := OpenArchive(archiveData)
	if err != nil {
		t.Fatalf("OpenArchive failed: %v", err)
	}

	set := &TextureSet{archive: archive, isWall: true, textures: []Texture{
		{Width: 2, Height: 1, ResourceNum: 10, AnimTexNum: 0},
	}}

	if err := set.Load(0); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	tex, _ := set.Get(0)
	if tex.Pixels[0] != 0x7777 || tex.Pixels[1] != 0x7777 {
		t.Errorf("pixels = %v, want [0x7777 0x7777]", tex.Pixels)
	}

	set.Free(0)
	if tex.Pixels != nil {
		t.Error("Pixels should be nil after Free")
	}

	if err := set.SetAnimTexNum(0, 0); err != nil {
		t.Fatalf("SetAnimTexNum failed: %v", err)
	}
	anim, err := set.GetAnim(0)
	if err != nil || anim != tex {
		t.Errorf("GetAnim should return the same texture when self-animated")
	}

	if err := set.SetAnimTexNum(0, 5); err == nil {
		t.Fatal("expected error for out-of-range anim index")
	}
}

func TestSkyTextures_Current(t *testing.T) {
	sky := SkyTextures{Sky1: 1, Sky2: 2, Sky3: 3}
	cases := []struct {
		mapNum uint32
		want   uint32
	}{
		{0, 1}, {8, 1}, {24, 1},
		{9, 2}, {17, 2},
		{18, 3}, {23, 3}, {25, 3},
	}
	for _, c := range cases {
		if got := sky.Current(c.mapNum); got != c.want {
			t.Errorf("Current(%d) = %d, want %d", c.mapNum, got, c.want)
		}
	}
}
