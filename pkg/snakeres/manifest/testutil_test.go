package manifest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/randalmurphal/snakeres/pkg/snakeres"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

const basicVertex = `#version 330 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aUV;

uniform mat4 u_Model;
uniform mat4 u_View;
uniform mat4 u_Projection;

out vec2 v_UV;

void main()
{
    v_UV = aUV;
    gl_Position = u_Projection * u_View * u_Model * vec4(aPos, 1.0);
}
`

const basicFragment = `#version 330 core
in vec2 v_UV;
out vec4 FragColor;

uniform sampler2D u_Texture;
uniform sampler2D u_Mask;
uniform vec4 u_Color;

void main()
{
    FragColor = texture(u_Texture, v_UV) * texture(u_Mask, v_UV).r * u_Color;
}
`

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{G: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// wavBytes encodes n silent 16-bit mono PCM samples at 44.1 kHz.
func wavBytes(n int) []byte {
	dataLen := uint32(n * 2)
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(44100))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(44100*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

func assetFS(t *testing.T) fstest.MapFS {
	t.Helper()
	return fstest.MapFS{
		"textures/hero.png":  {Data: pngBytes(t, 4, 2)},
		"textures/sheet.png": {Data: pngBytes(t, 64, 32)},
		"shaders/basic.vert": {Data: []byte(basicVertex)},
		"shaders/basic.frag": {Data: []byte(basicFragment)},
		"sounds/blip.wav":    {Data: wavBytes(441)},
		"fonts/ui.ttf":       {Data: goregular.TTF},
	}
}

func newAssets(t *testing.T) *snakeres.Assets {
	t.Helper()
	a := snakeres.New(snakeres.WithLogger(nil), snakeres.WithFileSystem(assetFS(t)))
	t.Cleanup(func() { _ = a.Close() })
	return a
}
